package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/ir"
	"github.com/gpukit/hlo-lower/lower"
	"github.com/gpukit/hlo-lower/lower/rules"
)

const sampleGraph = `
name: demo
funcs:
  - name: main
    params:
      - {name: a, type: buffer<4x4xf32>}
    ops:
      - op: buf.view
        args: [a]
        attrs: {offset: 0}
        results:
          - {name: v, type: buffer<4xf32>}
      - op: hlo.gemm
        args: [a, a, v]
        attrs: {alpha: 1.5}
      - op: func.return
`

func TestLoadGraph(t *testing.T) {
	m, err := loadGraph([]byte(sampleGraph))
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Name)

	fn := m.FindFunc("main")
	require.NotNil(t, fn)
	entry := ir.EntryBlock(fn)
	require.Len(t, entry.Args, 1)
	assert.Equal(t, "buffer<4x4xf32>", m.ValueType(entry.Args[0]).String())

	require.Len(t, entry.Ops, 3)
	view := m.Op(entry.Ops[0])
	assert.Equal(t, hlo.KindView, view.Kind)
	assert.Equal(t, 0, view.Attr("offset"))

	gemm := m.Op(entry.Ops[1])
	assert.Equal(t, hlo.KindGemm, gemm.Kind)
	require.Len(t, gemm.Operands, 3)
	assert.Equal(t, view.Results[0], gemm.Operands[2])
	assert.Equal(t, 1.5, gemm.Attr("alpha"))
}

func TestLoadGraph_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "malformed yaml",
			yaml: "funcs: [",
			want: "malformed graph file",
		},
		{
			name: "unknown value",
			yaml: `
funcs:
  - name: main
    ops:
      - op: hlo.cholesky
        args: [a, b]
`,
			want: "unknown value",
		},
		{
			name: "wrong arity",
			yaml: `
funcs:
  - name: main
    params:
      - {name: a, type: buffer<4xf32>}
    ops:
      - op: hlo.gemm
        args: [a]
`,
			want: "takes 3 operands",
		},
		{
			name: "unknown type",
			yaml: `
funcs:
  - name: main
    params:
      - {name: a, type: tensor<4xf32>}
`,
			want: "unknown type",
		},
		{
			name: "unnamed result",
			yaml: `
funcs:
  - name: main
    ops:
      - op: buf.alloc
        results:
          - {type: buffer<4xf32>}
`,
			want: "has no name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadGraph([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want ir.Type
	}{
		{"buffer<4x4xf32>", hlo.Buffer{Elem: "f32", Dims: []int64{4, 4}}},
		{"buffer<f64>", hlo.Buffer{Elem: "f64"}},
		{"gpurt.buffer<16xi32>", gpurt.Buffer{Elem: "i32", Dims: []int64{16}}},
		{"stream", gpurt.Stream{}},
		{"gpurt.stream", gpurt.Stream{}},
		{"chain", gpurt.Chain{}},
		{"f32", ir.Scalar{Elem: "f32"}},
	}
	for _, tt := range tests {
		got, err := parseType(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, ir.TypeEq(got, tt.want), "parseType(%q) = %s", tt.in, got)
	}

	for _, bad := range []string{"", "buffer<axf32>", "buffer<4xq8>", "float"} {
		_, err := parseType(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadAndLower(t *testing.T) {
	m, err := loadGraph([]byte(sampleGraph))
	require.NoError(t, err)

	conv := lower.NewBufferTypeConverter()
	out, err := lower.Run(m, lower.Config{Registry: rules.DefaultRegistry(conv), Converter: conv})
	require.NoError(t, err)

	var gemm *ir.Operation
	out.Walk(func(op *ir.Operation) {
		if op.Kind == gpurt.KindBlasGemm {
			gemm = op
		}
	})
	require.NotNil(t, gemm, "gemm not lowered:\n%s", ir.Print(out))
	assert.Equal(t, 1.5, gemm.Attr("alpha"))
}
