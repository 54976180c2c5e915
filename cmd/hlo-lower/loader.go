package main

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gpukit/hlo-lower/errors"
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/ir"
)

// graphFile is the YAML description of an input graph.
type graphFile struct {
	Name  string     `yaml:"name"`
	Funcs []funcSpec `yaml:"funcs"`
}

type funcSpec struct {
	Name    string      `yaml:"name"`
	Params  []valueSpec `yaml:"params"`
	Results []string    `yaml:"results"`
	Ops     []opSpec    `yaml:"ops"`
}

type valueSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type opSpec struct {
	Op      string         `yaml:"op"`
	Args    []string       `yaml:"args"`
	Attrs   map[string]any `yaml:"attrs"`
	Results []valueSpec    `yaml:"results"`
}

// loadGraph parses a YAML graph description into an ir module.
func loadGraph(data []byte) (*ir.Module, error) {
	var gf graphFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("malformed graph file").Cause(err).Build()
	}
	if gf.Name == "" {
		gf.Name = "main"
	}
	m := ir.NewModule(gf.Name)
	b := ir.NewBuilder(m)

	for _, fs := range gf.Funcs {
		ft := ir.FuncType{}
		for _, p := range fs.Params {
			t, err := parseType(p.Type)
			if err != nil {
				return nil, err
			}
			ft.Params = append(ft.Params, t)
		}
		for _, r := range fs.Results {
			t, err := parseType(r)
			if err != nil {
				return nil, err
			}
			ft.Results = append(ft.Results, t)
		}
		fn := b.Func(fs.Name, ft)
		scope := make(map[string]ir.ValueID)
		entry := ir.EntryBlock(fn)
		for i, p := range fs.Params {
			if p.Name == "" {
				return nil, errors.InvalidInput(errors.PhaseParse,
					"func %s: param %d has no name", fs.Name, i)
			}
			scope[p.Name] = entry.Args[i]
		}
		for _, os := range fs.Ops {
			if err := buildOp(b, scope, fs.Name, os); err != nil {
				return nil, err
			}
		}
	}
	if err := m.Verify(); err != nil {
		return nil, err
	}
	return m, nil
}

func buildOp(b *ir.Builder, scope map[string]ir.ValueID, fnName string, os opSpec) error {
	kind := ir.Kind(os.Op)
	if a, ok := hlo.ArityOf(kind); ok {
		if a.Operands >= 0 && len(os.Args) != a.Operands {
			return errors.InvalidInput(errors.PhaseParse,
				"func %s: %s takes %d operands, got %d", fnName, os.Op, a.Operands, len(os.Args))
		}
		if len(os.Results) != a.Results {
			return errors.InvalidInput(errors.PhaseParse,
				"func %s: %s produces %d results, got %d", fnName, os.Op, a.Results, len(os.Results))
		}
	}
	operands := make([]ir.ValueID, 0, len(os.Args))
	for _, name := range os.Args {
		v, ok := scope[name]
		if !ok {
			return errors.InvalidInput(errors.PhaseParse,
				"func %s: %s references unknown value %q", fnName, os.Op, name)
		}
		operands = append(operands, v)
	}
	resultTypes := make([]ir.Type, 0, len(os.Results))
	for _, r := range os.Results {
		t, err := parseType(r.Type)
		if err != nil {
			return err
		}
		resultTypes = append(resultTypes, t)
	}
	op := b.Op(kind, operands, resultTypes...)
	for k, v := range os.Attrs {
		op.SetAttr(k, v)
	}
	for i, r := range os.Results {
		if r.Name == "" {
			return errors.InvalidInput(errors.PhaseParse,
				"func %s: %s result %d has no name", fnName, os.Op, i)
		}
		scope[r.Name] = op.Results[i]
	}
	return nil
}

// parseType parses textual type spellings: "buffer<4x4xf32>",
// "gpurt.buffer<16xf32>", "stream", "chain", and scalar types like
// "f32".
func parseType(s string) (ir.Type, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return nil, errors.InvalidInput(errors.PhaseParse, "empty type")
	case "stream", "gpurt.stream":
		return gpurt.Stream{}, nil
	case "chain", "gpurt.chain":
		return gpurt.Chain{}, nil
	}
	if inner, ok := strip(s, "buffer<"); ok {
		elem, dims, err := parseShape(inner)
		if err != nil {
			return nil, err
		}
		return hlo.Buffer{Elem: elem, Dims: dims}, nil
	}
	if inner, ok := strip(s, "gpurt.buffer<"); ok {
		elem, dims, err := parseShape(inner)
		if err != nil {
			return nil, err
		}
		return gpurt.Buffer{Elem: elem, Dims: dims}, nil
	}
	if isScalarName(s) {
		return ir.Scalar{Elem: s}, nil
	}
	return nil, errors.InvalidInput(errors.PhaseParse, "unknown type %q", s)
}

func strip(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, ">") {
		return s[len(prefix) : len(s)-1], true
	}
	return "", false
}

func parseShape(s string) (elem string, dims []int64, err error) {
	parts := strings.Split(s, "x")
	elem = parts[len(parts)-1]
	if !isScalarName(elem) {
		return "", nil, errors.InvalidInput(errors.PhaseParse, "unknown element type %q", elem)
	}
	for _, p := range parts[:len(parts)-1] {
		d, perr := strconv.ParseInt(p, 10, 64)
		if perr != nil || d < 0 {
			return "", nil, errors.InvalidInput(errors.PhaseParse, "bad dimension %q", p)
		}
		dims = append(dims, d)
	}
	return elem, dims, nil
}

func isScalarName(s string) bool {
	switch s {
	case "f16", "f32", "f64", "i8", "i16", "i32", "i64", "c64", "c128":
		return true
	}
	return false
}
