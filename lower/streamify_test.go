package lower

import (
	"testing"

	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/ir"
)

func f32buf(dims ...int64) hlo.Buffer {
	return hlo.Buffer{Elem: "f32", Dims: dims}
}

func TestStreamify_WrapsContiguousRun(t *testing.T) {
	m := ir.NewModule("t")
	fn := m.NewFunc("main", ir.FuncType{Params: []ir.Type{f32buf(4, 4)}})
	entry := ir.EntryBlock(fn)
	a := entry.Args[0]

	view := m.NewOp(hlo.KindView, []ir.ValueID{a}, []ir.Type{f32buf(4)})
	m.AppendOp(entry, fn.ID(), view)
	gemm := m.NewOp(hlo.KindGemm, []ir.ValueID{a, a, view.Results[0]}, nil)
	m.AppendOp(entry, fn.ID(), gemm)
	chol := m.NewOp(hlo.KindCholesky, []ir.ValueID{a, view.Results[0]}, nil)
	m.AppendOp(entry, fn.ID(), chol)
	fft := m.NewOp(hlo.KindFft, []ir.ValueID{a, view.Results[0]}, nil)
	m.AppendOp(entry, fn.ID(), fft)
	dealloc := m.NewOp(hlo.KindDealloc, []ir.ValueID{view.Results[0]}, nil)
	m.AppendOp(entry, fn.ID(), dealloc)

	if err := NewStreamify(DefaultWrapTarget()).Apply(m); err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if err := m.Verify(); err != nil {
		t.Fatalf("module invalid after wrapping: %v", err)
	}

	// buf.view and buf.dealloc are not claimed; the three async ops in
	// between collapse into one wrapper.
	if len(entry.Ops) != 3 {
		t.Fatalf("entry has %d ops, want 3:\n%s", len(entry.Ops), ir.Print(m))
	}
	wrapper := m.Op(entry.Ops[1])
	if wrapper.Kind != gpurt.KindStreamify {
		t.Fatalf("middle op is %s, want streamify", wrapper.Kind)
	}

	body := ir.EntryBlock(wrapper)
	if len(body.Args) < 2 {
		t.Fatal("body has no stream/chain arguments")
	}
	if _, ok := m.ValueType(body.Args[0]).(gpurt.Stream); !ok {
		t.Errorf("body arg 0 is %s, want stream", m.ValueType(body.Args[0]))
	}
	if _, ok := m.ValueType(body.Args[1]).(gpurt.Chain); !ok {
		t.Errorf("body arg 1 is %s, want chain", m.ValueType(body.Args[1]))
	}

	// Captured in first-use order: a, then the view result.
	wantCaptured := []ir.ValueID{a, view.Results[0]}
	if len(wrapper.Operands) != len(wantCaptured) {
		t.Fatalf("wrapper captures %d values, want %d", len(wrapper.Operands), len(wantCaptured))
	}
	for i, v := range wantCaptured {
		if wrapper.Operands[i] != v {
			t.Errorf("captured[%d] = %d, want %d", i, wrapper.Operands[i], v)
		}
	}

	// Order preserved, terminator appended.
	wantKinds := []ir.Kind{hlo.KindGemm, hlo.KindCholesky, hlo.KindFft, gpurt.KindYield}
	if len(body.Ops) != len(wantKinds) {
		t.Fatalf("body has %d ops, want %d", len(body.Ops), len(wantKinds))
	}
	for i, id := range body.Ops {
		if got := m.Op(id).Kind; got != wantKinds[i] {
			t.Errorf("body[%d] = %s, want %s", i, got, wantKinds[i])
		}
	}

	// Wrapped ops read the captured block arguments, not the originals.
	wrappedGemm := m.Op(body.Ops[0])
	for i, v := range wrappedGemm.Operands {
		if v == a || v == view.Results[0] {
			t.Errorf("wrapped gemm operand %d still reads an outside value", i)
		}
	}

	// The terminator forwards the incoming chain.
	yield := m.Op(body.Ops[len(body.Ops)-1])
	if len(yield.Operands) != 1 || yield.Operands[0] != body.Args[1] {
		t.Error("yield does not forward the chain block argument")
	}
}

func TestStreamify_EscapingResult(t *testing.T) {
	m := ir.NewModule("t")
	fn := m.NewFunc("main", ir.FuncType{Params: []ir.Type{f32buf(4)}})
	entry := ir.EntryBlock(fn)
	a := entry.Args[0]

	load := m.NewOp(hlo.KindLoad, []ir.ValueID{a}, []ir.Type{ir.Scalar{Elem: "f32"}})
	m.AppendOp(entry, fn.ID(), load)
	ret := m.NewOp(ir.KindReturn, []ir.ValueID{load.Results[0]}, nil)
	m.AppendOp(entry, fn.ID(), ret)

	if err := NewStreamify(DefaultWrapTarget()).Apply(m); err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if err := m.Verify(); err != nil {
		t.Fatalf("module invalid after wrapping: %v", err)
	}

	wrapper := m.Op(entry.Ops[0])
	if wrapper.Kind != gpurt.KindStreamify {
		t.Fatalf("first op is %s, want streamify", wrapper.Kind)
	}
	// Results: leading chain plus the escaping scalar.
	if len(wrapper.Results) != 2 {
		t.Fatalf("wrapper has %d results, want 2", len(wrapper.Results))
	}
	if _, ok := m.ValueType(wrapper.Results[0]).(gpurt.Chain); !ok {
		t.Error("wrapper result 0 is not a chain")
	}
	if !ir.TypeEq(m.ValueType(wrapper.Results[1]), ir.Scalar{Elem: "f32"}) {
		t.Errorf("wrapper result 1 is %s, want f32", m.ValueType(wrapper.Results[1]))
	}

	// The outside user now reads the wrapper result.
	retOp := m.Op(entry.Ops[1])
	if retOp.Operands[0] != wrapper.Results[1] {
		t.Error("return still reads the wrapped load's result")
	}

	// The terminator yields chain plus the escaping value.
	body := ir.EntryBlock(wrapper)
	yield := m.Op(body.Ops[len(body.Ops)-1])
	if len(yield.Operands) != 2 {
		t.Fatalf("yield has %d operands, want 2", len(yield.Operands))
	}
	if yield.Operands[1] != m.Op(body.Ops[0]).Results[0] {
		t.Error("yield does not forward the escaping result")
	}
}

func TestStreamify_SeparateRuns(t *testing.T) {
	m := ir.NewModule("t")
	fn := m.NewFunc("main", ir.FuncType{Params: []ir.Type{f32buf(4)}})
	entry := ir.EntryBlock(fn)
	a := entry.Args[0]

	first := m.NewOp(hlo.KindAllReduce, []ir.ValueID{a}, nil)
	m.AppendOp(entry, fn.ID(), first)
	barrier := m.NewOp(hlo.KindDealloc, []ir.ValueID{a}, nil)
	m.AppendOp(entry, fn.ID(), barrier)
	second := m.NewOp(hlo.KindAllGather, []ir.ValueID{a}, nil)
	m.AppendOp(entry, fn.ID(), second)

	if err := NewStreamify(DefaultWrapTarget()).Apply(m); err != nil {
		t.Fatalf("Apply() = %v", err)
	}

	var wrappers int
	m.Walk(func(op *ir.Operation) {
		if op.Kind == gpurt.KindStreamify {
			wrappers++
		}
	})
	if wrappers != 2 {
		t.Fatalf("got %d streamify regions, want 2 (runs split by unclaimed op):\n%s",
			wrappers, ir.Print(m))
	}
}

func TestStreamify_LeavesUnclaimedAlone(t *testing.T) {
	m := ir.NewModule("t")
	fn := m.NewFunc("main", ir.FuncType{Params: []ir.Type{f32buf(4)}})
	entry := ir.EntryBlock(fn)

	view := m.NewOp(hlo.KindView, []ir.ValueID{entry.Args[0]}, []ir.Type{f32buf(2)})
	m.AppendOp(entry, fn.ID(), view)
	ret := m.NewOp(ir.KindReturn, nil, nil)
	m.AppendOp(entry, fn.ID(), ret)

	before := ir.Print(m)
	if err := NewStreamify(DefaultWrapTarget()).Apply(m); err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if got := ir.Print(m); got != before {
		t.Errorf("module changed without any claimed op:\nbefore:\n%safter:\n%s", before, got)
	}
}

func TestStreamify_SkipsExistingRegions(t *testing.T) {
	m := ir.NewModule("t")
	fn := m.NewFunc("main", ir.FuncType{Params: []ir.Type{f32buf(4)}})
	entry := ir.EntryBlock(fn)
	a := entry.Args[0]

	gemm := m.NewOp(hlo.KindGemm, []ir.ValueID{a, a, a}, nil)
	m.AppendOp(entry, fn.ID(), gemm)
	if err := NewStreamify(DefaultWrapTarget()).Apply(m); err != nil {
		t.Fatalf("first Apply() = %v", err)
	}
	once := ir.Print(m)

	// Idempotent: already-wrapped bodies are not wrapped again.
	if err := NewStreamify(DefaultWrapTarget()).Apply(m); err != nil {
		t.Fatalf("second Apply() = %v", err)
	}
	if got := ir.Print(m); got != once {
		t.Errorf("second Apply changed the module:\n%s", got)
	}
}
