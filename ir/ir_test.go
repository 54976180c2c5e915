package ir

import (
	"strings"
	"testing"
)

type bufType struct{ name string }

func (b bufType) Domain() Domain { return DomainSource }
func (b bufType) String() string { return b.name }

func TestModule_NewOpAndWalk(t *testing.T) {
	m := NewModule("test")
	fn := m.NewFunc("main", FuncType{Params: []Type{bufType{"buf<a>"}}})
	entry := EntryBlock(fn)
	if entry == nil {
		t.Fatal("func has no entry block")
	}
	if len(entry.Args) != 1 {
		t.Fatalf("entry args = %d, want 1", len(entry.Args))
	}

	op := m.NewOp("test.op", []ValueID{entry.Args[0]}, []Type{bufType{"buf<b>"}})
	m.AppendOp(entry, fn.ID(), op)

	var kinds []string
	m.Walk(func(o *Operation) { kinds = append(kinds, string(o.Kind)) })
	want := []string{"func.func", "test.op"}
	if len(kinds) != len(want) {
		t.Fatalf("walked %d ops, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("walk[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}

	if op.Parent() != fn.ID() {
		t.Errorf("parent = %d, want %d", op.Parent(), fn.ID())
	}
	if op.Block() != entry {
		t.Error("op not linked to its block")
	}
}

func TestModule_EraseOp(t *testing.T) {
	m := NewModule("test")
	fn := m.NewFunc("main", FuncType{})
	entry := EntryBlock(fn)

	op := m.NewOp("test.op", nil, []Type{bufType{"buf<a>"}})
	m.AppendOp(entry, fn.ID(), op)
	res := op.Results[0]

	gen := m.Generation()
	m.EraseOp(op.ID())

	if m.Op(op.ID()) != nil {
		t.Error("op still live after erase")
	}
	if m.Value(res) != nil {
		t.Error("result value still live after erase")
	}
	if len(entry.Ops) != 0 {
		t.Errorf("block still holds %d ops", len(entry.Ops))
	}
	if m.Generation() == gen {
		t.Error("generation not bumped by erase")
	}
}

func TestModule_EraseOpRecursive(t *testing.T) {
	m := NewModule("test")
	fn := m.NewFunc("main", FuncType{})
	entry := EntryBlock(fn)

	outer := m.NewOp("test.region", nil, nil)
	body := &Block{}
	arg := m.NewBlockArg(body, bufType{"buf<a>"})
	inner := m.NewOp("test.inner", []ValueID{arg}, nil)
	outer.Regions = []*Region{{Blocks: []*Block{body}}}
	m.AppendOp(entry, fn.ID(), outer)
	m.AppendOp(body, outer.ID(), inner)

	m.EraseOp(outer.ID())
	if m.Op(inner.ID()) != nil {
		t.Error("nested op survived erase of its owner")
	}
	if m.Value(arg) != nil {
		t.Error("block arg survived erase of its owner")
	}
}

func TestModule_ReplaceAllUses(t *testing.T) {
	m := NewModule("test")
	fn := m.NewFunc("main", FuncType{Params: []Type{bufType{"buf<a>"}, bufType{"buf<a>"}}})
	entry := EntryBlock(fn)
	a, b := entry.Args[0], entry.Args[1]

	op := m.NewOp("test.op", []ValueID{a, a}, nil)
	m.AppendOp(entry, fn.ID(), op)

	m.ReplaceAllUses(a, b)
	for i, o := range op.Operands {
		if o != b {
			t.Errorf("operand %d = %d, want %d", i, o, b)
		}
	}
	if users := m.UsersOf(a); len(users) != 0 {
		t.Errorf("old value still has %d users", len(users))
	}
}

func TestModule_Clone(t *testing.T) {
	m := NewModule("test")
	fn := m.NewFunc("main", FuncType{Params: []Type{bufType{"buf<a>"}}})
	entry := EntryBlock(fn)
	op := m.NewOp("test.op", []ValueID{entry.Args[0]}, []Type{bufType{"buf<b>"}})
	op.SetAttr("n", 3)
	m.AppendOp(entry, fn.ID(), op)

	c := m.Clone()
	if Print(c) != Print(m) {
		t.Fatal("clone prints differently from original")
	}

	// Mutating the clone must not affect the original.
	c.EraseOp(op.ID())
	if m.Op(op.ID()) == nil {
		t.Error("erasing in clone erased in original")
	}
	cop := c.Op(fn.ID())
	if cop == nil {
		t.Fatal("func missing in clone")
	}
	cop.SetAttr("extra", true)
	if m.Op(fn.ID()).Attr("extra") != nil {
		t.Error("attr written to clone leaked into original")
	}
}

func TestModule_Verify(t *testing.T) {
	t.Run("valid module", func(t *testing.T) {
		m := NewModule("test")
		fn := m.NewFunc("main", FuncType{Params: []Type{bufType{"buf<a>"}}})
		entry := EntryBlock(fn)
		op := m.NewOp("test.op", []ValueID{entry.Args[0]}, []Type{bufType{"buf<b>"}})
		m.AppendOp(entry, fn.ID(), op)
		use := m.NewOp("test.use", []ValueID{op.Results[0]}, nil)
		m.AppendOp(entry, fn.ID(), use)

		if err := m.Verify(); err != nil {
			t.Fatalf("Verify() = %v", err)
		}
	})

	t.Run("use before def", func(t *testing.T) {
		m := NewModule("test")
		fn := m.NewFunc("main", FuncType{})
		entry := EntryBlock(fn)
		def := m.NewOp("test.def", nil, []Type{bufType{"buf<a>"}})
		use := m.NewOp("test.use", []ValueID{def.Results[0]}, nil)
		m.AppendOp(entry, fn.ID(), use)
		m.AppendOp(entry, fn.ID(), def)

		err := m.Verify()
		if err == nil {
			t.Fatal("Verify accepted use before def")
		}
		if !strings.Contains(err.Error(), "before its definition") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("erased operand", func(t *testing.T) {
		m := NewModule("test")
		fn := m.NewFunc("main", FuncType{})
		entry := EntryBlock(fn)
		def := m.NewOp("test.def", nil, []Type{bufType{"buf<a>"}})
		m.AppendOp(entry, fn.ID(), def)
		use := m.NewOp("test.use", []ValueID{def.Results[0]}, nil)
		m.AppendOp(entry, fn.ID(), use)
		m.EraseOp(def.ID())

		if err := m.Verify(); err == nil {
			t.Fatal("Verify accepted erased operand")
		}
	})
}

func TestKind_Dialect(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{"hlo.gemm", "hlo"},
		{"gpurt.ccl.all_reduce", "gpurt"},
		{"func.func", "func"},
		{"standalone", "standalone"},
	}
	for _, tt := range tests {
		if got := tt.kind.Dialect(); got != tt.want {
			t.Errorf("Dialect(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestTypeEq(t *testing.T) {
	a := bufType{"buf<a>"}
	if !TypeEq(a, bufType{"buf<a>"}) {
		t.Error("equal types reported unequal")
	}
	if TypeEq(a, bufType{"buf<b>"}) {
		t.Error("unequal types reported equal")
	}
	if TypeEq(a, nil) {
		t.Error("nil comparison should be false")
	}
	if !TypeEq(nil, nil) {
		t.Error("nil == nil should hold")
	}
}

func TestEnclosingOfKind(t *testing.T) {
	m := NewModule("test")
	fn := m.NewFunc("main", FuncType{})
	entry := EntryBlock(fn)
	outer := m.NewOp("test.region", nil, nil)
	body := &Block{}
	outer.Regions = []*Region{{Blocks: []*Block{body}}}
	m.AppendOp(entry, fn.ID(), outer)
	inner := m.NewOp("test.inner", nil, nil)
	m.AppendOp(body, outer.ID(), inner)

	if got := m.EnclosingOfKind(inner, "test.region"); got != outer {
		t.Error("EnclosingOfKind did not find region op")
	}
	if got := m.EnclosingOfKind(inner, "func.func"); got != fn {
		t.Error("EnclosingOfKind did not climb to func")
	}
	if got := m.EnclosingOfKind(fn, "test.region"); got != nil {
		t.Error("EnclosingOfKind found ancestor for top-level op")
	}
	if !m.Ancestor(fn.ID(), inner) {
		t.Error("Ancestor(fn, inner) = false")
	}
	if m.Ancestor(inner.ID(), fn) {
		t.Error("Ancestor(inner, fn) = true")
	}
}
