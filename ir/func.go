package ir

// Function dialect kinds. Functions are ordinary operations carrying a
// symbol name and signature as attributes plus a single body region.
const (
	KindFunc   Kind = "func.func"
	KindCall   Kind = "func.call"
	KindReturn Kind = "func.return"
)

// Attribute names used by function operations.
const (
	AttrSymName  = "sym_name"
	AttrFuncType = "type"
	AttrCallee   = "callee"
)

// NewFunc creates a function operation with a single entry block whose
// arguments mirror the signature parameters, and attaches it at module
// level.
func (m *Module) NewFunc(name string, ft FuncType) *Operation {
	op := m.NewOp(KindFunc, nil, nil)
	op.SetAttr(AttrSymName, name)
	op.SetAttr(AttrFuncType, ft)
	entry := &Block{}
	for _, p := range ft.Params {
		m.NewBlockArg(entry, p)
	}
	op.Regions = []*Region{{Blocks: []*Block{entry}}}
	m.AppendTop(op)
	return op
}

// FuncName returns the symbol name of a function operation.
func FuncName(op *Operation) string {
	if s, ok := op.Attr(AttrSymName).(string); ok {
		return s
	}
	return ""
}

// FuncSignature returns the signature of a function operation.
func FuncSignature(op *Operation) (FuncType, bool) {
	ft, ok := op.Attr(AttrFuncType).(FuncType)
	return ft, ok
}

// SetFuncSignature rewrites the signature of a function operation.
func SetFuncSignature(op *Operation, ft FuncType) {
	op.SetAttr(AttrFuncType, ft)
}

// EntryBlock returns the first block of the operation's first region,
// or nil if the operation has no regions.
func EntryBlock(op *Operation) *Block {
	if len(op.Regions) == 0 || len(op.Regions[0].Blocks) == 0 {
		return nil
	}
	return op.Regions[0].Blocks[0]
}

// FindFunc returns the module-level function with the given symbol
// name, or nil.
func (m *Module) FindFunc(name string) *Operation {
	for _, id := range m.top {
		op := m.ops[id]
		if op != nil && op.Kind == KindFunc && FuncName(op) == name {
			return op
		}
	}
	return nil
}
