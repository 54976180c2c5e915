package ir

import (
	"fmt"
)

// OpID addresses an operation in the module arena.
type OpID uint32

// ValueID addresses a value in the module arena.
type ValueID uint32

// NilOp is the zero OpID; it never addresses a live operation.
const NilOp OpID = 0

// NilValue is the zero ValueID; it never addresses a live value.
const NilValue ValueID = 0

// Operation is a node in the graph: a kind tag, ordered operands and
// results, optional nested regions, and optional attributes.
type Operation struct {
	Kind     Kind
	Operands []ValueID
	Results  []ValueID
	Regions  []*Region
	Attrs    map[string]any

	id     OpID
	parent OpID
	blk    *Block
}

// ID returns the operation's arena id.
func (o *Operation) ID() OpID { return o.id }

// Parent returns the id of the enclosing operation, or NilOp for
// module-level operations.
func (o *Operation) Parent() OpID { return o.parent }

// Block returns the block containing this operation, or nil for
// module-level operations.
func (o *Operation) Block() *Block { return o.blk }

// Attr returns the named attribute or nil.
func (o *Operation) Attr(name string) any {
	if o.Attrs == nil {
		return nil
	}
	return o.Attrs[name]
}

// SetAttr sets the named attribute.
func (o *Operation) SetAttr(name string, v any) {
	if o.Attrs == nil {
		o.Attrs = make(map[string]any)
	}
	o.Attrs[name] = v
}

// Region is an ordered sequence of blocks owned by its parent operation.
type Region struct {
	Blocks []*Block
}

// Block is an ordered sequence of operations with optional block
// arguments bound by the enclosing operation.
type Block struct {
	Args []ValueID
	Ops  []OpID
}

// Value is a typed data-flow edge with exactly one producer: either an
// operation result or a block argument.
type Value struct {
	id  ValueID
	typ Type
	def OpID // producing operation; NilOp for block arguments
}

// ID returns the value's arena id.
func (v *Value) ID() ValueID { return v.id }

// Type returns the value's current type.
func (v *Value) Type() Type { return v.typ }

// Def returns the producing operation, or NilOp for block arguments.
func (v *Value) Def() OpID { return v.def }

// IsBlockArg reports whether the value is a block argument.
func (v *Value) IsBlockArg() bool { return v.def == NilOp }

// Module owns the operation and value arenas and the list of
// module-level operations.
type Module struct {
	Name string

	ops  map[OpID]*Operation
	vals map[ValueID]*Value
	top  []OpID

	nextOp  OpID
	nextVal ValueID
	gen     uint64
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name: name,
		ops:  make(map[OpID]*Operation),
		vals: make(map[ValueID]*Value),
	}
}

// Op returns the operation for id, or nil if it has been erased.
func (m *Module) Op(id OpID) *Operation { return m.ops[id] }

// Value returns the value for id, or nil if it has been erased.
func (m *Module) Value(id ValueID) *Value { return m.vals[id] }

// ValueType returns the type of a value, or nil for an unknown id.
func (m *Module) ValueType(id ValueID) Type {
	if v := m.vals[id]; v != nil {
		return v.typ
	}
	return nil
}

// SetValueType rewrites the type of a value in place.
func (m *Module) SetValueType(id ValueID, t Type) {
	if v := m.vals[id]; v != nil {
		v.typ = t
	}
}

// TopLevel returns the ids of module-level operations in order.
func (m *Module) TopLevel() []OpID { return m.top }

// Generation returns the structural generation counter. It is bumped on
// every insertion, move, or erasure, so callers can detect staleness of
// previously collected op id lists.
func (m *Module) Generation() uint64 { return m.gen }

// NumOps returns the number of live operations.
func (m *Module) NumOps() int { return len(m.ops) }

// NewOp creates a detached operation with fresh result values of the
// given types. The operation must then be attached with AppendTop,
// AppendOp, or InsertOp.
func (m *Module) NewOp(kind Kind, operands []ValueID, resultTypes []Type) *Operation {
	m.nextOp++
	op := &Operation{
		Kind:     kind,
		Operands: append([]ValueID(nil), operands...),
		id:       m.nextOp,
	}
	for _, t := range resultTypes {
		op.Results = append(op.Results, m.newValue(t, op.id))
	}
	m.ops[op.id] = op
	return op
}

func (m *Module) newValue(t Type, def OpID) ValueID {
	m.nextVal++
	m.vals[m.nextVal] = &Value{id: m.nextVal, typ: t, def: def}
	return m.nextVal
}

// NewBlockArg appends a fresh block argument of the given type to blk.
func (m *Module) NewBlockArg(blk *Block, t Type) ValueID {
	id := m.newValue(t, NilOp)
	blk.Args = append(blk.Args, id)
	m.gen++
	return id
}

// AppendTop attaches a detached operation at module level.
func (m *Module) AppendTop(op *Operation) {
	op.parent = NilOp
	op.blk = nil
	m.top = append(m.top, op.id)
	m.gen++
}

// AppendOp attaches a detached operation at the end of blk, owned by
// the operation with id owner.
func (m *Module) AppendOp(blk *Block, owner OpID, op *Operation) {
	m.InsertOp(blk, owner, len(blk.Ops), op)
}

// InsertOp attaches a detached operation into blk at index idx.
func (m *Module) InsertOp(blk *Block, owner OpID, idx int, op *Operation) {
	op.parent = owner
	op.blk = blk
	blk.Ops = append(blk.Ops, NilOp)
	copy(blk.Ops[idx+1:], blk.Ops[idx:])
	blk.Ops[idx] = op.id
	m.gen++
}

// RemoveFromBlock detaches op from its block without erasing it. The
// caller is expected to re-attach it (region wrapping) or erase it.
func (m *Module) RemoveFromBlock(op *Operation) {
	if op.blk == nil {
		return
	}
	ops := op.blk.Ops
	for i, id := range ops {
		if id == op.id {
			op.blk.Ops = append(ops[:i], ops[i+1:]...)
			break
		}
	}
	op.blk = nil
	op.parent = NilOp
	m.gen++
}

// EraseOp deletes an operation, its result values, and recursively
// every operation in its nested regions. The op is removed from its
// containing block or the module top level.
func (m *Module) EraseOp(id OpID) {
	op := m.ops[id]
	if op == nil {
		return
	}
	for _, r := range op.Regions {
		for _, b := range r.Blocks {
			for _, a := range b.Args {
				delete(m.vals, a)
			}
			// Copy: nested EraseOp edits the block's op list.
			nested := append([]OpID(nil), b.Ops...)
			for _, c := range nested {
				m.EraseOp(c)
			}
		}
	}
	if op.blk != nil {
		m.RemoveFromBlock(op)
	} else {
		for i, t := range m.top {
			if t == id {
				m.top = append(m.top[:i], m.top[i+1:]...)
				break
			}
		}
	}
	for _, r := range op.Results {
		delete(m.vals, r)
	}
	delete(m.ops, id)
	m.gen++
}

// ReplaceAllUses rewrites every operand reference of old to new across
// the module.
func (m *Module) ReplaceAllUses(old, new ValueID) {
	m.Walk(func(op *Operation) {
		for i, v := range op.Operands {
			if v == old {
				op.Operands[i] = new
			}
		}
	})
}

// UsersOf returns the ids of operations that reference v as an operand,
// in deterministic walk order.
func (m *Module) UsersOf(v ValueID) []OpID {
	var users []OpID
	m.Walk(func(op *Operation) {
		for _, o := range op.Operands {
			if o == v {
				users = append(users, op.id)
				break
			}
		}
	})
	return users
}

// Walk visits every operation in the module in preorder: module-level
// operations in order, then recursively the operations of their
// regions.
func (m *Module) Walk(fn func(*Operation)) {
	for _, id := range append([]OpID(nil), m.top...) {
		if op := m.ops[id]; op != nil {
			m.walkOp(op, fn)
		}
	}
}

// WalkFrom visits op and every operation nested in its regions in
// preorder.
func (m *Module) WalkFrom(op *Operation, fn func(*Operation)) {
	m.walkOp(op, fn)
}

func (m *Module) walkOp(op *Operation, fn func(*Operation)) {
	fn(op)
	for _, r := range op.Regions {
		for _, b := range r.Blocks {
			for _, id := range append([]OpID(nil), b.Ops...) {
				if child := m.ops[id]; child != nil {
					m.walkOp(child, fn)
				}
			}
		}
	}
}

// WalkBlocks visits every block in the module along with its owning
// operation, in preorder.
func (m *Module) WalkBlocks(fn func(owner *Operation, blk *Block)) {
	m.Walk(func(op *Operation) {
		for _, r := range op.Regions {
			for _, b := range r.Blocks {
				fn(op, b)
			}
		}
	})
}

// Ancestor reports whether anc encloses op (directly or transitively).
func (m *Module) Ancestor(anc OpID, op *Operation) bool {
	for p := op.parent; p != NilOp; {
		if p == anc {
			return true
		}
		parent := m.ops[p]
		if parent == nil {
			return false
		}
		p = parent.parent
	}
	return false
}

// EnclosingOfKind returns the nearest enclosing operation of the given
// kind, or nil.
func (m *Module) EnclosingOfKind(op *Operation, kind Kind) *Operation {
	for p := op.parent; p != NilOp; {
		parent := m.ops[p]
		if parent == nil {
			return nil
		}
		if parent.Kind == kind {
			return parent
		}
		p = parent.parent
	}
	return nil
}

func (m *Module) String() string {
	return fmt.Sprintf("module %q (%d ops)", m.Name, len(m.ops))
}
