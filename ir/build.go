package ir

// Builder provides a convenient way to assemble a module: create a
// function, then append operations to its entry block.
type Builder struct {
	m     *Module
	blk   *Block
	owner OpID
}

// NewBuilder creates a builder for m with no insertion point.
func NewBuilder(m *Module) *Builder {
	return &Builder{m: m}
}

// Module returns the module under construction.
func (b *Builder) Module() *Module { return b.m }

// Func creates a function and moves the insertion point to its entry
// block. Returns the function operation.
func (b *Builder) Func(name string, ft FuncType) *Operation {
	fn := b.m.NewFunc(name, ft)
	b.blk = EntryBlock(fn)
	b.owner = fn.ID()
	return fn
}

// SetInsertion moves the insertion point to the end of blk, owned by
// the operation with id owner.
func (b *Builder) SetInsertion(blk *Block, owner OpID) {
	b.blk = blk
	b.owner = owner
}

// Block returns the current insertion block.
func (b *Builder) Block() *Block { return b.blk }

// Op creates an operation at the insertion point and returns it.
func (b *Builder) Op(kind Kind, operands []ValueID, resultTypes ...Type) *Operation {
	op := b.m.NewOp(kind, operands, resultTypes)
	b.m.AppendOp(b.blk, b.owner, op)
	return op
}

// Arg returns the i-th argument of the current insertion block.
func (b *Builder) Arg(i int) ValueID {
	return b.blk.Args[i]
}
