package lower

import (
	"sort"

	"github.com/gpukit/hlo-lower/errors"
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/ir"
)

// RewriteFn transforms one matched operation. It emits replacement
// operations through the context and maps the old results to new
// values via ReplaceOp. Returning an error aborts this rewrite step
// and rolls back every mutation it made through the context; the
// driver then tries the next candidate pattern.
type RewriteFn func(ctx *RewriteContext, op *ir.Operation) error

// Pattern is a match-and-replace rule keyed to one or more operation
// kinds, with a declared benefit used by the driver's tie-break.
type Pattern struct {
	Name    string
	Kinds   []ir.Kind
	Matches func(m *ir.Module, op *ir.Operation) bool // optional extra predicate
	Benefit int
	Rewrite RewriteFn

	seq int
}

// Registry is an ordered collection of rewrite patterns. Providers
// append rules; the driver consumes them. The registry imposes no
// ordering requirement on providers, but registration order is
// remembered: it breaks benefit ties deterministically.
type Registry struct {
	patterns []Pattern
	byKind   map[ir.Kind][]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[ir.Kind][]int)}
}

// Add appends a pattern to the registry.
func (r *Registry) Add(p Pattern) {
	p.seq = len(r.patterns)
	r.patterns = append(r.patterns, p)
	for _, k := range p.Kinds {
		r.byKind[k] = append(r.byKind[k], p.seq)
	}
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int { return len(r.patterns) }

// Candidates returns the patterns matching a kind, ordered by benefit
// descending, then registration order ascending.
func (r *Registry) Candidates(kind ir.Kind) []*Pattern {
	idxs := r.byKind[kind]
	out := make([]*Pattern, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, &r.patterns[i])
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Benefit != out[b].Benefit {
			return out[a].Benefit > out[b].Benefit
		}
		return out[a].seq < out[b].seq
	})
	return out
}

// RewriteContext carries the mutable state of a single rewrite step.
//
// Erasures requested via ReplaceOp and EraseOp are deferred until the
// rewrite returns successfully; a rewrite that tries to use a value
// produced by an operation already scheduled for deletion in the same
// step fails with a StructuralViolation. Insertions, operand
// redirections, and value retypings made through the context are
// journaled, so a failing rewrite is rolled back in full and leaves no
// trace in the graph.
type RewriteContext struct {
	m         *ir.Module
	conv      *TypeConverter
	scheduled map[ir.OpID]bool

	created []ir.OpID
	retyped map[ir.ValueID]ir.Type
	rewired []rewiredUse
}

// rewiredUse records one operand slot redirected by ReplaceOp, with
// the value it held before.
type rewiredUse struct {
	op  ir.OpID
	idx int
	old ir.ValueID
}

func newRewriteContext(m *ir.Module, conv *TypeConverter) *RewriteContext {
	return &RewriteContext{
		m:         m,
		conv:      conv,
		scheduled: make(map[ir.OpID]bool),
		retyped:   make(map[ir.ValueID]ir.Type),
	}
}

// Module returns the module under rewrite.
func (c *RewriteContext) Module() *ir.Module { return c.m }

// Converter returns the pass's type converter.
func (c *RewriteContext) Converter() *TypeConverter { return c.conv }

// Convert maps a source type through the pass's type converter.
func (c *RewriteContext) Convert(t ir.Type) (ir.Type, error) {
	return c.conv.Convert(t)
}

// ConvertValue rewrites the type of a value through the type converter,
// in place. Converting an already-converted value is a no-op.
func (c *RewriteContext) ConvertValue(v ir.ValueID) error {
	t := c.m.ValueType(v)
	out, err := c.conv.Convert(t)
	if err != nil {
		return err
	}
	if _, seen := c.retyped[v]; !seen {
		c.retyped[v] = t
	}
	c.m.SetValueType(v, out)
	return nil
}

// InsertBefore creates a new operation immediately before pos in the
// same block. Operands produced by operations scheduled for deletion in
// this step are rejected.
func (c *RewriteContext) InsertBefore(pos *ir.Operation, kind ir.Kind, operands []ir.ValueID, resultTypes ...ir.Type) (*ir.Operation, error) {
	for _, o := range operands {
		v := c.m.Value(o)
		if v == nil {
			return nil, errors.StructuralViolation(errors.PhaseConvert,
				"operand %d does not exist", o)
		}
		if v.Def() != ir.NilOp && c.scheduled[v.Def()] {
			return nil, errors.StructuralViolation(errors.PhaseConvert,
				"operand %d is produced by an op scheduled for deletion", o)
		}
	}
	blk := pos.Block()
	if blk == nil {
		return nil, errors.StructuralViolation(errors.PhaseConvert,
			"cannot insert before module-level op %s", pos.Kind)
	}
	idx := 0
	for i, id := range blk.Ops {
		if id == pos.ID() {
			idx = i
			break
		}
	}
	op := c.m.NewOp(kind, operands, resultTypes)
	c.m.InsertOp(blk, pos.Parent(), idx, op)
	c.created = append(c.created, op.ID())
	return op, nil
}

// ReplaceOp maps each result of old to the corresponding new value and
// schedules old for deletion. newResults may be nil for zero-result
// operations.
func (c *RewriteContext) ReplaceOp(old *ir.Operation, newResults []ir.ValueID) error {
	if len(newResults) != len(old.Results) {
		return errors.StructuralViolation(errors.PhaseConvert,
			"replacement for %s maps %d results onto %d", old.Kind, len(newResults), len(old.Results))
	}
	for i, r := range old.Results {
		repl := newResults[i]
		c.m.Walk(func(user *ir.Operation) {
			for j, v := range user.Operands {
				if v == r {
					c.rewired = append(c.rewired, rewiredUse{op: user.ID(), idx: j, old: r})
					user.Operands[j] = repl
				}
			}
		})
	}
	c.scheduled[old.ID()] = true
	return nil
}

// EraseOp schedules an operation for deletion without replacing any
// results.
func (c *RewriteContext) EraseOp(op *ir.Operation) {
	c.scheduled[op.ID()] = true
}

// StreamChain returns the stream and chain block arguments of the
// streamify region enclosing op. Rules lowering streamed operations
// call this to thread the asynchronous execution context.
func (c *RewriteContext) StreamChain(op *ir.Operation) (stream, chain ir.ValueID, err error) {
	wrapper := c.m.EnclosingOfKind(op, gpurt.KindStreamify)
	if wrapper == nil {
		return ir.NilValue, ir.NilValue, errors.StructuralViolation(errors.PhaseConvert,
			"op %s needs async context but is not inside a streamify region", op.Kind)
	}
	body := ir.EntryBlock(wrapper)
	if body == nil || len(body.Args) < 2 {
		return ir.NilValue, ir.NilValue, errors.StructuralViolation(errors.PhaseConvert,
			"streamify region has no stream/chain block arguments")
	}
	return body.Args[0], body.Args[1], nil
}

// CurrentChain returns the chain token that orders op: the chain result
// of the nearest preceding operation in the same block, or the block's
// incoming chain argument.
func (c *RewriteContext) CurrentChain(op *ir.Operation) (ir.ValueID, error) {
	return LiveChain(c.m, op)
}

// LiveChain returns the chain token that orders op within its block:
// the chain result of the nearest preceding operation, or the block's
// incoming chain argument. Used both by rewrite rules and by the
// legality rule for streamify terminators.
func LiveChain(m *ir.Module, op *ir.Operation) (ir.ValueID, error) {
	blk := op.Block()
	if blk == nil {
		return ir.NilValue, errors.StructuralViolation(errors.PhaseConvert,
			"op %s is not inside a block", op.Kind)
	}
	idx := len(blk.Ops)
	for i, id := range blk.Ops {
		if id == op.ID() {
			idx = i
			break
		}
	}
	return chainBefore(m, blk, idx)
}

// chainBefore finds the live chain token at position idx of blk: the
// latest chain-typed result among blk.Ops[:idx], falling back to the
// block's chain argument.
func chainBefore(m *ir.Module, blk *ir.Block, idx int) (ir.ValueID, error) {
	for i := idx - 1; i >= 0; i-- {
		op := m.Op(blk.Ops[i])
		if op == nil {
			continue
		}
		for j := len(op.Results) - 1; j >= 0; j-- {
			if _, ok := m.ValueType(op.Results[j]).(gpurt.Chain); ok {
				return op.Results[j], nil
			}
		}
	}
	for _, a := range blk.Args {
		if _, ok := m.ValueType(a).(gpurt.Chain); ok {
			return a, nil
		}
	}
	return ir.NilValue, errors.NotFound(errors.PhaseConvert, "no chain token in scope")
}

// commit erases every operation scheduled for deletion. Called by the
// driver after the rewrite function returns successfully.
func (c *RewriteContext) commit() {
	for id := range c.scheduled {
		c.m.EraseOp(id)
	}
}

// discard rolls back everything the rewrite did through the context:
// redirected operands are restored, retyped values get their prior
// types back, and inserted operations are erased. Called by the driver
// when the rewrite function returns an error.
func (c *RewriteContext) discard() {
	for i := len(c.rewired) - 1; i >= 0; i-- {
		u := c.rewired[i]
		if op := c.m.Op(u.op); op != nil {
			op.Operands[u.idx] = u.old
		}
	}
	for v, t := range c.retyped {
		c.m.SetValueType(v, t)
	}
	for i := len(c.created) - 1; i >= 0; i-- {
		c.m.EraseOp(c.created[i])
	}
}
