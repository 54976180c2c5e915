package lower

import (
	"go.uber.org/zap"

	"github.com/gpukit/hlo-lower/errors"
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/ir"
)

// Streamify is the region-wrapping pre-pass. It identifies operations
// whose kinds are claimed by the wrap target but are not already part
// of the destination vocabulary, groups maximal contiguous runs of them
// within each block, and replaces each run with one gpurt.streamify
// operation whose body region receives stream and chain block
// arguments.
//
// Wrapping preserves the relative order of the wrapped operations and
// every def-use edge crossing the wrap boundary: external values used
// inside become wrapper operands threaded through captured block
// arguments, and inside values used outside become wrapper results.
type Streamify struct {
	wrapTarget *Target
}

// NewStreamify creates the wrapper for a given wrap target.
func NewStreamify(wrapTarget *Target) *Streamify {
	return &Streamify{wrapTarget: wrapTarget}
}

// needsWrap reports whether an operation must move into a streamify
// region. Operations already in the destination vocabulary manage their
// own asynchronous context and are never wrapped.
func (s *Streamify) needsWrap(op *ir.Operation) bool {
	if op.Kind.Dialect() == gpurt.Dialect {
		return false
	}
	return s.wrapTarget.HasKind(op.Kind)
}

// Apply restructures the module in place. It must run before the
// conversion driver.
func (s *Streamify) Apply(m *ir.Module) error {
	type runLoc struct {
		owner      *ir.Operation
		blk        *ir.Block
		start, end int // inclusive indices into blk.Ops
	}
	var runs []runLoc

	m.WalkBlocks(func(owner *ir.Operation, blk *ir.Block) {
		if owner.Kind == gpurt.KindStreamify {
			return
		}
		start := -1
		for i, id := range blk.Ops {
			op := m.Op(id)
			if op != nil && s.needsWrap(op) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				runs = append(runs, runLoc{owner: owner, blk: blk, start: start, end: i - 1})
				start = -1
			}
		}
		if start >= 0 {
			runs = append(runs, runLoc{owner: owner, blk: blk, start: start, end: len(blk.Ops) - 1})
		}
	})

	// Wrap back to front so earlier run indices stay valid.
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		if err := s.wrapRun(m, r.owner, r.blk, r.start, r.end); err != nil {
			return err
		}
	}
	return nil
}

func (s *Streamify) wrapRun(m *ir.Module, owner *ir.Operation, blk *ir.Block, start, end int) error {
	run := make([]*ir.Operation, 0, end-start+1)
	for _, id := range blk.Ops[start : end+1] {
		op := m.Op(id)
		if op == nil {
			return errors.StructuralViolation(errors.PhaseWrap, "run references erased op %d", id)
		}
		if op.Kind.Dialect() == gpurt.Dialect {
			return errors.StructuralViolation(errors.PhaseWrap,
				"refusing to wrap already-legal op %s", op.Kind)
		}
		run = append(run, op)
	}

	// Values defined anywhere inside the run, including nested regions.
	inside := make(map[ir.ValueID]bool)
	for _, op := range run {
		m.WalkFrom(op, func(o *ir.Operation) {
			for _, res := range o.Results {
				inside[res] = true
			}
			for _, reg := range o.Regions {
				for _, b := range reg.Blocks {
					for _, a := range b.Args {
						inside[a] = true
					}
				}
			}
		})
	}

	// Captured: external values used by run ops, in first-use order.
	var captured []ir.ValueID
	seen := make(map[ir.ValueID]bool)
	for _, op := range run {
		m.WalkFrom(op, func(o *ir.Operation) {
			for _, v := range o.Operands {
				if !inside[v] && !seen[v] {
					seen[v] = true
					captured = append(captured, v)
				}
			}
		})
	}

	// Escaping: run results with at least one user outside the run.
	var escaping []ir.ValueID
	for _, op := range run {
		for _, res := range op.Results {
			for _, userID := range m.UsersOf(res) {
				user := m.Op(userID)
				if user == nil {
					continue
				}
				insideRun := false
				for _, r := range run {
					if user == r || m.Ancestor(r.ID(), user) {
						insideRun = true
						break
					}
				}
				if !insideRun {
					escaping = append(escaping, res)
					break
				}
			}
		}
	}

	resultTypes := make([]ir.Type, 0, len(escaping)+1)
	resultTypes = append(resultTypes, gpurt.Chain{})
	for _, v := range escaping {
		resultTypes = append(resultTypes, m.ValueType(v))
	}

	wrapper := m.NewOp(gpurt.KindStreamify, captured, resultTypes)
	body := &ir.Block{}
	m.NewBlockArg(body, gpurt.Stream{})
	chainArg := m.NewBlockArg(body, gpurt.Chain{})
	argFor := make(map[ir.ValueID]ir.ValueID, len(captured))
	for _, v := range captured {
		argFor[v] = m.NewBlockArg(body, m.ValueType(v))
	}
	wrapper.Regions = []*ir.Region{{Blocks: []*ir.Block{body}}}

	for _, op := range run {
		m.RemoveFromBlock(op)
	}
	m.InsertOp(blk, owner.ID(), start, wrapper)
	for _, op := range run {
		m.AppendOp(body, wrapper.ID(), op)
	}

	// Captured uses inside the body read the block arguments instead.
	m.WalkFrom(wrapper, func(o *ir.Operation) {
		if o == wrapper {
			return
		}
		for i, v := range o.Operands {
			if arg, ok := argFor[v]; ok {
				o.Operands[i] = arg
			}
		}
	})

	// External uses of escaping values read the wrapper's results.
	for i, v := range escaping {
		s.replaceUsesOutside(m, wrapper.ID(), v, wrapper.Results[i+1])
	}

	yieldOperands := append([]ir.ValueID{chainArg}, escaping...)
	yield := m.NewOp(gpurt.KindYield, yieldOperands, nil)
	m.AppendOp(body, wrapper.ID(), yield)

	Logger().Debug("wrapped run in streamify region",
		zap.Int("ops", len(run)),
		zap.Int("captured", len(captured)),
		zap.Int("escaping", len(escaping)))
	return nil
}

// replaceUsesOutside rewrites uses of old to new in every operation not
// nested inside the wrapper.
func (s *Streamify) replaceUsesOutside(m *ir.Module, wrapper ir.OpID, old, new ir.ValueID) {
	m.Walk(func(op *ir.Operation) {
		if op.ID() == wrapper || m.Ancestor(wrapper, op) {
			return
		}
		for i, v := range op.Operands {
			if v == old {
				op.Operands[i] = new
			}
		}
	})
}
