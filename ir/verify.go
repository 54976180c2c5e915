package ir

import (
	"github.com/gpukit/hlo-lower/errors"
)

// Verify checks the module's structural invariants:
//
//   - every operand references a live value
//   - every operand is visible at its use: defined by a block argument
//     of an enclosing region or by an earlier operation in an enclosing
//     scope (this also rules out def-use cycles within a block)
//   - every value has a type
//
// Returns a StructuralViolation error for the first violation found.
func (m *Module) Verify() error {
	visible := make(map[ValueID]bool)
	for _, id := range m.top {
		op := m.ops[id]
		if op == nil {
			return errors.StructuralViolation(errors.PhaseVerify, "module references erased op %d", id)
		}
		if err := m.verifyOp(op, visible); err != nil {
			return err
		}
		for _, res := range op.Results {
			visible[res] = true
		}
	}
	return nil
}

func (m *Module) verifyOp(op *Operation, visible map[ValueID]bool) error {
	for _, o := range op.Operands {
		v := m.vals[o]
		if v == nil {
			return errors.StructuralViolation(errors.PhaseVerify,
				"op %s references erased value %d", op.Kind, o)
		}
		if v.typ == nil {
			return errors.StructuralViolation(errors.PhaseVerify,
				"op %s operand %d has no type", op.Kind, o)
		}
		if !visible[o] {
			return errors.StructuralViolation(errors.PhaseVerify,
				"op %s uses value %d before its definition", op.Kind, o)
		}
	}
	for _, r := range op.Regions {
		for _, b := range r.Blocks {
			added := make([]ValueID, 0, len(b.Args))
			for _, a := range b.Args {
				if m.vals[a] == nil {
					return errors.StructuralViolation(errors.PhaseVerify,
						"op %s block arg %d erased", op.Kind, a)
				}
				if !visible[a] {
					visible[a] = true
					added = append(added, a)
				}
			}
			for _, id := range b.Ops {
				child := m.ops[id]
				if child == nil {
					return errors.StructuralViolation(errors.PhaseVerify,
						"block in %s references erased op %d", op.Kind, id)
				}
				if err := m.verifyOp(child, visible); err != nil {
					return err
				}
				for _, res := range child.Results {
					if !visible[res] {
						visible[res] = true
						added = append(added, res)
					}
				}
			}
			// Block scope ends; results stay visible only for wrapper
			// results threaded out explicitly, which are op results of
			// the owner, not of body ops.
			for _, a := range added {
				delete(visible, a)
			}
		}
	}
	return nil
}
