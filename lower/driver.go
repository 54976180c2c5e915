package lower

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gpukit/hlo-lower/errors"
	"github.com/gpukit/hlo-lower/ir"
)

// Driver is the fixpoint conversion engine. It repeatedly selects
// operations that fail the legality target, applies the best matching
// pattern, and re-checks legality, until the graph is fully legal or no
// further progress is possible.
type Driver struct {
	m      *ir.Module
	target *Target
	reg    *Registry
	conv   *TypeConverter
}

// NewDriver creates a driver over m. The driver mutates m in place;
// callers wanting all-or-nothing semantics run it on a clone (see Run).
func NewDriver(m *ir.Module, target *Target, reg *Registry, conv *TypeConverter) *Driver {
	return &Driver{m: m, target: target, reg: reg, conv: conv}
}

// Run drives the conversion to a fixpoint.
//
// Returns nil when every operation satisfies the target. Returns a
// NoApplicablePattern error when an illegal operation remains with no
// applicable pattern (Stuck), or a NonTermination error when the
// rewrite step budget derived from graph and pattern size is exhausted.
func (d *Driver) Run() error {
	log := Logger()
	budget := (d.m.NumOps() + 1) * (d.reg.Len() + 1) * 8
	steps := 0

	for {
		illegal := d.collectIllegal()
		if len(illegal) == 0 {
			log.Debug("conversion reached legal state", zap.Int("steps", steps))
			return nil
		}

		progress := false
		var stuck []*ir.Operation
		gen := d.m.Generation()

		for _, id := range illegal {
			op := d.m.Op(id)
			if op == nil {
				// Erased by an earlier rewrite in this sweep.
				continue
			}
			// Legality can flip as operand types change; always re-check.
			if d.target.IsLegal(d.m, op) {
				continue
			}
			applied := d.tryRewrite(op)
			if !applied {
				stuck = append(stuck, op)
				continue
			}
			progress = true
			steps++
			if steps > budget {
				return errors.NonTermination(steps, string(op.Kind))
			}
			if d.m.Generation() != gen {
				// Structural change invalidates the worklist.
				break
			}
		}

		if !progress {
			return d.stuckError(stuck)
		}
	}
}

// collectIllegal returns the ids of all operations failing the target,
// in deterministic walk order.
func (d *Driver) collectIllegal() []ir.OpID {
	var out []ir.OpID
	d.m.Walk(func(op *ir.Operation) {
		if !d.target.IsLegal(d.m, op) {
			out = append(out, op.ID())
		}
	})
	return out
}

// tryRewrite applies the best applicable pattern to op. Pattern
// mismatches and failed rewrites are silent and local; the next
// candidate is tried.
func (d *Driver) tryRewrite(op *ir.Operation) bool {
	for _, p := range d.reg.Candidates(op.Kind) {
		if p.Matches != nil && !p.Matches(d.m, op) {
			continue
		}
		ctx := newRewriteContext(d.m, d.conv)
		if err := p.Rewrite(ctx, op); err != nil {
			ctx.discard()
			Logger().Debug("rewrite failed, trying next pattern",
				zap.String("pattern", p.Name),
				zap.String("op", string(op.Kind)),
				zap.Error(err))
			continue
		}
		ctx.commit()
		Logger().Debug("applied pattern",
			zap.String("pattern", p.Name),
			zap.String("op", string(op.Kind)))
		return true
	}
	return false
}

// stuckError reports the Stuck state, recording the first and last
// illegal operations for diagnostics.
func (d *Driver) stuckError(stuck []*ir.Operation) error {
	if len(stuck) == 0 {
		return errors.New(errors.PhaseConvert, errors.KindNoApplicablePattern).
			Detail("conversion made no progress").Build()
	}
	first := stuck[0]
	last := stuck[len(stuck)-1]
	if last == first {
		return errors.New(errors.PhaseConvert, errors.KindNoApplicablePattern).
			Op(string(first.Kind)).
			Detail("conversion stuck at %s", first.Kind).
			Build()
	}
	err := errors.New(errors.PhaseConvert, errors.KindNoApplicablePattern).
		Op(string(first.Kind)).
		Detail("conversion stuck with %d illegal operations, first %s, last %s",
			len(stuck), first.Kind, last.Kind).
		Build()
	return multierr.Append(err, errors.NoApplicablePattern(string(last.Kind)))
}
