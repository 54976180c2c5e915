package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/ir"
	"github.com/gpukit/hlo-lower/lower"
)

// lowerStreamed builds the common rewrite for buffer operations that
// lower to a streamed gpurt execution op: convert the buffer operands,
// append the enclosing region's stream and the live chain, and produce
// a fresh chain result. Attributes carry over unchanged.
func lowerStreamed(target ir.Kind) lower.RewriteFn {
	return func(ctx *lower.RewriteContext, op *ir.Operation) error {
		stream, _, err := ctx.StreamChain(op)
		if err != nil {
			return err
		}
		chain, err := ctx.CurrentChain(op)
		if err != nil {
			return err
		}
		for _, v := range op.Operands {
			if err := ctx.ConvertValue(v); err != nil {
				return err
			}
		}
		operands := make([]ir.ValueID, 0, len(op.Operands)+2)
		operands = append(operands, op.Operands...)
		operands = append(operands, stream, chain)
		newOp, err := ctx.InsertBefore(op, target, operands, gpurt.Chain{})
		if err != nil {
			return err
		}
		for k, v := range op.Attrs {
			newOp.SetAttr(k, v)
		}
		return ctx.ReplaceOp(op, nil)
	}
}

// streamedPattern is a convenience for the single-kind streamed case.
func streamedPattern(name string, from, to ir.Kind) lower.Pattern {
	return lower.Pattern{
		Name:    name,
		Kinds:   []ir.Kind{from},
		Benefit: 1,
		Rewrite: lowerStreamed(to),
	}
}
