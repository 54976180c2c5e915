package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/ir"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterMemOps contributes the buf dialect lowerings. Memory ops
// manage handles directly and need no stream: views become gpurt.view
// handle arithmetic, allocations become runtime allocator calls.
func RegisterMemOps(reg *lower.Registry, conv *lower.TypeConverter) {
	retype := func(to ir.Kind) lower.RewriteFn {
		return func(ctx *lower.RewriteContext, op *ir.Operation) error {
			for _, v := range op.Operands {
				if err := ctx.ConvertValue(v); err != nil {
					return err
				}
			}
			resultTypes := make([]ir.Type, 0, len(op.Results))
			for _, r := range op.Results {
				t, err := ctx.Convert(ctx.Module().ValueType(r))
				if err != nil {
					return err
				}
				resultTypes = append(resultTypes, t)
			}
			newOp, err := ctx.InsertBefore(op, to, op.Operands, resultTypes...)
			if err != nil {
				return err
			}
			for k, v := range op.Attrs {
				newOp.SetAttr(k, v)
			}
			return ctx.ReplaceOp(op, newOp.Results)
		}
	}

	reg.Add(lower.Pattern{
		Name:    "lower-view",
		Kinds:   []ir.Kind{hlo.KindView, hlo.KindReinterpretCast},
		Benefit: 1,
		Rewrite: retype(gpurt.KindView),
	})
	reg.Add(lower.Pattern{
		Name:    "lower-alloc",
		Kinds:   []ir.Kind{hlo.KindAlloc, hlo.KindAlloca},
		Benefit: 1,
		Rewrite: retype(gpurt.KindAlloc),
	})
	reg.Add(lower.Pattern{
		Name:    "lower-dealloc",
		Kinds:   []ir.Kind{hlo.KindDealloc},
		Benefit: 1,
		Rewrite: retype(gpurt.KindDealloc),
	})
}
