package rules

import (
	"github.com/gpukit/hlo-lower/errors"
	"github.com/gpukit/hlo-lower/ir"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterFuncOps contributes the function boundary conversion: a
// func.func is rewritten in place so that its declared signature and
// its entry block arguments pass the type converter.
func RegisterFuncOps(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(lower.Pattern{
		Name:    "convert-func-signature",
		Kinds:   []ir.Kind{ir.KindFunc},
		Benefit: 1,
		Rewrite: func(ctx *lower.RewriteContext, op *ir.Operation) error {
			ft, ok := ir.FuncSignature(op)
			if !ok {
				return errors.InvalidInput(errors.PhaseConvert,
					"function %s has no signature attribute", ir.FuncName(op))
			}
			nft, err := ctx.Converter().ConvertSignature(ft)
			if err != nil {
				return err
			}
			ir.SetFuncSignature(op, nft)
			if entry := ir.EntryBlock(op); entry != nil {
				for _, a := range entry.Args {
					if err := ctx.ConvertValue(a); err != nil {
						return err
					}
				}
			}
			return nil
		},
	})
}
