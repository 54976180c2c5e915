package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/ir"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterStreamifyOps contributes the structural patterns for
// streamify regions themselves: converting captured block argument and
// result types, and re-threading the terminator's chain as body
// operations are lowered to chain-producing gpurt ops.
func RegisterStreamifyOps(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(lower.Pattern{
		Name:  "retype-streamify",
		Kinds: []ir.Kind{gpurt.KindStreamify},
		Matches: func(m *ir.Module, op *ir.Operation) bool {
			for _, r := range op.Results {
				if !conv.IsLegalType(m.ValueType(r)) {
					return true
				}
			}
			if body := ir.EntryBlock(op); body != nil {
				for _, a := range body.Args {
					if !conv.IsLegalType(m.ValueType(a)) {
						return true
					}
				}
			}
			return false
		},
		Benefit: 1,
		Rewrite: func(ctx *lower.RewriteContext, op *ir.Operation) error {
			for _, r := range op.Results {
				if err := ctx.ConvertValue(r); err != nil {
					return err
				}
			}
			if body := ir.EntryBlock(op); body != nil {
				for _, a := range body.Args {
					if err := ctx.ConvertValue(a); err != nil {
						return err
					}
				}
			}
			return nil
		},
	})

	reg.Add(lower.Pattern{
		Name:  "rechain-yield",
		Kinds: []ir.Kind{gpurt.KindYield},
		Matches: func(m *ir.Module, op *ir.Operation) bool {
			if len(op.Operands) == 0 {
				return false
			}
			live, err := lower.LiveChain(m, op)
			return err == nil && op.Operands[0] != live
		},
		Benefit: 0,
		Rewrite: func(ctx *lower.RewriteContext, op *ir.Operation) error {
			live, err := ctx.CurrentChain(op)
			if err != nil {
				return err
			}
			op.Operands[0] = live
			return nil
		},
	})
}
