package rules

import (
	"github.com/gpukit/hlo-lower/errors"
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/ir"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterCustomCall contributes the opaque-call lowering. The
// call_target attribute names the registered host symbol; a custom
// call without one cannot be lowered.
func RegisterCustomCall(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(lower.Pattern{
		Name:    "lower-custom-call",
		Kinds:   []ir.Kind{hlo.KindCustomCall},
		Benefit: 1,
		Rewrite: func(ctx *lower.RewriteContext, op *ir.Operation) error {
			if _, ok := op.Attr("call_target").(string); !ok {
				return errors.InvalidInput(errors.PhaseConvert,
					"custom call without call_target attribute")
			}
			return lowerStreamed(gpurt.KindCustomCall)(ctx, op)
		},
	})
}
