package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/ir"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterGemm contributes the matrix-multiply lowering. hlo.gemm
// writes alpha*a*b + beta*c into its output buffer; the gpurt BLAS op
// keeps the same operand order and scaling attributes.
func RegisterGemm(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(lower.Pattern{
		Name:  "lower-gemm",
		Kinds: []ir.Kind{hlo.KindGemm},
		Matches: func(m *ir.Module, op *ir.Operation) bool {
			return len(op.Operands) == 3
		},
		Benefit: 1,
		Rewrite: lowerStreamed(gpurt.KindBlasGemm),
	})
}
