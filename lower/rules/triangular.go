package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterTriangularSolve contributes the triangular-solve lowering to
// the solver trsm op.
func RegisterTriangularSolve(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(streamedPattern("lower-triangular-solve", hlo.KindTriangularSolve, gpurt.KindSolverTrsm))
}
