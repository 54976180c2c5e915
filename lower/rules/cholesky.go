package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterCholesky contributes the factorization lowering: hlo.cholesky
// becomes a solver potrf call on the region's stream.
func RegisterCholesky(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(streamedPattern("lower-cholesky", hlo.KindCholesky, gpurt.KindSolverPotrf))
}
