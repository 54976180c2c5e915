// Package rules provides the rewrite-rule providers for the lowering
// pass. Each provider contributes the patterns for one operation
// family; providers are independent and may be registered in any order.
package rules

import (
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterAll registers every standard rule provider.
func RegisterAll(reg *lower.Registry, conv *lower.TypeConverter) {
	RegisterCcl(reg, conv)
	RegisterCholesky(reg, conv)
	RegisterConvolution(reg, conv)
	RegisterCustomCall(reg, conv)
	RegisterFft(reg, conv)
	RegisterGemm(reg, conv)
	RegisterInfeedOutfeed(reg, conv)
	RegisterReplicaAndPartition(reg, conv)
	RegisterTriangularSolve(reg, conv)
	RegisterMemOps(reg, conv)
	RegisterFuncOps(reg, conv)
	RegisterStreamifyOps(reg, conv)
}

// DefaultRegistry creates a registry with all standard providers.
func DefaultRegistry(conv *lower.TypeConverter) *lower.Registry {
	reg := lower.NewRegistry()
	RegisterAll(reg, conv)
	return reg
}
