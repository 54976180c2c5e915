package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterCcl contributes the collective-communication lowerings. Each
// collective becomes a gpurt.ccl op executing on the region's stream.
func RegisterCcl(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(streamedPattern("lower-all-reduce", hlo.KindAllReduce, gpurt.KindCclAllReduce))
	reg.Add(streamedPattern("lower-all-gather", hlo.KindAllGather, gpurt.KindCclAllGather))
	reg.Add(streamedPattern("lower-reduce-scatter", hlo.KindReduceScatter, gpurt.KindCclReduceScatter))
	reg.Add(streamedPattern("lower-all-to-all", hlo.KindAllToAll, gpurt.KindCclAllToAll))
	reg.Add(streamedPattern("lower-collective-permute", hlo.KindCollectivePermute, gpurt.KindCclPermute))
}
