package rules

import (
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/lower"
)

// RegisterReplicaAndPartition contributes the replica/partition
// identification lowerings. Both write their id into the operand
// buffer, ordered by the chain.
func RegisterReplicaAndPartition(reg *lower.Registry, conv *lower.TypeConverter) {
	reg.Add(streamedPattern("lower-replica-id", hlo.KindReplicaID, gpurt.KindReplicaID))
	reg.Add(streamedPattern("lower-partition-id", hlo.KindPartitionID, gpurt.KindPartitionID))
}
