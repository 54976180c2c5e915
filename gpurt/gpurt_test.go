package gpurt

import (
	"testing"

	"github.com/gpukit/hlo-lower/ir"
)

func TestTypes(t *testing.T) {
	for _, typ := range []ir.Type{Buffer{Elem: "f32", Dims: []int64{4}}, Stream{}, Chain{}} {
		if typ.Domain() != ir.DomainTarget {
			t.Errorf("%s not in the target domain", typ)
		}
	}
	if got := (Buffer{Elem: "f32", Dims: []int64{4, 2}}).String(); got != "gpurt.buffer<4x2xf32>" {
		t.Errorf("Buffer.String() = %q", got)
	}
}

func TestIsStreamed(t *testing.T) {
	streamed := []ir.Kind{
		KindCclAllReduce, KindCclAllGather, KindCclReduceScatter,
		KindCclAllToAll, KindCclPermute, KindBlasGemm, KindDnnConv,
		KindSolverPotrf, KindSolverTrsm, KindFftExecute, KindCustomCall,
		KindInfeed, KindOutfeed, KindReplicaID, KindPartitionID,
	}
	for _, kind := range streamed {
		if !IsStreamed(kind) {
			t.Errorf("IsStreamed(%s) = false", kind)
		}
		if kind.Dialect() != Dialect {
			t.Errorf("%s not in the gpurt dialect", kind)
		}
	}
	for _, kind := range []ir.Kind{KindStreamify, KindYield, KindView, KindAlloc, KindDealloc} {
		if IsStreamed(kind) {
			t.Errorf("IsStreamed(%s) = true for a non-execution kind", kind)
		}
	}
}
