// Package gpurt defines the target vocabulary of the lowering pipeline:
// a GPU runtime dialect whose operations carry explicit stream and
// completion-token operands and results.
package gpurt

import (
	"fmt"
	"strings"

	"github.com/gpukit/hlo-lower/ir"
)

// Buffer is a runtime handle to GPU memory.
type Buffer struct {
	Elem string
	Dims []int64
}

func (b Buffer) Domain() ir.Domain { return ir.DomainTarget }

func (b Buffer) String() string {
	var sb strings.Builder
	sb.WriteString("gpurt.buffer<")
	for _, d := range b.Dims {
		fmt.Fprintf(&sb, "%dx", d)
	}
	sb.WriteString(b.Elem)
	sb.WriteByte('>')
	return sb.String()
}

// Stream is a handle to an asynchronous GPU execution context.
type Stream struct{}

func (Stream) Domain() ir.Domain { return ir.DomainTarget }
func (Stream) String() string    { return "gpurt.stream" }

// Chain is a completion/dependency token ordering asynchronous work.
type Chain struct{}

func (Chain) Domain() ir.Domain { return ir.DomainTarget }
func (Chain) String() string    { return "gpurt.chain" }

// Structural kinds.
const (
	// KindStreamify wraps a run of operations in a region that provides
	// stream and chain block arguments to its body.
	KindStreamify ir.Kind = "gpurt.streamify"
	// KindYield terminates a streamify body, forwarding the final chain
	// and any escaping values to the wrapper's results.
	KindYield ir.Kind = "gpurt.yield"
)

// Execution kinds. Each consumes buffer handles plus a stream and an
// incoming chain, and produces an outgoing chain.
const (
	KindCclAllReduce     ir.Kind = "gpurt.ccl.all_reduce"
	KindCclAllGather     ir.Kind = "gpurt.ccl.all_gather"
	KindCclReduceScatter ir.Kind = "gpurt.ccl.reduce_scatter"
	KindCclAllToAll      ir.Kind = "gpurt.ccl.all_to_all"
	KindCclPermute       ir.Kind = "gpurt.ccl.permute"
	KindBlasGemm         ir.Kind = "gpurt.blas.gemm"
	KindDnnConv          ir.Kind = "gpurt.dnn.conv"
	KindSolverPotrf      ir.Kind = "gpurt.solver.potrf"
	KindSolverTrsm       ir.Kind = "gpurt.solver.trsm"
	KindFftExecute       ir.Kind = "gpurt.fft.execute"
	KindCustomCall       ir.Kind = "gpurt.custom_call.execute"
	KindInfeed           ir.Kind = "gpurt.infeed"
	KindOutfeed          ir.Kind = "gpurt.outfeed"
	KindReplicaID        ir.Kind = "gpurt.replica_id"
	KindPartitionID      ir.Kind = "gpurt.partition_id"
)

// Memory kinds. These manage handles directly and need no stream.
const (
	KindView    ir.Kind = "gpurt.view"
	KindAlloc   ir.Kind = "gpurt.alloc"
	KindDealloc ir.Kind = "gpurt.dealloc"
)

// Dialect is the dialect name of all gpurt kinds.
const Dialect = "gpurt"

// IsStreamed reports whether a kind is an execution op threading
// stream/chain tokens.
func IsStreamed(kind ir.Kind) bool {
	switch kind {
	case KindCclAllReduce, KindCclAllGather, KindCclReduceScatter,
		KindCclAllToAll, KindCclPermute, KindBlasGemm, KindDnnConv,
		KindSolverPotrf, KindSolverTrsm, KindFftExecute, KindCustomCall,
		KindInfeed, KindOutfeed, KindReplicaID, KindPartitionID:
		return true
	}
	return false
}
