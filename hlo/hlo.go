// Package hlo defines the source vocabulary of the lowering pipeline:
// buffer-typed linear-algebra operations and the buffer type itself,
// plus the buf dialect of low-level memory operations.
package hlo

import (
	"fmt"
	"strings"

	"github.com/gpukit/hlo-lower/ir"
)

// Buffer is a typed view of GPU memory: an element type and a shape.
type Buffer struct {
	Elem string
	Dims []int64
}

func (b Buffer) Domain() ir.Domain { return ir.DomainSource }

func (b Buffer) String() string {
	var sb strings.Builder
	sb.WriteString("buffer<")
	for _, d := range b.Dims {
		fmt.Fprintf(&sb, "%dx", d)
	}
	sb.WriteString(b.Elem)
	sb.WriteByte('>')
	return sb.String()
}

// hlo dialect kinds. Operations are buffer-based: they consume and
// mutate buffer operands and produce no results.
const (
	KindAllReduce         ir.Kind = "hlo.all_reduce"
	KindAllGather         ir.Kind = "hlo.all_gather"
	KindReduceScatter     ir.Kind = "hlo.reduce_scatter"
	KindAllToAll          ir.Kind = "hlo.all_to_all"
	KindCollectivePermute ir.Kind = "hlo.collective_permute"
	KindCustomCall        ir.Kind = "hlo.custom_call"
	KindCholesky          ir.Kind = "hlo.cholesky"
	KindConvolution       ir.Kind = "hlo.convolution"
	KindFft               ir.Kind = "hlo.fft"
	KindGemm              ir.Kind = "hlo.gemm"
	KindInfeed            ir.Kind = "hlo.infeed"
	KindOutfeed           ir.Kind = "hlo.outfeed"
	KindReplicaID         ir.Kind = "hlo.replica_id"
	KindPartitionID       ir.Kind = "hlo.partition_id"
	KindTriangularSolve   ir.Kind = "hlo.triangular_solve"
)

// buf dialect kinds: low-level memory operations that must never
// survive the lowering pass (except buf.load inside a streamify body).
const (
	KindView            ir.Kind = "buf.view"
	KindReinterpretCast ir.Kind = "buf.reinterpret_cast"
	KindAlloc           ir.Kind = "buf.alloc"
	KindAlloca          ir.Kind = "buf.alloca"
	KindDealloc         ir.Kind = "buf.dealloc"
	KindLoad            ir.Kind = "buf.load"
)

// CollectiveKinds are the collective-communication operations.
var CollectiveKinds = []ir.Kind{
	KindAllReduce,
	KindAllGather,
	KindReduceScatter,
	KindAllToAll,
	KindCollectivePermute,
}

// AsyncContextKinds are the operations that need a stream and a
// completion token to execute, and therefore must be wrapped in a
// streamify region before they can be lowered.
var AsyncContextKinds = []ir.Kind{
	KindAllReduce,
	KindAllGather,
	KindReduceScatter,
	KindAllToAll,
	KindCollectivePermute,
	KindCustomCall,
	KindCholesky,
	KindConvolution,
	KindFft,
	KindGemm,
	KindInfeed,
	KindOutfeed,
	KindReplicaID,
	KindPartitionID,
	KindTriangularSolve,
}

// MemOpKinds are the buf dialect operations.
var MemOpKinds = []ir.Kind{
	KindView,
	KindReinterpretCast,
	KindAlloc,
	KindAlloca,
	KindDealloc,
	KindLoad,
}

// Arity describes the fixed operand/result arity of an operation kind.
type Arity struct {
	Operands int // -1 for variadic
	Results  int
}

var arities = map[ir.Kind]Arity{
	KindAllReduce:         {Operands: -1, Results: 0},
	KindAllGather:         {Operands: -1, Results: 0},
	KindReduceScatter:     {Operands: -1, Results: 0},
	KindAllToAll:          {Operands: -1, Results: 0},
	KindCollectivePermute: {Operands: 2, Results: 0},
	KindCustomCall:        {Operands: -1, Results: 0},
	KindCholesky:          {Operands: 2, Results: 0},
	KindConvolution:       {Operands: 3, Results: 0},
	KindFft:               {Operands: 2, Results: 0},
	KindGemm:              {Operands: 3, Results: 0},
	KindInfeed:            {Operands: -1, Results: 0},
	KindOutfeed:           {Operands: -1, Results: 0},
	KindReplicaID:         {Operands: 1, Results: 0},
	KindPartitionID:       {Operands: 1, Results: 0},
	KindTriangularSolve:   {Operands: 3, Results: 0},
	KindView:              {Operands: 1, Results: 1},
	KindReinterpretCast:   {Operands: 1, Results: 1},
	KindAlloc:             {Operands: 0, Results: 1},
	KindAlloca:            {Operands: 0, Results: 1},
	KindDealloc:           {Operands: 1, Results: 0},
	KindLoad:              {Operands: 1, Results: 1},
}

// ArityOf returns the declared arity for a kind.
func ArityOf(kind ir.Kind) (Arity, bool) {
	a, ok := arities[kind]
	return a, ok
}

// Dialect names.
const (
	Dialect    = "hlo"
	BufDialect = "buf"
)
