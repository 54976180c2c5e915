// Package ir provides the operation-graph representation shared by the
// source and target vocabularies of the lowering pipeline.
//
// Operations live in an arena owned by the Module and are addressed by
// OpID; values are addressed by ValueID. Region nesting is represented
// by operations holding regions of blocks which in turn hold operation
// ids, so parent/child navigation never forms ownership cycles.
package ir
