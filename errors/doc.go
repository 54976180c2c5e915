// Package errors provides structured error types for the hlo-lower library.
//
// Errors are categorized by Phase (where in the lowering pipeline the error
// occurred) and Kind (error category). The Error type includes rich context:
// the offending operation kind, the type that failed to convert, and a cause
// chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindUnsupportedType).
//		Op("hlo.gemm").
//		Type("buffer<4x4xf32>").
//		Detail("no conversion registered").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedType(errors.PhaseConvert, "buffer<4x4xf32>")
//	err := errors.NoApplicablePattern("hlo.fft")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
