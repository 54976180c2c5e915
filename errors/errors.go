package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the lowering pipeline the error occurred
type Phase string

const (
	PhaseParse   Phase = "parse"   // graph/type parsing
	PhaseWrap    Phase = "wrap"    // streamify region wrapping
	PhaseConvert Phase = "convert" // type conversion and pattern rewriting
	PhaseVerify  Phase = "verify"  // graph invariant checking
	PhaseRun     Phase = "run"     // pass orchestration
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedType     Kind = "unsupported_type"
	KindNoApplicablePattern Kind = "no_applicable_pattern"
	KindStructuralViolation Kind = "structural_violation"
	KindInvalidInput        Kind = "invalid_input"
	KindNotFound            Kind = "not_found"
	KindNonTermination      Kind = "non_termination"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Type   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" || e.Type != "" {
		b.WriteString(": ")
		if e.Op != "" && e.Type != "" {
			b.WriteString("op ")
			b.WriteString(e.Op)
			b.WriteString(", type ")
			b.WriteString(e.Type)
		} else if e.Op != "" {
			b.WriteString("op ")
			b.WriteString(e.Op)
		} else {
			b.WriteString("type ")
			b.WriteString(e.Type)
		}
	}

	if e.Detail != "" {
		if e.Op != "" || e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the offending operation kind
func (b *Builder) Op(kind string) *Builder {
	b.err.Op = kind
	return b
}

// Type sets the type name involved in the failure
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnsupportedType creates an unsupported type error
func UnsupportedType(phase Phase, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedType,
		Type:   typeName,
		Detail: "no conversion registered for type",
	}
}

// NoApplicablePattern creates an error for an illegal operation with no
// matching rewrite pattern
func NoApplicablePattern(opKind string) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindNoApplicablePattern,
		Op:     opKind,
		Detail: "operation is illegal and no pattern applies",
	}
}

// StructuralViolation creates a graph invariant violation error
func StructuralViolation(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStructuralViolation,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// NotFound creates a lookup failure error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: what,
	}
}

// NonTermination creates an error for a driver that exceeded its step budget
func NonTermination(steps int, opKind string) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindNonTermination,
		Op:     opKind,
		Detail: fmt.Sprintf("rewrite did not converge after %d steps", steps),
	}
}
