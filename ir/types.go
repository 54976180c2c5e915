package ir

import "strings"

// Domain identifies which type vocabulary a type belongs to.
//
// Every value's type belongs to exactly one domain at any point during
// conversion; the lowering pass moves values from the source domain to
// the target domain.
type Domain uint8

const (
	// DomainSource is the buffer-typed vocabulary of the input graph.
	DomainSource Domain = iota
	// DomainTarget is the runtime-handle vocabulary of the output graph.
	DomainTarget
)

func (d Domain) String() string {
	if d == DomainSource {
		return "source"
	}
	return "target"
}

// Type is a value type. Concrete types are defined by the vocabulary
// packages (hlo, gpurt); equality is structural via TypeEq.
type Type interface {
	Domain() Domain
	String() string
}

// TypeEq reports whether two types are structurally equal.
func TypeEq(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Domain() == b.Domain() && a.String() == b.String()
}

// FuncType describes a function signature. It is not itself a value
// type; it appears as the "type" attribute of function operations.
type FuncType struct {
	Params  []Type
	Results []Type
}

func (ft FuncType) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range ft.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> (")
	for i, r := range ft.Results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Scalar is an element value loaded out of a buffer. Scalars are
// runtime-representable as-is, so they belong to the target domain.
type Scalar struct {
	Elem string
}

func (s Scalar) Domain() Domain { return DomainTarget }
func (s Scalar) String() string { return s.Elem }

// Kind is a dialect-qualified operation kind, e.g. "hlo.gemm" or
// "gpurt.ccl.all_reduce".
type Kind string

// Dialect returns the dialect prefix of the kind.
func (k Kind) Dialect() string {
	if i := strings.IndexByte(string(k), '.'); i >= 0 {
		return string(k)[:i]
	}
	return string(k)
}

func (k Kind) String() string { return string(k) }
