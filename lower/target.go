package lower

import (
	"strings"

	"github.com/gpukit/hlo-lower/ir"
)

// Classification is the legality class assigned to an operation kind.
type Classification uint8

const (
	// ClassUnknown means the kind has no explicit entry; the target's
	// unknown-op rule decides.
	ClassUnknown Classification = iota
	// ClassLegal kinds are allowed as-is in the output graph.
	ClassLegal
	// ClassIllegal kinds must never survive the pass.
	ClassIllegal
	// ClassDynamic kinds are judged per-instance by a predicate.
	ClassDynamic
)

// Predicate judges a single operation instance. Predicates must derive
// their answer from the operation's current kind and operand/result
// types only; legality is recomputed on every query, never cached.
type Predicate func(m *ir.Module, op *ir.Operation) bool

type classEntry struct {
	class Classification
	pred  Predicate
}

// Target is the legality oracle: a total classification of operation
// kinds into legal, illegal, and dynamically legal, with wildcard
// dialect rules and a configurable default for unknown kinds.
type Target struct {
	kinds          map[ir.Kind]classEntry
	legalDialects  map[string]bool
	unknownDynamic Predicate
	unknownLegal   bool
}

// NewTarget creates a target where every kind is unknown and unknown
// kinds are illegal.
func NewTarget() *Target {
	return &Target{
		kinds:         make(map[ir.Kind]classEntry),
		legalDialects: make(map[string]bool),
	}
}

// AddLegalDialect marks every kind of the named dialects as
// unconditionally legal. Supports "name" and "name.*" spellings.
func (t *Target) AddLegalDialect(dialects ...string) {
	for _, d := range dialects {
		t.legalDialects[strings.TrimSuffix(d, ".*")] = true
	}
}

// AddLegalKind marks kinds as unconditionally legal.
func (t *Target) AddLegalKind(kinds ...ir.Kind) {
	for _, k := range kinds {
		t.kinds[k] = classEntry{class: ClassLegal}
	}
}

// AddIllegalKind marks kinds as unconditionally illegal.
func (t *Target) AddIllegalKind(kinds ...ir.Kind) {
	for _, k := range kinds {
		t.kinds[k] = classEntry{class: ClassIllegal}
	}
}

// AddDynamicallyLegalKind marks kinds as judged per-instance by pred.
func (t *Target) AddDynamicallyLegalKind(pred Predicate, kinds ...ir.Kind) {
	for _, k := range kinds {
		t.kinds[k] = classEntry{class: ClassDynamic, pred: pred}
	}
}

// MarkUnknownDynamicallyLegal makes unclassified kinds legal per-instance
// according to pred.
func (t *Target) MarkUnknownDynamicallyLegal(pred Predicate) {
	t.unknownDynamic = pred
	t.unknownLegal = false
}

// MarkUnknownLegal makes unclassified kinds unconditionally legal.
func (t *Target) MarkUnknownLegal() {
	t.unknownDynamic = nil
	t.unknownLegal = true
}

// Classify returns the explicit classification of a kind, taking
// dialect wildcards into account. Explicit kind entries take precedence
// over dialect rules; both take precedence over the unknown-op default.
func (t *Target) Classify(kind ir.Kind) Classification {
	if e, ok := t.kinds[kind]; ok {
		return e.class
	}
	if t.legalDialects[kind.Dialect()] {
		return ClassLegal
	}
	return ClassUnknown
}

// IsLegal judges an operation instance against the target. The answer
// is recomputed from current state on every call.
func (t *Target) IsLegal(m *ir.Module, op *ir.Operation) bool {
	if e, ok := t.kinds[op.Kind]; ok {
		switch e.class {
		case ClassLegal:
			return true
		case ClassIllegal:
			return false
		case ClassDynamic:
			return e.pred(m, op)
		}
	}
	if t.legalDialects[op.Kind.Dialect()] {
		return true
	}
	if t.unknownDynamic != nil {
		return t.unknownDynamic(m, op)
	}
	return t.unknownLegal
}

// HasKind reports whether the kind would be accepted by some rule other
// than the unknown default, i.e. it is "claimed" by this target.
func (t *Target) HasKind(kind ir.Kind) bool {
	if _, ok := t.kinds[kind]; ok {
		return true
	}
	return t.legalDialects[kind.Dialect()]
}
