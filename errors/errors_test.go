package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseConvert,
				Kind:   KindUnsupportedType,
				Op:     "hlo.gemm",
				Type:   "buffer<4x4xf32>",
				Detail: "no conversion registered",
			},
			contains: []string{"[convert]", "unsupported_type", "hlo.gemm", "buffer<4x4xf32>", "no conversion registered"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseWrap,
				Kind:  KindStructuralViolation,
			},
			contains: []string{"[wrap]", "structural_violation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRun,
				Kind:   KindNoApplicablePattern,
				Detail: "conversion stuck",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[run]", "no_applicable_pattern", "conversion stuck", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseConvert,
		Kind:  KindUnsupportedType,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseConvert,
		Kind:  KindUnsupportedType,
		Op:    "hlo.fft",
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseConvert, Kind: KindUnsupportedType}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseWrap, Kind: KindUnsupportedType}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseConvert, Kind: KindNoApplicablePattern}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseConvert, Kind: KindUnsupportedType}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseConvert, KindUnsupportedType).
		Op("hlo.gemm").
		Type("buffer<2xf32>").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "buffer", "stream").
		Build()

	if err.Phase != PhaseConvert {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseConvert)
	}
	if err.Kind != KindUnsupportedType {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedType)
	}
	if err.Op != "hlo.gemm" {
		t.Errorf("Op = %q, want %q", err.Op, "hlo.gemm")
	}
	if err.Type != "buffer<2xf32>" {
		t.Errorf("Type = %q, want %q", err.Type, "buffer<2xf32>")
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Error("Cause not set")
	}
	if err.Detail != "expected buffer, got stream" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("UnsupportedType", func(t *testing.T) {
		err := UnsupportedType(PhaseConvert, "buffer<4xf32>")
		if err.Kind != KindUnsupportedType {
			t.Errorf("Kind = %v", err.Kind)
		}
		if err.Type != "buffer<4xf32>" {
			t.Errorf("Type = %q", err.Type)
		}
	})

	t.Run("NoApplicablePattern", func(t *testing.T) {
		err := NoApplicablePattern("hlo.cholesky")
		if err.Kind != KindNoApplicablePattern {
			t.Errorf("Kind = %v", err.Kind)
		}
		if err.Op != "hlo.cholesky" {
			t.Errorf("Op = %q", err.Op)
		}
	})

	t.Run("StructuralViolation", func(t *testing.T) {
		err := StructuralViolation(PhaseWrap, "op %s already legal", "gpurt.view")
		if err.Kind != KindStructuralViolation {
			t.Errorf("Kind = %v", err.Kind)
		}
		if !strings.Contains(err.Detail, "gpurt.view") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("NonTermination", func(t *testing.T) {
		err := NonTermination(1000, "hlo.gemm")
		if err.Kind != KindNonTermination {
			t.Errorf("Kind = %v", err.Kind)
		}
		if !strings.Contains(err.Detail, "1000") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})
}
