// Package lower implements the legalization pass that rewrites a
// buffer-typed hlo graph into the gpurt runtime dialect with explicit
// stream and chain tokens.
//
// The pass runs in two stages: the Streamify pre-pass wraps runs of
// operations needing asynchronous execution context into
// gpurt.streamify regions, then the conversion Driver applies the
// registered rewrite patterns until every operation satisfies the
// legality Target or no further progress is possible. The
// transformation is all-or-nothing: on failure the caller's module is
// left untouched and no partially converted graph is returned.
package lower

import (
	"go.uber.org/zap"

	"github.com/gpukit/hlo-lower/errors"
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/ir"
)

// Config configures a pass invocation. Zero-value fields get the
// standard pipeline components.
type Config struct {
	// Registry supplies the rewrite patterns. Required; rule providers
	// populate it (see the rules package).
	Registry *Registry
	// Converter maps source types to target types. Defaults to
	// NewBufferTypeConverter.
	Converter *TypeConverter
	// WrapTarget declares which kinds need wrapping into streamify
	// regions. Defaults to DefaultWrapTarget.
	WrapTarget *Target
	// Target is the legality oracle. Defaults to NewConversionTarget
	// over the converter and wrap target.
	Target *Target
}

// DependentDialects returns the destination operation vocabularies this
// pass may introduce, so a host toolchain can ensure they are loaded
// before the pass runs.
func DependentDialects() []string {
	return []string{gpurt.Dialect, "func"}
}

// DefaultWrapTarget returns the wrap target claiming every kind that
// needs a stream and completion token before it can be lowered.
// buf.load is claimed too: loaded scalars feed streamed operations and
// the load is only legal inside a streamify body.
func DefaultWrapTarget() *Target {
	t := NewTarget()
	t.AddLegalKind(hlo.AsyncContextKinds...)
	t.AddLegalKind(hlo.KindLoad)
	return t
}

// NewConversionTarget builds the legality oracle for the pass:
//
//   - the gpurt dialect is legal, except streamify and yield which are
//     judged per-instance
//   - buf memory operations are unconditionally illegal (buf.load is
//     dynamically legal directly inside a streamify body)
//   - functions are legal once their signature and entry block
//     arguments pass the type converter
//   - any unclassified kind is legal unless claimed by the wrap target
func NewConversionTarget(conv *TypeConverter, wrapTarget *Target) *Target {
	t := NewTarget()
	t.AddLegalDialect(gpurt.Dialect)
	t.AddIllegalKind(hlo.KindView, hlo.KindReinterpretCast,
		hlo.KindAlloc, hlo.KindAlloca, hlo.KindDealloc)

	t.AddDynamicallyLegalKind(func(m *ir.Module, op *ir.Operation) bool {
		ft, ok := ir.FuncSignature(op)
		if !ok || !conv.IsSignatureLegal(ft) {
			return false
		}
		entry := ir.EntryBlock(op)
		if entry == nil {
			return true
		}
		for _, a := range entry.Args {
			if !conv.IsLegalType(m.ValueType(a)) {
				return false
			}
		}
		return true
	}, ir.KindFunc)

	t.AddDynamicallyLegalKind(func(m *ir.Module, op *ir.Operation) bool {
		for _, v := range op.Operands {
			if !conv.IsLegalType(m.ValueType(v)) {
				return false
			}
		}
		return true
	}, ir.KindCall, ir.KindReturn)

	t.AddDynamicallyLegalKind(func(m *ir.Module, op *ir.Operation) bool {
		parent := m.Op(op.Parent())
		return parent != nil && parent.Kind == gpurt.KindStreamify
	}, hlo.KindLoad)

	// Streamify is legal once its body is fully converted: every body
	// operation legal, every body block argument and wrapper result in
	// the target type domain.
	t.AddDynamicallyLegalKind(func(m *ir.Module, op *ir.Operation) bool {
		for _, r := range op.Results {
			if !conv.IsLegalType(m.ValueType(r)) {
				return false
			}
		}
		if body := ir.EntryBlock(op); body != nil {
			for _, a := range body.Args {
				if !conv.IsLegalType(m.ValueType(a)) {
					return false
				}
			}
		}
		legal := true
		m.WalkFrom(op, func(child *ir.Operation) {
			if child == op || !legal {
				return
			}
			if !t.IsLegal(m, child) {
				legal = false
			}
		})
		return legal
	}, gpurt.KindStreamify)

	// A yield is legal when it forwards the live chain of its block.
	t.AddDynamicallyLegalKind(func(m *ir.Module, op *ir.Operation) bool {
		if len(op.Operands) == 0 {
			return false
		}
		live, err := LiveChain(m, op)
		return err == nil && op.Operands[0] == live
	}, gpurt.KindYield)

	t.MarkUnknownDynamicallyLegal(func(m *ir.Module, op *ir.Operation) bool {
		// Kinds claimed by the wrap target are rewrite targets and
		// therefore illegal until lowered.
		return !wrapTarget.HasKind(op.Kind)
	})
	return t
}

// Run executes the pass on m and returns the converted module.
//
// The input module is never mutated: the pipeline operates on a clone
// and returns it only on success. On failure no partial graph is
// returned.
func Run(m *ir.Module, cfg Config) (*ir.Module, error) {
	if cfg.Registry == nil {
		return nil, errors.InvalidInput(errors.PhaseRun, "no pattern registry configured")
	}
	conv := cfg.Converter
	if conv == nil {
		conv = NewBufferTypeConverter()
	}
	wrapTarget := cfg.WrapTarget
	if wrapTarget == nil {
		wrapTarget = DefaultWrapTarget()
	}
	target := cfg.Target
	if target == nil {
		target = NewConversionTarget(conv, wrapTarget)
	}

	work := m.Clone()
	if err := work.Verify(); err != nil {
		return nil, err
	}

	if err := NewStreamify(wrapTarget).Apply(work); err != nil {
		return nil, err
	}
	if err := work.Verify(); err != nil {
		return nil, err
	}

	if err := NewDriver(work, target, cfg.Registry, conv).Run(); err != nil {
		return nil, err
	}
	if err := work.Verify(); err != nil {
		return nil, err
	}

	Logger().Info("lowering succeeded",
		zap.String("module", work.Name),
		zap.Int("ops", work.NumOps()))
	return work, nil
}
