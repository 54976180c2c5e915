package lower

import (
	"github.com/gpukit/hlo-lower/errors"
	"github.com/gpukit/hlo-lower/gpurt"
	"github.com/gpukit/hlo-lower/hlo"
	"github.com/gpukit/hlo-lower/ir"
)

// ConvertFn maps a source type to a target type. It returns false when
// it does not recognize the input, letting the next registered
// conversion try.
type ConvertFn func(ir.Type) (ir.Type, bool)

// TypeConverter maps source-domain types to target-domain types.
//
// Conversion is a pure function of the input type: results are memoized
// by canonical type string, so the same source type always converts to
// the identical target type within one pass invocation regardless of
// which rewrite triggers it.
type TypeConverter struct {
	fns  []ConvertFn
	memo map[string]ir.Type
}

// NewTypeConverter creates an empty converter. Target-domain types
// always convert to themselves.
func NewTypeConverter() *TypeConverter {
	return &TypeConverter{memo: make(map[string]ir.Type)}
}

// AddConversion appends a conversion function. Functions are tried in
// registration order.
func (c *TypeConverter) AddConversion(fn ConvertFn) {
	c.fns = append(c.fns, fn)
}

// Convert maps t to its target type, or fails with an UnsupportedType
// error. Types already in the target domain map to themselves.
func (c *TypeConverter) Convert(t ir.Type) (ir.Type, error) {
	if t == nil {
		return nil, errors.UnsupportedType(errors.PhaseConvert, "<nil>")
	}
	if t.Domain() == ir.DomainTarget {
		return t, nil
	}
	key := t.String()
	if out, ok := c.memo[key]; ok {
		return out, nil
	}
	for _, fn := range c.fns {
		if out, ok := fn(t); ok {
			c.memo[key] = out
			return out, nil
		}
	}
	return nil, errors.UnsupportedType(errors.PhaseConvert, key)
}

// IsLegalType reports whether t needs no further conversion.
func (c *TypeConverter) IsLegalType(t ir.Type) bool {
	return t != nil && t.Domain() == ir.DomainTarget
}

// IsSignatureLegal reports whether every parameter and result type of
// the signature is already in the target domain.
func (c *TypeConverter) IsSignatureLegal(ft ir.FuncType) bool {
	for _, p := range ft.Params {
		if !c.IsLegalType(p) {
			return false
		}
	}
	for _, r := range ft.Results {
		if !c.IsLegalType(r) {
			return false
		}
	}
	return true
}

// ConvertSignature converts every parameter and result type of ft.
func (c *TypeConverter) ConvertSignature(ft ir.FuncType) (ir.FuncType, error) {
	out := ir.FuncType{}
	for _, p := range ft.Params {
		t, err := c.Convert(p)
		if err != nil {
			return ir.FuncType{}, err
		}
		out.Params = append(out.Params, t)
	}
	for _, r := range ft.Results {
		t, err := c.Convert(r)
		if err != nil {
			return ir.FuncType{}, err
		}
		out.Results = append(out.Results, t)
	}
	return out, nil
}

// NewBufferTypeConverter creates the standard converter for this pass:
// hlo buffers become gpurt buffer handles with the same element type
// and shape.
func NewBufferTypeConverter() *TypeConverter {
	c := NewTypeConverter()
	c.AddConversion(func(t ir.Type) (ir.Type, bool) {
		if b, ok := t.(hlo.Buffer); ok {
			return gpurt.Buffer{Elem: b.Elem, Dims: b.Dims}, true
		}
		return nil, false
	})
	return c
}
