package ir

// Clone returns a deep copy of the module. Operation and value ids are
// preserved, so diagnostics computed against the clone remain
// meaningful for the original.
func (m *Module) Clone() *Module {
	out := &Module{
		Name:    m.Name,
		ops:     make(map[OpID]*Operation, len(m.ops)),
		vals:    make(map[ValueID]*Value, len(m.vals)),
		top:     append([]OpID(nil), m.top...),
		nextOp:  m.nextOp,
		nextVal: m.nextVal,
		gen:     m.gen,
	}
	for id, v := range m.vals {
		out.vals[id] = &Value{id: v.id, typ: v.typ, def: v.def}
	}
	for id, op := range m.ops {
		out.ops[id] = &Operation{
			Kind:     op.Kind,
			Operands: append([]ValueID(nil), op.Operands...),
			Results:  append([]ValueID(nil), op.Results...),
			Attrs:    cloneAttrs(op.Attrs),
			id:       op.id,
			parent:   op.parent,
		}
	}
	// Second pass: rebuild regions so block pointers land in the clone.
	for id, op := range m.ops {
		cop := out.ops[id]
		for _, r := range op.Regions {
			nr := &Region{}
			for _, b := range r.Blocks {
				nb := &Block{
					Args: append([]ValueID(nil), b.Args...),
					Ops:  append([]OpID(nil), b.Ops...),
				}
				for _, child := range nb.Ops {
					if c := out.ops[child]; c != nil {
						c.blk = nb
					}
				}
				nr.Blocks = append(nr.Blocks, nb)
			}
			cop.Regions = append(cop.Regions, nr)
		}
	}
	return out
}

func cloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
