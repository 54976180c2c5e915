package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Print renders the module in a deterministic textual form. Value names
// are assigned in walk order, so two structurally identical modules
// print identically.
func Print(m *Module) string {
	p := &printer{m: m, names: make(map[ValueID]string)}
	p.buf.WriteString("module @")
	p.buf.WriteString(m.Name)
	p.buf.WriteString(" {\n")
	for _, id := range m.top {
		if op := m.Op(id); op != nil {
			p.printOp(op, 1)
		}
	}
	p.buf.WriteString("}\n")
	return p.buf.String()
}

type printer struct {
	m     *Module
	buf   strings.Builder
	names map[ValueID]string
	next  int
}

func (p *printer) name(v ValueID) string {
	if n, ok := p.names[v]; ok {
		return n
	}
	n := fmt.Sprintf("%%%d", p.next)
	p.next++
	p.names[v] = n
	return n
}

func (p *printer) indent(depth int) {
	for i := 0; i < depth; i++ {
		p.buf.WriteString("  ")
	}
}

func (p *printer) printOp(op *Operation, depth int) {
	if op.Kind == KindFunc {
		p.printFunc(op, depth)
		return
	}
	p.indent(depth)
	if len(op.Results) > 0 {
		for i, r := range op.Results {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(p.name(r))
		}
		p.buf.WriteString(" = ")
	}
	p.buf.WriteString(string(op.Kind))
	p.buf.WriteByte('(')
	for i, o := range op.Operands {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.buf.WriteString(p.name(o))
	}
	p.buf.WriteByte(')')
	p.printAttrs(op)
	if len(op.Regions) > 0 {
		p.buf.WriteString(" {\n")
		for _, r := range op.Regions {
			for _, b := range r.Blocks {
				p.printBlock(b, depth+1)
			}
		}
		p.indent(depth)
		p.buf.WriteByte('}')
	}
	if len(op.Results) > 0 {
		p.buf.WriteString(" : ")
		for i, r := range op.Results {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(p.typeOf(r))
		}
	}
	p.buf.WriteByte('\n')
}

func (p *printer) printFunc(op *Operation, depth int) {
	p.indent(depth)
	p.buf.WriteString("func.func @")
	p.buf.WriteString(FuncName(op))
	entry := EntryBlock(op)
	p.buf.WriteByte('(')
	if entry != nil {
		for i, a := range entry.Args {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(p.name(a))
			p.buf.WriteString(": ")
			p.buf.WriteString(p.typeOf(a))
		}
	}
	p.buf.WriteString(") {\n")
	if entry != nil {
		for _, id := range entry.Ops {
			if child := p.m.Op(id); child != nil {
				p.printOp(child, depth+1)
			}
		}
	}
	p.indent(depth)
	p.buf.WriteString("}\n")
}

func (p *printer) printBlock(b *Block, depth int) {
	p.indent(depth)
	p.buf.WriteString("^bb(")
	for i, a := range b.Args {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.buf.WriteString(p.name(a))
		p.buf.WriteString(": ")
		p.buf.WriteString(p.typeOf(a))
	}
	p.buf.WriteString("):\n")
	for _, id := range b.Ops {
		if child := p.m.Op(id); child != nil {
			p.printOp(child, depth+1)
		}
	}
}

func (p *printer) printAttrs(op *Operation) {
	if len(op.Attrs) == 0 {
		return
	}
	keys := make([]string, 0, len(op.Attrs))
	for k := range op.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p.buf.WriteString(" {")
	for i, k := range keys {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		fmt.Fprintf(&p.buf, "%s = %v", k, op.Attrs[k])
	}
	p.buf.WriteByte('}')
}

func (p *printer) typeOf(v ValueID) string {
	t := p.m.ValueType(v)
	if t == nil {
		return "?"
	}
	return t.String()
}
