package ir

import "fmt"

// Textual form. The passes never touch it; it exists for diagnostics,
// the dump hook and tests. ParseFunc accepts everything AppendTo emits.

func (f *Func) String() string { return string(f.AppendTo(nil)) }

func (f *Func) AppendTo(b []byte) []byte {
	p := printer{f: f, names: map[ValueID]string{}}

	b = fmt.Appendf(b, "func @%s(", f.Name)

	entry := f.Entry()
	for i, a := range f.blocks[entry].Args {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = fmt.Appendf(b, "%s: %v", p.name(a), f.values[a].typ)
	}

	b = append(b, ')')

	if len(f.Out) != 0 {
		b = append(b, " -> ("...)

		for i, t := range f.Out {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = fmt.Appendf(b, "%v", t)
		}

		b = append(b, ')')
	}

	b = append(b, " {\n"...)
	b = p.block(b, entry, 1)
	b = append(b, "}\n"...)

	return b
}

type printer struct {
	f     *Func
	names map[ValueID]string
	next  int
}

func (p *printer) name(v ValueID) string {
	n, ok := p.names[v]
	if !ok {
		n = fmt.Sprintf("%%%d", p.next)
		p.next++
		p.names[v] = n
	}

	return n
}

func (p *printer) block(b []byte, blk BlockID, depth int) []byte {
	for _, op := range p.f.blocks[blk].Ops {
		b = p.op(b, op, depth)
	}

	return b
}

func (p *printer) op(b []byte, op OpID, depth int) []byte {
	f := p.f
	o := &f.ops[op]

	for i := 0; i < depth; i++ {
		b = append(b, "  "...)
	}

	for i, r := range o.Results {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = append(b, p.name(r)...)
	}

	if len(o.Results) != 0 {
		b = append(b, " = "...)
	}

	if o.Kind.IsTerminator() {
		b = append(b, o.Kind.String()...)

		for i, v := range o.Operands {
			if i != 0 {
				b = append(b, ',')
			}

			b = append(b, ' ')
			b = append(b, p.name(v)...)
		}

		b = append(b, '\n')

		return b
	}

	if o.Kind == Opaque {
		b = fmt.Appendf(b, "%q", o.Name)
	} else {
		b = append(b, o.Kind.String()...)
	}

	if o.Kind == Replicate {
		b = fmt.Appendf(b, "[%d]", o.N)
	}

	b = append(b, '(')

	for i, v := range o.Operands {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = append(b, p.name(v)...)
	}

	b = append(b, ')')

	for _, r := range o.Regions {
		blk := f.regions[r].Blocks[0]
		if len(f.blocks[blk].Args) == 0 {
			continue
		}

		b = append(b, " ("...)

		for i, a := range f.blocks[blk].Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = fmt.Appendf(b, "%s: %v", p.name(a), f.values[a].typ)
		}

		b = append(b, ')')
	}

	if len(o.Results) != 0 {
		b = append(b, " : "...)

		for i, r := range o.Results {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = fmt.Appendf(b, "%v", f.values[r].typ)
		}
	}

	if len(o.Regions) != 0 {
		b = append(b, " {\n"...)

		for _, r := range o.Regions {
			b = p.block(b, f.regions[r].Blocks[0], depth+1)
		}

		for i := 0; i < depth; i++ {
			b = append(b, "  "...)
		}

		b = append(b, "}\n"...)

		return b
	}

	b = append(b, '\n')

	return b
}
