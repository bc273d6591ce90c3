package ir

import (
	"context"

	"tlog.app/go/errors"
)

type (
	parser struct {
		b []byte
		i int

		f    *Func
		bld  *Builder
		vals map[string]ValueID
	}
)

var (
	kinds = map[string]Kind{
		"return":    Return,
		"graph":     Graph,
		"island":    Island,
		"yield":     Yield,
		"fetch":     Fetch,
		"replicate": Replicate,
		"shape":     Shape,
		"varshape":  VariableShape,
		"readvar":   ReadVariable,
	}

	types = map[string]Type{
		"tensor":   Tensor,
		"resource": Resource,
		"control":  Control,
	}
)

// ParseModule parses a sequence of functions.
func ParseModule(ctx context.Context, b []byte) (fs []*Func, err error) {
	p := &parser{b: b}

	for {
		p.skip()

		if p.i == len(p.b) {
			return fs, nil
		}

		f, err := p.parseFunc(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "at 0x%x", p.i)
		}

		fs = append(fs, f)
	}
}

// ParseFunc parses exactly one function.
func ParseFunc(ctx context.Context, b []byte) (*Func, error) {
	fs, err := ParseModule(ctx, b)
	if err != nil {
		return nil, err
	}

	if len(fs) != 1 {
		return nil, errors.New("want one func, got %v", len(fs))
	}

	return fs[0], nil
}

func (p *parser) parseFunc(ctx context.Context) (f *Func, err error) {
	if !p.lit("func") {
		return nil, errors.New("func expected")
	}

	if !p.lit("@") {
		return nil, errors.New("@name expected")
	}

	name := p.ident()
	if name == "" {
		return nil, errors.New("func name expected")
	}

	args, argNames, err := p.parseArgs()
	if err != nil {
		return nil, errors.Wrap(err, "func %v args", name)
	}

	var out []Type

	if p.lit("->") {
		if !p.lit("(") {
			return nil, errors.New("result type list expected")
		}

		for !p.lit(")") {
			if len(out) != 0 && !p.lit(",") {
				return nil, errors.New(", expected")
			}

			t, err := p.parseType()
			if err != nil {
				return nil, err
			}

			out = append(out, t)
		}
	}

	f = NewFunc(name, args, out)

	p.f = f
	p.bld = NewBuilder(f)
	p.vals = map[string]ValueID{}

	for i, a := range f.Block(f.Entry()).Args {
		p.vals[argNames[i]] = a
	}

	err = p.parseBody()
	if err != nil {
		return nil, errors.Wrap(err, "func %v", name)
	}

	return f, nil
}

// parseArgs parses "(%x: tensor, %y: resource)".
func (p *parser) parseArgs() (args []Type, names []string, err error) {
	if !p.lit("(") {
		return nil, nil, errors.New("( expected")
	}

	for !p.lit(")") {
		if len(args) != 0 && !p.lit(",") {
			return nil, nil, errors.New(", expected")
		}

		n := p.val()
		if n == "" {
			return nil, nil, errors.New("%%name expected")
		}

		if !p.lit(":") {
			return nil, nil, errors.New(": expected")
		}

		t, err := p.parseType()
		if err != nil {
			return nil, nil, err
		}

		args = append(args, t)
		names = append(names, n)
	}

	return args, names, nil
}

func (p *parser) parseBody() error {
	if !p.lit("{") {
		return errors.New("{ expected")
	}

	for !p.lit("}") {
		err := p.parseOp()
		if err != nil {
			return errors.Wrap(err, "at 0x%x", p.i)
		}
	}

	return nil
}

func (p *parser) parseOp() (err error) {
	var results []string

	for {
		p.skip()

		if p.i < len(p.b) && p.b[p.i] == '%' {
			n := p.val()
			results = append(results, n)

			if p.lit(",") {
				continue
			}
		}

		break
	}

	if len(results) != 0 && !p.lit("=") {
		return errors.New("= expected")
	}

	var proto Operation

	if name, ok := p.str(); ok {
		proto.Kind = Opaque
		proto.Name = name
	} else {
		kw := p.ident()

		k, ok := kinds[kw]
		if !ok {
			return errors.New("unknown operation %q", kw)
		}

		proto.Kind = k
	}

	if proto.Kind == Replicate {
		if !p.lit("[") {
			return errors.New("replica count expected")
		}

		proto.N = p.num()
		if proto.N < 1 {
			return errors.New("bad replica count")
		}

		if !p.lit("]") {
			return errors.New("] expected")
		}
	}

	if proto.Kind.IsTerminator() {
		if len(results) != 0 {
			return errors.New("terminator with results")
		}

		proto.Operands, err = p.parseBareOperands()
		if err != nil {
			return err
		}

		p.bld.Build(proto, nil)

		return nil
	}

	proto.Operands, err = p.parseOperands()
	if err != nil {
		return err
	}

	// Region block arguments, if any: a second parenthesized list.
	var regArgs []Type
	var regNames []string

	p.skip()
	if p.i < len(p.b) && p.b[p.i] == '(' {
		regArgs, regNames, err = p.parseArgs()
		if err != nil {
			return errors.Wrap(err, "region args")
		}
	}

	var rt []Type

	if p.lit(":") {
		for {
			t, err := p.parseType()
			if err != nil {
				return err
			}

			rt = append(rt, t)

			if !p.lit(",") {
				break
			}
		}
	}

	if len(rt) != len(results) {
		return errors.New("%v results but %v types", len(results), len(rt))
	}

	p.skip()
	body := p.i < len(p.b) && p.b[p.i] == '{'

	if !body {
		if len(regNames) != 0 {
			return errors.New("region args without body")
		}

		if proto.Kind == Replicate {
			return errors.New("replicate without body")
		}

		id := p.bld.Build(proto, rt)
		p.bind(results, id)

		return nil
	}

	if proto.Kind == Replicate && len(proto.Operands) != proto.N*len(regArgs) {
		return errors.New("replicate[%v] with %v args wants %v operands, got %v",
			proto.N, len(regArgs), proto.N*len(regArgs), len(proto.Operands))
	}

	id, blk := p.bld.BuildWithBody(proto, rt)
	p.bind(results, id)

	for i, t := range regArgs {
		p.vals[regNames[i]] = p.f.AddBlockArg(blk, t)
	}

	save := *p.bld
	p.bld.SetInsertionPointToStart(blk)

	err = p.parseBody()
	if err != nil {
		return err
	}

	*p.bld = save

	return nil
}

// parseBareOperands parses the unparenthesized operand list of a terminator.
func (p *parser) parseBareOperands() (vs []ValueID, err error) {
	for {
		p.skip()

		if p.i == len(p.b) || p.b[p.i] != '%' {
			return vs, nil
		}

		v, err := p.operand()
		if err != nil {
			return nil, err
		}

		vs = append(vs, v)

		if !p.lit(",") {
			return vs, nil
		}
	}
}

func (p *parser) parseOperands() (vs []ValueID, err error) {
	if !p.lit("(") {
		return nil, errors.New("operand list expected")
	}

	for !p.lit(")") {
		if len(vs) != 0 && !p.lit(",") {
			return nil, errors.New(", expected")
		}

		v, err := p.operand()
		if err != nil {
			return nil, err
		}

		vs = append(vs, v)
	}

	return vs, nil
}

func (p *parser) operand() (ValueID, error) {
	n := p.val()
	if n == "" {
		return NoValue, errors.New("%%name expected")
	}

	v, ok := p.vals[n]
	if !ok {
		return NoValue, errors.New("undefined value %v", n)
	}

	return v, nil
}

func (p *parser) parseType() (Type, error) {
	kw := p.ident()

	t, ok := types[kw]
	if !ok {
		return Invalid, errors.New("unknown type %q", kw)
	}

	return t, nil
}

func (p *parser) bind(names []string, op OpID) {
	for i, n := range names {
		p.vals[n] = p.f.Op(op).Results[i]
	}
}

// Lexing. All helpers skip leading whitespace and comments.

func (p *parser) skip() {
	for p.i < len(p.b) {
		c := p.b[p.i]

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.i++
			continue
		}

		if c == '/' && p.i+1 < len(p.b) && p.b[p.i+1] == '/' {
			for p.i < len(p.b) && p.b[p.i] != '\n' {
				p.i++
			}

			continue
		}

		return
	}
}

// lit consumes the exact literal s if it is next.
func (p *parser) lit(s string) bool {
	p.skip()

	if p.i+len(s) > len(p.b) || string(p.b[p.i:p.i+len(s)]) != s {
		return false
	}

	// Keywords must not run into a longer ident.
	if isAlnum(s[len(s)-1]) && p.i+len(s) < len(p.b) && isAlnum(p.b[p.i+len(s)]) {
		return false
	}

	p.i += len(s)

	return true
}

func (p *parser) ident() string {
	p.skip()

	st := p.i
	for p.i < len(p.b) && (isAlnum(p.b[p.i]) || p.b[p.i] == '.' || p.b[p.i] == '-' || p.b[p.i] == '_') {
		p.i++
	}

	return string(p.b[st:p.i])
}

// val parses a %name reference and returns it with the % included.
func (p *parser) val() string {
	p.skip()

	if p.i == len(p.b) || p.b[p.i] != '%' {
		return ""
	}

	st := p.i
	p.i++

	for p.i < len(p.b) && isAlnum(p.b[p.i]) {
		p.i++
	}

	return string(p.b[st:p.i])
}

func (p *parser) num() (n int) {
	p.skip()

	st := p.i
	for p.i < len(p.b) && p.b[p.i] >= '0' && p.b[p.i] <= '9' {
		n = n*10 + int(p.b[p.i]-'0')
		p.i++
	}

	if p.i == st {
		return -1
	}

	return n
}

func (p *parser) str() (string, bool) {
	p.skip()

	if p.i == len(p.b) || p.b[p.i] != '"' {
		return "", false
	}

	p.i++
	st := p.i

	for p.i < len(p.b) && p.b[p.i] != '"' {
		p.i++
	}

	s := string(p.b[st:p.i])

	if p.i < len(p.b) {
		p.i++
	}

	return s, true
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
