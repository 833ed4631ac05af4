package algebra

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// ============================================================
// Parser
// ============================================================

// Binding powers, high to low: call (in atom), ^, unary minus, * /, + -.
// '=' is only accepted by equation at the root.
const (
	bpSum   = 10
	bpProd  = 20
	bpUnary = 30
	bpPower = 40
)

type parser struct {
	toks []token
	i    int
}

// Parse reads an expression or an equation and returns its canonical tree.
func Parse(s string) (Expr, error) {
	raw, err := parseRaw(Normalize(s), nil)
	if err != nil {
		return nil, err
	}
	return Canonical(raw), nil
}

// parseRaw returns the tree exactly as written, before canonicalization.
func parseRaw(s string, declared []string) (Expr, error) {
	toks, err := tokenize(s, declared)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, syntaxErr(0, "empty expression")
	}
	e, err := p.equation()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxErr(t.pos, "unexpected %s", t.describe())
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) error {
	if t := p.peek(); t.kind != kind {
		return syntaxErr(t.pos, "expected %s, found %s", what, t.describe())
	}
	p.next()
	return nil
}

func (p *parser) equation() (Expr, error) {
	lhs, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEq {
		return lhs, nil
	}
	p.next()
	if p.peek().kind == tokEOF {
		return nil, syntaxErr(p.peek().pos, "missing right-hand side of '='")
	}
	rhs, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return &Eq{LHS: lhs, RHS: rhs}, nil
}

func infixPower(t token) int {
	if t.kind != tokOp {
		return 0
	}
	switch t.text {
	case "+", "-":
		return bpSum
	case "*", "/":
		return bpProd
	case "^":
		return bpPower
	}
	return 0
}

func (p *parser) expr(minBP int) (Expr, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}
	// chain is the operator that built left in this loop; only such nodes
	// are extended in place, so parenthesized groups stay intact.
	chain := ""
	for {
		t := p.peek()
		bp := infixPower(t)
		if bp == 0 || bp <= minBP {
			return left, nil
		}
		p.next()
		if t.text == "^" {
			exp, err := p.expr(bpPower - 5)
			if err != nil {
				return nil, err
			}
			left, chain = &Pow{base: left, exp: exp}, ""
			continue
		}
		right, err := p.expr(bp)
		if err != nil {
			return nil, err
		}
		switch t.text {
		case "+", "-":
			if t.text == "-" {
				right = &Neg{x: right}
			}
			if a, ok := left.(*Add); ok && chain == "+" {
				a.terms = append(a.terms, right)
			} else {
				left = &Add{terms: []Expr{left, right}}
			}
			chain = "+"
		case "*", "/":
			if t.text == "/" {
				right = &Pow{base: right, exp: N(-1)}
			}
			if m, ok := left.(*Mul); ok && chain == "*" {
				m.factors = append(m.factors, right)
			} else {
				left = &Mul{factors: []Expr{left, right}}
			}
			chain = "*"
		}
	}
}

func (p *parser) prefix() (Expr, error) {
	t := p.peek()
	switch {
	case t.kind == tokOp && t.text == "-":
		p.next()
		x, err := p.expr(bpUnary)
		if err != nil {
			return nil, err
		}
		return &Neg{x: x}, nil
	case t.kind == tokOp && t.text == "+":
		p.next()
		return p.expr(bpUnary)
	case t.kind == tokRoot:
		p.next()
		x, err := p.expr(bpPower - 5)
		if err != nil {
			return nil, err
		}
		return &Func{name: "sqrt", args: []Expr{x}}, nil
	}
	return p.atom()
}

func (p *parser) atom() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return parseNumber(t)
	case tokIdent:
		if isFunction(t.text) {
			return p.call(t)
		}
		return &Sym{name: t.text}, nil
	case tokLParen:
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case tokEOF:
		return nil, syntaxErr(t.pos, "unexpected end of input")
	}
	return nil, syntaxErr(t.pos, "unexpected %s", t.describe())
}

func (p *parser) call(name token) (Expr, error) {
	if err := p.expect(tokLParen, "'(' after "+name.text); err != nil {
		return nil, err
	}
	var args []Expr
	if p.peek().kind != tokRParen {
		for {
			a, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	arity := functions[name.text]
	if len(args) < arity[0] || len(args) > arity[1] {
		if arity[0] == arity[1] {
			return nil, syntaxErr(name.pos, "%s takes %d argument(s), got %d", name.text, arity[0], len(args))
		}
		return nil, syntaxErr(name.pos, "%s takes %d to %d arguments, got %d", name.text, arity[0], arity[1], len(args))
	}
	return &Func{name: name.text, args: args}, nil
}

func parseNumber(t token) (Expr, error) {
	text := t.text
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	text = strings.TrimSuffix(text, ".")
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, syntaxErr(t.pos, "malformed number %q", t.text)
	}
	return &Num{val: r, decimal: strings.Contains(t.text, ".")}, nil
}

// ============================================================
// Annotations
// ============================================================

// binding is one "name = value" pair of an evaluate annotation. raw is
// the value as written, used when narrating the substitution.
type binding struct {
	name  string
	value Expr
	raw   Expr
}

// parseBindings reads "x=5, y=2pi".
func parseBindings(annot string) ([]binding, error) {
	var out []binding
	seen := map[string]bool{}
	for _, part := range splitTopLevel(annot, ',') {
		name, valueText, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || !isIdentifier(name) {
			return nil, syntaxErr(0, "substitution %q must look like name=value", strings.TrimSpace(part))
		}
		if seen[name] {
			return nil, domainErr("duplicate substitution for %s", name)
		}
		seen[name] = true
		raw, err := parseRaw(strings.TrimSpace(valueText), nil)
		if err != nil {
			return nil, err
		}
		if _, isEq := raw.(*Eq); isEq {
			return nil, syntaxErr(0, "substitution for %s contains '='", name)
		}
		out = append(out, binding{name: name, value: Canonical(raw), raw: raw})
	}
	if len(out) == 0 {
		return nil, syntaxErr(0, "empty substitution list")
	}
	return out, nil
}

// Range is the sampling window of a graph.
type Range struct {
	Var     string
	Min     float64
	Max     float64
	Samples int
}

const defaultSamples = 201

// parseRange reads "x=min:max" or "x=min:max:samples". min and max may be
// constant expressions such as -2pi.
func parseRange(annot string) (Range, error) {
	name, window, ok := strings.Cut(annot, "=")
	name = strings.TrimSpace(name)
	if !ok || !isIdentifier(name) {
		return Range{}, syntaxErr(0, "range %q must look like x=min:max[:samples]", annot)
	}
	parts := splitTopLevel(window, ':')
	if len(parts) < 2 || len(parts) > 3 {
		return Range{}, syntaxErr(0, "range %q must look like x=min:max[:samples]", annot)
	}
	rng := Range{Var: name, Samples: defaultSamples}
	bounds := make([]float64, 2)
	for i := range bounds {
		e, err := Parse(parts[i])
		if err != nil {
			return Range{}, err
		}
		f, ok := evalFloat(e, nil)
		if !ok {
			return Range{}, domainErr("range bound %q is not a real constant", strings.TrimSpace(parts[i]))
		}
		bounds[i] = f
	}
	rng.Min, rng.Max = bounds[0], bounds[1]
	if len(parts) == 3 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return Range{}, syntaxErr(0, "sample count %q is not an integer", strings.TrimSpace(parts[2]))
		}
		rng.Samples = n
	}
	return rng, nil
}

// splitTopLevel splits s at sep outside parentheses.
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth, start := 0, 0
	rs := []rune(s)
	for i, r := range rs {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, string(rs[start:i]))
				start = i + 1
			}
		}
	}
	last := string(rs[start:])
	if strings.TrimSpace(last) != "" || len(parts) > 0 {
		parts = append(parts, last)
	}
	return parts
}

// isIdentifier accepts names a user may bind or solve for.
func isIdentifier(s string) bool {
	if s == "" || isFunction(s) {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentStart(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
