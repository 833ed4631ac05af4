package algebra

import (
	"context"
	"math/big"
)

// ============================================================
// Engine
// ============================================================

// engine carries the per-request limits, the shared pass budget and an
// optional step recorder. It holds no other state.
type engine struct {
	lim Limits
	b   *budget
	rec *recorder
}

func newEngine(ctx context.Context, lim Limits, rec *recorder) *engine {
	lim = lim.withDefaults()
	return &engine{lim: lim, b: newBudget(ctx, lim.MaxPasses), rec: rec}
}

// quiet shares the budget but records nothing; used for helper calls
// whose inner steps are not worth narrating.
func (en *engine) quiet() *engine {
	c := *en
	c.rec = nil
	return &c
}

// ============================================================
// Simplify
// ============================================================

// Simplify rewrites e to a fixed point: like terms collected, numeric
// coefficients distributed, fractions over a common denominator and
// common polynomial factors cancelled.
func Simplify(ctx context.Context, e Expr) (Expr, error) {
	return newEngine(ctx, DefaultLimits(), nil).simplify(e)
}

func (en *engine) simplify(e Expr) (Expr, error) {
	cur := e
	for pass := 0; ; pass++ {
		if err := en.b.pass(pass); err != nil {
			return nil, err
		}
		next, err := en.simplifyNode(cur)
		if err != nil {
			return nil, err
		}
		if Equal(next, cur) {
			return next, nil
		}
		cur = next
	}
}

// simplifyNode is one bottom-up pass.
func (en *engine) simplifyNode(e Expr) (Expr, error) {
	switch v := e.(type) {
	case *Add:
		terms, err := en.simplifyAll(v.terms)
		if err != nil {
			return nil, err
		}
		s := AddOf(terms...)
		if a, ok := s.(*Add); ok {
			return en.combineFractions(a)
		}
		return s, nil
	case *Mul:
		fs, err := en.simplifyAll(v.factors)
		if err != nil {
			return nil, err
		}
		s := MulOf(fs...)
		m, ok := s.(*Mul)
		if !ok {
			return s, nil
		}
		if d := distributeCoeff(m); d != nil {
			en.rec.note(evDistribute, d, m)
			return d, nil
		}
		return en.cancel(m)
	case *Pow:
		base, err := en.simplifyNode(v.base)
		if err != nil {
			return nil, err
		}
		exp, err := en.simplifyNode(v.exp)
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	case *Func:
		args, err := en.simplifyAll(v.args)
		if err != nil {
			return nil, err
		}
		return FuncOf(v.name, args...), nil
	case *Eq:
		l, err := en.simplifyNode(v.LHS)
		if err != nil {
			return nil, err
		}
		r, err := en.simplifyNode(v.RHS)
		if err != nil {
			return nil, err
		}
		return &Eq{LHS: l, RHS: r}, nil
	}
	return e, nil
}

func (en *engine) simplifyAll(es []Expr) ([]Expr, error) {
	out := make([]Expr, len(es))
	for i, e := range es {
		s, err := en.simplifyNode(e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// distributeCoeff turns c*(a+b) into c*a + c*b.
func distributeCoeff(m *Mul) Expr {
	if len(m.factors) != 2 {
		return nil
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return nil
	}
	a, ok := m.factors[1].(*Add)
	if !ok {
		return nil
	}
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = MulOf(c, t)
	}
	return AddOf(terms...)
}

// ============================================================
// Fractions
// ============================================================

type denFactor struct {
	base Expr
	exp  int64
}

// splitFraction separates the symbolic denominator of a term. Numeric
// denominators stay in the coefficient.
func splitFraction(t Expr) (Expr, []denFactor) {
	fs := []Expr{t}
	if m, ok := t.(*Mul); ok {
		fs = m.factors
	}
	var num []Expr
	var den []denFactor
	for _, f := range fs {
		if p, ok := f.(*Pow); ok {
			if _, numBase := p.base.(*Num); !numBase {
				if x, ok := p.exp.(*Num); ok && x.IsNegative() {
					if k, ok := x.int64Value(); ok {
						den = append(den, denFactor{base: p.base, exp: -k})
						continue
					}
				}
			}
		}
		num = append(num, f)
	}
	return MulOf(num...), den
}

// numerDenom splits e into numerator and symbolic denominator.
func numerDenom(e Expr) (Expr, Expr) {
	n, den := splitFraction(e)
	d := make([]Expr, len(den))
	for i, f := range den {
		d[i] = PowOf(f.base, N(f.exp))
	}
	return n, MulOf(d...)
}

// combineFractions writes a sum with symbolic denominators over their
// least common denominator.
func (en *engine) combineFractions(a *Add) (Expr, error) {
	type part struct {
		num Expr
		den []denFactor
	}
	parts := make([]part, len(a.terms))
	common := []denFactor{}
	index := map[string]int{}
	symbolic := false
	for i, t := range a.terms {
		n, den := splitFraction(t)
		parts[i] = part{num: n, den: den}
		for _, d := range den {
			symbolic = true
			k := d.base.key()
			if j, ok := index[k]; ok {
				common[j].exp = max(common[j].exp, d.exp)
				continue
			}
			index[k] = len(common)
			common = append(common, d)
		}
	}
	if !symbolic {
		return a, nil
	}

	numerators := make([]Expr, len(parts))
	for i, p := range parts {
		have := map[string]int64{}
		for _, d := range p.den {
			have[d.base.key()] += d.exp
		}
		fs := []Expr{p.num}
		for _, c := range common {
			if missing := c.exp - have[c.base.key()]; missing > 0 {
				fs = append(fs, PowOf(c.base, N(missing)))
			}
		}
		numerators[i] = MulOf(fs...)
	}
	denFactors := make([]Expr, len(common))
	for i, c := range common {
		denFactors[i] = PowOf(c.base, N(c.exp))
	}
	den := MulOf(denFactors...)
	num, err := en.quiet().expand(AddOf(numerators...))
	if err != nil {
		return nil, err
	}
	out := MulOf(num, PowOf(den, N(-1)))
	en.rec.note(evFractions, out, den, num)
	return out, nil
}

// ============================================================
// Cancellation
// ============================================================

type powFactor struct {
	base Expr
	exp  int64
}

// factorMultiset reads a factored product as coefficient and base powers.
func factorMultiset(e Expr) (*Num, []*powFactor) {
	fs := []Expr{e}
	if m, ok := e.(*Mul); ok {
		fs = m.factors
	}
	coeff := N(1)
	var out []*powFactor
	for _, f := range fs {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		b, x := baseExp(f)
		if n, ok := x.(*Num); ok {
			if k, ok := n.int64Value(); ok && k > 0 {
				out = append(out, &powFactor{base: b, exp: k})
				continue
			}
		}
		out = append(out, &powFactor{base: f, exp: 1})
	}
	return coeff, out
}

// cancel removes polynomial factors shared by the numerator and the
// denominator of m. m is returned unchanged when nothing cancels.
func (en *engine) cancel(m *Mul) (Expr, error) {
	var num, den []Expr
	hasSum := false
	for _, f := range m.factors {
		if p, ok := f.(*Pow); ok {
			if x, ok := p.exp.(*Num); ok && x.IsNegative() && x.IsInteger() {
				if _, numBase := p.base.(*Num); !numBase {
					den = append(den, PowOf(p.base, numNeg(x)))
					if _, ok := p.base.(*Add); ok {
						hasSum = true
					}
					continue
				}
			}
		}
		num = append(num, f)
	}
	if len(den) == 0 || !hasSum {
		return m, nil
	}
	q := en.quiet()
	fn, err := q.factor(MulOf(num...))
	if err != nil {
		return nil, err
	}
	fd, err := q.factor(MulOf(den...))
	if err != nil {
		return nil, err
	}
	cn, nfs := factorMultiset(fn)
	cd, dfs := factorMultiset(fd)
	cancelled := false
	for _, d := range dfs {
		for _, n := range nfs {
			if n.exp > 0 && d.exp > 0 && Equal(n.base, d.base) {
				c := min(n.exp, d.exp)
				n.exp -= c
				d.exp -= c
				cancelled = true
			}
		}
	}
	if !cancelled {
		return m, nil
	}
	out := []Expr{cn, PowOf(cd, N(-1))}
	for _, n := range nfs {
		out = append(out, PowOf(n.base, N(n.exp)))
	}
	for _, d := range dfs {
		out = append(out, PowOf(d.base, N(-d.exp)))
	}
	res := MulOf(out...)
	en.rec.note(evCancel, res, m)
	return res, nil
}

// isRational reports whether e is an exact number.
func isRational(e Expr) (*big.Rat, bool) {
	n, ok := e.(*Num)
	if !ok || !n.IsExact() {
		return nil, false
	}
	return n.val, true
}
