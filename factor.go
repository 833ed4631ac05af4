package algebra

import (
	"context"
	"math/big"
)

// ============================================================
// Factor
// ============================================================

// Factor rewrites e as a product. It pulls out the common factor, then
// tries difference of squares, perfect-square trinomials, sum and
// difference of cubes and, for univariate polynomials, the rational-root
// search. e comes back unchanged when nothing applies.
func Factor(ctx context.Context, e Expr) (Expr, error) {
	return newEngine(ctx, DefaultLimits(), nil).factor(e)
}

func (en *engine) factor(e Expr) (Expr, error) {
	if _, ok := e.(*Eq); ok {
		return nil, domainErr("cannot factor an equation; use solve")
	}
	ex, err := en.quiet().expand(e)
	if err != nil {
		return nil, err
	}
	var out Expr
	switch v := ex.(type) {
	case *Add:
		out, err = en.factorSum(v)
	case *Mul:
		out, err = en.factorProduct(v)
	default:
		out = ex
	}
	if err != nil {
		return nil, err
	}
	if Equal(out, ex) {
		en.rec.note(evNoFactor, e)
		return e, nil
	}
	return out, nil
}

// factorProduct factors every sum inside a product. Shared factors of the
// numerator and the denominator cancel when MulOf merges their bases.
func (en *engine) factorProduct(m *Mul) (Expr, error) {
	fs := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		b, x := baseExp(f)
		a, isSum := b.(*Add)
		n, isNum := x.(*Num)
		if !isSum || !isNum || !n.IsInteger() {
			fs[i] = f
			continue
		}
		fb, err := en.factorSum(a)
		if err != nil {
			return nil, err
		}
		fs[i] = PowOf(fb, n)
	}
	return MulOf(fs...), nil
}

// factorSum is the recursive step: common factor first, then patterns on
// what is left.
func (en *engine) factorSum(a *Add) (Expr, error) {
	if err := en.b.check(); err != nil {
		return nil, err
	}
	common, rest := commonFactor(a)
	inner := Expr(a)
	if common != nil {
		inner = rest
		en.rec.note(evCommon, MulOf(common, rest), common)
	}
	f := inner
	if s, ok := inner.(*Add); ok {
		var err error
		if f, err = en.factorPatterns(s); err != nil {
			return nil, err
		}
	}
	if common == nil {
		return f, nil
	}
	return MulOf(common, f), nil
}

func (en *engine) factorAny(e Expr) (Expr, error) {
	if s, ok := e.(*Add); ok {
		return en.factorSum(s)
	}
	return e, nil
}

// commonFactor returns the content and the shared base powers of the terms
// of a together with the quotient. common is nil when it would be 1.
func commonFactor(a *Add) (common Expr, rest Expr) {
	type shared struct {
		base Expr
		exp  int64
	}
	var bases []*shared
	index := map[string]*shared{}
	exact := true
	num, den := new(big.Int), big.NewInt(1)
	for i, t := range a.terms {
		c, r := splitCoeff(t)
		if !c.IsExact() {
			exact = false
		} else {
			num.GCD(nil, nil, num, new(big.Int).Abs(c.val.Num()))
			g := new(big.Int).GCD(nil, nil, den, c.val.Denom())
			den.Mul(den, new(big.Int).Quo(c.val.Denom(), g))
		}
		powers := map[string]*shared{}
		fs := []Expr{r}
		if m, ok := r.(*Mul); ok {
			fs = m.factors
		}
		for _, f := range fs {
			b, x := baseExp(f)
			n, ok := x.(*Num)
			if _, isNum := b.(*Num); isNum || !ok {
				continue
			}
			if k, ok := n.int64Value(); ok && k > 0 {
				powers[b.key()] = &shared{base: b, exp: k}
			}
		}
		if i == 0 {
			for k, p := range powers {
				index[k] = p
				bases = append(bases, p)
			}
			continue
		}
		for k, s := range index {
			p, ok := powers[k]
			if !ok {
				s.exp = 0
				continue
			}
			s.exp = min(s.exp, p.exp)
		}
	}

	content := N(1)
	if exact && num.Sign() != 0 {
		content = ratNum(new(big.Rat).SetFrac(num, den))
	}
	if lead, _ := splitCoeff(a.terms[0]); lead.IsNegative() {
		content = numNeg(content)
	}
	fs := []Expr{content}
	for _, s := range bases {
		if s.exp > 0 {
			fs = append(fs, PowOf(s.base, N(s.exp)))
		}
	}
	c := MulOf(fs...)
	if n, ok := c.(*Num); ok && n.IsOne() {
		return nil, nil
	}
	inv := PowOf(c, N(-1))
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = MulOf(t, inv)
	}
	return c, AddOf(terms...)
}

// ============================================================
// Patterns
// ============================================================

func (en *engine) factorPatterns(a *Add) (Expr, error) {
	switch len(a.terms) {
	case 2:
		if out, ok, err := en.differenceOfSquares(a); ok || err != nil {
			return out, err
		}
		if out, ok, err := en.sumOfCubes(a); ok || err != nil {
			return out, err
		}
	case 3:
		if out, ok := en.perfectSquare(a); ok {
			return out, nil
		}
	}
	return en.factorByRoots(a)
}

// rootTerm returns the q-th root of a monomial whose coefficient is a
// perfect power and whose exponents are multiples of q.
func rootTerm(t Expr, q int64) (Expr, bool) {
	c, r := splitCoeff(t)
	if !c.IsExact() {
		return nil, false
	}
	rc, ok := ratRoot(c.val, q)
	if !ok {
		return nil, false
	}
	out := []Expr{ratNum(rc)}
	fs := []Expr{r}
	if m, ok := r.(*Mul); ok {
		fs = m.factors
	}
	for _, f := range fs {
		if n, ok := f.(*Num); ok && n.IsOne() {
			continue
		}
		b, x := baseExp(f)
		n, ok := x.(*Num)
		if !ok {
			return nil, false
		}
		k, ok := n.int64Value()
		if !ok || k <= 0 || k%q != 0 {
			return nil, false
		}
		out = append(out, PowOf(b, N(k/q)))
	}
	return MulOf(out...), true
}

// differenceOfSquares: a^2 - b^2 = (a+b)(a-b).
func (en *engine) differenceOfSquares(s *Add) (Expr, bool, error) {
	t0, t1 := s.terms[0], s.terms[1]
	c1, _ := splitCoeff(t1)
	if !c1.IsNegative() {
		return nil, false, nil
	}
	a, ok := rootTerm(t0, 2)
	if !ok {
		return nil, false, nil
	}
	b, ok := rootTerm(NegOf(t1), 2)
	if !ok {
		return nil, false, nil
	}
	plus, err := en.factorAny(AddOf(a, b))
	if err != nil {
		return nil, false, err
	}
	minus, err := en.factorAny(SubOf(a, b))
	if err != nil {
		return nil, false, err
	}
	out := MulOf(plus, minus)
	en.rec.note(evSquares, out, a, b)
	return out, true, nil
}

// sumOfCubes: a^3 + b^3 = (a+b)(a^2 - ab + b^2), b carrying the sign.
func (en *engine) sumOfCubes(s *Add) (Expr, bool, error) {
	a, ok := rootTerm(s.terms[0], 3)
	if !ok {
		return nil, false, nil
	}
	b, ok := rootTerm(s.terms[1], 3)
	if !ok {
		return nil, false, nil
	}
	if Equal(s.terms[0], a) && Equal(s.terms[1], b) {
		return nil, false, nil
	}
	lin, err := en.factorAny(AddOf(a, b))
	if err != nil {
		return nil, false, err
	}
	quad := AddOf(PowOf(a, N(2)), NegOf(MulOf(a, b)), PowOf(b, N(2)))
	out := MulOf(lin, quad)
	en.rec.note(evCubes, out, a, b)
	return out, true, nil
}

// perfectSquare: a^2 ± 2ab + b^2 = (a ± b)^2.
func (en *engine) perfectSquare(s *Add) (Expr, bool) {
	a, ok := rootTerm(s.terms[0], 2)
	if !ok {
		return nil, false
	}
	b, ok := rootTerm(s.terms[2], 2)
	if !ok {
		return nil, false
	}
	var base Expr
	switch mid := s.terms[1]; {
	case Equal(mid, MulOf(N(2), a, b)):
		base = AddOf(a, b)
	case Equal(mid, MulOf(N(-2), a, b)):
		base = SubOf(a, b)
	default:
		return nil, false
	}
	out := PowOf(base, N(2))
	en.rec.note(evPerfect, out, a, b)
	return out, true
}

// factorByRoots splits off a linear factor (q·v - p) for every rational
// root p/q of a univariate polynomial with exact coefficients.
func (en *engine) factorByRoots(s *Add) (Expr, error) {
	free := FreeSymbols(s)
	if len(free) != 1 {
		return s, nil
	}
	v := free[0]
	coeffs, ok := polyCoeffs(s, v)
	if !ok {
		return s, nil
	}
	p, ok := toRatPoly(coeffs)
	if !ok || p.degree() < 2 || p.degree() > en.lim.MaxRootSearchDegree {
		return s, nil
	}
	content, _ := p.primitive()
	roots, rest, err := rationalRoots(en.b, p)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return s, nil
	}
	x := S(v)
	scale := new(big.Rat).Set(content)
	fs := make([]Expr, 0, len(roots)+2)
	for _, r := range roots {
		q := new(big.Rat).SetInt(r.Denom())
		pn := new(big.Rat).SetInt(r.Num())
		fs = append(fs, AddOf(MulOf(ratNum(q), x), ratNum(pn.Neg(pn))))
		scale.Quo(scale, q)
	}
	scaled := make(ratPoly, len(rest))
	for i, c := range rest {
		scaled[i] = new(big.Rat).Mul(c, scale)
	}
	if scaled.degree() == 0 {
		fs = append(fs, ratNum(scaled[0]))
	} else {
		c, prim := scaled.primitive()
		fs = append(fs, ratNum(c), prim.expr(v))
	}
	out := MulOf(fs...)
	if len(roots) == 2 && p.degree() == 2 {
		en.noteProductSum(out, p, roots)
	} else {
		en.rec.note(evRoots, out, rootList(roots)...)
	}
	return out, nil
}

// noteProductSum records the two numbers of the "ac" method: their product
// is a·c and their sum is b.
func (en *engine) noteProductSum(out Expr, p ratPoly, roots []*big.Rat) {
	if en.rec == nil {
		return
	}
	_, prim := p.primitive()
	a, b, c := prim[2], prim[1], prim[0]
	p1, q1 := roots[0].Num(), roots[0].Denom()
	p2, q2 := roots[1].Num(), roots[1].Denom()
	m := new(big.Int).Neg(new(big.Int).Mul(p1, q2))
	n := new(big.Int).Neg(new(big.Int).Mul(p2, q1))
	ac := new(big.Rat).Mul(a, c)
	en.rec.note(evProductSum, out,
		ratNum(ac), ratNum(new(big.Rat).Set(b)),
		ratNum(new(big.Rat).SetInt(m)), ratNum(new(big.Rat).SetInt(n)))
}

func rootList(roots []*big.Rat) []Expr {
	out := make([]Expr, len(roots))
	for i, r := range roots {
		out[i] = ratNum(new(big.Rat).Set(r))
	}
	return out
}
