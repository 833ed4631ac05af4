package algebra

import (
	"context"
	"math/big"
	"sort"
)

// ============================================================
// Polynomial utilities
// ============================================================

// polyDegree returns the degree of e in v. ok is false when v occurs
// anywhere but in non-negative integer powers.
func polyDegree(e Expr, v string) (int, bool) {
	if !containsSym(e, v) {
		if _, isEq := e.(*Eq); isEq {
			return 0, false
		}
		return 0, true
	}
	switch t := e.(type) {
	case *Sym:
		return 1, true
	case *Pow:
		n, ok := t.exp.(*Num)
		if !ok {
			return 0, false
		}
		k, ok := n.int64Value()
		if !ok || k < 0 {
			return 0, false
		}
		d, ok := polyDegree(t.base, v)
		return d * int(k), ok
	case *Add:
		deg := 0
		for _, term := range t.terms {
			d, ok := polyDegree(term, v)
			if !ok {
				return 0, false
			}
			deg = max(deg, d)
		}
		return deg, true
	case *Mul:
		deg := 0
		for _, f := range t.factors {
			d, ok := polyDegree(f, v)
			if !ok {
				return 0, false
			}
			deg += d
		}
		return deg, true
	}
	return 0, false
}

// Degree returns the degree of e in v, or -1 when e is not a polynomial
// in v.
func Degree(e Expr, v string) int {
	d, ok := polyDegree(e, v)
	if !ok {
		return -1
	}
	return d
}

// polyCoeffs reads the coefficients of an expanded polynomial in v.
func polyCoeffs(e Expr, v string) (map[int]Expr, bool) {
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = a.terms
	}
	out := map[int]Expr{}
	for _, t := range terms {
		deg, rest, ok := termPower(t, v)
		if !ok {
			return nil, false
		}
		if existing, ok := out[deg]; ok {
			out[deg] = AddOf(existing, rest)
		} else {
			out[deg] = rest
		}
	}
	return out, true
}

// termPower splits a monomial into v^deg times the rest.
func termPower(t Expr, v string) (int, Expr, bool) {
	fs := []Expr{t}
	if m, ok := t.(*Mul); ok {
		fs = m.factors
	}
	deg := 0
	var rest []Expr
	for _, f := range fs {
		if s, ok := f.(*Sym); ok && s.name == v {
			deg++
			continue
		}
		if p, ok := f.(*Pow); ok {
			if s, ok := p.base.(*Sym); ok && s.name == v {
				n, ok := p.exp.(*Num)
				if !ok {
					return 0, nil, false
				}
				k, ok := n.int64Value()
				if !ok || k < 0 {
					return 0, nil, false
				}
				deg += int(k)
				continue
			}
		}
		if containsSym(f, v) {
			return 0, nil, false
		}
		rest = append(rest, f)
	}
	return deg, MulOf(rest...), true
}

// Coeff returns the coefficient of v^n in e treated as a polynomial in v.
// n = 0 yields the constant term.
func Coeff(ctx context.Context, e Expr, v string, n int) (Expr, error) {
	en := newEngine(ctx, DefaultLimits(), nil)
	ex, err := en.expand(e)
	if err != nil {
		return nil, err
	}
	coeffs, ok := polyCoeffs(ex, v)
	if !ok {
		return nil, domainErr("%s is not a polynomial in %s", String(e), v)
	}
	if c, ok := coeffs[n]; ok {
		return c, nil
	}
	return N(0), nil
}

// Collect groups the expanded form of e by powers of v, highest first.
func Collect(ctx context.Context, e Expr, v string) (Expr, error) {
	en := newEngine(ctx, DefaultLimits(), nil)
	return en.collect(e, v)
}

func (en *engine) collect(e Expr, v string) (Expr, error) {
	ex, err := en.expand(e)
	if err != nil {
		return nil, err
	}
	coeffs, ok := polyCoeffs(ex, v)
	if !ok {
		return ex, nil
	}
	degs := make([]int, 0, len(coeffs))
	for d := range coeffs {
		degs = append(degs, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degs)))
	terms := make([]Expr, 0, len(degs))
	for _, d := range degs {
		terms = append(terms, MulOf(coeffs[d], PowOf(S(v), N(int64(d)))))
	}
	return AddOf(terms...), nil
}

// ============================================================
// Rational polynomials
// ============================================================

// ratPoly holds exact coefficients, index = degree.
type ratPoly []*big.Rat

// toRatPoly succeeds when every coefficient is an exact number.
func toRatPoly(coeffs map[int]Expr) (ratPoly, bool) {
	deg := 0
	for d := range coeffs {
		deg = max(deg, d)
	}
	p := make(ratPoly, deg+1)
	for i := range p {
		p[i] = new(big.Rat)
	}
	for d, c := range coeffs {
		n, ok := c.(*Num)
		if !ok || !n.IsExact() {
			return nil, false
		}
		p[d] = n.Rat()
	}
	return p.trim(), true
}

func (p ratPoly) trim() ratPoly {
	for len(p) > 1 && p[len(p)-1].Sign() == 0 {
		p = p[:len(p)-1]
	}
	return p
}

func (p ratPoly) degree() int { return len(p.trim()) - 1 }

func (p ratPoly) eval(x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p[i])
	}
	return acc
}

// divRoot divides by (x - r) with synthetic division; r must be a root.
func (p ratPoly) divRoot(r *big.Rat) ratPoly {
	n := len(p) - 1
	out := make(ratPoly, n)
	carry := new(big.Rat)
	for i := n; i >= 1; i-- {
		c := new(big.Rat).Add(p[i], new(big.Rat).Mul(carry, r))
		out[i-1] = c
		carry = c
	}
	return out
}

// primitive splits p into content * q where q has coprime integer
// coefficients and a positive leading coefficient.
func (p ratPoly) primitive() (*big.Rat, ratPoly) {
	p = p.trim()
	lcm := big.NewInt(1)
	for _, c := range p {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	g := new(big.Int)
	ints := make([]*big.Int, len(p))
	for i, c := range p {
		v := new(big.Int).Mul(c.Num(), new(big.Int).Quo(lcm, c.Denom()))
		ints[i] = v
		g.GCD(nil, nil, g, new(big.Int).Abs(v))
	}
	if g.Sign() == 0 {
		return new(big.Rat), ratPoly{new(big.Rat)}
	}
	if ints[len(ints)-1].Sign() < 0 {
		g.Neg(g)
	}
	q := make(ratPoly, len(p))
	for i, v := range ints {
		q[i] = new(big.Rat).SetInt(new(big.Int).Quo(v, g))
	}
	return new(big.Rat).SetFrac(g, lcm), q
}

func (p ratPoly) expr(v string) Expr {
	terms := make([]Expr, 0, len(p))
	for d, c := range p {
		if c.Sign() == 0 {
			continue
		}
		terms = append(terms, MulOf(ratNum(new(big.Rat).Set(c)), PowOf(S(v), N(int64(d)))))
	}
	return AddOf(terms...)
}

// maxRootSearchCoeff caps |a0| and |an| so divisor enumeration stays cheap.
const maxRootSearchCoeff = 1_000_000_000

// rationalRoots finds every rational root of p (with multiplicity) by the
// rational-root theorem and returns them ascending along with the
// remaining cofactor.
func rationalRoots(b *budget, p ratPoly) ([]*big.Rat, ratPoly, error) {
	_, prim := p.primitive()
	var roots []*big.Rat
	for prim.degree() > 0 && prim[0].Sign() == 0 {
		roots = append(roots, new(big.Rat))
		prim = prim[1:]
	}
	if prim.degree() < 1 {
		return roots, prim, nil
	}
	a0 := new(big.Int).Abs(prim[0].Num())
	an := new(big.Int).Abs(prim[len(prim)-1].Num())
	if !a0.IsInt64() || !an.IsInt64() || a0.Int64() > maxRootSearchCoeff || an.Int64() > maxRootSearchCoeff {
		return roots, prim, nil
	}
	seen := map[string]bool{}
	var candidates []*big.Rat
	for _, q := range divisors(an.Int64()) {
		for _, pp := range divisors(a0.Int64()) {
			for _, sign := range []int64{1, -1} {
				c := big.NewRat(sign*pp, q)
				if k := c.RatString(); !seen[k] {
					seen[k] = true
					candidates = append(candidates, c)
				}
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Cmp(candidates[j]) < 0 })
	rest := prim
	for i, c := range candidates {
		if i%64 == 0 {
			if err := b.check(); err != nil {
				return nil, nil, err
			}
		}
		for rest.degree() >= 1 && rest.eval(c).Sign() == 0 {
			roots = append(roots, c)
			rest = rest.divRoot(c).trim()
		}
		if rest.degree() < 1 {
			break
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots, rest, nil
}

func divisors(n int64) []int64 {
	if n == 0 {
		return []int64{1}
	}
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			small = append(small, d)
			if d != n/d {
				large = append(large, n/d)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}
