package algebra

import (
	"context"
	"math/big"
)

// ============================================================
// Expand
// ============================================================

// Expand multiplies out products and integer powers of sums and collects
// like terms. Symbolic denominators are left in place.
func Expand(ctx context.Context, e Expr) (Expr, error) {
	return newEngine(ctx, DefaultLimits(), nil).expand(e)
}

func (en *engine) expand(e Expr) (Expr, error) {
	if eq, ok := e.(*Eq); ok {
		l, err := en.expand(eq.LHS)
		if err != nil {
			return nil, err
		}
		r, err := en.expand(eq.RHS)
		if err != nil {
			return nil, err
		}
		return &Eq{LHS: l, RHS: r}, nil
	}
	cur := e
	for pass := 0; ; pass++ {
		if err := en.b.pass(pass); err != nil {
			return nil, err
		}
		ts, err := en.terms(cur)
		if err != nil {
			return nil, err
		}
		next := AddOf(ts...)
		if pass == 0 && len(ts) > 1 {
			en.rec.note(evTerms, &Add{terms: ts}, next)
		}
		if Equal(next, cur) {
			return next, nil
		}
		cur = next
	}
}

// terms returns the uncombined monomials of e with every product and
// power of sums multiplied out.
func (en *engine) terms(e Expr) ([]Expr, error) {
	switch v := e.(type) {
	case *Add:
		var out []Expr
		for _, t := range v.terms {
			ts, err := en.terms(t)
			if err != nil {
				return nil, err
			}
			out = append(out, ts...)
		}
		return out, en.checkSize(len(out))
	case *Mul:
		return en.expandProduct(v)
	case *Pow:
		return en.expandPow(v)
	case *Func:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			x, err := en.expand(a)
			if err != nil {
				return nil, err
			}
			args[i] = x
		}
		return []Expr{FuncOf(v.name, args...)}, nil
	}
	return []Expr{e}, nil
}

func (en *engine) checkSize(n int) error {
	if n > en.lim.MaxTerms {
		return &BudgetError{What: "expansion size"}
	}
	return nil
}

func (en *engine) expandProduct(m *Mul) ([]Expr, error) {
	var lists [][]Expr
	var den []Expr
	sums := 0
	for _, f := range m.factors {
		if p, ok := f.(*Pow); ok {
			if x, ok := p.exp.(*Num); ok && x.IsNegative() {
				if _, numBase := p.base.(*Num); !numBase {
					den = append(den, f)
					continue
				}
			}
		}
		ts, err := en.terms(f)
		if err != nil {
			return nil, err
		}
		if len(ts) > 1 {
			sums++
		}
		lists = append(lists, ts)
	}
	prod, err := en.cartesian(lists)
	if err != nil {
		return nil, err
	}
	if sums >= 2 {
		kind := evDistribute
		if sums == 2 && len(lists) == 2 && len(lists[0]) == 2 && len(lists[1]) == 2 {
			kind = evFOIL
		}
		en.rec.note(kind, &Add{terms: prod}, m)
	}
	if len(den) == 0 {
		return prod, nil
	}
	// Keep a symbolic denominator whole instead of splitting it across
	// every term of the numerator.
	return []Expr{MulOf(append([]Expr{AddOf(prod...)}, den...)...)}, nil
}

func (en *engine) expandPow(p *Pow) ([]Expr, error) {
	x, ok := p.exp.(*Num)
	n, isInt := int64(0), false
	if ok {
		n, isInt = x.int64Value()
	}
	base, err := en.terms(p.base)
	if err != nil {
		return nil, err
	}
	if len(base) < 2 {
		return []Expr{PowOf(AddOf(base...), p.exp)}, nil
	}
	if !isInt || n < 2 {
		return []Expr{PowOf(AddOf(base...), p.exp)}, nil
	}
	if n > int64(en.lim.MaxBinomialDegree) {
		return nil, &BudgetError{What: "binomial degree"}
	}
	sum := AddOf(base...)
	a, ok := sum.(*Add)
	if !ok {
		return []Expr{PowOf(sum, p.exp)}, nil
	}
	switch {
	case len(a.terms) == 2:
		out := binomial(a.terms[0], a.terms[1], n)
		kind := evBinomial
		if n == 2 {
			kind = evFOIL
			t0, t1 := a.terms[0], a.terms[1]
			en.rec.note(kind, &Add{terms: []Expr{MulOf(t0, t0), MulOf(t0, t1), MulOf(t1, t0), MulOf(t1, t1)}}, p)
		} else {
			en.rec.note(kind, &Add{terms: out}, p)
		}
		return out, en.checkSize(len(out))
	case n == 2:
		out := squareSum(a.terms)
		en.rec.note(evSquare, &Add{terms: out}, p)
		return out, en.checkSize(len(out))
	}
	out, err := en.repeatedProduct(a.terms, n)
	if err != nil {
		return nil, err
	}
	en.rec.note(evDistribute, &Add{terms: out}, p)
	return out, nil
}

// repeatedProduct multiplies the sum of ts by itself n times, collecting
// like terms after every step so the size limit applies to the collected
// form.
func (en *engine) repeatedProduct(ts []Expr, n int64) ([]Expr, error) {
	acc := ts
	for i := int64(1); i < n; i++ {
		if err := en.b.check(); err != nil {
			return nil, err
		}
		next := make([]Expr, 0, len(acc)*len(ts))
		for _, a := range acc {
			for _, t := range ts {
				next = append(next, MulOf(a, t))
			}
		}
		acc = addTerms(AddOf(next...))
		if err := en.checkSize(len(acc)); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func addTerms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// binomial returns the n+1 terms of (a+b)^n.
func binomial(a, b Expr, n int64) []Expr {
	out := make([]Expr, 0, n+1)
	c := big.NewInt(1)
	for k := int64(0); k <= n; k++ {
		out = append(out, MulOf(ratNum(new(big.Rat).SetInt(c)), PowOf(a, N(n-k)), PowOf(b, N(k))))
		c.Mul(c, big.NewInt(n-k))
		c.Quo(c, big.NewInt(k+1))
	}
	return out
}

// squareSum returns the squares and doubled cross products of Σ t_i.
func squareSum(ts []Expr) []Expr {
	out := make([]Expr, 0, len(ts)*(len(ts)+1)/2)
	for _, t := range ts {
		out = append(out, PowOf(t, N(2)))
	}
	for i := 0; i < len(ts); i++ {
		for j := i + 1; j < len(ts); j++ {
			out = append(out, MulOf(N(2), ts[i], ts[j]))
		}
	}
	return out
}

// cartesian multiplies one term from each list in every combination.
func (en *engine) cartesian(lists [][]Expr) ([]Expr, error) {
	acc := []Expr{N(1)}
	for _, l := range lists {
		if err := en.checkSize(len(acc) * len(l)); err != nil {
			return nil, err
		}
		if err := en.b.check(); err != nil {
			return nil, err
		}
		next := make([]Expr, 0, len(acc)*len(l))
		for _, a := range acc {
			for _, t := range l {
				next = append(next, MulOf(a, t))
			}
		}
		acc = next
	}
	return acc, nil
}
