package algebra

import (
	"context"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Solutions
// ============================================================

// Root is one solution of an equation. Real roots carry Value; a complex
// pair α ± βi is a single Root with Imag set.
type Root struct {
	Value   Expr
	Imag    Expr
	text    string
	re      float64
	im      float64
	numeric bool
}

func (r Root) String() string { return r.text }

// IsComplex reports whether r stands for a conjugate pair.
func (r Root) IsComplex() bool { return r.Imag != nil }

// Solution is the outcome of Solve.
type Solution struct {
	Variable string
	Roots    []Root
	// Unsolved holds factors of degree three or more with no rational root.
	Unsolved []Expr
	// Identity is set when every value of Variable satisfies the equation.
	Identity bool
}

func (s *Solution) String() string {
	if s.Identity {
		return "all real numbers"
	}
	parts := make([]string, 0, len(s.Roots)+len(s.Unsolved))
	for _, r := range s.Roots {
		parts = append(parts, r.text)
	}
	for _, u := range s.Unsolved {
		parts = append(parts, "unsolved: "+String(u)+" = 0")
	}
	if len(parts) == 0 {
		return "no solution"
	}
	return strings.Join(parts, ", ")
}

// ============================================================
// Solve
// ============================================================

// Solve finds the values of v satisfying eq. Polynomial equations up to
// degree two are solved in closed form; higher degrees go through the
// rational-root search.
func Solve(ctx context.Context, eq *Eq, v string) (*Solution, error) {
	return newEngine(ctx, DefaultLimits(), nil).solve(eq, v)
}

func (en *engine) solve(eq *Eq, v string) (*Solution, error) {
	q := en.quiet()
	residual := eq.Residual()
	p, err := q.simplify(residual)
	if err != nil {
		return nil, err
	}
	num, den := numerDenom(p)
	num, err = q.expand(num)
	if err != nil {
		return nil, err
	}
	en.rec.note(evStandard, num)

	sol := &Solution{Variable: v}
	if !containsSym(num, v) {
		n, ok := num.(*Num)
		switch {
		case ok && n.IsZero():
			sol.Identity = true
			return sol, nil
		case ok:
			return sol, nil
		}
		return nil, &UnsolvableError{Msg: String(eq) + " does not contain " + v}
	}
	deg, ok := polyDegree(num, v)
	if !ok {
		return nil, &UnsolvableError{Msg: String(eq) + " is not a polynomial equation in " + v}
	}
	coeffs, ok := polyCoeffs(num, v)
	if !ok {
		return nil, &UnsolvableError{Msg: String(eq) + " is not a polynomial equation in " + v}
	}
	coeff := func(d int) Expr {
		if c, ok := coeffs[d]; ok {
			return c
		}
		return N(0)
	}

	var roots []Root
	switch {
	case deg == 1:
		r, err := en.solveLinear(coeff(1), coeff(0))
		if err != nil {
			return nil, err
		}
		roots = []Root{r}
	case deg == 2:
		roots, err = en.solveQuadratic(coeff(2), coeff(1), coeff(0))
		if err != nil {
			return nil, err
		}
	default:
		if deg > en.lim.MaxRootSearchDegree {
			return nil, &BudgetError{What: "rational-root search degree"}
		}
		poly, ok := toRatPoly(coeffs)
		if !ok {
			return nil, &UnsolvableError{Msg: "no closed form for a degree " + strconv.Itoa(deg) + " equation with symbolic coefficients"}
		}
		roots, sol.Unsolved, err = en.solveHigher(poly, v)
		if err != nil {
			return nil, err
		}
	}
	sol.Roots = sortRoots(excludePoles(roots, residual, den, v))
	return sol, nil
}

func (en *engine) solveLinear(a, b Expr) (Root, error) {
	r, err := en.quiet().simplify(DivOf(NegOf(b), a))
	if err != nil {
		return Root{}, err
	}
	en.rec.note(evLinear, r, a, b)
	return realRoot(r), nil
}

func (en *engine) solveQuadratic(a, b, c Expr) ([]Root, error) {
	ra, okA := isRational(a)
	rb, okB := isRational(b)
	rc, okC := isRational(c)
	if okA && okB && okC {
		return en.quadraticExact(ra, rb, rc)
	}
	na, fa := a.(*Num)
	nb, fb := b.(*Num)
	nc, fc := c.(*Num)
	if fa && fb && fc {
		return en.quadraticFloat(na.Float64(), nb.Float64(), nc.Float64())
	}
	return en.quadraticSymbolic(a, b, c)
}

// quadraticExact keeps surds exact and reports complex pairs as α ± βi.
func (en *engine) quadraticExact(a, b, c *big.Rat) ([]Root, error) {
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	en.rec.note(evQuadratic, ratNum(disc), ratNum(a), ratNum(b), ratNum(c))

	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	alpha := ratNum(new(big.Rat).Quo(new(big.Rat).Neg(b), twoA))
	switch disc.Sign() {
	case 0:
		return []Root{realRoot(alpha)}, nil
	case 1:
		s := MulOf(PowOf(ratNum(disc), F(1, 2)), ratNum(new(big.Rat).Inv(twoA)))
		if n, ok := s.(*Num); ok {
			return []Root{realRoot(numAdd(alpha, n)), realRoot(numSub(alpha, n))}, nil
		}
		return []Root{surdRoot(alpha, s), surdRoot(alpha, NegOf(s))}, nil
	}
	abs2A := new(big.Rat).Abs(twoA)
	beta := MulOf(PowOf(ratNum(new(big.Rat).Neg(disc)), F(1, 2)), ratNum(new(big.Rat).Inv(abs2A)))
	return []Root{complexRoot(alpha, beta)}, nil
}

func (en *engine) quadraticFloat(a, b, c float64) ([]Root, error) {
	disc := b*b - 4*a*c
	en.rec.note(evQuadratic, NFloat(disc), NFloat(a), NFloat(b), NFloat(c))
	alpha := -b / (2 * a)
	switch {
	case disc == 0:
		return []Root{realRoot(roundNear(NFloat(alpha)))}, nil
	case disc > 0:
		s := math.Sqrt(disc) / (2 * a)
		return []Root{realRoot(roundNear(NFloat(alpha + s))), realRoot(roundNear(NFloat(alpha - s)))}, nil
	}
	beta := math.Sqrt(-disc) / math.Abs(2*a)
	return []Root{complexRoot(roundNear(NFloat(alpha)), roundNear(NFloat(beta)))}, nil
}

// quadraticSymbolic applies the formula to symbolic coefficients.
func (en *engine) quadraticSymbolic(a, b, c Expr) ([]Root, error) {
	q := en.quiet()
	disc, err := q.simplify(SubOf(PowOf(b, N(2)), MulOf(N(4), a, c)))
	if err != nil {
		return nil, err
	}
	en.rec.note(evQuadratic, disc, a, b, c)
	twoA := MulOf(N(2), a)
	if n, ok := disc.(*Num); ok && n.IsZero() {
		r, err := q.simplify(DivOf(NegOf(b), twoA))
		if err != nil {
			return nil, err
		}
		return []Root{realRoot(r)}, nil
	}
	sq := radical(disc)
	var out []Root
	for _, s := range []Expr{sq, NegOf(sq)} {
		r, err := q.simplify(DivOf(AddOf(NegOf(b), s), twoA))
		if err != nil {
			return nil, err
		}
		out = append(out, realRoot(r))
	}
	return out, nil
}

// radical returns sqrt(d) with the square part of the numeric content of
// d moved outside, so sqrt(4y-4) becomes 2sqrt(y-1).
func radical(d Expr) Expr {
	sum, ok := d.(*Add)
	if !ok {
		return PowOf(d, F(1, 2))
	}
	common, _ := commonFactor(sum)
	if common == nil {
		return PowOf(d, F(1, 2))
	}
	c, _ := splitCoeff(common)
	if !c.IsExact() {
		return PowOf(d, F(1, 2))
	}
	k, _ := splitCoeff(PowOf(numAbs(c), F(1, 2)))
	if k.IsOne() || !k.IsExact() {
		return PowOf(d, F(1, 2))
	}
	inv := numRecip(numMul(k, k))
	ts := make([]Expr, len(sum.terms))
	for i, t := range sum.terms {
		ts[i] = MulOf(inv, t)
	}
	return MulOf(k, PowOf(AddOf(ts...), F(1, 2)))
}

// solveHigher splits off rational roots and solves what is left when it is
// a quadratic.
func (en *engine) solveHigher(p ratPoly, v string) ([]Root, []Expr, error) {
	rs, rest, err := rationalRoots(en.b, p)
	if err != nil {
		return nil, nil, err
	}
	en.rec.note(evRationalRoots, rest.expr(v), rootList(rs)...)
	roots := make([]Root, 0, len(rs)+2)
	for _, r := range rs {
		roots = append(roots, realRoot(ratNum(r)))
	}
	switch rest.degree() {
	case 0:
		return roots, nil, nil
	case 2:
		qr, err := en.quadraticExact(rest[2], rest[1], rest[0])
		if err != nil {
			return nil, nil, err
		}
		return append(roots, qr...), nil, nil
	}
	return roots, []Expr{rest.expr(v)}, nil
}

// ============================================================
// Root construction and ordering
// ============================================================

func realRoot(e Expr) Root {
	r := Root{Value: e, text: String(e)}
	if f, ok := evalFloat(e, nil); ok {
		r.re, r.numeric = f, true
	}
	return r
}

// surdRoot prints α + s with the rational part first.
func surdRoot(alpha *Num, s Expr) Root {
	val := AddOf(alpha, s)
	r := realRoot(val)
	if alpha.IsZero() {
		return r
	}
	sign, mag := " + ", s
	if c, _ := splitCoeff(s); c.IsNegative() {
		sign, mag = " - ", NegOf(s)
	}
	r.text = alpha.String() + sign + String(mag)
	return r
}

// complexRoot stands for α ± βi with β > 0.
func complexRoot(alpha *Num, beta Expr) Root {
	r := Root{Value: alpha, Imag: beta, numeric: true}
	r.re = alpha.Float64()
	r.im, _ = evalFloat(beta, nil)
	var im string
	switch n, ok := beta.(*Num); {
	case ok && n.IsOne():
		im = "i"
	case ok && n.IsInteger():
		im = n.String() + "i"
	default:
		im = "(" + String(beta) + ")i"
	}
	if alpha.IsZero() {
		r.text = "±" + im
	} else {
		r.text = alpha.String() + " ± " + im
	}
	return r
}

// excludePoles drops real roots at which a denominator of the original
// equation vanishes.
func excludePoles(roots []Root, residual, den Expr, v string) []Root {
	out := roots[:0]
	for _, r := range roots {
		if !r.IsComplex() {
			if containsZeroDiv(Substitute(residual, Scope{v: r.Value})) {
				continue
			}
			if r.numeric {
				if d, ok := evalFloat(den, map[string]float64{v: r.re}); ok && math.Abs(d) < 1e-12 {
					continue
				}
			}
		}
		out = append(out, r)
	}
	return out
}

// sortRoots orders numeric real roots ascending, then complex pairs by real
// and imaginary part, then symbolic roots by text. Duplicates are removed.
func sortRoots(roots []Root) []Root {
	group := func(r Root) int {
		switch {
		case r.IsComplex():
			return 1
		case r.numeric:
			return 0
		}
		return 2
	}
	sort.SliceStable(roots, func(i, j int) bool {
		a, b := roots[i], roots[j]
		if ga, gb := group(a), group(b); ga != gb {
			return ga < gb
		}
		switch group(a) {
		case 0:
			return a.re < b.re
		case 1:
			if a.re != b.re {
				return a.re < b.re
			}
			return a.im < b.im
		}
		return a.text < b.text
	})
	out := roots[:0]
	seen := map[string]bool{}
	for _, r := range roots {
		if seen[r.text] {
			continue
		}
		seen[r.text] = true
		out = append(out, r)
	}
	return out
}
