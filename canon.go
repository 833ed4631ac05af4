package algebra

import (
	"math"
	"math/big"
	"sort"
)

// ============================================================
// Canonical constructors
// ============================================================

// AddOf returns the canonical sum of terms: flattened, numbers folded into
// one trailing literal, like terms collected and the rest sorted in
// polynomial display order.
func AddOf(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		switch v := t.(type) {
		case *Add:
			flat = append(flat, v.terms...)
		case *Neg:
			flat = append(flat, NegOf(v.x))
		default:
			flat = append(flat, t)
		}
	}

	type group struct {
		coeff *Num
		rest  Expr
	}
	sum := N(0)
	groups := []*group{}
	index := map[string]*group{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			sum = numAdd(sum, n)
			continue
		}
		c, rest := splitCoeff(t)
		k := rest.key()
		if g, ok := index[k]; ok {
			g.coeff = numAdd(g.coeff, c)
			continue
		}
		g := &group{coeff: c, rest: rest}
		index[k] = g
		groups = append(groups, g)
	}

	out := make([]Expr, 0, len(groups)+1)
	reflatten := false
	for _, g := range groups {
		if g.coeff.IsZero() {
			// x/0 - x/0 must still report the division.
			if containsZeroDiv(g.rest) {
				out = append(out, g.rest)
			}
			continue
		}
		t := withCoeff(g.coeff, g.rest)
		if _, ok := t.(*Add); ok {
			reflatten = true
		}
		out = append(out, t)
	}
	if reflatten {
		return AddOf(append(out, sum)...)
	}
	sortTerms(out)
	if !sum.IsZero() || len(out) == 0 {
		out = append(out, sum)
	}
	if len(out) == 1 {
		return out[0]
	}
	return &Add{terms: out}
}

// MulOf returns the canonical product: flattened, numbers folded into one
// leading coefficient, equal bases merged by adding exponents, the rest
// sorted.
func MulOf(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		switch v := f.(type) {
		case *Mul:
			flat = append(flat, v.factors...)
		case *Neg:
			flat = append(flat, N(-1))
			if inner, ok := v.x.(*Mul); ok {
				flat = append(flat, inner.factors...)
			} else {
				flat = append(flat, v.x)
			}
		default:
			flat = append(flat, f)
		}
	}

	type group struct {
		base Expr
		orig Expr
		exps []Expr
	}
	coeff := N(1)
	groups := []*group{}
	index := map[string]*group{}
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		b, x := baseExp(f)
		k := b.key()
		if g, ok := index[k]; ok {
			g.exps = append(g.exps, x)
			continue
		}
		g := &group{base: b, orig: f, exps: []Expr{x}}
		index[k] = g
		groups = append(groups, g)
	}

	if coeff.IsZero() {
		for _, g := range groups {
			if isZeroDiv(g.orig) {
				return zeroDiv()
			}
		}
		return N(0)
	}

	out := make([]Expr, 0, len(groups))
	renormalize := false
	for _, g := range groups {
		p := g.orig
		if len(g.exps) > 1 {
			p = mergePowers(g.base, g.exps)
		}
		switch v := p.(type) {
		case *Num:
			if v.IsZero() {
				return N(0)
			}
			coeff = numMul(coeff, v)
		case *Mul:
			renormalize = true
			out = append(out, v.factors...)
		default:
			out = append(out, p)
		}
	}
	if renormalize {
		return MulOf(append([]Expr{coeff}, out...)...)
	}
	if len(out) == 0 {
		return coeff
	}
	sortFactors(out)
	if coeff.IsOne() {
		if len(out) == 1 {
			return out[0]
		}
		return &Mul{factors: out}
	}
	return &Mul{factors: append([]Expr{coeff}, out...)}
}

// mergePowers combines x^a·x^b·... into one power. When an even root of x
// is among the factors and the summed exponent is not itself an even
// root, the root is kept inside so x < 0 stays outside the domain.
func mergePowers(base Expr, exps []Expr) Expr {
	sum := AddOf(exps...)
	if c, ok := base.(*Num); ok && c.IsPositive() {
		return PowOf(base, sum)
	}
	total, ok := sum.(*Num)
	if !ok || !total.IsExact() || isEven(total.val.Denom()) {
		return PowOf(base, sum)
	}
	for _, x := range exps {
		if n, ok := x.(*Num); ok && n.IsExact() && isEven(n.val.Denom()) {
			return PowOf(PowOf(base, F(1, 2)), numMul(total, N(2)))
		}
	}
	return PowOf(base, sum)
}

// PowOf returns the canonical power. 0^0 is 1; 0^negative is kept as a
// division-by-zero marker.
func PowOf(base, exp Expr) Expr {
	if x, ok := exp.(*Num); ok {
		if x.IsZero() {
			return N(1)
		}
		if x.IsOne() {
			return base
		}
	}
	if b, ok := base.(*Num); ok {
		if b.IsOne() {
			return N(1)
		}
		x, numExp := exp.(*Num)
		if b.IsZero() {
			if numExp {
				if x.IsPositive() {
					return N(0)
				}
				return zeroDiv()
			}
			return &Pow{base: base, exp: exp}
		}
		if numExp {
			return numPow(b, x)
		}
		return &Pow{base: base, exp: exp}
	}
	switch v := base.(type) {
	case *Pow:
		return powPow(v, exp)
	case *Func:
		// |u|^(2k) = u^(2k)
		if x, ok := exp.(*Num); ok && v.name == "abs" && x.IsInteger() && isEven(x.val.Num()) {
			return PowOf(v.args[0], x)
		}
	case *Mul:
		x, ok := exp.(*Num)
		if !ok {
			break
		}
		if x.IsInteger() {
			fs := make([]Expr, len(v.factors))
			for i, f := range v.factors {
				fs[i] = PowOf(f, x)
			}
			return MulOf(fs...)
		}
		// (4a)^(1/2) = 2a^(1/2); only a positive coefficient splits off.
		if c, ok := v.factors[0].(*Num); ok && c.IsPositive() {
			var rest Expr = &Mul{factors: v.factors[1:]}
			if len(v.factors) == 2 {
				rest = v.factors[1]
			}
			return MulOf(PowOf(c, x), PowOf(rest, x))
		}
	}
	return &Pow{base: base, exp: exp}
}

// powPow rewrites (x^a)^b. Exponents multiply only where both forms agree
// for every real x: an even power is a power of |x|, and a root of even
// index stays nested when the product would drop its domain.
func powPow(p *Pow, exp Expr) Expr {
	if c, ok := p.base.(*Num); ok && c.IsPositive() {
		return PowOf(p.base, MulOf(p.exp, exp))
	}
	a, okA := p.exp.(*Num)
	b, okB := exp.(*Num)
	switch {
	case !okB || !b.IsExact():
		return &Pow{base: p, exp: exp}
	case !okA:
		if b.IsInteger() {
			return PowOf(p.base, MulOf(p.exp, exp))
		}
		return &Pow{base: p, exp: exp}
	case !a.IsExact():
		return &Pow{base: p, exp: exp}
	}
	ab := numMul(a, b)
	switch {
	case isEven(a.val.Num()):
		return PowOf(FuncOf("abs", p.base), ab)
	case isEven(a.val.Denom()) && !isEven(ab.val.Denom()):
		return &Pow{base: p, exp: exp}
	}
	return PowOf(p.base, ab)
}

func isEven(n *big.Int) bool { return n.Bit(0) == 0 }

// FuncOf applies a named function. sqrt becomes a power of 1/2; a handful
// of exact values fold.
func FuncOf(name string, args ...Expr) Expr {
	if name == "sqrt" && len(args) == 1 {
		return PowOf(args[0], F(1, 2))
	}
	if name == "log" && len(args) == 2 {
		if Equal(args[0], args[1]) {
			return N(1)
		}
		if n, ok := args[0].(*Num); ok && n.IsOne() {
			return N(0)
		}
	}
	if len(args) == 1 {
		if r := foldFunc(name, args[0]); r != nil {
			return r
		}
	}
	return &Func{name: name, args: args}
}

func foldFunc(name string, a Expr) Expr {
	switch v := a.(type) {
	case *Num:
		if v.inexact {
			if f, ok := applyFunc(name, v.flt); ok && !math.IsInf(f, 0) {
				return NFloat(f)
			}
			return nil
		}
		switch name {
		case "sin", "tan":
			if v.IsZero() {
				return N(0)
			}
		case "cos", "exp":
			if v.IsZero() {
				return N(1)
			}
		case "ln":
			if v.IsOne() {
				return N(0)
			}
		case "log":
			if k, ok := powerOfTen(v.val); ok {
				return N(int64(k))
			}
		case "abs":
			return numAbs(v)
		}
	case *Func:
		if len(v.args) != 1 {
			return nil
		}
		switch {
		case name == "ln" && v.name == "exp", name == "exp" && v.name == "ln":
			return v.args[0]
		case name == "abs" && v.name == "abs":
			return v
		}
	case *Sym:
		if name == "ln" && v.name == "e" {
			return N(1)
		}
	}
	return nil
}

// applyFunc evaluates a closed-set function on a float. ok is false
// outside the real domain.
func applyFunc(name string, x float64) (float64, bool) {
	var r float64
	switch name {
	case "sin":
		r = math.Sin(x)
	case "cos":
		r = math.Cos(x)
	case "tan":
		r = math.Tan(x)
	case "exp":
		r = math.Exp(x)
	case "abs":
		r = math.Abs(x)
	case "ln":
		if x <= 0 {
			return 0, false
		}
		r = math.Log(x)
	case "log":
		if x <= 0 {
			return 0, false
		}
		r = math.Log10(x)
	case "sqrt":
		if x < 0 {
			return 0, false
		}
		r = math.Sqrt(x)
	default:
		return 0, false
	}
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

func NegOf(e Expr) Expr    { return MulOf(N(-1), e) }
func SubOf(a, b Expr) Expr { return AddOf(a, NegOf(b)) }
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

func zeroDiv() Expr { return &Pow{base: N(0), exp: N(-1)} }

// ============================================================
// Numeric powers
// ============================================================

const maxExactExponent = 4096

func numPow(b, x *Num) Expr {
	if b.inexact || x.inexact {
		f := math.Pow(b.Float64(), x.Float64())
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &Pow{base: b, exp: x}
		}
		out := NFloat(f)
		out.decimal = b.decimal || x.decimal
		return out
	}
	if x.IsInteger() {
		e, ok := x.int64Value()
		if !ok || e > maxExactExponent || e < -maxExactExponent ||
			int64(b.val.Num().BitLen()+b.val.Denom().BitLen())*abs64(e) > 1<<16 {
			return &Pow{base: b, exp: x}
		}
		r, _ := numPowInt(b, e)
		return r
	}
	p, q := x.val.Num(), x.val.Denom()
	if !q.IsInt64() || q.Int64() > 64 || !p.IsInt64() {
		return &Pow{base: b, exp: x}
	}
	qi, pi := q.Int64(), p.Int64()
	k := floorDiv(pi, qi)
	r := pi - k*qi
	if abs64(k) > maxExactExponent {
		return &Pow{base: b, exp: x}
	}
	whole, _ := numPowInt(b, k)
	return MulOf(whole, rootOf(b, r, qi))
}

// rootOf returns b^(r/q) for 0 < r < q with perfect powers pulled out and
// the radicand made an integer.
func rootOf(b *Num, r, q int64) Expr {
	v, _ := numPowInt(b, r)
	if exact, ok := ratRoot(v.val, q); ok {
		return ratNum(exact)
	}
	if v.IsNegative() {
		if q%2 == 0 {
			return &Pow{base: b, exp: F(r, q)}
		}
		return MulOf(N(-1), rootOf(numAbs(b), r, q))
	}
	a, d := v.val.Num(), v.val.Denom()
	n := new(big.Int).Mul(a, new(big.Int).Exp(d, big.NewInt(q-1), nil))
	out, in := rootExtract(n, q)
	coeff := new(big.Rat).SetFrac(out, d)
	if in.IsInt64() && in.Int64() == 1 {
		return ratNum(coeff)
	}
	surd := &Pow{base: ratNum(new(big.Rat).SetInt(in)), exp: F(1, q)}
	if coeff.Cmp(big.NewRat(1, 1)) == 0 {
		return surd
	}
	return &Mul{factors: []Expr{ratNum(coeff), surd}}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// powerOfTen reports k when r == 10^k.
func powerOfTen(r *big.Rat) (int, bool) {
	if r.Sign() <= 0 {
		return 0, false
	}
	ten := big.NewInt(10)
	check := func(n *big.Int) (int, bool) {
		k := 0
		m := new(big.Int).Set(n)
		rem := new(big.Int)
		for m.Cmp(big.NewInt(1)) > 0 {
			m.QuoRem(m, ten, rem)
			if rem.Sign() != 0 {
				return 0, false
			}
			k++
		}
		return k, true
	}
	one := big.NewInt(1)
	switch {
	case r.Denom().Cmp(one) == 0:
		return check(r.Num())
	case r.Num().Cmp(one) == 0:
		k, ok := check(r.Denom())
		return -k, ok
	}
	return 0, false
}

// ============================================================
// Coefficients and bases
// ============================================================

// splitCoeff separates the numeric coefficient of a term.
func splitCoeff(t Expr) (*Num, Expr) {
	if m, ok := t.(*Mul); ok {
		if c, ok := m.factors[0].(*Num); ok {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return c, rest[0]
			}
			return c, &Mul{factors: rest}
		}
	}
	if n, ok := t.(*Num); ok {
		return n, N(1)
	}
	return N(1), t
}

func withCoeff(c *Num, rest Expr) Expr {
	if c.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, rest}}
}

func baseExp(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// ============================================================
// Ordering
// ============================================================

type termInfo struct {
	deg   float64
	exps  map[string]float64
	other string
	coeff *Num
	key   string
}

func describeTerm(t Expr) termInfo {
	c, rest := splitCoeff(t)
	info := termInfo{exps: map[string]float64{}, coeff: c, key: t.key()}
	fs := []Expr{rest}
	if m, ok := rest.(*Mul); ok {
		fs = m.factors
	}
	for _, f := range fs {
		b, x := baseExp(f)
		s, isSym := b.(*Sym)
		n, isNum := x.(*Num)
		if isSym && isNum {
			info.exps[s.name] += n.Float64()
			info.deg += n.Float64()
			continue
		}
		info.other += f.key() + ";"
	}
	return info
}

func termLess(a, b termInfo) bool {
	if a.deg != b.deg {
		return a.deg > b.deg
	}
	names := make([]string, 0, len(a.exps)+len(b.exps))
	for k := range a.exps {
		names = append(names, k)
	}
	for k := range b.exps {
		if _, dup := a.exps[k]; !dup {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	for _, k := range names {
		if a.exps[k] != b.exps[k] {
			return a.exps[k] > b.exps[k]
		}
	}
	if a.other != b.other {
		return a.other < b.other
	}
	if c := numCmp(a.coeff, b.coeff); c != 0 {
		return c > 0
	}
	return a.key < b.key
}

func sortTerms(ts []Expr) {
	// sort keys are computed once per term
	infos := make([]termInfo, len(ts))
	for i, t := range ts {
		infos[i] = describeTerm(t)
	}
	idx := make([]int, len(ts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return termLess(infos[idx[i]], infos[idx[j]]) })
	sorted := make([]Expr, len(ts))
	for i, k := range idx {
		sorted[i] = ts[k]
	}
	copy(ts, sorted)
}

type factorInfo struct {
	rank  int
	name  string
	shown string
	key   string
}

// Factor rank: surds, symbols, functions, sums, anything else.
func describeFactor(f Expr) factorInfo {
	b, _ := baseExp(f)
	info := factorInfo{key: f.key()}
	switch v := b.(type) {
	case *Num:
		info.rank = 0
		info.shown = v.key()
	case *Sym:
		info.rank = 1
		info.name = v.name
	case *Func:
		info.rank = 2
		info.shown = formatNested(v)
	case *Add:
		info.rank = 3
		info.shown = formatNested(v)
	default:
		info.rank = 4
		info.shown = formatNested(b)
	}
	return info
}

func factorLess(a, b factorInfo) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.name != b.name {
		return a.name < b.name
	}
	if a.shown != b.shown {
		return a.shown < b.shown
	}
	if len(a.key) != len(b.key) {
		return len(a.key) < len(b.key)
	}
	return a.key < b.key
}

func sortFactors(fs []Expr) {
	infos := make([]factorInfo, len(fs))
	for i, f := range fs {
		infos[i] = describeFactor(f)
	}
	idx := make([]int, len(fs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return factorLess(infos[idx[i]], infos[idx[j]]) })
	sorted := make([]Expr, len(fs))
	for i, k := range idx {
		sorted[i] = fs[k]
	}
	copy(fs, sorted)
}
