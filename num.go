package algebra

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Num: exact rational or inexact float
// ============================================================

// Num is a numeric leaf. Exact values are kept as *big.Rat; values that
// passed through a transcendental function are inexact float64s.
// A decimal Num came from a literal such as 0.1 and prints in decimal
// notation; the flag propagates through arithmetic.
type Num struct {
	val     *big.Rat
	flt     float64
	inexact bool
	decimal bool
}

// N returns the integer n.
func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// F returns the fraction p/q. It panics when q is zero.
func F(p, q int64) *Num {
	if q == 0 {
		panic("algebra: F with zero denominator")
	}
	return &Num{val: big.NewRat(p, q)}
}

// NFloat returns an inexact number.
func NFloat(f float64) *Num { return &Num{flt: f, inexact: true} }

func ratNum(r *big.Rat) *Num { return &Num{val: r} }

func (n *Num) IsExact() bool { return !n.inexact }

// Rat returns a copy of the exact value, or nil for inexact numbers.
func (n *Num) Rat() *big.Rat {
	if n.inexact {
		return nil
	}
	return new(big.Rat).Set(n.val)
}

func (n *Num) Float64() float64 {
	if n.inexact {
		return n.flt
	}
	f, _ := n.val.Float64()
	return f
}

func (n *Num) Sign() int {
	if n.inexact {
		switch {
		case n.flt > 0:
			return 1
		case n.flt < 0:
			return -1
		}
		return 0
	}
	return n.val.Sign()
}

func (n *Num) IsZero() bool     { return n.Sign() == 0 }
func (n *Num) IsNegative() bool { return n.Sign() < 0 }
func (n *Num) IsPositive() bool { return n.Sign() > 0 }
func (n *Num) IsOne() bool      { return n.isInt(1) }
func (n *Num) IsNegOne() bool   { return n.isInt(-1) }

func (n *Num) isInt(v int64) bool {
	if n.inexact {
		return n.flt == float64(v)
	}
	return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == v
}

// IsInteger reports whether n is an exact integer.
func (n *Num) IsInteger() bool { return !n.inexact && n.val.IsInt() }

// int64Value returns the value of an exact integer that fits in an int64.
func (n *Num) int64Value() (int64, bool) {
	if !n.IsInteger() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

func (n *Num) String() string {
	if n.inexact {
		return formatFloat(n.flt)
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	if n.decimal {
		if s, ok := finiteDecimal(n.val); ok {
			return s
		}
		return formatFloat(n.Float64())
	}
	return n.val.Num().String() + "/" + n.val.Denom().String()
}

// formatFloat prints at most 14 significant digits.
func formatFloat(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'g', 14, 64)
}

// finiteDecimal renders r in decimal notation when its denominator has no
// prime factors other than 2 and 5.
func finiteDecimal(r *big.Rat) (string, bool) {
	d := new(big.Int).Set(r.Denom())
	digits := 0
	two, five, zero := big.NewInt(2), big.NewInt(5), big.NewInt(0)
	m := new(big.Int)
	twos, fives := 0, 0
	for m.Mod(d, two).Cmp(zero) == 0 {
		d.Quo(d, two)
		twos++
	}
	for m.Mod(d, five).Cmp(zero) == 0 {
		d.Quo(d, five)
		fives++
	}
	if !d.IsInt64() || d.Int64() != 1 {
		return "", false
	}
	digits = max(twos, fives)
	if digits > 14 {
		return "", false
	}
	s := r.FloatString(digits)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s, true
}

func (n *Num) key() string {
	if n.inexact {
		return "f:" + strconv.FormatFloat(n.flt, 'g', -1, 64)
	}
	return "n:" + n.val.RatString()
}

// ============================================================
// Num arithmetic
// ============================================================

func mergeFlags(out, a, b *Num) *Num {
	out.decimal = a.decimal || b.decimal
	return out
}

func numAdd(a, b *Num) *Num {
	if a.inexact || b.inexact {
		return mergeFlags(NFloat(a.Float64()+b.Float64()), a, b)
	}
	return mergeFlags(ratNum(new(big.Rat).Add(a.val, b.val)), a, b)
}

func numMul(a, b *Num) *Num {
	if a.inexact || b.inexact {
		return mergeFlags(NFloat(a.Float64()*b.Float64()), a, b)
	}
	return mergeFlags(ratNum(new(big.Rat).Mul(a.val, b.val)), a, b)
}

func numNeg(a *Num) *Num {
	if a.inexact {
		return &Num{flt: -a.flt, inexact: true, decimal: a.decimal}
	}
	return &Num{val: new(big.Rat).Neg(a.val), decimal: a.decimal}
}

func numSub(a, b *Num) *Num { return numAdd(a, numNeg(b)) }

// numRecip panics on zero; callers check first.
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("algebra: reciprocal of zero")
	}
	if a.inexact {
		return &Num{flt: 1 / a.flt, inexact: true, decimal: a.decimal}
	}
	return &Num{val: new(big.Rat).Inv(a.val), decimal: a.decimal}
}

func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

func numAbs(a *Num) *Num {
	if a.IsNegative() {
		return numNeg(a)
	}
	return a
}

func numCmp(a, b *Num) int {
	if a.inexact || b.inexact {
		x, y := a.Float64(), b.Float64()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return a.val.Cmp(b.val)
}

// numPowInt raises a to an integer power. ok is false for 0^negative.
func numPowInt(a *Num, e int64) (*Num, bool) {
	if a.IsZero() && e < 0 {
		return nil, false
	}
	if a.inexact {
		return &Num{flt: math.Pow(a.flt, float64(e)), inexact: true, decimal: a.decimal}, true
	}
	neg := e < 0
	if neg {
		e = -e
	}
	exp := big.NewInt(e)
	num := new(big.Int).Exp(a.val.Num(), exp, nil)
	den := new(big.Int).Exp(a.val.Denom(), exp, nil)
	r := new(big.Rat).SetFrac(num, den)
	if neg {
		r.Inv(r)
	}
	return &Num{val: r, decimal: a.decimal}, true
}

// roundNear snaps an inexact value within relative 1e-10 of an integer to
// that exact integer.
func roundNear(n *Num) *Num {
	if !n.inexact || math.IsNaN(n.flt) || math.IsInf(n.flt, 0) {
		return n
	}
	r := math.Round(n.flt)
	if math.Abs(n.flt-r) <= 1e-10*math.Max(1, math.Abs(n.flt)) && math.Abs(r) < 1<<53 {
		return N(int64(r))
	}
	return n
}

func gcdInt(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// rootExtract splits n into out^q * in with in free of q-th powers.
// Trial division is capped so huge inputs come back mostly unreduced.
func rootExtract(n *big.Int, q int64) (out, in *big.Int) {
	out = big.NewInt(1)
	in = new(big.Int).Set(n)
	bq := big.NewInt(q)
	// Whole value a perfect power.
	if r := intRoot(in, q); r != nil {
		return r, big.NewInt(1)
	}
	d := big.NewInt(2)
	dq := new(big.Int)
	m := new(big.Int)
	for i := 0; i < 100000; i++ {
		dq.Exp(d, bq, nil)
		if dq.Cmp(in) > 0 {
			break
		}
		for m.Mod(in, dq).Sign() == 0 {
			in.Quo(in, dq)
			out.Mul(out, d)
		}
		d.Add(d, big.NewInt(1))
	}
	return out, in
}

// intRoot returns the exact q-th root of a non-negative n, or nil.
func intRoot(n *big.Int, q int64) *big.Int {
	if n.Sign() < 0 {
		return nil
	}
	if q == 2 {
		r := new(big.Int).Sqrt(n)
		if new(big.Int).Mul(r, r).Cmp(n) == 0 {
			return r
		}
		return nil
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for _, g := range []int64{guess - 1, guess, guess + 1} {
		if g < 0 {
			continue
		}
		r := big.NewInt(g)
		if new(big.Int).Exp(r, big.NewInt(q), nil).Cmp(n) == 0 {
			return r
		}
	}
	return nil
}

// ratRoot returns the exact q-th root of r when it is rational.
func ratRoot(r *big.Rat, q int64) (*big.Rat, bool) {
	neg := r.Sign() < 0
	if neg && q%2 == 0 {
		return nil, false
	}
	a := new(big.Int).Abs(r.Num())
	na := intRoot(a, q)
	nb := intRoot(r.Denom(), q)
	if na == nil || nb == nil {
		return nil, false
	}
	out := new(big.Rat).SetFrac(na, nb)
	if neg {
		out.Neg(out)
	}
	return out, true
}
