package algebra

import (
	"math/big"
	"strings"
	"unicode"
)

// ============================================================
// Pretty-printer
// ============================================================

// String renders e as infix text that parses back to the same tree.
func String(e Expr) string { return format(e) }

// format renders a top-level expression: sums are spaced ("x^2 - 4").
func format(e Expr) string { return render(e, false) }

// formatNested renders an expression that sits inside parentheses or a
// function argument: sums are compact ("x+2").
func formatNested(e Expr) string { return render(e, true) }

func render(e Expr, nested bool) string {
	switch v := e.(type) {
	case *Num:
		return v.String()
	case *Sym:
		return v.name
	case *Neg:
		s := render(v.x, true)
		if _, isAdd := v.x.(*Add); isAdd || strings.HasPrefix(s, "-") {
			return "-(" + s + ")"
		}
		return "-" + s
	case *Add:
		return renderSum(v.terms, nested)
	case *Mul:
		return renderProduct(v.factors, nested)
	case *Pow:
		if x, ok := v.exp.(*Num); ok && x.IsNegative() {
			return renderProduct([]Expr{v}, nested)
		}
		return renderPow(v)
	case *Func:
		args := make([]string, len(v.args))
		for i, a := range v.args {
			args[i] = formatNested(a)
		}
		return v.name + "(" + strings.Join(args, ",") + ")"
	case *Eq:
		return format(v.LHS) + " = " + format(v.RHS)
	}
	return "?"
}

func renderSum(terms []Expr, nested bool) string {
	plus, minus := " + ", " - "
	if nested {
		plus, minus = "+", "-"
	}
	var sb strings.Builder
	for i, t := range terms {
		neg, abs := negativeTerm(t)
		s := render(abs, nested)
		if _, ok := abs.(*Add); ok {
			s = "(" + renderSum(abs.(*Add).terms, true) + ")"
		}
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i == 0:
		case neg:
			sb.WriteString(minus)
		default:
			sb.WriteString(plus)
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// negativeTerm reports whether t prints with a leading minus and returns
// its absolute value.
func negativeTerm(t Expr) (bool, Expr) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return true, numNeg(v)
		}
	case *Neg:
		return true, v.x
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			rest := v.factors[1:]
			var r Expr = &Mul{factors: rest}
			if len(rest) == 1 {
				r = rest[0]
			}
			return true, withCoeff(numNeg(c), r)
		}
	}
	return false, t
}

func renderProduct(factors []Expr, nested bool) string {
	var coeff *Num
	var num, den []Expr
	for i, f := range factors {
		if n, ok := f.(*Num); ok && i == 0 {
			coeff = n
			continue
		}
		if p, ok := f.(*Pow); ok {
			if x, ok := p.exp.(*Num); ok && x.IsNegative() {
				den = append(den, invertPow(p, x))
				continue
			}
		}
		num = append(num, f)
	}

	sign, numCoeff, denCoeff := "", "", ""
	if coeff != nil {
		if coeff.IsNegative() {
			sign = "-"
			coeff = numNeg(coeff)
		}
		if coeff.IsExact() && !coeff.decimal && !coeff.val.IsInt() {
			numCoeff = coeff.val.Num().String()
			denCoeff = coeff.val.Denom().String()
		} else {
			numCoeff = coeff.String()
		}
		if numCoeff == "1" && len(num) > 0 {
			numCoeff = ""
		}
	}

	top := joinFactors(numCoeff, num)
	if top == "" {
		top = "1"
	}
	if len(den) == 0 && denCoeff == "" {
		return sign + top
	}
	bottom := joinFactors(denCoeff, den)
	count := len(den)
	if denCoeff != "" {
		count++
	}
	if count > 1 {
		bottom = "(" + bottom + ")"
	}
	return sign + top + "/" + bottom
}

func invertPow(p *Pow, x *Num) Expr {
	e := numNeg(x)
	if e.IsOne() {
		return p.base
	}
	return &Pow{base: p.base, exp: e}
}

func joinFactors(coeff string, fs []Expr) string {
	parts := make([]string, 0, len(fs)+1)
	if coeff != "" {
		parts = append(parts, coeff)
	}
	for _, f := range fs {
		parts = append(parts, renderFactor(f, len(parts) == 0))
	}
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 && needStar(parts[i-1], p) {
			sb.WriteString("*")
		}
		sb.WriteString(p)
	}
	return sb.String()
}

func renderFactor(f Expr, first bool) string {
	switch v := f.(type) {
	case *Add:
		return "(" + renderSum(v.terms, true) + ")"
	case *Mul:
		return "(" + renderProduct(v.factors, true) + ")"
	case *Neg:
		if first {
			return render(v, true)
		}
		return "(" + render(v, true) + ")"
	case *Num:
		s := v.String()
		if !first && (v.IsNegative() || strings.Contains(s, "/")) {
			return "(" + s + ")"
		}
		return s
	}
	return render(f, true)
}

// needStar reports whether juxtaposing a and b would re-lex differently.
func needStar(a, b string) bool {
	last, _ := lastRune(a)
	first, _ := firstRune(b)
	if isNumRune(last) && isNumRune(first) {
		return true
	}
	trail := trailingIdent(a)
	if trail == "" {
		return false
	}
	if isNumRune(first) {
		return true
	}
	if !isIdentStart(first) {
		return false
	}
	lead := leadingIdent(b)
	if len(trail) > 1 {
		return true
	}
	if _, fn := functions[lead]; fn {
		return false
	}
	return len(lead) > 1
}

func isNumRune(r rune) bool    { return r == '.' || unicode.IsDigit(r) }
func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func lastRune(s string) (rune, bool) {
	rs := []rune(s)
	if len(rs) == 0 {
		return 0, false
	}
	return rs[len(rs)-1], true
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

// trailingIdent returns the identifier that s ends with, if any.
func trailingIdent(s string) string {
	rs := []rune(s)
	i := len(rs)
	for i > 0 && (isIdentStart(rs[i-1]) || unicode.IsDigit(rs[i-1])) {
		i--
	}
	run := rs[i:]
	if len(run) == 0 || !isIdentStart(run[0]) {
		return ""
	}
	return string(run)
}

func leadingIdent(s string) string {
	rs := []rune(s)
	i := 0
	for i < len(rs) && (isIdentStart(rs[i]) || unicode.IsDigit(rs[i])) {
		i++
	}
	run := rs[:i]
	if len(run) == 0 || !isIdentStart(run[0]) {
		return ""
	}
	return string(run)
}

var half = big.NewRat(1, 2)

func renderPow(p *Pow) string {
	if x, ok := p.exp.(*Num); ok && x.IsExact() && x.val.Cmp(half) == 0 {
		return "sqrt(" + formatNested(p.base) + ")"
	}
	base := render(p.base, true)
	if baseNeedsParens(p.base) {
		base = "(" + base + ")"
	}
	exp := render(p.exp, true)
	if expNeedsParens(p.exp) {
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

func baseNeedsParens(b Expr) bool {
	switch v := b.(type) {
	case *Sym, *Func:
		return false
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return true
}

func expNeedsParens(x Expr) bool {
	switch v := x.(type) {
	case *Sym:
		return false
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return true
}
