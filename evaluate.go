package algebra

import (
	"context"
	"math"
	"math/big"
)

// ============================================================
// Evaluate
// ============================================================

// Evaluate substitutes scope into e and folds the result to a number.
// When symbols other than pi and e stay unbound the simplified symbolic
// result is returned instead.
func Evaluate(ctx context.Context, e Expr, scope Scope) (Expr, error) {
	return newEngine(ctx, DefaultLimits(), nil).evaluate(e, scope)
}

func (en *engine) evaluate(e Expr, scope Scope) (Expr, error) {
	if _, ok := e.(*Eq); ok {
		return nil, domainErr("cannot evaluate an equation; use solve")
	}
	sub := Substitute(e, scope)
	if containsZeroDiv(sub) {
		return nil, domainErr("division by zero")
	}
	if len(unboundSymbols(sub)) > 0 {
		return en.simplify(sub)
	}
	if n, ok := sub.(*Num); ok {
		return n, nil
	}
	f, ok := evalNode(sub, nil)
	switch {
	case ok && math.IsInf(f, 0):
		return nil, &BudgetError{What: "numeric overflow"}
	case !ok || math.IsNaN(f):
		return nil, domainErr("%s is not a real number", String(sub))
	}
	return roundNear(NFloat(f)), nil
}

// unboundSymbols lists the free symbols of e that are not constants.
func unboundSymbols(e Expr) []string {
	var out []string
	for _, name := range FreeSymbols(e) {
		if _, ok := constantValue(name); !ok {
			out = append(out, name)
		}
	}
	return out
}

func constantValue(name string) (float64, bool) {
	switch name {
	case "pi":
		return math.Pi, true
	case "e":
		return math.E, true
	}
	return 0, false
}

// ============================================================
// Float evaluation
// ============================================================

// evalFloat evaluates e in float64 arithmetic. Symbols come from scope,
// then from the constants pi and e. ok is false for unbound symbols and
// for results that are not finite reals.
func evalFloat(e Expr, scope map[string]float64) (float64, bool) {
	f, ok := evalNode(e, scope)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func evalNode(e Expr, scope map[string]float64) (float64, bool) {
	switch v := e.(type) {
	case *Num:
		return v.Float64(), true
	case *Sym:
		if f, ok := scope[v.name]; ok {
			return f, true
		}
		return constantValue(v.name)
	case *Neg:
		f, ok := evalNode(v.x, scope)
		return -f, ok
	case *Add:
		sum := 0.0
		for _, t := range v.terms {
			f, ok := evalNode(t, scope)
			if !ok {
				return 0, false
			}
			sum += f
		}
		return sum, true
	case *Mul:
		prod := 1.0
		for _, t := range v.factors {
			f, ok := evalNode(t, scope)
			if !ok {
				return 0, false
			}
			prod *= f
		}
		return prod, true
	case *Pow:
		return evalPow(v, scope)
	case *Func:
		args := make([]float64, len(v.args))
		for i, a := range v.args {
			f, ok := evalNode(a, scope)
			if !ok {
				return 0, false
			}
			args[i] = f
		}
		if v.name == "log" && len(args) == 2 {
			x, okX := applyFunc("ln", args[0])
			b, okB := applyFunc("ln", args[1])
			if !okX || !okB || b == 0 {
				return 0, false
			}
			return x / b, true
		}
		return applyFunc(v.name, args[0])
	}
	return 0, false
}

// evalPow takes real odd roots of negative bases, so (-8)^(1/3) is -2.
func evalPow(p *Pow, scope map[string]float64) (float64, bool) {
	b, ok := evalNode(p.base, scope)
	if !ok {
		return 0, false
	}
	x, ok := evalNode(p.exp, scope)
	if !ok {
		return 0, false
	}
	if b == 0 && x < 0 {
		return 0, false
	}
	if b < 0 && x != math.Trunc(x) {
		n, isNum := p.exp.(*Num)
		if !isNum || !n.IsExact() {
			return 0, false
		}
		den := n.val.Denom()
		if den.Bit(0) == 0 {
			return 0, false
		}
		r := math.Pow(-b, x)
		if new(big.Int).Abs(n.val.Num()).Bit(0) == 1 {
			r = -r
		}
		return r, true
	}
	return math.Pow(b, x), true
}
