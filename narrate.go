package algebra

import (
	"context"
	"fmt"
	"strings"
)

// ============================================================
// Recorder
// ============================================================

// Rewrite events noted by the engine while a recorder is attached.
const (
	evDistribute    = "distribute"
	evFractions     = "fractions"
	evCancel        = "cancel"
	evTerms         = "terms"
	evBinomial      = "binomial"
	evFOIL          = "foil"
	evSquare        = "square"
	evCommon        = "common"
	evSquares       = "squares"
	evCubes         = "cubes"
	evPerfect       = "perfect"
	evRoots         = "roots"
	evProductSum    = "product-sum"
	evNoFactor      = "no-factor"
	evStandard      = "standard"
	evLinear        = "linear"
	evQuadratic     = "quadratic"
	evRationalRoots = "rational-roots"
	evSampled       = "sampled"
)

type event struct {
	kind string
	expr Expr
	args []Expr
}

// recorder collects events for one narrated run. A nil recorder drops
// every note, so the main computation pays nothing for it.
type recorder struct {
	events []event
}

func (r *recorder) note(kind string, e Expr, args ...Expr) {
	if r == nil {
		return
	}
	r.events = append(r.events, event{kind: kind, expr: e, args: args})
}

// ============================================================
// Narrator
// ============================================================

type narrator struct {
	en    *engine
	in    *input
	steps []string
	last  string
}

func (n *narrator) add(format string, args ...any) {
	n.steps = append(n.steps, fmt.Sprintf(format, args...))
}

// show adds a step ending in e and remembers e as the latest form.
func (n *narrator) show(label string, e Expr) {
	n.last = String(e)
	n.add("%s: %s", label, n.last)
}

// narrate re-runs the request with a recorder attached and turns the
// recorded events into step text. It never fails: any error or panic
// yields an empty list.
func narrate(ctx context.Context, lim Limits, in *input) (steps []string) {
	defer func() {
		if r := recover(); r != nil {
			steps = []string{}
		}
	}()
	n := &narrator{en: newEngine(ctx, lim, &recorder{}), in: in}
	var err error
	switch in.op {
	case OpEvaluate:
		err = n.evaluate()
	case OpSimplify:
		err = n.simplify()
	case OpExpand:
		err = n.expand()
	case OpFactor:
		err = n.factor()
	case OpSolve:
		err = n.solve()
	case OpGraph:
		err = n.graph()
	}
	if err != nil {
		return []string{}
	}
	return n.steps
}

func (n *narrator) events() []event { return n.en.rec.events }

func (n *narrator) has(kind string) bool {
	for _, ev := range n.events() {
		if ev.kind == kind {
			return true
		}
	}
	return false
}

// ============================================================
// Per-operation narratives
// ============================================================

func (n *narrator) simplify() error {
	n.show("Start with", n.in.raw)
	out, err := n.en.simplify(n.in.expr)
	if err != nil {
		return err
	}
	for _, ev := range n.events() {
		switch ev.kind {
		case evFractions:
			n.show("Find a common denominator", ev.args[0])
			n.show("Combine fractions", ev.expr)
		case evDistribute:
			n.show("Distribute", ev.expr)
		case evCancel:
			n.show("Cancel common factors", ev.expr)
		}
	}
	final := String(out)
	switch {
	case n.has(evFractions):
		if n.last != final {
			n.show("Simplify", out)
		}
	case hasLikeTerms(n.in.raw) || len(FreeSymbols(out)) > 1:
		if n.last != final || len(n.steps) == 1 {
			n.show("Combine like terms", out)
		}
		if _, isEq := out.(*Eq); !isEq && containsSym(out, n.in.variable) {
			c, err := n.en.quiet().collect(out, n.in.variable)
			if err == nil && String(c) != n.last {
				n.show("Collect terms with "+n.in.variable, c)
			}
		}
	case n.last != final || len(n.steps) == 1:
		n.show("Apply algebraic rules to simplify", out)
	}
	return nil
}

func (n *narrator) expand() error {
	n.show("Start with", n.in.raw)
	out, err := n.en.expand(n.in.expr)
	if err != nil {
		return err
	}
	expanded := 0
	for _, ev := range n.events() {
		switch ev.kind {
		case evBinomial:
			n.show("Apply the binomial theorem", ev.expr)
		case evFOIL:
			n.show("Use FOIL method", ev.expr)
		case evSquare:
			n.show("Square each term and double the cross products", ev.expr)
		case evDistribute:
			n.show("Distribute", ev.expr)
		case evTerms:
			expanded = termCount(ev.expr)
			if String(ev.expr) != n.last {
				n.show("Result after expansion", ev.expr)
			}
		}
	}
	if String(out) != n.last {
		if expanded > termCount(out) {
			n.show("Combine like terms", out)
		} else {
			n.show("Result", out)
		}
	}
	return nil
}

func (n *narrator) factor() error {
	n.show("Start with", n.in.raw)
	out, err := n.en.factor(n.in.expr)
	if err != nil {
		return err
	}
	for _, ev := range n.events() {
		switch ev.kind {
		case evCommon:
			n.show("Factor out the greatest common factor "+String(ev.args[0]), ev.expr)
		case evSquares:
			n.add("Recognize a difference of squares a^2 - b^2 with a = %s, b = %s", String(ev.args[0]), String(ev.args[1]))
			n.show("Apply a^2 - b^2 = (a+b)(a-b)", ev.expr)
		case evCubes:
			n.add("Recognize a sum of cubes a^3 + b^3 with a = %s, b = %s", String(ev.args[0]), String(ev.args[1]))
			n.show("Apply a^3 + b^3 = (a+b)(a^2-ab+b^2)", ev.expr)
		case evPerfect:
			n.add("Recognize a perfect square trinomial with a = %s, b = %s", String(ev.args[0]), String(ev.args[1]))
			n.show("Write it as a square", ev.expr)
		case evProductSum:
			n.add("Find two numbers whose product is ac = %s and whose sum is b = %s: %s and %s",
				String(ev.args[0]), String(ev.args[1]), String(ev.args[2]), String(ev.args[3]))
			n.show("Split the middle term and group", ev.expr)
		case evRoots:
			n.add("Search for rational roots: %s", joinExprs(ev.args))
			n.show("Split off a linear factor for each root", ev.expr)
		case evNoFactor:
			n.show("No factoring pattern applies", ev.expr)
		}
	}
	if String(out) != n.last {
		n.show("Factored form", out)
	}
	return nil
}

func (n *narrator) solve() error {
	eq, ok := n.in.expr.(*Eq)
	if !ok {
		return domainErr("not an equation")
	}
	v := n.in.variable
	n.show("Start with the equation", n.in.raw)
	sol, err := n.en.solve(eq, v)
	if err != nil {
		return err
	}
	for _, ev := range n.events() {
		switch ev.kind {
		case evStandard:
			n.add("Rearrange to standard form: %s = 0", String(ev.expr))
		case evLinear:
			a, b := ev.args[0], ev.args[1]
			n.add("Identify coefficient of %s: %s", v, String(a))
			n.add("Identify constant term: %s", String(b))
			n.add("Divide both sides by %s: %s = %s/%s", String(a), v, String(NegOf(b)), wrap(a))
		case evQuadratic:
			disc, a, b, c := ev.expr, ev.args[0], ev.args[1], ev.args[2]
			n.add("Identify a, b, c: a = %s, b = %s, c = %s", String(a), String(b), String(c))
			n.add("Apply the quadratic formula: %s = (-b ± sqrt(b^2 - 4ac))/(2a)", v)
			n.add("Substitute values: %s = (-(%s) ± sqrt((%s)^2 - 4(%s)(%s)))/(2(%s))",
				v, formatNested(b), formatNested(b), formatNested(a), formatNested(c), formatNested(a))
			n.add("Compute the discriminant: b^2 - 4ac = %s", String(disc))
		case evRationalRoots:
			if len(ev.args) > 0 {
				n.add("Search for rational roots: %s = %s", v, joinExprs(ev.args))
			} else {
				n.add("Search for rational roots: none found")
			}
			if Degree(ev.expr, v) > 0 {
				n.add("Remaining factor: %s", String(ev.expr))
			}
		}
	}
	if sol.Identity || (len(sol.Roots) == 0 && len(sol.Unsolved) == 0) {
		n.add("Conclude: %s", sol.String())
		return nil
	}
	n.add("Simplify: %s = %s", v, sol.String())
	return nil
}

func (n *narrator) evaluate() error {
	n.show("Start with", n.in.raw)
	cur := n.in.raw
	scope := Scope{}
	for _, b := range n.in.bindings {
		cur = replaceSym(cur, b.name, &Sym{name: "(" + formatNested(b.raw) + ")"})
		n.add("Substitute %s = %s: %s", b.name, String(b.raw), String(cur))
		scope[b.name] = b.value
	}
	out, err := n.en.evaluate(n.in.expr, scope)
	if err != nil {
		return err
	}
	n.show("Calculate", out)
	return nil
}

func (n *narrator) graph() error {
	rng := n.in.rng
	n.show("Start with", n.in.raw)
	if _, err := n.en.graph(n.in.expr, rng); err != nil {
		return err
	}
	n.add("Sample %s from %g to %g at %d points", rng.Var, rng.Min, rng.Max, rng.Samples)
	for _, ev := range n.events() {
		if ev.kind == evSampled {
			n.add("Keep the %s points where the value is a finite real number", String(ev.expr))
		}
	}
	return nil
}

// ============================================================
// Helpers
// ============================================================

// hasLikeTerms reports whether a raw sum (or either side of a raw
// equation) repeats a monomial up to its coefficient.
func hasLikeTerms(raw Expr) bool {
	if eq, ok := raw.(*Eq); ok {
		return hasLikeTerms(eq.LHS) || hasLikeTerms(eq.RHS)
	}
	a, ok := raw.(*Add)
	if !ok {
		return false
	}
	seen := map[string]bool{}
	numbers := 0
	for _, t := range a.terms {
		c := Canonical(t)
		if _, isNum := c.(*Num); isNum {
			numbers++
			continue
		}
		_, rest := splitCoeff(c)
		if seen[rest.key()] {
			return true
		}
		seen[rest.key()] = true
	}
	return numbers > 1
}

// replaceSym substitutes with for name in a raw tree without
// canonicalizing, so the written form survives.
func replaceSym(e Expr, name string, with Expr) Expr {
	all := func(es []Expr) []Expr {
		out := make([]Expr, len(es))
		for i, x := range es {
			out[i] = replaceSym(x, name, with)
		}
		return out
	}
	switch v := e.(type) {
	case *Sym:
		if v.name == name {
			return with
		}
	case *Neg:
		return &Neg{x: replaceSym(v.x, name, with)}
	case *Add:
		return &Add{terms: all(v.terms)}
	case *Mul:
		return &Mul{factors: all(v.factors)}
	case *Pow:
		return &Pow{base: replaceSym(v.base, name, with), exp: replaceSym(v.exp, name, with)}
	case *Func:
		return &Func{name: v.name, args: all(v.args)}
	case *Eq:
		return &Eq{LHS: replaceSym(v.LHS, name, with), RHS: replaceSym(v.RHS, name, with)}
	}
	return e
}

func termCount(e Expr) int {
	if a, ok := e.(*Add); ok {
		return len(a.terms)
	}
	return 1
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = String(e)
	}
	return strings.Join(parts, ", ")
}

// wrap parenthesizes anything but a plain number or symbol.
func wrap(e Expr) string {
	switch v := e.(type) {
	case *Sym:
		return v.name
	case *Num:
		if v.IsInteger() && !v.IsNegative() {
			return v.String()
		}
	}
	return "(" + formatNested(e) + ")"
}
