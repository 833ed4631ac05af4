package algebra

import (
	"sort"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable algebraic tree. Trees built through the exported
// constructors (AddOf, MulOf, PowOf, FuncOf) are canonical; the parser
// additionally produces raw trees (with Neg nodes and unfolded literals)
// that are only used to echo the user's input back in steps.
type Expr interface {
	String() string
	key() string
}

// Equal reports structural equality.
func Equal(a, b Expr) bool { return a.key() == b.key() }

// ============================================================
// Sym: named symbol
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Name() string   { return s.name }
func (s *Sym) String() string { return format(s) }
func (s *Sym) key() string    { return "s:" + s.name }

// ============================================================
// Neg: unary minus (raw trees only)
// ============================================================

type Neg struct{ x Expr }

func (n *Neg) String() string { return format(n) }
func (n *Neg) key() string    { return "-(" + n.x.key() + ")" }

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func (a *Add) Terms() []Expr  { return a.terms }
func (a *Add) String() string { return format(a) }
func (a *Add) key() string    { return "+(" + joinKeys(a.terms) + ")" }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func (m *Mul) Factors() []Expr { return m.factors }
func (m *Mul) String() string  { return format(m) }
func (m *Mul) key() string     { return "*(" + joinKeys(m.factors) + ")" }

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exp() Expr      { return p.exp }
func (p *Pow) String() string { return format(p) }
func (p *Pow) key() string    { return "^(" + p.base.key() + "," + p.exp.key() + ")" }

// ============================================================
// Func: function application
// ============================================================

type Func struct {
	name string
	args []Expr
}

func (f *Func) Name() string   { return f.name }
func (f *Func) Args() []Expr   { return f.args }
func (f *Func) String() string { return format(f) }
func (f *Func) key() string    { return f.name + "(" + joinKeys(f.args) + ")" }

// ============================================================
// Eq: equation, only ever at the root
// ============================================================

type Eq struct{ LHS, RHS Expr }

func (e *Eq) String() string { return format(e) }
func (e *Eq) key() string    { return "=(" + e.LHS.key() + "," + e.RHS.key() + ")" }

// Residual returns LHS - RHS.
func (e *Eq) Residual() Expr { return SubOf(e.LHS, e.RHS) }

func joinKeys(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.key()
	}
	return strings.Join(parts, ",")
}

// ============================================================
// Traversal
// ============================================================

func children(e Expr) []Expr {
	switch v := e.(type) {
	case *Neg:
		return []Expr{v.x}
	case *Add:
		return v.terms
	case *Mul:
		return v.factors
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Func:
		return v.args
	case *Eq:
		return []Expr{v.LHS, v.RHS}
	}
	return nil
}

// anyNode reports whether pred holds for e or any descendant.
func anyNode(e Expr, pred func(Expr) bool) bool {
	if pred(e) {
		return true
	}
	for _, c := range children(e) {
		if anyNode(c, pred) {
			return true
		}
	}
	return false
}

// FreeSymbols returns the sorted names of all symbols in e.
func FreeSymbols(e Expr) []string {
	seen := map[string]struct{}{}
	collectSymbols(e, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	if s, ok := e.(*Sym); ok {
		out[s.name] = struct{}{}
		return
	}
	for _, c := range children(e) {
		collectSymbols(c, out)
	}
}

func containsSym(e Expr, name string) bool {
	return anyNode(e, func(n Expr) bool {
		s, ok := n.(*Sym)
		return ok && s.name == name
	})
}

// isZeroDiv matches the marker left behind by a division by zero.
func isZeroDiv(e Expr) bool {
	p, ok := e.(*Pow)
	if !ok {
		return false
	}
	b, ok1 := p.base.(*Num)
	x, ok2 := p.exp.(*Num)
	return ok1 && ok2 && b.IsZero() && x.IsNegative()
}

func containsZeroDiv(e Expr) bool { return anyNode(e, isZeroDiv) }

// ============================================================
// Substitution
// ============================================================

// Scope maps symbol names to replacement expressions.
type Scope map[string]Expr

// Substitute replaces every bound symbol simultaneously and rebuilds the
// tree canonically.
func Substitute(e Expr, scope Scope) Expr {
	if len(scope) == 0 {
		return e
	}
	return rebuild(e, func(n Expr) Expr {
		if s, ok := n.(*Sym); ok {
			if v, ok := scope[s.name]; ok {
				return v
			}
		}
		return nil
	})
}

// rebuild walks e bottom-up through the canonical constructors. leaf may
// return a replacement for any node; nil keeps descending.
func rebuild(e Expr, leaf func(Expr) Expr) Expr {
	if r := leaf(e); r != nil {
		return r
	}
	switch v := e.(type) {
	case *Neg:
		return NegOf(rebuild(v.x, leaf))
	case *Add:
		return AddOf(rebuildAll(v.terms, leaf)...)
	case *Mul:
		return MulOf(rebuildAll(v.factors, leaf)...)
	case *Pow:
		return PowOf(rebuild(v.base, leaf), rebuild(v.exp, leaf))
	case *Func:
		return FuncOf(v.name, rebuildAll(v.args, leaf)...)
	case *Eq:
		return &Eq{LHS: rebuild(v.LHS, leaf), RHS: rebuild(v.RHS, leaf)}
	}
	return e
}

func rebuildAll(es []Expr, leaf func(Expr) Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = rebuild(e, leaf)
	}
	return out
}

// Canonical rebuilds a raw parser tree into canonical form.
func Canonical(e Expr) Expr { return rebuild(e, func(Expr) Expr { return nil }) }
