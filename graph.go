package algebra

import (
	"context"
	"strings"
)

// ============================================================
// Graph
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type GraphRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Graph is the sampled curve returned by the graph operation.
type Graph struct {
	Expression string     `json:"expression"`
	Variable   string     `json:"variable"`
	Range      GraphRange `json:"range"`
	Points     []Point    `json:"points"`
}

// DefaultRange samples v over [-10, 10].
func DefaultRange(v string) Range {
	return Range{Var: v, Min: -10, Max: 10, Samples: defaultSamples}
}

// Sample evaluates e at rng.Samples equally spaced points. Points where e is
// not a finite real are left out.
func Sample(ctx context.Context, e Expr, rng Range) (*Graph, error) {
	return newEngine(ctx, DefaultLimits(), nil).graph(e, rng)
}

func (en *engine) graph(e Expr, rng Range) (*Graph, error) {
	f, err := graphTarget(e, rng.Var)
	if err != nil {
		return nil, err
	}
	var extra []string
	for _, name := range unboundSymbols(f) {
		if name != rng.Var {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		return nil, domainErr("cannot graph in %s: unbound symbol(s) %s", rng.Var, strings.Join(extra, ", "))
	}
	switch {
	case rng.Samples < 2:
		return nil, domainErr("graph needs at least 2 samples, got %d", rng.Samples)
	case rng.Samples > en.lim.MaxSamples:
		return nil, &BudgetError{What: "graph samples"}
	case rng.Min >= rng.Max:
		return nil, domainErr("graph range is empty: min %g is not below max %g", rng.Min, rng.Max)
	}

	g := &Graph{
		Expression: String(f),
		Variable:   rng.Var,
		Range:      GraphRange{Min: rng.Min, Max: rng.Max},
		Points:     make([]Point, 0, rng.Samples),
	}
	step := (rng.Max - rng.Min) / float64(rng.Samples-1)
	scope := map[string]float64{}
	for i := 0; i < rng.Samples; i++ {
		if i%256 == 0 {
			if err := en.b.check(); err != nil {
				return nil, err
			}
		}
		x := rng.Min + step*float64(i)
		if i == rng.Samples-1 {
			x = rng.Max
		}
		scope[rng.Var] = x
		if y, ok := evalFloat(f, scope); ok {
			g.Points = append(g.Points, Point{X: x, Y: y})
		}
	}
	en.rec.note(evSampled, N(int64(len(g.Points))), N(int64(rng.Samples)))
	return g, nil
}

// graphTarget accepts an expression or an equation y = f(x) with y a
// symbol other than the variable.
func graphTarget(e Expr, v string) (Expr, error) {
	eq, ok := e.(*Eq)
	if !ok {
		return e, nil
	}
	if s, ok := eq.LHS.(*Sym); ok && s.name != v && !containsSym(eq.RHS, s.name) {
		return eq.RHS, nil
	}
	if s, ok := eq.RHS.(*Sym); ok && s.name != v && !containsSym(eq.LHS, s.name) {
		return eq.LHS, nil
	}
	return nil, domainErr("graph takes an expression or an equation of the form y = f(%s)", v)
}
