// Package algebra is a small computer-algebra core: it normalizes and
// parses textual expressions, rewrites them with exact rational
// arithmetic, and answers evaluate, simplify, expand, factor, solve and
// graph requests, optionally with a step-by-step narration.
//
// Basic usage:
//
//	calc := algebra.NewCalculator(algebra.DefaultLimits())
//	resp, err := calc.Calculate(ctx, algebra.Request{
//		Expression: "x^2 - 5x + 6 = 0",
//		Operation:  algebra.OpSolve,
//		Steps:      true,
//	})
//	fmt.Println(resp.Result) // 2, 3
//
// The lower-level functions (Parse, Simplify, Expand, Factor, Solve,
// Evaluate, Sample) work on Expr trees directly.
package algebra

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================
// Operations
// ============================================================

type Operation string

const (
	OpEvaluate Operation = "evaluate"
	OpSimplify Operation = "simplify"
	OpExpand   Operation = "expand"
	OpFactor   Operation = "factor"
	OpSolve    Operation = "solve"
	OpGraph    Operation = "graph"
)

// Operations lists every supported operation in a stable order.
var Operations = []Operation{OpEvaluate, OpSimplify, OpExpand, OpFactor, OpSolve, OpGraph}

// ParseOperation maps a case-insensitive name to an Operation.
func ParseOperation(s string) (Operation, error) {
	name := Operation(strings.ToLower(strings.TrimSpace(s)))
	for _, op := range Operations {
		if op == name {
			return op, nil
		}
	}
	return "", domainErr("unknown operation %q", s)
}

// DefaultVariable is used when a request names none.
const DefaultVariable = "x"

// ============================================================
// Requests
// ============================================================

type Request struct {
	Expression string    `json:"expression" yaml:"expression"`
	Operation  Operation `json:"operation" yaml:"operation"`
	Variable   string    `json:"variable,omitempty" yaml:"variable,omitempty"`
	Steps      bool      `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Response carries the printed result. For graph requests Result is the
// JSON encoding of Graph.
type Response struct {
	Result string   `json:"result"`
	Steps  []string `json:"steps,omitempty"`
	Graph  *Graph   `json:"-"`
}

// Calculator runs requests under fixed limits. It holds no mutable state
// and is safe for concurrent use.
type Calculator struct {
	lim Limits
}

func NewCalculator(lim Limits) *Calculator {
	return &Calculator{lim: lim.withDefaults()}
}

// Limits returns the effective limits, zero fields filled with defaults.
func (c *Calculator) Limits() Limits { return c.lim }

// input is a parsed request.
type input struct {
	op       Operation
	variable string
	raw      Expr
	expr     Expr
	bindings []binding
	rng      Range
}

// Calculate parses and runs one request under the calculator's deadline.
// Steps are produced by a second, recorded run; a failure there leaves
// the step list empty and never affects Result.
func (c *Calculator) Calculate(ctx context.Context, req Request) (resp *Response, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.lim.Deadline)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, &InternalError{Msg: fmt.Sprint(r)}
		}
	}()

	in, err := c.parse(req)
	if err != nil {
		return nil, err
	}
	en := newEngine(ctx, c.lim, nil)
	result, graph, err := en.run(in)
	if err != nil {
		return nil, err
	}
	resp = &Response{Result: result, Graph: graph}
	if req.Steps {
		resp.Steps = narrate(ctx, c.lim, in)
	}
	return resp, nil
}

func (c *Calculator) parse(req Request) (*input, error) {
	if len(req.Expression) > c.lim.MaxInputLength {
		return nil, &BudgetError{What: "input length"}
	}
	op, err := ParseOperation(string(req.Operation))
	if err != nil {
		return nil, err
	}
	v := strings.TrimSpace(req.Variable)
	if v == "" {
		v = DefaultVariable
	}
	if !isIdentifier(v) {
		return nil, domainErr("invalid variable %q", req.Variable)
	}

	body, annot, err := splitAnnotation(Normalize(req.Expression))
	if err != nil {
		return nil, err
	}
	in := &input{op: op, variable: v, rng: DefaultRange(v)}
	if annot != "" {
		switch op {
		case OpEvaluate:
			in.bindings, err = parseBindings(annot)
		case OpGraph:
			in.rng, err = parseRange(annot)
			in.variable = in.rng.Var
		default:
			err = domainErr("'@' annotations apply only to evaluate and graph")
		}
		if err != nil {
			return nil, err
		}
	}

	declared := []string{in.variable}
	for _, b := range in.bindings {
		declared = append(declared, b.name)
	}
	in.raw, err = parseRaw(body, declared)
	if err != nil {
		return nil, err
	}
	in.expr = Canonical(in.raw)
	if containsZeroDiv(in.expr) {
		return nil, domainErr("division by zero")
	}
	return in, nil
}

// run dispatches one parsed request.
func (en *engine) run(in *input) (string, *Graph, error) {
	switch in.op {
	case OpEvaluate:
		scope := Scope{}
		for _, b := range in.bindings {
			scope[b.name] = b.value
		}
		out, err := en.evaluate(in.expr, scope)
		if err != nil {
			return "", nil, err
		}
		return String(out), nil, nil
	case OpSimplify:
		return en.printed(en.simplify(in.expr))
	case OpExpand:
		return en.printed(en.expand(in.expr))
	case OpFactor:
		return en.printed(en.factor(in.expr))
	case OpSolve:
		eq, ok := in.expr.(*Eq)
		if !ok {
			return "", nil, domainErr("solve needs an equation such as 2x + 1 = 5")
		}
		sol, err := en.solve(eq, in.variable)
		if err != nil {
			return "", nil, err
		}
		return sol.String(), nil, nil
	case OpGraph:
		g, err := en.graph(in.expr, in.rng)
		if err != nil {
			return "", nil, err
		}
		buf, err := json.Marshal(g)
		if err != nil {
			return "", nil, &InternalError{Msg: err.Error()}
		}
		return string(buf), g, nil
	}
	return "", nil, &InternalError{Msg: "unhandled operation " + string(in.op)}
}

func (en *engine) printed(e Expr, err error) (string, *Graph, error) {
	if err != nil {
		return "", nil, err
	}
	return String(e), nil, nil
}

// ParseEquation parses s and requires a top-level '='.
func ParseEquation(s string) (*Eq, error) {
	e, err := Parse(s)
	if err != nil {
		return nil, err
	}
	eq, ok := e.(*Eq)
	if !ok {
		return nil, domainErr("%q is not an equation", s)
	}
	return eq, nil
}

// ValidVariable reports whether s can name a variable: a letter followed by
// letters or digits, and not a function name.
func ValidVariable(s string) bool { return isIdentifier(s) }
