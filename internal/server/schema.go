package server

import "github.com/njchilds90/algebra"

// OperationSpec describes one operation for agent tool registration.
type OperationSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

var descriptions = map[algebra.Operation]string{
	algebra.OpEvaluate: "Evaluate an expression exactly, optionally binding variables with '@ x=5, y=3'",
	algebra.OpSimplify: "Combine like terms, reduce fractions and cancel common factors",
	algebra.OpExpand:   "Multiply out products and integer powers of sums",
	algebra.OpFactor:   "Factor a polynomial: common factors, special products, rational roots",
	algebra.OpSolve:    "Solve a linear, quadratic or higher polynomial equation for a variable",
	algebra.OpGraph:    "Sample y = f(x) over a range, optionally given as '@ x=-5:5'",
}

// Schema lists every operation in a stable order.
func Schema() []OperationSpec {
	out := make([]OperationSpec, 0, len(algebra.Operations))
	for _, op := range algebra.Operations {
		out = append(out, toolEntry(string(op), descriptions[op]))
	}
	return out
}

func toolEntry(name, description string) OperationSpec {
	return OperationSpec{
		Name:        name,
		Description: description,
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"expression": {Type: "string", Description: "expression or equation text"},
				"operation":  {Type: "string", Description: name},
				"variable":   {Type: "string", Description: "variable to solve for or collect by (default x)"},
				"steps":      {Type: "boolean", Description: "include a step-by-step explanation"},
			},
			Required: []string{"expression", "operation"},
		},
	}
}
