package algebra_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/algebra"
)

func calculate(t *testing.T, req algebra.Request) (*algebra.Response, error) {
	t.Helper()
	return algebra.NewCalculator(algebra.DefaultLimits()).Calculate(context.Background(), req)
}

// ============================================================
// End-to-end scenarios
// ============================================================

func TestCalculate_Scenarios(t *testing.T) {
	cases := []struct {
		op         algebra.Operation
		expression string
		want       string
	}{
		{algebra.OpEvaluate, "1/3+1/4", "7/12"},
		{algebra.OpSolve, "4x+2=2(x+6)", "5"},
		{algebra.OpExpand, "(x+y)^3", "x^3 + 3x^2y + 3xy^2 + y^3"},
		{algebra.OpFactor, "x^2-4", "(x+2)(x-2)"},
		{algebra.OpSimplify, "2x+3x", "5x"},
		{algebra.OpEvaluate, "2x^2+2y @ x=5, y=3", "56"},
	}
	for _, tc := range cases {
		t.Run(string(tc.op)+" "+tc.expression, func(t *testing.T) {
			resp, err := calculate(t, algebra.Request{Expression: tc.expression, Operation: tc.op})
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Result)
			assert.Nil(t, resp.Steps)
		})
	}
}

func TestCalculate_EvenRootsAtNegativeValues(t *testing.T) {
	cases := []struct {
		expression string
		want       string
	}{
		{"sqrt(x^2) @ x=-2", "2"},
		{"(x^2)^(1/2) @ x=-3", "3"},
		{"sqrt((-2)^2)", "2"},
		{"(x^3)^(1/3) @ x=-2", "-2"},
	}
	for _, tc := range cases {
		t.Run(tc.expression, func(t *testing.T) {
			resp, err := calculate(t, algebra.Request{Expression: tc.expression, Operation: algebra.OpEvaluate})
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Result)
		})
	}

	_, err := calculate(t, algebra.Request{Expression: "(x^(1/2))^2 @ x=-4", Operation: algebra.OpEvaluate})
	require.Error(t, err)
	assert.Equal(t, "domain", algebra.ErrorKind(err))

	resp, err := calculate(t, algebra.Request{Expression: "sqrt(x^2) @ x=-2:2:5", Operation: algebra.OpGraph})
	require.NoError(t, err)
	assert.Equal(t, algebra.Point{X: -2, Y: 2}, resp.Graph.Points[0])
}

func TestCalculate_OperationIsCaseInsensitive(t *testing.T) {
	resp, err := calculate(t, algebra.Request{Expression: "2x+3x", Operation: "Simplify"})
	require.NoError(t, err)
	assert.Equal(t, "5x", resp.Result)
}

func TestCalculate_UnicodeInput(t *testing.T) {
	resp, err := calculate(t, algebra.Request{Expression: "x² − 4", Operation: algebra.OpFactor})
	require.NoError(t, err)
	assert.Equal(t, "(x+2)(x-2)", resp.Result)
}

func TestCalculate_SolveVariable(t *testing.T) {
	resp, err := calculate(t, algebra.Request{Expression: "ab + 2 = 8", Operation: algebra.OpSolve, Variable: "b"})
	require.NoError(t, err)
	assert.Equal(t, "6/a", resp.Result)
}

func TestCalculate_Graph(t *testing.T) {
	resp, err := calculate(t, algebra.Request{Expression: "y = x^2 @ x=-2:2:5", Operation: algebra.OpGraph})
	require.NoError(t, err)
	require.NotNil(t, resp.Graph)
	require.Len(t, resp.Graph.Points, 5)

	var decoded algebra.Graph
	require.NoError(t, json.Unmarshal([]byte(resp.Result), &decoded))
	assert.Equal(t, *resp.Graph, decoded)
	assert.Equal(t, algebra.Point{X: 0, Y: 0}, decoded.Points[2])
}

func TestCalculate_GraphRangeNamesVariable(t *testing.T) {
	resp, err := calculate(t, algebra.Request{Expression: "2t @ t=0:1:2", Operation: algebra.OpGraph})
	require.NoError(t, err)
	assert.Equal(t, "t", resp.Graph.Variable)
	assert.Equal(t, []algebra.Point{{X: 0, Y: 0}, {X: 1, Y: 2}}, resp.Graph.Points)
}

// ============================================================
// Errors
// ============================================================

func TestCalculate_Errors(t *testing.T) {
	cases := []struct {
		name string
		req  algebra.Request
		kind string
	}{
		{"syntax", algebra.Request{Expression: "2x+", Operation: algebra.OpSimplify}, "syntax"},
		{"unknown operation", algebra.Request{Expression: "x", Operation: "integrate"}, "domain"},
		{"bad variable", algebra.Request{Expression: "x", Operation: algebra.OpSolve, Variable: "2a"}, "domain"},
		{"solve without equation", algebra.Request{Expression: "x+1", Operation: algebra.OpSolve}, "domain"},
		{"evaluate equation", algebra.Request{Expression: "x = 1", Operation: algebra.OpEvaluate}, "domain"},
		{"division by zero", algebra.Request{Expression: "1/0", Operation: algebra.OpSimplify}, "domain"},
		{"annotation on expand", algebra.Request{Expression: "x @ x=1", Operation: algebra.OpExpand}, "domain"},
		{"unsolvable", algebra.Request{Expression: "sin(x) = 1", Operation: algebra.OpSolve}, "unsolvable"},
		{"input too long", algebra.Request{Expression: strings.Repeat("x+", 3000) + "x", Operation: algebra.OpSimplify}, "budget"},
		{"binomial degree", algebra.Request{Expression: "(x+1)^20", Operation: algebra.OpExpand}, "budget"},
		{"numeric overflow", algebra.Request{Expression: "2^100000", Operation: algebra.OpEvaluate}, "budget"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := calculate(t, tc.req)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tc.kind, algebra.ErrorKind(err), err.Error())
		})
	}
}

func TestCalculate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := algebra.NewCalculator(algebra.DefaultLimits()).Calculate(ctx, algebra.Request{Expression: "2x+3x", Operation: algebra.OpSimplify})
	require.Error(t, err)
	var be *algebra.BudgetError
	require.ErrorAs(t, err, &be)
}

func TestCalculate_ConfiguredLimits(t *testing.T) {
	lim := algebra.DefaultLimits()
	lim.MaxBinomialDegree = 3
	calc := algebra.NewCalculator(lim)
	assert.Equal(t, 3, calc.Limits().MaxBinomialDegree)

	_, err := calc.Calculate(context.Background(), algebra.Request{Expression: "(x+1)^4", Operation: algebra.OpExpand})
	var be *algebra.BudgetError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "binomial degree", be.What)

	// zero fields fall back to the defaults
	assert.Equal(t, algebra.DefaultLimits(), algebra.NewCalculator(algebra.Limits{}).Limits())
}

func TestCalculate_Concurrent(t *testing.T) {
	calc := algebra.NewCalculator(algebra.DefaultLimits())
	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := calc.Calculate(context.Background(), algebra.Request{Expression: "(x+y)^3", Operation: algebra.OpExpand, Steps: true})
			if err == nil {
				results[i] = resp.Result
			}
		}()
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, "x^3 + 3x^2y + 3xy^2 + y^3", r)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestParseOperation(t *testing.T) {
	for _, op := range algebra.Operations {
		got, err := algebra.ParseOperation(" " + strings.ToUpper(string(op)) + " ")
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	_, err := algebra.ParseOperation("differentiate")
	assert.Error(t, err)
}

func TestValidVariable(t *testing.T) {
	for _, ok := range []string{"x", "y", "theta", "x_1"} {
		assert.True(t, algebra.ValidVariable(ok), ok)
	}
	for _, bad := range []string{"", "2a", "sin", "x y", "x-1"} {
		assert.False(t, algebra.ValidVariable(bad), bad)
	}
}

func TestErrorKind_Unknown(t *testing.T) {
	assert.Equal(t, "internal", algebra.ErrorKind(assert.AnError))
}
