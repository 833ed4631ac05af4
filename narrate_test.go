package algebra_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/algebra"
)

func steps(t *testing.T, op algebra.Operation, expression string) []string {
	t.Helper()
	resp, err := calculate(t, algebra.Request{Expression: expression, Operation: op, Steps: true})
	require.NoError(t, err)
	require.NotNil(t, resp.Steps)
	return resp.Steps
}

// ============================================================
// Narratives
// ============================================================

func TestSteps_SolveLinear(t *testing.T) {
	s := steps(t, algebra.OpSolve, "4x+2=2(x+6)")
	require.NotEmpty(t, s)
	assert.True(t, strings.HasPrefix(s[0], "Start with the equation: "), s[0])
	assert.Contains(t, s, "Rearrange to standard form: 2x - 10 = 0")
	assert.Contains(t, s, "Identify coefficient of x: 2")
	assert.Contains(t, s, "Identify constant term: -10")
	assert.Equal(t, "Simplify: x = 5", s[len(s)-1])
}

func TestSteps_SolveQuadratic(t *testing.T) {
	s := steps(t, algebra.OpSolve, "x^2 - 5x + 6 = 0")
	assert.Contains(t, s, "Identify a, b, c: a = 1, b = -5, c = 6")
	assert.Contains(t, s, "Compute the discriminant: b^2 - 4ac = 1")
	assert.Equal(t, "Simplify: x = 2, 3", s[len(s)-1])
}

func TestSteps_SolveQuadraticIrrationalAndComplex(t *testing.T) {
	cases := []struct{ in, coeffs, disc string }{
		{"x^2 - 2 = 0", "a = 1, b = 0, c = -2", "8"},
		{"x^2 + 1 = 0", "a = 1, b = 0, c = 1", "-4"},
		{"2x^2 + 3x + 5 = 0", "a = 2, b = 3, c = 5", "-31"},
		{"x^2 = 0", "a = 1, b = 0, c = 0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			s := steps(t, algebra.OpSolve, tc.in)
			require.NotEmpty(t, s)
			assert.Contains(t, s, "Identify a, b, c: "+tc.coeffs)
			assert.Contains(t, s, "Apply the quadratic formula: x = (-b ± sqrt(b^2 - 4ac))/(2a)")
			assert.Contains(t, s, "Compute the discriminant: b^2 - 4ac = "+tc.disc)
			assert.True(t, strings.HasPrefix(s[len(s)-1], "Simplify: x = "), s[len(s)-1])
		})
	}
}

func TestSteps_SolveIdentity(t *testing.T) {
	s := steps(t, algebra.OpSolve, "2(x+1) = 2x + 2")
	assert.Equal(t, "Conclude: all real numbers", s[len(s)-1])
}

func TestSteps_Evaluate(t *testing.T) {
	s := steps(t, algebra.OpEvaluate, "2x^2+2y @ x=5, y=3")
	require.Len(t, s, 4)
	assert.True(t, strings.HasPrefix(s[0], "Start with: "))
	assert.True(t, strings.HasPrefix(s[1], "Substitute x = 5: "), s[1])
	assert.True(t, strings.HasPrefix(s[2], "Substitute y = 3: "), s[2])
	assert.Equal(t, "Calculate: 56", s[3])
}

func TestSteps_Expand(t *testing.T) {
	s := steps(t, algebra.OpExpand, "(x+y)^3")
	assert.Contains(t, strings.Join(s, "\n"), "Apply the binomial theorem")
	assert.True(t, strings.HasSuffix(s[len(s)-1], "x^3 + 3x^2y + 3xy^2 + y^3"), s[len(s)-1])

	s = steps(t, algebra.OpExpand, "(x+1)(x+2)")
	assert.Contains(t, strings.Join(s, "\n"), "Use FOIL method")
	for i := 1; i < len(s); i++ {
		assert.NotEqual(t, after(s[i-1]), after(s[i]), "step %d repeats the previous form", i)
	}
	assert.True(t, strings.HasSuffix(s[len(s)-1], ": x^2 + 3x + 2"), s[len(s)-1])
}

// after returns the text following the label of a step.
func after(step string) string {
	if i := strings.Index(step, ": "); i >= 0 {
		return step[i+2:]
	}
	return step
}

func TestSteps_Factor(t *testing.T) {
	s := steps(t, algebra.OpFactor, "x^2-4")
	joined := strings.Join(s, "\n")
	assert.Contains(t, joined, "difference of squares")
	assert.True(t, strings.HasSuffix(s[len(s)-1], ": (x+2)(x-2)"), s[len(s)-1])

	s = steps(t, algebra.OpFactor, "3x+6")
	assert.Contains(t, strings.Join(s, "\n"), "Factor out the greatest common factor 3")

	s = steps(t, algebra.OpFactor, "x^2+1")
	assert.Contains(t, strings.Join(s, "\n"), "No factoring pattern applies")
}

func TestSteps_Simplify(t *testing.T) {
	s := steps(t, algebra.OpSimplify, "2x+3x")
	require.GreaterOrEqual(t, len(s), 2)
	assert.True(t, strings.HasPrefix(s[0], "Start with: "))
	assert.True(t, strings.HasSuffix(s[len(s)-1], "5x"), s[len(s)-1])
}

func TestSteps_Graph(t *testing.T) {
	s := steps(t, algebra.OpGraph, "1/x @ x=-1:1:3")
	assert.Contains(t, s, "Sample x from -1 to 1 at 3 points")
	assert.Contains(t, strings.Join(s, "\n"), "Keep the 2 points")
}

func TestSteps_OmittedUnlessRequested(t *testing.T) {
	resp, err := calculate(t, algebra.Request{Expression: "2x+3x", Operation: algebra.OpSimplify})
	require.NoError(t, err)
	assert.Nil(t, resp.Steps)
}
