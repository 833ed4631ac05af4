package algebra_test

import (
	"context"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/algebra"
)

func solve(t *testing.T, s, v string) (*algebra.Solution, error) {
	t.Helper()
	eq, err := algebra.ParseEquation(s)
	require.NoError(t, err, s)
	return algebra.Solve(context.Background(), eq, v)
}

// ============================================================
// Closed forms
// ============================================================

func TestSolve_Results(t *testing.T) {
	cases := []struct{ in, want string }{
		{"4x+2=2(x+6)", "5"},
		{"3x = 1", "1/3"},
		{"2x + 1 = 5", "2"},
		{"x^2 - 5x + 6 = 0", "2, 3"},
		{"x^2 = 4", "-2, 2"},
		{"x^2 - 2x + 1 = 0", "1"},
		{"x^2 + 1 = 0", "±i"},
		{"x^2 - 2x + 5 = 0", "1 ± 2i"},
		{"x^3 - 6x^2 + 11x - 6 = 0", "1, 2, 3"},
		{"1/x = 2", "1/2"},
		{"x = x", "all real numbers"},
		{"x = x + 1", "no solution"},
		{"x/(x-1) = 1/(x-1)", "no solution"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			sol, err := solve(t, tc.in, "x")
			require.NoError(t, err)
			assert.Equal(t, tc.want, sol.String())
		})
	}
}

func TestSolve_IrrationalRootsAreExact(t *testing.T) {
	sol, err := solve(t, "x^2 = 2", "x")
	require.NoError(t, err)
	require.Len(t, sol.Roots, 2)
	for _, r := range sol.Roots {
		assert.False(t, r.IsComplex())
		assert.Contains(t, r.String(), "sqrt(2)")
	}
}

func TestSolve_ComplexPairIsOneRoot(t *testing.T) {
	sol, err := solve(t, "x^2 + 4 = 0", "x")
	require.NoError(t, err)
	require.Len(t, sol.Roots, 1)
	assert.True(t, sol.Roots[0].IsComplex())
	assert.Equal(t, "±2i", sol.Roots[0].String())
}

func TestSolve_SymbolicRadicandKeepsSquareOutside(t *testing.T) {
	sol, err := solve(t, "y = x^2 + 1", "x")
	require.NoError(t, err)
	assert.Equal(t, "-sqrt(y-1), sqrt(y-1)", sol.String())
}

func TestSolve_OtherVariable(t *testing.T) {
	sol, err := solve(t, "3y - 6 = 0", "y")
	require.NoError(t, err)
	assert.Equal(t, "y", sol.Variable)
	assert.Equal(t, "2", sol.String())
}

// Every returned root makes L - R vanish.
func TestSolve_RootsSatisfyEquation(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		in       string
		residual func(z complex128) complex128
	}{
		{"x^2 - 5x + 6 = 0", func(z complex128) complex128 { return z*z - 5*z + 6 }},
		{"x^2 = 2", func(z complex128) complex128 { return z*z - 2 }},
		{"2x^2 + 3x - 1 = 0", func(z complex128) complex128 { return 2*z*z + 3*z - 1 }},
		{"x^2 + 1 = 0", func(z complex128) complex128 { return z*z + 1 }},
		{"x^2 - 2x + 5 = 0", func(z complex128) complex128 { return z*z - 2*z + 5 }},
		{"3x^2 + 2x + 1 = 0", func(z complex128) complex128 { return 3*z*z + 2*z + 1 }},
		{"x^3 - 6x^2 + 11x - 6 = 0", func(z complex128) complex128 { return z*z*z - 6*z*z + 11*z - 6 }},
		{"x^3 - 2x = 0", func(z complex128) complex128 { return z*z*z - 2*z }},
		{"x^3 - 1 = 0", func(z complex128) complex128 { return z*z*z - 1 }},
		{"4x+2=2(x+6)", func(z complex128) complex128 { return 4*z + 2 - 2*(z+6) }},
		{"x/(x+1) = 3", func(z complex128) complex128 { return z/(z+1) - 3 }},
		{"(x-1)(x+2) = 4", func(z complex128) complex128 { return (z-1)*(z+2) - 4 }},
		{"0.5x^2 - 1.5x + 1 = 0", func(z complex128) complex128 { return 0.5*z*z - 1.5*z + 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			eq, err := algebra.ParseEquation(tc.in)
			require.NoError(t, err)
			sol, err := algebra.Solve(ctx, eq, "x")
			require.NoError(t, err)
			require.NotEmpty(t, sol.Roots)
			for _, r := range sol.Roots {
				re := floatOf(t, r.Value)
				if !r.IsComplex() {
					got, err := algebra.Evaluate(ctx, eq.Residual(), algebra.Scope{"x": r.Value})
					require.NoError(t, err, r.String())
					assert.InDelta(t, 0, floatOf(t, got), 1e-9, r.String())
					assert.Less(t, cmplx.Abs(tc.residual(complex(re, 0))), 1e-9, r.String())
					continue
				}
				im := floatOf(t, r.Imag)
				for _, z := range []complex128{complex(re, im), complex(re, -im)} {
					assert.Less(t, cmplx.Abs(tc.residual(z)), 1e-9, r.String())
				}
			}
		})
	}
}

// floatOf folds an expression without free symbols to a float.
func floatOf(t *testing.T, e algebra.Expr) float64 {
	t.Helper()
	v, err := algebra.Evaluate(context.Background(), e, nil)
	require.NoError(t, err, algebra.String(e))
	n, ok := v.(*algebra.Num)
	require.True(t, ok, algebra.String(v))
	f := n.Float64()
	require.False(t, math.IsNaN(f))
	return f
}

// ============================================================
// Failures
// ============================================================

func TestSolve_Unsolvable(t *testing.T) {
	for _, in := range []string{
		"sin(x) = 0",
		"y = 3",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := solve(t, in, "x")
			require.Error(t, err)
			assert.Equal(t, "unsolvable", algebra.ErrorKind(err))
		})
	}
}

func TestSolve_DegreeBeyondRootSearch(t *testing.T) {
	_, err := solve(t, "x^7 - 1 = 0", "x")
	require.Error(t, err)
	assert.Equal(t, "budget", algebra.ErrorKind(err))
}

func TestParseEquation_RequiresEquals(t *testing.T) {
	_, err := algebra.ParseEquation("x + 1")
	require.Error(t, err)
	assert.Equal(t, "domain", algebra.ErrorKind(err))
}
