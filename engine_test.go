package algebra_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/algebra"
)

func mustParse(t *testing.T, s string) algebra.Expr {
	t.Helper()
	e, err := algebra.Parse(s)
	require.NoError(t, err, s)
	return e
}

// ============================================================
// Canonical form and printing
// ============================================================

func TestParse_CanonicalPrinting(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2x+3", "2x + 3"},
		{"x*x", "x^2"},
		{"1*x + 0", "x"},
		{"x^1", "x"},
		{"0^0", "1"},
		{"x + -y", "x - y"},
		{"3 + x", "x + 3"},
		{"1/3+1/4", "7/12"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, algebra.String(mustParse(t, tc.in)), tc.in)
	}
}

func TestPrint_ReparsesToSameTree(t *testing.T) {
	for _, in := range []string{
		"x^3 + 3x^2y + 3xy^2 + y^3",
		"(x+2)(x-2)",
		"2x/(3y)",
		"sin(x)^2 + cos(x)",
		"-(a+b)^2",
		"x^(1/2) - 4",
	} {
		e := mustParse(t, in)
		back := mustParse(t, algebra.String(e))
		assert.True(t, algebra.Equal(e, back), "%s printed as %s", in, algebra.String(e))
	}
}

func TestBuilders(t *testing.T) {
	x := algebra.S("x")
	e := algebra.AddOf(x, x, x, algebra.N(2))
	assert.Equal(t, "3x + 2", algebra.String(e))

	half := algebra.AddOf(algebra.MulOf(algebra.F(1, 3), x), algebra.MulOf(algebra.F(1, 6), x))
	assert.Equal(t, algebra.String(algebra.MulOf(algebra.F(1, 2), x)), algebra.String(half))

	assert.Equal(t, "0", algebra.String(algebra.SubOf(x, x)))
	assert.Equal(t, "abs(x)", algebra.String(algebra.PowOf(algebra.PowOf(x, algebra.N(2)), algebra.F(1, 2))))
	assert.Equal(t, "x^6", algebra.String(algebra.PowOf(algebra.PowOf(x, algebra.N(2)), algebra.N(3))))
	assert.Equal(t, "x", algebra.String(algebra.PowOf(algebra.PowOf(x, algebra.N(3)), algebra.F(1, 3))))
	assert.Equal(t, "(sqrt(x))^2", algebra.String(algebra.PowOf(algebra.PowOf(x, algebra.F(1, 2)), algebra.N(2))))
	assert.Equal(t, "1", algebra.String(algebra.DivOf(x, x)))
}

// ============================================================
// Simplify
// ============================================================

func TestSimplify(t *testing.T) {
	ctx := context.Background()
	cases := []struct{ in, want string }{
		{"2x+3x", "5x"},
		{"x - x", "0"},
		{"2(x+1)", "2x + 2"},
		{"x^2 * x^3", "x^5"},
		{"(x^2)^3", "x^6"},
		{"(x^2-1)/(x-1)", "x + 1"},
		{"1/2 + 1/3", "5/6"},
	}
	for _, tc := range cases {
		got, err := algebra.Simplify(ctx, mustParse(t, tc.in))
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, algebra.String(got), tc.in)
	}
}

func TestSimplify_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	for _, in := range []string{"2x+3x-x^2+4", "(x^2-1)/(x-1) + 1/x", "3(a+b) - 2a", "x/2 + x/3"} {
		once, err := algebra.Simplify(ctx, mustParse(t, in))
		require.NoError(t, err)
		twice, err := algebra.Simplify(ctx, once)
		require.NoError(t, err)
		assert.True(t, algebra.Equal(once, twice), in)
	}
}

// ============================================================
// Expand
// ============================================================

func TestExpand(t *testing.T) {
	ctx := context.Background()
	cases := []struct{ in, want string }{
		{"(x+y)^3", "x^3 + 3x^2y + 3xy^2 + y^3"},
		{"(x+1)^2", "x^2 + 2x + 1"},
		{"(x+1)(x-1)", "x^2 - 1"},
		{"2(x+3)", "2x + 6"},
		{"(x+1)^2 = 0", "x^2 + 2x + 1 = 0"},
	}
	for _, tc := range cases {
		got, err := algebra.Expand(ctx, mustParse(t, tc.in))
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, algebra.String(got), tc.in)
	}
}

func TestExpand_BinomialDegreeLimit(t *testing.T) {
	calc := algebra.NewCalculator(algebra.DefaultLimits())
	_, err := calc.Calculate(context.Background(), algebra.Request{Expression: "(x+1)^13", Operation: algebra.OpExpand})
	require.Error(t, err)
	assert.Equal(t, "budget", algebra.ErrorKind(err))

	resp, err := calc.Calculate(context.Background(), algebra.Request{Expression: "(x+1)^12", Operation: algebra.OpExpand})
	require.NoError(t, err)
	assert.Contains(t, resp.Result, "924x^6")
}

// Powers of longer sums collect as they multiply, so the term limit sees
// the collected size.
func TestExpand_PowersOfLongSums(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		in    string
		terms int
	}{
		{"(x^2+x+1)^10", 21},
		{"(x^2+x+1)^12", 25},
		{"(a+b+c)^10", 66},
		{"(x+y+z+w)^12", 455},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := algebra.Expand(ctx, mustParse(t, tc.in))
			require.NoError(t, err)
			sum, ok := got.(*algebra.Add)
			require.True(t, ok, algebra.String(got))
			assert.Len(t, sum.Terms(), tc.terms)
		})
	}

	got, err := algebra.Expand(ctx, mustParse(t, "(x^2+x+1)^3"))
	require.NoError(t, err)
	assert.Equal(t, "x^6 + 3x^5 + 6x^4 + 7x^3 + 6x^2 + 3x + 1", algebra.String(got))
}

func TestExpand_TermLimitAppliesToCollectedSize(t *testing.T) {
	lim := algebra.DefaultLimits()
	lim.MaxTerms = 50
	calc := algebra.NewCalculator(lim)
	_, err := calc.Calculate(context.Background(), algebra.Request{Expression: "(a+b+c)^10", Operation: algebra.OpExpand})
	require.Error(t, err)
	assert.Equal(t, "budget", algebra.ErrorKind(err))

	resp, err := calc.Calculate(context.Background(), algebra.Request{Expression: "(x^2+x+1)^10", Operation: algebra.OpExpand})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Result, "x^20 + 10x^19"), resp.Result)
}

// ============================================================
// Factor
// ============================================================

func TestFactor(t *testing.T) {
	ctx := context.Background()
	cases := []struct{ in, want string }{
		{"x^2-4", "(x+2)(x-2)"},
		{"x^2-5x+6", "(x-2)(x-3)"},
		{"2x+4", "2(x+2)"},
		{"x^2+1", "x^2 + 1"},
	}
	for _, tc := range cases {
		got, err := algebra.Factor(ctx, mustParse(t, tc.in))
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, algebra.String(got), tc.in)
	}
}

// Factoring then expanding gives back the expanded input.
func TestFactor_ExpandsBack(t *testing.T) {
	ctx := context.Background()
	for _, in := range []string{
		"x^2-4",
		"x^2+2x+1",
		"4x^2-12x+9",
		"x^3-8",
		"x^3+27",
		"6x^2+x-2",
		"x^3-6x^2+11x-6",
		"3x^3-3x",
		"x^2y - y",
		"x^4 - 1",
	} {
		t.Run(in, func(t *testing.T) {
			e := mustParse(t, in)
			want, err := algebra.Expand(ctx, e)
			require.NoError(t, err)
			f, err := algebra.Factor(ctx, e)
			require.NoError(t, err)
			got, err := algebra.Expand(ctx, f)
			require.NoError(t, err)
			assert.True(t, algebra.Equal(want, got), "factor gave %s", algebra.String(f))
		})
	}
}

func TestFactor_EquationIsDomainError(t *testing.T) {
	_, err := algebra.Factor(context.Background(), mustParse(t, "x^2 = 4"))
	require.Error(t, err)
	assert.Equal(t, "domain", algebra.ErrorKind(err))
}

// ============================================================
// Polynomials
// ============================================================

func TestDegreeAndCoeff(t *testing.T) {
	ctx := context.Background()
	p := mustParse(t, "3x^2 + 2x + 1")
	assert.Equal(t, 2, algebra.Degree(p, "x"))
	assert.Equal(t, 0, algebra.Degree(p, "y"))
	assert.Equal(t, -1, algebra.Degree(mustParse(t, "sin(x)"), "x"))

	for n, want := range map[int]string{2: "3", 1: "2", 0: "1", 5: "0"} {
		c, err := algebra.Coeff(ctx, p, "x", n)
		require.NoError(t, err)
		assert.Equal(t, want, algebra.String(c), "coefficient of x^%d", n)
	}

	c, err := algebra.Coeff(ctx, mustParse(t, "(x+1)^2"), "x", 1)
	require.NoError(t, err)
	assert.Equal(t, "2", algebra.String(c))
}

func TestCollect_GroupsByPower(t *testing.T) {
	ctx := context.Background()
	got, err := algebra.Collect(ctx, mustParse(t, "a*x + b*x + 1"), "x")
	require.NoError(t, err)
	c, err := algebra.Coeff(ctx, got, "x", 1)
	require.NoError(t, err)
	assert.Equal(t, "a + b", algebra.String(c))
}

func TestFreeSymbols(t *testing.T) {
	assert.Equal(t, []string{"a", "x", "y"}, algebra.FreeSymbols(mustParse(t, "a*x + y^2 + 3")))
	assert.Empty(t, algebra.FreeSymbols(mustParse(t, "2 + 3")))
}
