package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestOperationCommands(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"evaluate", "1/3+1/4"}, "7/12\n"},
		{[]string{"simplify", "2x", "+", "3x"}, "5x\n"},
		{[]string{"expand", "(x+y)^3"}, "x^3 + 3x^2y + 3xy^2 + y^3\n"},
		{[]string{"factor", "x^2-4"}, "(x+2)(x-2)\n"},
		{[]string{"solve", "4x+2=2(x+6)"}, "5\n"},
		{[]string{"evaluate", "2x^2+2y @ x=5, y=3"}, "56\n"},
	}
	for _, tc := range cases {
		t.Run(tc.args[0], func(t *testing.T) {
			out, err := run(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestSolveVarFlag(t *testing.T) {
	out, err := run(t, "solve", "--var", "y", "3y - 6 = 0")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestStepsPrecedeResult(t *testing.T) {
	out, err := run(t, "simplify", "--steps", "2x+3x")
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Greater(t, len(lines), 1)
	assert.Equal(t, "5x", string(lines[len(lines)-1]))
}

func TestJSONOutput(t *testing.T) {
	out, err := run(t, "factor", "--json", "x^2-4")
	require.NoError(t, err)
	var r jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "factor", r.Operation)
	assert.Equal(t, "(x+2)(x-2)", r.Result)
}

func TestFailureIsReported(t *testing.T) {
	out, err := run(t, "evaluate", "1/0")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "domain error")

	out, err = run(t, "solve", "--json", "x+1")
	assert.ErrorIs(t, err, errReported)
	var r jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "domain", r.Kind)
}

func TestMissingExpression(t *testing.T) {
	_, err := run(t, "simplify")
	assert.Error(t, err)
}

func writeBatch(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestBatch_KeepsOrder(t *testing.T) {
	path := writeBatch(t, `
- expression: 2x + 3x
  operation: simplify
- expression: x^2 - 4
  operation: factor
- expression: 3y - 6 = 0
  operation: solve
  variable: y
`)
	out, err := run(t, "batch", "--json", "--workers", "2", path)
	require.NoError(t, err)
	var rs []jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &rs))
	require.Len(t, rs, 3)
	assert.Equal(t, "5x", rs[0].Result)
	assert.Equal(t, "(x+2)(x-2)", rs[1].Result)
	assert.Equal(t, "2", rs[2].Result)
}

func TestBatch_CountsFailures(t *testing.T) {
	path := writeBatch(t, `
- expression: 1 + 1
  operation: evaluate
- expression: 2x +
  operation: simplify
`)
	out, err := run(t, "batch", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 requests failed")
	assert.Contains(t, out, "[1] evaluate 1 + 1\n2\n")
	assert.Contains(t, out, "syntax error")
}

func TestBatch_BadFile(t *testing.T) {
	_, err := run(t, "batch", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "batch", writeBatch(t, "- [unclosed"))
	assert.Error(t, err)
}
