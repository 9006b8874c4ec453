package pegrun_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcvalley/pegrun"
	"github.com/arcvalley/pegrun/internal/surface"
)

// compileAndRun parses, compiles, and matches src against grammar in one
// step — the shape every scenario in spec.md §8 is stated in.
func compileAndRun(t *testing.T, grammar, input string) (pegrun.Value, error) {
	t.Helper()
	g, err := surface.Parse([]byte(grammar))
	require.NoError(t, err)
	prog, err := pegrun.Compile(g, nil)
	require.NoError(t, err)
	return pegrun.Execute(prog, input, nil)
}

func TestLeftRecursiveExpression(t *testing.T) {
	value, err := compileAndRun(t, `E <- E '+n' / 'n'`, "n+n+n")
	require.NoError(t, err)
	require.Equal(t, "E[E[E[n]+n]+n]", pegrun.Compact(value))
}

func TestPrecedenceClimbingCalculator(t *testing.T) {
	grammar := `
E <- E¹ '+' E² / E¹ '-' E² / E² '*' E³ / E² '/' E³ / '-' E⁴ / '(' E¹ ')' / [0-9]+
`
	value, err := compileAndRun(t, grammar, "1*5*2+3")
	require.NoError(t, err)
	require.Equal(t, "E[E[E[E[1]*E[5]]*E[2]]+E[3]]", pegrun.Compact(value))
}

func TestIndirectMutualLeftRecursion(t *testing.T) {
	grammar := `
L <- P '.x' / 'x'
P <- P '(n)' / L
`
	value, err := compileAndRun(t, grammar, "x(n)(n).x(n).x")
	require.NoError(t, err)
	require.Equal(t, "L[xP[L[P[P[(n)](n)]]].xP[L[P[(n)]]].x]", pegrun.Compact(value))
}

func TestLabelRecoveryProducesErrorValue(t *testing.T) {
	grammar := `
label iflpar = "expected ("
Stmt   <- "if" Cond "("^iflpar "{}"
Cond   <- (!LBRK .)*
iflpar <- (!LBRK .)*
LBRK   <- "{"
`
	value, err := compileAndRun(t, grammar, "if false) {}")
	require.NoError(t, err)
	require.Contains(t, pegrun.Compact(value), "Error[iflpar")
}

func TestStructuralMatchingDoubleNests(t *testing.T) {
	g, err := surface.Parse([]byte(`A <- {A: 'aba'}`))
	require.NoError(t, err)
	prog, err := pegrun.Compile(g, nil)
	require.NoError(t, err)

	input := []pegrun.StreamValue{pegrun.NewStreamNode("A",
		pegrun.StreamString{S: "a"}, pegrun.StreamString{S: "b"}, pegrun.StreamString{S: "a"})}
	value, err := pegrun.ExecuteValues(prog, input, nil)
	require.NoError(t, err)
	require.Equal(t, "A[A[aba]]", pegrun.Compact(value))
}

func TestNonTerminalMatchingError(t *testing.T) {
	_, err := compileAndRun(t, `G <- 'a' / 'b'`, "c")
	require.Error(t, err)
	perr, ok := err.(*pegrun.ParsingError)
	require.True(t, ok)
	require.Equal(t, 0, perr.FFP)
}
