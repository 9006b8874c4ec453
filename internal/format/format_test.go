package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcvalley/pegrun"
)

func TestParseAcceptsKnownKinds(t *testing.T) {
	for _, s := range []string{"raw", "compact", "indented", "html", "nil"} {
		k, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, Kind(s), k)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse("yaml")
	require.Error(t, err)
}

func TestRenderEachKind(t *testing.T) {
	value := pegrun.NewNode("E", pegrun.NewString("n", pegrun.NewRange(0, 1)), pegrun.NewRange(0, 1))

	tests := []struct {
		kind     Kind
		expected string
	}{
		{Compact, "E[n]"},
		{Raw, `Node(E, String("n"))`},
		{HTML, `<span class="node-E">n</span>`},
		{Nil, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.kind, value))
		})
	}
}

func TestRenderNilValue(t *testing.T) {
	assert.Equal(t, "", Render(Compact, nil))
	assert.Equal(t, "", Render(Indented, nil))
	assert.Equal(t, "", Render(Nil, nil))
}

func TestRenderHTMLEscapesText(t *testing.T) {
	value := pegrun.NewString("<script>", pegrun.NewRange(0, 8))
	assert.Equal(t, "&lt;script&gt;", Render(HTML, value))
}

func TestRenderRawErrorValue(t *testing.T) {
	value := pegrun.NewError("iflpar", "expected (", pegrun.NewString("x", pegrun.NewRange(0, 1)), pegrun.NewRange(0, 1))
	assert.Equal(t, `Error(iflpar, "expected (", String("x"))`, Render(Raw, value))
}
