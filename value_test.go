package pegrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{
			name:     "bare char",
			value:    NewChar('n', NewRange(0, 1)),
			expected: "n",
		},
		{
			name:     "bare string",
			value:    NewString("hello", NewRange(0, 5)),
			expected: "hello",
		},
		{
			name: "sequence of chars",
			value: NewSequence([]Value{
				NewChar('a', NewRange(0, 1)),
				NewChar('b', NewRange(1, 2)),
			}, NewRange(0, 2)),
			expected: "ab",
		},
		{
			name:     "empty node",
			value:    NewNode("E", nil, NewRange(0, 0)),
			expected: "E[]",
		},
		{
			name:     "nested node",
			value:    NewNode("E", NewNode("E", NewString("n", NewRange(0, 1)), NewRange(0, 1)), NewRange(0, 1)),
			expected: "E[E[n]]",
		},
		{
			name:     "error without expr",
			value:    NewError("iflpar", "expected (", nil, NewRange(2, 2)),
			expected: "Error[iflpar]",
		},
		{
			name:     "error wrapping recovered expr",
			value:    NewError("iflpar", "expected (", NewString("false", NewRange(3, 8)), NewRange(3, 8)),
			expected: "Error[iflpar: false]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compact(tt.value))
		})
	}
}

func TestText(t *testing.T) {
	value := NewNode("E", NewSequence([]Value{
		NewNode("E", NewString("n", NewRange(0, 1)), NewRange(0, 1)),
		NewString("+n", NewRange(1, 3)),
	}, NewRange(0, 3)), NewRange(0, 3))
	assert.Equal(t, "n+n", Text(value))
}

func TestTextSkipsErrorLabel(t *testing.T) {
	value := NewError("iflpar", "expected (", NewString("xyz", NewRange(0, 3)), NewRange(0, 3))
	assert.Equal(t, "xyz", Text(value))
}

func TestPrettyStringIndentsChildren(t *testing.T) {
	value := NewNode("Seq", NewSequence([]Value{
		NewChar('a', NewRange(0, 1)),
		NewChar('b', NewRange(1, 2)),
	}, NewRange(0, 2)), NewRange(0, 2))

	out := PrettyString(value)
	require.Contains(t, out, "Seq")
	require.Contains(t, out, "├── 'a'")
	require.Contains(t, out, "└── 'b'")
}

func TestRangeString(t *testing.T) {
	assert.Equal(t, "3", NewRange(3, 3).String())
	assert.Equal(t, "0..5", NewRange(0, 5).String())
}
