package parser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telhawk-systems/telhawk-csv/internal/parser"
)

func TestSplitLine(t *testing.T) {
	testCases := []struct {
		name     string
		line     string
		expected []string
	}{
		{
			name:     "simple",
			line:     "timestamp, A, B",
			expected: []string{"timestamp", "A", "B"},
		},
		{
			name:     "interior gap",
			line:     "timestamp, , B",
			expected: []string{"timestamp", "", "B"},
		},
		{
			name:     "trailing gap",
			line:     "timestamp, A, ",
			expected: []string{"timestamp", "A", ""},
		},
		{
			name:     "quoted comma",
			line:     `"a,b", c`,
			expected: []string{"a,b", "c"},
		},
		{
			name:     "typed tokens",
			line:     "some int(int),some long(long)",
			expected: []string{"some int(int)", "some long(long)"},
		},
		{
			name:     "blank line",
			line:     "   ",
			expected: []string{""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokens, err := parser.SplitLine(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, tokens)
		})
	}
}

func TestError(t *testing.T) {
	t.Run("with line number", func(t *testing.T) {
		err := parser.NewError(7, "missing header at column %d", 1)

		assert.Equal(t, "line 7: missing header at column 1", err.Error())
		n, ok := err.LineNumber()
		require.True(t, ok)
		assert.Equal(t, int64(7), n)
		assert.Nil(t, err.Position)
	})

	t.Run("with position", func(t *testing.T) {
		line := int64(3)
		pos := 12
		err := &parser.Error{Line: &line, Position: &pos, Msg: "bad"}
		assert.Equal(t, "line 3, position 12: bad", err.Error())
	})

	t.Run("without location", func(t *testing.T) {
		err := &parser.Error{Msg: "bad"}
		_, ok := err.LineNumber()
		assert.False(t, ok)
		assert.Equal(t, "bad", err.Error())
	})

	t.Run("unwraps cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := &parser.Error{Msg: "bad", Err: cause}
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "bad: boom", err.Error())
	})
}
