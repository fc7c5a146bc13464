package chroma_test

import (
	"testing"

	"github.com/fwojciec/glowrays"
	"github.com/fwojciec/glowrays/chroma"
	"github.com/fwojciec/glowrays/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenizer(t *testing.T) *chroma.Tokenizer {
	t.Helper()
	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(lipgloss.DarkTheme().Palette()))
	require.NoError(t, err)
	return tokenizer
}

func lineText(tokens []glowrays.Token) string {
	var s string
	for _, tok := range tokens {
		s += tok.Text
	}
	return s
}

func TestNewTokenizer_RequiresStyleFunc(t *testing.T) {
	t.Parallel()

	_, err := chroma.NewTokenizer(nil)

	assert.Error(t, err)
}

func TestTokenizer_TokenizeLines(t *testing.T) {
	t.Parallel()

	t.Run("splits tokens by line", func(t *testing.T) {
		t.Parallel()

		lines := newTokenizer(t).TokenizeLines("javascript", "const x = 5;\n\nlet y;")

		require.Len(t, lines, 3)
		assert.Equal(t, "const x = 5;", lineText(lines[0]))
		assert.Empty(t, lines[1])
		assert.Equal(t, "let y;", lineText(lines[2]))
	})

	t.Run("styles keywords from the palette", func(t *testing.T) {
		t.Parallel()

		palette := lipgloss.DarkTheme().Palette()
		lines := newTokenizer(t).TokenizeLines("go", "package main")

		require.Len(t, lines, 1)
		var found bool
		for _, tok := range lines[0] {
			if tok.Text == "package" {
				found = true
				assert.Equal(t, palette.Keyword, tok.Style.Foreground)
				assert.True(t, tok.Style.Bold)
			}
		}
		assert.True(t, found, "should find 'package' keyword token")
	})

	t.Run("keeps block comment styling across lines", func(t *testing.T) {
		t.Parallel()

		palette := lipgloss.DarkTheme().Palette()
		lines := newTokenizer(t).TokenizeLines("javascript", "/* one\ntwo */")

		require.Len(t, lines, 2)
		require.NotEmpty(t, lines[1])
		assert.Equal(t, palette.Comment, lines[1][0].Style.Foreground)
	})

	t.Run("resolves editor identifiers without a chroma alias", func(t *testing.T) {
		t.Parallel()

		lines := newTokenizer(t).TokenizeLines("shellscript", "echo hi")

		assert.NotNil(t, lines)
	})

	t.Run("returns nil for unsupported language", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, newTokenizer(t).TokenizeLines("nonexistent-language-xyz", "some code"))
	})

	t.Run("handles empty source", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, newTokenizer(t).TokenizeLines("go", ""))
	})
}
