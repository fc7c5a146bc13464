// Package chroma provides language detection and theme tokenization using
// the chroma library.
package chroma

import (
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/glowrays"
	"gitlab.com/tozd/go/errors"
)

// Compile-time interface verification.
var _ glowrays.Tokenizer = (*Tokenizer)(nil)

// lexerNames maps editor language identifiers to chroma lexer names where
// chroma does not know the identifier as an alias.
var lexerNames = map[string]string{
	"shellscript":     "bash",
	"typescriptreact": "tsx",
}

// StyleFunc maps chroma token types to glowrays styles.
type StyleFunc func(chromalib.TokenType) glowrays.Style

// Tokenizer extracts theme-styled tokens using chroma.
type Tokenizer struct {
	styleFunc StyleFunc
}

// NewTokenizer creates a new chroma-based tokenizer with the given style function.
// Use StyleFromPalette to create a style function from a glowrays.Palette.
func NewTokenizer(styleFunc StyleFunc) (*Tokenizer, error) {
	if styleFunc == nil {
		return nil, errors.New("chroma: styleFunc cannot be nil")
	}
	return &Tokenizer{styleFunc: styleFunc}, nil
}

// TokenizeLines tokenizes source with full context, then splits tokens by
// line so multi-line comments keep their styling on every line.
// Returns nil if the language is not supported or an error occurs.
// Returns an empty slice for empty source.
func (t *Tokenizer) TokenizeLines(languageID, source string) [][]glowrays.Token {
	if source == "" {
		return [][]glowrays.Token{}
	}

	name := languageID
	if n, ok := lexerNames[languageID]; ok {
		name = n
	}
	lexer := lexers.Get(name)
	if lexer == nil {
		return nil
	}

	// Coalesce for better performance with consecutive tokens of the same type
	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}

	var tokens []glowrays.Token
	for token := iterator(); token != chromalib.EOF; token = iterator() {
		tokens = append(tokens, glowrays.Token{
			Text:  token.Value,
			Style: t.styleFunc(token.Type),
		})
	}

	return splitTokensByLine(tokens, strings.Count(source, "\n")+1)
}

// splitTokensByLine splits a flat list of tokens into lines. Tokens that span
// lines are cut at newline boundaries. The result always has lines entries,
// so empty lines are kept and positions line up with the source.
func splitTokensByLine(tokens []glowrays.Token, lines int) [][]glowrays.Token {
	result := make([][]glowrays.Token, 0, lines)
	var current []glowrays.Token

	for _, tok := range tokens {
		if !strings.Contains(tok.Text, "\n") {
			current = append(current, tok)
			continue
		}

		parts := strings.Split(tok.Text, "\n")
		for i, part := range parts {
			if part != "" {
				current = append(current, glowrays.Token{Text: part, Style: tok.Style})
			}
			if i < len(parts)-1 {
				result = append(result, current)
				current = nil
			}
		}
	}
	result = append(result, current)

	// Lexers may append a trailing newline the source did not have.
	if len(result) > lines {
		result = result[:lines]
	}
	for len(result) < lines {
		result = append(result, nil)
	}
	return result
}
