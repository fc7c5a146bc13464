package glowrays

import (
	"context"
	"io"
)

// Palette is the set of semantic colours a preview host draws with.
// Colours are hex strings in "#RRGGBB" format.
type Palette struct {
	Background string
	Foreground string

	// Syntax colours
	Keyword     string
	String      string
	Number      string
	Comment     string
	Operator    string
	Function    string
	Type        string
	Constant    string
	Punctuation string

	// Halo is the colour the glow bleeds into around decorated text.
	Halo string

	// UI colours
	UIBackground string
	UIForeground string
	UIAccent     string
}

// Theme provides colours for rendering documents.
type Theme interface {
	Palette() Palette
}

// Style is the theme styling of a token in a preview.
type Style struct {
	Foreground string // Hex colour or empty for the default
	Bold       bool
}

// Token is a theme-styled segment of document text.
type Token struct {
	Text  string
	Style Style
}

// Tokenizer splits source into styled tokens, one slice per line.
type Tokenizer interface {
	// TokenizeLines returns nil if the language is not supported.
	TokenizeLines(languageID, source string) [][]Token
}

// LanguageDetector maps file paths to language identifiers.
type LanguageDetector interface {
	// DetectFromPath returns a lower-case language identifier such as
	// "javascript" or "python", or "plaintext" when unknown.
	DetectFromPath(path string) string
}

// Viewer presents open documents with live glow decorations and blocks
// until the user exits.
type Viewer interface {
	View(ctx context.Context, docs []Document) error
	// DocumentChanged notifies a running View that doc's text changed.
	DocumentChanged(doc Document)
}

// Watcher reports changes to files on disk.
type Watcher interface {
	// Watch calls changed with the path of each modified file until ctx is
	// done.
	Watch(ctx context.Context, paths []string, changed func(path string)) error
}

// MatchWriter encodes detection results.
type MatchWriter interface {
	WriteMatches(w io.Writer, matches []TokenMatch) error
}
