package chroma

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/glowrays"
)

// Compile-time interface verification.
var _ glowrays.LanguageDetector = (*Detector)(nil)

// PlainText is the language identifier for files no lexer claims.
const PlainText = "plaintext"

// languageIDs maps lower-cased lexer names to editor language identifiers
// where the two differ.
var languageIDs = map[string]string{
	"c++":  "cpp",
	"c#":   "csharp",
	"bash": "shellscript",
	"tsx":  "typescriptreact",
}

// Detector detects language identifiers from file paths using chroma.
type Detector struct{}

// NewDetector creates a new chroma-based language detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFromPath returns the language identifier for the given path, or
// PlainText if the language cannot be determined.
func (d *Detector) DetectFromPath(path string) string {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return PlainText
	}

	name := strings.ToLower(lexer.Config().Name)
	if id, ok := languageIDs[name]; ok {
		return id
	}
	return name
}
