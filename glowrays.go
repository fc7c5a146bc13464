// Package glowrays provides domain types for detecting token ranges in
// editor documents and decorating them with a glow effect.
package glowrays

import "gitlab.com/tozd/go/errors"

// Sentinel errors.
var (
	// ErrNotActive is returned when an operation needs an activated Scheduler.
	ErrNotActive = errors.New("scheduler is not active")
	// ErrAlreadyActive is returned by Activate on a running Scheduler.
	ErrAlreadyActive = errors.New("scheduler is already active")
	// ErrUnknownSetting is returned when updating a key that is not part of
	// the settings record.
	ErrUnknownSetting = errors.New("unknown setting")
)

// Position is a zero-based line/column location in a document.
type Position struct {
	Line   int
	Column int
}

// Range is a span of a document in line/column coordinates.
type Range struct {
	Start Position
	End   Position
}

// Span is a half-open [Start, End) range of character offsets into a
// document's raw text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// ColorTag is a logical grouping key for ranges that share a visual
// treatment. It is not an RGB value; the glow always uses the editor's
// inherited theme colour.
type ColorTag string

// CurrentColor is the sentinel tag used for every match in AllTokens mode.
const CurrentColor ColorTag = "currentColor"

// TokenMatch is a single detected range.
type TokenMatch struct {
	Text string   `json:"text"`
	Span Span     `json:"span"`
	Tag  ColorTag `json:"tag"`
}

// Document provides read access to an open document.
type Document interface {
	// URI returns a stable identity usable as a map key.
	URI() string
	// LanguageID returns the declared language, e.g. "javascript".
	LanguageID() string
	// Text returns the full current text.
	Text() string
	// PositionAt converts a character offset into a line/column position.
	PositionAt(offset int) Position
}

// Editor is a view onto a document that decorations can be applied to.
type Editor interface {
	Document() Document
}
