// Package memory provides in-memory implementations of the glowrays host
// collaborators: documents, editors, settings and a decoration table.
package memory

import (
	"sort"
	"sync"

	"github.com/fwojciec/glowrays"
)

// Compile-time interface verification.
var (
	_ glowrays.Document = (*Document)(nil)
	_ glowrays.Editor   = (*Editor)(nil)
)

// Document is a mutable text buffer safe for concurrent use.
type Document struct {
	uri        string
	languageID string

	mu         sync.RWMutex
	text       string
	lineStarts []int // rune offset of the first character of each line
	length     int   // in runes
}

// NewDocument creates a document with the given identity and content.
func NewDocument(uri, languageID, text string) *Document {
	d := &Document{uri: uri, languageID: languageID}
	d.SetText(text)
	return d
}

// URI returns the document identity.
func (d *Document) URI() string {
	return d.uri
}

// LanguageID returns the declared language.
func (d *Document) LanguageID() string {
	return d.languageID
}

// Text returns the current content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// SetText replaces the content.
func (d *Document) SetText(text string) {
	starts := []int{0}
	offset := 0
	for _, r := range text {
		offset++
		if r == '\n' {
			starts = append(starts, offset)
		}
	}

	d.mu.Lock()
	d.text = text
	d.lineStarts = starts
	d.length = offset
	d.mu.Unlock()
}

// PositionAt converts a rune offset into a zero-based line and column.
// Offsets past the end clamp to the end of the text.
func (d *Document) PositionAt(offset int) glowrays.Position {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	// Index of the last line starting at or before offset.
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	col := offset - d.lineStarts[line]
	if line == len(d.lineStarts)-1 {
		if last := d.length - d.lineStarts[line]; col > last {
			col = last
		}
	}
	return glowrays.Position{Line: line, Column: col}
}

// Editor shows a single document.
type Editor struct {
	doc glowrays.Document
}

// NewEditor creates an editor for doc.
func NewEditor(doc glowrays.Document) *Editor {
	return &Editor{doc: doc}
}

// Document returns the shown document.
func (e *Editor) Document() glowrays.Document {
	return e.doc
}
