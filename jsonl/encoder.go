// Package jsonl writes detection results as JSON Lines, one match per line.
package jsonl

import (
	"encoding/json"
	"io"

	"github.com/fwojciec/glowrays"
	"gitlab.com/tozd/go/errors"
)

// Compile-time interface verification.
var _ glowrays.MatchWriter = (*Encoder)(nil)

// Encoder writes TokenMatch records as JSONL.
type Encoder struct{}

// NewEncoder creates a new Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// WriteMatches writes one JSON object per match, in order.
func (e *Encoder) WriteMatches(w io.Writer, matches []glowrays.TokenMatch) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, m := range matches {
		if err := enc.Encode(m); err != nil {
			return errors.Errorf("match %d: %w", i, err)
		}
	}
	return nil
}
