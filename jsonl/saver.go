package jsonl

import (
	"os"
	"path/filepath"

	"github.com/fwojciec/glowrays"
	"gitlab.com/tozd/go/errors"
)

// Saver appends TokenMatch records to JSONL files.
type Saver struct {
	enc *Encoder
}

// NewSaver creates a new Saver.
func NewSaver() *Saver {
	return &Saver{enc: NewEncoder()}
}

// Save appends matches to a JSONL file, creating parent directories if needed.
func (s *Saver) Save(path string, matches []glowrays.TokenMatch) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("creating output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Errorf("opening %s: %w", path, err)
	}

	if err := s.enc.WriteMatches(f, matches); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
