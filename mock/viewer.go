package mock

import (
	"context"
	"io"

	"github.com/fwojciec/glowrays"
)

// Compile-time interface verification.
var (
	_ glowrays.Viewer      = (*Viewer)(nil)
	_ glowrays.Watcher     = (*Watcher)(nil)
	_ glowrays.MatchWriter = (*MatchWriter)(nil)
)

// Viewer is a mock implementation of glowrays.Viewer.
type Viewer struct {
	ViewFn            func(ctx context.Context, docs []glowrays.Document) error
	DocumentChangedFn func(doc glowrays.Document)
}

func (v *Viewer) View(ctx context.Context, docs []glowrays.Document) error {
	return v.ViewFn(ctx, docs)
}

func (v *Viewer) DocumentChanged(doc glowrays.Document) {
	v.DocumentChangedFn(doc)
}

// Watcher is a mock implementation of glowrays.Watcher.
type Watcher struct {
	WatchFn func(ctx context.Context, paths []string, changed func(path string)) error
}

func (w *Watcher) Watch(ctx context.Context, paths []string, changed func(path string)) error {
	return w.WatchFn(ctx, paths, changed)
}

// MatchWriter is a mock implementation of glowrays.MatchWriter.
type MatchWriter struct {
	WriteMatchesFn func(w io.Writer, matches []glowrays.TokenMatch) error
}

func (m *MatchWriter) WriteMatches(w io.Writer, matches []glowrays.TokenMatch) error {
	return m.WriteMatchesFn(w, matches)
}
