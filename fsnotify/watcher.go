// Package fsnotify reports changes to previewed files using fsnotify.
package fsnotify

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	fsnotifylib "github.com/fsnotify/fsnotify"
	"github.com/fwojciec/glowrays"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 100 * time.Millisecond

// Compile-time interface verification.
var _ glowrays.Watcher = (*Watcher)(nil)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// Watcher implements glowrays.Watcher. It watches the directories holding
// the files so that editors which save by rename are still seen.
type Watcher struct {
	debounce time.Duration
	logger   zerolog.Logger
}

// NewWatcher creates a Watcher.
func NewWatcher(opts ...Option) *Watcher {
	w := &Watcher{debounce: DefaultDebounce, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch calls changed with the path of each modified file until ctx is done.
// Bursts of writes to one file are reported once. Paths are reported as
// given.
func (w *Watcher) Watch(ctx context.Context, paths []string, changed func(path string)) error {
	fsw, err := fsnotifylib.NewWatcher()
	if err != nil {
		return errors.Errorf("creating fsnotify watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	// Cleaned absolute path to the caller's spelling.
	watched := make(map[string]string, len(paths))
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Errorf("resolving %s: %w", p, err)
		}
		watched[abs] = p
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return errors.Errorf("watching directory %s: %w", dir, err)
		}
	}

	var (
		timer   *time.Timer
		pending []string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		var fire <-chan time.Time
		if timer != nil {
			fire = timer.C
		}

		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotifylib.Write|fsnotifylib.Create|fsnotifylib.Rename) == 0 {
				continue
			}
			p, ok := watched[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			if !slices.Contains(pending, p) {
				pending = append(pending, p)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			for _, p := range pending {
				changed(p)
			}
			pending = pending[:0]

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("file watch error")

		case <-ctx.Done():
			return nil
		}
	}
}
