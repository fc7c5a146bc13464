package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/fwojciec/glowrays"
	"github.com/fwojciec/glowrays/memory"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrNoFiles is returned when the preview is started without files.
var ErrNoFiles = errors.New("no files to preview")

// DocumentStore loads previewed files and re-reads them after edits.
type DocumentStore interface {
	Open(path string) (*memory.Document, error)
	Reload(path string) (*memory.Document, bool, error)
}

// MatchSaver appends detection results to a file.
type MatchSaver interface {
	Save(path string, matches []glowrays.TokenMatch) error
}

// settingsReloader is implemented by settings stores backed by a file.
type settingsReloader interface {
	Reload() error
}

// App encapsulates the application logic for testing.
type App struct {
	Out          io.Writer
	Detector     glowrays.Detector
	Settings     glowrays.Settings
	SettingsFile string
	Documents    DocumentStore
	Viewer       glowrays.Viewer
	Watcher      glowrays.Watcher
	Matches      glowrays.MatchWriter
	Saver        MatchSaver
	Logger       zerolog.Logger
}

// Preview opens paths in the viewer and keeps them in sync with the disk
// until the viewer exits.
func (a *App) Preview(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return ErrNoFiles
	}

	docs := make([]glowrays.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := a.Documents.Open(p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The watcher has nothing to report once the viewer is gone.
		defer cancel()
		return a.Viewer.View(ctx, docs)
	})
	if a.Watcher != nil {
		watched := slices.Clone(paths)
		if a.SettingsFile != "" {
			watched = append(watched, a.SettingsFile)
		}
		g.Go(func() error {
			return a.Watcher.Watch(ctx, watched, a.fileChanged)
		})
	}
	return g.Wait()
}

func (a *App) fileChanged(path string) {
	if path == a.SettingsFile {
		if r, ok := a.Settings.(settingsReloader); ok {
			if err := r.Reload(); err != nil {
				a.Logger.Warn().Err(err).Msg("settings not reloaded")
			}
		}
		return
	}

	doc, changed, err := a.Documents.Reload(path)
	if err != nil {
		a.Logger.Warn().Err(err).Str("path", path).Msg("document not reloaded")
		return
	}
	if changed {
		a.Logger.Debug().Str("uri", doc.URI()).Msg("document changed on disk")
		a.Viewer.DocumentChanged(doc)
	}
}

// Detect writes the matches found in path as JSONL. When definitions is set
// only definition names are reported regardless of the stored settings. A
// non-empty out also appends the matches to that file.
func (a *App) Detect(path string, definitions bool, out string) error {
	doc, err := a.Documents.Open(path)
	if err != nil {
		return err
	}

	cfg := glowrays.ReadEffectConfiguration(a.Settings)
	if definitions {
		cfg.DefinitionsOnly = true
	}
	matches, err := a.Detector.Detect(doc.Text(), doc.LanguageID(), cfg.DetectOptions())
	if err != nil {
		return errors.Errorf("detecting tokens in %s: %w", path, err)
	}

	if err := a.Matches.WriteMatches(a.Out, matches); err != nil {
		return err
	}
	if out != "" {
		return a.Saver.Save(out, matches)
	}
	return nil
}

// Toggle flips the enable setting and reports the new state.
func (a *App) Toggle() error {
	enabled, err := glowrays.Toggle(a.Settings)
	if err != nil {
		return err
	}
	if enabled {
		_, err = fmt.Fprintln(a.Out, "GlowRays: Enabled")
	} else {
		_, err = fmt.Fprintln(a.Out, "GlowRays: Disabled")
	}
	return err
}

// ShowSettings prints the effective value of every setting.
func (a *App) ShowSettings() error {
	record := glowrays.ReadEffectConfiguration(a.Settings).Record()
	for _, key := range glowrays.SettingKeys {
		if _, err := fmt.Fprintf(a.Out, "%s: %v\n", key, record[key]); err != nil {
			return err
		}
	}
	return nil
}

// SetSetting validates raw for key and stores it.
func (a *App) SetSetting(key, raw string) error {
	value, err := glowrays.ParseSettingValue(key, raw)
	if err != nil {
		return err
	}
	if err := a.Settings.Update(key, value); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.Out, "%s: %v\n", key, value)
	return err
}
