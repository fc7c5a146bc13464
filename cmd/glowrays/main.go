// Command glowrays previews source files with glowing tokens and exposes the
// detector and settings from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/glowrays"
	"github.com/fwojciec/glowrays/bubbletea"
	"github.com/fwojciec/glowrays/chroma"
	"github.com/fwojciec/glowrays/fs"
	"github.com/fwojciec/glowrays/fsnotify"
	"github.com/fwojciec/glowrays/jsonl"
	glowlipgloss "github.com/fwojciec/glowrays/lipgloss"
	"github.com/fwojciec/glowrays/regex"
	"github.com/fwojciec/glowrays/viper"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var version = "dev"

// options holds the persistent command-line flags.
type options struct {
	configPath string
	logPath    string
	debug      bool
	theme      string
}

func main() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply does not race the input loop.
	_ = lipgloss.HasDarkBackground()

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var (
		app     *App
		logFile *os.File
	)

	root := &cobra.Command{
		Use:           "glowrays [files...]",
		Short:         "Preview source files with glowing tokens",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logFile, err = openLog(opts.logPath)
			if err != nil {
				return err
			}
			app, err = newApp(opts, logFile)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				_ = logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Preview(cmd.Context(), args)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", fs.DefaultConfigPath(), "settings file")
	flags.StringVar(&opts.logPath, "log-file", fs.DefaultLogPath(), "log file")
	flags.BoolVar(&opts.debug, "debug", false, "log debug messages")
	flags.StringVar(&opts.theme, "theme", "dark", "preview theme (dark or light)")

	var (
		definitions bool
		out         string
	)
	detect := &cobra.Command{
		Use:   "detect <file>",
		Short: "Print the tokens that would glow in a file as JSON Lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Detect(args[0], definitions, out)
		},
	}
	detect.Flags().BoolVar(&definitions, "definitions", false, "report definition names only")
	detect.Flags().StringVarP(&out, "out", "o", "", "also append matches to this JSONL file")

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Turn the glow effect on or off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Toggle()
		},
	}

	settings := &cobra.Command{
		Use:   "settings",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ShowSettings()
		},
	}
	settings.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.SetSetting(args[0], args[1])
		},
	})

	root.AddCommand(detect, toggle, settings)
	return root
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, errors.Errorf("opening log file: %w", err)
	}
	return f, nil
}

func newApp(opts *options, logFile *os.File) (*App, error) {
	level := zerolog.InfoLevel
	if opts.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(logFile).Level(level).With().Timestamp().Logger()

	settings, err := viper.Open(opts.configPath, viper.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	theme := glowlipgloss.ThemeByName(opts.theme)
	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette()))
	if err != nil {
		return nil, err
	}

	detector := regex.NewDetector(regex.WithLogger(logger))
	viewer := bubbletea.NewViewer(detector, settings,
		bubbletea.WithTheme(theme),
		bubbletea.WithTokenizer(tokenizer),
		bubbletea.WithSchedulerOptions(glowrays.WithLogger(logger)),
	)

	return &App{
		Out:          os.Stdout,
		Detector:     detector,
		Settings:     settings,
		SettingsFile: settings.Path(),
		Documents:    fs.NewDocuments(chroma.NewDetector()),
		Viewer:       viewer,
		Watcher:      fsnotify.NewWatcher(fsnotify.WithLogger(logger)),
		Matches:      jsonl.NewEncoder(),
		Saver:        jsonl.NewSaver(),
		Logger:       logger,
	}, nil
}
