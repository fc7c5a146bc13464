// Package viper stores glowrays settings in a YAML file read through Viper.
package viper

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fwojciec/glowrays"
	"github.com/rs/zerolog"
	viperlib "github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Compile-time interface verification.
var _ glowrays.Settings = (*Settings)(nil)

// Option configures Settings.
type Option func(*Settings)

// WithLogger sets the logger used to report reloads.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Settings) {
		s.logger = l
	}
}

// Settings is a file-backed glowrays.Settings. Viper answers reads with the
// file's values layered over the defaults; writes rewrite the whole file so
// keys keep their camelCase spelling on disk.
type Settings struct {
	mu        sync.RWMutex
	v         *viperlib.Viper
	path      string
	listeners []func()
	logger    zerolog.Logger
}

// Open loads settings from path. A missing file is created with the default
// configuration.
func Open(path string, opts ...Option) (*Settings, error) {
	s := &Settings{path: path, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	s.v = viperlib.New()
	s.v.SetConfigFile(path)
	s.v.SetConfigType("yaml")
	for key, value := range glowrays.DefaultEffectConfiguration().Record() {
		s.v.SetDefault(key, value)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefault(path); err != nil {
			return nil, err
		}
	}
	if err := s.v.ReadInConfig(); err != nil {
		return nil, errors.Errorf("reading settings %s: %w", path, err)
	}
	return s, nil
}

// Path returns the settings file location.
func (s *Settings) Path() string {
	return s.path
}

// Get returns the value stored for key, or def when the key is unknown.
func (s *Settings) Get(key string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.Get(key)
}

// Values returns every known setting, keyed by its canonical name.
func (s *Settings) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values()
}

func (s *Settings) values() map[string]any {
	out := make(map[string]any, len(glowrays.SettingKeys))
	for _, key := range glowrays.SettingKeys {
		out[key] = s.v.Get(key)
	}
	return out
}

// Update writes value under key to the settings file, reloads it and
// notifies listeners.
func (s *Settings) Update(key string, value any) error {
	if !slices.Contains(glowrays.SettingKeys, key) {
		return errors.Errorf("%w: %s", glowrays.ErrUnknownSetting, key)
	}

	s.mu.Lock()
	values := s.values()
	values[key] = value
	err := write(s.path, values)
	if err == nil {
		err = s.v.ReadInConfig()
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if err != nil {
		return errors.Errorf("saving %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Interface("value", value).Msg("setting updated")
	for _, fn := range listeners {
		fn()
	}
	return nil
}

// Reload re-reads the settings file after an outside edit and notifies
// listeners. A file that no longer parses keeps the previous values.
func (s *Settings) Reload() error {
	s.mu.Lock()
	err := s.v.ReadInConfig()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if err != nil {
		return errors.Errorf("reloading settings %s: %w", s.path, err)
	}
	s.logger.Debug().Str("path", s.path).Msg("settings reloaded")
	for _, fn := range listeners {
		fn()
	}
	return nil
}

// OnChange registers fn to run after every Update or Reload.
func (s *Settings) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// WriteDefault writes the default configuration to path, creating parent
// directories as needed.
func WriteDefault(path string) error {
	return write(path, glowrays.DefaultEffectConfiguration().Record())
}

func write(path string, values map[string]any) error {
	data, err := encode(values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Errorf("writing settings: %w", err)
	}
	return nil
}

// encode renders values as a YAML mapping in SettingKeys order.
func encode(values map[string]any) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range glowrays.SettingKeys {
		value, ok := values[key]
		if !ok {
			continue
		}
		var node yaml.Node
		if err := node.Encode(value); err != nil {
			return nil, errors.Errorf("encoding %s: %w", key, err)
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &node)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, errors.Errorf("marshaling settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Errorf("marshaling settings: %w", err)
	}
	return buf.Bytes(), nil
}
