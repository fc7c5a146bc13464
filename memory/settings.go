package memory

import (
	"sync"

	"github.com/fwojciec/glowrays"
)

// Compile-time interface verification.
var _ glowrays.Settings = (*Settings)(nil)

// Settings is a map-backed settings store. Update notifies every registered
// listener synchronously.
type Settings struct {
	mu        sync.RWMutex
	values    map[string]any
	listeners []func()
}

// NewSettings creates a store seeded with values.
func NewSettings(values map[string]any) *Settings {
	s := &Settings{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Get returns the value for key, or def when unset.
func (s *Settings) Get(key string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Update stores value under key and notifies listeners.
func (s *Settings) Update(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// OnChange registers fn to run after every Update.
func (s *Settings) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
