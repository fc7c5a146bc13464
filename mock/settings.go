package mock

import "github.com/fwojciec/glowrays"

// Compile-time interface verification.
var _ glowrays.Settings = (*Settings)(nil)

// Settings is a mock implementation of glowrays.Settings.
type Settings struct {
	GetFn      func(key string, def any) any
	UpdateFn   func(key string, value any) error
	OnChangeFn func(fn func())
}

func (s *Settings) Get(key string, def any) any {
	return s.GetFn(key, def)
}

func (s *Settings) Update(key string, value any) error {
	return s.UpdateFn(key, value)
}

func (s *Settings) OnChange(fn func()) {
	s.OnChangeFn(fn)
}
