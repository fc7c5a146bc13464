// Package mock provides test doubles for glowrays interfaces.
package mock

import "github.com/fwojciec/glowrays"

// Compile-time interface verification.
var (
	_ glowrays.Detector         = (*Detector)(nil)
	_ glowrays.LanguageDetector = (*LanguageDetector)(nil)
)

// Detector is a mock implementation of glowrays.Detector.
type Detector struct {
	DetectFn func(text, languageID string, opts glowrays.DetectOptions) ([]glowrays.TokenMatch, error)
}

func (d *Detector) Detect(text, languageID string, opts glowrays.DetectOptions) ([]glowrays.TokenMatch, error) {
	return d.DetectFn(text, languageID, opts)
}

// LanguageDetector is a mock implementation of glowrays.LanguageDetector.
type LanguageDetector struct {
	DetectFromPathFn func(path string) string
}

func (d *LanguageDetector) DetectFromPath(path string) string {
	return d.DetectFromPathFn(path)
}
