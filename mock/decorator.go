package mock

import "github.com/fwojciec/glowrays"

// Compile-time interface verification.
var (
	_ glowrays.Decorator  = (*Decorator)(nil)
	_ glowrays.Decoration = (*Decoration)(nil)
)

// Decoration is a mock implementation of glowrays.Decoration.
type Decoration struct {
	StyleFn func() glowrays.GlowStyle
}

func (d *Decoration) Style() glowrays.GlowStyle {
	return d.StyleFn()
}

// Decorator is a mock implementation of glowrays.Decorator.
type Decorator struct {
	CreateDecorationFn func(style glowrays.GlowStyle) glowrays.Decoration
	ApplyDecorationFn  func(d glowrays.Decoration, editor glowrays.Editor, ranges []glowrays.Range)
	DisposeFn          func(d glowrays.Decoration)
}

func (d *Decorator) CreateDecoration(style glowrays.GlowStyle) glowrays.Decoration {
	return d.CreateDecorationFn(style)
}

func (d *Decorator) ApplyDecoration(dec glowrays.Decoration, editor glowrays.Editor, ranges []glowrays.Range) {
	d.ApplyDecorationFn(dec, editor, ranges)
}

func (d *Decorator) Dispose(dec glowrays.Decoration) {
	d.DisposeFn(dec)
}
