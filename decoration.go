package glowrays

// GlowStyle parameterises the glow effect of a decoration.
type GlowStyle struct {
	NearGlowPx float64 // Radius of the tight inner glow
	FarGlowPx  float64 // Radius of the wide outer glow
}

// NewGlowStyle returns the style for the given intensity: a near glow of
// intensity pixels and a far glow of twice that.
func NewGlowStyle(intensity float64) GlowStyle {
	return GlowStyle{NearGlowPx: intensity, FarGlowPx: 2 * intensity}
}

// Decoration is an opaque, disposable handle for one applied style.
type Decoration interface {
	Style() GlowStyle
}

// Decorator creates, applies and releases decorations on behalf of the host.
type Decorator interface {
	// CreateDecoration allocates a new decoration with the given style.
	CreateDecoration(style GlowStyle) Decoration
	// ApplyDecoration sets the ranges covered by d in the editor.
	ApplyDecoration(d Decoration, editor Editor, ranges []Range)
	// Dispose releases d and removes it from every editor.
	Dispose(d Decoration)
}

// BatchDecorator is a Decorator that can make several changes visible to
// the host at once. Batch calls fn with a Decorator whose changes are
// published together when fn returns.
type BatchDecorator interface {
	Decorator
	Batch(fn func(Decorator))
}
