package lipgloss

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/glowrays"
	"github.com/lucasb-eyer/go-colorful"
)

// Blend limits. A glow at maximum intensity moves the text colour this far
// toward the halo, and the cell background this far toward the text colour.
const (
	maxForegroundBlend = 0.6
	maxBackgroundBlend = 0.5
)

// Glow renders text in a terminal approximation of a two-layer text-shadow:
// the near glow brightens the glyphs, the far glow tints the cell behind them.
type Glow struct {
	palette  glowrays.Palette
	renderer *lipgloss.Renderer
}

// NewGlow creates a Glow drawing with theme's palette. If renderer is nil,
// the default lipgloss renderer is used.
func NewGlow(theme glowrays.Theme, renderer *lipgloss.Renderer) *Glow {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	return &Glow{palette: theme.Palette(), renderer: renderer}
}

// Colors returns the foreground and background hex colours for text whose
// theme colour is fg, glowing with style. An empty fg inherits the palette
// foreground.
func (g *Glow) Colors(fg string, style glowrays.GlowStyle) (foreground, background string) {
	if fg == "" {
		fg = g.palette.Foreground
	}
	text, err := colorful.Hex(fg)
	if err != nil {
		return fg, g.palette.Background
	}
	halo, err := colorful.Hex(g.palette.Halo)
	if err != nil {
		halo = text
	}
	bg, err := colorful.Hex(g.palette.Background)
	if err != nil {
		return fg, g.palette.Background
	}

	near := ratio(style.NearGlowPx, glowrays.MaxIntensity) * maxForegroundBlend
	far := ratio(style.FarGlowPx, 2*glowrays.MaxIntensity) * maxBackgroundBlend

	return text.BlendLab(halo, near).Clamped().Hex(), bg.BlendLab(text, far).Clamped().Hex()
}

// Render draws text with a theme style and, when style is non-nil, a glow.
func (g *Glow) Render(text string, tok glowrays.Style, style *glowrays.GlowStyle) string {
	s := g.renderer.NewStyle()
	if tok.Bold {
		s = s.Bold(true)
	}
	if style == nil {
		if tok.Foreground != "" {
			s = s.Foreground(lipgloss.Color(tok.Foreground))
		}
		return s.Render(text)
	}

	fg, bg := g.Colors(tok.Foreground, *style)
	return s.Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg)).Render(text)
}

func ratio(v, limit float64) float64 {
	return min(max(v/limit, 0), 1)
}
