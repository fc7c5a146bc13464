package bubbletea

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/glowrays"
	glowlipgloss "github.com/fwojciec/glowrays/lipgloss"
	"github.com/fwojciec/glowrays/memory"
)

// RenderDocument exposes renderDocument to the external test package.
func RenderDocument(doc glowrays.Document, decorations []memory.Applied, tokenizer glowrays.Tokenizer, theme glowrays.Theme, r *lipgloss.Renderer) string {
	return renderDocument(renderConfig{
		doc:         doc,
		decorations: decorations,
		tokenizer:   tokenizer,
		glow:        glowlipgloss.NewGlow(theme, r),
		palette:     theme.Palette(),
		renderer:    r,
	})
}
