package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/glowrays"
	glowlipgloss "github.com/fwojciec/glowrays/lipgloss"
	"github.com/fwojciec/glowrays/memory"
)

// minGutterWidth is the minimum width of the line number column.
const minGutterWidth = 4

// glowSpan is a decorated column interval on one line.
type glowSpan struct {
	start, end int // rune columns, end exclusive; -1 means end of line
	style      glowrays.GlowStyle
}

// renderConfig holds all rendering parameters for renderDocument.
type renderConfig struct {
	doc         glowrays.Document
	decorations []memory.Applied
	tokenizer   glowrays.Tokenizer
	glow        *glowlipgloss.Glow
	palette     glowrays.Palette
	renderer    *lipgloss.Renderer
}

// renderDocument draws the document text with theme colours, a line number
// gutter and glow on every decorated range.
func renderDocument(cfg renderConfig) string {
	if cfg.doc == nil {
		return ""
	}

	text := cfg.doc.Text()
	lines := strings.Split(text, "\n")

	var tokens [][]glowrays.Token
	if cfg.tokenizer != nil {
		tokens = cfg.tokenizer.TokenizeLines(cfg.doc.LanguageID(), text)
	}
	spans := spansByLine(cfg.decorations, len(lines))

	gutterWidth := max(digitWidth(len(lines)), minGutterWidth)
	gutterStyle := cfg.renderer.NewStyle().Foreground(lipgloss.Color(cfg.palette.Comment))

	var sb strings.Builder
	for i, line := range lines {
		sb.WriteString(gutterStyle.Render(fmt.Sprintf("%*d ", gutterWidth, i+1)))

		lineTokens := []glowrays.Token{{Text: line}}
		if i < len(tokens) && tokens[i] != nil {
			lineTokens = tokens[i]
		}
		sb.WriteString(renderLine(lineTokens, spans[i], cfg.glow))
		if i < len(lines)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// spansByLine splits decoration ranges into per-line column intervals.
// Later decorations are drawn on top of earlier ones.
func spansByLine(decorations []memory.Applied, lines int) [][]glowSpan {
	spans := make([][]glowSpan, lines)
	for _, d := range decorations {
		for _, r := range d.Ranges {
			for line := r.Start.Line; line <= r.End.Line && line < lines; line++ {
				if line < 0 {
					continue
				}
				span := glowSpan{start: 0, end: -1, style: d.Style}
				if line == r.Start.Line {
					span.start = r.Start.Column
				}
				if line == r.End.Line {
					span.end = r.End.Column
				}
				if span.end != -1 && span.end <= span.start {
					continue
				}
				spans[line] = append(spans[line], span)
			}
		}
	}
	return spans
}

// glowAt returns the style of the topmost span covering col, or nil.
func glowAt(spans []glowSpan, col int) *glowrays.GlowStyle {
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		if col >= s.start && (s.end == -1 || col < s.end) {
			return &spans[i].style
		}
	}
	return nil
}

// renderLine renders one line of tokens, cutting tokens wherever glow starts
// or stops so each run of characters is drawn with a single style.
func renderLine(tokens []glowrays.Token, spans []glowSpan, glow *glowlipgloss.Glow) string {
	var sb strings.Builder
	col, display := 0, 0

	flush := func(run []rune, tok glowrays.Token, style *glowrays.GlowStyle) {
		if len(run) == 0 {
			return
		}
		var text string
		text, display = ExpandTabs(string(run), display)
		sb.WriteString(glow.Render(text, tok.Style, style))
	}

	for _, tok := range tokens {
		var run []rune
		var current *glowrays.GlowStyle
		for _, r := range tok.Text {
			style := glowAt(spans, col)
			if len(run) > 0 && !sameGlow(style, current) {
				flush(run, tok, current)
				run = run[:0]
			}
			current = style
			run = append(run, r)
			col++
		}
		flush(run, tok, current)
	}
	return sb.String()
}

func sameGlow(a, b *glowrays.GlowStyle) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// digitWidth returns the number of digits needed to display n.
func digitWidth(n int) int {
	if n <= 0 {
		return 1
	}
	width := 0
	for n > 0 {
		width++
		n /= 10
	}
	return width
}

// rangeCount returns the number of ranges covered by decorations.
func rangeCount(decorations []memory.Applied) int {
	n := 0
	for _, d := range decorations {
		n += len(d.Ranges)
	}
	return n
}
