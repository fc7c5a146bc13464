package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// tabWidth is the distance between tab stops.
const tabWidth = 8

// ExpandTabs converts tab characters to spaces using 8-column tab stops.
// startCol is the display column where s begins; the returned column is
// where the expanded text ends, so consecutive segments of one line can be
// expanded in turn.
func ExpandTabs(s string, startCol int) (string, int) {
	if !strings.Contains(s, "\t") {
		return s, startCol + lipgloss.Width(s)
	}

	var sb strings.Builder
	col := startCol
	for _, r := range s {
		if r == '\t' {
			next := (col/tabWidth + 1) * tabWidth
			sb.WriteString(strings.Repeat(" ", next-col))
			col = next
			continue
		}
		sb.WriteRune(r)
		col += lipgloss.Width(string(r))
	}
	return sb.String(), col
}
