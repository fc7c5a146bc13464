package glowrays

// DetectMode selects which ranges a Detector reports.
type DetectMode int

// Detection modes.
const (
	AllTokens DetectMode = iota
	DefinitionsOnly
)

func (m DetectMode) String() string {
	switch m {
	case AllTokens:
		return "all"
	case DefinitionsOnly:
		return "definitions"
	default:
		return "unknown"
	}
}

// DefinitionKind names a declaration site targeted in DefinitionsOnly mode.
type DefinitionKind string

// Definition kinds.
const (
	KindFunction DefinitionKind = "function"
	KindClass    DefinitionKind = "class"
	KindMethod   DefinitionKind = "method"
	KindVariable DefinitionKind = "variable"
)

// DefaultDefinitionKinds is the target set used when none is configured.
var DefaultDefinitionKinds = []DefinitionKind{KindFunction, KindClass, KindMethod, KindVariable}

// DetectOptions controls a single detection pass.
type DetectOptions struct {
	Mode DetectMode
	// Targets is consulted only in DefinitionsOnly mode.
	Targets []DefinitionKind
}

// Detector finds token ranges in document text.
type Detector interface {
	// Detect scans text and returns matches in detection order.
	// Calling it twice with the same input yields the same sequence.
	Detect(text, languageID string, opts DetectOptions) ([]TokenMatch, error)
}

// ColorGroup holds the ranges sharing one tag, in detection order.
type ColorGroup struct {
	Tag    ColorTag
	Ranges []Range
}

// GroupByTag converts matches to document ranges and groups them by tag.
// Groups are ordered by the first appearance of their tag; ranges keep
// detection order. Matches are not deduplicated.
func GroupByTag(doc Document, matches []TokenMatch) []ColorGroup {
	var groups []ColorGroup
	index := make(map[ColorTag]int)
	for _, m := range matches {
		r := Range{
			Start: doc.PositionAt(m.Span.Start),
			End:   doc.PositionAt(m.Span.End),
		}
		i, ok := index[m.Tag]
		if !ok {
			i = len(groups)
			index[m.Tag] = i
			groups = append(groups, ColorGroup{Tag: m.Tag})
		}
		groups[i].Ranges = append(groups[i].Ranges, r)
	}
	return groups
}
