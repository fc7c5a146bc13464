// Package regex implements glowrays.Detector with ordered regular-expression
// classifiers.
package regex

import (
	"time"

	"github.com/dlclark/regexp2"
	"github.com/fwojciec/glowrays"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Compile-time interface verification.
var _ glowrays.Detector = (*Detector)(nil)

// DefaultTimeout bounds the time spent by a single pattern on one document.
const DefaultTimeout = 2 * time.Second

// classifier is one (pattern, token type) entry of the all-tokens list.
type classifier struct {
	tokenType string
	source    string
	options   regexp2.RegexOptions
	re        *regexp2.Regexp
}

// definition extracts the identifier named by group from each match.
type definition struct {
	source  string
	options regexp2.RegexOptions
	group   int
	re      *regexp2.Regexp
}

// Order matters: matches are emitted classifier by classifier.
var tokenClassifiers = []classifier{
	{tokenType: "keyword", source: `\b(function|class|const|let|var|import|export|return|if|else|for|while|switch|case|default|break|continue|do|in|instanceof|typeof|new|delete|throw|try|catch|finally|debugger|async|await)\b`},
	{tokenType: "constant", source: `\b(true|false|null|undefined|NaN|Infinity)\b`},
	{tokenType: "string", source: "\"[^\"]*\"|'[^']*'|`[^`]*`"},
	{tokenType: "number", source: `\b([0-9]+(\.[0-9]+)?)\b`},
	{tokenType: "comment", source: `//.*$`, options: regexp2.Multiline},
	{tokenType: "comment", source: `/\*[\s\S]*?\*/`},
	{tokenType: "type", source: `\b[A-Z][A-Za-z0-9_]*\b`},
	{tokenType: "variable", source: `\b[a-zA-Z_]\w*\b`},
}

var genericDefinitions = map[glowrays.DefinitionKind]definition{
	glowrays.KindFunction: {source: `\b(?:function|func|fn|def)\s+([A-Za-z_$][\w$]*)`, group: 1},
	glowrays.KindClass:    {source: `\b(?:class|struct|interface|enum|type)\s+([A-Za-z_$][\w$]*)`, group: 1},
	glowrays.KindMethod: {
		source:  `^[ \t]*(?!(?:if|for|while|switch|catch|function|return)\b)([A-Za-z_$][\w$]*)\s*\([^)]*\)\s*\{`,
		options: regexp2.Multiline,
		group:   1,
	},
	glowrays.KindVariable: {source: `\b(const|let|var)\s+([A-Za-z_$][\w$]*)`, group: 2},
}

var pythonDefinitions = map[glowrays.DefinitionKind]definition{
	glowrays.KindFunction: {source: `^(?:async[ \t]+)?def[ \t]+([A-Za-z_]\w*)`, options: regexp2.Multiline, group: 1},
	glowrays.KindClass:    {source: `^[ \t]*class[ \t]+([A-Za-z_]\w*)`, options: regexp2.Multiline, group: 1},
	glowrays.KindMethod:   {source: `^[ \t]+(?:async[ \t]+)?def[ \t]+([A-Za-z_]\w*)`, options: regexp2.Multiline, group: 1},
	glowrays.KindVariable: {source: `^[ \t]*([A-Za-z_]\w*)[ \t]*=(?!=)`, options: regexp2.Multiline, group: 1},
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for per-pass diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Detector) {
		d.logger = l
	}
}

// WithTimeout sets the per-pattern match timeout.
func WithTimeout(t time.Duration) Option {
	return func(d *Detector) {
		d.timeout = t
	}
}

// Detector finds token ranges with regular-expression heuristics. Patterns
// use ECMAScript semantics, so \w and \b are ASCII-only.
type Detector struct {
	logger  zerolog.Logger
	timeout time.Duration

	tokens  []classifier
	generic map[glowrays.DefinitionKind]definition
	python  map[glowrays.DefinitionKind]definition
}

// NewDetector compiles the classifier and definition patterns.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		logger:  zerolog.Nop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.tokens = make([]classifier, len(tokenClassifiers))
	for i, c := range tokenClassifiers {
		c.re = d.compile(c.source, c.options)
		d.tokens[i] = c
	}
	d.generic = d.compileDefinitions(genericDefinitions)
	d.python = d.compileDefinitions(pythonDefinitions)
	return d
}

func (d *Detector) compile(source string, options regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(source, regexp2.ECMAScript|options)
	re.MatchTimeout = d.timeout
	return re
}

func (d *Detector) compileDefinitions(src map[glowrays.DefinitionKind]definition) map[glowrays.DefinitionKind]definition {
	out := make(map[glowrays.DefinitionKind]definition, len(src))
	for kind, def := range src {
		def.re = d.compile(def.source, def.options)
		out[kind] = def
	}
	return out
}

// Detect scans text according to opts. Every call rescans the whole text;
// nothing is cached between calls.
func (d *Detector) Detect(text, languageID string, opts glowrays.DetectOptions) ([]glowrays.TokenMatch, error) {
	switch opts.Mode {
	case glowrays.AllTokens:
		return d.detectTokens(text)
	case glowrays.DefinitionsOnly:
		return d.detectDefinitions(text, languageID, opts.Targets)
	default:
		return nil, errors.Errorf("unsupported detect mode %d", int(opts.Mode))
	}
}

func (d *Detector) detectTokens(text string) ([]glowrays.TokenMatch, error) {
	var matches []glowrays.TokenMatch
	for _, c := range d.tokens {
		n := 0
		err := each(c.re, text, func(m *regexp2.Match) {
			n++
			matches = append(matches, glowrays.TokenMatch{
				Text: m.String(),
				Span: glowrays.Span{Start: m.Index, End: m.Index + m.Length},
				Tag:  glowrays.CurrentColor,
			})
		})
		if err != nil {
			return nil, errors.Errorf("matching %s tokens: %w", c.tokenType, err)
		}
		d.logger.Debug().Str("token_type", c.tokenType).Int("matches", n).Msg("classifier pass")
	}
	d.logger.Debug().Int("matches", len(matches)).Msg("token detection complete")
	return matches, nil
}

func (d *Detector) detectDefinitions(text, languageID string, targets []glowrays.DefinitionKind) ([]glowrays.TokenMatch, error) {
	defs := d.generic
	if languageID == "python" {
		defs = d.python
	}

	var matches []glowrays.TokenMatch
	for _, kind := range targets {
		def, ok := defs[kind]
		if !ok {
			d.logger.Warn().Str("kind", string(kind)).Msg("unknown definition kind skipped")
			continue
		}
		err := each(def.re, text, func(m *regexp2.Match) {
			start, length, name := m.Index, m.Length, m.String()
			if g := m.GroupByNumber(def.group); g != nil && len(g.Captures) > 0 && g.Length > 0 {
				start, length, name = g.Index, g.Length, g.String()
			}
			matches = append(matches, glowrays.TokenMatch{
				Text: name,
				Span: glowrays.Span{Start: start, End: start + length},
				Tag:  glowrays.ColorTag(kind),
			})
		})
		if err != nil {
			return nil, errors.Errorf("matching %s definitions: %w", kind, err)
		}
	}
	d.logger.Debug().Str("language", languageID).Int("matches", len(matches)).Msg("definition detection complete")
	return matches, nil
}

// each calls fn for every successive match of re in text.
func each(re *regexp2.Regexp, text string, fn func(*regexp2.Match)) error {
	m, err := re.FindStringMatch(text)
	for m != nil && err == nil {
		fn(m)
		m, err = re.FindNextMatch(m)
	}
	return err
}
