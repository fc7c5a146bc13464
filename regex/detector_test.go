package regex_test

import (
	"testing"
	"unicode"

	"github.com/fwojciec/glowrays"
	"github.com/fwojciec/glowrays/regex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func definitions(kinds ...glowrays.DefinitionKind) glowrays.DetectOptions {
	return glowrays.DetectOptions{Mode: glowrays.DefinitionsOnly, Targets: kinds}
}

func texts(matches []glowrays.TokenMatch) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Text)
	}
	return out
}

func TestDetector_AllTokens(t *testing.T) {
	t.Parallel()

	t.Run("covers every word and number of a declaration", func(t *testing.T) {
		t.Parallel()

		text := "const x = 5;"
		matches, err := regex.NewDetector().Detect(text, "javascript", glowrays.DetectOptions{})
		require.NoError(t, err)

		covered := make(map[int]bool)
		for _, m := range matches {
			for i := m.Span.Start; i < m.Span.End; i++ {
				covered[i] = true
			}
		}
		for i, r := range []rune(text) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				assert.True(t, covered[i], "offset %d (%q) not covered", i, r)
			}
		}
	})

	t.Run("emits classifiers in order and keeps overlaps", func(t *testing.T) {
		t.Parallel()

		matches, err := regex.NewDetector().Detect("const x = 5;", "javascript", glowrays.DetectOptions{})
		require.NoError(t, err)

		assert.Equal(t, []string{"const", "5", "const", "x"}, texts(matches))
		for _, m := range matches {
			assert.Equal(t, glowrays.CurrentColor, m.Tag)
		}
	})

	t.Run("matches strings and comments", func(t *testing.T) {
		t.Parallel()

		text := "let s = 'hi'; // note\n/* a\nb */"
		matches, err := regex.NewDetector().Detect(text, "javascript", glowrays.DetectOptions{})
		require.NoError(t, err)

		got := texts(matches)
		assert.Contains(t, got, "'hi'")
		assert.Contains(t, got, "// note")
		assert.Contains(t, got, "/* a\nb */")
	})

	t.Run("matches capitalised identifiers as types and identifiers", func(t *testing.T) {
		t.Parallel()

		matches, err := regex.NewDetector().Detect("new Map()", "javascript", glowrays.DetectOptions{})
		require.NoError(t, err)

		assert.Equal(t, []string{"new", "Map", "new", "Map"}, texts(matches))
	})

	t.Run("returns no matches for empty text", func(t *testing.T) {
		t.Parallel()

		matches, err := regex.NewDetector().Detect("", "javascript", glowrays.DetectOptions{})
		require.NoError(t, err)

		assert.Empty(t, matches)
	})
}

func TestDetector_DefinitionsOnly(t *testing.T) {
	t.Parallel()

	t.Run("extracts the function name only", func(t *testing.T) {
		t.Parallel()

		matches, err := regex.NewDetector().Detect(
			"function greet(name) { return name; }", "javascript",
			definitions(glowrays.KindFunction))
		require.NoError(t, err)

		require.Len(t, matches, 1)
		assert.Equal(t, "greet", matches[0].Text)
		assert.Equal(t, glowrays.Span{Start: 9, End: 14}, matches[0].Span)
		assert.Equal(t, glowrays.ColorTag("function"), matches[0].Tag)
	})

	t.Run("extracts the variable name from the second group", func(t *testing.T) {
		t.Parallel()

		matches, err := regex.NewDetector().Detect("let count = 1;", "javascript",
			definitions(glowrays.KindVariable))
		require.NoError(t, err)

		require.Len(t, matches, 1)
		assert.Equal(t, "count", matches[0].Text)
		assert.Equal(t, glowrays.Span{Start: 4, End: 9}, matches[0].Span)
	})

	t.Run("extracts class and method names", func(t *testing.T) {
		t.Parallel()

		text := "class Greeter {\n  hello(name) {\n    if (name) {\n    }\n  }\n}"
		matches, err := regex.NewDetector().Detect(text, "javascript",
			definitions(glowrays.KindClass, glowrays.KindMethod))
		require.NoError(t, err)

		assert.Equal(t, []string{"Greeter", "hello"}, texts(matches))
		assert.Equal(t, glowrays.ColorTag("class"), matches[0].Tag)
		assert.Equal(t, glowrays.ColorTag("method"), matches[1].Tag)
	})

	t.Run("uses python patterns for python documents", func(t *testing.T) {
		t.Parallel()

		matches, err := regex.NewDetector().Detect("def greet(name):\n    return name\n", "python",
			definitions(glowrays.KindFunction))
		require.NoError(t, err)

		require.Len(t, matches, 1)
		assert.Equal(t, "greet", matches[0].Text)
		assert.Equal(t, glowrays.Span{Start: 4, End: 9}, matches[0].Span)
	})

	t.Run("separates python methods from functions", func(t *testing.T) {
		t.Parallel()

		text := "class Greeter:\n    def run(self):\n        pass\n"
		d := regex.NewDetector()

		fns, err := d.Detect(text, "python", definitions(glowrays.KindFunction))
		require.NoError(t, err)
		assert.Empty(t, fns)

		methods, err := d.Detect(text, "python", definitions(glowrays.KindMethod))
		require.NoError(t, err)
		assert.Equal(t, []string{"run"}, texts(methods))
	})

	t.Run("ignores comparisons when finding python variables", func(t *testing.T) {
		t.Parallel()

		matches, err := regex.NewDetector().Detect("x = 1\nif x == 2:\n    y = 3\n", "python",
			definitions(glowrays.KindVariable))
		require.NoError(t, err)

		assert.Equal(t, []string{"x", "y"}, texts(matches))
	})

	t.Run("skips unknown kinds", func(t *testing.T) {
		t.Parallel()

		matches, err := regex.NewDetector().Detect(
			"function greet(name) { return name; }", "javascript",
			definitions("lambda", glowrays.KindFunction))
		require.NoError(t, err)

		assert.Equal(t, []string{"greet"}, texts(matches))
	})

	t.Run("reports offsets in characters", func(t *testing.T) {
		t.Parallel()

		matches, err := regex.NewDetector().Detect("// ñ\nconst y = 2;", "javascript",
			definitions(glowrays.KindVariable))
		require.NoError(t, err)

		require.Len(t, matches, 1)
		assert.Equal(t, glowrays.Span{Start: 11, End: 12}, matches[0].Span)
	})
}

func TestDetector_RejectsUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := regex.NewDetector().Detect("x", "javascript", glowrays.DetectOptions{Mode: glowrays.DetectMode(9)})

	assert.Error(t, err)
}

func TestDetector_Idempotent(t *testing.T) {
	t.Parallel()

	d := regex.NewDetector()
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 "'/*\n(){};=.]{0,80}`).Draw(rt, "text")
		lang := rapid.SampledFrom([]string{"javascript", "python", "go"}).Draw(rt, "lang")
		opts := rapid.SampledFrom([]glowrays.DetectOptions{
			{Mode: glowrays.AllTokens},
			definitions(glowrays.DefaultDefinitionKinds...),
		}).Draw(rt, "opts")

		first, err := d.Detect(text, lang, opts)
		require.NoError(rt, err)
		second, err := d.Detect(text, lang, opts)
		require.NoError(rt, err)

		assert.Equal(rt, first, second)

		runes := []rune(text)
		for _, m := range first {
			require.LessOrEqual(rt, m.Span.End, len(runes))
			assert.Equal(rt, m.Text, string(runes[m.Span.Start:m.Span.End]))
		}
	})
}
