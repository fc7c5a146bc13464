package chroma

import (
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/fwojciec/glowrays"
)

// StyleFromPalette returns a function that maps chroma token types to the
// palette's syntax colours. Glow inherits these colours, so every category
// the detector can match needs one.
func StyleFromPalette(p glowrays.Palette) StyleFunc {
	return func(tt chromalib.TokenType) glowrays.Style {
		switch {
		case tt == chromalib.KeywordType:
			return glowrays.Style{Foreground: p.Type, Bold: true}
		case tt.InCategory(chromalib.Keyword):
			return glowrays.Style{Foreground: p.Keyword, Bold: true}
		case tt.InCategory(chromalib.Comment):
			return glowrays.Style{Foreground: p.Comment}
		case tt.InSubCategory(chromalib.String):
			return glowrays.Style{Foreground: p.String}
		case tt.InSubCategory(chromalib.Number):
			return glowrays.Style{Foreground: p.Number}
		case tt.InCategory(chromalib.Operator):
			return glowrays.Style{Foreground: p.Operator}
		case tt == chromalib.NameFunction, tt == chromalib.NameFunctionMagic:
			return glowrays.Style{Foreground: p.Function}
		case tt == chromalib.NameClass:
			return glowrays.Style{Foreground: p.Type}
		case tt == chromalib.NameConstant, tt == chromalib.NameBuiltin, tt == chromalib.NameBuiltinPseudo:
			return glowrays.Style{Foreground: p.Constant}
		case tt == chromalib.Punctuation:
			return glowrays.Style{Foreground: p.Punctuation}
		default:
			return glowrays.Style{}
		}
	}
}
