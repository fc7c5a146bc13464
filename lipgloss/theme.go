// Package lipgloss provides themes and glow rendering using the Lipgloss
// styling library.
package lipgloss

import "github.com/fwojciec/glowrays"

// Compile-time interface verification.
var _ glowrays.Theme = (*Theme)(nil)

// Theme implements glowrays.Theme with Lipgloss-compatible colors.
type Theme struct {
	palette glowrays.Palette
}

// Palette returns the semantic color palette for this theme.
func (t *Theme) Palette() glowrays.Palette {
	return t.palette
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// ThemeByName returns the theme called name ("dark" or "light"), or the
// default theme for any other value.
func ThemeByName(name string) *Theme {
	if name == "light" {
		return LightTheme()
	}
	return DefaultTheme()
}

// DarkTheme returns a theme optimized for dark terminal backgrounds.
func DarkTheme() *Theme {
	return &Theme{
		palette: glowrays.Palette{
			// Base colors (Catppuccin Mocha)
			Background: "#1e1e2e",
			Foreground: "#cdd6f4",

			// Syntax highlighting colors
			Keyword:     "#cba6f7",
			String:      "#a6e3a1",
			Number:      "#fab387",
			Comment:     "#6c7086",
			Operator:    "#89dceb",
			Function:    "#89b4fa",
			Type:        "#f9e2af",
			Constant:    "#fab387",
			Punctuation: "#9399b2",

			// Glow bleeds toward white on dark backgrounds
			Halo: "#ffffff",

			// UI colors
			UIBackground: "#313244",
			UIForeground: "#a6adc8",
			UIAccent:     "#89b4fa",
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds.
func LightTheme() *Theme {
	return &Theme{
		palette: glowrays.Palette{
			// Base colors (Catppuccin Latte)
			Background: "#eff1f5",
			Foreground: "#4c4f69",

			// Syntax highlighting colors
			Keyword:     "#8839ef",
			String:      "#40a02b",
			Number:      "#fe640b",
			Comment:     "#9ca0b0",
			Operator:    "#04a5e5",
			Function:    "#1e66f5",
			Type:        "#df8e1d",
			Constant:    "#fe640b",
			Punctuation: "#6c6f85",

			// A saturated halo reads better than white on light backgrounds
			Halo: "#f5c2e7",

			// UI colors
			UIBackground: "#e6e9ef",
			UIForeground: "#6c6f85",
			UIAccent:     "#1e66f5",
		},
	}
}
