package ui

import (
	"image/color"

	"VoiceTasks/palette"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// CustomTheme paints the window background with a palette swatch and
// picks the light or dark variant of the default theme to match it.
type CustomTheme struct {
	fyne.Theme
	swatch  palette.Swatch
	variant fyne.ThemeVariant
}

// NewCustomTheme creates a theme for the given swatch.
func NewCustomTheme(s palette.Swatch) fyne.Theme {
	variant := theme.VariantLight
	if s.Dark() {
		variant = theme.VariantDark
	}
	return &CustomTheme{Theme: theme.DefaultTheme(), swatch: s, variant: variant}
}

// Color returns the swatch for the background and the matching variant
// color for everything else.
func (t *CustomTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	if name == theme.ColorNameBackground {
		return t.swatch.Color
	}
	return t.Theme.Color(name, t.variant)
}
