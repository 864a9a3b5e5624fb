// Package theme provides the colors of the on-screen display.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
	tint "github.com/lrstanley/bubbletint/v2"
)

var enabled bool

// Initialize sets up the theme registry with the specified theme name.
// Call this once at startup.
// If themeName is empty, theming is disabled and the fixed OSD colors are used.
func Initialize(themeName string) error {
	if themeName == "" {
		enabled = false
		return nil
	}

	enabled = true
	tint.NewDefaultRegistry()

	if ok := tint.SetTintID(themeName); !ok {
		// Theme not found, set to default
		tint.SetTintID("default")
	}

	return nil
}

// IsEnabled returns true if theming is enabled
func IsEnabled() bool {
	return enabled
}

// Current returns the currently active theme.
// Returns nil if theming is disabled.
func Current() *tint.Tint {
	if !enabled {
		return nil
	}
	return tint.Current()
}

// Colors is the style of one OSD urgency level.
type Colors struct {
	Bg, Fg, Border color.Color
}

// Normal is used for informational session banners.
func Normal() Colors {
	t := Current()
	if t == nil {
		return Colors{lipgloss.Color("#1a1a2e"), lipgloss.Color("#a0a0b0"), lipgloss.Color("#5c5cff")}
	}
	return Colors{t.Bg, t.Fg, t.BrightBlack}
}

func Info() Colors {
	t := Current()
	if t == nil {
		return Colors{lipgloss.Color("#00005f"), lipgloss.Color("#ffffff"), lipgloss.Color("#00cdcd")}
	}
	return Colors{t.Blue, t.BrightWhite, t.BrightCyan}
}

func Warning() Colors {
	t := Current()
	if t == nil {
		return Colors{lipgloss.Color("#cdcd00"), lipgloss.Color("#000000"), lipgloss.Color("#ffff00")}
	}
	return Colors{t.Yellow, t.Black, t.BrightYellow}
}

// Alert is reserved for messages the operator must not miss, such as an
// imminent session kill.
func Alert() Colors {
	t := Current()
	if t == nil {
		return Colors{lipgloss.Color("#cd0000"), lipgloss.Color("#ffffff"), lipgloss.Color("#ff0000")}
	}
	return Colors{t.Red, t.BrightWhite, t.BrightRed}
}

// Background is the fill used for an empty session viewport.
func Background() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#000000")
	}
	return t.Bg
}
