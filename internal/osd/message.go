package osd

import (
	"fmt"
	"strings"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/theme"
)

// Urgency orders OSD messages by importance.
type Urgency int

const (
	Normal Urgency = iota
	Info
	Warning
	Alert
)

var urgencyNames = [...]string{"normal", "info", "warning", "alert"}

func (u Urgency) String() string {
	if u < Normal || u > Alert {
		return fmt.Sprintf("urgency(%d)", int(u))
	}
	return urgencyNames[u]
}

// ParseUrgency accepts the lower-case names returned by String, plus "warn".
func ParseUrgency(s string) (Urgency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warn" {
		return Warning, nil
	}
	for i, name := range urgencyNames {
		if s == name {
			return Urgency(i), nil
		}
	}
	return Normal, fmt.Errorf("unknown urgency %q", s)
}

// Message is the overlay content. Lines are separated by '\n'.
type Message struct {
	Text    string
	Urgency Urgency
	// Dismissable messages can be cleared by the dismiss key or a click.
	Dismissable bool
}

// Style is the rendering of one urgency level.
type Style struct {
	Bg, Fg, Border gdi.Color
}

// Palette holds one style per urgency level.
type Palette [4]Style

// DefaultPalette derives the palette from the active theme.
func DefaultPalette() Palette {
	conv := func(c theme.Colors) Style {
		return Style{
			Bg:     gdi.FromColor(c.Bg),
			Fg:     gdi.FromColor(c.Fg),
			Border: gdi.FromColor(c.Border),
		}
	}
	return Palette{
		Normal:  conv(theme.Normal()),
		Info:    conv(theme.Info()),
		Warning: conv(theme.Warning()),
		Alert:   conv(theme.Alert()),
	}
}

// Style returns the style for u, clamping out-of-range levels.
func (p Palette) Style(u Urgency) Style {
	return p[min(max(u, Normal), Alert)]
}
