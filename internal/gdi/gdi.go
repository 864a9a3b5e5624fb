// Package gdi defines the drawing capability shared by the overlay and the
// active module, plus in-memory implementations used for headless sessions.
package gdi

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Rect is an axis-aligned rectangle. W and H <= 0 means empty.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }
func (r Rect) Right() int    { return r.X + r.W }
func (r Rect) Bottom() int   { return r.Y + r.H }

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// Intersect returns the overlap of r and o, empty if they are disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether o lies entirely inside r. An empty o is
// contained by anything.
func (r Rect) Contains(o Rect) bool {
	if o.IsEmpty() {
		return true
	}
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// ContainsPoint reports whether (x, y) is inside r.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.Right() && y < r.Bottom()
}

// Subtract returns up to four disjoint rectangles covering r minus o.
func (r Rect) Subtract(o Rect) []Rect {
	if r.IsEmpty() {
		return nil
	}
	in := r.Intersect(o)
	if in.IsEmpty() {
		return []Rect{r}
	}
	var out []Rect
	if in.Y > r.Y {
		out = append(out, Rect{X: r.X, Y: r.Y, W: r.W, H: in.Y - r.Y})
	}
	if in.Bottom() < r.Bottom() {
		out = append(out, Rect{X: r.X, Y: in.Bottom(), W: r.W, H: r.Bottom() - in.Bottom()})
	}
	if in.X > r.X {
		out = append(out, Rect{X: r.X, Y: in.Y, W: in.X - r.X, H: in.H})
	}
	if in.Right() < r.Right() {
		out = append(out, Rect{X: in.Right(), Y: in.Y, W: r.Right() - in.Right(), H: in.H})
	}
	return out
}

// Color is a 24-bit 0xRRGGBB value.
type Color uint32

func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// FromColor converts any image/color value, such as lipgloss or theme
// colors. Nil maps to black.
func FromColor(c color.Color) Color {
	if c == nil {
		return 0
	}
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// TextStyle carries the colors of a glyph run.
type TextStyle struct {
	Fg, Bg Color
}

// GraphicApi is the display egress. Commands are fire-and-forget.
type GraphicApi interface {
	FillRect(r Rect, c Color)
	// DrawText draws a single line of text with its top-left corner at
	// (x, y). Nothing is drawn outside clip.
	DrawText(x, y int, text string, st TextStyle, clip Rect)
}

// Font gives glyph metrics. Every cell is GlyphW x GlyphH pixels; wide
// characters take two cells.
type Font struct {
	GlyphW, GlyphH int
}

// DefaultFont is an 8x16 cell font.
var DefaultFont = Font{GlyphW: 8, GlyphH: 16}

// TextWidth returns the pixel width of a single line of text.
func (f Font) TextWidth(s string) int {
	return ansi.StringWidth(s) * f.GlyphW
}
