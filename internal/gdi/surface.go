package gdi

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Surface is an in-memory 24-bit framebuffer. It stands in for the client
// display in headless sessions and tests.
type Surface struct {
	w, h int
	pix  []Color
	font Font
}

// NewSurface allocates a w x h surface filled with black.
func NewSurface(w, h int, font Font) *Surface {
	if font.GlyphW <= 0 || font.GlyphH <= 0 {
		font = DefaultFont
	}
	return &Surface{
		w:    max(w, 0),
		h:    max(h, 0),
		pix:  make([]Color, max(w, 0)*max(h, 0)),
		font: font,
	}
}

func (s *Surface) Bounds() Rect { return Rect{W: s.w, H: s.h} }
func (s *Surface) Font() Font   { return s.font }

// At returns the pixel at (x, y), black outside the surface.
func (s *Surface) At(x, y int) Color {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return 0
	}
	return s.pix[y*s.w+x]
}

func (s *Surface) FillRect(r Rect, c Color) {
	r = r.Intersect(s.Bounds())
	for y := r.Y; y < r.Bottom(); y++ {
		row := s.pix[y*s.w+r.X : y*s.w+r.Right()]
		for i := range row {
			row[i] = c
		}
	}
}

// DrawText renders text with a block font: every cell is filled with the
// background, then a 4x4 pattern derived from the rune is set in the
// foreground. Spaces have no foreground blocks.
func (s *Surface) DrawText(x, y int, text string, st TextStyle, clip Rect) {
	clip = clip.Intersect(s.Bounds())
	if clip.IsEmpty() {
		return
	}
	gw, gh := s.font.GlyphW, s.font.GlyphH
	cx := x
	for _, r := range text {
		cells := ansi.StringWidth(string(r))
		if cells == 0 {
			continue
		}
		cell := Rect{X: cx, Y: y, W: cells * gw, H: gh}
		s.fillClipped(cell, st.Bg, clip)
		if bits := glyphBits(r); bits != 0 {
			bw, bh := cell.W/4, gh/4
			for i := range 16 {
				if bits&(1<<i) == 0 {
					continue
				}
				block := Rect{X: cx + (i%4)*bw, Y: y + (i/4)*bh, W: bw, H: bh}
				s.fillClipped(block, st.Fg, clip)
			}
		}
		cx += cell.W
	}
}

func (s *Surface) fillClipped(r Rect, c Color, clip Rect) {
	s.FillRect(r.Intersect(clip), c)
}

// glyphBits returns the 4x4 block pattern for r.
func glyphBits(r rune) uint16 {
	if r == ' ' || r == '\t' {
		return 0
	}
	h := uint32(r) * 2654435761
	bits := uint16(h>>16) | 0x0001
	return bits
}

// Sum returns a hex digest of the pixel contents.
func (s *Surface) Sum() string {
	return s.SumRect(s.Bounds())
}

// SumRect returns a hex digest of the pixels inside r.
func (s *Surface) SumRect(r Rect) string {
	r = r.Intersect(s.Bounds())
	h := sha256.New()
	buf := make([]byte, 0, r.W*3)
	for y := r.Y; y < r.Bottom(); y++ {
		buf = buf[:0]
		for x := r.X; x < r.Right(); x++ {
			c := s.pix[y*s.w+x]
			buf = append(buf, c.R(), c.G(), c.B())
		}
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Clone returns an independent copy of the surface.
func (s *Surface) Clone() *Surface {
	c := &Surface{w: s.w, h: s.h, font: s.font, pix: make([]Color, len(s.pix))}
	copy(c.pix, s.pix)
	return c
}

// Preview samples the surface into a cols x rows grid of terminal cells.
// With color set, each cell is a lipgloss-styled block; otherwise cells are
// shaded by luminance.
func (s *Surface) Preview(cols, rows int, color bool) string {
	if cols <= 0 || rows <= 0 || s.w == 0 || s.h == 0 {
		return ""
	}
	const shades = " .:-=+*#%@"
	var b strings.Builder
	for row := range rows {
		y := (row*s.h + s.h/2) / rows
		var run strings.Builder
		var runColor Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle().Background(lipgloss.Color(runColor.Hex()))
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for col := range cols {
			x := (col*s.w + s.w/2) / cols
			c := s.At(x, y)
			if !color {
				l := luminance(c)
				b.WriteByte(shades[l*(len(shades)-1)/255])
				continue
			}
			if run.Len() > 0 && c != runColor {
				flush()
			}
			runColor = c
			run.WriteByte(' ')
		}
		flush()
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func luminance(c Color) int {
	return (299*int(c.R()) + 587*int(c.G()) + 114*int(c.B())) / 1000
}
