// Package osd renders a transient message overlay on top of the active
// module's output.
//
// The renderer never remembers pixels. Hiding the overlay asks the module
// to redraw what lies underneath through a Redrawer; showing it registers a
// deferred paint so the overlay always lands after the module's own draws
// in the same paint session.
package osd

import (
	"strings"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
)

const paintKey = "osd"

// Redrawer repaints a screen region. The session wires this to the active
// module's invalidate handler.
type Redrawer interface {
	InputInvalidate(r gdi.Rect)
}

// RedrawFunc adapts a function to Redrawer.
type RedrawFunc func(r gdi.Rect)

func (f RedrawFunc) InputInvalidate(r gdi.Rect) { f(r) }

type Options struct {
	Screen  gdi.Rect
	Font    gdi.Font
	Palette Palette
	// Padding between the border and the text, in pixels.
	Padding int
	// TopMargin is the distance from the top of the screen.
	TopMargin int
}

const borderWidth = 1

// Renderer owns overlay visibility and content. It is not safe for
// concurrent use.
type Renderer struct {
	painter *gdi.Painter
	redraw  Redrawer
	opts    Options

	msg     Message
	visible bool
	rect    gdi.Rect
}

// NewRenderer creates a hidden overlay drawing through p.
func NewRenderer(p *gdi.Painter, redraw Redrawer, opts Options) *Renderer {
	if opts.Font.GlyphW <= 0 || opts.Font.GlyphH <= 0 {
		opts.Font = gdi.DefaultFont
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	return &Renderer{painter: p, redraw: redraw, opts: opts}
}

func (r *Renderer) Visible() bool    { return r.visible }
func (r *Renderer) Message() Message { return r.msg }

// Rect returns the region covered by the overlay, empty when hidden.
func (r *Renderer) Rect() gdi.Rect { return r.rect }

// Hit reports whether (x, y) falls on the visible overlay.
func (r *Renderer) Hit(x, y int) bool {
	return r.visible && r.rect.ContainsPoint(x, y)
}

// SetRedrawer changes who restores the region under the overlay.
func (r *Renderer) SetRedrawer(rd Redrawer) { r.redraw = rd }

// Show displays a dismissable message. Empty text hides the overlay.
func (r *Renderer) Show(text string, u Urgency) {
	r.ShowMessage(Message{Text: text, Urgency: u, Dismissable: true})
}

// ShowMessage displays m, replacing any visible message in place: the
// parts of the old region the new one does not cover are restored, then
// the overlay is painted once.
func (r *Renderer) ShowMessage(m Message) {
	if m.Text == "" {
		r.Hide()
		return
	}

	s := r.painter.Begin()
	defer s.End()

	old, wasVisible := r.rect, r.visible
	r.msg, r.visible, r.rect = m, true, r.Layout(m.Text)
	if wasVisible {
		for _, piece := range old.Subtract(r.rect) {
			r.restore(piece)
		}
	}
	s.Defer(paintKey, r.paint)
}

// Hide removes the overlay and restores the region from the module.
// Hiding a hidden overlay does nothing.
func (r *Renderer) Hide() {
	if !r.visible {
		return
	}

	s := r.painter.Begin()
	defer s.End()

	s.Cancel(paintKey)
	old := r.rect
	r.msg, r.visible, r.rect = Message{}, false, gdi.Rect{}
	r.restore(old)
}

// RefreshIfVisible repaints the current message, typically after a full
// viewport redraw.
func (r *Renderer) RefreshIfVisible() {
	if !r.visible {
		return
	}
	s := r.painter.Begin()
	s.Defer(paintKey, r.paint)
	s.End()
}

func (r *Renderer) restore(rect gdi.Rect) {
	rect = rect.Intersect(r.opts.Screen)
	if rect.IsEmpty() || r.redraw == nil {
		return
	}
	r.redraw.InputInvalidate(rect)
}

// Layout returns the region a message with text would occupy: centered
// horizontally at the top of the screen, clipped to it.
func (r *Renderer) Layout(text string) gdi.Rect {
	lines := strings.Split(text, "\n")
	width := 0
	for _, line := range lines {
		width = max(width, r.opts.Font.TextWidth(line))
	}
	inset := 2 * (r.opts.Padding + borderWidth)
	w := width + inset
	h := len(lines)*r.opts.Font.GlyphH + inset
	screen := r.opts.Screen
	rect := gdi.Rect{
		X: screen.X + (screen.W-w)/2,
		Y: screen.Y + r.opts.TopMargin,
		W: w,
		H: h,
	}
	return rect.Intersect(screen)
}

func (r *Renderer) paint(gd gdi.GraphicApi) {
	if !r.visible || r.rect.IsEmpty() {
		return
	}
	st := r.opts.Palette.Style(r.msg.Urgency)
	gd.FillRect(r.rect, st.Border)

	inner := gdi.Rect{
		X: r.rect.X + borderWidth,
		Y: r.rect.Y + borderWidth,
		W: r.rect.W - 2*borderWidth,
		H: r.rect.H - 2*borderWidth,
	}
	if inner.IsEmpty() {
		return
	}
	gd.FillRect(inner, st.Bg)

	ts := gdi.TextStyle{Fg: st.Fg, Bg: st.Bg}
	y := inner.Y + r.opts.Padding
	for _, line := range strings.Split(r.msg.Text, "\n") {
		if line != "" {
			gd.DrawText(inner.X+r.opts.Padding, y, line, ts, inner)
		}
		y += r.opts.Font.GlyphH
	}
}
