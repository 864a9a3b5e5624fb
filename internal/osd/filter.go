package osd

import "github.com/Gaurav-Gosain/modmux/internal/gdi"

// Filter wraps the sink a module draws through. While the overlay is
// visible, module draws are clipped around it.
func (r *Renderer) Filter(gd gdi.GraphicApi) gdi.GraphicApi {
	return &filter{r: r, next: gd}
}

type filter struct {
	r    *Renderer
	next gdi.GraphicApi
}

func (f *filter) FillRect(rect gdi.Rect, c gdi.Color) {
	if !f.r.visible {
		f.next.FillRect(rect, c)
		return
	}
	for _, piece := range rect.Subtract(f.r.rect) {
		f.next.FillRect(piece, c)
	}
}

func (f *filter) DrawText(x, y int, text string, st gdi.TextStyle, clip gdi.Rect) {
	if !f.r.visible {
		f.next.DrawText(x, y, text, st, clip)
		return
	}
	for _, piece := range clip.Subtract(f.r.rect) {
		f.next.DrawText(x, y, text, st, piece)
	}
}
