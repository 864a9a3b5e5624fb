package mod

import (
	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
)

// InputKind identifies a recorded input event.
type InputKind int

const (
	InputScancode InputKind = iota
	InputUnicode
	InputMouse
	InputSync
)

// Input is one event as received by a Fill module.
type Input struct {
	Kind  InputKind
	Flags uint16
	// Code is the scancode, the rune, or the lock bits.
	Code uint32
	X, Y int
	Time uint32
}

// Fill paints its screen with a single color and echoes typed text on a
// line at the bottom. It records every input it receives.
type Fill struct {
	gd     gdi.GraphicApi
	screen gdi.Rect
	font   gdi.Font

	Color gdi.Color
	Text  gdi.TextStyle
	Label string

	Received    []Input
	Invalidated []gdi.Rect
	Activated   int
	Closed      bool

	echo []rune
}

// NewFill creates a fill module drawing into gd.
func NewFill(env Env, c gdi.Color, label string) *Fill {
	font := env.Font
	if font.GlyphW <= 0 || font.GlyphH <= 0 {
		font = gdi.DefaultFont
	}
	return &Fill{
		gd:     env.Graphics,
		screen: env.Screen,
		font:   font,
		Color:  c,
		Text:   gdi.TextStyle{Fg: gdi.RGB(0xe5, 0xe5, 0xe5), Bg: c},
		Label:  label,
	}
}

// Echo returns the text typed so far.
func (f *Fill) Echo() string { return string(f.echo) }

func (f *Fill) InputScancode(flags keymap.KbdFlags, sc keymap.Scancode, eventTime uint32, km *keymap.Keymap) {
	f.Received = append(f.Received, Input{Kind: InputScancode, Flags: uint16(flags), Code: uint32(sc), Time: eventTime})
	if km == nil {
		return
	}
	ev := km.Last()
	if ev.Release {
		return
	}
	switch {
	case ev.Code == keymap.KeyBackspace:
		if len(f.echo) > 0 {
			f.echo = f.echo[:len(f.echo)-1]
			f.InputInvalidate(f.echoRect())
		}
	case ev.Rune >= ' ':
		f.echo = append(f.echo, ev.Rune)
		f.drawEcho(f.echoRect())
	}
}

func (f *Fill) InputUnicode(flags keymap.KbdFlags, r rune, eventTime uint32) {
	f.Received = append(f.Received, Input{Kind: InputUnicode, Flags: uint16(flags), Code: uint32(r), Time: eventTime})
	if flags.IsRelease() || r < ' ' {
		return
	}
	f.echo = append(f.echo, r)
	f.drawEcho(f.echoRect())
}

func (f *Fill) InputMouse(flags MouseFlags, x, y int) {
	f.Received = append(f.Received, Input{Kind: InputMouse, Flags: uint16(flags), X: x, Y: y})
}

func (f *Fill) InputSynchronize(eventTime uint32, locks keymap.Locks) {
	f.Received = append(f.Received, Input{Kind: InputSync, Code: uint32(locks), Time: eventTime})
}

// InputInvalidate repaints r: background first, then label and echo line.
func (f *Fill) InputInvalidate(r gdi.Rect) {
	f.Invalidated = append(f.Invalidated, r)
	if f.gd == nil {
		return
	}
	r = r.Intersect(f.screen)
	if r.IsEmpty() {
		return
	}
	f.gd.FillRect(r, f.Color)
	if f.Label != "" {
		w := f.font.TextWidth(f.Label)
		x := f.screen.X + (f.screen.W-w)/2
		y := f.screen.Y + (f.screen.H-f.font.GlyphH)/2
		f.gd.DrawText(x, y, f.Label, f.Text, r)
	}
	f.drawEcho(r)
}

func (f *Fill) echoRect() gdi.Rect {
	h := f.font.GlyphH
	return gdi.Rect{X: f.screen.X, Y: f.screen.Bottom() - h, W: f.screen.W, H: h}
}

func (f *Fill) drawEcho(clip gdi.Rect) {
	if f.gd == nil || len(f.echo) == 0 {
		return
	}
	line := f.echoRect()
	f.gd.DrawText(line.X, line.Y, string(f.echo), f.Text, clip.Intersect(line))
}

func (f *Fill) Activate() { f.Activated++ }

func (f *Fill) Close() error {
	f.Closed = true
	return nil
}
