package mux

import (
	"testing"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
	"github.com/Gaurav-Gosain/modmux/internal/mod"
	"github.com/Gaurav-Gosain/modmux/internal/osd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(w *Wrapper, code keymap.KeyCode, eventTime uint32) {
	w.OnKey(code.Flags(), code.Scancode(), eventTime)
}

func release(w *Wrapper, code keymap.KeyCode, eventTime uint32) {
	w.OnKey(code.Flags()|keymap.Release, code.Scancode(), eventTime)
}

func TestHotKeyTogglesOnPressOnly(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, true)

	press(w, keymap.KeyF12, 1)
	require.True(t, w.OSD().Visible())
	assert.Equal(t, "test1@10.10.47.32", w.OSD().Message().Text)

	release(w, keymap.KeyF12, 2)
	assert.True(t, w.OSD().Visible(), "release never toggles")

	press(w, keymap.KeyF12, 3)
	assert.False(t, w.OSD().Visible())
	release(w, keymap.KeyF12, 4)
	assert.False(t, w.OSD().Visible())

	press(w, keymap.KeyF12, 5)
	assert.True(t, w.OSD().Visible())

	assert.Empty(t, f.Received, "hot-key strokes never reach the module")
}

func TestHotKeyRepeatFlipsEachTime(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, true)

	press(w, keymap.KeyF12, 1)
	press(w, keymap.KeyF12, 2)
	assert.False(t, w.OSD().Visible())
	press(w, keymap.KeyF12, 3)
	assert.True(t, w.OSD().Visible())
	release(w, keymap.KeyF12, 4)

	assert.Empty(t, f.Received)
}

func TestHotKeyPassesThroughWithoutOSD(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, false)

	press(w, keymap.KeyF12, 1)
	release(w, keymap.KeyF12, 2)

	assert.False(t, w.OSD().Visible())
	require.Len(t, f.Received, 2)
	assert.Equal(t, uint32(keymap.KeyF12.Scancode()), f.Received[0].Code)
	assert.Equal(t, uint16(keymap.Release), f.Received[1].Flags)
}

func TestHotKeyReleaseAloneIsForwarded(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, true)
	w.ShowOSD("visible", osd.Normal)

	release(w, keymap.KeyF12, 9)

	assert.True(t, w.OSD().Visible())
	require.Len(t, f.Received, 1)
	assert.Equal(t, uint32(9), f.Received[0].Time)
}

func TestPassThroughIsUnmodified(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, true)

	w.OnKey(0, 0x1E, 42)
	w.OnKey(keymap.Release, 0x1E, 43)
	press(w, keymap.KeyRight, 44)
	w.OnKey(keymap.Extended1, 0x1D, 45)

	assert.Equal(t, []mod.Input{
		{Kind: mod.InputScancode, Flags: 0, Code: 0x1E, Time: 42},
		{Kind: mod.InputScancode, Flags: uint16(keymap.Release), Code: 0x1E, Time: 43},
		{Kind: mod.InputScancode, Flags: uint16(keymap.Extended), Code: 0x4D, Time: 44},
		{Kind: mod.InputScancode, Flags: uint16(keymap.Extended1), Code: 0x1D, Time: 45},
	}, f.Received)
	assert.Equal(t, "a", f.Echo(), "module reads the shared keymap")
}

func TestUnknownKeyCodesAreForwarded(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, true)

	assert.NotPanics(t, func() {
		w.OnKey(keymap.Extended, 0xEE, 1)
		w.OnKey(keymap.Extended|keymap.Release, 0xEE, 2)
	})
	require.Len(t, f.Received, 2)
	assert.Equal(t, uint32(0xEE), f.Received[0].Code)
	assert.Equal(t, uint16(keymap.Extended), f.Received[0].Flags)
}

func TestKeymapTracksInterceptedKeys(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, true)

	press(w, keymap.KeyLShift, 1)
	press(w, keymap.KeyF12, 2)

	km := w.Keymap()
	assert.True(t, km.Mods().Shift())
	assert.True(t, km.IsDown(keymap.KeyF12))
	assert.Equal(t, keymap.KeyF12, km.Last().Code)

	release(w, keymap.KeyF12, 3)
	release(w, keymap.KeyLShift, 4)
	assert.False(t, km.Mods().Shift())
	assert.Equal(t, 0, km.DownCount())
	assert.Len(t, f.Received, 2, "only the shift stroke is forwarded")
}

func TestDismissKey(t *testing.T) {
	t.Run("hides a dismissable message", func(t *testing.T) {
		w, _, _ := newSession(t)
		f := installFill(t, w, blue, true)
		w.ShowOSD("you are being recorded", osd.Info)

		press(w, keymap.KeyInsert, 1)
		assert.False(t, w.OSD().Visible())
		release(w, keymap.KeyInsert, 2)
		assert.Empty(t, f.Received)

		press(w, keymap.KeyInsert, 3)
		release(w, keymap.KeyInsert, 4)
		assert.Len(t, f.Received, 2, "insert goes to the module when nothing is shown")
	})

	t.Run("leaves a sticky message", func(t *testing.T) {
		w, _, _ := newSession(t)
		f := installFill(t, w, blue, true)
		w.ShowMessage(osd.Message{Text: "session will be killed", Urgency: osd.Alert})

		press(w, keymap.KeyInsert, 1)
		release(w, keymap.KeyInsert, 2)
		assert.True(t, w.OSD().Visible())
		assert.Len(t, f.Received, 2)

		press(w, keymap.KeyF12, 3)
		assert.False(t, w.OSD().Visible(), "the hot-key still hides it")
	})

	t.Run("needs osd participation", func(t *testing.T) {
		w, _, _ := newSession(t)
		f := installFill(t, w, blue, false)
		w.ShowOSD("notice", osd.Normal)

		press(w, keymap.KeyInsert, 1)
		assert.True(t, w.OSD().Visible())
		assert.Len(t, f.Received, 1)
	})

	t.Run("plain insert is not the dismiss key", func(t *testing.T) {
		w, _, _ := newSession(t)
		f := installFill(t, w, blue, true)
		w.ShowOSD("notice", osd.Normal)

		// Keypad 0 shares the scancode but lacks the extended flag.
		w.OnKey(0, keymap.KeyInsert.Scancode(), 1)
		assert.True(t, w.OSD().Visible())
		assert.Len(t, f.Received, 1)
	})
}

func TestCustomKeys(t *testing.T) {
	surf := gdi.NewSurface(640, 480, gdi.DefaultFont)
	w := New(Options{
		Screen:     surf.Bounds(),
		Graphics:   surf,
		HotKey:     keymap.KeyF11,
		DismissKey: keymap.KeyEscape,
	})
	f := installFill(t, w, blue, true)

	press(w, keymap.KeyF12, 1)
	assert.False(t, w.OSD().Visible())
	press(w, keymap.KeyF11, 2)
	require.True(t, w.OSD().Visible())
	assert.Contains(t, w.OSD().Message().Text, w.SessionID(), "no target info falls back to the session id")
	press(w, keymap.KeyEscape, 3)
	assert.False(t, w.OSD().Visible())

	assert.Len(t, f.Received, 1)
}

func TestSwallowedReleaseSurvivesReplacement(t *testing.T) {
	w, _, _ := newSession(t)
	installFill(t, w, blue, true)
	press(w, keymap.KeyF12, 1)

	next := installFill(t, w, red, false)
	release(w, keymap.KeyF12, 2)

	assert.Empty(t, next.Received)
	assert.True(t, w.OSD().Visible())
}

func TestMouseClickDismissesOverlay(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, true)
	w.ShowOSD("click to close", osd.Warning)
	rect := w.OSD().Rect()
	x, y := rect.X+2, rect.Y+2

	w.OnMouse(mod.MouseButton2|mod.MouseDown, x, y)
	w.OnMouse(mod.MouseButton2, x, y)
	assert.True(t, w.OSD().Visible(), "only the left button dismisses")
	assert.Len(t, f.Received, 2)

	w.OnMouse(mod.MouseMove, x, y)
	w.OnMouse(mod.MouseButton1|mod.MouseDown, x, y)
	assert.False(t, w.OSD().Visible())
	w.OnMouse(mod.MouseButton1, x, y)
	assert.Len(t, f.Received, 3, "press and release on the overlay are consumed")

	w.OnMouse(mod.MouseButton1|mod.MouseDown, x, y)
	w.OnMouse(mod.MouseButton1, x, y)
	assert.Len(t, f.Received, 5)
}

func TestMouseOutsideOverlayIsForwarded(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, true)
	w.ShowOSD("hello", osd.Normal)

	w.OnMouse(mod.MouseButton1|mod.MouseDown, 5, 590)
	assert.True(t, w.OSD().Visible())
	require.Len(t, f.Received, 1)
	assert.Equal(t, mod.Input{Kind: mod.InputMouse, Flags: uint16(mod.MouseButton1 | mod.MouseDown), X: 5, Y: 590}, f.Received[0])
}

func TestSynchronizeAndUnicode(t *testing.T) {
	w, _, _ := newSession(t)
	f := installFill(t, w, blue, true)

	w.OnSynchronize(5, keymap.CapsLock|keymap.NumLock)
	assert.Equal(t, keymap.CapsLock|keymap.NumLock, w.Keymap().Locks())

	w.OnUnicode(0, 'ß', 6)

	assert.Equal(t, []mod.Input{
		{Kind: mod.InputSync, Code: uint32(keymap.CapsLock | keymap.NumLock), Time: 5},
		{Kind: mod.InputUnicode, Code: uint32('ß'), Time: 6},
	}, f.Received)
}
