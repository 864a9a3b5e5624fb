package mux

import (
	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
	"github.com/Gaurav-Gosain/modmux/internal/mod"
	"github.com/Gaurav-Gosain/modmux/internal/osd"
)

// OnKey routes one key transition. The keymap is always updated first,
// so modifier state stays right even for intercepted keys.
//
// When the active module takes part in the OSD, a hot-key press flips the
// overlay and a dismiss-key press hides a dismissable message. The release
// of an intercepted press is swallowed as well, so the module never sees
// half a key stroke. Everything else goes to the module unchanged.
func (w *Wrapper) OnKey(flags keymap.KbdFlags, sc keymap.Scancode, eventTime uint32) {
	ev := w.km.Event(flags, sc)

	if ev.Release {
		if w.swallowed.Test(uint(ev.Code)) {
			w.swallowed.Clear(uint(ev.Code))
			logger.Debug("swallowed release", "session", w.id, "key", ev.Code)
			return
		}
		w.DispatchScancode(flags, sc, eventTime)
		return
	}

	if w.pack.EnableOSD && w.intercept(ev.Code) {
		w.swallowed.Set(uint(ev.Code))
		return
	}
	w.DispatchScancode(flags, sc, eventTime)
}

func (w *Wrapper) intercept(code keymap.KeyCode) bool {
	switch {
	case code == w.hotKey:
		w.checkDispatch("hot-key")
		if w.osd.Visible() {
			logger.Debug("hot-key hides osd", "session", w.id)
			w.osd.Hide()
		} else {
			logger.Debug("hot-key shows osd", "session", w.id)
			w.osd.Show(w.infoMessage(), osd.Normal)
		}
		return true
	case code == w.dismissKey && w.dismissable():
		w.checkDispatch("dismiss key")
		logger.Debug("dismiss key hides osd", "session", w.id)
		w.osd.Hide()
		return true
	}
	return false
}

func (w *Wrapper) dismissable() bool {
	return w.osd.Visible() && w.osd.Message().Dismissable
}

// OnMouse routes a pointer event. A left click on a dismissable overlay
// hides it; the click and its release never reach the module.
func (w *Wrapper) OnMouse(flags mod.MouseFlags, x, y int) {
	if w.mouseSwallowed && flags.IsRelease() {
		w.mouseSwallowed = false
		return
	}
	if flags.IsPress() && flags.Buttons() == mod.MouseButton1 && w.dismissable() && w.osd.Hit(x, y) {
		w.checkDispatch("overlay click")
		logger.Debug("click hides osd", "session", w.id, "x", x, "y", y)
		w.osd.Hide()
		w.mouseSwallowed = true
		return
	}
	w.DispatchMouse(flags, x, y)
}

// OnUnicode forwards a character event.
func (w *Wrapper) OnUnicode(flags keymap.KbdFlags, r rune, eventTime uint32) {
	w.DispatchUnicode(flags, r, eventTime)
}

// OnSynchronize resets lock state and forwards the event.
func (w *Wrapper) OnSynchronize(eventTime uint32, locks keymap.Locks) {
	w.km.Synchronize(locks)
	w.DispatchSynchronize(eventTime, locks)
}

// OnInvalidate handles a client refresh request.
func (w *Wrapper) OnInvalidate(r gdi.Rect) {
	w.DispatchInvalidate(r)
}
