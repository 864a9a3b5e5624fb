// Package mux owns the active backend module of a session and mediates
// between it, the user's input and the on-screen display.
//
// A Wrapper always holds exactly one module; mod.Null is installed until
// the first ReplaceModule. Every draw goes through a shared gdi.Painter so
// overlay paint is flushed after module output within the same session.
//
// A Wrapper is owned by the session's event loop and is not safe for
// concurrent use.
package mux

import (
	"errors"
	"fmt"
	"os"

	"github.com/bits-and-blooms/bitset"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
	"github.com/Gaurav-Gosain/modmux/internal/mod"
	"github.com/Gaurav-Gosain/modmux/internal/osd"
)

// Package-level logger
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "mux",
	})
}

// SetLogLevel sets the logging level for the mux package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// ErrReplaceInProgress is returned by ReplaceModule when called while a
// replacement is already running, e.g. from a module's Close.
var ErrReplaceInProgress = errors.New("module replacement in progress")

// Options configures a Wrapper. Zero values select defaults.
type Options struct {
	// Screen defaults to 800x600.
	Screen gdi.Rect
	// Graphics is the client display. Defaults to a Surface of Screen size.
	Graphics gdi.GraphicApi
	Font     gdi.Font
	Keymap   *keymap.Keymap
	// Palette defaults to osd.DefaultPalette().
	Palette *osd.Palette
	// Padding inside the OSD border, in pixels.
	Padding int
	// HotKey toggles the OSD. Defaults to F12.
	HotKey keymap.KeyCode
	// DismissKey hides a dismissable message. Defaults to Insert.
	DismissKey keymap.KeyCode
	// Background fills the viewport on module replacement.
	Background gdi.Color
	// TargetInfo is shown by the hot-key.
	TargetInfo string
	SessionID  string
}

// Wrapper is the session module multiplexer.
type Wrapper struct {
	id         string
	screen     gdi.Rect
	font       gdi.Font
	painter    *gdi.Painter
	osd        *osd.Renderer
	graphics   gdi.GraphicApi
	km         *keymap.Keymap
	hotKey     keymap.KeyCode
	dismissKey keymap.KeyCode
	background gdi.Color
	targetInfo string

	name      mod.Name
	pack      mod.Pack
	replacing bool

	// Keys whose press was intercepted; their release is swallowed too.
	swallowed *bitset.BitSet
	// A press on the overlay was consumed; swallow the matching release.
	mouseSwallowed bool
}

// New creates a session with the placeholder module installed.
func New(opts Options) *Wrapper {
	if opts.Screen.IsEmpty() {
		opts.Screen = gdi.Rect{W: 800, H: 600}
	}
	if opts.Font.GlyphW <= 0 || opts.Font.GlyphH <= 0 {
		opts.Font = gdi.DefaultFont
	}
	if opts.Graphics == nil {
		opts.Graphics = gdi.NewSurface(opts.Screen.Right(), opts.Screen.Bottom(), opts.Font)
	}
	if opts.Keymap == nil {
		opts.Keymap = keymap.New(keymap.USLayout())
	}
	palette := osd.DefaultPalette()
	if opts.Palette != nil {
		palette = *opts.Palette
	}
	if opts.HotKey == 0 {
		opts.HotKey = keymap.KeyF12
	}
	if opts.DismissKey == 0 {
		opts.DismissKey = keymap.KeyInsert
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	w := &Wrapper{
		id:         opts.SessionID,
		screen:     opts.Screen,
		font:       opts.Font,
		painter:    gdi.NewPainter(opts.Graphics),
		km:         opts.Keymap,
		hotKey:     opts.HotKey,
		dismissKey: opts.DismissKey,
		background: opts.Background,
		targetInfo: opts.TargetInfo,
		name:       mod.NameNull,
		pack:       mod.Pack{Mod: mod.Null{}},
		swallowed:  bitset.New(512),
	}
	w.osd = osd.NewRenderer(w.painter, osd.RedrawFunc(w.redraw), osd.Options{
		Screen:    opts.Screen,
		Font:      opts.Font,
		Palette:   palette,
		Padding:   opts.Padding,
		TopMargin: opts.Padding,
	})
	w.graphics = w.osd.Filter(opts.Graphics)

	logger.Debug("session created",
		"session", w.id,
		"screen", opts.Screen,
		"hot_key", opts.HotKey,
		"dismiss_key", opts.DismissKey,
	)
	return w
}

// ReplaceModule installs pack as the active module under name. The old
// module and its transport are closed, the full viewport is cleared and
// redrawn by the new module, the overlay is repainted on top, and only then
// is the new module activated.
//
// A nil pack.Mod installs mod.Null. Errors from closing the old module are
// logged, not returned.
func (w *Wrapper) ReplaceModule(name mod.Name, pack mod.Pack) error {
	if w.replacing {
		return ErrReplaceInProgress
	}
	if pack.Mod == nil {
		pack.Mod = mod.Null{}
	}

	from := w.name
	w.swap(name, pack)

	logger.Info("module replaced",
		"session", w.id,
		"from", from,
		"to", name,
		"osd", pack.EnableOSD,
		"connected", pack.Connected,
	)

	pack.Mod.Activate()
	return nil
}

func (w *Wrapper) swap(name mod.Name, pack mod.Pack) {
	w.replacing = true
	defer func() { w.replacing = false }()

	s := w.painter.Begin()
	defer s.End()

	old := w.pack
	if err := old.Mod.Close(); err != nil {
		logger.Warn("closing module", "session", w.id, "module", w.name, "err", err)
	}
	// A transport handed over to the new pack stays open.
	if old.Transport != nil && old.Transport != pack.Transport {
		if err := old.Transport.Close(); err != nil {
			logger.Warn("closing transport", "session", w.id, "module", w.name, "err", err)
		}
	}

	w.name, w.pack = name, pack

	s.Graphics().FillRect(w.screen, w.background)
	w.redraw(w.screen)
	w.osd.RefreshIfVisible()
}

// redraw asks the active module to repaint r. The placeholder draws
// nothing, so the session paints its background there itself.
func (w *Wrapper) redraw(r gdi.Rect) {
	if _, ok := w.pack.Mod.(mod.Null); ok {
		w.graphics.FillRect(r, w.background)
		return
	}
	w.pack.Mod.InputInvalidate(r)
}

// Current returns the active module. It is never nil.
func (w *Wrapper) Current() mod.Mod { return w.pack.Mod }

func (w *Wrapper) Name() mod.Name           { return w.name }
func (w *Wrapper) Connected() bool          { return w.pack.Connected }
func (w *Wrapper) OSDEnabled() bool         { return w.pack.EnableOSD }
func (w *Wrapper) SessionID() string        { return w.id }
func (w *Wrapper) Screen() gdi.Rect         { return w.screen }
func (w *Wrapper) Keymap() *keymap.Keymap   { return w.km }
func (w *Wrapper) OSD() *osd.Renderer       { return w.osd }
func (w *Wrapper) TargetInfo() string       { return w.targetInfo }
func (w *Wrapper) Replacing() bool          { return w.replacing }
func (w *Wrapper) Painter() *gdi.Painter    { return w.painter }
func (w *Wrapper) Graphics() gdi.GraphicApi { return w.graphics }

// RemoteApp returns the window integration handle of the active module.
func (w *Wrapper) RemoteApp() (mod.RemoteApp, bool) {
	return w.pack.RemoteApp, w.pack.RemoteApp != nil
}

// Protocol returns the protocol control handle of the active module.
func (w *Wrapper) Protocol() (mod.ProtocolControl, bool) {
	return w.pack.Protocol, w.pack.Protocol != nil
}

// Env is what module factories get: modules draw through Graphics so the
// overlay stays intact.
func (w *Wrapper) Env() mod.Env {
	return mod.Env{Graphics: w.graphics, Screen: w.screen, Font: w.font}
}

func (w *Wrapper) checkDispatch(what string) {
	if w.replacing {
		panic(fmt.Sprintf("mux: %s during module replacement", what))
	}
}

// DispatchScancode forwards a key event to the active module.
func (w *Wrapper) DispatchScancode(flags keymap.KbdFlags, sc keymap.Scancode, eventTime uint32) {
	w.checkDispatch("scancode dispatch")
	w.pack.Mod.InputScancode(flags, sc, eventTime, w.km)
}

func (w *Wrapper) DispatchUnicode(flags keymap.KbdFlags, r rune, eventTime uint32) {
	w.checkDispatch("unicode dispatch")
	w.pack.Mod.InputUnicode(flags, r, eventTime)
}

func (w *Wrapper) DispatchMouse(flags mod.MouseFlags, x, y int) {
	w.checkDispatch("mouse dispatch")
	w.pack.Mod.InputMouse(flags, x, y)
}

func (w *Wrapper) DispatchSynchronize(eventTime uint32, locks keymap.Locks) {
	w.checkDispatch("synchronize dispatch")
	w.pack.Mod.InputSynchronize(eventTime, locks)
}

// DispatchInvalidate handles a client refresh request: the module redraws
// r and the overlay is repainted on top when it overlaps.
func (w *Wrapper) DispatchInvalidate(r gdi.Rect) {
	w.checkDispatch("invalidate dispatch")
	r = r.Intersect(w.screen)
	if r.IsEmpty() {
		return
	}
	s := w.painter.Begin()
	defer s.End()
	w.redraw(r)
	if !w.osd.Rect().Intersect(r).IsEmpty() {
		w.osd.RefreshIfVisible()
	}
}

// ShowOSD displays a dismissable message.
func (w *Wrapper) ShowOSD(text string, u osd.Urgency) {
	w.ShowMessage(osd.Message{Text: text, Urgency: u, Dismissable: true})
}

// ShowMessage displays m. Empty text hides the overlay. It may be called
// while a module redraws during replacement; the overlay paint still lands
// after the redraw.
func (w *Wrapper) ShowMessage(m osd.Message) {
	logger.Debug("show osd", "session", w.id, "urgency", m.Urgency, "dismissable", m.Dismissable)
	w.osd.ShowMessage(m)
}

func (w *Wrapper) HideOSD() {
	w.osd.Hide()
}

// SetTargetInfo sets the text the hot-key shows.
func (w *Wrapper) SetTargetInfo(text string) {
	w.targetInfo = text
}

// infoMessage is what the hot-key displays.
func (w *Wrapper) infoMessage() string {
	if w.targetInfo != "" {
		return w.targetInfo
	}
	return fmt.Sprintf("session %s\nmodule %s", w.id, w.name)
}
