// Package mod defines the capability set of a backend session module and
// the pack a module is installed with.
package mod

import (
	"io"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
)

// MouseFlags are RDP pointer event flags.
type MouseFlags uint16

const (
	MouseWheel   MouseFlags = 0x0200
	MouseMove    MouseFlags = 0x0800
	MouseButton1 MouseFlags = 0x1000
	MouseButton2 MouseFlags = 0x2000
	MouseButton3 MouseFlags = 0x4000
	MouseDown    MouseFlags = 0x8000
)

// Buttons returns the button bits of f.
func (f MouseFlags) Buttons() MouseFlags {
	return f & (MouseButton1 | MouseButton2 | MouseButton3)
}

// IsPress reports whether f is a button press.
func (f MouseFlags) IsPress() bool {
	return f.Buttons() != 0 && f&MouseDown != 0
}

// IsRelease reports whether f is a button release.
func (f MouseFlags) IsRelease() bool {
	return f.Buttons() != 0 && f&MouseDown == 0
}

// InputHandler receives input forwarded by the session.
type InputHandler interface {
	// InputScancode delivers one key transition. km is the session keymap
	// after the event was applied; modules must not mutate it.
	InputScancode(flags keymap.KbdFlags, sc keymap.Scancode, eventTime uint32, km *keymap.Keymap)
	InputUnicode(flags keymap.KbdFlags, r rune, eventTime uint32)
	InputMouse(flags MouseFlags, x, y int)
	InputSynchronize(eventTime uint32, locks keymap.Locks)
	// InputInvalidate asks the module to redraw r.
	InputInvalidate(r gdi.Rect)
}

// Lifecycle signals sent by the session.
type Lifecycle interface {
	// Activate is called once the module is installed and the screen has
	// been redrawn.
	Activate()
	Close() error
}

// Mod is what every module implements.
type Mod interface {
	InputHandler
	Lifecycle
}

// RemoteApp is the optional window integration capability.
type RemoteApp interface {
	ExecuteRemoteApp(program string, args []string) error
	CloseRemoteApps()
}

// ProtocolControl is the optional protocol-level control capability.
type ProtocolControl interface {
	SendChannelData(channel string, data []byte) error
	Disconnect()
}

// Pack is what a module is installed with. A nil RemoteApp or Protocol
// means the capability is absent.
type Pack struct {
	Mod       Mod
	RemoteApp RemoteApp
	Protocol  ProtocolControl
	// EnableOSD lets the session intercept overlay hot-keys for this module.
	EnableOSD bool
	Connected bool
	// Transport is closed together with the module, if set.
	Transport io.Closer
}

// Null does nothing. It is installed before any other module so the
// session always has one.
type Null struct{}

func (Null) InputScancode(keymap.KbdFlags, keymap.Scancode, uint32, *keymap.Keymap) {}
func (Null) InputUnicode(keymap.KbdFlags, rune, uint32)                            {}
func (Null) InputMouse(MouseFlags, int, int)                                       {}
func (Null) InputSynchronize(uint32, keymap.Locks)                                 {}
func (Null) InputInvalidate(gdi.Rect)                                              {}
func (Null) Activate()                                                             {}
func (Null) Close() error                                                          { return nil }
