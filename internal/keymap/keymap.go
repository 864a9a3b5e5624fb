// Package keymap tracks keyboard modifier and lock state from RDP-style
// scancode events.
package keymap

import (
	"github.com/bits-and-blooms/bitset"
)

// KbdFlags are the keyboard event flags carried with every scancode.
type KbdFlags uint16

const (
	Extended  KbdFlags = 0x0100
	Extended1 KbdFlags = 0x0200
	Down      KbdFlags = 0x4000
	Release   KbdFlags = 0x8000
)

// IsRelease reports whether the flags describe a key-up transition.
func (f KbdFlags) IsRelease() bool {
	return f&Release != 0
}

// Scancode is a hardware key identifier, without the extended bit.
type Scancode uint8

// KeyCode is a scancode qualified by its extended bit (bit 8).
type KeyCode uint16

const extendedBit KeyCode = 0x100

// MakeKeyCode combines flags and scancode into a KeyCode.
func MakeKeyCode(flags KbdFlags, sc Scancode) KeyCode {
	kc := KeyCode(sc)
	if flags&Extended != 0 {
		kc |= extendedBit
	}
	return kc
}

// Scancode returns the raw scancode.
func (k KeyCode) Scancode() Scancode {
	return Scancode(k & 0xff)
}

// Extended reports whether the code carries the extended bit.
func (k KeyCode) Extended() bool {
	return k&extendedBit != 0
}

// Flags returns the flags needed to send this code as a key press.
func (k KeyCode) Flags() KbdFlags {
	if k.Extended() {
		return Extended
	}
	return 0
}

// Mods is the set of modifier keys currently held.
type Mods uint16

const (
	LShift Mods = 1 << iota
	RShift
	LCtrl
	RCtrl
	LAlt
	RAlt
	LWin
	RWin
)

func (m Mods) Shift() bool { return m&(LShift|RShift) != 0 }
func (m Mods) Ctrl() bool  { return m&(LCtrl|RCtrl) != 0 }
func (m Mods) Alt() bool   { return m&LAlt != 0 }
func (m Mods) AltGr() bool { return m&RAlt != 0 }
func (m Mods) Win() bool   { return m&(LWin|RWin) != 0 }

// Locks uses the bit values of the RDP synchronize event.
type Locks uint8

const (
	ScrollLock Locks = 0x01
	NumLock    Locks = 0x02
	CapsLock   Locks = 0x04
	KanaLock   Locks = 0x08
)

// KeyEvent is the decoded form of the last scancode event.
type KeyEvent struct {
	Code    KeyCode
	Release bool
	// Rune is the character produced by the layout, 0 if none.
	Rune rune
}

var modKeys = map[KeyCode]Mods{
	KeyLShift: LShift,
	KeyRShift: RShift,
	KeyLCtrl:  LCtrl,
	KeyRCtrl:  RCtrl,
	KeyLAlt:   LAlt,
	KeyRAlt:   RAlt,
	KeyLWin:   LWin,
	KeyRWin:   RWin,
}

var lockKeys = map[KeyCode]Locks{
	KeyCapsLock:   CapsLock,
	KeyNumLock:    NumLock,
	KeyScrollLock: ScrollLock,
}

// Keymap accumulates key state. Only the input router mutates it; modules
// receive it read-only alongside each forwarded event.
type Keymap struct {
	layout *KeyLayout
	down   *bitset.BitSet
	mods   Mods
	locks  Locks
	last   KeyEvent
}

// New creates a keymap decoding characters with layout. A nil layout
// behaves like NullLayout.
func New(layout *KeyLayout) *Keymap {
	if layout == nil {
		layout = NullLayout()
	}
	return &Keymap{
		layout: layout,
		down:   bitset.New(512),
	}
}

// Event applies one key transition and returns its decoded form.
// Codes the keymap does not know only update the key-down set.
func (k *Keymap) Event(flags KbdFlags, sc Scancode) KeyEvent {
	code := MakeKeyCode(flags, sc)
	release := flags.IsRelease()

	if release {
		k.down.Clear(uint(code))
	} else {
		// Auto-repeat arrives as repeated presses; locks toggle on the first only.
		if lock, ok := lockKeys[code]; ok && !k.down.Test(uint(code)) {
			k.locks ^= lock
		}
		k.down.Set(uint(code))
	}

	if m, ok := modKeys[code]; ok {
		if release {
			k.mods &^= m
		} else {
			k.mods |= m
		}
	}

	ev := KeyEvent{Code: code, Release: release}
	if !release && !k.mods.Ctrl() && !k.mods.Alt() && !code.Extended() {
		ev.Rune = k.layout.decode(sc, k.mods.Shift(), k.locks&CapsLock != 0)
	}
	k.last = ev
	return ev
}

// Synchronize replaces the lock state, as sent by a client on focus changes.
func (k *Keymap) Synchronize(locks Locks) {
	k.locks = locks
}

// IsDown reports whether code is currently held.
func (k *Keymap) IsDown(code KeyCode) bool {
	return k.down.Test(uint(code))
}

// DownCount returns the number of keys currently held.
func (k *Keymap) DownCount() int {
	return int(k.down.Count())
}

func (k *Keymap) Mods() Mods         { return k.mods }
func (k *Keymap) Locks() Locks       { return k.locks }
func (k *Keymap) Last() KeyEvent     { return k.last }
func (k *Keymap) Layout() *KeyLayout { return k.layout }

// SetLayout swaps the decoding layout without touching key state.
func (k *Keymap) SetLayout(l *KeyLayout) {
	if l == nil {
		l = NullLayout()
	}
	k.layout = l
}

// Reset releases every key and clears modifiers, keeping locks.
func (k *Keymap) Reset() {
	k.down.ClearAll()
	k.mods = 0
	k.last = KeyEvent{}
}
