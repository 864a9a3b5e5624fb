package keymap

import "unicode"

// KeyLayout maps scancodes to characters for the unshifted and shifted
// levels of a keyboard layout.
type KeyLayout struct {
	Name   string
	normal map[Scancode]rune
	shift  map[Scancode]rune
}

// NullLayout decodes no characters.
func NullLayout() *KeyLayout {
	return &KeyLayout{Name: "null"}
}

var usNormal = buildLevel(false)
var usShift = buildLevel(true)

func buildLevel(shifted bool) map[Scancode]rune {
	rows := []struct {
		start          Scancode
		normal, shifts string
	}{
		{0x02, "1234567890-=", "!@#$%^&*()_+"},
		{0x10, "qwertyuiop[]", "QWERTYUIOP{}"},
		{0x1E, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
		{0x2B, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
	}
	m := map[Scancode]rune{
		Scancode(KeySpace): ' ',
		Scancode(KeyEnter): '\r',
		Scancode(KeyTab):   '\t',
	}
	for _, row := range rows {
		chars := row.normal
		if shifted {
			chars = row.shifts
		}
		for i, r := range chars {
			m[row.start+Scancode(i)] = r
		}
	}
	return m
}

// USLayout is the US QWERTY layout (printable block only).
func USLayout() *KeyLayout {
	return &KeyLayout{Name: "en-US", normal: usNormal, shift: usShift}
}

func (l *KeyLayout) decode(sc Scancode, shift, caps bool) rune {
	if l.normal == nil {
		return 0
	}
	r := l.normal[sc]
	if unicode.IsLetter(r) {
		// Caps lock inverts shift for letters only.
		shift = shift != caps
	}
	if shift {
		r = l.shift[sc]
	}
	return r
}

// Decode returns the character sc produces at the given shift level.
func (l *KeyLayout) Decode(sc Scancode, shift bool) rune {
	return l.decode(sc, shift, false)
}

// Find returns the scancode and shift level producing r.
func (l *KeyLayout) Find(r rune) (sc Scancode, shift bool, ok bool) {
	if r == '\n' {
		r = '\r'
	}
	for code, c := range l.normal {
		if c == r {
			return code, false, true
		}
	}
	for code, c := range l.shift {
		if c == r {
			return code, true, true
		}
	}
	return 0, false, false
}
