package keymap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Well-known key codes. Extended keys carry bit 8.
const (
	KeyEscape     KeyCode = 0x01
	KeyBackspace  KeyCode = 0x0E
	KeyTab        KeyCode = 0x0F
	KeyEnter      KeyCode = 0x1C
	KeyLCtrl      KeyCode = 0x1D
	KeyLShift     KeyCode = 0x2A
	KeyRShift     KeyCode = 0x36
	KeyLAlt       KeyCode = 0x38
	KeySpace      KeyCode = 0x39
	KeyCapsLock   KeyCode = 0x3A
	KeyF1         KeyCode = 0x3B
	KeyF2         KeyCode = 0x3C
	KeyF3         KeyCode = 0x3D
	KeyF4         KeyCode = 0x3E
	KeyF5         KeyCode = 0x3F
	KeyF6         KeyCode = 0x40
	KeyF7         KeyCode = 0x41
	KeyF8         KeyCode = 0x42
	KeyF9         KeyCode = 0x43
	KeyF10        KeyCode = 0x44
	KeyNumLock    KeyCode = 0x45
	KeyScrollLock KeyCode = 0x46
	KeyF11        KeyCode = 0x57
	KeyF12        KeyCode = 0x58

	KeyRCtrl  KeyCode = 0x11D
	KeyRAlt   KeyCode = 0x138
	KeyHome   KeyCode = 0x147
	KeyUp     KeyCode = 0x148
	KeyPgUp   KeyCode = 0x149
	KeyLeft   KeyCode = 0x14B
	KeyRight  KeyCode = 0x14D
	KeyEnd    KeyCode = 0x14F
	KeyDown   KeyCode = 0x150
	KeyPgDn   KeyCode = 0x151
	KeyInsert KeyCode = 0x152
	KeyDelete KeyCode = 0x153
	KeyLWin   KeyCode = 0x15B
	KeyRWin   KeyCode = 0x15C
)

var keyNames = map[KeyCode]string{
	KeyEscape:     "Escape",
	KeyBackspace:  "Backspace",
	KeyTab:        "Tab",
	KeyEnter:      "Enter",
	KeyLCtrl:      "LCtrl",
	KeyLShift:     "LShift",
	KeyRShift:     "RShift",
	KeyLAlt:       "LAlt",
	KeySpace:      "Space",
	KeyCapsLock:   "CapsLock",
	KeyF1:         "F1",
	KeyF2:         "F2",
	KeyF3:         "F3",
	KeyF4:         "F4",
	KeyF5:         "F5",
	KeyF6:         "F6",
	KeyF7:         "F7",
	KeyF8:         "F8",
	KeyF9:         "F9",
	KeyF10:        "F10",
	KeyNumLock:    "NumLock",
	KeyScrollLock: "ScrollLock",
	KeyF11:        "F11",
	KeyF12:        "F12",
	KeyRCtrl:      "RCtrl",
	KeyRAlt:       "RAlt",
	KeyHome:       "Home",
	KeyUp:         "Up",
	KeyPgUp:       "PgUp",
	KeyLeft:       "Left",
	KeyRight:      "Right",
	KeyEnd:        "End",
	KeyDown:       "Down",
	KeyPgDn:       "PgDn",
	KeyInsert:     "Insert",
	KeyDelete:     "Delete",
	KeyLWin:       "LWin",
	KeyRWin:       "RWin",
}

var nameKeys = map[string]KeyCode{}

func init() {
	for code, name := range keyNames {
		nameKeys[strings.ToLower(name)] = code
	}
	// Letters and digits come from the US layout so names match key caps.
	for sc, r := range usNormal {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			name := strings.ToUpper(string(r))
			keyNames[KeyCode(sc)] = name
			nameKeys[strings.ToLower(name)] = KeyCode(sc)
		}
	}
	nameKeys["esc"] = KeyEscape
	nameKeys["return"] = KeyEnter
	nameKeys["ins"] = KeyInsert
	nameKeys["del"] = KeyDelete
}

// String returns the key name, or its hex code when unnamed.
func (k KeyCode) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("0x%03x", uint16(k))
}

// ParseKey resolves a key name (case-insensitive) or a hex code such as
// "0x152" into a KeyCode.
func ParseKey(name string) (KeyCode, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if code, ok := nameKeys[strings.ToLower(name)]; ok {
		return code, nil
	}
	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		v, err := strconv.ParseUint(name[2:], 16, 16)
		if err != nil || v > 0x1ff {
			return 0, fmt.Errorf("invalid key code %q", name)
		}
		return KeyCode(v), nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// Names returns every named key, sorted by code.
func Names() []KeyCode {
	codes := make([]KeyCode, 0, len(keyNames))
	for code := range keyNames {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
