package tape

import (
	"fmt"
	"strings"
	"time"

	"github.com/Gaurav-Gosain/modmux/internal/keymap"
)

// CommandType represents the type of a script command
type CommandType string

const (
	// Modules
	CommandType_Replace CommandType = "Replace"

	// Keyboard
	CommandType_Press   CommandType = "Press"
	CommandType_Release CommandType = "Release"
	CommandType_Key     CommandType = "Key"
	CommandType_Type    CommandType = "Type"
	CommandType_Sync    CommandType = "Sync"

	// Mouse
	CommandType_Click CommandType = "Click"
	CommandType_Move  CommandType = "Move"

	// On-screen display
	CommandType_Show    CommandType = "Show"
	CommandType_Hide    CommandType = "Hide"
	CommandType_Target  CommandType = "Target"
	CommandType_Refresh CommandType = "Refresh"

	// Synchronization
	CommandType_Sleep  CommandType = "Sleep"
	CommandType_Expect CommandType = "Expect"

	// Settings
	CommandType_Set    CommandType = "Set"
	CommandType_Output CommandType = "Output"
)

// Command represents a parsed script command
type Command struct {
	Type   CommandType
	Args   []string      // Command arguments
	Delay  time.Duration // Delay after this command
	Line   int           // Source line number
	Column int           // Source column number
	Raw    string        // Original raw command text
}

// String returns a string representation of the command
func (c *Command) String() string {
	if c.Raw != "" {
		return c.Raw
	}
	if len(c.Args) == 0 {
		return string(c.Type)
	}
	return fmt.Sprintf("%s %s", c.Type, strings.Join(c.Args, " "))
}

// IsCommand returns true if the command type is a valid command
func (ct CommandType) IsCommand() bool {
	switch ct {
	case CommandType_Replace,
		CommandType_Press, CommandType_Release, CommandType_Key, CommandType_Type, CommandType_Sync,
		CommandType_Click, CommandType_Move,
		CommandType_Show, CommandType_Hide, CommandType_Target, CommandType_Refresh,
		CommandType_Sleep, CommandType_Expect,
		CommandType_Set, CommandType_Output:
		return true
	}
	return false
}

// ParseDuration parses a duration string (e.g., "500ms", "1s")
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

// KeyCombo is a chord of keys pressed in order and released in reverse
// (e.g., LShift+A, LCtrl+LAlt+Delete).
type KeyCombo struct {
	Keys []keymap.KeyCode
}

// String returns a string representation of the key combo
func (kc *KeyCombo) String() string {
	names := make([]string, len(kc.Keys))
	for i, k := range kc.Keys {
		names[i] = k.String()
	}
	return strings.Join(names, "+")
}

// ParseKeyCombo parses a key combo string like "LShift+A" or "0x152".
// Ctrl, Alt and Shift name the left-hand modifier keys.
func ParseKeyCombo(s string) (*KeyCombo, error) {
	parts := splitKeyComboParts(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty key combo")
	}

	kc := &KeyCombo{}
	for _, part := range parts {
		code, err := parseComboKey(part)
		if err != nil {
			return nil, err
		}
		kc.Keys = append(kc.Keys, code)
	}
	return kc, nil
}

func parseComboKey(name string) (keymap.KeyCode, error) {
	switch name {
	case "Ctrl":
		return keymap.KeyLCtrl, nil
	case "Alt":
		return keymap.KeyLAlt, nil
	case "Shift":
		return keymap.KeyLShift, nil
	}
	return keymap.ParseKey(name)
}

// splitKeyComboParts splits "LCtrl+LAlt+B" into ["LCtrl", "LAlt", "B"]
func splitKeyComboParts(s string) []string {
	var parts []string
	for part := range strings.SplitSeq(s, "+") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
