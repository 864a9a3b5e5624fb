package config

import (
	"fmt"

	"github.com/Gaurav-Gosain/modmux/internal/keymap"
)

// Keybinding represents a single intercepted input
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection represents a section of related keybindings
type KeybindingSection struct {
	Title     string
	Condition string // Empty for always, "osd" when the active module enables the OSD
	Bindings  []Keybinding
}

// Conditions a section may carry.
const (
	ConditionOSD = "osd"
)

// GetKeybindings returns the inputs a session intercepts.
// If cfg is nil, the built-in keys are described.
func GetKeybindings(cfg *Config) []KeybindingSection {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	hot := displayKey(cfg.OSD.HotKey)
	dismiss := displayKey(cfg.OSD.DismissKey)

	return []KeybindingSection{
		{
			Title:     "ON-SCREEN DISPLAY",
			Condition: ConditionOSD,
			Bindings: []Keybinding{
				{hot, "Toggle session info"},
				{fmt.Sprintf("%s release", hot), "Swallowed after an intercepted press"},
				{dismiss, "Dismiss message (only while one is shown)"},
			},
		},
		{
			Title: "MOUSE",
			Bindings: []Keybinding{
				{"Left click on overlay", "Dismiss message"},
				{"Other buttons, motion", "Forwarded to the module"},
			},
		},
		{
			Title: "PASS-THROUGH",
			Bindings: []Keybinding{
				{"Any other key", "Forwarded unmodified"},
				{hot, "Forwarded when the module disables the OSD"},
			},
		},
	}
}

// displayKey normalizes a configured key name, e.g. "0x58" to "F12".
func displayKey(name string) string {
	if k, err := keymap.ParseKey(name); err == nil {
		return k.String()
	}
	return name
}
