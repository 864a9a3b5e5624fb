// Package config loads the modmux configuration file.
//
// The session core never reads this package. Callers translate a Config
// into explicit options for mux.New and the capture classifier.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
	"github.com/Gaurav-Gosain/modmux/internal/pattern"
)

// Config is the on-disk configuration.
type Config struct {
	Screen  ScreenConfig  `toml:"screen"`
	OSD     OSDConfig     `toml:"osd"`
	Session SessionConfig `toml:"session"`
	Capture CaptureConfig `toml:"capture"`
	Log     LogConfig     `toml:"log"`
}

// ScreenConfig describes the client viewport.
type ScreenConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background string `toml:"background"`
}

// OSDConfig controls the on-screen display.
type OSDConfig struct {
	HotKey      string `toml:"hot_key"`
	DismissKey  string `toml:"dismiss_key"`
	Theme       string `toml:"theme"`
	GlyphWidth  int    `toml:"glyph_width"`
	GlyphHeight int    `toml:"glyph_height"`
	Padding     int    `toml:"padding"`
}

// SessionConfig carries per-session values.
type SessionConfig struct {
	// TargetInfo is what the hot-key shows, e.g. "user@host".
	TargetInfo string `toml:"target_info"`
	// Layout is the keyboard layout: "en-US" or "null".
	Layout string `toml:"layout"`
}

// CaptureConfig holds the compliance capture rules.
type CaptureConfig struct {
	// Pattern is a raw rule string with \x01 separated segments.
	Pattern string `toml:"pattern"`
	// Rules are joined after Pattern, one segment each.
	Rules []string `toml:"rules"`
}

// LogConfig sets log verbosity.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Screen: ScreenConfig{
			Width:      800,
			Height:     600,
			Background: "#000000",
		},
		OSD: OSDConfig{
			HotKey:      keymap.KeyF12.String(),
			DismissKey:  keymap.KeyInsert.String(),
			GlyphWidth:  gdi.DefaultFont.GlyphW,
			GlyphHeight: gdi.DefaultFont.GlyphH,
			Padding:     4,
		},
		Session: SessionConfig{
			Layout: "en-US",
		},
		Capture: CaptureConfig{
			Rules: []string{},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetConfigPath returns the path of the user config file.
func GetConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("modmux", "config.toml"))
}

// LoadUserConfig loads the user config file, writing the defaults there
// first if it does not exist yet.
func LoadUserConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("could not determine config path: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := Save(cfg, path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Load reads and validates the config at path. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Header is written above the TOML body by Save.
func Header(path string) string {
	var sb strings.Builder
	sb.WriteString("# modmux Configuration File\n")
	sb.WriteString("# [osd] keys take names such as F12, Insert or hex codes like 0x152\n")
	sb.WriteString("# [capture] rules are segments like \"$kbd:gpedit\" or \"$ocr:Bloc-notes\"\n")
	sb.WriteString("#\n")
	sb.WriteString("# Configuration location: " + path + "\n\n")
	return sb.String()
}

// Save writes cfg to path with a comment header, creating parent
// directories as needed.
func Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(Header(path)), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen: invalid size %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if _, err := gdi.ParseColor(c.Screen.Background); err != nil {
		errs = append(errs, fmt.Errorf("screen.background: %w", err))
	}

	hot, hotErr := keymap.ParseKey(c.OSD.HotKey)
	if hotErr != nil {
		errs = append(errs, fmt.Errorf("osd.hot_key: %w", hotErr))
	}
	dismiss, dismissErr := keymap.ParseKey(c.OSD.DismissKey)
	if dismissErr != nil {
		errs = append(errs, fmt.Errorf("osd.dismiss_key: %w", dismissErr))
	}
	if hotErr == nil && dismissErr == nil && hot == dismiss {
		errs = append(errs, fmt.Errorf("osd: hot_key and dismiss_key are both %s", hot))
	}
	if c.OSD.GlyphWidth <= 0 || c.OSD.GlyphHeight <= 0 {
		errs = append(errs, fmt.Errorf("osd: invalid glyph size %dx%d", c.OSD.GlyphWidth, c.OSD.GlyphHeight))
	}
	if c.OSD.Padding < 0 {
		errs = append(errs, fmt.Errorf("osd.padding: must not be negative, got %d", c.OSD.Padding))
	}

	if _, err := ParseLayout(c.Session.Layout); err != nil {
		errs = append(errs, fmt.Errorf("session.layout: %w", err))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// HotKey returns the parsed OSD hot-key. Call after Validate.
func (c *Config) HotKey() keymap.KeyCode {
	k, _ := keymap.ParseKey(c.OSD.HotKey)
	return k
}

// DismissKey returns the parsed dismiss key. Call after Validate.
func (c *Config) DismissKey() keymap.KeyCode {
	k, _ := keymap.ParseKey(c.OSD.DismissKey)
	return k
}

// Background returns the parsed viewport background.
func (c *Config) Background() gdi.Color {
	col, _ := gdi.ParseColor(c.Screen.Background)
	return col
}

// Font returns the OSD glyph metrics.
func (c *Config) Font() gdi.Font {
	return gdi.Font{GlyphW: c.OSD.GlyphWidth, GlyphH: c.OSD.GlyphHeight}
}

// ScreenRect returns the viewport rectangle.
func (c *Config) ScreenRect() gdi.Rect {
	return gdi.Rect{W: c.Screen.Width, H: c.Screen.Height}
}

// LogLevel returns the configured level, falling back to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Layout returns the configured keyboard layout.
func (c *Config) Layout() *keymap.KeyLayout {
	l, err := ParseLayout(c.Session.Layout)
	if err != nil {
		return keymap.USLayout()
	}
	return l
}

// Spec returns the full capture rule string.
func (c *CaptureConfig) Spec() string {
	var parts []string
	if c.Pattern != "" {
		parts = append(parts, c.Pattern)
	}
	parts = append(parts, c.Rules...)
	return pattern.Join(parts...)
}

// ParseLayout resolves a layout name. Empty selects en-US.
func ParseLayout(name string) (*keymap.KeyLayout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "en-us", "us":
		return keymap.USLayout(), nil
	case "null", "none":
		return keymap.NullLayout(), nil
	}
	return nil, fmt.Errorf("unknown layout %q", name)
}
