package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/modmux/internal/config"
	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
	"github.com/Gaurav-Gosain/modmux/internal/pattern"
)

// =============================================================================
// Default Configuration Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config must validate, got %v", err)
	}

	if cfg.HotKey() != keymap.KeyF12 {
		t.Errorf("Expected default hot-key F12, got %s", cfg.HotKey())
	}

	if cfg.DismissKey() != keymap.KeyInsert {
		t.Errorf("Expected default dismiss key Insert, got %s", cfg.DismissKey())
	}

	if cfg.ScreenRect() != (gdi.Rect{W: 800, H: 600}) {
		t.Errorf("Expected 800x600 screen, got %s", cfg.ScreenRect())
	}

	if cfg.Font() != gdi.DefaultFont {
		t.Errorf("Expected default font, got %+v", cfg.Font())
	}

	if cfg.LogLevel() != log.InfoLevel {
		t.Errorf("Expected info level, got %s", cfg.LogLevel())
	}

	if cfg.Layout().Name != "en-US" {
		t.Errorf("Expected en-US layout, got %s", cfg.Layout().Name)
	}
}

// =============================================================================
// Parsing Tests
// =============================================================================

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[osd]
hot_key = "F11"

[session]
target_info = "admin@10.10.47.32"
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.HotKey() != keymap.KeyF11 {
		t.Errorf("Expected F11, got %s", cfg.HotKey())
	}
	if cfg.DismissKey() != keymap.KeyInsert {
		t.Errorf("Dismiss key should keep its default, got %s", cfg.DismissKey())
	}
	if cfg.Screen.Width != 800 {
		t.Errorf("Screen width should keep its default, got %d", cfg.Screen.Width)
	}
	if cfg.Session.TargetInfo != "admin@10.10.47.32" {
		t.Errorf("Unexpected target info %q", cfg.Session.TargetInfo)
	}
}

func TestParseHexKeyCodes(t *testing.T) {
	cfg, err := config.Parse([]byte("[osd]\nhot_key = \"0x58\"\ndismiss_key = \"0x152\"\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.HotKey() != keymap.KeyF12 || cfg.DismissKey() != keymap.KeyInsert {
		t.Errorf("Hex codes resolved to %s and %s", cfg.HotKey(), cfg.DismissKey())
	}
}

func TestParseRejectsBadTOML(t *testing.T) {
	if _, err := config.Parse([]byte("[osd\nhot_key =")); err == nil {
		t.Error("Expected a parse error")
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		want   string
	}{
		{"zero width", func(c *config.Config) { c.Screen.Width = 0 }, "screen: invalid size"},
		{"bad background", func(c *config.Config) { c.Screen.Background = "blue" }, "screen.background"},
		{"unknown hot-key", func(c *config.Config) { c.OSD.HotKey = "Hyper" }, "osd.hot_key"},
		{"empty dismiss key", func(c *config.Config) { c.OSD.DismissKey = "" }, "osd.dismiss_key"},
		{"same keys", func(c *config.Config) { c.OSD.DismissKey = "f12" }, "both F12"},
		{"glyph size", func(c *config.Config) { c.OSD.GlyphHeight = 0 }, "invalid glyph size"},
		{"padding", func(c *config.Config) { c.OSD.Padding = -1 }, "osd.padding"},
		{"layout", func(c *config.Config) { c.Session.Layout = "dvorak" }, "session.layout"},
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, err)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Screen.Height = -1
	cfg.OSD.HotKey = "nope"
	cfg.Log.Level = "nope"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected a validation error")
	}

	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("Expected joined errors, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", n, err)
	}
}

func TestParseLayout(t *testing.T) {
	for _, name := range []string{"", "en-US", "us", "EN-us"} {
		l, err := config.ParseLayout(name)
		if err != nil || l.Name != "en-US" {
			t.Errorf("ParseLayout(%q) = %v, %v", name, l, err)
		}
	}

	l, err := config.ParseLayout("null")
	if err != nil || l.Name != "null" {
		t.Errorf("ParseLayout(null) = %v, %v", l, err)
	}
}

// =============================================================================
// Capture Rule Tests
// =============================================================================

func TestCaptureSpec(t *testing.T) {
	c := config.CaptureConfig{
		Pattern: "$kbd:gpedit",
		Rules:   []string{"$ocr:Bloc-notes", "AT"},
	}

	want := pattern.Join("$kbd:gpedit", "$ocr:Bloc-notes", "AT")
	if got := c.Spec(); got != want {
		t.Errorf("Spec() = %q, want %q", got, want)
	}

	if got := (&config.CaptureConfig{}).Spec(); got != "" {
		t.Errorf("Empty capture config should yield an empty spec, got %q", got)
	}

	if !pattern.HasKeyboardTrigger(c.Spec()) || !pattern.HasOCRTrigger(c.Spec()) {
		t.Error("Expected both triggers")
	}
}

// =============================================================================
// Persistence Tests
// =============================================================================

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := config.DefaultConfig()
	cfg.OSD.Theme = "dracula"
	cfg.Session.TargetInfo = "test1@10.10.47.32"
	cfg.Capture.Pattern = pattern.Join("$kbd:kill", " AT ")
	cfg.Capture.Rules = []string{"$exact-content,kbd-ocr:cmd"}

	if err := config.Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "# modmux Configuration File") {
		t.Error("Expected the comment header")
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.OSD != cfg.OSD || loaded.Screen != cfg.Screen || loaded.Session != cfg.Session {
		t.Errorf("Round trip changed the config: %+v", loaded)
	}
	if loaded.Capture.Spec() != cfg.Capture.Spec() {
		t.Errorf("Capture spec changed: %q != %q", loaded.Capture.Spec(), cfg.Capture.Spec())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestLoadUserConfigCreatesDefault(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	path, err := config.GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	if filepath.Base(path) != "config.toml" || filepath.Base(filepath.Dir(path)) != "modmux" {
		t.Errorf("Unexpected config path %s", path)
	}

	cfg, err := config.LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig failed: %v", err)
	}
	if cfg.HotKey() != keymap.KeyF12 {
		t.Errorf("Expected defaults, got hot-key %s", cfg.HotKey())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected the default file to be written: %v", err)
	}
}

// =============================================================================
// Watch Tests
// =============================================================================

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.Save(config.DefaultConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		cfg *config.Config
		err error
	}
	results := make(chan result, 8)
	done := make(chan error, 1)
	go func() {
		done <- config.Watch(ctx, path, func(cfg *config.Config, err error) {
			results <- result{cfg, err}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[capture]\npattern = \"$kbd:gpedit\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor := func(what string, ok func(result) bool) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case r := <-results:
				if ok(r) {
					return
				}
			case <-deadline:
				t.Fatalf("Timed out waiting for %s", what)
			}
		}
	}

	waitFor("the new pattern", func(r result) bool {
		return r.err == nil && pattern.HasKeyboardTrigger(r.cfg.Capture.Spec())
	})

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"loud\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor("a validation error", func(r result) bool {
		return r.err != nil && strings.Contains(r.err.Error(), "log.level")
	})

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.toml")
	err := config.Watch(context.Background(), path, func(*config.Config, error) {})
	if err == nil || !strings.Contains(err.Error(), "watch directory") {
		t.Errorf("Expected a watch directory error, got %v", err)
	}
}

// =============================================================================
// Keybinding Listing Tests
// =============================================================================

func TestGetKeybindings(t *testing.T) {
	sections := config.GetKeybindings(nil)
	if len(sections) == 0 {
		t.Fatal("Expected keybinding sections")
	}
	if sections[0].Condition != config.ConditionOSD {
		t.Errorf("Expected the OSD section first, got %q", sections[0].Title)
	}
	if sections[0].Bindings[0].Key != "F12" {
		t.Errorf("Expected F12, got %q", sections[0].Bindings[0].Key)
	}

	cfg := config.DefaultConfig()
	cfg.OSD.HotKey = "0x57"
	cfg.OSD.DismissKey = "esc"
	sections = config.GetKeybindings(cfg)
	if sections[0].Bindings[0].Key != "F11" {
		t.Errorf("Expected hex code to display as F11, got %q", sections[0].Bindings[0].Key)
	}
	if sections[0].Bindings[2].Key != "Escape" {
		t.Errorf("Expected Escape, got %q", sections[0].Bindings[2].Key)
	}
}

// =============================================================================
// Benchmark Tests
// =============================================================================

func BenchmarkParse(b *testing.B) {
	data := []byte("[osd]\nhot_key = \"F11\"\n[capture]\nrules = [\"$kbd:gpedit\", \"AT\"]\n")
	for b.Loop() {
		_, _ = config.Parse(data)
	}
}

func BenchmarkValidate(b *testing.B) {
	cfg := config.DefaultConfig()
	for b.Loop() {
		_ = cfg.Validate()
	}
}
