package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"golang.org/x/term"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
	"github.com/Gaurav-Gosain/modmux/internal/mod"
	"github.com/Gaurav-Gosain/modmux/internal/mux"
	"github.com/Gaurav-Gosain/modmux/internal/tape"
	"github.com/Gaurav-Gosain/modmux/internal/theme"
)

type replayOptions struct {
	Preview  bool
	Cols     int
	Realtime bool
	Quiet    bool
}

func runReplay(ctx context.Context, w io.Writer, scriptPath string, opts replayOptions) error {
	content, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	cmds, errs := tape.ParseFile(string(content))
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", scriptPath, e)
		}
		return fmt.Errorf("%d parse errors in %s", len(errs), scriptPath)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if err := theme.Initialize(cfg.OSD.Theme); err != nil {
		return fmt.Errorf("failed to initialize theme: %w", err)
	}

	surf := gdi.NewSurface(cfg.Screen.Width, cfg.Screen.Height, cfg.Font())
	session := mux.New(mux.Options{
		Screen:     surf.Bounds(),
		Graphics:   surf,
		Font:       cfg.Font(),
		Keymap:     keymap.New(cfg.Layout()),
		Padding:    cfg.OSD.Padding,
		HotKey:     cfg.HotKey(),
		DismissKey: cfg.DismissKey(),
		Background: cfg.Background(),
		TargetInfo: cfg.Session.TargetInfo,
	})
	logger.Debug("session created", "id", session.SessionID(), "script", scriptPath, "commands", len(cmds))

	player := tape.NewPlayer(cmds, session, mod.NewRegistry())
	player.SetRealtime(opts.Realtime)
	if !opts.Quiet {
		player.SetTrace(w)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := player.Run(ctx)
	printSummary(w, player, surf)

	if path := player.OutputPath(); path != "" {
		if err := writeSnapshot(path, session, surf, opts.Cols); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", path)
	}

	if opts.Preview {
		writePreview(w, surf, opts.Cols)
	}
	return runErr
}

func printSummary(w io.Writer, player *tape.Player, surf *gdi.Surface) {
	session := player.Session()
	label := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, label.Render("Session"))
	fmt.Fprintf(w, "  ID: %s\n", session.SessionID())
	fmt.Fprintf(w, "  Module: %s\n", session.Name())
	fmt.Fprintf(w, "  Commands: %d/%d\n", player.CurrentIndex(), player.TotalCommands())
	if session.OSD().Visible() {
		fmt.Fprintf(w, "  OSD: %q (%s)\n", session.OSD().Message().Text, session.OSD().Message().Urgency)
	} else {
		fmt.Fprintln(w, "  OSD: hidden")
	}
	fmt.Fprintf(w, "  Screen: %s\n", surf.Sum())
}

// previewRows keeps the surface aspect ratio for cells twice as tall as wide.
func previewRows(surf *gdi.Surface, cols int) int {
	b := surf.Bounds()
	if b.W == 0 {
		return 0
	}
	return max(1, cols*b.H/b.W/2)
}

// writePreview prints the surface in color on a terminal, downsampled to
// what the terminal supports, and as shaded text otherwise.
func writePreview(w io.Writer, surf *gdi.Surface, cols int) {
	color := false
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		color = true
		w = colorprofile.NewWriter(f, os.Environ())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, surf.Preview(cols, previewRows(surf, cols), color))
}

// writeSnapshot saves the session state and a plain preview to path.
func writeSnapshot(path string, session *mux.Wrapper, surf *gdi.Surface, cols int) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module: %s\n", session.Name())
	if session.OSD().Visible() {
		fmt.Fprintf(&sb, "osd: %q\n", session.OSD().Message().Text)
	} else {
		sb.WriteString("osd: hidden\n")
	}
	fmt.Fprintf(&sb, "screen: %s\n\n", surf.Sum())
	sb.WriteString(surf.Preview(cols, previewRows(surf, cols), false))
	sb.WriteString("\n")

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
