package tape

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
	"github.com/Gaurav-Gosain/modmux/internal/mod"
	"github.com/Gaurav-Gosain/modmux/internal/mux"
	"github.com/Gaurav-Gosain/modmux/internal/osd"
)

// Package-level logger
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tape",
	})
}

// SetLogLevel sets the logging level for the tape package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

var lockNames = map[string]keymap.Locks{
	"caps":   keymap.CapsLock,
	"num":    keymap.NumLock,
	"scroll": keymap.ScrollLock,
	"kana":   keymap.KanaLock,
}

var buttonNames = map[string]mod.MouseFlags{
	"left":   mod.MouseButton1,
	"right":  mod.MouseButton2,
	"middle": mod.MouseButton3,
}

// ExpectationError reports a failed Expect command.
type ExpectationError struct {
	Line    int
	Command string
	Got     string
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("line %d: %s: got %s", e.Line, e.Command, e.Got)
}

// Player drives a session with a parsed script.
//
// Event times come from a virtual clock that advances by one millisecond
// per input event and by the full length of every Sleep or @delay. Real
// waiting only happens when realtime playback is enabled.
type Player struct {
	commands []Command
	index    int  // Current command index
	finished bool // Whether all commands have been played

	session     *mux.Wrapper
	registry    *mod.Registry
	clock       uint32
	realtime    bool
	typingSpeed time.Duration
	output      string
	trace       io.Writer
}

// NewPlayer creates a player for commands against session. Modules named
// by Replace are created from registry.
func NewPlayer(commands []Command, session *mux.Wrapper, registry *mod.Registry) *Player {
	if registry == nil {
		registry = mod.NewRegistry()
	}
	return &Player{
		commands: commands,
		session:  session,
		registry: registry,
		trace:    io.Discard,
		finished: len(commands) == 0,
	}
}

// SetRealtime makes Sleep and @delay wait on the wall clock.
func (p *Player) SetRealtime(realtime bool) {
	p.realtime = realtime
}

// SetTrace sets where executed commands are reported.
func (p *Player) SetTrace(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	p.trace = w
}

// Session returns the driven session.
func (p *Player) Session() *mux.Wrapper {
	return p.session
}

// OutputPath returns the path set by the last Output command.
func (p *Player) OutputPath() string {
	return p.output
}

// Clock returns the current virtual event time in milliseconds.
func (p *Player) Clock() uint32 {
	return p.clock
}

// NextCommand returns the next command to execute without advancing the player state
func (p *Player) NextCommand() *Command {
	if p.index >= len(p.commands) {
		return nil
	}
	return &p.commands[p.index]
}

// IsFinished returns true if all commands have been executed
func (p *Player) IsFinished() bool {
	return p.finished
}

// CurrentIndex returns the current command index
func (p *Player) CurrentIndex() int {
	return p.index
}

// TotalCommands returns the total number of commands
func (p *Player) TotalCommands() int {
	return len(p.commands)
}

// Progress returns a value between 0 and 100 representing playback progress
func (p *Player) Progress() int {
	if len(p.commands) == 0 {
		return 100
	}
	return (p.index * 100) / len(p.commands)
}

// CommandStr returns a string representation of the current command for display
func (p *Player) CommandStr() string {
	if p.index >= len(p.commands) {
		return "Script finished"
	}
	cmd := p.commands[p.index]
	return cmd.String()
}

// Run executes the remaining commands in order. It stops at the first
// failing command.
func (p *Player) Run(ctx context.Context) error {
	for !p.finished {
		if err := p.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step executes the next command and advances.
func (p *Player) Step(ctx context.Context) error {
	cmd := p.NextCommand()
	if cmd == nil {
		p.finished = true
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fmt.Fprintf(p.trace, "[%d/%d] %s\n", p.index+1, len(p.commands), cmd.String())
	logger.Debug("executing", "line", cmd.Line, "command", cmd.String())

	if err := p.execute(ctx, cmd); err != nil {
		return err
	}
	if err := p.wait(ctx, cmd.Delay); err != nil {
		return err
	}

	p.index++
	if p.index >= len(p.commands) {
		p.finished = true
	}
	return nil
}

func (p *Player) execute(ctx context.Context, cmd *Command) error {
	w := p.session

	switch cmd.Type {
	case CommandType_Replace:
		name := mod.Name(cmd.Args[0])
		pack, err := p.registry.New(name, w.Env(), cmd.Args[1:])
		if err != nil {
			return fmt.Errorf("line %d: %w", cmd.Line, err)
		}
		if err := w.ReplaceModule(name, pack); err != nil {
			return fmt.Errorf("line %d: %w", cmd.Line, err)
		}

	case CommandType_Press, CommandType_Release:
		kc, err := ParseKeyCombo(cmd.Args[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", cmd.Line, err)
		}
		p.key(kc.Keys[0], cmd.Type == CommandType_Release)

	case CommandType_Key:
		kc, err := ParseKeyCombo(cmd.Args[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", cmd.Line, err)
		}
		count := 1
		if len(cmd.Args) > 1 {
			count, _ = strconv.Atoi(cmd.Args[1])
		}
		for range count {
			p.chord(kc.Keys...)
		}

	case CommandType_Type:
		for i, r := range []rune(cmd.Args[0]) {
			if i > 0 {
				if err := p.wait(ctx, p.typingSpeed); err != nil {
					return err
				}
			}
			p.typeRune(r)
		}

	case CommandType_Sync:
		var locks keymap.Locks
		for _, name := range cmd.Args {
			locks |= lockNames[name]
		}
		w.OnSynchronize(p.tick(), locks)

	case CommandType_Click:
		x, y := atoi(cmd.Args[0]), atoi(cmd.Args[1])
		button := mod.MouseButton1
		if len(cmd.Args) > 2 {
			button = buttonNames[cmd.Args[2]]
		}
		w.OnMouse(button|mod.MouseDown, x, y)
		w.OnMouse(button, x, y)

	case CommandType_Move:
		w.OnMouse(mod.MouseMove, atoi(cmd.Args[0]), atoi(cmd.Args[1]))

	case CommandType_Show:
		u, _ := osd.ParseUrgency(cmd.Args[0])
		sticky := len(cmd.Args) > 2 && cmd.Args[2] == "sticky"
		w.ShowMessage(osd.Message{Text: cmd.Args[1], Urgency: u, Dismissable: !sticky})

	case CommandType_Hide:
		w.HideOSD()

	case CommandType_Target:
		w.SetTargetInfo(cmd.Args[0])

	case CommandType_Refresh:
		r := w.Screen()
		if len(cmd.Args) == 4 {
			r = gdi.Rect{X: atoi(cmd.Args[0]), Y: atoi(cmd.Args[1]), W: atoi(cmd.Args[2]), H: atoi(cmd.Args[3])}
		}
		w.OnInvalidate(r)

	case CommandType_Sleep:
		// The delay is applied after execution like any @delay.

	case CommandType_Expect:
		return p.expect(cmd)

	case CommandType_Set:
		if cmd.Args[0] == SettingTypingSpeed {
			p.typingSpeed, _ = ParseDuration(cmd.Args[1])
		}

	case CommandType_Output:
		p.output = cmd.Args[0]

	default:
		return fmt.Errorf("line %d: unsupported command %s", cmd.Line, cmd.Type)
	}
	return nil
}

func (p *Player) expect(cmd *Command) error {
	w := p.session
	fail := func(got string) error {
		return &ExpectationError{Line: cmd.Line, Command: cmd.String(), Got: got}
	}
	visibility := func() string {
		if w.OSD().Visible() {
			return "visible"
		}
		return "hidden"
	}

	switch cmd.Args[0] {
	case "visible":
		if !w.OSD().Visible() {
			return fail("hidden")
		}
	case "hidden":
		if w.OSD().Visible() {
			return fail(fmt.Sprintf("visible %q", w.OSD().Message().Text))
		}
	case "module":
		if string(w.Name()) != cmd.Args[1] {
			return fail(string(w.Name()))
		}
	case "message":
		if !w.OSD().Visible() || !strings.Contains(w.OSD().Message().Text, cmd.Args[1]) {
			return fail(fmt.Sprintf("%s %q", visibility(), w.OSD().Message().Text))
		}
	case "echo":
		e, ok := w.Current().(interface{ Echo() string })
		if !ok {
			return fail(fmt.Sprintf("module %s without echo", w.Name()))
		}
		if e.Echo() != cmd.Args[1] {
			return fail(strconv.Quote(e.Echo()))
		}
	}
	return nil
}

func (p *Player) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	p.clock += uint32(d.Milliseconds())
	if !p.realtime {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (p *Player) tick() uint32 {
	p.clock++
	return p.clock
}

func (p *Player) key(code keymap.KeyCode, release bool) {
	flags := code.Flags()
	if release {
		flags |= keymap.Release
	}
	p.session.OnKey(flags, code.Scancode(), p.tick())
}

// chord presses keys in order and releases them in reverse.
func (p *Player) chord(keys ...keymap.KeyCode) {
	for _, k := range keys {
		p.key(k, false)
	}
	for i := len(keys) - 1; i >= 0; i-- {
		p.key(keys[i], true)
	}
}

// typeRune sends r as scancodes when the session layout can produce it,
// otherwise as a unicode event.
func (p *Player) typeRune(r rune) {
	km := p.session.Keymap()
	sc, shift, ok := km.Layout().Find(r)
	if !ok {
		p.session.OnUnicode(0, r, p.tick())
		return
	}
	if unicode.IsLetter(r) && km.Locks()&keymap.CapsLock != 0 {
		shift = !shift
	}
	code := keymap.MakeKeyCode(0, sc)
	if shift && !km.Mods().Shift() {
		p.chord(keymap.KeyLShift, code)
		return
	}
	p.chord(code)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
