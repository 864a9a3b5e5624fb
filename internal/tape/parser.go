package tape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Gaurav-Gosain/modmux/internal/osd"
)

// Parser parses session scripts into commands
type Parser struct {
	lexer   *Lexer
	curTok  Token
	peekTok Token
	errors  []string
	line    int // line of the command being parsed
}

// NewParser creates a new parser from a lexer
func NewParser(l *Lexer) *Parser {
	p := &Parser{
		lexer:  l,
		errors: []string{},
	}
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lexer.NextToken()
}

// Parse parses the entire script and returns all commands
func (p *Parser) Parse() []Command {
	var commands []Command

	for p.curTok.Type != TOKEN_EOF {
		// Skip newlines
		if p.curTok.Type == TOKEN_NEWLINE {
			p.nextToken()
			continue
		}

		cmd, ok := p.parseCommand()
		if !ok {
			p.nextToken()
			continue
		}

		commands = append(commands, cmd)
	}

	return commands
}

// parseCommand parses a single command
func (p *Parser) parseCommand() (Command, bool) {
	p.line = p.curTok.Line
	switch p.curTok.Type {
	case TOKEN_REPLACE:
		return p.parseReplaceCommand()
	case TOKEN_PRESS:
		return p.parseKeyCommand(CommandType_Press, false)
	case TOKEN_RELEASE:
		return p.parseKeyCommand(CommandType_Release, false)
	case TOKEN_KEY:
		return p.parseKeyCommand(CommandType_Key, true)
	case TOKEN_TYPE:
		return p.parseTypeCommand()
	case TOKEN_SYNC:
		return p.parseSyncCommand()
	case TOKEN_CLICK:
		return p.parsePointCommand(CommandType_Click, true)
	case TOKEN_MOVE:
		return p.parsePointCommand(CommandType_Move, false)
	case TOKEN_SHOW:
		return p.parseShowCommand()
	case TOKEN_HIDE:
		return p.parseBasicCommand(CommandType_Hide)
	case TOKEN_TARGET:
		return p.parseStringCommand(CommandType_Target)
	case TOKEN_REFRESH:
		return p.parseRefreshCommand()
	case TOKEN_SLEEP:
		return p.parseSleepCommand()
	case TOKEN_EXPECT:
		return p.parseExpectCommand()
	case TOKEN_SET:
		return p.parseSetCommand()
	case TOKEN_OUTPUT:
		return p.parseStringCommand(CommandType_Output)
	default:
		p.addError(fmt.Sprintf("unexpected token: %v %q", p.curTok.Type, p.curTok.Literal))
		p.skipToNextLine()
		return Command{}, false
	}
}

func (p *Parser) newCommand(cmdType CommandType) Command {
	return Command{
		Type:   cmdType,
		Line:   p.curTok.Line,
		Column: p.curTok.Column,
	}
}

// parseDelay consumes an optional @<duration> modifier
func (p *Parser) parseDelay(cmd *Command) {
	if p.curTok.Type != TOKEN_AT {
		return
	}
	p.nextToken()
	if p.curTok.Type != TOKEN_DURATION {
		p.addError("expected duration after @")
		return
	}
	duration, err := ParseDuration(p.curTok.Literal)
	if err != nil {
		p.addError(fmt.Sprintf("invalid duration: %s", p.curTok.Literal))
	}
	cmd.Delay = duration
	p.nextToken()
}

// finish records the raw text and skips anything left on the line
func (p *Parser) finish(cmd Command) (Command, bool) {
	if cmd.Raw == "" {
		cmd.Raw = cmd.String()
	}
	if p.curTok.Type != TOKEN_NEWLINE && p.curTok.Type != TOKEN_EOF {
		p.addError(fmt.Sprintf("%s: unexpected %q", cmd.Type, p.curTok.Literal))
		p.skipToNextLine()
	}
	return cmd, true
}

// fail reports msg and drops the rest of the line
func (p *Parser) fail(msg string) (Command, bool) {
	p.addError(msg)
	p.skipToNextLine()
	return Command{}, false
}

// parseBasicCommand parses commands without arguments
func (p *Parser) parseBasicCommand(cmdType CommandType) (Command, bool) {
	cmd := p.newCommand(cmdType)
	p.nextToken()
	p.parseDelay(&cmd)
	return p.finish(cmd)
}

// parseReplaceCommand parses Replace <module> [args...]
func (p *Parser) parseReplaceCommand() (Command, bool) {
	cmd := p.newCommand(CommandType_Replace)
	p.nextToken() // consume Replace

	if p.curTok.Type != TOKEN_IDENTIFIER && p.curTok.Type != TOKEN_STRING {
		return p.fail(fmt.Sprintf("Replace expects a module name, got %v", p.curTok.Type))
	}
	for p.curTok.Type.IsArgument() {
		cmd.Args = append(cmd.Args, p.curTok.Literal)
		p.nextToken()
	}
	p.parseDelay(&cmd)
	return p.finish(cmd)
}

// parseKeyCommand parses Press/Release <key> and Key <combo> [count]
func (p *Parser) parseKeyCommand(cmdType CommandType, combo bool) (Command, bool) {
	cmd := p.newCommand(cmdType)
	p.nextToken() // consume command

	var parts []string
	for {
		if p.curTok.Type != TOKEN_IDENTIFIER && p.curTok.Type != TOKEN_NUMBER {
			return p.fail(fmt.Sprintf("%s expects a key, got %v", cmdType, p.curTok.Type))
		}
		parts = append(parts, p.curTok.Literal)
		p.nextToken()
		if !combo || p.curTok.Type != TOKEN_PLUS {
			break
		}
		p.nextToken() // consume +
	}

	keys := strings.Join(parts, "+")
	if _, err := ParseKeyCombo(keys); err != nil {
		return p.fail(err.Error())
	}
	cmd.Args = []string{keys}
	p.parseDelay(&cmd)

	// Optional repeat count
	if combo && p.curTok.Type == TOKEN_NUMBER {
		if _, err := strconv.Atoi(p.curTok.Literal); err != nil {
			return p.fail(fmt.Sprintf("invalid repeat count: %s", p.curTok.Literal))
		}
		cmd.Args = append(cmd.Args, p.curTok.Literal)
		p.nextToken()
	}
	return p.finish(cmd)
}

// parseTypeCommand parses Type [@<duration>] "text"
func (p *Parser) parseTypeCommand() (Command, bool) {
	cmd := p.newCommand(CommandType_Type)
	p.nextToken() // consume Type
	p.parseDelay(&cmd)

	if p.curTok.Type != TOKEN_STRING {
		return p.fail(fmt.Sprintf("Type command expects a string, got %v", p.curTok.Type))
	}
	cmd.Args = []string{p.curTok.Literal}
	cmd.Raw = fmt.Sprintf("Type %q", p.curTok.Literal)
	p.nextToken()
	return p.finish(cmd)
}

// parseSyncCommand parses Sync [caps] [num] [scroll] [kana]
func (p *Parser) parseSyncCommand() (Command, bool) {
	cmd := p.newCommand(CommandType_Sync)
	p.nextToken() // consume Sync

	for p.curTok.Type == TOKEN_IDENTIFIER {
		if _, ok := lockNames[strings.ToLower(p.curTok.Literal)]; !ok {
			return p.fail(fmt.Sprintf("unknown lock: %s", p.curTok.Literal))
		}
		cmd.Args = append(cmd.Args, strings.ToLower(p.curTok.Literal))
		p.nextToken()
	}
	return p.finish(cmd)
}

// parsePointCommand parses Click <x> <y> [left|right|middle] and Move <x> <y>
func (p *Parser) parsePointCommand(cmdType CommandType, button bool) (Command, bool) {
	cmd := p.newCommand(cmdType)
	p.nextToken() // consume command

	for range 2 {
		if p.curTok.Type != TOKEN_NUMBER {
			return p.fail(fmt.Sprintf("%s expects x and y coordinates", cmdType))
		}
		if _, err := strconv.Atoi(p.curTok.Literal); err != nil {
			return p.fail(fmt.Sprintf("invalid coordinate: %s", p.curTok.Literal))
		}
		cmd.Args = append(cmd.Args, p.curTok.Literal)
		p.nextToken()
	}

	if button && p.curTok.Type == TOKEN_IDENTIFIER {
		name := strings.ToLower(p.curTok.Literal)
		if _, ok := buttonNames[name]; !ok {
			return p.fail(fmt.Sprintf("unknown mouse button: %s", p.curTok.Literal))
		}
		cmd.Args = append(cmd.Args, name)
		p.nextToken()
	}
	p.parseDelay(&cmd)
	return p.finish(cmd)
}

// parseShowCommand parses Show [urgency] "text" [sticky]
func (p *Parser) parseShowCommand() (Command, bool) {
	cmd := p.newCommand(CommandType_Show)
	p.nextToken() // consume Show

	urgency := osd.Normal
	if p.curTok.Type == TOKEN_IDENTIFIER {
		u, err := osd.ParseUrgency(p.curTok.Literal)
		if err != nil {
			return p.fail(err.Error())
		}
		urgency = u
		p.nextToken()
	}

	if p.curTok.Type != TOKEN_STRING {
		return p.fail(fmt.Sprintf("Show expects a message string, got %v", p.curTok.Type))
	}
	cmd.Args = []string{urgency.String(), p.curTok.Literal}
	cmd.Raw = fmt.Sprintf("Show %s %q", urgency, p.curTok.Literal)
	p.nextToken()

	if p.curTok.Type == TOKEN_IDENTIFIER && p.curTok.Literal == "sticky" {
		cmd.Args = append(cmd.Args, "sticky")
		cmd.Raw += " sticky"
		p.nextToken()
	}
	p.parseDelay(&cmd)
	return p.finish(cmd)
}

// parseStringCommand parses <command> "text"
func (p *Parser) parseStringCommand(cmdType CommandType) (Command, bool) {
	cmd := p.newCommand(cmdType)
	p.nextToken() // consume command

	if p.curTok.Type != TOKEN_STRING && p.curTok.Type != TOKEN_IDENTIFIER {
		return p.fail(fmt.Sprintf("%s expects a string, got %v", cmdType, p.curTok.Type))
	}
	cmd.Args = []string{p.curTok.Literal}
	cmd.Raw = fmt.Sprintf("%s %q", cmdType, p.curTok.Literal)
	p.nextToken()
	return p.finish(cmd)
}

// parseRefreshCommand parses Refresh [x y w h]
func (p *Parser) parseRefreshCommand() (Command, bool) {
	cmd := p.newCommand(CommandType_Refresh)
	p.nextToken() // consume Refresh

	for p.curTok.Type == TOKEN_NUMBER {
		if _, err := strconv.Atoi(p.curTok.Literal); err != nil {
			return p.fail(fmt.Sprintf("invalid number: %s", p.curTok.Literal))
		}
		cmd.Args = append(cmd.Args, p.curTok.Literal)
		p.nextToken()
	}
	if len(cmd.Args) != 0 && len(cmd.Args) != 4 {
		return p.fail("Refresh expects no arguments or x y width height")
	}
	return p.finish(cmd)
}

// parseSleepCommand parses Sleep <duration> commands
func (p *Parser) parseSleepCommand() (Command, bool) {
	cmd := p.newCommand(CommandType_Sleep)
	p.nextToken() // consume Sleep

	if p.curTok.Type != TOKEN_DURATION {
		return p.fail(fmt.Sprintf("Sleep command expects a duration, got %v", p.curTok.Type))
	}
	duration, err := ParseDuration(p.curTok.Literal)
	if err != nil {
		p.addError(fmt.Sprintf("invalid duration: %s", p.curTok.Literal))
	}
	cmd.Args = []string{p.curTok.Literal}
	cmd.Delay = duration
	p.nextToken()
	return p.finish(cmd)
}

// Expectations understood by Expect, with whether they take an argument.
var expectations = map[string]bool{
	"visible": false,
	"hidden":  false,
	"module":  true,
	"message": true,
	"echo":    true,
}

// parseExpectCommand parses Expect visible|hidden and Expect module|message|echo <value>
func (p *Parser) parseExpectCommand() (Command, bool) {
	cmd := p.newCommand(CommandType_Expect)
	p.nextToken() // consume Expect

	if p.curTok.Type != TOKEN_IDENTIFIER {
		return p.fail(fmt.Sprintf("Expect expects a condition, got %v", p.curTok.Type))
	}
	what := strings.ToLower(p.curTok.Literal)
	takesArg, ok := expectations[what]
	if !ok {
		return p.fail(fmt.Sprintf("unknown expectation: %s", p.curTok.Literal))
	}
	cmd.Args = []string{what}
	p.nextToken()

	if takesArg {
		if !p.curTok.Type.IsArgument() {
			return p.fail(fmt.Sprintf("Expect %s expects a value", what))
		}
		cmd.Args = append(cmd.Args, p.curTok.Literal)
		cmd.Raw = fmt.Sprintf("Expect %s %q", what, p.curTok.Literal)
		p.nextToken()
	}
	return p.finish(cmd)
}

// Settings understood by Set.
const (
	SettingTypingSpeed = "TypingSpeed"
)

// parseSetCommand parses Set <key> <value> commands
func (p *Parser) parseSetCommand() (Command, bool) {
	cmd := p.newCommand(CommandType_Set)
	p.nextToken() // consume Set

	if p.curTok.Type != TOKEN_IDENTIFIER {
		return p.fail("Set command expects a key")
	}
	key := p.curTok.Literal
	p.nextToken()

	switch key {
	case SettingTypingSpeed:
		if p.curTok.Type != TOKEN_DURATION {
			return p.fail("Set TypingSpeed expects a duration")
		}
		if _, err := ParseDuration(p.curTok.Literal); err != nil {
			return p.fail(fmt.Sprintf("invalid duration: %s", p.curTok.Literal))
		}
	default:
		return p.fail(fmt.Sprintf("unknown setting: %s", key))
	}

	cmd.Args = []string{key, p.curTok.Literal}
	p.nextToken()
	return p.finish(cmd)
}

// skipToNextLine skips tokens until the next newline
func (p *Parser) skipToNextLine() {
	for p.curTok.Type != TOKEN_NEWLINE && p.curTok.Type != TOKEN_EOF {
		p.nextToken()
	}
}

// addError adds an error to the parser's error list
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.line, msg))
}

// Errors returns the list of parser errors
func (p *Parser) Errors() []string {
	return p.errors
}

// ParseFile parses a script from a string
func ParseFile(content string) ([]Command, []string) {
	l := New(content)
	p := NewParser(l)
	commands := p.Parse()
	return commands, p.Errors()
}
