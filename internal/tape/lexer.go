package tape

import (
	"strings"
	"unicode"
)

// Lexer tokenizes session script input
type Lexer struct {
	input   string
	pos     int  // current position
	nextPos int  // next position
	ch      byte // current character
	line    int  // line of ch
	column  int  // column of ch, 1-based
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar advances to the next character. Leaving a newline moves to the
// start of the next line.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.nextPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.nextPos]
	}
	l.pos = l.nextPos
	l.nextPos++
	l.column++
}

// peekChar returns the next character without consuming it
func (l *Lexer) peekChar() byte {
	if l.nextPos >= len(l.input) {
		return 0
	}
	return l.input[l.nextPos]
}

// readWhile consumes characters while ok holds and returns them.
func (l *Lexer) readWhile(ok func(byte) bool) string {
	start := l.pos
	for l.ch != 0 && ok(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readString reads a quoted string (single, double, or backtick)
func (l *Lexer) readString(quote byte) string {
	var sb strings.Builder
	l.readChar() // skip opening quote

	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				break
			}
			if esc, ok := escapes[l.ch]; ok {
				sb.WriteByte(esc)
			} else {
				sb.WriteByte(l.ch)
			}
		} else {
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}

	if l.ch == quote {
		l.readChar() // skip closing quote
	}
	return sb.String()
}

var escapes = map[byte]byte{'n': '\n', 't': '\t', 'r': '\r'}

// readNumeric reads a decimal or hex number, or a duration when a unit
// follows the digits (e.g., 0x152, 20, 1.5s, 500ms).
func (l *Lexer) readNumeric() (TokenType, string) {
	start := l.pos
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		l.readWhile(isHexDigit)
		return TOKEN_NUMBER, l.input[start:l.pos]
	}

	l.readWhile(isDigit)
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		l.readWhile(isDigit)
	}
	if isLetter(l.ch) {
		l.readWhile(isLetter)
		return TOKEN_DURATION, l.input[start:l.pos]
	}
	return TOKEN_NUMBER, l.input[start:l.pos]
}

// NextToken returns the next token in the input
func (l *Lexer) NextToken() Token {
	l.readWhile(func(ch byte) bool { return ch == ' ' || ch == '\t' || ch == '\r' })
	if l.ch == '#' {
		l.readWhile(func(ch byte) bool { return ch != '\n' })
	}

	tok := Token{Line: l.line, Column: l.column}

	switch ch := l.ch; {
	case ch == 0:
		tok.Type = TOKEN_EOF
	case ch == '\n':
		tok.Type, tok.Literal = TOKEN_NEWLINE, "\n"
		l.readChar()
	case ch == '+':
		tok.Type, tok.Literal = TOKEN_PLUS, "+"
		l.readChar()
	case ch == '@':
		tok.Type, tok.Literal = TOKEN_AT, "@"
		l.readChar()
	case ch == '"' || ch == '\'' || ch == '`':
		tok.Type, tok.Literal = TOKEN_STRING, l.readString(ch)
	case isDigit(ch):
		tok.Type, tok.Literal = l.readNumeric()
	case isIdentifierChar(ch):
		tok.Literal = l.readWhile(isIdentifierChar)
		tok.Type = LookupKeyword(tok.Literal)
	default:
		tok.Type, tok.Literal = TOKEN_ILLEGAL, string(ch)
		l.readChar()
	}
	return tok
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

// isIdentifierChar returns true if ch is valid in an identifier
func isIdentifierChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

// Tokenize returns all tokens from the input
func Tokenize(input string) []Token {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			break
		}
	}
	return tokens
}
