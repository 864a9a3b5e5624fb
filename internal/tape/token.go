package tape

// TokenType represents the type of a token in a session script
type TokenType string

const (
	// Special tokens
	TOKEN_EOF     TokenType = "EOF"
	TOKEN_ILLEGAL TokenType = "ILLEGAL"
	TOKEN_NEWLINE TokenType = "NEWLINE"

	// Literals
	TOKEN_STRING     TokenType = "STRING"
	TOKEN_NUMBER     TokenType = "NUMBER"
	TOKEN_DURATION   TokenType = "DURATION"
	TOKEN_IDENTIFIER TokenType = "IDENTIFIER"

	// Symbols
	TOKEN_PLUS TokenType = "PLUS"
	TOKEN_AT   TokenType = "AT"

	// Commands - Modules
	TOKEN_REPLACE TokenType = "Replace"

	// Commands - Keyboard
	TOKEN_PRESS   TokenType = "Press"
	TOKEN_RELEASE TokenType = "Release"
	TOKEN_KEY     TokenType = "Key"
	TOKEN_TYPE    TokenType = "Type"
	TOKEN_SYNC    TokenType = "Sync"

	// Commands - Mouse
	TOKEN_CLICK TokenType = "Click"
	TOKEN_MOVE  TokenType = "Move"

	// Commands - On-screen display
	TOKEN_SHOW    TokenType = "Show"
	TOKEN_HIDE    TokenType = "Hide"
	TOKEN_TARGET  TokenType = "Target"
	TOKEN_REFRESH TokenType = "Refresh"

	// Commands - Synchronization
	TOKEN_SLEEP  TokenType = "Sleep"
	TOKEN_EXPECT TokenType = "Expect"

	// Commands - Settings
	TOKEN_SET    TokenType = "Set"
	TOKEN_OUTPUT TokenType = "Output"
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// IsCommand returns true if the token type is a command
func (tt TokenType) IsCommand() bool {
	switch tt {
	case TOKEN_REPLACE,
		TOKEN_PRESS, TOKEN_RELEASE, TOKEN_KEY, TOKEN_TYPE, TOKEN_SYNC,
		TOKEN_CLICK, TOKEN_MOVE,
		TOKEN_SHOW, TOKEN_HIDE, TOKEN_TARGET, TOKEN_REFRESH,
		TOKEN_SLEEP, TOKEN_EXPECT,
		TOKEN_SET, TOKEN_OUTPUT:
		return true
	}
	return false
}

// IsArgument returns true if the token can stand as a plain argument
func (tt TokenType) IsArgument() bool {
	switch tt {
	case TOKEN_STRING, TOKEN_NUMBER, TOKEN_DURATION, TOKEN_IDENTIFIER:
		return true
	}
	return false
}

// KeywordTokenMap maps string keywords to token types
var KeywordTokenMap = map[string]TokenType{
	"Replace": TOKEN_REPLACE,

	"Press":   TOKEN_PRESS,
	"Release": TOKEN_RELEASE,
	"Key":     TOKEN_KEY,
	"Type":    TOKEN_TYPE,
	"Sync":    TOKEN_SYNC,

	"Click": TOKEN_CLICK,
	"Move":  TOKEN_MOVE,

	"Show":    TOKEN_SHOW,
	"Hide":    TOKEN_HIDE,
	"Target":  TOKEN_TARGET,
	"Refresh": TOKEN_REFRESH,

	"Sleep":  TOKEN_SLEEP,
	"Expect": TOKEN_EXPECT,

	"Set":    TOKEN_SET,
	"Output": TOKEN_OUTPUT,
}

// LookupKeyword returns the token type for a keyword, or TOKEN_IDENTIFIER if not a keyword
func LookupKeyword(ident string) TokenType {
	if tt, ok := KeywordTokenMap[ident]; ok {
		return tt
	}
	return TOKEN_IDENTIFIER
}
