// Package demangle decodes the type names Odin compilers emit into debug
// information (for example "struct map[string][dynamic]int" or
// "struct pkg::[file.odin]::Type *") into structured declarations.
package demangle

import "fmt"

// TokenKind identifies the class of a lexeme.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenAsterisk
	TokenCaret
	TokenDollar
	TokenEquals
	TokenComma
	TokenDelim // ::
	// Aggregate keywords
	TokenStruct
	TokenEnum
	TokenUnion
	// Container keywords
	TokenDynamic
	TokenMap
	TokenInteger
	TokenIdent
	TokenUnknown
)

var tokenNames = [...]string{
	TokenEOF:          "<eof>",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenLeftBracket:  "'['",
	TokenRightBracket: "']'",
	TokenAsterisk:     "'*'",
	TokenCaret:        "'^'",
	TokenDollar:       "'$'",
	TokenEquals:       "'='",
	TokenComma:        "','",
	TokenDelim:        "'::'",
	TokenStruct:       "\"struct\"",
	TokenEnum:         "\"enum\"",
	TokenUnion:        "\"union\"",
	TokenDynamic:      "\"dynamic\"",
	TokenMap:          "\"map\"",
	TokenInteger:      "<integer>",
	TokenIdent:        "<ident>",
	TokenUnknown:      "<unknown>",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

// IsAggregate reports whether k is one of struct, enum or union.
func (k TokenKind) IsAggregate() bool {
	return k == TokenStruct || k == TokenEnum || k == TokenUnion
}

// Token is a single lexeme. Text is the exact slice of the input.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int // byte offset of Text in the input
}

func (t Token) String() string {
	switch t.Kind {
	case TokenInteger, TokenIdent, TokenUnknown:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}
