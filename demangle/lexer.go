package demangle

import (
	"unicode"
	"unicode/utf8"
)

// Lexer splits an encoded declaration into tokens on demand.
// A Lexer never fails: anything it cannot classify becomes TokenUnknown.
type Lexer struct {
	input    string
	start    int // start of the current lexeme
	pos      int // next byte to read
	keywords map[string]TokenKind
}

// NewLexer returns a Lexer with an empty input.
func NewLexer() *Lexer {
	return &Lexer{
		keywords: map[string]TokenKind{
			"struct":  TokenStruct,
			"enum":    TokenEnum,
			"union":   TokenUnion,
			"dynamic": TokenDynamic,
			"map":     TokenMap,
		},
	}
}

// SetInput resets the lexer to the beginning of input.
func (l *Lexer) SetInput(input string) {
	l.input = input
	l.start = 0
	l.pos = 0
}

// Lex scans the next token into tok. Once the input is exhausted every
// call yields TokenEOF.
func (l *Lexer) Lex(tok *Token) {
	for !l.eof() {
		r, size := l.peek()
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}

	l.start = l.pos
	if l.eof() {
		l.emit(tok, TokenEOF)
		return
	}

	r := l.advance()
	switch {
	case unicode.IsLetter(r):
		for !l.eof() {
			r, size := l.peek()
			if !isIdentRune(r) {
				break
			}
			l.pos += size
		}
		// string, int and friends are type names, not keywords.
		if kind, ok := l.keywords[l.lexeme()]; ok {
			l.emit(tok, kind)
			return
		}
		l.emit(tok, TokenIdent)
		return

	case isDigit(r):
		for !l.eof() && isDigit(rune(l.input[l.pos])) {
			l.pos++
		}
		l.emit(tok, TokenInteger)
		return
	}

	switch r {
	case '(':
		l.emit(tok, TokenLeftParen)
	case ')':
		l.emit(tok, TokenRightParen)
	case '[':
		l.emit(tok, TokenLeftBracket)
	case ']':
		l.emit(tok, TokenRightBracket)
	case '*':
		l.emit(tok, TokenAsterisk)
	case '^':
		l.emit(tok, TokenCaret)
	case '$':
		l.emit(tok, TokenDollar)
	case '=':
		l.emit(tok, TokenEquals)
	case ',':
		l.emit(tok, TokenComma)
	case ':':
		if !l.eof() && l.input[l.pos] == ':' {
			l.pos++
			l.emit(tok, TokenDelim)
			return
		}
		l.emit(tok, TokenUnknown)
	default:
		l.emit(tok, TokenUnknown)
	}
}

func (l *Lexer) emit(tok *Token, kind TokenKind) {
	tok.Kind = kind
	tok.Text = l.lexeme()
	tok.Pos = l.start
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() (rune, int) {
	return utf8.DecodeRuneInString(l.input[l.pos:])
}

func (l *Lexer) advance() rune {
	r, size := l.peek()
	l.pos += size
	return r
}

func (l *Lexer) lexeme() string {
	return l.input[l.start:l.pos]
}

// Package and type names should not contain dashes or periods, but file
// names in private namespaces do. The compiler validates the rest.
func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
