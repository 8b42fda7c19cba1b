package demangle

import (
	"fmt"
	"strconv"
)

// Parser is a recursive-descent parser over the declaration grammar:
//
//	full-type    ::= prefix? compound? qualname c-pointer?
//	prefix       ::= "struct" | "enum" | "union"
//	compound     ::= array-header '^'* compound*
//	               | "map" '[' qualname ']' '^'* compound*
//	array-header ::= '[' ( INTEGER | "dynamic" | '^' )? ']'
//	qualname     ::= ( IDENT '::' ( '[' IDENT ']' '::' )? )? IDENT parapoly?
//	parapoly     ::= '(' polyarg ( ',' polyarg )* ')'
//	polyarg      ::= '$' IDENT '=' ( qualname | INTEGER )
//	c-pointer    ::= '*'+
//
// A Parser is not safe for concurrent use.
type Parser struct {
	lexer     *Lexer
	input     string
	consumed  Token
	lookahead Token

	maxDepth int
	depth    int
}

// NewParser returns a Parser. Only WithMaxDepth affects parsing.
func NewParser(opts ...Option) *Parser {
	cfg := buildOptions(opts...)
	return &Parser{
		lexer:    NewLexer(),
		maxDepth: cfg.maxDepth,
	}
}

// Parse decodes a single encoded declaration. On error no declaration is
// returned.
func (p *Parser) Parse(input string) (*Declaration, error) {
	p.input = input
	p.depth = 0
	p.consumed = Token{}
	p.lexer.SetInput(input)
	p.next()

	decl := &Declaration{}
	if err := p.parseFullType(decl); err != nil {
		return nil, err
	}
	return decl, nil
}

// Demangle parses input with a fresh Parser and no cache.
func Demangle(input string, opts ...Option) (*Declaration, error) {
	return NewParser(opts...).Parse(input)
}

func (p *Parser) parseFullType(d *Declaration) error {
	if p.lookahead.Kind.IsAggregate() {
		p.next()
		if err := d.setPrefix(aggregateOf(p.consumed.Kind)); err != nil {
			return err
		}
	}

	if err := p.parseCompound(d, false); err != nil {
		return err
	}

	if err := p.parseQualname(d); err != nil {
		return err
	}

	// Pointers to the whole type come out C-style, e.g. `struct string **`.
	// C array-pointer declarators such as `T (*)[4]` are not supported.
	for p.match(TokenAsterisk) {
		d.Pointer++
	}

	if !p.check(TokenEOF) {
		return p.unexpected(TokenAsterisk, TokenEOF)
	}
	return nil
}

// parseCompound consumes one container header plus whatever Odin-style
// pointers and further containers follow it. It does not consume the
// element type name.
func (p *Parser) parseCompound(d *Declaration, nested bool) error {
	switch p.lookahead.Kind {
	case TokenLeftBracket:
		p.next()
		if err := p.parseArrayHeader(d, nested); err != nil {
			return err
		}

	case TokenMap:
		p.next()
		if _, err := p.expect(TokenLeftBracket); err != nil {
			return err
		}
		if err := d.setContainer(Container{Kind: ContainerMap}); err != nil {
			return err
		}

		// Only the key's spelling is kept.
		key := &Declaration{}
		if err := p.enter(); err != nil {
			return err
		}
		if err := p.parseQualname(key); err != nil {
			return err
		}
		p.leave()

		if _, err := p.expect(TokenRightBracket); err != nil {
			return err
		}
		d.addInfo("[" + key.Render() + "]")

	default:
		return nil
	}

	// Element pointers are already Odin-style, e.g. `[]^T` or `map[K]^V`.
	for p.match(TokenCaret) {
		d.addInfo("^")
	}

	// Container of containers, e.g. `[][]T` or `map[K][dynamic]V`.
	if p.check(TokenLeftBracket) || p.check(TokenMap) {
		inner := &Declaration{}
		if err := p.enter(); err != nil {
			return err
		}
		if err := p.parseCompound(inner, true); err != nil {
			return err
		}
		p.leave()
		d.addInfo(inner.Render())
	}
	return nil
}

// parseArrayHeader parses everything after '[' up to and including ']'.
func (p *Parser) parseArrayHeader(d *Declaration, nested bool) error {
	var c Container
	switch p.lookahead.Kind {
	case TokenInteger:
		p.next()
		size, err := strconv.Atoi(p.consumed.Text)
		if err != nil {
			return fmt.Errorf("demangle: array length %q at offset %d: %w",
				p.consumed.Text, p.consumed.Pos, err)
		}
		c = Container{Kind: ContainerFixedArray, Size: size}

	case TokenCaret:
		// The debugger already turns an outermost `[^]T` into `T *`.
		if !nested {
			return fmt.Errorf("%w: offset %d in %q", ErrTopLevelMultiPointer, p.lookahead.Pos, p.input)
		}
		p.next()
		c = Container{Kind: ContainerMultiPointer}

	case TokenDynamic:
		p.next()
		c = Container{Kind: ContainerDynamicArray}

	case TokenRightBracket:
		c = Container{Kind: ContainerSlice}

	default:
		return p.unexpected(TokenRightBracket, TokenInteger, TokenDynamic, TokenCaret)
	}

	if err := d.setContainer(c); err != nil {
		return err
	}
	_, err := p.expect(TokenRightBracket)
	return err
}

func (p *Parser) parseQualname(d *Declaration) error {
	ident, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}

	if p.match(TokenDelim) {
		if err := d.setPackage(ident.Text); err != nil {
			return err
		}

		// Private declarations are scoped to their file, e.g. `pkg::[file.odin]::T`.
		if p.match(TokenLeftBracket) {
			file, err := p.expect(TokenIdent)
			if err != nil {
				return err
			}
			if _, err := p.expect(TokenRightBracket); err != nil {
				return err
			}
			if _, err := p.expect(TokenDelim); err != nil {
				return err
			}
			d.File = file.Text
		}

		if ident, err = p.expect(TokenIdent); err != nil {
			return err
		}
	}

	if err := d.setName(ident.Text); err != nil {
		return err
	}

	if p.check(TokenLeftParen) {
		return p.parseParapoly(d)
	}
	return nil
}

func (p *Parser) parseParapoly(d *Declaration) error {
	p.next() // (
	for {
		if _, err := p.expect(TokenDollar); err != nil {
			return err
		}
		param, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		if _, err := p.expect(TokenEquals); err != nil {
			return err
		}

		var arg string
		switch p.lookahead.Kind {
		case TokenInteger:
			p.next()
			arg = p.consumed.Text
		case TokenIdent:
			nested := &Declaration{}
			if err := p.enter(); err != nil {
				return err
			}
			if err := p.parseQualname(nested); err != nil {
				return err
			}
			p.leave()
			arg = nested.Render()
		default:
			return p.unexpected(TokenIdent, TokenInteger)
		}
		d.addPolyarg(param.Text, arg)

		if p.match(TokenComma) {
			continue
		}
		if p.match(TokenRightParen) {
			return nil
		}
		return p.unexpected(TokenComma, TokenRightParen)
	}
}

func (p *Parser) enter() error {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return fmt.Errorf("%w (%d) at offset %d in %q", ErrTooDeep, p.maxDepth, p.lookahead.Pos, p.input)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) next() {
	p.consumed = p.lookahead
	p.lexer.Lex(&p.lookahead)
}

func (p *Parser) check(kind TokenKind) bool {
	return p.lookahead.Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if !p.check(kind) {
		return false
	}
	p.next()
	return true
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if !p.match(kind) {
		return Token{}, p.unexpected(kind)
	}
	return p.consumed, nil
}

func (p *Parser) unexpected(expected ...TokenKind) error {
	return &SyntaxError{
		Input:    p.input,
		Expected: expected,
		Got:      p.lookahead,
	}
}
