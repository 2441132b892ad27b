package lang

import (
	"context"
	"log/slog"
	"strconv"
	"unicode"
)

// Parse parses source into an annotated expression tree.
// It is shorthand for [ParseString] with a background context.
func Parse(source string) (*Node, error) {
	return ParseString(context.Background(), source)
}

// ParseString parses source into an annotated expression tree.
//
// The entire input must form exactly one expression. On failure the returned
// error is a *[ParseError] and no tree is returned.
func ParseString(ctx context.Context, source string, opts ...Option) (*Node, error) {
	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(source)),
		slog.Bool("cache", cfg.cache))

	if cfg.cache {
		return parseCached(ctx, source, cfg)
	}

	return parse(ctx, source, cfg)
}

func parse(ctx context.Context, source string, cfg config) (*Node, error) {
	p := &parser{
		input:  []rune(source),
		source: source,
	}

	root, err := p.parseProgram()
	if err != nil {
		cfg.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("node_count", int(p.nextID)),
		slog.String("root", root.Expr.Kind.String()))

	return root, nil
}

// Keywords are reserved and cannot be used as variable or parameter names.
const (
	keywordLet  = "let"
	keywordIn   = "in"
	keywordFunc = "func"
)

// parser holds the parser state.
type parser struct {
	input  []rune
	source string
	pos    int
	nextID NodeID
}

// parseProgram parses: Expression EOF.
func (p *parser) parseProgram() (*Node, error) {
	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.eof() {
		return nil, p.errorf(ReasonUnexpectedRemainder,
			string(p.input[p.pos:]))
	}

	return root, nil
}

// parseExpression parses: Definition | FunctionCall.
func (p *parser) parseExpression() (*Node, error) {
	p.skipWhitespace()

	if p.keyword(keywordLet) {
		return p.parseDefinition()
	}

	return p.parseFunctionCall()
}

// parseDefinition parses: "let" Identifier "=" Expression "in" Expression.
func (p *parser) parseDefinition() (*Node, error) {
	start := p.pos
	p.pos += len(keywordLet)

	p.skipWhitespace()

	name, err := p.parseName()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.expect('=') {
		return nil, p.fail(ReasonExpectedOperator, "=")
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.keyword(keywordIn) {
		return nil, p.fail(ReasonExpectedKeyword, keywordIn)
	}

	p.pos += len(keywordIn)

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return p.node(LetExpr(name, value, body), start), nil
}

// parseFunctionCall parses: Atom ( "(" ArgList? ")" )*.
func (p *parser) parseFunctionCall() (*Node, error) {
	start := p.pos

	callee, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		// Look past whitespace for an argument list, but leave the whitespace
		// unconsumed if there is none so the callee's range stays tight.
		saved := p.pos

		p.skipWhitespace()

		if !p.expect('(') {
			p.pos = saved

			return callee, nil
		}

		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}

		callee = p.node(CallExpr(callee, args), start)
	}
}

// parseArgList parses: ( Expression ( "," Expression )* )? ")".
// The opening parenthesis has already been consumed.
func (p *parser) parseArgList() ([]*Node, error) {
	args := []*Node{}

	p.skipWhitespace()

	if p.expect(')') {
		return args, nil
	}

	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		p.skipWhitespace()

		switch {
		case p.expect(','):
			continue

		case p.expect(')'):
			return args, nil

		default:
			return nil, p.fail(ReasonExpected, ")")
		}
	}
}

// parseAtom parses: IntLiteral | StringLiteral | FunctionLiteral | Variable |
// Tag | "{" Expression "}".
func (p *parser) parseAtom() (*Node, error) {
	p.skipWhitespace()

	switch r := p.peek(); {
	case p.eof():
		return nil, p.fail(ReasonExpectedAtom, "")

	case isDigit(r):
		return p.parseInt()

	case r == '"':
		return p.parseString()

	case r == '<':
		return p.parseTag()

	case r == '{':
		return p.parseInterpolation()

	case p.keyword(keywordFunc):
		return p.parseFunction()

	case isIdentifierStart(r):
		return p.parseVariable()

	default:
		return nil, p.fail(ReasonExpectedAtom, "")
	}
}

// parseInt parses: digit+.
func (p *parser) parseInt() (*Node, error) {
	start := p.pos

	for !p.eof() && isDigit(p.peek()) {
		p.advance()
	}

	digits := string(p.input[start:p.pos])

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, p.errorAt(start, ReasonInvalidInteger, digits)
	}

	return p.node(IntExpr[*Node](n), start), nil
}

// parseString parses: '"' (any char except '"')* '"'.
// There are no escape sequences.
func (p *parser) parseString() (*Node, error) {
	start := p.pos
	p.advance() // skip opening quote

	for !p.eof() && p.peek() != '"' {
		p.advance()
	}

	if p.eof() {
		return nil, p.fail(ReasonExpected, `"`)
	}

	text := string(p.input[start+1 : p.pos])

	p.advance() // skip closing quote

	return p.node(StringExpr[*Node](text), start), nil
}

// parseFunction parses:
// "func" "(" (Identifier ("," Identifier)*)? ")" "{" Expression "}".
func (p *parser) parseFunction() (*Node, error) {
	start := p.pos
	p.pos += len(keywordFunc)

	p.skipWhitespace()

	if !p.expect('(') {
		return nil, p.fail(ReasonExpected, "(")
	}

	params := []string{}

	p.skipWhitespace()

	if !p.expect(')') {
		for {
			p.skipWhitespace()

			name, err := p.parseName()
			if err != nil {
				return nil, err
			}

			params = append(params, name)

			p.skipWhitespace()

			if p.expect(',') {
				continue
			}

			if p.expect(')') {
				break
			}

			return nil, p.fail(ReasonExpected, ")")
		}
	}

	p.skipWhitespace()

	if !p.expect('{') {
		return nil, p.fail(ReasonExpected, "{")
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.expect('}') {
		return nil, p.fail(ReasonExpected, "}")
	}

	return p.node(FunctionExpr(params, body), start), nil
}

// parseVariable parses: Identifier.
func (p *parser) parseVariable() (*Node, error) {
	start := p.pos

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	if isKeyword(name) {
		return nil, p.errorAt(start, ReasonExpectedAtom, "")
	}

	return p.node(VariableExpr[*Node](name), start), nil
}

// parseInterpolation parses: "{" Expression "}".
// The braces only delimit the inner expression, which is returned as-is.
func (p *parser) parseInterpolation() (*Node, error) {
	p.advance() // skip '{'

	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.expect('}') {
		return nil, p.fail(ReasonExpected, "}")
	}

	return inner, nil
}

// parseTag parses: "<" Identifier ">" (Tag | "{" Expression "}")* "</"
// Identifier ">".
//
// A closing tag whose name differs from the opening name does not close the
// element; it is skipped and scanning continues until a matching closing tag
// or the end of input.
func (p *parser) parseTag() (*Node, error) {
	start := p.pos
	p.advance() // skip '<'

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.expect('>') {
		return nil, p.fail(ReasonExpected, ">")
	}

	children := []*Node{}

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, p.fail(ReasonExpected, "</"+name+">")
		}

		if p.hasPrefix("</") {
			p.pos += 2

			closing, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}

			p.skipWhitespace()

			if !p.expect('>') {
				return nil, p.fail(ReasonExpected, ">")
			}

			if closing == name {
				return p.node(TagExpr(name, children), start), nil
			}

			continue
		}

		var child *Node

		switch p.peek() {
		case '<':
			child, err = p.parseTag()

		case '{':
			child, err = p.parseInterpolation()

		default:
			return nil, p.fail(ReasonExpected, "</"+name+">")
		}

		if err != nil {
			return nil, err
		}

		children = append(children, child)
	}
}

// parseName parses an identifier that is not a keyword.
func (p *parser) parseName() (string, error) {
	start := p.pos

	name, err := p.parseIdentifier()
	if err != nil {
		return "", err
	}

	if isKeyword(name) {
		return "", p.errorAt(start, ReasonExpectedIdentifier, "")
	}

	return name, nil
}

// parseIdentifier parses: letter (letter | "_")*.
func (p *parser) parseIdentifier() (string, error) {
	start := p.pos

	if p.eof() || !isIdentifierStart(p.peek()) {
		return "", p.fail(ReasonExpectedIdentifier, "")
	}

	p.advance()

	for !p.eof() && isIdentifierContinue(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos]), nil
}

// node finalizes an expression spanning from start to the current position.
func (p *parser) node(e Expr[*Node], start int) *Node {
	n := &Node{
		Expr:  e,
		Range: Range{Start: start, End: p.pos},
		ID:    p.nextID,
	}

	p.nextID++

	return n
}

// fail reports reason at the current position, or UnexpectedEOF if the input
// is exhausted.
func (p *parser) fail(reason ParseReason, detail string) *ParseError {
	if p.eof() {
		return p.errorAt(p.pos, ReasonUnexpectedEOF, "")
	}

	return p.errorAt(p.pos, reason, detail)
}

func (p *parser) errorf(reason ParseReason, detail string) *ParseError {
	return p.errorAt(p.pos, reason, detail)
}

func (p *parser) errorAt(
	offset int,
	reason ParseReason,
	detail string,
) *ParseError {
	return &ParseError{
		Offset: offset,
		Reason: reason,
		Detail: detail,
		Source: p.source,
	}
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	return p.input[p.pos]
}

func (p *parser) advance() {
	if !p.eof() {
		p.pos++
	}
}

func (p *parser) expect(ch rune) bool {
	if !p.eof() && p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) hasPrefix(s string) bool {
	r := []rune(s)
	if p.pos+len(r) > len(p.input) {
		return false
	}

	for i, c := range r {
		if p.input[p.pos+i] != c {
			return false
		}
	}

	return true
}

// keyword reports whether word starts at the current position and is not
// immediately followed by an identifier character. It does not consume input.
func (p *parser) keyword(word string) bool {
	if !p.hasPrefix(word) {
		return false
	}

	next := p.pos + len([]rune(word))

	return next >= len(p.input) || !isIdentifierContinue(p.input[next])
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

// Character classification

// IsIdentifier reports whether s can be bound by let, named as a parameter,
// or referenced as a variable.
func IsIdentifier(s string) bool {
	if s == "" || isKeyword(s) {
		return false
	}

	for i, r := range []rune(s) {
		if i == 0 && !isIdentifierStart(r) || i > 0 && !isIdentifierContinue(r) {
			return false
		}
	}

	return true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool { return unicode.IsLetter(r) }

func isIdentifierContinue(r rune) bool { return unicode.IsLetter(r) || r == '_' }

func isKeyword(s string) bool {
	switch s {
	case keywordLet, keywordIn, keywordFunc:
		return true
	}

	return false
}
