package parser

import (
	"fmt"

	"github.com/funvibe/envx/internal/ast"
	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/pipeline"
	"github.com/funvibe/envx/internal/token"
)

// Parser is a recursive-descent parser over a complete token stream.
// curToken is the next unconsumed token; prevToken is the last consumed one
// and supplies the end of every node span.
type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token
	prevToken token.Token

	ctx *pipeline.PipelineContext
}

// bailout aborts the parse after the first error has been recorded.
type bailout struct{}

func New(tokens []token.Token, ctx *pipeline.PipelineContext) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	p := &Parser{tokens: tokens, ctx: ctx, pos: -1}
	p.nextToken()
	return p
}

// ParseProgram parses the whole stream. On the first syntax error it records
// a diagnostic in the context and returns nil.
func (p *Parser) ParseProgram() (program *ast.Program) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); ok {
				program = nil
				return
			}
			panic(r)
		}
	}()

	program = &ast.Program{}
	start := p.curToken
	for !p.curTokenIs(token.EOF) {
		program.Statements = append(program.Statements, p.parseStatement())
	}
	program.Span = start.Span().Merge(p.curToken.Span())
	return program
}

func (p *Parser) nextToken() {
	if p.pos >= 0 {
		p.prevToken = p.curToken
	}
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	if p.pos+1 < len(p.tokens) {
		p.peekToken = p.tokens[p.pos+1]
	} else {
		p.peekToken = p.curToken
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// expect consumes the current token if it has type t, otherwise fails.
func (p *Parser) expect(t token.TokenType) token.Token {
	if !p.curTokenIs(t) {
		p.fail(diagnostics.ErrP001, p.curToken, fmt.Sprintf("Expected %s but found %s", describeType(t), describe(p.curToken)))
	}
	tok := p.curToken
	p.nextToken()
	return tok
}

// spanFrom covers everything from start to the last consumed token.
func (p *Parser) spanFrom(start token.Token) token.Span {
	return start.Span().Merge(p.prevToken.Span())
}

func (p *Parser) fail(code diagnostics.ErrorCode, tok token.Token, msg string) {
	p.ctx.AddError(diagnostics.NewError(code, tok, msg))
	panic(bailout{})
}

func (p *Parser) failSpan(code diagnostics.ErrorCode, span token.Span, msg string) {
	p.ctx.AddError(diagnostics.NewSpanError(code, span, msg))
	panic(bailout{})
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of file"
	}
	return tok.Lexeme
}

func describeType(t token.TokenType) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.EOF:
		return "end of file"
	}
	if kw := keywordLexeme(t); kw != "" {
		return kw
	}
	return string(t)
}

func keywordLexeme(t token.TokenType) string {
	switch t {
	case token.IF, token.ELSE, token.DO, token.WHILE, token.FOR, token.BREAK, token.CONTINUE,
		token.RETURN, token.FN, token.VAR, token.LOCAL, token.CONST, token.TRUE, token.FALSE, token.NULL:
		return lowerASCII(string(t))
	}
	return ""
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
