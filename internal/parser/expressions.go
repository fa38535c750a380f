package parser

import (
	"github.com/funvibe/envx/internal/ast"
	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/token"
)

// Binary operator tiers from loosest to tightest. Each tier is left-associative.
var (
	logicalOps  = []token.TokenType{token.AND, token.OR}
	bitwiseOps  = []token.TokenType{token.AMPER, token.PIPE, token.CARET}
	equalityOps = []token.TokenType{token.EQ, token.NOT_EQ}
	relationOps = []token.TokenType{token.LT, token.LTE, token.GT, token.GTE}
	shiftOps    = []token.TokenType{token.LSHIFT, token.RSHIFT}
	additiveOps = []token.TokenType{token.PLUS, token.MINUS}
	multiplyOps = []token.TokenType{token.ASTERISK, token.SLASH, token.PERCENT}
)

var compoundAssignOps = map[token.TokenType]bool{
	token.ASTERISK_ASSIGN: true,
	token.SLASH_ASSIGN:    true,
	token.PERCENT_ASSIGN:  true,
	token.PLUS_ASSIGN:     true,
	token.MINUS_ASSIGN:    true,
	token.LSHIFT_ASSIGN:   true,
	token.RSHIFT_ASSIGN:   true,
	token.AMPER_ASSIGN:    true,
	token.PIPE_ASSIGN:     true,
	token.CARET_ASSIGN:    true,
}

// parseExpression is the loosest tier: the ternary conditional.
// Both branches are full expressions, so nested ternaries associate right.
func (p *Parser) parseExpression() ast.Expression {
	cond := p.parseCompoundAssign()
	if !p.curTokenIs(token.QUESTION) {
		return cond
	}
	expr := &ast.ConditionalExpression{Token: p.curToken, Condition: cond}
	p.nextToken()
	expr.Consequence = p.parseExpression()
	p.expect(token.COLON)
	expr.Alternative = p.parseExpression()
	expr.Span = cond.GetSpan().Merge(p.prevToken.Span())
	return expr
}

func (p *Parser) parseCompoundAssign() ast.Expression {
	left := p.parseAssign()
	if !compoundAssignOps[p.curToken.Type] {
		return left
	}
	return p.finishAssign(left)
}

func (p *Parser) parseAssign() ast.Expression {
	left := p.parseBinary(0)
	if !p.curTokenIs(token.ASSIGN) {
		return left
	}
	return p.finishAssign(left)
}

func (p *Parser) finishAssign(target ast.Expression) ast.Expression {
	p.checkAssignable(target)
	expr := &ast.AssignExpression{Token: p.curToken, Target: target, Operator: p.curToken.Lexeme}
	p.nextToken()
	expr.Value = p.parseExpression()
	expr.Span = target.GetSpan().Merge(expr.Value.GetSpan())
	return expr
}

func (p *Parser) checkAssignable(target ast.Expression) {
	switch target.(type) {
	case *ast.Identifier, *ast.IndexExpression, *ast.MemberExpression:
		return
	}
	p.failSpan(diagnostics.ErrP003, target.GetSpan(), target.String()+" is not assignable")
}

func (p *Parser) binaryTiers() [][]token.TokenType {
	return [][]token.TokenType{logicalOps, bitwiseOps, equalityOps, relationOps, shiftOps, additiveOps, multiplyOps}
}

// parseBinary climbs the binary tiers starting at tier.
func (p *Parser) parseBinary(tier int) ast.Expression {
	tiers := p.binaryTiers()
	if tier >= len(tiers) {
		return p.parseUnary()
	}
	left := p.parseBinary(tier + 1)
	for tokenIn(p.curToken.Type, tiers[tier]) {
		expr := &ast.InfixExpression{Token: p.curToken, Left: left, Operator: p.curToken.Lexeme}
		p.nextToken()
		expr.Right = p.parseBinary(tier + 1)
		expr.Span = left.GetSpan().Merge(expr.Right.GetSpan())
		left = expr
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.curToken.Type {
	case token.BANG, token.TILDE, token.PLUS, token.MINUS:
		expr := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
		p.nextToken()
		expr.Right = p.parseUnary()
		expr.Span = p.spanFrom(expr.Token)
		return expr
	case token.INCR, token.DECR:
		expr := &ast.UpdateExpression{Token: p.curToken, Operator: p.curToken.Lexeme, Prefix: true}
		p.nextToken()
		expr.Target = p.parseUnary()
		p.checkAssignable(expr.Target)
		expr.Span = p.spanFrom(expr.Token)
		return expr
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	left := p.parsePrimary()
	for {
		switch p.curToken.Type {
		case token.LPAREN:
			call := &ast.CallExpression{Token: p.curToken, Function: left}
			p.nextToken()
			call.Arguments = p.parseExpressionList(token.RPAREN)
			call.Span = left.GetSpan().Merge(p.prevToken.Span())
			left = call
		case token.LBRACKET:
			idx := &ast.IndexExpression{Token: p.curToken, Left: left}
			p.nextToken()
			idx.Index = p.parseExpression()
			p.expect(token.RBRACKET)
			idx.Span = left.GetSpan().Merge(p.prevToken.Span())
			left = idx
		case token.DOT:
			member := &ast.MemberExpression{Token: p.curToken, Object: left}
			p.nextToken()
			if !p.curTokenIs(token.IDENT) && keywordLexeme(p.curToken.Type) == "" {
				p.expect(token.IDENT)
			}
			member.Member = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
			p.nextToken()
			member.Span = left.GetSpan().Merge(p.prevToken.Span())
			left = member
		case token.INCR, token.DECR:
			p.checkAssignable(left)
			upd := &ast.UpdateExpression{Token: p.curToken, Operator: p.curToken.Lexeme, Target: left}
			p.nextToken()
			upd.Span = left.GetSpan().Merge(p.prevToken.Span())
			return upd
		default:
			return left
		}
	}
}

// parseExpressionList parses comma-separated expressions up to end, allowing
// a trailing comma. The end token is consumed.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}
	for !p.curTokenIs(end) {
		list = append(list, p.parseExpression())
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	p.expect(end)
	return list
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.curToken
	switch tok.Type {
	case token.IDENT:
		p.nextToken()
		return &ast.Identifier{Token: tok, Value: tok.Lexeme}
	case token.NUMBER:
		p.nextToken()
		return &ast.NumberLiteral{Token: tok, Value: tok.Literal.(float64)}
	case token.STRING:
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal.(string)}
	case token.TRUE, token.FALSE:
		p.nextToken()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Type == token.TRUE}
	case token.NULL:
		p.nextToken()
		return &ast.NullLiteral{Token: tok}
	case token.LPAREN:
		p.nextToken()
		expr := p.parseExpression()
		p.expect(token.RPAREN)
		return expr
	case token.LBRACKET:
		p.nextToken()
		arr := &ast.ArrayLiteral{Token: tok}
		arr.Elements = p.parseExpressionList(token.RBRACKET)
		arr.Span = p.spanFrom(tok)
		return arr
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.FN:
		return p.parseFunctionLiteral()
	}
	p.fail(diagnostics.ErrP002, tok, "Expected expression but found "+describe(tok))
	return nil
}

func (p *Parser) parseObjectLiteral() *ast.ObjectLiteral {
	obj := &ast.ObjectLiteral{Token: p.expect(token.LBRACE)}
	for !p.curTokenIs(token.RBRACE) {
		keyTok := p.curToken
		var key string
		switch keyTok.Type {
		case token.IDENT:
			key = keyTok.Lexeme
		case token.STRING:
			key = keyTok.Literal.(string)
		case token.NUMBER:
			key = (&ast.NumberLiteral{Value: keyTok.Literal.(float64)}).String()
		default:
			if key = keywordLexeme(keyTok.Type); key == "" {
				p.fail(diagnostics.ErrP001, keyTok, "Expected property name but found "+describe(keyTok))
			}
		}
		p.nextToken()
		p.expect(token.COLON)
		obj.Pairs = append(obj.Pairs, ast.ObjectPair{KeyToken: keyTok, Key: key, Value: p.parseExpression()})
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RBRACE)
	obj.Span = p.spanFrom(obj.Token)
	return obj
}

func (p *Parser) parseFunctionLiteral() *ast.FunctionLiteral {
	lit := &ast.FunctionLiteral{Token: p.expect(token.FN)}
	if p.curTokenIs(token.IDENT) {
		lit.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		p.nextToken()
	}
	lit.Parameters = p.parseFunctionParameters()
	lit.Body = p.parseBlockStatement()
	lit.Span = p.spanFrom(lit.Token)
	return lit
}

func tokenIn(t token.TokenType, set []token.TokenType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}
