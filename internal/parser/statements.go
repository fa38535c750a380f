package parser

import (
	"github.com/funvibe/envx/internal/ast"
	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VAR:
		return p.parseDeclaration(ast.DeclVar)
	case token.CONST:
		return p.parseDeclaration(ast.DeclConst)
	case token.LOCAL:
		return p.parseDeclaration(ast.DeclLocal)
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.BREAK:
		start := p.expect(token.BREAK)
		p.expect(token.SEMICOLON)
		return &ast.BreakStatement{Token: start, Span: p.spanFrom(start)}
	case token.CONTINUE:
		start := p.expect(token.CONTINUE)
		p.expect(token.SEMICOLON)
		return &ast.ContinueStatement{Token: start, Span: p.spanFrom(start)}
	case token.RETURN:
		return p.parseReturnStatement()
	case token.SEMICOLON:
		start := p.expect(token.SEMICOLON)
		return &ast.EmptyStatement{Token: start, Span: p.spanFrom(start)}
	case token.FN:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression()
	p.expect(token.SEMICOLON)
	stmt.Span = p.spanFrom(stmt.Token)
	return stmt
}

// parseDeclaration parses `kind a [= x], b [= y];`.
func (p *Parser) parseDeclaration(kind ast.DeclKind) *ast.DeclarationStatement {
	stmt := &ast.DeclarationStatement{Token: p.curToken, Kind: kind}
	p.nextToken()

	for {
		nameTok := p.expect(token.IDENT)
		decl := &ast.Declarator{Name: &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}}
		if p.curTokenIs(token.ASSIGN) {
			p.nextToken()
			decl.Value = p.parseExpression()
		} else if kind == ast.DeclConst {
			p.fail(diagnostics.ErrP004, nameTok, "Missing initializer in const declaration '"+nameTok.Lexeme+"'")
		}
		stmt.Declarations = append(stmt.Declarations, decl)
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	p.expect(token.SEMICOLON)
	stmt.Span = p.spanFrom(stmt.Token)
	return stmt
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}
	p.nextToken()
	p.expect(token.LPAREN)
	stmt.Condition = p.parseExpression()
	p.expect(token.RPAREN)
	stmt.Consequence = p.parseStatement()
	if p.curTokenIs(token.ELSE) {
		p.nextToken()
		stmt.Alternative = p.parseStatement()
	}
	stmt.Span = p.spanFrom(stmt.Token)
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken()
	p.expect(token.LPAREN)
	stmt.Condition = p.parseExpression()
	p.expect(token.RPAREN)
	stmt.Body = p.parseStatement()
	stmt.Span = p.spanFrom(stmt.Token)
	return stmt
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	stmt := &ast.DoWhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Body = p.parseStatement()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	stmt.Condition = p.parseExpression()
	p.expect(token.RPAREN)
	p.expect(token.SEMICOLON)
	stmt.Span = p.spanFrom(stmt.Token)
	return stmt
}

func (p *Parser) parseForStatement() *ast.ForStatement {
	stmt := &ast.ForStatement{Token: p.curToken}
	p.nextToken()
	p.expect(token.LPAREN)

	switch p.curToken.Type {
	case token.SEMICOLON:
		p.nextToken()
	case token.VAR:
		stmt.Init = p.parseDeclaration(ast.DeclVar)
	case token.CONST:
		stmt.Init = p.parseDeclaration(ast.DeclConst)
	case token.LOCAL:
		stmt.Init = p.parseDeclaration(ast.DeclLocal)
	default:
		stmt.Init = p.parseExpressionStatement()
	}

	if !p.curTokenIs(token.SEMICOLON) {
		stmt.Condition = p.parseExpression()
	}
	p.expect(token.SEMICOLON)

	if !p.curTokenIs(token.RPAREN) {
		stmt.Update = p.parseExpression()
	}
	p.expect(token.RPAREN)

	stmt.Body = p.parseStatement()
	stmt.Span = p.spanFrom(stmt.Token)
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.expect(token.LBRACE)}
	block.Statements = []ast.Statement{}

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.expect(token.RBRACE)
		}
		block.Statements = append(block.Statements, p.parseStatement())
	}
	p.expect(token.RBRACE)
	block.Span = p.spanFrom(block.Token)
	return block
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	p.nextToken()
	if !p.curTokenIs(token.SEMICOLON) {
		stmt.ReturnValue = p.parseExpression()
	}
	p.expect(token.SEMICOLON)
	stmt.Span = p.spanFrom(stmt.Token)
	return stmt
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken}
	p.nextToken()
	nameTok := p.expect(token.IDENT)
	stmt.Name = &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}
	stmt.Parameters = p.parseFunctionParameters()
	stmt.Body = p.parseBlockStatement()
	stmt.Span = p.spanFrom(stmt.Token)
	return stmt
}

// parseFunctionParameters parses `(a, b, c)`.
func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	p.expect(token.LPAREN)
	params := []*ast.Identifier{}
	if p.curTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	for {
		tok := p.expect(token.IDENT)
		params = append(params, &ast.Identifier{Token: tok, Value: tok.Lexeme})
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RPAREN)
	return params
}
