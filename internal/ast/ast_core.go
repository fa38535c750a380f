package ast

import (
	"strings"

	"github.com/funvibe/envx/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
	// GetSpan covers the node and all of its children.
	GetSpan() token.Span
	String() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string
	Statements []Statement
	Span       token.Span
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetToken() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].GetToken()
	}
	return token.Token{}
}
func (p *Program) GetSpan() token.Span { return p.Span }
func (p *Program) String() string {
	var out strings.Builder
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}

// DeclKind distinguishes var, const and local declarations.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclConst
	DeclLocal
)

func (k DeclKind) String() string {
	switch k {
	case DeclConst:
		return "const"
	case DeclLocal:
		return "local"
	}
	return "var"
}

// Declarator is one `name [= value]` entry of a declaration list.
type Declarator struct {
	Name  *Identifier
	Value Expression // nil when no initializer
}

// DeclarationStatement: var a = 1, b; | const c = 2; | local d;
type DeclarationStatement struct {
	Token        token.Token
	Kind         DeclKind
	Declarations []*Declarator
	Span         token.Span
}

func (ds *DeclarationStatement) statementNode()        {}
func (ds *DeclarationStatement) TokenLiteral() string  { return ds.Token.Lexeme }
func (ds *DeclarationStatement) GetToken() token.Token { return ds.Token }
func (ds *DeclarationStatement) GetSpan() token.Span   { return ds.Span }
func (ds *DeclarationStatement) String() string {
	parts := make([]string, len(ds.Declarations))
	for i, d := range ds.Declarations {
		if d.Value != nil {
			parts[i] = d.Name.String() + " = " + d.Value.String()
		} else {
			parts[i] = d.Name.String()
		}
	}
	return ds.Kind.String() + " " + strings.Join(parts, ", ") + ";"
}

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
	Span       token.Span
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }
func (es *ExpressionStatement) GetSpan() token.Span   { return es.Span }
func (es *ExpressionStatement) String() string        { return es.Expression.String() + ";" }

type EmptyStatement struct {
	Token token.Token
	Span  token.Span
}

func (es *EmptyStatement) statementNode()        {}
func (es *EmptyStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *EmptyStatement) GetToken() token.Token { return es.Token }
func (es *EmptyStatement) GetSpan() token.Span   { return es.Span }
func (es *EmptyStatement) String() string        { return ";" }

type BlockStatement struct {
	Token      token.Token // {
	Statements []Statement
	Span       token.Span
}

func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }
func (bs *BlockStatement) GetSpan() token.Span   { return bs.Span }
func (bs *BlockStatement) String() string {
	var out strings.Builder
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// FunctionStatement is a top-level `fn name(params) { body }` declaration.
type FunctionStatement struct {
	Token      token.Token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
	Span       token.Span
}

func (fs *FunctionStatement) statementNode()        {}
func (fs *FunctionStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token { return fs.Token }
func (fs *FunctionStatement) GetSpan() token.Span   { return fs.Span }
func (fs *FunctionStatement) String() string {
	return "fn " + fs.Name.String() + "(" + joinIdents(fs.Parameters) + ") " + fs.Body.String()
}

func joinIdents(ids []*Identifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.Value
	}
	return strings.Join(parts, ", ")
}
