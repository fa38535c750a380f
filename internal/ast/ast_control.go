package ast

import "github.com/funvibe/envx/internal/token"

type IfStatement struct {
	Token       token.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil without else
	Span        token.Span
}

func (is *IfStatement) statementNode()        {}
func (is *IfStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token { return is.Token }
func (is *IfStatement) GetSpan() token.Span   { return is.Span }
func (is *IfStatement) String() string {
	s := "if (" + is.Condition.String() + ") " + is.Consequence.String()
	if is.Alternative != nil {
		s += " else " + is.Alternative.String()
	}
	return s
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      Statement
	Span      token.Span
}

func (ws *WhileStatement) statementNode()        {}
func (ws *WhileStatement) TokenLiteral() string  { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token { return ws.Token }
func (ws *WhileStatement) GetSpan() token.Span   { return ws.Span }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

type DoWhileStatement struct {
	Token     token.Token
	Body      Statement
	Condition Expression
	Span      token.Span
}

func (dw *DoWhileStatement) statementNode()        {}
func (dw *DoWhileStatement) TokenLiteral() string  { return dw.Token.Lexeme }
func (dw *DoWhileStatement) GetToken() token.Token { return dw.Token }
func (dw *DoWhileStatement) GetSpan() token.Span   { return dw.Span }
func (dw *DoWhileStatement) String() string {
	return "do " + dw.Body.String() + " while (" + dw.Condition.String() + ");"
}

// ForStatement: for (init; cond; update) body. Every clause may be empty.
type ForStatement struct {
	Token     token.Token
	Init      Statement
	Condition Expression
	Update    Expression
	Body      Statement
	Span      token.Span
}

func (fs *ForStatement) statementNode()        {}
func (fs *ForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token { return fs.Token }
func (fs *ForStatement) GetSpan() token.Span   { return fs.Span }
func (fs *ForStatement) String() string {
	s := "for ("
	if fs.Init != nil {
		s += fs.Init.String()
	} else {
		s += ";"
	}
	s += " "
	if fs.Condition != nil {
		s += fs.Condition.String()
	}
	s += "; "
	if fs.Update != nil {
		s += fs.Update.String()
	}
	return s + ") " + fs.Body.String()
}

type BreakStatement struct {
	Token token.Token
	Span  token.Span
}

func (bs *BreakStatement) statementNode()        {}
func (bs *BreakStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token { return bs.Token }
func (bs *BreakStatement) GetSpan() token.Span   { return bs.Span }
func (bs *BreakStatement) String() string        { return "break;" }

type ContinueStatement struct {
	Token token.Token
	Span  token.Span
}

func (cs *ContinueStatement) statementNode()        {}
func (cs *ContinueStatement) TokenLiteral() string  { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token { return cs.Token }
func (cs *ContinueStatement) GetSpan() token.Span   { return cs.Span }
func (cs *ContinueStatement) String() string        { return "continue;" }

type ReturnStatement struct {
	Token       token.Token
	ReturnValue Expression // nil for bare return
	Span        token.Span
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }
func (rs *ReturnStatement) GetSpan() token.Span   { return rs.Span }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return;"
	}
	return "return " + rs.ReturnValue.String() + ";"
}
