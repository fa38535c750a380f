package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/envx/internal/token"
)

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) GetSpan() token.Span   { return i.Token.Span() }
func (i *Identifier) String() string        { return i.Value }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()       {}
func (nl *NumberLiteral) TokenLiteral() string  { return nl.Token.Lexeme }
func (nl *NumberLiteral) GetToken() token.Token { return nl.Token }
func (nl *NumberLiteral) GetSpan() token.Span   { return nl.Token.Span() }
func (nl *NumberLiteral) String() string {
	return strconv.FormatFloat(nl.Value, 'g', -1, 64)
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) GetSpan() token.Span   { return sl.Token.Span() }
func (sl *StringLiteral) String() string        { return strconv.Quote(sl.Value) }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()       {}
func (b *BooleanLiteral) TokenLiteral() string  { return b.Token.Lexeme }
func (b *BooleanLiteral) GetToken() token.Token { return b.Token }
func (b *BooleanLiteral) GetSpan() token.Span   { return b.Token.Span() }
func (b *BooleanLiteral) String() string        { return b.Token.Lexeme }

type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) expressionNode()       {}
func (n *NullLiteral) TokenLiteral() string  { return n.Token.Lexeme }
func (n *NullLiteral) GetToken() token.Token { return n.Token }
func (n *NullLiteral) GetSpan() token.Span   { return n.Token.Span() }
func (n *NullLiteral) String() string        { return "null" }

type ArrayLiteral struct {
	Token    token.Token // [
	Elements []Expression
	Span     token.Span
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }
func (al *ArrayLiteral) GetSpan() token.Span   { return al.Span }
func (al *ArrayLiteral) String() string {
	return "[" + joinExprs(al.Elements) + "]"
}

// ObjectPair is one `key: value` entry. Keys are identifiers, strings or numbers
// and are always stored as strings.
type ObjectPair struct {
	KeyToken token.Token
	Key      string
	Value    Expression
}

type ObjectLiteral struct {
	Token token.Token // {
	Pairs []ObjectPair
	Span  token.Span
}

func (ol *ObjectLiteral) expressionNode()       {}
func (ol *ObjectLiteral) TokenLiteral() string  { return ol.Token.Lexeme }
func (ol *ObjectLiteral) GetToken() token.Token { return ol.Token }
func (ol *ObjectLiteral) GetSpan() token.Span   { return ol.Span }
func (ol *ObjectLiteral) String() string {
	parts := make([]string, len(ol.Pairs))
	for i, p := range ol.Pairs {
		parts[i] = p.Key + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FunctionLiteral is a function expression, legal anywhere an expression is.
type FunctionLiteral struct {
	Token      token.Token
	Name       *Identifier // optional
	Parameters []*Identifier
	Body       *BlockStatement
	Span       token.Span
}

func (fl *FunctionLiteral) expressionNode()       {}
func (fl *FunctionLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token { return fl.Token }
func (fl *FunctionLiteral) GetSpan() token.Span   { return fl.Span }
func (fl *FunctionLiteral) String() string {
	name := ""
	if fl.Name != nil {
		name = " " + fl.Name.Value
	}
	return "fn" + name + "(" + joinIdents(fl.Parameters) + ") " + fl.Body.String()
}

type CallExpression struct {
	Token     token.Token // (
	Function  Expression
	Arguments []Expression
	Span      token.Span
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) GetSpan() token.Span   { return ce.Span }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExprs(ce.Arguments) + ")"
}

type IndexExpression struct {
	Token token.Token // [
	Left  Expression
	Index Expression
	Span  token.Span
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }
func (ie *IndexExpression) GetSpan() token.Span   { return ie.Span }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

// MemberExpression: object.member
type MemberExpression struct {
	Token  token.Token // .
	Object Expression
	Member *Identifier
	Span   token.Span
}

func (me *MemberExpression) expressionNode()       {}
func (me *MemberExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token { return me.Token }
func (me *MemberExpression) GetSpan() token.Span   { return me.Span }
func (me *MemberExpression) String() string {
	return me.Object.String() + "." + me.Member.Value
}

// PrefixExpression: !x, ~x, +x, -x
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
	Span     token.Span
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) GetSpan() token.Span   { return pe.Span }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// UpdateExpression: ++x, --x, x++, x--
type UpdateExpression struct {
	Token    token.Token
	Operator string // "++" or "--"
	Prefix   bool
	Target   Expression
	Span     token.Span
}

func (ue *UpdateExpression) expressionNode()       {}
func (ue *UpdateExpression) TokenLiteral() string  { return ue.Token.Lexeme }
func (ue *UpdateExpression) GetToken() token.Token { return ue.Token }
func (ue *UpdateExpression) GetSpan() token.Span   { return ue.Span }
func (ue *UpdateExpression) String() string {
	if ue.Prefix {
		return "(" + ue.Operator + ue.Target.String() + ")"
	}
	return "(" + ue.Target.String() + ue.Operator + ")"
}

type InfixExpression struct {
	Token    token.Token // operator
	Left     Expression
	Operator string
	Right    Expression
	Span     token.Span
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) GetSpan() token.Span   { return ie.Span }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// AssignExpression covers `=` and every compound operator.
type AssignExpression struct {
	Token    token.Token
	Target   Expression
	Operator string // "=", "+=", "<<=", ...
	Value    Expression
	Span     token.Span
}

func (ae *AssignExpression) expressionNode()       {}
func (ae *AssignExpression) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token { return ae.Token }
func (ae *AssignExpression) GetSpan() token.Span   { return ae.Span }
func (ae *AssignExpression) String() string {
	return "(" + ae.Target.String() + " " + ae.Operator + " " + ae.Value.String() + ")"
}

// BinaryOperator returns the arithmetic operator of a compound assignment
// ("+" for "+="), or "" for plain assignment.
func (ae *AssignExpression) BinaryOperator() string {
	if ae.Operator == "=" {
		return ""
	}
	return strings.TrimSuffix(ae.Operator, "=")
}

// ConditionalExpression: cond ? a : b
type ConditionalExpression struct {
	Token       token.Token // ?
	Condition   Expression
	Consequence Expression
	Alternative Expression
	Span        token.Span
}

func (ce *ConditionalExpression) expressionNode()       {}
func (ce *ConditionalExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *ConditionalExpression) GetToken() token.Token { return ce.Token }
func (ce *ConditionalExpression) GetSpan() token.Span   { return ce.Span }
func (ce *ConditionalExpression) String() string {
	return "(" + ce.Condition.String() + " ? " + ce.Consequence.String() + " : " + ce.Alternative.String() + ")"
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
