package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT       TokenType = "IDENT"
	NUMBER      TokenType = "NUMBER"
	STRING      TokenType = "STRING"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	BANG     TokenType = "!"
	TILDE    TokenType = "~"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	LSHIFT   TokenType = "<<"
	RSHIFT   TokenType = ">>"
	AMPER    TokenType = "&"
	PIPE     TokenType = "|"
	CARET    TokenType = "^"
	AND      TokenType = "&&"
	OR       TokenType = "||"
	INCR     TokenType = "++"
	DECR     TokenType = "--"

	LT     TokenType = "<"
	GT     TokenType = ">"
	LTE    TokenType = "<="
	GTE    TokenType = ">="
	EQ     TokenType = "=="
	NOT_EQ TokenType = "!="

	// Compound assignment
	PLUS_ASSIGN     TokenType = "+="
	MINUS_ASSIGN    TokenType = "-="
	ASTERISK_ASSIGN TokenType = "*="
	SLASH_ASSIGN    TokenType = "/="
	PERCENT_ASSIGN  TokenType = "%="
	LSHIFT_ASSIGN   TokenType = "<<="
	RSHIFT_ASSIGN   TokenType = ">>="
	AMPER_ASSIGN    TokenType = "&="
	PIPE_ASSIGN     TokenType = "|="
	CARET_ASSIGN    TokenType = "^="

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	QUESTION  TokenType = "?"
	DOT       TokenType = "."
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	IF       TokenType = "IF"
	ELSE     TokenType = "ELSE"
	DO       TokenType = "DO"
	WHILE    TokenType = "WHILE"
	FOR      TokenType = "FOR"
	BREAK    TokenType = "BREAK"
	CONTINUE TokenType = "CONTINUE"
	RETURN   TokenType = "RETURN"
	FN       TokenType = "FN"
	VAR      TokenType = "VAR"
	LOCAL    TokenType = "LOCAL"
	CONST    TokenType = "CONST"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"
	NULL     TokenType = "NULL"
)

var keywords = map[string]TokenType{
	"if":       IF,
	"else":     ELSE,
	"do":       DO,
	"while":    WHILE,
	"for":      FOR,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"fn":       FN,
	"var":      VAR,
	"local":    LOCAL,
	"const":    CONST,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether ident is reserved.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}

// Token is a single lexical unit with its source span.
// Lines and columns are 1-based; End* point at the last character of the lexeme.
type Token struct {
	Type      TokenType
	Lexeme    string
	Literal   interface{}
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

// Span is a source range used for diagnostics.
type Span struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// Span returns the token's source range.
func (t Token) Span() Span {
	endLine, endCol := t.EndLine, t.EndColumn
	if endLine == 0 {
		endLine, endCol = t.Line, t.Column
	}
	return Span{Line: t.Line, Column: t.Column, EndLine: endLine, EndColumn: endCol}
}

// Merge returns the smallest span covering s and other.
func (s Span) Merge(other Span) Span {
	out := s
	if other.Line < out.Line || (other.Line == out.Line && other.Column < out.Column) {
		out.Line, out.Column = other.Line, other.Column
	}
	if other.EndLine > out.EndLine || (other.EndLine == out.EndLine && other.EndColumn > out.EndColumn) {
		out.EndLine, out.EndColumn = other.EndLine, other.EndColumn
	}
	return out
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool {
	return s.Line == 0
}
