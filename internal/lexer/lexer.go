package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/envx/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number

	// position of the previously examined char, used as the end of a token
	prevLine   int
	prevColumn int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	l.prevLine, l.prevColumn = l.line, l.column
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// NextToken scans the next token. Lexical errors are reported as ILLEGAL
// tokens whose Literal holds the message.
func (l *Lexer) NextToken() token.Token {
	if tok, ok := l.skipWhitespace(); !ok {
		return tok
	}

	line, col := l.line, l.column
	start := l.position

	if l.atEOF() {
		return token.Token{Type: token.EOF, Lexeme: "", Line: line, Column: col, EndLine: line, EndColumn: col}
	}

	switch {
	case isLetter(l.ch):
		return l.readIdentifier()
	case isDigit(l.ch):
		return l.readNumber()
	case l.ch == '"':
		return l.readString()
	}

	var tt token.TokenType
	switch l.ch {
	case '(':
		tt = token.LPAREN
	case ')':
		tt = token.RPAREN
	case '[':
		tt = token.LBRACKET
	case ']':
		tt = token.RBRACKET
	case '{':
		tt = token.LBRACE
	case '}':
		tt = token.RBRACE
	case '.':
		tt = token.DOT
	case '?':
		tt = token.QUESTION
	case ',':
		tt = token.COMMA
	case ':':
		tt = token.COLON
	case ';':
		tt = token.SEMICOLON
	case '~':
		tt = token.TILDE
	case '*':
		tt = l.either('=', token.ASTERISK_ASSIGN, token.ASTERISK)
	case '/':
		tt = l.either('=', token.SLASH_ASSIGN, token.SLASH)
	case '%':
		tt = l.either('=', token.PERCENT_ASSIGN, token.PERCENT)
	case '^':
		tt = l.either('=', token.CARET_ASSIGN, token.CARET)
	case '=':
		tt = l.either('=', token.EQ, token.ASSIGN)
	case '!':
		tt = l.either('=', token.NOT_EQ, token.BANG)
	case '+':
		if l.peekChar() == '+' {
			l.readChar()
			tt = token.INCR
		} else {
			tt = l.either('=', token.PLUS_ASSIGN, token.PLUS)
		}
	case '-':
		if l.peekChar() == '-' {
			l.readChar()
			tt = token.DECR
		} else {
			tt = l.either('=', token.MINUS_ASSIGN, token.MINUS)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tt = token.AND
		} else {
			tt = l.either('=', token.AMPER_ASSIGN, token.AMPER)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tt = token.OR
		} else {
			tt = l.either('=', token.PIPE_ASSIGN, token.PIPE)
		}
	case '<':
		if l.peekChar() == '<' {
			l.readChar()
			tt = l.either('=', token.LSHIFT_ASSIGN, token.LSHIFT)
		} else {
			tt = l.either('=', token.LTE, token.LT)
		}
	case '>':
		if l.peekChar() == '>' {
			l.readChar()
			tt = l.either('=', token.RSHIFT_ASSIGN, token.RSHIFT)
		} else {
			tt = l.either('=', token.GTE, token.GT)
		}
	default:
		tok := l.illegal(line, col, fmt.Sprintf("Unexpected character %q", l.ch))
		l.readChar()
		return tok
	}

	endLine, endCol := l.line, l.column
	lexeme := l.input[start:l.readPosition]
	l.readChar()
	return token.Token{Type: tt, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col, EndLine: endLine, EndColumn: endCol}
}

// either consumes next and returns yes when the following char is next.
func (l *Lexer) either(next rune, yes, no token.TokenType) token.TokenType {
	if l.peekChar() == next {
		l.readChar()
		return yes
	}
	return no
}

func (l *Lexer) illegal(line, col int, msg string) token.Token {
	return token.Token{Type: token.ILLEGAL, Lexeme: string(l.ch), Literal: msg, Line: line, Column: col, EndLine: line, EndColumn: col}
}

// skipWhitespace skips blanks and // or /* */ comments. It returns ok=false
// with an ILLEGAL token for an unterminated block comment.
func (l *Lexer) skipWhitespace() (token.Token, bool) {
	for !l.atEOF() {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			line, col := l.line, l.column
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') {
				if l.atEOF() {
					return l.illegal(line, col, "Unterminated comment"), false
				}
				l.readChar()
			}
			l.readChar()
			l.readChar()
		default:
			return token.Token{}, true
		}
	}
	return token.Token{}, true
}

func (l *Lexer) readIdentifier() token.Token {
	line, col := l.line, l.column
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	ident := l.input[start:l.position]
	return token.Token{
		Type:      token.LookupIdent(ident),
		Lexeme:    ident,
		Literal:   ident,
		Line:      line,
		Column:    col,
		EndLine:   l.prevLine,
		EndColumn: l.prevColumn,
	}
}

func (l *Lexer) readNumber() token.Token {
	line, col := l.line, l.column
	start := l.position

	if l.ch == '0' {
		var base int
		var valid func(rune) bool
		var name string
		switch l.peekChar() {
		case 'x', 'X':
			base, valid, name = 16, isHexDigit, "hex"
		case 'b', 'B':
			base, valid, name = 2, isBinDigit, "binary"
		case 'o', 'O':
			base, valid, name = 8, isOctDigit, "octal"
		}
		if base != 0 {
			l.readChar() // 0
			l.readChar() // prefix
			if !valid(l.ch) {
				return l.illegal(line, col, fmt.Sprintf("Invalid %s digit", name))
			}
			digits := l.position
			for valid(l.ch) {
				l.readChar()
			}
			n, err := strconv.ParseUint(l.input[digits:l.position], base, 64)
			if err != nil {
				return l.illegal(line, col, "Invalid number")
			}
			return l.numberToken(float64(n), start, line, col)
		}
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	f, err := strconv.ParseFloat(l.input[start:l.position], 64)
	if err != nil {
		return l.illegal(line, col, "Invalid number")
	}
	return l.numberToken(f, start, line, col)
}

func (l *Lexer) numberToken(v float64, start, line, col int) token.Token {
	return token.Token{
		Type:      token.NUMBER,
		Lexeme:    l.input[start:l.position],
		Literal:   v,
		Line:      line,
		Column:    col,
		EndLine:   l.prevLine,
		EndColumn: l.prevColumn,
	}
}

func (l *Lexer) readString() token.Token {
	line, col := l.line, l.column
	start := l.position
	var sb strings.Builder

	l.readChar() // opening quote
	for l.ch != '"' {
		if l.atEOF() || l.ch == '\n' {
			return l.illegal(line, col, "Invalid string")
		}
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() {
				return l.illegal(line, col, "Invalid string")
			}
			switch l.ch {
			case 'b':
				sb.WriteByte('\b')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteRune(l.ch)
			}
		} else {
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}
	endLine, endCol := l.line, l.column
	l.readChar() // closing quote

	return token.Token{
		Type:      token.STRING,
		Lexeme:    l.input[start:l.position],
		Literal:   sb.String(),
		Line:      line,
		Column:    col,
		EndLine:   endLine,
		EndColumn: endCol,
	}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func isBinDigit(ch rune) bool {
	return ch == '0' || ch == '1'
}

func isOctDigit(ch rune) bool {
	return '0' <= ch && ch <= '7'
}
