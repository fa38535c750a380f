package diagnostics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/envx/internal/token"
)

// ErrorCode identifies a diagnostic. The first letter names the stage:
// L lexer, P parser, C compiler, R runtime.
type ErrorCode string

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // unexpected character
	ErrL002 ErrorCode = "L002" // malformed number
	ErrL003 ErrorCode = "L003" // unterminated string

	// Parser
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // expected expression
	ErrP003 ErrorCode = "P003" // not assignable
	ErrP004 ErrorCode = "P004" // missing initializer

	// Compiler
	ErrC001 ErrorCode = "C001" // redeclaration
	ErrC002 ErrorCode = "C002" // declaration in wrong scope
	ErrC003 ErrorCode = "C003" // misplaced control statement
	ErrC004 ErrorCode = "C004" // assignment to constant
	ErrC005 ErrorCode = "C005" // code too large

	// Runtime (host faults only; script faults are Error values)
	ErrR001 ErrorCode = "R001" // stack underflow
	ErrR002 ErrorCode = "R002" // unknown opcode
	ErrR003 ErrorCode = "R003" // truncated bytecode
)

// ContextLines is the number of source lines shown around an error span.
const ContextLines = 3

// DiagnosticError is a fatal pipeline error with enough context to render
// the offending source lines.
type DiagnosticError struct {
	Code    ErrorCode
	File    string
	Source  string
	Token   token.Token
	Span    token.Span
	Message string

	// Cause is the underlying error for host faults, if any.
	Cause error
}

// NewError creates a diagnostic anchored at tok.
func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Span: tok.Span(), Message: message}
}

// NewSpanError creates a diagnostic covering span.
func NewSpanError(code ErrorCode, span token.Span, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Token:   token.Token{Line: span.Line, Column: span.Column, EndLine: span.EndLine, EndColumn: span.EndColumn},
		Span:    span,
		Message: message,
	}
}

// Kind is the error class printed in the header line.
func (e *DiagnosticError) Kind() string {
	if e.Code == "" {
		return "Error"
	}
	switch e.Code[0] {
	case 'L', 'P':
		return "SyntaxError"
	case 'C':
		return "CompileError"
	case 'R':
		return "RuntimeError"
	}
	return "Error"
}

func (e *DiagnosticError) Error() string {
	return e.Render(false)
}

func (e *DiagnosticError) Unwrap() error {
	return e.Cause
}

// Wrap creates a span-less diagnostic around a Go error.
func Wrap(code ErrorCode, err error) *DiagnosticError {
	return &DiagnosticError{Code: code, Message: err.Error(), Cause: err}
}

// Header returns the first line of the rendering, without source context.
func (e *DiagnosticError) Header() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	if e.Span.IsZero() {
		return fmt.Sprintf("%s: %s at %s", e.Kind(), e.Message, file)
	}
	return fmt.Sprintf("%s: %s at %s:%d:%d", e.Kind(), e.Message, file, e.Span.Line, e.Span.Column)
}

// Render formats the error header followed by the surrounding source lines.
// Lines inside the error span are marked with " > ".
func (e *DiagnosticError) Render(color bool) string {
	var sb strings.Builder
	if color {
		sb.WriteString(ansiRed + ansiBold + e.Header() + ansiReset)
	} else {
		sb.WriteString(e.Header())
	}
	if e.Source == "" || e.Span.IsZero() {
		return sb.String()
	}

	lines := strings.Split(e.Source, "\n")
	endLine := e.Span.EndLine
	if endLine < e.Span.Line {
		endLine = e.Span.Line
	}
	start := max(0, e.Span.Line-1-ContextLines)
	end := min(len(lines), endLine+ContextLines)
	width := len(strconv.Itoa(end))

	for i := start; i < end; i++ {
		sb.WriteByte('\n')
		num := strconv.Itoa(i + 1)
		marked := i+1 >= e.Span.Line && i+1 <= endLine
		line := strings.TrimRight(lines[i], "\r")
		prefix := strings.Repeat(" ", width-len(num)) + num + " | "
		if marked {
			if color {
				sb.WriteString(ansiBold + prefix + ansiRed + " > " + ansiReset + line)
			} else {
				sb.WriteString(prefix + " > " + line)
			}
		} else {
			sb.WriteString(prefix + "   " + line)
		}
	}
	return sb.String()
}

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)
