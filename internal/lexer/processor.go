package lexer

import (
	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/pipeline"
	"github.com/funvibe/envx/internal/token"
)

type LexerProcessor struct{}

// Process tokenizes the whole source. The first ILLEGAL token aborts with a
// diagnostic and leaves TokenStream nil.
func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.SourceCode)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			msg, _ := tok.Literal.(string)
			ctx.AddError(diagnostics.NewError(lexErrorCode(msg), tok, msg))
			return ctx
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	ctx.TokenStream = tokens
	return ctx
}

func lexErrorCode(msg string) diagnostics.ErrorCode {
	switch msg {
	case "Invalid string", "Unterminated comment":
		return diagnostics.ErrL003
	case "Invalid number", "Invalid hex digit", "Invalid binary digit", "Invalid octal digit":
		return diagnostics.ErrL002
	}
	return diagnostics.ErrL001
}
