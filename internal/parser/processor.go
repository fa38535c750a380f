package parser

import (
	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/pipeline"
	"github.com/funvibe/envx/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "parser: token stream is nil"))
		return ctx
	}

	parser := New(ctx.TokenStream, ctx)
	program := parser.ParseProgram()
	if program == nil {
		// Errors are already added to the context by the parser instance.
		return ctx
	}
	program.File = ctx.FilePath
	ctx.AstRoot = program
	return ctx
}
