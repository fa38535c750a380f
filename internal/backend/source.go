package backend

import (
	"github.com/funvibe/envx/internal/lexer"
	"github.com/funvibe/envx/internal/parser"
	"github.com/funvibe/envx/internal/pipeline"
)

// Compile lexes, parses and compiles source. On success ctx.Bytecode is set;
// otherwise ctx.Errors holds the first diagnostic.
func Compile(file, source string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = file
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&CompilerProcessor{},
	).Run(ctx)
}

// Execute compiles source and runs it on b.
func Execute(file, source string, b Backend) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = file
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&CompilerProcessor{},
		NewExecutionProcessor(b),
	).Run(ctx)
}
