package pipeline

import (
	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/token"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the artifacts of every stage from source text to
// executed globals. Each stage fills its own field.
type PipelineContext struct {
	SourceCode string
	FilePath   string

	TokenStream []token.Token
	AstRoot     interface{}
	Bytecode    []byte

	// Globals is the exported plain-value environment after execution.
	Globals map[string]interface{}

	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(sourceCode string) *PipelineContext {
	return &PipelineContext{SourceCode: sourceCode}
}

// AddError attaches file and source context to err and records it.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	if err.Source == "" {
		err.Source = ctx.SourceCode
	}
	ctx.Errors = append(ctx.Errors, err)
}
