package backend

import (
	"errors"

	"github.com/funvibe/envx/internal/ast"
	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/pipeline"
	"github.com/funvibe/envx/internal/token"
	"github.com/funvibe/envx/internal/vm"
)

// CompilerProcessor compiles ctx.AstRoot into ctx.Bytecode.
type CompilerProcessor struct{}

func (cp *CompilerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program, ok := ctx.AstRoot.(*ast.Program)
	if !ok || program == nil {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrC003, token.Token{}, "compiler: no program to compile"))
		return ctx
	}

	code, err := vm.NewCompiler().Compile(program)
	if err != nil {
		addError(ctx, diagnostics.ErrC003, err)
		return ctx
	}
	ctx.Bytecode = code
	return ctx
}

// ExecutionProcessor implements pipeline.Processor to run a Backend
type ExecutionProcessor struct {
	Backend Backend
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't run execution
	if ctx.Bytecode == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	if err := p.Backend.Run(ctx); err != nil {
		addError(ctx, diagnostics.ErrR002, err)
	}
	return ctx
}

// addError records err, keeping its code when it is already a diagnostic.
func addError(ctx *pipeline.PipelineContext, fallback diagnostics.ErrorCode, err error) {
	var diag *diagnostics.DiagnosticError
	if errors.As(err, &diag) {
		ctx.AddError(diag)
		return
	}
	ctx.AddError(diagnostics.Wrap(fallback, err))
}
