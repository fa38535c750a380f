// Package backend provides the pipeline stages that compile and execute
// a parsed program.
package backend

import (
	"github.com/funvibe/envx/internal/pipeline"
)

// Backend executes the bytecode held in the pipeline context
type Backend interface {
	// Run executes ctx.Bytecode and fills ctx.Globals
	Run(ctx *pipeline.PipelineContext) error

	// Name returns the backend name for display
	Name() string
}
