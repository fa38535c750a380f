package backend

import (
	"io"

	"github.com/funvibe/envx/internal/pipeline"
	"github.com/funvibe/envx/internal/vm"
)

// VMBackend runs bytecode on a stack VM. The VM is kept so hosts can query
// and call into the environment after the run.
type VMBackend struct {
	VM *vm.VM
}

// NewVMBackend creates a backend with a fresh VM. A nil out keeps stdout.
func NewVMBackend(out io.Writer) *VMBackend {
	machine := vm.New()
	if out != nil {
		machine.SetOutput(out)
	}
	return &VMBackend{VM: machine}
}

func (b *VMBackend) Name() string {
	return "vm"
}

func (b *VMBackend) Run(ctx *pipeline.PipelineContext) error {
	if err := b.VM.Run(ctx.Bytecode); err != nil {
		return err
	}
	ctx.Globals = b.VM.Globals()
	return nil
}
