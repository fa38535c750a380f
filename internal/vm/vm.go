package vm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/logging"
)

var errStackUnderflow = errors.New("stack underflow")
var errUnknownOpcode = errors.New("unknown opcode")
var errTruncatedBytecode = errors.New("truncated bytecode")

var log = logging.Get("vm")

// InitialStackSize is the starting capacity of the operand stack
const InitialStackSize = 256

// VM is the virtual machine that executes bytecode
type VM struct {
	stack []Value

	// root is the global frame; frame is the frame currently executing.
	root  *Frame
	frame *Frame

	// types maps typeof names to descriptors for member dispatch.
	types map[string]*ObjType

	// universal members are available on every value.
	universal map[string]Value

	// builtins are the values seeded into the root frame, excluded from exports.
	builtins map[string]Value

	// Output writer for println (defaults to os.Stdout)
	out io.Writer
}

// New creates a VM whose root frame holds the builtins.
func New() *VM {
	vm := &VM{
		stack:     make([]Value, 0, InitialStackSize),
		root:      NewFrame(nil),
		types:     make(map[string]*ObjType),
		universal: make(map[string]Value),
		builtins:  make(map[string]Value),
		out:       os.Stdout,
	}
	vm.frame = vm.root
	vm.loadBuiltins()
	return vm
}

// SetOutput sets the writer println writes to
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
}

// Run executes top-level bytecode against the persistent root frame.
// Script faults are Error values; only host faults are returned.
func (vm *VM) Run(code []byte) (err error) {
	defer vm.recoverFault(&err, len(vm.stack))
	log.Debugf("run: %d bytes", len(code))

	vm.frame = vm.root
	if vm.execute(code) {
		vm.pop() // program result
	}
	return nil
}

// recoverFault turns a host-fault panic into a diagnostic and restores the
// stack to depth.
func (vm *VM) recoverFault(err *error, depth int) {
	r := recover()
	if r == nil {
		return
	}
	e, ok := r.(error)
	if !ok {
		panic(r)
	}
	var code diagnostics.ErrorCode
	switch {
	case errors.Is(e, errStackUnderflow):
		code = diagnostics.ErrR001
	case errors.Is(e, errUnknownOpcode):
		code = diagnostics.ErrR002
	case errors.Is(e, errTruncatedBytecode):
		code = diagnostics.ErrR003
	default:
		panic(r)
	}
	log.Errorf("host fault: %s", e)
	if depth <= len(vm.stack) {
		vm.stack = vm.stack[:depth]
	}
	vm.frame = vm.root
	*err = diagnostics.Wrap(code, e)
}

// Stack

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() Value {
	n := len(vm.stack)
	if n == 0 {
		panic(errStackUnderflow)
	}
	v := vm.stack[n-1]
	vm.stack[n-1] = Value{}
	vm.stack = vm.stack[:n-1]
	return v
}

func (vm *VM) peek(distance int) Value {
	n := len(vm.stack)
	if distance >= n {
		panic(errStackUnderflow)
	}
	return vm.stack[n-1-distance]
}

// popN discards n values.
func (vm *VM) popN(n int) {
	if n > len(vm.stack) {
		panic(errStackUnderflow)
	}
	vm.stack = vm.stack[:len(vm.stack)-n]
}

// StackDepth returns the number of values on the operand stack.
func (vm *VM) StackDepth() int {
	return len(vm.stack)
}

func (vm *VM) unknownOpcode(op byte, pc int) {
	panic(fmt.Errorf("%w 0x%02x at offset %d", errUnknownOpcode, op, pc))
}
