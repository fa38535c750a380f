// Package envx embeds envx scripts in Go programs: load a script, read the
// environment it produces and call its functions.
package envx

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/funvibe/envx/internal/backend"
	"github.com/funvibe/envx/internal/logging"
	"github.com/funvibe/envx/internal/vm"
)

var log = logging.Get("embed")

// Env wraps a VM and the globals it accumulates across loads. It is not
// safe for concurrent use.
type Env struct {
	machine    *vm.VM
	marshaller *Marshaller
}

// Option configures an Env.
type Option func(*Env)

// WithOutput sends println output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Env) {
		e.machine.SetOutput(w)
	}
}

// New creates an empty environment.
func New(opts ...Option) *Env {
	e := &Env{
		machine:    vm.New(),
		marshaller: NewMarshaller(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load compiles and runs source. Globals from earlier loads, Set and Bind
// stay visible. The first lexer, parser or compiler diagnostic is returned
// as a *diagnostics.DiagnosticError.
func (e *Env) Load(file, source string) error {
	ctx := backend.Execute(file, source, &backend.VMBackend{VM: e.machine})
	if len(ctx.Errors) > 0 {
		return ctx.Errors[0]
	}
	log.Debugf("loaded %s: %d globals", file, len(ctx.Globals))
	return nil
}

// LoadFile reads and loads a script.
func (e *Env) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return e.Load(path, string(data))
}

// LoadBundle runs precompiled code.
func (e *Env) LoadBundle(b *vm.Bundle) error {
	if b == nil || len(b.Code) == 0 {
		return fmt.Errorf("empty bundle")
	}
	log.Debugf("bundle %s (%s)", b.ID, b.SourceFile)
	return e.machine.Run(b.Code)
}

// Get returns the plain value of a global: float64, string, bool,
// []any, map[string]any or nil. Undefined, private and non-representable
// names yield nil.
func (e *Env) Get(name string) any {
	return e.machine.Get(name)
}

// Call calls a global function with Go arguments and returns the plain
// result. It returns nil when the name is not callable or the call fails;
// use Invoke to see the failure.
func (e *Env) Call(name string, args ...any) any {
	result, err := e.Invoke(name, args...)
	if err != nil {
		log.Debugf("call %s: %s", name, err)
		return nil
	}
	return result
}

// Invoke is Call with errors. A script Error result is returned as an
// error; a missing name is not an error and yields nil.
func (e *Env) Invoke(name string, args ...any) (any, error) {
	values := make([]vm.Value, len(args))
	for i, a := range args {
		v, err := e.marshaller.ToValue(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		values[i] = v
	}
	result, err := e.machine.CallValue(name, values...)
	if err != nil {
		return nil, err
	}
	if result.IsError() {
		return nil, fmt.Errorf("%s: %s", name, result.String())
	}
	return vm.ToPlain(result), nil
}

// Export returns every exportable global as a plain value.
func (e *Env) Export() map[string]any {
	return e.machine.Globals()
}

// Bind exposes a Go function to scripts under name. Arguments convert to
// the function's parameter types; a trailing error result becomes a script
// Error value when non-nil.
func (e *Env) Bind(name string, fn any) error {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return fmt.Errorf("bind %s: %T is not a function", name, fn)
	}
	e.machine.Define(name, e.marshaller.Func(name, rv))
	return nil
}

// Set defines a global from a Go value. Structs become objects keyed by
// field name, or by the `envx` tag when present.
func (e *Env) Set(name string, value any) error {
	v, err := e.marshaller.ToValue(value)
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	e.machine.Define(name, v)
	return nil
}
