package vm

import (
	"fmt"
	"math"

	"github.com/funvibe/envx/internal/ast"
	"github.com/funvibe/envx/internal/config"
	"github.com/funvibe/envx/internal/diagnostics"
)

// Compiler compiles an AST to a flat bytecode sequence in a single pass.
type Compiler struct {
	chunk *Chunk
	scope *scope

	// slots are unique across the whole compile unit
	nextSlot uint32
}

// NewCompiler creates a new compiler for top-level code
func NewCompiler() *Compiler {
	c := &Compiler{chunk: NewChunk()}
	c.beginScope(SCOPE_GLOBAL)
	return c
}

// Compile compiles a program. The first error aborts and no bytecode is
// returned; errors are *diagnostics.DiagnosticError.
func (c *Compiler) Compile(program *ast.Program) ([]byte, error) {
	for _, stmt := range program.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return nil, err
		}
	}
	c.emit(OP_LOAD_NULL)
	c.emit(OP_RETURN)
	if c.chunk.Len() > math.MaxInt32 {
		return nil, c.tooLarge()
	}
	return c.chunk.Code, nil
}

// compileFunction emits MAKE_FUNCTION with the body compiled in a fresh
// FUNCTION frame. The body binds `this` and then each parameter.
func (c *Compiler) compileFunction(node ast.Node, name string, params []*ast.Identifier, body *ast.BlockStatement) error {
	outer := c.chunk
	c.chunk = NewChunk()
	c.beginScope(SCOPE_FUNCTION)

	err := func() error {
		this, err := c.declare(node, config.ThisName, false, false)
		if err != nil {
			return err
		}
		c.emitU32(OP_BIND_PARAM, this.Slot)
		for _, p := range params {
			sym, err := c.declare(p, p.Value, false, false)
			if err != nil {
				return err
			}
			c.emitU32(OP_BIND_PARAM, sym.Slot)
		}
		for _, stmt := range body.Statements {
			if err := c.compileStatement(stmt); err != nil {
				return err
			}
		}
		c.emit(OP_LOAD_NULL)
		c.emit(OP_RETURN)
		return nil
	}()

	c.endScope()
	code := c.chunk.Code
	c.chunk = outer
	if err != nil {
		return err
	}
	if len(code) > math.MaxInt32 || len(params) > math.MaxInt32 {
		return c.tooLarge()
	}

	c.emitName(OP_MAKE_FUNCTION, name)
	c.chunk.WriteU32(uint32(len(params)))
	c.chunk.WriteU32(uint32(len(code)))
	c.chunk.WriteBytes(code)
	return nil
}

// compileLoad pushes the value bound to name.
func (c *Compiler) compileLoad(name string) {
	sym := c.resolve(name)
	if sym == nil || sym.IsGlobal {
		c.emitName(OP_LOAD_NAME, name)
		return
	}
	c.emitU32(OP_LOAD_FAST, sym.Slot)
	c.chunk.WriteCString(name)
}

// compileStore pops the top of stack into the binding named by ident.
func (c *Compiler) compileStore(ident *ast.Identifier) error {
	sym := c.resolve(ident.Value)
	switch {
	case sym == nil:
		c.emitName(OP_STORE_NAME, ident.Value)
	case sym.IsConst:
		return c.errorAt(diagnostics.ErrC004, ident, fmt.Sprintf("Assignment to constant variable '%s'", ident.Value))
	case sym.IsGlobal:
		c.emitName(OP_STORE_GLOBAL, ident.Value)
	default:
		c.emitU32(OP_STORE_FAST, sym.Slot)
	}
	return nil
}
