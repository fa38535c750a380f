package vm

import (
	"math"

	"github.com/funvibe/envx/internal/ast"
	"github.com/funvibe/envx/internal/diagnostics"
)

// ScopeKind classifies a compile-time frame.
type ScopeKind int

const (
	SCOPE_GLOBAL ScopeKind = iota
	SCOPE_LOCAL            // block
	SCOPE_FUNCTION
	SCOPE_LOOP
)

// Symbol is a declared name. Globals are addressed by Name, everything else
// by Slot.
type Symbol struct {
	Name       string
	Slot       uint32
	IsConst    bool
	IsGlobal   bool
	IsFunction bool
}

// LoopContext tracks jump targets for break/continue.
type LoopContext struct {
	continueTarget int   // -1 until known; then continue jumps straight back
	continueJumps  []int // forward continue jumps to patch
	breakJumps     []int // break jumps to patch at loop exit
}

type scope struct {
	kind    ScopeKind
	symbols map[string]*Symbol
	parent  *scope
	loop    *LoopContext // set for SCOPE_LOOP
}

func (c *Compiler) beginScope(kind ScopeKind) *scope {
	c.scope = &scope{kind: kind, symbols: make(map[string]*Symbol), parent: c.scope}
	return c.scope
}

func (c *Compiler) endScope() {
	c.scope = c.scope.parent
}

// resolve finds the nearest symbol named name.
func (c *Compiler) resolve(name string) *Symbol {
	for s := c.scope; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// declare adds name to the current frame. Non-global symbols get a fresh slot.
func (c *Compiler) declare(node ast.Node, name string, isConst, isFunction bool) (*Symbol, error) {
	if _, exists := c.scope.symbols[name]; exists {
		return nil, c.errorAt(diagnostics.ErrC001, node, "Identifier '"+name+"' has already been declared")
	}
	if sym := c.resolve(name); sym != nil && sym.IsFunction {
		return nil, c.errorAt(diagnostics.ErrC001, node, "Identifier '"+name+"' shadows function '"+name+"'")
	}
	sym := &Symbol{Name: name, IsConst: isConst, IsFunction: isFunction}
	if c.scope.kind == SCOPE_GLOBAL {
		sym.IsGlobal = true
	} else {
		sym.Slot = c.allocSlot()
	}
	c.scope.symbols[name] = sym
	return sym, nil
}

func (c *Compiler) allocSlot() uint32 {
	slot := c.nextSlot
	c.nextSlot++
	return slot
}

// inFunction reports whether the current frame is a function body or nested in one.
func (c *Compiler) inFunction() bool {
	for s := c.scope; s != nil; s = s.parent {
		if s.kind == SCOPE_FUNCTION {
			return true
		}
	}
	return false
}

// enclosingLoop finds the innermost loop without crossing a function boundary.
func (c *Compiler) enclosingLoop() *LoopContext {
	for s := c.scope; s != nil; s = s.parent {
		switch s.kind {
		case SCOPE_LOOP:
			return s.loop
		case SCOPE_FUNCTION:
			return nil
		}
	}
	return nil
}

// emit helpers

func (c *Compiler) emit(op Opcode) {
	c.chunk.WriteOp(op)
}

func (c *Compiler) emitU32(op Opcode, v uint32) {
	c.chunk.WriteOp(op)
	c.chunk.WriteU32(v)
}

func (c *Compiler) emitName(op Opcode, name string) {
	c.chunk.WriteOp(op)
	c.chunk.WriteCString(name)
}

// emitJump writes a jump with a placeholder offset and returns the opcode position.
func (c *Compiler) emitJump(op Opcode) int {
	pos := c.chunk.Len()
	c.chunk.WriteOp(op)
	c.chunk.WriteI32(0)
	return pos
}

// patchJump points the jump at pos to the current end of code.
func (c *Compiler) patchJump(pos int) error {
	return c.patchJumpTo(pos, c.chunk.Len())
}

func (c *Compiler) patchJumpTo(pos, target int) error {
	offset := target - pos
	if offset > math.MaxInt32 || offset < math.MinInt32 {
		return c.tooLarge()
	}
	c.chunk.PatchI32(pos+1, int32(offset))
	return nil
}

// emitLoop emits a backward jump to target
func (c *Compiler) emitLoop(target int) error {
	pos := c.emitJump(OP_JUMP)
	return c.patchJumpTo(pos, target)
}

func (c *Compiler) errorAt(code diagnostics.ErrorCode, node ast.Node, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewSpanError(code, node.GetSpan(), msg)
}

func (c *Compiler) tooLarge() *diagnostics.DiagnosticError {
	return &diagnostics.DiagnosticError{Code: diagnostics.ErrC005, Message: "Code too large"}
}
