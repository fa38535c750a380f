package vm

import (
	"github.com/funvibe/envx/internal/ast"
	"github.com/funvibe/envx/internal/diagnostics"
)

// compileLoopBody compiles body inside a LOOP frame bound to loop.
func (c *Compiler) compileLoopBody(body ast.Statement, loop *LoopContext) error {
	s := c.beginScope(SCOPE_LOOP)
	s.loop = loop
	defer c.endScope()
	return c.compileStatement(body)
}

// patchContinues points the pending continue jumps at continueAt.
func (c *Compiler) patchContinues(loop *LoopContext, continueAt int) error {
	for _, pos := range loop.continueJumps {
		if err := c.patchJumpTo(pos, continueAt); err != nil {
			return err
		}
	}
	loop.continueJumps = nil
	return nil
}

// patchBreaks points the break jumps at the current end of code.
func (c *Compiler) patchBreaks(loop *LoopContext) error {
	for _, pos := range loop.breakJumps {
		if err := c.patchJump(pos); err != nil {
			return err
		}
	}
	loop.breakJumps = nil
	return nil
}

// while (cond) body
//
//	start: cond; POP_JUMP_IF_FALSE exit; body; JUMP start; exit:
func (c *Compiler) compileWhileStatement(s *ast.WhileStatement) error {
	start := c.chunk.Len()
	if err := c.compileExpression(s.Condition); err != nil {
		return err
	}
	exitJump := c.emitJump(OP_POP_JUMP_IF_FALSE)

	loop := &LoopContext{continueTarget: start}
	if err := c.compileLoopBody(s.Body, loop); err != nil {
		return err
	}
	if err := c.emitLoop(start); err != nil {
		return err
	}
	if err := c.patchJump(exitJump); err != nil {
		return err
	}
	return c.patchBreaks(loop)
}

// do body while (cond);
//
//	start: body; cond; POP_JUMP_IF_FALSE exit; JUMP start; exit:
//
// continue jumps back to start and runs the body again without testing cond.
func (c *Compiler) compileDoWhileStatement(s *ast.DoWhileStatement) error {
	start := c.chunk.Len()
	loop := &LoopContext{continueTarget: start}
	if err := c.compileLoopBody(s.Body, loop); err != nil {
		return err
	}
	if err := c.compileExpression(s.Condition); err != nil {
		return err
	}
	exitJump := c.emitJump(OP_POP_JUMP_IF_FALSE)
	if err := c.emitLoop(start); err != nil {
		return err
	}
	if err := c.patchJump(exitJump); err != nil {
		return err
	}
	return c.patchBreaks(loop)
}

// for (init; cond; step) body
//
//	init; start: cond; POP_JUMP_IF_FALSE exit; body; step: step; POP_TOP; JUMP start; exit:
//
// Declarations in init belong to the enclosing frame.
func (c *Compiler) compileForStatement(s *ast.ForStatement) error {
	if s.Init != nil {
		if err := c.compileStatement(s.Init); err != nil {
			return err
		}
	}

	start := c.chunk.Len()
	exitJump := -1
	if s.Condition != nil {
		if err := c.compileExpression(s.Condition); err != nil {
			return err
		}
		exitJump = c.emitJump(OP_POP_JUMP_IF_FALSE)
	}

	loop := &LoopContext{continueTarget: -1}
	if err := c.compileLoopBody(s.Body, loop); err != nil {
		return err
	}
	if err := c.patchContinues(loop, c.chunk.Len()); err != nil {
		return err
	}
	if s.Update != nil {
		if err := c.compileExpression(s.Update); err != nil {
			return err
		}
		c.emit(OP_POP_TOP)
	}
	if err := c.emitLoop(start); err != nil {
		return err
	}
	if exitJump >= 0 {
		if err := c.patchJump(exitJump); err != nil {
			return err
		}
	}
	return c.patchBreaks(loop)
}

func (c *Compiler) compileBreakStatement(s *ast.BreakStatement) error {
	loop := c.enclosingLoop()
	if loop == nil {
		return c.errorAt(diagnostics.ErrC003, s, "'break' outside of loop")
	}
	loop.breakJumps = append(loop.breakJumps, c.emitJump(OP_JUMP))
	return nil
}

func (c *Compiler) compileContinueStatement(s *ast.ContinueStatement) error {
	loop := c.enclosingLoop()
	if loop == nil {
		return c.errorAt(diagnostics.ErrC003, s, "'continue' outside of loop")
	}
	if loop.continueTarget >= 0 {
		return c.emitLoop(loop.continueTarget)
	}
	loop.continueJumps = append(loop.continueJumps, c.emitJump(OP_JUMP))
	return nil
}

func (c *Compiler) compileReturnStatement(s *ast.ReturnStatement) error {
	if !c.inFunction() {
		return c.errorAt(diagnostics.ErrC003, s, "'return' outside of function")
	}
	if s.ReturnValue != nil {
		if err := c.compileExpression(s.ReturnValue); err != nil {
			return err
		}
	} else {
		c.emit(OP_LOAD_NULL)
	}
	c.emit(OP_RETURN)
	return nil
}
