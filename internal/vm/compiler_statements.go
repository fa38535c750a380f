package vm

import (
	"fmt"

	"github.com/funvibe/envx/internal/ast"
	"github.com/funvibe/envx/internal/diagnostics"
)

func (c *Compiler) compileStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		if err := c.compileExpression(s.Expression); err != nil {
			return err
		}
		c.emit(OP_POP_TOP)
		return nil
	case *ast.DeclarationStatement:
		return c.compileDeclaration(s)
	case *ast.FunctionStatement:
		return c.compileFunctionStatement(s)
	case *ast.BlockStatement:
		return c.compileBlock(s)
	case *ast.IfStatement:
		return c.compileIfStatement(s)
	case *ast.WhileStatement:
		return c.compileWhileStatement(s)
	case *ast.DoWhileStatement:
		return c.compileDoWhileStatement(s)
	case *ast.ForStatement:
		return c.compileForStatement(s)
	case *ast.BreakStatement:
		return c.compileBreakStatement(s)
	case *ast.ContinueStatement:
		return c.compileContinueStatement(s)
	case *ast.ReturnStatement:
		return c.compileReturnStatement(s)
	case *ast.EmptyStatement:
		return nil
	}
	return c.errorAt(diagnostics.ErrC003, stmt, fmt.Sprintf("unsupported statement %T", stmt))
}

func (c *Compiler) compileDeclaration(s *ast.DeclarationStatement) error {
	switch s.Kind {
	case ast.DeclVar:
		if c.scope.kind != SCOPE_GLOBAL {
			return c.errorAt(diagnostics.ErrC002, s, "'var' declarations are only allowed at the top level")
		}
	case ast.DeclLocal:
		if !c.inFunction() {
			return c.errorAt(diagnostics.ErrC002, s, "'local' declarations are only allowed inside a function")
		}
	}

	for _, d := range s.Declarations {
		// The initializer sees the bindings visible before this declaration.
		if d.Value != nil {
			if err := c.compileExpression(d.Value); err != nil {
				return err
			}
		} else {
			c.emit(OP_LOAD_NULL)
		}
		sym, err := c.declare(d.Name, d.Name.Value, s.Kind == ast.DeclConst, false)
		if err != nil {
			return err
		}
		c.emitDefine(sym)
	}
	return nil
}

// emitDefine stores the top of stack into a freshly declared symbol.
func (c *Compiler) emitDefine(sym *Symbol) {
	if sym.IsGlobal {
		c.emitName(OP_STORE_GLOBAL, sym.Name)
	} else {
		c.emitU32(OP_STORE_FAST, sym.Slot)
	}
}

func (c *Compiler) compileFunctionStatement(s *ast.FunctionStatement) error {
	if c.scope.kind != SCOPE_GLOBAL {
		return c.errorAt(diagnostics.ErrC002, s, "Function declarations are only allowed at the top level")
	}
	sym, err := c.declare(s.Name, s.Name.Value, false, true)
	if err != nil {
		return err
	}
	if err := c.compileFunction(s, s.Name.Value, s.Parameters, s.Body); err != nil {
		return err
	}
	c.emitDefine(sym)
	return nil
}

func (c *Compiler) compileBlock(block *ast.BlockStatement) error {
	c.beginScope(SCOPE_LOCAL)
	defer c.endScope()
	for _, stmt := range block.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// compileBranch compiles an if/else branch in its own block frame.
func (c *Compiler) compileBranch(stmt ast.Statement) error {
	c.beginScope(SCOPE_LOCAL)
	defer c.endScope()
	return c.compileStatement(stmt)
}

func (c *Compiler) compileIfStatement(s *ast.IfStatement) error {
	if err := c.compileExpression(s.Condition); err != nil {
		return err
	}
	elseJump := c.emitJump(OP_POP_JUMP_IF_FALSE)
	if err := c.compileBranch(s.Consequence); err != nil {
		return err
	}
	if s.Alternative == nil {
		return c.patchJump(elseJump)
	}

	endJump := c.emitJump(OP_JUMP)
	if err := c.patchJump(elseJump); err != nil {
		return err
	}
	if err := c.compileBranch(s.Alternative); err != nil {
		return err
	}
	return c.patchJump(endJump)
}
