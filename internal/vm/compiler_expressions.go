package vm

import (
	"fmt"
	"math"

	"github.com/funvibe/envx/internal/ast"
	"github.com/funvibe/envx/internal/diagnostics"
)

const anonymousFunctionName = "anonymous"

func (c *Compiler) compileExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		c.emit(OP_LOAD_NUMBER)
		c.chunk.WriteF64(e.Value)
	case *ast.StringLiteral:
		c.emitName(OP_LOAD_STRING, encodeString(e.Value))
	case *ast.BooleanLiteral:
		c.emit(OP_LOAD_BOOL)
		if e.Value {
			c.chunk.Write(1)
		} else {
			c.chunk.Write(0)
		}
	case *ast.NullLiteral:
		c.emit(OP_LOAD_NULL)
	case *ast.Identifier:
		c.compileLoad(e.Value)
	case *ast.ArrayLiteral:
		return c.compileArrayLiteral(e)
	case *ast.ObjectLiteral:
		return c.compileObjectLiteral(e)
	case *ast.FunctionLiteral:
		name := anonymousFunctionName
		if e.Name != nil {
			name = e.Name.Value
		}
		return c.compileFunction(e, name, e.Parameters, e.Body)
	case *ast.PrefixExpression:
		if err := c.compileExpression(e.Right); err != nil {
			return err
		}
		c.emit(unaryOpcodes[e.Operator])
	case *ast.InfixExpression:
		return c.compileInfixExpression(e)
	case *ast.ConditionalExpression:
		return c.compileConditional(e)
	case *ast.CallExpression:
		return c.compileCall(e)
	case *ast.IndexExpression:
		if err := c.compileExpression(e.Left); err != nil {
			return err
		}
		if err := c.compileExpression(e.Index); err != nil {
			return err
		}
		c.emit(OP_GET_INDEX)
	case *ast.MemberExpression:
		if err := c.compileExpression(e.Object); err != nil {
			return err
		}
		c.emitName(OP_GET_ATTR, e.Member.Value)
	case *ast.AssignExpression:
		return c.compileAssign(e)
	case *ast.UpdateExpression:
		return c.compileUpdate(e)
	default:
		return c.errorAt(diagnostics.ErrC003, expr, fmt.Sprintf("unsupported expression %T", expr))
	}
	return nil
}

func (c *Compiler) compileArrayLiteral(e *ast.ArrayLiteral) error {
	for _, el := range e.Elements {
		if err := c.compileExpression(el); err != nil {
			return err
		}
	}
	return c.emitCount(OP_MAKE_ARRAY, len(e.Elements))
}

func (c *Compiler) compileObjectLiteral(e *ast.ObjectLiteral) error {
	for _, p := range e.Pairs {
		c.emitName(OP_LOAD_STRING, encodeString(p.Key))
		if err := c.compileExpression(p.Value); err != nil {
			return err
		}
	}
	return c.emitCount(OP_MAKE_OBJECT, len(e.Pairs))
}

func (c *Compiler) emitCount(op Opcode, n int) error {
	if n > math.MaxInt32 {
		return c.tooLarge()
	}
	c.emitU32(op, uint32(n))
	return nil
}

func (c *Compiler) compileInfixExpression(e *ast.InfixExpression) error {
	if err := c.compileExpression(e.Left); err != nil {
		return err
	}

	// && and || leave the deciding operand on the stack.
	if e.Operator == "&&" || e.Operator == "||" {
		op := OP_JUMP_IF_FALSE_OR_POP
		if e.Operator == "||" {
			op = OP_JUMP_IF_TRUE_OR_POP
		}
		end := c.emitJump(op)
		if err := c.compileExpression(e.Right); err != nil {
			return err
		}
		return c.patchJump(end)
	}

	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	op, ok := binaryOpcodes[e.Operator]
	if !ok {
		return c.errorAt(diagnostics.ErrC003, e, "unknown operator "+e.Operator)
	}
	c.emit(op)
	return nil
}

func (c *Compiler) compileConditional(e *ast.ConditionalExpression) error {
	if err := c.compileExpression(e.Condition); err != nil {
		return err
	}
	elseJump := c.emitJump(OP_POP_JUMP_IF_FALSE)
	if err := c.compileExpression(e.Consequence); err != nil {
		return err
	}
	endJump := c.emitJump(OP_JUMP)
	if err := c.patchJump(elseJump); err != nil {
		return err
	}
	if err := c.compileExpression(e.Alternative); err != nil {
		return err
	}
	return c.patchJump(endJump)
}

// compileCall pushes the arguments last-to-first, then the callee.
// A member callee becomes a method call: receiver, DUP_TOP, GET_ATTR, CALL_METHOD.
func (c *Compiler) compileCall(e *ast.CallExpression) error {
	for i := len(e.Arguments) - 1; i >= 0; i-- {
		if err := c.compileExpression(e.Arguments[i]); err != nil {
			return err
		}
	}
	if len(e.Arguments) > math.MaxInt32 {
		return c.tooLarge()
	}
	argc := uint32(len(e.Arguments))

	if member, ok := e.Function.(*ast.MemberExpression); ok {
		if err := c.compileExpression(member.Object); err != nil {
			return err
		}
		c.emit(OP_DUP_TOP)
		c.emitName(OP_GET_ATTR, member.Member.Value)
		c.emitU32(OP_CALL_METHOD, argc)
		return nil
	}

	if err := c.compileExpression(e.Function); err != nil {
		return err
	}
	c.emitU32(OP_CALL_FUNCTION, argc)
	return nil
}

// compileAssign leaves the assigned value on the stack.
func (c *Compiler) compileAssign(e *ast.AssignExpression) error {
	binOp := OP_INVALID
	if sym := e.BinaryOperator(); sym != "" {
		binOp = binaryOpcodes[sym]
	}

	switch target := e.Target.(type) {
	case *ast.Identifier:
		if binOp != OP_INVALID {
			c.compileLoad(target.Value)
		}
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}
		if binOp != OP_INVALID {
			c.emit(binOp)
		}
		c.emit(OP_DUP_TOP)
		return c.compileStore(target)

	case *ast.MemberExpression:
		// [obj] or [obj cur] -> [obj new] -> SET_ATTR -> [new]
		if err := c.compileExpression(target.Object); err != nil {
			return err
		}
		if binOp != OP_INVALID {
			c.emit(OP_DUP_TOP)
			c.emitName(OP_GET_ATTR, target.Member.Value)
		}
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}
		if binOp != OP_INVALID {
			c.emit(binOp)
		}
		c.emitName(OP_SET_ATTR, target.Member.Value)
		return nil

	case *ast.IndexExpression:
		// [obj idx] or [obj idx cur] -> [obj idx new] -> SET_INDEX -> [new]
		if err := c.compileExpression(target.Left); err != nil {
			return err
		}
		if err := c.compileExpression(target.Index); err != nil {
			return err
		}
		if binOp != OP_INVALID {
			c.emit(OP_DUP_TOP_TWO)
			c.emit(OP_GET_INDEX)
		}
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}
		if binOp != OP_INVALID {
			c.emit(binOp)
		}
		c.emit(OP_SET_INDEX)
		return nil
	}
	return c.errorAt(diagnostics.ErrC003, e.Target, e.Target.String()+" is not assignable")
}

// compileUpdate handles ++/--. Prefix leaves the new value, postfix the old one.
func (c *Compiler) compileUpdate(e *ast.UpdateExpression) error {
	op := OP_BIN_ADD
	if e.Operator == "--" {
		op = OP_BIN_SUB
	}
	one := func() {
		c.emit(OP_LOAD_NUMBER)
		c.chunk.WriteF64(1)
	}

	switch target := e.Target.(type) {
	case *ast.Identifier:
		c.compileLoad(target.Value)
		if !e.Prefix {
			c.emit(OP_DUP_TOP) // [old old]
		}
		one()
		c.emit(op)
		if e.Prefix {
			c.emit(OP_DUP_TOP) // [new new]
		}
		return c.compileStore(target)

	case *ast.MemberExpression:
		if err := c.compileExpression(target.Object); err != nil {
			return err
		}
		c.emit(OP_DUP_TOP)
		c.emitName(OP_GET_ATTR, target.Member.Value) // [obj old]
		if !e.Prefix {
			c.emit(OP_DUP_TOP)
			c.emit(OP_ROT_THREE) // [old obj old]
		}
		one()
		c.emit(op)
		c.emitName(OP_SET_ATTR, target.Member.Value)
		if !e.Prefix {
			c.emit(OP_POP_TOP)
		}
		return nil

	case *ast.IndexExpression:
		if err := c.compileExpression(target.Left); err != nil {
			return err
		}
		if err := c.compileExpression(target.Index); err != nil {
			return err
		}
		c.emit(OP_DUP_TOP_TWO)
		c.emit(OP_GET_INDEX) // [obj idx old]
		if !e.Prefix {
			c.emit(OP_DUP_TOP)
			c.emit(OP_ROT_FOUR) // [old obj idx old]
		}
		one()
		c.emit(op)
		c.emit(OP_SET_INDEX)
		if !e.Prefix {
			c.emit(OP_POP_TOP)
		}
		return nil
	}
	return c.errorAt(diagnostics.ErrC003, e.Target, e.Target.String()+" is not assignable")
}
