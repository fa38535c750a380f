package vm

import "fmt"

// callValue invokes callee with argc arguments on the stack (first argument
// on top) and leaves exactly one result in their place. A non-callable
// callee or an arity mismatch discards the arguments and yields an Error.
func (vm *VM) callValue(callee, this Value, argc int) {
	switch fn := callee.Obj.(type) {
	case *ObjFunction:
		if fn.Arity != argc {
			vm.popN(argc)
			vm.push(arityError(fn.Name, fn.Arity, argc))
			return
		}
		vm.callFunction(fn, this, argc)
		return

	case *ObjNative:
		if fn.Arity >= 0 && fn.Arity != argc {
			vm.popN(argc)
			vm.push(arityError(fn.Name, fn.Arity, argc))
			return
		}
		args := make([]Value, argc)
		for i := range args {
			args[i] = vm.pop()
		}
		vm.push(fn.Fn(vm, this, args))
		return

	case *ObjError:
		// calling a failed lookup propagates its error
		vm.popN(argc)
		vm.push(callee)
		return
	}

	vm.popN(argc)
	vm.push(ErrorVal(fmt.Sprintf("TypeError: %s is not callable", callee.TypeName())))
}

// callFunction runs fn in a new frame whose parent is the caller's frame.
func (vm *VM) callFunction(fn *ObjFunction, this Value, argc int) {
	base := len(vm.stack) - argc
	caller := vm.frame
	vm.frame = NewFrame(caller)
	vm.push(this) // bound first by the prologue

	result := NullVal()
	if vm.execute(fn.Code) {
		result = vm.pop()
	}

	vm.frame = caller
	if base < len(vm.stack) {
		vm.stack = vm.stack[:base]
	}
	vm.push(result)
}

// invoke calls callee from Go with args in natural order and returns the result.
func (vm *VM) invoke(callee, this Value, args []Value) Value {
	for i := len(args) - 1; i >= 0; i-- {
		vm.push(args[i])
	}
	vm.callValue(callee, this, len(args))
	return vm.pop()
}

func arityError(name string, arity, argc int) Value {
	return ErrorVal(fmt.Sprintf("TypeError: %s() takes %d arguments but %d were given", name, arity, argc))
}
