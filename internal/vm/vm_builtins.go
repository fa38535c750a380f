package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/envx/internal/config"
)

// loadBuiltins seeds the root frame with println, typeof and the type
// descriptors, and registers instance members.
func (vm *VM) loadBuiltins() {
	vm.defineBuiltin(config.PrintlnFuncName, NativeVal(config.PrintlnFuncName, -1, builtinPrintln))
	vm.defineBuiltin(config.TypeOfFuncName, NativeVal(config.TypeOfFuncName, 1, func(_ *VM, _ Value, args []Value) Value {
		return StringVal(args[0].TypeName())
	}))

	vm.universal["toString"] = NativeVal("toString", 0, func(_ *VM, this Value, _ []Value) Value {
		return StringVal(this.String())
	})

	vm.defineType("number", config.NumberTypeName,
		map[string]Value{"parse": NativeVal("parse", 1, numberParse)},
		map[string]Value{"isEven": method("number", "isEven", 0, numberIsEven)})

	vm.defineType("string", config.StringTypeName,
		map[string]Value{"from": NativeVal("from", 1, func(_ *VM, _ Value, args []Value) Value {
			return StringVal(args[0].String())
		})},
		map[string]Value{
			"concat": method("string", "concat", -1, stringConcat),
			"length": method("string", "length", 0, func(_ *VM, this Value, _ []Value) Value {
				return NumberVal(float64(utf8.RuneCountInString(this.Obj.(*ObjString).Value)))
			}),
		})

	vm.defineType("bool", config.BoolTypeName, nil, nil)
	vm.defineType("null", config.NullTypeName, nil, nil)
	vm.defineType("function", config.FunctionTypeName, nil, nil)

	vm.defineType("array", config.ArrayTypeName,
		map[string]Value{"new": NativeVal("new", -1, func(_ *VM, _ Value, args []Value) Value {
			elems := make([]Value, len(args))
			copy(elems, args)
			return ArrayVal(elems)
		})},
		map[string]Value{
			"push":   method("array", "push", -1, arrayPush),
			"pop":    method("array", "pop", 0, arrayPop),
			"peek":   method("array", "peek", 0, arrayPeek),
			"length": method("array", "length", 0, arrayLength),
		})

	vm.defineType("object", config.ObjectTypeName,
		map[string]Value{"keys": NativeVal("keys", 1, objectKeys)},
		nil)

	vm.defineType("error", config.ErrorTypeName,
		map[string]Value{"new": NativeVal("new", 1, func(_ *VM, _ Value, args []Value) Value {
			return ErrorVal(args[0].String())
		})},
		map[string]Value{"message": method("error", "message", 0, func(_ *VM, this Value, _ []Value) Value {
			return StringVal(this.Obj.(*ObjError).Message)
		})})
}

func (vm *VM) defineBuiltin(name string, v Value) {
	vm.root.SetName(name, v)
	vm.builtins[name] = v
}

// defineType registers a descriptor under its typeof name and binds it
// globally under its display name.
func (vm *VM) defineType(typeName, globalName string, statics, members map[string]Value) {
	if statics == nil {
		statics = map[string]Value{}
	}
	if members == nil {
		members = map[string]Value{}
	}
	t := &ObjType{Name: globalName, Statics: statics, Members: members}
	vm.types[typeName] = t
	vm.defineBuiltin(globalName, ObjVal(t))
}

// method wraps an instance member so it rejects a receiver of the wrong type,
// e.g. when the member was read off a value and called as a plain function.
func method(typeName, name string, arity int, fn NativeFn) Value {
	return NativeVal(name, arity, func(vm *VM, this Value, args []Value) Value {
		if this.TypeName() != typeName {
			return ErrorVal(fmt.Sprintf("TypeError: %s() requires a '%s' receiver, got '%s'", name, typeName, this.TypeName()))
		}
		return fn(vm, this, args)
	})
}

func builtinPrintln(vm *VM, _ Value, args []Value) Value {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Fprintln(vm.out, strings.Join(parts, " "))
	return NullVal()
}

func numberParse(_ *VM, _ Value, args []Value) Value {
	switch {
	case args[0].IsNumber():
		return args[0]
	case args[0].IsString():
		s := strings.TrimSpace(args[0].Obj.(*ObjString).Value)
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return NumberVal(n)
		}
		if n, err := strconv.ParseInt(s, 0, 64); err == nil {
			return NumberVal(float64(n))
		}
		return ErrorVal(fmt.Sprintf("ValueError: could not convert string to number: %s", strconv.Quote(s)))
	}
	return ErrorVal(fmt.Sprintf("TypeError: cannot convert '%s' to number", args[0].TypeName()))
}

func numberIsEven(_ *VM, this Value, _ []Value) Value {
	return BoolVal(math.Mod(this.AsNumber(), 2) == 0)
}

func stringConcat(_ *VM, this Value, args []Value) Value {
	var sb strings.Builder
	sb.WriteString(this.Obj.(*ObjString).Value)
	for _, a := range args {
		s, ok := a.Obj.(*ObjString)
		if !ok {
			return ErrorVal(fmt.Sprintf("TypeError: concat() expects string arguments, got '%s'", a.TypeName()))
		}
		sb.WriteString(s.Value)
	}
	return StringVal(sb.String())
}

func arrayPush(_ *VM, this Value, args []Value) Value {
	arr := this.Obj.(*ObjArray)
	arr.Elements = append(arr.Elements, args...)
	return NumberVal(float64(len(arr.Elements)))
}

func arrayPop(_ *VM, this Value, _ []Value) Value {
	arr := this.Obj.(*ObjArray)
	n := len(arr.Elements)
	if n == 0 {
		return ErrorVal("IndexError: pop from empty array")
	}
	v := arr.Elements[n-1]
	arr.Elements = arr.Elements[:n-1]
	return v
}

func arrayPeek(_ *VM, this Value, _ []Value) Value {
	arr := this.Obj.(*ObjArray)
	if len(arr.Elements) == 0 {
		return ErrorVal("IndexError: peek from empty array")
	}
	return arr.Elements[len(arr.Elements)-1]
}

func arrayLength(_ *VM, this Value, _ []Value) Value {
	return NumberVal(float64(len(this.Obj.(*ObjArray).Elements)))
}

func objectKeys(_ *VM, _ Value, args []Value) Value {
	obj, ok := args[0].Obj.(*ObjObject)
	if !ok {
		return ErrorVal(fmt.Sprintf("TypeError: Object.keys() expects an object, got '%s'", args[0].TypeName()))
	}
	keys := obj.Keys()
	elems := make([]Value, len(keys))
	for i, k := range keys {
		elems[i] = StringVal(k)
	}
	return ArrayVal(elems)
}
