package vm

import (
	"fmt"
	"math"
)

func unaryOp(op Opcode, v Value) Value {
	if op == OP_LOG_NOT {
		return BoolVal(!v.Truthy())
	}
	if !v.IsNumber() {
		sym := map[Opcode]string{OP_BIT_NOT: "~", OP_POS: "+", OP_NEG: "-"}[op]
		return ErrorVal(fmt.Sprintf("TypeError: bad operand type for unary %s: '%s'", sym, v.TypeName()))
	}
	n := v.AsNumber()
	switch op {
	case OP_BIT_NOT:
		return NumberVal(float64(^toInt32(n)))
	case OP_NEG:
		return NumberVal(-n)
	}
	return v
}

func binaryOp(op Opcode, a, b Value) Value {
	switch op {
	case OP_BIN_EQ:
		return BoolVal(a.Equals(b))
	case OP_BIN_NE:
		return BoolVal(!a.Equals(b))
	case OP_BIN_ADD:
		if as, ok := a.Obj.(*ObjString); ok {
			if bs, ok := b.Obj.(*ObjString); ok {
				return StringVal(as.Value + bs.Value)
			}
		}
	}

	if !a.IsNumber() || !b.IsNumber() {
		return ErrorVal(fmt.Sprintf("TypeError: unsupported operand type(s) for %s: '%s' and '%s'",
			operatorSymbols[op], a.TypeName(), b.TypeName()))
	}

	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case OP_BIN_ADD:
		return NumberVal(x + y)
	case OP_BIN_SUB:
		return NumberVal(x - y)
	case OP_BIN_MUL:
		return NumberVal(x * y)
	case OP_BIN_DIV:
		return NumberVal(x / y)
	case OP_BIN_MOD:
		return NumberVal(math.Mod(x, y))
	case OP_BIN_SHL:
		return NumberVal(float64(toInt32(x) << (uint32(toInt32(y)) & 31)))
	case OP_BIN_SHR:
		return NumberVal(float64(toInt32(x) >> (uint32(toInt32(y)) & 31)))
	case OP_BIN_AND:
		return NumberVal(float64(toInt32(x) & toInt32(y)))
	case OP_BIN_OR:
		return NumberVal(float64(toInt32(x) | toInt32(y)))
	case OP_BIN_XOR:
		return NumberVal(float64(toInt32(x) ^ toInt32(y)))
	case OP_BIN_LT:
		return BoolVal(x < y)
	case OP_BIN_LE:
		return BoolVal(x <= y)
	case OP_BIN_GT:
		return BoolVal(x > y)
	case OP_BIN_GE:
		return BoolVal(x >= y)
	}
	return ErrorVal("TypeError: unknown operator " + op.String())
}

// toInt32 truncates and wraps n to 32 bits; NaN and infinities become 0.
func toInt32(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int32(int64(math.Mod(math.Trunc(n), 1<<32)))
}

// arrayIndex validates idx against an array or string of length n.
func arrayIndex(kind string, idx Value, n int) (int, *Value) {
	if !idx.IsNumber() {
		e := ErrorVal(fmt.Sprintf("TypeError: %s indices must be numbers, not '%s'", kind, idx.TypeName()))
		return 0, &e
	}
	f := idx.AsNumber()
	if f != math.Trunc(f) || f < 0 || f >= float64(n) {
		e := ErrorVal(fmt.Sprintf("IndexError: %s index %s out of range", kind, FormatNumber(f)))
		return 0, &e
	}
	return int(f), nil
}

// objectKey converts an index value to a property name.
func objectKey(idx Value) (string, bool) {
	switch {
	case idx.IsString():
		return idx.Obj.(*ObjString).Value, true
	case idx.IsNumber():
		return FormatNumber(idx.AsNumber()), true
	}
	return "", false
}

func getIndex(obj, idx Value) Value {
	switch o := obj.Obj.(type) {
	case *ObjArray:
		i, errv := arrayIndex("array", idx, len(o.Elements))
		if errv != nil {
			return *errv
		}
		return o.Elements[i]
	case *ObjObject:
		key, ok := objectKey(idx)
		if !ok {
			return ErrorVal(fmt.Sprintf("TypeError: object keys must be strings, not '%s'", idx.TypeName()))
		}
		if v, ok := o.Get(key); ok {
			return v
		}
		return NullVal()
	case *ObjString:
		runes := []rune(o.Value)
		i, errv := arrayIndex("string", idx, len(runes))
		if errv != nil {
			return *errv
		}
		return StringVal(string(runes[i]))
	}
	return ErrorVal(fmt.Sprintf("TypeError: '%s' object is not subscriptable", obj.TypeName()))
}

func setIndex(obj, idx, val Value) Value {
	switch o := obj.Obj.(type) {
	case *ObjArray:
		i, errv := arrayIndex("array", idx, len(o.Elements))
		if errv != nil {
			return *errv
		}
		o.Elements[i] = val
		return val
	case *ObjObject:
		key, ok := objectKey(idx)
		if !ok {
			return ErrorVal(fmt.Sprintf("TypeError: object keys must be strings, not '%s'", idx.TypeName()))
		}
		o.Set(key, val)
		return val
	}
	return ErrorVal(fmt.Sprintf("TypeError: '%s' object does not support item assignment", obj.TypeName()))
}

// getAttr resolves obj.name: statics on a type, own properties on an
// object, then the members of the value's type descriptor.
func (vm *VM) getAttr(obj Value, name string) Value {
	switch o := obj.Obj.(type) {
	case *ObjType:
		if v, ok := o.Statics[name]; ok {
			return v
		}
	case *ObjObject:
		if v, ok := o.Get(name); ok {
			return v
		}
		if m, ok := vm.member(obj, name); ok {
			return m
		}
		return NullVal()
	}
	if m, ok := vm.member(obj, name); ok {
		return m
	}
	return ErrorVal(fmt.Sprintf("AttributeError: '%s' has no attribute '%s'", obj.TypeName(), name))
}

func (vm *VM) setAttr(obj Value, name string, val Value) Value {
	if o, ok := obj.Obj.(*ObjObject); ok {
		o.Set(name, val)
		return val
	}
	return ErrorVal(fmt.Sprintf("AttributeError: '%s' object attribute '%s' is read-only", obj.TypeName(), name))
}

// member looks name up on the descriptor for obj's type, then on the
// universal members.
func (vm *VM) member(obj Value, name string) (Value, bool) {
	if t, ok := vm.types[obj.TypeName()]; ok {
		if m, ok := t.Members[name]; ok {
			return m, true
		}
	}
	m, ok := vm.universal[name]
	return m, ok
}
