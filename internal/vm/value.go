package vm

import (
	"math"
	"strconv"
	"strings"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValNull ValueType = iota
	ValNumber
	ValBool
	ValObj // String, Array, Object, Function, Native, Error, Type
)

// Value is a stack-allocated tagged union.
// Numbers and booleans live in Data; everything else is a heap Object.
type Value struct {
	Type ValueType
	Data uint64
	Obj  Object
}

// Constructors

func NullVal() Value {
	return Value{Type: ValNull}
}

func NumberVal(v float64) Value {
	return Value{Type: ValNumber, Data: math.Float64bits(v)}
}

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

func ObjVal(o Object) Value {
	return Value{Type: ValObj, Obj: o}
}

func StringVal(s string) Value {
	return ObjVal(&ObjString{Value: s})
}

func ErrorVal(msg string) Value {
	return ObjVal(&ObjError{Message: msg})
}

func ArrayVal(elems []Value) Value {
	return ObjVal(&ObjArray{Elements: elems})
}

// Accessors

func (v Value) AsNumber() float64 {
	return math.Float64frombits(v.Data)
}

func (v Value) AsBool() bool {
	return v.Data == 1
}

func (v Value) IsNull() bool   { return v.Type == ValNull }
func (v Value) IsNumber() bool { return v.Type == ValNumber }
func (v Value) IsBool() bool   { return v.Type == ValBool }

func (v Value) IsString() bool {
	_, ok := v.Obj.(*ObjString)
	return ok
}

func (v Value) IsError() bool {
	_, ok := v.Obj.(*ObjError)
	return ok
}

// TypeName is the script-visible name of the value's type, as returned by typeof.
func (v Value) TypeName() string {
	switch v.Type {
	case ValNull:
		return "null"
	case ValNumber:
		return "number"
	case ValBool:
		return "bool"
	}
	switch v.Obj.(type) {
	case *ObjString:
		return "string"
	case *ObjArray:
		return "array"
	case *ObjObject:
		return "object"
	case *ObjFunction, *ObjNative:
		return "function"
	case *ObjError:
		return "error"
	case *ObjType:
		return "type"
	}
	return "null"
}

// Truthy reports whether v passes a condition. null, false, 0, NaN, ""
// and errors are falsy.
func (v Value) Truthy() bool {
	switch v.Type {
	case ValNull:
		return false
	case ValBool:
		return v.AsBool()
	case ValNumber:
		n := v.AsNumber()
		return n != 0 && !math.IsNaN(n)
	}
	switch o := v.Obj.(type) {
	case *ObjString:
		return o.Value != ""
	case *ObjError:
		return false
	}
	return true
}

// Equals compares unwrapped payloads. Strings and errors compare by content,
// every other object by identity.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValNull:
		return true
	case ValBool:
		return v.Data == other.Data
	case ValNumber:
		return v.AsNumber() == other.AsNumber()
	}
	switch a := v.Obj.(type) {
	case *ObjString:
		b, ok := other.Obj.(*ObjString)
		return ok && a.Value == b.Value
	case *ObjError:
		b, ok := other.Obj.(*ObjError)
		return ok && a.Message == b.Message
	}
	return v.Obj == other.Obj
}

// String renders the value the way println prints it.
func (v Value) String() string {
	if s, ok := v.Obj.(*ObjString); ok {
		return s.Value
	}
	var sb strings.Builder
	inspect(&sb, v, map[Object]bool{})
	return sb.String()
}

// Inspect renders the value with strings quoted.
func (v Value) Inspect() string {
	var sb strings.Builder
	inspect(&sb, v, map[Object]bool{})
	return sb.String()
}

func inspect(sb *strings.Builder, v Value, seen map[Object]bool) {
	switch v.Type {
	case ValNull:
		sb.WriteString("null")
		return
	case ValBool:
		sb.WriteString(strconv.FormatBool(v.AsBool()))
		return
	case ValNumber:
		sb.WriteString(FormatNumber(v.AsNumber()))
		return
	}

	switch o := v.Obj.(type) {
	case *ObjString:
		sb.WriteString(strconv.Quote(o.Value))
	case *ObjArray:
		if seen[o] {
			sb.WriteString("[...]")
			return
		}
		seen[o] = true
		sb.WriteByte('[')
		for i, e := range o.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			inspect(sb, e, seen)
		}
		sb.WriteByte(']')
		delete(seen, o)
	case *ObjObject:
		if seen[o] {
			sb.WriteString("{...}")
			return
		}
		seen[o] = true
		sb.WriteByte('{')
		for i, k := range o.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(": ")
			inspect(sb, o.fields[k], seen)
		}
		sb.WriteByte('}')
		delete(seen, o)
	case *ObjFunction:
		sb.WriteString("<fn " + o.Name + ">")
	case *ObjNative:
		sb.WriteString("<native fn " + o.Name + ">")
	case *ObjError:
		sb.WriteString(o.Message)
	case *ObjType:
		sb.WriteString("<type " + o.Name + ">")
	default:
		sb.WriteString("null")
	}
}

// FormatNumber prints whole numbers without a fraction or exponent.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
