package vm

import (
	"fmt"
	"math"
	"sort"

	"github.com/funvibe/envx/internal/config"
)

// Get returns the plain value of a global, or nil when the name is
// undefined, private or not representable.
func (vm *VM) Get(name string) interface{} {
	if config.IsPrivateName(name) {
		return nil
	}
	v, ok := vm.root.names[name]
	if !ok {
		return nil
	}
	return ToPlain(v)
}

// Lookup returns the raw global value.
func (vm *VM) Lookup(name string) (Value, bool) {
	v, ok := vm.root.names[name]
	return v, ok
}

// Define binds a global. Defined values are part of the environment and
// are exported like script globals.
func (vm *VM) Define(name string, v Value) {
	vm.root.SetName(name, v)
}

// GlobalNames returns the exportable global names in sorted order: builtins
// that were not reassigned and private names are left out.
func (vm *VM) GlobalNames() []string {
	names := make([]string, 0, len(vm.root.names))
	for name, v := range vm.root.names {
		if config.IsPrivateName(name) {
			continue
		}
		if b, ok := vm.builtins[name]; ok && b.Type == v.Type && b.Obj == v.Obj {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Globals exports the environment as plain values. Names whose value is not
// representable (functions, types, errors) are omitted.
func (vm *VM) Globals() map[string]interface{} {
	out := make(map[string]interface{})
	for _, name := range vm.GlobalNames() {
		v := vm.root.names[name]
		if !IsPlain(v) {
			continue
		}
		out[name] = ToPlain(v)
	}
	return out
}

// Call invokes the global function name with plain arguments and returns the
// plain result. The call runs against a copy of the globals, so it cannot
// change them. A missing or non-callable name yields nil.
func (vm *VM) Call(name string, args ...interface{}) (result interface{}, err error) {
	values := make([]Value, len(args))
	for i, a := range args {
		if values[i], err = FromPlain(a); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
	}
	v, err := vm.CallValue(name, values...)
	if err != nil {
		return nil, err
	}
	return ToPlain(v), nil
}

// CallValue is Call on script values, without plain-value conversion.
func (vm *VM) CallValue(name string, args ...Value) (result Value, err error) {
	if config.IsPrivateName(name) {
		return NullVal(), nil
	}
	callee, ok := vm.root.names[name]
	if !ok {
		return NullVal(), nil
	}

	savedRoot := vm.root
	vm.root = savedRoot.clone()
	vm.frame = vm.root
	defer func() {
		vm.root = savedRoot
		vm.frame = savedRoot
	}()
	defer vm.recoverFault(&err, len(vm.stack))

	log.Debugf("call: %s/%d", name, len(args))
	return vm.invoke(callee, NullVal(), args), nil
}

// IsPlain reports whether v has a plain Go representation.
func IsPlain(v Value) bool {
	switch v.Obj.(type) {
	case *ObjFunction, *ObjNative, *ObjType, *ObjError:
		return false
	}
	return true
}

// ToPlain converts v to float64, string, bool, []interface{},
// map[string]interface{} or nil. Non-representable values, and containers
// that contain themselves, become nil.
func ToPlain(v Value) interface{} {
	return toPlain(v, map[Object]bool{})
}

func toPlain(v Value, seen map[Object]bool) interface{} {
	switch v.Type {
	case ValNull:
		return nil
	case ValNumber:
		return v.AsNumber()
	case ValBool:
		return v.AsBool()
	}
	switch o := v.Obj.(type) {
	case *ObjString:
		return o.Value
	case *ObjArray:
		if seen[o] {
			return nil
		}
		seen[o] = true
		defer delete(seen, o)
		out := make([]interface{}, len(o.Elements))
		for i, e := range o.Elements {
			out[i] = toPlain(e, seen)
		}
		return out
	case *ObjObject:
		if seen[o] {
			return nil
		}
		seen[o] = true
		defer delete(seen, o)
		out := make(map[string]interface{}, o.Len())
		for _, k := range o.keys {
			out[k] = toPlain(o.fields[k], seen)
		}
		return out
	}
	return nil
}

// FromPlain is the inverse of ToPlain: it accepts nil, Value, float64,
// string, bool, []interface{} and map[string]interface{}. Other Go types
// go through the embedding marshaller.
func FromPlain(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullVal(), nil
	case Value:
		return t, nil
	case float64:
		return NumberVal(t), nil
	case string:
		return StringVal(t), nil
	case bool:
		return BoolVal(t), nil
	case []interface{}:
		elems := make([]Value, len(t))
		for i, e := range t {
			v, err := FromPlain(e)
			if err != nil {
				return NullVal(), err
			}
			elems[i] = v
		}
		return ArrayVal(elems), nil
	case map[string]interface{}:
		obj := NewObject()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v, err := FromPlain(t[k])
			if err != nil {
				return NullVal(), err
			}
			obj.Set(k, v)
		}
		return ObjVal(obj), nil
	}
	return NullVal(), fmt.Errorf("%T is not a plain value", x)
}

// AsInteger reports whether n is a whole number in the int64 range.
func AsInteger(n float64) (int64, bool) {
	if n != math.Trunc(n) || math.IsInf(n, 0) || n < math.MinInt64 || n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}
