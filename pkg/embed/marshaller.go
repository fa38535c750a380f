package envx

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/funvibe/envx/internal/vm"
)

var (
	valueType = reflect.TypeOf(vm.Value{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Marshaller handles conversion between Go and script values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a script Value. Numbers of any kind
// become Number, structs become objects, functions become natives and a
// non-nil error becomes an Error value.
func (m *Marshaller) ToValue(val interface{}) (vm.Value, error) {
	switch t := val.(type) {
	case nil:
		return vm.NullVal(), nil
	case vm.Value:
		return t, nil
	case error:
		return vm.ErrorVal(t.Error()), nil
	}
	return m.toValue(reflect.ValueOf(val))
}

func (m *Marshaller) toValue(v reflect.Value) (vm.Value, error) {
	if !v.IsValid() {
		return vm.NullVal(), nil
	}
	if v.Type() == valueType {
		return v.Interface().(vm.Value), nil
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return vm.NumberVal(float64(v.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return vm.NumberVal(float64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return vm.NumberVal(v.Float()), nil
	case reflect.Bool:
		return vm.BoolVal(v.Bool()), nil
	case reflect.String:
		return vm.StringVal(v.String()), nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return vm.NullVal(), nil
		}
		elems := make([]vm.Value, v.Len())
		for i := range elems {
			e, err := m.toValue(v.Index(i))
			if err != nil {
				return vm.NullVal(), fmt.Errorf("index %d: %w", i, err)
			}
			elems[i] = e
		}
		return vm.ArrayVal(elems), nil
	case reflect.Map:
		return m.mapToObject(v)
	case reflect.Struct:
		return m.structToObject(v)
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return vm.NullVal(), nil
		}
		if err, ok := v.Interface().(error); ok {
			return vm.ErrorVal(err.Error()), nil
		}
		return m.toValue(v.Elem())
	case reflect.Func:
		if v.IsNil() {
			return vm.NullVal(), nil
		}
		return m.Func("<host>", v), nil
	}
	return vm.NullVal(), fmt.Errorf("cannot convert %s to a script value", v.Type())
}

func (m *Marshaller) mapToObject(v reflect.Value) (vm.Value, error) {
	if v.Type().Key().Kind() != reflect.String {
		return vm.NullVal(), fmt.Errorf("map key must be a string, got %s", v.Type().Key())
	}
	if v.IsNil() {
		return vm.NullVal(), nil
	}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	obj := vm.NewObject()
	for _, k := range keys {
		e, err := m.toValue(v.MapIndex(k))
		if err != nil {
			return vm.NullVal(), fmt.Errorf("key %q: %w", k.String(), err)
		}
		obj.Set(k.String(), e)
	}
	return vm.ObjVal(obj), nil
}

func (m *Marshaller) structToObject(v reflect.Value) (vm.Value, error) {
	obj := vm.NewObject()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, ok := fieldName(f)
		if !ok {
			continue
		}
		e, err := m.toValue(v.Field(i))
		if err != nil {
			return vm.NullVal(), fmt.Errorf("field %s: %w", f.Name, err)
		}
		obj.Set(name, e)
	}
	return vm.ObjVal(obj), nil
}

// fieldName is the object key for a struct field: the `envx` tag, or the
// field name. Unexported fields and `envx:"-"` are skipped.
func fieldName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("envx")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return f.Name, true
}

// FromValue converts a script Value to a Go value of targetType. A nil or
// interface targetType receives the plain representation.
func (m *Marshaller) FromValue(v vm.Value, targetType reflect.Type) (reflect.Value, error) {
	if targetType == nil {
		targetType = reflect.TypeOf((*interface{})(nil)).Elem()
	}
	if targetType == valueType {
		return reflect.ValueOf(v), nil
	}

	out := reflect.New(targetType).Elem()
	if v.IsNull() {
		switch targetType.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map:
			return out, nil
		}
		return out, fmt.Errorf("cannot use null as %s", targetType)
	}

	switch targetType.Kind() {
	case reflect.Interface:
		if v.IsError() && targetType.Implements(errorType) {
			out.Set(reflect.ValueOf(fmt.Errorf("%s", v.String())))
			return out, nil
		}
		if !vm.IsPlain(v) {
			return out, fmt.Errorf("cannot pass a %s to Go", v.TypeName())
		}
		if plain := vm.ToPlain(v); plain != nil {
			pv := reflect.ValueOf(plain)
			if !pv.Type().AssignableTo(targetType) {
				return out, fmt.Errorf("cannot use %s as %s", v.TypeName(), targetType)
			}
			out.Set(pv)
		}
		return out, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := integer(v)
		if err != nil {
			return out, err
		}
		if out.OverflowInt(n) {
			return out, fmt.Errorf("%d overflows %s", n, targetType)
		}
		out.SetInt(n)
		return out, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := integer(v)
		if err != nil {
			return out, err
		}
		if n < 0 || out.OverflowUint(uint64(n)) {
			return out, fmt.Errorf("%d overflows %s", n, targetType)
		}
		out.SetUint(uint64(n))
		return out, nil

	case reflect.Float32, reflect.Float64:
		if !v.IsNumber() {
			return out, mismatch(v, "number")
		}
		out.SetFloat(v.AsNumber())
		return out, nil

	case reflect.Bool:
		if !v.IsBool() {
			return out, mismatch(v, "bool")
		}
		out.SetBool(v.AsBool())
		return out, nil

	case reflect.String:
		if !v.IsString() {
			return out, mismatch(v, "string")
		}
		out.SetString(v.Obj.(*vm.ObjString).Value)
		return out, nil

	case reflect.Slice:
		arr, ok := v.Obj.(*vm.ObjArray)
		if !ok {
			return out, mismatch(v, "array")
		}
		out.Set(reflect.MakeSlice(targetType, len(arr.Elements), len(arr.Elements)))
		for i, e := range arr.Elements {
			ev, err := m.FromValue(e, targetType.Elem())
			if err != nil {
				return out, fmt.Errorf("index %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case reflect.Map:
		obj, ok := v.Obj.(*vm.ObjObject)
		if !ok {
			return out, mismatch(v, "object")
		}
		if targetType.Key().Kind() != reflect.String {
			return out, fmt.Errorf("map key must be a string, got %s", targetType.Key())
		}
		out.Set(reflect.MakeMapWithSize(targetType, obj.Len()))
		for _, k := range obj.Keys() {
			field, _ := obj.Get(k)
			ev, err := m.FromValue(field, targetType.Elem())
			if err != nil {
				return out, fmt.Errorf("key %q: %w", k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(targetType.Key()), ev)
		}
		return out, nil

	case reflect.Struct:
		obj, ok := v.Obj.(*vm.ObjObject)
		if !ok {
			return out, mismatch(v, "object")
		}
		for i := 0; i < targetType.NumField(); i++ {
			name, ok := fieldName(targetType.Field(i))
			if !ok {
				continue
			}
			field, ok := obj.Get(name)
			if !ok {
				continue
			}
			fv, err := m.FromValue(field, targetType.Field(i).Type)
			if err != nil {
				return out, fmt.Errorf("field %s: %w", name, err)
			}
			out.Field(i).Set(fv)
		}
		return out, nil

	case reflect.Pointer:
		elem, err := m.FromValue(v, targetType.Elem())
		if err != nil {
			return out, err
		}
		ptr := reflect.New(targetType.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}
	return out, fmt.Errorf("cannot convert %s to %s", v.TypeName(), targetType)
}

func integer(v vm.Value) (int64, error) {
	if !v.IsNumber() {
		return 0, mismatch(v, "number")
	}
	n, ok := vm.AsInteger(v.AsNumber())
	if !ok {
		return 0, fmt.Errorf("expected an integer, got %s", vm.FormatNumber(v.AsNumber()))
	}
	return n, nil
}

func mismatch(v vm.Value, want string) error {
	return fmt.Errorf("expected %s, got %s", want, v.TypeName())
}

// Func wraps a Go function as a native. Arity is checked by the VM except
// for variadic functions, which check their minimum here.
func (m *Marshaller) Func(name string, fn reflect.Value) vm.Value {
	fnType := fn.Type()
	numIn := fnType.NumIn()
	arity := numIn
	if fnType.IsVariadic() {
		arity = -1
	}

	return vm.NativeVal(name, arity, func(_ *vm.VM, _ vm.Value, args []vm.Value) (result vm.Value) {
		if arity < 0 && len(args) < numIn-1 {
			return vm.ErrorVal(fmt.Sprintf("TypeError: %s() takes at least %d arguments but %d were given", name, numIn-1, len(args)))
		}

		goArgs := make([]reflect.Value, len(args))
		for i, arg := range args {
			var targetType reflect.Type
			if arity < 0 && i >= numIn-1 {
				targetType = fnType.In(numIn - 1).Elem()
			} else {
				targetType = fnType.In(i)
			}
			val, err := m.FromValue(arg, targetType)
			if err != nil {
				return vm.ErrorVal(fmt.Sprintf("TypeError: %s() argument %d: %s", name, i+1, err))
			}
			goArgs[i] = val
		}

		defer func() {
			if r := recover(); r != nil {
				result = vm.ErrorVal(fmt.Sprintf("HostError: %s() panicked: %v", name, r))
			}
		}()
		return m.results(name, fn.Call(goArgs))
	})
}

// results converts a Go call's return values. A trailing error is checked
// first; the remaining values give Null, the single value or an array.
func (m *Marshaller) results(name string, results []reflect.Value) vm.Value {
	if n := len(results); n > 0 && results[n-1].Type() == errorType {
		if !results[n-1].IsNil() {
			return vm.ErrorVal(results[n-1].Interface().(error).Error())
		}
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		return vm.NullVal()
	case 1:
		v, err := m.toValue(results[0])
		if err != nil {
			return vm.ErrorVal(fmt.Sprintf("TypeError: %s() result: %s", name, err))
		}
		return v
	}
	elems := make([]vm.Value, len(results))
	for i, r := range results {
		v, err := m.toValue(r)
		if err != nil {
			return vm.ErrorVal(fmt.Sprintf("TypeError: %s() result %d: %s", name, i+1, err))
		}
		elems[i] = v
	}
	return vm.ArrayVal(elems)
}
