package vm

// Object is a heap value referenced from Value.Obj.
type Object interface {
	objectNode()
}

type ObjString struct {
	Value string
}

type ObjArray struct {
	Elements []Value
}

// ObjObject is a string-keyed property bag that remembers insertion order.
type ObjObject struct {
	keys   []string
	fields map[string]Value
}

func NewObject() *ObjObject {
	return &ObjObject{fields: make(map[string]Value)}
}

func (o *ObjObject) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Set creates or updates key.
func (o *ObjObject) Set(key string, v Value) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Keys returns the property names in insertion order.
func (o *ObjObject) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *ObjObject) Len() int {
	return len(o.keys)
}

// ObjFunction is a compiled script function. Code is a slice of the
// enclosing bytecode and ends with RETURN.
type ObjFunction struct {
	Name  string
	Arity int
	Code  []byte
}

// NativeFn is a Go builtin. this is Null unless called as a method.
type NativeFn func(vm *VM, this Value, args []Value) Value

// ObjNative is a host function. Arity -1 accepts any number of arguments.
type ObjNative struct {
	Name  string
	Arity int
	Fn    NativeFn
}

type ObjError struct {
	Message string
}

// ObjType is a type descriptor. Statics are reached through the type value
// itself (Number.parse); Members through instances (4.isEven).
type ObjType struct {
	Name    string
	Statics map[string]Value
	Members map[string]Value
}

func (*ObjString) objectNode()   {}
func (*ObjArray) objectNode()    {}
func (*ObjObject) objectNode()   {}
func (*ObjFunction) objectNode() {}
func (*ObjNative) objectNode()   {}
func (*ObjError) objectNode()    {}
func (*ObjType) objectNode()     {}

func NativeVal(name string, arity int, fn NativeFn) Value {
	return ObjVal(&ObjNative{Name: name, Arity: arity, Fn: fn})
}
