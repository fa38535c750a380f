package vm

// Frame is one runtime scope. Calls create a frame whose parent is the
// caller's frame; blocks do not create frames.
type Frame struct {
	names  map[string]Value
	slots  map[uint32]Value
	parent *Frame
}

func NewFrame(parent *Frame) *Frame {
	return &Frame{
		names:  make(map[string]Value),
		slots:  make(map[uint32]Value),
		parent: parent,
	}
}

// LookupName walks the chain nearest-first.
func (f *Frame) LookupName(name string) (Value, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if v, ok := cur.names[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

func (f *Frame) LookupSlot(slot uint32) (Value, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if v, ok := cur.slots[slot]; ok {
			return v, true
		}
	}
	return Value{}, false
}

func (f *Frame) SetName(name string, v Value) {
	f.names[name] = v
}

func (f *Frame) SetSlot(slot uint32, v Value) {
	f.slots[slot] = v
}

// clone copies the bindings of f into a parentless frame.
func (f *Frame) clone() *Frame {
	c := NewFrame(nil)
	for k, v := range f.names {
		c.names[k] = v
	}
	for k, v := range f.slots {
		c.slots[k] = v
	}
	return c
}
