package vm

// execute runs code in vm.frame until RETURN or the end of code. It reports
// whether RETURN left a result on the stack.
func (vm *VM) execute(code []byte) bool {
	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		next := pc + 1

		switch op {
		case OP_LOAD_NUMBER:
			var n float64
			n, next = readF64(code, next)
			vm.push(NumberVal(n))

		case OP_LOAD_STRING:
			var enc string
			enc, next = readCString(code, next)
			s, err := decodeString(enc)
			if err != nil {
				panic(errTruncatedBytecode)
			}
			vm.push(StringVal(s))

		case OP_LOAD_BOOL:
			var b byte
			b, next = readByte(code, next)
			vm.push(BoolVal(b != 0))

		case OP_LOAD_NULL:
			vm.push(NullVal())

		case OP_LOAD_NAME:
			var name string
			name, next = readCString(code, next)
			if v, ok := vm.frame.LookupName(name); ok {
				vm.push(v)
			} else {
				vm.push(ErrorVal("NameError: name '" + name + "' is not defined"))
			}

		case OP_LOAD_FAST:
			var slot uint32
			var name string
			slot, next = readU32(code, next)
			name, next = readCString(code, next)
			if v, ok := vm.frame.LookupSlot(slot); ok {
				vm.push(v)
			} else {
				vm.push(ErrorVal("NameError: name '" + name + "' is not defined"))
			}

		case OP_STORE_NAME:
			var name string
			name, next = readCString(code, next)
			vm.frame.SetName(name, vm.pop())

		case OP_STORE_GLOBAL:
			var name string
			name, next = readCString(code, next)
			vm.root.SetName(name, vm.pop())

		case OP_STORE_FAST, OP_BIND_PARAM:
			var slot uint32
			slot, next = readU32(code, next)
			vm.frame.SetSlot(slot, vm.pop())

		case OP_MAKE_FUNCTION:
			var name string
			var arity, size uint32
			name, next = readCString(code, next)
			arity, next = readU32(code, next)
			size, next = readU32(code, next)
			end := next + int(size)
			if end > len(code) || end < next {
				panic(errTruncatedBytecode)
			}
			vm.push(ObjVal(&ObjFunction{Name: name, Arity: int(arity), Code: code[next:end:end]}))
			next = end

		case OP_CALL_FUNCTION, OP_CALL_METHOD:
			var argc uint32
			argc, next = readU32(code, next)
			callee := vm.pop()
			this := NullVal()
			if op == OP_CALL_METHOD {
				this = vm.pop()
			}
			vm.callValue(callee, this, int(argc))

		case OP_RETURN:
			return true

		case OP_GET_ATTR:
			var name string
			name, next = readCString(code, next)
			obj := vm.pop()
			vm.push(vm.getAttr(obj, name))

		case OP_SET_ATTR:
			var name string
			name, next = readCString(code, next)
			val := vm.pop()
			obj := vm.pop()
			vm.push(vm.setAttr(obj, name, val))

		case OP_GET_INDEX:
			idx := vm.pop()
			obj := vm.pop()
			vm.push(getIndex(obj, idx))

		case OP_SET_INDEX:
			val := vm.pop()
			idx := vm.pop()
			obj := vm.pop()
			vm.push(setIndex(obj, idx, val))

		case OP_MAKE_ARRAY:
			var count uint32
			count, next = readU32(code, next)
			n := int(count)
			if n > len(vm.stack) {
				panic(errStackUnderflow)
			}
			elems := make([]Value, n)
			copy(elems, vm.stack[len(vm.stack)-n:])
			vm.popN(n)
			vm.push(ArrayVal(elems))

		case OP_MAKE_OBJECT:
			var count uint32
			count, next = readU32(code, next)
			n := int(count) * 2
			if n > len(vm.stack) || n < 0 {
				panic(errStackUnderflow)
			}
			pairs := vm.stack[len(vm.stack)-n:]
			obj := NewObject()
			for i := 0; i < n; i += 2 {
				obj.Set(pairs[i].String(), pairs[i+1])
			}
			vm.popN(n)
			vm.push(ObjVal(obj))

		case OP_LOG_NOT, OP_BIT_NOT, OP_POS, OP_NEG:
			vm.push(unaryOp(op, vm.pop()))

		case OP_BIN_MUL, OP_BIN_DIV, OP_BIN_MOD, OP_BIN_ADD, OP_BIN_SUB,
			OP_BIN_SHL, OP_BIN_SHR, OP_BIN_LT, OP_BIN_LE, OP_BIN_GT, OP_BIN_GE,
			OP_BIN_EQ, OP_BIN_NE, OP_BIN_AND, OP_BIN_OR, OP_BIN_XOR:
			b := vm.pop()
			a := vm.pop()
			vm.push(binaryOp(op, a, b))

		case OP_POP_TOP:
			vm.pop()

		case OP_DUP_TOP:
			vm.push(vm.peek(0))

		case OP_DUP_TOP_TWO:
			a, b := vm.peek(1), vm.peek(0)
			vm.push(a)
			vm.push(b)

		case OP_ROT_THREE:
			c, b, a := vm.pop(), vm.pop(), vm.pop()
			vm.push(c)
			vm.push(a)
			vm.push(b)

		case OP_ROT_FOUR:
			d, c, b, a := vm.pop(), vm.pop(), vm.pop(), vm.pop()
			vm.push(d)
			vm.push(a)
			vm.push(b)
			vm.push(c)

		case OP_JUMP:
			var off int32
			off, _ = readI32(code, next)
			next = pc + int(off)

		case OP_POP_JUMP_IF_FALSE:
			var off int32
			off, next = readI32(code, next)
			if !vm.pop().Truthy() {
				next = pc + int(off)
			}

		case OP_JUMP_IF_FALSE_OR_POP:
			var off int32
			off, next = readI32(code, next)
			if !vm.peek(0).Truthy() {
				next = pc + int(off)
			} else {
				vm.pop()
			}

		case OP_JUMP_IF_TRUE_OR_POP:
			var off int32
			off, next = readI32(code, next)
			if vm.peek(0).Truthy() {
				next = pc + int(off)
			} else {
				vm.pop()
			}

		default:
			vm.unknownOpcode(byte(op), pc)
		}

		if next < 0 || next > len(code) {
			panic(errTruncatedBytecode)
		}
		pc = next
	}
	return false
}
