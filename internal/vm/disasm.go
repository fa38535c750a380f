package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Disassemble returns a human-readable representation of the bytecode.
// Function bodies are listed inline, indented under their MAKE_FUNCTION.
func Disassemble(code []byte, name string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if r == errTruncatedBytecode {
				out, err = "", fmt.Errorf("disassemble %s: %w", name, errTruncatedBytecode)
				return
			}
			panic(r)
		}
	}()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("== %s ==\n", name))
	disassembleCode(&sb, code, "")
	return sb.String(), nil
}

func disassembleCode(sb *strings.Builder, code []byte, indent string) {
	offset := 0
	for offset < len(code) {
		offset = disassembleInstruction(sb, code, offset, indent)
	}
}

// disassembleInstruction writes one instruction and returns the next offset
func disassembleInstruction(sb *strings.Builder, code []byte, offset int, indent string) int {
	op := Opcode(code[offset])
	next := offset + 1
	var operand strings.Builder
	line := func() {
		sb.WriteString(strings.TrimRight(fmt.Sprintf("%s%04d %-20s %s", indent, offset, op, operand.String()), " "))
		sb.WriteByte('\n')
	}

	switch op {
	case OP_LOAD_NUMBER:
		var n float64
		n, next = readF64(code, next)
		operand.WriteString(FormatNumber(n))

	case OP_LOAD_STRING:
		var enc string
		enc, next = readCString(code, next)
		if s, err := decodeString(enc); err == nil {
			operand.WriteString(strconv.Quote(s))
		} else {
			operand.WriteString("<invalid " + enc + ">")
		}

	case OP_LOAD_BOOL:
		var b byte
		b, next = readByte(code, next)
		operand.WriteString(strconv.FormatBool(b != 0))

	case OP_LOAD_NAME, OP_STORE_NAME, OP_STORE_GLOBAL, OP_GET_ATTR, OP_SET_ATTR:
		var name string
		name, next = readCString(code, next)
		operand.WriteString(name)

	case OP_LOAD_FAST:
		var slot uint32
		var name string
		slot, next = readU32(code, next)
		name, next = readCString(code, next)
		operand.WriteString(fmt.Sprintf("#%d (%s)", slot, name))

	case OP_STORE_FAST, OP_BIND_PARAM:
		var slot uint32
		slot, next = readU32(code, next)
		operand.WriteString(fmt.Sprintf("#%d", slot))

	case OP_CALL_FUNCTION, OP_CALL_METHOD, OP_MAKE_ARRAY, OP_MAKE_OBJECT:
		var n uint32
		n, next = readU32(code, next)
		operand.WriteString(strconv.FormatUint(uint64(n), 10))

	case OP_JUMP, OP_POP_JUMP_IF_FALSE, OP_JUMP_IF_FALSE_OR_POP, OP_JUMP_IF_TRUE_OR_POP:
		var off int32
		off, next = readI32(code, next)
		operand.WriteString(fmt.Sprintf("%+d (to %04d)", off, offset+int(off)))

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
		operand.WriteString(fmt.Sprintf("%s/%d (%d bytes)", name, arity, size))
		line()
		disassembleCode(sb, code[next:end], indent+"    ")
		return end
	}

	line()
	return next
}
