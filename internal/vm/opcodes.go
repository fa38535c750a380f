// Package vm compiles envx programs to bytecode and executes them on a
// stack machine.
package vm

import "fmt"

// Opcode represents a single VM instruction.
//
// Operand encoding (all multi-byte integers little-endian):
//
//	u32   4-byte unsigned count or slot
//	i32   4-byte signed jump offset, relative to the opcode byte
//	f64   8-byte IEEE-754 number
//	cstr  null-terminated bytes
type Opcode byte

const (
	OP_INVALID Opcode = iota

	// Loads
	OP_LOAD_NUMBER // f64
	OP_LOAD_STRING // cstr (base64 payload)
	OP_LOAD_BOOL   // 1 byte
	OP_LOAD_NULL
	OP_LOAD_NAME // cstr
	OP_LOAD_FAST // u32 slot, cstr name (for error messages)

	// Stores
	OP_STORE_NAME   // cstr: current frame
	OP_STORE_GLOBAL // cstr: root frame
	OP_STORE_FAST   // u32: current frame slot
	OP_BIND_PARAM   // u32: current frame slot, at function entry

	// Functions
	OP_MAKE_FUNCTION // cstr name, u32 arity, u32 body length, body
	OP_CALL_FUNCTION // u32 argc
	OP_CALL_METHOD   // u32 argc
	OP_RETURN

	// Attributes and items
	OP_GET_ATTR // cstr
	OP_SET_ATTR // cstr
	OP_GET_INDEX
	OP_SET_INDEX

	// Collections
	OP_MAKE_ARRAY  // u32 element count
	OP_MAKE_OBJECT // u32 pair count

	// Unary
	OP_LOG_NOT // !
	OP_BIT_NOT // ~
	OP_POS     // unary +
	OP_NEG     // unary -

	// Binary
	OP_BIN_MUL
	OP_BIN_DIV
	OP_BIN_MOD
	OP_BIN_ADD
	OP_BIN_SUB
	OP_BIN_SHL
	OP_BIN_SHR
	OP_BIN_LT
	OP_BIN_LE
	OP_BIN_GT
	OP_BIN_GE
	OP_BIN_EQ
	OP_BIN_NE
	OP_BIN_AND // &
	OP_BIN_OR  // |
	OP_BIN_XOR // ^

	// Stack
	OP_POP_TOP
	OP_DUP_TOP
	OP_DUP_TOP_TWO
	OP_ROT_THREE // [a b c] -> [c a b]
	OP_ROT_FOUR  // [a b c d] -> [d a b c]

	// Control flow (i32 operand)
	OP_JUMP
	OP_POP_JUMP_IF_FALSE
	OP_JUMP_IF_FALSE_OR_POP
	OP_JUMP_IF_TRUE_OR_POP

	opcodeCount
)

var opcodeNames = [...]string{
	OP_INVALID:              "INVALID",
	OP_LOAD_NUMBER:          "LOAD_NUMBER",
	OP_LOAD_STRING:          "LOAD_STRING",
	OP_LOAD_BOOL:            "LOAD_BOOL",
	OP_LOAD_NULL:            "LOAD_NULL",
	OP_LOAD_NAME:            "LOAD_NAME",
	OP_LOAD_FAST:            "LOAD_FAST",
	OP_STORE_NAME:           "STORE_NAME",
	OP_STORE_GLOBAL:         "STORE_GLOBAL",
	OP_STORE_FAST:           "STORE_FAST",
	OP_BIND_PARAM:           "BIND_PARAM",
	OP_MAKE_FUNCTION:        "MAKE_FUNCTION",
	OP_CALL_FUNCTION:        "CALL_FUNCTION",
	OP_CALL_METHOD:          "CALL_METHOD",
	OP_RETURN:               "RETURN",
	OP_GET_ATTR:             "GET_ATTR",
	OP_SET_ATTR:             "SET_ATTR",
	OP_GET_INDEX:            "GET_INDEX",
	OP_SET_INDEX:            "SET_INDEX",
	OP_MAKE_ARRAY:           "MAKE_ARRAY",
	OP_MAKE_OBJECT:          "MAKE_OBJECT",
	OP_LOG_NOT:              "LOG_NOT",
	OP_BIT_NOT:              "BIT_NOT",
	OP_POS:                  "POS",
	OP_NEG:                  "NEG",
	OP_BIN_MUL:              "BIN_MUL",
	OP_BIN_DIV:              "BIN_DIV",
	OP_BIN_MOD:              "BIN_MOD",
	OP_BIN_ADD:              "BIN_ADD",
	OP_BIN_SUB:              "BIN_SUB",
	OP_BIN_SHL:              "BIN_SHL",
	OP_BIN_SHR:              "BIN_SHR",
	OP_BIN_LT:               "BIN_LT",
	OP_BIN_LE:               "BIN_LE",
	OP_BIN_GT:               "BIN_GT",
	OP_BIN_GE:               "BIN_GE",
	OP_BIN_EQ:               "BIN_EQ",
	OP_BIN_NE:               "BIN_NE",
	OP_BIN_AND:              "BIN_AND",
	OP_BIN_OR:               "BIN_OR",
	OP_BIN_XOR:              "BIN_XOR",
	OP_POP_TOP:              "POP_TOP",
	OP_DUP_TOP:              "DUP_TOP",
	OP_DUP_TOP_TWO:          "DUP_TOP_TWO",
	OP_ROT_THREE:            "ROT_THREE",
	OP_ROT_FOUR:             "ROT_FOUR",
	OP_JUMP:                 "JUMP",
	OP_POP_JUMP_IF_FALSE:    "POP_JUMP_IF_FALSE",
	OP_JUMP_IF_FALSE_OR_POP: "JUMP_IF_FALSE_OR_POP",
	OP_JUMP_IF_TRUE_OR_POP:  "JUMP_IF_TRUE_OR_POP",
}

func (op Opcode) String() string {
	if op < opcodeCount {
		return opcodeNames[op]
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", byte(op))
}

// binaryOpcodes maps infix and compound-assignment operators to opcodes.
// && and || are short-circuit jumps and are not listed.
var binaryOpcodes = map[string]Opcode{
	"*":  OP_BIN_MUL,
	"/":  OP_BIN_DIV,
	"%":  OP_BIN_MOD,
	"+":  OP_BIN_ADD,
	"-":  OP_BIN_SUB,
	"<<": OP_BIN_SHL,
	">>": OP_BIN_SHR,
	"<":  OP_BIN_LT,
	"<=": OP_BIN_LE,
	">":  OP_BIN_GT,
	">=": OP_BIN_GE,
	"==": OP_BIN_EQ,
	"!=": OP_BIN_NE,
	"&":  OP_BIN_AND,
	"|":  OP_BIN_OR,
	"^":  OP_BIN_XOR,
}

var unaryOpcodes = map[string]Opcode{
	"!": OP_LOG_NOT,
	"~": OP_BIT_NOT,
	"+": OP_POS,
	"-": OP_NEG,
}

// operatorSymbols is the reverse of binaryOpcodes, used in error messages.
var operatorSymbols = func() map[Opcode]string {
	m := make(map[Opcode]string, len(binaryOpcodes))
	for sym, op := range binaryOpcodes {
		m[op] = sym
	}
	return m
}()
