package vm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/funvibe/envx/internal/diagnostics"
)

func compileError(t *testing.T, input string) *diagnostics.DiagnosticError {
	t.Helper()
	code, err := NewCompiler().Compile(parse(t, input))
	if err == nil {
		t.Fatalf("expected a compile error for %q", input)
	}
	if code != nil {
		t.Errorf("no bytecode expected on error, got %d bytes", len(code))
	}
	var diag *diagnostics.DiagnosticError
	if !errors.As(err, &diag) {
		t.Fatalf("expected *DiagnosticError, got %T", err)
	}
	return diag
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
	}{
		{"redeclare var", `var x = 1; var x = 2;`, diagnostics.ErrC001},
		{"redeclare function", `fn f() {} var f = 1;`, diagnostics.ErrC001},
		{"redeclare param", `fn f(a, a) {}`, diagnostics.ErrC001},
		{"local shadows function", `fn f() {} fn g() { local f = 1; }`, diagnostics.ErrC001},
		{"redeclare local", `fn f() { local a; const a = 1; }`, diagnostics.ErrC001},
		{"var in function", `fn f() { var x = 1; }`, diagnostics.ErrC002},
		{"var in block", `if (true) { var x = 1; }`, diagnostics.ErrC002},
		{"local at top level", `local x = 1;`, diagnostics.ErrC002},
		{"local in top level block", `{ local x = 1; }`, diagnostics.ErrC002},
		{"nested fn declaration", `fn f() { fn g() {} }`, diagnostics.ErrC002},
		{"fn declaration in loop", `while (false) { fn g() {} }`, diagnostics.ErrC002},
		{"break outside loop", `break;`, diagnostics.ErrC003},
		{"continue outside loop", `continue;`, diagnostics.ErrC003},
		{"break crosses function", `while (true) { g = fn() { break; }; }`, diagnostics.ErrC003},
		{"return at top level", `return 1;`, diagnostics.ErrC003},
		{"assign const", `const c = 1; c = 2;`, diagnostics.ErrC004},
		{"increment const", `const c = 1; c++;`, diagnostics.ErrC004},
		{"compound assign local const", `fn f() { const k = 1; k += 1; }`, diagnostics.ErrC004},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag := compileError(t, tt.input)
			if diag.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", diag.Code, tt.code, diag.Message)
			}
		})
	}
}

func TestCompileErrorSpan(t *testing.T) {
	diag := compileError(t, "var a = 1;\nvar a = 2;")
	if diag.Span.Line != 2 {
		t.Errorf("error line = %d, want 2", diag.Span.Line)
	}
	if diag.Message != "Identifier 'a' has already been declared" {
		t.Errorf("unexpected message %q", diag.Message)
	}
}

func TestScopesThatCompile(t *testing.T) {
	inputs := []string{
		// const at top level and in blocks
		`const a = 1; { const b = 2; }`,
		// the same local name in sibling blocks
		`fn f() { if (true) { local x = 1; } else { local x = 2; } }`,
		// a block local shadowing a parameter
		`fn f(x) { if (true) { local x = x + 1; } }`,
		// local shadowing a global var
		`var v = 1; fn f() { local v = 2; return v; }`,
		// for-init declarations belong to the enclosing frame
		`for (var i = 0; i < 1; i++) {}`,
		`fn f() { for (local i = 0; i < 1; i++) {} }`,
		// function expressions anywhere
		`fn f() { local g = fn() { return 1; }; return g(); }`,
	}
	for _, input := range inputs {
		if _, err := NewCompiler().Compile(parse(t, input)); err != nil {
			t.Errorf("%q: unexpected error %s", input, err)
		}
	}
}

func TestBytecodeLayout(t *testing.T) {
	want := NewChunk()
	want.WriteOp(OP_LOAD_NUMBER)
	want.WriteF64(1)
	want.WriteOp(OP_STORE_GLOBAL)
	want.WriteCString("x")
	want.WriteOp(OP_LOAD_STRING)
	want.WriteCString("aGk=") // "hi"
	want.WriteOp(OP_STORE_GLOBAL)
	want.WriteCString("s")
	want.WriteOp(OP_LOAD_NULL)
	want.WriteOp(OP_RETURN)

	got := compile(t, `const x = 1; var s = "hi";`)
	if !bytes.Equal(got, want.Code) {
		t.Errorf("bytecode mismatch\n got: %v\nwant: %v", got, want.Code)
	}
}

func TestJumpOffsetsAreRelativeToOpcode(t *testing.T) {
	code := compile(t, `while (false) {}`)

	// 0: LOAD_BOOL 0; 2: POP_JUMP_IF_FALSE; 7: JUMP; 12: LOAD_NULL; 13: RETURN
	if Opcode(code[2]) != OP_POP_JUMP_IF_FALSE {
		t.Fatalf("expected POP_JUMP_IF_FALSE at 2, got %s", Opcode(code[2]))
	}
	if off, _ := readI32(code, 3); off != 10 {
		t.Errorf("exit jump offset = %d, want 10", off)
	}
	if Opcode(code[7]) != OP_JUMP {
		t.Fatalf("expected JUMP at 7, got %s", Opcode(code[7]))
	}
	if off, _ := readI32(code, 8); off != -7 {
		t.Errorf("loop jump offset = %d, want -7", off)
	}
	if len(code) != 14 || Opcode(code[12]) != OP_LOAD_NULL || Opcode(code[13]) != OP_RETURN {
		t.Errorf("unexpected tail %v", code[12:])
	}
}

func TestFunctionLayout(t *testing.T) {
	code := compile(t, `fn id(a) { return a; }`)
	if Opcode(code[0]) != OP_MAKE_FUNCTION {
		t.Fatalf("expected MAKE_FUNCTION, got %s", Opcode(code[0]))
	}
	name, next := readCString(code, 1)
	arity, next := readU32(code, next)
	size, next := readU32(code, next)
	if name != "id" || arity != 1 {
		t.Errorf("header = %s/%d, want id/1", name, arity)
	}

	body := code[next : next+int(size)]
	if Opcode(body[0]) != OP_BIND_PARAM {
		t.Errorf("body should start by binding this, got %s", Opcode(body[0]))
	}
	if Opcode(body[5]) != OP_BIND_PARAM {
		t.Errorf("second instruction should bind a, got %s", Opcode(body[5]))
	}
	if tail := body[len(body)-2:]; Opcode(tail[0]) != OP_LOAD_NULL || Opcode(tail[1]) != OP_RETURN {
		t.Errorf("body should end with LOAD_NULL RETURN, got %v", tail)
	}

	rest := code[next+int(size):]
	if Opcode(rest[0]) != OP_STORE_GLOBAL {
		t.Errorf("function should be stored after MAKE_FUNCTION, got %s", Opcode(rest[0]))
	}
}

func TestArgumentsEvaluateRightToLeft(t *testing.T) {
	machine, _ := runVM(t, `
var order = [];
fn note(x) { order.push(x); return x; }
fn three(a, b, c) { return [a, b, c]; }
var r = three(note(1), note(2), note(3));
`)
	testGlobal(t, machine, "r", []interface{}{1.0, 2.0, 3.0})
	testGlobal(t, machine, "order", []interface{}{3.0, 2.0, 1.0})
}
