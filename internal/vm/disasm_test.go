package vm

import (
	"errors"
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	code := compile(t, `
fn add(a, b) { return a + b; }
var s = "hi";
if (s) { s = add(1, 2); }
`)
	out, err := Disassemble(code, "main.envx")
	if err != nil {
		t.Fatalf("Disassemble: %s", err)
	}

	expected := []string{
		"== main.envx ==",
		"0000 MAKE_FUNCTION        add/2 (",
		"    0000 BIND_PARAM           #0",
		"    0005 BIND_PARAM           #1",
		"    0010 BIND_PARAM           #2",
		"LOAD_FAST            #1 (a)",
		"BIN_ADD",
		"STORE_GLOBAL         add",
		`LOAD_STRING          "hi"`,
		"POP_JUMP_IF_FALSE",
		"CALL_FUNCTION        2",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
	for i, line := range strings.Split(out, "\n") {
		if strings.TrimRight(line, " ") != line {
			t.Errorf("line %d has trailing spaces: %q", i, line)
		}
	}
}

func TestDisassembleJumpTargets(t *testing.T) {
	out, err := Disassemble(compile(t, `while (false) {}`), "loop")
	if err != nil {
		t.Fatalf("Disassemble: %s", err)
	}
	if !strings.Contains(out, "0002 POP_JUMP_IF_FALSE    +10 (to 0012)") {
		t.Errorf("exit jump not rendered:\n%s", out)
	}
	if !strings.Contains(out, "0007 JUMP                 -7 (to 0000)") {
		t.Errorf("loop jump not rendered:\n%s", out)
	}
}

func TestDisassembleTruncated(t *testing.T) {
	_, err := Disassemble([]byte{byte(OP_LOAD_NAME), 'x'}, "broken")
	if !errors.Is(err, errTruncatedBytecode) {
		t.Errorf("expected truncated bytecode error, got %v", err)
	}
}
