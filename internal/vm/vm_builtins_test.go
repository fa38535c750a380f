package vm

import "testing"

func TestBuiltinMembers(t *testing.T) {
	tests := []struct {
		expr     string
		expected interface{}
	}{
		{"4.isEven()", true},
		{"(7).isEven()", false},
		{"(12).toString()", "12"},
		{"true.toString()", "true"},
		{"[1, 2].toString()", "[1, 2]"},
		{`"ab".concat("cd", "ef")`, "abcdef"},
		{`"héllo".length()`, 5.0},
		{"[1, 2, 3].length()", 3.0},
		{"[1, 2].peek()", 2.0},
		{`Number.parse("42")`, 42.0},
		{`Number.parse(" 2.5 ")`, 2.5},
		{`Number.parse("0x10")`, 16.0},
		{`String.from(3)`, "3"},
		{`String.from([1, "a"])`, `[1, "a"]`},
		{"Array.new()", []interface{}{}},
		{"Array.new(1, 2)", []interface{}{1.0, 2.0}},
		{"Object.keys({b: 1, a: 2})", []interface{}{"b", "a"}},
		{`Error.new("boom").message()`, "boom"},
		{"typeof(1)", "number"},
		{`typeof("s")`, "string"},
		{"typeof(true)", "bool"},
		{"typeof(null)", "null"},
		{"typeof([])", "array"},
		{"typeof({})", "object"},
		{"typeof(fn() {})", "function"},
		{"typeof(println)", "function"},
		{`typeof(Error.new("x"))`, "error"},
		{"typeof(Number)", "type"},
		{"typeof(missing)", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			machine, _ := runVM(t, "var r = "+tt.expr+";")
			testGlobal(t, machine, "r", tt.expected)
		})
	}
}

func TestArrayMutation(t *testing.T) {
	machine, _ := runVM(t, `
var a = [];
var n = a.push(1, 2, 3);
var last = a.pop();
var top = a.peek();
`)
	testGlobal(t, machine, "n", 3.0)
	testGlobal(t, machine, "last", 3.0)
	testGlobal(t, machine, "top", 2.0)
	testGlobal(t, machine, "a", []interface{}{1.0, 2.0})
}

func TestObjectPropertiesShadowMembers(t *testing.T) {
	machine, _ := runVM(t, `
var o = {toString: fn() { return "custom"; }};
var s = o.toString();
var plain = {}.toString();
var absent = {}.nothing;
`)
	testGlobal(t, machine, "s", "custom")
	testGlobal(t, machine, "plain", "{}")
	testGlobal(t, machine, "absent", nil)
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		expr    string
		message string
	}{
		{"[].pop()", "IndexError: pop from empty array"},
		{"[].peek()", "IndexError: peek from empty array"},
		{`Number.parse("abc")`, `ValueError: could not convert string to number: "abc"`},
		{"Number.parse(null)", "TypeError: cannot convert 'null' to number"},
		{`"a".concat(1)`, "TypeError: concat() expects string arguments, got 'number'"},
		{"Object.keys(1)", "TypeError: Object.keys() expects an object, got 'number'"},
		{"typeof()", "TypeError: typeof() takes 1 arguments but 0 were given"},
		{"(1).isEven(2)", "TypeError: isEven() takes 0 arguments but 1 were given"},
		{"Number.nothing", "AttributeError: 'type' has no attribute 'nothing'"},
		{`Error.new("bad")`, "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			machine, _ := runVM(t, "var r = "+tt.expr+";")
			testErrorGlobal(t, machine, "r", tt.message)
		})
	}
}

func TestMemberRejectsWrongReceiver(t *testing.T) {
	machine, _ := runVM(t, `
var length = [1].length;
var r = length();
`)
	testErrorGlobal(t, machine, "r", "TypeError: length() requires a 'array' receiver, got 'null'")
}

func TestBuiltinsAreReassignable(t *testing.T) {
	machine, out := runVM(t, `
var seen = [];
println = fn(x) { seen.push(x); };
println("hidden");
`)
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
	testGlobal(t, machine, "seen", []interface{}{"hidden"})
}
