package parser_test

import (
	"testing"

	"github.com/funvibe/envx/internal/ast"
)

// FuzzParser feeds arbitrary text through the lexer and parser. Any input
// must either produce a program or a diagnostic with a code, never a panic.
func FuzzParser(f *testing.F) {
	f.Add("var x = 1 + 2;")
	f.Add("fn f(a, b) { if (a) { return b; } else { return a; } }")
	f.Add("const o = {a: [1, 2], \"b\": null}; o.a[0] += 1;")
	f.Add("do { i++; } while (i < 3);")
	f.Add("for (var i = 0; i < 3; i++) { continue; }")
	f.Add("x = y ? \"\\u00e9\" : 'z';")
	f.Add("/* unterminated")

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 4096 {
			return
		}
		ctx := parseWithErrors(input)
		if len(ctx.Errors) > 0 {
			for _, err := range ctx.Errors {
				if err.Code == "" || err.Message == "" {
					t.Errorf("diagnostic without code or message: %#v", err)
				}
			}
			return
		}
		if _, ok := ctx.AstRoot.(*ast.Program); !ok {
			t.Errorf("no program for %q", input)
		}
	})
}
