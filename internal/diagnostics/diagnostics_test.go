package diagnostics

import (
	"strings"
	"testing"

	"github.com/funvibe/envx/internal/token"
)

func TestRenderMarksSpanLines(t *testing.T) {
	src := "a\nb\nc\nd\ne\nf\ng\nh"
	err := NewSpanError(ErrP001, token.Span{Line: 5, Column: 2, EndLine: 5, EndColumn: 2}, "Expected ; but found }")
	err.File = "development.envx"
	err.Source = src

	got := err.Render(false)
	want := strings.Join([]string{
		"SyntaxError: Expected ; but found } at development.envx:5:2",
		"2 |    b",
		"3 |    c",
		"4 |    d",
		"5 |  > e",
		"6 |    f",
		"7 |    g",
		"8 |    h",
	}, "\n")
	if got != want {
		t.Fatalf("render mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderPadsLineNumbers(t *testing.T) {
	var lines []string
	for i := 0; i < 12; i++ {
		lines = append(lines, "x")
	}
	err := NewSpanError(ErrC001, token.Span{Line: 9, Column: 1, EndLine: 9, EndColumn: 1}, "boom")
	err.Source = strings.Join(lines, "\n")

	out := strings.Split(err.Render(false), "\n")
	if !strings.HasPrefix(out[0], "CompileError: boom at <input>:9:1") {
		t.Errorf("header = %q", out[0])
	}
	if out[1] != " 6 |    x" {
		t.Errorf("first context line = %q", out[1])
	}
	if out[4] != " 9 |  > x" {
		t.Errorf("marked line = %q", out[4])
	}
	if out[len(out)-1] != "12 |    x" {
		t.Errorf("last context line = %q", out[len(out)-1])
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrL001, "SyntaxError"},
		{ErrP003, "SyntaxError"},
		{ErrC002, "CompileError"},
		{ErrR001, "RuntimeError"},
		{"", "Error"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := (&DiagnosticError{Code: tt.code}).Kind(); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderWithoutSource(t *testing.T) {
	err := NewError(ErrR002, token.Token{}, "unknown opcode 0xff")
	if got := err.Error(); got != "RuntimeError: unknown opcode 0xff at <input>" {
		t.Errorf("Error() = %q", got)
	}
}

func TestRenderColor(t *testing.T) {
	err := NewSpanError(ErrP001, token.Span{Line: 1, Column: 1, EndLine: 1, EndColumn: 1}, "bad")
	err.Source = "x"
	out := err.Render(true)
	if !strings.Contains(out, ansiRed) || !strings.Contains(out, ansiReset) {
		t.Errorf("expected ANSI codes in %q", out)
	}
}
