package lexer

import (
	"testing"

	"github.com/funvibe/envx/internal/diagnostics"
	"github.com/funvibe/envx/internal/pipeline"
	"github.com/funvibe/envx/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `var x = 10;
fn add(a, b) { return a + b; }
x += 1; x <<= 2; y >>= 1; a && b || !c;
i++; j--; k != 3 == true; m ^= 0x1F & ~n | 7 % 2;
"hi\n" ? [1.5] : {k: null};`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.VAR, "var"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.NUMBER, "10"},
		{token.SEMICOLON, ";"},
		{token.FN, "fn"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.IDENT, "x"},
		{token.PLUS_ASSIGN, "+="},
		{token.NUMBER, "1"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "x"},
		{token.LSHIFT_ASSIGN, "<<="},
		{token.NUMBER, "2"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "y"},
		{token.RSHIFT_ASSIGN, ">>="},
		{token.NUMBER, "1"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.AND, "&&"},
		{token.IDENT, "b"},
		{token.OR, "||"},
		{token.BANG, "!"},
		{token.IDENT, "c"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "i"},
		{token.INCR, "++"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "j"},
		{token.DECR, "--"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "k"},
		{token.NOT_EQ, "!="},
		{token.NUMBER, "3"},
		{token.EQ, "=="},
		{token.TRUE, "true"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "m"},
		{token.CARET_ASSIGN, "^="},
		{token.NUMBER, "0x1F"},
		{token.AMPER, "&"},
		{token.TILDE, "~"},
		{token.IDENT, "n"},
		{token.PIPE, "|"},
		{token.NUMBER, "7"},
		{token.PERCENT, "%"},
		{token.NUMBER, "2"},
		{token.SEMICOLON, ";"},
		{token.STRING, `"hi\n"`},
		{token.QUESTION, "?"},
		{token.LBRACKET, "["},
		{token.NUMBER, "1.5"},
		{token.RBRACKET, "]"},
		{token.COLON, ":"},
		{token.LBRACE, "{"},
		{token.IDENT, "k"},
		{token.COLON, ":"},
		{token.NULL, "null"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"0", 0},
		{"42", 42},
		{"3.25", 3.25},
		{"0x1f", 31},
		{"0XFF", 255},
		{"0b101", 5},
		{"0o17", 15},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != token.NUMBER {
				t.Fatalf("expected NUMBER, got %s (%v)", tok.Type, tok.Literal)
			}
			if tok.Literal.(float64) != tt.expected {
				t.Errorf("literal = %v, want %v", tok.Literal, tt.expected)
			}
		})
	}
}

func TestNumberFollowedByMember(t *testing.T) {
	l := New("4.isEven")
	want := []token.TokenType{token.NUMBER, token.DOT, token.IDENT, token.EOF}
	for i, tt := range want {
		if tok := l.NextToken(); tok.Type != tt {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, tt)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	tok := New(`"a\tb\"c\\d\qe\0"`).NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if got, want := tok.Literal.(string), "a\tb\"c\\dqe\x00"; got != want {
		t.Errorf("literal = %q, want %q", got, want)
	}
}

func TestComments(t *testing.T) {
	l := New("// line\nx /* block\n comment */ y")
	for _, want := range []string{"x", "y"} {
		tok := l.NextToken()
		if tok.Type != token.IDENT || tok.Lexeme != want {
			t.Fatalf("got %s %q, want IDENT %q", tok.Type, tok.Lexeme, want)
		}
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF, got %s", tok.Type)
	}
}

func TestPositions(t *testing.T) {
	l := New("a\n  bcd \"xy\"")
	a := l.NextToken()
	if a.Line != 1 || a.Column != 1 || a.EndColumn != 1 {
		t.Errorf("a span = %+v", a.Span())
	}
	b := l.NextToken()
	if b.Line != 2 || b.Column != 3 || b.EndLine != 2 || b.EndColumn != 5 {
		t.Errorf("bcd span = %+v", b.Span())
	}
	s := l.NextToken()
	if s.Column != 7 || s.EndColumn != 10 {
		t.Errorf("string span = %+v", s.Span())
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
	}{
		{"unterminated_string", `x = "abc`, diagnostics.ErrL003},
		{"newline_in_string", "x = \"ab\nc\";", diagnostics.ErrL003},
		{"bad_hex", "0xZZ", diagnostics.ErrL002},
		{"bad_binary", "0b2", diagnostics.ErrL002},
		{"unknown_char", "x = @;", diagnostics.ErrL001},
		{"unterminated_comment", "/* never", diagnostics.ErrL003},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := pipeline.NewPipelineContext(tt.input)
			ctx.FilePath = "test.envx"
			ctx = (&LexerProcessor{}).Process(ctx)
			if len(ctx.Errors) != 1 {
				t.Fatalf("expected 1 error, got %d", len(ctx.Errors))
			}
			if ctx.Errors[0].Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", ctx.Errors[0].Code, tt.code, ctx.Errors[0].Message)
			}
			if ctx.Errors[0].File != "test.envx" {
				t.Errorf("file = %q", ctx.Errors[0].File)
			}
			if ctx.TokenStream != nil {
				t.Errorf("token stream should be nil on error")
			}
		})
	}
}
