package lexer

import "testing"

func collectTypes(src string) []TokenType {
	lex := NewLexer("test", src)
	var types []TokenType
	for {
		tok := lex.Next()
		types = append(types, tok.Type)
		if tok.Type == TokenEOF {
			return types
		}
	}
}

func TestBasicTokenization(t *testing.T) {
	types := collectTypes("x = 1 + 2")
	want := []TokenType{TokenIdent, TokenAssign, TokenNumber, TokenPlus, TokenNumber, TokenEOF}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, types[i], want[i])
		}
	}
}

func TestKeywordsResolveOverIdent(t *testing.T) {
	lex := NewLexer("test", "define")
	tok := lex.Next()
	if tok.Type != TokenDefine {
		t.Fatalf("expected DEFINE keyword, got %s", tok.Type)
	}
}

func TestCaretAndPowerAreDistinctTokens(t *testing.T) {
	types := collectTypes("a ^ b ** c")
	want := []TokenType{TokenIdent, TokenCaret, TokenIdent, TokenPower, TokenIdent, TokenEOF}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, types[i], want[i])
		}
	}
}

func TestNewlineTokenWhenModeOn(t *testing.T) {
	lex := NewLexer("test", "1\n2")
	first := lex.Next()
	if first.Type != TokenNumber {
		t.Fatalf("expected NUMBER, got %s", first.Type)
	}
	nl := lex.Next()
	if nl.Type != TokenNewline {
		t.Fatalf("expected NEWLINE by default, got %s", nl.Type)
	}
}

func TestNewlineSuppressedWhenModeOff(t *testing.T) {
	lex := NewLexer("test", "1\n2")
	lex.PushNewlineMode(false)
	defer lex.PopNewlineMode()
	first := lex.Next()
	second := lex.Next()
	if first.Type != TokenNumber || second.Type != TokenNumber {
		t.Fatalf("expected NEWLINE to be skipped, got %s then %s", first.Type, second.Type)
	}
}

func TestQuoTokenizesAsIntegerDivision(t *testing.T) {
	types := collectTypes("7 // 2")
	want := []TokenType{TokenNumber, TokenQuo, TokenNumber, TokenEOF}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, types[i], want[i])
		}
	}
}

func TestQuoEqTokenizesAsCompoundAssign(t *testing.T) {
	types := collectTypes("x //= 2")
	want := []TokenType{TokenIdent, TokenQuoEq, TokenNumber, TokenEOF}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, types[i], want[i])
		}
	}
}

func TestBlockCommentsAreSkipped(t *testing.T) {
	types := collectTypes("1 /* block\ncomment */ 2")
	want := []TokenType{TokenNumber, TokenNumber, TokenEOF}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, types[i], want[i])
		}
	}
}

func TestStringEscapeDecoding(t *testing.T) {
	lex := NewLexer("test", `"a\nb\tc"`)
	tok := lex.Next()
	if tok.Type != TokenString {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Str != "a\nb\tc" {
		t.Fatalf("expected decoded escapes, got %q", tok.Str)
	}
}

func TestStringHexEscape(t *testing.T) {
	lex := NewLexer("test", `"\x41"`)
	tok := lex.Next()
	if tok.Str != "A" {
		t.Fatalf(`expected "\x41" to decode to "A", got %q`, tok.Str)
	}
}

func TestImaginaryNumberSuffix(t *testing.T) {
	lex := NewLexer("test", "3.5i")
	tok := lex.Next()
	if tok.Type != TokenImaginary {
		t.Fatalf("expected IMAGINARY, got %s", tok.Type)
	}
	if tok.Lexeme != "3.5i" {
		t.Fatalf("expected lexeme 3.5i, got %s", tok.Lexeme)
	}
}

func TestNumberWithExponent(t *testing.T) {
	lex := NewLexer("test", "1e10")
	tok := lex.Next()
	if tok.Type != TokenNumber || tok.Lexeme != "1e10" {
		t.Fatalf("expected NUMBER 1e10, got %s %q", tok.Type, tok.Lexeme)
	}
}

func TestRescanPushesTokenBack(t *testing.T) {
	lex := NewLexer("test", "1 2")
	first := lex.Next()
	lex.Rescan(first)
	again := lex.Next()
	if again.Lexeme != first.Lexeme {
		t.Fatalf("rescanned token should replay identically, got %q vs %q", again.Lexeme, first.Lexeme)
	}
	second := lex.Next()
	if second.Lexeme != "2" {
		t.Fatalf("expected to resume scanning after the rescanned token, got %q", second.Lexeme)
	}
}

func TestPushSourceResumesOuterSourceOnExhaustion(t *testing.T) {
	lex := NewLexer("outer", "1 2")
	first := lex.Next()
	if first.Lexeme != "1" {
		t.Fatalf("expected 1, got %q", first.Lexeme)
	}
	lex.PushSource("inner", "99")
	inner := lex.Next()
	if inner.Lexeme != "99" {
		t.Fatalf("expected to read from the pushed inner source, got %q", inner.Lexeme)
	}
	resumed := lex.Next()
	if resumed.Lexeme != "2" {
		t.Fatalf("expected to resume the outer source once inner is exhausted, got %q", resumed.Lexeme)
	}
}
