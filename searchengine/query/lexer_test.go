package query

import (
	"errors"
	"strings"
	"testing"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}
	return out
}

func sameKinds(a, b []TokenKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLexEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		tokens, err := Lex(input)
		if err != nil {
			t.Fatalf("Lex(%q): unexpected error: %v", input, err)
		}
		if len(tokens) != 1 || tokens[0].Kind != TokEOF {
			t.Errorf("Lex(%q): expected only EOF, got %v", input, tokens)
		}
	}
}

func TestLexQualifier(t *testing.T) {
	tokens, err := Lex("status:open")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{TokQualifier, TokColon, TokWord, TokEOF}
	if !sameKinds(kinds(tokens), want) {
		t.Fatalf("expected %v, got %v", want, kinds(tokens))
	}
	if tokens[0].Value != "status" || tokens[2].Value != "open" {
		t.Errorf("expected status/open, got %q/%q", tokens[0].Value, tokens[2].Value)
	}
}

func TestLexQualifierValues(t *testing.T) {
	tokens, err := Lex(`label:foo,"bar baz",qux`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{TokQualifier, TokColon, TokWord, TokComma, TokQuoted, TokComma, TokWord, TokEOF}
	if !sameKinds(kinds(tokens), want) {
		t.Fatalf("expected %v, got %v", want, kinds(tokens))
	}
	if tokens[4].Value != "bar baz" {
		t.Errorf("expected quoted value 'bar baz', got %q", tokens[4].Value)
	}
	if tokens[4].Raw != `"bar baz"` {
		t.Errorf("expected raw quoted text, got %q", tokens[4].Raw)
	}
}

func TestLexSpaceBeforeColonIsNotQualifier(t *testing.T) {
	tokens, err := Lex("status :open")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{TokWord, TokColon, TokWord, TokEOF}
	if !sameKinds(kinds(tokens), want) {
		t.Fatalf("expected %v, got %v", want, kinds(tokens))
	}
}

func TestLexColonInsideValue(t *testing.T) {
	tokens, err := Lex("url:http://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 4 || tokens[2].Value != "http://example.com" {
		t.Fatalf("expected a single value token, got %v", tokens)
	}
}

func TestLexKeywords(t *testing.T) {
	tokens, err := Lex("a and b OR c Not d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{TokWord, TokAnd, TokWord, TokOr, TokWord, TokNot, TokWord, TokEOF}
	if !sameKinds(kinds(tokens), want) {
		t.Fatalf("expected %v, got %v", want, kinds(tokens))
	}
}

func TestLexKeywordsInsideWordsAndQuotes(t *testing.T) {
	tokens, err := Lex(`android "OR" or:x status:and`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{TokWord, TokQuoted, TokQualifier, TokColon, TokWord, TokQualifier, TokColon, TokWord, TokEOF}
	if !sameKinds(kinds(tokens), want) {
		t.Fatalf("expected %v, got %v", want, kinds(tokens))
	}
}

func TestLexDashNegation(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenKind
	}{
		{"-status:new", []TokenKind{TokNot, TokQualifier, TokColon, TokWord, TokEOF}},
		{"-foo", []TokenKind{TokNot, TokWord, TokEOF}},
		{`-"foo bar"`, []TokenKind{TokNot, TokQuoted, TokEOF}},
		{"-(a)", []TokenKind{TokNot, TokLParen, TokWord, TokRParen, TokEOF}},
		{"- foo", []TokenKind{TokWord, TokWord, TokEOF}},
		{"foo-bar", []TokenKind{TokWord, TokEOF}},
		{"a,-b", []TokenKind{TokWord, TokComma, TokWord, TokEOF}},
		{"x:-1", []TokenKind{TokQualifier, TokColon, TokWord, TokEOF}},
	}
	for _, tt := range tests {
		tokens, err := Lex(tt.input)
		if err != nil {
			t.Fatalf("Lex(%q): unexpected error: %v", tt.input, err)
		}
		if !sameKinds(kinds(tokens), tt.want) {
			t.Errorf("Lex(%q): expected %v, got %v", tt.input, tt.want, kinds(tokens))
		}
	}
}

func TestLexEscapes(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{`foo\:bar`, "foo:bar"},
		{`a\,b`, "a,b"},
		{`\(x\)`, "(x)"},
		{`back\\slash`, `back\slash`},
		{`keep\n`, `keep\n`},
		{`say\"hi`, `say"hi`},
	}
	for _, tt := range tests {
		tokens, err := Lex(tt.input)
		if err != nil {
			t.Fatalf("Lex(%q): unexpected error: %v", tt.input, err)
		}
		if len(tokens) != 2 || tokens[0].Kind != TokWord {
			t.Fatalf("Lex(%q): expected one word, got %v", tt.input, tokens)
		}
		if tokens[0].Value != tt.value {
			t.Errorf("Lex(%q): expected value %q, got %q", tt.input, tt.value, tokens[0].Value)
		}
	}
}

func TestLexEscapedKeywordIsWord(t *testing.T) {
	tokens, err := Lex(`\"OR\"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != TokWord || tokens[0].Value != `"OR"` {
		t.Errorf("expected word \"OR\", got %v", tokens[0])
	}
}

func TestLexQuotedEscapes(t *testing.T) {
	tokens, err := Lex(`"say \"hi\" \\ \n"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Value != `say "hi" \ \n` {
		t.Errorf("unexpected quoted value %q", tokens[0].Value)
	}
}

func TestLexKeepsInvalidUTF8(t *testing.T) {
	for _, input := range []string{"caf\xe9", "a\xffb", "label:caf\xe9"} {
		tokens, err := Lex(input)
		if err != nil {
			t.Fatalf("Lex(%q): unexpected error: %v", input, err)
		}
		last := tokens[len(tokens)-2]
		if want := input[strings.LastIndexByte(input, ':')+1:]; last.Value != want {
			t.Errorf("Lex(%q): expected value %q, got %q", input, want, last.Value)
		}
	}
}

func TestLexParens(t *testing.T) {
	tokens, err := Lex("(a OR (b)) c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{TokLParen, TokWord, TokOr, TokLParen, TokWord, TokRParen, TokRParen, TokWord, TokEOF}
	if !sameKinds(kinds(tokens), want) {
		t.Fatalf("expected %v, got %v", want, kinds(tokens))
	}
}

func TestLexPositions(t *testing.T) {
	tokens, err := Lex("  foo  bar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Pos != 2 || tokens[1].Pos != 7 || tokens[2].Pos != 10 {
		t.Errorf("unexpected positions: %d %d %d", tokens[0].Pos, tokens[1].Pos, tokens[2].Pos)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
		pos   int
	}{
		{`title:"unterminated`, ErrUnterminatedQuote, 6},
		{"(a OR b", ErrUnbalancedParen, 0},
		{"a) b", ErrUnbalancedParen, 1},
		{`foo\`, ErrTrailingEscape, 3},
	}
	for _, tt := range tests {
		_, err := Lex(tt.input)
		if err == nil {
			t.Fatalf("Lex(%q): expected error", tt.input)
		}
		if !errors.Is(err, tt.err) {
			t.Errorf("Lex(%q): expected %v, got %v", tt.input, tt.err, err)
		}
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("Lex(%q): expected a syntax error, got %v", tt.input, err)
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("Lex(%q): expected *SyntaxError, got %T", tt.input, err)
		}
		if se.Pos != tt.pos {
			t.Errorf("Lex(%q): expected position %d, got %d", tt.input, tt.pos, se.Pos)
		}
	}
}
