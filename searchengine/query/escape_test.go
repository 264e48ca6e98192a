package query

import "testing"

func TestEscapeValueRoundTrip(t *testing.T) {
	values := []string{
		"plain",
		"foo:bar",
		"a,b",
		"(x)",
		`back\slash`,
		"Bar Baz",
		`say "hi"`,
		`quote " and \ slash`,
		"-leading",
		"and",
		"OR",
		"",
		"#12",
		"über",
		"caf\xe9",
	}
	for _, v := range values {
		escaped := EscapeValue(v)
		tokens, err := Lex(escaped)
		if err != nil {
			t.Fatalf("Lex(%q): unexpected error: %v", escaped, err)
		}
		if len(tokens) != 2 {
			t.Fatalf("Lex(%q): expected a single token, got %v", escaped, tokens)
		}
		if tokens[0].Kind != TokWord && tokens[0].Kind != TokQuoted {
			t.Fatalf("Lex(%q): expected word or quoted string, got %v", escaped, tokens[0].Kind)
		}
		if tokens[0].Value != v {
			t.Errorf("round trip of %q through %q gave %q", v, escaped, tokens[0].Value)
		}
	}
}

func TestEscapeValueAsQualifierValue(t *testing.T) {
	for _, v := range []string{"foo:bar", "Bar Baz", "a,b", "-x"} {
		q, err := FromString("label:" + EscapeValue(v))
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", v, err)
		}
		qual := q.Conditions()[0].(*Qualifier)
		if len(qual.Values) != 1 || qual.Values[0] != v {
			t.Errorf("expected value %q, got %v", v, qual.Values)
		}
	}
}

func TestEscapeValueOutput(t *testing.T) {
	tests := map[string]string{
		"foo:bar":  `foo\:bar`,
		"Bar Baz":  `"Bar Baz"`,
		`a\b`:      `a\\b`,
		"f(x),y":   `f\(x\)\,y`,
		`say "hi"`: `"say \"hi\""`,
	}
	for in, want := range tests {
		if got := EscapeValue(in); got != want {
			t.Errorf("EscapeValue(%q) = %q, expected %q", in, got, want)
		}
	}
}
