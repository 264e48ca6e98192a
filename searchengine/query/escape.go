package query

import (
	"strings"
	"unicode"
)

// EscapeValue renders v so that Lex reads it back as a single word or
// quoted string whose value is v.
func EscapeValue(v string) string {
	if needsQuotes(v) {
		var sb strings.Builder
		sb.Grow(len(v) + 2)
		sb.WriteByte('"')
		for i := 0; i < len(v); i++ {
			if v[i] == '"' || v[i] == '\\' {
				sb.WriteByte('\\')
			}
			sb.WriteByte(v[i])
		}
		sb.WriteByte('"')
		return sb.String()
	}

	var sb strings.Builder
	sb.Grow(len(v) + 4)
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case ':', ',', '(', ')', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(v[i])
	}
	return sb.String()
}

func needsQuotes(v string) bool {
	if v == "" || strings.HasPrefix(v, "-") {
		return true
	}
	switch strings.ToUpper(v) {
	case "AND", "OR", "NOT":
		return true
	}
	return strings.IndexFunc(v, func(r rune) bool {
		return r == '"' || unicode.IsSpace(r)
	}) >= 0
}
