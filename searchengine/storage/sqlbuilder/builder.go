// Package sqlbuilder allocates backend placeholders and renders statements
// written with named parameters (":q0p0") into them.
package sqlbuilder

import (
	"fmt"
	"strings"
)

type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota
	PlaceholderDollar
)

type Builder struct {
	Style PlaceholderStyle
	args  []any
}

func New(style PlaceholderStyle) *Builder {
	return &Builder{Style: style, args: make([]any, 0)}
}

func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	switch b.Style {
	case PlaceholderDollar:
		return "$" + itoa(len(b.args))
	default:
		return "?"
	}
}

func (b *Builder) Args() []any { return b.args }
func (b *Builder) Len() int    { return len(b.args) }

// Lookup resolves a named parameter.
type Lookup func(name string) (any, bool)

// Render replaces every :name parameter of text with a placeholder and
// records its value. []any values expand to a comma-separated placeholder
// list; an empty list renders as NULL so that "x IN (NULL)" matches nothing.
// Single-quoted literals and "::" casts are left alone. Unknown names are an
// error.
func (b *Builder) Render(text string, lookup Lookup) (string, error) {
	var sb strings.Builder
	sb.Grow(len(text))

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if ch == '\'' {
			end := i + 1
			for end < len(text) {
				if text[end] == '\'' {
					if end+1 < len(text) && text[end+1] == '\'' {
						end += 2
						continue
					}
					break
				}
				end++
			}
			if end >= len(text) {
				return "", fmt.Errorf("unterminated string literal at %d", i)
			}
			sb.WriteString(text[i : end+1])
			i = end
			continue
		}

		if ch == ':' && i+1 < len(text) && isNameStart(text[i+1]) && (i == 0 || text[i-1] != ':') {
			end := i + 1
			for end < len(text) && isNameChar(text[end]) {
				end++
			}
			name := text[i+1 : end]
			value, ok := lookup(name)
			if !ok {
				return "", fmt.Errorf("unknown parameter %q", name)
			}
			sb.WriteString(b.expand(value))
			i = end - 1
			continue
		}

		sb.WriteByte(ch)
	}

	return sb.String(), nil
}

func (b *Builder) expand(value any) string {
	list, ok := value.([]any)
	if !ok {
		return b.Arg(value)
	}
	if len(list) == 0 {
		return "NULL"
	}
	placeholders := make([]string, len(list))
	for i, v := range list {
		placeholders[i] = b.Arg(v)
	}
	return strings.Join(placeholders, ", ")
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// itoa converts int to string without fmt overhead
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [32]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + (n % 10))
		n /= 10
	}
	return string(buf[i:])
}
