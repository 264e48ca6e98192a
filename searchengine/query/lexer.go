package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token represents a lexical token
type Token struct {
	Kind  TokenKind
	Raw   string // source text of the token
	Value string // unescaped value for words, quoted strings and qualifier names
	Pos   int    // byte offset in input
}

// TokenKind is the type of token
type TokenKind int

const (
	TokWord TokenKind = iota
	TokQuoted
	TokQualifier
	TokColon
	TokComma
	TokAnd
	TokOr
	TokNot
	TokLParen
	TokRParen
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokWord:
		return "Word"
	case TokQuoted:
		return "Quoted"
	case TokQualifier:
		return "Qualifier"
	case TokColon:
		return "Colon"
	case TokComma:
		return "Comma"
	case TokAnd:
		return "And"
	case TokOr:
		return "Or"
	case TokNot:
		return "Not"
	case TokLParen:
		return "LParen"
	case TokRParen:
		return "RParen"
	case TokEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

func (t Token) String() string {
	if t.Kind == TokEOF {
		return "end of query"
	}
	return t.Raw
}

// escapable lists the characters a backslash turns into literals outside quotes.
const escapable = `:,()\"`

// Lexer tokenizes a query string. It never backtracks.
type Lexer struct {
	input string
	pos   int

	// parens holds the offsets of the currently open parentheses.
	parens []int
	// inValue is set after a qualifier colon and lasts until the next
	// separator; colons are literal and keywords are not recognized there.
	inValue bool
	prev    TokenKind
}

// NewLexer creates a new lexer for the input string
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, prev: TokEOF}
}

// Lex tokenizes the entire input. The result always ends with a TokEOF token.
func Lex(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token
func (l *Lexer) Next() (Token, error) {
	if l.skipWhitespace() {
		l.inValue = false
	}

	if l.pos >= len(l.input) {
		if len(l.parens) > 0 {
			open := l.parens[len(l.parens)-1]
			return Token{}, newSyntaxError(open, l.input[open:], ErrUnbalancedParen, "missing closing parenthesis")
		}
		return l.emit(Token{Kind: TokEOF, Pos: l.pos}), nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '(':
		l.pos++
		l.parens = append(l.parens, start)
		l.inValue = false
		return l.emit(Token{Kind: TokLParen, Raw: "(", Pos: start}), nil
	case ')':
		if len(l.parens) == 0 {
			return Token{}, newSyntaxError(start, ")", ErrUnbalancedParen, "unexpected closing parenthesis")
		}
		l.pos++
		l.parens = l.parens[:len(l.parens)-1]
		l.inValue = false
		return l.emit(Token{Kind: TokRParen, Raw: ")", Pos: start}), nil
	case ',':
		l.pos++
		return l.emit(Token{Kind: TokComma, Raw: ",", Pos: start}), nil
	case '"':
		return l.scanQuoted()
	case ':':
		if !l.inValue {
			l.pos++
			l.inValue = true
			return l.emit(Token{Kind: TokColon, Raw: ":", Pos: start}), nil
		}
	case '-':
		if l.atTermStart() && l.pos+1 < len(l.input) && !l.isSeparatorAt(l.pos+1) {
			l.pos++
			return l.emit(Token{Kind: TokNot, Raw: "-", Value: "-", Pos: start}), nil
		}
	}

	return l.scanWord()
}

func (l *Lexer) emit(tok Token) Token {
	l.prev = tok.Kind
	return tok
}

// atTermStart reports whether a new condition may begin here, as opposed to
// the continuation of a value list.
func (l *Lexer) atTermStart() bool {
	return !l.inValue && l.prev != TokComma
}

func (l *Lexer) isSeparatorAt(pos int) bool {
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return unicode.IsSpace(r) || r == ')' || r == ','
}

func (l *Lexer) skipWhitespace() bool {
	skipped := false
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
		skipped = true
	}
	return skipped
}

func (l *Lexer) scanQuoted() (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	var sb strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) && (l.input[l.pos+1] == '"' || l.input[l.pos+1] == '\\') {
			sb.WriteByte(l.input[l.pos+1])
			l.pos += 2
			continue
		}
		if ch == '"' {
			l.pos++ // consume closing quote
			return l.emit(Token{Kind: TokQuoted, Raw: l.input[start:l.pos], Value: sb.String(), Pos: start}), nil
		}
		sb.WriteByte(ch)
		l.pos++
	}

	return Token{}, newSyntaxError(start, l.input[start:], ErrUnterminatedQuote, "missing closing quote")
}

func (l *Lexer) scanWord() (Token, error) {
	start := l.pos
	escaped := false
	var sb strings.Builder

	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == '\\' {
			if l.pos+1 >= len(l.input) {
				return Token{}, newSyntaxError(l.pos, l.input[start:], ErrTrailingEscape, "nothing to escape")
			}
			next := l.input[l.pos+1]
			if strings.IndexByte(escapable, next) >= 0 {
				sb.WriteByte(next)
				l.pos += 2
				escaped = true
				continue
			}
			sb.WriteByte('\\')
			l.pos++
			continue
		}
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == ',' || r == '"' {
			break
		}
		if r == ':' && !l.inValue {
			break
		}
		sb.WriteString(l.input[l.pos : l.pos+size])
		l.pos += size
	}

	raw := l.input[start:l.pos]
	value := sb.String()

	if !l.inValue && l.pos < len(l.input) && l.input[l.pos] == ':' {
		return l.emit(Token{Kind: TokQualifier, Raw: raw, Value: value, Pos: start}), nil
	}

	if !escaped && l.atTermStart() {
		switch strings.ToUpper(value) {
		case "AND":
			return l.emit(Token{Kind: TokAnd, Raw: raw, Value: value, Pos: start}), nil
		case "OR":
			return l.emit(Token{Kind: TokOr, Raw: raw, Value: value, Pos: start}), nil
		case "NOT":
			return l.emit(Token{Kind: TokNot, Raw: raw, Value: value, Pos: start}), nil
		}
	}

	return l.emit(Token{Kind: TokWord, Raw: raw, Value: value, Pos: start}), nil
}
