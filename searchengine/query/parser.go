package query

import "strings"

// Parse builds a Query from a token sequence produced by Lex. The returned
// query has no source string; use FromString to keep it.
func Parse(tokens []Token) (*Query, error) {
	p := &parser{tokens: tokens}
	return p.parse()
}

type parser struct {
	input  string
	tokens []Token
	pos    int
}

func (p *parser) parse() (*Query, error) {
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if !p.match(TokEOF) {
		return nil, p.unexpected()
	}
	return q, nil
}

// parseQuery reads conditions up to the end of input or a closing
// parenthesis. AND and OR have the same precedence: the condition list is a
// left-to-right fold.
func (p *parser) parseQuery() (*Query, error) {
	q := &Query{}

	for !p.match(TokEOF) && !p.match(TokRParen) {
		or := false
		if len(q.conditions) > 0 && (p.match(TokAnd) || p.match(TokOr)) {
			op := p.current()
			or = op.Kind == TokOr
			p.advance()
			if p.match(TokEOF) || p.match(TokRParen) {
				return nil, newSyntaxError(op.Pos, op.Raw, ErrUnexpectedToken, "operator %s is not followed by a condition", strings.ToUpper(op.Raw))
			}
		}

		cond, err := p.parseCondition(or)
		if err != nil {
			return nil, err
		}
		q.conditions = append(q.conditions, cond)
	}

	return q, nil
}

func (p *parser) parseCondition(or bool) (Condition, error) {
	flags := Flags{Or: or}
	for p.match(TokNot) {
		flags.Not = !flags.Not
		op := p.current()
		p.advance()
		if p.match(TokEOF) || p.match(TokRParen) {
			return nil, newSyntaxError(op.Pos, op.Raw, ErrUnexpectedToken, "negation is not followed by a condition")
		}
	}

	switch p.current().Kind {
	case TokLParen:
		return p.parseGroup(flags)
	case TokQualifier:
		return p.parseQualifier(flags)
	case TokWord, TokQuoted:
		terms, err := p.parseValues()
		if err != nil {
			return nil, err
		}
		return &Text{Flags: flags, Terms: terms}, nil
	default:
		return nil, p.unexpected()
	}
}

func (p *parser) parseGroup(flags Flags) (Condition, error) {
	open := p.current()
	p.advance()

	sub, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if !p.match(TokRParen) {
		return nil, newSyntaxError(open.Pos, open.Raw, ErrUnbalancedParen, "missing closing parenthesis")
	}
	closing := p.current()
	p.advance()

	if len(sub.conditions) == 0 {
		return nil, newSyntaxError(open.Pos, "()", ErrEmptyGroup, "parentheses must contain a condition")
	}
	sub.str = p.source(open, closing)

	return &Group{Flags: flags, Query: sub}, nil
}

func (p *parser) parseQualifier(flags Flags) (Condition, error) {
	nameTok := p.current()
	name := strings.ToLower(nameTok.Value)
	p.advance()

	if !p.match(TokColon) {
		return nil, p.unexpected()
	}
	colon := p.current()
	p.advance()

	// The value must follow the colon immediately: "status: open" is an error.
	if (!p.match(TokWord) && !p.match(TokQuoted)) || p.current().Pos != colon.Pos+1 {
		return nil, newSyntaxError(nameTok.Pos, nameTok.Raw+":", ErrMissingValue, "qualifier %q requires a value", name)
	}
	values, err := p.parseValues()
	if err != nil {
		return nil, err
	}

	// no:<name> and has:<name> are sugar for a null-valued <name> qualifier.
	if name == "no" || name == "has" {
		if len(values) != 1 {
			return nil, newSyntaxError(nameTok.Pos, nameTok.Raw, ErrUnexpectedToken, "%s: accepts a single qualifier", name)
		}
		if name == "has" {
			flags.Not = !flags.Not
		}
		return &Qualifier{Flags: flags, Name: strings.ToLower(values[0])}, nil
	}

	return &Qualifier{Flags: flags, Name: name, Values: values}, nil
}

// parseValues reads (Word|Quoted) (',' (Word|Quoted))*.
func (p *parser) parseValues() ([]string, error) {
	values := []string{p.current().Value}
	p.advance()

	for p.match(TokComma) {
		comma := p.current()
		p.advance()
		if !p.match(TokWord) && !p.match(TokQuoted) {
			return nil, newSyntaxError(comma.Pos, comma.Raw, ErrMissingValue, "expected a value after ','")
		}
		values = append(values, p.current().Value)
		p.advance()
	}

	return values, nil
}

// source returns the text between two parenthesis tokens, exclusive.
func (p *parser) source(open, closing Token) string {
	if p.input != "" {
		return strings.TrimSpace(p.input[open.Pos+1 : closing.Pos])
	}
	var parts []string
	for _, tok := range p.tokens {
		if tok.Pos > open.Pos && tok.Pos < closing.Pos {
			parts = append(parts, tok.Raw)
		}
	}
	return strings.Join(parts, " ")
}

func (p *parser) unexpected() error {
	tok := p.current()
	if tok.Kind == TokEOF {
		return newSyntaxError(tok.Pos, "", ErrUnexpectedEOF, "unexpected end of query")
	}
	return newSyntaxError(tok.Pos, tok.Raw, ErrUnexpectedToken, "unexpected %s", strings.ToLower(tok.Kind.String()))
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokEOF}
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) match(kind TokenKind) bool {
	return p.current().Kind == kind
}
