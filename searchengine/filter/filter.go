// Package filter reduces queries to quick-search filters: one free-text
// fragment plus a value list per supported filter name. Only queries made of
// AND-joined, non-negated text terms and supported qualifiers can be reduced;
// anything else must be shown as a raw textual query.
package filter

import (
	"errors"
	"strings"

	"github.com/bileto/bileto/searchengine/query"
	qb "github.com/bileto/bileto/searchengine/querybuilder"
)

// Validator checks the values of one filter. A nil values slice is the null
// value ("no:<name>").
type Validator func(name string, values []string) error

// Definition lists the filters of an entity.
type Definition struct {
	// Names in the order ToTextualQuery emits them.
	Names []string
	// Repeated names may appear in several qualifiers, one value each.
	// Their values accumulate.
	Repeated map[string]bool
	// Validate is called on every value list before it is stored.
	Validate Validator
}

func (d *Definition) supports(name string) bool {
	for _, n := range d.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Filter is the structured form of a query.
type Filter struct {
	def    *Definition
	text   string
	values map[string][]string
}

// New returns an empty filter.
func New(def *Definition) *Filter {
	return &Filter{def: def, values: make(map[string][]string)}
}

// FromQuery reduces q. It returns (nil, nil) when q cannot be represented,
// which includes supported filters whose values fail validation with a
// *querybuilder.ValueError. Other validation errors are returned.
func FromQuery(def *Definition, q *query.Query) (*Filter, error) {
	f := New(def)
	var texts []string

	for i, cond := range q.Conditions() {
		if cond.IsNot() || (i > 0 && cond.IsOr()) {
			return nil, nil
		}

		switch c := cond.(type) {
		case *query.Text:
			if len(c.Terms) != 1 {
				return nil, nil
			}
			texts = append(texts, query.EscapeValue(c.Terms[0]))

		case *query.Qualifier:
			if !def.supports(c.Name) {
				return nil, nil
			}
			current, seen := f.values[c.Name]
			if !def.Repeated[c.Name] {
				if seen {
					return nil, nil
				}
				if err := f.SetFilter(c.Name, c.Values); err != nil {
					return unrepresentable(err)
				}
				continue
			}

			// Repeated filters hold either one null or a list of values
			// gathered from single-valued qualifiers.
			if c.IsNull() {
				if seen {
					return nil, nil
				}
				if err := f.SetFilter(c.Name, nil); err != nil {
					return unrepresentable(err)
				}
				continue
			}
			if len(c.Values) != 1 || (seen && current == nil) {
				return nil, nil
			}
			if err := f.SetFilter(c.Name, append(append([]string{}, current...), c.Values[0])); err != nil {
				return unrepresentable(err)
			}

		default:
			return nil, nil
		}
	}

	f.text = strings.Join(texts, " ")
	return f, nil
}

func unrepresentable(err error) (*Filter, error) {
	var ve *qb.ValueError
	if errors.As(err, &ve) {
		return nil, nil
	}
	return nil, err
}

// Text returns the free-text fragment, escaped as it would be typed.
func (f *Filter) Text() string {
	return f.text
}

// SetText replaces the free-text fragment.
func (f *Filter) SetText(text string) {
	f.text = strings.TrimSpace(text)
}

// GetFilter returns the values of a filter. ok is false when the filter is
// not set; a set filter with nil values is the null value.
func (f *Filter) GetFilter(name string) (values []string, ok bool) {
	values, ok = f.values[name]
	return values, ok
}

// SetFilter validates and stores the values of a filter.
func (f *Filter) SetFilter(name string, values []string) error {
	if f.def.Validate != nil {
		if err := f.def.Validate(name, values); err != nil {
			return err
		}
	}
	f.values[name] = values
	return nil
}

// RemoveFilter unsets a filter.
func (f *Filter) RemoveFilter(name string) {
	delete(f.values, name)
}

// Names returns the set filters in textual order.
func (f *Filter) Names() []string {
	var names []string
	for _, name := range f.def.Names {
		if _, ok := f.values[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// ToTextualQuery renders the filter as a query string: the text first, then
// one qualifier per filter in definition order. Repeated filters get one
// qualifier per value.
func (f *Filter) ToTextualQuery() string {
	var parts []string
	if f.text != "" {
		parts = append(parts, f.text)
	}

	for _, name := range f.Names() {
		values := f.values[name]
		switch {
		case values == nil:
			parts = append(parts, "no:"+name)
		case f.def.Repeated[name]:
			for _, v := range values {
				parts = append(parts, name+":"+query.EscapeValue(v))
			}
		default:
			escaped := make([]string, len(values))
			for i, v := range values {
				escaped[i] = query.EscapeValue(v)
			}
			parts = append(parts, name+":"+strings.Join(escaped, ","))
		}
	}

	return strings.Join(parts, " ")
}
