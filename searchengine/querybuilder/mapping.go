package querybuilder

import (
	"slices"

	"github.com/bileto/bileto/searchengine/query"
)

// Handler lowers one qualifier condition. It must honor c.IsNot() and
// return a non-empty expression, or a *ValueError for values it rejects.
type Handler func(s *Scope, c *query.Qualifier) (string, error)

// Mapping is the qualifier table of an entity. Keys are either a bare
// qualifier name ("status") or a name and an exact value ("status:open").
type Mapping struct {
	exact   map[string]Handler
	generic map[string]Handler
}

func NewMapping() *Mapping {
	return &Mapping{
		exact:   make(map[string]Handler),
		generic: make(map[string]Handler),
	}
}

// Register adds a handler under key and returns the mapping.
func (m *Mapping) Register(key string, h Handler) *Mapping {
	if name, value, ok := cut(key); ok {
		m.exact[name+":"+value] = h
	} else {
		m.generic[key] = h
	}
	return m
}

// Lookup returns the handler for a qualifier. A "name:value" entry is only
// considered when values holds exactly one value; the bare name is the
// fallback.
func (m *Mapping) Lookup(name string, values []string) (Handler, bool) {
	if len(values) == 1 {
		if h, ok := m.exact[name+":"+values[0]]; ok {
			return h, true
		}
	}
	h, ok := m.generic[name]
	return h, ok
}

// Names returns the distinct qualifier names the mapping knows, sorted.
func (m *Mapping) Names() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range m.generic {
		add(name)
	}
	for key := range m.exact {
		name, _, _ := cut(key)
		add(name)
	}
	slices.Sort(names)
	return names
}

func cut(key string) (string, string, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:], true
		}
	}
	return key, "", false
}
