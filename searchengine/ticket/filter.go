package ticket

import (
	"context"
	"fmt"
	"strings"

	"github.com/bileto/bileto/searchengine/filter"
	"github.com/bileto/bileto/searchengine/query"
	qb "github.com/bileto/bileto/searchengine/querybuilder"
)

// FilterNames lists the quick-search filters in textual order.
var FilterNames = []string{
	"status", "type", "priority", "urgency", "impact",
	"assignee", "requester", "involves", "team", "org", "label",
}

var filterDef = &filter.Definition{
	Names:    FilterNames,
	Repeated: map[string]bool{"label": true},
	Validate: validateFilter,
}

// LabelFinder returns the canonical names of the existing labels among
// names, compared case-insensitively.
type LabelFinder interface {
	FindByNames(ctx context.Context, names []string) ([]string, error)
}

// Filter is the quick-search form of a ticket query.
type Filter struct {
	*filter.Filter
}

func NewFilter() *Filter {
	return &Filter{Filter: filter.New(filterDef)}
}

// FromQuery reduces q to a filter. It returns (nil, nil) when q cannot be
// represented. Label values are replaced by the canonical names labels has
// for them; labels may be nil.
func FromQuery(ctx context.Context, q *query.Query, labels LabelFinder) (*Filter, error) {
	f, err := filter.FromQuery(filterDef, q)
	if err != nil || f == nil {
		return nil, err
	}
	tf := &Filter{Filter: f}

	if names, ok := f.GetFilter("label"); ok && names != nil && labels != nil {
		found, err := labels.FindByNames(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("finding labels: %w", err)
		}
		canonical := make(map[string]string, len(found))
		for _, name := range found {
			canonical[strings.ToLower(name)] = name
		}
		normalized := make([]string, len(names))
		for i, name := range names {
			normalized[i] = name
			if c, ok := canonical[strings.ToLower(name)]; ok {
				normalized[i] = c
			}
		}
		if err := f.SetFilter("label", normalized); err != nil {
			return nil, err
		}
	}

	return tf, nil
}

func validateFilter(name string, values []string) error {
	switch name {
	case "status":
		if values == nil {
			return qb.InvalidValue(name, "", "a ticket always has a status")
		}
		for _, v := range values {
			if v != "open" && v != "finished" && !IsStatus(v) {
				return qb.InvalidValue(name, v, "unknown status")
			}
		}
	case "type", "priority", "urgency", "impact":
		valid := IsWeight
		if name == "type" {
			valid = IsType
		}
		if values == nil {
			return qb.InvalidValue(name, "", "a ticket always has a %s", name)
		}
		for _, v := range values {
			if !valid(v) {
				return qb.InvalidValue(name, v, "unknown %s", name)
			}
		}
	case "assignee", "requester", "involves":
		if values == nil && name == "involves" {
			return qb.InvalidValue(name, "", "involves requires a user")
		}
		for _, v := range values {
			if _, ok := query.ExtractID(v); !ok && v != Me {
				return qb.InvalidValue(name, v, "expected @me or #<id>")
			}
		}
	case "team":
		for _, v := range values {
			if _, ok := query.ExtractID(v); !ok {
				return qb.InvalidValue(name, v, "expected #<id>")
			}
		}
	case "org":
		if values == nil {
			return qb.InvalidValue(name, "", "a ticket always has an organization")
		}
		for _, v := range values {
			if _, ok := query.ExtractID(v); !ok {
				return qb.InvalidValue(name, v, "expected #<id>")
			}
		}
	case "label":
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				return qb.InvalidValue(name, v, "empty label")
			}
		}
	default:
		return qb.UnknownQualifier(name, values)
	}
	return nil
}
