package contract

import (
	"github.com/bileto/bileto/searchengine/filter"
	"github.com/bileto/bileto/searchengine/query"
	qb "github.com/bileto/bileto/searchengine/querybuilder"
)

// FilterNames lists the quick-search filters in textual order.
var FilterNames = []string{"status", "org"}

var filterDef = &filter.Definition{
	Names: FilterNames,
	Validate: func(name string, values []string) error {
		if values == nil {
			return qb.InvalidValue(name, "", "%s requires a value", name)
		}
		for _, v := range values {
			switch name {
			case "status":
				if !IsStatus(v) {
					return qb.InvalidValue(name, v, "unknown status")
				}
			case "org":
				if _, ok := query.ExtractID(v); !ok {
					return qb.InvalidValue(name, v, "expected #<id>")
				}
			default:
				return qb.UnknownQualifier(name, values)
			}
		}
		return nil
	},
}

// Filter is the quick-search form of a contract query.
type Filter struct {
	*filter.Filter
}

func NewFilter() *Filter {
	return &Filter{Filter: filter.New(filterDef)}
}

// FromQuery reduces q to a filter, or returns (nil, nil) when q cannot be
// represented.
func FromQuery(q *query.Query) (*Filter, error) {
	f, err := filter.FromQuery(filterDef, q)
	if err != nil || f == nil {
		return nil, err
	}
	return &Filter{Filter: f}, nil
}
