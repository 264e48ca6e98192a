package searchengine

import "strings"

// SortOption is one whitelisted sort of an entity.
type SortOption struct {
	Key  string
	Expr string // unqualified columns are prefixed with the entity alias
	Desc bool
}

const priorityRank = "CASE %s.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END"

// TicketSorts are the ticket sorts, DefaultTicketSort first.
var TicketSorts = []SortOption{
	{Key: "updated-desc", Expr: "updated_at", Desc: true},
	{Key: "updated-asc", Expr: "updated_at"},
	{Key: "created-desc", Expr: "created_at", Desc: true},
	{Key: "created-asc", Expr: "created_at"},
	{Key: "priority-desc", Expr: priorityRank, Desc: true},
	{Key: "priority-asc", Expr: priorityRank},
}

// ContractSorts are the contract sorts, DefaultContractSort first.
var ContractSorts = []SortOption{
	{Key: "end-desc", Expr: "end_at", Desc: true},
	{Key: "end-asc", Expr: "end_at"},
	{Key: "name-asc", Expr: "name"},
	{Key: "name-desc", Expr: "name", Desc: true},
}

const (
	DefaultTicketSort   = "updated-desc"
	DefaultContractSort = "end-desc"
)

// ResolveSort returns the option for key. Unknown and empty keys fall back
// to the first option.
func ResolveSort(options []SortOption, key string) SortOption {
	for _, opt := range options {
		if opt.Key == key {
			return opt
		}
	}
	return options[0]
}

// SortKeys lists the keys of options.
func SortKeys(options []SortOption) []string {
	keys := make([]string, len(options))
	for i, opt := range options {
		keys[i] = opt.Key
	}
	return keys
}

// OrderBy renders the ORDER BY list of opt for alias. Ties are broken by id
// in the same direction.
func (opt SortOption) OrderBy(alias string) string {
	var expr string
	if strings.Contains(opt.Expr, "%s") {
		expr = strings.ReplaceAll(opt.Expr, "%s", alias)
	} else {
		expr = alias + "." + opt.Expr
	}
	dir := "ASC"
	if opt.Desc {
		dir = "DESC"
	}
	return expr + " " + dir + ", " + alias + ".id " + dir
}
