// Package ticket lowers ticket queries and reduces them to quick-search
// filters.
package ticket

import "slices"

// Statuses in workflow order.
var Statuses = []string{"new", "in_progress", "planned", "pending", "resolved", "closed"}

// Status groups usable as status values.
var (
	OpenStatuses     = []string{"new", "in_progress", "planned", "pending"}
	FinishedStatuses = []string{"resolved", "closed"}
)

var Types = []string{"request", "incident"}

// Weights are the values of urgency, impact and priority, lowest first.
var Weights = []string{"low", "medium", "high"}

func IsStatus(v string) bool { return slices.Contains(Statuses, v) }
func IsType(v string) bool   { return slices.Contains(Types, v) }
func IsWeight(v string) bool { return slices.Contains(Weights, v) }

// ExpandStatus returns the statuses a status value stands for: the group
// members for "open" and "finished", the value itself otherwise.
func ExpandStatus(v string) []string {
	switch v {
	case "open":
		return OpenStatuses
	case "finished":
		return FinishedStatuses
	default:
		return []string{v}
	}
}
