// Package taskview orders the task set of the active list. This is the only
// place business-relevant comparison logic lives; it never mutates the
// underlying slice.
package taskview

import (
	"fmt"
	"sort"

	"taskdeck/internal/service"
)

// SortKey selects the comparison used for the task view.
type SortKey string

const (
	SortDateAdded SortKey = "dateAdded"
	SortDueDate   SortKey = "dueDate"
	SortPriority  SortKey = "priority"
)

// DefaultSortKey matches the view shown right after sign-in.
const DefaultSortKey = SortDateAdded

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortDateAdded, SortDueDate, SortPriority:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("%w: sort key must be dateAdded, dueDate or priority, got %q", service.ErrValidation, s)
}

// Sort returns a new ordered slice; ties keep their input order.
//
//   - dateAdded: most recent first; tasks without a timestamp count as
//     epoch zero and end up last.
//   - dueDate: earliest due first; malformed due strings sort after every
//     well-formed one.
//   - priority: High, Mid, Low.
func Sort(tasks []service.Task, key SortKey) []service.Task {
	sorted := make([]service.Task, len(tasks))
	copy(sorted, tasks)

	switch key {
	case SortDateAdded:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	case SortDueDate:
		sort.SliceStable(sorted, func(i, j int) bool {
			di, iok := sorted[i].DueTime()
			dj, jok := sorted[j].DueTime()
			if iok != jok {
				return iok
			}
			if !iok {
				return false
			}
			return di.Before(dj)
		})
	case SortPriority:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Priority.Rank() < sorted[j].Priority.Rank()
		})
	}

	return sorted
}
