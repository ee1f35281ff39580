package model

import (
	"cmp"
	"slices"
)

// SortMode selects the order of a task listing.
type SortMode string

const (
	SortNone              SortMode = ""
	SortTimeAddedAsc      SortMode = "timeAddedAsc"
	SortTimeAddedDesc     SortMode = "timeAddedDesc"
	SortPriority          SortMode = "priority"
	SortPriorityTimeAdded SortMode = "priorityTimeAdded"
)

// ParseSortMode maps a sortBy query value to a SortMode. Unrecognised values
// mean no ordering.
func ParseSortMode(s string) SortMode {
	switch m := SortMode(s); m {
	case SortTimeAddedAsc, SortTimeAddedDesc, SortPriority, SortPriorityTimeAdded:
		return m
	default:
		return SortNone
	}
}

// TaskQuery holds the filter and ordering for a task listing.
type TaskQuery struct {
	// Category filters by exact match when non-empty.
	Category string
	Sort     SortMode
}

// Matches reports whether t passes the query filter.
func (q TaskQuery) Matches(t *Task) bool {
	return q.Category == "" || t.Category == q.Category
}

// Compare orders two tasks according to q.Sort. It returns 0 for SortNone.
func (q TaskQuery) Compare(a, b *Task) int {
	switch q.Sort {
	case SortTimeAddedAsc:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortTimeAddedDesc:
		return b.CreatedAt.Compare(a.CreatedAt)
	case SortPriority:
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	case SortPriorityTimeAdded:
		if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return 0
	}
}

// Order sorts tasks in place. The sort is stable so SortNone and ties keep
// the input order.
func (q TaskQuery) Order(tasks []*Task) {
	if q.Sort == SortNone {
		return
	}
	slices.SortStableFunc(tasks, q.Compare)
}
