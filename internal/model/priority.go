package model

// Priority is one of the three ranked task priority labels.
type Priority string

const (
	PriorityHigh   Priority = "1-High"
	PriorityMedium Priority = "2-Medium"
	PriorityLow    Priority = "3-Low"
)

// DefaultPriority is assigned to tasks created without a priority.
const DefaultPriority = PriorityMedium

var priorityRanks = map[Priority]int{
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// Priorities returns the labels in rank order.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority returns the Priority for a label.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Valid reports whether p is a known label.
func (p Priority) Valid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// Rank orders priorities, 1 being the most urgent. Unknown labels rank last.
func (p Priority) Rank() int {
	if r, ok := priorityRanks[p]; ok {
		return r
	}
	return len(priorityRanks) + 1
}

// Label is the human part of the label, e.g. "High".
func (p Priority) Label() string {
	s := string(p)
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			return s[i+1:]
		}
	}
	return s
}
