package model

import (
	"strings"
	"time"
)

// DefaultCategory is assigned to tasks created without a category.
const DefaultCategory = "General"

// Task represents a todo item in the system.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Priority  Priority   `json:"priority"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	DueDate   *time.Time `json:"dueDate"`
}

// CreateTaskRequest represents the request body for creating a task.
// Other fields in the body (completed, createdAt) are ignored: a new task
// always starts incomplete and is stamped with the server clock.
type CreateTaskRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate"`
}

// UpdateTaskRequest represents the request body for a partial task update.
// Only the fields the client is allowed to change are listed.
type UpdateTaskRequest struct {
	Completed *bool   `json:"completed,omitempty"`
	Priority  *string `json:"priority,omitempty"`
}

// Validate checks if the CreateTaskRequest is valid.
func (r *CreateTaskRequest) Validate() error {
	if r.Title == "" {
		return ErrTitleRequired
	}
	if r.Priority != "" {
		if _, err := ParsePriority(r.Priority); err != nil {
			return err
		}
	}
	if _, err := ParseDueDate(r.DueDate); err != nil {
		return err
	}
	return nil
}

// NewTask applies the creation defaults to the request and returns the task
// to be inserted. The identifier is left empty for the store to assign.
func (r *CreateTaskRequest) NewTask(now time.Time) (*Task, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	category := r.Category
	if category == "" {
		category = DefaultCategory
	}

	priority := DefaultPriority
	if r.Priority != "" {
		priority = Priority(r.Priority)
	}

	due, _ := ParseDueDate(r.DueDate)

	return &Task{
		Title:     r.Title,
		Category:  category,
		Priority:  priority,
		Completed: false,
		CreatedAt: now,
		DueDate:   due,
	}, nil
}

// Validate checks if the UpdateTaskRequest is valid.
func (r *UpdateTaskRequest) Validate() error {
	if r.Completed == nil && r.Priority == nil {
		return ErrEmptyUpdate
	}
	if r.Priority != nil {
		if _, err := ParsePriority(*r.Priority); err != nil {
			return err
		}
	}
	return nil
}

// TaskUpdate is a validated partial update ready to be applied by a store.
type TaskUpdate struct {
	Completed *bool
	Priority  *Priority
}

// Update converts the request into a TaskUpdate.
func (r *UpdateTaskRequest) Update() (TaskUpdate, error) {
	if err := r.Validate(); err != nil {
		return TaskUpdate{}, err
	}
	var u TaskUpdate
	if r.Completed != nil {
		c := *r.Completed
		u.Completed = &c
	}
	if r.Priority != nil {
		p := Priority(*r.Priority)
		u.Priority = &p
	}
	return u, nil
}

// Apply writes the update onto t.
func (u TaskUpdate) Apply(t *Task) {
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
}

// dueDateLayouts are tried in order. Layouts without a zone are read as UTC,
// which is how the web client renders due dates back.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses a due date supplied at creation. An empty value means
// the task has no due date.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidDueDate
}

// TaskError represents a domain error for tasks.
type TaskError struct {
	Message string
}

func (e TaskError) Error() string {
	return e.Message
}

var (
	ErrTaskNotFound    = TaskError{Message: "Task not found"}
	ErrTitleRequired   = TaskError{Message: "Task title is required"}
	ErrInvalidID       = TaskError{Message: "Invalid task ID"}
	ErrInvalidPriority = TaskError{Message: "Invalid priority, expected one of 1-High, 2-Medium, 3-Low"}
	ErrInvalidDueDate  = TaskError{Message: "Invalid due date"}
	ErrEmptyUpdate     = TaskError{Message: "No fields to update, expected completed or priority"}
)
