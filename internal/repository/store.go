package repository

import (
	"context"

	"github.com/hiroki-koketsu/todo-tracker/internal/model"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/todo-tracker/internal/repository")

// TaskStore persists tasks. Implementations must be safe for concurrent use.
type TaskStore interface {
	// Create inserts t, assigns its identifier and returns the stored task.
	Create(ctx context.Context, t *model.Task) (*model.Task, error)

	// List returns every task matching q in the order q asks for.
	List(ctx context.Context, q model.TaskQuery) ([]*model.Task, error)

	// Categories returns the distinct categories of the stored tasks.
	Categories(ctx context.Context) ([]string, error)

	// Update applies u to the task with the given id. It returns
	// model.ErrInvalidID for a malformed id and matched=false, with no error,
	// when no task has that id.
	Update(ctx context.Context, id string, u model.TaskUpdate) (matched bool, err error)

	// Delete removes one task. A malformed or unknown id yields
	// model.ErrTaskNotFound.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every task and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// Count returns the current number of tasks.
	Count(ctx context.Context) (int64, error)
}
