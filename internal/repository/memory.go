package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hiroki-koketsu/todo-tracker/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MemoryTaskStore provides an in-memory storage for tasks. Identifiers are
// UUIDs and the natural order is insertion order.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*model.Task
	order []string
}

var _ TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates a new MemoryTaskStore.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks: make(map[string]*model.Task),
	}
}

// Create adds a new task to the store.
func (r *MemoryTaskStore) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	_, span := tracer.Start(ctx, "MemoryTaskStore.Create",
		trace.WithAttributes(attribute.String("task.title", t.Title)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *t
	stored.ID = uuid.New().String()
	if t.DueDate != nil {
		due := *t.DueDate
		stored.DueDate = &due
	}

	r.tasks[stored.ID] = &stored
	r.order = append(r.order, stored.ID)

	span.SetAttributes(attribute.String("task.id", stored.ID))
	out := stored
	return &out, nil
}

// List returns the tasks matching q.
func (r *MemoryTaskStore) List(ctx context.Context, q model.TaskQuery) ([]*model.Task, error) {
	_, span := tracer.Start(ctx, "MemoryTaskStore.List",
		trace.WithAttributes(
			attribute.String("task.category", q.Category),
			attribute.String("task.sort", string(q.Sort)),
		),
	)
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*model.Task, 0, len(r.order))
	for _, id := range r.order {
		t := r.tasks[id]
		if !q.Matches(t) {
			continue
		}
		c := *t
		tasks = append(tasks, &c)
	}
	q.Order(tasks)

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// Categories returns the distinct categories in order of first use.
func (r *MemoryTaskStore) Categories(ctx context.Context) ([]string, error) {
	_, span := tracer.Start(ctx, "MemoryTaskStore.Categories")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, id := range r.order {
		c := r.tasks[id].Category
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	return categories, nil
}

// Update modifies an existing task.
func (r *MemoryTaskStore) Update(ctx context.Context, id string, u model.TaskUpdate) (bool, error) {
	_, span := tracer.Start(ctx, "MemoryTaskStore.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return false, model.ErrInvalidID
	}
	id = parsed.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		span.SetAttributes(attribute.Bool("task.found", false))
		return false, nil
	}

	u.Apply(task)

	span.SetAttributes(attribute.Bool("task.found", true))
	return true, nil
}

// Delete removes a task from the store.
func (r *MemoryTaskStore) Delete(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "MemoryTaskStore.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	parsed, err := uuid.Parse(id)
	if err != nil {
		span.SetAttributes(attribute.Bool("task.found", false))
		return model.ErrTaskNotFound
	}
	id = parsed.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		span.SetAttributes(attribute.Bool("task.found", false))
		return model.ErrTaskNotFound
	}

	delete(r.tasks, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return nil
}

// DeleteAll empties the store.
func (r *MemoryTaskStore) DeleteAll(ctx context.Context) (int64, error) {
	_, span := tracer.Start(ctx, "MemoryTaskStore.DeleteAll")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.tasks))
	r.tasks = make(map[string]*model.Task)
	r.order = nil

	span.SetAttributes(attribute.Int64("task.deleted", n))
	return n, nil
}

// Count returns the current number of tasks.
func (r *MemoryTaskStore) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.tasks)), nil
}
