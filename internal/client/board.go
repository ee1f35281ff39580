package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/hiroki-koketsu/todo-tracker/internal/model"
)

// ErrUnknownTask is returned when an action names a task that is not on the
// board.
var ErrUnknownTask = errors.New("task is not on the board")

// Board is the client view: the current filter and sort selection and the
// task and category lists last fetched for them. It never patches those
// lists locally; every change is followed by a full Refresh.
type Board struct {
	api *Client

	Category   string
	Sort       model.SortMode
	Tasks      []*model.Task
	Categories []string
}

// NewBoard returns a board showing all categories, oldest task first.
func NewBoard(api *Client) *Board {
	return &Board{api: api, Sort: model.SortTimeAddedAsc}
}

// Refresh re-fetches the task list for the current selection and the
// category list.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.api.Tasks(ctx, model.TaskQuery{Category: b.Category, Sort: b.Sort})
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}
	categories, err := b.api.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch categories: %w", err)
	}
	b.Tasks = tasks
	b.Categories = categories
	return nil
}

// Filter selects a category ("" for all) and refreshes.
func (b *Board) Filter(ctx context.Context, category string) error {
	b.Category = category
	return b.Refresh(ctx)
}

// SortBy selects an ordering and refreshes.
func (b *Board) SortBy(ctx context.Context, mode model.SortMode) error {
	b.Sort = mode
	return b.Refresh(ctx)
}

// Add creates a task and refreshes.
func (b *Board) Add(ctx context.Context, req model.CreateTaskRequest) (*model.Task, error) {
	task, err := b.api.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return task, b.Refresh(ctx)
}

// ToggleComplete flips the completion flag of a task on the board and
// refreshes. The current priority is sent along unchanged.
func (b *Board) ToggleComplete(ctx context.Context, id string) error {
	task := b.find(id)
	if task == nil {
		return ErrUnknownTask
	}

	completed := !task.Completed
	priority := string(task.Priority)
	if err := b.api.Update(ctx, id, model.UpdateTaskRequest{Completed: &completed, Priority: &priority}); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

// Remove deletes one task and refreshes.
func (b *Board) Remove(ctx context.Context, id string) error {
	if err := b.api.Delete(ctx, id); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

// RemoveAll deletes every task and refreshes. Asking the user for
// confirmation is up to the caller.
func (b *Board) RemoveAll(ctx context.Context) (int64, error) {
	n, err := b.api.Clear(ctx)
	if err != nil {
		return 0, err
	}
	return n, b.Refresh(ctx)
}

func (b *Board) find(id string) *model.Task {
	for _, t := range b.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
