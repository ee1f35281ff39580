package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hiroki-koketsu/todo-tracker/internal/handler"
	"github.com/hiroki-koketsu/todo-tracker/internal/model"
	"github.com/hiroki-koketsu/todo-tracker/internal/repository"
	"github.com/hiroki-koketsu/todo-tracker/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

// newAPI starts the real router over an in-memory store and counts the
// requests it receives.
func newAPI(t *testing.T) (*Client, *atomic.Int64) {
	t.Helper()

	store := repository.NewMemoryTaskStore()
	metrics, err := telemetry.NewMetrics(noop.NewMeterProvider().Meter("test"), store.Count)
	require.NoError(t, err)
	h := handler.NewTaskHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	router := handler.NewRouter(h, []string{"*"})

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL+"/", WithHTTPClient(srv.Client())), &requests
}

func taskTitles(tasks []*model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestBoard_AddRefetchesEverything(t *testing.T) {
	api, requests := newAPI(t)
	ctx := context.Background()
	board := NewBoard(api)
	assert.Equal(t, model.SortTimeAddedAsc, board.Sort)

	task, err := board.Add(ctx, model.CreateTaskRequest{Title: "Buy milk", Category: "Errands"})
	require.NoError(t, err)
	assert.Equal(t, "Errands", task.Category)

	// create + tasks + categories
	assert.EqualValues(t, 3, requests.Load())
	assert.Equal(t, []string{"Buy milk"}, taskTitles(board.Tasks))
	assert.Equal(t, []string{"Errands"}, board.Categories)
}

func TestBoard_FilterAndSort(t *testing.T) {
	api, _ := newAPI(t)
	ctx := context.Background()
	board := NewBoard(api)

	_, err := board.Add(ctx, model.CreateTaskRequest{Title: "a", Category: "Work", Priority: "3-Low"})
	require.NoError(t, err)
	_, err = board.Add(ctx, model.CreateTaskRequest{Title: "b", Category: "Home", Priority: "1-High"})
	require.NoError(t, err)
	_, err = board.Add(ctx, model.CreateTaskRequest{Title: "c", Category: "Work", Priority: "1-High"})
	require.NoError(t, err)

	require.NoError(t, board.SortBy(ctx, model.SortPriorityTimeAdded))
	assert.Equal(t, []string{"b", "c", "a"}, taskTitles(board.Tasks))

	require.NoError(t, board.Filter(ctx, "Work"))
	assert.Equal(t, []string{"c", "a"}, taskTitles(board.Tasks))
	assert.ElementsMatch(t, []string{"Work", "Home"}, board.Categories)

	require.NoError(t, board.SortBy(ctx, model.SortTimeAddedDesc))
	assert.Equal(t, []string{"c", "a"}, taskTitles(board.Tasks))
}

func TestBoard_ToggleComplete(t *testing.T) {
	api, _ := newAPI(t)
	ctx := context.Background()
	board := NewBoard(api)

	task, err := board.Add(ctx, model.CreateTaskRequest{Title: "toggle", Priority: "3-Low"})
	require.NoError(t, err)

	require.NoError(t, board.ToggleComplete(ctx, task.ID))
	require.Len(t, board.Tasks, 1)
	assert.True(t, board.Tasks[0].Completed)
	assert.Equal(t, model.PriorityLow, board.Tasks[0].Priority)

	require.NoError(t, board.ToggleComplete(ctx, task.ID))
	assert.False(t, board.Tasks[0].Completed)

	assert.ErrorIs(t, board.ToggleComplete(ctx, "missing"), ErrUnknownTask)
}

func TestBoard_RemoveAndRemoveAll(t *testing.T) {
	api, _ := newAPI(t)
	ctx := context.Background()
	board := NewBoard(api)

	first, err := board.Add(ctx, model.CreateTaskRequest{Title: "one", Category: "A"})
	require.NoError(t, err)
	_, err = board.Add(ctx, model.CreateTaskRequest{Title: "two", Category: "B"})
	require.NoError(t, err)

	require.NoError(t, board.Remove(ctx, first.ID))
	assert.Equal(t, []string{"two"}, taskTitles(board.Tasks))
	assert.Equal(t, []string{"B"}, board.Categories)

	var apiErr *APIError
	err = board.Remove(ctx, first.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Task not found", apiErr.Message)

	n, err := board.RemoveAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Empty(t, board.Tasks)
	assert.Empty(t, board.Categories)
}

func TestClient_CreateValidationError(t *testing.T) {
	api, _ := newAPI(t)

	_, err := api.Create(context.Background(), model.CreateTaskRequest{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Task title is required", apiErr.Message)
}
