package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hiroki-koketsu/todo-tracker/internal/model"
	"github.com/hiroki-koketsu/todo-tracker/internal/repository"
	"github.com/hiroki-koketsu/todo-tracker/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/todo-tracker/internal/handler")

// TaskHandler handles HTTP requests for tasks and categories.
type TaskHandler struct {
	store   repository.TaskStore
	logger  *slog.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(store repository.TaskStore, logger *slog.Logger, metrics *telemetry.Metrics) *TaskHandler {
	return &TaskHandler{
		store:   store,
		logger:  logger,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Routes returns the chi router with task routes.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	// Registered before /{id} so "clear" is never read as an identifier.
	r.Delete("/clear", h.Clear)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// Categories returns the distinct categories in use.
func (h *TaskHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Categories")
	defer span.End()

	categories, err := h.store.Categories(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch categories", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch categories")
		h.recordMetrics(ctx, "GET", "/api/categories", http.StatusInternalServerError, start)
		return
	}

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	h.logger.DebugContext(ctx, "categories listed", slog.Int("count", len(categories)))

	respondJSON(w, http.StatusOK, categories)
	h.recordMetrics(ctx, "GET", "/api/categories", http.StatusOK, start)
}

// List returns the tasks matching the category and sortBy query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	q := model.TaskQuery{
		Category: r.URL.Query().Get("category"),
		Sort:     model.ParseSortMode(r.URL.Query().Get("sortBy")),
	}

	ctx, span := tracer.Start(ctx, "TaskHandler.List",
		trace.WithAttributes(
			attribute.String("task.category", q.Category),
			attribute.String("task.sort", string(q.Sort)),
		),
	)
	defer span.End()

	h.logger.InfoContext(ctx, "listing tasks",
		slog.String("category", q.Category),
		slog.String("sort", string(q.Sort)),
	)

	tasks, err := h.store.List(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tasks", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch tasks")
		h.recordMetrics(ctx, "GET", "/api/tasks", http.StatusInternalServerError, start)
		return
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	h.logger.InfoContext(ctx, "tasks listed", slog.Int("count", len(tasks)))

	respondJSON(w, http.StatusOK, tasks)
	h.recordMetrics(ctx, "GET", "/api/tasks", http.StatusOK, start)
}

// Create adds a new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Create")
	defer span.End()

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "Invalid request body")
		h.recordMetrics(ctx, "POST", "/api/tasks", http.StatusBadRequest, start)
		return
	}

	task, err := req.NewTask(h.now())
	if err != nil {
		h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
		status, msg := statusFor(err, "Failed to create task")
		respondError(w, status, msg)
		h.recordMetrics(ctx, "POST", "/api/tasks", status, start)
		return
	}

	h.logger.InfoContext(ctx, "creating task",
		slog.String("title", task.Title),
		slog.String("category", task.Category),
		slog.String("priority", string(task.Priority)),
	)

	task, err = h.store.Create(ctx, task)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create task", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to create task")
		h.recordMetrics(ctx, "POST", "/api/tasks", http.StatusInternalServerError, start)
		return
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	h.logger.InfoContext(ctx, "task created", slog.String("id", task.ID))

	respondJSON(w, http.StatusCreated, task)
	h.recordMetrics(ctx, "POST", "/api/tasks", http.StatusCreated, start)
}

// Update applies a partial update to a task. Only completed and priority may
// be sent. An identifier that matches no task is still acknowledged.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	var req model.UpdateTaskRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "Invalid request body, only completed and priority can be updated")
		h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", http.StatusBadRequest, start)
		return
	}

	update, err := req.Update()
	if err != nil {
		h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
		status, msg := statusFor(err, "Failed to update task")
		respondError(w, status, msg)
		h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", status, start)
		return
	}

	h.logger.InfoContext(ctx, "updating task", slog.String("id", id))

	matched, err := h.store.Update(ctx, id, update)
	if err != nil {
		status, msg := statusFor(err, "Failed to update task")
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "failed to update task", slog.Any("error", err))
		} else {
			h.logger.WarnContext(ctx, "invalid task id", slog.String("id", id))
		}
		respondError(w, status, msg)
		h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", status, start)
		return
	}

	if !matched {
		h.logger.WarnContext(ctx, "update matched no task", slog.String("id", id))
	} else {
		h.logger.InfoContext(ctx, "task updated", slog.String("id", id))
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "Task updated successfully"})
	h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", http.StatusOK, start)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	h.logger.InfoContext(ctx, "deleting task", slog.String("id", id))

	if err := h.store.Delete(ctx, id); err != nil {
		status, msg := statusFor(err, "Failed to delete task")
		if status == http.StatusNotFound {
			h.logger.WarnContext(ctx, "task not found", slog.String("id", id))
		} else {
			h.logger.ErrorContext(ctx, "failed to delete task", slog.Any("error", err))
		}
		respondError(w, status, msg)
		h.recordMetrics(ctx, "DELETE", "/api/tasks/{id}", status, start)
		return
	}

	h.logger.InfoContext(ctx, "task deleted", slog.String("id", id))

	respondJSON(w, http.StatusOK, messageResponse{Message: "Task deleted successfully"})
	h.recordMetrics(ctx, "DELETE", "/api/tasks/{id}", http.StatusOK, start)
}

// Clear removes every task.
func (h *TaskHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Clear")
	defer span.End()

	h.logger.InfoContext(ctx, "deleting all tasks")

	n, err := h.store.DeleteAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete all tasks", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Failed to delete all tasks")
		h.recordMetrics(ctx, "DELETE", "/api/tasks/clear", http.StatusInternalServerError, start)
		return
	}

	span.SetAttributes(attribute.Int64("task.deleted", n))
	h.logger.InfoContext(ctx, "all tasks deleted", slog.Int64("count", n))

	respondJSON(w, http.StatusOK, clearResponse{Message: "All tasks deleted successfully", DeletedCount: n})
	h.recordMetrics(ctx, "DELETE", "/api/tasks/clear", http.StatusOK, start)
}

// Health returns a health check response.
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Root answers the plain liveness probe at "/".
func (h *TaskHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("To-Do Backend is running!"))
}

func (h *TaskHandler) recordMetrics(ctx context.Context, method, route string, status int, start time.Time) {
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	h.metrics.RequestCounter.Add(ctx, 1, attrs)
	h.metrics.RequestDuration.Record(ctx, duration, attrs)
}
