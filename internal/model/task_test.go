package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskRequest_NewTask(t *testing.T) {
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		req := CreateTaskRequest{Title: "Water plants"}

		task, err := req.NewTask(now)
		require.NoError(t, err)

		assert.Empty(t, task.ID)
		assert.Equal(t, "Water plants", task.Title)
		assert.Equal(t, DefaultCategory, task.Category)
		assert.Equal(t, PriorityMedium, task.Priority)
		assert.False(t, task.Completed)
		assert.Equal(t, now, task.CreatedAt)
		assert.Nil(t, task.DueDate)
	})

	t.Run("supplied_fields", func(t *testing.T) {
		req := CreateTaskRequest{Title: "Report", Category: "Work", Priority: "3-Low", DueDate: "2025-04-02"}

		task, err := req.NewTask(now)
		require.NoError(t, err)

		assert.Equal(t, "Work", task.Category)
		assert.Equal(t, PriorityLow, task.Priority)
		require.NotNil(t, task.DueDate)
		assert.Equal(t, time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC), *task.DueDate)
	})

	t.Run("whitespace_title_is_kept", func(t *testing.T) {
		task, err := (&CreateTaskRequest{Title: "  "}).NewTask(now)
		require.NoError(t, err)
		assert.Equal(t, "  ", task.Title)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			req  CreateTaskRequest
			err  error
		}{
			{"empty_title", CreateTaskRequest{}, ErrTitleRequired},
			{"bad_priority", CreateTaskRequest{Title: "x", Priority: "High"}, ErrInvalidPriority},
			{"bad_due_date", CreateTaskRequest{Title: "x", DueDate: "tomorrow"}, ErrInvalidDueDate},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				task, err := tt.req.NewTask(now)
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, task)
			})
		}
	})
}

func TestParseDueDate(t *testing.T) {
	want := time.Date(2025, time.March, 4, 17, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want *time.Time
	}{
		{"", nil},
		{"   ", nil},
		{"2025-03-04T17:30", &want},
		{"2025-03-04T17:30:00", &want},
		{"2025-03-04T17:30:00Z", &want},
		{"2025-03-04T19:30:00+02:00", &want},
		{"2025-03-04T17:30:00.000Z", &want},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDueDate(tt.in)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := ParseDueDate("03/04/2025")
	assert.ErrorIs(t, err, ErrInvalidDueDate)
}

func TestUpdateTaskRequest_Update(t *testing.T) {
	yes := true
	high := "1-High"
	bad := "Urgent"

	t.Run("completed_only", func(t *testing.T) {
		u, err := (&UpdateTaskRequest{Completed: &yes}).Update()
		require.NoError(t, err)
		require.NotNil(t, u.Completed)
		assert.True(t, *u.Completed)
		assert.Nil(t, u.Priority)
	})

	t.Run("both", func(t *testing.T) {
		u, err := (&UpdateTaskRequest{Completed: &yes, Priority: &high}).Update()
		require.NoError(t, err)
		require.NotNil(t, u.Priority)
		assert.Equal(t, PriorityHigh, *u.Priority)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := (&UpdateTaskRequest{}).Update()
		assert.ErrorIs(t, err, ErrEmptyUpdate)
	})

	t.Run("bad_priority", func(t *testing.T) {
		_, err := (&UpdateTaskRequest{Priority: &bad}).Update()
		assert.ErrorIs(t, err, ErrInvalidPriority)
	})
}

func TestTaskUpdate_Apply(t *testing.T) {
	created := time.Now()
	task := Task{ID: "1", Title: "t", Category: "c", Priority: PriorityLow, CreatedAt: created}

	done := true
	TaskUpdate{Completed: &done}.Apply(&task)
	assert.True(t, task.Completed)
	assert.Equal(t, PriorityLow, task.Priority)

	p := PriorityHigh
	TaskUpdate{Priority: &p}.Apply(&task)
	assert.True(t, task.Completed)
	assert.Equal(t, PriorityHigh, task.Priority)

	assert.Equal(t, Task{ID: "1", Title: "t", Category: "c", Priority: PriorityHigh, Completed: true, CreatedAt: created}, task)
}
