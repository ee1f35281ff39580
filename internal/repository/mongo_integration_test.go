package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hiroki-koketsu/todo-tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newMongoTestStore connects to MONGODB_TEST_URI and returns a store on a
// throwaway database. The test is skipped when the variable is unset.
func newMongoTestStore(t *testing.T) *MongoTaskStore {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri)
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("todo_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	store := NewMongoTaskStore(db)
	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestMongoTaskStore_Lifecycle(t *testing.T) {
	store := newMongoTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, time.February, 1, 10, 0, 0, 0, time.UTC)

	low, err := store.Create(ctx, newTask("low", "A", model.PriorityLow, t0))
	require.NoError(t, err)
	_, err = primitive.ObjectIDFromHex(low.ID)
	require.NoError(t, err)

	_, err = store.Create(ctx, newTask("high-late", "B", model.PriorityHigh, t0.Add(2*time.Minute)))
	require.NoError(t, err)
	_, err = store.Create(ctx, newTask("high-early", "A", model.PriorityHigh, t0.Add(time.Minute)))
	require.NoError(t, err)

	tasks, err := store.List(ctx, model.TaskQuery{Sort: model.SortPriorityTimeAdded})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"high-early", "high-late", "low"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
	assert.Nil(t, tasks[0].DueDate)

	tasks, err = store.List(ctx, model.TaskQuery{Category: "A", Sort: model.SortTimeAddedDesc})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "high-early", tasks[0].Title)

	categories, err := store.Categories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, categories)

	high := model.PriorityHigh
	matched, err := store.Update(ctx, low.ID, model.TaskUpdate{Priority: &high})
	require.NoError(t, err)
	assert.True(t, matched)

	tasks, err = store.List(ctx, model.TaskQuery{Sort: model.SortPriorityTimeAdded})
	require.NoError(t, err)
	assert.Equal(t, "low", tasks[0].Title, "rank follows the updated priority")

	matched, err = store.Update(ctx, primitive.NewObjectID().Hex(), model.TaskUpdate{Priority: &high})
	require.NoError(t, err)
	assert.False(t, matched)

	_, err = store.Update(ctx, "clear", model.TaskUpdate{Priority: &high})
	assert.ErrorIs(t, err, model.ErrInvalidID)

	require.NoError(t, store.Delete(ctx, low.ID))
	assert.ErrorIs(t, store.Delete(ctx, low.ID), model.ErrTaskNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "clear"), model.ErrTaskNotFound)

	n, err := store.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	tasks, err = store.List(ctx, model.TaskQuery{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestMongoTaskStore_LegacyPrioritiesSortLast(t *testing.T) {
	store := newMongoTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2025, time.February, 1, 10, 0, 0, 0, time.UTC)

	_, err := store.coll.InsertMany(ctx, []interface{}{
		bson.D{{Key: "title", Value: "legacy"}, {Key: "category", Value: "General"}, {Key: "priority", Value: "urgent"}, {Key: "createdAt", Value: t0}},
		bson.D{{Key: "title", Value: "old-high"}, {Key: "category", Value: "General"}, {Key: "priority", Value: "1-High"}, {Key: "createdAt", Value: t0.Add(time.Minute)}},
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, newTask("low", "General", model.PriorityLow, t0.Add(2*time.Minute)))
	require.NoError(t, err)

	require.NoError(t, store.EnsureSchema(ctx))

	tasks, err := store.List(ctx, model.TaskQuery{Sort: model.SortPriority})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"old-high", "low", "legacy"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
}
