package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hiroki-koketsu/todo-tracker/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TasksCollection is the collection holding task documents.
const TasksCollection = "tasks"

// taskDocument is the stored shape of a task. priorityRank mirrors priority
// so ordering does not depend on the label text.
type taskDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Category     string             `bson:"category"`
	Priority     string             `bson:"priority"`
	PriorityRank int                `bson:"priorityRank"`
	Completed    bool               `bson:"completed"`
	CreatedAt    time.Time          `bson:"createdAt"`
	DueDate      *time.Time         `bson:"dueDate"`
}

func newTaskDocument(t *model.Task) taskDocument {
	return taskDocument{
		Title:        t.Title,
		Category:     t.Category,
		Priority:     string(t.Priority),
		PriorityRank: t.Priority.Rank(),
		Completed:    t.Completed,
		CreatedAt:    t.CreatedAt,
		DueDate:      t.DueDate,
	}
}

func (d taskDocument) task() *model.Task {
	t := &model.Task{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Category:  d.Category,
		Priority:  model.Priority(d.Priority),
		Completed: d.Completed,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// Connect opens a client and pings the primary so that an unreachable store
// is reported at startup.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// MongoTaskStore stores tasks in a MongoDB collection.
type MongoTaskStore struct {
	coll *mongo.Collection
}

var _ TaskStore = (*MongoTaskStore)(nil)

// NewMongoTaskStore creates a store over the tasks collection of db.
func NewMongoTaskStore(db *mongo.Database) *MongoTaskStore {
	return &MongoTaskStore{coll: db.Collection(TasksCollection)}
}

// EnsureSchema creates the indexes used by listings and fills in
// priorityRank on documents written without it.
func (s *MongoTaskStore) EnsureSchema(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "MongoTaskStore.EnsureSchema")
	defer span.End()

	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "priorityRank", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return recordError(span, fmt.Errorf("failed to create indexes: %w", err))
	}

	for _, b := range rankBackfills() {
		if _, err := s.coll.UpdateMany(ctx, b.filter, b.update); err != nil {
			return recordError(span, fmt.Errorf("failed to backfill priority rank: %w", err))
		}
	}
	return nil
}

// Create inserts a task document.
func (s *MongoTaskStore) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "MongoTaskStore.Create",
		trace.WithAttributes(attribute.String("task.title", t.Title)),
	)
	defer span.End()

	doc := newTaskDocument(t)
	// BSON dates carry millisecond precision.
	doc.CreatedAt = doc.CreatedAt.Truncate(time.Millisecond)
	if doc.DueDate != nil {
		due := doc.DueDate.Truncate(time.Millisecond)
		doc.DueDate = &due
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to insert task: %w", err))
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, recordError(span, fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	doc.ID = oid

	span.SetAttributes(attribute.String("task.id", oid.Hex()))
	return doc.task(), nil
}

// List returns the tasks matching q.
func (s *MongoTaskStore) List(ctx context.Context, q model.TaskQuery) ([]*model.Task, error) {
	ctx, span := tracer.Start(ctx, "MongoTaskStore.List",
		trace.WithAttributes(
			attribute.String("task.category", q.Category),
			attribute.String("task.sort", string(q.Sort)),
		),
	)
	defer span.End()

	opts := options.Find().SetProjection(taskProjection())
	if sort := sortDocument(q.Sort); sort != nil {
		opts.SetSort(sort)
	}

	cur, err := s.coll.Find(ctx, filterDocument(q), opts)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to find tasks: %w", err))
	}
	defer cur.Close(ctx)

	tasks := []*model.Task{}
	for cur.Next(ctx) {
		var doc taskDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, recordError(span, fmt.Errorf("failed to decode task: %w", err))
		}
		tasks = append(tasks, doc.task())
	}
	if err := cur.Err(); err != nil {
		return nil, recordError(span, fmt.Errorf("failed to iterate tasks: %w", err))
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// Categories returns the distinct category values.
func (s *MongoTaskStore) Categories(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "MongoTaskStore.Categories")
	defer span.End()

	values, err := s.coll.Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to fetch categories: %w", err))
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok {
			categories = append(categories, c)
		}
	}

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	return categories, nil
}

// Update applies u with $set. A missing document is reported through
// matched, not as an error.
func (s *MongoTaskStore) Update(ctx context.Context, id string, u model.TaskUpdate) (bool, error) {
	ctx, span := tracer.Start(ctx, "MongoTaskStore.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, model.ErrInvalidID
	}

	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, updateDocument(u))
	if err != nil {
		return false, recordError(span, fmt.Errorf("failed to update task: %w", err))
	}

	matched := res.MatchedCount > 0
	span.SetAttributes(attribute.Bool("task.found", matched))
	return matched, nil
}

// Delete removes one task document.
func (s *MongoTaskStore) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "MongoTaskStore.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		span.SetAttributes(attribute.Bool("task.found", false))
		return model.ErrTaskNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return recordError(span, fmt.Errorf("failed to delete task: %w", err))
	}
	if res.DeletedCount == 0 {
		span.SetAttributes(attribute.Bool("task.found", false))
		return model.ErrTaskNotFound
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return nil
}

// DeleteAll removes every task document.
func (s *MongoTaskStore) DeleteAll(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "MongoTaskStore.DeleteAll")
	defer span.End()

	res, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, recordError(span, fmt.Errorf("failed to delete tasks: %w", err))
	}

	span.SetAttributes(attribute.Int64("task.deleted", res.DeletedCount))
	return res.DeletedCount, nil
}

// Count returns the number of task documents.
func (s *MongoTaskStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

type rankBackfill struct {
	filter bson.D
	update bson.D
}

// rankBackfills sets priorityRank on documents written without it. Labels
// outside the known set get the same last rank Priority.Rank gives them.
func rankBackfills() []rankBackfill {
	missing := bson.E{Key: "priorityRank", Value: bson.D{{Key: "$exists", Value: false}}}
	setRank := func(rank int) bson.D {
		return bson.D{{Key: "$set", Value: bson.D{{Key: "priorityRank", Value: rank}}}}
	}

	known := model.Priorities()
	labels := make(bson.A, 0, len(known))
	backfills := make([]rankBackfill, 0, len(known)+1)
	for _, p := range known {
		labels = append(labels, string(p))
		backfills = append(backfills, rankBackfill{
			filter: bson.D{{Key: "priority", Value: string(p)}, missing},
			update: setRank(p.Rank()),
		})
	}
	return append(backfills, rankBackfill{
		filter: bson.D{{Key: "priority", Value: bson.D{{Key: "$nin", Value: labels}}}, missing},
		update: setRank(model.Priority("").Rank()),
	})
}

func filterDocument(q model.TaskQuery) bson.D {
	if q.Category == "" {
		return bson.D{}
	}
	return bson.D{{Key: "category", Value: q.Category}}
}

// sortDocument returns nil when the store's natural order should be kept.
func sortDocument(m model.SortMode) bson.D {
	switch m {
	case model.SortTimeAddedAsc:
		return bson.D{{Key: "createdAt", Value: 1}}
	case model.SortTimeAddedDesc:
		return bson.D{{Key: "createdAt", Value: -1}}
	case model.SortPriority:
		return bson.D{{Key: "priorityRank", Value: 1}}
	case model.SortPriorityTimeAdded:
		return bson.D{{Key: "priorityRank", Value: 1}, {Key: "createdAt", Value: 1}}
	default:
		return nil
	}
}

func updateDocument(u model.TaskUpdate) bson.D {
	set := bson.D{}
	if u.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *u.Completed})
	}
	if u.Priority != nil {
		set = append(set,
			bson.E{Key: "priority", Value: string(*u.Priority)},
			bson.E{Key: "priorityRank", Value: u.Priority.Rank()},
		)
	}
	return bson.D{{Key: "$set", Value: set}}
}

func taskProjection() bson.D {
	return bson.D{
		{Key: "_id", Value: 1},
		{Key: "title", Value: 1},
		{Key: "category", Value: 1},
		{Key: "priority", Value: 1},
		{Key: "priorityRank", Value: 1},
		{Key: "completed", Value: 1},
		{Key: "createdAt", Value: 1},
		{Key: "dueDate", Value: 1},
	}
}
