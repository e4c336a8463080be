// Package mongo implements store.Store on MongoDB.
//
// Day records are stored as {_id: day key, entries: [{category, minutes}]}
// so that category order survives the round trip through BSON.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
)

// Backend is the name reported to observability hooks.
const Backend = "mongo"

// Collection names.
const (
	CollectionDays  = "days"
	CollectionMeta  = "meta"
	CollectionTasks = "tasks"
)

const (
	metaCategoriesID = "categories"
	metaTaskSeqID    = "task_seq"
)

// Config holds connection settings.
type Config struct {
	URI      string
	Database string
}

// Store is a MongoDB-backed store.Store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	hosts  string
	owned  bool
	now    func() time.Time
}

type dayDoc struct {
	Key     string     `bson:"_id"`
	Entries []entryDoc `bson:"entries"`
}

type entryDoc struct {
	Category string `bson:"category"`
	Minutes  int    `bson:"minutes"`
}

// taskDoc adds a creation sequence so listing keeps insertion order even
// when timestamps collide.
type taskDoc struct {
	store.Task `bson:",inline"`
	Seq        int64 `bson:"seq"`
}

type categoriesDoc struct {
	ID         string   `bson:"_id"`
	Categories []string `bson:"categories"`
}

// Open connects to MongoDB and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo store: empty database name")
	}
	clientOpts := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := NewFromClient(client, cfg.Database)
	s.hosts = strings.Join(clientOpts.Hosts, ",")
	s.owned = true
	return s, nil
}

// NewFromClient wraps an existing client. Close does not disconnect a
// client it did not create.
func NewFromClient(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database), now: time.Now}
}

// Backend implements store.Store.
func (s *Store) Backend() string { return Backend }

// Scope implements store.Store. Credentials in the URI are left out; a
// store built from a client only knows its database name.
func (s *Store) Scope() string {
	return Backend + ":" + s.hosts + "/" + s.db.Name()
}

// Close disconnects the client if the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) days() *mongo.Collection  { return s.db.Collection(CollectionDays) }
func (s *Store) meta() *mongo.Collection  { return s.db.Collection(CollectionMeta) }
func (s *Store) tasks() *mongo.Collection { return s.db.Collection(CollectionTasks) }

func (s *Store) Get(ctx context.Context, key string) (rec stats.Record, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "get_day", start, err) }(time.Now())
	var doc dayDoc
	err = s.days().FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return stats.Record{}, store.NotFound(key)
	}
	if err != nil {
		return stats.Record{}, store.StorageError(err, "get day")
	}
	rec = stats.NewRecord()
	for _, e := range doc.Entries {
		rec.Set(e.Category, e.Minutes)
	}
	return rec, nil
}

func (s *Store) Put(ctx context.Context, key string, rec stats.Record) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "put_day", start, err) }(time.Now())
	if err := store.ValidateDay(key, rec); err != nil {
		return err
	}
	doc := dayDoc{Key: key, Entries: make([]entryDoc, 0, rec.Len())}
	rec.Each(func(category string, minutes int) {
		doc.Entries = append(doc.Entries, entryDoc{Category: category, Minutes: minutes})
	})
	_, err = s.days().ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return store.StorageError(err, "put day")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "delete_day", start, err) }(time.Now())
	if _, err := s.days().DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return store.StorageError(err, "delete day")
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) (keys []string, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "keys", start, err) }(time.Now())
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.days().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, store.StorageError(err, "list days")
	}
	var docs []struct {
		Key string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, store.StorageError(err, "list days")
	}
	keys = make([]string, len(docs))
	for i, d := range docs {
		keys[i] = d.Key
	}
	return keys, nil
}

func (s *Store) Categories(ctx context.Context) (out []string, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "categories", start, err) }(time.Now())
	var doc categoriesDoc
	err = s.meta().FindOne(ctx, bson.M{"_id": metaCategoriesID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return slices.Clone(store.DefaultCategories), nil
	}
	if err != nil {
		return nil, store.StorageError(err, "get categories")
	}
	if doc.Categories == nil {
		return []string{}, nil
	}
	return doc.Categories, nil
}

func (s *Store) SetCategories(ctx context.Context, categories []string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "set_categories", start, err) }(time.Now())
	categories, err = store.NormalizeCategories(categories)
	if err != nil {
		return err
	}
	doc := categoriesDoc{ID: metaCategoriesID, Categories: categories}
	_, err = s.meta().ReplaceOne(ctx, bson.M{"_id": metaCategoriesID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return store.StorageError(err, "set categories")
	}
	return nil
}

func (s *Store) AddTask(ctx context.Context, text string, q store.Quadrant) (task store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "add_task", start, err) }(time.Now())
	task, err = store.NewTask(text, q, s.now())
	if err != nil {
		return store.Task{}, err
	}
	// BSON dates carry millisecond precision; truncate so callers see what
	// a later read returns.
	task.CreatedAt = task.CreatedAt.Truncate(time.Millisecond)
	seq, err := s.nextTaskSeq(ctx)
	if err != nil {
		return store.Task{}, err
	}
	if _, err := s.tasks().InsertOne(ctx, taskDoc{Task: task, Seq: seq}); err != nil {
		return store.Task{}, store.StorageError(err, "add task")
	}
	return task, nil
}

func (s *Store) Tasks(ctx context.Context, q store.Quadrant) (out []store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "tasks", start, err) }(time.Now())
	if err := store.CheckQuadrant(q); err != nil {
		return nil, err
	}
	filter := bson.M{}
	if q != "" {
		filter["quadrant"] = q
	}
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cur, err := s.tasks().Find(ctx, filter, opts)
	if err != nil {
		return nil, store.StorageError(err, "list tasks")
	}
	out = []store.Task{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.StorageError(err, "list tasks")
	}
	return out, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "delete_task", start, err) }(time.Now())
	res, err := s.tasks().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.StorageError(err, "delete task")
	}
	if res.DeletedCount == 0 {
		return store.TaskNotFound(id)
	}
	return nil
}

func (s *Store) MoveTask(ctx context.Context, id string, q store.Quadrant) (task store.Task, err error) {
	if !q.Valid() {
		return store.Task{}, store.CheckQuadrant(q)
	}
	defer func(start time.Time) { store.Observe(ctx, Backend, "move_task", start, err) }(time.Now())
	return s.findAndUpdate(ctx, id, bson.M{"$set": bson.M{"quadrant": q}})
}

func (s *Store) ToggleTask(ctx context.Context, id string) (task store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "toggle_task", start, err) }(time.Now())
	// Pipeline update so the flip happens server side in one step.
	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{"completed": bson.M{"$not": "$completed"}}}}}
	return s.findAndUpdate(ctx, id, update)
}

func (s *Store) nextTaskSeq(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.meta().FindOneAndUpdate(ctx, bson.M{"_id": metaTaskSeqID}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, store.StorageError(err, "task sequence")
	}
	return doc.Seq, nil
}

func (s *Store) findAndUpdate(ctx context.Context, id string, update any) (store.Task, error) {
	var task store.Task
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.tasks().FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Task{}, store.TaskNotFound(id)
	}
	if err != nil {
		return store.Task{}, store.StorageError(err, "update task")
	}
	return task, nil
}

var _ store.Store = (*Store)(nil)
