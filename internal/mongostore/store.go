// Package mongostore keeps boards in MongoDB. Standalone servers have no
// multi-document transactions, so Store does not implement kanban.Transactor
// and the materializer falls back to deleting partial boards.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/schema"
)

const (
	boardsCollection = "boards"
	listsCollection  = "tasklists"
	tasksCollection  = "tasks"
)

type boardDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Owner       string               `bson:"owner"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	ListOrder   []primitive.ObjectID `bson:"listOrder"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type listDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Board     primitive.ObjectID   `bson:"board"`
	Title     string               `bson:"title"`
	TaskOrder []primitive.ObjectID `bson:"taskOrder"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type subtaskDoc struct {
	Title string `bson:"title"`
	Done  bool   `bson:"done"`
}

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Board       primitive.ObjectID `bson:"board"`
	List        primitive.ObjectID `bson:"list"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	Priority    string             `bson:"priority"`
	Labels      []string           `bson:"labels"`
	Subtasks    []subtaskDoc       `bson:"subtasks"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// Store implements kanban.Store over three collections.
type Store struct {
	boards *mongo.Collection
	lists  *mongo.Collection
	tasks  *mongo.Collection
}

var _ kanban.Store = (*Store)(nil)

// New returns a store using db.
func New(db *mongo.Database) *Store {
	return &Store{
		boards: db.Collection(boardsCollection),
		lists:  db.Collection(listsCollection),
		tasks:  db.Collection(tasksCollection),
	}
}

// Connect dials uri, checks the server is reachable and ensures indexes. The
// returned function disconnects the client.
func Connect(ctx context.Context, uri, database string) (*Store, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := New(client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return s, client.Disconnect, nil
}

// EnsureIndexes creates the owner and board lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.boards.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "owner", Value: 1}}}); err != nil {
		return fmt.Errorf("index boards: %w", err)
	}
	if _, err := s.lists.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "board", Value: 1}}}); err != nil {
		return fmt.Errorf("index lists: %w", err)
	}
	if _, err := s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "board", Value: 1}}}); err != nil {
		return fmt.Errorf("index tasks: %w", err)
	}
	return nil
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func (s *Store) CreateBoard(ctx context.Context, b *kanban.Board) error {
	order, err := objectIDs(b.ListOrder)
	if err != nil {
		return err
	}
	ts := now()
	doc := boardDoc{
		ID: primitive.NewObjectID(), Owner: b.Owner, Title: b.Title, Description: b.Description,
		ListOrder: order, CreatedAt: ts, UpdatedAt: ts,
	}
	if _, err := s.boards.InsertOne(ctx, doc); err != nil {
		return err
	}
	b.ID, b.CreatedAt, b.UpdatedAt = doc.ID.Hex(), ts, ts
	if b.ListOrder == nil {
		b.ListOrder = []string{}
	}
	return nil
}

func (s *Store) CreateList(ctx context.Context, l *kanban.TaskList) error {
	board, err := primitive.ObjectIDFromHex(l.BoardID)
	if err != nil {
		return kanban.ErrNotFound
	}
	order, err := objectIDs(l.TaskOrder)
	if err != nil {
		return err
	}
	ts := now()
	doc := listDoc{ID: primitive.NewObjectID(), Board: board, Title: l.Title, TaskOrder: order, CreatedAt: ts, UpdatedAt: ts}
	if _, err := s.lists.InsertOne(ctx, doc); err != nil {
		return err
	}
	l.ID, l.CreatedAt, l.UpdatedAt = doc.ID.Hex(), ts, ts
	if l.TaskOrder == nil {
		l.TaskOrder = []string{}
	}
	return nil
}

func (s *Store) CreateTask(ctx context.Context, t *kanban.Task) error {
	board, err := primitive.ObjectIDFromHex(t.BoardID)
	if err != nil {
		return kanban.ErrNotFound
	}
	list, err := primitive.ObjectIDFromHex(t.ListID)
	if err != nil {
		return kanban.ErrNotFound
	}
	ts := now()
	doc := fromTask(*t)
	doc.ID, doc.Board, doc.List, doc.CreatedAt, doc.UpdatedAt = primitive.NewObjectID(), board, list, ts, ts
	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return err
	}
	*t = toTask(doc)
	return nil
}

func (s *Store) SetListOrder(ctx context.Context, boardID string, listIDs []string) error {
	order, err := objectIDs(listIDs)
	if err != nil {
		return err
	}
	return s.update(ctx, s.boards, boardID, bson.D{{Key: "listOrder", Value: order}})
}

func (s *Store) SetTaskOrder(ctx context.Context, listID string, taskIDs []string) error {
	order, err := objectIDs(taskIDs)
	if err != nil {
		return err
	}
	return s.update(ctx, s.lists, listID, bson.D{{Key: "taskOrder", Value: order}})
}

func (s *Store) UpdateBoard(ctx context.Context, id string, u kanban.BoardUpdate) error {
	set := bson.D{}
	if u.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *u.Title})
	}
	if u.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *u.Description})
	}
	return s.update(ctx, s.boards, id, set)
}

func (s *Store) update(ctx context.Context, c *mongo.Collection, id string, set bson.D) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return kanban.ErrNotFound
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now()})
	res, err := c.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return kanban.ErrNotFound
	}
	return nil
}

func (s *Store) GetBoard(ctx context.Context, id string) (kanban.Board, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return kanban.Board{}, kanban.ErrNotFound
	}
	var doc boardDoc
	if err := s.boards.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return kanban.Board{}, notFound(err)
	}
	return toBoard(doc), nil
}

func (s *Store) ListBoards(ctx context.Context, owner string) ([]kanban.Board, error) {
	var docs []boardDoc
	if err := s.findAll(ctx, s.boards, bson.D{{Key: "owner", Value: owner}}, &docs); err != nil {
		return nil, err
	}
	out := make([]kanban.Board, 0, len(docs))
	for _, d := range docs {
		out = append(out, toBoard(d))
	}
	return out, nil
}

func (s *Store) GetList(ctx context.Context, id string) (kanban.TaskList, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return kanban.TaskList{}, kanban.ErrNotFound
	}
	var doc listDoc
	if err := s.lists.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return kanban.TaskList{}, notFound(err)
	}
	return toList(doc), nil
}

func (s *Store) ListLists(ctx context.Context, boardID string) ([]kanban.TaskList, error) {
	oid, err := primitive.ObjectIDFromHex(boardID)
	if err != nil {
		return nil, nil
	}
	var docs []listDoc
	if err := s.findAll(ctx, s.lists, bson.D{{Key: "board", Value: oid}}, &docs); err != nil {
		return nil, err
	}
	out := make([]kanban.TaskList, 0, len(docs))
	for _, d := range docs {
		out = append(out, toList(d))
	}
	return out, nil
}

func (s *Store) ListTasks(ctx context.Context, boardID string) ([]kanban.Task, error) {
	oid, err := primitive.ObjectIDFromHex(boardID)
	if err != nil {
		return nil, nil
	}
	var docs []taskDoc
	if err := s.findAll(ctx, s.tasks, bson.D{{Key: "board", Value: oid}}, &docs); err != nil {
		return nil, err
	}
	out := make([]kanban.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, toTask(d))
	}
	return out, nil
}

// DeleteBoard removes the board's tasks, then its lists, then the board.
func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return kanban.ErrNotFound
	}
	byBoard := bson.D{{Key: "board", Value: oid}}
	if _, err := s.tasks.DeleteMany(ctx, byBoard); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	if _, err := s.lists.DeleteMany(ctx, byBoard); err != nil {
		return fmt.Errorf("delete lists: %w", err)
	}
	res, err := s.boards.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if res.DeletedCount == 0 {
		return kanban.ErrNotFound
	}
	return nil
}

// Reset removes every document from the three collections.
func (s *Store) Reset(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.tasks, s.lists, s.boards} {
		if _, err := c.DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("reset %s: %w", c.Name(), err)
		}
	}
	return nil
}

func (s *Store) findAll(ctx context.Context, c *mongo.Collection, filter bson.D, out any) error {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return kanban.ErrNotFound
	}
	return err
}

func objectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", id, err)
		}
		out = append(out, oid)
	}
	return out, nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

func toBoard(d boardDoc) kanban.Board {
	return kanban.Board{
		ID: d.ID.Hex(), Owner: d.Owner, Title: d.Title, Description: d.Description,
		ListOrder: hexIDs(d.ListOrder), CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func toList(d listDoc) kanban.TaskList {
	return kanban.TaskList{
		ID: d.ID.Hex(), BoardID: d.Board.Hex(), Title: d.Title,
		TaskOrder: hexIDs(d.TaskOrder), CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func fromTask(t kanban.Task) taskDoc {
	d := taskDoc{
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Labels:      append([]string{}, t.Labels...),
		Subtasks:    make([]subtaskDoc, 0, len(t.Subtasks)),
	}
	if d.Priority == "" {
		d.Priority = string(schema.PriorityMedium)
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		d.DueDate = &due
	}
	for _, st := range t.Subtasks {
		d.Subtasks = append(d.Subtasks, subtaskDoc{Title: st.Title, Done: st.Done})
	}
	return d
}

func toTask(d taskDoc) kanban.Task {
	t := kanban.Task{
		ID: d.ID.Hex(), BoardID: d.Board.Hex(), ListID: d.List.Hex(),
		Title: d.Title, Description: d.Description,
		Priority:  schema.ParsePriority(d.Priority),
		Labels:    append([]string{}, d.Labels...),
		Subtasks:  make([]kanban.Subtask, 0, len(d.Subtasks)),
		CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	for _, st := range d.Subtasks {
		t.Subtasks = append(t.Subtasks, kanban.Subtask{Title: st.Title, Done: st.Done})
	}
	return t
}
