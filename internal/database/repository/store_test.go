package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/kanbanai/internal/database"
	"github.com/jask/kanbanai/internal/database/repository"
	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/schema"
)

func openStore(t *testing.T) (*sql.DB, *repository.Store) {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, repository.NewStore(db)
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func spec() schema.BoardSpec {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return schema.BoardSpec{
		BoardTitle: "Launch",
		Lists: []schema.ListSpec{
			{Title: "Backlog", Tasks: []schema.TaskSpec{
				{Title: "Press kit", Priority: schema.PriorityHigh, DueDate: &due, Labels: []string{"pr"},
					Subtasks: []schema.SubtaskSpec{{Title: "Logo", Done: true}}},
				{Title: "Pricing page", Priority: schema.PriorityMedium},
			}},
			{Title: "Doing", Tasks: []schema.TaskSpec{
				{Title: "Beta invites", Priority: schema.PriorityUrgent},
			}},
		},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()
	db, _ := openStore(t)
	require.NoError(t, database.Migrate(db))
}

func TestMaterializeRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, store := openStore(t)

	m := &kanban.Materializer{Store: store}
	snap, err := m.Materialize(ctx, spec(), "user-1")
	require.NoError(t, err)
	require.Len(t, snap.Board.ListOrder, 2)
	require.Equal(t, 1, countRows(t, db, "boards"))
	require.Equal(t, 2, countRows(t, db, "task_lists"))
	require.Equal(t, 3, countRows(t, db, "tasks"))

	board, err := store.GetBoard(ctx, snap.Board.ID)
	require.NoError(t, err)
	require.Equal(t, "user-1", board.Owner)
	require.Equal(t, snap.Board.ListOrder, board.ListOrder)

	lists, err := store.ListLists(ctx, board.ID)
	require.NoError(t, err)
	tasks, err := store.ListTasks(ctx, board.ID)
	require.NoError(t, err)
	loaded := kanban.Assemble(board, lists, tasks)
	require.NoError(t, loaded.Check())

	require.Equal(t, "Backlog", loaded.Lists[0].Title)
	require.Len(t, loaded.Lists[0].TaskOrder, 2)
	first := loaded.Tasks[0]
	require.Equal(t, "Press kit", first.Title)
	require.Equal(t, schema.PriorityHigh, first.Priority)
	require.NotNil(t, first.DueDate)
	require.True(t, first.DueDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, []string{"pr"}, first.Labels)
	require.Equal(t, []kanban.Subtask{{Title: "Logo", Done: true}}, first.Subtasks)
	require.Nil(t, loaded.Tasks[1].DueDate)
}

var errBoom = errors.New("boom")

// failingTx hands the materializer a transactional store whose CreateTask
// starts failing after a number of successful calls.
type failingTx struct {
	*repository.Store
	after int
}

func (f *failingTx) Atomically(ctx context.Context, fn func(kanban.Store) error) error {
	return f.Store.Atomically(ctx, func(s kanban.Store) error {
		return fn(&failingStore{Store: s, after: f.after})
	})
}

type failingStore struct {
	kanban.Store
	calls, after int
}

func (f *failingStore) CreateTask(ctx context.Context, t *kanban.Task) error {
	f.calls++
	if f.calls > f.after {
		return errBoom
	}
	return f.Store.CreateTask(ctx, t)
}

func TestMaterializeRollsBackTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, store := openStore(t)

	m := &kanban.Materializer{Store: &failingTx{Store: store, after: 2}}
	_, err := m.Materialize(ctx, spec(), "user-1")
	require.ErrorIs(t, err, errBoom)

	var merr *kanban.MaterializationError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, "create task 0 of list 1", merr.Stage)

	require.Zero(t, countRows(t, db, "boards"))
	require.Zero(t, countRows(t, db, "task_lists"))
	require.Zero(t, countRows(t, db, "tasks"))
}

func TestDeleteBoardCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, store := openStore(t)

	m := &kanban.Materializer{Store: store}
	keep, err := m.Materialize(ctx, spec(), "user-1")
	require.NoError(t, err)
	drop, err := m.Materialize(ctx, spec(), "user-1")
	require.NoError(t, err)

	require.NoError(t, store.DeleteBoard(ctx, drop.Board.ID))
	require.Equal(t, 1, countRows(t, db, "boards"))
	require.Equal(t, 2, countRows(t, db, "task_lists"))
	require.Equal(t, 3, countRows(t, db, "tasks"))

	_, err = store.GetBoard(ctx, drop.Board.ID)
	require.ErrorIs(t, err, kanban.ErrNotFound)
	require.ErrorIs(t, store.DeleteBoard(ctx, drop.Board.ID), kanban.ErrNotFound)

	_, err = store.GetBoard(ctx, keep.Board.ID)
	require.NoError(t, err)
}

func TestUpdateBoardAndListBoards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, store := openStore(t)

	a := kanban.Board{Owner: "ann", Title: "A"}
	require.NoError(t, store.CreateBoard(ctx, &a))
	b := kanban.Board{Owner: "bob", Title: "B"}
	require.NoError(t, store.CreateBoard(ctx, &b))

	title := "Renamed"
	require.NoError(t, store.UpdateBoard(ctx, a.ID, kanban.BoardUpdate{Title: &title}))
	got, err := store.GetBoard(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Title)
	require.Empty(t, got.Description)
	require.Empty(t, got.ListOrder)

	require.ErrorIs(t, store.UpdateBoard(ctx, "missing", kanban.BoardUpdate{Title: &title}), kanban.ErrNotFound)
	require.ErrorIs(t, store.SetListOrder(ctx, "missing", nil), kanban.ErrNotFound)
	_, err = store.GetList(ctx, "missing")
	require.ErrorIs(t, err, kanban.ErrNotFound)

	boards, err := store.ListBoards(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, boards, 1)
	require.Equal(t, a.ID, boards[0].ID)
}
