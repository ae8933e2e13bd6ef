package kanban

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/schema"
)

// MaterializationError reports a store failure while creating a board.
// CleanupErr is set when removing the partial board also failed.
type MaterializationError struct {
	Stage      string
	Err        error
	CleanupErr error
}

func (e *MaterializationError) Error() string {
	msg := fmt.Sprintf("materialize: %s: %v", e.Stage, e.Err)
	if e.CleanupErr != nil {
		msg += fmt.Sprintf(" (cleanup failed: %v)", e.CleanupErr)
	}
	return msg
}

func (e *MaterializationError) Unwrap() error { return e.Err }

// Materializer creates boards from validated specs.
//
// When the store is a Transactor all writes share one transaction. Otherwise
// the partially created board is deleted before the error is returned.
type Materializer struct {
	Store Store
	Log   *zap.Logger
}

// Materialize stores spec as a new board owned by owner and returns it with
// its lists and tasks in display order.
func (m *Materializer) Materialize(ctx context.Context, spec schema.BoardSpec, owner string) (Snapshot, error) {
	if tx, ok := m.Store.(Transactor); ok {
		var snap Snapshot
		err := tx.Atomically(ctx, func(s Store) error {
			var err error
			snap, err = build(ctx, s, spec, owner)
			return err
		})
		if err != nil {
			return Snapshot{}, asMaterializationError(err)
		}
		return snap, nil
	}

	snap, err := build(ctx, m.Store, spec, owner)
	if err == nil {
		return snap, nil
	}
	merr := asMaterializationError(err)
	if snap.Board.ID != "" {
		if cerr := m.Store.DeleteBoard(context.WithoutCancel(ctx), snap.Board.ID); cerr != nil {
			merr.CleanupErr = cerr
			m.logger().Error("partial board cleanup failed",
				zap.String("board", snap.Board.ID), zap.Error(cerr))
		}
	}
	return Snapshot{}, merr
}

func (m *Materializer) logger() *zap.Logger {
	if m.Log == nil {
		return zap.NewNop()
	}
	return m.Log
}

// build writes the board, then each list followed by its tasks. On failure the
// returned snapshot holds whatever was created so far.
func build(ctx context.Context, s Store, spec schema.BoardSpec, owner string) (Snapshot, error) {
	board := Board{
		Owner:       owner,
		Title:       spec.BoardTitle,
		Description: spec.BoardDescription,
		ListOrder:   []string{},
	}
	if err := s.CreateBoard(ctx, &board); err != nil {
		return Snapshot{}, stageErr("create board", err)
	}
	snap := Snapshot{Board: board, Lists: []TaskList{}, Tasks: []Task{}}

	for i, ls := range spec.Lists {
		list := TaskList{BoardID: board.ID, Title: ls.Title, TaskOrder: []string{}}
		if err := s.CreateList(ctx, &list); err != nil {
			return snap, stageErr(fmt.Sprintf("create list %d", i), err)
		}
		snap.Board.ListOrder = append(snap.Board.ListOrder, list.ID)

		for j, ts := range ls.Tasks {
			task := NewTask(board.ID, list.ID, ts)
			if err := s.CreateTask(ctx, &task); err != nil {
				return snap, stageErr(fmt.Sprintf("create task %d of list %d", j, i), err)
			}
			list.TaskOrder = append(list.TaskOrder, task.ID)
			snap.Tasks = append(snap.Tasks, task)
		}
		if err := s.SetTaskOrder(ctx, list.ID, list.TaskOrder); err != nil {
			return snap, stageErr(fmt.Sprintf("save task order of list %d", i), err)
		}
		snap.Lists = append(snap.Lists, list)
	}

	if err := s.SetListOrder(ctx, board.ID, snap.Board.ListOrder); err != nil {
		return snap, stageErr("save list order", err)
	}
	return snap, nil
}

func stageErr(stage string, err error) error {
	return &MaterializationError{Stage: stage, Err: err}
}

func asMaterializationError(err error) *MaterializationError {
	var merr *MaterializationError
	if errors.As(err, &merr) {
		return merr
	}
	return &MaterializationError{Stage: "transaction", Err: err}
}
