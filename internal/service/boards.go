package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/schema"
)

// BoardService manages stored boards on behalf of an owner. Boards of other
// owners behave as if they did not exist.
type BoardService struct {
	Store kanban.Store
	Log   *zap.Logger
}

// BoardPatch lists the board fields to change. Nil fields are left alone.
type BoardPatch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	ListOrder   []string `json:"listOrder,omitempty"`
}

func (s *BoardService) List(ctx context.Context, owner string) ([]kanban.Board, error) {
	boards, err := s.Store.ListBoards(ctx, owner)
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []kanban.Board{}
	}
	return boards, nil
}

// Get returns the board with its lists and tasks in display order.
func (s *BoardService) Get(ctx context.Context, owner, id string) (kanban.Snapshot, error) {
	return s.load(ctx, s.Store, owner, id)
}

// Create stores an empty board.
func (s *BoardService) Create(ctx context.Context, owner, title, description string) (kanban.Board, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return kanban.Board{}, fmt.Errorf("%w: board title is required", ErrInvalidInput)
	}
	b := kanban.Board{
		Owner:       owner,
		Title:       title,
		Description: strings.TrimSpace(description),
		ListOrder:   []string{},
	}
	if err := s.Store.CreateBoard(ctx, &b); err != nil {
		return kanban.Board{}, fmt.Errorf("create board: %w", err)
	}
	return b, nil
}

// Update applies p. A new list order must be a permutation of the board's
// current lists.
func (s *BoardService) Update(ctx context.Context, owner, id string, p BoardPatch) (kanban.Board, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return kanban.Board{}, fmt.Errorf("%w: board title cannot be empty", ErrInvalidInput)
	}
	var out kanban.Board
	err := s.atomically(ctx, func(st kanban.Store) error {
		b, err := s.owned(ctx, st, owner, id)
		if err != nil {
			return err
		}
		if p.ListOrder != nil {
			lists, err := st.ListLists(ctx, id)
			if err != nil {
				return err
			}
			if err := checkPermutation(p.ListOrder, lists); err != nil {
				return err
			}
			if err := st.SetListOrder(ctx, id, p.ListOrder); err != nil {
				return err
			}
		}
		if p.Title != nil || p.Description != nil {
			u := kanban.BoardUpdate{Description: p.Description}
			if p.Title != nil {
				t := strings.TrimSpace(*p.Title)
				u.Title = &t
			}
			if err := st.UpdateBoard(ctx, b.ID, u); err != nil {
				return err
			}
		}
		out, err = st.GetBoard(ctx, id)
		return err
	})
	return out, err
}

// Delete removes the board with its lists and tasks.
func (s *BoardService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.owned(ctx, s.Store, owner, id); err != nil {
		return err
	}
	if err := s.Store.DeleteBoard(ctx, id); err != nil {
		return err
	}
	s.logger().Info("board deleted", zap.String("board", id), zap.String("owner", owner))
	return nil
}

// AddList appends an empty list to the board.
func (s *BoardService) AddList(ctx context.Context, owner, boardID, title string) (kanban.TaskList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return kanban.TaskList{}, fmt.Errorf("%w: list title is required", ErrInvalidInput)
	}
	var out kanban.TaskList
	err := s.atomically(ctx, func(st kanban.Store) error {
		b, err := s.owned(ctx, st, owner, boardID)
		if err != nil {
			return err
		}
		l := kanban.TaskList{BoardID: b.ID, Title: title, TaskOrder: []string{}}
		if err := st.CreateList(ctx, &l); err != nil {
			return err
		}
		if err := st.SetListOrder(ctx, b.ID, append(b.ListOrder, l.ID)); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

// AddTask appends a task built from spec to the end of a list.
func (s *BoardService) AddTask(ctx context.Context, owner, listID string, spec schema.TaskSpec) (kanban.Task, error) {
	if strings.TrimSpace(spec.Title) == "" {
		return kanban.Task{}, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}
	var out kanban.Task
	err := s.atomically(ctx, func(st kanban.Store) error {
		l, err := st.GetList(ctx, listID)
		if err != nil {
			return err
		}
		if _, err := s.owned(ctx, st, owner, l.BoardID); err != nil {
			return err
		}
		t := kanban.NewTask(l.BoardID, l.ID, spec)
		if err := st.CreateTask(ctx, &t); err != nil {
			return err
		}
		if err := st.SetTaskOrder(ctx, l.ID, append(l.TaskOrder, t.ID)); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Stats summarizes the board's tasks.
func (s *BoardService) Stats(ctx context.Context, owner, id string) (kanban.Stats, error) {
	snap, err := s.load(ctx, s.Store, owner, id)
	if err != nil {
		return kanban.Stats{}, err
	}
	return snap.Stats(), nil
}

func (s *BoardService) owned(ctx context.Context, st kanban.Store, owner, id string) (kanban.Board, error) {
	b, err := st.GetBoard(ctx, id)
	if err != nil {
		return kanban.Board{}, err
	}
	if b.Owner != owner {
		return kanban.Board{}, kanban.ErrNotFound
	}
	return b, nil
}

func (s *BoardService) load(ctx context.Context, st kanban.Store, owner, id string) (kanban.Snapshot, error) {
	b, err := s.owned(ctx, st, owner, id)
	if err != nil {
		return kanban.Snapshot{}, err
	}
	lists, err := st.ListLists(ctx, id)
	if err != nil {
		return kanban.Snapshot{}, fmt.Errorf("load lists: %w", err)
	}
	tasks, err := st.ListTasks(ctx, id)
	if err != nil {
		return kanban.Snapshot{}, fmt.Errorf("load tasks: %w", err)
	}
	return kanban.Assemble(b, lists, tasks), nil
}

func (s *BoardService) atomically(ctx context.Context, fn func(kanban.Store) error) error {
	if tx, ok := s.Store.(kanban.Transactor); ok {
		return tx.Atomically(ctx, fn)
	}
	return fn(s.Store)
}

func (s *BoardService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func checkPermutation(order []string, lists []kanban.TaskList) error {
	if len(order) != len(lists) {
		return fmt.Errorf("%w: listOrder has %d ids, board has %d lists", ErrInvalidInput, len(order), len(lists))
	}
	remaining := make(map[string]bool, len(lists))
	for _, l := range lists {
		remaining[l.ID] = true
	}
	for _, id := range order {
		if !remaining[id] {
			return fmt.Errorf("%w: listOrder id %q is unknown or repeated", ErrInvalidInput, id)
		}
		delete(remaining, id)
	}
	return nil
}
