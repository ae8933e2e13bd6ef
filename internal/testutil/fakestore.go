package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jask/kanbanai/internal/kanban"
)

// FakeStore is an in-memory kanban.Store without transactions.
type FakeStore struct {
	mu     sync.Mutex
	seq    int
	boards map[string]kanban.Board
	lists  map[string]kanban.TaskList
	tasks  map[string]kanban.Task
	calls  map[string]int

	// Error injection. The FailXAt fields make the nth call (1-based) fail.
	CreateBoardErr   error
	FailCreateListAt int
	FailCreateTaskAt int
	SetTaskOrderErr  error
	SetListOrderErr  error
	DeleteBoardErr   error
}

// ErrInjected is returned by the FailXAt hooks.
var ErrInjected = errors.New("testutil: injected failure")

// NewFakeStore returns an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		boards: make(map[string]kanban.Board),
		lists:  make(map[string]kanban.TaskList),
		tasks:  make(map[string]kanban.Task),
		calls:  make(map[string]int),
	}
}

// Counts returns the number of stored boards, lists and tasks.
func (f *FakeStore) Counts() (boards, lists, tasks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.boards), len(f.lists), len(f.tasks)
}

// Calls returns how many times method was called.
func (f *FakeStore) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeStore) nextID(kind string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", kind, f.seq)
}

func (f *FakeStore) stamp() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Second)
}

func (f *FakeStore) CreateBoard(_ context.Context, b *kanban.Board) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateBoard"]++
	if f.CreateBoardErr != nil {
		return f.CreateBoardErr
	}
	b.ID = f.nextID("board")
	b.CreatedAt, b.UpdatedAt = f.stamp(), f.stamp()
	b.ListOrder = append([]string{}, b.ListOrder...)
	f.boards[b.ID] = *b
	return nil
}

func (f *FakeStore) CreateList(_ context.Context, l *kanban.TaskList) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateList"]++
	if f.FailCreateListAt > 0 && f.calls["CreateList"] == f.FailCreateListAt {
		return ErrInjected
	}
	if _, ok := f.boards[l.BoardID]; !ok {
		return kanban.ErrNotFound
	}
	l.ID = f.nextID("list")
	l.CreatedAt, l.UpdatedAt = f.stamp(), f.stamp()
	l.TaskOrder = append([]string{}, l.TaskOrder...)
	f.lists[l.ID] = *l
	return nil
}

func (f *FakeStore) CreateTask(_ context.Context, t *kanban.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateTask"]++
	if f.FailCreateTaskAt > 0 && f.calls["CreateTask"] == f.FailCreateTaskAt {
		return ErrInjected
	}
	if _, ok := f.lists[t.ListID]; !ok {
		return kanban.ErrNotFound
	}
	t.ID = f.nextID("task")
	t.CreatedAt, t.UpdatedAt = f.stamp(), f.stamp()
	f.tasks[t.ID] = *t
	return nil
}

func (f *FakeStore) SetListOrder(_ context.Context, boardID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SetListOrder"]++
	if f.SetListOrderErr != nil {
		return f.SetListOrderErr
	}
	b, ok := f.boards[boardID]
	if !ok {
		return kanban.ErrNotFound
	}
	b.ListOrder = append([]string{}, ids...)
	f.boards[boardID] = b
	return nil
}

func (f *FakeStore) SetTaskOrder(_ context.Context, listID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SetTaskOrder"]++
	if f.SetTaskOrderErr != nil {
		return f.SetTaskOrderErr
	}
	l, ok := f.lists[listID]
	if !ok {
		return kanban.ErrNotFound
	}
	l.TaskOrder = append([]string{}, ids...)
	f.lists[listID] = l
	return nil
}

func (f *FakeStore) UpdateBoard(_ context.Context, id string, u kanban.BoardUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return kanban.ErrNotFound
	}
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	f.boards[id] = b
	return nil
}

func (f *FakeStore) GetBoard(_ context.Context, id string) (kanban.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return kanban.Board{}, kanban.ErrNotFound
	}
	b.ListOrder = append([]string{}, b.ListOrder...)
	return b, nil
}

func (f *FakeStore) ListBoards(_ context.Context, owner string) ([]kanban.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []kanban.Board
	for _, b := range f.boards {
		if b.Owner == owner {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeStore) GetList(_ context.Context, id string) (kanban.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lists[id]
	if !ok {
		return kanban.TaskList{}, kanban.ErrNotFound
	}
	l.TaskOrder = append([]string{}, l.TaskOrder...)
	return l, nil
}

func (f *FakeStore) ListLists(_ context.Context, boardID string) ([]kanban.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []kanban.TaskList
	for _, l := range f.lists {
		if l.BoardID == boardID {
			l.TaskOrder = append([]string{}, l.TaskOrder...)
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeStore) ListTasks(_ context.Context, boardID string) ([]kanban.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []kanban.Task
	for _, t := range f.tasks {
		if t.BoardID == boardID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeStore) DeleteBoard(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteBoard"]++
	if f.DeleteBoardErr != nil {
		return f.DeleteBoardErr
	}
	if _, ok := f.boards[id]; !ok {
		return kanban.ErrNotFound
	}
	for tid, t := range f.tasks {
		if t.BoardID == id {
			delete(f.tasks, tid)
		}
	}
	for lid, l := range f.lists {
		if l.BoardID == id {
			delete(f.lists, lid)
		}
	}
	delete(f.boards, id)
	return nil
}
