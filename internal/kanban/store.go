package kanban

import "context"

// Store persists boards, lists and tasks. Create methods assign the ID and
// timestamps on the value passed in.
type Store interface {
	CreateBoard(ctx context.Context, b *Board) error
	CreateList(ctx context.Context, l *TaskList) error
	CreateTask(ctx context.Context, t *Task) error

	SetListOrder(ctx context.Context, boardID string, listIDs []string) error
	SetTaskOrder(ctx context.Context, listID string, taskIDs []string) error
	UpdateBoard(ctx context.Context, id string, u BoardUpdate) error

	GetBoard(ctx context.Context, id string) (Board, error)
	ListBoards(ctx context.Context, owner string) ([]Board, error)
	GetList(ctx context.Context, id string) (TaskList, error)
	ListLists(ctx context.Context, boardID string) ([]TaskList, error)
	ListTasks(ctx context.Context, boardID string) ([]Task, error)

	// DeleteBoard removes the board together with its lists and tasks.
	DeleteBoard(ctx context.Context, id string) error
}

// BoardUpdate carries the optional board fields to change.
type BoardUpdate struct {
	Title       *string
	Description *string
}

// Transactor is implemented by stores that can run a group of writes atomically.
type Transactor interface {
	Atomically(ctx context.Context, fn func(Store) error) error
}
