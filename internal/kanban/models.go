// Package kanban holds the persisted board model and turns validated board
// specifications into stored boards.
package kanban

import (
	"errors"
	"time"

	"github.com/jask/kanbanai/internal/schema"
)

// ErrNotFound is returned when a board, list or task does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("kanban: not found")

// Board is the top-level container owned by a user.
type Board struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ListOrder   []string  `json:"listOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskList is a named column of a board.
type TaskList struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board"`
	Title     string    `json:"title"`
	TaskOrder []string  `json:"taskOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Task is a card in a list.
type Task struct {
	ID          string          `json:"id"`
	BoardID     string          `json:"board"`
	ListID      string          `json:"list"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Priority    schema.Priority `json:"priority"`
	Labels      []string        `json:"labels"`
	Subtasks    []Subtask       `json:"subtasks"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Subtask is a checklist item of a task.
type Subtask struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// NewTask builds an unsaved task in the given board and list.
func NewTask(boardID, listID string, spec schema.TaskSpec) Task {
	t := Task{
		BoardID:     boardID,
		ListID:      listID,
		Title:       spec.Title,
		Description: spec.Description,
		Priority:    spec.Priority,
		Labels:      append([]string{}, spec.Labels...),
		Subtasks:    make([]Subtask, 0, len(spec.Subtasks)),
	}
	if t.Priority == "" {
		t.Priority = schema.PriorityMedium
	}
	if spec.DueDate != nil {
		d := spec.DueDate.UTC()
		t.DueDate = &d
	}
	for _, s := range spec.Subtasks {
		t.Subtasks = append(t.Subtasks, Subtask{Title: s.Title, Done: s.Done})
	}
	return t
}
