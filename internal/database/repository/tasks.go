package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/kanbanai/internal/database"
	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/schema"
)

// TaskRepo handles tasks.
type TaskRepo struct {
	db DBTX
}

func (r *TaskRepo) CreateTask(ctx context.Context, t *kanban.Task) error {
	if t.Labels == nil {
		t.Labels = []string{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []kanban.Subtask{}
	}
	if t.Priority == "" {
		t.Priority = schema.PriorityMedium
	}
	labels, err := encodeJSON(t.Labels)
	if err != nil {
		return err
	}
	subtasks, err := encodeJSON(t.Subtasks)
	if err != nil {
		return err
	}
	var due sql.NullTime
	if t.DueDate != nil {
		due = sql.NullTime{Time: t.DueDate.UTC(), Valid: true}
	}
	id := uuid.NewString()
	now := database.Now()
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO tasks(
	 id, board_id, list_id, title, description, due_date, priority, labels, subtasks, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, t.BoardID, t.ListID, t.Title, t.Description, due, string(t.Priority), labels, subtasks, now, now)
	if err != nil {
		return err
	}
	t.ID, t.CreatedAt, t.UpdatedAt = id, now, now
	return nil
}

func (r *TaskRepo) ListTasks(ctx context.Context, boardID string) ([]kanban.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, board_id, list_id, title, description, due_date, priority, labels, subtasks, created_at, updated_at
	FROM tasks WHERE board_id = ? ORDER BY created_at, rowid`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []kanban.Task
	for rows.Next() {
		var (
			t                kanban.Task
			due              sql.NullTime
			priority         string
			labels, subtasks string
		)
		if err := rows.Scan(&t.ID, &t.BoardID, &t.ListID, &t.Title, &t.Description, &due, &priority,
			&labels, &subtasks, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			d := due.Time.UTC()
			t.DueDate = &d
		}
		t.Priority = schema.ParsePriority(priority)
		if err := json.Unmarshal([]byte(labels), &t.Labels); err != nil {
			return nil, fmt.Errorf("task %s labels: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(subtasks), &t.Subtasks); err != nil {
			return nil, fmt.Errorf("task %s subtasks: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
