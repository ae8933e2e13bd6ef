package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jask/kanbanai/internal/database"
	"github.com/jask/kanbanai/internal/kanban"
)

// ListRepo handles task lists.
type ListRepo struct {
	db DBTX
}

func (r *ListRepo) CreateList(ctx context.Context, l *kanban.TaskList) error {
	if l.TaskOrder == nil {
		l.TaskOrder = []string{}
	}
	order, err := encodeJSON(l.TaskOrder)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	now := database.Now()
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO task_lists(id, board_id, title, task_order, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		id, l.BoardID, l.Title, order, now, now)
	if err != nil {
		return err
	}
	l.ID, l.CreatedAt, l.UpdatedAt = id, now, now
	return nil
}

func (r *ListRepo) SetTaskOrder(ctx context.Context, listID string, taskIDs []string) error {
	if taskIDs == nil {
		taskIDs = []string{}
	}
	order, err := encodeJSON(taskIDs)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE task_lists SET task_order = ?, updated_at = ? WHERE id = ?`, order, database.Now(), listID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *ListRepo) GetList(ctx context.Context, id string) (kanban.TaskList, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, board_id, title, task_order, created_at, updated_at
	FROM task_lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err != nil {
		return kanban.TaskList{}, notFound(err)
	}
	return l, nil
}

func (r *ListRepo) ListLists(ctx context.Context, boardID string) ([]kanban.TaskList, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, board_id, title, task_order, created_at, updated_at
	FROM task_lists WHERE board_id = ? ORDER BY created_at, rowid`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []kanban.TaskList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanList(s scanner) (kanban.TaskList, error) {
	var (
		l     kanban.TaskList
		order string
	)
	if err := s.Scan(&l.ID, &l.BoardID, &l.Title, &order, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return kanban.TaskList{}, err
	}
	ids, err := decodeIDs(order)
	if err != nil {
		return kanban.TaskList{}, err
	}
	l.TaskOrder = ids
	return l, nil
}
