package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jask/kanbanai/internal/database"
	"github.com/jask/kanbanai/internal/kanban"
)

// BoardRepo handles boards.
type BoardRepo struct {
	db DBTX
}

func (r *BoardRepo) CreateBoard(ctx context.Context, b *kanban.Board) error {
	if b.ListOrder == nil {
		b.ListOrder = []string{}
	}
	order, err := encodeJSON(b.ListOrder)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	now := database.Now()
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO boards(id, owner, title, description, list_order, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, b.Owner, b.Title, b.Description, order, now, now)
	if err != nil {
		return err
	}
	b.ID, b.CreatedAt, b.UpdatedAt = id, now, now
	return nil
}

func (r *BoardRepo) SetListOrder(ctx context.Context, boardID string, listIDs []string) error {
	if listIDs == nil {
		listIDs = []string{}
	}
	order, err := encodeJSON(listIDs)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE boards SET list_order = ?, updated_at = ? WHERE id = ?`, order, database.Now(), boardID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *BoardRepo) UpdateBoard(ctx context.Context, id string, u kanban.BoardUpdate) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE boards SET
	 title = COALESCE(?, title),
	 description = COALESCE(?, description),
	 updated_at = ?
	WHERE id = ?`, u.Title, u.Description, database.Now(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *BoardRepo) GetBoard(ctx context.Context, id string) (kanban.Board, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, owner, title, description, list_order, created_at, updated_at
	FROM boards WHERE id = ?`, id)
	b, err := scanBoard(row)
	if err != nil {
		return kanban.Board{}, notFound(err)
	}
	return b, nil
}

func (r *BoardRepo) ListBoards(ctx context.Context, owner string) ([]kanban.Board, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, owner, title, description, list_order, created_at, updated_at
	FROM boards WHERE owner = ? ORDER BY created_at, rowid`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []kanban.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BoardRepo) DeleteBoard(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(s scanner) (kanban.Board, error) {
	var (
		b     kanban.Board
		order string
	)
	if err := s.Scan(&b.ID, &b.Owner, &b.Title, &b.Description, &order, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return kanban.Board{}, err
	}
	ids, err := decodeIDs(order)
	if err != nil {
		return kanban.Board{}, err
	}
	b.ListOrder = ids
	return b, nil
}
