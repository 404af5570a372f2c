package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/filter"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// ActorRepo provides CRUD over the actors table.
type ActorRepo struct {
	db *sql.DB
}

func NewActorRepo(db *sql.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

// List returns one page of actors ordered by id and the total count.
func (r *ActorRepo) List(ctx context.Context, p filter.Page) ([]model.Actor, int, error) {
	total, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM actors")
	if err != nil {
		return nil, 0, fmt.Errorf("count actors: %w", err)
	}
	limit, args := pageClause(p)
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, first_name, last_name FROM actors ORDER BY id"+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	out := make([]model.Actor, 0)
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (*model.Actor, error) {
	var a model.Actor
	err := r.db.QueryRowContext(ctx,
		"SELECT id, first_name, last_name FROM actors WHERE id = ?", id).
		Scan(&a.ID, &a.FirstName, &a.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get actor %d: %w", id, err)
	}
	return &a, nil
}

func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO actors (first_name, last_name) VALUES (?, ?)", a.FirstName, a.LastName)
	if err != nil {
		return translateWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (r *ActorRepo) Update(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE actors SET first_name = ?, last_name = ? WHERE id = ?", a.FirstName, a.LastName, a.ID)
	if err != nil {
		return translateWriteErr(err)
	}
	return checkAffected(res)
}

func (r *ActorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM actors WHERE id = ?", id)
	if err != nil {
		return translateWriteErr(err)
	}
	return checkAffected(res)
}
