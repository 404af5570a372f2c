package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/filter"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// HallRepo provides CRUD over cinema_halls.  Deleting a hall that still
// has sessions fails with ErrConflict.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

const hallColumns = "id, name, seat_rows, seats_in_row"

func scanHall(row interface{ Scan(...any) error }, h *model.CinemaHall) error {
	return row.Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow)
}

// List returns one page of halls ordered by id and the total count.
func (r *HallRepo) List(ctx context.Context, p filter.Page) ([]model.CinemaHall, int, error) {
	total, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM cinema_halls")
	if err != nil {
		return nil, 0, fmt.Errorf("count halls: %w", err)
	}
	limit, args := pageClause(p)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+hallColumns+" FROM cinema_halls ORDER BY id"+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list halls: %w", err)
	}
	defer rows.Close()

	out := make([]model.CinemaHall, 0)
	for rows.Next() {
		var h model.CinemaHall
		if err := scanHall(rows, &h); err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID returns ErrNotFound when no hall has the id.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.CinemaHall, error) {
	var h model.CinemaHall
	err := scanHall(r.db.QueryRowContext(ctx,
		"SELECT "+hallColumns+" FROM cinema_halls WHERE id = ?", id), &h)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get hall %d: %w", id, err)
	}
	return &h, nil
}

// Create inserts h and sets its ID.
func (r *HallRepo) Create(ctx context.Context, h *model.CinemaHall) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cinema_halls (name, seat_rows, seats_in_row) VALUES (?, ?, ?)",
		h.Name, h.Rows, h.SeatsInRow)
	if err != nil {
		return translateWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// Update overwrites name and layout.  Shrinking a hall below sold seats is
// allowed; availability then goes negative and is reported as such.
func (r *HallRepo) Update(ctx context.Context, h *model.CinemaHall) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cinema_halls SET name = ?, seat_rows = ?, seats_in_row = ? WHERE id = ?",
		h.Name, h.Rows, h.SeatsInRow, h.ID)
	if err != nil {
		return translateWriteErr(err)
	}
	return checkAffected(res)
}

// Delete removes a hall without sessions.
func (r *HallRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cinema_halls WHERE id = ?", id)
	if err != nil {
		return translateWriteErr(err)
	}
	return checkAffected(res)
}
