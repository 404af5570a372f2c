package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/filter"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/validation"
)

// SessionRepo manages movie_sessions and answers availability queries.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// availabilitySelect yields one row per session.  The sold count is a
// scalar sub-select rather than a grouped join, so filters can never fan a
// session out into several rows.
const availabilitySelect = `SELECT s.id, s.show_time, s.movie_id, m.title, s.cinema_hall_id, c.name,
	c.seat_rows * c.seats_in_row,
	c.seat_rows * c.seats_in_row - (SELECT COUNT(*) FROM tickets t WHERE t.movie_session_id = s.id)
FROM movie_sessions s
JOIN movies m ON m.id = s.movie_id
JOIN cinema_halls c ON c.id = s.cinema_hall_id`

func sessionWhere(f filter.SessionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Date != nil {
		start, end := f.DayRange()
		conds = append(conds, "s.show_time >= ? AND s.show_time < ?")
		args = append(args, start, end)
	}
	if len(f.MovieIDs) > 0 {
		conds = append(conds, "s.movie_id IN ("+placeholders(len(f.MovieIDs))+")")
		args = append(args, idArgs(f.MovieIDs)...)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListAvailability returns sessions matching f with their remaining seats,
// computed fresh on every call.  A session that sold more tickets than its
// hall holds is reported with a negative count.
func (r *SessionRepo) ListAvailability(ctx context.Context, f filter.SessionFilter, p filter.Page) ([]model.SessionAvailability, int, error) {
	where, args := sessionWhere(f)
	total, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM movie_sessions s"+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	limit, pageArgs := pageClause(p)
	rows, err := r.db.QueryContext(ctx, availabilitySelect+where+" ORDER BY s.id"+limit,
		append(args, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := make([]model.SessionAvailability, 0)
	for rows.Next() {
		var a model.SessionAvailability
		if err := rows.Scan(&a.ID, &a.ShowTime, &a.MovieID, &a.MovieTitle, &a.CinemaHallID,
			&a.CinemaHallName, &a.Capacity, &a.TicketsAvailable); err != nil {
			return nil, 0, err
		}
		a.ShowTime = a.ShowTime.UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID returns the session with its movie (genres and actors included)
// and hall resolved.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.MovieSession, error) {
	var s model.MovieSession
	err := r.db.QueryRowContext(ctx,
		"SELECT id, show_time, movie_id, cinema_hall_id FROM movie_sessions WHERE id = ?", id).
		Scan(&s.ID, &s.ShowTime, &s.MovieID, &s.CinemaHallID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	s.ShowTime = s.ShowTime.UTC()

	movie, err := getMovie(ctx, r.db, s.MovieID)
	if err != nil {
		return nil, err
	}
	s.Movie = movie

	var h model.CinemaHall
	if err := scanHall(r.db.QueryRowContext(ctx,
		"SELECT "+hallColumns+" FROM cinema_halls WHERE id = ?", s.CinemaHallID), &h); err != nil {
		return nil, fmt.Errorf("get hall of session %d: %w", id, err)
	}
	s.CinemaHall = &h
	return &s, nil
}

// TakenPlaces lists the booked seats of a session ordered by row then seat.
func (r *SessionRepo) TakenPlaces(ctx context.Context, sessionID uint64) ([]model.Place, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT row_no, seat_no FROM tickets WHERE movie_session_id = ? ORDER BY row_no, seat_no", sessionID)
	if err != nil {
		return nil, fmt.Errorf("taken places of session %d: %w", sessionID, err)
	}
	defer rows.Close()

	out := make([]model.Place, 0)
	for rows.Next() {
		var p model.Place
		if err := rows.Scan(&p.Row, &p.Seat); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts s after checking that its movie and hall exist.
func (r *SessionRepo) Create(ctx context.Context, s *model.MovieSession) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkSessionRefs(ctx, tx, s); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO movie_sessions (show_time, movie_id, cinema_hall_id) VALUES (?, ?, ?)",
			s.ShowTime.UTC(), s.MovieID, s.CinemaHallID)
		if err != nil {
			return translateWriteErr(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = uint64(id)
		return nil
	})
}

// Update overwrites show time, movie and hall.
func (r *SessionRepo) Update(ctx context.Context, s *model.MovieSession) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkSessionRefs(ctx, tx, s); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE movie_sessions SET show_time = ?, movie_id = ?, cinema_hall_id = ? WHERE id = ?",
			s.ShowTime.UTC(), s.MovieID, s.CinemaHallID, s.ID)
		if err != nil {
			return translateWriteErr(err)
		}
		return checkAffected(res)
	})
}

// Delete removes a session without tickets; one with tickets yields
// ErrConflict.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movie_sessions WHERE id = ?", id)
	if err != nil {
		return translateWriteErr(err)
	}
	return checkAffected(res)
}

func checkSessionRefs(ctx context.Context, tx *sql.Tx, s *model.MovieSession) error {
	errs := validation.Errors{}
	movies, err := existingIDs(ctx, tx, "movies", []uint64{s.MovieID})
	if err != nil {
		return err
	}
	if !movies[s.MovieID] {
		errs.Add("movie", fmt.Sprintf("invalid pk %d: object does not exist", s.MovieID))
	}
	halls, err := existingIDs(ctx, tx, "cinema_halls", []uint64{s.CinemaHallID})
	if err != nil {
		return err
	}
	if !halls[s.CinemaHallID] {
		errs.Add("cinema_hall", fmt.Sprintf("invalid pk %d: object does not exist", s.CinemaHallID))
	}
	return errs.Err()
}
