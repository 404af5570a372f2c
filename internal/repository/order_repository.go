package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/filter"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/validation"
)

// OrderRepo stores orders and their tickets.  Every method is scoped to
// the user passed in; an order owned by someone else behaves exactly like
// an order that does not exist.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo constructs an OrderRepo with the given DB handle.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// ListForUser returns one page of the user's orders, oldest first, with
// tickets and their sessions resolved.
func (r *OrderRepo) ListForUser(ctx context.Context, userID uint64, p filter.Page) ([]model.Order, int, error) {
	total, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM orders WHERE user_id = ?", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	limit, pageArgs := pageClause(p)
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, created_at FROM orders WHERE user_id = ? ORDER BY created_at, id"+limit,
		append([]any{userID}, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, 0, err
		}
		o.CreatedAt = o.CreatedAt.UTC()
		orders = append(orders, o)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, 0, err
	}
	if err := loadOrderTickets(ctx, r.db, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetForUser returns the order only when userID owns it.
func (r *OrderRepo) GetForUser(ctx context.Context, userID, id uint64) (*model.Order, error) {
	var o model.Order
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at FROM orders WHERE id = ? AND user_id = ?", id, userID).
		Scan(&o.ID, &o.UserID, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	o.CreatedAt = o.CreatedAt.UTC()
	list := []model.Order{o}
	if err := loadOrderTickets(ctx, r.db, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Create inserts an order with all requested tickets in one transaction
// and returns the new order id.  Nothing persists unless every ticket is
// valid and free.
func (r *OrderRepo) Create(ctx context.Context, userID uint64, specs []model.TicketSpec, createdAt time.Time) (uint64, error) {
	var orderID uint64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkTickets(ctx, tx, specs); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO orders (user_id, created_at) VALUES (?, ?)", userID, createdAt.UTC())
		if err != nil {
			return translateWriteErr(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		orderID = uint64(id)
		return insertTickets(ctx, tx, orderID, specs)
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// Replace swaps every ticket of an owned order for specs.  The old tickets
// are released first, so the new set may reuse them.
func (r *OrderRepo) Replace(ctx context.Context, userID, id uint64, specs []model.TicketSpec) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var owned uint64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM orders WHERE id = ? AND user_id = ?", id, userID).Scan(&owned)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tickets WHERE order_id = ?", id); err != nil {
			return err
		}
		if err := checkTickets(ctx, tx, specs); err != nil {
			return err
		}
		return insertTickets(ctx, tx, id, specs)
	})
}

// Delete removes an owned order; its tickets go with it.
func (r *OrderRepo) Delete(ctx context.Context, userID, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// checkTickets validates specs against the halls of their sessions and
// the seats already sold.  Field errors use the "tickets[i].field" path.
func checkTickets(ctx context.Context, tx *sql.Tx, specs []model.TicketSpec) error {
	sessionIDs := make([]uint64, 0, len(specs))
	for _, s := range specs {
		sessionIDs = append(sessionIDs, s.MovieSessionID)
	}
	halls, err := hallsForSessions(ctx, tx, uniqueIDs(sessionIDs))
	if err != nil {
		return err
	}

	errs := validation.Errors{}
	seen := make(map[model.TicketSpec]int, len(specs))
	for i, s := range specs {
		prefix := fmt.Sprintf("tickets[%d].", i)
		hall, ok := halls[s.MovieSessionID]
		if !ok {
			errs.Add(prefix+"movie_session", fmt.Sprintf("invalid pk %d: object does not exist", s.MovieSessionID))
			continue
		}
		if s.Row < 1 || s.Row > hall.Rows {
			errs.Add(prefix+"row", fmt.Sprintf("row must be in range [1, %d]", hall.Rows))
		}
		if s.Seat < 1 || s.Seat > hall.SeatsInRow {
			errs.Add(prefix+"seat", fmt.Sprintf("seat must be in range [1, %d]", hall.SeatsInRow))
		}
		if j, dup := seen[s]; dup {
			errs.Add(prefix+"seat", fmt.Sprintf("duplicates tickets[%d]", j))
			continue
		}
		seen[s] = i
	}
	if err := errs.Err(); err != nil {
		return err
	}

	// Early answer for the common case; the unique key still decides races.
	taken, err := firstTakenSeat(ctx, tx, specs)
	if err != nil {
		return err
	}
	if taken != nil {
		return seatTakenErr(*taken)
	}
	return nil
}

func seatTakenErr(s model.TicketSpec) error {
	return fmt.Errorf("session %d row %d seat %d: %w", s.MovieSessionID, s.Row, s.Seat, ErrSeatTaken)
}

func hallsForSessions(ctx context.Context, q dbtx, ids []uint64) (map[uint64]model.CinemaHall, error) {
	out := make(map[uint64]model.CinemaHall, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx,
		"SELECT s.id, c.id, c.name, c.seat_rows, c.seats_in_row FROM movie_sessions s"+
			" JOIN cinema_halls c ON c.id = s.cinema_hall_id WHERE s.id IN ("+placeholders(len(ids))+")",
		idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("halls for sessions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			sessionID uint64
			h         model.CinemaHall
		)
		if err := rows.Scan(&sessionID, &h.ID, &h.Name, &h.Rows, &h.SeatsInRow); err != nil {
			return nil, err
		}
		out[sessionID] = h
	}
	return out, rows.Err()
}

func firstTakenSeat(ctx context.Context, q dbtx, specs []model.TicketSpec) (*model.TicketSpec, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	conds := make([]string, 0, len(specs))
	args := make([]any, 0, 3*len(specs))
	for _, s := range specs {
		conds = append(conds, "(movie_session_id = ? AND row_no = ? AND seat_no = ?)")
		args = append(args, s.MovieSessionID, s.Row, s.Seat)
	}
	var t model.TicketSpec
	err := q.QueryRowContext(ctx,
		"SELECT movie_session_id, row_no, seat_no FROM tickets WHERE "+strings.Join(conds, " OR ")+" LIMIT 1",
		args...).Scan(&t.MovieSessionID, &t.Row, &t.Seat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check taken seats: %w", err)
	}
	return &t, nil
}

func insertTickets(ctx context.Context, tx *sql.Tx, orderID uint64, specs []model.TicketSpec) error {
	for _, s := range specs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO tickets (movie_session_id, order_id, row_no, seat_no) VALUES (?, ?, ?, ?)",
			s.MovieSessionID, orderID, s.Row, s.Seat)
		if isDuplicateKey(err) {
			return seatTakenErr(s)
		}
		if err != nil {
			return translateWriteErr(err)
		}
	}
	return nil
}

// loadOrderTickets attaches tickets to orders, then resolves each
// distinct session with its movie and hall in one joined query.
func loadOrderTickets(ctx context.Context, q dbtx, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(orders))
	ids := make([]uint64, 0, len(orders))
	for i := range orders {
		orders[i].Tickets = []model.Ticket{}
		index[orders[i].ID] = i
		ids = append(ids, orders[i].ID)
	}

	rows, err := q.QueryContext(ctx,
		"SELECT id, order_id, movie_session_id, row_no, seat_no FROM tickets WHERE order_id IN ("+
			placeholders(len(ids))+") ORDER BY id", idArgs(ids)...)
	if err != nil {
		return fmt.Errorf("load tickets: %w", err)
	}
	var sessionIDs []uint64
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.OrderID, &t.MovieSessionID, &t.Row, &t.Seat); err != nil {
			rows.Close()
			return err
		}
		i := index[t.OrderID]
		orders[i].Tickets = append(orders[i].Tickets, t)
		sessionIDs = append(sessionIDs, t.MovieSessionID)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return err
	}

	sessions, err := sessionSummaries(ctx, q, uniqueIDs(sessionIDs))
	if err != nil {
		return err
	}
	for i := range orders {
		for j := range orders[i].Tickets {
			orders[i].Tickets[j].MovieSession = sessions[orders[i].Tickets[j].MovieSessionID]
		}
	}
	return nil
}

func sessionSummaries(ctx context.Context, q dbtx, ids []uint64) (map[uint64]*model.MovieSession, error) {
	out := make(map[uint64]*model.MovieSession, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx,
		`SELECT s.id, s.show_time, m.id, m.title, m.description, m.duration, c.id, c.name, c.seat_rows, c.seats_in_row
FROM movie_sessions s
JOIN movies m ON m.id = s.movie_id
JOIN cinema_halls c ON c.id = s.cinema_hall_id
WHERE s.id IN (`+placeholders(len(ids))+")", idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load ticket sessions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			s model.MovieSession
			m model.Movie
			h model.CinemaHall
		)
		if err := rows.Scan(&s.ID, &s.ShowTime, &m.ID, &m.Title, &m.Description, &m.Duration,
			&h.ID, &h.Name, &h.Rows, &h.SeatsInRow); err != nil {
			return nil, err
		}
		s.ShowTime = s.ShowTime.UTC()
		s.MovieID, s.CinemaHallID = m.ID, h.ID
		s.Movie, s.CinemaHall = &m, &h
		out[s.ID] = &s
	}
	return out, rows.Err()
}
