package model

import "time"

// Order groups the tickets bought by one user in a single checkout.  An
// order is only ever visible to its owner.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user.
//  CreatedAt – insertion time, used for stable ordering.
//  Tickets   – tickets of the order in insertion order.
type Order struct {
	ID        uint64    // orders.id
	UserID    uint64    // orders.user_id
	CreatedAt time.Time // orders.created_at
	Tickets   []Ticket  // tickets where order_id = id
}

// Ticket is one booked seat of a session.  (MovieSessionID, Row, Seat) is
// unique across all orders.
//
// Fields:
//  ID             – primary key identifier.
//  OrderID        – order the ticket belongs to.
//  MovieSessionID – booked session.
//  Row            – hall row, 1-based.
//  Seat           – seat within the row, 1-based.
//  MovieSession   – resolved session (with Movie and CinemaHall), nil unless loaded.
type Ticket struct {
	ID             uint64        // tickets.id
	OrderID        uint64        // tickets.order_id
	MovieSessionID uint64        // tickets.movie_session_id
	Row            int           // tickets.row_no
	Seat           int           // tickets.seat_no
	MovieSession   *MovieSession // joined session
}

// TicketSpec is a requested seat at checkout time.
type TicketSpec struct {
	MovieSessionID uint64
	Row            int
	Seat           int
}
