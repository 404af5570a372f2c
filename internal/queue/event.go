// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// OrderCreatedEvent is published once an order and all of its tickets are
// committed.  It carries enough for downstream consumers to log or notify
// without querying the primary database.
type OrderCreatedEvent struct {
	OrderID   uint64        `json:"order_id"`
	UserID    uint64        `json:"user_id"`
	CreatedAt string        `json:"created_at"`
	Tickets   []TicketEntry `json:"tickets"`
}

// TicketEntry is one booked seat of an OrderCreatedEvent.
type TicketEntry struct {
	MovieSessionID uint64 `json:"movie_session_id"`
	MovieTitle     string `json:"movie_title"`
	CinemaHall     string `json:"cinema_hall"`
	ShowTime       string `json:"show_time"`
	Row            int    `json:"row"`
	Seat           int    `json:"seat"`
}
