package model

// CinemaHall represents a screening room.  Its seating is a plain grid of
// Rows × SeatsInRow seats numbered from 1 in both directions.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name of the hall.
//  Rows       – number of seating rows (> 0).
//  SeatsInRow – number of seats in every row (> 0).
type CinemaHall struct {
	ID         uint64 // cinema_halls.id
	Name       string // cinema_halls.name
	Rows       int    // cinema_halls.seat_rows
	SeatsInRow int    // cinema_halls.seats_in_row
}

// Capacity returns the total number of seats in the hall.
func (h CinemaHall) Capacity() int {
	return h.Rows * h.SeatsInRow
}

// Contains reports whether (row, seat) addresses a physical seat of the hall.
func (h CinemaHall) Contains(row, seat int) bool {
	return row >= 1 && row <= h.Rows && seat >= 1 && seat <= h.SeatsInRow
}
