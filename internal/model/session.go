package model

import "time"

// MovieSession is a scheduled screening of a movie in a hall.
//
// Fields:
//  ID           – primary key identifier.
//  ShowTime     – start of the screening (UTC).
//  MovieID      – screened movie.
//  CinemaHallID – hall where the screening takes place.
//  Movie        – resolved movie, nil unless loaded.
//  CinemaHall   – resolved hall, nil unless loaded.
type MovieSession struct {
	ID           uint64      // movie_sessions.id
	ShowTime     time.Time   // movie_sessions.show_time
	MovieID      uint64      // movie_sessions.movie_id
	CinemaHallID uint64      // movie_sessions.cinema_hall_id
	Movie        *Movie      // joined movies row
	CinemaHall   *CinemaHall // joined cinema_halls row
}

// SessionAvailability is one row of the session list: the session with its
// movie title, hall summary and the seats still free.  TicketsAvailable is
// computed by the store on every read and is reported as-is, so a negative
// value surfaces a session that sold more tickets than its hall holds.
type SessionAvailability struct {
	ID               uint64
	ShowTime         time.Time
	MovieID          uint64
	MovieTitle       string
	CinemaHallID     uint64
	CinemaHallName   string
	Capacity         int
	TicketsAvailable int
}

// Place is an occupied (row, seat) pair of a session.
type Place struct {
	Row  int
	Seat int
}
