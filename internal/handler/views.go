package handler

import (
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// View selects the output shape of a resource.  Write shapes reference
// related rows by id so a client can resubmit what it received.
type View int

const (
	ViewList View = iota
	ViewDetail
	ViewWrite
)

type genreView struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func newGenreView(g model.Genre) genreView { return genreView{ID: g.ID, Name: g.Name} }

type actorView struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

func newActorView(a model.Actor) actorView {
	return actorView{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, FullName: a.FullName()}
}

type hallView struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	SeatsInRow int    `json:"seats_in_row"`
	Capacity   int    `json:"capacity"`
}

func newHallView(h model.CinemaHall) hallView {
	return hallView{ID: h.ID, Name: h.Name, Rows: h.Rows, SeatsInRow: h.SeatsInRow, Capacity: h.Capacity()}
}

// movie shapes

type movieListView struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
}

type movieDetailView struct {
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    int         `json:"duration"`
	Genres      []genreView `json:"genres"`
	Actors      []actorView `json:"actors"`
}

type movieWriteView struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"`
	Genres      []uint64 `json:"genres"`
	Actors      []uint64 `json:"actors"`
}

func newMovieListView(m model.Movie) movieListView {
	v := movieListView{
		ID: m.ID, Title: m.Title, Description: m.Description, Duration: m.Duration,
		Genres: make([]string, 0, len(m.Genres)),
		Actors: make([]string, 0, len(m.Actors)),
	}
	for _, g := range m.Genres {
		v.Genres = append(v.Genres, g.Name)
	}
	for _, a := range m.Actors {
		v.Actors = append(v.Actors, a.FullName())
	}
	return v
}

func movieView(m model.Movie, v View) interface{} {
	switch v {
	case ViewDetail:
		out := movieDetailView{
			ID: m.ID, Title: m.Title, Description: m.Description, Duration: m.Duration,
			Genres: make([]genreView, 0, len(m.Genres)),
			Actors: make([]actorView, 0, len(m.Actors)),
		}
		for _, g := range m.Genres {
			out.Genres = append(out.Genres, newGenreView(g))
		}
		for _, a := range m.Actors {
			out.Actors = append(out.Actors, newActorView(a))
		}
		return out
	case ViewWrite:
		return movieWriteView{
			ID: m.ID, Title: m.Title, Description: m.Description, Duration: m.Duration,
			Genres: m.GenreIDs(), Actors: m.ActorIDs(),
		}
	default:
		return newMovieListView(m)
	}
}

func movieViews(list []model.Movie, v View) []interface{} {
	out := make([]interface{}, 0, len(list))
	for _, m := range list {
		out = append(out, movieView(m, v))
	}
	return out
}

// session shapes

type sessionListView struct {
	ID                 uint64    `json:"id"`
	ShowTime           time.Time `json:"show_time"`
	MovieTitle         string    `json:"movie_title"`
	CinemaHallName     string    `json:"cinema_hall_name"`
	CinemaHallCapacity int       `json:"cinema_hall_capacity"`
	TicketsAvailable   int       `json:"tickets_available"`
}

type placeView struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

type sessionDetailView struct {
	ID          uint64        `json:"id"`
	ShowTime    time.Time     `json:"show_time"`
	Movie       movieListView `json:"movie"`
	CinemaHall  hallView      `json:"cinema_hall"`
	TakenPlaces []placeView   `json:"taken_places"`
}

type sessionWriteView struct {
	ID         uint64    `json:"id"`
	ShowTime   time.Time `json:"show_time"`
	Movie      uint64    `json:"movie"`
	CinemaHall uint64    `json:"cinema_hall"`
}

// sessionSummaryView describes the session of a ticket.
type sessionSummaryView struct {
	ID                 uint64    `json:"id"`
	ShowTime           time.Time `json:"show_time"`
	MovieTitle         string    `json:"movie_title"`
	CinemaHallName     string    `json:"cinema_hall_name"`
	CinemaHallCapacity int       `json:"cinema_hall_capacity"`
}

func availabilityViews(list []model.SessionAvailability) []sessionListView {
	out := make([]sessionListView, 0, len(list))
	for _, a := range list {
		out = append(out, sessionListView{
			ID:                 a.ID,
			ShowTime:           a.ShowTime,
			MovieTitle:         a.MovieTitle,
			CinemaHallName:     a.CinemaHallName,
			CinemaHallCapacity: a.Capacity,
			TicketsAvailable:   a.TicketsAvailable,
		})
	}
	return out
}

// sessionView renders a single session.  places is only used by the
// detail shape and requires Movie and CinemaHall to be loaded.
func sessionView(s *model.MovieSession, places []model.Place, v View) interface{} {
	if v != ViewDetail || s.Movie == nil || s.CinemaHall == nil {
		return sessionWriteView{ID: s.ID, ShowTime: s.ShowTime, Movie: s.MovieID, CinemaHall: s.CinemaHallID}
	}
	out := sessionDetailView{
		ID:          s.ID,
		ShowTime:    s.ShowTime,
		Movie:       newMovieListView(*s.Movie),
		CinemaHall:  newHallView(*s.CinemaHall),
		TakenPlaces: make([]placeView, 0, len(places)),
	}
	for _, p := range places {
		out.TakenPlaces = append(out.TakenPlaces, placeView{Row: p.Row, Seat: p.Seat})
	}
	return out
}

// order shapes

type ticketView struct {
	ID           uint64             `json:"id"`
	Row          int                `json:"row"`
	Seat         int                `json:"seat"`
	MovieSession sessionSummaryView `json:"movie_session"`
}

type orderView struct {
	ID        uint64       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Tickets   []ticketView `json:"tickets"`
}

func newOrderView(o model.Order) orderView {
	out := orderView{ID: o.ID, CreatedAt: o.CreatedAt, Tickets: make([]ticketView, 0, len(o.Tickets))}
	for _, t := range o.Tickets {
		tv := ticketView{ID: t.ID, Row: t.Row, Seat: t.Seat, MovieSession: sessionSummaryView{ID: t.MovieSessionID}}
		if s := t.MovieSession; s != nil {
			tv.MovieSession.ShowTime = s.ShowTime
			if s.Movie != nil {
				tv.MovieSession.MovieTitle = s.Movie.Title
			}
			if s.CinemaHall != nil {
				tv.MovieSession.CinemaHallName = s.CinemaHall.Name
				tv.MovieSession.CinemaHallCapacity = s.CinemaHall.Capacity()
			}
		}
		out.Tickets = append(out.Tickets, tv)
	}
	return out
}

func orderViews(list []model.Order) []orderView {
	out := make([]orderView, 0, len(list))
	for _, o := range list {
		out = append(out, newOrderView(o))
	}
	return out
}
