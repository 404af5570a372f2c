package model

// Movie is a catalog entry.  Genres and Actors are many-to-many relations
// stored in movie_genres and movie_actors; repositories populate them when
// the caller asks for related rows.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title.
//  Description – free text synopsis.
//  Duration    – running time in minutes.
//  Genres      – related genres (may be nil when not loaded).
//  Actors      – related actors (may be nil when not loaded).
type Movie struct {
	ID          uint64  // movies.id
	Title       string  // movies.title
	Description string  // movies.description
	Duration    int     // movies.duration
	Genres      []Genre // movie_genres
	Actors      []Actor // movie_actors
}

// GenreIDs returns the ids of the loaded genres in order.
func (m Movie) GenreIDs() []uint64 {
	out := make([]uint64, 0, len(m.Genres))
	for _, g := range m.Genres {
		out = append(out, g.ID)
	}
	return out
}

// ActorIDs returns the ids of the loaded actors in order.
func (m Movie) ActorIDs() []uint64 {
	out := make([]uint64, 0, len(m.Actors))
	for _, a := range m.Actors {
		out = append(out, a.ID)
	}
	return out
}
