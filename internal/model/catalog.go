package model

// Genre is a movie genre.  Names are unique.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
}

// Actor is a person credited in one or more movies.
type Actor struct {
	ID        uint64 // actors.id
	FirstName string // actors.first_name
	LastName  string // actors.last_name
}

// FullName joins first and last name with a single space.
func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}
