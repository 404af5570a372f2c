// Package filter turns raw query-string values into typed list filters.
// Parsing fails closed: a malformed value is reported as a field error
// instead of being dropped, so a client never silently receives an
// unfiltered result.
package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/validation"
)

// DateLayout is the ISO calendar date accepted by the date filter.
const DateLayout = "2006-01-02"

// MovieFilter narrows the movie catalog.  Empty fields do not filter.
type MovieFilter struct {
	ActorIDs []uint64
	GenreIDs []uint64
	Title    string
}

// Active reports whether any filter is set.  An active filter disables
// page slicing.
func (f MovieFilter) Active() bool {
	return len(f.ActorIDs) > 0 || len(f.GenreIDs) > 0 || f.Title != ""
}

// SessionFilter narrows the session list.
type SessionFilter struct {
	Date     *time.Time // UTC midnight of the requested day
	MovieIDs []uint64
}

// Active reports whether any filter is set.
func (f SessionFilter) Active() bool {
	return f.Date != nil || len(f.MovieIDs) > 0
}

// DayRange returns the half-open UTC interval [start, end) of the date.
func (f SessionFilter) DayRange() (time.Time, time.Time) {
	start := *f.Date
	return start, start.AddDate(0, 0, 1)
}

// ParseMovieFilter reads actors, genres and title.  title is taken as
// sent: any non-empty value, even blanks, filters.
func ParseMovieFilter(q url.Values) (MovieFilter, error) {
	errs := validation.Errors{}
	var f MovieFilter
	f.ActorIDs = parseIDs(errs, "actors", q.Get("actors"))
	f.GenreIDs = parseIDs(errs, "genres", q.Get("genres"))
	f.Title = q.Get("title")
	if err := errs.Err(); err != nil {
		return MovieFilter{}, err
	}
	return f, nil
}

// ParseSessionFilter reads date and movie.
func ParseSessionFilter(q url.Values) (SessionFilter, error) {
	errs := validation.Errors{}
	var f SessionFilter
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		d, err := time.ParseInLocation(DateLayout, raw, time.UTC)
		if err != nil {
			errs.Add("date", "must be a date in YYYY-MM-DD format")
		} else {
			f.Date = &d
		}
	}
	f.MovieIDs = parseIDs(errs, "movie", q.Get("movie"))
	if err := errs.Err(); err != nil {
		return SessionFilter{}, err
	}
	return f, nil
}

// parseIDs splits a comma separated list of positive integers.  An empty
// raw value means "no filter"; any bad element fails the whole field.
func parseIDs(errs validation.Errors, field, raw string) []uint64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]uint64, 0, len(parts))
	seen := make(map[uint64]struct{}, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			errs.Add(field, "must be a comma separated list of positive integers")
			return nil
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
