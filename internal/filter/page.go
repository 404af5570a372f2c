package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/validation"
)

// Page selects a slice of a list.  The zero Page means "everything".
type Page struct {
	Number int
	Size   int
}

// All is the unsliced page used when a filter suppresses pagination.
var All = Page{}

// Paged reports whether the page slices the result.
func (p Page) Paged() bool { return p.Size > 0 }

// Limit is the SQL LIMIT of the page.
func (p Page) Limit() int { return p.Size }

// Offset is the SQL OFFSET of the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// ParsePage reads page and page_size.  page_size above max is clamped.
func ParsePage(q url.Values, defaultSize, max int) (Page, error) {
	errs := validation.Errors{}
	p := Page{Number: 1, Size: defaultSize}
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("page", "must be a positive integer")
		}
		p.Number = n
	}
	if raw := strings.TrimSpace(q.Get("page_size")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("page_size", "must be a positive integer")
		}
		p.Size = n
	}
	if err := errs.Err(); err != nil {
		return Page{}, err
	}
	if max > 0 && p.Size > max {
		p.Size = max
	}
	if p.Size > 0 && p.Number > math.MaxInt/p.Size {
		return Page{}, validation.Field("page", "is out of range")
	}
	return p, nil
}
