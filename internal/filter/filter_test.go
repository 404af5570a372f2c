package filter

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/validation"
)

func TestParseMovieFilter(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f, err := ParseMovieFilter(url.Values{})
		require.NoError(t, err)
		assert.False(t, f.Active())
	})

	t.Run("all fields", func(t *testing.T) {
		f, err := ParseMovieFilter(url.Values{
			"actors": {"1, 2,2"},
			"genres": {"3"},
			"title":  {" Matrix "},
		})
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2}, f.ActorIDs)
		assert.Equal(t, []uint64{3}, f.GenreIDs)
		assert.Equal(t, " Matrix ", f.Title)
		assert.True(t, f.Active())
	})

	t.Run("title only activates", func(t *testing.T) {
		f, err := ParseMovieFilter(url.Values{"title": {"a"}})
		require.NoError(t, err)
		assert.True(t, f.Active())
	})

	t.Run("blank title still activates", func(t *testing.T) {
		f, err := ParseMovieFilter(url.Values{"title": {" "}})
		require.NoError(t, err)
		assert.Equal(t, " ", f.Title)
		assert.True(t, f.Active())
	})

	t.Run("malformed ids fail closed", func(t *testing.T) {
		_, err := ParseMovieFilter(url.Values{"actors": {"1,x"}, "genres": {"0"}})
		var ve validation.Errors
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve, "actors")
		assert.Contains(t, ve, "genres")
	})

	t.Run("trailing comma rejected", func(t *testing.T) {
		_, err := ParseMovieFilter(url.Values{"genres": {"1,"}})
		assert.Error(t, err)
	})
}

func TestParseSessionFilter(t *testing.T) {
	t.Run("date and movies", func(t *testing.T) {
		f, err := ParseSessionFilter(url.Values{"date": {"2024-03-05"}, "movie": {"7,8"}})
		require.NoError(t, err)
		require.NotNil(t, f.Date)
		start, end := f.DayRange()
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), end)
		assert.Equal(t, []uint64{7, 8}, f.MovieIDs)
		assert.True(t, f.Active())
	})

	t.Run("bad date fails closed", func(t *testing.T) {
		_, err := ParseSessionFilter(url.Values{"date": {"2024-13-01"}})
		var ve validation.Errors
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve, "date")
	})

	t.Run("absent", func(t *testing.T) {
		f, err := ParseSessionFilter(url.Values{"date": {""}})
		require.NoError(t, err)
		assert.False(t, f.Active())
	})
}

func TestParsePage(t *testing.T) {
	p, err := ParsePage(url.Values{}, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, Page{Number: 1, Size: 20}, p)
	assert.True(t, p.Paged())
	assert.Equal(t, 0, p.Offset())

	p, err = ParsePage(url.Values{"page": {"3"}, "page_size": {"500"}}, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Limit())
	assert.Equal(t, 200, p.Offset())

	_, err = ParsePage(url.Values{"page": {"0"}}, 20, 100)
	assert.Error(t, err)
	_, err = ParsePage(url.Values{"page_size": {"abc"}}, 20, 100)
	assert.Error(t, err)

	_, err = ParsePage(url.Values{"page": {"9223372036854775807"}}, 20, 100)
	var ve validation.Errors
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve, "page")
	p, err = ParsePage(url.Values{"page": {strconv.Itoa(math.MaxInt / 100)}, "page_size": {"100"}}, 20, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Offset(), 0)

	assert.False(t, All.Paged())
}
