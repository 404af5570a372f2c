package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/filter"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/testutil"
	"github.com/iliyamo/cinema-booking/internal/validation"
)

type catalogFixture struct {
	drama, comedy       uint64
	keanu, carrie, hugo uint64
	matrix, speed, alt  uint64
}

func seedCatalog(t *testing.T, repo *MovieRepo) catalogFixture {
	t.Helper()
	db := repo.db
	var f catalogFixture
	f.drama = testutil.Genre(t, db, "Drama")
	f.comedy = testutil.Genre(t, db, "Comedy")
	f.keanu = testutil.Actor(t, db, "Keanu", "Reeves")
	f.carrie = testutil.Actor(t, db, "Carrie-Anne", "Moss")
	f.hugo = testutil.Actor(t, db, "Hugo", "Weaving")
	f.matrix = testutil.Movie(t, db, "The Matrix", []uint64{f.drama}, []uint64{f.keanu, f.carrie, f.hugo})
	f.speed = testutil.Movie(t, db, "Speed", []uint64{f.drama, f.comedy}, []uint64{f.keanu})
	f.alt = testutil.Movie(t, db, "100% Matrix_Fan", []uint64{f.comedy}, nil)
	return f
}

func movieIDs(list []model.Movie) []uint64 {
	out := make([]uint64, 0, len(list))
	for _, m := range list {
		out = append(out, m.ID)
	}
	return out
}

// SQLite's LOWER folds ASCII only, so the case-insensitive title cases
// stick to ASCII titles; MySQL's utf8mb4 collation also folds the rest.
func TestMovieListFilters(t *testing.T) {
	repo := NewMovieRepo(testutil.NewDB(t))
	ctx := context.Background()
	f := seedCatalog(t, repo)

	cases := []struct {
		name   string
		filter filter.MovieFilter
		want   []uint64
	}{
		{"empty", filter.MovieFilter{}, []uint64{f.matrix, f.speed, f.alt}},
		{"actor union without duplicates", filter.MovieFilter{ActorIDs: []uint64{f.keanu, f.carrie}}, []uint64{f.matrix, f.speed}},
		{"genre", filter.MovieFilter{GenreIDs: []uint64{f.comedy}}, []uint64{f.speed, f.alt}},
		{"genres union", filter.MovieFilter{GenreIDs: []uint64{f.drama, f.comedy}}, []uint64{f.matrix, f.speed, f.alt}},
		{"title case insensitive ascii", filter.MovieFilter{Title: "matrix"}, []uint64{f.matrix, f.alt}},
		{"title blank is a substring", filter.MovieFilter{Title: " "}, []uint64{f.matrix, f.alt}},
		{"title wildcard escaped", filter.MovieFilter{Title: "0% m"}, []uint64{f.alt}},
		{"title underscore literal", filter.MovieFilter{Title: "x_f"}, []uint64{f.alt}},
		{"actors and genres", filter.MovieFilter{ActorIDs: []uint64{f.keanu}, GenreIDs: []uint64{f.comedy}}, []uint64{f.speed}},
		{"no match", filter.MovieFilter{ActorIDs: []uint64{f.hugo}, Title: "speed"}, []uint64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, total, err := repo.List(ctx, tc.filter, filter.All)
			require.NoError(t, err)
			assert.Equal(t, tc.want, movieIDs(list))
			assert.Equal(t, len(tc.want), total)
		})
	}
}

func TestMovieListLoadsRelations(t *testing.T) {
	repo := NewMovieRepo(testutil.NewDB(t))
	f := seedCatalog(t, repo)

	list, total, err := repo.List(context.Background(), filter.MovieFilter{}, filter.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, []uint64{f.keanu, f.carrie, f.hugo}, list[0].ActorIDs())
	assert.Equal(t, []uint64{f.drama, f.comedy}, list[1].GenreIDs())

	m, err := repo.GetByID(context.Background(), f.alt)
	require.NoError(t, err)
	assert.Empty(t, m.Actors)
	assert.NotNil(t, m.Actors)
}

func TestMovieWrites(t *testing.T) {
	repo := NewMovieRepo(testutil.NewDB(t))
	ctx := context.Background()
	f := seedCatalog(t, repo)

	m := &model.Movie{
		Title: "John Wick", Description: "dog", Duration: 101,
		Genres: []model.Genre{{ID: f.drama}},
		Actors: []model.Actor{{ID: f.keanu}, {ID: f.keanu}},
	}
	require.NoError(t, repo.Create(ctx, m))
	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.keanu}, got.ActorIDs())

	got.Genres = []model.Genre{{ID: f.comedy}}
	got.Actors = nil
	got.Duration = 102
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 102, got.Duration)
	assert.Equal(t, []uint64{f.comedy}, got.GenreIDs())
	assert.Empty(t, got.Actors)

	bad := &model.Movie{Title: "zz-rejected", Duration: 1, Genres: []model.Genre{{ID: 404}}}
	err = repo.Create(ctx, bad)
	var ve validation.Errors
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve, "genres")
	_, total, err := repo.List(ctx, filter.MovieFilter{Title: "zz-rejected"}, filter.All)
	require.NoError(t, err)
	assert.Equal(t, 0, total, "rejected create leaves no row")

	require.NoError(t, repo.Delete(ctx, m.ID))
	_, err = repo.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, m.ID), ErrNotFound)
}
