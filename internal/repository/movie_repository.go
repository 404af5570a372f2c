package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/filter"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/validation"
)

// MovieRepo reads and writes movies together with their genre and actor
// links.  Reads resolve both relations with one batched query each for the
// whole result set.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// movieWhere renders the catalog filter.  Membership tests are EXISTS
// sub-selects so a movie matching several requested actors still yields a
// single row.
func movieWhere(f filter.MovieFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if len(f.ActorIDs) > 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM movie_actors ma WHERE ma.movie_id = m.id AND ma.actor_id IN ("+
			placeholders(len(f.ActorIDs))+"))")
		args = append(args, idArgs(f.ActorIDs)...)
	}
	if len(f.GenreIDs) > 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM movie_genres mg WHERE mg.movie_id = m.id AND mg.genre_id IN ("+
			placeholders(len(f.GenreIDs))+"))")
		args = append(args, idArgs(f.GenreIDs)...)
	}
	if f.Title != "" {
		conds = append(conds, "LOWER(m.title) LIKE ? ESCAPE '!'")
		args = append(args, "%"+escapeLike(strings.ToLower(f.Title))+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// List returns the movies matching f ordered by id, sliced by p, and the
// number of matching movies.
func (r *MovieRepo) List(ctx context.Context, f filter.MovieFilter, p filter.Page) ([]model.Movie, int, error) {
	where, args := movieWhere(f)
	total, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM movies m"+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}
	limit, pageArgs := pageClause(p)
	rows, err := r.db.QueryContext(ctx,
		"SELECT m.id, m.title, m.description, m.duration FROM movies m"+where+" ORDER BY m.id"+limit,
		append(args, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Duration); err != nil {
			rows.Close()
			return nil, 0, err
		}
		movies = append(movies, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := loadMovieRelations(ctx, r.db, movies); err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// GetByID returns the movie with genres and actors.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	return getMovie(ctx, r.db, id)
}

func getMovie(ctx context.Context, q dbtx, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := q.QueryRowContext(ctx,
		"SELECT id, title, description, duration FROM movies WHERE id = ?", id).
		Scan(&m.ID, &m.Title, &m.Description, &m.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	list := []model.Movie{m}
	if err := loadMovieRelations(ctx, q, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// loadMovieRelations fills Genres and Actors of every movie in place.
func loadMovieRelations(ctx context.Context, q dbtx, movies []model.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(movies))
	ids := make([]uint64, 0, len(movies))
	for i := range movies {
		movies[i].Genres = []model.Genre{}
		movies[i].Actors = []model.Actor{}
		if _, ok := index[movies[i].ID]; !ok {
			index[movies[i].ID] = i
			ids = append(ids, movies[i].ID)
		}
	}
	in := placeholders(len(ids))

	rows, err := q.QueryContext(ctx,
		"SELECT mg.movie_id, g.id, g.name FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id"+
			" WHERE mg.movie_id IN ("+in+") ORDER BY g.id", idArgs(ids)...)
	if err != nil {
		return fmt.Errorf("load genres: %w", err)
	}
	for rows.Next() {
		var (
			movieID uint64
			g       model.Genre
		)
		if err := rows.Scan(&movieID, &g.ID, &g.Name); err != nil {
			rows.Close()
			return err
		}
		i := index[movieID]
		movies[i].Genres = append(movies[i].Genres, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.QueryContext(ctx,
		"SELECT ma.movie_id, a.id, a.first_name, a.last_name FROM movie_actors ma JOIN actors a ON a.id = ma.actor_id"+
			" WHERE ma.movie_id IN ("+in+") ORDER BY a.id", idArgs(ids)...)
	if err != nil {
		return fmt.Errorf("load actors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			movieID uint64
			a       model.Actor
		)
		if err := rows.Scan(&movieID, &a.ID, &a.FirstName, &a.LastName); err != nil {
			return err
		}
		i := index[movieID]
		movies[i].Actors = append(movies[i].Actors, a)
	}
	return rows.Err()
}

// Create inserts m and its links in one transaction.  Unknown genre or
// actor ids are reported as field errors.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkMovieLinks(ctx, tx, m); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO movies (title, description, duration) VALUES (?, ?, ?)",
			m.Title, m.Description, m.Duration)
		if err != nil {
			return translateWriteErr(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		m.ID = uint64(id)
		return insertMovieLinks(ctx, tx, m)
	})
}

// Update overwrites the scalar fields and replaces both link sets.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkMovieLinks(ctx, tx, m); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE movies SET title = ?, description = ?, duration = ? WHERE id = ?",
			m.Title, m.Description, m.Duration, m.ID)
		if err != nil {
			return translateWriteErr(err)
		}
		if err := checkAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM movie_genres WHERE movie_id = ?", m.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM movie_actors WHERE movie_id = ?", m.ID); err != nil {
			return err
		}
		return insertMovieLinks(ctx, tx, m)
	})
}

// Delete removes the movie; a movie with sessions yields ErrConflict.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return translateWriteErr(err)
	}
	return checkAffected(res)
}

func checkMovieLinks(ctx context.Context, tx *sql.Tx, m *model.Movie) error {
	errs := validation.Errors{}
	for _, link := range []struct {
		field, table string
		ids          []uint64
	}{
		{"genres", "genres", uniqueIDs(m.GenreIDs())},
		{"actors", "actors", uniqueIDs(m.ActorIDs())},
	} {
		found, err := existingIDs(ctx, tx, link.table, link.ids)
		if err != nil {
			return err
		}
		for _, id := range link.ids {
			if !found[id] {
				errs.Add(link.field, fmt.Sprintf("invalid pk %d: object does not exist", id))
				break
			}
		}
	}
	return errs.Err()
}

func insertMovieLinks(ctx context.Context, tx *sql.Tx, m *model.Movie) error {
	for _, id := range uniqueIDs(m.GenreIDs()) {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)", m.ID, id); err != nil {
			return translateWriteErr(err)
		}
	}
	for _, id := range uniqueIDs(m.ActorIDs()) {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO movie_actors (movie_id, actor_id) VALUES (?, ?)", m.ID, id); err != nil {
			return translateWriteErr(err)
		}
	}
	return nil
}
