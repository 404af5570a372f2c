// Package testutil opens throwaway databases and seeds fixtures for tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/iliyamo/cinema-booking/internal/database"
)

// NewDB returns a migrated in-memory SQLite database closed when t ends.
// The pool is pinned to one connection: each connection of an in-memory
// database is a separate database.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, db, database.SQLite))
	return db
}

func insert(t testing.TB, db *sql.DB, query string, args ...any) uint64 {
	t.Helper()
	res, err := db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

// User inserts an active user with an unusable password hash.
func User(t testing.TB, db *sql.DB, email, role string) uint64 {
	t.Helper()
	now := time.Now().UTC()
	return insert(t, db,
		"INSERT INTO users (email, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		email, "x", role, true, now, now)
}

func Genre(t testing.TB, db *sql.DB, name string) uint64 {
	t.Helper()
	return insert(t, db, "INSERT INTO genres (name) VALUES (?)", name)
}

func Actor(t testing.TB, db *sql.DB, first, last string) uint64 {
	t.Helper()
	return insert(t, db, "INSERT INTO actors (first_name, last_name) VALUES (?, ?)", first, last)
}

func Hall(t testing.TB, db *sql.DB, name string, rows, seatsInRow int) uint64 {
	t.Helper()
	return insert(t, db, "INSERT INTO cinema_halls (name, seat_rows, seats_in_row) VALUES (?, ?, ?)",
		name, rows, seatsInRow)
}

// Movie inserts a movie linked to the given genres and actors.
func Movie(t testing.TB, db *sql.DB, title string, genreIDs, actorIDs []uint64) uint64 {
	t.Helper()
	id := insert(t, db, "INSERT INTO movies (title, description, duration) VALUES (?, ?, ?)",
		title, title+" description", 120)
	for _, g := range genreIDs {
		insert(t, db, "INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)", id, g)
	}
	for _, a := range actorIDs {
		insert(t, db, "INSERT INTO movie_actors (movie_id, actor_id) VALUES (?, ?)", id, a)
	}
	return id
}

func Session(t testing.TB, db *sql.DB, movieID, hallID uint64, showTime time.Time) uint64 {
	t.Helper()
	return insert(t, db, "INSERT INTO movie_sessions (show_time, movie_id, cinema_hall_id) VALUES (?, ?, ?)",
		showTime.UTC(), movieID, hallID)
}

// Order inserts an order for userID holding one ticket per place, bypassing
// hall range checks.
func Order(t testing.TB, db *sql.DB, userID, sessionID uint64, places ...[2]int) uint64 {
	t.Helper()
	id := insert(t, db, "INSERT INTO orders (user_id, created_at) VALUES (?, ?)", userID, time.Now().UTC())
	for _, p := range places {
		insert(t, db, "INSERT INTO tickets (movie_session_id, order_id, row_no, seat_no) VALUES (?, ?, ?, ?)",
			sessionID, id, p[0], p[1])
	}
	return id
}
