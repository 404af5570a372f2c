package router

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/service"
	"github.com/iliyamo/cinema-booking/internal/testutil"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

const testSecret = "router-test-secret"

type api struct {
	t  *testing.T
	e  *echo.Echo
	db *sql.DB

	admin, alice, bob string
	aliceID, bobID    uint64
}

func testConfig() config.Config {
	return config.Config{
		Env: "test",
		DB:  config.DBConfig{QueryTimeout: 5 * time.Second},
		Auth: config.AuthConfig{
			JWTSecret:      testSecret,
			AccessTTLMin:   15,
			RefreshTTLDays: 7,
			BcryptCost:     bcrypt.MinCost,
		},
		Paging: config.PagingConfig{PageSize: 20, MaxPageSize: 100},
		Cache: config.CacheConfig{
			Enabled:      true,
			MethodList:   []string{"GET"},
			TTL:          time.Minute,
			KeyStrategy:  "route_query",
			Prefix:       "cache",
			MaxBodyBytes: 1 << 20,
		},
	}
}

// newAPI wires the full router over an in-memory store.  rdb may be nil.
func newAPI(t *testing.T, rdb *redis.Client) *api {
	t.Helper()
	db := testutil.NewDB(t)
	a := &api{t: t, db: db}
	adminID := testutil.User(t, db, "admin@example.com", model.RoleAdmin)
	a.aliceID = testutil.User(t, db, "alice@example.com", model.RoleCustomer)
	a.bobID = testutil.User(t, db, "bob@example.com", model.RoleCustomer)
	a.admin = a.token(adminID, model.RoleAdmin)
	a.alice = a.token(a.aliceID, model.RoleCustomer)
	a.bob = a.token(a.bobID, model.RoleCustomer)

	log := zap.NewNop()
	a.e = New(Deps{
		Cfg:    testConfig(),
		Log:    log,
		DB:     db,
		Redis:  rdb,
		Orders: service.NewOrderService(repository.NewOrderRepo(db), service.NopPublisher{}, log),
	})
	return a
}

func (a *api) token(id uint64, role string) string {
	tok, err := utils.NewAccessToken(testSecret, id, role, 15)
	require.NoError(a.t, err)
	return tok.Token
}

func (a *api) call(method, target, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var r *bytes.Reader
	switch b := body.(type) {
	case nil:
		r = bytes.NewReader(nil)
	case string:
		r = bytes.NewReader([]byte(b))
	default:
		bs, err := json.Marshal(b)
		require.NoError(a.t, err)
		r = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func num(v any) uint64 {
	f, _ := v.(float64)
	return uint64(f)
}

func results(t *testing.T, body map[string]any) []any {
	t.Helper()
	list, ok := body["results"].([]any)
	require.True(t, ok, "results missing in %v", body)
	return list
}

func fields(body map[string]any) map[string]any {
	f, _ := body["fields"].(map[string]any)
	return f
}

func TestHealth(t *testing.T) {
	a := newAPI(t, nil)
	rec, body := a.call(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	a := newAPI(t, nil)
	genre := map[string]any{"name": "Drama"}

	rec, _ := a.call(http.MethodPost, "/api/cinema/genres", "", genre)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = a.call(http.MethodPost, "/api/cinema/genres", a.alice, genre)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := a.call(http.MethodPost, "/api/cinema/genres", a.admin, genre)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Drama", body["name"])
	id := num(body["id"])

	rec, body = a.call(http.MethodPost, "/api/cinema/genres", a.admin, genre)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", body["error"])

	rec, body = a.call(http.MethodPost, "/api/cinema/genres", a.admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(body), "name")

	rec, body = a.call(http.MethodPost, "/api/cinema/genres", a.admin, "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid body", body["error"])

	rec, _ = a.call(http.MethodPut, "/api/cinema/genres/999", a.admin, map[string]any{"name": "Noir"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = a.call(http.MethodGet, "/api/cinema/genres/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = a.call(http.MethodGet, fmt.Sprintf("/api/cinema/genres/%d", id), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Drama", body["name"])

	rec, _ = a.call(http.MethodDelete, fmt.Sprintf("/api/cinema/genres/%d", id), a.alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = a.call(http.MethodDelete, fmt.Sprintf("/api/cinema/genres/%d", id), a.admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = a.call(http.MethodGet, fmt.Sprintf("/api/cinema/genres/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHallReportsCapacity(t *testing.T) {
	a := newAPI(t, nil)
	rec, body := a.call(http.MethodPost, "/api/cinema/cinema_halls", a.admin,
		map[string]any{"name": "Blue", "rows": 5, "seats_in_row": 10})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 50, body["capacity"])

	rec, body = a.call(http.MethodPost, "/api/cinema/cinema_halls", a.admin,
		map[string]any{"name": "Empty", "rows": 0, "seats_in_row": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(body), "rows")
}

func TestMovieListPaginationAndFilters(t *testing.T) {
	a := newAPI(t, nil)
	drama := testutil.Genre(t, a.db, "Drama")
	scifi := testutil.Genre(t, a.db, "Sci-Fi")
	amy := testutil.Actor(t, a.db, "Amy", "Adams")
	testutil.Movie(t, a.db, "Arrival", []uint64{drama, scifi}, []uint64{amy})
	testutil.Movie(t, a.db, "Interstellar", []uint64{scifi}, nil)

	rec, body := a.call(http.MethodGet, "/api/cinema/movies", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["count"])
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 20, body["page_size"])
	first := results(t, body)[0].(map[string]any)
	assert.Equal(t, "Arrival", first["title"])
	assert.Equal(t, []any{"Drama", "Sci-Fi"}, first["genres"])
	assert.Equal(t, []any{"Amy Adams"}, first["actors"])

	_, body = a.call(http.MethodGet, "/api/cinema/movies?page_size=1&page=2", "", nil)
	assert.EqualValues(t, 2, body["count"])
	require.Len(t, results(t, body), 1)
	assert.Equal(t, "Interstellar", results(t, body)[0].(map[string]any)["title"])

	rec, body = a.call(http.MethodGet, fmt.Sprintf("/api/cinema/movies?genres=%d", scifi), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body, "page", "filtered lists are not paginated")
	assert.NotContains(t, body, "page_size")
	assert.EqualValues(t, 2, body["count"])

	_, body = a.call(http.MethodGet, "/api/cinema/movies?title=ARRI", "", nil)
	assert.NotContains(t, body, "page")
	assert.Len(t, results(t, body), 1)

	rec, body = a.call(http.MethodGet, "/api/cinema/movies?actors=1,x", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", body["error"])
	assert.Contains(t, fields(body), "actors")

	rec, body = a.call(http.MethodGet, "/api/cinema/movies?page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(body), "page")
}

func TestMovieWritesAndPatch(t *testing.T) {
	a := newAPI(t, nil)
	drama := testutil.Genre(t, a.db, "Drama")
	amy := testutil.Actor(t, a.db, "Amy", "Adams")

	rec, body := a.call(http.MethodPost, "/api/cinema/movies", a.admin, map[string]any{
		"title": "Arrival", "description": "Linguists", "duration": 116,
		"genres": []uint64{drama}, "actors": []uint64{amy},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []any{float64(drama)}, body["genres"])
	id := num(body["id"])

	rec, body = a.call(http.MethodPatch, fmt.Sprintf("/api/cinema/movies/%d", id), a.admin,
		map[string]any{"title": "Arrival (2016)"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Arrival (2016)", body["title"])
	assert.EqualValues(t, 116, body["duration"])
	assert.Equal(t, []any{float64(drama)}, body["genres"], "patch keeps links")
	assert.Equal(t, []any{float64(amy)}, body["actors"])

	rec, body = a.call(http.MethodGet, fmt.Sprintf("/api/cinema/movies/%d", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	genres := body["genres"].([]any)
	require.Len(t, genres, 1)
	assert.Equal(t, "Drama", genres[0].(map[string]any)["name"])
	actors := body["actors"].([]any)
	require.Len(t, actors, 1)
	assert.Equal(t, "Amy Adams", actors[0].(map[string]any)["full_name"])

	rec, body = a.call(http.MethodPut, fmt.Sprintf("/api/cinema/movies/%d", id), a.admin, map[string]any{
		"title": "Arrival", "duration": 116, "genres": []uint64{999},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(body), "genres")
}

func TestSessionsReportAvailability(t *testing.T) {
	a := newAPI(t, nil)
	hall := testutil.Hall(t, a.db, "Blue", 5, 10)
	movie := testutil.Movie(t, a.db, "Arrival", nil, nil)
	show := time.Date(2024, 6, 2, 19, 0, 0, 0, time.UTC)
	session := testutil.Session(t, a.db, movie, hall, show)
	testutil.Order(t, a.db, a.aliceID, session, [2]int{1, 1}, [2]int{1, 2}, [2]int{2, 5})

	rec, body := a.call(http.MethodGet, "/api/cinema/movie_sessions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	row := results(t, body)[0].(map[string]any)
	assert.EqualValues(t, 47, row["tickets_available"])
	assert.EqualValues(t, 50, row["cinema_hall_capacity"])
	assert.Equal(t, "Arrival", row["movie_title"])
	assert.Equal(t, "Blue", row["cinema_hall_name"])

	_, body = a.call(http.MethodGet, "/api/cinema/movie_sessions?date=2024-06-02", "", nil)
	assert.NotContains(t, body, "page")
	assert.Len(t, results(t, body), 1)
	_, body = a.call(http.MethodGet, "/api/cinema/movie_sessions?date=2024-06-03", "", nil)
	assert.Empty(t, results(t, body))

	rec, body = a.call(http.MethodGet, "/api/cinema/movie_sessions?date=2024-13-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(body), "date")

	rec, body = a.call(http.MethodGet, fmt.Sprintf("/api/cinema/movie_sessions/%d", session), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Arrival", body["movie"].(map[string]any)["title"])
	assert.EqualValues(t, 50, body["cinema_hall"].(map[string]any)["capacity"])
	assert.Len(t, body["taken_places"], 3)

	rec, body = a.call(http.MethodPost, "/api/cinema/movie_sessions", a.admin, map[string]any{
		"show_time": "2024-06-03T20:30:00Z", "movie": movie, "cinema_hall": hall,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, movie, body["movie"])
	assert.EqualValues(t, hall, body["cinema_hall"])

	rec, body = a.call(http.MethodPost, "/api/cinema/movie_sessions", a.admin, map[string]any{
		"show_time": "2024-06-03T20:30:00Z", "movie": 999, "cinema_hall": hall,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(body), "movie")
}

func TestOrdersAreScopedToTheCaller(t *testing.T) {
	a := newAPI(t, nil)
	hall := testutil.Hall(t, a.db, "Blue", 5, 10)
	movie := testutil.Movie(t, a.db, "Arrival", nil, nil)
	session := testutil.Session(t, a.db, movie, hall, time.Date(2024, 6, 2, 19, 0, 0, 0, time.UTC))
	seat := func(row, seat int) map[string]any {
		return map[string]any{"movie_session": session, "row": row, "seat": seat}
	}
	order := func(tickets ...map[string]any) map[string]any { return map[string]any{"tickets": tickets} }

	rec, _ := a.call(http.MethodGet, "/api/cinema/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := a.call(http.MethodPost, "/api/cinema/orders", a.alice, order(seat(3, 4)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := num(body["id"])
	tickets := body["tickets"].([]any)
	require.Len(t, tickets, 1)
	ms := tickets[0].(map[string]any)["movie_session"].(map[string]any)
	assert.Equal(t, "Arrival", ms["movie_title"])
	assert.Equal(t, "Blue", ms["cinema_hall_name"])

	rec, body = a.call(http.MethodPost, "/api/cinema/orders", a.bob, order(seat(3, 4)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "seat_taken", body["error"])

	orderURL := fmt.Sprintf("/api/cinema/orders/%d", id)
	rec, _ = a.call(http.MethodGet, orderURL, a.bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = a.call(http.MethodPut, orderURL, a.bob, order(seat(1, 1)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = a.call(http.MethodDelete, orderURL, a.bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, body = a.call(http.MethodGet, "/api/cinema/orders", a.bob, nil)
	assert.EqualValues(t, 0, body["count"])
	_, body = a.call(http.MethodGet, "/api/cinema/orders", a.alice, nil)
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 1, body["page"])

	rec, body = a.call(http.MethodPut, orderURL, a.alice, order(seat(3, 4), seat(3, 5)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, body["tickets"], 2)

	rec, _ = a.call(http.MethodDelete, orderURL, a.alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = a.call(http.MethodGet, orderURL, a.alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderValidation(t *testing.T) {
	a := newAPI(t, nil)
	hall := testutil.Hall(t, a.db, "Blue", 5, 10)
	movie := testutil.Movie(t, a.db, "Arrival", nil, nil)
	session := testutil.Session(t, a.db, movie, hall, time.Date(2024, 6, 2, 19, 0, 0, 0, time.UTC))

	rec, body := a.call(http.MethodPost, "/api/cinema/orders", a.alice, map[string]any{"tickets": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(body), "tickets")

	rec, body = a.call(http.MethodPost, "/api/cinema/orders", a.alice, map[string]any{"tickets": []any{
		map[string]any{"movie_session": session, "row": 1, "seat": 1},
		map[string]any{"movie_session": session, "row": 0, "seat": 1},
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(body), "tickets[1].row")

	_, body = a.call(http.MethodGet, "/api/cinema/orders", a.alice, nil)
	assert.EqualValues(t, 0, body["count"], "failed batch persists nothing")
}

func TestCatalogCacheInvalidatedByWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	a := newAPI(t, rdb)
	testutil.Genre(t, a.db, "Drama")

	rec, _ := a.call(http.MethodGet, "/api/cinema/genres", "", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec, body := a.call(http.MethodGet, "/api/cinema/genres", "", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.EqualValues(t, 1, body["count"])

	rec, _ = a.call(http.MethodGet, "/api/cinema/movies", "", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec, _ = a.call(http.MethodGet, "/api/cinema/movies", "", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	rec, _ = a.call(http.MethodPost, "/api/cinema/genres", a.admin, map[string]any{"name": "Noir"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body = a.call(http.MethodGet, "/api/cinema/genres", "", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.EqualValues(t, 2, body["count"])
	rec, _ = a.call(http.MethodGet, "/api/cinema/movies", "", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "genre writes drop movie reads")

	rec, _ = a.call(http.MethodPost, "/api/cinema/genres", a.admin, map[string]any{"name": "Noir"})
	require.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = a.call(http.MethodGet, "/api/cinema/genres", "", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"), "failed writes keep the cache")
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t, nil)
	creds := map[string]any{"email": "Carol@Example.com", "password": "hunter22"}

	rec, body := a.call(http.MethodPost, "/api/user/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := body["user"].(map[string]any)
	assert.Equal(t, "carol@example.com", user["email"])
	assert.Equal(t, model.RoleCustomer, user["role"])

	rec, _ = a.call(http.MethodPost, "/api/user/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec, body = a.call(http.MethodPost, "/api/user/register", "", map[string]any{"email": "nope", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(body), "email")

	rec, _ = a.call(http.MethodPost, "/api/user/login", "", map[string]any{"email": "carol@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, body = a.call(http.MethodPost, "/api/user/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	access := body["access"].(map[string]any)["token"].(string)
	refresh := body["refresh"].(map[string]any)["token"].(string)

	rec, body = a.call(http.MethodGet, "/api/user/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "carol@example.com", body["email"])

	rec, body = a.call(http.MethodPost, "/api/user/refresh", "", map[string]any{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := body["refresh"].(map[string]any)["token"].(string)
	rec, _ = a.call(http.MethodPost, "/api/user/refresh", "", map[string]any{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "rotated token is revoked")

	rec, body = a.call(http.MethodPost, "/api/user/refresh-access", "", map[string]any{"refresh_token": rotated})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "access")

	rec, _ = a.call(http.MethodPost, "/api/user/logout", "", map[string]any{"refresh_token": rotated})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = a.call(http.MethodPost, "/api/user/refresh", "", map[string]any{"refresh_token": rotated})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = a.call(http.MethodPost, "/api/user/logout", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = a.call(http.MethodPost, "/api/user/logout", access, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
