package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/filter"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// SessionHandler serves /movie_sessions.  Lists accept ?date=YYYY-MM-DD
// and ?movie=1,2 and always report live availability.
type SessionHandler struct {
	base
	repo *repository.SessionRepo
}

func NewSessionHandler(cfg config.Config, log *zap.Logger, repo *repository.SessionRepo) *SessionHandler {
	return &SessionHandler{base: newBase(cfg, log), repo: repo}
}

type sessionBody struct {
	ShowTime   time.Time `json:"show_time" validate:"required"`
	Movie      uint64    `json:"movie" validate:"required"`
	CinemaHall uint64    `json:"cinema_hall" validate:"required"`
}

func (b sessionBody) session(id uint64) model.MovieSession {
	return model.MovieSession{ID: id, ShowTime: b.ShowTime.UTC(), MovieID: b.Movie, CinemaHallID: b.CinemaHall}
}

func (h *SessionHandler) List(c echo.Context) error {
	f, err := filter.ParseSessionFilter(c.QueryParams())
	if err != nil {
		return h.fail(c, err)
	}
	p, err := h.page(c.QueryParams(), f.Active())
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, total, err := h.repo.ListAvailability(ctx, f, p)
	if err != nil {
		return h.fail(c, err)
	}
	return h.list(c, p, total, availabilityViews(list))
}

func (h *SessionHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	s, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	places, err := h.repo.TakenPlaces(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionView(s, places, ViewDetail))
}

func (h *SessionHandler) Create(c echo.Context) error {
	var body sessionBody
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	s := body.session(0)
	if err := h.repo.Create(ctx, &s); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, sessionView(&s, nil, ViewWrite))
}

func (h *SessionHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	var body sessionBody
	if c.Request().Method == http.MethodPatch {
		cur, err := h.repo.GetByID(ctx, id)
		if err != nil {
			return h.fail(c, err)
		}
		body = sessionBody{ShowTime: cur.ShowTime, Movie: cur.MovieID, CinemaHall: cur.CinemaHallID}
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	s := body.session(id)
	if err := h.repo.Update(ctx, &s); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionView(&s, nil, ViewWrite))
}

func (h *SessionHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.repo.Delete(ctx, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
