package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/filter"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// MovieHandler serves /movies.  Lists accept ?actors=1,2&genres=3&title=x;
// any filter returns every match unpaginated.
type MovieHandler struct {
	base
	repo *repository.MovieRepo
}

func NewMovieHandler(cfg config.Config, log *zap.Logger, repo *repository.MovieRepo) *MovieHandler {
	return &MovieHandler{base: newBase(cfg, log), repo: repo}
}

type movieBody struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Duration    int      `json:"duration" validate:"gt=0"`
	Genres      []uint64 `json:"genres" validate:"dive,gt=0"`
	Actors      []uint64 `json:"actors" validate:"dive,gt=0"`
}

func (b movieBody) movie(id uint64) model.Movie {
	m := model.Movie{ID: id, Title: b.Title, Description: b.Description, Duration: b.Duration}
	for _, g := range b.Genres {
		m.Genres = append(m.Genres, model.Genre{ID: g})
	}
	for _, a := range b.Actors {
		m.Actors = append(m.Actors, model.Actor{ID: a})
	}
	return m
}

func (h *MovieHandler) List(c echo.Context) error {
	f, err := filter.ParseMovieFilter(c.QueryParams())
	if err != nil {
		return h.fail(c, err)
	}
	p, err := h.page(c.QueryParams(), f.Active())
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, total, err := h.repo.List(ctx, f, p)
	if err != nil {
		return h.fail(c, err)
	}
	return h.list(c, p, total, movieViews(list, ViewList))
}

func (h *MovieHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	m, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, movieView(*m, ViewDetail))
}

func (h *MovieHandler) Create(c echo.Context) error {
	var body movieBody
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	m := body.movie(0)
	if err := h.repo.Create(ctx, &m); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, movieView(m, ViewWrite))
}

// Update serves PUT and PATCH.  Sending genres or actors replaces the
// whole link set.
func (h *MovieHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	var body movieBody
	if c.Request().Method == http.MethodPatch {
		cur, err := h.repo.GetByID(ctx, id)
		if err != nil {
			return h.fail(c, err)
		}
		body = movieBody{
			Title: cur.Title, Description: cur.Description, Duration: cur.Duration,
			Genres: cur.GenreIDs(), Actors: cur.ActorIDs(),
		}
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	m := body.movie(id)
	if err := h.repo.Update(ctx, &m); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, movieView(m, ViewWrite))
}

func (h *MovieHandler) Delete(c echo.Context) error {
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
