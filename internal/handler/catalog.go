package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// GenreHandler serves /genres.
type GenreHandler struct {
	base
	repo *repository.GenreRepo
}

func NewGenreHandler(cfg config.Config, log *zap.Logger, repo *repository.GenreRepo) *GenreHandler {
	return &GenreHandler{base: newBase(cfg, log), repo: repo}
}

type genreBody struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *GenreHandler) List(c echo.Context) error {
	p, err := h.page(c.QueryParams(), false)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, total, err := h.repo.List(ctx, p)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]genreView, 0, len(list))
	for _, g := range list {
		out = append(out, newGenreView(g))
	}
	return h.list(c, p, total, out)
}

func (h *GenreHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	g, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, newGenreView(*g))
}

func (h *GenreHandler) Create(c echo.Context) error {
	var body genreBody
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	g := model.Genre{Name: body.Name}
	if err := h.repo.Create(ctx, &g); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, newGenreView(g))
}

// Update serves both PUT and PATCH.  PATCH starts from the stored row so
// omitted fields keep their value.
func (h *GenreHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	var body genreBody
	if c.Request().Method == http.MethodPatch {
		cur, err := h.repo.GetByID(ctx, id)
		if err != nil {
			return h.fail(c, err)
		}
		body.Name = cur.Name
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	g := model.Genre{ID: id, Name: body.Name}
	if err := h.repo.Update(ctx, &g); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, newGenreView(g))
}

func (h *GenreHandler) Delete(c echo.Context) error {
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

// ActorHandler serves /actors.
type ActorHandler struct {
	base
	repo *repository.ActorRepo
}

func NewActorHandler(cfg config.Config, log *zap.Logger, repo *repository.ActorRepo) *ActorHandler {
	return &ActorHandler{base: newBase(cfg, log), repo: repo}
}

type actorBody struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
}

func (h *ActorHandler) List(c echo.Context) error {
	p, err := h.page(c.QueryParams(), false)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, total, err := h.repo.List(ctx, p)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]actorView, 0, len(list))
	for _, a := range list {
		out = append(out, newActorView(a))
	}
	return h.list(c, p, total, out)
}

func (h *ActorHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	a, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, newActorView(*a))
}

func (h *ActorHandler) Create(c echo.Context) error {
	var body actorBody
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	a := model.Actor{FirstName: body.FirstName, LastName: body.LastName}
	if err := h.repo.Create(ctx, &a); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, newActorView(a))
}

func (h *ActorHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	var body actorBody
	if c.Request().Method == http.MethodPatch {
		cur, err := h.repo.GetByID(ctx, id)
		if err != nil {
			return h.fail(c, err)
		}
		body = actorBody{FirstName: cur.FirstName, LastName: cur.LastName}
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	a := model.Actor{ID: id, FirstName: body.FirstName, LastName: body.LastName}
	if err := h.repo.Update(ctx, &a); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, newActorView(a))
}

func (h *ActorHandler) Delete(c echo.Context) error {
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

// HallHandler serves /cinema_halls.
type HallHandler struct {
	base
	repo *repository.HallRepo
}

func NewHallHandler(cfg config.Config, log *zap.Logger, repo *repository.HallRepo) *HallHandler {
	return &HallHandler{base: newBase(cfg, log), repo: repo}
}

type hallBody struct {
	Name       string `json:"name" validate:"required,max=255"`
	Rows       int    `json:"rows" validate:"gt=0"`
	SeatsInRow int    `json:"seats_in_row" validate:"gt=0"`
}

func (h *HallHandler) List(c echo.Context) error {
	p, err := h.page(c.QueryParams(), false)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, total, err := h.repo.List(ctx, p)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]hallView, 0, len(list))
	for _, hall := range list {
		out = append(out, newHallView(hall))
	}
	return h.list(c, p, total, out)
}

func (h *HallHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	hall, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, newHallView(*hall))
}

func (h *HallHandler) Create(c echo.Context) error {
	var body hallBody
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	hall := model.CinemaHall{Name: body.Name, Rows: body.Rows, SeatsInRow: body.SeatsInRow}
	if err := h.repo.Create(ctx, &hall); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, newHallView(hall))
}

func (h *HallHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	var body hallBody
	if c.Request().Method == http.MethodPatch {
		cur, err := h.repo.GetByID(ctx, id)
		if err != nil {
			return h.fail(c, err)
		}
		body = hallBody{Name: cur.Name, Rows: cur.Rows, SeatsInRow: cur.SeatsInRow}
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	hall := model.CinemaHall{ID: id, Name: body.Name, Rows: body.Rows, SeatsInRow: body.SeatsInRow}
	if err := h.repo.Update(ctx, &hall); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, newHallView(hall))
}

func (h *HallHandler) Delete(c echo.Context) error {
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
