package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// OrderHandler serves /orders for the authenticated caller.  Orders of
// other users answer 404.
type OrderHandler struct {
	base
	svc *service.OrderService
}

func NewOrderHandler(cfg config.Config, log *zap.Logger, svc *service.OrderService) *OrderHandler {
	return &OrderHandler{base: newBase(cfg, log), svc: svc}
}

type ticketBody struct {
	MovieSession uint64 `json:"movie_session" validate:"required"`
	Row          int    `json:"row"`
	Seat         int    `json:"seat"`
}

type orderBody struct {
	Tickets []ticketBody `json:"tickets" validate:"required,min=1,dive"`
}

func (b orderBody) specs() []model.TicketSpec {
	out := make([]model.TicketSpec, 0, len(b.Tickets))
	for _, t := range b.Tickets {
		out = append(out, model.TicketSpec{MovieSessionID: t.MovieSession, Row: t.Row, Seat: t.Seat})
	}
	return out
}

func (h *OrderHandler) List(c echo.Context) error {
	me, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	p, err := h.page(c.QueryParams(), false)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, total, err := h.svc.List(ctx, me.UserID, p)
	if err != nil {
		return h.fail(c, err)
	}
	return h.list(c, p, total, orderViews(list))
}

func (h *OrderHandler) Get(c echo.Context) error {
	me, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	o, err := h.svc.Get(ctx, me.UserID, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, newOrderView(*o))
}

func (h *OrderHandler) Create(c echo.Context) error {
	me, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	var body orderBody
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	o, err := h.svc.Create(ctx, me.UserID, body.specs())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, newOrderView(*o))
}

// Replace serves PUT: the body's tickets become the order's only tickets.
func (h *OrderHandler) Replace(c echo.Context) error {
	me, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	var body orderBody
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	o, err := h.svc.Replace(ctx, me.UserID, id, body.specs())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, newOrderView(*o))
}

func (h *OrderHandler) Delete(c echo.Context) error {
	me, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	id, ok := pathID(c)
	if !ok {
		return h.fail(c, repository.ErrNotFound)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.svc.Delete(ctx, me.UserID, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
