package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/filter"
)

// Configure installs the JSON serializer, validator and error handler the
// handlers rely on.
func Configure(e *echo.Echo, log *zap.Logger) {
	e.JSONSerializer = JSONSerializer{}
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(log)
}

// base carries what every resource handler needs.
type base struct {
	log     *zap.Logger
	timeout time.Duration
	paging  config.PagingConfig
}

func newBase(cfg config.Config, log *zap.Logger) base {
	timeout := cfg.DB.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return base{log: log, timeout: timeout, paging: cfg.Paging}
}

// ctx bounds store work of one request.
func (b base) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), b.timeout)
}

func (b base) fail(c echo.Context, err error) error {
	return writeError(c, b.log, err)
}

// page reads page and page_size.  An active filter returns every match in
// one response instead.
func (b base) page(q url.Values, filtered bool) (filter.Page, error) {
	if filtered {
		return filter.All, nil
	}
	return filter.ParsePage(q, b.paging.PageSize, b.paging.MaxPageSize)
}

type pagedList struct {
	Count    int         `json:"count"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Results  interface{} `json:"results"`
}

type fullList struct {
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
}

func (b base) list(c echo.Context, p filter.Page, total int, results interface{}) error {
	if !p.Paged() {
		return c.JSON(http.StatusOK, fullList{Count: total, Results: results})
	}
	return c.JSON(http.StatusOK, pagedList{Count: total, Page: p.Number, PageSize: p.Size, Results: results})
}

// bind decodes the body into dst and validates it.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return errInvalidBody
	}
	return c.Validate(dst)
}

// pathID parses :id.  A malformed id cannot name a row, so it reads as a
// miss.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
