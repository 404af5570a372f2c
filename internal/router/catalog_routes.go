package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// resource is the handler set of one catalog collection.
type resource interface {
	List(echo.Context) error
	Get(echo.Context) error
	Create(echo.Context) error
	Update(echo.Context) error
	Delete(echo.Context) error
}

// RegisterCatalog registers the public reads and ADMIN writes of the
// catalog.  Movie and session responses embed related rows, so a write
// to a related collection also drops their cached reads.
func RegisterCatalog(g *echo.Group, d Deps) {
	db := d.DB
	mount(g, d, "genres", handler.NewGenreHandler(d.Cfg, d.Log, repository.NewGenreRepo(db)), true,
		"genres", "movies")
	mount(g, d, "actors", handler.NewActorHandler(d.Cfg, d.Log, repository.NewActorRepo(db)), true,
		"actors", "movies")
	mount(g, d, "cinema_halls", handler.NewHallHandler(d.Cfg, d.Log, repository.NewHallRepo(db)), true,
		"cinema_halls")
	mount(g, d, "movies", handler.NewMovieHandler(d.Cfg, d.Log, repository.NewMovieRepo(db)), true,
		"movies")
	// sessions report live availability and are never cached
	mount(g, d, "movie_sessions", handler.NewSessionHandler(d.Cfg, d.Log, repository.NewSessionRepo(db)), false)
}

func mount(g *echo.Group, d Deps, name string, h resource, cached bool, invalidates ...string) {
	var reads []echo.MiddlewareFunc
	if cached {
		reads = append(reads, middleware.NewRedisCache(d.Cfg.Cache, d.Redis, name))
	}
	g.GET("/"+name, h.List, reads...)
	g.GET("/"+name+"/:id", h.Get, reads...)

	writes := []echo.MiddlewareFunc{
		middleware.JWTAuth(d.Cfg.Auth.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	}
	if len(invalidates) > 0 {
		writes = append(writes, middleware.InvalidateCache(d.Cfg.Cache, d.Redis, d.Log, invalidates...))
	}
	g.POST("/"+name, h.Create, writes...)
	g.PUT("/"+name+"/:id", h.Update, writes...)
	g.PATCH("/"+name+"/:id", h.Update, writes...)
	g.DELETE("/"+name+"/:id", h.Delete, writes...)
}
