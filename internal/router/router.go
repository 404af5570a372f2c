// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// Deps is everything the routes need.  Redis may be nil, which disables
// the response cache and the rate limiter.
type Deps struct {
	Cfg    config.Config
	Log    *zap.Logger
	DB     *sql.DB
	Redis  *redis.Client
	Orders *service.OrderService
}

// New builds a configured echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	handler.Configure(e, d.Log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.NewTokenBucket(d.Cfg.Rate, d.Redis, d.Log))

	e.GET("/healthz", handler.Health(d.DB))
	RegisterAuth(e, handler.NewAuthHandler(d.Cfg, d.Log, repository.NewUserRepo(d.DB), repository.NewTokenRepo(d.DB)), d.Cfg.Auth.JWTSecret)

	api := e.Group("/api/cinema")
	RegisterCatalog(api, d)
	RegisterOrders(api, handler.NewOrderHandler(d.Cfg, d.Log, d.Orders), d.Cfg.Auth.JWTSecret)
	return e
}

// RegisterAuth registers the account endpoints under /api/user.  Only /me
// requires an access token; logout accepts either a refresh token or a
// bearer.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/user")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}
