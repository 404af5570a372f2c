package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/logger"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(startupCtx, db, database.MySQL); err != nil {
			return err
		}
	}
	if created, err := service.EnsureAdmin(startupCtx, repository.NewUserRepo(db), cfg.Auth); err != nil {
		return err
	} else if created {
		zl.Info("admin account created", zap.String("email", repository.NormalizeEmail(cfg.Auth.AdminEmail)))
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		zl.Warn("redis unavailable, cache and rate limit disabled", zap.String("addr", cfg.Redis.Address()))
	} else {
		defer rdb.Close()
	}

	var pub service.Publisher = service.NopPublisher{}
	if cfg.Events.Enabled {
		pub = service.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue, zl)
		go func() {
			err := queue.StartOrderConsumer(ctx, queue.ConsumerConfig{
				URL:     cfg.Events.URL,
				Queue:   cfg.Events.Queue,
				LogPath: cfg.Events.ConsumerLog,
			}, zl)
			if err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("order consumer stopped", zap.Error(err))
			}
		}()
	}

	e := router.New(router.Deps{
		Cfg:    cfg,
		Log:    zl,
		DB:     db,
		Redis:  rdb,
		Orders: service.NewOrderService(repository.NewOrderRepo(db), pub, zl),
	})

	addr := ":" + cfg.Port
	srvErr := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		srvErr <- e.Start(addr)
	}()

	select {
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		zl.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	zl.Info("server stopped")
	return nil
}
