// Command server starts the LevelUpLife HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/leveluplife/server/internal/config"
	"github.com/leveluplife/server/internal/migrate"
	"github.com/leveluplife/server/internal/server/httpserver"
	"github.com/leveluplife/server/internal/service"
	"github.com/leveluplife/server/internal/store"
	"github.com/leveluplife/server/internal/store/postgres"
	"github.com/leveluplife/server/internal/store/sqlite"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, prepares storage, and runs the HTTP server until
// the process is signalled.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		users   store.UserStore
		states  store.StateStore
		friends store.FriendStore
	)
	if cfg.PostgresDSN() {
		if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		defer db.Close()
		users = postgres.NewUserStore(db)
		states = postgres.NewStateStore(db)
		friends = postgres.NewFriendStore(db)
	} else {
		db, err := sqlite.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("sqlite open", zap.Error(err))
		}
		defer db.Close()
		users = sqlite.NewUserStore(db)
		states = sqlite.NewStateStore(db)
		friends = sqlite.NewFriendStore(db)
	}

	// Services
	accounts := service.NewAccountService(users, cfg.BcryptCost)
	sessions := service.NewSessions(cfg.JWTSecret, cfg.TokenTTL)
	stateSvc := service.NewStateService(states)
	friendSvc := service.NewFriendService(users, friends)
	rankSvc := service.NewRankService(states)

	api := httpserver.New(logger, accounts, sessions, stateSvc, friendSvc, rankSvc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(cfg.Origins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
