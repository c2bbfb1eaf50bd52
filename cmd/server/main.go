// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/daketi/internal/cache"
	"github.com/jason-s-yu/daketi/internal/config"
	"github.com/jason-s-yu/daketi/internal/database"
	"github.com/jason-s-yu/daketi/internal/handlers"
	"github.com/jason-s-yu/daketi/internal/room"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using debug", cfg.LogLevel)
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := room.Options{
		AnimationDelay: cfg.AnimationDelay,
		IdleTTL:        cfg.RoomIdleTTL,
	}

	// both stores are optional; leave the interface nil when disabled
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, action history disabled")
		} else {
			defer rdb.Close()
			opts.Recorder = cache.NewHistorian(rdb, cfg.HistorianQueueName)
			logger.Infof("Publishing actions to redis queue %s", cfg.HistorianQueueName)
		}
	}
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err == nil {
			err = database.EnsureSchema(ctx, pool)
			if err != nil {
				pool.Close()
			}
		}
		if err != nil {
			logger.WithError(err).Warn("postgres unavailable, game results disabled")
		} else {
			defer pool.Close()
			opts.Results = database.NewStore(pool)
			logger.Info("Recording game results to postgres")
		}
	}

	gs := handlers.NewGameServer(logger, opts)
	go gs.Rooms.RunJanitor(ctx, cfg.JanitorInterval)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(logger, gs),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("shutdown")
		}
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
}
