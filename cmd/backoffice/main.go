package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/purchase-ledger/internal/backoffice"
	"github.com/nimasrn/purchase-ledger/internal/config"
	"github.com/nimasrn/purchase-ledger/internal/queue"
	"github.com/nimasrn/purchase-ledger/internal/services"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/nimasrn/purchase-ledger/pkg/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.Load(argContainsEnvPath()); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg := config.Get()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(level)
	}

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed connecting to pg")
	}
	defer db.Close()

	// queue stats are optional
	var stats backoffice.QueueStats
	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName + "-backoffice",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, compensation stats disabled")
	} else if q, err := queue.NewQueue(redisAdap, cfg.CompensationQueue()); err != nil {
		log.Warn().Err(err).Msg("compensation queue unavailable")
	} else {
		stats = q
	}

	svc := services.New(db, nil)
	router := backoffice.SetupRouter(backoffice.NewHandler(svc.Reports, stats))

	srv := &http.Server{
		Addr:         cfg.BackofficeListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("backoffice started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down backoffice")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("backoffice forced to shutdown")
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, "--env=") {
			path := strings.TrimPrefix(v, "--env=")
			if _, err := os.Stat(path); err != nil {
				log.Error().Err(err).Str("path", path).Msg("failed to open the passed env file")
				return ""
			}
			return path
		}
	}
	return ""
}
