package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/purchase-ledger/internal/config"
	"github.com/nimasrn/purchase-ledger/internal/handlers"
	"github.com/nimasrn/purchase-ledger/internal/queue"
	"github.com/nimasrn/purchase-ledger/internal/services"
	xhttp "github.com/nimasrn/purchase-ledger/pkg/http"
	"github.com/nimasrn/purchase-ledger/pkg/logger"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
	"github.com/nimasrn/purchase-ledger/pkg/prom"
	"github.com/nimasrn/purchase-ledger/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			logger.Warn("invalid log level", "level", cfg.LogLevel, "error", err)
		}
	}
	logger.Info("starting purchase ledger api", "version", version, "commit", commit, "date", date)

	option := xhttp.DefaultServerOption.WithTimeouts(
		cfg.HttpServerReadTimeout,
		cfg.HttpServerWriteTimeout,
		cfg.HttpServerReadBufferSize,
		cfg.HttpServerWriteBufferSize,
	)
	s := xhttp.NewServer(option)
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.TimeoutMiddleware(option.RequestTimeout))
	s.Use(xhttp.CompressMiddleware(option.CompressionLevel))

	pgDebug := cfg.AppEnv == "dev"
	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}
	defer db.Close()

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName + "-api",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	// cancellation is optional: purchases keep working without the stream
	var publisher services.CompensationPublisher
	q, err := queue.NewQueue(redisAdap, cfg.CompensationQueue())
	if err != nil {
		logger.Error("failed creating compensation queue, cancel is disabled", "error", err)
	} else {
		publisher = q
	}

	if cfg.MetricSystemEnable {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		if err := prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Error("failed to create prometheus metrics", "error", err)
			return
		}
		go prom.ListenAndServer(cfg.MetricsListenAddr, cfg.MetricsPath)
	}

	svc := services.New(db, publisher)
	healthService := services.NewHealthService(db, redisAdap)

	g := s.Router.Group(cfg.HttpBaseRequestUrl)
	handlers.RegisterUserRoutes(g, handlers.NewUserHandler(svc.Users))
	handlers.RegisterCategoryRoutes(g, handlers.NewCategoryHandler(svc.Categories))
	handlers.RegisterProductRoutes(g, handlers.NewProductHandler(svc.Products))
	handlers.RegisterTransactionRoutes(g, handlers.NewTransactionHandler(svc.Transactions, svc.TransactionItems, svc.Payments))
	handlers.RegisterPurchaseRoutes(g, handlers.NewPurchaseHandler(svc.Purchase))
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(healthService))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	done := make(chan struct{})
	go func() {
		s.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		logger.Warn("http-server shutdown timed out")
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, "--env=") {
			path := strings.TrimPrefix(v, "--env=")
			if _, err := os.Stat(path); err != nil {
				logger.Error("failed to open the passed env file", "path", path, "error", err)
				return ""
			}
			return path
		}
	}
	return ""
}
