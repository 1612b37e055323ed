package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/purchase-ledger/internal/config"
	"github.com/nimasrn/purchase-ledger/internal/processor"
	"github.com/nimasrn/purchase-ledger/internal/services"
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
	logger.Info("starting compensation processor", "version", version, "commit", commit, "date", date)

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}
	defer db.Close()

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName + "-processor",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err := prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go prom.ListenAndServer(cfg.MetricsListenAddr, cfg.MetricsPath)

	// the processor only compensates, it never publishes
	svc := services.New(db, nil)

	idempotencyConfig := processor.DefaultIdempotencyConfig()
	idempotencyConfig.MaxRetries = cfg.QueueMaxRetries
	idempotency := processor.NewIdempotencyService(redisAdap, idempotencyConfig)

	qc := cfg.CompensationQueue()
	if qc.ConsumerName == "" {
		qc.ConsumerName = hostname
	}
	service, err := processor.NewProcessorService(
		redisAdap,
		processor.NewCompensationProcessor(svc.Purchase, idempotency),
		processor.Options{Queue: qc, Consumers: cfg.ProcessorWorkers, Workers: cfg.ProcessorWorkers},
	)
	if err != nil {
		logger.Error("failed to create processor", "error", err)
		return
	}
	if err := service.Start(); err != nil {
		logger.Error("failed to start processor", "error", err)
		service.Stop()
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	service.Stop()
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
