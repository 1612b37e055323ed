package main

import (
	"os"
	"strings"

	"github.com/nimasrn/purchase-ledger/internal/config"
	"github.com/nimasrn/purchase-ledger/pkg/logger"
	"github.com/nimasrn/purchase-ledger/pkg/pg"
)

// usage: cli [up|down|status] --env=.env --dir=./migrations
func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	pgConf := config.Get().PostgresWrite()
	dir := getMigrationPath()

	switch command() {
	case "up":
		err = pg.Migrate(pgConf, dir)
	case "down":
		err = pg.Rollback(pgConf, dir)
	case "status":
		err = pg.MigrationStatus(pgConf, dir)
	default:
		logger.Error("unknown command, expected up, down or status", "command", command())
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migration: command failed", "command", command(), "error", err)
		os.Exit(1)
	}
}

func command() string {
	for _, v := range os.Args[1:] {
		if !strings.HasPrefix(v, "--") {
			return v
		}
	}
	return "up"
}

func flagValue(name string) string {
	for _, v := range os.Args[1:] {
		if strings.HasPrefix(v, name+"=") {
			return strings.TrimPrefix(v, name+"=")
		}
	}
	return ""
}

func getEnvPath() string {
	path := flagValue("--env")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warn("env file not found, using the process environment", "path", path)
		return ""
	}
	return path
}

func getMigrationPath() string {
	if dir := flagValue("--dir"); dir != "" {
		return dir
	}
	return "./migrations"
}
