package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jelson/sensornode/internal/collector"
	"github.com/jelson/sensornode/internal/logging"
)

var version = "dev"
var appName = "collector"

func main() {
	configPath := flag.String("config", "collector.yaml", "path to config file")
	flag.Parse()

	cfg, err := collector.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	level := parseLevel(cfg.LogLevel)
	logger := logging.New(cfg.AppEnv, level, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"addr", cfg.ListenAddr,
		"db", cfg.SQLitePath,
	)

	store, err := collector.OpenStore(cfg.SQLitePath)
	if err != nil {
		slog.Error("open store failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("close store", "err", err)
		}
	}()

	mux := collector.NewMux(cfg, store, slog.Default())

	if cfg.CertPath != "" {
		err = http.ListenAndServeTLS(cfg.ListenAddr, cfg.CertPath, cfg.KeyPath, mux)
	} else {
		err = http.ListenAndServe(cfg.ListenAddr, mux)
	}
	slog.Error("server stopped", "err", err)
	os.Exit(1)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
