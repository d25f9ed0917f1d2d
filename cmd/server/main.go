package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/jaki95/set-workshop/config"
	"github.com/jaki95/set-workshop/internal/server"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Config file path")
	flag.Parse()

	// Optional .env overlay; a missing file is fine.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded .env overlay")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	srv, err := server.New(cfg)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	slog.Info("Starting Set Workshop API server", "port", cfg.Server.Port)
	if err := srv.Start(cfg.Server.Port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
