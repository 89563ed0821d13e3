package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arviel/mediactl/internal/cache"
	"github.com/arviel/mediactl/internal/config"
	"github.com/arviel/mediactl/internal/handlers"
	"github.com/arviel/mediactl/internal/repository"
	"github.com/arviel/mediactl/internal/resolve"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	db, err := repository.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	repo := repository.NewRepo(db)
	artifacts := cache.New(cfg, repo)
	resolver := resolve.NewResolver(cfg, repo, artifacts, logger)

	console := handlers.NewConsole(cfg, repo, resolver, os.Stdin, os.Stdout, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := console.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
