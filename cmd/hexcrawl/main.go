package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lawnchairsociety/hexcrawl/internal/config"
	"github.com/lawnchairsociety/hexcrawl/internal/database"
	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/layout"
	"github.com/lawnchairsociety/hexcrawl/internal/logger"
	"github.com/lawnchairsociety/hexcrawl/internal/metrics"
	"github.com/lawnchairsociety/hexcrawl/internal/server"
	"github.com/lawnchairsociety/hexcrawl/internal/walls"
)

func main() {
	configFile := flag.String("config", "data/hexcrawl.yaml", "Path to config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	seed := flag.Int64("seed", 0, "Generation seed (default: from config, or random when set to -1)")
	addr := flag.String("addr", "", "HTTP listen address (default: from config)")
	snapshotPath := flag.String("snapshot", "", "Write the finished layout to this YAML file (default: from config)")
	archive := flag.Bool("archive", false, "Archive the finished layout in the configured database")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, err := logger.LoadConfig(*loggingConfig)
	if err != nil {
		log.Printf("Failed to load logging config %s, using defaults: %v", *loggingConfig, err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Info("Starting hexcrawl")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}
	switch {
	case *seed == -1:
		cfg.Generator.Seed = time.Now().UnixNano()
		logger.Info("Generation seed selected", "seed", cfg.Generator.Seed, "random", true)
	case *seed != 0:
		cfg.Generator.Seed = *seed
		logger.Info("Generation seed selected", "seed", cfg.Generator.Seed, "random", false)
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if *snapshotPath != "" {
		cfg.SnapshotPath = *snapshotPath
	}
	if *archive {
		cfg.Storage.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	table, err := walls.Build()
	if err != nil {
		log.Fatalf("Failed to build wall table: %v", err)
	}

	gen, err := dungeon.NewGenerator(cfg.Generator, table)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	gen.Subscribe(metrics.NewGeneration(registry).Listener())

	var db *database.Database
	if cfg.Storage.Enabled {
		db, err = database.OpenWithConfig(cfg.Storage.Database)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		logger.Info("Layout archive initialized", "driver", cfg.Storage.Database.Driver)
	}

	srv := server.NewServer(&cfg.Server, gen, registry)
	if len(cfg.Server.WebSocket.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.Server.WebSocket.AllowedOrigins) == 1 && cfg.Server.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Server.WebSocket.AllowedOrigins)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		err := gen.Run(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			logger.Error("Generation stopped", "error", err)
			return
		}
		st := gen.State()
		logger.Info("Generation complete", "rooms", st.Rooms, "hallways", st.Hallways, "cells", st.Cells)
		persist(gen, cfg, db)
	}()

	logger.Info("hexcrawl running", "address", cfg.Server.Address, "seed", cfg.Generator.Seed)
	logger.Info("Press Ctrl+C to shutdown")

	<-ctx.Done()

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warning("Server shutdown incomplete", "error", err)
	}
	logger.Info("Server stopped")
}

// persist writes the finished layout to the snapshot file and the archive.
func persist(gen *dungeon.Generator, cfg *config.Config, db *database.Database) {
	snap := layout.Capture(gen.World(), gen.Config())

	if cfg.SnapshotPath != "" {
		if err := snap.Save(cfg.SnapshotPath); err != nil {
			logger.Error("Failed to save snapshot", "path", cfg.SnapshotPath, "error", err)
		} else {
			logger.Info("Snapshot saved", "path", cfg.SnapshotPath, "fingerprint", snap.Fingerprint())
		}
	}

	if db == nil {
		return
	}
	id, err := db.SaveLayout(snap)
	switch {
	case errors.Is(err, database.ErrLayoutExists):
		logger.Info("Layout already archived", "id", id)
	case err != nil:
		logger.Error("Failed to archive layout", "error", err)
	default:
		logger.Info("Layout archived", "id", id)
	}
}
