// CanaryScope orchestrator: runs the pipeline worker pool, scraper,
// scheduler daemon, retention cleanup loop, and HTTP control surface in a
// single process.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/canaryscope/canaryscope/pkg/adapters"
	"github.com/canaryscope/canaryscope/pkg/analyze"
	"github.com/canaryscope/canaryscope/pkg/api"
	"github.com/canaryscope/canaryscope/pkg/cleanup"
	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/database"
	"github.com/canaryscope/canaryscope/pkg/docket"
	"github.com/canaryscope/canaryscope/pkg/entitylink"
	"github.com/canaryscope/canaryscope/pkg/media"
	"github.com/canaryscope/canaryscope/pkg/pipeline"
	"github.com/canaryscope/canaryscope/pkg/scheduler"
	"github.com/canaryscope/canaryscope/pkg/scraper"
	"github.com/canaryscope/canaryscope/pkg/stages"
	"github.com/canaryscope/canaryscope/pkg/store"
	"github.com/canaryscope/canaryscope/pkg/transcribe"
	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		slog.Info("loaded environment", "path", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "release"))

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		slog.Error("failed to load database config", "error", err)
		os.Exit(1)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("error closing database client", "error", err)
		}
	}()
	slog.Info("connected to database")

	hearings := store.NewHearingStore(dbClient.Client)
	jobs := store.NewJobStore(dbClient.Client)
	sources := store.NewSourceStore(dbClient.Client)
	dockets := store.NewDocketStore(dbClient.Client)
	entities := store.NewEntityStore(dbClient.Client)
	artifacts := store.NewArtifactStore()
	schedules := store.NewScheduleStore(dbClient.Client)
	pipelineState := store.NewPipelineStateStore(dbClient.Client)

	registry := adapters.DefaultRegistry(cfg.Scraper)
	scr := scraper.New(sources, hearings, registry)

	fetcher := media.NewFetcher(cfg.Providers.StorageDir)
	transcriber := transcribe.NewService(cfg.Providers, entities)
	analyzer := analyze.NewAnalyzer(cfg.Providers, hearings, artifacts)

	patterns := docket.NewPatternRegistry()
	docketExtractor := docket.NewExtractor(patterns, cfg.Docket)
	docketService := docket.NewService(docketExtractor, dockets, hearings)

	linker := entitylink.NewLinker(cfg.Entity)
	entityService := entitylink.NewService(linker, entities, hearings)

	runners := map[pipeline.Stage]pipeline.StageRunner{
		pipeline.StageTranscribe: stages.NewTranscribeRunner(fetcher, transcriber, hearings, artifacts),
		pipeline.StageAnalyze:    analyzer,
		pipeline.StageExtract:    stages.NewExtractRunner(docketService, entityService),
	}

	pool := pipeline.NewWorkerPool("canaryscope", dbClient.Client, cfg.Pipeline, hearings, jobs, pipelineState, runners)
	sched := scheduler.New(cfg.Scheduler, schedules, pipelineState, pool, scr)
	cleanupService := cleanup.NewService(cfg.Retention, hearings)
	apiServer := api.NewServer(dbClient, pool, pipelineState, scr)

	if err := pool.Start(ctx); err != nil {
		slog.Error("failed to start pipeline worker pool", "error", err)
		os.Exit(1)
	}
	sched.Start(ctx)
	cleanupService.Start(ctx)

	go func() {
		slog.Info("api server listening", "port", httpPort)
		if err := apiServer.Start(":" + httpPort); err != nil {
			slog.Error("api server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutdown signal received, stopping gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down api server", "error", err)
	}

	cleanupService.Stop()
	sched.Stop()
	pool.Stop()

	slog.Info("shutdown complete")
}
