package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"property-ingest/internal/config"
	"property-ingest/internal/db"
	"property-ingest/internal/drive"
	"property-ingest/internal/logger"
	"property-ingest/internal/queue"
	"property-ingest/internal/storage"
	"property-ingest/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting ingestion worker")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	store := db.NewMySQLStore(database)
	runs := db.NewRunRepository(store)

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	lister, err := drive.NewGoogleLister(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Drive client")
	}

	processor := worker.NewProcessor(cfg, store, runs, s3Storage, lister)
	ingestionWorker := worker.NewIngestionWorker(cfg, processor, redisClient)

	go func() {
		if err := ingestionWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("Ingestion worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down ingestion worker...")

	cancel()
	ingestionWorker.Stop()

	log.Info().Msg("Ingestion worker exited")
}
