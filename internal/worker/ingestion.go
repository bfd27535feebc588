package worker

import (
	"context"

	"property-ingest/internal/config"
	"property-ingest/internal/logger"
	"property-ingest/internal/queue"

	"github.com/rs/zerolog"
)

// IngestionWorker consumes the ingestion queue and hands each job to the
// pool. A message that cannot be decoded or scheduled is dead-lettered.
type IngestionWorker struct {
	cfg        *config.Config
	processor  *Processor
	consumer   *queue.Consumer
	workerPool *WorkerPool
	log        zerolog.Logger
}

func NewIngestionWorker(
	cfg *config.Config,
	processor *Processor,
	redisClient *queue.RedisClient,
) *IngestionWorker {
	return &IngestionWorker{
		cfg:        cfg,
		processor:  processor,
		consumer:   queue.NewConsumer(redisClient, cfg),
		workerPool: NewWorkerPool(cfg.Workers.Ingestion.Count),
		log:        logger.Get(),
	}
}

func (w *IngestionWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting ingestion worker")

	w.workerPool.Start(ctx)

	return w.consumer.ConsumeIngestionQueue(ctx, w.handleMessage)
}

func (w *IngestionWorker) Stop() {
	w.log.Info().Msg("Stopping ingestion worker")
	w.workerPool.Stop()
}

func (w *IngestionWorker) handleMessage(ctx context.Context, data []byte) error {
	job, err := queue.DecodeJob(data)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to decode ingestion job")
		return err
	}

	w.log.Info().Str("run_id", job.RunID).Str("kind", string(job.Kind)).Msg("Scheduling ingestion job")

	return w.workerPool.Submit(ctx, func(ctx context.Context) error {
		return w.processor.Process(ctx, job)
	})
}
