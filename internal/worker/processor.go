package worker

import (
	"context"
	"fmt"
	"io"

	"property-ingest/internal/config"
	"property-ingest/internal/db"
	"property-ingest/internal/drive"
	"property-ingest/internal/excel"
	"property-ingest/internal/logger"
	"property-ingest/internal/metrics"
	"property-ingest/internal/model"
	"property-ingest/internal/pipeline"
	"property-ingest/internal/seed"
	"property-ingest/internal/storage"
	"property-ingest/pkg/errors"

	"github.com/rs/zerolog"
)

// Processor executes one queued job end to end and records its outcome on
// the run record. It holds no per-job state and may run jobs concurrently.
type Processor struct {
	cfg      *config.Config
	store    db.Store
	runs     db.RunRepository
	storage  storage.Storage
	parser   excel.ParsingStrategy
	pipeline *pipeline.Pipeline
	log      zerolog.Logger
}

func NewProcessor(
	cfg *config.Config,
	store db.Store,
	runs db.RunRepository,
	storage storage.Storage,
	lister drive.Lister,
) *Processor {
	return &Processor{
		cfg:      cfg,
		store:    store,
		runs:     runs,
		storage:  storage,
		parser:   excel.NewExcelStrategy(),
		pipeline: pipeline.New(cfg, store, lister),
		log:      logger.Get(),
	}
}

// Process returns an error only when the run could not be completed; the
// run record carries the details either way.
func (p *Processor) Process(ctx context.Context, job model.IngestionJob) error {
	log := p.log.With().Str("run_id", job.RunID).Str("kind", string(job.Kind)).Logger()

	if err := p.runs.UpdateRunStatus(ctx, job.RunID, model.RunRunning, nil, nil); err != nil {
		log.Error().Err(err).Msg("Failed to mark run as running")
		return err
	}

	log.Info().Msg("Processing job")
	result, err := p.execute(ctx, job, log)

	status := model.RunCompleted
	var errorMsg *string
	if err != nil {
		status = model.RunFailed
		msg := err.Error()
		errorMsg = &msg
		log.Error().Err(err).Msg("Job failed")
	}
	metrics.JobsProcessed.WithLabelValues(string(job.Kind), string(status)).Inc()

	// The run record must be written even if the job context was cancelled.
	if updErr := p.runs.UpdateRunStatus(context.WithoutCancel(ctx), job.RunID, status, result, errorMsg); updErr != nil {
		log.Error().Err(updErr).Msg("Failed to update run status")
		if err == nil {
			err = updErr
		}
	}

	if err == nil {
		log.Info().Msg("Job completed")
	}
	return err
}

func (p *Processor) execute(ctx context.Context, job model.IngestionJob, log zerolog.Logger) (any, error) {
	switch job.Kind {
	case model.JobBulkInsert:
		rows, err := p.loadSheet(ctx, job.SheetKey, log)
		if err != nil {
			return nil, err
		}
		result, err := p.pipeline.BulkInsert(ctx, rows, job.FolderURL)
		return result, err

	case model.JobBulkUpdateMedia:
		rows, err := p.loadSheet(ctx, job.SheetKey, log)
		if err != nil {
			return nil, err
		}
		summary, err := p.pipeline.BulkUpdateMedia(ctx, rows, job.FolderURL)
		return summary, err

	case model.JobSeed:
		cascade, err := seed.NewCascade(p.cfg, p.store)
		if err != nil {
			return nil, err
		}
		return cascade.Run(ctx), nil

	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownJobKind, job.Kind)
	}
}

func (p *Processor) loadSheet(ctx context.Context, key string, log zerolog.Logger) ([]model.SourceRow, error) {
	log.Debug().Str("sheet_key", key).Msg("Downloading sheet")
	reader, err := p.storage.Download(ctx, key)
	if err != nil {
		return nil, errors.NewRunStartError("download_sheet", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewRunStartError("download_sheet", err)
	}

	rows, err := excel.ParseAndValidate(ctx, p.parser, data)
	if err != nil {
		return nil, errors.NewRunStartError("parse_sheet", err)
	}

	log.Debug().Int("row_count", len(rows)).Msg("Sheet parsed")
	return rows, nil
}
