package pipeline

import (
	"context"
	"fmt"
	"time"

	"property-ingest/internal/config"
	"property-ingest/internal/db"
	"property-ingest/internal/logger"
	"property-ingest/internal/metrics"
	"property-ingest/internal/model"

	"github.com/rs/zerolog"
)

// Engine writes built listings in fixed-size chunks, one InsertMany per
// chunk. A failed chunk is recorded whole and the engine moves on.
type Engine struct {
	store   db.Store
	timeout time.Duration
	log     zerolog.Logger
}

func NewEngine(store db.Store, timeout time.Duration) *Engine {
	return &Engine{
		store:   store,
		timeout: timeout,
		log:     logger.Get(),
	}
}

func (e *Engine) WithLogger(log zerolog.Logger) *Engine {
	e.log = log
	return e
}

// Persist inserts entities in input order. Rows in the result line up with
// entities; Errors carries (chunk index, error) pairs, zero-based.
func (e *Engine) Persist(ctx context.Context, entities []model.IngestEntity, batchSize int) model.BatchResult {
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}

	result := model.BatchResult{
		Total: len(entities),
		Rows:  make([]model.RowOutcome, len(entities)),
	}

	for start, chunk := 0, 0; start < len(entities); start, chunk = start+batchSize, chunk+1 {
		end := start + batchSize
		if end > len(entities) {
			end = len(entities)
		}
		batch := entities[start:end]
		result.Batches++

		records := make([]model.Record, len(batch))
		for i, entity := range batch {
			records[i] = entity.Record()
		}

		inserted, err := e.insertChunk(ctx, records)
		if err != nil {
			e.log.Error().Err(err).
				Int("chunk", chunk).
				Int("size", len(batch)).
				Msg("Chunk insert failed, continuing with next chunk")

			result.Errored += len(batch)
			result.Errors = append(result.Errors, model.ItemError{Index: chunk, Error: err.Error()})
			for i, entity := range batch {
				result.Rows[start+i] = model.RowOutcome{
					SNo:    entity.SNo,
					Slug:   entity.Slug,
					Status: model.RowErrored,
					Chunk:  chunk,
					Error:  err.Error(),
				}
			}
			metrics.BatchesPersisted.WithLabelValues("failed").Inc()
			continue
		}

		var note string
		if inserted != len(batch) {
			note = fmt.Sprintf("store reported %d of %d rows inserted", inserted, len(batch))
			e.log.Warn().Int("chunk", chunk).Int("expected", len(batch)).Int("inserted", inserted).Msg("Store reported a different insert count")
			result.Warnings = append(result.Warnings, model.ItemError{Index: chunk, Error: note})
		}
		result.Inserted += inserted
		for i, entity := range batch {
			result.Rows[start+i] = model.RowOutcome{
				SNo:    entity.SNo,
				Slug:   entity.Slug,
				Status: model.RowInserted,
				Chunk:  chunk,
				Note:   note,
			}
		}
		metrics.BatchesPersisted.WithLabelValues("inserted").Inc()
		e.log.Debug().Int("chunk", chunk).Int("inserted", inserted).Msg("Chunk inserted")
	}

	return result
}

func (e *Engine) insertChunk(ctx context.Context, records []model.Record) (int, error) {
	callCtx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.BatchDuration.Observe(time.Since(start).Seconds()) }()

	return e.store.InsertMany(callCtx, model.TableProperties, records)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
