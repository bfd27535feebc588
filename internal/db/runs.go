package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"property-ingest/internal/model"
	"property-ingest/pkg/errors"
)

// RunRepository tracks queued jobs in the ingest_runs table through the
// generic Store.
type RunRepository interface {
	CreateRun(ctx context.Context, run *model.Run) error
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, result any, errorMessage *string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
}

type runRepository struct {
	store Store
	now   func() time.Time
}

func NewRunRepository(store Store) RunRepository {
	return &runRepository{store: store, now: time.Now}
}

func (r *runRepository) CreateRun(ctx context.Context, run *model.Run) error {
	now := r.now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.Status == "" {
		run.Status = model.RunQueued
	}

	_, err := r.store.InsertMany(ctx, model.TableRuns, []model.Record{{
		"id":         run.ID,
		"kind":       string(run.Kind),
		"status":     string(run.Status),
		"sheet_key":  run.SheetKey,
		"folder_url": run.FolderURL,
		"created_at": now,
		"updated_at": now,
	}})
	return err
}

func (r *runRepository) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, result any, errorMessage *string) error {
	patch := model.Record{
		"status":     string(status),
		"updated_at": r.now().UTC(),
	}
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal run result: %w", err)
		}
		patch["result"] = json.RawMessage(data)
	}
	if errorMessage != nil {
		patch["error_message"] = *errorMessage
	}

	return r.store.Update(ctx, model.TableRuns, runID, patch)
}

func (r *runRepository) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	rec, err := r.store.FindOne(ctx, model.TableRuns, model.Filter{"id": runID})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: run %s", errors.ErrNotFound, runID)
	}

	run := &model.Run{
		ID:        rec.ID(),
		Kind:      model.JobKind(rec.String("kind")),
		Status:    model.RunStatus(rec.String("status")),
		SheetKey:  rec.String("sheet_key"),
		FolderURL: rec.String("folder_url"),
		CreatedAt: timeValue(rec["created_at"]),
		UpdatedAt: timeValue(rec["updated_at"]),
	}
	if result := rec.String("result"); result != "" {
		run.Result = json.RawMessage(result)
	}
	if msg := rec.String("error_message"); msg != "" {
		run.ErrorMessage = &msg
	}
	return run, nil
}

func timeValue(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse("2006-01-02 15:04:05", t)
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}
