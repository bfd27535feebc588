package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"property-ingest/internal/config"
	"property-ingest/internal/db"
	"property-ingest/internal/drive"
	"property-ingest/internal/model"
	"property-ingest/internal/storage"
	"property-ingest/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const folderURL = "https://drive.google.com/drive/folders/abc123"

func sheetBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"S.No", "City", "Location", "Project Name", "Property Type", "Configuration", "Price"},
		{1, "Pune", "Baner", "Orchid", "Apartment", "2 BHK", 7500000},
		{2, "Pune", "Wakad", "Palm Grove", "Villa", "4 BHK", 21000000},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

type fixture struct {
	store     *db.MemoryStore
	runs      db.RunRepository
	storage   *storage.MemoryStorage
	processor *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := db.NewMemoryStore()
	runs := db.NewRunRepository(store)
	objects := storage.NewMemoryStorage()
	lister := &drive.StaticLister{Files: []model.DriveFile{{ID: "f1", Name: "1-orchid-1.jpg", URL: "https://img/f1"}}}

	cfg := config.Default()
	cfg.Seeding.RandomSeed = 1

	return &fixture{
		store:     store,
		runs:      runs,
		storage:   objects,
		processor: NewProcessor(cfg, store, runs, objects, lister),
	}
}

func (f *fixture) createRun(t *testing.T, job model.IngestionJob) {
	t.Helper()
	require.NoError(t, f.runs.CreateRun(context.Background(), &model.Run{
		ID: job.RunID, Kind: job.Kind, SheetKey: job.SheetKey, FolderURL: job.FolderURL,
	}))
}

func TestProcessor_BulkInsert(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.storage.Upload(ctx, "sheets/a.xlsx", bytes.NewReader(sheetBytes(t)), ""))

	job := model.IngestionJob{RunID: "run-1", Kind: model.JobBulkInsert, SheetKey: "sheets/a.xlsx", FolderURL: folderURL}
	f.createRun(t, job)

	require.NoError(t, f.processor.Process(ctx, job))

	run, err := f.runs.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, run.Status)
	assert.Nil(t, run.ErrorMessage)

	var result model.BatchResult
	require.NoError(t, json.Unmarshal(run.Result, &result))
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.NoImage)
	assert.Equal(t, 2, f.store.Count(model.TableProperties))
}

func TestProcessor_MissingSheetFailsRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	job := model.IngestionJob{RunID: "run-2", Kind: model.JobBulkUpdateMedia, SheetKey: "sheets/missing.xlsx", FolderURL: folderURL}
	f.createRun(t, job)

	err := f.processor.Process(ctx, job)
	require.Error(t, err)
	assert.True(t, errors.IsRunStart(err))
	assert.ErrorIs(t, err, errors.ErrSheetNotFound)

	run, err := f.runs.GetRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, model.RunFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "download_sheet")
}

func TestProcessor_BadFolderFailsRunWithoutWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.storage.Upload(ctx, "sheets/a.xlsx", bytes.NewReader(sheetBytes(t)), ""))

	job := model.IngestionJob{RunID: "run-3", Kind: model.JobBulkInsert, SheetKey: "sheets/a.xlsx", FolderURL: "https://example.com/x"}
	f.createRun(t, job)

	err := f.processor.Process(ctx, job)
	assert.ErrorIs(t, err, errors.ErrInvalidFolderURL)
	assert.Zero(t, f.store.Count(model.TableProperties))

	run, err := f.runs.GetRun(ctx, "run-3")
	require.NoError(t, err)
	assert.Equal(t, model.RunFailed, run.Status)
}

func TestProcessor_Seed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	job := model.IngestionJob{RunID: "run-4", Kind: model.JobSeed}
	f.createRun(t, job)

	require.NoError(t, f.processor.Process(ctx, job))

	run, err := f.runs.GetRun(ctx, "run-4")
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, run.Status)

	var result model.SeedResult
	require.NoError(t, json.Unmarshal(run.Result, &result))
	assert.Len(t, result.Phases, 4)
	assert.Positive(t, result.TotalInserted())
}
