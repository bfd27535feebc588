package model

import (
	"encoding/json"
	"time"
)

type JobKind string

const (
	JobBulkInsert      JobKind = "bulk_insert"
	JobBulkUpdateMedia JobKind = "bulk_update_media"
	JobSeed            JobKind = "seed"
)

func (k JobKind) Valid() bool {
	switch k {
	case JobBulkInsert, JobBulkUpdateMedia, JobSeed:
		return true
	}
	return false
}

// NeedsSheet reports whether the job reads a spreadsheet and a drive folder.
func (k JobKind) NeedsSheet() bool {
	return k == JobBulkInsert || k == JobBulkUpdateMedia
}

type IngestionJob struct {
	RunID     string  `json:"run_id"`
	Kind      JobKind `json:"kind"`
	SheetKey  string  `json:"sheet_key,omitempty"`
	FolderURL string  `json:"folder_url,omitempty"`
}

type CreateRunRequest struct {
	Kind      JobKind `json:"kind"`
	SheetKey  string  `json:"sheet_key"`
	FolderURL string  `json:"folder_url"`
}

type RunStatus string

const (
	RunQueued    RunStatus = "QUEUED"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// Run is the operator-visible record of one queued ingestion or seed job.
type Run struct {
	ID           string          `json:"id"`
	Kind         JobKind         `json:"kind"`
	Status       RunStatus       `json:"status"`
	SheetKey     string          `json:"sheet_key,omitempty"`
	FolderURL    string          `json:"folder_url,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type UploadResponse struct {
	SheetKey string `json:"sheet_key"`
	Size     int64  `json:"size"`
}
