package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"property-ingest/internal/config"
	"property-ingest/internal/db"
	"property-ingest/internal/drive"
	"property-ingest/internal/logger"
	"property-ingest/internal/model"
	"property-ingest/internal/storage"
	"property-ingest/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// JobQueue is the producer side of the ingestion queue.
type JobQueue interface {
	EnqueueIngestionJob(ctx context.Context, job model.IngestionJob) error
	Depth(ctx context.Context) (pending, dead int64, err error)
}

type Handler struct {
	runs    db.RunRepository
	queue   JobQueue
	storage storage.Storage
	cfg     *config.Config
	log     zerolog.Logger
}

func NewHandler(
	runs db.RunRepository,
	queue JobQueue,
	storage storage.Storage,
	cfg *config.Config,
) *Handler {
	return &Handler{
		runs:    runs,
		queue:   queue,
		storage: storage,
		cfg:     cfg,
		log:     logger.Get(),
	}
}

// UploadSheet stores a multipart "file" upload and returns the key to
// reference it in a run.
func (h *Handler) UploadSheet(c *gin.Context) {
	limit := h.cfg.Server.MaxUploadMB << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A spreadsheet must be uploaded in the 'file' field"})
		return
	}

	if ext := strings.ToLower(path.Ext(fileHeader.Filename)); ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .xlsx spreadsheets are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}

	key := storage.SheetKey(h.cfg.Storage.S3.KeyPrefix, fileHeader.Filename)
	if err := h.storage.Upload(c.Request.Context(), key, bytes.NewReader(data), xlsxContentType); err != nil {
		h.log.Error().Err(err).Str("sheet_key", key).Msg("Failed to store sheet")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store sheet"})
		return
	}

	h.log.Info().
		Str("sheet_key", key).
		Str("filename", fileHeader.Filename).
		Int("size", len(data)).
		Msg("Sheet uploaded")

	c.JSON(http.StatusCreated, model.UploadResponse{SheetKey: key, Size: int64(len(data))})
}

// CreateRun records a QUEUED run and enqueues it for the ingestion worker.
func (h *Handler) CreateRun(c *gin.Context) {
	var req model.CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !req.Kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown run kind",
			"kinds": []model.JobKind{model.JobBulkInsert, model.JobBulkUpdateMedia, model.JobSeed},
		})
		return
	}

	ctx := c.Request.Context()

	if req.Kind.NeedsSheet() {
		if _, err := drive.ExtractFolderID(req.FolderURL); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.SheetKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sheet_key is required for " + string(req.Kind)})
			return
		}

		exists, err := h.storage.Exists(ctx, req.SheetKey)
		if err != nil {
			h.log.Error().Err(err).Str("sheet_key", req.SheetKey).Msg("Failed to check sheet")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sheet not found"})
			return
		}
	}

	run := &model.Run{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Status:    model.RunQueued,
		SheetKey:  req.SheetKey,
		FolderURL: req.FolderURL,
	}
	if err := h.runs.CreateRun(ctx, run); err != nil {
		h.log.Error().Err(err).Msg("Failed to create run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create run"})
		return
	}

	job := model.IngestionJob{
		RunID:     run.ID,
		Kind:      run.Kind,
		SheetKey:  run.SheetKey,
		FolderURL: run.FolderURL,
	}
	if err := h.queue.EnqueueIngestionJob(ctx, job); err != nil {
		h.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to enqueue run")
		msg := "failed to enqueue: " + err.Error()
		if updErr := h.runs.UpdateRunStatus(ctx, run.ID, model.RunFailed, nil, &msg); updErr != nil {
			h.log.Error().Err(updErr).Str("run_id", run.ID).Msg("Failed to mark run as failed")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue run"})
		return
	}

	h.log.Info().
		Str("run_id", run.ID).
		Str("kind", string(run.Kind)).
		Str("sheet_key", run.SheetKey).
		Msg("Run queued")

	c.JSON(http.StatusAccepted, run)
}

func (h *Handler) GetRun(c *gin.Context) {
	runID := c.Param("run_id")
	if _, err := uuid.Parse(runID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run ID"})
		return
	}

	run, err := h.runs.GetRun(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to get run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// HealthCheck reports 503 when the queue cannot be reached.
func (h *Handler) HealthCheck(c *gin.Context) {
	pending, dead, err := h.queue.Depth(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Queue unreachable during health check")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"service": h.cfg.App.Name,
			"version": h.cfg.App.Version,
			"error":   "queue unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
		"queue": gin.H{
			"pending":       pending,
			"dead_lettered": dead,
		},
	})
}
