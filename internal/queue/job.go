package queue

import (
	"encoding/json"
	"fmt"

	"property-ingest/internal/model"
	"property-ingest/pkg/errors"
)

// EncodeJob validates and serializes a job for the ingestion queue.
func EncodeJob(job model.IngestionJob) ([]byte, error) {
	if err := validateJob(job); err != nil {
		return nil, err
	}
	return json.Marshal(job)
}

// DecodeJob is the inverse of EncodeJob. A message that fails here is
// dead-lettered by the consumer.
func DecodeJob(data []byte) (model.IngestionJob, error) {
	var job model.IngestionJob
	if err := json.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return job, validateJob(job)
}

func validateJob(job model.IngestionJob) error {
	if job.RunID == "" {
		return errors.ValidationError{Field: "run_id", Value: job.RunID, Message: "run id is required"}
	}
	if !job.Kind.Valid() {
		return fmt.Errorf("%w: %q", errors.ErrUnknownJobKind, job.Kind)
	}
	if job.Kind.NeedsSheet() {
		if job.SheetKey == "" {
			return errors.ValidationError{Field: "sheet_key", Value: job.SheetKey, Message: "required for " + string(job.Kind)}
		}
		if job.FolderURL == "" {
			return errors.ValidationError{Field: "folder_url", Value: job.FolderURL, Message: "required for " + string(job.Kind)}
		}
	}
	return nil
}
