package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFolderURL   = errors.New("invalid drive folder URL")
	ErrFileListing        = errors.New("drive file listing failed")
	ErrInvalidFileFormat  = errors.New("invalid file format")
	ErrSchemaValidation   = errors.New("schema validation failed")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidIdentifier  = errors.New("invalid table or column identifier")
	ErrUnknownJobKind     = errors.New("unknown job kind")
	ErrPhaseOrder         = errors.New("seed phase declared before its dependency")
	ErrEmptyBatch         = errors.New("empty batch")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrSheetNotFound      = errors.New("spreadsheet not found in storage")
	ErrMissingRequiredCol = errors.New("missing required column")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// RunStartError aborts a run before anything is persisted.
type RunStartError struct {
	Stage string
	Err   error
}

func (e RunStartError) Error() string {
	return fmt.Sprintf("run aborted at %s: %s", e.Stage, e.Err.Error())
}

func (e RunStartError) Unwrap() error {
	return e.Err
}

func NewRunStartError(stage string, err error) error {
	return RunStartError{
		Stage: stage,
		Err:   err,
	}
}

// IsRunStart reports whether err aborted a run before persistence.
func IsRunStart(err error) bool {
	var rse RunStartError
	return errors.As(err, &rse)
}

// Is and As are re-exported so callers importing this package under the
// name "errors" keep the standard helpers.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
