package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Storage holds uploaded spreadsheets between the API and the worker.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.ReadSeeker, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SheetKey builds a collision-free object key for an uploaded sheet,
// keeping the original extension.
func SheetKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return prefix + uuid.NewString() + ext
}
