package drive

import (
	"context"
	"fmt"
	"regexp"

	"property-ingest/internal/model"
	"property-ingest/pkg/errors"
)

// Lister lists the image files of one drive folder.
type Lister interface {
	ListFiles(ctx context.Context, folderID string) ([]model.DriveFile, error)
}

var folderIDRegex = regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`)

// ExtractFolderID pulls the folder id out of a share link such as
// https://drive.google.com/drive/folders/{id}?usp=sharing.
func ExtractFolderID(folderURL string) (string, error) {
	m := folderIDRegex.FindStringSubmatch(folderURL)
	if m == nil {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidFolderURL, folderURL)
	}
	return m[1], nil
}

// StaticLister serves a fixed listing. ingestctl uses it for local image
// directories and the pipeline tests use it in place of the Drive API.
type StaticLister struct {
	Files []model.DriveFile
	Err   error
}

func (s *StaticLister) ListFiles(ctx context.Context, folderID string) ([]model.DriveFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.DriveFile, len(s.Files))
	copy(out, s.Files)
	return out, nil
}
