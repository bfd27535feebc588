package drive

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"property-ingest/internal/config"
	"property-ingest/internal/logger"
	"property-ingest/internal/model"
	"property-ingest/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMIME  = "application/vnd.google-apps.folder"
	driveFields = "nextPageToken, files(id, name, mimeType, thumbnailLink)"
)

type GoogleLister struct {
	svc *drive.Service
	cfg config.DriveConfig
	log zerolog.Logger
}

// NewGoogleLister authenticates with the configured service account key file,
// or with Application Default Credentials when none is set. Extra client
// options replace the credential lookup entirely.
func NewGoogleLister(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*GoogleLister, error) {
	log := logger.Get().With().Str("component", "drive").Logger()

	if len(opts) == 0 {
		if cfg.Drive.CredentialsFile != "" {
			data, err := os.ReadFile(cfg.Drive.CredentialsFile)
			if err != nil {
				return nil, fmt.Errorf("reading service account file %q: %w", cfg.Drive.CredentialsFile, err)
			}
			creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveReadonlyScope)
			if err != nil {
				return nil, fmt.Errorf("parsing service account credentials: %w", err)
			}
			opts = append(opts, option.WithCredentials(creds))
			log.Info().Msg("Drive auth: service account key file")
		} else {
			opts = append(opts, option.WithScopes(drive.DriveReadonlyScope))
			log.Info().Msg("Drive auth: application default credentials")
		}
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Drive service: %w", err)
	}

	return &GoogleLister{svc: svc, cfg: cfg.Drive, log: log}, nil
}

// ListFiles returns every non-folder file directly under folderID, across
// all result pages. Subfolders are not descended into.
func (g *GoogleLister) ListFiles(ctx context.Context, folderID string) ([]model.DriveFile, error) {
	var (
		result    []model.DriveFile
		pageToken string
		pages     int
	)

	for {
		req := g.svc.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and trashed = false", folderID)).
			Fields(driveFields).
			PageSize(g.cfg.PageSize).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		var resp *drive.FileList
		err := g.withRetry(ctx, func() error {
			var e error
			resp, e = req.Do()
			return e
		})
		if err != nil {
			return nil, fmt.Errorf("%w: folder %s page %d: %v", errors.ErrFileListing, folderID, pages, err)
		}
		pages++

		for _, f := range resp.Files {
			if f.MimeType == folderMIME {
				g.log.Debug().Str("folder", f.Name).Msg("Skipping subfolder")
				continue
			}
			result = append(result, model.DriveFile{
				ID:           f.Id,
				Name:         f.Name,
				URL:          fmt.Sprintf(g.cfg.ImageURLTemplate, f.Id),
				ThumbnailURL: f.ThumbnailLink,
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	g.log.Info().
		Str("folder_id", folderID).
		Int("files", len(result)).
		Int("pages", pages).
		Msg("Listed drive folder")

	return result, nil
}

func (g *GoogleLister) withRetry(ctx context.Context, fn func() error) error {
	attempts := g.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetryable(err) {
			return err
		}
		if attempt == attempts {
			return fmt.Errorf("after %d attempts: %w", attempts, err)
		}

		wait := time.Duration(float64(g.cfg.RetryDelay) * math.Pow(2, float64(attempt-1)))
		g.log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("Drive request throttled, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil
}

// isRetryable reports whether a Drive API error is a rate limit or a
// server-side failure.
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
