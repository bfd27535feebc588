package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"property-ingest/internal/config"
	"property-ingest/internal/model"
	"property-ingest/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestExtractFolderID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"plain", "https://drive.google.com/drive/folders/1AbC_d-9", "1AbC_d-9", false},
		{"share suffix", "https://drive.google.com/drive/u/0/folders/XyZ123?usp=sharing", "XyZ123", false},
		{"file link", "https://drive.google.com/file/d/abc/view", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFolderID(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidFolderURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func testConfig() *config.Config {
	return &config.Config{Drive: config.DriveConfig{
		ImageURLTemplate: "https://img.example/%s",
		PageSize:         2,
		RetryAttempts:    3,
		RetryDelay:       time.Millisecond,
	}}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestGoogleLister_PaginatesAndSkipsFolders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"nextPageToken": "p2",
				"files": []map[string]any{
					{"id": "f1", "name": "3-Lakeview-1.jpg", "mimeType": "image/jpeg", "thumbnailLink": "https://thumb/f1"},
					{"id": "d1", "name": "old", "mimeType": folderMIME},
				},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"files": []map[string]any{
				{"id": "f2", "name": "3-Lakeview-2.jpg", "mimeType": "image/jpeg"},
			},
		})
	}))
	defer srv.Close()

	lister, err := NewGoogleLister(context.Background(), testConfig(),
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	files, err := lister.ListFiles(context.Background(), "folder-1")
	require.NoError(t, err)
	assert.Equal(t, []model.DriveFile{
		{ID: "f1", Name: "3-Lakeview-1.jpg", URL: "https://img.example/f1", ThumbnailURL: "https://thumb/f1"},
		{ID: "f2", Name: "3-Lakeview-2.jpg", URL: "https://img.example/f2"},
	}, files)
}

func TestGoogleLister_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"error": map[string]any{"code": 503, "message": "backend unavailable"},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"files": []map[string]any{{"id": "f1", "name": "1-a-1.png", "mimeType": "image/png"}},
		})
	}))
	defer srv.Close()

	lister, err := NewGoogleLister(context.Background(), testConfig(),
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	files, err := lister.ListFiles(context.Background(), "folder-1")
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGoogleLister_ForbiddenIsFatal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]any{"code": 403, "message": "no access"},
		})
	}))
	defer srv.Close()

	lister, err := NewGoogleLister(context.Background(), testConfig(),
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	_, err = lister.ListFiles(context.Background(), "folder-1")
	assert.ErrorIs(t, err, errors.ErrFileListing)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStaticLister(t *testing.T) {
	l := &StaticLister{Files: []model.DriveFile{{ID: "a", Name: "1-x-1.jpg"}}}
	files, err := l.ListFiles(context.Background(), "any")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.ListFiles(ctx, "any")
	assert.ErrorIs(t, err, context.Canceled)
}
