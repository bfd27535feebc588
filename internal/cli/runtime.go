package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"property-ingest/internal/config"
	"property-ingest/internal/db"
	"property-ingest/internal/drive"
	"property-ingest/internal/model"
)

// openStore returns the store a command writes to and a close function.
func openStore(cfg *config.Config, dryRun bool) (db.Store, func(), error) {
	if dryRun {
		return db.NewMemoryStore(), func() {}, nil
	}

	conn, err := db.NewConnection(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db.NewMySQLStore(conn), func() { conn.Close() }, nil
}

func openLister(ctx context.Context, cfg *config.Config, imagesDir string) (drive.Lister, error) {
	if imagesDir != "" {
		return dirLister(imagesDir)
	}
	return drive.NewGoogleLister(ctx, cfg)
}

// dirLister serves the files of a local directory as a drive listing, in
// name order, with file:// URLs.
func dirLister(dir string) (drive.Lister, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read images dir: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var files []model.DriveFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(abs, e.Name())
		files = append(files, model.DriveFile{ID: e.Name(), Name: e.Name(), URL: "file://" + filepath.ToSlash(p)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return &drive.StaticLister{Files: files}, nil
}
