package cli

import (
	"fmt"

	"property-ingest/internal/excel"
	"property-ingest/internal/pipeline"
	"property-ingest/internal/seed"

	"github.com/spf13/cobra"
)

const (
	modeInsert      = "insert"
	modeUpdateMedia = "update-media"
)

type sheetFlags struct {
	folderURL string
	imagesDir string
}

func newSheetCommand(root *rootFlags, mode string) *cobra.Command {
	flags := &sheetFlags{}

	cmd := &cobra.Command{
		Use:  mode + " <sheet.xlsx>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSheet(cmd, root, flags, mode, args[0])
		},
	}

	switch mode {
	case modeInsert:
		cmd.Short = "Insert every sheet row as a new listing"
	case modeUpdateMedia:
		cmd.Short = "Attach drive images to listings still showing the placeholder"
	}

	cmd.Flags().StringVar(&flags.folderURL, "folder", "", "drive folder URL holding the listing images")
	cmd.Flags().StringVar(&flags.imagesDir, "images-dir", "", "list images from a local directory instead of Google Drive")
	_ = cmd.MarkFlagRequired("folder")

	return cmd
}

func runSheet(cmd *cobra.Command, root *rootFlags, flags *sheetFlags, mode, sheetPath string) error {
	ctx := cmd.Context()

	cfg, err := root.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	data, err := readSheet(sheetPath)
	if err != nil {
		return err
	}
	rows, err := excel.ParseAndValidate(ctx, excel.NewExcelStrategy(), data)
	if err != nil {
		return fmt.Errorf("invalid sheet %s: %w", sheetPath, err)
	}

	store, closeStore, err := openStore(cfg, root.dryRun)
	if err != nil {
		return err
	}
	defer closeStore()

	lister, err := openLister(ctx, cfg, flags.imagesDir)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, store, lister)

	var result any
	switch mode {
	case modeInsert:
		result, err = p.BulkInsert(ctx, rows, flags.folderURL)
	default:
		result, err = p.BulkUpdateMedia(ctx, rows, flags.folderURL)
	}
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), result)
}

func newSeedCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert missing cities, micromarkets, developers and sample projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(cfg, root.dryRun)
			if err != nil {
				return err
			}
			defer closeStore()

			cascade, err := seed.NewCascade(cfg, store)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), cascade.Run(cmd.Context()))
		},
	}
}
