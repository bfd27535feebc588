// Package pipeline runs the two sheet-driven entry points: bulk insert of
// new listings and media reconciliation of existing ones.
package pipeline

import (
	"context"
	"fmt"

	"property-ingest/internal/builder"
	"property-ingest/internal/config"
	"property-ingest/internal/db"
	"property-ingest/internal/drive"
	"property-ingest/internal/logger"
	"property-ingest/internal/matcher"
	"property-ingest/internal/metrics"
	"property-ingest/internal/model"
	"property-ingest/internal/slug"
	"property-ingest/pkg/errors"

	"github.com/rs/zerolog"
)

const (
	modeInsert = "insert"
	modeUpdate = "update_media"
)

// Pipeline is safe to share between concurrent runs; all per-run state
// (slug registry, matcher, result) is created inside each entry point.
type Pipeline struct {
	cfg      *config.Config
	store    db.Store
	lister   drive.Lister
	defaults builder.Defaults
	log      zerolog.Logger
}

func New(cfg *config.Config, store db.Store, lister drive.Lister) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		lister:   lister,
		defaults: builder.DefaultsFromConfig(cfg.Ingestion),
		log:      logger.Get(),
	}
}

// BulkInsert builds a listing for every row and persists them in chunks.
// The returned error is set only when the run could not start; everything
// after that is reported in the result.
func (p *Pipeline) BulkInsert(ctx context.Context, rows []model.SourceRow, folderURL string) (model.BatchResult, error) {
	files, folderID, err := p.listFiles(ctx, folderURL)
	if err != nil {
		return model.BatchResult{Total: len(rows)}, err
	}
	log := p.log.With().Str("mode", modeInsert).Str("folder_id", folderID).Logger()

	registry, err := p.loadSlugs(ctx)
	if err != nil {
		return model.BatchResult{Total: len(rows)}, errors.NewRunStartError("load_slugs", err)
	}

	b := builder.New(p.defaults, p.resolveAgent(ctx, log))
	m := matcher.New(p.cfg.Ingestion.PlaceholderURL).WithLogger(log)

	entities := make([]model.IngestEntity, len(rows))
	noImage := make([]bool, len(rows))
	for i, row := range rows {
		images := m.Match(row.SNo, files)
		noImage[i] = images.Empty()
		entities[i] = b.Build(row, images, registry)
	}

	log.Info().
		Int("rows", len(rows)).
		Int("files", len(files)).
		Str("agent_id", b.AgentID()).
		Msg("Built listings, persisting")

	engine := NewEngine(p.store, p.cfg.Ingestion.StoreTimeout).WithLogger(log)
	result := engine.Persist(ctx, entities, p.cfg.Ingestion.BatchSize)
	for i := range result.Rows {
		if noImage[i] {
			result.Rows[i].NoImage = true
			result.NoImage++
		}
		metrics.RowsProcessed.WithLabelValues(modeInsert, string(result.Rows[i].Status)).Inc()
	}

	log.Info().
		Int("total", result.Total).
		Int("inserted", result.Inserted).
		Int("errored", result.Errored).
		Int("no_image", result.NoImage).
		Int("batches", result.Batches).
		Msg("Bulk insert completed")

	return result, nil
}

// BulkUpdateMedia reconciles every row whose images include a main image
// (ordinal 1). Rows without one are counted as no_image and never touch the
// store, so the placeholder guard keeps matching them on a later run.
func (p *Pipeline) BulkUpdateMedia(ctx context.Context, rows []model.SourceRow, folderURL string) (model.ReconciliationSummary, error) {
	files, folderID, err := p.listFiles(ctx, folderURL)
	if err != nil {
		return model.ReconciliationSummary{Total: len(rows)}, err
	}
	log := p.log.With().Str("mode", modeUpdate).Str("folder_id", folderID).Logger()

	m := matcher.New(p.cfg.Ingestion.PlaceholderURL).WithLogger(log)
	rec := NewReconciler(p.store, p.cfg.Ingestion.PlaceholderURL, p.cfg.Ingestion.StoreTimeout).WithLogger(log)

	summary := model.ReconciliationSummary{
		Total: len(rows),
		Rows:  make([]model.RowOutcome, len(rows)),
	}

	for i, row := range rows {
		outcome := model.RowOutcome{SNo: row.SNo}

		images := m.Match(row.SNo, files)
		if images.Empty() || images.Main == p.cfg.Ingestion.PlaceholderURL {
			if !images.Empty() {
				log.Warn().Int("s_no", row.SNo).Int("images", len(images.Images)).Msg("No main image among matched files, row left untouched")
			}
			summary.NoImage++
			outcome.Status = model.RowNoImage
			outcome.NoImage = true
			summary.Rows[i] = outcome
			metrics.RowsProcessed.WithLabelValues(modeUpdate, string(outcome.Status)).Inc()
			continue
		}

		res := rec.Reconcile(ctx, row, images)
		switch res.Status {
		case model.UpdateUpdated:
			summary.Updated++
			outcome.Status = model.RowUpdated
		case model.UpdateNotFound:
			summary.NotFound++
			outcome.Status = model.RowNotFound
		default:
			summary.Errored++
			outcome.Status = model.RowErrored
			outcome.Error = res.Err.Error()
			summary.Errors = append(summary.Errors, model.ItemError{Index: i, Error: res.Err.Error()})
			log.Error().Err(res.Err).Int("s_no", row.SNo).Msg("Media update failed")
		}
		summary.Rows[i] = outcome
		metrics.RowsProcessed.WithLabelValues(modeUpdate, string(outcome.Status)).Inc()
	}

	log.Info().
		Int("total", summary.Total).
		Int("updated", summary.Updated).
		Int("not_found", summary.NotFound).
		Int("no_image", summary.NoImage).
		Int("errored", summary.Errored).
		Msg("Media update completed")

	return summary, nil
}

// listFiles resolves the folder and lists it once for the whole run. Both
// failures abort the run.
func (p *Pipeline) listFiles(ctx context.Context, folderURL string) ([]model.DriveFile, string, error) {
	folderID, err := drive.ExtractFolderID(folderURL)
	if err != nil {
		metrics.DriveListings.WithLabelValues("invalid_url").Inc()
		return nil, "", errors.NewRunStartError("folder_url", err)
	}

	listCtx, cancel := withTimeout(ctx, p.cfg.Drive.ListTimeout)
	defer cancel()

	files, err := p.lister.ListFiles(listCtx, folderID)
	if err != nil {
		metrics.DriveListings.WithLabelValues("failed").Inc()
		if !errors.Is(err, errors.ErrFileListing) {
			err = fmt.Errorf("%w: %v", errors.ErrFileListing, err)
		}
		return nil, folderID, errors.NewRunStartError("list_files", err)
	}

	metrics.DriveListings.WithLabelValues("ok").Inc()
	return files, folderID, nil
}

func (p *Pipeline) loadSlugs(ctx context.Context) (*slug.Registry, error) {
	callCtx, cancel := withTimeout(ctx, p.cfg.Ingestion.StoreTimeout)
	defer cancel()

	records, err := p.store.FindMany(callCtx, model.TableProperties, nil, []string{"slug"})
	if err != nil {
		return nil, err
	}

	existing := make([]string, 0, len(records))
	for _, r := range records {
		existing = append(existing, r.String("slug"))
	}
	return slug.NewRegistry(existing...), nil
}

// resolveAgent picks the first active agent once per run. Any lookup
// problem falls back to the configured agent id.
func (p *Pipeline) resolveAgent(ctx context.Context, log zerolog.Logger) string {
	callCtx, cancel := withTimeout(ctx, p.cfg.Ingestion.StoreTimeout)
	defer cancel()

	agent, err := p.store.FindOne(callCtx, model.TableAgents, model.Filter{"is_active": true})
	if err != nil {
		log.Warn().Err(err).Msg("Agent lookup failed, using fallback agent")
		return p.defaults.FallbackAgentID
	}
	if agent == nil || agent.ID() == "" {
		log.Info().Msg("No active agent, using fallback agent")
		return p.defaults.FallbackAgentID
	}
	return agent.ID()
}
