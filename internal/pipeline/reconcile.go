package pipeline

import (
	"context"
	"time"

	"property-ingest/internal/db"
	"property-ingest/internal/logger"
	"property-ingest/internal/model"
	"property-ingest/pkg/errors"

	"github.com/rs/zerolog"
)

// Reconciler attaches matched images to listings that were inserted before
// their media existed. Only listings still showing the placeholder image are
// candidates, so applying the same input twice never writes twice.
type Reconciler struct {
	store       db.Store
	placeholder string
	timeout     time.Duration
	log         zerolog.Logger
}

func NewReconciler(store db.Store, placeholder string, timeout time.Duration) *Reconciler {
	return &Reconciler{
		store:       store,
		placeholder: placeholder,
		timeout:     timeout,
		log:         logger.Get(),
	}
}

func (r *Reconciler) WithLogger(log zerolog.Logger) *Reconciler {
	r.log = log
	return r
}

// Reconcile looks the row up by (project_name, location, configuration) among
// placeholder listings. Zero or several candidates report NotFound.
func (r *Reconciler) Reconcile(ctx context.Context, row model.SourceRow, images model.MatchedImageSet) model.UpdateOutcome {
	filter := model.Filter{
		"project_name":   row.ProjectName,
		"location":       row.Location,
		"configuration":  row.Configuration,
		"main_image_url": r.placeholder,
	}

	findCtx, cancel := withTimeout(ctx, r.timeout)
	candidates, err := r.store.FindMany(findCtx, model.TableProperties, filter, []string{"id"})
	cancel()
	if err != nil {
		return model.Failed(err)
	}

	if len(candidates) != 1 {
		if len(candidates) > 1 {
			r.log.Warn().
				Int("s_no", row.SNo).
				Int("candidates", len(candidates)).
				Str("project_name", row.ProjectName).
				Msg("Ambiguous match, row left untouched")
		}
		return model.NotFound(len(candidates))
	}

	gallery := images.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	patch := model.Record{
		"main_image_url": images.Main,
		"image_gallery":  gallery,
	}
	if row.HasLandmarks() {
		patch["nearby_landmarks"] = row.LandmarkMap()
	}

	id := candidates[0].ID()
	updateCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.store.Update(updateCtx, model.TableProperties, id, patch); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			r.log.Warn().Str("property_id", id).Int("s_no", row.SNo).Msg("Listing disappeared before its media update")
			return model.NotFound(0)
		}
		return model.Failed(err)
	}

	return model.Updated(id)
}
