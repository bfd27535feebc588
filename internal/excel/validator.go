package excel

import (
	"context"
	"net/url"

	"property-ingest/internal/model"
	"property-ingest/pkg/errors"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the whole sheet before anything is persisted. Sequence
// numbers must be positive and unique since they key the image matching.
func (v *Validator) Validate(ctx context.Context, rows []model.SourceRow) error {
	if len(rows) == 0 {
		return errors.ErrSchemaValidation
	}

	seen := make(map[int]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.SNo]; dup {
			return errors.ValidationError{
				Field:   "s_no",
				Value:   row.SNo,
				Message: "sequence number must be unique within a sheet",
			}
		}
		seen[row.SNo] = struct{}{}

		if err := v.validateRow(row); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) validateRow(row model.SourceRow) error {
	if row.SNo <= 0 {
		return errors.ValidationError{
			Field:   "s_no",
			Value:   row.SNo,
			Message: "must be a positive integer",
		}
	}

	if row.Price < 0 {
		return errors.ValidationError{
			Field:   "price",
			Value:   row.Price,
			Message: "must not be negative",
		}
	}

	if len(row.ProjectName) > 200 {
		return errors.ValidationError{
			Field:   "project_name",
			Value:   row.ProjectName,
			Message: "must be at most 200 characters",
		}
	}

	if len(row.Location) > 200 {
		return errors.ValidationError{
			Field:   "location",
			Value:   row.Location,
			Message: "must be at most 200 characters",
		}
	}

	if row.MapURL != "" {
		u, err := url.Parse(row.MapURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return errors.ValidationError{
				Field:   "map_url",
				Value:   row.MapURL,
				Message: "must be an http(s) URL",
			}
		}
	}

	return nil
}
