package excel

import (
	"context"

	"property-ingest/internal/model"
)

type ParsingStrategy interface {
	Parse(ctx context.Context, data []byte) ([]model.SourceRow, error)
	Validate(ctx context.Context, rows []model.SourceRow) error
}

type ExcelStrategy struct {
	parser    *Parser
	validator *Validator
}

func NewExcelStrategy() ParsingStrategy {
	return &ExcelStrategy{
		parser:    NewParser(),
		validator: NewValidator(),
	}
}

func (s *ExcelStrategy) Parse(ctx context.Context, data []byte) ([]model.SourceRow, error) {
	return s.parser.Parse(ctx, data)
}

func (s *ExcelStrategy) Validate(ctx context.Context, rows []model.SourceRow) error {
	return s.validator.Validate(ctx, rows)
}

// ParseAndValidate runs both steps; every run entry point goes through it.
func ParseAndValidate(ctx context.Context, s ParsingStrategy, data []byte) ([]model.SourceRow, error) {
	rows, err := s.Parse(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
