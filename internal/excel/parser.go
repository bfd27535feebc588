package excel

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"property-ingest/internal/model"
	"property-ingest/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// Column keys are compared after normalizeHeader, so "S.No", "s_no" and
// "SNo" all address the same column.
var requiredColumns = []string{"s_no", "city", "location", "project_name", "configuration"}

var columnAliases = map[string][]string{
	"s_no":              {"sno", "serial_no", "sr_no"},
	"property_type":     {"type"},
	"floor_no":          {"floor"},
	"price_display":     {"display_price", "price_text"},
	"furnishing_status": {"furnishing"},
	"map_url":           {"map_link", "google_map_url", "location_map"},
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(ctx context.Context, data []byte) ([]model.SourceRow, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", errors.ErrInvalidFileFormat, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	if len(rows) < 2 { // Header + at least one data row
		return nil, errors.ErrInvalidFileFormat
	}

	columnMap := buildColumnMap(rows[0])
	for _, col := range requiredColumns {
		if _, exists := columnMap[col]; !exists {
			return nil, fmt.Errorf("%w: %s", errors.ErrMissingRequiredCol, col)
		}
	}

	var result []model.SourceRow
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(row) {
			continue
		}

		parsed, err := p.parseRow(row, columnMap)
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", i+2, err) // i+2 for the sheet row number
		}
		result = append(result, *parsed)
	}

	return result, nil
}

func (p *Parser) parseRow(row []string, columnMap map[string]int) (*model.SourceRow, error) {
	getValue := func(colName string) string {
		if idx, exists := columnMap[colName]; exists && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	for _, col := range requiredColumns {
		if getValue(col) == "" {
			return nil, fmt.Errorf("%s is required", col)
		}
	}

	sno, err := parseInt(getValue("s_no"))
	if err != nil {
		return nil, fmt.Errorf("invalid s_no value: %s", getValue("s_no"))
	}

	price, err := parseFloat(getValue("price"))
	if err != nil {
		return nil, fmt.Errorf("invalid price value: %s", getValue("price"))
	}

	out := &model.SourceRow{
		SNo:              sno,
		City:             getValue("city"),
		Location:         getValue("location"),
		ProjectName:      getValue("project_name"),
		PropertyType:     getValue("property_type"),
		Configuration:    getValue("configuration"),
		Area:             getValue("area"),
		FloorNo:          getValue("floor_no"),
		Facing:           getValue("facing"),
		Price:            price,
		PriceDisplay:     getValue("price_display"),
		Status:           getValue("status"),
		FurnishingStatus: getValue("furnishing_status"),
		MapURL:           getValue("map_url"),
	}
	if out.PriceDisplay == "" {
		out.PriceDisplay = getValue("price")
	}

	ints := []struct {
		col string
		dst *int
	}{
		{"total_floors", &out.TotalFloors},
		{"parking", &out.Parking},
		{"bedrooms", &out.Bedrooms},
		{"bathrooms", &out.Bathrooms},
	}
	for _, f := range ints {
		n, err := parseInt(getValue(f.col))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %s", f.col, getValue(f.col))
		}
		*f.dst = n
	}

	for i, category := range model.LandmarkCategories {
		out.Landmarks[i] = model.Landmark{
			Name:     getValue(category.NameKey()),
			Distance: getValue(category.DistanceKey()),
		}
	}

	return out, nil
}

// buildColumnMap indexes header cells by normalized name. Canonical keys are
// registered for every alias found in the header.
func buildColumnMap(header []string) map[string]int {
	raw := make(map[string]int, len(header))
	for i, col := range header {
		key := normalizeHeader(col)
		if _, dup := raw[key]; !dup && key != "" {
			raw[key] = i
		}
	}

	columnMap := make(map[string]int, len(raw))
	lookup := func(canonical string) {
		if idx, ok := raw[normalizeHeader(canonical)]; ok {
			columnMap[canonical] = idx
			return
		}
		for _, alias := range columnAliases[canonical] {
			if idx, ok := raw[normalizeHeader(alias)]; ok {
				columnMap[canonical] = idx
				return
			}
		}
	}

	for _, col := range []string{
		"s_no", "city", "location", "project_name", "property_type", "configuration",
		"area", "floor_no", "total_floors", "facing", "parking", "price", "price_display",
		"bedrooms", "bathrooms", "status", "furnishing_status", "map_url",
	} {
		lookup(col)
	}
	for _, category := range model.LandmarkCategories {
		lookup(category.NameKey())
		lookup(category.DistanceKey())
	}

	return columnMap
}

// normalizeHeader lower-cases and keeps only letters and digits.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cleanNumber(s string) string {
	return strings.NewReplacer(",", "", " ", "").Replace(s)
}

func parseFloat(s string) (float64, error) {
	s = cleanNumber(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseInt accepts whole numbers written as floats ("2.0") since sheet cells
// are often formatted that way.
func parseInt(s string) (int, error) {
	f, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not a whole number: %s", s)
	}
	return int(f), nil
}
