package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceRow_LandmarkMap(t *testing.T) {
	var row SourceRow
	assert.False(t, row.HasLandmarks())
	assert.Empty(t, row.LandmarkMap())

	row.Landmarks[0] = Landmark{Name: "DPS East", Distance: "1.2 km"}
	row.Landmarks[6] = Landmark{Name: "KIA"}
	row.Landmarks[3] = Landmark{Distance: "3 km"}

	assert.True(t, row.HasLandmarks())
	assert.Equal(t, map[string]string{
		"school_1_name":     "DPS East",
		"school_1_distance": "1.2 km",
		"airport_name":      "KIA",
		"airport_distance":  "",
	}, row.LandmarkMap())
}

func TestRecord_Accessors(t *testing.T) {
	r := Record{
		"id":     []byte("p1"),
		"name":   "Pune",
		"raw":    json.RawMessage(`{"a":1}`),
		"count":  int64(4),
		"float":  float64(7),
		"digits": "12",
	}

	assert.Equal(t, "p1", r.ID())
	assert.Equal(t, "Pune", r.String("name"))
	assert.Equal(t, `{"a":1}`, r.String("raw"))
	assert.Equal(t, "4", r.String("count"))
	assert.Equal(t, "", r.String("missing"))

	assert.Equal(t, 4, r.Int("count"))
	assert.Equal(t, 7, r.Int("float"))
	assert.Equal(t, 12, r.Int("digits"))
	assert.Equal(t, 0, r.Int("name"))
}

func TestFilter_Matches(t *testing.T) {
	r := Record{"project_name": []byte("Lakeview"), "is_active": true, "floors": int64(3)}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", nil, true},
		{"bytes vs string", Filter{"project_name": "Lakeview"}, true},
		{"bool", Filter{"is_active": true}, true},
		{"int widths", Filter{"floors": 3}, true},
		{"mismatch", Filter{"project_name": "Hillview"}, false},
		{"missing column", Filter{"city": "Pune"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(r))
		})
	}
}
