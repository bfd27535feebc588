package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Table names used by the ingestion core.
const (
	TableProperties   = "properties"
	TableAgents       = "agents"
	TableCities       = "cities"
	TableMicromarkets = "micromarkets"
	TableDevelopers   = "developers"
	TableProjects     = "projects"
	TableRuns         = "ingest_runs"
)

// Record is a row as seen through the generic store: column name to value.
type Record map[string]any

// Filter matches records whose columns equal every given value.
type Filter map[string]any

func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.RawMessage:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	default:
		return 0
	}
}

// ID returns the record's "id" column.
func (r Record) ID() string {
	return r.String("id")
}

// Matches reports whether every filter column equals the record value.
// Values are compared by their string form so that []byte read back from
// MySQL and string literals compare equal.
func (f Filter) Matches(r Record) bool {
	for k, want := range f {
		got, ok := r[k]
		if !ok {
			return false
		}
		if fmt.Sprint(normalize(got)) != fmt.Sprint(normalize(want)) {
			return false
		}
	}
	return true
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
