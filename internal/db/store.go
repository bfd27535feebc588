package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"property-ingest/internal/model"
	"property-ingest/pkg/errors"

	"github.com/google/uuid"
)

// Store is the generic persistence interface the ingestion core and the
// seeding cascade are written against.
type Store interface {
	// InsertMany writes all records or none. Records without an "id" get a
	// generated one.
	InsertMany(ctx context.Context, table string, records []model.Record) (int, error)
	Update(ctx context.Context, table, id string, patch model.Record) error
	// FindOne returns nil and no error when nothing matches.
	FindOne(ctx context.Context, table string, filter model.Filter) (model.Record, error)
	// FindMany returns only the projected columns, or all when projection is empty.
	FindMany(ctx context.Context, table string, filter model.Filter, projection []string) ([]model.Record, error)
}

var identifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,63}$`)

func checkIdentifier(name string) error {
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", errors.ErrInvalidIdentifier, name)
	}
	return nil
}

type mysqlStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) Store {
	return &mysqlStore{db: db}
}

func (s *mysqlStore) InsertMany(ctx context.Context, table string, records []model.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if err := checkIdentifier(table); err != nil {
		return 0, err
	}

	rows := withIDs(records)
	columns := unionColumns(rows)
	for _, c := range columns {
		if err := checkIdentifier(c); err != nil {
			return 0, err
		}
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	tuples := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for i, r := range rows {
		tuples[i] = placeholder
		for _, c := range columns {
			v, err := encodeValue(r[c])
			if err != nil {
				return 0, fmt.Errorf("encode %s.%s: %w", table, c, err)
			}
			args = append(args, v)
		}
	}

	query := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES %s",
		table, quoteColumns(columns), strings.Join(tuples, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return len(rows), nil
	}
	return int(affected), nil
}

func (s *mysqlStore) Update(ctx context.Context, table, id string, patch model.Record) error {
	if len(patch) == 0 {
		return nil
	}
	if err := checkIdentifier(table); err != nil {
		return err
	}

	columns := sortedKeys(patch)
	sets := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, c := range columns {
		if err := checkIdentifier(c); err != nil {
			return err
		}
		v, err := encodeValue(patch[c])
		if err != nil {
			return fmt.Errorf("encode %s.%s: %w", table, c, err)
		}
		sets[i] = fmt.Sprintf("`%s` = ?", c)
		args = append(args, v)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE `%s` SET %s WHERE `id` = ?", table, strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %s", errors.ErrNotFound, table, id)
	}
	return nil
}

func (s *mysqlStore) FindOne(ctx context.Context, table string, filter model.Filter) (model.Record, error) {
	records, err := s.find(ctx, table, filter, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (s *mysqlStore) FindMany(ctx context.Context, table string, filter model.Filter, projection []string) ([]model.Record, error) {
	return s.find(ctx, table, filter, projection, 0)
}

func (s *mysqlStore) find(ctx context.Context, table string, filter model.Filter, projection []string, limit int) ([]model.Record, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}

	selectList := "*"
	if len(projection) > 0 {
		for _, c := range projection {
			if err := checkIdentifier(c); err != nil {
				return nil, err
			}
		}
		selectList = quoteColumns(projection)
	}

	query := fmt.Sprintf("SELECT %s FROM `%s`", selectList, table)

	var args []any
	if len(filter) > 0 {
		keys := make([]string, 0, len(filter))
		for k := range filter {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		conds := make([]string, len(keys))
		for i, k := range keys {
			if err := checkIdentifier(k); err != nil {
				return nil, err
			}
			conds[i] = fmt.Sprintf("`%s` = ?", k)
			args = append(args, filter[k])
		}
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		record := make(model.Record, len(columns))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				record[c] = string(b)
				continue
			}
			record[c] = values[i]
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// withIDs copies records, filling in a generated id where missing.
func withIDs(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		c := make(model.Record, len(r)+1)
		for k, v := range r {
			c[k] = v
		}
		if c.ID() == "" {
			c["id"] = uuid.NewString()
		}
		out[i] = c
	}
	return out
}

func unionColumns(records []model.Record) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(set))
	for k := range set {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return columns
}

func sortedKeys(r model.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = "`" + c + "`"
	}
	return strings.Join(quoted, ", ")
}

// encodeValue stores slices and maps as JSON text.
func encodeValue(v any) (any, error) {
	switch t := v.(type) {
	case json.RawMessage:
		return string(t), nil
	case []string, map[string]string, map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return v, nil
	}
}
