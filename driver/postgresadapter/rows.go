package postgresadapter

import (
	"context"
	gosqldriver "database/sql/driver"
	"fmt"
)

type postgresRows struct {
	raw     gosqldriver.Rows
	columns []string
	current []gosqldriver.Value
	done    bool
}

func newPostgresRows(raw gosqldriver.Rows) *postgresRows {
	return &postgresRows{raw: raw, columns: raw.Columns()}
}

func (r *postgresRows) Close() error { return r.raw.Close() }

func (r *postgresRows) ColumnCount() int { return len(r.columns) }

func (r *postgresRows) ColumnName(columnIndex int) string {
	i := columnIndex - 1
	if i < 0 || i >= len(r.columns) {
		return ""
	}
	return r.columns[i]
}

func (r *postgresRows) ColumnSize(columnIndex int) int { return 0 }

func (r *postgresRows) Next(ctx context.Context) bool {
	if r.done {
		return false
	}
	dest := make([]gosqldriver.Value, len(r.columns))
	if err := r.raw.Next(dest); err != nil {
		r.done = true
		return false
	}
	r.current = dest
	return true
}

func (r *postgresRows) value(columnIndex int) (gosqldriver.Value, bool) {
	i := columnIndex - 1
	if i < 0 || i >= len(r.current) {
		return nil, false
	}
	return r.current[i], r.current[i] != nil
}

func (r *postgresRows) IsNull(columnIndex int) bool {
	v, ok := r.value(columnIndex)
	return !ok || v == nil
}

func (r *postgresRows) GetString(columnIndex int) (string, bool) {
	v, ok := r.value(columnIndex)
	if !ok || v == nil {
		return "", false
	}
	if b, ok := v.([]byte); ok {
		return string(b), true
	}
	return fmt.Sprint(v), true
}

func (r *postgresRows) GetBlob(columnIndex int) ([]byte, bool) {
	v, ok := r.value(columnIndex)
	if !ok || v == nil {
		return nil, false
	}
	if b, ok := v.([]byte); ok {
		return b, true
	}
	return []byte(fmt.Sprint(v)), true
}
