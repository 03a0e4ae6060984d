package sqliteadapter

import (
	"context"
	gosqldriver "database/sql/driver"
	"fmt"
	"io"
)

type sqliteRows struct {
	raw     gosqldriver.Rows
	columns []string
	current []gosqldriver.Value
	done    bool
}

func newSqliteRows(raw gosqldriver.Rows) *sqliteRows {
	return &sqliteRows{raw: raw, columns: raw.Columns()}
}

func (r *sqliteRows) Close() error { return r.raw.Close() }

func (r *sqliteRows) ColumnCount() int { return len(r.columns) }

func (r *sqliteRows) ColumnName(columnIndex int) string {
	i := columnIndex - 1
	if i < 0 || i >= len(r.columns) {
		return ""
	}
	return r.columns[i]
}

func (r *sqliteRows) ColumnSize(columnIndex int) int { return 0 }

func (r *sqliteRows) Next(ctx context.Context) bool {
	if r.done {
		return false
	}
	dest := make([]gosqldriver.Value, len(r.columns))
	if err := r.raw.Next(dest); err != nil {
		r.done = true
		if err != io.EOF {
			return false
		}
		return false
	}
	r.current = dest
	return true
}

func (r *sqliteRows) value(columnIndex int) (gosqldriver.Value, bool) {
	i := columnIndex - 1
	if i < 0 || i >= len(r.current) {
		return nil, false
	}
	return r.current[i], r.current[i] != nil
}

func (r *sqliteRows) IsNull(columnIndex int) bool {
	v, ok := r.value(columnIndex)
	return !ok || v == nil
}

func (r *sqliteRows) GetString(columnIndex int) (string, bool) {
	v, ok := r.value(columnIndex)
	if !ok || v == nil {
		return "", false
	}
	if b, ok := v.([]byte); ok {
		return string(b), true
	}
	return fmt.Sprint(v), true
}

func (r *sqliteRows) GetBlob(columnIndex int) ([]byte, bool) {
	v, ok := r.value(columnIndex)
	if !ok || v == nil {
		return nil, false
	}
	if b, ok := v.([]byte); ok {
		return b, true
	}
	return []byte(fmt.Sprint(v)), true
}
