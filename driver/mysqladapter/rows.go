package mysqladapter

import (
	"context"
	"fmt"

	"github.com/ziutek/mymysql/mysql"
)

// mysqlRows adapts mymysql's eagerly-materialized []mysql.Row + mysql.Result
// pair to the forward-only, single-pass driver.Rows cursor contract, walking
// the materialized rows one at a time behind a cursor index.
type mysqlRows struct {
	result mysql.Result
	rows   []mysql.Row
	idx    int
}

func newMysqlRows(result mysql.Result, rows []mysql.Row) *mysqlRows {
	return &mysqlRows{result: result, rows: rows, idx: -1}
}

func (r *mysqlRows) Close() error { return nil }

func (r *mysqlRows) ColumnCount() int {
	if r.result == nil {
		return 0
	}
	return len(r.result.Fields())
}

func (r *mysqlRows) ColumnName(columnIndex int) string {
	fields := r.result.Fields()
	i := columnIndex - 1
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i].Name
}

func (r *mysqlRows) ColumnSize(columnIndex int) int { return 0 }

func (r *mysqlRows) Next(ctx context.Context) bool {
	if r.idx+1 >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *mysqlRows) value(columnIndex int) (interface{}, bool) {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return nil, false
	}
	row := r.rows[r.idx]
	i := columnIndex - 1
	if i < 0 || i >= len(row) {
		return nil, false
	}
	return row[i], row[i] != nil
}

func (r *mysqlRows) IsNull(columnIndex int) bool {
	v, ok := r.value(columnIndex)
	return !ok || v == nil
}

func (r *mysqlRows) GetString(columnIndex int) (string, bool) {
	v, ok := r.value(columnIndex)
	if !ok || v == nil {
		return "", false
	}
	if b, ok := v.([]byte); ok {
		return string(b), true
	}
	return fmt.Sprint(v), true
}

func (r *mysqlRows) GetBlob(columnIndex int) ([]byte, bool) {
	v, ok := r.value(columnIndex)
	if !ok || v == nil {
		return nil, false
	}
	if b, ok := v.([]byte); ok {
		return b, true
	}
	return []byte(fmt.Sprint(v)), true
}
