package pool

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"dbpool/driver"
	"dbpool/sqltime"
)

// ResultSet is a forward-only, single-pass cursor over the rows returned by
// a query. Column indices are 1-based throughout, matching
// PreparedStatement's parameter indices.
type ResultSet struct {
	delegate driver.Rows
	maxRows  int
	seen     int
	closed   bool

	names     []string
	nameIndex map[string]int
}

func newResultSet(delegate driver.Rows, maxRows int) *ResultSet {
	return &ResultSet{delegate: delegate, maxRows: maxRows}
}

// ColumnCount returns the number of columns in the result set.
func (r *ResultSet) ColumnCount() int { return r.delegate.ColumnCount() }

// ColumnName returns the 1-indexed column's name.
func (r *ResultSet) ColumnName(columnIndex int) (string, error) {
	if err := r.checkColumn(columnIndex); err != nil {
		return "", err
	}
	return r.delegate.ColumnName(columnIndex), nil
}

// ColumnSize returns the 1-indexed column's declared size in bytes, or 0 if
// the backend does not report one.
func (r *ResultSet) ColumnSize(columnIndex int) (int, error) {
	if err := r.checkColumn(columnIndex); err != nil {
		return 0, err
	}
	return r.delegate.ColumnSize(columnIndex), nil
}

func (r *ResultSet) checkColumn(i int) error {
	if i < 1 || i > r.delegate.ColumnCount() {
		return &AssertError{Message: fmt.Sprintf("column index %d out of range [1,%d]", i, r.delegate.ColumnCount())}
	}
	return nil
}

func (r *ResultSet) buildNameIndex() {
	if r.names != nil {
		return
	}
	n := r.delegate.ColumnCount()
	r.names = make([]string, n)
	r.nameIndex = make(map[string]int, n)
	for i := 1; i <= n; i++ {
		name := r.delegate.ColumnName(i)
		r.names[i-1] = name
		r.nameIndex[name] = i
	}
}

// ColumnIndex returns the 1-based index of the column named name, matched
// case-sensitively, the same convention the source's getIndex byte-scan
// uses.
func (r *ResultSet) ColumnIndex(name string) (int, error) {
	r.buildNameIndex()
	if i, ok := r.nameIndex[name]; ok {
		return i, nil
	}
	return 0, newSQLError("invalid column name %q", name)
}

// ColumnIndexByNameFold is a case-insensitive column lookup, supplementing
// the case-sensitive ColumnIndex for callers that don't control the exact
// casing returned by their backend (e.g. one driver uppercases column
// names, another preserves source casing).
func (r *ResultSet) ColumnIndexByNameFold(name string) (int, error) {
	r.buildNameIndex()
	for i, n := range r.names {
		if strings.EqualFold(n, name) {
			return i + 1, nil
		}
	}
	return 0, newSQLError("invalid column name %q", name)
}

// Next advances the cursor to the next row, applying the connection's
// maxRows cutoff on top of the driver's own exhaustion signal. false means
// there are no more rows to read, whether because the cursor is exhausted
// or because maxRows has been reached.
func (r *ResultSet) Next(ctx context.Context) bool {
	if r.closed {
		return false
	}
	if r.maxRows > 0 && r.seen >= r.maxRows {
		return false
	}
	if !r.delegate.Next(ctx) {
		return false
	}
	r.seen++
	return true
}

// IsNull reports whether the 1-indexed column's value in the current row
// is SQL NULL.
func (r *ResultSet) IsNull(columnIndex int) (bool, error) {
	if err := r.checkColumn(columnIndex); err != nil {
		return false, err
	}
	return r.delegate.IsNull(columnIndex), nil
}

// GetString returns the current row's 1-indexed column as a string, and ""
// with no error if the value is SQL NULL.
func (r *ResultSet) GetString(columnIndex int) (string, error) {
	if err := r.checkColumn(columnIndex); err != nil {
		return "", err
	}
	s, ok := r.delegate.GetString(columnIndex)
	if !ok {
		return "", nil
	}
	return s, nil
}

// GetInt parses the current row's 1-indexed column as an int.
func (r *ResultSet) GetInt(columnIndex int) (int, error) {
	s, err := r.GetString(columnIndex)
	if err != nil || s == "" {
		return 0, err
	}
	v, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if perr != nil {
		return 0, newSQLError("column %d: %q is not a valid integer", columnIndex, s)
	}
	return int(v), nil
}

// GetLLong parses the current row's 1-indexed column as a 64-bit integer.
func (r *ResultSet) GetLLong(columnIndex int) (int64, error) {
	s, err := r.GetString(columnIndex)
	if err != nil || s == "" {
		return 0, err
	}
	v, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if perr != nil {
		return 0, newSQLError("column %d: %q is not a valid integer", columnIndex, s)
	}
	return v, nil
}

// GetDouble parses the current row's 1-indexed column as a float64.
func (r *ResultSet) GetDouble(columnIndex int) (float64, error) {
	s, err := r.GetString(columnIndex)
	if err != nil || s == "" {
		return 0, err
	}
	v, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if perr != nil {
		return 0, newSQLError("column %d: %q is not a valid number", columnIndex, s)
	}
	return v, nil
}

// GetBlob returns the current row's 1-indexed column as raw bytes.
func (r *ResultSet) GetBlob(columnIndex int) ([]byte, error) {
	if err := r.checkColumn(columnIndex); err != nil {
		return nil, err
	}
	b, ok := r.delegate.GetBlob(columnIndex)
	if !ok {
		return nil, nil
	}
	return b, nil
}

// GetDate parses the current row's 1-indexed column as a calendar date.
func (r *ResultSet) GetDate(columnIndex int) (sqltime.Date, error) {
	s, err := r.GetString(columnIndex)
	if err != nil {
		return sqltime.Date{}, err
	}
	d, perr := sqltime.ParseDate(s)
	if perr != nil {
		return sqltime.Date{}, newSQLError("column %d: %v", columnIndex, perr)
	}
	return d, nil
}

// GetTime parses the current row's 1-indexed column as a time of day.
func (r *ResultSet) GetTime(columnIndex int) (sqltime.Time, error) {
	s, err := r.GetString(columnIndex)
	if err != nil {
		return sqltime.Time{}, err
	}
	t, perr := sqltime.ParseTime(s)
	if perr != nil {
		return sqltime.Time{}, newSQLError("column %d: %v", columnIndex, perr)
	}
	return t, nil
}

// GetDateTime parses the current row's 1-indexed column as a combined date
// and time.
func (r *ResultSet) GetDateTime(columnIndex int) (sqltime.DateTime, error) {
	s, err := r.GetString(columnIndex)
	if err != nil {
		return sqltime.DateTime{}, err
	}
	dt, perr := sqltime.Parse(s)
	if perr != nil {
		return sqltime.DateTime{}, newSQLError("column %d: %v", columnIndex, perr)
	}
	return dt, nil
}

// GetTimestamp parses the current row's 1-indexed column as a Unix
// epoch-seconds value.
func (r *ResultSet) GetTimestamp(columnIndex int) (int64, error) {
	s, err := r.GetString(columnIndex)
	if err != nil {
		return 0, err
	}
	ts, perr := sqltime.ToTimestamp(s)
	if perr != nil {
		return 0, newSQLError("column %d: %v", columnIndex, perr)
	}
	return ts, nil
}

// GetStringByName is GetString addressed by case-sensitive column name.
func (r *ResultSet) GetStringByName(name string) (string, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return "", err
	}
	return r.GetString(i)
}

// GetIntByName is GetInt addressed by case-sensitive column name.
func (r *ResultSet) GetIntByName(name string) (int, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	return r.GetInt(i)
}

// GetLLongByName is GetLLong addressed by case-sensitive column name.
func (r *ResultSet) GetLLongByName(name string) (int64, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	return r.GetLLong(i)
}

// GetDoubleByName is GetDouble addressed by case-sensitive column name.
func (r *ResultSet) GetDoubleByName(name string) (float64, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	return r.GetDouble(i)
}

// GetBlobByName is GetBlob addressed by case-sensitive column name.
func (r *ResultSet) GetBlobByName(name string) ([]byte, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	return r.GetBlob(i)
}

// GetDateByName is GetDate addressed by case-sensitive column name.
func (r *ResultSet) GetDateByName(name string) (sqltime.Date, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return sqltime.Date{}, err
	}
	return r.GetDate(i)
}

// GetTimeByName is GetTime addressed by case-sensitive column name.
func (r *ResultSet) GetTimeByName(name string) (sqltime.Time, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return sqltime.Time{}, err
	}
	return r.GetTime(i)
}

// GetDateTimeByName is GetDateTime addressed by case-sensitive column name.
func (r *ResultSet) GetDateTimeByName(name string) (sqltime.DateTime, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return sqltime.DateTime{}, err
	}
	return r.GetDateTime(i)
}

// GetTimestampByName is GetTimestamp addressed by case-sensitive column name.
func (r *ResultSet) GetTimestampByName(name string) (int64, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	return r.GetTimestamp(i)
}

func (r *ResultSet) destroy() {
	if r.closed {
		return
	}
	r.closed = true
	_ = r.delegate.Close()
}
