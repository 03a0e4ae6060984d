package sqliteadapter

import (
	"context"
	gosqldriver "database/sql/driver"
	"time"

	"github.com/mattn/go-sqlite3"

	"dbpool/driver"
)

type sqliteStmt struct {
	conn   *sqliteConn
	raw    *sqlite3.SQLiteStmt
	params []gosqldriver.Value

	lastInsertID int64
	rowsAffected int64
}

func newSqliteStmt(conn *sqliteConn, raw *sqlite3.SQLiteStmt) *sqliteStmt {
	return &sqliteStmt{conn: conn, raw: raw, params: make([]gosqldriver.Value, raw.NumInput())}
}

func (s *sqliteStmt) Close() error { return s.raw.Close() }

func (s *sqliteStmt) ParameterCount() int { return s.raw.NumInput() }

func (s *sqliteStmt) set(parameterIndex int, v gosqldriver.Value) bool {
	i := parameterIndex - 1
	if i < 0 || i >= len(s.params) {
		return false
	}
	s.params[i] = v
	return true
}

func (s *sqliteStmt) SetString(parameterIndex int, x *string) bool {
	if x == nil {
		return s.set(parameterIndex, nil)
	}
	return s.set(parameterIndex, *x)
}
func (s *sqliteStmt) SetInt(parameterIndex int, x int) bool        { return s.set(parameterIndex, int64(x)) }
func (s *sqliteStmt) SetLLong(parameterIndex int, x int64) bool    { return s.set(parameterIndex, x) }
func (s *sqliteStmt) SetDouble(parameterIndex int, x float64) bool { return s.set(parameterIndex, x) }
func (s *sqliteStmt) SetBlob(parameterIndex int, x []byte) bool    { return s.set(parameterIndex, x) }
func (s *sqliteStmt) SetTimestamp(parameterIndex int, epochSeconds int64) bool {
	return s.set(parameterIndex, time.Unix(epochSeconds, 0).UTC())
}

func (s *sqliteStmt) Execute(ctx context.Context) bool {
	result, err := retryWithBackoff(s.conn.maxRetries, func() (gosqldriver.Result, error) {
		return s.raw.Exec(s.params)
	})
	if err != nil {
		s.conn.lastErr = err.Error()
		return false
	}
	s.lastInsertID, _ = result.LastInsertId()
	s.rowsAffected, _ = result.RowsAffected()
	s.conn.lastInsertID = s.lastInsertID
	s.conn.rowsAffected = s.rowsAffected
	return true
}

func (s *sqliteStmt) ExecuteQuery(ctx context.Context) (driver.Rows, bool) {
	rows, err := retryWithBackoff(s.conn.maxRetries, func() (gosqldriver.Rows, error) {
		return s.raw.Query(s.params)
	})
	if err != nil {
		s.conn.lastErr = err.Error()
		return nil, false
	}
	return newSqliteRows(rows), true
}

func (s *sqliteStmt) RowsChanged() int64 { return s.rowsAffected }
func (s *sqliteStmt) LastError() string  { return s.conn.lastErr }
