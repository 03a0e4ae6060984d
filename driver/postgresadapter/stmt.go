package postgresadapter

import (
	"context"
	gosqldriver "database/sql/driver"
	"time"

	"dbpool/driver"
)

type postgresStmt struct {
	conn   *postgresConn
	raw    gosqldriver.Stmt
	params []gosqldriver.NamedValue

	rowsAffected int64
}

func newPostgresStmt(conn *postgresConn, raw gosqldriver.Stmt) *postgresStmt {
	return &postgresStmt{conn: conn, raw: raw, params: make([]gosqldriver.NamedValue, raw.NumInput())}
}

func (s *postgresStmt) Close() error { return s.raw.Close() }

func (s *postgresStmt) ParameterCount() int { return s.raw.NumInput() }

func (s *postgresStmt) set(parameterIndex int, v gosqldriver.Value) bool {
	i := parameterIndex - 1
	if i < 0 || i >= len(s.params) {
		return false
	}
	s.params[i] = gosqldriver.NamedValue{Ordinal: parameterIndex, Value: v}
	return true
}

func (s *postgresStmt) SetString(parameterIndex int, x *string) bool {
	if x == nil {
		return s.set(parameterIndex, nil)
	}
	return s.set(parameterIndex, *x)
}
func (s *postgresStmt) SetInt(parameterIndex int, x int) bool        { return s.set(parameterIndex, int64(x)) }
func (s *postgresStmt) SetLLong(parameterIndex int, x int64) bool    { return s.set(parameterIndex, x) }
func (s *postgresStmt) SetDouble(parameterIndex int, x float64) bool { return s.set(parameterIndex, x) }
func (s *postgresStmt) SetBlob(parameterIndex int, x []byte) bool    { return s.set(parameterIndex, x) }
func (s *postgresStmt) SetTimestamp(parameterIndex int, epochSeconds int64) bool {
	return s.set(parameterIndex, time.Unix(epochSeconds, 0).UTC())
}

func (s *postgresStmt) Execute(ctx context.Context) bool {
	execer, ok := s.raw.(gosqldriver.StmtExecContext)
	if !ok {
		s.conn.lastErr = "postgresadapter: statement does not support StmtExecContext"
		return false
	}
	result, err := execer.ExecContext(ctx, s.params)
	if err != nil {
		s.conn.lastErr = err.Error()
		return false
	}
	s.rowsAffected, _ = result.RowsAffected()
	s.conn.rowsAffected = s.rowsAffected
	return true
}

func (s *postgresStmt) ExecuteQuery(ctx context.Context) (driver.Rows, bool) {
	queryer, ok := s.raw.(gosqldriver.StmtQueryContext)
	if !ok {
		s.conn.lastErr = "postgresadapter: statement does not support StmtQueryContext"
		return nil, false
	}
	rows, err := queryer.QueryContext(ctx, s.params)
	if err != nil {
		s.conn.lastErr = err.Error()
		return nil, false
	}
	return newPostgresRows(rows), true
}

func (s *postgresStmt) RowsChanged() int64 { return s.rowsAffected }
func (s *postgresStmt) LastError() string  { return s.conn.lastErr }
