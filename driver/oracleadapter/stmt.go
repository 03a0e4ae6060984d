package oracleadapter

import (
	"context"
	gosqldriver "database/sql/driver"
	"time"

	"dbpool/driver"
)

type oracleStmt struct {
	conn   *oracleConn
	raw    gosqldriver.Stmt
	params []gosqldriver.NamedValue

	rowsAffected int64
}

func newOracleStmt(conn *oracleConn, raw gosqldriver.Stmt) *oracleStmt {
	return &oracleStmt{conn: conn, raw: raw, params: make([]gosqldriver.NamedValue, raw.NumInput())}
}

func (s *oracleStmt) Close() error { return s.raw.Close() }

func (s *oracleStmt) ParameterCount() int { return s.raw.NumInput() }

func (s *oracleStmt) set(parameterIndex int, v gosqldriver.Value) bool {
	i := parameterIndex - 1
	if i < 0 || i >= len(s.params) {
		return false
	}
	s.params[i] = gosqldriver.NamedValue{Ordinal: parameterIndex, Value: v}
	return true
}

func (s *oracleStmt) SetString(parameterIndex int, x *string) bool {
	if x == nil {
		return s.set(parameterIndex, nil)
	}
	return s.set(parameterIndex, *x)
}
func (s *oracleStmt) SetInt(parameterIndex int, x int) bool        { return s.set(parameterIndex, int64(x)) }
func (s *oracleStmt) SetLLong(parameterIndex int, x int64) bool    { return s.set(parameterIndex, x) }
func (s *oracleStmt) SetDouble(parameterIndex int, x float64) bool { return s.set(parameterIndex, x) }
func (s *oracleStmt) SetBlob(parameterIndex int, x []byte) bool    { return s.set(parameterIndex, x) }
func (s *oracleStmt) SetTimestamp(parameterIndex int, epochSeconds int64) bool {
	return s.set(parameterIndex, time.Unix(epochSeconds, 0).UTC())
}

func (s *oracleStmt) Execute(ctx context.Context) bool {
	execer, ok := s.raw.(gosqldriver.StmtExecContext)
	if !ok {
		s.conn.lastErr = "oracleadapter: statement does not support StmtExecContext"
		return false
	}
	ctx, cancel := s.conn.watchdogCtx(ctx)
	defer cancel()
	result, err := execer.ExecContext(ctx, s.params)
	if err != nil {
		s.conn.lastErr = err.Error()
		return false
	}
	s.rowsAffected, _ = result.RowsAffected()
	s.conn.rowsAffected = s.rowsAffected
	return true
}

func (s *oracleStmt) ExecuteQuery(ctx context.Context) (driver.Rows, bool) {
	queryer, ok := s.raw.(gosqldriver.StmtQueryContext)
	if !ok {
		s.conn.lastErr = "oracleadapter: statement does not support StmtQueryContext"
		return nil, false
	}
	ctx, cancel := s.conn.watchdogCtx(ctx)
	defer cancel()
	rows, err := queryer.QueryContext(ctx, s.params)
	if err != nil {
		s.conn.lastErr = err.Error()
		return nil, false
	}
	return newOracleRows(rows), true
}

func (s *oracleStmt) RowsChanged() int64 { return s.rowsAffected }
func (s *oracleStmt) LastError() string  { return s.conn.lastErr }
