package mysqladapter

import (
	"context"
	"time"

	"github.com/ziutek/mymysql/mysql"

	"dbpool/driver"
)

type mysqlStmt struct {
	conn   *mysqlConn
	raw    mysql.Stmt
	params []interface{}

	lastResult mysql.Result
}

func newMysqlStmt(conn *mysqlConn, raw mysql.Stmt) *mysqlStmt {
	return &mysqlStmt{conn: conn, raw: raw, params: make([]interface{}, raw.NumParam())}
}

func (s *mysqlStmt) Close() error { return s.raw.Delete() }

func (s *mysqlStmt) ParameterCount() int { return s.raw.NumParam() }

func (s *mysqlStmt) set(parameterIndex int, v interface{}) bool {
	i := parameterIndex - 1
	if i < 0 || i >= len(s.params) {
		return false
	}
	s.params[i] = v
	return true
}

func (s *mysqlStmt) SetString(parameterIndex int, x *string) bool {
	if x == nil {
		return s.set(parameterIndex, nil)
	}
	return s.set(parameterIndex, *x)
}
func (s *mysqlStmt) SetInt(parameterIndex int, x int) bool         { return s.set(parameterIndex, int64(x)) }
func (s *mysqlStmt) SetLLong(parameterIndex int, x int64) bool     { return s.set(parameterIndex, x) }
func (s *mysqlStmt) SetDouble(parameterIndex int, x float64) bool  { return s.set(parameterIndex, x) }
func (s *mysqlStmt) SetBlob(parameterIndex int, x []byte) bool     { return s.set(parameterIndex, x) }
func (s *mysqlStmt) SetTimestamp(parameterIndex int, epochSeconds int64) bool {
	return s.set(parameterIndex, time.Unix(epochSeconds, 0).UTC())
}

func (s *mysqlStmt) Execute(ctx context.Context) bool {
	err := s.conn.withTimeout(ctx, func() error {
		return s.conn.destroyOnError(func() error {
			_, result, e := s.raw.Exec(s.params...)
			if e == nil {
				s.lastResult = result
				s.conn.lastResult = result
			}
			return e
		})
	})
	return err == nil
}

func (s *mysqlStmt) ExecuteQuery(ctx context.Context) (driver.Rows, bool) {
	var rows []mysql.Row
	var result mysql.Result
	err := s.conn.withTimeout(ctx, func() error {
		return s.conn.destroyOnError(func() error {
			r, res, e := s.raw.Exec(s.params...)
			rows, result = r, res
			return e
		})
	})
	if err != nil {
		return nil, false
	}
	s.lastResult = result
	s.conn.lastResult = result
	return newMysqlRows(result, rows), true
}

func (s *mysqlStmt) RowsChanged() int64 {
	if s.lastResult == nil {
		return 0
	}
	return int64(s.lastResult.AffectedRows())
}

func (s *mysqlStmt) LastError() string { return s.conn.lastErr }
