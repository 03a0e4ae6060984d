package pool

import (
	"context"
	"fmt"

	"dbpool/driver"
)

// PreparedStatement is a compiled statement bound to one Connection. Once
// created it can be executed repeatedly with different bound parameters
// without re-parsing the SQL text.
type PreparedStatement struct {
	conn     *Connection
	delegate driver.Stmt
	closed   bool
	result   *ResultSet
}

func newPreparedStatement(c *Connection, delegate driver.Stmt) *PreparedStatement {
	return &PreparedStatement{conn: c, delegate: delegate}
}

// ParameterCount returns the number of `?` placeholders the statement was
// compiled with.
func (s *PreparedStatement) ParameterCount() int { return s.delegate.ParameterCount() }

func (s *PreparedStatement) checkIndex(i int) error {
	if i < 1 || i > s.delegate.ParameterCount() {
		return &AssertError{Message: fmt.Sprintf("parameter index %d out of range [1,%d]", i, s.delegate.ParameterCount())}
	}
	return nil
}

// SetString binds a string value to the 1-indexed parameter i. A nil x
// binds SQL NULL.
func (s *PreparedStatement) SetString(i int, x *string) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if !s.delegate.SetString(i, x) {
		return newSQLError("%s", s.conn.GetLastError())
	}
	return nil
}

// SetInt binds an int value to the 1-indexed parameter i.
func (s *PreparedStatement) SetInt(i int, x int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if !s.delegate.SetInt(i, x) {
		return newSQLError("%s", s.conn.GetLastError())
	}
	return nil
}

// SetLLong binds a 64-bit integer value to the 1-indexed parameter i.
func (s *PreparedStatement) SetLLong(i int, x int64) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if !s.delegate.SetLLong(i, x) {
		return newSQLError("%s", s.conn.GetLastError())
	}
	return nil
}

// SetDouble binds a floating-point value to the 1-indexed parameter i.
func (s *PreparedStatement) SetDouble(i int, x float64) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if !s.delegate.SetDouble(i, x) {
		return newSQLError("%s", s.conn.GetLastError())
	}
	return nil
}

// SetBlob binds raw bytes to the 1-indexed parameter i.
func (s *PreparedStatement) SetBlob(i int, x []byte) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if !s.delegate.SetBlob(i, x) {
		return newSQLError("%s", s.conn.GetLastError())
	}
	return nil
}

// SetTimestamp binds a Unix epoch-seconds value to the 1-indexed parameter
// i, letting the backend render it in its native temporal form.
func (s *PreparedStatement) SetTimestamp(i int, epochSeconds int64) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if !s.delegate.SetTimestamp(i, epochSeconds) {
		return newSQLError("%s", s.conn.GetLastError())
	}
	return nil
}

// bindAny dispatches to the typed setter matching x's dynamic type, for
// Connection.ExecuteQuery's one-shot parameterized path.
func (s *PreparedStatement) bindAny(i int, x interface{}) error {
	switch v := x.(type) {
	case nil:
		return s.SetString(i, nil)
	case string:
		return s.SetString(i, &v)
	case int:
		return s.SetInt(i, v)
	case int64:
		return s.SetLLong(i, v)
	case float64:
		return s.SetDouble(i, v)
	case []byte:
		return s.SetBlob(i, v)
	default:
		return &AssertError{Message: fmt.Sprintf("unsupported bind value type %T", x)}
	}
}

// Execute runs the statement with its currently bound parameters, with no
// expectation of rows, disposing any result set this statement previously
// produced first.
func (s *PreparedStatement) Execute(ctx context.Context) error {
	s.disposeOwnResult()
	if !s.delegate.Execute(ctx) {
		return newSQLError("%s", s.conn.GetLastError())
	}
	return nil
}

// ExecuteQuery runs the statement with its currently bound parameters and
// returns the resulting rows. It first disposes any result set this same
// statement produced on a previous call, so a second ExecuteQuery on one
// statement never leaks the first.
func (s *PreparedStatement) ExecuteQuery(ctx context.Context) (*ResultSet, error) {
	s.disposeOwnResult()
	rows, ok := s.delegate.ExecuteQuery(ctx)
	if !ok || rows == nil {
		return nil, newSQLError("%s", s.conn.GetLastError())
	}
	rs := newResultSet(rows, s.conn.maxRows)
	s.result = rs
	return rs, nil
}

func (s *PreparedStatement) disposeOwnResult() {
	if s.result != nil {
		s.result.destroy()
		s.result = nil
	}
}

// RowsChanged returns the number of rows affected by the most recent
// Execute.
func (s *PreparedStatement) RowsChanged() int64 { return s.delegate.RowsChanged() }

// Close releases the statement. It is safe to call more than once.
func (s *PreparedStatement) Close() {
	if s.closed {
		return
	}
	s.conn.removePrepared(s)
	s.destroy()
}

// destroy tears down the delegate without touching the owning connection's
// prepared list — used both by Close (which already removed itself) and by
// Connection.Clear (which clears the whole list at once).
func (s *PreparedStatement) destroy() {
	if s.closed {
		return
	}
	s.closed = true
	s.disposeOwnResult()
	_ = s.delegate.Close()
}
