package pool

import (
	"context"
	"fmt"
	"sync"

	"dbpool/driver"
	"dbpool/rewrite"
)

// The fake backend below is an in-memory stand-in for a real driver
// adapter, used only by this package's tests. It implements a single
// table of (id, name) rows and the minimum SQL vocabulary the tests need:
// "SELECT id, name FROM t" and parameterized insert/delete through
// PrepareStatement. It registers itself under the "fake" protocol.

type fakeRow struct {
	id   int64
	name string
}

type fakeBackend struct {
	mu      sync.Mutex
	rows    []fakeRow
	nextID  int64
	opens   int
	failing bool
}

func newFakeBackend() *fakeBackend { return &fakeBackend{} }

type fakeFactory struct {
	backend *fakeBackend
}

func (f *fakeFactory) Name() string { return "fake" }

func (f *fakeFactory) Open(ctx context.Context, u *driver.URL) (driver.Conn, error) {
	f.backend.mu.Lock()
	f.backend.opens++
	failing := f.backend.failing
	f.backend.mu.Unlock()
	if failing {
		return nil, fmt.Errorf("fake: connection refused")
	}
	return &fakeConn{backend: f.backend, alive: true}, nil
}

func (f *fakeFactory) PlaceholderPrefix() rewrite.Prefix { return "" }
func (f *fakeFactory) OnStop()                           {}

func registerFake() (*fakeFactory, *fakeBackend) {
	backend := newFakeBackend()
	factory := &fakeFactory{backend: backend}
	driver.Register(factory)
	return factory, backend
}

type fakeConn struct {
	backend        *fakeBackend
	alive          bool
	lastErr        string
	queryTimeoutMs int
	maxRows        int
	txOpen         bool
	rowsAffected   int64
	lastRowID      int64
}

func (c *fakeConn) Close() error { c.alive = false; return nil }

func (c *fakeConn) Ping(ctx context.Context) bool { return c.alive }

func (c *fakeConn) SetQueryTimeout(ms int) { c.queryTimeoutMs = ms }
func (c *fakeConn) SetMaxRows(n int)       { c.maxRows = n }

func (c *fakeConn) BeginTransaction(ctx context.Context) bool { c.txOpen = true; return true }
func (c *fakeConn) Commit(ctx context.Context) bool            { c.txOpen = false; return true }
func (c *fakeConn) Rollback(ctx context.Context) bool          { c.txOpen = false; return true }

func (c *fakeConn) LastRowId() (int64, bool) { return c.lastRowID, true }
func (c *fakeConn) RowsChanged() int64       { return c.rowsAffected }

func (c *fakeConn) Execute(ctx context.Context, sql string) bool {
	if sql == "DELETE FROM t" {
		c.backend.mu.Lock()
		c.rowsAffected = int64(len(c.backend.rows))
		c.backend.rows = nil
		c.backend.mu.Unlock()
		return true
	}
	c.rowsAffected = 0
	return true
}

func (c *fakeConn) ExecuteQuery(ctx context.Context, sql string) (driver.Rows, bool) {
	c.backend.mu.Lock()
	snapshot := make([]fakeRow, len(c.backend.rows))
	copy(snapshot, c.backend.rows)
	c.backend.mu.Unlock()
	return &fakeRows{rows: snapshot}, true
}

func (c *fakeConn) PrepareStatement(ctx context.Context, sql string) (driver.Stmt, bool) {
	return &fakeStmt{conn: c, sql: sql, params: make(map[int]interface{})}, true
}

func (c *fakeConn) LastError() string { return c.lastErr }

type fakeStmt struct {
	conn   *fakeConn
	sql    string
	params map[int]interface{}
}

func (s *fakeStmt) Close() error { return nil }

func (s *fakeStmt) ParameterCount() int { return 2 }

func (s *fakeStmt) SetString(i int, x *string) bool {
	if x == nil {
		s.params[i] = nil
	} else {
		s.params[i] = *x
	}
	return true
}
func (s *fakeStmt) SetInt(i int, x int) bool         { s.params[i] = int64(x); return true }
func (s *fakeStmt) SetLLong(i int, x int64) bool     { s.params[i] = x; return true }
func (s *fakeStmt) SetDouble(i int, x float64) bool  { s.params[i] = x; return true }
func (s *fakeStmt) SetBlob(i int, x []byte) bool     { s.params[i] = string(x); return true }
func (s *fakeStmt) SetTimestamp(i int, t int64) bool { s.params[i] = t; return true }

func (s *fakeStmt) Execute(ctx context.Context) bool {
	s.conn.backend.mu.Lock()
	defer s.conn.backend.mu.Unlock()
	s.conn.backend.nextID++
	row := fakeRow{id: s.conn.backend.nextID}
	if v, ok := s.params[2]; ok {
		row.name = fmt.Sprint(v)
	}
	s.conn.backend.rows = append(s.conn.backend.rows, row)
	s.conn.rowsAffected = 1
	s.conn.lastRowID = row.id
	return true
}

func (s *fakeStmt) ExecuteQuery(ctx context.Context) (driver.Rows, bool) {
	return s.conn.ExecuteQuery(ctx, s.sql)
}

func (s *fakeStmt) RowsChanged() int64 { return s.conn.rowsAffected }
func (s *fakeStmt) LastError() string  { return s.conn.lastErr }

type fakeRows struct {
	rows []fakeRow
	idx  int
}

func (r *fakeRows) Close() error        { return nil }
func (r *fakeRows) ColumnCount() int    { return 2 }
func (r *fakeRows) ColumnName(i int) string {
	if i == 1 {
		return "id"
	}
	return "name"
}
func (r *fakeRows) ColumnSize(i int) int { return 0 }

func (r *fakeRows) Next(ctx context.Context) bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) IsNull(i int) bool {
	if i == 2 {
		return r.rows[r.idx-1].name == ""
	}
	return false
}

func (r *fakeRows) GetString(i int) (string, bool) {
	row := r.rows[r.idx-1]
	if i == 1 {
		return fmt.Sprint(row.id), true
	}
	if row.name == "" {
		return "", false
	}
	return row.name, true
}

func (r *fakeRows) GetBlob(i int) ([]byte, bool) {
	s, ok := r.GetString(i)
	if !ok {
		return nil, false
	}
	return []byte(s), true
}
