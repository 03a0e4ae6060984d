package pool

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dbpool/driver"
	"dbpool/rewrite"
)

// Connection is the façade over a single physical backend connection. It
// owns the driver delegate, the list of prepared statements created from
// it, and at most one live result set — the Go rendering of libzdb's
// Connection_T (original_source/src/db/Connection.c), generalized to hold
// any driver.Conn instead of one hard-coded backend.
//
// A Connection is not safe for concurrent use: once handed out by
// Pool.GetConnection it belongs to exactly one goroutine until
// Connection.Close returns it.
type Connection struct {
	id                uuid.UUID
	pool              *Pool
	delegate          driver.Conn
	placeholderPrefix rewrite.Prefix // "" means the backend accepts `?` natively

	available      bool
	lastAccessed   time.Time
	queryTimeoutMs int
	maxRows        int
	txDepth        int

	prepared      []*PreparedStatement
	currentResult *ResultSet
}

func newConnection(p *Pool, delegate driver.Conn, placeholderPrefix rewrite.Prefix) *Connection {
	return &Connection{
		id:                uuid.New(),
		pool:              p,
		delegate:          delegate,
		placeholderPrefix: placeholderPrefix,
		available:         true,
		lastAccessed:      time.Now(),
		queryTimeoutMs:    DefaultQueryTimeoutMs,
	}
}

// ID returns the connection's identity tag, used only in logs and
// observability, never in correctness decisions.
func (c *Connection) ID() uuid.UUID { return c.id }

func (c *Connection) setAvailable(v bool) {
	c.available = v
	c.lastAccessed = time.Now()
}

func (c *Connection) isAvailable() bool { return c.available }

func (c *Connection) lastAccessedAt() time.Time { return c.lastAccessed }

// SetQueryTimeout sets the per-call advisory timeout in milliseconds.
// ms must be >= 0.
func (c *Connection) SetQueryTimeout(ms int) {
	if ms < 0 {
		abort("query timeout must be >= 0, got %d", ms)
		return
	}
	c.queryTimeoutMs = ms
	c.delegate.SetQueryTimeout(ms)
}

// QueryTimeout returns the current advisory timeout in milliseconds.
func (c *Connection) QueryTimeout() int { return c.queryTimeoutMs }

// SetMaxRows caps the number of rows a subsequent ResultSet will yield from
// Next. 0 means unlimited.
func (c *Connection) SetMaxRows(n int) {
	c.maxRows = n
	c.delegate.SetMaxRows(n)
}

// MaxRows returns the current row cap.
func (c *Connection) MaxRows() int { return c.maxRows }

// Ping reports whether the connection is currently usable.
func (c *Connection) Ping(ctx context.Context) bool {
	return c.delegate.Ping(ctx)
}

// BeginTransaction starts a transaction. Nested calls increment the depth
// counter but the driver's begin is only issued once, on the outermost call
// — flat semantics: one driver begin per outermost client begin, with the
// depth counter alone deciding what Commit/Rollback actually do.
func (c *Connection) BeginTransaction(ctx context.Context) error {
	if c.txDepth == 0 {
		if !c.delegate.BeginTransaction(ctx) {
			return newSQLError("%s", c.GetLastError())
		}
	}
	c.txDepth++
	return nil
}

// InTransaction reports whether a transaction is currently open.
func (c *Connection) InTransaction() bool { return c.txDepth > 0 }

// Commit resets the transaction depth to 0 and always calls the delegate's
// commit, propagating any error even when not currently in a transaction.
func (c *Connection) Commit(ctx context.Context) error {
	c.txDepth = 0
	if !c.delegate.Commit(ctx) {
		return newSQLError("%s", c.GetLastError())
	}
	return nil
}

// Rollback clears the current result set first if a transaction is open,
// resets the transaction depth to 0, then always calls the delegate's
// rollback, propagating any error.
func (c *Connection) Rollback(ctx context.Context) error {
	if c.txDepth > 0 {
		c.Clear()
		c.txDepth = 0
	}
	if !c.delegate.Rollback(ctx) {
		return newSQLError("%s", c.GetLastError())
	}
	return nil
}

// LastRowId returns the last auto-generated row id, or -1 if the backend
// does not support this (e.g. Oracle).
func (c *Connection) LastRowId() int64 {
	id, ok := c.delegate.LastRowId()
	if !ok {
		return -1
	}
	return id
}

// RowsChanged returns the number of rows affected by the most recent
// execute.
func (c *Connection) RowsChanged() int64 { return c.delegate.RowsChanged() }

// Execute runs sql with no expectation of rows, disposing any existing
// result set first. Trailing args, if any, are bound positionally against
// `?` placeholders in sql through a one-shot PreparedStatement rather than
// interpolated into the SQL text — libzdb's execute/executeQuery accept a
// printf-style varargs format string, but splicing caller-supplied values
// straight into SQL text is exactly the pattern that leads to injection
// bugs, so this rendering always binds instead of formats.
func (c *Connection) Execute(ctx context.Context, sql string, args ...interface{}) error {
	c.disposeCurrentResult()

	if len(args) > 0 {
		stmt, err := c.prepare(ctx, sql)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, a := range args {
			if err := stmt.bindAny(i+1, a); err != nil {
				return err
			}
		}
		return stmt.Execute(ctx)
	}

	if !c.delegate.Execute(ctx, sql) {
		return newSQLError("%s", c.GetLastError())
	}
	return nil
}

// ExecuteQuery runs sql and stores the returned ResultSet as the
// connection's current one, disposing any previous one first. Trailing
// args are bound the same way Execute binds them — through a one-shot
// PreparedStatement, never by formatting them into sql.
func (c *Connection) ExecuteQuery(ctx context.Context, sql string, args ...interface{}) (*ResultSet, error) {
	c.disposeCurrentResult()

	if len(args) > 0 {
		stmt, err := c.prepare(ctx, sql)
		if err != nil {
			return nil, err
		}
		for i, a := range args {
			if err := stmt.bindAny(i+1, a); err != nil {
				stmt.Close()
				return nil, err
			}
		}
		rs, err := stmt.ExecuteQuery(ctx)
		if err != nil {
			stmt.Close()
			return nil, err
		}
		// stmt stays open (and in c.prepared) for as long as rs lives — a
		// statement owns the result set it produced, so closing it here
		// would tear rs down before the caller ever reads from it.
		c.currentResult = rs
		return rs, nil
	}

	delRows, ok := c.delegate.ExecuteQuery(ctx, sql)
	if !ok || delRows == nil {
		return nil, newSQLError("%s", c.GetLastError())
	}
	rs := newResultSet(delRows, c.maxRows)
	c.currentResult = rs
	return rs, nil
}

// PrepareStatement compiles sql into a reusable PreparedStatement bound to
// this connection, applying the backend's placeholder rewrite first if it
// needs one (PostgreSQL, Oracle).
func (c *Connection) PrepareStatement(ctx context.Context, sql string) (*PreparedStatement, error) {
	return c.prepare(ctx, sql)
}

func (c *Connection) prepare(ctx context.Context, sql string) (*PreparedStatement, error) {
	if c.placeholderPrefix != "" {
		rewritten, _, err := rewrite.Rewrite(sql, c.placeholderPrefix)
		if err != nil {
			return nil, newSQLError("%s", err)
		}
		sql = rewritten
	}
	delStmt, ok := c.delegate.PrepareStatement(ctx, sql)
	if !ok || delStmt == nil {
		return nil, newSQLError("%s", c.GetLastError())
	}
	stmt := newPreparedStatement(c, delStmt)
	c.prepared = append(c.prepared, stmt)
	return stmt, nil
}

// Clear disposes the current result set, restores maxRows and the query
// timeout to their defaults, and destroys every prepared statement created
// from this connection.
func (c *Connection) Clear() {
	c.disposeCurrentResult()
	if c.maxRows != 0 {
		c.SetMaxRows(0)
	}
	if c.queryTimeoutMs != DefaultQueryTimeoutMs {
		c.SetQueryTimeout(DefaultQueryTimeoutMs)
	}
	for _, s := range c.prepared {
		s.destroy()
	}
	c.prepared = nil
}

func (c *Connection) disposeCurrentResult() {
	if c.currentResult != nil {
		c.currentResult.destroy()
		c.currentResult = nil
	}
}

// removePrepared drops stmt from the connection's owned list, called when a
// PreparedStatement is closed individually (outside of Clear).
func (c *Connection) removePrepared(stmt *PreparedStatement) {
	for i, s := range c.prepared {
		if s == stmt {
			c.prepared = append(c.prepared[:i], c.prepared[i+1:]...)
			return
		}
	}
}

// Close returns the connection to its parent pool; it does not destroy the
// underlying physical connection.
func (c *Connection) Close() {
	c.pool.returnConnection(c)
}

// GetLastError returns the driver's error text, or the "?" sentinel when
// the driver supplies none.
func (c *Connection) GetLastError() string {
	if s := c.delegate.LastError(); s != "" {
		return s
	}
	return lastErrorSentinel
}

// destroy tears down the connection's children in order: active result
// set, then prepared statements, then finally the driver delegate.
func (c *Connection) destroy() {
	c.Clear()
	_ = c.delegate.Close()
}
