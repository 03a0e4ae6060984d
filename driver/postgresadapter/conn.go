package postgresadapter

import (
	"context"
	gosqldriver "database/sql/driver"
	"fmt"

	"dbpool/driver"
)

type postgresConn struct {
	raw gosqldriver.Conn

	queryTimeoutMs int
	maxRows        int
	tx             gosqldriver.Tx
	lastErr        string
	rowsAffected   int64
}

func (c *postgresConn) Close() error { return c.raw.Close() }

func (c *postgresConn) Ping(ctx context.Context) bool {
	pinger, ok := c.raw.(gosqldriver.Pinger)
	if !ok {
		return true
	}
	return pinger.Ping(ctx) == nil
}

func (c *postgresConn) SetQueryTimeout(ms int) {
	c.queryTimeoutMs = ms
	if ms <= 0 {
		c.runExec(context.Background(), "SET statement_timeout = 0", nil)
		return
	}
	c.runExec(context.Background(), fmt.Sprintf("SET statement_timeout = %d", ms), nil)
}

func (c *postgresConn) SetMaxRows(n int) { c.maxRows = n }

func (c *postgresConn) BeginTransaction(ctx context.Context) bool {
	beginner, ok := c.raw.(gosqldriver.ConnBeginTx)
	if !ok {
		return false
	}
	tx, err := beginner.BeginTx(ctx, gosqldriver.TxOptions{})
	if err != nil {
		c.lastErr = err.Error()
		return false
	}
	c.tx = tx
	return true
}

func (c *postgresConn) Commit(ctx context.Context) bool {
	if c.tx == nil {
		return false
	}
	err := c.tx.Commit()
	c.tx = nil
	if err != nil {
		c.lastErr = err.Error()
		return false
	}
	return true
}

func (c *postgresConn) Rollback(ctx context.Context) bool {
	if c.tx == nil {
		return false
	}
	err := c.tx.Rollback()
	c.tx = nil
	if err != nil {
		c.lastErr = err.Error()
		return false
	}
	return true
}

// LastRowId is unsupported: PostgreSQL has no client-visible last-insert-id
// concept analogous to MySQL/SQLite's AUTOINCREMENT; callers that need the
// generated key use "INSERT ... RETURNING id" through ExecuteQuery instead.
func (c *postgresConn) LastRowId() (int64, bool) { return 0, false }
func (c *postgresConn) RowsChanged() int64       { return c.rowsAffected }

func (c *postgresConn) runExec(ctx context.Context, sql string, args []gosqldriver.NamedValue) (gosqldriver.Result, error) {
	execer, ok := c.raw.(gosqldriver.ExecerContext)
	if !ok {
		return nil, fmt.Errorf("postgresadapter: driver does not support ExecerContext")
	}
	return execer.ExecContext(ctx, sql, args)
}

func (c *postgresConn) runQuery(ctx context.Context, sql string, args []gosqldriver.NamedValue) (gosqldriver.Rows, error) {
	queryer, ok := c.raw.(gosqldriver.QueryerContext)
	if !ok {
		return nil, fmt.Errorf("postgresadapter: driver does not support QueryerContext")
	}
	return queryer.QueryContext(ctx, sql, args)
}

func (c *postgresConn) Execute(ctx context.Context, sql string) bool {
	result, err := c.runExec(ctx, sql, nil)
	if err != nil {
		c.lastErr = err.Error()
		return false
	}
	c.rowsAffected, _ = result.RowsAffected()
	return true
}

func (c *postgresConn) ExecuteQuery(ctx context.Context, sql string) (driver.Rows, bool) {
	rows, err := c.runQuery(ctx, sql, nil)
	if err != nil {
		c.lastErr = err.Error()
		return nil, false
	}
	return newPostgresRows(rows), true
}

func (c *postgresConn) PrepareStatement(ctx context.Context, sql string) (driver.Stmt, bool) {
	preparer, ok := c.raw.(gosqldriver.ConnPrepareContext)
	var raw gosqldriver.Stmt
	var err error
	if ok {
		raw, err = preparer.PrepareContext(ctx, sql)
	} else {
		raw, err = c.raw.Prepare(sql)
	}
	if err != nil {
		c.lastErr = err.Error()
		return nil, false
	}
	return newPostgresStmt(c, raw), true
}

func (c *postgresConn) LastError() string { return c.lastErr }
