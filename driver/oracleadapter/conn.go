package oracleadapter

import (
	"context"
	gosqldriver "database/sql/driver"
	"time"

	"dbpool/driver"
)

type oracleConn struct {
	raw gosqldriver.Conn

	queryTimeoutMs int
	maxRows        int
	tx             gosqldriver.Tx
	lastErr        string
	rowsAffected   int64
}

func (c *oracleConn) Close() error { return c.raw.Close() }

func (c *oracleConn) Ping(ctx context.Context) bool {
	pinger, ok := c.raw.(gosqldriver.Pinger)
	if !ok {
		return true
	}
	ctx, cancel := c.watchdogCtx(ctx)
	defer cancel()
	return pinger.Ping(ctx) == nil
}

func (c *oracleConn) SetQueryTimeout(ms int) { c.queryTimeoutMs = ms }
func (c *oracleConn) SetMaxRows(n int)       { c.maxRows = n }

// watchdogCtx bounds the call by the connection's query timeout, the Go
// rendering of the countdown-and-break watchdog thread the C client used to
// abort a runaway OCI call: godror cancels the in-flight OCI call as soon as
// its context is done. The returned cancel func must always be called to
// release the timer even when the call finishes before the deadline.
func (c *oracleConn) watchdogCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.queryTimeoutMs <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, time.Duration(c.queryTimeoutMs)*time.Millisecond)
}

func (c *oracleConn) BeginTransaction(ctx context.Context) bool {
	beginner, ok := c.raw.(gosqldriver.ConnBeginTx)
	if !ok {
		return false
	}
	ctx, cancel := c.watchdogCtx(ctx)
	defer cancel()
	tx, err := beginner.BeginTx(ctx, gosqldriver.TxOptions{})
	if err != nil {
		c.lastErr = err.Error()
		return false
	}
	c.tx = tx
	return true
}

func (c *oracleConn) Commit(ctx context.Context) bool {
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

func (c *oracleConn) Rollback(ctx context.Context) bool {
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

// LastRowId is unsupported: Oracle's OCI layer does not expose a portable
// last-generated-identity value the way MySQL/SQLite do (sequences and
// RETURNING-clause columns are the idiomatic replacement).
func (c *oracleConn) LastRowId() (int64, bool) { return 0, false }
func (c *oracleConn) RowsChanged() int64       { return c.rowsAffected }

func (c *oracleConn) Execute(ctx context.Context, sql string) bool {
	execer, ok := c.raw.(gosqldriver.ExecerContext)
	if !ok {
		c.lastErr = "oracleadapter: driver does not support ExecerContext"
		return false
	}
	ctx, cancel := c.watchdogCtx(ctx)
	defer cancel()
	result, err := execer.ExecContext(ctx, sql, nil)
	if err != nil {
		c.lastErr = err.Error()
		return false
	}
	c.rowsAffected, _ = result.RowsAffected()
	return true
}

func (c *oracleConn) ExecuteQuery(ctx context.Context, sql string) (driver.Rows, bool) {
	queryer, ok := c.raw.(gosqldriver.QueryerContext)
	if !ok {
		c.lastErr = "oracleadapter: driver does not support QueryerContext"
		return nil, false
	}
	ctx, cancel := c.watchdogCtx(ctx)
	defer cancel()
	rows, err := queryer.QueryContext(ctx, sql, nil)
	if err != nil {
		c.lastErr = err.Error()
		return nil, false
	}
	return newOracleRows(rows), true
}

func (c *oracleConn) PrepareStatement(ctx context.Context, sql string) (driver.Stmt, bool) {
	preparer, ok := c.raw.(gosqldriver.ConnPrepareContext)
	ctx, cancel := c.watchdogCtx(ctx)
	defer cancel()

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
	return newOracleStmt(c, raw), true
}

func (c *oracleConn) LastError() string { return c.lastErr }
