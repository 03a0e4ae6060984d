package sqliteadapter

import (
	"context"
	gosqldriver "database/sql/driver"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mattn/go-sqlite3"

	"dbpool/driver"
)

type sqliteConn struct {
	raw        *sqlite3.SQLiteConn
	maxRetries int

	queryTimeoutMs int
	maxRows        int
	tx             gosqldriver.Tx
	lastErr        string
	lastInsertID   int64
	rowsAffected   int64
}

func (c *sqliteConn) Close() error { return c.raw.Close() }

func (c *sqliteConn) Ping(ctx context.Context) bool {
	_, _, err := c.retryingExec("SELECT 1", nil)
	return err == nil
}

func (c *sqliteConn) SetQueryTimeout(ms int) { c.queryTimeoutMs = ms }
func (c *sqliteConn) SetMaxRows(n int)       { c.maxRows = n }

func (c *sqliteConn) BeginTransaction(ctx context.Context) bool {
	tx, err := c.raw.Begin()
	if err != nil {
		c.lastErr = err.Error()
		return false
	}
	c.tx = tx
	return true
}

func (c *sqliteConn) Commit(ctx context.Context) bool {
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

func (c *sqliteConn) Rollback(ctx context.Context) bool {
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

func (c *sqliteConn) LastRowId() (int64, bool) { return c.lastInsertID, true }
func (c *sqliteConn) RowsChanged() int64       { return c.rowsAffected }

func (c *sqliteConn) Execute(ctx context.Context, sql string) bool {
	result, _, err := c.retryingExec(sql, nil)
	if err != nil {
		c.lastErr = err.Error()
		return false
	}
	if result != nil {
		c.lastInsertID, _ = result.LastInsertId()
		affected, _ := result.RowsAffected()
		c.rowsAffected = affected
	}
	return true
}

func (c *sqliteConn) ExecuteQuery(ctx context.Context, sql string) (driver.Rows, bool) {
	_, rows, err := c.retryingExec(sql, nil)
	if err != nil {
		c.lastErr = err.Error()
		return nil, false
	}
	return newSqliteRows(rows), true
}

func (c *sqliteConn) PrepareStatement(ctx context.Context, sql string) (driver.Stmt, bool) {
	raw, err := retryWithBackoff(c.maxRetries, func() (*sqlite3.SQLiteStmt, error) {
		s, e := c.raw.Prepare(sql)
		if e != nil {
			return nil, e
		}
		return s.(*sqlite3.SQLiteStmt), nil
	})
	if err != nil {
		c.lastErr = err.Error()
		return nil, false
	}
	return newSqliteStmt(c, raw), true
}

func (c *sqliteConn) LastError() string { return c.lastErr }

// retryingExec runs a direct (non-prepared) statement through the
// connection's Execer/Queryer surface, retrying on SQLITE_BUSY/
// SQLITE_LOCKED with exponential backoff.
func (c *sqliteConn) retryingExec(sql string, args []gosqldriver.Value) (gosqldriver.Result, gosqldriver.Rows, error) {
	queryer, isQueryer := interface{}(c.raw).(gosqldriver.Queryer)
	execer, isExecer := interface{}(c.raw).(gosqldriver.Execer)

	var result gosqldriver.Result
	var rows gosqldriver.Rows
	_, err := retryWithBackoff(c.maxRetries, func() (struct{}, error) {
		var e error
		if isQueryLike(sql) && isQueryer {
			rows, e = queryer.Query(sql, args)
		} else if isExecer {
			result, e = execer.Exec(sql, args)
		} else {
			stmt, prepErr := c.raw.Prepare(sql)
			if prepErr != nil {
				return struct{}{}, prepErr
			}
			defer stmt.Close()
			result, e = stmt.Exec(args)
		}
		return struct{}{}, e
	})
	return result, rows, err
}

func isQueryLike(sql string) bool {
	for _, r := range sql {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		case 'S', 's':
			return true
		default:
			return false
		}
	}
	return false
}

// retryWithBackoff retries op while it fails with SQLITE_BUSY or
// SQLITE_LOCKED, the two conditions a concurrent SQLite writer can recover
// from by simply waiting.
func retryWithBackoff[T any](maxRetries int, op func() (T, error)) (T, error) {
	var result T
	attempt := 0
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	err := backoff.Retry(func() error {
		var err error
		result, err = op()
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !isBusyOrLocked(err) {
			return backoff.Permanent(err)
		}
		attempt++
		return err
	}, b)
	return result, err
}

func isBusyOrLocked(err error) bool {
	sqliteErr, ok := err.(sqlite3.Error)
	if !ok {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}
