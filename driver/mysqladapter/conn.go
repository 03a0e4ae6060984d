package mysqladapter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ziutek/mymysql/mysql"

	"dbpool/driver"
)

// queryRunner is the subset of mysql.Conn's and mysql.Transaction's method
// sets this adapter needs. Both satisfy it structurally: a transaction in
// mymysql exposes the same query/prepare surface as the connection it was
// started from, routed to run inside that transaction.
type queryRunner interface {
	Query(sql string, params ...interface{}) ([]mysql.Row, mysql.Result, error)
	Prepare(sql string) (mysql.Stmt, error)
}

type mysqlConn struct {
	raw mysql.Conn

	queryTimeoutMs int
	maxRows        int
	charset        string
	collation      string

	trans   mysql.Transaction
	lastErr string

	lastResult mysql.Result
}

func (c *mysqlConn) runner() queryRunner {
	if c.trans != nil {
		return c.trans
	}
	return c.raw
}

func (c *mysqlConn) prepareSession() error {
	if c.collation != "" && c.charset == "" {
		return fmt.Errorf("mysqladapter: collation given without charset")
	}
	query := ""
	if c.charset != "" {
		query = fmt.Sprintf("SET NAMES '%s'", c.charset)
		if c.collation != "" {
			query = fmt.Sprintf("%s COLLATE '%s'", query, c.collation)
		}
	}
	if query == "" {
		return nil
	}
	_, _, err := c.raw.Query(query)
	return err
}

func (c *mysqlConn) Close() error { return c.raw.Close() }

func (c *mysqlConn) Ping(ctx context.Context) bool {
	if !c.raw.IsConnected() {
		return false
	}
	return c.raw.Ping() == nil
}

func (c *mysqlConn) SetQueryTimeout(ms int) { c.queryTimeoutMs = ms }
func (c *mysqlConn) SetMaxRows(n int)       { c.maxRows = n }

func (c *mysqlConn) BeginTransaction(ctx context.Context) bool {
	err := c.withTimeout(ctx, func() error {
		return c.destroyOnError(func() error {
			t, e := c.raw.Begin()
			if e == nil {
				c.trans = t
			}
			return e
		})
	})
	return err == nil
}

func (c *mysqlConn) Commit(ctx context.Context) bool {
	if c.trans == nil {
		return false
	}
	err := c.withTimeout(ctx, func() error {
		return c.destroyOnError(func() error { return c.trans.Commit() })
	})
	c.trans = nil
	return err == nil
}

func (c *mysqlConn) Rollback(ctx context.Context) bool {
	if c.trans == nil {
		return false
	}
	err := c.withTimeout(ctx, func() error {
		return c.destroyOnError(func() error { return c.trans.Rollback() })
	})
	c.trans = nil
	return err == nil
}

func (c *mysqlConn) LastRowId() (int64, bool) {
	if c.lastResult == nil {
		return 0, false
	}
	return int64(c.lastResult.InsertId()), true
}

func (c *mysqlConn) RowsChanged() int64 {
	if c.lastResult == nil {
		return 0
	}
	return int64(c.lastResult.AffectedRows())
}

func (c *mysqlConn) Execute(ctx context.Context, sql string) bool {
	err := c.withTimeout(ctx, func() error {
		return c.destroyOnError(func() error {
			_, result, e := c.runner().Query(sql)
			if e == nil {
				c.lastResult = result
			}
			return e
		})
	})
	return err == nil
}

func (c *mysqlConn) ExecuteQuery(ctx context.Context, sql string) (driver.Rows, bool) {
	var rows []mysql.Row
	var result mysql.Result
	err := c.withTimeout(ctx, func() error {
		return c.destroyOnError(func() error {
			r, res, e := c.runner().Query(sql)
			rows, result = r, res
			return e
		})
	})
	if err != nil {
		return nil, false
	}
	c.lastResult = result
	return newMysqlRows(result, rows), true
}

func (c *mysqlConn) PrepareStatement(ctx context.Context, sql string) (driver.Stmt, bool) {
	var raw mysql.Stmt
	err := c.withTimeout(ctx, func() error {
		return c.destroyOnError(func() error {
			s, e := c.runner().Prepare(sql)
			raw = s
			return e
		})
	})
	if err != nil {
		return nil, false
	}
	return newMysqlStmt(c, raw), true
}

func (c *mysqlConn) LastError() string { return c.lastErr }

// withTimeout bounds f by queryTimeoutMs (if set) and by ctx, killing the
// underlying connection if either fires first — closing it is what cancels
// the in-flight query on the server.
func (c *mysqlConn) withTimeout(ctx context.Context, f func() error) error {
	done := make(chan error, 1)
	go func() { done <- f() }()

	var timeout <-chan time.Time
	if c.queryTimeoutMs > 0 {
		timer := time.NewTimer(time.Duration(c.queryTimeoutMs) * time.Millisecond)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		if err != nil {
			c.lastErr = err.Error()
		}
		return err
	case <-timeout:
		c.raw.Close()
		c.lastErr = "query took too long to execute"
		return fmt.Errorf("mysqladapter: %s", c.lastErr)
	case <-ctx.Done():
		c.raw.Close()
		c.lastErr = ctx.Err().Error()
		return ctx.Err()
	}
}

// destroyOnError closes the underlying connection when f fails in a way
// that means the connection itself is no longer trustworthy: any non-MySQL
// error other than io.EOF, or a MySQL error whose code names a server- or
// network-level failure rather than an ordinary query rejection.
func (c *mysqlConn) destroyOnError(f func() error) error {
	err := f()
	if err == nil {
		return nil
	}
	if mysqlErr, ok := err.(*mysql.Error); ok {
		switch mysqlErr.Code {
		case
			1021, // Disk is full
			1037, // Server is out of memory and needs to be restarted
			1041, // Server is out of memory
			1042, // Can't get hostname
			1043, // Bad handshake
			1044, // Access denied to database
			1045, // Access denied
			1053, // Server shutdown in progress
			1077, // Normal shutdown
			1078, // Aborting because of signal
			1079, // Shutdown complete
			1080, // Forcing thread to close
			1081, // Can't create IP socket
			1114, // Table is full
			1119, // Thread stack overrun
			1152, // Aborting connection
			1153, // Network packet too large
			1154, // Read error from pipe
			1155, // Error from fcntl()
			1156, // Network packets out of order
			1157, // Couldn't decompress packet
			1158, // Error reading network packets
			1159, // Timeout when reading packets
			1160, // Error writing network packets
			1161, // Timeout when writing packets
			1188, // Error from master
			1189, // Network error reading from master
			1190, // Network error writing to master
			1194, // Table has crashed and requires repair
			1195, // Table has crashed and repair failed
			1197, // Transaction cache is full
			1203, // User has too many connections
			1218, // Error connecting to master
			1219, // Error running query on master
			1436, // Thread stack overrun
			1459, // Table upgrade required
			1534, // Writing to binlog failed
			1535, // Table definitions on master and slave don't match
			1547, // Column count wrong; table is probably corrupted
			1548, // Table is probably corrupted
			1610, // Corrupted replication statement
			1705: // Statement cache is full
			c.raw.Close()
		default:
			if mysqlErr.Code >= 2000 {
				c.raw.Close()
			}
		}
	} else if err != io.EOF {
		c.raw.Close()
	}
	return err
}
