// Package sqliteadapter adapts github.com/mattn/go-sqlite3's
// database/sql/driver.Conn directly — bypassing database/sql entirely,
// since this module owns its own connection lifecycle and pooling — to the
// driver.Conn/driver.Stmt/driver.Rows contract, with a busy-retry loop
// (github.com/cenkalti/backoff/v4) around SQLITE_BUSY/SQLITE_LOCKED.
package sqliteadapter

import (
	"context"
	gosqldriver "database/sql/driver"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"dbpool/driver"
	"dbpool/rewrite"
)

func init() {
	driver.Register(&factory{})
}

type factory struct{}

func (factory) Name() string { return "sqlite" }

func (factory) PlaceholderPrefix() rewrite.Prefix { return "" }

func (factory) OnStop() {}

func (factory) Open(ctx context.Context, u *driver.URL) (driver.Conn, error) {
	dsn := u.Path
	if dsn == "" {
		return nil, fmt.Errorf("sqliteadapter: connection URL has no database path")
	}
	if len(u.Params) > 0 {
		dsn = dsn + "?" + encodeParams(u.Params)
	}

	sqliteDriver := &sqlite3.SQLiteDriver{}
	raw, err := sqliteDriver.Open(dsn)
	if err != nil {
		return nil, err
	}
	sc, ok := raw.(*sqlite3.SQLiteConn)
	if !ok {
		return nil, fmt.Errorf("sqliteadapter: unexpected connection type %T", raw)
	}

	maxRetries := u.ParamInt("busy_max_retries", 5)
	c := &sqliteConn{raw: sc, maxRetries: maxRetries}
	return c, nil
}

func encodeParams(params map[string]string) string {
	s := ""
	for k, v := range params {
		if s != "" {
			s += "&"
		}
		s += k + "=" + v
	}
	return s
}

var _ gosqldriver.Conn = (*sqlite3.SQLiteConn)(nil)
