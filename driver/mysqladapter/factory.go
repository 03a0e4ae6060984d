// Package mysqladapter adapts github.com/ziutek/mymysql to the driver.Conn/
// driver.Stmt/driver.Rows contract: the same withTimeout/destroyOnError/
// ping behaviour a hand-rolled MySQL pool would need, implemented behind
// an interface instead of embedding mysql.Conn directly, so it can sit
// behind the generic multi-backend pool alongside the other protocol
// adapters.
package mysqladapter

import (
	"context"
	"fmt"
	"time"

	"github.com/ziutek/mymysql/mysql"
	_ "github.com/ziutek/mymysql/native" // native (non-TCP-only) driver

	"dbpool/driver"
	"dbpool/rewrite"
)

func init() {
	driver.Register(&factory{})
}

type factory struct{}

func (factory) Name() string { return "mysql" }

func (factory) PlaceholderPrefix() rewrite.Prefix { return "" }

func (factory) OnStop() {}

func (factory) Open(ctx context.Context, u *driver.URL) (driver.Conn, error) {
	raw := mysql.New("tcp", "", fmt.Sprintf("%s:%d", u.Host, u.Port), u.User, u.Password, u.Path)

	if connectTimeout := u.ParamInt("connect_timeout_ms", 0); connectTimeout > 0 {
		raw.SetTimeout(time.Duration(connectTimeout) * time.Millisecond)
	}

	c := &mysqlConn{
		raw:            raw,
		queryTimeoutMs: 0,
		charset:        u.Param("charset", ""),
		collation:      u.Param("collation", ""),
	}

	if err := c.withTimeout(ctx, func() error { return raw.Connect() }); err != nil {
		return nil, err
	}
	if err := c.prepareSession(); err != nil {
		raw.Close()
		return nil, err
	}
	return c, nil
}
