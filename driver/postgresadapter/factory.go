// Package postgresadapter adapts github.com/lib/pq's database/sql/driver.Conn
// directly to the driver.Conn/driver.Stmt/driver.Rows contract. Placeholder
// rewriting from `?` to `$n` happens one layer up, in the pool package, via
// PlaceholderPrefix; the per-call query timeout is enforced server-side with
// `SET statement_timeout`, since lib/pq has no client-side query-cancel hook
// short of closing the connection outright.
package postgresadapter

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"dbpool/driver"
	"dbpool/rewrite"
)

func init() {
	driver.Register(&factory{})
}

type factory struct{}

func (factory) Name() string { return "postgresql" }

func (factory) PlaceholderPrefix() rewrite.Prefix { return rewrite.Postgres }

func (factory) OnStop() {}

func (factory) Open(ctx context.Context, u *driver.URL) (driver.Conn, error) {
	dsn := buildDSN(u)
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, err
	}
	rawConn, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &postgresConn{raw: rawConn}, nil
}

func buildDSN(u *driver.URL) string {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s",
		u.Host, u.Port, u.Path, u.User, u.Password)
	if u.ParamBool("use-ssl", false) {
		dsn += " sslmode=require"
	} else {
		dsn += " sslmode=disable"
	}
	for k, v := range u.Params {
		if k == "use-ssl" || k == "user" || k == "password" {
			continue
		}
		dsn += fmt.Sprintf(" %s=%s", k, v)
	}
	return dsn
}
