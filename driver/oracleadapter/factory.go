// Package oracleadapter adapts github.com/godror/godror's driver.Connector/
// driver.Conn to the driver.Conn/driver.Stmt/driver.Rows contract.
// godror cancels its underlying OCI call when its context is done, so the
// watchdog behaviour the original connection pool implemented with a
// countdown thread is just context.WithTimeout here.
package oracleadapter

import (
	"context"
	"fmt"

	"github.com/godror/godror"

	"dbpool/driver"
	"dbpool/rewrite"
)

func init() {
	driver.Register(&factory{})
}

type factory struct{}

func (factory) Name() string { return "oracle" }

func (factory) PlaceholderPrefix() rewrite.Prefix { return rewrite.Oracle }

func (factory) OnStop() {}

func (factory) Open(ctx context.Context, u *driver.URL) (driver.Conn, error) {
	params := godror.ConnectionParams{
		Username:      u.User,
		Password:      godror.NewPassword(u.Password),
		ConnectString: fmt.Sprintf("%s:%d/%s", u.Host, u.Port, u.Path),
	}
	connector := godror.NewConnector(params)
	rawConn, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &oracleConn{raw: rawConn, queryTimeoutMs: 0}, nil
}
