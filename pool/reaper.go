package pool

import (
	"context"
	"time"
)

// runReaper periodically sweeps the idle connection channel, closing any
// connection that has sat idle past the connection timeout or that fails a
// ping, down to a floor of InitialConnections kept warm. It is the Go
// rendering of the source's reaper thread: a fixed-interval sweep rather
// than a dedicated condition-variable wakeup, since Go's runtime-managed
// goroutines make a plain ticker the idiomatic equivalent.
func (p *Pool) runReaper() {
	defer close(p.reaperDone)

	interval := time.Duration(p.cfg.SweepIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.reaperStop:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

// sweep drains every currently idle connection off the channel, decides
// which survive, and pushes survivors back. Connections still checked out
// by a caller are never touched. The floor of InitialConnections idle
// connections is preserved even past their timeout, so the pool never
// dips below its warm-start size purely from reaping.
func (p *Pool) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	timeout := time.Duration(p.cfg.ConnectionTimeoutSeconds) * time.Second
	now := time.Now()

	var idle []*Connection
draining:
	for {
		select {
		case c := <-p.idleConnections:
			idle = append(idle, c)
		default:
			break draining
		}
	}

	keepFloor := p.cfg.InitialConnections
	kept := 0
	for _, c := range idle {
		expired := now.Sub(c.lastAccessedAt()) > timeout
		if kept < keepFloor || (!expired && c.Ping(ctx)) {
			p.idleConnections <- c
			kept++
			continue
		}
		p.discard(c)
		p.logger.Debugw("dbpool: reaped idle connection", "id", c.ID())
	}
}
