package pool

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Defaults mirror libzdb's Config.h (original_source/src/Config.h).
const (
	DefaultMaxConnections           = 20
	DefaultInitialConnections       = 5
	DefaultConnectionTimeoutSeconds = 30
	DefaultSweepIntervalSeconds     = 60
	DefaultQueryTimeoutMs           = 3000
)

// Version is the fixed version string returned by Pool.Version(), the Go
// rendering of ConnectionPool_version()/ABOUT (original_source/src/db/
// ConnectionPool.c).
const Version = "dbpool/1.0.0"

// Config packs every pool-construction option. New(url, Config{}) applies
// the zero-value defaults below via Config.withDefaults, except for
// InitialConnections: unlike the other fields, 0 there is a meaningful
// value in its own right ("don't warm up any connections, grow lazily on
// demand up to MaxConnections") rather than "unset", so it is never
// defaulted away.
type Config struct {
	MaxConnections           int
	InitialConnections       int
	ConnectionTimeoutSeconds int
	SweepIntervalSeconds     int
	ReaperEnabled            bool

	// Logger receives debug/warn lines from the pool, the reaper and the
	// backend adapters. Defaults to zap.NewNop().
	Logger *zap.Logger

	// Metrics, when true, registers the pool's prometheus gauges/counters.
	// Registration is best-effort: a collision with an already-registered
	// collector is logged and ignored, never fatal.
	Metrics bool
}

func (c Config) withDefaults() (Config, error) {
	if c.MaxConnections == 0 {
		c.MaxConnections = DefaultMaxConnections
	}
	if c.ConnectionTimeoutSeconds == 0 {
		c.ConnectionTimeoutSeconds = DefaultConnectionTimeoutSeconds
	}
	if c.SweepIntervalSeconds == 0 {
		c.SweepIntervalSeconds = DefaultSweepIntervalSeconds
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.InitialConnections < 0 {
		return c, &AssertError{Message: "initial connections must be >= 0"}
	}
	if c.InitialConnections > c.MaxConnections {
		return c, &AssertError{Message: "initial connections must be <= max connections"}
	}
	if c.ConnectionTimeoutSeconds <= 0 {
		return c, &AssertError{Message: "connection timeout must be > 0"}
	}
	if c.SweepIntervalSeconds <= 0 {
		return c, &AssertError{Message: "sweep interval must be > 0"}
	}
	return c, nil
}

// ConfigFromEnv layers environment-variable overrides on top of base using
// spf13/viper, for operators who want "<prefix>_MAX_CONNECTIONS"-style
// overrides without editing code. New(rawURL, Config) accepting
// a literal struct remains the canonical constructor; this is a
// convenience wrapper around it.
func ConfigFromEnv(prefix string, base Config) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetDefault("max_connections", base.MaxConnections)
	v.SetDefault("initial_connections", base.InitialConnections)
	v.SetDefault("connection_timeout_seconds", base.ConnectionTimeoutSeconds)
	v.SetDefault("sweep_interval_seconds", base.SweepIntervalSeconds)
	v.SetDefault("reaper_enabled", base.ReaperEnabled)
	v.SetDefault("metrics", base.Metrics)

	cfg := base
	cfg.MaxConnections = v.GetInt("max_connections")
	cfg.InitialConnections = v.GetInt("initial_connections")
	cfg.ConnectionTimeoutSeconds = v.GetInt("connection_timeout_seconds")
	cfg.SweepIntervalSeconds = v.GetInt("sweep_interval_seconds")
	cfg.ReaperEnabled = v.GetBool("reaper_enabled")
	cfg.Metrics = v.GetBool("metrics")

	if strings.TrimSpace(prefix) == "" {
		return Config{}, fmt.Errorf("dbpool: ConfigFromEnv requires a non-empty prefix")
	}
	return cfg, nil
}
