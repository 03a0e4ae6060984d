package driver

import (
	"context"
	"sort"
	"strings"
	"sync"

	"dbpool/rewrite"
)

// Value is a parameter bound to a statement or a column value read back from
// a result set. Backends only ever produce/consume the subset of Go types
// database/sql/driver already standardizes on: int64, float64, bool,
// []byte, string, time.Time, nil.
type Value = interface{}

// Conn is the capability set every backend adapter's open connection must
// implement — the Go rendering of libzdb's ConnectionOps/Cop_T vtable
// (original_source/src/db/ConnectionDelegate.h). A Conn is owned by exactly
// one pool slot at a time.
type Conn interface {
	// Close releases all native resources held by this delegate.
	Close() error

	// Ping reports whether the underlying connection is currently usable.
	// Called by the pool before it hands out an idle connection and by the
	// reaper, without the pool mutex held — adapters must keep this call
	// cheap and must never call back into the pool.
	Ping(ctx context.Context) bool

	SetQueryTimeout(ms int)
	SetMaxRows(n int)

	BeginTransaction(ctx context.Context) bool
	Commit(ctx context.Context) bool
	Rollback(ctx context.Context) bool

	LastRowId() (int64, bool)
	RowsChanged() int64

	// Execute runs sql (already formatted, already placeholder-rewritten if
	// the backend needs it) with no expectation of rows.
	Execute(ctx context.Context, sql string) bool

	// ExecuteQuery runs sql and returns a forward-only cursor.
	ExecuteQuery(ctx context.Context, sql string) (Rows, bool)

	// PrepareStatement compiles sql (placeholder-rewritten if needed) into a
	// reusable Stmt bound to this connection.
	PrepareStatement(ctx context.Context, sql string) (Stmt, bool)

	// LastError returns the most recent driver-reported error text, or ""
	// if none is available (the façade substitutes the "?" sentinel).
	LastError() string
}

// Stmt is the capability set of a prepared statement delegate — the Go
// rendering of libzdb's PreparedOps/Pop_T vtable
// (original_source/src/db/PreparedStatementDelegate.h).
type Stmt interface {
	Close() error

	ParameterCount() int

	SetString(parameterIndex int, x *string) bool
	SetInt(parameterIndex int, x int) bool
	SetLLong(parameterIndex int, x int64) bool
	SetDouble(parameterIndex int, x float64) bool
	SetBlob(parameterIndex int, x []byte) bool
	SetTimestamp(parameterIndex int, epochSeconds int64) bool

	Execute(ctx context.Context) bool
	ExecuteQuery(ctx context.Context) (Rows, bool)

	RowsChanged() int64
	LastError() string
}

// Rows is the capability set of a result set delegate — the Go rendering of
// libzdb's ResultOps/Rop_T vtable
// (original_source/src/db/ResultSetDelegate.h). Forward-only, single-pass.
type Rows interface {
	Close() error

	ColumnCount() int
	ColumnName(columnIndex int) string
	ColumnSize(columnIndex int) int

	// Next advances the cursor. false means the cursor is exhausted; the
	// façade layers the maxRows cutoff on top of this.
	Next(ctx context.Context) bool

	IsNull(columnIndex int) bool

	// GetString returns the driver's string representation of the current
	// row's column, and false if the value is SQL NULL.
	GetString(columnIndex int) (string, bool)

	// GetBlob returns the raw bytes of the current row's column, and false
	// if the value is SQL NULL. The returned slice is only valid until the
	// next call to Next or to Close.
	GetBlob(columnIndex int) ([]byte, bool)
}

// Factory opens new delegates for one backend protocol and carries a
// process-wide teardown hook for drivers whose client library needs
// explicit global cleanup.
type Factory interface {
	// Name is the protocol prefix this factory answers to, e.g. "mysql",
	// "postgresql", "sqlite", "oracle".
	Name() string

	// Open dials a new physical connection described by u.
	Open(ctx context.Context, u *URL) (Conn, error)

	// PlaceholderPrefix reports the native positional-placeholder prefix
	// `?` markers must be rewritten to before prepareStatement or a
	// parameterised executeQuery — rewrite.Postgres ("$") for PostgreSQL,
	// rewrite.Oracle (":") for Oracle, or "" for backends that accept `?`
	// natively (MySQL, SQLite).
	PlaceholderPrefix() rewrite.Prefix

	// OnStop is called by Pool.Stop each time a pool using this backend
	// stops; it is not deferred until the last such pool has stopped. Most
	// adapters make this a no-op.
	OnStop()
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a backend adapter to the process-wide registry. Adapters
// call this from an init() function. Registering the same name twice
// replaces the previous entry (useful for tests that substitute a fake
// backend).
func Register(f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[f.Name()] = f
}

// Lookup finds the Factory whose name is a prefix of protocol, preferring
// the longest matching name — the Go rendering of Connection.c's getOp(),
// which scans a compiled-in table with Str_startsWith.
func Lookup(protocol string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var best Factory
	for name, f := range registry {
		if strings.HasPrefix(protocol, name) {
			if best == nil || len(name) > len(best.Name()) {
				best = f
			}
		}
	}
	return best, best != nil
}

// IsSupported reports whether some registered adapter can open u, without
// actually opening a connection.
func IsSupported(u *URL) bool {
	if u == nil {
		return false
	}
	_, ok := Lookup(u.Protocol)
	return ok
}

// RegisteredNames returns the sorted list of currently registered protocol
// names, for diagnostics.
func RegisteredNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
