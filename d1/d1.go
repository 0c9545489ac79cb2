package d1

import (
	"github.com/tarmac-project/d1sdk/binding"
	"github.com/tarmac-project/d1sdk/dialect"
	"github.com/tarmac-project/d1sdk/logging"
	"github.com/tarmac-project/d1sdk/metrics"
	"github.com/tarmac-project/d1sdk/sqlite"
)

// Config configures a D1 Dialect.
type Config struct {
	// Database is the D1 binding queries run against. It is required, but
	// only checked when a connection is acquired.
	Database binding.Database

	// Logger receives driver and query diagnostics. Nil discards them.
	Logger logging.Client

	// Metrics records query and connection metrics. Nil disables them.
	Metrics metrics.Client
}

// Dialect targets D1 through its binding, reusing the SQLite compiler,
// adapter and introspector.
type Dialect struct {
	cfg Config
}

var _ dialect.Dialect = (*Dialect)(nil)

// New creates a D1 Dialect.
func New(cfg Config) *Dialect {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Dialect{cfg: cfg}
}

// CreateDriver returns a new Driver for the configured binding.
func (d *Dialect) CreateDriver() dialect.Driver {
	return newDriver(d.cfg)
}

// CreateQueryCompiler returns the SQLite query compiler.
func (d *Dialect) CreateQueryCompiler() dialect.QueryCompiler {
	return sqlite.QueryCompiler{}
}

// CreateAdapter returns the SQLite adapter.
func (d *Dialect) CreateAdapter() dialect.Adapter {
	return sqlite.Adapter{}
}

// CreateIntrospector returns the SQLite introspector running through exec.
func (d *Dialect) CreateIntrospector(exec dialect.Executor) dialect.Introspector {
	return sqlite.NewIntrospector(exec)
}
