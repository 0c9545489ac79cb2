package d1

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/tarmac-project/d1sdk/binding"
	"github.com/tarmac-project/d1sdk/dialect"
	"github.com/tarmac-project/d1sdk/logging"
)

// Driver hands out connections over a single D1 binding. D1 has no
// connection state, transactions or lifecycle reachable from here, so the
// corresponding operations fail with a NotImplementedError.
type Driver struct {
	cfg  Config
	log  logging.Client
	inst *instruments

	mu sync.RWMutex
	// db is set by Init.
	db binding.Database
}

var _ dialect.Driver = (*Driver)(nil)

func newDriver(cfg Config) *Driver {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Driver{
		cfg:  cfg,
		log:  log,
		inst: newInstruments(cfg.Metrics, log),
	}
}

// Init stores the configured binding.
func (d *Driver) Init(context.Context) error {
	db := d.cfg.Database
	if isNilBinding(db) {
		db = nil
	}

	d.mu.Lock()
	d.db = db
	d.mu.Unlock()

	if db == nil {
		d.log.Warn("d1: driver initialized without a database binding")
		return nil
	}
	d.log.Debug("d1: driver initialized")
	return nil
}

// AcquireConnection returns a new Connection over the stored binding. It
// fails when Init was skipped or no binding was configured.
func (d *Driver) AcquireConnection(context.Context) (dialect.Connection, error) {
	d.mu.RLock()
	db := d.db
	d.mu.RUnlock()

	if db == nil {
		d.log.Error("d1: connection requested but no database binding is configured")
		return nil, notImplemented("database binding is not configured")
	}

	conn := &Connection{
		id:    uuid.NewString(),
		owner: d,
		db:    db,
		log:   d.log,
		inst:  d.inst,
	}
	d.inst.active.Inc()
	d.log.Trace("d1: connection %s acquired", conn.id)
	return conn, nil
}

// ReleaseConnection always succeeds; D1 connections hold no resources. Only
// the first release of a connection acquired from d is counted.
func (d *Driver) ReleaseConnection(_ context.Context, conn dialect.Connection) error {
	c, ok := conn.(*Connection)
	if !ok || c == nil || c.owner != d {
		return nil
	}
	if c.released.CompareAndSwap(false, true) {
		d.inst.active.Dec()
		d.log.Trace("d1: connection %s released", c.id)
	}
	return nil
}

// BeginTransaction always fails: D1 bindings do not expose transactions.
func (d *Driver) BeginTransaction(context.Context, dialect.Connection, dialect.TransactionSettings) error {
	return d.unsupported("begin transaction", "transactions are not supported")
}

// CommitTransaction always fails: D1 bindings do not expose transactions.
func (d *Driver) CommitTransaction(context.Context, dialect.Connection) error {
	return d.unsupported("commit transaction", "transactions are not supported")
}

// RollbackTransaction always fails: D1 bindings do not expose transactions.
func (d *Driver) RollbackTransaction(context.Context, dialect.Connection) error {
	return d.unsupported("rollback transaction", "transactions are not supported")
}

// Destroy always fails: the binding belongs to the host.
func (d *Driver) Destroy(context.Context) error {
	return d.unsupported("destroy", "cannot destroy database binding")
}

func (d *Driver) unsupported(op, msg string) error {
	d.log.Warn("d1: %s attempted: %s", op, msg)
	return notImplemented(msg)
}

// isNilBinding reports whether db is nil or an interface holding a nil
// pointer, map, func or similar.
func isNilBinding(db binding.Database) bool {
	if db == nil {
		return true
	}
	v := reflect.ValueOf(db)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
