package dialect

import (
	"context"
	"errors"
	"fmt"
)

// DB drives a Dialect: it compiles queries, acquires connections from the
// Driver and releases them once the query has run.
type DB struct {
	dialect  Dialect
	driver   Driver
	compiler QueryCompiler
	adapter  Adapter
}

var _ Executor = (*DB)(nil)

// New creates a DB for d and initializes its Driver.
func New(ctx context.Context, d Dialect) (*DB, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: dialect is nil", ErrValidation)
	}

	db := &DB{
		dialect:  d,
		driver:   d.CreateDriver(),
		compiler: d.CreateQueryCompiler(),
		adapter:  d.CreateAdapter(),
	}

	if err := db.driver.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize driver: %w", err)
	}

	return db, nil
}

// Compile compiles q with the dialect's QueryCompiler.
func (db *DB) Compile(q Query) (CompiledQuery, error) {
	return db.compiler.Compile(q)
}

// Execute compiles q and runs it on a freshly acquired connection.
func (db *DB) Execute(ctx context.Context, q Query) (QueryResult, error) {
	compiled, err := db.compiler.Compile(q)
	if err != nil {
		return QueryResult{}, err
	}
	return db.ExecuteCompiled(ctx, compiled)
}

// ExecuteCompiled runs an already compiled query. The connection is released
// whether or not the query succeeds.
func (db *DB) ExecuteCompiled(ctx context.Context, q CompiledQuery) (res QueryResult, err error) {
	conn, err := db.driver.AcquireConnection(ctx)
	if err != nil {
		return QueryResult{}, err
	}
	defer func() {
		if releaseErr := db.driver.ReleaseConnection(ctx, conn); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	return conn.ExecuteQuery(ctx, q)
}

// Transaction runs fn inside a transaction on a single connection. The
// transaction is committed when fn returns nil and rolled back otherwise.
// Errors from the driver are returned unchanged so callers can tell an
// unsupported transaction apart from a failed one.
func (db *DB) Transaction(ctx context.Context, settings TransactionSettings, fn func(conn Connection) error) (err error) {
	conn, err := db.driver.AcquireConnection(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := db.driver.ReleaseConnection(ctx, conn); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	if err := db.driver.BeginTransaction(ctx, conn, settings); err != nil {
		return err
	}

	if err := fn(conn); err != nil {
		if rbErr := db.driver.RollbackTransaction(ctx, conn); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return db.driver.CommitTransaction(ctx, conn)
}

// Introspection returns the dialect's Introspector running through db.
func (db *DB) Introspection() Introspector {
	return db.dialect.CreateIntrospector(db)
}

// Adapter returns the dialect's Adapter.
func (db *DB) Adapter() Adapter { return db.adapter }

// Destroy tears down the underlying Driver.
func (db *DB) Destroy(ctx context.Context) error {
	return db.driver.Destroy(ctx)
}
