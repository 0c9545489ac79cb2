package sqlite

import (
	"context"

	"github.com/tarmac-project/d1sdk/dialect"
)

// Adapter reports SQLite's dialect quirks.
type Adapter struct{}

var _ dialect.Adapter = Adapter{}

// SupportsTransactionalDDL is false: schema changes are not wrapped in transactions.
func (Adapter) SupportsTransactionalDDL() bool { return false }

// SupportsReturning is true: SQLite accepts RETURNING since 3.35.
func (Adapter) SupportsReturning() bool { return true }

// AcquireMigrationLock is a no-op. SQLite serializes writers itself.
func (Adapter) AcquireMigrationLock(context.Context, dialect.Executor) error { return nil }

// ReleaseMigrationLock is a no-op.
func (Adapter) ReleaseMigrationLock(context.Context, dialect.Executor) error { return nil }
