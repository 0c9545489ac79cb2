package dialect

import (
	"context"
	"iter"
)

// Dialect is the entry point a query builder consumes to target a database.
type Dialect interface {
	// CreateDriver creates the Driver that hands out connections.
	CreateDriver() Driver

	// CreateQueryCompiler creates the compiler for this dialect's SQL variant.
	CreateQueryCompiler() QueryCompiler

	// CreateAdapter creates the Adapter describing dialect quirks.
	CreateAdapter() Adapter

	// CreateIntrospector creates a schema introspector that runs its queries
	// through exec.
	CreateIntrospector(exec Executor) Introspector
}

// Driver manages connections and transactions for a Dialect.
type Driver interface {
	// Init prepares the driver. It must be called before AcquireConnection.
	Init(ctx context.Context) error

	// AcquireConnection returns a Connection ready to execute queries.
	AcquireConnection(ctx context.Context) (Connection, error)

	// BeginTransaction starts a transaction on conn.
	BeginTransaction(ctx context.Context, conn Connection, settings TransactionSettings) error

	// CommitTransaction commits the transaction open on conn.
	CommitTransaction(ctx context.Context, conn Connection) error

	// RollbackTransaction rolls back the transaction open on conn.
	RollbackTransaction(ctx context.Context, conn Connection) error

	// ReleaseConnection returns conn to the driver.
	ReleaseConnection(ctx context.Context, conn Connection) error

	// Destroy tears the driver down.
	Destroy(ctx context.Context) error
}

// Connection executes compiled queries against a database.
type Connection interface {
	// ExecuteQuery runs q and returns its result.
	ExecuteQuery(ctx context.Context, q CompiledQuery) (QueryResult, error)

	// StreamQuery runs q and yields results in chunks of at most chunkSize rows.
	StreamQuery(ctx context.Context, q CompiledQuery, chunkSize int) (iter.Seq2[QueryResult, error], error)
}

// IsolationLevel names a transaction isolation level.
type IsolationLevel string

// TransactionSettings carries the options of a transaction.
type TransactionSettings struct {
	IsolationLevel IsolationLevel
}

// QueryCompiler turns a Query into SQL for a specific dialect.
type QueryCompiler interface {
	Compile(q Query) (CompiledQuery, error)
}

// Adapter describes dialect-specific behaviour the query builder depends on.
type Adapter interface {
	// SupportsTransactionalDDL reports whether schema changes can run inside a transaction.
	SupportsTransactionalDDL() bool

	// SupportsReturning reports whether INSERT/UPDATE/DELETE accept a RETURNING clause.
	SupportsReturning() bool

	// AcquireMigrationLock takes the lock guarding schema migrations.
	AcquireMigrationLock(ctx context.Context, exec Executor) error

	// ReleaseMigrationLock releases the lock taken by AcquireMigrationLock.
	ReleaseMigrationLock(ctx context.Context, exec Executor) error
}

// Executor runs compiled queries. DB implements it by acquiring a connection
// per call.
type Executor interface {
	ExecuteCompiled(ctx context.Context, q CompiledQuery) (QueryResult, error)
}

// Introspector discovers the schema of a database.
type Introspector interface {
	// GetSchemas lists the schemas of the database.
	GetSchemas(ctx context.Context) ([]SchemaMetadata, error)

	// GetTables lists tables and views with their columns.
	GetTables(ctx context.Context, opts TableOptions) ([]TableMetadata, error)

	// GetMetadata returns the full database metadata.
	GetMetadata(ctx context.Context, opts TableOptions) (DatabaseMetadata, error)
}

// TableOptions controls which tables an Introspector reports.
type TableOptions struct {
	// WithInternalTables includes engine and service bookkeeping tables.
	WithInternalTables bool
}

// SchemaMetadata describes a schema.
type SchemaMetadata struct {
	Name string
}

// DatabaseMetadata describes a whole database.
type DatabaseMetadata struct {
	Tables []TableMetadata
}

// TableMetadata describes a table or view.
type TableMetadata struct {
	Name    string
	Schema  string
	IsView  bool
	Columns []ColumnMetadata
}

// ColumnMetadata describes a single column.
type ColumnMetadata struct {
	Name               string
	DataType           string
	IsNullable         bool
	HasDefaultValue    bool
	IsAutoIncrementing bool
}
