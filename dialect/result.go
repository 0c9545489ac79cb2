package dialect

// QueryKind tags a CompiledQuery as row-producing or as a mutation.
type QueryKind int

const (
	// KindSelect marks a query that produces rows.
	KindSelect QueryKind = iota
	// KindInsert marks an INSERT statement.
	KindInsert
	// KindUpdate marks an UPDATE statement.
	KindUpdate
	// KindDelete marks a DELETE statement.
	KindDelete
	// KindRaw marks hand-written SQL executed for its effect.
	KindRaw
)

// String returns a short lower-case name for the kind.
func (k QueryKind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// CompiledQuery is SQL text plus positional parameters, ready to be executed.
// Parameters are bound in order to the ? placeholders in SQL.
type CompiledQuery struct {
	SQL        string
	Parameters []any
	Kind       QueryKind
}

// ReturnsRows reports whether the query is executed for its rows rather than
// for its effect.
func (q CompiledQuery) ReturnsRows() bool { return q.Kind == KindSelect }

// Row is a single result row keyed by column name.
type Row map[string]any

// QueryResult holds either the rows of a row-producing query or the effect of
// a mutation. NumAffectedRows is nil for row-producing queries.
type QueryResult struct {
	// Rows are the returned rows. Mutations always carry an empty, non-nil slice.
	Rows []Row

	// NumAffectedRows is the number of rows changed by a mutation.
	NumAffectedRows *uint64

	// InsertID is the rowid of the last inserted row reported by a mutation.
	InsertID *int64
}
