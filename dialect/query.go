package dialect

// Action is the kind of statement a Query describes.
type Action int

const (
	ActionSelect Action = iota
	ActionInsert
	ActionUpdate
	ActionDelete
	ActionRaw
)

// Condition is a single filter of a WHERE clause. It is a value type built
// with the helper functions below.
type Condition struct {
	field    string
	operator string
	value    any
	logic    string
}

func (c Condition) Field() string    { return c.field }
func (c Condition) Operator() string { return c.operator }
func (c Condition) Value() any       { return c.value }
func (c Condition) Logic() string    { return c.logic }

func cond(field, operator string, value any) Condition {
	return Condition{field: field, operator: operator, value: value, logic: "AND"}
}

// Eq matches rows where field equals value.
func Eq(field string, value any) Condition { return cond(field, "=", value) }

// Neq matches rows where field differs from value.
func Neq(field string, value any) Condition { return cond(field, "!=", value) }

// Gt matches rows where field is greater than value.
func Gt(field string, value any) Condition { return cond(field, ">", value) }

// Gte matches rows where field is greater than or equal to value.
func Gte(field string, value any) Condition { return cond(field, ">=", value) }

// Lt matches rows where field is less than value.
func Lt(field string, value any) Condition { return cond(field, "<", value) }

// Lte matches rows where field is less than or equal to value.
func Lte(field string, value any) Condition { return cond(field, "<=", value) }

// Like matches rows where field matches the LIKE pattern.
func Like(field string, pattern string) Condition { return cond(field, "LIKE", pattern) }

// In matches rows where field is one of values.
func In(field string, values ...any) Condition { return cond(field, "IN", values) }

// IsNull matches rows where field is NULL.
func IsNull(field string) Condition { return cond(field, "IS NULL", nil) }

// IsNotNull matches rows where field is not NULL.
func IsNotNull(field string) Condition { return cond(field, "IS NOT NULL", nil) }

// Or joins c to the preceding condition with OR instead of AND.
func Or(c Condition) Condition {
	c.logic = "OR"
	return c
}

// Order is a single ORDER BY term.
type Order struct {
	column string
	dir    string
}

func (o Order) Column() string { return o.column }
func (o Order) Dir() string    { return o.dir }

// Query is the structured form of a statement, read by a QueryCompiler.
type Query struct {
	Action     Action
	Table      string
	Columns    []string
	Values     []any
	Conditions []Condition
	OrderBy    []Order
	Limit      int
	Offset     int

	// SQL and Args hold hand-written SQL for ActionRaw.
	SQL  string
	Args []any

	// ReturnsRows marks an ActionRaw query as row-producing.
	ReturnsRows bool
}

// Raw wraps hand-written SQL that is executed for its effect.
func Raw(sql string, args ...any) Query {
	return Query{Action: ActionRaw, SQL: sql, Args: args}
}

// RawSelect wraps hand-written SQL that produces rows.
func RawSelect(sql string, args ...any) Query {
	return Query{Action: ActionRaw, SQL: sql, Args: args, ReturnsRows: true}
}

// Builder assembles a Query incrementally.
type Builder struct {
	q Query
}

// Select starts a SELECT on table. With no columns every column is returned.
func Select(table string, columns ...string) *Builder {
	return &Builder{q: Query{Action: ActionSelect, Table: table, Columns: columns}}
}

// Insert starts an INSERT into table.
func Insert(table string) *Builder {
	return &Builder{q: Query{Action: ActionInsert, Table: table}}
}

// Update starts an UPDATE of table.
func Update(table string) *Builder {
	return &Builder{q: Query{Action: ActionUpdate, Table: table}}
}

// Delete starts a DELETE from table.
func Delete(table string) *Builder {
	return &Builder{q: Query{Action: ActionDelete, Table: table}}
}

// Set adds a column assignment for INSERT and UPDATE.
func (b *Builder) Set(column string, value any) *Builder {
	b.q.Columns = append(b.q.Columns, column)
	b.q.Values = append(b.q.Values, value)
	return b
}

// Where adds conditions to the query.
func (b *Builder) Where(conds ...Condition) *Builder {
	b.q.Conditions = append(b.q.Conditions, conds...)
	return b
}

// OrderBy adds an ORDER BY term. dir is "ASC" or "DESC".
func (b *Builder) OrderBy(column, dir string) *Builder {
	b.q.OrderBy = append(b.q.OrderBy, Order{column: column, dir: dir})
	return b
}

// Limit caps the number of returned rows.
func (b *Builder) Limit(limit int) *Builder {
	b.q.Limit = limit
	return b
}

// Offset skips the first offset rows.
func (b *Builder) Offset(offset int) *Builder {
	b.q.Offset = offset
	return b
}

// Query returns a copy of the assembled Query.
func (b *Builder) Query() Query {
	q := b.q
	q.Columns = append([]string(nil), b.q.Columns...)
	q.Values = append([]any(nil), b.q.Values...)
	q.Conditions = append([]Condition(nil), b.q.Conditions...)
	q.OrderBy = append([]Order(nil), b.q.OrderBy...)
	return q
}
