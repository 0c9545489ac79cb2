package mock

import (
	"context"
	"sync"

	"github.com/tarmac-project/d1sdk/binding"
)

// Operation names used for per-call configuration.
const (
	OpAll = "ALL"
	OpRun = "RUN"
)

// Config configures the mock database.
type Config struct {
	// DefaultMeta is returned by Run for statements without a configured response.
	DefaultMeta binding.Meta
}

// Response describes a configured outcome.
type Response struct {
	// Rows applies to ALL.
	Rows []map[string]any
	// Meta applies to RUN.
	Meta binding.Meta
	// Embedded is reported in the result's Error field.
	Embedded string
	// Err is returned as a failed call.
	Err error
}

// Call records a statement dispatched against the mock.
type Call struct {
	Op     string
	SQL    string
	Params []any
}

// Database implements binding.Database for tests.
type Database struct {
	defaultMeta binding.Meta

	mu        sync.Mutex
	responses map[string]Response
	calls     []Call
}

var _ binding.Database = (*Database)(nil)

// New creates a new mock database.
func New(cfg Config) *Database {
	return &Database{
		defaultMeta: cfg.DefaultMeta,
		responses:   make(map[string]Response),
	}
}

// ResponseBuilder allows fluent configuration of responses.
type ResponseBuilder struct {
	m   *Database
	key string
}

func (b *ResponseBuilder) update(fn func(*Response)) *ResponseBuilder {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	r := b.m.responses[b.key]
	fn(&r)
	b.m.responses[b.key] = r
	return b
}

// ReturnRows sets the rows returned by ALL.
func (b *ResponseBuilder) ReturnRows(rows []map[string]any) *ResponseBuilder {
	return b.update(func(r *Response) { r.Rows = rows })
}

// ReturnMeta sets the meta returned by RUN.
func (b *ResponseBuilder) ReturnMeta(meta binding.Meta) *ResponseBuilder {
	return b.update(func(r *Response) { r.Meta = meta })
}

// ReturnEmbeddedError makes the call succeed with msg in the result's Error field.
func (b *ResponseBuilder) ReturnEmbeddedError(msg string) *ResponseBuilder {
	return b.update(func(r *Response) { r.Embedded = msg })
}

// ReturnError makes the call fail with err.
func (b *ResponseBuilder) ReturnError(err error) *Database {
	b.update(func(r *Response) { r.Err = err })
	return b.m
}

// OnAll configures the response of All for sql.
func (m *Database) OnAll(sql string) *ResponseBuilder {
	return &ResponseBuilder{m: m, key: OpAll + " " + sql}
}

// OnRun configures the response of Run for sql.
func (m *Database) OnRun(sql string) *ResponseBuilder {
	return &ResponseBuilder{m: m, key: OpRun + " " + sql}
}

// Calls returns a copy of the statements dispatched so far.
func (m *Database) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Prepare implements binding.Database.
func (m *Database) Prepare(query string) binding.Statement {
	return &statement{m: m, query: query}
}

// dispatch records the call and returns its configured response.
func (m *Database) dispatch(op, query string, params []any) (Response, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: op, SQL: query, Params: append([]any(nil), params...)})
	r, ok := m.responses[op+" "+query]
	return r, ok
}

type statement struct {
	m      *Database
	query  string
	params []any
}

func (s *statement) Bind(values ...any) binding.Statement {
	return &statement{m: s.m, query: s.query, params: append([]any(nil), values...)}
}

func (s *statement) All(ctx context.Context) (*binding.AllResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &binding.CallError{Op: "all", Err: err}
	}

	r, _ := s.m.dispatch(OpAll, s.query, s.params)
	if r.Err != nil {
		return nil, r.Err
	}

	rows := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		rows = append(rows, cp)
	}
	return &binding.AllResult{Results: rows, Meta: binding.Meta{RowsRead: int64(len(rows))}, Error: r.Embedded}, nil
}

func (s *statement) Run(ctx context.Context) (*binding.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &binding.CallError{Op: "run", Err: err}
	}

	r, ok := s.m.dispatch(OpRun, s.query, s.params)
	if r.Err != nil {
		return nil, r.Err
	}

	meta := r.Meta
	if !ok {
		meta = s.m.defaultMeta
	}
	return &binding.RunResult{Meta: meta, Error: r.Embedded}, nil
}
