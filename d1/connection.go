package d1

import (
	"context"
	"iter"
	"sync/atomic"
	"time"

	"github.com/tarmac-project/d1sdk/binding"
	"github.com/tarmac-project/d1sdk/dialect"
	"github.com/tarmac-project/d1sdk/logging"
)

// Connection runs compiled queries through a D1 binding. It holds no
// session state; ID only identifies it in logs.
type Connection struct {
	id    string
	owner *Driver
	db    binding.Database
	log   logging.Client
	inst  *instruments

	released atomic.Bool
}

var _ dialect.Connection = (*Connection)(nil)

// ID returns the connection identifier.
func (c *Connection) ID() string { return c.id }

// ExecuteQuery runs q. Row-returning queries go through the binding's All
// and return its rows unchanged; everything else goes through Run and
// reports affected rows and the last insert id.
//
// Failures raised by the binding and errors embedded in its result are
// both returned as *ExecuteError.
func (c *Connection) ExecuteQuery(ctx context.Context, q dialect.CompiledQuery) (dialect.QueryResult, error) {
	start := time.Now()
	res, err := c.execute(ctx, q)
	c.inst.observe(start, err)
	if err != nil {
		c.log.Error("d1: connection %s: %s query failed: %v", c.id, q.Kind, err)
		return dialect.QueryResult{}, err
	}
	c.log.Trace("d1: connection %s: %s query completed in %s", c.id, q.Kind, time.Since(start))
	return res, nil
}

func (c *Connection) execute(ctx context.Context, q dialect.CompiledQuery) (dialect.QueryResult, error) {
	stmt := c.db.Prepare(q.SQL).Bind(q.Parameters...)

	if q.ReturnsRows() {
		res, err := stmt.All(ctx)
		if err != nil {
			return dialect.QueryResult{}, executeError(err)
		}
		if res == nil {
			return dialect.QueryResult{}, &ExecuteError{Message: unknownErrorMessage}
		}
		if res.Error != "" {
			return dialect.QueryResult{}, &ExecuteError{Message: res.Error}
		}

		rows := make([]dialect.Row, 0, len(res.Results))
		for _, r := range res.Results {
			rows = append(rows, dialect.Row(r))
		}
		return dialect.QueryResult{Rows: rows}, nil
	}

	res, err := stmt.Run(ctx)
	if err != nil {
		return dialect.QueryResult{}, executeError(err)
	}
	if res == nil {
		return dialect.QueryResult{}, &ExecuteError{Message: unknownErrorMessage}
	}
	if res.Error != "" {
		return dialect.QueryResult{}, &ExecuteError{Message: res.Error}
	}

	var changes uint64
	if res.Meta.Changes > 0 {
		changes = uint64(res.Meta.Changes)
	}
	insertID := res.Meta.LastRowID
	return dialect.QueryResult{
		Rows:            []dialect.Row{},
		NumAffectedRows: &changes,
		InsertID:        &insertID,
	}, nil
}

// StreamQuery always fails: D1 bindings return complete result sets.
func (c *Connection) StreamQuery(context.Context, dialect.CompiledQuery, int) (iter.Seq2[dialect.QueryResult, error], error) {
	c.log.Warn("d1: connection %s: streaming query attempted", c.id)
	return nil, notImplemented("streaming queries are not supported")
}
