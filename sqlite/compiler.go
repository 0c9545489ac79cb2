package sqlite

import (
	"fmt"
	"strings"

	"github.com/tarmac-project/d1sdk/dialect"
)

// QueryCompiler compiles dialect.Query values into SQLite SQL.
type QueryCompiler struct{}

var _ dialect.QueryCompiler = QueryCompiler{}

// Compile renders q as SQLite SQL with positional parameters.
func (QueryCompiler) Compile(q dialect.Query) (dialect.CompiledQuery, error) {
	if q.Action == dialect.ActionRaw {
		kind := dialect.KindRaw
		if q.ReturnsRows {
			kind = dialect.KindSelect
		}
		if strings.TrimSpace(q.SQL) == "" {
			return dialect.CompiledQuery{}, fmt.Errorf("%w: raw query is empty", dialect.ErrValidation)
		}
		return dialect.CompiledQuery{SQL: q.SQL, Parameters: q.Args, Kind: kind}, nil
	}

	if strings.TrimSpace(q.Table) == "" {
		return dialect.CompiledQuery{}, dialect.ErrEmptyTable
	}

	c := &compilation{}
	var kind dialect.QueryKind
	var err error

	switch q.Action {
	case dialect.ActionSelect:
		kind, err = dialect.KindSelect, c.selectQuery(q)
	case dialect.ActionInsert:
		kind, err = dialect.KindInsert, c.insertQuery(q)
	case dialect.ActionUpdate:
		kind, err = dialect.KindUpdate, c.updateQuery(q)
	case dialect.ActionDelete:
		kind, err = dialect.KindDelete, c.deleteQuery(q)
	default:
		return dialect.CompiledQuery{}, fmt.Errorf("%w: %d", dialect.ErrUnknownAction, q.Action)
	}
	if err != nil {
		return dialect.CompiledQuery{}, err
	}

	return dialect.CompiledQuery{SQL: c.sb.String(), Parameters: c.params, Kind: kind}, nil
}

// compilation accumulates SQL text and its parameters in placeholder order.
type compilation struct {
	sb     strings.Builder
	params []any
}

func (c *compilation) bind(v any) {
	c.sb.WriteByte('?')
	c.params = append(c.params, v)
}

func (c *compilation) selectQuery(q dialect.Query) error {
	c.sb.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		c.sb.WriteByte('*')
	}
	for i, col := range q.Columns {
		if i > 0 {
			c.sb.WriteString(", ")
		}
		if col == "*" {
			c.sb.WriteByte('*')
			continue
		}
		c.sb.WriteString(QuoteIdentifier(col))
	}
	c.sb.WriteString(" FROM ")
	c.sb.WriteString(QuoteIdentifier(q.Table))

	if err := c.where(q.Conditions); err != nil {
		return err
	}

	for i, o := range q.OrderBy {
		if i == 0 {
			c.sb.WriteString(" ORDER BY ")
		} else {
			c.sb.WriteString(", ")
		}
		c.sb.WriteString(QuoteIdentifier(o.Column()))
		switch strings.ToUpper(o.Dir()) {
		case "", "ASC":
			c.sb.WriteString(" ASC")
		case "DESC":
			c.sb.WriteString(" DESC")
		default:
			return fmt.Errorf("%w: order direction %q", dialect.ErrValidation, o.Dir())
		}
	}

	if q.Limit > 0 {
		c.sb.WriteString(" LIMIT ")
		c.bind(q.Limit)
	}
	if q.Offset > 0 {
		if q.Limit <= 0 {
			// SQLite requires a LIMIT before OFFSET; -1 means unbounded.
			c.sb.WriteString(" LIMIT -1")
		}
		c.sb.WriteString(" OFFSET ")
		c.bind(q.Offset)
	}
	return nil
}

func (c *compilation) insertQuery(q dialect.Query) error {
	if err := assignments(q); err != nil {
		return err
	}

	c.sb.WriteString("INSERT INTO ")
	c.sb.WriteString(QuoteIdentifier(q.Table))
	c.sb.WriteString(" (")
	for i, col := range q.Columns {
		if i > 0 {
			c.sb.WriteString(", ")
		}
		c.sb.WriteString(QuoteIdentifier(col))
	}
	c.sb.WriteString(") VALUES (")
	for i, v := range q.Values {
		if i > 0 {
			c.sb.WriteString(", ")
		}
		c.bind(v)
	}
	c.sb.WriteByte(')')
	return nil
}

func (c *compilation) updateQuery(q dialect.Query) error {
	if err := assignments(q); err != nil {
		return err
	}

	c.sb.WriteString("UPDATE ")
	c.sb.WriteString(QuoteIdentifier(q.Table))
	c.sb.WriteString(" SET ")
	for i, col := range q.Columns {
		if i > 0 {
			c.sb.WriteString(", ")
		}
		c.sb.WriteString(QuoteIdentifier(col))
		c.sb.WriteString(" = ")
		c.bind(q.Values[i])
	}
	return c.where(q.Conditions)
}

func (c *compilation) deleteQuery(q dialect.Query) error {
	c.sb.WriteString("DELETE FROM ")
	c.sb.WriteString(QuoteIdentifier(q.Table))
	return c.where(q.Conditions)
}

func (c *compilation) where(conds []dialect.Condition) error {
	for i, cond := range conds {
		if i == 0 {
			c.sb.WriteString(" WHERE ")
		} else if cond.Logic() == "OR" {
			c.sb.WriteString(" OR ")
		} else {
			c.sb.WriteString(" AND ")
		}

		c.sb.WriteString(QuoteIdentifier(cond.Field()))

		switch op := cond.Operator(); op {
		case "=", "!=", "<", "<=", ">", ">=", "LIKE":
			c.sb.WriteString(" " + op + " ")
			c.bind(cond.Value())
		case "IN":
			values, _ := cond.Value().([]any)
			if len(values) == 0 {
				return fmt.Errorf("%w: IN on %q needs at least one value", dialect.ErrValidation, cond.Field())
			}
			c.sb.WriteString(" IN (")
			for j, v := range values {
				if j > 0 {
					c.sb.WriteString(", ")
				}
				c.bind(v)
			}
			c.sb.WriteByte(')')
		case "IS NULL", "IS NOT NULL":
			c.sb.WriteString(" " + op)
		default:
			return fmt.Errorf("%w: %q", dialect.ErrUnsupportedOperator, op)
		}
	}
	return nil
}

func assignments(q dialect.Query) error {
	if len(q.Columns) == 0 {
		return fmt.Errorf("%w: no columns to write", dialect.ErrValidation)
	}
	if len(q.Columns) != len(q.Values) {
		return fmt.Errorf("%w: %d columns but %d values", dialect.ErrValidation, len(q.Columns), len(q.Values))
	}
	return nil
}

// QuoteIdentifier wraps name in double quotes, doubling any embedded quote.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
