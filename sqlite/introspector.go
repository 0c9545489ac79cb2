package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/tarmac-project/d1sdk/dialect"
)

const (
	tablesQuery = `SELECT name, type, sql FROM sqlite_master WHERE type IN ('table', 'view')`

	// Engine bookkeeping tables, and the tables D1 keeps for itself.
	userTablesFilter = ` AND substr(name, 1, 7) != 'sqlite_' AND substr(name, 1, 4) != '_cf_'`

	columnsQuery = `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`
)

// Introspector reads schema information from sqlite_master and
// pragma_table_info through an Executor.
type Introspector struct {
	exec dialect.Executor
}

var _ dialect.Introspector = (*Introspector)(nil)

// NewIntrospector returns an Introspector running its queries through exec.
func NewIntrospector(exec dialect.Executor) *Introspector {
	return &Introspector{exec: exec}
}

// GetSchemas returns nothing: SQLite has no schemas.
func (i *Introspector) GetSchemas(context.Context) ([]dialect.SchemaMetadata, error) {
	return []dialect.SchemaMetadata{}, nil
}

// GetTables lists tables and views ordered by name, with their columns.
func (i *Introspector) GetTables(ctx context.Context, opts dialect.TableOptions) ([]dialect.TableMetadata, error) {
	query := tablesQuery
	if !opts.WithInternalTables {
		query += userTablesFilter
	}
	query += " ORDER BY name"

	res, err := i.exec.ExecuteCompiled(ctx, dialect.CompiledQuery{SQL: query, Kind: dialect.KindSelect})
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]dialect.TableMetadata, 0, len(res.Rows))
	for _, row := range res.Rows {
		name := asString(row["name"])
		table := dialect.TableMetadata{
			Name:   name,
			IsView: asString(row["type"]) == "view",
		}

		cols, err := i.columns(ctx, name, asString(row["sql"]))
		if err != nil {
			return nil, err
		}
		table.Columns = cols
		tables = append(tables, table)
	}

	return tables, nil
}

// GetMetadata returns every table reported by GetTables.
func (i *Introspector) GetMetadata(ctx context.Context, opts dialect.TableOptions) (dialect.DatabaseMetadata, error) {
	tables, err := i.GetTables(ctx, opts)
	if err != nil {
		return dialect.DatabaseMetadata{}, err
	}
	return dialect.DatabaseMetadata{Tables: tables}, nil
}

func (i *Introspector) columns(ctx context.Context, table, createSQL string) ([]dialect.ColumnMetadata, error) {
	res, err := i.exec.ExecuteCompiled(ctx, dialect.CompiledQuery{
		SQL:        columnsQuery,
		Parameters: []any{table},
		Kind:       dialect.KindSelect,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %q: %w", table, err)
	}

	autoIncrement := autoIncrementColumn(createSQL)

	cols := make([]dialect.ColumnMetadata, 0, len(res.Rows))
	for _, row := range res.Rows {
		name := asString(row["name"])
		cols = append(cols, dialect.ColumnMetadata{
			Name:               name,
			DataType:           asString(row["type"]),
			IsNullable:         asInt64(row["notnull"]) == 0,
			HasDefaultValue:    row["dflt_value"] != nil,
			IsAutoIncrementing: name == autoIncrement,
		})
	}
	return cols, nil
}

// autoIncrementColumn finds the column declared AUTOINCREMENT in a CREATE
// TABLE statement, or "" when there is none.
func autoIncrementColumn(createSQL string) string {
	open := strings.IndexByte(createSQL, '(')
	if open < 0 {
		return ""
	}
	for _, def := range columnDefinitions(createSQL[open+1:]) {
		name, rest := leadingIdentifier(def)
		if name != "" && strings.Contains(strings.ToLower(rest), "autoincrement") {
			return name
		}
	}
	return ""
}

// columnDefinitions splits the body of a CREATE TABLE at top-level commas,
// skipping quoted text and nested parentheses. It stops at the closing
// parenthesis of the body.
func columnDefinitions(body string) []string {
	var (
		defs  []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '`' || ch == '\'':
			quote = ch
		case ch == '[':
			quote = ']'
		case ch == '(':
			depth++
		case ch == ')':
			if depth == 0 {
				return append(defs, body[start:i])
			}
			depth--
		case ch == ',' && depth == 0:
			defs = append(defs, body[start:i])
			start = i + 1
		}
	}
	return append(defs, body[start:])
}

// leadingIdentifier returns the unquoted identifier that starts def and the
// text after it.
func leadingIdentifier(def string) (string, string) {
	def = strings.TrimSpace(def)
	if def == "" {
		return "", ""
	}

	var closing byte
	switch def[0] {
	case '"', '`', '\'':
		closing = def[0]
	case '[':
		closing = ']'
	default:
		end := strings.IndexFunc(def, unicode.IsSpace)
		if end < 0 {
			return def, ""
		}
		return def[:end], def[end:]
	}

	var name strings.Builder
	for i := 1; i < len(def); i++ {
		if def[i] != closing {
			name.WriteByte(def[i])
			continue
		}
		// A doubled quote is an escaped quote; brackets have no escape.
		if closing != ']' && i+1 < len(def) && def[i+1] == closing {
			name.WriteByte(closing)
			i++
			continue
		}
		return name.String(), def[i+1:]
	}
	return "", ""
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// asInt64 normalizes the numeric shapes a binding may hand back: native
// integers from an embedded engine, float64 or json.Number from JSON.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}
