/*
Package dialect defines the contract between a query builder and the database
it targets.

A Dialect yields the four pieces a query builder needs: a Driver that hands out
Connections, a QueryCompiler that turns a Query into SQL plus positional
parameters, an Adapter describing dialect quirks, and an Introspector for
schema discovery. DB is the small runtime that ties them together: it compiles
a Query, acquires a Connection, executes the CompiledQuery and releases the
Connection again.

	db, err := dialect.New(ctx, d1.New(d1.Config{Database: database}))
	if err != nil {
		return err
	}

	res, err := db.Execute(ctx, dialect.Select("users").Where(dialect.Eq("id", 1)).Query())
*/
package dialect
