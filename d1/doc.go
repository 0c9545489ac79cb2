/*
Package d1 is a SQL dialect for Cloudflare D1 reached through a database
binding.

D1 speaks SQLite, so the dialect reuses the sqlite package's query compiler,
adapter and introspector. Only the driver and connection are specific to D1:
they turn compiled queries into binding calls and binding results back into
dialect results.

	db, err := dialect.New(ctx, d1.New(d1.Config{Database: binding}))
	if err != nil {
		return err
	}

	res, err := db.Execute(ctx, dialect.Select("person", "id", "name").
		Where(dialect.Eq("id", 1)).
		Query())

D1 bindings expose neither transactions, streaming nor a lifecycle. The
corresponding driver and connection operations return a NotImplementedError,
which matches ErrNotImplemented with errors.Is. Query failures are returned as
*ExecuteError and match ErrExecute.
*/
package d1
