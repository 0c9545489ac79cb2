/*
Package mock provides a scripted, in-memory implementation of binding.Database
for testing code that talks to D1 without a host.

Statements return empty results unless a response is configured for their SQL
text. Responses are configured per operation with a fluent builder:

	m := mock.New(mock.Config{})
	m.OnAll("SELECT * FROM users WHERE id = ?").ReturnRows([]map[string]any{{"id": 1}})
	m.OnRun("INSERT INTO users (name) VALUES (?)").ReturnMeta(binding.Meta{Changes: 1, LastRowID: 42})
	m.OnRun("INSERT INTO dupes (id) VALUES (?)").ReturnEmbeddedError("UNIQUE constraint failed")
	m.OnAll("SELECT boom").ReturnError(errors.New("D1_ERROR"))

Every dispatched statement is recorded in Calls. The mock is safe for
concurrent use.
*/
package mock
