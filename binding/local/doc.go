/*
Package local provides a binding.Database backed by an embedded SQLite
database, for running D1 code outside the Tarmac host: local development,
integration tests and tooling.

It uses the pure-Go modernc.org/sqlite driver, so no cgo is required.

	db, err := local.Open(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

Statements the engine rejects fail the call with a *binding.CallError whose
cause is the engine's error, the same shape D1 uses when it raises.
*/
package local
