/*
Package sqlite provides the SQLite flavoured pieces of a dialect: a query
compiler emitting ? placeholders and double-quoted identifiers, an Adapter
describing SQLite's quirks, and an Introspector that reads sqlite_master.

Any dialect whose target speaks SQLite, such as D1, reuses these as they are.
*/
package sqlite
