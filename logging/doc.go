/*
Package logging offers a client for emitting log entries from Tarmac WebAssembly
functions to the host runtime.

Each level (Info, Warn, Error, Debug, Trace) maps to a host function of the
logging capability. Messages are formatted with fmt.Sprintf semantics and
delivery is best effort. Discard returns a Client that drops everything, which
is what the D1 driver uses when no logger is configured.
*/
package logging
