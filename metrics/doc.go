/*
Package metrics provides a client for creating custom metrics through the
Tarmac host runtime.

The package exposes constructors for Counter, Gauge, and Histogram metric
handles, each backed by protobuf payloads sent over waPC host calls.

Emission follows Prometheus-style ergonomics: Inc, Dec and Observe are best
effort and do not return errors. Handles are nil-safe, so a component can hold
an unset *Counter when metrics are not configured and call it unconditionally.
*/
package metrics
