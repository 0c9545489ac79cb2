/*
Package sdk provides the shared runtime configuration for the D1 dialect and
its supporting Tarmac host capability clients.

RuntimeConfig is passed to every component that talks to the host (the D1
binding, logging, metrics). DefaultNamespace is used when a namespace is not
explicitly provided. The host-call sentinel errors defined here are wrapped by
those components and can be checked with errors.Is.
*/
package sdk
