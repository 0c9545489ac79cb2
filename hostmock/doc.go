/*
Package hostmock provides a pretend host for waPC calls.

It is meant for tests that need to validate exactly what a component sends to
the Tarmac host, such as the D1 binding's encoded statements, without a real
host running.

Quick start

	m, _ := hostmock.New(hostmock.Config{
	  ExpectedNamespace:  "tarmac",
	  ExpectedCapability: "d1",
	  Routes: map[string]hostmock.Route{
	    "all": {Response: func() []byte { return allResponse }},
	    "run": {Fail: true, Error: errors.New("D1_ERROR")},
	  },
	})

	db, _ := binding.New(binding.Config{HostCall: m.HostCall})

Behavior

  - The route is chosen by function name. Without Routes, the top-level
    fields form a single route for ExpectedFunction.
  - If the route has Fail set, HostCall returns its Error, or
    ErrOperationFailed when Error is nil.
  - Otherwise HostCall enforces ExpectedNamespace and ExpectedCapability,
    runs the PayloadValidator and returns the Response bytes (nil when unset).
  - Every call is recorded, including failed ones; Calls returns a copy.
*/
package hostmock
