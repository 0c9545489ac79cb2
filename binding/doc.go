/*
Package binding defines the D1 database binding and provides the
implementation that reaches it through the Tarmac host runtime.

A Database prepares SQL into a Statement; Bind attaches positional parameters
and All or Run dispatches the statement. All returns rows, Run returns the
statement's effect in Meta. Both follow the D1 convention of reporting
query-level failures in the result's Error field rather than by failing the
call, so callers must check both the returned error and Error.

HostDatabase sends statements to the host's "d1" capability. Requests are
encoded as a protobuf Struct carrying the query and its type-tagged parameters; responses
use the Tarmac SQL response messages. Failed calls are reported as *CallError,
which unwraps to the underlying cause.
*/
package binding
