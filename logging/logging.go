package logging

import (
	"fmt"

	sdk "github.com/tarmac-project/d1sdk"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const capabilityName = "logging"

// Client sends formatted log entries to the host runtime. Logging is best
// effort: host failures are dropped.
type Client interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Debug(format string, args ...any)
	Trace(format string, args ...any)
}

// HostCall defines the waPC host function signature used by logging operations.
type HostCall func(string, string, string, []byte) ([]byte, error)

// Config controls how a Client instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for logging operations.
	HostCall HostCall

	// Prefix is prepended to every message, e.g. "[orders] ".
	Prefix string
}

// client implements Client using the configured host call entrypoint.
type client struct {
	runtime  sdk.RuntimeConfig
	hostCall HostCall
	prefix   string
}

// New creates a Client that emits logs through the configured host capability.
func New(cfg Config) (Client, error) {
	hostCall := cfg.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &client{
		runtime:  cfg.SDKConfig.WithDefaults(),
		hostCall: hostCall,
		prefix:   cfg.Prefix,
	}, nil
}

func (c *client) Info(format string, args ...any)  { c.log("Info", format, args) }
func (c *client) Warn(format string, args ...any)  { c.log("Warn", format, args) }
func (c *client) Error(format string, args ...any) { c.log("Error", format, args) }
func (c *client) Debug(format string, args ...any) { c.log("Debug", format, args) }
func (c *client) Trace(format string, args ...any) { c.log("Trace", format, args) }

func (c *client) log(fn string, format string, args []any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	_, _ = c.hostCall(c.runtime.Namespace, capabilityName, fn, []byte(c.prefix+msg))
}

type discard struct{}

// Discard returns a Client that drops every entry.
func Discard() Client { return discard{} }

func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}
func (discard) Debug(string, ...any) {}
func (discard) Trace(string, ...any) {}
