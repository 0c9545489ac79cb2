package hostmock

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnexpectedNamespace is returned when the namespace is not as expected.
	ErrUnexpectedNamespace = errors.New("unexpected namespace")

	// ErrUnexpectedCapability is returned when the capability is not as expected.
	ErrUnexpectedCapability = errors.New("unexpected capability")

	// ErrUnexpectedFunction is returned when the function is not as expected.
	ErrUnexpectedFunction = errors.New("unexpected function")

	// ErrOperationFailed is returned when Fail is set without a custom error.
	ErrOperationFailed = errors.New("operation failed")
)

// Route scripts the behaviour of a single host function.
type Route struct {
	// PayloadValidator validates the payload passed to the host call.
	PayloadValidator func([]byte) error

	// Response defines the response to return for the host call.
	Response func() []byte

	// Error is the error to return if the route is configured to fail.
	Error error

	// Fail indicates whether the route should return an error.
	Fail bool
}

// Call records a single host call observed by the Mock.
type Call struct {
	Namespace  string
	Capability string
	Function   string
	Payload    []byte
}

// Config represents the configuration for creating a Mock instance.
type Config struct {
	// ExpectedNamespace defines the namespace expected in the host call.
	ExpectedNamespace string

	// ExpectedCapability defines the capability expected in the host call.
	ExpectedCapability string

	// ExpectedFunction defines the function name expected in the host call.
	// It is ignored when Routes is set.
	ExpectedFunction string

	// Error is the error to return if the mock is configured to fail.
	Error error

	// PayloadValidator validates the payload passed to the host call.
	PayloadValidator func([]byte) error

	// Response defines the response to return for the host call.
	Response func() []byte

	// Fail indicates whether the mock should return an error.
	Fail bool

	// Routes scripts several functions of one capability, keyed by function
	// name. Calls to a function without a route fail with ErrUnexpectedFunction.
	Routes map[string]Route
}

// Mock simulates a host call interface with validation and configurable responses.
type Mock struct {
	namespace  string
	capability string
	routes     map[string]Route

	// single is used when no Routes were configured.
	single   Route
	function string

	mu    sync.Mutex
	calls []Call
}

// New creates a new instance of the Mock based on the provided Config.
func New(config Config) (*Mock, error) {
	routes := make(map[string]Route, len(config.Routes))
	for fn, r := range config.Routes {
		routes[fn] = r
	}

	return &Mock{
		namespace:  config.ExpectedNamespace,
		capability: config.ExpectedCapability,
		routes:     routes,
		function:   config.ExpectedFunction,
		single: Route{
			PayloadValidator: config.PayloadValidator,
			Response:         config.Response,
			Error:            config.Error,
			Fail:             config.Fail,
		},
	}, nil
}

// HostCall simulates a host call, validating inputs and returning a response or error.
func (m *Mock) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{
		Namespace:  namespace,
		Capability: capability,
		Function:   function,
		Payload:    append([]byte(nil), payload...),
	})
	m.mu.Unlock()

	route, err := m.route(function)
	if err != nil {
		return nil, err
	}

	if route.Fail && route.Error != nil {
		return nil, route.Error
	}
	if route.Fail {
		return nil, ErrOperationFailed
	}

	if m.namespace != namespace {
		return nil, fmt.Errorf("%w: expected namespace %s, got %s", ErrUnexpectedNamespace, m.namespace, namespace)
	}

	if m.capability != capability {
		return nil, fmt.Errorf("%w: expected capability %s, got %s", ErrUnexpectedCapability, m.capability, capability)
	}

	if route.PayloadValidator != nil {
		if err := route.PayloadValidator(payload); err != nil {
			return nil, err
		}
	}

	if route.Response != nil {
		return route.Response(), nil
	}

	return nil, nil
}

func (m *Mock) route(function string) (Route, error) {
	if len(m.routes) == 0 {
		if m.function != function {
			return Route{}, fmt.Errorf("%w: expected function %s, got %s", ErrUnexpectedFunction, m.function, function)
		}
		return m.single, nil
	}

	r, ok := m.routes[function]
	if !ok {
		return Route{}, fmt.Errorf("%w: no route for function %s", ErrUnexpectedFunction, function)
	}
	return r, nil
}

// Calls returns a copy of the host calls observed so far.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
