package service

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMethod is returned by the relay for verbs other than GET, POST, PUT and DELETE.
var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

// ErrInvalidUpstreamBody is returned by the relay when a successful upstream
// response does not carry a JSON document.
var ErrInvalidUpstreamBody = errors.New("upstream response is not valid JSON")

// UnknownServiceError is returned by the router when no base URL is configured for Name.
type UnknownServiceError struct {
	Name string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("service %q not found", e.Name)
}

// InvalidBaseURLError is returned by the router when the base URL configured
// for Service cannot be parsed into an absolute URL.
type InvalidBaseURLError struct {
	Service string
	URL     string
	Err     error
}

func (e *InvalidBaseURLError) Error() string {
	return fmt.Sprintf("service %q has invalid base URL %q: %v", e.Service, e.URL, e.Err)
}

func (e *InvalidBaseURLError) Unwrap() error { return e.Err }

// TransportError reports a failure to obtain any response from URL.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamStatusError is returned by the relay when the upstream answers
// with a status outside 2xx and 3xx.
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
