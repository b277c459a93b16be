// Package model defines shared types for the relay and the router.
package model

import (
	"context"
	"net/http"
	"net/url"
)

// DefaultRelayMethod is used when a relay request names no method.
const DefaultRelayMethod = http.MethodPost

// RelayRequest describes one call the direct relay makes on a caller's behalf.
type RelayRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    map[string]any    `json:"body"`
}

// DefaultRelayHeaders returns the headers used when a relay request omits them.
func DefaultRelayHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

// ForwardRequest is an inbound router request addressed to a named service.
// Path is the decoded remainder after the service segment and RawPath its
// escaped form as received. RawPath may be empty.
type ForwardRequest struct {
	Ctx     context.Context
	Method  string
	Service string
	Path    string
	RawPath string
	Query   url.Values
	Header  http.Header
	Body    []byte
}

// UpstreamResponse is a fully read upstream response.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
