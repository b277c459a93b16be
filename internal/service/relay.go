// Package service implements the relay and router forwarding logic.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"relay-proxy-go/internal/client"
	"relay-proxy-go/internal/model"
)

// RelayService performs single caller-described upstream calls.
type RelayService struct {
	client *client.UpstreamClient
	logger *slog.Logger
}

// NewRelayService creates a RelayService.
func NewRelayService(c *client.UpstreamClient, logger *slog.Logger) *RelayService {
	return &RelayService{
		client: c,
		logger: logger.With("component", "relay_service"),
	}
}

// Relay issues the call described by rr and returns the upstream JSON body.
//
// POST, PUT and DELETE send rr.Body as a JSON payload; GET sends its fields
// as query parameters instead. Other verbs fail with ErrUnsupportedMethod.
func (s *RelayService) Relay(ctx context.Context, rr *model.RelayRequest) (json.RawMessage, error) {
	method := strings.ToUpper(rr.Method)

	headers := rr.Headers
	if headers == nil {
		headers = model.DefaultRelayHeaders()
	}
	header := make(http.Header, len(headers))
	for k, v := range headers {
		header.Set(k, v)
	}

	target := rr.URL
	var body io.Reader

	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if rr.Body != nil {
			payload, err := json.Marshal(rr.Body)
			if err != nil {
				return nil, fmt.Errorf("encode relay body: %w", err)
			}
			body = bytes.NewReader(payload)
			if header.Get("Content-Type") == "" {
				header.Set("Content-Type", "application/json")
			}
		}
	case http.MethodGet:
		u, err := withQueryParams(rr.URL, rr.Body)
		if err != nil {
			return nil, err
		}
		target = u
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, rr.Method)
	}

	s.logger.Debug("relaying request", "method", method, "url", rr.URL)

	resp, err := s.client.Send(ctx, method, target, header, body)
	if err != nil {
		return nil, &TransportError{URL: rr.URL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("%w (status %d, %d bytes)", ErrInvalidUpstreamBody, resp.StatusCode, len(resp.Body))
	}

	return json.RawMessage(resp.Body), nil
}

// withQueryParams merges params into the query of rawURL. Fields already in
// the URL are overwritten.
func withQueryParams(rawURL string, params map[string]any) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}

	q := u.Query()
	for k, v := range params {
		q[k] = queryValues(v)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// queryValues renders a decoded JSON value as query parameter values.
// Arrays expand to repeated values; objects are sent as JSON text.
func queryValues(v any) []string {
	switch v := v.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, queryValue(item))
		}
		return out
	default:
		return []string{queryValue(v)}
	}
}

func queryValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
