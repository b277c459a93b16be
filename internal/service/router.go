package service

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"relay-proxy-go/internal/client"
	"relay-proxy-go/internal/config"
	"relay-proxy-go/internal/metrics"
	"relay-proxy-go/internal/model"
)

// excludedResponseHeaders are dropped from upstream responses before relaying.
var excludedResponseHeaders = []string{
	"Content-Encoding",
	"Transfer-Encoding",
	"Connection",
	"Keep-Alive",
}

// RouterService forwards requests to the base URL configured for a service name.
type RouterService struct {
	client    *client.UpstreamClient
	services  *config.Services
	userAgent string
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewRouterService creates a RouterService. The metrics parameter is optional.
func NewRouterService(c *client.UpstreamClient, services *config.Services, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *RouterService {
	ua := cfg.Router.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	return &RouterService{
		client:    c,
		services:  services,
		userAgent: ua,
		logger:    logger.With("component", "router_service"),
		metrics:   m,
	}
}

// Forward resolves fr.Service and sends the request to its base URL.
// It returns *UnknownServiceError for unconfigured names, *InvalidBaseURLError
// when the configured base cannot be used and *TransportError when the target
// cannot be reached. Any upstream status is a success.
func (s *RouterService) Forward(fr *model.ForwardRequest) (*model.UpstreamResponse, error) {
	base, ok := s.services.Lookup(fr.Service)
	if !ok {
		s.countService("unknown")
		return nil, &UnknownServiceError{Name: fr.Service}
	}
	s.countService(fr.Service)

	bu, err := url.Parse(base)
	if err == nil && (bu.Scheme == "" || bu.Host == "") {
		err = errors.New("base URL needs a scheme and a host")
	}
	if err != nil {
		return nil, &InvalidBaseURLError{Service: fr.Service, URL: base, Err: err}
	}

	target := TargetURL(bu, fr.Path, fr.RawPath)

	u := *target
	if len(fr.Query) > 0 {
		q := u.Query()
		for k, vals := range fr.Query {
			if len(vals) > 0 {
				q.Set(k, vals[len(vals)-1])
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if len(fr.Body) > 0 {
		body = bytes.NewReader(fr.Body)
	}

	s.logger.Debug("forwarding request",
		"service", fr.Service,
		"method", fr.Method,
		"target", target.String(),
	)

	resp, err := s.client.Send(fr.Ctx, fr.Method, u.String(), s.forwardHeaders(fr.Header), body)
	if err != nil {
		return nil, &TransportError{URL: target.String(), Err: err}
	}

	resp.Header = filterResponseHeaders(resp.Header)
	return resp, nil
}

// TargetURL appends path to base with exactly one slash between them. path is
// the decoded remainder; rawPath, when set, is its escaped form and is kept
// as is so escapes such as %2F, %3F and %25 reach the upstream unchanged.
func TargetURL(base *url.URL, path, rawPath string) *url.URL {
	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + "/" + path
	u.RawPath = ""
	if rawPath != "" {
		u.RawPath = strings.TrimRight(base.EscapedPath(), "/") + "/" + rawPath
	}
	return &u
}

// forwardHeaders copies src keeping the last value of each header, without
// Host. Accept-Encoding is left to the transport so bodies arrive decoded.
func (s *RouterService) forwardHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(src)+1)
	hasUA := false
	for key, vals := range src {
		if len(vals) == 0 || strings.EqualFold(key, "Host") || strings.EqualFold(key, "Accept-Encoding") {
			continue
		}
		if strings.EqualFold(key, "User-Agent") {
			hasUA = true
		}
		dst[http.CanonicalHeaderKey(key)] = []string{vals[len(vals)-1]}
	}
	if !hasUA {
		dst.Set("User-Agent", s.userAgent)
	}
	return dst
}

func filterResponseHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for key, vals := range src {
		if isExcludedResponseHeader(key) {
			continue
		}
		dst[key] = vals
	}
	return dst
}

func isExcludedResponseHeader(key string) bool {
	for _, h := range excludedResponseHeaders {
		if strings.EqualFold(key, h) {
			return true
		}
	}
	return false
}

func (s *RouterService) countService(label string) {
	if s.metrics != nil {
		s.metrics.ServiceRequests.WithLabelValues(label).Inc()
	}
}
