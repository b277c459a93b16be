package server

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"relay-proxy-go/internal/config"
	"relay-proxy-go/internal/handler"
	"relay-proxy-go/internal/metrics"
)

func TestNewLogger_LevelAndFormat(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantJSON  bool
	}{
		{"debug text", "debug", "text", true, false},
		{"info json", "info", "json", false, true},
		{"default format is json", "warn", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Config{Log: config.LogConfig{Level: tt.level, Format: tt.format}}
			logger := newLogger(cfg, &buf)

			logger.Debug("debug line")
			logger.Error("error line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
				t.Errorf("json output = %v, want %v: %q", got, tt.wantJSON, out)
			}
		})
	}
}

func newTestEcho(cfg *config.Config) *echo.Echo {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEcho(cfg, logger, metrics.New())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return e
}

func TestNewEcho_MetricsEndpoint(t *testing.T) {
	cfg := &config.Config{
		Server:  config.ServerConfig{BodyMaxBytes: 1024},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	e := newTestEcho(cfg)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("ping status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected a request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "relay_proxy_http_requests_total") {
		t.Error("metrics output missing relay_proxy_http_requests_total")
	}
}

func TestNewEcho_MetricsDisabled(t *testing.T) {
	cfg := &config.Config{
		Server:  config.ServerConfig{BodyMaxBytes: 1024},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
	e := newTestEcho(cfg)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusNotFound {
		t.Errorf("metrics status = %d, want %d when disabled", rec.Code, http.StatusNotFound)
	}
}

func TestNewEcho_BodyLimit(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{BodyMaxBytes: 8}}
	e := newTestEcho(cfg)
	e.POST("/upload", func(c echo.Context) error {
		_, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 64)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestNewEcho_RateLimit(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			BodyMaxBytes: 1024,
			RateLimit:    config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1},
		},
	}
	e := newTestEcho(cfg)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", rec.Code, http.StatusOK)
	}

	got429 := false
	for range 10 {
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
		if rec.Code == http.StatusTooManyRequests {
			got429 = true
			break
		}
	}
	if !got429 {
		t.Error("expected at least one 429 response after burst, got none")
	}
}

func TestNewEcho_ServiceRouteKeepsUpstreamHeaders(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{BodyMaxBytes: 1024}}
	e := newTestEcho(cfg)

	var gotUpgrade string
	e.GET(handler.ServiceRoute, func(c echo.Context) error {
		gotUpgrade = c.Request().Header.Get("Upgrade")
		return c.String(http.StatusOK, "relayed")
	})

	req := httptest.NewRequest(http.MethodGet, "/svc/items", http.NoBody)
	req.Header.Set("Upgrade", "h2c")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUpgrade != "h2c" {
		t.Errorf("Upgrade = %q, want inbound header kept", gotUpgrade)
	}
	if v, ok := rec.Header()["X-Frame-Options"]; ok {
		t.Errorf("X-Frame-Options = %v, want absent on the service route", v)
	}
}
