package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"relay-proxy-go/internal/metrics"
)

// requestCounts gathers relay_proxy_http_requests_total keyed by
// "method status path_prefix".
func requestCounts(t *testing.T, m *metrics.Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	counts := make(map[string]float64)
	for _, f := range families {
		if f.GetName() != "relay_proxy_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			key := labels["method"] + " " + labels["status_code"] + " " + labels["path_prefix"]
			counts[key] = metric.GetCounter().GetValue()
		}
	}
	return counts
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, http.NoBody))
	return rec
}

func TestMetricsMiddleware_Labels(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.POST("/proxy", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})
	e.GET("/get_openid/", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "missing header")
	})
	e.Any("/svc/*", func(c echo.Context) error {
		return c.String(http.StatusBadGateway, "down")
	})

	serve(e, http.MethodPost, "/proxy")
	serve(e, http.MethodPost, "/proxy")
	serve(e, http.MethodGet, "/get_openid/")
	serve(e, "XYZZY", "/svc/path")
	serve(e, http.MethodGet, "/")

	want := map[string]float64{
		"POST 200 /proxy":     2,
		"GET 422 /get_openid": 1,
		"other 502 other":     1,
		"GET 404 other":       1,
	}
	got := requestCounts(t, m)
	for key, n := range want {
		if got[key] != n {
			t.Errorf("count[%q] = %v, want %v (all: %v)", key, got[key], n, got)
		}
	}
}

func TestMetricsMiddleware_RecordsDuration(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	serve(e, http.MethodGet, "/healthz")

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "relay_proxy_http_request_duration_seconds" {
			for _, metric := range f.GetMetric() {
				if metric.GetHistogram().GetSampleCount() > 0 {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("expected relay_proxy_http_request_duration_seconds with at least one sample")
	}
}

func TestMetricsMiddleware_SkipsScrapePath(t *testing.T) {
	m := metrics.New()

	e := echo.New()
	e.Use(MetricsMiddleware(m, "/metrics"))
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "# metrics")
	})

	serve(e, http.MethodGet, "/metrics")

	if got := requestCounts(t, m); len(got) != 0 {
		t.Errorf("scrape request was recorded: %v", got)
	}
}
