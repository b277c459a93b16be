package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestOpenIDHandler(t *testing.T) {
	tests := []struct {
		name       string
		openid     string
		wantStatus int
	}{
		{"present", "o6_bmjrPTlm6_2sgVt7hMZOPfL2M", http.StatusOK},
		{"missing", "", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/get_openid/", http.NoBody)
			if tt.openid != "" {
				req.Header.Set("x-wx-openid", tt.openid)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := NewOpenIDHandler().Handle(c); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if tt.wantStatus == http.StatusOK && body["openid"] != tt.openid {
				t.Errorf("openid = %q, want %q", body["openid"], tt.openid)
			}
			if tt.wantStatus != http.StatusOK && body["detail"] == "" {
				t.Error("expected non-empty detail")
			}
		})
	}
}
