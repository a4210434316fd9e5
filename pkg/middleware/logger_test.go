package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })

	tests := []struct {
		path  string
		level string
		code  string
	}{
		{"/ok", "level=INFO", "status=200"},
		{"/missing", "level=WARN", "status=404"},
	}

	for _, tt := range tests {
		buf.Reset()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

		line := buf.String()
		for _, want := range []string{tt.level, tt.code, "path=" + tt.path, "method=GET", "request_id="} {
			if !strings.Contains(line, want) {
				t.Errorf("GET %s: log line %q missing %q", tt.path, line, want)
			}
		}
		if strings.Contains(line, "request_id= ") || strings.Contains(line, `request_id=""`) {
			t.Errorf("GET %s: request id not propagated: %q", tt.path, line)
		}
	}
}
