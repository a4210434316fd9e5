package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fkhayef/splitsmart/pkg/response"
)

func TestHandlerCreateAndGet(t *testing.T) {
	h := NewHandler(newTestService(t))
	router := h.Routes()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"create", http.MethodPost, "/", `{"name":"Asha","email":"Asha@x.com"}`, http.StatusCreated},
		{"duplicate", http.MethodPost, "/", `{"name":"Asha","email":"asha@x.com"}`, http.StatusConflict},
		{"invalid", http.MethodPost, "/", `{"name":""}`, http.StatusBadRequest},
		{"malformed", http.MethodPost, "/", `{`, http.StatusBadRequest},
		{"get", http.MethodGet, "/asha@x.com", "", http.StatusOK},
		{"get missing", http.MethodGet, "/nobody@x.com", "", http.StatusNotFound},
		{"list", http.MethodGet, "/?page=1&per_page=10", "", http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, rec.Code, tt.status, rec.Body.String())
		}
	}
}

func TestHandlerListMeta(t *testing.T) {
	h := NewHandler(newTestService(t))
	router := h.Routes()

	for _, body := range []string{`{"name":"A","email":"a@x"}`, `{"name":"B","email":"b@x"}`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?per_page=1", nil))

	var resp struct {
		response.APIResponse
		Data []UserResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Meta == nil || resp.Meta.Total != 2 || resp.Meta.TotalPages != 2 {
		t.Errorf("meta = %+v", resp.Meta)
	}
	if len(resp.Data) != 1 || resp.Data[0].Email != "a@x" {
		t.Errorf("data = %+v", resp.Data)
	}
}
