package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/uconn-hacklab/inventory-tracking/pkg/httpx"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusCreated, map[string]string{"uuid": "abc"})

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("unexpected Content-Type: %q", ct)
	}
	if xct := w.Header().Get("X-Content-Type-Options"); xct != "nosniff" {
		t.Errorf("expected nosniff, got %q", xct)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["uuid"] != "abc" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestJSON_unencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusOK, map[string]any{"ch": make(chan int)})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct == "application/json; charset=utf-8" {
		t.Error("expected non-JSON content type for encoding failure")
	}
}

func TestJSONError(t *testing.T) {
	tests := []struct {
		name     string
		write    func(http.ResponseWriter)
		wantCode string
	}{
		{"without code", func(w http.ResponseWriter) {
			httpx.JSONError(w, http.StatusBadRequest, "something went wrong")
		}, ""},
		{"with code", func(w http.ResponseWriter) {
			httpx.JSONErrorCode(w, http.StatusBadRequest, "bad_input", "something went wrong")
		}, "bad_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			var body httpx.ErrorBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if body.Error != "something went wrong" {
				t.Errorf("unexpected error message: %q", body.Error)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestSafeError(t *testing.T) {
	err := errors.New("pq: connection refused")
	tests := []struct {
		name       string
		status     int
		production bool
		want       string
	}{
		{"4xx in production", http.StatusNotFound, true, err.Error()},
		{"5xx in production", http.StatusServiceUnavailable, true, "Service Unavailable"},
		{"5xx in development", http.StatusServiceUnavailable, false, err.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := httpx.SafeError(err, tt.status, tt.production); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
