package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestNewRouter_SecurityHeaders(t *testing.T) {
	r := NewRouter(ServerConfig{CORSAllowedOrigins: "*"}, Middlewares{})
	r.Get("/", okHandler)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
	}
	for header, expected := range checks {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("%s: got %q, want %q", header, got, expected)
		}
	}
}

func TestNewRouter_AppliesCustomMiddlewareInOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := NewRouter(ServerConfig{}, Middlewares{
		Recovery: mark("recovery"),
		Logger:   mark("logger"),
	})
	r.Get("/", okHandler)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if !slices.Equal(order, []string{"recovery", "logger"}) {
		t.Fatalf("unexpected middleware order: %v", order)
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"*"}},
		{"*", []string{"*"}},
		{"https://a.example, https://b.example ,", []string{"https://a.example", "https://b.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseOrigins(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("parseOrigins(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRequestBodyLimit(t *testing.T) {
	const limit = 10

	tests := []struct {
		name     string
		bodySize int
		want     int
	}{
		{"within limit", 5, http.StatusOK},
		{"exceeds limit", limit + 1, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				buf := make([]byte, limit+5)
				var tooLarge *http.MaxBytesError
				if _, err := r.Body.Read(buf); errors.As(err, &tooLarge) {
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					return
				}
				w.WriteHeader(http.StatusOK)
			})

			rr := httptest.NewRecorder()
			body := strings.NewReader(strings.Repeat("x", tt.bodySize))
			RequestBodyLimit(limit)(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", body))

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}
