// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/xrecommender/internal/config"
	"github.com/tomtom215/xrecommender/internal/metrics"
	"github.com/tomtom215/xrecommender/internal/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChiMiddleware_RateLimit(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	cfg.RateLimitOnLimit = rateLimitExceeded
	handler := NewChiMiddleware(cfg).RateLimit()(okHandler())

	before := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("/limited"))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	expectErrorCode(t, w, http.StatusTooManyRequests, CodeTooManyRequests)

	after := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("/limited"))
	if after-before != 1 {
		t.Errorf("rate limit hits increased by %v, want 1", after-before)
	}
}

func TestChiMiddleware_RateLimitDisabled(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitDisabled = true
	handler := NewChiMiddleware(cfg).RateLimit()(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}
}

func TestChiMiddleware_CORS(t *testing.T) {
	m := NewChiMiddlewareFromConfig(config.SecurityConfig{
		CORSOrigins:     []string{"https://books.example"},
		RateLimitReqs:   10,
		RateLimitWindow: time.Minute,
	})
	handler := m.CORS()(okHandler())

	tests := []struct {
		origin string
		want   string
	}{
		{"https://books.example", "https://books.example"},
		{"https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
			r.Header.Set("Origin", tt.origin)
			r.Header.Set("Access-Control-Request-Method", http.MethodPut)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	handler := APISecurityHeaders()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("X-Content-Type-Options missing")
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set over plain HTTP")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing behind a TLS proxy")
	}
}

// ===================================================================================================
// Router Tests
// ===================================================================================================

func TestRouter_Health(t *testing.T) {
	l := newLibrary(t)

	w := l.env.do(t, http.MethodGet, "/api/v1/health", nil)
	expectStatus(t, w, http.StatusOK)

	var got struct {
		Status            string `json:"status"`
		DatabaseConnected bool   `json:"database_connected"`
		Users             int    `json:"users"`
		Books             int    `json:"books"`
		Keywords          int    `json:"keywords"`
		Ratings           int    `json:"ratings"`
	}
	decodeEnvelope(t, w, &got)
	if got.Status != "healthy" || !got.DatabaseConnected {
		t.Errorf("health = %+v, want healthy and connected", got)
	}
	if got.Users != 4 || got.Books != 4 || got.Keywords != 3 || got.Ratings != 5 {
		t.Errorf("counts = %+v, want 4 users, 4 books, 3 keywords, 5 ratings", got)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestRouter_RequestIDPropagated(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	r.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	if got := w.Header().Get(middleware.RequestIDHeader); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/nope", nil)
	expectErrorCode(t, w, http.StatusNotFound, CodeNotFound)

	w = env.do(t, http.MethodPost, "/api/v1/users/1/ratings/1", `{"rating":1}`)
	expectErrorCode(t, w, http.StatusMethodNotAllowed, CodeMethodNotAllowed)
}

func TestRouter_Metrics(t *testing.T) {
	env := newTestEnv(t)

	// Make sure at least one API request has been counted
	env.do(t, http.MethodGet, "/api/v1/health", nil)

	w := env.do(t, http.MethodGet, "/metrics", nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "api_requests_total") {
		t.Error("/metrics should expose the API request counter")
	}
}

func TestRouter_Compression(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, r)

	expectStatus(t, w, http.StatusOK)
	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", got)
	}
}
