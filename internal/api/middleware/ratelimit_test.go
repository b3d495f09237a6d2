package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssoward/evyroad/internal/api/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitByIPEnforced(t *testing.T) {
	cfg := RateLimitConfig{RequestLimit: 3, WindowLength: time.Minute}
	handler := RateLimitByIP(cfg)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/routes", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, "request %d should pass", i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/routes", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusTooManyRequests, problem.Status)
}

func TestRateLimitByIPSeparateClients(t *testing.T) {
	cfg := RateLimitConfig{RequestLimit: 1, WindowLength: time.Minute}
	handler := RateLimitByIP(cfg)(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "203.0.113.7:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, first)
	require.Equal(t, http.StatusOK, rr.Code)

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "203.0.113.99:1234"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, second)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimitByUserKeysOnUserID(t *testing.T) {
	cfg := RateLimitConfig{RequestLimit: 1, WindowLength: time.Minute}
	handler := RateLimitByUser(cfg)(okHandler())

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		ctx := context.WithValue(req.Context(), userIDKey{}, userID)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))
		return rr.Code
	}

	// Same IP, different riders: each gets its own budget.
	assert.Equal(t, http.StatusOK, send("rider-a"))
	assert.Equal(t, http.StatusOK, send("rider-b"))
	assert.Equal(t, http.StatusTooManyRequests, send("rider-a"))
}
