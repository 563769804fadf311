package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hpicpulse/internal/infrastructure"
	"hpicpulse/internal/shared/testutil"
)

func TestRequestID(t *testing.T) {
	t.Run("generates an ID and exposes it everywhere", func(t *testing.T) {
		var seenReqID, seenTraceID string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenReqID = chimw.GetReqID(r.Context())
			seenTraceID = infrastructure.GetTraceID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/dashboard", nil))

		require.NotEmpty(t, seenReqID)
		assert.Equal(t, seenReqID, seenTraceID)
		assert.Equal(t, seenReqID, rec.Header().Get(HeaderRequestID))
		assert.Len(t, seenReqID, 36, "UUID v4 format")
	})

	t.Run("honors an inbound X-Request-ID", func(t *testing.T) {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = chimw.GetReqID(r.Context())
		}))

		req := httptest.NewRequest("GET", "/api/dashboard", nil)
		req.Header.Set(HeaderRequestID, "proxy-assigned-id")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "proxy-assigned-id", seen)
		assert.Equal(t, "proxy-assigned-id", rec.Header().Get(HeaderRequestID))
	})
}

func TestRecoverer(t *testing.T) {
	logger, capture := testutil.NewTestLogger(t)

	handler := RequestID(Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("snapshot exploded")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"/errors/internal-server-error"`)
	assert.Contains(t, rec.Body.String(), `"trace_id"`)
	assert.True(t, capture.HasMessage("panic recovered"))
}

func TestRateLimiter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	limiter := NewRateLimiter(1, 1, logger)

	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest("GET", "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest("GET", "/api/dashboard", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), `"/errors/rate-limit-exceeded"`)
}

func TestTimeout(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	handler := Timeout(20*time.Millisecond, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Respect cancellation so only the middleware writes the response.
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/export/xlsx", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/errors/request-timeout"`)
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "cdn.plot.ly")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "HSTS only over TLS")
}

func TestCORS(t *testing.T) {
	newHandler := func(cfg CORSConfig) http.Handler {
		return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
	}

	t.Run("allowed origin is echoed", func(t *testing.T) {
		handler := newHandler(CORSConfig{AllowedOrigins: []string{"https://hpic.example.org"}})

		req := httptest.NewRequest("GET", "/api/dashboard", nil)
		req.Header.Set("Origin", "https://hpic.example.org")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "https://hpic.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		handler := newHandler(CORSConfig{AllowedOrigins: []string{"https://hpic.example.org"}})

		req := httptest.NewRequest("GET", "/api/dashboard", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		handler := newHandler(CORSConfig{})

		req := httptest.NewRequest("OPTIONS", "/api/dashboard", nil)
		req.Header.Set("Origin", "https://hpic.example.org")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET")
	})
}
