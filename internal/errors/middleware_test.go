package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hpicpulse/internal/shared/testutil"
)

func TestNewErrorMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)

	em := NewErrorMiddleware(errorHandler, logger)

	assert.NotNil(t, em)
	assert.Equal(t, errorHandler, em.handler)
	assert.NotNil(t, em.logger)
}

func TestErrorMiddleware_Handler(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		requestBody   string
		requestPath   string
		requestMethod string
		wantStatus    int
		shouldPanic   bool
		wantLogLevel  slog.Level
		checkDuration bool
	}{
		{
			name: "2xx logs at info",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("success"))
			},
			requestPath:   "/api/dashboard",
			requestMethod: "GET",
			wantStatus:    http.StatusOK,
			wantLogLevel:  slog.LevelInfo,
			checkDuration: true,
		},
		{
			name: "4xx logs at warn",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("bad request"))
			},
			requestPath:   "/api/dashboard",
			requestMethod: "POST",
			wantStatus:    http.StatusBadRequest,
			wantLogLevel:  slog.LevelWarn,
		},
		{
			name: "5xx logs at error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("internal error"))
			},
			requestPath:   "/api/export/csv",
			requestMethod: "PUT",
			wantStatus:    http.StatusInternalServerError,
			wantLogLevel:  slog.LevelError,
		},
		{
			name: "failed request carries its body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("validation error"))
			},
			requestBody:   `{"format": "csv", "start": "2025-99-01"}`,
			requestPath:   "/api/export/csv",
			requestMethod: "POST",
			wantStatus:    http.StatusBadRequest,
			wantLogLevel:  slog.LevelWarn,
		},
		{
			name: "panic skips the request log",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("something went wrong")
			},
			requestPath:   "/api/dashboard",
			requestMethod: "GET",
			wantStatus:    http.StatusInternalServerError,
			shouldPanic:   true,
			wantLogLevel:  slog.LevelError,
		},
		{
			name: "query string logged apart from path",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("bad query"))
			},
			requestPath:   "/api/dashboard?start=2025-01-01&end=2025-06-30",
			requestMethod: "GET",
			wantStatus:    http.StatusBadRequest,
			wantLogLevel:  slog.LevelWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			errorHandler := NewErrorHandler(logger, true)
			errorMiddleware := NewErrorMiddleware(errorHandler, logger)

			wrapped := errorMiddleware.Handler(tt.handler)

			var body io.Reader
			if tt.requestBody != "" {
				body = strings.NewReader(tt.requestBody)
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.requestMethod, tt.requestPath, body)
			if tt.requestBody != "" {
				r.Header.Set("Content-Type", "application/json")
			}
			ctx := context.WithValue(r.Context(), middleware.RequestIDKey, "test-request-id")
			r = r.WithContext(ctx)
			r.Header.Set("User-Agent", "test-client/1.0")

			wrapped.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			records := logHandler.EntriesAt(tt.wantLogLevel)
			assert.Greater(t, len(records), 0, "Expected log record at level %s", tt.wantLogLevel)

			if tt.shouldPanic {
				// The panic unwinds past the request log, so only the
				// recovery entry is expected.
				assert.True(t, logHandler.HasMessage("panic recovered"))
				assert.False(t, logHandler.HasMessage("http request"))
				return
			}

			assert.True(t, logHandler.HasMessage("http request"))

			var httpLogRecord *testutil.Entry
			for _, record := range logHandler.Entries() {
				if strings.Contains(record.Message, "http request") {
					httpLogRecord = &record
					break
				}
			}
			require.NotNil(t, httpLogRecord, "Should have HTTP request log record")

			assert.Equal(t, tt.requestMethod, httpLogRecord.Attrs["method"])

			if strings.Contains(tt.requestPath, "?") {
				pathParts := strings.Split(tt.requestPath, "?")
				assert.Equal(t, pathParts[0], httpLogRecord.Attrs["path"])
				assert.Equal(t, pathParts[1], httpLogRecord.Attrs["query"])
			} else {
				assert.Equal(t, tt.requestPath, httpLogRecord.Attrs["path"])
			}

			assert.EqualValues(t, tt.wantStatus, httpLogRecord.Attrs["status"])
			assert.Equal(t, "test-request-id", httpLogRecord.Attrs["request_id"])
			assert.Equal(t, "test-client/1.0", httpLogRecord.Attrs["user_agent"])

			if tt.checkDuration {
				assert.Contains(t, httpLogRecord.Attrs, "duration")
				duration, ok := httpLogRecord.Attrs["duration"].(time.Duration)
				assert.True(t, ok, "Duration should be time.Duration type")
				assert.Greater(t, duration, time.Duration(0))
			}

			if tt.wantStatus >= 400 && tt.requestBody != "" {
				assert.Contains(t, httpLogRecord.Attrs, "request_body")
			}
		})
	}
}

func TestErrorMiddleware_RequestBodyCapture(t *testing.T) {
	tests := []struct {
		name             string
		requestBody      string
		contentSize      int64
		wantCaptured     bool
		expectTruncation bool
	}{
		{
			name:         "compact JSON body captured whole",
			requestBody:  `{"end":"2025-06-30","start":"2025-01-01"}`,
			wantCaptured: true,
		},
		{
			name:         "no body",
			requestBody:  "",
			wantCaptured: false,
		},
		{
			name:         "body over the 1MB cap is skipped",
			requestBody:  strings.Repeat("a", 1024*1024+1),
			contentSize:  1024*1024 + 1,
			wantCaptured: false,
		},
		{
			name:             "body over 500 chars is cut",
			requestBody:      strings.Repeat("a", 600),
			wantCaptured:     true,
			expectTruncation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			errorHandler := NewErrorHandler(logger, false)
			errorMiddleware := NewErrorMiddleware(errorHandler, logger)

			// Body capture only happens on failed requests
			handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("error"))
			}))

			var body io.Reader
			if tt.requestBody != "" {
				body = strings.NewReader(tt.requestBody)
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest("POST", "/test", body)
			if tt.contentSize > 0 {
				r.ContentLength = tt.contentSize
			} else if tt.requestBody != "" {
				r.ContentLength = int64(len(tt.requestBody))
			}

			ctx := context.WithValue(r.Context(), middleware.RequestIDKey, "test-request-id")
			r = r.WithContext(ctx)

			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var httpLogRecord *testutil.Entry
			for _, record := range logHandler.Entries() {
				if strings.Contains(record.Message, "http request") {
					httpLogRecord = &record
					break
				}
			}

			if tt.wantCaptured {
				require.NotNil(t, httpLogRecord)
				assert.Contains(t, httpLogRecord.Attrs, "request_body")

				loggedBody := httpLogRecord.Attrs["request_body"].(string)
				if tt.expectTruncation {
					assert.True(t, strings.HasSuffix(loggedBody, "..."))
					assert.Equal(t, 503, len(loggedBody)) // 500 chars + "..."
				} else {
					assert.Equal(t, tt.requestBody, loggedBody)
				}
			} else {
				if httpLogRecord != nil {
					assert.NotContains(t, httpLogRecord.Attrs, "request_body")
				}
			}
		})
	}
}

func TestSanitizeRequestBody(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "password field",
			input:    `{"username": "admin", "password": "secret123"}`,
			expected: `{"password":"[REDACTED]","username":"admin"}`,
		},
		{
			name:     "several sensitive fields at once",
			input:    `{"email": "member@example.org", "password": "secret", "api_key": "abc123", "name": "Dana"}`,
			expected: `{"api_key":"[REDACTED]","email":"[REDACTED]","name":"Dana","password":"[REDACTED]"}`,
		},
		{
			name:     "member email",
			input:    `{"email": "donor@example.org", "amount": 100}`,
			expected: `{"amount":100,"email":"[REDACTED]"}`,
		},
		{
			name:     "phone field",
			input:    `{"phone": "313-555-0100", "tier": "family"}`,
			expected: `{"phone":"[REDACTED]","tier":"family"}`,
		},
		{
			name:     "donor_name field",
			input:    `{"donor_name": "Jane Donor", "total": 250}`,
			expected: `{"donor_name":"[REDACTED]","total":250}`,
		},
		{
			name:     "member_name field",
			input:    `{"member_name": "A. Example", "tier": "individual"}`,
			expected: `{"member_name":"[REDACTED]","tier":"individual"}`,
		},
		{
			name:     "token field",
			input:    `{"token": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "data": "value"}`,
			expected: `{"data":"value","token":"[REDACTED]"}`,
		},
		{
			name:     "nothing sensitive",
			input:    `{"tier": "individual", "count": 30}`,
			expected: `{"count":30,"tier":"individual"}`,
		},
		{
			name:     "non-JSON passes through untouched",
			input:    `not a json string`,
			expected: `not a json string`,
		},
		{
			name:     "empty input",
			input:    ``,
			expected: ``,
		},
		{
			name:     "secret field",
			input:    `{"secret": "top-secret-value", "public": "public-value"}`,
			expected: `{"public":"public-value","secret":"[REDACTED]"}`,
		},
		{
			name:     "camelCase apiKey",
			input:    `{"apiKey": "secret-api-key", "userId": 123}`,
			expected: `{"apiKey":"[REDACTED]","userId":123}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeRequestBody(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		shouldPanic bool
		wantStatus  int
	}{
		{
			name: "no panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("success"))
			},
			shouldPanic: false,
			wantStatus:  http.StatusOK,
		},
		{
			name: "string panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("something went wrong")
			},
			shouldPanic: true,
			wantStatus:  http.StatusInternalServerError,
		},
		{
			name: "error panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(assert.AnError)
			},
			shouldPanic: true,
			wantStatus:  http.StatusInternalServerError,
		},
		{
			name: "integer panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(42)
			},
			shouldPanic: true,
			wantStatus:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			errorHandler := NewErrorHandler(logger, true)

			wrapped := RecoveryMiddleware(errorHandler)(tt.handler)

			w := httptest.NewRecorder()
			r := requestWithID("GET", "/test", "test-request-id")

			wrapped.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.shouldPanic {
				assert.True(t, logHandler.HasMessage("panic recovered"))
				assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

				problem := decodeProblem(t, w.Body)
				assert.Equal(t, TypeInternal, problem["type"])
				assert.Equal(t, "Internal Server Error", problem["title"])
				assert.Equal(t, float64(http.StatusInternalServerError), problem["status"])
				assert.Equal(t, "An unexpected error occurred", problem["detail"])
				assert.Equal(t, "test-request-id", problem["trace_id"])
			}
		})
	}
}

func TestErrorMiddleware_LargeRequestBodyHandling(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	largeBody := strings.Repeat("a", 1024*1024+1)

	// The body must still reach the handler even though capture skips it
	handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, largeBody, string(body))

		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("error"))
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/test", strings.NewReader(largeBody))
	r.ContentLength = int64(len(largeBody))

	ctx := context.WithValue(r.Context(), middleware.RequestIDKey, "test-request-id")
	r = r.WithContext(ctx)

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, record := range logHandler.Entries() {
		if strings.Contains(record.Message, "http request") {
			assert.NotContains(t, record.Attrs, "request_body")
			break
		}
	}
}

func TestErrorMiddleware_NilRequestBody(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("error"))
	}))

	w := httptest.NewRecorder()
	r := requestWithID("GET", "/test", "test-request-id")

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, record := range logHandler.Entries() {
		if strings.Contains(record.Message, "http request") {
			assert.NotContains(t, record.Attrs, "request_body")
			break
		}
	}
}

func TestErrorMiddleware_LoggingAttributes(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Hello, World!"))
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/export/csv?start=2025-01-01&end=2025-06-30", strings.NewReader(`{"format": "csv"}`))
	r.RemoteAddr = "192.168.1.1:12345"
	r.Header.Set("User-Agent", "TestClient/1.0")

	ctx := context.WithValue(r.Context(), middleware.RequestIDKey, "test-req-123")
	r = r.WithContext(ctx)

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var httpLogRecord *testutil.Entry
	for _, record := range logHandler.Entries() {
		if strings.Contains(record.Message, "http request") {
			httpLogRecord = &record
			break
		}
	}

	require.NotNil(t, httpLogRecord)

	assert.Equal(t, "POST", httpLogRecord.Attrs["method"])
	assert.Equal(t, "/api/export/csv", httpLogRecord.Attrs["path"])
	assert.Equal(t, "start=2025-01-01&end=2025-06-30", httpLogRecord.Attrs["query"])
	assert.EqualValues(t, http.StatusOK, httpLogRecord.Attrs["status"])
	assert.Equal(t, "192.168.1.1:12345", httpLogRecord.Attrs["remote_addr"])
	assert.Equal(t, "TestClient/1.0", httpLogRecord.Attrs["user_agent"])
	assert.Equal(t, "test-req-123", httpLogRecord.Attrs["request_id"])

	assert.Contains(t, httpLogRecord.Attrs, "duration")
	assert.EqualValues(t, len("Hello, World!"), httpLogRecord.Attrs["bytes"])
}

func TestErrorMiddleware_ConcurrentRequests(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}))

	const numRequests = 10
	results := make(chan int, numRequests)

	for i := 0; i < numRequests; i++ {
		go func(i int) {
			w := httptest.NewRecorder()
			r := requestWithID("GET", "/test", fmt.Sprintf("req-%d", i))

			handler.ServeHTTP(w, r)
			results <- w.Code
		}(i)
	}

	for i := 0; i < numRequests; i++ {
		select {
		case statusCode := <-results:
			assert.Equal(t, http.StatusOK, statusCode)
		case <-time.After(5 * time.Second):
			t.Fatal("Timeout waiting for concurrent requests")
		}
	}
}

func TestErrorMiddleware_Integration(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	// Stacked under chi's RequestID, the way the server mounts it
	handler := middleware.RequestID(
		errorMiddleware.Handler(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				w.Write([]byte("I'm a teapot"))
			}),
		),
	)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/test", nil)

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "I'm a teapot", w.Body.String())

	assert.True(t, logHandler.HasMessage("http request"))

	for _, record := range logHandler.Entries() {
		if strings.Contains(record.Message, "http request") {
			assert.Contains(t, record.Attrs, "request_id")
			requestID := record.Attrs["request_id"].(string)
			assert.NotEmpty(t, requestID)
			break
		}
	}
}
