// Package trace assigns request ids and logs request completion.
package trace

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	applog "tracker/internal/log"
)

// HeaderRequestID echoes the id back to the client.
const HeaderRequestID = "X-Request-ID"

// validRequestID bounds ids accepted from clients before they reach headers and logs.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *applog.Logger
	log       *applog.StructuredLogger

	totalRequests int64
	totalMicros   int64
}

// Metrics is a point-in-time view of traced traffic.
type Metrics struct {
	TotalRequests       int64
	AverageResponseTime time.Duration
}

// NewMiddleware creates a trace middleware. extractIP may be nil.
func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
		log:       applog.NewStructuredLogger(logger),
	}
}

// Middleware returns HTTP middleware for request tracing. Handlers downstream
// get a request-scoped logger through applog.FromContext.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID.MatchString(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := applog.NewContext(r.Context(), m.logger)
		ctx = applog.WithRequestID(ctx, requestID)
		r = r.WithContext(ctx)

		applog.FromContext(ctx).DebugContext(ctx, "HTTP request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		atomic.AddInt64(&m.totalRequests, 1)
		atomic.AddInt64(&m.totalMicros, duration.Microseconds())

		applog.NewStructuredLogger(applog.FromContext(ctx)).
			LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	total := atomic.LoadInt64(&m.totalRequests)
	metrics := Metrics{TotalRequests: total}
	if total > 0 {
		metrics.AverageResponseTime = time.Duration(atomic.LoadInt64(&m.totalMicros)/total) * time.Microsecond
	}
	return metrics
}
