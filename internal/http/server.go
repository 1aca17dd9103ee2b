package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/middleware/ratelimit"
	"tracker/internal/middleware/security"
	"tracker/internal/middleware/trace"
	"tracker/internal/query"
	"tracker/internal/services"
)

// Tracker is the application surface the handlers drive.
type Tracker interface {
	Create(ctx context.Context, d core.Draft) (core.Transaction, error)
	Update(ctx context.Context, id string, d core.Draft) (core.Transaction, bool, error)
	Delete(ctx context.Context, id string) bool
	Get(id string) (core.Transaction, bool)
	Transactions(f query.Filter) []core.Transaction
	Dashboard(f query.Filter) services.Dashboard
	Export(f query.Filter) string
	Catalog() core.Catalog
	Theme() core.Theme
	SetTheme(ctx context.Context, theme core.Theme) (core.Theme, error)
	ToggleTheme(ctx context.Context) core.Theme
}

// Options tunes the server. Zero values pick defaults.
type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	TrustedProxies     []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

type Server struct {
	http.Server
	tracker  Tracker
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, tracker Tracker, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}

	s := &Server{
		tracker:  tracker,
		logger:   logger.WithComponent(applog.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
	}
	for _, proxy := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(proxy); err != nil {
			s.logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	mux.HandleFunc("PUT /api/theme", s.handleSetTheme)
	mux.HandleFunc("POST /api/theme/toggle", s.handleToggleTheme)

	mux.HandleFunc("GET /export/transactions.csv", s.handleExportCSV)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	throttle := s.limiter.Middleware(s.detector.ExtractClientIP,
		func(w http.ResponseWriter, r *http.Request) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			TooManyRequestsError().Write(w)
		},
		http.MethodPost, http.MethodPut, http.MethodDelete)

	var handler http.Handler = mux
	handler = throttle(handler)
	handler = s.detector.Middleware(false)(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Addr = addr
	s.Handler = handler
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = opts.ReadTimeout
	s.WriteTimeout = opts.WriteTimeout
	return s
}

// Shutdown stops the limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().BodyString("ok").Write(w)
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	NewResponse().BodyString("ready").Write(w)
}

// metricsBody reports traffic counters since startup. The request being
// served is not yet counted.
type metricsBody struct {
	Requests           int64   `json:"requests"`
	AverageResponseMs  float64 `json:"average_response_ms"`
	RateLimited        int64   `json:"rate_limited"`
	RateLimitClients   int64   `json:"rate_limit_clients"`
	SuspiciousRequests int64   `json:"suspicious_requests"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traffic := s.tracer.GetMetrics()
	limits := s.limiter.GetMetrics()
	NewResponse().JSON(metricsBody{
		Requests:           traffic.TotalRequests,
		AverageResponseMs:  float64(traffic.AverageResponseTime.Microseconds()) / 1000,
		RateLimited:        limits.TotalHits,
		RateLimitClients:   limits.ClientCount,
		SuspiciousRequests: s.detector.GetMetrics().SuspiciousRequests,
	}).Write(w)
}
