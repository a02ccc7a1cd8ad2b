package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"paisa/internal/core"
	"paisa/internal/kv"
	"paisa/internal/log"
	"paisa/internal/middleware/ratelimit"
	"paisa/internal/middleware/security"
	"paisa/internal/middleware/trace"
	"paisa/internal/view"
	appweb "paisa/web"
)

// TransactionStore is the command and query surface the handlers need.
type TransactionStore interface {
	Add(ctx context.Context, description, amountInput, category string) (core.Transaction, error)
	Remove(ctx context.Context, id int64) (bool, error)
	Snapshot() core.State
	Theme(ctx context.Context) (core.Theme, error)
	SetTheme(ctx context.Context, theme core.Theme) error
	ToggleTheme(ctx context.Context) (core.Theme, error)
}

type Server struct {
	http.Server
	store    TransactionStore
	renderer *view.Renderer
	pinger   kv.Pinger
	logger   *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type options struct {
	logger    *log.Logger
	pinger    kv.Pinger
	rateLimit int
	static    fs.FS
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPinger makes /readyz check the backing store.
func WithPinger(p kv.Pinger) Option {
	return func(o *options) { o.pinger = p }
}

// WithRateLimit sets the per-client limit for mutating requests.
func WithRateLimit(perMinute int) Option {
	return func(o *options) { o.rateLimit = perMinute }
}

func NewServer(addr string, store TransactionStore, renderer *view.Renderer, opts ...Option) *Server {
	o := options{
		logger:    log.New(log.DefaultConfig()),
		rateLimit: ratelimit.DefaultConfig().RequestsPerMinute,
		static:    appweb.StaticFS,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		store:            store,
		renderer:         renderer,
		pinger:           o.pinger,
		logger:           o.logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: o.rateLimit}),
		securityDetector: security.NewDetector(o.logger),
		appMetrics:       newAppMetrics(),
	}
	s.traceMiddleware = trace.NewMiddleware(o.logger, s.securityDetector.ExtractClientIP)

	mux := http.NewServeMux()

	static := http.FileServer(http.FS(o.static))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /ui/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /ui/category-field", s.handleCategoryField)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /theme/toggle", s.handleThemeToggle)

	mux.HandleFunc("GET /api/transactions", s.handleAPIListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleAPICreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleAPIDeleteTransaction)
	mux.HandleFunc("GET /api/charts", s.handleAPICharts)
	mux.HandleFunc("GET /charts/{name}", s.handleChartImage)
	mux.Handle("GET /export/{file}", security.NoStore(http.HandlerFunc(s.handleExport)))

	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, ratelimit.MutatingOnly, s.onRateLimited)(mux)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(limited)
	detected := s.securityDetector.Middleware(headers)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.traceMiddleware.Middleware(detected),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(s.rateLimiter.Stop)
	return s.Server.Shutdown(ctx)
}
