package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"paisa/internal/log"
	"paisa/internal/view"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.renderer == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.pinger == nil:
		checks["store"] = "ok"
	default:
		if err := s.pinger.Ping(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	state := s.store.Snapshot()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_requests_failed_total", "counter", "HTTP requests answered with a 5xx status", traceMetrics.FailedRequests)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	metric("transactions_created_total", "counter", "Transactions added through HTTP", atomic.LoadInt64(&s.appMetrics.transactionsCreated))
	metric("transactions_deleted_total", "counter", "Transactions deleted through HTTP", atomic.LoadInt64(&s.appMetrics.transactionsDeleted))
	metric("transactions_rejected_total", "counter", "Submissions rejected as invalid", atomic.LoadInt64(&s.appMetrics.rejectedSubmissions))
	metric("transactions", "gauge", "Transactions currently stored", state.Len())
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard(r.Context())
	if err != nil {
		s.renderError(w, r, "Failed to load dashboard", err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, view.NewPage(d)); err != nil {
		s.renderError(w, r, "Failed to render page", err)
		return
	}
	NewHTMXResponse().BodyHTML(buf.Bytes()).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeDashboard(w, r, NewHTMXResponse())
}

// handleCategoryField re-renders the category selector for the amount typed
// so far; it is visible only for negative amounts.
func (s *Server) handleCategoryField(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := view.NewCategoryField(q.Get("amount"), q.Get("category"))

	var buf bytes.Buffer
	if err := s.renderer.CategoryField(&buf, field); err != nil {
		s.renderError(w, r, "Failed to render category field", err)
		return
	}
	NewHTMXResponse().BodyHTML(buf.Bytes()).Write(w)
}

func (s *Server) dashboard(ctx context.Context) (view.Dashboard, error) {
	theme, err := s.store.Theme(ctx)
	if err != nil {
		return view.Dashboard{}, err
	}
	return view.BuildDashboard(s.store.Snapshot(), theme), nil
}

// writeDashboard renders the dashboard partial into resp and sends it.
func (s *Server) writeDashboard(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder) {
	d, err := s.dashboard(r.Context())
	if err != nil {
		s.renderError(w, r, "Failed to load dashboard", err)
		return
	}
	var buf bytes.Buffer
	if err := s.renderer.Dashboard(&buf, d); err != nil {
		s.renderError(w, r, "Failed to render dashboard", err)
		return
	}
	resp.BodyHTML(buf.Bytes()).Write(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, msg, err, log.ComponentTemplate, log.OpRender,
		log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
	InternalServerError(msg).Write(w)
}
