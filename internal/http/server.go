package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"haulbook/internal/analytics"
	"haulbook/internal/cache"
	"haulbook/internal/ledger"
	"haulbook/internal/services"
	"haulbook/internal/storage"
)

type appMetrics struct {
	start          time.Time
	totalRequests  int64
	entriesCreated int64
}

type Server struct {
	http.Server

	repo      *storage.SQLiteRepository
	ledgerSvc *services.LedgerService

	// Default conversion rate for cash settlements, paise per liter.
	defaultRatePaise int64

	rateLimiter *rateLimiter
	secMetrics  securityMetrics
	metrics     appMetrics

	mtdCache       *cache.LRU[analytics.Report]
	statementCache *cache.LRU[ledger.Statement]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

func NewServer(addr string, repo *storage.SQLiteRepository, ledgerSvc *services.LedgerService, defaultRatePaise int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		repo:             repo,
		ledgerSvc:        ledgerSvc,
		defaultRatePaise: defaultRatePaise,
		rateLimiter:      newRateLimiter(),
		metrics:          appMetrics{start: time.Now()},
		mtdCache:         cache.NewLRU[analytics.Report](32, 5*time.Minute),
		statementCache:   cache.NewLRU[ledger.Statement](200, 5*time.Minute),
		cacheManager:     cache.NewManager(),
	}

	s.cacheManager.Register(s.mtdCache)
	s.cacheManager.Register(s.statementCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/api/trucks", s.withMiddleware(s.handleTrucks))
	mux.HandleFunc("/api/trucks/", s.withMiddleware(s.handleTruckItem))
	mux.HandleFunc("/api/drivers", s.withMiddleware(s.handleDrivers))
	mux.HandleFunc("/api/drivers/", s.withMiddleware(s.handleDriverItem))
	mux.HandleFunc("/api/parties", s.withMiddleware(s.handleParties))
	mux.HandleFunc("/api/parties/", s.withMiddleware(s.handlePartyItem))
	mux.HandleFunc("/api/fuel-logs", s.withMiddleware(s.handleFuelLogs))
	mux.HandleFunc("/api/fuel-logs/", s.withMiddleware(s.handleFuelLogItem))
	mux.HandleFunc("/api/coal-logs", s.withMiddleware(s.handleCoalLogs))
	mux.HandleFunc("/api/coal-logs/", s.withMiddleware(s.handleCoalLogItem))
	mux.HandleFunc("/api/mining-logs", s.withMiddleware(s.handleMiningLogs))
	mux.HandleFunc("/api/mining-logs/", s.withMiddleware(s.handleMiningLogItem))
	mux.HandleFunc("/api/ledger", s.withMiddleware(s.handleLedger))
	mux.HandleFunc("/api/ledger/", s.withMiddleware(s.handleLedgerItem))
	mux.HandleFunc("/api/ledger/statement", s.withMiddleware(s.handleStatement))
	mux.HandleFunc("/api/dashboard/mtd", s.withMiddleware(s.handleDashboardMTD))
	mux.HandleFunc("/api/reports/ledger.pdf", s.withMiddleware(s.handleStatementPDF))
	mux.HandleFunc("/api/reports/month.xlsx", s.withMiddleware(s.handleMonthXLSX))

	return s
}

// withMiddleware adds security headers, rate limiting on writes, and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&s.metrics.totalRequests, 1)

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, &s.secMetrics) {
			slog.WarnContext(ctx, "Suspicious request detected",
				"request_id", requestID,
				"method", r.Method,
				"url", r.URL.Path,
				"client_ip", clientIP)
		}

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP, &s.secMetrics) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.start).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if _, err := s.repo.ListTrucks(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	checks["cache"] = map[string]any{
		"mtd_entries":       s.mtdCache.Size(),
		"statement_entries": s.statementCache.Size(),
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.activeClients(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics prints counters in a Prometheus-like format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", atomic.LoadInt64(&s.metrics.totalRequests))

	fmt.Fprintf(w, "# HELP ledger_entries_created_total Total ledger entries created\n")
	fmt.Fprintf(w, "# TYPE ledger_entries_created_total counter\n")
	fmt.Fprintf(w, "ledger_entries_created_total %d\n\n", atomic.LoadInt64(&s.metrics.entriesCreated))

	fmt.Fprintf(w, "# HELP cache_hits_total Total cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total{cache=\"mtd\"} %d\n", s.mtdCache.Hits())
	fmt.Fprintf(w, "cache_hits_total{cache=\"statement\"} %d\n\n", s.statementCache.Hits())

	fmt.Fprintf(w, "# HELP cache_misses_total Total cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total{cache=\"mtd\"} %d\n", s.mtdCache.Misses())
	fmt.Fprintf(w, "cache_misses_total{cache=\"statement\"} %d\n\n", s.statementCache.Misses())

	fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{cache=\"mtd\"} %d\n", s.mtdCache.Size())
	fmt.Fprintf(w, "cache_entries{cache=\"statement\"} %d\n\n", s.statementCache.Size())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", atomic.LoadInt64(&s.secMetrics.rateLimitHits))

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", atomic.LoadInt64(&s.secMetrics.suspiciousRequests))

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.activeClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.metrics.start).Seconds())
}

// invalidateAnalytics drops cached aggregates after any write that
// feeds them.
func (s *Server) invalidateAnalytics(partyID int64) {
	now := time.Now()
	s.mtdCache.Delete(mtdCacheKey(now))
	if partyID > 0 {
		s.statementCache.Delete(statementCacheKey(partyID))
	}
}

func mtdCacheKey(now time.Time) string {
	return now.Format("2006-01-02")
}

func statementCacheKey(partyID int64) string {
	return fmt.Sprintf("party:%d", partyID)
}

// Shutdown stops the HTTP server and background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
