// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"hesap/internal/cache"
	"hesap/internal/services"
)

type Server struct {
	http.Server
	ledger *services.LedgerService
	debts  *services.DebtService

	rateLimiter *rateLimiter

	// Rendered analytics responses, purged on every mutation.
	analyticsCache *cache.LRUCache[[]byte]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, debts *services.DebtService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:         ledger,
		debts:          debts,
		rateLimiter:    newRateLimiter(),
		analyticsCache: cache.NewLRUCache[[]byte](100, 5*time.Minute),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions/{id}/pay", s.withMiddleware(s.handlePayInstallment))
	mux.HandleFunc("PUT /api/transactions/{id}/payment-date", s.withMiddleware(s.handleReschedulePayment))

	mux.HandleFunc("GET /api/balance", s.withMiddleware(s.handleBalance))
	mux.HandleFunc("GET /api/months", s.withMiddleware(s.handleMonths))
	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/analytics/series", s.withMiddleware(s.handleSeries))
	mux.HandleFunc("GET /api/analytics/categories", s.withMiddleware(s.handleCategories))
	mux.HandleFunc("GET /api/analytics/installments", s.withMiddleware(s.handleInstallments))
	mux.HandleFunc("POST /api/budgets/report", s.withMiddleware(s.handleBudgetReport))
	mux.HandleFunc("GET /api/export.csv", s.withMiddleware(s.handleExportCSV))

	mux.HandleFunc("POST /api/people", s.withMiddleware(s.handleCreatePerson))
	mux.HandleFunc("GET /api/people", s.withMiddleware(s.handleListPeople))
	mux.HandleFunc("POST /api/debts", s.withMiddleware(s.handleCreateDebt))
	mux.HandleFunc("GET /api/debts", s.withMiddleware(s.handleListDebts))
	mux.HandleFunc("POST /api/debts/{id}/pay", s.withMiddleware(s.handlePayDebt))

	return s
}

// Shutdown stops the cleanup goroutines along with the listener.
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

// invalidateAnalytics drops every cached derived response. Called after each
// mutation so reads never serve stale aggregates.
func (s *Server) invalidateAnalytics() {
	s.analyticsCache.Purge()
}

// cached serves the response for key from the analytics cache, computing and
// storing it on a miss.
func (s *Server) cached(w http.ResponseWriter, key string, compute func() ([]byte, error)) {
	if body, ok := s.analyticsCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	body, err := compute()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.analyticsCache.Set(key, body)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := r.Context()

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
