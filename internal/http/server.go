// Package http exposes the application over a JSON API: auth and
// password-reset flows, expense CRUD with filters, and the dashboard
// summaries. Handlers validate input, call the services and map the
// service error taxonomy to statuses.
package http

import (
	"context"
	"net/http"
	"time"

	"smartexpense/internal/log"
	"smartexpense/internal/middleware/ratelimit"
	"smartexpense/internal/services"
	"smartexpense/internal/session"
)

type Server struct {
	http.Server

	auth      *services.AuthService
	expenses  *services.ExpenseService
	summaries *services.SummaryService
	sessions  *session.Manager
	logger    *log.Logger
	limiter   *ratelimit.Limiter
}

func NewServer(addr string, auth *services.AuthService, expenses *services.ExpenseService, summaries *services.SummaryService, sessions *session.Manager, logger *log.Logger) *Server {
	s := &Server{
		auth:      auth,
		expenses:  expenses,
		summaries: summaries,
		sessions:  sessions,
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = withSecurityHeaders(handler)
	handler = log.RequestLogger(s.logger)(handler)
	handler = log.Middleware(s.logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Credential endpoints share a per-IP rate limit.
	mux.HandleFunc("POST /api/register", s.limiter.Middleware(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.limiter.Middleware(s.handleLogin))
	mux.HandleFunc("POST /api/logout", s.withAuth(s.handleLogout))
	mux.HandleFunc("GET /api/me", s.withAuth(s.handleMe))

	// Password reset, in flow order.
	mux.HandleFunc("POST /api/password/question", s.limiter.Middleware(s.handleSecurityQuestion))
	mux.HandleFunc("POST /api/password/verify", s.limiter.Middleware(s.handleVerifyAnswer))
	mux.HandleFunc("POST /api/password/reset", s.limiter.Middleware(s.handleResetPassword))

	mux.HandleFunc("GET /api/meta/categories", s.handleCategories)
	mux.HandleFunc("GET /api/meta/security-questions", s.handleSecurityQuestions)

	mux.HandleFunc("POST /api/expenses", s.withAuth(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses", s.withAuth(s.handleListExpenses))
	mux.HandleFunc("GET /api/expenses/{id}", s.withAuth(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withAuth(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withAuth(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/summary", s.withAuth(s.handleOverview))
	mux.HandleFunc("GET /api/summary/daily", s.withAuth(s.handleDailySeries))
}

// Shutdown stops accepting connections, drains in-flight requests and
// stops the rate limiter's cleanup routine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
