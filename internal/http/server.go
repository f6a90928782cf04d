package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// Ledger is the service the handlers drive.
type Ledger interface {
	Record(ctx context.Context, n core.NewTransaction) (int64, error)
	Transactions(ctx context.Context) ([]core.Transaction, error)
	Remove(ctx context.Context, id int64) error
	Summary(ctx context.Context) (core.Summary, error)
}

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server. Zero values pick defaults.
type Options struct {
	AllowedOrigins []string
	CurrencySymbol string
	Logger         *applog.Logger
	Ready          Pinger
	RateLimit      ratelimit.Config
}

type Server struct {
	http.Server
	ledger   Ledger
	ready    Pinger
	currency string
	now      func() time.Time
	limiter  *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Shutdown releases the background goroutines it starts.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "₹"
	}

	s := &Server{
		ledger:   ledger,
		ready:    opts.Ready,
		currency: opts.CurrencySymbol,
		now:      time.Now,
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/summary", s.handleSummary)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", trace.RequestIDHeader},
		ExposedHeaders: []string{trace.RequestIDHeader, "Location"},
	})

	limited := s.limiter.Middleware(security.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			"active_clients", s.limiter.ActiveClients())
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	})

	var handler http.Handler = mux
	handler = limited(handler)
	handler = c.Handler(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(security.ClientIP).Middleware(handler)
	handler = applog.Middleware(opts.Logger.WithComponent(applog.ComponentHTTP))(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
