// Package web serves the CEAP import and query API over HTTP.
package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/ceap/internal/core"
	"github.com/JonMunkholm/ceap/internal/importer"
	"github.com/JonMunkholm/ceap/internal/store"
	"github.com/JonMunkholm/ceap/internal/web/middleware"
)

// Importer runs one import. *core.Service implements it.
type Importer interface {
	Import(ctx context.Context, fileName string, r io.Reader, size int64) (*core.ImportResult, error)
}

// Queries backs the read API. *store.Postgres implements it.
type Queries interface {
	RegistrantsByRegion(ctx context.Context, region string) ([]importer.Registrant, error)
	ExpensesByRegion(ctx context.Context, region string, page int) (store.Page[store.ExpenseRecord], error)
	ExpensesByNationalID(ctx context.Context, nationalID string, page int) (store.Page[store.ExpenseRecord], error)
	SumExpenses(ctx context.Context) (pgtype.Numeric, error)
	SumExpensesByNationalID(ctx context.Context, nationalID string) (pgtype.Numeric, error)
	Ping(ctx context.Context) error
}

// Options configures the server. Zero values select defaults.
type Options struct {
	Addr string

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration

	// MaxUploadSize caps the import request body.
	MaxUploadSize int64

	TrustedProxies []string

	// MetricsPath mounts promhttp.Handler when non-empty.
	MetricsPath string
}

// DefaultMaxUploadSize caps import bodies when Options.MaxUploadSize is unset.
const DefaultMaxUploadSize = 1 << 30

// Server is the HTTP server.
type Server struct {
	importer Importer
	queries  Queries
	opts     Options
	router   *chi.Mux
	server   *http.Server
}

// NewServer builds the router.
func NewServer(imp Importer, queries Queries, opts Options) *Server {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		importer: imp,
		queries:  queries,
		opts:     opts,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	if len(s.opts.TrustedProxies) > 0 {
		s.router.Use(middleware.TrustedRealIP(s.opts.TrustedProxies))
	}
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	// Imports run for as long as Import.Timeout allows, so they sit outside
	// the request timeout group.
	s.router.Post("/processar-ceap", s.handleImport)

	s.router.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.opts.RequestTimeout))

		r.Get("/deputados", s.handleRegistrantsByRegion)
		r.Get("/despesas/soma", s.handleSumExpenses)
		r.Get("/despesas/uf/{uf}", s.handleExpensesByRegion)
		r.Get("/despesas/cpf/{cpf}", s.handleExpensesByNationalID)
		r.Get("/despesas/cpf/{cpf}/soma", s.handleSumExpensesByNationalID)
		r.Get("/healthz", s.handleHealth)
	})

	if s.opts.MetricsPath != "" {
		s.router.Handle(s.opts.MetricsPath, promhttp.Handler())
	}
}

// Start listens on Options.Addr until Shutdown is called. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the chi router, for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
