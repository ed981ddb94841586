// Package rest exposes the account and customer operations over HTTP/JSON.
package rest

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/custdb/internal/logging"
	"github.com/dmitrijs2005/custdb/internal/server/dto"
	"github.com/dmitrijs2005/custdb/internal/server/metrics"
	"github.com/dmitrijs2005/custdb/internal/server/models"
	"github.com/dmitrijs2005/custdb/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// UserService is the account API the handlers depend on.
type UserService interface {
	Register(ctx context.Context, in dto.UserCreate) (*models.User, error)
	Login(ctx context.Context, in dto.UserLogin) (*services.TokenPair, error)
	Verify(ctx context.Context, id int64) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// CustomerService is the customer API the handlers depend on.
type CustomerService interface {
	Create(ctx context.Context, in dto.CustomerCreate) (*models.Customer, error)
	Get(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error)
	Update(ctx context.Context, id int64, in dto.CustomerUpdate) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
	ExportCSV(ctx context.Context, w io.Writer, f models.CustomerFilter) error
	PublishExport(ctx context.Context, f models.CustomerFilter) (*services.PublishedExport, error)
}

type Server struct {
	address   string
	users     UserService
	customers CustomerService
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	logger    logging.Logger
	jwtSecret []byte
}

type Option func(*Server)

// WithMetrics records request metrics in m and serves gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

func NewServer(address string, l logging.Logger, us UserService, cs CustomerService, secretKey string, opts ...Option) *Server {
	s := &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		customers: cs,
		jwtSecret: []byte(secretKey),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), s.logger, w, ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), s.logger, w, ErrMethodNotAllowed)
	})

	r.Get("/healthz", s.healthz)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/register", s.register)
	r.Post("/login", s.login)
	r.Post("/refresh", s.refresh)
	r.Get("/verify/{user_id}", s.verify)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/me", s.me)

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", s.listCustomers)
			r.Post("/", s.createCustomer)
			r.Get("/export", s.exportCustomers)
			r.Post("/exports", s.publishExport)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getCustomer)
				r.Put("/", s.updateCustomer)
				r.Patch("/", s.updateCustomer)
				r.Delete("/", s.deleteCustomer)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
