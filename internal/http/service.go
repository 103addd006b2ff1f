package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/product-pricing/internal/config"
	"github.com/tuanvumaihuynh/product-pricing/internal/http/metric"
	"github.com/tuanvumaihuynh/product-pricing/internal/http/middleware"
	"github.com/tuanvumaihuynh/product-pricing/internal/http/swagger"
	"github.com/tuanvumaihuynh/product-pricing/internal/service"
	"github.com/tuanvumaihuynh/product-pricing/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// HealthChecker reports whether a dependency can serve requests.
type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *metric.Metrics
	validator validator.Validator

	productSvc    service.ProductService
	priceSvc      service.PriceService
	healthChecker HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	productSvc service.ProductService,
	priceSvc service.PriceService,
	healthChecker HealthChecker,
) (*Service, error) {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	registry := prometheus.NewRegistry()

	return &Service{
		cfg:           cfg,
		logger:        log.With(slog.String("service", "http")),
		registry:      registry,
		metrics:       metric.New(registry),
		validator:     v,
		productSvc:    productSvc,
		priceSvc:      priceSvc,
		healthChecker: healthChecker,
	}, nil
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Handler())
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.CorrelationID(),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s, s.productSvc)
	prices := newPriceHandler(s, s.priceSvc)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handle(products.ListProducts))
		r.Post("/", s.handle(products.CreateProduct))
		r.Post("/increase", s.handle(prices.BulkIncrease))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handle(products.GetProduct))
			r.Put("/", s.handle(products.UpdateProduct))
			r.Delete("/", s.handle(products.DeleteProduct))
			r.Get("/history", s.handle(prices.GetPriceHistory))
		})
	})

	r.Get("/healthz", s.handle(s.Health))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(
		prometheus.Gatherers{s.registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{ErrorLog: log.Default()},
	))
}
