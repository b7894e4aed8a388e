package http

import (
	"context"
	"encoding/json"
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

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/config"
	"github.com/casecraft/casecraft-api/internal/http/apierr"
	"github.com/casecraft/casecraft-api/internal/http/metric"
	"github.com/casecraft/casecraft-api/internal/http/middleware"
	"github.com/casecraft/casecraft-api/internal/http/swagger"
	"github.com/casecraft/casecraft-api/internal/service"
	"github.com/casecraft/casecraft-api/internal/storage/db"
	"github.com/casecraft/casecraft-api/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	metrics  *metric.Metrics
	registry *prometheus.Registry

	health db.HealthChecker

	authSvc    service.AuthService
	productSvc service.ProductService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	health db.HealthChecker,
	authSvc service.AuthService,
	productSvc service.ProductService,
) *Service {
	registry := prometheus.NewRegistry()

	return &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		metrics:    metric.New(registry),
		registry:   registry,
		health:     health,
		authSvc:    authSvc,
		productSvc: productSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
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

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	validate := validator.NewDefaultValidator()
	authHandler := newAuthHandler(s, validate, s.authSvc)
	productHandler := newProductHandler(s, validate, s.productSvc)

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", authHandler.register)
			ar.Post("/token", authHandler.token)
			ar.With(middleware.Authenticate(s.authSvc)).Get("/me", authHandler.me)
		})

		api.Route("/products", func(pr chi.Router) {
			pr.Get("/", productHandler.list)
			pr.Get("/{productID}", productHandler.get)

			pr.Group(func(admin chi.Router) {
				admin.Use(middleware.Authenticate(s.authSvc))
				admin.Post("/", productHandler.create)
				admin.Put("/{productID}", productHandler.update)
				admin.Delete("/{productID}", productHandler.delete)
			})
		})
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, map[string]string{
		"message": "Welcome to Casecraft API",
		"status":  "operational",
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.health.IsHealthy(r.Context()); err != nil {
		s.respondError(w, r, fmt.Errorf("health check: %w", err))
		return
	}

	s.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}

func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	if res.Code == apperr.AdminRequiredCode {
		w.Header().Set("X-Error", apperr.AdminRequiredCode)
	}
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
