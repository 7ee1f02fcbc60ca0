package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	_ "vidly/docs"
	"vidly/internal/api/handler"
	mw "vidly/internal/api/middleware"
	"vidly/internal/config"
	"vidly/internal/domain/customer"
	"vidly/internal/domain/membership"
	"vidly/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const limiterCleanupInterval = time.Minute

// Dependencies are the collaborators the router hands to its handlers.
// Redis is optional and only backs the rate limiter.
type Dependencies struct {
	CustomerService   customer.CustomerService
	MembershipService membership.Service
	Renderer          *web.Renderer
	Redis             redis.Cmdable
}

// SetupRouter builds the HTTP surface. ctx bounds background work started
// by middleware, such as pruning idle rate limiter buckets.
func SetupRouter(ctx context.Context, deps Dependencies, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(ctx, router, cfg, deps.Redis, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAPIRoutes(router, cfg, deps, logger)
	setupPageRoutes(router, deps, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(ctx context.Context, router *chi.Mux, cfg *config.Config, redisClient redis.Cmdable, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))

	rateLimiter := mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger)
	if local, ok := rateLimiter.Limiter().(*mw.LocalLimiter); ok {
		go local.Cleanup(ctx, limiterCleanupInterval)
	}
	router.Use(rateLimiter.Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAPIRoutes(router *chi.Mux, cfg *config.Config, deps Dependencies, logger *slog.Logger) {
	customerHandler := handler.NewCustomerHandler(deps.CustomerService, logger)
	membershipHandler := handler.NewMembershipHandler(deps.MembershipService, logger)
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", authHandler.GenerateBearerToken)

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", customerHandler.ListCustomers)
				r.Post("/", customerHandler.CreateCustomer)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", customerHandler.GetCustomer)
					r.Put("/", customerHandler.UpdateCustomer)
					r.Delete("/", customerHandler.DeleteCustomer)
				})
			})
			r.Get("/membershiptypes", membershipHandler.ListMembershipTypes)
		})
	})
}

func setupPageRoutes(router *chi.Mux, deps Dependencies, logger *slog.Logger) {
	web.NewCustomerPages(deps.CustomerService, deps.MembershipService, deps.Renderer, logger).Routes(router)
	web.NewMoviePages(deps.Renderer, logger).Routes(router)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/customers", http.StatusFound)
	})
}
