package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Es-saiydy/webService/internal/games"
	"github.com/Es-saiydy/webService/internal/service"
	"github.com/Es-saiydy/webService/pkg/health"
	"github.com/Es-saiydy/webService/pkg/middleware"
)

// Services bundles the application services the router exposes.
type Services struct {
	Products *service.ProductService
	Users    *service.UserService
	Reviews  *service.ReviewService
	Orders   *service.OrderService
	Games    *games.Client
}

// NewRouter creates a chi router with all webservice routes registered.
func NewRouter(
	svcs Services,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	gamesCacheMaxAge time.Duration,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("webservice"))
	r.Use(middleware.Tracing("webservice"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(svcs.Products, logger)
	r.Route("/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)
		r.Post("/", productHandler.CreateProduct)
		r.Patch("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	userHandler := NewUserHandler(svcs.Users, logger)
	r.Route("/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", userHandler.ListUsers)
		r.Get("/{id}", userHandler.GetUser)
		r.Post("/", userHandler.CreateUser)
		r.Put("/{id}", userHandler.ReplaceUser)
		r.Patch("/{id}", userHandler.PatchUser)
		r.Delete("/{id}", userHandler.DeleteUser)
	})

	reviewHandler := NewReviewHandler(svcs.Reviews, logger)
	r.Route("/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", reviewHandler.ListReviews)
		r.Get("/{id}", reviewHandler.GetReview)
		r.Post("/", reviewHandler.CreateReview)
		r.Patch("/{id}", reviewHandler.UpdateReview)
		r.Delete("/{id}", reviewHandler.DeleteReview)
	})

	orderHandler := NewOrderHandler(svcs.Orders, logger)
	r.Route("/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", orderHandler.ListOrders)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Post("/", orderHandler.CreateOrder)
		r.Patch("/{id}", orderHandler.UpdateOrder)
		r.Delete("/{id}", orderHandler.DeleteOrder)
	})

	// Proxied games catalog. Responses are cacheable since the upstream
	// catalog changes rarely.
	gamesHandler := NewGamesHandler(svcs.Games, logger)
	r.Route("/f2p-games", func(r chi.Router) {
		r.Use(middleware.CacheControl(gamesCacheMaxAge))

		r.Get("/", gamesHandler.ListGames)
		r.Get("/{id}", gamesHandler.GetGame)
	})

	return r
}
