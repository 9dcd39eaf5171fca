package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/INOCcent-afk/productly-server/internal/auth"
	"github.com/INOCcent-afk/productly-server/internal/service"
	"github.com/INOCcent-afk/productly-server/pkg/health"
	"github.com/INOCcent-afk/productly-server/pkg/middleware"
)

// NewRouter creates a chi router with all productly routes registered.
func NewRouter(
	userService *service.UserService,
	productService *service.ProductService,
	reviewService *service.ReviewService,
	tokens *auth.Manager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("productly"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(userService, logger)
	userHandler := NewUserHandler(userService, logger)
	productHandler := NewProductHandler(productService, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)

	requireAuth := middleware.Auth(tokens.Verify)

	r.Route("/api/v1/productly", func(r chi.Router) {
		// Public reads
		r.Get("/users", userHandler.List)
		r.Get("/user/{id}", userHandler.Get)
		r.Get("/user/search/{name}", userHandler.Search)

		r.Get("/products", productHandler.List)
		r.Get("/products/top-rated", productHandler.TopRated)
		r.Get("/products/search/{name}", productHandler.Search)
		r.Get("/products/{userId}", productHandler.ByUser)

		r.Get("/product/{id}", productHandler.Detail)
		r.Get("/product/{id}/reviews", reviewHandler.ByProduct)

		// Public writes (account entry points)
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/verify", authHandler.Verify)
			r.Delete("/product/{id}/deleteReview", reviewHandler.Delete)
			r.Delete("/product/{id}/deleteProduct", productHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)

				r.Put("/user/{id}/edit-profile", userHandler.EditProfile)
				// {id} is the reviewer's user id here; it shares the
				// parameter name with the other /product routes because chi
				// requires a single wildcard name per path segment.
				r.Post("/product/{id}/{productId}/addReview", reviewHandler.Add)
				r.Put("/product/{id}/updateReview", reviewHandler.Update)
				r.Post("/product/{id}/addProduct", productHandler.Add)
				r.Put("/product/{id}/updateProduct", productHandler.Update)
			})
		})
	})

	return r
}
