package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/linemk/e-cart/internal/app/handlers"
	"github.com/linemk/e-cart/internal/config"
	"github.com/linemk/e-cart/internal/lib/logger/handlers/urllog"
	"github.com/linemk/e-cart/internal/service"
	"github.com/linemk/e-cart/internal/session"
)

// Services - всё, что нужно обработчикам
type Services struct {
	Products service.ProductService
	Cart     service.CartService
	Checkout service.CheckoutService
	DB       handlers.Pinger
}

// NewRouter собирает маршруты /api
func NewRouter(log *slog.Logger, cfg *config.Config, svc Services) http.Handler {
	router := chi.NewRouter()

	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", session.Header},
		ExposedHeaders: []string{session.Header},
		MaxAge:         300,
	}))

	router.NotFound(handlers.NotFoundHandler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthHandler(log, svc.DB))

		r.Get("/products", handlers.ListProductsHandler(log, svc.Products))
		r.Get("/products/{id}", handlers.GetProductHandler(log, svc.Products))

		r.Group(func(r chi.Router) {
			r.Use(session.NewMiddleware(log, cfg.Session.Secret, cfg.Session.TokenTTL))

			r.Get("/cart", handlers.GetCartHandler(log, svc.Cart))
			r.Post("/cart", handlers.AddToCartHandler(log, svc.Cart))
			r.Delete("/cart", handlers.ClearCartHandler(log, svc.Cart))
			r.Put("/cart/{id}", handlers.UpdateCartItemHandler(log, svc.Cart))
			r.Delete("/cart/{id}", handlers.RemoveCartItemHandler(log, svc.Cart))

			r.Post("/checkout", handlers.CheckoutHandler(log, svc.Checkout))
		})

		r.Get("/checkout/orders", handlers.ListOrdersHandler(log, svc.Checkout))
		r.Get("/checkout/orders/{orderNumber}", handlers.GetOrderHandler(log, svc.Checkout))
	})

	return router
}
