package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/mondido/hosted-checkout/internal"
	"github.com/mondido/hosted-checkout/internal/checkout"
	"github.com/mondido/hosted-checkout/internal/storefront"
	"github.com/mondido/hosted-checkout/internal/transport/middleware"
	"github.com/mondido/hosted-checkout/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, storefrontHandler *storefront.Handler, checkoutHandler *checkout.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, cfg.Gateway)

	// Apply global middleware
	router.Use(middleware.CORSWithOrigins(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.Session)

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	// Storefront pages
	if storefrontHandler != nil {
		router.Get("/cart", storefrontHandler.CartPage)
		router.Get("/product/{id}", storefrontHandler.ProductPage)
		router.Get("/checkout", storefrontHandler.CheckoutPage)
		router.Get("/checkout/thank-you/{id}", storefrontHandler.ThankYouPage)
	}

	// Checkout flow
	if checkoutHandler != nil {
		router.Get("/checkout/pay/{id}", checkoutHandler.ReceiptPage)

		// The provider calls back on both methods: GET for shopper
		// redirects, POST for webhooks.
		router.Get("/gateway/callback", checkoutHandler.Callback)
		router.Post("/gateway/callback", checkoutHandler.Callback)

		router.Post("/ajax", checkoutHandler.Ajax)
		router.Get("/ajax", checkoutHandler.Ajax)
	}
}
