package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Product     *handler.ProductHandler
	Checkout    *handler.CheckoutHandler
	Fulfillment *handler.FulfillmentHandler
	Webhook     *handler.WebhookHandler
}

// New builds the HTTP routing table. The storefront routes and the provider
// webhooks are open; only the admin subtree sits behind the API key.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Product.GetAll)
		r.Get("/products/{id}", h.Product.GetByID)

		r.Post("/checkout/shipping-quote", h.Checkout.QuoteShipping)
		r.Post("/checkout", h.Checkout.PlaceOrder)
		r.Get("/orders/{id}", h.Checkout.GetOrder)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(apiKey, logger))
			r.Post("/orders/{id}/label", h.Fulfillment.GenerateLabel)
		})
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/mercado-pago", h.Webhook.MercadoPago)
		r.Get("/melhor-envio", h.Webhook.MelhorEnvio)
		r.Post("/melhor-envio", h.Webhook.MelhorEnvio)
	})

	return r
}
