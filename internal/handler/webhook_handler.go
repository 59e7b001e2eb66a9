package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// WebhookHandler receives provider notifications. Both providers retry on
// non-2xx responses and disable endpoints that keep failing, so every request
// is acknowledged with success; failures are logged and reconciled through
// retries or the admin surface, never surfaced to the provider.
type WebhookHandler struct {
	service service.WebhookService
	logger  zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service service.WebhookService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger.With().Str("handler", "webhook").Logger(),
	}
}

// MercadoPago handles POST /webhooks/mercado-pago requests. The payment id
// may arrive in the JSON body or, for the older IPN shape, as query
// parameters.
func (h *WebhookHandler) MercadoPago(w http.ResponseWriter, r *http.Request) {
	var n model.PaymentNotification

	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &n); err != nil {
			h.logger.Warn().Err(err).Msg("unparseable payment notification body")
		}
	}

	if n.PaymentID() == "" {
		q := r.URL.Query()
		if id := q.Get("data.id"); id != "" {
			n.Data.ID = id
		} else if id := q.Get("id"); id != "" {
			n.ID = id
		}
		if t := q.Get("type"); t != "" {
			n.Type = t
		} else if t := q.Get("topic"); t != "" {
			n.Type = t
		}
	}

	if err := h.service.HandlePaymentNotification(r.Context(), &n); err != nil {
		h.logger.Error().Err(err).Msg("failed to process payment notification")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

// MelhorEnvio handles GET and POST /webhooks/melhor-envio requests. GET is
// the registration probe; an empty or malformed POST body is treated the same
// way.
func (h *WebhookHandler) MelhorEnvio(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	var ev model.ShippingEvent

	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &ev); err != nil {
			h.logger.Warn().Err(err).Msg("unparseable shipping event body")
		}
	}

	if err := h.service.HandleShippingEvent(r.Context(), &ev); err != nil {
		h.logger.Error().Err(err).Msg("failed to process shipping event")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
