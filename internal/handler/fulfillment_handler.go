package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FulfillmentHandler handles the admin fulfilment HTTP requests.
type FulfillmentHandler struct {
	service service.FulfillmentService
	logger  zerolog.Logger
}

// NewFulfillmentHandler creates a new fulfillment handler.
func NewFulfillmentHandler(service service.FulfillmentService, logger zerolog.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{
		service: service,
		logger:  logger.With().Str("handler", "fulfillment").Logger(),
	}
}

// GenerateLabel handles POST /api/admin/orders/{id}/label requests. The body
// is optional; when present it may override the shipping service id. A draft
// outcome is a success response with draft=true.
func (h *FulfillmentHandler) GenerateLabel(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")

	orderID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "invalid order ID format",
		})
		return
	}

	var req model.LabelRequest
	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
				Error:   model.ErrCodeInvalidJSON,
				Message: "invalid request body",
			})
			return
		}
	}

	result, err := h.service.GenerateLabel(r.Context(), orderID, req.ServiceID)
	if err != nil {
		if result != nil {
			// The saga got past the purchase; the response carries whatever
			// identifiers exist so the operator can reconcile with the carrier.
			h.logger.Error().
				Err(err).
				Str("order_id", orderID.String()).
				Str("melhor_envio_id", result.MelhorEnvioID).
				Msg("label saga failed after purchase")
		}
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
