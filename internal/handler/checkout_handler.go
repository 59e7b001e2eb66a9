package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles the checkout flow HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// QuoteShipping handles POST /api/checkout/shipping-quote requests.
func (h *CheckoutHandler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	var req model.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeInvalidJSON,
			Message: "invalid request body",
		})
		return
	}

	options, err := h.service.QuoteShipping(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.QuoteResponse{Options: options})
}

// PlaceOrder handles POST /api/checkout requests. When payment fails after
// the order was persisted, the error body carries the order id so the client
// can retry payment against the same order.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeInvalidJSON,
			Message: "invalid request body",
		})
		return
	}

	resp, err := h.service.PlaceOrder(r.Context(), &req)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) && resp != nil && resp.Order != nil {
			status := http.StatusBadGateway
			if domainErr.Status != 0 {
				status = domainErr.Status
			}
			h.logger.Error().
				Str("code", domainErr.Code).
				Str("error", domainErr.Message).
				Str("order_id", resp.Order.ID.String()).
				Msg("checkout failed after order creation")
			writeJSON(w, status, model.ErrorResponse{
				Error:   domainErr.Code,
				Message: domainErr.Message,
				Detail:  domainErr.Detail,
				OrderID: resp.Order.ID.String(),
			})
			return
		}
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetOrder handles GET /api/orders/{id} requests.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")

	orderID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "invalid order ID format",
		})
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve order", h.logger)
		return
	}

	if order == nil {
		writeDomainError(w, model.ErrOrderNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
