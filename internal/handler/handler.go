package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: model.ErrCodeInternalError, Message: message})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Upstream
// rejections mirror the provider's own status when one was recorded.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, "internal server error", logger)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidJSON:
		status = http.StatusBadRequest
	case model.ErrCodeProductNotFound:
		status = http.StatusBadRequest
	case model.ErrCodeOrderNotFound:
		status = http.StatusNotFound
	case model.ErrCodeUpstreamRejected:
		status = http.StatusBadGateway
		if domainErr.Status != 0 {
			status = domainErr.Status
		}
	case model.ErrCodeUpstreamUnavailable:
		status = http.StatusBadGateway
	case model.ErrCodeConfiguration:
		status = http.StatusInternalServerError
	case model.ErrCodeOrderItemsNotSaved, model.ErrCodeLabelNotRetrieved:
		status = http.StatusInternalServerError
	}

	logger.Error().
		Str("code", domainErr.Code).
		Str("error", domainErr.Message).
		Int("status", status).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:   domainErr.Code,
		Message: domainErr.Message,
		Detail:  domainErr.Detail,
	})
}
