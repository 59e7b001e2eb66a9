package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fulfillmentRouter(svc *MockFulfillmentService) http.Handler {
	h := NewFulfillmentHandler(svc, zerolog.Nop())
	r := chi.NewRouter()
	r.Post("/api/admin/orders/{id}/label", h.GenerateLabel)
	return r
}

func TestGenerateLabelHandler(t *testing.T) {
	orderID := uuid.New()
	svc := new(MockFulfillmentService)
	svc.On("GenerateLabel", mock.Anything, orderID, int64(0)).Return(&model.LabelResult{
		Success:       true,
		Step:          model.LabelStepTracked,
		MelhorEnvioID: "me-cart-1",
		TrackingCode:  "ME123456789BR",
		LabelURL:      "https://labels.example.com/me-cart-1.pdf",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+orderID.String()+"/label", nil)
	w := httptest.NewRecorder()

	fulfillmentRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result model.LabelResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "ME123456789BR", result.TrackingCode)
}

func TestGenerateLabelHandler_ServiceOverride(t *testing.T) {
	orderID := uuid.New()
	svc := new(MockFulfillmentService)
	svc.On("GenerateLabel", mock.Anything, orderID, int64(1)).Return(&model.LabelResult{
		Success: true,
		Step:    model.LabelStepTracked,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+orderID.String()+"/label", strings.NewReader(`{"service_id": 1}`))
	w := httptest.NewRecorder()

	fulfillmentRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

// A draft is a success response; the operator finishes it in the carrier
// console.
func TestGenerateLabelHandler_Draft(t *testing.T) {
	orderID := uuid.New()
	svc := new(MockFulfillmentService)
	svc.On("GenerateLabel", mock.Anything, orderID, int64(0)).Return(&model.LabelResult{
		Success:       false,
		Draft:         true,
		Step:          model.LabelStepDrafted,
		MelhorEnvioID: "me-cart-1",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+orderID.String()+"/label", nil)
	w := httptest.NewRecorder()

	fulfillmentRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result model.LabelResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Draft)
	assert.Equal(t, "me-cart-1", result.MelhorEnvioID)
}

func TestGenerateLabelHandler_PurchasedButLost(t *testing.T) {
	orderID := uuid.New()
	svc := new(MockFulfillmentService)
	svc.On("GenerateLabel", mock.Anything, orderID, int64(0)).Return(
		&model.LabelResult{Step: model.LabelStepFailed, MelhorEnvioID: "me-cart-1"},
		&model.DomainError{
			Code:    model.ErrCodeLabelNotRetrieved,
			Message: "label purchased but print failed; reconcile with carrier item me-cart-1",
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+orderID.String()+"/label", nil)
	w := httptest.NewRecorder()

	fulfillmentRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeLabelNotRetrieved, resp.Error)
	assert.Contains(t, resp.Message, "me-cart-1")
}

func TestGenerateLabelHandler_Errors(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name           string
		target         string
		body           string
		serviceErr     error
		expectedStatus int
		expectCall     bool
	}{
		{
			name:           "Invalid order id",
			target:         "/api/admin/orders/not-a-uuid/label",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed body",
			target:         "/api/admin/orders/" + orderID.String() + "/label",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Order not found",
			target:         "/api/admin/orders/" + orderID.String() + "/label",
			serviceErr:     model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectCall:     true,
		},
		{
			name:           "Unpaid order",
			target:         "/api/admin/orders/" + orderID.String() + "/label",
			serviceErr:     model.NewValidationError("label generation requires an approved payment"),
			expectedStatus: http.StatusBadRequest,
			expectCall:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockFulfillmentService)
			if tt.expectCall {
				svc.On("GenerateLabel", mock.Anything, orderID, int64(0)).Return(nil, tt.serviceErr)
			}

			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}

			req := httptest.NewRequest(http.MethodPost, tt.target, body)
			w := httptest.NewRecorder()

			fulfillmentRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.expectCall {
				svc.AssertNotCalled(t, "GenerateLabel", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
