package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMercadoPagoWebhook_BodyEnvelope(t *testing.T) {
	svc := new(MockWebhookService)

	var captured *model.PaymentNotification
	svc.On("HandlePaymentNotification", mock.Anything, mock.AnythingOfType("*model.PaymentNotification")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*model.PaymentNotification)
		}).
		Return(nil)

	h := NewWebhookHandler(svc, zerolog.Nop())

	body := `{"type": "payment", "action": "payment.updated", "data": {"id": "123456789"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/mercado-pago", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.MercadoPago(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "123456789", captured.PaymentID())
}

func TestMercadoPagoWebhook_QueryParams(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		expectedID string
	}{
		{
			name:       "v2 query shape",
			target:     "/webhooks/mercado-pago?data.id=555&type=payment",
			expectedID: "555",
		},
		{
			name:       "legacy IPN shape",
			target:     "/webhooks/mercado-pago?id=777&topic=payment",
			expectedID: "777",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWebhookService)

			var captured *model.PaymentNotification
			svc.On("HandlePaymentNotification", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) {
					captured = args.Get(1).(*model.PaymentNotification)
				}).
				Return(nil)

			h := NewWebhookHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			w := httptest.NewRecorder()

			h.MercadoPago(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			require.NotNil(t, captured)
			assert.Equal(t, tt.expectedID, captured.PaymentID())
		})
	}
}

// Provider retries on non-2xx, so even failures and garbage answer 200.
func TestMercadoPagoWebhook_AlwaysAcknowledges(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
	}{
		{name: "Malformed body", body: `{not json`},
		{name: "Empty body", body: ""},
		{name: "Processing failure", body: `{"type": "payment", "data": {"id": "1"}}`, serviceErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWebhookService)
			svc.On("HandlePaymentNotification", mock.Anything, mock.Anything).Return(tt.serviceErr)

			h := NewWebhookHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, "/webhooks/mercado-pago", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.MercadoPago(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestMelhorEnvioWebhook_RegistrationProbe(t *testing.T) {
	svc := new(MockWebhookService)
	h := NewWebhookHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/webhooks/melhor-envio", nil)
	w := httptest.NewRecorder()

	h.MelhorEnvio(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
	svc.AssertNotCalled(t, "HandleShippingEvent", mock.Anything, mock.Anything)
}

func TestMelhorEnvioWebhook_Event(t *testing.T) {
	svc := new(MockWebhookService)

	var captured *model.ShippingEvent
	svc.On("HandleShippingEvent", mock.Anything, mock.AnythingOfType("*model.ShippingEvent")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*model.ShippingEvent)
		}).
		Return(nil)

	h := NewWebhookHandler(svc, zerolog.Nop())

	body := `{
		"event": "order.posted",
		"data": {
			"id": "me-cart-1",
			"status": "posted",
			"tracking": "ME123456789BR",
			"tags": [{"tag": "5f0c1a8e-0000-4000-8000-000000000001"}]
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/melhor-envio", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.MelhorEnvio(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
	require.NotNil(t, captured)
	assert.Equal(t, "order.posted", captured.Event)
	assert.Equal(t, "ME123456789BR", captured.TrackingCode())
	assert.Equal(t, "5f0c1a8e-0000-4000-8000-000000000001", captured.OrderTag())
}

func TestMelhorEnvioWebhook_AlwaysAcknowledges(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
	}{
		{name: "Malformed body", body: `<?xml?>`},
		{name: "Empty body", body: ""},
		{name: "Processing failure", body: `{"event": "order.posted", "data": {}}`, serviceErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWebhookService)
			svc.On("HandleShippingEvent", mock.Anything, mock.Anything).Return(tt.serviceErr)

			h := NewWebhookHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, "/webhooks/melhor-envio", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.MelhorEnvio(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"success": true}`, w.Body.String())
		})
	}
}
