// Package payment integrates with the Mercado Pago API. Payment creation is
// a tagged request: no payment method selects the hosted-redirect preference
// flow, a method id selects the direct charge flow (pix, card, boleto).
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const currencyID = "BRL"

// Gateway is the payment-processor boundary the services depend on.
type Gateway interface {
	// CreatePayment validates and submits a payment creation request,
	// dispatching on the request's flow.
	CreatePayment(ctx context.Context, req *model.PaymentRequest) (*model.PaymentResult, error)

	// GetPayment fetches a payment by its processor id, used by the webhook
	// receiver to resolve status and order reference.
	GetPayment(ctx context.Context, id string) (*model.PaymentLookup, error)
}

// Client implements Gateway against the Mercado Pago HTTP API.
type Client struct {
	httpClient          *http.Client
	baseURL             string
	accessToken         string
	statementDescriptor string
	notificationURL     string
	siteBaseURL         string
	logger              zerolog.Logger
}

// NewClient creates a new Mercado Pago client.
func NewClient(cfg config.MercadoPagoConfig, site config.SiteConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient:          &http.Client{Timeout: 30 * time.Second},
		baseURL:             cfg.BaseURL,
		accessToken:         cfg.AccessToken,
		statementDescriptor: cfg.StatementDescriptor,
		notificationURL:     cfg.WebhookURL,
		siteBaseURL:         site.BaseURL,
		logger:              logger.With().Str("client", "mercado_pago").Logger(),
	}
}

// CreatePayment validates the request and dispatches to the flow handler.
// Validation failures never reach the network.
func (c *Client) CreatePayment(ctx context.Context, req *model.PaymentRequest) (*model.PaymentResult, error) {
	if c.accessToken == "" {
		return nil, model.NewConfigurationError("payment gateway not configured: missing access token")
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if req.Flow() == model.FlowPreference {
		return c.createPreference(ctx, req)
	}
	return c.createDirectCharge(ctx, req)
}

func validateRequest(req *model.PaymentRequest) error {
	if req == nil {
		return model.NewValidationError("payment request is required")
	}
	if req.ExternalReference == "" {
		return model.NewValidationError("external_reference is required")
	}
	if len(req.Items) == 0 {
		return model.NewValidationError("payment must contain at least one item")
	}
	for i, item := range req.Items {
		if item.Title == "" {
			return model.NewValidationError(fmt.Sprintf("item %d: title is required", i))
		}
		if item.Quantity <= 0 {
			return model.NewValidationError(fmt.Sprintf("item %d: quantity must be greater than zero", i))
		}
		if item.UnitPrice < 0 {
			return model.NewValidationError(fmt.Sprintf("item %d: unit price must not be negative", i))
		}
	}

	switch req.PaymentMethodID {
	case "":
		// preference flow, nothing method-specific to check
	case model.PaymentMethodPix:
		if req.Payer.Email == "" || model.Digits(req.Payer.Document) == "" {
			return model.NewValidationError("pix requires payer email and tax document")
		}
	case model.PaymentMethodBoleto:
		addr := req.Payer.Address
		if addr == nil || addr.ZipCode == "" || addr.StreetName == "" || addr.StreetNumber == "" || addr.City == "" || addr.FederalUnit == "" {
			return model.NewValidationError("boleto requires a complete payer address (zip, street, number, city, state)")
		}
	default:
		// any other method id is a tokenized card charge
		if req.Token == "" {
			return model.NewValidationError("card payments require a tokenized card")
		}
	}

	return nil
}

// backURL resolves a return URL, defaulting to the order page on the public
// site.
func (c *Client) backURL(configured, orderID string) string {
	if configured != "" {
		return configured
	}
	return fmt.Sprintf("%s/pedido/%s", c.siteBaseURL, orderID)
}

func (c *Client) notifyURL(req *model.PaymentRequest) string {
	if req.BackURLs.Notification != "" {
		return req.BackURLs.Notification
	}
	return c.notificationURL
}

type preferenceItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	PictureURL  string  `json:"picture_url,omitempty"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id"`
	UnitPrice   float64 `json:"unit_price"`
}

type preferencePayload struct {
	Items             []preferenceItem `json:"items"`
	Payer             preferencePayer  `json:"payer"`
	BackURLs          preferenceBack   `json:"back_urls"`
	AutoReturn        string           `json:"auto_return"`
	ExternalReference string           `json:"external_reference"`
	StatementDesc     string           `json:"statement_descriptor"`
	NotificationURL   string           `json:"notification_url,omitempty"`
}

type preferencePayer struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type preferenceBack struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// createPreference builds a hosted-checkout preference and returns the
// redirect URLs.
func (c *Client) createPreference(ctx context.Context, req *model.PaymentRequest) (*model.PaymentResult, error) {
	items := make([]preferenceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, preferenceItem{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			PictureURL:  item.PictureURL,
			Quantity:    item.Quantity,
			CurrencyID:  currencyID,
			UnitPrice:   item.UnitPrice,
		})
	}

	payload := preferencePayload{
		Items: items,
		Payer: preferencePayer{
			Email: req.Payer.Email,
			Name:  req.Payer.Name,
		},
		BackURLs: preferenceBack{
			Success: c.backURL(req.BackURLs.Success, req.ExternalReference),
			Failure: c.backURL(req.BackURLs.Failure, req.ExternalReference),
			Pending: c.backURL(req.BackURLs.Pending, req.ExternalReference),
		},
		AutoReturn:        "approved",
		ExternalReference: req.ExternalReference,
		StatementDesc:     c.statementDescriptor,
		NotificationURL:   c.notifyURL(req),
	}

	status, body, err := c.post(ctx, "/checkout/preferences", payload)
	if err != nil {
		return nil, model.NewUpstreamUnavailable("payment service unavailable")
	}
	if status < 200 || status >= 300 {
		message := processorMessage(body, "failed to create payment preference")
		c.logger.Error().Int("status", status).Str("body", string(body)).Msg("preference creation rejected")
		return nil, model.NewUpstreamRejected(message, string(body), status)
	}

	var pref struct {
		ID               string `json:"id"`
		InitPoint        string `json:"init_point"`
		SandboxInitPoint string `json:"sandbox_init_point"`
	}
	if err := json.Unmarshal(body, &pref); err != nil {
		return nil, model.NewUpstreamUnavailable("payment service returned an unreadable response")
	}

	c.logger.Info().
		Str("preference_id", pref.ID).
		Str("external_reference", req.ExternalReference).
		Msg("payment preference created")

	return &model.PaymentResult{
		ID:               pref.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
	}, nil
}

type chargeItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	PictureURL  string  `json:"picture_url,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type chargeIdentification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type chargePayer struct {
	Email          string               `json:"email"`
	FirstName      string               `json:"first_name,omitempty"`
	LastName       string               `json:"last_name,omitempty"`
	Identification chargeIdentification `json:"identification"`
}

type chargePayload struct {
	TransactionAmount float64     `json:"transaction_amount"`
	Description       string      `json:"description"`
	PaymentMethodID   string      `json:"payment_method_id"`
	Token             string      `json:"token,omitempty"`
	Installments      int         `json:"installments,omitempty"`
	Payer             chargePayer `json:"payer"`
	ExternalReference string      `json:"external_reference"`
	StatementDesc     string      `json:"statement_descriptor"`
	NotificationURL   string      `json:"notification_url,omitempty"`
	AdditionalInfo    struct {
		Items []chargeItem `json:"items"`
	} `json:"additional_info"`
}

type chargeResponse struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// chargeItems folds shipping into the item list as a synthetic line. The
// payment API has no shipping field, so the charged total only matches the
// displayed total if freight rides along as an item.
func chargeItems(req *model.PaymentRequest) []chargeItem {
	items := make([]chargeItem, 0, len(req.Items)+1)
	for _, item := range req.Items {
		items = append(items, chargeItem{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			PictureURL:  item.PictureURL,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	if req.ShippingCost > 0 {
		items = append(items, chargeItem{
			ID:        "shipping",
			Title:     "Frete",
			Quantity:  1,
			UnitPrice: req.ShippingCost,
		})
	}
	return items
}

// createDirectCharge submits a direct pix/card/boleto charge.
func (c *Client) createDirectCharge(ctx context.Context, req *model.PaymentRequest) (*model.PaymentResult, error) {
	items := chargeItems(req)

	amount := 0.0
	for _, item := range items {
		amount += item.UnitPrice * float64(item.Quantity)
	}

	docType := req.Payer.DocumentType
	if docType == "" {
		if len(model.Digits(req.Payer.Document)) > 11 {
			docType = "CNPJ"
		} else {
			docType = "CPF"
		}
	}

	payload := chargePayload{
		TransactionAmount: amount,
		Description:       req.Items[0].Title,
		PaymentMethodID:   req.PaymentMethodID,
		Token:             req.Token,
		Installments:      req.Installments,
		Payer: chargePayer{
			Email:     req.Payer.Email,
			FirstName: firstNonEmpty(req.Payer.FirstName, req.Payer.Name),
			LastName:  req.Payer.LastName,
			Identification: chargeIdentification{
				Type:   docType,
				Number: model.Digits(req.Payer.Document),
			},
		},
		ExternalReference: req.ExternalReference,
		StatementDesc:     c.statementDescriptor,
		NotificationURL:   c.notifyURL(req),
	}
	payload.AdditionalInfo.Items = items

	status, body, err := c.post(ctx, "/v1/payments", payload)
	if err != nil {
		return nil, model.NewUpstreamUnavailable("payment service unavailable")
	}
	if status < 200 || status >= 300 {
		message := processorMessage(body, "failed to create payment")
		c.logger.Error().Int("status", status).Str("body", string(body)).Msg("payment creation rejected")
		return nil, model.NewUpstreamRejected(message, string(body), status)
	}

	var charge chargeResponse
	if err := json.Unmarshal(body, &charge); err != nil {
		return nil, model.NewUpstreamUnavailable("payment service returned an unreadable response")
	}

	result := &model.PaymentResult{
		ID:           charge.ID.String(),
		Status:       charge.Status,
		StatusDetail: charge.StatusDetail,
		QRCode:       charge.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: charge.PointOfInteraction.TransactionData.QRCodeBase64,
		TicketURL:    charge.PointOfInteraction.TransactionData.TicketURL,
	}

	// A synchronous rejection is terminal for this attempt; the caller may
	// start a fresh payment against the same order.
	if charge.Status == "rejected" {
		c.logger.Warn().
			Str("payment_id", result.ID).
			Str("status_detail", charge.StatusDetail).
			Str("external_reference", req.ExternalReference).
			Msg("payment rejected by processor")
		return result, model.NewUpstreamRejected(
			fmt.Sprintf("payment rejected: %s", charge.StatusDetail),
			string(body),
			http.StatusPaymentRequired,
		)
	}

	c.logger.Info().
		Str("payment_id", result.ID).
		Str("status", charge.Status).
		Str("external_reference", req.ExternalReference).
		Msg("payment created")

	return result, nil
}

// GetPayment fetches a payment by its processor id.
func (c *Client) GetPayment(ctx context.Context, id string) (*model.PaymentLookup, error) {
	if c.accessToken == "" {
		return nil, model.NewConfigurationError("payment gateway not configured: missing access token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/payments/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamUnavailable("payment service unavailable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, model.NewUpstreamRejected(
			processorMessage(body, "failed to fetch payment"),
			string(body),
			resp.StatusCode,
		)
	}

	var raw struct {
		ID                json.Number `json:"id"`
		Status            string      `json:"status"`
		StatusDetail      string      `json:"status_detail"`
		ExternalReference string      `json:"external_reference"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, model.NewUpstreamUnavailable("payment service returned an unreadable response")
	}

	return &model.PaymentLookup{
		ID:                raw.ID.String(),
		Status:            raw.Status,
		StatusDetail:      raw.StatusDetail,
		ExternalReference: raw.ExternalReference,
	}, nil
}

// post sends an authenticated JSON request with a fresh idempotency key, so
// transport-level retries cannot duplicate a charge.
func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	return resp.StatusCode, data, nil
}

// processorMessage pulls the human-readable message out of an error body.
func processorMessage(body []byte, fallback string) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
