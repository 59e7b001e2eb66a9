package shipping

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/model"
)

// Default label volume for apparel shipments, centimetres and kilograms.
const (
	labelVolumeLength = 16.0
	labelVolumeWidth  = 11.0
	labelVolumeHeight = 3.0
	labelVolumeWeight = 0.2
)

type cartParty struct {
	Name                 string `json:"name"`
	Phone                string `json:"phone,omitempty"`
	Email                string `json:"email,omitempty"`
	Document             string `json:"document,omitempty"`
	CompanyDocument      string `json:"company_document,omitempty"`
	StateRegister        string `json:"state_register,omitempty"`
	EconomicActivityCode string `json:"economic_activity_code,omitempty"`
	Address              string `json:"address"`
	Number               string `json:"number"`
	Complement           string `json:"complement,omitempty"`
	District             string `json:"district"`
	City                 string `json:"city"`
	StateAbbr            string `json:"state_abbr"`
	PostalCode           string `json:"postal_code"`
	CountryID            string `json:"country_id,omitempty"`
}

type cartProduct struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitaryValue float64 `json:"unitary_value"`
}

type cartVolume struct {
	Length         float64 `json:"length"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Weight         float64 `json:"weight"`
	InsuranceValue float64 `json:"insurance_value"`
}

type cartTag struct {
	Tag string `json:"tag"`
	URL string `json:"url"`
}

type cartOptions struct {
	InsuranceValue float64   `json:"insurance_value"`
	Receipt        bool      `json:"receipt"`
	OwnHand        bool      `json:"own_hand"`
	Collect        bool      `json:"collect"`
	Platform       string    `json:"platform,omitempty"`
	Tags           []cartTag `json:"tags"`
	Reminder       string    `json:"reminder,omitempty"`
}

type cartRequest struct {
	Service  int64         `json:"service"`
	From     cartParty     `json:"from"`
	To       cartParty     `json:"to"`
	Products []cartProduct `json:"products"`
	Volumes  []cartVolume  `json:"volumes"`
	Options  cartOptions   `json:"options"`
}

type ordersRequest struct {
	Orders []string `json:"orders"`
}

type printRequest struct {
	Mode   string   `json:"mode"`
	Orders []string `json:"orders"`
}

// GenerateLabel runs the label saga for a paid order: cart, checkout,
// generate, print, tracking.
//
// A checkout failure is a first-class draft outcome, not an error: the
// cart-item id comes back so an operator can pay the label in the carrier
// console. A failure on any later step returns both the partial result
// (carrying the id and the step reached) and a hard error, because by then
// the label has been purchased.
//
// The order id travels in the cart tag; the shipping webhook uses it to
// correlate status events back to the order.
func (c *Client) GenerateLabel(ctx context.Context, order *model.Order, items []model.OrderItem, serviceID int64) (*model.LabelResult, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.NewValidationError("order is required")
	}

	if serviceID == 0 {
		serviceID = order.ShippingService.ID
	}
	if serviceID == 0 {
		return nil, model.NewValidationError("no shipping service resolved for this order")
	}

	recipientDocument := order.ShippingAddress.RecipientDocument()
	if recipientDocument == "" {
		return nil, model.NewValidationError("recipient tax document not found on the order")
	}

	result := &model.LabelResult{Step: model.LabelStepQueued}

	// Step 1: add the shipment to the carrier cart.
	cartItemID, err := c.addToCart(ctx, order, items, serviceID, recipientDocument)
	if err != nil {
		result.Step = model.LabelStepFailed
		return result, err
	}
	result.MelhorEnvioID = cartItemID

	// Step 2: purchase the label. Failure here (typically insufficient
	// prepaid balance) downgrades to a draft instead of aborting.
	status, body, err := c.post(ctx, "/api/v2/me/shipment/checkout", ordersRequest{Orders: []string{cartItemID}})
	if err != nil {
		result.Step = model.LabelStepDrafted
		result.Draft = true
		result.Message = "label drafted; carrier checkout unreachable, complete payment in the carrier console"
		c.logger.Warn().Err(err).Str("melhor_envio_id", cartItemID).Msg("label checkout unreachable, returning draft")
		return result, nil
	}
	if status < 200 || status >= 300 {
		result.Step = model.LabelStepDrafted
		result.Draft = true
		result.Message = "label checkout not completed (likely insufficient balance); pay this label in the carrier console"
		c.logger.Warn().
			Int("status", status).
			Str("body", string(body)).
			Str("melhor_envio_id", cartItemID).
			Msg("label checkout declined, returning draft")
		return result, nil
	}
	result.Step = model.LabelStepPurchased

	// Steps 3-5: the label is paid for from here on, so any failure is a
	// hard error the operator must see.
	if err := c.expectSuccess(ctx, "/api/v2/me/shipment/generate", ordersRequest{Orders: []string{cartItemID}}); err != nil {
		return c.purchasedButLost(result, "generate", cartItemID, err)
	}
	result.Step = model.LabelStepGenerated

	labelURL, err := c.printLabel(ctx, cartItemID)
	if err != nil {
		return c.purchasedButLost(result, "print", cartItemID, err)
	}
	result.Step = model.LabelStepPrinted
	result.LabelURL = labelURL

	trackingCode, err := c.fetchTracking(ctx, cartItemID)
	if err != nil {
		return c.purchasedButLost(result, "tracking", cartItemID, err)
	}
	result.Step = model.LabelStepTracked
	result.TrackingCode = trackingCode
	result.Success = true

	c.logger.Info().
		Str("order_id", order.ID.String()).
		Str("melhor_envio_id", cartItemID).
		Str("tracking_code", trackingCode).
		Msg("shipping label generated")

	return result, nil
}

func (c *Client) addToCart(ctx context.Context, order *model.Order, items []model.OrderItem, serviceID int64, recipientDocument string) (string, error) {
	addr := order.ShippingAddress

	products := make([]cartProduct, 0, len(items))
	for _, item := range items {
		products = append(products, cartProduct{
			Name:         item.ProductName,
			Quantity:     item.Quantity,
			UnitaryValue: item.Price,
		})
	}

	insurance := order.Total
	if insurance <= 0 {
		insurance = order.Subtotal
	}

	payload := cartRequest{
		Service: serviceID,
		From: cartParty{
			Name:                 c.sender.Name,
			Phone:                c.sender.Phone,
			Email:                c.sender.Email,
			Document:             c.sender.Document,
			CompanyDocument:      c.sender.CompanyDocument,
			StateRegister:        c.sender.StateRegister,
			EconomicActivityCode: c.sender.EconomicActivityCode,
			Address:              c.sender.Street,
			Number:               c.sender.Number,
			Complement:           c.sender.Complement,
			District:             c.sender.District,
			City:                 c.sender.City,
			StateAbbr:            c.sender.State,
			PostalCode:           model.Digits(c.sender.PostalCode),
		},
		To: cartParty{
			Name:       addr.Name,
			Phone:      addr.Phone,
			Email:      addr.Email,
			Document:   recipientDocument,
			Address:    addr.Street,
			Number:     addr.Number,
			Complement: addr.Complement,
			District:   addr.Neighborhood,
			City:       addr.City,
			StateAbbr:  addr.State,
			PostalCode: model.Digits(addr.PostalCode),
			CountryID:  "BR",
		},
		Products: products,
		Volumes: []cartVolume{{
			Length:         labelVolumeLength,
			Width:          labelVolumeWidth,
			Height:         labelVolumeHeight,
			Weight:         labelVolumeWeight,
			InsuranceValue: insurance,
		}},
		Options: cartOptions{
			InsuranceValue: insurance,
			Platform:       c.platform,
			Tags:           []cartTag{{Tag: order.ID.String()}},
			Reminder:       fmt.Sprintf("Pedido %s", order.ID),
		},
	}

	status, body, err := c.post(ctx, "/api/v2/me/cart", payload)
	if err != nil {
		return "", model.NewUpstreamUnavailable("carrier cart request failed")
	}
	if status < 200 || status >= 300 {
		c.logger.Error().Int("status", status).Str("body", string(body)).Msg("carrier cart returned non-success status")
		return "", model.NewUpstreamRejected("carrier rejected the shipment", string(body), status)
	}

	var cart struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &cart); err != nil || cart.ID == "" {
		return "", model.NewUpstreamUnavailable("carrier cart returned an unreadable response")
	}

	return cart.ID, nil
}

func (c *Client) expectSuccess(ctx context.Context, path string, payload any) error {
	status, body, err := c.post(ctx, path, payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%s returned status %d: %s", path, status, string(body))
	}
	return nil
}

func (c *Client) printLabel(ctx context.Context, cartItemID string) (string, error) {
	status, body, err := c.post(ctx, "/api/v2/me/shipment/print", printRequest{Mode: "public", Orders: []string{cartItemID}})
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("print returned status %d: %s", status, string(body))
	}

	var printed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &printed); err != nil {
		return "", fmt.Errorf("failed to decode print response: %w", err)
	}
	return printed.URL, nil
}

func (c *Client) fetchTracking(ctx context.Context, cartItemID string) (string, error) {
	status, body, err := c.post(ctx, "/api/v2/me/shipment/tracking", ordersRequest{Orders: []string{cartItemID}})
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("tracking returned status %d: %s", status, string(body))
	}

	var tracked map[string]struct {
		Tracking string `json:"tracking"`
	}
	if err := json.Unmarshal(body, &tracked); err != nil {
		return "", fmt.Errorf("failed to decode tracking response: %w", err)
	}
	return tracked[cartItemID].Tracking, nil
}

// purchasedButLost marks the result failed and wraps the step error in the
// distinct "money was spent" error class.
func (c *Client) purchasedButLost(result *model.LabelResult, step, cartItemID string, err error) (*model.LabelResult, error) {
	result.Step = model.LabelStepFailed
	c.logger.Error().
		Err(err).
		Str("step", step).
		Str("melhor_envio_id", cartItemID).
		Msg("label purchased but not retrieved")
	return result, &model.DomainError{
		Code:    model.ErrCodeLabelNotRetrieved,
		Message: fmt.Sprintf("label purchased but %s failed; reconcile with carrier item %s", step, cartItemID),
		Detail:  err.Error(),
	}
}
