package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"storefront/internal/model"
)

// Default parcel profile for apparel: everything ships in a uniform small
// package, so items without explicit dimensions fall back to these.
const (
	defaultParcelWidth  = 20.0
	defaultParcelHeight = 5.0
	defaultParcelLength = 30.0
	defaultParcelWeight = 0.3
)

// maxParcelHeight caps the stacked-height aggregate; beyond this the quote
// would describe a parcel no carrier prices sensibly.
const maxParcelHeight = 100.0

// quoteInsuranceValue is the nominal declared value sent with rate requests.
const quoteInsuranceValue = 100

// allowedServices is the business allow-list of carrier services surfaced to
// customers: the national postal service tiers only.
var allowedServices = map[string]bool{
	"pac":   true,
	"sedex": true,
}

type calculateRequest struct {
	From     calculatePostal   `json:"from"`
	To       calculatePostal   `json:"to"`
	Products []calculateParcel `json:"products"`
}

type calculatePostal struct {
	PostalCode string `json:"postal_code"`
}

type calculateParcel struct {
	ID             string  `json:"id"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Length         float64 `json:"length"`
	Weight         float64 `json:"weight"`
	InsuranceValue float64 `json:"insurance_value"`
	Quantity       int     `json:"quantity"`
}

type calculateOption struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Price         money               `json:"price"`
	DeliveryTime  int                 `json:"delivery_time"`
	DeliveryRange model.DeliveryRange `json:"delivery_range"`
	Company       struct {
		Name string `json:"name"`
	} `json:"company"`
	Error string `json:"error,omitempty"`
}

// Quote returns the shipping options for a cart, ordered by ascending price,
// with the synthetic in-store pickup option appended. An empty carrier result
// is not an error; the pickup option still renders.
func (c *Client) Quote(ctx context.Context, req model.QuoteRequest) ([]model.ShippingQuote, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}

	parcel := aggregateParcel(req.Products)

	payload := calculateRequest{
		From:     calculatePostal{PostalCode: model.Digits(req.FromPostalCode)},
		To:       calculatePostal{PostalCode: model.Digits(req.ToPostalCode)},
		Products: []calculateParcel{parcel},
	}

	status, body, err := c.post(ctx, "/api/v2/me/shipment/calculate", payload)
	if err != nil {
		c.logger.Error().Err(err).Msg("shipping calculate request failed")
		return nil, model.NewUpstreamUnavailable("shipping service unavailable")
	}
	if status < 200 || status >= 300 {
		c.logger.Error().
			Int("status", status).
			Str("body", string(body)).
			Msg("shipping calculate returned non-success status")
		return nil, model.NewUpstreamUnavailable(fmt.Sprintf("shipping service unavailable (status %d)", status))
	}

	var raw []calculateOption
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Error().Err(err).Msg("failed to decode shipping options")
		return nil, model.NewUpstreamUnavailable("shipping service returned an unreadable response")
	}

	quotes := append(normalizeOptions(raw), c.pickupOption())

	sort.SliceStable(quotes, func(i, j int) bool { return quotes[i].Price < quotes[j].Price })

	c.logger.Debug().
		Int("raw_options", len(raw)).
		Int("options", len(quotes)).
		Str("to", model.Digits(req.ToPostalCode)).
		Msg("shipping quote calculated")

	return quotes, nil
}

// aggregateParcel folds the cart lines into the single synthetic parcel sent
// to the carrier: summed weight and stacked height (capped), widest and
// longest footprint.
func aggregateParcel(products []model.ParcelItem) calculateParcel {
	totalWeight := 0.0
	totalHeight := 0.0
	maxWidth := defaultParcelWidth
	maxLength := defaultParcelLength

	if len(products) == 0 {
		totalWeight = defaultParcelWeight
		totalHeight = defaultParcelHeight
	}

	for _, p := range products {
		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}

		weight := p.Weight
		if weight <= 0 {
			weight = defaultParcelWeight
		}
		height := p.Height
		if height <= 0 {
			height = defaultParcelHeight
		}
		width := p.Width
		if width <= 0 {
			width = defaultParcelWidth
		}
		length := p.Length
		if length <= 0 {
			length = defaultParcelLength
		}

		totalWeight += weight * float64(qty)
		totalHeight += height * float64(qty)
		if width > maxWidth {
			maxWidth = width
		}
		if length > maxLength {
			maxLength = length
		}
	}

	if totalHeight > maxParcelHeight {
		totalHeight = maxParcelHeight
	}

	return calculateParcel{
		ID:             "1",
		Width:          maxWidth,
		Height:         totalHeight,
		Length:         maxLength,
		Weight:         totalWeight,
		InsuranceValue: quoteInsuranceValue,
		Quantity:       1,
	}
}

// normalizeOptions drops errored and unpriced entries and applies the service
// allow-list.
func normalizeOptions(raw []calculateOption) []model.ShippingQuote {
	quotes := make([]model.ShippingQuote, 0, len(raw))
	for _, opt := range raw {
		if opt.Error != "" || opt.Price <= 0 {
			continue
		}
		if !allowedServices[strings.ToLower(strings.TrimSpace(opt.Name))] {
			continue
		}

		company := opt.Company.Name
		if company == "" {
			company = opt.Name
		}

		quotes = append(quotes, model.ShippingQuote{
			ID:            opt.ID,
			Name:          opt.Name,
			Company:       company,
			Price:         float64(opt.Price),
			DeliveryTime:  opt.DeliveryTime,
			DeliveryRange: opt.DeliveryRange,
			Currency:      "BRL",
		})
	}
	return quotes
}

// pickupOption is the synthetic free in-store pickup entry appended to every
// quote response.
func (c *Client) pickupOption() model.ShippingQuote {
	return model.ShippingQuote{
		ID:       0,
		Name:     c.pickup.Name,
		Company:  c.pickup.Name,
		Price:    0,
		Currency: "BRL",
		Pickup:   true,
		Address:  c.pickup.Address,
	}
}
