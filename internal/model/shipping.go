package model

// DeliveryRange is the min/max delivery estimate in business days.
type DeliveryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ParcelItem describes one distinct cart line for rate calculation.
// Dimensions are centimetres, weight kilograms. Zero values fall back to the
// default apparel parcel profile.
type ParcelItem struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Length   float64 `json:"length"`
	Weight   float64 `json:"weight"`
	Quantity int     `json:"quantity"`
}

// QuoteRequest asks for shipping options between two postal codes for a cart.
type QuoteRequest struct {
	FromPostalCode string       `json:"from_postal_code"`
	ToPostalCode   string       `json:"to_postal_code"`
	Products       []ParcelItem `json:"products"`
}

// ShippingQuote is one carrier option, already normalised. The synthetic
// in-store pickup option carries Pickup=true, price 0 and the store address.
type ShippingQuote struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Company       string        `json:"company"`
	Price         float64       `json:"price"`
	DeliveryTime  int           `json:"delivery_time"`
	DeliveryRange DeliveryRange `json:"delivery_range"`
	Currency      string        `json:"currency"`
	Pickup        bool          `json:"pickup,omitempty"`
	Address       string        `json:"address,omitempty"`
}

// QuoteResponse is the wire shape returned to the checkout client.
type QuoteResponse struct {
	Options []ShippingQuote `json:"options"`
}

// LabelStep identifies how far the label saga progressed. The saga is not
// atomic; persisting the step and the carrier-side id makes a crashed or
// drafted run reconcilable against the carrier.
type LabelStep string

const (
	LabelStepQueued    LabelStep = "queued"
	LabelStepDrafted   LabelStep = "drafted"
	LabelStepPurchased LabelStep = "purchased"
	LabelStepGenerated LabelStep = "generated"
	LabelStepPrinted   LabelStep = "printed"
	LabelStepTracked   LabelStep = "tracked"
	LabelStepFailed    LabelStep = "failed"
)

// LabelRequest triggers label generation for a paid order. ServiceID
// overrides the service captured in the order's shipping snapshot.
type LabelRequest struct {
	ServiceID int64 `json:"service_id,omitempty"`
}

// LabelResult is the outcome of the label saga. Draft=true is a first-class
// outcome, not an error: the label exists carrier-side but was not paid
// (typically insufficient prepaid balance) and must be completed in the
// carrier console, keyed by MelhorEnvioID.
type LabelResult struct {
	Success       bool      `json:"success"`
	Draft         bool      `json:"draft,omitempty"`
	Step          LabelStep `json:"step"`
	LabelURL      string    `json:"label_url,omitempty"`
	TrackingCode  string    `json:"tracking_code,omitempty"`
	MelhorEnvioID string    `json:"melhor_envio_id,omitempty"`
	Message       string    `json:"message,omitempty"`
}

// ShippingEvent is the carrier webhook envelope. Orders are correlated by the
// tag set at cart time, which carries the order id.
type ShippingEvent struct {
	Event string            `json:"event,omitempty"`
	Data  ShippingEventData `json:"data"`
}

// ShippingEventData is the payload of a carrier status-change event.
type ShippingEventData struct {
	ID           string             `json:"id,omitempty"`
	Status       string             `json:"status,omitempty"`
	Tracking     string             `json:"tracking,omitempty"`
	SelfTracking string             `json:"self_tracking,omitempty"`
	Tags         []ShippingEventTag `json:"tags,omitempty"`
}

// ShippingEventTag wraps the free-text tag the label service sets.
type ShippingEventTag struct {
	Tag string `json:"tag,omitempty"`
	URL string `json:"url,omitempty"`
}

// OrderTag returns the order id smuggled through the first non-empty tag, or
// "" when the event cannot be correlated.
func (e ShippingEvent) OrderTag() string {
	for _, t := range e.Data.Tags {
		if t.Tag != "" {
			return t.Tag
		}
	}
	return ""
}

// TrackingCode returns the tracking code from the event, preferring the
// carrier-assigned code over self tracking.
func (e ShippingEvent) TrackingCode() string {
	if e.Data.Tracking != "" {
		return e.Data.Tracking
	}
	return e.Data.SelfTracking
}
