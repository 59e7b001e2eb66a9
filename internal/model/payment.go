package model

// Payment method identifiers as Mercado Pago knows them. Card payments carry
// the tokenizer-issued method id (visa, master, ...), so anything that is not
// pix or boleto on the direct flow is treated as a card charge.
const (
	PaymentMethodPix    = "pix"
	PaymentMethodBoleto = "bolbradesco"
)

// PaymentFlow selects between the hosted-redirect preference flow and the
// direct charge flow.
type PaymentFlow string

const (
	FlowPreference PaymentFlow = "preference"
	FlowDirect     PaymentFlow = "direct"
)

// PaymentItem is one line of the charge. Shipping is folded into this list as
// a synthetic line; the processor has no separate shipping field on payments.
type PaymentItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	PictureURL  string  `json:"picture_url,omitempty"`
	Description string  `json:"description,omitempty"`
}

// PayerAddress is the billing address required by boleto charges.
type PayerAddress struct {
	ZipCode      string `json:"zip_code"`
	StreetName   string `json:"street_name"`
	StreetNumber string `json:"street_number"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	FederalUnit  string `json:"federal_unit"`
}

// PaymentPayer identifies who pays.
type PaymentPayer struct {
	Email        string        `json:"email"`
	Name         string        `json:"name,omitempty"`
	FirstName    string        `json:"first_name,omitempty"`
	LastName     string        `json:"last_name,omitempty"`
	Document     string        `json:"document,omitempty"`
	DocumentType string        `json:"document_type,omitempty"`
	Address      *PayerAddress `json:"address,omitempty"`
}

// BackURLs are the return targets for the preference flow plus the webhook
// notification URL for both flows.
type BackURLs struct {
	Success      string `json:"success,omitempty"`
	Failure      string `json:"failure,omitempty"`
	Pending      string `json:"pending,omitempty"`
	Notification string `json:"notification,omitempty"`
}

// PaymentRequest is the tagged payment-creation request. An empty
// PaymentMethodID selects the preference flow; otherwise the direct charge
// flow runs with that method.
type PaymentRequest struct {
	ExternalReference string        `json:"external_reference"`
	Items             []PaymentItem `json:"items"`
	Payer             PaymentPayer  `json:"payer"`
	ShippingCost      float64       `json:"shipping_cost,omitempty"`
	BackURLs          BackURLs      `json:"back_urls"`
	PaymentMethodID   string        `json:"payment_method_id,omitempty"`
	Token             string        `json:"token,omitempty"`
	Installments      int           `json:"installments,omitempty"`
}

// Flow returns which of the two handlers the request dispatches to.
func (r PaymentRequest) Flow() PaymentFlow {
	if r.PaymentMethodID == "" {
		return FlowPreference
	}
	return FlowDirect
}

// PaymentResult is the synchronous outcome of payment creation. The
// preference flow fills the init points; the direct flow fills status and,
// when present, the pix QR payload or boleto ticket URL.
type PaymentResult struct {
	ID               string `json:"id"`
	Status           string `json:"status,omitempty"`
	StatusDetail     string `json:"status_detail,omitempty"`
	QRCode           string `json:"qr_code,omitempty"`
	QRCodeBase64     string `json:"qr_code_base64,omitempty"`
	TicketURL        string `json:"ticket_url,omitempty"`
	InitPoint        string `json:"init_point,omitempty"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
}

// PaymentLookup is the subset of a processor payment the webhook receiver
// needs to reconcile an order.
type PaymentLookup struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	StatusDetail      string `json:"status_detail,omitempty"`
	ExternalReference string `json:"external_reference"`
}

// PaymentNotification is the processor webhook envelope. Mercado Pago sends
// several shapes; only the payment id matters, the rest is fetched back from
// the API.
type PaymentNotification struct {
	ID     string                  `json:"id,omitempty"`
	Type   string                  `json:"type,omitempty"`
	Action string                  `json:"action,omitempty"`
	Data   PaymentNotificationData `json:"data"`
}

// PaymentNotificationData carries the payment id in the v2 envelope.
type PaymentNotificationData struct {
	ID string `json:"id,omitempty"`
}

// PaymentID returns the referenced payment id from whichever envelope field
// carries it, or "" for probe/unknown shapes.
func (n PaymentNotification) PaymentID() string {
	if n.Data.ID != "" {
		return n.Data.ID
	}
	if n.Type == "payment" || n.Action != "" {
		return n.ID
	}
	return ""
}
