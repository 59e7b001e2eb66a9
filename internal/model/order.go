package model

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment axis of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
)

// PaymentStatus is the payment axis, independent of fulfilment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// MapProcessorStatus maps a Mercado Pago payment status onto the two order
// axes. Anything that is neither approved nor terminally declined leaves the
// order pending; callers skip the write in that case so out-of-order webhook
// deliveries cannot regress a confirmed order.
func MapProcessorStatus(status string) (PaymentStatus, OrderStatus) {
	switch status {
	case "approved":
		return PaymentStatusPaid, OrderStatusConfirmed
	case "rejected", "cancelled":
		return PaymentStatusFailed, OrderStatusFailed
	default:
		return PaymentStatusPending, OrderStatusPending
	}
}

// ShippingAddress is the immutable address snapshot taken at checkout. The
// cpf/cnpj keys exist only to read older snapshots that predate the document
// field.
type ShippingAddress struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Document     string `json:"document,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	CPF          string `json:"cpf,omitempty"`
	CNPJ         string `json:"cnpj,omitempty"`
}

// RecipientDocument resolves the recipient tax document, falling back over
// the legacy snapshot keys, normalised to digits only.
func (a ShippingAddress) RecipientDocument() string {
	for _, candidate := range []string{a.Document, a.CPF, a.CNPJ} {
		if doc := Digits(candidate); doc != "" {
			return doc
		}
	}
	return ""
}

// ShippingService is the immutable snapshot of the shipping quote chosen at
// checkout.
type ShippingService struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Company       string        `json:"company"`
	Price         float64       `json:"price"`
	DeliveryTime  int           `json:"delivery_time"`
	DeliveryRange DeliveryRange `json:"delivery_range"`
	Currency      string        `json:"currency,omitempty"`
	Pickup        bool          `json:"pickup,omitempty"`
	Address       string        `json:"address,omitempty"`
}

// Order represents one checkout attempt. The monetary fields and both
// snapshots are fixed at creation; only the status axes, the tracking fields
// and the external provider references change afterwards.
type Order struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	Subtotal             float64         `json:"subtotal" db:"subtotal"`
	ShippingCost         float64         `json:"shipping_cost" db:"shipping_cost"`
	Total                float64         `json:"total" db:"total"`
	Status               OrderStatus     `json:"status" db:"status"`
	PaymentStatus        PaymentStatus   `json:"payment_status" db:"payment_status"`
	ShippingAddress      ShippingAddress `json:"shipping_address" db:"shipping_address"`
	ShippingService      ShippingService `json:"shipping_service" db:"shipping_service"`
	TrackingCode         *string         `json:"tracking_code,omitempty" db:"tracking_code"`
	ShippingStatus       *string         `json:"shipping_status,omitempty" db:"shipping_status"`
	MercadoPagoPaymentID *string         `json:"mercado_pago_payment_id,omitempty" db:"mercado_pago_payment_id"`
	MelhorEnvioID        *string         `json:"melhor_envio_id,omitempty" db:"melhor_envio_id"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is one line item, created in bulk right after the order row and
// immutable thereafter. Name, image and price are snapshots taken at purchase
// time and must not follow later catalogue edits.
type OrderItem struct {
	ID           uuid.UUID `json:"-" db:"id"`
	OrderID      uuid.UUID `json:"-" db:"order_id"`
	ProductID    string    `json:"product_id" db:"product_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	ProductImage *string   `json:"product_image,omitempty" db:"product_image"`
	Price        float64   `json:"price" db:"price"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Size         *string   `json:"size,omitempty" db:"size"`
	Color        *string   `json:"color,omitempty" db:"color"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order *Order      `json:"order"`
	Items []OrderItem `json:"items"`
}

// CheckoutItem is a single cart line in a checkout request. Price and name
// are resolved server-side from the catalogue, never trusted from the client.
type CheckoutItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Size      *string `json:"size,omitempty"`
	Color     *string `json:"color,omitempty"`
}

// CheckoutPayer carries the payer details captured at the payment step.
type CheckoutPayer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Document  string `json:"document"`
}

// CheckoutRequest is the final submit of the checkout flow. When OrderID is
// set the request retries payment against that existing unpaid order instead
// of creating a duplicate.
type CheckoutRequest struct {
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	Items           []CheckoutItem  `json:"items"`
	Address         ShippingAddress `json:"address"`
	ShippingService ShippingService `json:"shipping_service"`
	Payer           CheckoutPayer   `json:"payer"`
	PaymentMethodID string          `json:"payment_method_id,omitempty"`
	Token           string          `json:"token,omitempty"`
	Installments    int             `json:"installments,omitempty"`
}

// CheckoutResponse carries the created (or reused) order and the synchronous
// payment result. Payment is nil when the payment intent could not be
// created; the order itself survives for a later retry.
type CheckoutResponse struct {
	Order   *Order         `json:"order"`
	Items   []OrderItem    `json:"items"`
	Payment *PaymentResult `json:"payment,omitempty"`
}

// Digits strips every non-digit rune, the normal form for postal codes and
// tax documents on both provider APIs.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
