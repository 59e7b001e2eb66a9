package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue reads.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CheckoutService sequences the checkout flow: shipping quotation, order
// creation and payment-intent creation.
type CheckoutService interface {
	// QuoteShipping validates the destination and returns carrier options
	// for the cart.
	QuoteShipping(ctx context.Context, req *model.QuoteRequest) ([]model.ShippingQuote, error)

	// PlaceOrder handles the final checkout submit: creates the order row,
	// then its items, then the payment intent, each gated on the previous
	// step. A request carrying an existing unpaid order id retries payment
	// without creating a duplicate order.
	PlaceOrder(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// GetOrder retrieves an order with its items. Returns nil when not found.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// FulfillmentService purchases shipping labels for paid orders.
type FulfillmentService interface {
	// GenerateLabel runs the carrier label saga for a paid order and
	// persists the resulting tracking code. The draft outcome (label created
	// carrier-side but not paid) returns with Draft=true and no error.
	GenerateLabel(ctx context.Context, orderID uuid.UUID, serviceID int64) (*model.LabelResult, error)
}

// WebhookService reconciles asynchronous provider notifications onto orders.
// Both handlers are idempotent and must swallow unrecognisable events; the
// HTTP layer always answers the provider with success.
type WebhookService interface {
	// HandlePaymentNotification resolves the referenced payment at the
	// processor and applies the resulting status to the order.
	HandlePaymentNotification(ctx context.Context, n *model.PaymentNotification) error

	// HandleShippingEvent applies a carrier tracking/status event, correlated
	// through the order-id tag.
	HandleShippingEvent(ctx context.Context, ev *model.ShippingEvent) error
}
