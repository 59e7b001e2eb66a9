package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
//
// CreateOrder and CreateOrderItems are deliberately separate writes: an
// items-insert failure must leave the already-created order row behind for
// manual reconciliation instead of rolling the whole attempt back.
type OrderRepository interface {
	// CreateOrder inserts a new order row.
	CreateOrder(ctx context.Context, order *model.Order) error

	// CreateOrderItems inserts the order's line items in bulk.
	CreateOrderItems(ctx context.Context, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items. Returns
	// (nil, nil, nil) when no such order exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// UpdatePayment records the processor payment reference and moves both
	// status axes. Idempotent: writing the same state twice is a no-op
	// beyond the updated_at bump.
	UpdatePayment(ctx context.Context, id uuid.UUID, paymentID string, paymentStatus model.PaymentStatus, status model.OrderStatus) error

	// UpdateShippingEvent applies a partial carrier update: only non-nil
	// fields are written, so a status-only event never clears an existing
	// tracking code.
	UpdateShippingEvent(ctx context.Context, id uuid.UUID, trackingCode, shippingStatus *string) error

	// SetMelhorEnvioID persists the carrier-side cart-item id as soon as it
	// is known, keeping a crashed or drafted label saga reconcilable.
	SetMelhorEnvioID(ctx context.Context, id uuid.UUID, melhorEnvioID string) error

	// MarkShipped stores the tracking code and advances the order to shipped.
	MarkShipped(ctx context.Context, id uuid.UUID, trackingCode string) error
}
