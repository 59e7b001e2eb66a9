package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// CreateOrder inserts a new order row.
func (r *orderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, subtotal, shipping_cost, total, status, payment_status,
			shipping_address, shipping_service, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.Subtotal,
		order.ShippingCost,
		order.Total,
		order.Status,
		order.PaymentStatus,
		order.ShippingAddress,
		order.ShippingService,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts the order's line items in bulk.
func (r *orderRepository) CreateOrderItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_image, price, quantity, size, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.ProductImage,
			item.Price,
			item.Quantity,
			item.Size,
			item.Color,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	orderQuery := `
		SELECT id, subtotal, shipping_cost, total, status, payment_status,
		       shipping_address, shipping_service, tracking_code, shipping_status,
		       mercado_pago_payment_id, melhor_envio_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Total,
		&order.Status,
		&order.PaymentStatus,
		&order.ShippingAddress,
		&order.ShippingService,
		&order.TrackingCode,
		&order.ShippingStatus,
		&order.MercadoPagoPaymentID,
		&order.MelhorEnvioID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, product_image, price, quantity, size, color
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductImage,
			&item.Price,
			&item.Quantity,
			&item.Size,
			&item.Color,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return &order, items, nil
}

// UpdatePayment records the processor payment reference and moves both
// status axes. A paid order never downgrades, and fulfilment states past
// confirmation are preserved, so the synchronous response and webhook
// deliveries converge to the same final state regardless of arrival order.
func (r *orderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, paymentID string, paymentStatus model.PaymentStatus, status model.OrderStatus) error {
	query := `
		UPDATE orders
		SET mercado_pago_payment_id = $2,
		    payment_status = CASE
		        WHEN payment_status = 'paid' THEN payment_status
		        ELSE $3::text
		    END,
		    status = CASE
		        WHEN payment_status = 'paid' THEN status
		        WHEN status IN ('shipped', 'delivered', 'cancelled') THEN status
		        ELSE $4::text
		    END,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, paymentID, paymentStatus, status)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order payment")
		return fmt.Errorf("failed to update order payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.Info().
		Str("order_id", id.String()).
		Str("payment_id", paymentID).
		Str("payment_status", string(paymentStatus)).
		Str("status", string(status)).
		Msg("order payment updated")

	return nil
}

// UpdateShippingEvent applies a partial carrier update. Fields left nil are
// preserved via COALESCE so concurrent deliveries stay last-write-wins per
// field.
func (r *orderRepository) UpdateShippingEvent(ctx context.Context, id uuid.UUID, trackingCode, shippingStatus *string) error {
	if trackingCode == nil && shippingStatus == nil {
		return nil
	}

	query := `
		UPDATE orders
		SET tracking_code = COALESCE($2, tracking_code),
		    shipping_status = COALESCE($3, shipping_status),
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, trackingCode, shippingStatus)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order shipping")
		return fmt.Errorf("failed to update order shipping: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// SetMelhorEnvioID persists the carrier-side cart-item id.
func (r *orderRepository) SetMelhorEnvioID(ctx context.Context, id uuid.UUID, melhorEnvioID string) error {
	query := `
		UPDATE orders
		SET melhor_envio_id = $2,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, melhorEnvioID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to set melhor envio id")
		return fmt.Errorf("failed to set melhor envio id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// MarkShipped stores the tracking code and advances the order to shipped.
func (r *orderRepository) MarkShipped(ctx context.Context, id uuid.UUID, trackingCode string) error {
	query := `
		UPDATE orders
		SET tracking_code = $2,
		    status = $3,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, trackingCode, model.OrderStatusShipped)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order shipped")
		return fmt.Errorf("failed to mark order shipped: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.Info().
		Str("order_id", id.String()).
		Str("tracking_code", trackingCode).
		Msg("order marked shipped")

	return nil
}
