package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/dedup"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// webhookService implements WebhookService.
type webhookService struct {
	orderRepo repository.OrderRepository
	payments  payment.Gateway
	seen      dedup.Store
	logger    zerolog.Logger
}

// NewWebhookService creates a new webhook reconciliation service.
func NewWebhookService(orderRepo repository.OrderRepository, payments payment.Gateway, seen dedup.Store, logger zerolog.Logger) WebhookService {
	return &webhookService{
		orderRepo: orderRepo,
		payments:  payments,
		seen:      seen,
		logger:    logger.With().Str("service", "webhook").Logger(),
	}
}

// HandlePaymentNotification resolves the referenced payment at the processor
// and applies its status to the order. Unrecognisable envelopes and probe
// events are silently ignored; duplicate deliveries short-circuit on the
// dedup store and are harmless anyway because the write is idempotent.
func (s *webhookService) HandlePaymentNotification(ctx context.Context, n *model.PaymentNotification) error {
	if n == nil {
		return nil
	}

	paymentID := n.PaymentID()
	if paymentID == "" {
		s.logger.Debug().Str("type", n.Type).Msg("payment notification without payment id, ignoring")
		return nil
	}

	lookup, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to resolve payment %s: %w", paymentID, err)
	}

	orderID, err := uuid.Parse(lookup.ExternalReference)
	if err != nil {
		s.logger.Warn().
			Str("payment_id", paymentID).
			Str("external_reference", lookup.ExternalReference).
			Msg("payment notification references no known order, ignoring")
		return nil
	}

	paymentStatus, status := model.MapProcessorStatus(lookup.Status)
	if paymentStatus == model.PaymentStatusPending {
		// Non-terminal status: leave the order pending rather than risk
		// regressing a state a faster delivery already set.
		s.logger.Debug().
			Str("payment_id", paymentID).
			Str("processor_status", lookup.Status).
			Msg("non-terminal payment status, nothing to apply")
		return nil
	}

	eventKey := fmt.Sprintf("mp:%s:%s", paymentID, lookup.Status)
	if !s.seen.FirstDelivery(ctx, eventKey) {
		s.logger.Debug().Str("payment_id", paymentID).Msg("duplicate payment notification, skipping")
		return nil
	}

	if err := s.orderRepo.UpdatePayment(ctx, orderID, paymentID, paymentStatus, status); err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			s.logger.Warn().Str("order_id", orderID.String()).Msg("payment notification for unknown order, ignoring")
			return nil
		}
		// The status was not applied; release the key so the provider's
		// retry (or a manually re-sent notification) is not short-circuited.
		s.seen.Forget(ctx, eventKey)
		return fmt.Errorf("failed to apply payment notification to order %s: %w", orderID, err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("payment_id", paymentID).
		Str("processor_status", lookup.Status).
		Str("payment_status", string(paymentStatus)).
		Msg("payment notification applied")

	return nil
}

// HandleShippingEvent applies a carrier tracking/status event. Events are
// correlated through the order-id tag set when the label was carted; a
// missing or malformed tag makes the event a no-op. Only the fields present
// on the event are written.
func (s *webhookService) HandleShippingEvent(ctx context.Context, ev *model.ShippingEvent) error {
	if ev == nil {
		return nil
	}

	tag := ev.OrderTag()
	if tag == "" {
		s.logger.Debug().Str("event", ev.Event).Msg("shipping event without order tag, ignoring")
		return nil
	}

	orderID, err := uuid.Parse(tag)
	if err != nil {
		s.logger.Warn().Str("tag", tag).Msg("shipping event tag is not an order id, ignoring")
		return nil
	}

	var trackingCode, shippingStatus *string
	if code := ev.TrackingCode(); code != "" {
		trackingCode = &code
	}
	if ev.Data.Status != "" {
		status := ev.Data.Status
		shippingStatus = &status
	}

	if trackingCode == nil && shippingStatus == nil {
		return nil
	}

	if err := s.orderRepo.UpdateShippingEvent(ctx, orderID, trackingCode, shippingStatus); err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			s.logger.Warn().Str("order_id", orderID.String()).Msg("shipping event for unknown order, ignoring")
			return nil
		}
		return fmt.Errorf("failed to apply shipping event to order %s: %w", orderID, err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("event", ev.Event).
		Msg("shipping event applied")

	return nil
}
