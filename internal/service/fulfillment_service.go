package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LabelGenerator is the label-saga boundary of the carrier client.
type LabelGenerator interface {
	GenerateLabel(ctx context.Context, order *model.Order, items []model.OrderItem, serviceID int64) (*model.LabelResult, error)
}

// fulfillmentService implements FulfillmentService.
type fulfillmentService struct {
	orderRepo repository.OrderRepository
	labels    LabelGenerator
	logger    zerolog.Logger
}

// NewFulfillmentService creates a new fulfillment service.
func NewFulfillmentService(orderRepo repository.OrderRepository, labels LabelGenerator, logger zerolog.Logger) FulfillmentService {
	return &fulfillmentService{
		orderRepo: orderRepo,
		labels:    labels,
		logger:    logger.With().Str("service", "fulfillment").Logger(),
	}
}

// GenerateLabel runs the label saga for a paid order and persists the
// outcome. The carrier-side cart-item id is stored as soon as it exists,
// on draft and failed runs too, so a half-finished saga can always be
// reconciled against the carrier.
func (s *fulfillmentService) GenerateLabel(ctx context.Context, orderID uuid.UUID, serviceID int64) (*model.LabelResult, error) {
	order, items, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to load order for label generation")
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.PaymentStatus != model.PaymentStatusPaid {
		return nil, model.NewValidationError("label generation requires an approved payment")
	}
	if order.TrackingCode != nil && *order.TrackingCode != "" {
		return nil, model.NewValidationError("a label was already generated for this order")
	}

	result, labelErr := s.labels.GenerateLabel(ctx, order, items, serviceID)

	if result != nil && result.MelhorEnvioID != "" {
		if err := s.orderRepo.SetMelhorEnvioID(ctx, orderID, result.MelhorEnvioID); err != nil {
			s.logger.Error().
				Err(err).
				Str("order_id", orderID.String()).
				Str("melhor_envio_id", result.MelhorEnvioID).
				Msg("failed to persist carrier cart-item id")
		}
	}

	if labelErr != nil {
		return result, labelErr
	}

	if result.Draft {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("melhor_envio_id", result.MelhorEnvioID).
			Msg("label drafted, awaiting manual payment in carrier console")
		return result, nil
	}

	if result.TrackingCode == "" {
		// The carrier issues some tracking codes only after posting; the
		// shipping webhook supplies the code when it arrives.
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("melhor_envio_id", result.MelhorEnvioID).
			Msg("label generated but carrier returned no tracking code yet")
		return result, nil
	}

	if err := s.orderRepo.MarkShipped(ctx, orderID, result.TrackingCode); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("label generated but order could not be marked shipped")
		return result, err
	}

	return result, nil
}
