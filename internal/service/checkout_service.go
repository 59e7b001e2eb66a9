package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ShippingQuoter is the rate-calculation boundary of the carrier client.
type ShippingQuoter interface {
	Quote(ctx context.Context, req model.QuoteRequest) ([]model.ShippingQuote, error)
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	quoter           ShippingQuoter
	payments         payment.Gateway
	originPostalCode string
	logger           zerolog.Logger
}

// NewCheckoutService creates a new checkout service. originPostalCode is the
// store origin used for every shipping quote.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	quoter ShippingQuoter,
	payments payment.Gateway,
	originPostalCode string,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		quoter:           quoter,
		payments:         payments,
		originPostalCode: originPostalCode,
		logger:           logger.With().Str("service", "checkout").Logger(),
	}
}

// QuoteShipping validates the destination and returns carrier options.
func (s *checkoutService) QuoteShipping(ctx context.Context, req *model.QuoteRequest) ([]model.ShippingQuote, error) {
	if req == nil {
		return nil, model.NewValidationError("quote request is required")
	}
	if len(model.Digits(req.ToPostalCode)) != 8 {
		return nil, model.NewValidationError("a valid destination postal code is required")
	}

	if req.FromPostalCode == "" {
		req.FromPostalCode = s.originPostalCode
	}

	quotes, err := s.quoter.Quote(ctx, *req)
	if err != nil {
		s.logger.Warn().Err(err).Str("to", req.ToPostalCode).Msg("shipping quote failed")
		return nil, err
	}

	return quotes, nil
}

// PlaceOrder handles the final checkout submit. The sequence is strict:
// order row, then items, then payment intent, each gated on the previous
// step. An items-insert failure is reported distinctly and leaves the order
// row behind in pending/pending for manual reconciliation.
//
// On a payment failure the returned response still carries the order, so the
// caller can retry payment against it instead of duplicating the order.
func (s *checkoutService) PlaceOrder(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if err := s.validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	var (
		order *model.Order
		items []model.OrderItem
		err   error
	)

	if req.OrderID != nil {
		order, items, err = s.reuseOrder(ctx, *req.OrderID)
	} else {
		order, items, err = s.createOrder(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	resp := &model.CheckoutResponse{Order: order, Items: items}

	result, err := s.payments.CreatePayment(ctx, s.buildPaymentRequest(req, order, items))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("payment intent creation failed, order kept for retry")
		return resp, err
	}

	resp.Payment = result

	// Reflect the synchronous processor response on the order immediately
	// instead of waiting for the webhook: a fast approval must never render
	// as still-pending.
	if req.PaymentMethodID != "" && result.Status != "" {
		paymentStatus, status := model.MapProcessorStatus(result.Status)
		if err := s.orderRepo.UpdatePayment(ctx, order.ID, result.ID, paymentStatus, status); err != nil {
			s.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Msg("failed to record synchronous payment result")
		} else {
			order.MercadoPagoPaymentID = &result.ID
			order.PaymentStatus = paymentStatus
			order.Status = status
		}
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_status", string(order.PaymentStatus)).
		Int("item_count", len(items)).
		Msg("checkout completed")

	return resp, nil
}

// GetOrder retrieves an order with its items.
func (s *checkoutService) GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, nil
	}

	return &model.OrderResponse{Order: order, Items: items}, nil
}

// reuseOrder loads an existing unpaid order for a payment retry.
func (s *checkoutService) reuseOrder(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load order for retry: %w", err)
	}
	if order == nil {
		return nil, nil, model.ErrOrderNotFound
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return nil, nil, model.NewValidationError("order is already paid")
	}

	s.logger.Info().Str("order_id", id.String()).Msg("reusing existing unpaid order for payment retry")

	return order, items, nil
}

// createOrder resolves the products, snapshots the line items and writes the
// order row followed by its items.
func (s *checkoutService) createOrder(ctx context.Context, req *model.CheckoutRequest) (*model.Order, []model.OrderItem, error) {
	productIDs := make([]string, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve products")
		return nil, nil, fmt.Errorf("failed to resolve products: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range productIDs {
		if _, ok := byID[id]; !ok {
			return nil, nil, model.ErrProductNotFound
		}
	}

	now := time.Now()
	orderID := uuid.New()

	subtotal := 0.0
	items := make([]model.OrderItem, len(req.Items))
	for i, line := range req.Items {
		product := byID[line.ProductID]
		subtotal += product.Price * float64(line.Quantity)
		items[i] = model.OrderItem{
			ID:           uuid.New(),
			OrderID:      orderID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.FirstImage(),
			Price:        product.Price,
			Quantity:     line.Quantity,
			Size:         line.Size,
			Color:        line.Color,
		}
	}

	address := req.Address
	address.Name = strings.TrimSpace(req.Payer.FirstName + " " + req.Payer.LastName)
	address.Email = req.Payer.Email
	if address.Document == "" {
		address.Document = req.Payer.Document
	}
	address.Document = model.Digits(address.Document)
	address.DocumentType = documentType(address.Document)
	address.PostalCode = model.Digits(address.PostalCode)

	shippingCost := req.ShippingService.Price

	order := &model.Order{
		ID:              orderID,
		Subtotal:        subtotal,
		ShippingCost:    shippingCost,
		Total:           subtotal + shippingCost,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		ShippingAddress: address,
		ShippingService: req.ShippingService,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.orderRepo.CreateOrderItems(ctx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Int("item_count", len(items)).
			Msg("order items insert failed, order row kept for reconciliation")
		return nil, nil, &model.DomainError{
			Code:    model.ErrCodeOrderItemsNotSaved,
			Message: fmt.Sprintf("order %s was created but its items were not saved; no payment was attempted", orderID),
		}
	}

	return order, items, nil
}

// buildPaymentRequest maps the order onto a payment-creation request. Back
// URLs are left empty so the gateway applies its configured defaults.
func (s *checkoutService) buildPaymentRequest(req *model.CheckoutRequest, order *model.Order, items []model.OrderItem) *model.PaymentRequest {
	paymentItems := make([]model.PaymentItem, 0, len(items))
	for _, item := range items {
		pictureURL := ""
		if item.ProductImage != nil {
			pictureURL = *item.ProductImage
		}
		paymentItems = append(paymentItems, model.PaymentItem{
			ID:          item.ProductID,
			Title:       item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			PictureURL:  pictureURL,
			Description: itemDescription(item),
		})
	}

	document := model.Digits(req.Payer.Document)
	addr := order.ShippingAddress

	return &model.PaymentRequest{
		ExternalReference: order.ID.String(),
		Items:             paymentItems,
		Payer: model.PaymentPayer{
			Email:        req.Payer.Email,
			Name:         strings.TrimSpace(req.Payer.FirstName + " " + req.Payer.LastName),
			FirstName:    req.Payer.FirstName,
			LastName:     req.Payer.LastName,
			Document:     document,
			DocumentType: documentType(document),
			Address: &model.PayerAddress{
				ZipCode:      addr.PostalCode,
				StreetName:   addr.Street,
				StreetNumber: addr.Number,
				Neighborhood: addr.Neighborhood,
				City:         addr.City,
				FederalUnit:  addr.State,
			},
		},
		ShippingCost:    order.ShippingCost,
		PaymentMethodID: req.PaymentMethodID,
		Token:           req.Token,
		Installments:    req.Installments,
	}
}

// itemDescription renders the size/colour variant line shown on the
// processor's payment detail.
func itemDescription(item model.OrderItem) string {
	parts := make([]string, 0, 2)
	if item.Size != nil && *item.Size != "" {
		parts = append(parts, "Tam: "+*item.Size)
	}
	if item.Color != nil && *item.Color != "" {
		parts = append(parts, "Cor: "+*item.Color)
	}
	return strings.Join(parts, " | ")
}

func documentType(document string) string {
	if len(model.Digits(document)) > 11 {
		return "CNPJ"
	}
	return "CPF"
}

// validateCheckoutRequest gates the final submit: payer identity, payment
// method prerequisites and, when creating a fresh order, a complete address
// and cart.
func (s *checkoutService) validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewValidationError("checkout request is required")
	}

	if req.Payer.FirstName == "" || req.Payer.LastName == "" || req.Payer.Email == "" {
		return model.NewValidationError("payer first name, last name and email are required")
	}
	if len(model.Digits(req.Payer.Document)) < 11 {
		return model.NewValidationError("a valid payer tax document is required")
	}
	if req.PaymentMethodID != "" &&
		req.PaymentMethodID != model.PaymentMethodPix &&
		req.PaymentMethodID != model.PaymentMethodBoleto &&
		req.Token == "" {
		return model.NewValidationError("card payments require a tokenized card")
	}

	if req.OrderID != nil {
		return nil
	}

	if len(req.Items) == 0 {
		return model.NewValidationError("order must contain at least one item")
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			return model.NewValidationError(fmt.Sprintf("item %d: product ID is required", i))
		}
		if item.Quantity <= 0 {
			return model.NewValidationError(fmt.Sprintf("item %d: quantity must be greater than zero", i))
		}
	}

	addr := req.Address
	if addr.Street == "" || addr.Number == "" || addr.Neighborhood == "" || addr.City == "" || addr.State == "" {
		return model.NewValidationError("a complete shipping address is required")
	}
	if len(model.Digits(addr.PostalCode)) != 8 {
		return model.NewValidationError("a valid shipping postal code is required")
	}
	if req.ShippingService.ID == 0 && !req.ShippingService.Pickup {
		return model.NewValidationError("a shipping option must be selected")
	}

	return nil
}
