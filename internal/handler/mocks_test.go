package handler

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockCheckoutService is a mock implementation of service.CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) QuoteShipping(ctx context.Context, req *model.QuoteRequest) ([]model.ShippingQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShippingQuote), args.Error(1)
}

func (m *MockCheckoutService) PlaceOrder(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockCheckoutService) GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

// MockFulfillmentService is a mock implementation of service.FulfillmentService.
type MockFulfillmentService struct {
	mock.Mock
}

func (m *MockFulfillmentService) GenerateLabel(ctx context.Context, orderID uuid.UUID, serviceID int64) (*model.LabelResult, error) {
	args := m.Called(ctx, orderID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LabelResult), args.Error(1)
}

// MockWebhookService is a mock implementation of service.WebhookService.
type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) HandlePaymentNotification(ctx context.Context, n *model.PaymentNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockWebhookService) HandleShippingEvent(ctx context.Context, ev *model.ShippingEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
