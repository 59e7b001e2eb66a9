package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, items []model.OrderItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	var order *model.Order
	if args.Get(0) != nil {
		order = args.Get(0).(*model.Order)
	}
	var items []model.OrderItem
	if args.Get(1) != nil {
		items = args.Get(1).([]model.OrderItem)
	}
	return order, items, args.Error(2)
}

func (m *MockOrderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, paymentID string, paymentStatus model.PaymentStatus, status model.OrderStatus) error {
	args := m.Called(ctx, id, paymentID, paymentStatus, status)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateShippingEvent(ctx context.Context, id uuid.UUID, trackingCode, shippingStatus *string) error {
	args := m.Called(ctx, id, trackingCode, shippingStatus)
	return args.Error(0)
}

func (m *MockOrderRepository) SetMelhorEnvioID(ctx context.Context, id uuid.UUID, melhorEnvioID string) error {
	args := m.Called(ctx, id, melhorEnvioID)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkShipped(ctx context.Context, id uuid.UUID, trackingCode string) error {
	args := m.Called(ctx, id, trackingCode)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockShippingQuoter is a mock implementation of ShippingQuoter.
type MockShippingQuoter struct {
	mock.Mock
}

func (m *MockShippingQuoter) Quote(ctx context.Context, req model.QuoteRequest) ([]model.ShippingQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShippingQuote), args.Error(1)
}

// MockPaymentGateway is a mock implementation of payment.Gateway.
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, req *model.PaymentRequest) (*model.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentResult), args.Error(1)
}

func (m *MockPaymentGateway) GetPayment(ctx context.Context, id string) (*model.PaymentLookup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentLookup), args.Error(1)
}

// MockLabelGenerator is a mock implementation of LabelGenerator.
type MockLabelGenerator struct {
	mock.Mock
}

func (m *MockLabelGenerator) GenerateLabel(ctx context.Context, order *model.Order, items []model.OrderItem, serviceID int64) (*model.LabelResult, error) {
	args := m.Called(ctx, order, items, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LabelResult), args.Error(1)
}

// MockDedupStore is a mock implementation of dedup.Store.
type MockDedupStore struct {
	mock.Mock
}

func (m *MockDedupStore) FirstDelivery(ctx context.Context, key string) bool {
	args := m.Called(ctx, key)
	return args.Bool(0)
}

func (m *MockDedupStore) Forget(ctx context.Context, key string) {
	m.Called(ctx, key)
}

func (m *MockDedupStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
