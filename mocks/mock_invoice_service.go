package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoicer/internal/domain"
	"invoicer/internal/service"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, input *service.CreateInvoiceInput) (*service.InvoiceView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceView), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, id uuid.UUID) (*service.InvoiceView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceView), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, filter domain.InvoiceFilter) ([]service.InvoiceListItem, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]service.InvoiceListItem), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) Update(ctx context.Context, input *service.UpdateInvoiceInput) (*service.InvoiceView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceView), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceService) MarkPaid(ctx context.Context, id uuid.UUID, date string) (*domain.Invoice, error) {
	args := m.Called(ctx, id, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) MarkTransferred(ctx context.Context, id uuid.UUID, date string) (*domain.Invoice, error) {
	args := m.Called(ctx, id, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) NextNumber(ctx context.Context, clientID uuid.UUID) (string, error) {
	args := m.Called(ctx, clientID)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceService) Export(ctx context.Context, filter domain.InvoiceFilter, format domain.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, filter, format, w)
	return args.Error(0)
}
