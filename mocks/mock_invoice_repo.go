package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoicer/internal/domain"
)

// MockInvoiceRepo is a mock implementation of port.InvoiceRepository.
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceItem) error {
	args := m.Called(ctx, inv, items)
	return args.Error(0)
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) GetDetail(ctx context.Context, id uuid.UUID) (*domain.InvoiceDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceDetail), args.Error(1)
}

func (m *MockInvoiceRepo) List(ctx context.Context, filter domain.InvoiceFilter, today time.Time) ([]domain.InvoiceSummary, int, error) {
	args := m.Called(ctx, filter, today)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.InvoiceSummary), args.Int(1), args.Error(2)
}

func (m *MockInvoiceRepo) Update(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceItem) error {
	args := m.Called(ctx, inv, items)
	return args.Error(0)
}

func (m *MockInvoiceRepo) UpdateFilePath(ctx context.Context, id uuid.UUID, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func (m *MockInvoiceRepo) UpdateNotesTerms(ctx context.Context, id uuid.UUID, notes, terms string) error {
	args := m.Called(ctx, id, notes, terms)
	return args.Error(0)
}

func (m *MockInvoiceRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time, metadata *domain.InvoiceMetadata) error {
	args := m.Called(ctx, id, sentAt, metadata)
	return args.Error(0)
}

func (m *MockInvoiceRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	args := m.Called(ctx, id, paidAt)
	return args.Error(0)
}

func (m *MockInvoiceRepo) MarkTransferred(ctx context.Context, id uuid.UUID, transferredAt time.Time) error {
	args := m.Called(ctx, id, transferredAt)
	return args.Error(0)
}

func (m *MockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepo) ListUnpaid(ctx context.Context) ([]domain.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) ListNumbersByClient(ctx context.Context, clientID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
