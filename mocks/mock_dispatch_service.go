package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoicer/internal/service"
)

// MockDispatchService is a mock implementation of service.DispatchService.
type MockDispatchService struct {
	mock.Mock
}

func (m *MockDispatchService) Send(ctx context.Context, input *service.SendInput) (*service.SendResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SendResult), args.Error(1)
}

func (m *MockDispatchService) Preview(ctx context.Context, invoiceID uuid.UUID) (*service.PreviewResult, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PreviewResult), args.Error(1)
}

func (m *MockDispatchService) GeneratePDF(ctx context.Context, invoiceID uuid.UUID) (*service.PDFResult, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PDFResult), args.Error(1)
}

func (m *MockDispatchService) DownloadPDF(ctx context.Context, invoiceID uuid.UUID) (*service.PDFFile, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PDFFile), args.Error(1)
}

func (m *MockDispatchService) PDFURL(ctx context.Context, invoiceID uuid.UUID) (*service.SignedURL, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SignedURL), args.Error(1)
}

func (m *MockDispatchService) SaveToDrive(ctx context.Context, invoiceID uuid.UUID) (*service.DriveResult, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DriveResult), args.Error(1)
}
