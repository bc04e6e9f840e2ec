package mocks

import (
	"github.com/stretchr/testify/mock"

	"invoicer/internal/pdf"
)

// MockPDFRenderer is a mock implementation of service.PDFRenderer.
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(doc pdf.Document) (*pdf.Result, error) {
	args := m.Called(doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdf.Result), args.Error(1)
}
