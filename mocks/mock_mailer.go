package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicer/internal/port"
)

// MockMailer is a mock implementation of port.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg port.MailMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}
