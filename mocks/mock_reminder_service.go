package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicer/internal/service"
)

// MockReminderService is a mock implementation of service.ReminderService.
type MockReminderService struct {
	mock.Mock
}

func (m *MockReminderService) Run(ctx context.Context) (*service.ReminderResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReminderResult), args.Error(1)
}

// MockSummaryService is a mock implementation of service.SummaryService.
type MockSummaryService struct {
	mock.Mock
}

func (m *MockSummaryService) Summarize(ctx context.Context, rawDescription string) (*service.SummaryResult, error) {
	args := m.Called(ctx, rawDescription)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SummaryResult), args.Error(1)
}
