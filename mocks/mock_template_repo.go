package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoicer/internal/domain"
)

// MockTemplateRepo is a mock implementation of port.TemplateRepository.
type MockTemplateRepo struct {
	mock.Mock
}

func (m *MockTemplateRepo) Create(ctx context.Context, tpl *domain.EmailTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepo) First(ctx context.Context) (*domain.EmailTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepo) List(ctx context.Context) ([]domain.EmailTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepo) Update(ctx context.Context, tpl *domain.EmailTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
