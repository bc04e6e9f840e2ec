package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"invoicer/internal/domain"
	"invoicer/internal/port"
)

// TemplateInput is the DTO for creating or replacing an email template.
type TemplateInput struct {
	Name    string
	Subject string
	Body    string
}

// TemplateService defines the email template management contract.
type TemplateService interface {
	Create(ctx context.Context, input *TemplateInput) (*domain.EmailTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailTemplate, error)
	List(ctx context.Context) ([]domain.EmailTemplate, error)
	Update(ctx context.Context, id uuid.UUID, input *TemplateInput) (*domain.EmailTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type templateService struct {
	templateRepo port.TemplateRepository
}

// NewTemplateService creates a new TemplateService implementation.
func NewTemplateService(templateRepo port.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

func validateTemplate(input *TemplateInput) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		verr.Add("name", "is required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		verr.Add("subject", "is required")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (s *templateService) Create(ctx context.Context, input *TemplateInput) (*domain.EmailTemplate, error) {
	if err := validateTemplate(input); err != nil {
		return nil, err
	}
	tpl := &domain.EmailTemplate{
		Name:    strings.TrimSpace(input.Name),
		Subject: input.Subject,
		Body:    input.Body,
	}
	if err := s.templateRepo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *templateService) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailTemplate, error) {
	return s.templateRepo.GetByID(ctx, id)
}

func (s *templateService) List(ctx context.Context) ([]domain.EmailTemplate, error) {
	return s.templateRepo.List(ctx)
}

func (s *templateService) Update(ctx context.Context, id uuid.UUID, input *TemplateInput) (*domain.EmailTemplate, error) {
	if err := validateTemplate(input); err != nil {
		return nil, err
	}
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl.Name = strings.TrimSpace(input.Name)
	tpl.Subject = input.Subject
	tpl.Body = input.Body
	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.templateRepo.Delete(ctx, id)
}
