package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"invoicer/internal/archive"
	"invoicer/internal/billing"
	"invoicer/internal/domain"
	"invoicer/internal/logger"
	"invoicer/internal/port"
)

// ClientInput is the DTO for creating or replacing a client.
type ClientInput struct {
	Name                 string
	Address              string
	City                 string
	State                string
	PostalCode           string
	Country              string
	TargetEmail          string
	CCEmail              *string
	Rate                 string
	ReminderType         domain.ReminderType
	EmailTemplateID      *uuid.UUID
	GoogleDriveFolderURL *string
	Terms                string
}

// ClientService defines the client management contract.
type ClientService interface {
	Create(ctx context.Context, input *ClientInput) (*domain.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, id uuid.UUID, input *ClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientService struct {
	clientRepo   port.ClientRepository
	templateRepo port.TemplateRepository
	log          zerolog.Logger
}

// NewClientService creates a new ClientService implementation.
func NewClientService(clientRepo port.ClientRepository, templateRepo port.TemplateRepository) ClientService {
	return &clientService{
		clientRepo:   clientRepo,
		templateRepo: templateRepo,
		log:          logger.WithComponent("client"),
	}
}

// apply validates input and copies it onto c.
func (s *clientService) apply(ctx context.Context, c *domain.Client, input *ClientInput) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		verr.Add("name", "is required")
	}
	reminder := input.ReminderType
	if reminder == "" {
		reminder = domain.ReminderNone
	}
	if !domain.ValidReminderTypes[reminder] {
		verr.Add("reminder_type", "must be one of none, weekly_friday, monthly_end")
	}
	if billing.ParseDecimal(input.Rate).IsNegative() {
		verr.Add("rate", "must not be negative")
	}
	folderURL := trimmedOrNil(input.GoogleDriveFolderURL)
	if folderURL != nil {
		if _, err := archive.ExtractFolderID(*folderURL); err != nil {
			verr.Add("google_drive_folder_url", "must be a google drive folder url")
		}
	}
	if verr.HasErrors() {
		return verr
	}

	if input.EmailTemplateID != nil {
		if _, err := s.templateRepo.GetByID(ctx, *input.EmailTemplateID); err != nil {
			return err
		}
	}

	c.Name = strings.TrimSpace(input.Name)
	c.Address = input.Address
	c.City = input.City
	c.State = input.State
	c.PostalCode = input.PostalCode
	c.Country = input.Country
	c.TargetEmail = strings.TrimSpace(input.TargetEmail)
	c.CCEmail = trimmedOrNil(input.CCEmail)
	c.Rate = billing.Fixed(billing.ParseDecimal(input.Rate))
	c.ReminderType = reminder
	c.EmailTemplateID = input.EmailTemplateID
	c.GoogleDriveFolderURL = folderURL
	c.Terms = input.Terms
	return nil
}

func (s *clientService) Create(ctx context.Context, input *ClientInput) (*domain.Client, error) {
	c := &domain.Client{}
	if err := s.apply(ctx, c, input); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Str("client_id", c.ID.String()).Str("name", c.Name).Msg("client created")
	return c, nil
}

func (s *clientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, id)
}

func (s *clientService) List(ctx context.Context) ([]domain.Client, error) {
	return s.clientRepo.List(ctx)
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, input *ClientInput) (*domain.Client, error) {
	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, c, input); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("client_id", id.String()).Msg("client deleted")
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
