package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"invoicer/internal/domain"
)

// ClientRepository defines the contract for client persistence.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	ListByReminderTypes(ctx context.Context, types []domain.ReminderType) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsRepository persists the singleton business settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.BusinessSettings, error)
	Upsert(ctx context.Context, settings *domain.BusinessSettings) error
}

// TemplateRepository defines the contract for email template persistence.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.EmailTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailTemplate, error)
	// First returns the first template by name, or ErrTemplateNotFound.
	First(ctx context.Context) (*domain.EmailTemplate, error)
	List(ctx context.Context) ([]domain.EmailTemplate, error)
	Update(ctx context.Context, tpl *domain.EmailTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceRepository defines the contract for invoice and item persistence.
type InvoiceRepository interface {
	// Create inserts the invoice and its items in one transaction.
	Create(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	// GetDetail loads the invoice with its client and ordered items.
	GetDetail(ctx context.Context, id uuid.UUID) (*domain.InvoiceDetail, error)
	List(ctx context.Context, filter domain.InvoiceFilter, today time.Time) ([]domain.InvoiceSummary, int, error)
	// Update writes header fields. When items is non-nil the stored items are
	// replaced wholesale in the same transaction.
	Update(ctx context.Context, inv *domain.Invoice, items []domain.InvoiceItem) error
	UpdateFilePath(ctx context.Context, id uuid.UUID, path string) error
	UpdateNotesTerms(ctx context.Context, id uuid.UUID, notes, terms string) error
	// MarkSent sets status and sent_at and stores metadata only if none exists.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time, metadata *domain.InvoiceMetadata) error
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
	MarkTransferred(ctx context.Context, id uuid.UUID, transferredAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListUnpaid(ctx context.Context) ([]domain.Invoice, error)
	ListNumbersByClient(ctx context.Context, clientID uuid.UUID) ([]string, error)
}
