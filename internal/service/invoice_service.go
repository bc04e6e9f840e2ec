package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"invoicer/internal/billing"
	"invoicer/internal/domain"
	"invoicer/internal/export"
	"invoicer/internal/logger"
	"invoicer/internal/port"
	"invoicer/internal/snapshot"
)

// InvoiceItemInput is one line of a create or update request. Date is
// YYYY-MM-DD and defaults to the issue date.
type InvoiceItemInput struct {
	Description    string
	RawDescription *string
	Quantity       string
	Rate           string
	Date           string
}

// CreateInvoiceInput is the DTO for creating an invoice.
type CreateInvoiceInput struct {
	InvoiceNumber string
	ClientID      *uuid.UUID
	IssueDate     string
	DueDate       string
	TaxRate       string
	Notes         string
	Terms         string
	Items         []InvoiceItemInput
}

// UpdateInvoiceInput is the DTO for updating an invoice. Nil fields are left
// unchanged; a non-nil Items replaces every stored item.
type UpdateInvoiceInput struct {
	ID            uuid.UUID
	InvoiceNumber *string
	ClientID      *uuid.UUID
	IssueDate     *string
	DueDate       *string
	TaxRate       *string
	Notes         *string
	Terms         *string
	Items         []InvoiceItemInput
}

// InvoiceView is an invoice detail with its resolved display data.
type InvoiceView struct {
	domain.InvoiceDetail
	DisplayStatus domain.InvoiceStatus     `json:"display_status"`
	BillTo        domain.BillToSnapshot    `json:"bill_to"`
	Business      *domain.BusinessSnapshot `json:"business,omitempty"`
	ResolvedTerms string                   `json:"resolved_terms"`
}

// InvoiceListItem is a list row with its derived status.
type InvoiceListItem struct {
	domain.InvoiceSummary
	DisplayStatus domain.InvoiceStatus `json:"display_status"`
}

// InvoiceService defines the invoice management contract.
type InvoiceService interface {
	Create(ctx context.Context, input *CreateInvoiceInput) (*InvoiceView, error)
	Get(ctx context.Context, id uuid.UUID) (*InvoiceView, error)
	List(ctx context.Context, filter domain.InvoiceFilter) ([]InvoiceListItem, int, error)
	Update(ctx context.Context, input *UpdateInvoiceInput) (*InvoiceView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkPaid(ctx context.Context, id uuid.UUID, date string) (*domain.Invoice, error)
	MarkTransferred(ctx context.Context, id uuid.UUID, date string) (*domain.Invoice, error)
	NextNumber(ctx context.Context, clientID uuid.UUID) (string, error)
	Export(ctx context.Context, filter domain.InvoiceFilter, format domain.ExportFormat, w io.Writer) error
}

type invoiceService struct {
	invoiceRepo  port.InvoiceRepository
	clientRepo   port.ClientRepository
	settingsRepo port.SettingsRepository
	storage      port.ObjectStorage
	urlCache     port.URLCache
	bucket       string
	defaultTerms string
	clock        Clock
	log          zerolog.Logger
}

// NewInvoiceService creates a new InvoiceService implementation. urlCache may be nil.
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	clientRepo port.ClientRepository,
	settingsRepo port.SettingsRepository,
	storage port.ObjectStorage,
	urlCache port.URLCache,
	bucket string,
	defaultTerms string,
	clock Clock,
) InvoiceService {
	if defaultTerms == "" {
		defaultTerms = DefaultTerms
	}
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		settingsRepo: settingsRepo,
		storage:      storage,
		urlCache:     urlCache,
		bucket:       bucket,
		defaultTerms: defaultTerms,
		clock:        clock,
		log:          logger.WithComponent("invoice"),
	}
}

func (s *invoiceService) Create(ctx context.Context, input *CreateInvoiceInput) (*InvoiceView, error) {
	verr := &domain.ValidationError{}
	issueDate, err := billing.ParseDay(input.IssueDate, s.clock.location())
	if err != nil {
		verr.Add("issue_date", "must be a YYYY-MM-DD date")
	}
	dueDate, err := billing.ParseDay(input.DueDate, s.clock.location())
	if err != nil {
		verr.Add("due_date", "must be a YYYY-MM-DD date")
	}
	if strings.TrimSpace(input.InvoiceNumber) == "" && input.ClientID == nil {
		verr.Add("invoice_number", "is required when no client is selected")
	}
	if verr.HasErrors() {
		return nil, verr
	}
	items, err := s.buildItems(input.Items, issueDate)
	if err != nil {
		return nil, err
	}

	var client *domain.Client
	if input.ClientID != nil {
		client, err = s.clientRepo.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
	}
	settings, err := loadSettings(ctx, s.settingsRepo)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(input.InvoiceNumber)
	if number == "" {
		if number, err = s.NextNumber(ctx, client.ID); err != nil {
			return nil, err
		}
	}

	terms := input.Terms
	if terms == "" && client != nil {
		terms = client.Terms
	}
	if terms == "" {
		terms = s.defaultTerms
	}

	taxRate := billing.NormalizeTaxRate(input.TaxRate)
	totals := applyTotals(items, taxRate)
	inv := &domain.Invoice{
		InvoiceNumber: number,
		ClientID:      input.ClientID,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Status:        domain.InvoiceStatusPending,
		Subtotal:      totals.Subtotal,
		TaxRate:       taxRate,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Metadata:      snapshot.Build(client, settings, terms, input.Notes),
		Notes:         input.Notes,
		Terms:         terms,
	}
	if err := s.invoiceRepo.Create(ctx, inv, items); err != nil {
		return nil, err
	}
	s.log.Info().Str("invoice_id", inv.ID.String()).Str("invoice_number", number).Str("total", inv.Total).Msg("invoice created")

	detail := &domain.InvoiceDetail{Invoice: *inv, Client: client, Items: items}
	return s.view(detail, settings), nil
}

// buildItems validates item dates and converts inputs into rows.
func (s *invoiceService) buildItems(inputs []InvoiceItemInput, issueDate time.Time) ([]domain.InvoiceItem, error) {
	verr := &domain.ValidationError{}
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for i, in := range inputs {
		date := issueDate
		if strings.TrimSpace(in.Date) != "" {
			d, err := billing.ParseDay(in.Date, s.clock.location())
			if err != nil {
				verr.Add(fmt.Sprintf("items[%d].date", i), "must be a YYYY-MM-DD date")
				continue
			}
			date = d
		}
		qty := billing.ParseDecimal(in.Quantity)
		if !qty.Equal(billing.Round2(qty)) {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "must have at most 2 decimal places")
			continue
		}
		items = append(items, domain.InvoiceItem{
			Description:    in.Description,
			RawDescription: in.RawDescription,
			Quantity:       qty.String(),
			Rate:           billing.Fixed(billing.ParseDecimal(in.Rate)),
			ItemDate:       date,
		})
	}
	if verr.HasErrors() {
		return nil, verr
	}
	return items, nil
}

// applyTotals fills item amounts and returns the invoice totals.
func applyTotals(items []domain.InvoiceItem, taxRate string) billing.Totals {
	lines := make([]billing.Line, len(items))
	for i, it := range items {
		lines[i] = billing.Line{Quantity: it.Quantity, Rate: it.Rate}
	}
	totals := billing.Compute(lines, taxRate)
	for i := range items {
		items[i].Amount = totals.Amounts[i]
	}
	return totals
}

func (s *invoiceService) view(detail *domain.InvoiceDetail, settings *domain.BusinessSettings) *InvoiceView {
	v := snapshot.Resolve(&detail.Invoice, detail.Client, settings)
	terms := v.Terms
	if terms == "" {
		terms = s.defaultTerms
	}
	return &InvoiceView{
		InvoiceDetail: *detail,
		DisplayStatus: detail.DisplayStatus(s.clock.today()),
		BillTo:        v.BillTo,
		Business:      v.Business,
		ResolvedTerms: terms,
	}
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*InvoiceView, error) {
	detail, settings, err := loadInvoice(ctx, s.invoiceRepo, s.settingsRepo, id)
	if err != nil {
		return nil, err
	}
	return s.view(detail, settings), nil
}

func (s *invoiceService) List(ctx context.Context, filter domain.InvoiceFilter) ([]InvoiceListItem, int, error) {
	if filter.Status != "" && !domain.ValidInvoiceStatuses[filter.Status] {
		return nil, 0, domain.NewValidationError("status", "must be one of pending, sent, paid, overdue")
	}
	today := s.clock.today()
	rows, total, err := s.invoiceRepo.List(ctx, filter, today)
	if err != nil {
		return nil, 0, err
	}
	items := make([]InvoiceListItem, len(rows))
	for i := range rows {
		items[i] = InvoiceListItem{InvoiceSummary: rows[i], DisplayStatus: rows[i].DisplayStatus(today)}
	}
	return items, total, nil
}

func (s *invoiceService) Update(ctx context.Context, input *UpdateInvoiceInput) (*InvoiceView, error) {
	detail, err := s.invoiceRepo.GetDetail(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	inv := detail.Invoice

	verr := &domain.ValidationError{}
	if input.IssueDate != nil {
		if d, err := billing.ParseDay(*input.IssueDate, s.clock.location()); err != nil {
			verr.Add("issue_date", "must be a YYYY-MM-DD date")
		} else {
			inv.IssueDate = d
		}
	}
	if input.DueDate != nil {
		if d, err := billing.ParseDay(*input.DueDate, s.clock.location()); err != nil {
			verr.Add("due_date", "must be a YYYY-MM-DD date")
		} else {
			inv.DueDate = d
		}
	}
	if input.InvoiceNumber != nil {
		if strings.TrimSpace(*input.InvoiceNumber) == "" {
			verr.Add("invoice_number", "must not be empty")
		} else {
			inv.InvoiceNumber = strings.TrimSpace(*input.InvoiceNumber)
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	var newClient *domain.Client
	if input.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if inv.ClientID == nil || *inv.ClientID != client.ID {
			newClient = client
		}
		inv.ClientID = input.ClientID
	}
	if input.Notes != nil {
		inv.Notes = *input.Notes
	}
	if input.Terms != nil {
		inv.Terms = *input.Terms
	}
	// A sent invoice keeps the snapshot it was delivered with.
	if newClient != nil && inv.SentAt == nil {
		settings, err := loadSettings(ctx, s.settingsRepo)
		if err != nil {
			return nil, err
		}
		inv.Metadata = snapshot.Build(newClient, settings, inv.Terms, inv.Notes)
	}
	if input.TaxRate != nil {
		inv.TaxRate = billing.NormalizeTaxRate(*input.TaxRate)
	}

	var items []domain.InvoiceItem
	switch {
	case input.Items != nil:
		if items, err = s.buildItems(input.Items, inv.IssueDate); err != nil {
			return nil, err
		}
		totals := applyTotals(items, inv.TaxRate)
		inv.Subtotal, inv.Tax, inv.Total = totals.Subtotal, totals.Tax, totals.Total
	case input.TaxRate != nil:
		inv.Tax, inv.Total = billing.ApplyTax(inv.Subtotal, inv.TaxRate)
	}

	if err := s.invoiceRepo.Update(ctx, &inv, items); err != nil {
		return nil, err
	}
	s.log.Info().Str("invoice_id", inv.ID.String()).Bool("items_replaced", items != nil).Msg("invoice updated")
	return s.Get(ctx, inv.ID)
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.FilePath != nil && *inv.FilePath != "" {
		if err := s.storage.Delete(ctx, s.bucket, *inv.FilePath); err != nil {
			s.log.Warn().Err(err).Str("file_path", *inv.FilePath).Msg("failed to delete stored PDF")
		}
	}
	if s.urlCache != nil {
		if err := s.urlCache.Delete(ctx, urlCacheKey(id)); err != nil {
			s.log.Warn().Err(err).Msg("signed URL cache delete failed")
		}
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("invoice_id", id.String()).Msg("invoice deleted")
	return nil
}

// resolveDay parses a caller date in the business timezone; empty means today.
func (s *invoiceService) resolveDay(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return s.clock.today(), nil
	}
	d, err := billing.ParseDay(value, s.clock.location())
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be a YYYY-MM-DD date")
	}
	return d, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, id uuid.UUID, date string) (*domain.Invoice, error) {
	paidAt, err := s.resolveDay("paid_date", date)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.MarkPaid(ctx, id, paidAt); err != nil {
		return nil, err
	}
	s.log.Info().Str("invoice_id", id.String()).Str("paid_date", billing.FormatDay(paidAt)).Msg("invoice marked paid")
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) MarkTransferred(ctx context.Context, id uuid.UUID, date string) (*domain.Invoice, error) {
	transferredAt, err := s.resolveDay("transferred_date", date)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.MarkTransferred(ctx, id, transferredAt); err != nil {
		return nil, err
	}
	s.log.Info().Str("invoice_id", id.String()).Str("transferred_date", billing.FormatDay(transferredAt)).Msg("invoice marked transferred")
	return s.invoiceRepo.GetByID(ctx, id)
}

// NextNumber returns one more than the highest numeric invoice number the
// client has, or "1" when there is none.
func (s *invoiceService) NextNumber(ctx context.Context, clientID uuid.UUID) (string, error) {
	numbers, err := s.invoiceRepo.ListNumbersByClient(ctx, clientID)
	if err != nil {
		return "", err
	}
	highest := 0
	for _, n := range numbers {
		v, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			continue
		}
		if v > highest {
			highest = v
		}
	}
	return strconv.Itoa(highest + 1), nil
}

func (s *invoiceService) Export(ctx context.Context, filter domain.InvoiceFilter, format domain.ExportFormat, w io.Writer) error {
	if format != domain.ExportFormatCSV && format != domain.ExportFormatXLSX {
		return domain.ErrInvalidExportFormat
	}
	filter.Offset, filter.Limit = 0, 0
	today := s.clock.today()
	rows, _, err := s.invoiceRepo.List(ctx, filter, today)
	if err != nil {
		return err
	}
	if format == domain.ExportFormatXLSX {
		err = export.WriteXLSX(w, rows, today)
	} else {
		err = export.WriteCSV(w, rows, today)
	}
	if err != nil {
		return fmt.Errorf("exporting invoices: %w", err)
	}
	return nil
}
