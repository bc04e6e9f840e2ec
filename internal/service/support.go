package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"invoicer/internal/billing"
	"invoicer/internal/domain"
	"invoicer/internal/pdf"
	"invoicer/internal/placeholder"
	"invoicer/internal/port"
	"invoicer/internal/snapshot"
)

// DefaultTerms is used when neither the invoice nor the client carries terms.
const DefaultTerms = "Please make the payment by the due date."

// PDFRenderer lays out an invoice document.
type PDFRenderer interface {
	Render(doc pdf.Document) (*pdf.Result, error)
}

// Clock supplies the current time and the business timezone.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock returns a Clock backed by time.Now in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now().In(c.location())
	}
	return c.Now().In(c.location())
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// today returns midnight of the current business day.
func (c Clock) today() time.Time {
	y, m, d := c.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.location())
}

// loadInvoice fetches the invoice detail and the business settings
// concurrently. Missing settings are not an error.
func loadInvoice(ctx context.Context, invoices port.InvoiceRepository, settings port.SettingsRepository, id uuid.UUID) (*domain.InvoiceDetail, *domain.BusinessSettings, error) {
	var (
		detail *domain.InvoiceDetail
		biz    *domain.BusinessSettings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = invoices.GetDetail(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		biz, err = loadSettings(gctx, settings)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return detail, biz, nil
}

func loadSettings(ctx context.Context, repo port.SettingsRepository) (*domain.BusinessSettings, error) {
	s, err := repo.Get(ctx)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		return nil, nil
	}
	return s, err
}

// templateFields builds the placeholder dictionary for invoice emails.
func templateFields(inv *domain.Invoice, view snapshot.View, defaultTerms string) placeholder.Fields {
	if defaultTerms == "" {
		defaultTerms = DefaultTerms
	}
	b := view.Business
	if b == nil {
		b = &domain.BusinessSnapshot{}
	}
	terms := view.Terms
	if terms == "" {
		terms = defaultTerms
	}

	return placeholder.Fields{
		"invoice_number": inv.InvoiceNumber,
		"invoice_date":   billing.FormatDate(inv.IssueDate),
		"due_date":       billing.FormatDate(inv.DueDate),
		"amount":         billing.DisplayAmount(inv.Total),
		"subtotal":       billing.Fixed(billing.ParseDecimal(inv.Subtotal)),
		"tax":            billing.Fixed(billing.ParseDecimal(inv.Tax)),
		"total":          billing.DisplayAmount(inv.Total),
		"total_raw":      billing.Fixed(billing.ParseDecimal(inv.Total)),
		"terms":          terms,

		"client_name":        orDefault(view.BillTo.Name, "Client"),
		"client_email":       view.BillTo.Email,
		"client_address":     view.BillTo.Address,
		"client_city":        view.BillTo.City,
		"client_state":       view.BillTo.State,
		"client_postal_code": view.BillTo.PostalCode,
		"client_country":     view.BillTo.Country,
		"client_terms":       view.Terms,

		"company_name":        orDefault(b.CompanyName, "Your Company"),
		"owner_name":          b.OwnerName,
		"company_address":     b.Address,
		"company_city":        b.City,
		"company_state":       b.State,
		"company_postal_code": b.PostalCode,
		"company_country":     b.Country,
		"company_email":       b.Email,
		"company_phone":       b.Phone,
		"beneficiary_name":    b.BeneficiaryName,
		"beneficiary_cnpj":    b.BeneficiaryCNPJ,
		"swift_code":          b.SwiftCode,
		"bank_name":           b.BankName,
		"bank_address":        b.BankAddress,
		"routing_number":      b.RoutingNumber,
		"account_number":      b.AccountNumber,
		"account_type":        b.AccountType,
	}
}

// paymentNotes renders the bank block as plain text for the invoice notes.
func paymentNotes(b *domain.BusinessSnapshot) string {
	if b == nil {
		return ""
	}
	text := "Payment Information\n"
	for _, l := range b.PaymentInfo().Lines() {
		text += "\n" + l[0] + ": " + l[1]
	}
	return text
}

// pdfDocument converts a resolved invoice into renderer input.
func pdfDocument(detail *domain.InvoiceDetail, view snapshot.View) pdf.Document {
	doc := pdf.Document{
		Number:    detail.InvoiceNumber,
		IssueDate: detail.IssueDate,
		DueDate:   detail.DueDate,
		Business:  view.Business,
		Subtotal:  detail.Subtotal,
		Tax:       detail.Tax,
		Total:     detail.Total,
		Terms:     view.Terms,
		Items:     make([]pdf.Item, 0, len(detail.Items)),
	}
	if detail.Client != nil || (detail.Metadata != nil && detail.Metadata.BillTo != nil) {
		billTo := view.BillTo
		doc.BillTo = &billTo
	}
	for _, it := range detail.Items {
		doc.Items = append(doc.Items, pdf.Item{
			Description: it.Description,
			Date:        it.ItemDate,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		})
	}
	return doc
}

// storageKey is the object key of an invoice's stored PDF.
func storageKey(number string) string {
	return "inv-" + number + ".pdf"
}

// attachmentName is the file name used for mail attachments and archives.
func attachmentName(number string) string {
	return number + ".pdf"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
