// Package export writes invoice listings as CSV or XLSX spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"invoicer/internal/billing"
	"invoicer/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the header row shared by every format.
var columns = []string{
	"Invoice Number",
	"Client",
	"Issue Date",
	"Due Date",
	"Status",
	"Subtotal",
	"Tax Rate",
	"Tax",
	"Total",
	"Sent At",
	"Paid At",
	"Transferred At",
	"Created At",
}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv   *csv.Writer
	today time.Time
}

// NewWriter creates a Writer that writes CSV to w. today decides which
// invoices read as overdue.
func NewWriter(w io.Writer, today time.Time) *Writer {
	return &Writer{csv: csv.NewWriter(w), today: today}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices converts a batch of invoices to CSV rows and writes them.
func (w *Writer) WriteInvoices(invoices []domain.InvoiceSummary) error {
	for i := range invoices {
		if err := w.csv.Write(invoiceToRow(&invoices[i], w.today)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a BOM, the header and every invoice to out.
func WriteCSV(out io.Writer, invoices []domain.InvoiceSummary, today time.Time) error {
	if _, err := out.Write(BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}
	w := NewWriter(out, today)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteInvoices(invoices); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

func invoiceToRow(inv *domain.InvoiceSummary, today time.Time) []string {
	row := make([]string, len(columns))
	row[0] = inv.InvoiceNumber
	if inv.ClientName != nil {
		row[1] = *inv.ClientName
	}
	row[2] = billing.FormatDay(inv.IssueDate)
	row[3] = billing.FormatDay(inv.DueDate)
	row[4] = string(inv.DisplayStatus(today))
	row[5] = billing.Fixed(billing.ParseDecimal(inv.Subtotal))
	row[6] = billing.NormalizeTaxRate(inv.TaxRate)
	row[7] = billing.Fixed(billing.ParseDecimal(inv.Tax))
	row[8] = billing.Fixed(billing.ParseDecimal(inv.Total))
	row[9] = formatTime(inv.SentAt)
	row[10] = formatTime(inv.PaidAt)
	row[11] = formatTime(inv.TransferredAt)
	row[12] = inv.CreatedAt.Format(time.RFC3339)
	return row
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition: anything
// outside [a-zA-Z0-9_-] becomes "_", runs collapse, and the result is capped
// at 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name string, format domain.ExportFormat, date time.Time) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "invoices"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, date.Format("2006-01-02"), format)
}
