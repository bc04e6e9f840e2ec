package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

type reminderInvoiceRow struct {
	Number  string
	Amount  string
	DueDate string
}

type reminderClientSection struct {
	Name     string
	Email    string
	Invoices []reminderInvoiceRow
	Total    string
}

type reminderDigest struct {
	Label        string
	Date         string
	Clients      []reminderClientSection
	InvoiceCount int
	Total        string
}

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #4F46E5; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
    .content { background-color: #f9fafb; padding: 20px; border-radius: 0 0 8px 8px; }
    .client-section { background-color: white; margin: 15px 0; padding: 15px; border-radius: 6px; border-left: 4px solid #4F46E5; }
    .client-name { font-size: 18px; font-weight: bold; color: #1f2937; margin-bottom: 10px; }
    .client-email { color: #6b7280; font-size: 14px; margin-bottom: 10px; }
    .invoice-item { padding: 8px 0; border-bottom: 1px solid #e5e7eb; }
    .invoice-item:last-child { border-bottom: none; }
    .invoice-number { font-weight: 600; color: #4F46E5; }
    .total { font-size: 18px; font-weight: bold; color: #059669; margin-top: 10px; }
    .summary { background-color: #fef3c7; padding: 15px; border-radius: 6px; margin-top: 20px; }
    .footer { text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Invoice Reminder - {{.Label}}</h1>
      <p>{{.Date}}</p>
    </div>
    <div class="content">
      <p>Hello,</p>
      <p>This is your {{.LowerLabel}} reminder for unpaid invoices. The following clients have outstanding invoices:</p>
{{range .Clients}}
      <div class="client-section">
        <div class="client-name">{{.Name}}</div>
        <div class="client-email">{{if .Email}}{{.Email}}{{else}}No email{{end}}</div>
        <div style="margin-top: 10px;">
{{- range .Invoices}}
          <div class="invoice-item">
            <span class="invoice-number">Invoice #{{.Number}}</span>
            <span style="float: right;">{{.Amount}}</span>
            <br>
            <span style="font-size: 12px; color: #6b7280;">Due: {{.DueDate}}</span>
          </div>
{{- end}}
        </div>
        <div class="total">Total: {{.Total}}</div>
      </div>
{{end}}
      <div class="summary">
        <strong>Summary:</strong><br>
        {{len .Clients}} client(s) with {{.InvoiceCount}} unpaid invoice(s)<br>
        <span style="font-size: 20px; color: #059669; font-weight: bold;">Total Outstanding: {{.Total}}</span>
      </div>

      <p style="margin-top: 20px;">Please follow up on these outstanding invoices at your earliest convenience.</p>
    </div>
    <div class="footer">
      <p>This is an automated reminder from your Invoice Management System</p>
    </div>
  </div>
</body>
</html>
`))

// LowerLabel is the cadence name as used mid-sentence.
func (d reminderDigest) LowerLabel() string {
	return strings.ToLower(d.Label)
}

func renderReminder(d reminderDigest) (string, error) {
	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("rendering reminder email: %w", err)
	}
	return buf.String(), nil
}

func reminderSubject(label string, clientCount int) string {
	return fmt.Sprintf("Invoice Reminder: %s - %d Client(s) with Unpaid Invoices", label, clientCount)
}
