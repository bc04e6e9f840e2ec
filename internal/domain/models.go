package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Client is a customer that receives invoices.
type Client struct {
	ID                   uuid.UUID    `db:"id" json:"id"`
	Name                 string       `db:"name" json:"name"`
	Address              string       `db:"address" json:"address"`
	City                 string       `db:"city" json:"city"`
	State                string       `db:"state" json:"state"`
	PostalCode           string       `db:"postal_code" json:"postal_code"`
	Country              string       `db:"country" json:"country"`
	TargetEmail          string       `db:"target_email" json:"target_email"`
	CCEmail              *string      `db:"cc_email" json:"cc_email,omitempty"`
	Rate                 string       `db:"rate" json:"rate"`
	ReminderType         ReminderType `db:"reminder_type" json:"reminder_type"`
	EmailTemplateID      *uuid.UUID   `db:"email_template_id" json:"email_template_id,omitempty"`
	GoogleDriveFolderURL *string      `db:"google_drive_folder_url" json:"google_drive_folder_url,omitempty"`
	Terms                string       `db:"terms" json:"terms"`
	CreatedAt            time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at" json:"updated_at"`
}

// BusinessSettings is the singleton profile of the invoicing business.
type BusinessSettings struct {
	ID              uuid.UUID `db:"id" json:"id"`
	CompanyName     string    `db:"company_name" json:"company_name"`
	OwnerName       string    `db:"owner_name" json:"owner_name"`
	Address         string    `db:"address" json:"address"`
	City            string    `db:"city" json:"city"`
	State           string    `db:"state" json:"state"`
	PostalCode      string    `db:"postal_code" json:"postal_code"`
	Country         string    `db:"country" json:"country"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone"`
	BeneficiaryName string    `db:"beneficiary_name" json:"beneficiary_name"`
	BeneficiaryCNPJ string    `db:"beneficiary_cnpj" json:"beneficiary_cnpj"`
	SwiftCode       string    `db:"swift_code" json:"swift_code"`
	BankName        string    `db:"bank_name" json:"bank_name"`
	BankAddress     string    `db:"bank_address" json:"bank_address"`
	RoutingNumber   string    `db:"routing_number" json:"routing_number"`
	AccountNumber   string    `db:"account_number" json:"account_number"`
	AccountType     string    `db:"account_type" json:"account_type"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// EmailTemplate is a user-editable subject and HTML body with placeholders.
type EmailTemplate struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Subject   string    `db:"subject" json:"subject"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Invoice is the invoice header. Money fields are fixed two-decimal strings.
type Invoice struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	InvoiceNumber string           `db:"invoice_number" json:"invoice_number"`
	ClientID      *uuid.UUID       `db:"client_id" json:"client_id,omitempty"`
	IssueDate     time.Time        `db:"issue_date" json:"issue_date"`
	DueDate       time.Time        `db:"due_date" json:"due_date"`
	Status        InvoiceStatus    `db:"status" json:"status"`
	Subtotal      string           `db:"subtotal" json:"subtotal"`
	TaxRate       string           `db:"tax_rate" json:"tax_rate"`
	Tax           string           `db:"tax" json:"tax"`
	Total         string           `db:"total" json:"total"`
	FilePath      *string          `db:"file_path" json:"file_path,omitempty"`
	Metadata      *InvoiceMetadata `db:"metadata" json:"metadata,omitempty"`
	Notes         string           `db:"notes" json:"notes"`
	Terms         string           `db:"terms" json:"terms"`
	SentAt        *time.Time       `db:"sent_at" json:"sent_at,omitempty"`
	PaidAt        *time.Time       `db:"paid_at" json:"paid_at,omitempty"`
	TransferredAt *time.Time       `db:"transferred_at" json:"transferred_at,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// DisplayStatus derives the status shown to users. Unpaid invoices past their
// due date read as overdue.
func (inv *Invoice) DisplayStatus(today time.Time) InvoiceStatus {
	if inv.Status == InvoiceStatusPaid {
		return InvoiceStatusPaid
	}
	y, m, d := today.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	dy, dm, dd := inv.DueDate.Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, today.Location())
	if due.Before(startOfDay) {
		return InvoiceStatusOverdue
	}
	return inv.Status
}

// InvoiceItem is one billable line. RawDescription is internal and never rendered.
type InvoiceItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	InvoiceID      uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Position       int       `db:"position" json:"position"`
	Description    string    `db:"description" json:"description"`
	RawDescription *string   `db:"raw_description" json:"raw_description,omitempty"`
	Quantity       string    `db:"quantity" json:"quantity"`
	Rate           string    `db:"rate" json:"rate"`
	Amount         string    `db:"amount" json:"amount"`
	ItemDate       time.Time `db:"item_date" json:"item_date"`
}

// InvoiceDetail is an invoice joined with its client and ordered items.
type InvoiceDetail struct {
	Invoice
	Client *Client       `json:"client,omitempty"`
	Items  []InvoiceItem `json:"items"`
}

// InvoiceSummary is a list row: the invoice plus its client's name.
type InvoiceSummary struct {
	Invoice
	ClientName *string `db:"client_name" json:"client_name,omitempty"`
}

// InvoiceFilter narrows invoice listings. Limit 0 returns every row.
type InvoiceFilter struct {
	ClientID *uuid.UUID
	Status   InvoiceStatus
	Offset   int
	Limit    int
}

// BillToSnapshot freezes the recipient block of an invoice.
type BillToSnapshot struct {
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city,omitempty"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country,omitempty"`
	Email      string  `json:"email,omitempty"`
	CCEmail    *string `json:"cc_email,omitempty"`
}

// BusinessSnapshot freezes the issuer block of an invoice.
type BusinessSnapshot struct {
	CompanyName     string `json:"company_name"`
	OwnerName       string `json:"owner_name,omitempty"`
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	PostalCode      string `json:"postal_code,omitempty"`
	Country         string `json:"country,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	BeneficiaryName string `json:"beneficiary_name,omitempty"`
	BeneficiaryCNPJ string `json:"beneficiary_cnpj,omitempty"`
	SwiftCode       string `json:"swift_code,omitempty"`
	BankName        string `json:"bank_name,omitempty"`
	BankAddress     string `json:"bank_address,omitempty"`
	RoutingNumber   string `json:"routing_number,omitempty"`
	AccountNumber   string `json:"account_number,omitempty"`
	AccountType     string `json:"account_type,omitempty"`
}

// InvoiceMetadata is the snapshot stored with an invoice. Once written it is
// never modified.
type InvoiceMetadata struct {
	BillTo   *BillToSnapshot   `json:"billTo,omitempty"`
	Business *BusinessSnapshot `json:"business,omitempty"`
	Terms    *string           `json:"terms,omitempty"`
	Notes    *string           `json:"notes,omitempty"`
}

// Value implements driver.Valuer for the jsonb column.
func (m InvoiceMetadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling invoice metadata: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for the jsonb column.
func (m *InvoiceMetadata) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("invoice metadata: unsupported scan type")
	}
	return json.Unmarshal(data, m)
}

// PaymentInfo is the bank block rendered in the PDF footer and merged into emails.
type PaymentInfo struct {
	BeneficiaryName string
	BeneficiaryCNPJ string
	SwiftCode       string
	BankAddress     string
	RoutingNumber   string
	AccountNumber   string
	AccountType     string
}

// Lines returns the labeled payment fields in display order.
func (p PaymentInfo) Lines() [][2]string {
	return [][2]string{
		{"Beneficiary Name", p.BeneficiaryName},
		{"Beneficiary CNPJ", p.BeneficiaryCNPJ},
		{"SWIFT/BIC Code", p.SwiftCode},
		{"Bank Address", p.BankAddress},
		{"Routing Number", p.RoutingNumber},
		{"Account Number", p.AccountNumber},
		{"Account Type", p.AccountType},
	}
}

// PaymentInfo extracts the bank block from a business snapshot.
func (b *BusinessSnapshot) PaymentInfo() PaymentInfo {
	if b == nil {
		return PaymentInfo{}
	}
	return PaymentInfo{
		BeneficiaryName: b.BeneficiaryName,
		BeneficiaryCNPJ: b.BeneficiaryCNPJ,
		SwiftCode:       b.SwiftCode,
		BankAddress:     b.BankAddress,
		RoutingNumber:   b.RoutingNumber,
		AccountNumber:   b.AccountNumber,
		AccountType:     b.AccountType,
	}
}

// DashboardStats summarizes revenue and invoice counts.
type DashboardStats struct {
	TotalRevenue   string `db:"total_revenue" json:"total_revenue"`
	PaidRevenue    string `db:"paid_revenue" json:"paid_revenue"`
	PendingRevenue string `db:"pending_revenue" json:"pending_revenue"`
	InvoiceCount   int    `db:"invoice_count" json:"invoice_count"`
	PaidCount      int    `db:"paid_count" json:"paid_count"`
	PendingCount   int    `db:"pending_count" json:"pending_count"`
	OverdueCount   int    `db:"overdue_count" json:"overdue_count"`
	ClientCount    int    `db:"client_count" json:"client_count"`
}
