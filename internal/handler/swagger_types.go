package handler

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"invoicer/internal/domain"
)

// Request and response shapes shared by the handlers and the swag docs.

// --- Request Types ---

// ClientRequest represents the create/update client request body.
type ClientRequest struct {
	Name                 string              `json:"name" binding:"required" example:"Globex Corporation"`
	Address              string              `json:"address" example:"42 Industrial Way"`
	City                 string              `json:"city" example:"Springfield"`
	State                string              `json:"state" example:"OR"`
	PostalCode           string              `json:"postal_code" example:"97477"`
	Country              string              `json:"country" example:"USA"`
	TargetEmail          string              `json:"target_email" binding:"omitempty,email" example:"ap@globex.test"`
	CCEmail              *string             `json:"cc_email" binding:"omitempty,email" example:"finance@globex.test"`
	Rate                 decimal.Decimal     `json:"rate" swaggertype:"string" example:"85.00"`
	ReminderType         domain.ReminderType `json:"reminder_type" example:"weekly_friday"`
	EmailTemplateID      *uuid.UUID          `json:"email_template_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	GoogleDriveFolderURL *string             `json:"google_drive_folder_url" example:"https://drive.google.com/drive/folders/1AbCdEf"`
	Terms                string              `json:"terms" example:"Net 15"`
}

// TemplateRequest represents the create/update email template request body.
type TemplateRequest struct {
	Name    string `json:"name" binding:"required" example:"Default"`
	Subject string `json:"subject" binding:"required" example:"Invoice #{{invoice_number}} from {{company_name}}"`
	Body    string `json:"body" example:"<p>Hi {{client_name}}, please find invoice {{invoice_number}} attached.</p>"`
}

// SettingsRequest represents the business settings upsert body.
type SettingsRequest struct {
	CompanyName     string `json:"company_name" example:"Acme LLC"`
	OwnerName       string `json:"owner_name" example:"Jane Doe"`
	Address         string `json:"address" example:"1 Main St"`
	City            string `json:"city" example:"Portland"`
	State           string `json:"state" example:"OR"`
	PostalCode      string `json:"postal_code" example:"97201"`
	Country         string `json:"country" example:"USA"`
	Email           string `json:"email" binding:"omitempty,email" example:"billing@acme.test"`
	Phone           string `json:"phone" example:"+1 503 555 0100"`
	BeneficiaryName string `json:"beneficiary_name" example:"Jane Doe"`
	BeneficiaryCNPJ string `json:"beneficiary_cnpj" example:"12.345.678/0001-90"`
	SwiftCode       string `json:"swift_code" example:"CHASUS33"`
	BankName        string `json:"bank_name" example:"Chase"`
	BankAddress     string `json:"bank_address" example:"270 Park Ave, New York"`
	RoutingNumber   string `json:"routing_number" example:"021000021"`
	AccountNumber   string `json:"account_number" example:"000123456789"`
	AccountType     string `json:"account_type" example:"checking"`
}

// InvoiceItemRequest represents one line item in an invoice request.
type InvoiceItemRequest struct {
	Description    string          `json:"description" binding:"required" example:"Backend development"`
	RawDescription *string         `json:"raw_description" example:"fixed pagination bug, reviewed PR 142"`
	Quantity       decimal.Decimal `json:"quantity" swaggertype:"string" example:"8"`
	Rate           decimal.Decimal `json:"rate" swaggertype:"string" example:"50"`
	Date           string          `json:"date" example:"2026-03-02"`
}

// CreateInvoiceRequest represents the create invoice request body.
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number" example:"13"`
	ClientID      *uuid.UUID           `json:"client_id" example:"660e8400-e29b-41d4-a716-446655440001"`
	IssueDate     string               `json:"issue_date" binding:"required" example:"2026-03-01"`
	DueDate       string               `json:"due_date" binding:"required" example:"2026-03-16"`
	TaxRate       *decimal.Decimal     `json:"tax_rate" swaggertype:"string" example:"10"`
	Notes         string               `json:"notes" example:"Thanks for your business"`
	Terms         string               `json:"terms" example:"Net 15"`
	Items         []InvoiceItemRequest `json:"items" binding:"dive"`
}

// UpdateInvoiceRequest represents the update invoice request body. Omitted
// fields are left unchanged; a present items array replaces every item.
type UpdateInvoiceRequest struct {
	InvoiceNumber *string              `json:"invoice_number" example:"13"`
	ClientID      *uuid.UUID           `json:"client_id" example:"660e8400-e29b-41d4-a716-446655440001"`
	IssueDate     *string              `json:"issue_date" example:"2026-03-01"`
	DueDate       *string              `json:"due_date" example:"2026-03-16"`
	TaxRate       *decimal.Decimal     `json:"tax_rate" swaggertype:"string" example:"10"`
	Notes         *string              `json:"notes" example:"Thanks for your business"`
	Terms         *string              `json:"terms" example:"Net 15"`
	Items         []InvoiceItemRequest `json:"items" binding:"omitempty,dive"`
}

// PaidRequest represents the mark-paid request body.
type PaidRequest struct {
	PaidDate string `json:"paid_date" example:"2026-03-20"`
}

// TransferredRequest represents the mark-transferred request body.
type TransferredRequest struct {
	TransferredDate string `json:"transferred_date" example:"2026-03-22"`
}

// SendInvoiceRequest represents the send invoice request body.
type SendInvoiceRequest struct {
	InvoiceID         uuid.UUID `json:"invoiceId" binding:"required" example:"770e8400-e29b-41d4-a716-446655440002"`
	To                string    `json:"to" binding:"omitempty,email" example:"ap@globex.test"`
	Subject           *string   `json:"subject" binding:"omitempty,min=1" example:"Invoice #13 from Acme LLC"`
	Body              string    `json:"body" example:"Hi,\nplease find invoice {{invoice_number}} attached."`
	UseTemplate       bool      `json:"useTemplate" example:"true"`
	SaveToGoogleDrive bool      `json:"saveToGoogleDrive" example:"false"`
}

// InvoiceRefRequest represents a request body that only names an invoice.
type InvoiceRefRequest struct {
	InvoiceID uuid.UUID `json:"invoiceId" binding:"required" example:"770e8400-e29b-41d4-a716-446655440002"`
}

// SummarizeRequest represents the summarize request body.
type SummarizeRequest struct {
	RawDescription string `json:"rawDescription" binding:"required" example:"fixed the flaky login test, paired with Ana on the deploy script"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// NextNumberResponse represents the next invoice number for a client.
type NextNumberResponse struct {
	InvoiceNumber string `json:"invoice_number" example:"14"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
