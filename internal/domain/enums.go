package domain

// InvoiceStatus is the persisted lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	// InvoiceStatusOverdue is derived at read time and never stored.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// ValidInvoiceStatuses contains the statuses accepted as list filters.
var ValidInvoiceStatuses = map[InvoiceStatus]bool{
	InvoiceStatusPending: true,
	InvoiceStatusSent:    true,
	InvoiceStatusPaid:    true,
	InvoiceStatusOverdue: true,
}

// ReminderType selects the cadence of the unpaid-invoice digest for a client.
type ReminderType string

const (
	ReminderNone         ReminderType = "none"
	ReminderWeeklyFriday ReminderType = "weekly_friday"
	ReminderMonthlyEnd   ReminderType = "monthly_end"
)

// Label returns the human-readable cadence name used in reminder emails.
func (r ReminderType) Label() string {
	switch r {
	case ReminderWeeklyFriday:
		return "Weekly Friday"
	case ReminderMonthlyEnd:
		return "End of Month"
	default:
		return "None"
	}
}

// ValidReminderTypes contains the accepted reminder types.
var ValidReminderTypes = map[ReminderType]bool{
	ReminderNone:         true,
	ReminderWeeklyFriday: true,
	ReminderMonthlyEnd:   true,
}

// ExportFormat selects the invoice export encoding.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)
