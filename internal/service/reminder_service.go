package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"invoicer/internal/billing"
	"invoicer/internal/domain"
	"invoicer/internal/logger"
	"invoicer/internal/port"
)

// ReminderResult is the outcome of one reminder scan.
type ReminderResult struct {
	Success      bool   `json:"success"`
	Skipped      bool   `json:"skipped,omitempty"`
	Message      string `json:"message"`
	ReminderType string `json:"reminderType,omitempty"`
	ClientCount  int    `json:"clientCount"`
	UnpaidCount  *int   `json:"unpaidCount,omitempty"`
	InvoiceCount int    `json:"invoiceCount,omitempty"`
	TotalUnpaid  string `json:"totalUnpaid,omitempty"`
	SentTo       string `json:"sentTo,omitempty"`
	MessageID    string `json:"messageId,omitempty"`
}

// ReminderService sends the unpaid-invoice digest on cadence days.
type ReminderService interface {
	Run(ctx context.Context) (*ReminderResult, error)
}

type reminderService struct {
	clientRepo   port.ClientRepository
	invoiceRepo  port.InvoiceRepository
	settingsRepo port.SettingsRepository
	mailer       port.Mailer
	clock        Clock
	timeout      time.Duration
	log          zerolog.Logger
}

// NewReminderService creates a new ReminderService implementation.
func NewReminderService(
	clientRepo port.ClientRepository,
	invoiceRepo port.InvoiceRepository,
	settingsRepo port.SettingsRepository,
	mailer port.Mailer,
	clock Clock,
	timeout time.Duration,
) ReminderService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &reminderService{
		clientRepo:   clientRepo,
		invoiceRepo:  invoiceRepo,
		settingsRepo: settingsRepo,
		mailer:       mailer,
		clock:        clock,
		timeout:      timeout,
		log:          logger.WithComponent("reminder"),
	}
}

// DueReminderTypes returns the cadences that fire on day.
func DueReminderTypes(day time.Time) []domain.ReminderType {
	var types []domain.ReminderType
	if day.Weekday() == time.Friday {
		types = append(types, domain.ReminderWeeklyFriday)
	}
	if day.AddDate(0, 0, 1).Month() != day.Month() {
		types = append(types, domain.ReminderMonthlyEnd)
	}
	return types
}

func (s *reminderService) Run(ctx context.Context) (*ReminderResult, error) {
	today := s.clock.today()
	types := DueReminderTypes(today)
	s.log.Info().Str("date", billing.FormatDay(today)).Interface("reminder_types", types).Msg("checking reminder conditions")

	if len(types) == 0 {
		return &ReminderResult{
			Success: true,
			Skipped: true,
			Message: "Not a reminder day (not Friday or last day of month)",
		}, nil
	}
	label := types[0].Label()

	clients, err := s.clientRepo.ListByReminderTypes(ctx, types)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return &ReminderResult{
			Success: true,
			Skipped: true,
			Message: "No clients configured for reminders on this day",
		}, nil
	}

	unpaid, err := s.invoiceRepo.ListUnpaid(ctx)
	if err != nil {
		return nil, err
	}
	byClient := make(map[uuid.UUID][]domain.Invoice)
	for _, inv := range unpaid {
		if inv.ClientID == nil {
			continue
		}
		byClient[*inv.ClientID] = append(byClient[*inv.ClientID], inv)
	}

	digest := reminderDigest{Label: label, Date: billing.FormatDate(today)}
	var grand []string
	for i := range clients {
		invoices := byClient[clients[i].ID]
		if len(invoices) == 0 {
			continue
		}
		section := reminderClientSection{Name: clients[i].Name, Email: clients[i].TargetEmail}
		totals := make([]string, 0, len(invoices))
		for _, inv := range invoices {
			section.Invoices = append(section.Invoices, reminderInvoiceRow{
				Number:  inv.InvoiceNumber,
				Amount:  billing.FormatUSD(inv.Total),
				DueDate: billing.FormatDate(inv.DueDate),
			})
			totals = append(totals, inv.Total)
		}
		clientTotal := billing.Sum(totals...)
		section.Total = billing.FormatUSD(clientTotal)
		digest.Clients = append(digest.Clients, section)
		digest.InvoiceCount += len(invoices)
		grand = append(grand, clientTotal)
	}

	if len(digest.Clients) == 0 {
		zero := 0
		return &ReminderResult{
			Success:     true,
			Skipped:     true,
			Message:     "No unpaid invoices for clients with reminders",
			ClientCount: len(clients),
			UnpaidCount: &zero,
		}, nil
	}
	totalUnpaid := billing.Sum(grand...)
	digest.Total = billing.FormatUSD(totalUnpaid)

	settings, err := loadSettings(ctx, s.settingsRepo)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.Email == "" {
		s.log.Error().Msg("no business email configured")
		return nil, domain.ErrBusinessEmailMissing
	}

	html, err := renderReminder(digest)
	if err != nil {
		return nil, err
	}
	mailCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	messageID, err := s.mailer.Send(mailCtx, port.MailMessage{
		From:    settings.Email,
		To:      []string{settings.Email},
		Subject: reminderSubject(label, len(digest.Clients)),
		HTML:    html,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("message_id", messageID).
		Int("client_count", len(digest.Clients)).
		Int("invoice_count", digest.InvoiceCount).
		Str("total_unpaid", totalUnpaid).
		Msg("reminder email sent")

	return &ReminderResult{
		Success:      true,
		Message:      "Reminder email sent successfully",
		ReminderType: label,
		ClientCount:  len(digest.Clients),
		InvoiceCount: digest.InvoiceCount,
		TotalUnpaid:  digest.Total,
		SentTo:       settings.Email,
		MessageID:    messageID,
	}, nil
}
