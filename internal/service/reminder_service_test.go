package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicer/internal/domain"
	"invoicer/internal/port"
	"invoicer/internal/service"
	"invoicer/mocks"
)

type reminderFixture struct {
	clients  *mocks.MockClientRepo
	invoices *mocks.MockInvoiceRepo
	settings *mocks.MockSettingsRepo
	mailer   *mocks.MockMailer
	svc      service.ReminderService
}

func newReminderFixture(now time.Time) *reminderFixture {
	f := &reminderFixture{
		clients:  new(mocks.MockClientRepo),
		invoices: new(mocks.MockInvoiceRepo),
		settings: new(mocks.MockSettingsRepo),
		mailer:   new(mocks.MockMailer),
	}
	f.svc = service.NewReminderService(f.clients, f.invoices, f.settings, f.mailer, fixedClock(now), time.Second)
	return f
}

func TestDueReminderTypes(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want []domain.ReminderType
	}{
		{"wednesday", time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), nil},
		{"friday", time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC), []domain.ReminderType{domain.ReminderWeeklyFriday}},
		{"last day of month", time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), []domain.ReminderType{domain.ReminderMonthlyEnd}},
		{"leap february", time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC), []domain.ReminderType{domain.ReminderMonthlyEnd}},
		{"friday and month end", time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC), []domain.ReminderType{domain.ReminderWeeklyFriday, domain.ReminderMonthlyEnd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.DueReminderTypes(tt.day))
		})
	}
}

func TestReminderService_Run_SkipsOffCadence(t *testing.T) {
	f := newReminderFixture(time.Date(2026, time.March, 11, 20, 0, 0, 0, time.UTC))

	result, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Equal(t, "Not a reminder day (not Friday or last day of month)", result.Message)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.clients.AssertNotCalled(t, "ListByReminderTypes", mock.Anything, mock.Anything)
}

func TestReminderService_Run_FridayDigest(t *testing.T) {
	f := newReminderFixture(time.Date(2026, time.March, 6, 20, 0, 0, 0, time.UTC))
	globex := domain.Client{ID: uuid.New(), Name: "Globex", TargetEmail: "ap@globex.test"}
	initech := domain.Client{ID: uuid.New(), Name: "Initech"}
	orphan := uuid.New()

	f.clients.On("ListByReminderTypes", mock.Anything, []domain.ReminderType{domain.ReminderWeeklyFriday}).
		Return([]domain.Client{globex, initech}, nil)
	f.invoices.On("ListUnpaid", mock.Anything).Return([]domain.Invoice{
		{InvoiceNumber: "1001", ClientID: &globex.ID, Total: "1000.00", DueDate: time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC)},
		{InvoiceNumber: "1002", ClientID: &globex.ID, Total: "500.00", DueDate: time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)},
		{InvoiceNumber: "77", ClientID: &orphan, Total: "9.99"},
		{InvoiceNumber: "78", Total: "1.00"},
	}, nil)
	f.settings.On("Get", mock.Anything).Return(sampleSettings(), nil)
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg port.MailMessage) bool {
		return msg.From == "billing@acme.test" &&
			len(msg.To) == 1 && msg.To[0] == "billing@acme.test" &&
			msg.Subject == "Invoice Reminder: Weekly Friday - 1 Client(s) with Unpaid Invoices" &&
			strings.Contains(msg.HTML, "Invoice Reminder - Weekly Friday") &&
			strings.Contains(msg.HTML, "Invoice #1001") &&
			strings.Contains(msg.HTML, "Due: Feb 20, 2026") &&
			strings.Contains(msg.HTML, "1 client(s) with 2 unpaid invoice(s)") &&
			strings.Contains(msg.HTML, "Total Outstanding: $1,500.00") &&
			!strings.Contains(msg.HTML, "Initech")
	})).Return("msg-r1", nil)

	result, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Skipped)
	assert.Equal(t, "Weekly Friday", result.ReminderType)
	assert.Equal(t, 1, result.ClientCount)
	assert.Equal(t, 2, result.InvoiceCount)
	assert.Equal(t, "$1,500.00", result.TotalUnpaid)
	assert.Equal(t, "billing@acme.test", result.SentTo)
	assert.Equal(t, "msg-r1", result.MessageID)
	f.mailer.AssertExpectations(t)
}

func TestReminderService_Run_MonthEndWithoutUnpaid(t *testing.T) {
	f := newReminderFixture(time.Date(2026, time.March, 31, 20, 0, 0, 0, time.UTC))
	globex := domain.Client{ID: uuid.New(), Name: "Globex"}

	f.clients.On("ListByReminderTypes", mock.Anything, []domain.ReminderType{domain.ReminderMonthlyEnd}).
		Return([]domain.Client{globex}, nil)
	f.invoices.On("ListUnpaid", mock.Anything).Return([]domain.Invoice{}, nil)

	result, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 1, result.ClientCount)
	require.NotNil(t, result.UnpaidCount)
	assert.Equal(t, 0, *result.UnpaidCount)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestReminderService_Run_NoClients(t *testing.T) {
	f := newReminderFixture(time.Date(2026, time.March, 6, 20, 0, 0, 0, time.UTC))
	f.clients.On("ListByReminderTypes", mock.Anything, mock.Anything).Return([]domain.Client{}, nil)

	result, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 0, result.ClientCount)
	f.invoices.AssertNotCalled(t, "ListUnpaid", mock.Anything)
}

func TestReminderService_Run_BusinessEmailMissing(t *testing.T) {
	f := newReminderFixture(time.Date(2026, time.March, 6, 20, 0, 0, 0, time.UTC))
	globex := domain.Client{ID: uuid.New(), Name: "Globex"}

	f.clients.On("ListByReminderTypes", mock.Anything, mock.Anything).Return([]domain.Client{globex}, nil)
	f.invoices.On("ListUnpaid", mock.Anything).Return([]domain.Invoice{{InvoiceNumber: "1", ClientID: &globex.ID, Total: "10.00"}}, nil)
	f.settings.On("Get", mock.Anything).Return(&domain.BusinessSettings{CompanyName: "Acme"}, nil)

	_, err := f.svc.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrBusinessEmailMissing)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
