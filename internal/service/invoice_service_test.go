package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicer/internal/domain"
	"invoicer/internal/service"
	"invoicer/mocks"
)

type invoiceFixture struct {
	invoices *mocks.MockInvoiceRepo
	clients  *mocks.MockClientRepo
	settings *mocks.MockSettingsRepo
	storage  *mocks.MockObjectStorage
	cache    *mocks.MockURLCache
	svc      service.InvoiceService
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoices: new(mocks.MockInvoiceRepo),
		clients:  new(mocks.MockClientRepo),
		settings: new(mocks.MockSettingsRepo),
		storage:  new(mocks.MockObjectStorage),
		cache:    new(mocks.MockURLCache),
	}
	f.svc = service.NewInvoiceService(f.invoices, f.clients, f.settings, f.storage, f.cache,
		"invoices", "", fixedClock(fixedNow))
	return f
}

func TestInvoiceService_Create_ComputesTotalsAndSnapshot(t *testing.T) {
	f := newInvoiceFixture()
	client := &domain.Client{ID: uuid.New(), Name: "Globex", TargetEmail: "ap@globex.test", Terms: "Net 15"}

	f.clients.On("GetByID", mock.Anything, client.ID).Return(client, nil)
	f.settings.On("Get", mock.Anything).Return(sampleSettings(), nil)
	f.invoices.On("ListNumbersByClient", mock.Anything, client.ID).Return([]string{"7", "12", "draft"}, nil)

	var savedItems []domain.InvoiceItem
	f.invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedItems = args.Get(2).([]domain.InvoiceItem)
		}).
		Return(nil)

	view, err := f.svc.Create(context.Background(), &service.CreateInvoiceInput{
		ClientID:  &client.ID,
		IssueDate: "2026-03-01",
		DueDate:   "2026-03-15",
		TaxRate:   "10",
		Items: []service.InvoiceItemInput{
			{Description: "Design", Quantity: "6", Rate: "45", Date: "2026-02-27"},
			{Description: "Build", Quantity: "4", Rate: "45"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "13", view.InvoiceNumber)
	assert.Equal(t, "450.00", view.Subtotal)
	assert.Equal(t, "45.00", view.Tax)
	assert.Equal(t, "495.00", view.Total)
	assert.Equal(t, domain.InvoiceStatusPending, view.Status)
	assert.Equal(t, domain.InvoiceStatusPending, view.DisplayStatus)
	assert.Equal(t, "Net 15", view.Terms)

	require.NotNil(t, view.Metadata)
	assert.Equal(t, "Globex", view.Metadata.BillTo.Name)
	assert.Equal(t, "Acme LLC", view.Metadata.Business.CompanyName)
	assert.Equal(t, "Net 15", *view.Metadata.Terms)
	assert.Equal(t, "Acme LLC", view.Business.CompanyName)

	require.Len(t, savedItems, 2)
	assert.Equal(t, "270.00", savedItems[0].Amount)
	assert.Equal(t, "180.00", savedItems[1].Amount)
	assert.Equal(t, time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC), savedItems[0].ItemDate)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), savedItems[1].ItemDate)
}

func TestInvoiceService_Create_EmptyItems(t *testing.T) {
	f := newInvoiceFixture()
	f.settings.On("Get", mock.Anything).Return(nil, domain.ErrSettingsNotFound)
	f.invoices.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	view, err := f.svc.Create(context.Background(), &service.CreateInvoiceInput{
		InvoiceNumber: "A-1",
		IssueDate:     "2026-03-01",
		DueDate:       "2026-03-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", view.Subtotal)
	assert.Equal(t, "0.00", view.Tax)
	assert.Equal(t, "0.00", view.Total)
	assert.Equal(t, service.DefaultTerms, view.Terms)
}

func TestInvoiceService_Create_ValidationErrors(t *testing.T) {
	f := newInvoiceFixture()

	_, err := f.svc.Create(context.Background(), &service.CreateInvoiceInput{
		IssueDate: "03/01/2026",
		DueDate:   "2026-03-15",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "issue_date")
	assert.Contains(t, verr.Fields, "invoice_number")
	f.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_NextNumber(t *testing.T) {
	f := newInvoiceFixture()
	empty := uuid.New()
	busy := uuid.New()
	f.invoices.On("ListNumbersByClient", mock.Anything, empty).Return([]string{}, nil)
	f.invoices.On("ListNumbersByClient", mock.Anything, busy).Return([]string{"3", " 41 ", "9"}, nil)

	n, err := f.svc.NextNumber(context.Background(), empty)
	require.NoError(t, err)
	assert.Equal(t, "1", n)

	n, err = f.svc.NextNumber(context.Background(), busy)
	require.NoError(t, err)
	assert.Equal(t, "42", n)
}

func TestInvoiceService_MarkPaid_LatestDateWins(t *testing.T) {
	f := newInvoiceFixture()
	id := uuid.New()
	first := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	f.invoices.On("MarkPaid", mock.Anything, id, mock.MatchedBy(func(d time.Time) bool { return d.Equal(first) })).Return(nil).Once()
	f.invoices.On("MarkPaid", mock.Anything, id, mock.MatchedBy(func(d time.Time) bool { return d.Equal(second) })).Return(nil).Once()
	f.invoices.On("GetByID", mock.Anything, id).Return(&domain.Invoice{ID: id, Status: domain.InvoiceStatusPaid, PaidAt: &second}, nil)

	_, err := f.svc.MarkPaid(context.Background(), id, "2026-03-05")
	require.NoError(t, err)
	inv, err := f.svc.MarkPaid(context.Background(), id, "2026-03-10")
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.PaidAt.Equal(second))
	f.invoices.AssertNumberOfCalls(t, "MarkPaid", 2)
}

func TestInvoiceService_MarkPaid_DefaultsToToday(t *testing.T) {
	f := newInvoiceFixture()
	id := uuid.New()
	today := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)

	f.invoices.On("MarkPaid", mock.Anything, id, mock.MatchedBy(func(d time.Time) bool { return d.Equal(today) })).Return(nil)
	f.invoices.On("GetByID", mock.Anything, id).Return(&domain.Invoice{ID: id}, nil)

	_, err := f.svc.MarkPaid(context.Background(), id, "")
	require.NoError(t, err)
	f.invoices.AssertExpectations(t)
}

func TestInvoiceService_MarkTransferred_InvalidDate(t *testing.T) {
	f := newInvoiceFixture()

	_, err := f.svc.MarkTransferred(context.Background(), uuid.New(), "yesterday")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "transferred_date")
	f.invoices.AssertNotCalled(t, "MarkTransferred", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_List_DerivesOverdue(t *testing.T) {
	f := newInvoiceFixture()
	rows := []domain.InvoiceSummary{
		{Invoice: domain.Invoice{InvoiceNumber: "1", Status: domain.InvoiceStatusSent, DueDate: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)}},
		{Invoice: domain.Invoice{InvoiceNumber: "2", Status: domain.InvoiceStatusPaid, DueDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}},
		{Invoice: domain.Invoice{InvoiceNumber: "3", Status: domain.InvoiceStatusPending, DueDate: time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)}},
	}
	f.invoices.On("List", mock.Anything, domain.InvoiceFilter{Limit: 20}, mock.Anything).Return(rows, 3, nil)

	items, total, err := f.svc.List(context.Background(), domain.InvoiceFilter{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, domain.InvoiceStatusOverdue, items[0].DisplayStatus)
	assert.Equal(t, domain.InvoiceStatusSent, items[0].Status)
	assert.Equal(t, domain.InvoiceStatusPaid, items[1].DisplayStatus)
	assert.Equal(t, domain.InvoiceStatusPending, items[2].DisplayStatus)
}

func TestInvoiceService_List_InvalidStatus(t *testing.T) {
	f := newInvoiceFixture()

	_, _, err := f.svc.List(context.Background(), domain.InvoiceFilter{Status: "archived"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestInvoiceService_Update_TaxOnlyRecomputesFromSubtotal(t *testing.T) {
	f := newInvoiceFixture()
	detail := sampleDetail()
	detail.TaxRate = "0.000"
	detail.Tax = "0.00"
	detail.Total = "450.00"

	f.invoices.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	f.settings.On("Get", mock.Anything).Return(sampleSettings(), nil)
	f.invoices.On("Update", mock.Anything,
		mock.MatchedBy(func(inv *domain.Invoice) bool {
			return inv.TaxRate == "10.000" && inv.Tax == "45.00" && inv.Total == "495.00"
		}),
		mock.MatchedBy(func(items []domain.InvoiceItem) bool { return items == nil }),
	).Return(nil)

	rate := "10"
	_, err := f.svc.Update(context.Background(), &service.UpdateInvoiceInput{ID: detail.ID, TaxRate: &rate})
	require.NoError(t, err)
	f.invoices.AssertExpectations(t)
}

func TestInvoiceService_Update_ReplacesItems(t *testing.T) {
	f := newInvoiceFixture()
	detail := sampleDetail()

	f.invoices.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	f.settings.On("Get", mock.Anything).Return(sampleSettings(), nil)
	f.invoices.On("Update", mock.Anything,
		mock.MatchedBy(func(inv *domain.Invoice) bool {
			return inv.Subtotal == "12.50" && inv.Tax == "1.25" && inv.Total == "13.75"
		}),
		mock.MatchedBy(func(items []domain.InvoiceItem) bool {
			return len(items) == 1 && items[0].Amount == "12.50"
		}),
	).Return(nil)

	_, err := f.svc.Update(context.Background(), &service.UpdateInvoiceInput{
		ID:    detail.ID,
		Items: []service.InvoiceItemInput{{Description: "Support", Quantity: "0.5", Rate: "25"}},
	})
	require.NoError(t, err)
	f.invoices.AssertExpectations(t)
}

func TestInvoiceService_Update_FractionalTaxRateSurvivesEdit(t *testing.T) {
	f := newInvoiceFixture()
	f.settings.On("Get", mock.Anything).Return(nil, domain.ErrSettingsNotFound)

	var created domain.Invoice
	var createdItems []domain.InvoiceItem
	f.invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice"), mock.Anything).
		Run(func(args mock.Arguments) {
			created = *args.Get(1).(*domain.Invoice)
			createdItems = args.Get(2).([]domain.InvoiceItem)
		}).
		Return(nil)

	items := []service.InvoiceItemInput{{Description: "Audit", Quantity: "1", Rate: "1000"}}
	view, err := f.svc.Create(context.Background(), &service.CreateInvoiceInput{
		InvoiceNumber: "A-7",
		IssueDate:     "2026-03-01",
		DueDate:       "2026-03-31",
		TaxRate:       "8.875",
		Items:         items,
	})
	require.NoError(t, err)
	assert.Equal(t, "8.875", view.TaxRate)
	assert.Equal(t, "88.75", view.Tax)
	assert.Equal(t, "1088.75", view.Total)

	created.ID = uuid.New()
	f.invoices.On("GetDetail", mock.Anything, created.ID).
		Return(&domain.InvoiceDetail{Invoice: created, Items: createdItems}, nil)
	var updated domain.Invoice
	f.invoices.On("Update", mock.Anything, mock.AnythingOfType("*domain.Invoice"), mock.Anything).
		Run(func(args mock.Arguments) {
			updated = *args.Get(1).(*domain.Invoice)
		}).
		Return(nil)

	_, err = f.svc.Update(context.Background(), &service.UpdateInvoiceInput{ID: created.ID, Items: items})
	require.NoError(t, err)
	assert.Equal(t, "8.875", updated.TaxRate)
	assert.Equal(t, "88.75", updated.Tax)
	assert.Equal(t, "1088.75", updated.Total)
}

func TestInvoiceService_Update_RejectsQuantityBeyondTwoDecimals(t *testing.T) {
	f := newInvoiceFixture()
	detail := sampleDetail()
	f.invoices.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)

	_, err := f.svc.Update(context.Background(), &service.UpdateInvoiceInput{
		ID: detail.ID,
		Items: []service.InvoiceItemInput{
			{Description: "Support", Quantity: "1.50", Rate: "25"},
			{Description: "Pairing", Quantity: "0.333", Rate: "90"},
		},
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items[1].quantity")
	assert.NotContains(t, verr.Fields, "items[0].quantity")
	f.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Update_ClientChangeRebuildsSnapshot(t *testing.T) {
	f := newInvoiceFixture()
	detail := sampleDetail()
	detail.Metadata = &domain.InvoiceMetadata{BillTo: &domain.BillToSnapshot{Name: "Globex"}}
	initech := &domain.Client{ID: uuid.New(), Name: "Initech", TargetEmail: "ap@initech.test"}

	f.invoices.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	f.clients.On("GetByID", mock.Anything, initech.ID).Return(initech, nil)
	f.settings.On("Get", mock.Anything).Return(sampleSettings(), nil)
	f.invoices.On("Update", mock.Anything,
		mock.MatchedBy(func(inv *domain.Invoice) bool {
			return *inv.ClientID == initech.ID &&
				inv.Metadata != nil &&
				inv.Metadata.BillTo.Name == "Initech" &&
				inv.Metadata.BillTo.Email == "ap@initech.test" &&
				inv.Metadata.Business.CompanyName == "Acme LLC"
		}),
		mock.Anything,
	).Return(nil)

	_, err := f.svc.Update(context.Background(), &service.UpdateInvoiceInput{ID: detail.ID, ClientID: &initech.ID})
	require.NoError(t, err)
	f.invoices.AssertExpectations(t)
}

func TestInvoiceService_Update_SentInvoiceKeepsSnapshot(t *testing.T) {
	f := newInvoiceFixture()
	detail := sampleDetail()
	sentAt := fixedNow.Add(-24 * time.Hour)
	detail.SentAt = &sentAt
	detail.Metadata = &domain.InvoiceMetadata{BillTo: &domain.BillToSnapshot{Name: "Globex"}}
	initech := &domain.Client{ID: uuid.New(), Name: "Initech"}

	f.invoices.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	f.clients.On("GetByID", mock.Anything, initech.ID).Return(initech, nil)
	f.settings.On("Get", mock.Anything).Return(sampleSettings(), nil)
	f.invoices.On("Update", mock.Anything,
		mock.MatchedBy(func(inv *domain.Invoice) bool {
			return *inv.ClientID == initech.ID && inv.Metadata.BillTo.Name == "Globex"
		}),
		mock.Anything,
	).Return(nil)

	_, err := f.svc.Update(context.Background(), &service.UpdateInvoiceInput{ID: detail.ID, ClientID: &initech.ID})
	require.NoError(t, err)
	f.invoices.AssertExpectations(t)
}

func TestInvoiceService_Get_PrefersSnapshotBillTo(t *testing.T) {
	f := newInvoiceFixture()
	detail := sampleDetail()
	detail.Client.Name = "Renamed Co"
	detail.Metadata = &domain.InvoiceMetadata{
		BillTo:   &domain.BillToSnapshot{Name: "Snapshot Co", Email: "ap@snapshot.test"},
		Business: &domain.BusinessSnapshot{CompanyName: "Old Acme"},
	}

	f.invoices.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	f.settings.On("Get", mock.Anything).Return(sampleSettings(), nil)

	view, err := f.svc.Get(context.Background(), detail.ID)
	require.NoError(t, err)
	assert.Equal(t, "Snapshot Co", view.BillTo.Name)
	assert.Equal(t, "ap@snapshot.test", view.BillTo.Email)
	assert.Equal(t, "Old Acme", view.Business.CompanyName)
	assert.Equal(t, "Renamed Co", view.Client.Name)
}

func TestInvoiceService_Delete_StorageFailureIsBestEffort(t *testing.T) {
	f := newInvoiceFixture()
	id := uuid.New()
	f.invoices.On("GetByID", mock.Anything, id).Return(&domain.Invoice{ID: id, FilePath: strPtr("inv-5.pdf")}, nil)
	f.storage.On("Delete", mock.Anything, "invoices", "inv-5.pdf").Return(errors.New("access denied"))
	f.cache.On("Delete", mock.Anything, "invoice-pdf:"+id.String()).Return(nil)
	f.invoices.On("Delete", mock.Anything, id).Return(nil)

	err := f.svc.Delete(context.Background(), id)
	require.NoError(t, err)
	f.invoices.AssertCalled(t, "Delete", mock.Anything, id)
}

func TestInvoiceService_Export(t *testing.T) {
	f := newInvoiceFixture()

	err := f.svc.Export(context.Background(), domain.InvoiceFilter{}, "pdf", &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)

	name := "Globex"
	rows := []domain.InvoiceSummary{{
		Invoice:    domain.Invoice{InvoiceNumber: "1001", Status: domain.InvoiceStatusPaid, Total: "495.00"},
		ClientName: &name,
	}}
	f.invoices.On("List", mock.Anything, domain.InvoiceFilter{Status: domain.InvoiceStatusPaid}, mock.Anything).Return(rows, 1, nil)

	var buf bytes.Buffer
	err = f.svc.Export(context.Background(), domain.InvoiceFilter{Status: domain.InvoiceStatusPaid, Limit: 5, Offset: 10}, domain.ExportFormatCSV, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1001")
	assert.Contains(t, buf.String(), "Globex")
}
