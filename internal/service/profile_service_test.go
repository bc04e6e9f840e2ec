package service_test

import (
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

func TestSettingsService_Get_EmptyProfileWhenMissing(t *testing.T) {
	repo := new(mocks.MockSettingsRepo)
	svc := service.NewSettingsService(repo)
	repo.On("Get", mock.Anything).Return(nil, domain.ErrSettingsNotFound)

	settings, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &domain.BusinessSettings{}, settings)
}

func TestSettingsService_Get_PropagatesErrors(t *testing.T) {
	repo := new(mocks.MockSettingsRepo)
	svc := service.NewSettingsService(repo)
	repo.On("Get", mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := svc.Get(context.Background())
	assert.EqualError(t, err, "connection reset")
}

func TestSettingsService_Save(t *testing.T) {
	repo := new(mocks.MockSettingsRepo)
	svc := service.NewSettingsService(repo)
	in := &domain.BusinessSettings{CompanyName: "Acme LLC", Email: "billing@acme.test"}
	repo.On("Upsert", mock.Anything, in).Return(nil)

	out, err := svc.Save(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "Acme LLC", out.CompanyName)
	repo.AssertExpectations(t)
}

func TestTemplateService_Create_Validation(t *testing.T) {
	repo := new(mocks.MockTemplateRepo)
	svc := service.NewTemplateService(repo)

	_, err := svc.Create(context.Background(), &service.TemplateInput{Name: "  ", Subject: ""})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "subject")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTemplateService_Create_TrimsName(t *testing.T) {
	repo := new(mocks.MockTemplateRepo)
	svc := service.NewTemplateService(repo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(tpl *domain.EmailTemplate) bool {
		return tpl.Name == "Default" && tpl.Subject == "Invoice #{{invoice_number}}"
	})).Return(nil)

	tpl, err := svc.Create(context.Background(), &service.TemplateInput{
		Name:    " Default ",
		Subject: "Invoice #{{invoice_number}}",
		Body:    "<p>Hi {{client_name}}</p>",
	})

	require.NoError(t, err)
	assert.Equal(t, "<p>Hi {{client_name}}</p>", tpl.Body)
	repo.AssertExpectations(t)
}

func TestTemplateService_Update_NotFound(t *testing.T) {
	repo := new(mocks.MockTemplateRepo)
	svc := service.NewTemplateService(repo)
	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrTemplateNotFound)

	_, err := svc.Update(context.Background(), id, &service.TemplateInput{Name: "Default", Subject: "Hi"})

	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestStatsService_GetStats_UsesBusinessToday(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	loc := time.FixedZone("BRT", -3*60*60)

	// 01:30 UTC on the 15th is still the 14th at UTC-3.
	now := time.Date(2026, 3, 15, 1, 30, 0, 0, time.UTC)
	clock := service.Clock{Now: func() time.Time { return now }, Location: loc}
	svc := service.NewStatsService(repo, clock)

	expected := &domain.DashboardStats{TotalRevenue: "100.00", InvoiceCount: 1}
	repo.On("GetDashboardStats", mock.Anything, mock.MatchedBy(func(today time.Time) bool {
		y, m, d := today.Date()
		return y == 2026 && m == time.March && d == 14 && today.Hour() == 0
	})).Return(expected, nil)

	stats, err := svc.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, expected, stats)
	repo.AssertExpectations(t)
}
