package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicer/internal/domain"
	"invoicer/internal/service"
	"invoicer/mocks"
)

func TestSummaryService_Summarize(t *testing.T) {
	summarizer := new(mocks.MockSummarizer)
	svc := service.NewSummaryService(summarizer)

	summarizer.On("Summarize", mock.Anything, "spent 4 hours fixing login").Return("Login bug fix", nil)
	summarizer.On("Model").Return("llama3.2")

	result, err := svc.Summarize(context.Background(), "spent 4 hours fixing login")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Login bug fix", result.Summary)
	assert.Equal(t, "llama3.2", result.Model)
}

func TestSummaryService_Summarize_EmptyInput(t *testing.T) {
	summarizer := new(mocks.MockSummarizer)
	svc := service.NewSummaryService(summarizer)

	_, err := svc.Summarize(context.Background(), "   ")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}

func TestSummaryService_Summarize_Unavailable(t *testing.T) {
	summarizer := new(mocks.MockSummarizer)
	svc := service.NewSummaryService(summarizer)

	summarizer.On("Summarize", mock.Anything, "notes").Return("", domain.ErrSummarizerUnavailable)
	summarizer.On("Model").Return("llama3.2")

	_, err := svc.Summarize(context.Background(), "notes")
	assert.ErrorIs(t, err, domain.ErrSummarizerUnavailable)
}
