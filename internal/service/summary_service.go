package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"invoicer/internal/domain"
	"invoicer/internal/logger"
	"invoicer/internal/port"
)

// SummaryResult is a generated client-facing line item description.
type SummaryResult struct {
	Success bool   `json:"success"`
	Summary string `json:"summary"`
	Model   string `json:"model"`
}

// SummaryService turns internal work notes into invoice descriptions.
type SummaryService interface {
	Summarize(ctx context.Context, rawDescription string) (*SummaryResult, error)
}

type summaryService struct {
	summarizer port.Summarizer
	log        zerolog.Logger
}

// NewSummaryService creates a new SummaryService implementation.
func NewSummaryService(summarizer port.Summarizer) SummaryService {
	return &summaryService{summarizer: summarizer, log: logger.WithComponent("summary")}
}

func (s *summaryService) Summarize(ctx context.Context, rawDescription string) (*SummaryResult, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return nil, domain.NewValidationError("rawDescription", "is required")
	}
	summary, err := s.summarizer.Summarize(ctx, rawDescription)
	if err != nil {
		s.log.Error().Err(err).Str("model", s.summarizer.Model()).Msg("summary generation failed")
		return nil, err
	}
	s.log.Info().
		Int("input_length", len(rawDescription)).
		Int("output_length", len(summary)).
		Msg("summary generated")
	return &SummaryResult{Success: true, Summary: summary, Model: s.summarizer.Model()}, nil
}
