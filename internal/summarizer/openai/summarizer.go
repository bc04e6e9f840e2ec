package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"invoicer/internal/config"
	"invoicer/internal/domain"
	"invoicer/internal/logger"
	"invoicer/internal/port"
)

const systemPrompt = `You are a professional invoice line item summarizer. Your task is to convert detailed internal work descriptions into concise, client-friendly one-line summaries.

Guidelines:
- Keep summaries under 10 words when possible
- Use professional, clear language
- Focus on the deliverable/outcome, not internal details
- Remove technical jargon and internal references
- Be specific but brief

Examples:
Input: "Fixed critical bug in user authentication module where users couldn't reset passwords - spent 4 hours debugging JWT token validation and implemented proper error handling"
Output: "Authentication bug fix and error handling improvements"

Input: "Developed new REST API endpoint for user profile updates including validation middleware, database schema changes, and comprehensive unit tests"
Output: "User profile API endpoint development"

Input: "Project management and client communication for Q1 roadmap planning including 3 meetings and documentation"
Output: "Q1 roadmap planning and project coordination"`

var whitespace = regexp.MustCompile(`\s+`)

type summarizer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	log         zerolog.Logger
}

// NewSummarizer creates a Summarizer for any OpenAI-compatible chat endpoint,
// such as a local Ollama server.
func NewSummarizer(cfg *config.SummarizerConfig) port.Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}

	return &summarizer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         logger.WithComponent("summarizer"),
	}
}

func (s *summarizer) Model() string {
	return s.model
}

func (s *summarizer) Summarize(ctx context.Context, rawDescription string) (string, error) {
	const op = "summarizer.Summarize"

	s.log.Debug().Str("model", s.model).Int("input_length", len(rawDescription)).Msg("requesting summary")

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Now summarize this description:\n\n%q\n\nOne-line summary:", rawDescription),
			},
		},
		Temperature: s.temperature,
		TopP:        0.9,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		if isConnectionError(err) {
			s.log.Error().Err(err).Msg("summarizer endpoint unreachable")
			return "", fmt.Errorf("%s: %w", op, domain.ErrSummarizerUnavailable)
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &domain.UpstreamError{Service: "summarizer", Status: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &domain.UpstreamError{Service: "summarizer", Status: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &domain.UpstreamError{Service: "summarizer", Message: "no response from model"}
	}

	summary := Clean(resp.Choices[0].Message.Content)
	s.log.Info().Int("output_length", len(summary)).Msg("summary generated")
	return summary, nil
}

// Clean trims one pair of surrounding quotes and collapses whitespace.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
