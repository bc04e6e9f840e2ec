package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/config"
	"invoicer/internal/domain"
	summarizer "invoicer/internal/summarizer/openai"
)

func testConfig(baseURL string) *config.SummarizerConfig {
	return &config.SummarizerConfig{
		BaseURL:     baseURL,
		APIKey:      "ollama",
		Model:       "llama3.2",
		Temperature: 0.3,
		MaxTokens:   50,
		TimeoutSecs: 5,
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"Authentication bug fix"`, "Authentication bug fix"},
		{"  'Q1 roadmap planning'  \n", "Q1 roadmap planning"},
		{"User profile\nAPI   endpoint", "User profile API endpoint"},
		{"no quotes", "no quotes"},
		{`"`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, summarizer.Clean(tt.in))
	}
}

func TestSummarize_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3.2", body["model"])
		assert.EqualValues(t, 50, body["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"llama3.2",
			"choices":[{"index":0,"finish_reason":"stop",
			"message":{"role":"assistant","content":"\"Authentication bug fix\nand error handling\""}}]}`))
	}))
	defer srv.Close()

	s := summarizer.NewSummarizer(testConfig(srv.URL + "/v1"))
	got, err := s.Summarize(context.Background(), "Fixed critical bug in auth module")

	require.NoError(t, err)
	assert.Equal(t, "Authentication bug fix and error handling", got)
	assert.Equal(t, "llama3.2", s.Model())
}

func TestSummarize_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL + "/v1"
	srv.Close()

	s := summarizer.NewSummarizer(testConfig(baseURL))
	_, err := s.Summarize(context.Background(), "anything")

	assert.ErrorIs(t, err, domain.ErrSummarizerUnavailable)
}

func TestSummarize_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"model \"nope\" not found","type":"api_error"}}`))
	}))
	defer srv.Close()

	s := summarizer.NewSummarizer(testConfig(srv.URL + "/v1"))
	_, err := s.Summarize(context.Background(), "anything")

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.Status)
	assert.NotErrorIs(t, err, domain.ErrSummarizerUnavailable)
}
