package resend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"invoicer/internal/domain"
	"invoicer/internal/port"
)

// DefaultEndpoint is the Resend send-email API.
const DefaultEndpoint = "https://api.resend.com/emails"

type resendSender struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type sendRequest struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	CC          []string     `json:"cc,omitempty"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// NewResendSender creates a Mailer backed by the Resend HTTP API.
func NewResendSender(apiKey, endpoint string, timeout time.Duration) port.Mailer {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &resendSender{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *resendSender) Send(ctx context.Context, msg port.MailMessage) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("resend: api key not configured: %w", domain.ErrMissingConfiguration)
	}

	req := sendRequest{
		From:    msg.From,
		To:      msg.To,
		CC:      msg.CC,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, attachment{
			Filename: a.Filename,
			Content:  base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling resend request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating resend request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", &domain.UpstreamError{Service: "resend", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading resend response: %w", err)
	}

	var out sendResponse
	_ = json.Unmarshal(respBody, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := out.Message
		if message == "" {
			message = string(respBody)
		}
		return "", &domain.UpstreamError{Service: "resend", Status: resp.StatusCode, Message: message}
	}
	return out.ID, nil
}
