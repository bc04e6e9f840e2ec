package ses

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"invoicer/internal/domain"
	"invoicer/internal/email"
	"invoicer/internal/port"
)

type sesSender struct {
	client *sesv2.Client
}

// NewSESSender creates an SES-backed Mailer. Messages are sent raw so that
// attachments survive.
func NewSESSender(region string) (port.Mailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{client: sesv2.NewFromConfig(cfg)}, nil
}

func (s *sesSender) Send(ctx context.Context, msg port.MailMessage) (string, error) {
	raw, err := email.BuildMIME(msg, time.Now())
	if err != nil {
		return "", fmt.Errorf("building MIME message: %w", err)
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &msg.From,
		Destination: &types.Destination{
			ToAddresses: msg.To,
			CcAddresses: msg.CC,
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	})
	if err != nil {
		return "", &domain.UpstreamError{Service: "ses", Message: err.Error(), Err: err}
	}
	if out.MessageId == nil {
		return "", nil
	}
	return *out.MessageId, nil
}
