package port

import "context"

// Attachment is a file carried by an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// MailMessage is one outgoing HTML email.
type MailMessage struct {
	From        string
	To          []string
	CC          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer delivers email through a transport and returns its message id.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) (string, error)
}
