package email_test

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/email"
	"invoicer/internal/port"
)

func TestBuildMIME_ParsesBack(t *testing.T) {
	pdf := bytes.Repeat([]byte("%PDF-1.3 data "), 20)
	msg := port.MailMessage{
		From:    "Acme <billing@acme.test>",
		To:      []string{"ap@client.test"},
		CC:      []string{"cfo@client.test"},
		Subject: "Invoice #12 from Acme",
		HTML:    "<p>Hello Globex,</p><p>Please find attached invoice #12.</p>",
		Attachments: []port.Attachment{
			{Filename: "12.pdf", ContentType: "application/pdf", Content: pdf},
		},
	}

	raw, err := email.BuildMIME(msg, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Acme <billing@acme.test>", parsed.Header.Get("From"))
	assert.Equal(t, "ap@client.test", parsed.Header.Get("To"))
	assert.Equal(t, "cfo@client.test", parsed.Header.Get("Cc"))

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Invoice #12 from Acme", subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])

	htmlPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(htmlPart.Header.Get("Content-Type"), "text/html"))
	html, err := io.ReadAll(htmlPart)
	require.NoError(t, err)
	assert.Equal(t, msg.HTML, string(html))

	attPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "12.pdf", attPart.FileName())
	assert.Equal(t, "base64", attPart.Header.Get("Content-Transfer-Encoding"))
	encoded, err := io.ReadAll(attPart)
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(string(encoded)), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestBuildMIME_NoCCHeaderWhenEmpty(t *testing.T) {
	raw, err := email.BuildMIME(port.MailMessage{
		From:    "a@b.test",
		To:      []string{"c@d.test"},
		Subject: "Hi",
		HTML:    "<p>x</p>",
	}, time.Now())
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Empty(t, parsed.Header.Get("Cc"))
}
