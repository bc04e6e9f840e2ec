// Package email holds helpers shared by the mail transports.
package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"invoicer/internal/port"
)

const base64LineLen = 76

// BuildMIME renders msg as a multipart/mixed RFC 5322 message with a
// quoted-printable HTML part followed by base64 attachments.
func BuildMIME(msg port.MailMessage, date time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := &bytes.Buffer{}
	writeHeader(header, "From", msg.From)
	writeHeader(header, "To", strings.Join(msg.To, ", "))
	if len(msg.CC) > 0 {
		writeHeader(header, "Cc", strings.Join(msg.CC, ", "))
	}
	writeHeader(header, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(header, "Date", date.Format(time.RFC1123Z))
	writeHeader(header, "MIME-Version", "1.0")
	writeHeader(header, "Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", mw.Boundary()))
	header.WriteString("\r\n")

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating html part: %w", err)
	}
	qp := quotedprintable.NewWriter(htmlPart)
	if _, err := qp.Write([]byte(msg.HTML)); err != nil {
		return nil, fmt.Errorf("writing html part: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("closing html part: %w", err)
	}

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, a.Filename)},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", a.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, fmt.Errorf("creating attachment part: %w", err)
		}
		if _, err := part.Write(wrapBase64(a.Content)); err != nil {
			return nil, fmt.Errorf("writing attachment %s: %w", a.Filename, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}
	return append(header.Bytes(), buf.Bytes()...), nil
}

func writeHeader(b *bytes.Buffer, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

func wrapBase64(content []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(content)
	var out bytes.Buffer
	for len(encoded) > base64LineLen {
		out.WriteString(encoded[:base64LineLen])
		out.WriteString("\r\n")
		encoded = encoded[base64LineLen:]
	}
	out.WriteString(encoded)
	out.WriteString("\r\n")
	return out.Bytes()
}
