package relay

import (
	"bytes"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/folio-cms/folio/internal/model"
)

// buildMessage renders msg as a multipart/alternative RFC 5322 message with a
// plain-text and an HTML part. Visitor input never reaches a header except
// through mime/mail encoding, so it cannot inject headers.
func buildMessage(from, to string, msg model.ContactMessage, now time.Time) ([]byte, error) {
	replyTo, err := mail.ParseAddress(msg.Email)
	if err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}
	replyTo.Name = msg.Name

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []struct{ key, value string }{
		{"From", (&mail.Address{Address: from}).String()},
		{"To", (&mail.Address{Address: to}).String()},
		{"Reply-To", replyTo.String()},
		{"Subject", mime.QEncoding.Encode("utf-8", Subject(msg))},
		{"Date", now.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.key, h.value)
	}
	buf.WriteString("\r\n")

	if err := writePart(mw, "text/plain", plainBody(msg)); err != nil {
		return nil, err
	}
	if err := writePart(mw, "text/html", htmlBody(msg)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType + "; charset=utf-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func plainBody(msg model.ContactMessage) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nSubject: %s\n\nMessage:\n%s\n",
		msg.Name, msg.Email, msg.Subject, msg.Message)
}

func htmlBody(msg model.ContactMessage) string {
	var b strings.Builder
	b.WriteString("<h3>New contact form submission</h3>\n")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>\n", html.EscapeString(msg.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>\n", html.EscapeString(msg.Email))
	fmt.Fprintf(&b, "<p><strong>Subject:</strong> %s</p>\n", html.EscapeString(msg.Subject))
	b.WriteString("<p><strong>Message:</strong></p>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>"))
	return b.String()
}
