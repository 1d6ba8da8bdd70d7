// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"regexp"
	"strings"
)

// Attachment is a file carried on an outgoing [Message].
type Attachment struct {
	ContentType string
	FileName    string
	Bytes       []byte
}

// Message mirrors the original source's mailgun Message struct (spec.md §6).
type Message struct {
	To         string
	Subject    string
	Text       string
	HTML       string
	Attachment *Attachment
}

// MailgunClient sends email through Mailgun's HTTP API.
type MailgunClient struct {
	apiKey      string
	endpoint    string
	fromAddress string
	httpClient  *http.Client
}

// NewMailgunClient constructs a [MailgunClient] from the CEREAL_MAILGUN_*
// and CEREAL_FROM_EMAIL_ADDRESS settings (spec.md §11).
func NewMailgunClient(apiKey, endpoint, fromAddress string) *MailgunClient {
	return &MailgunClient{apiKey: apiKey, endpoint: endpoint, fromAddress: fromAddress, httpClient: http.DefaultClient}
}

// SetHTTPClient overrides the outbound HTTP client, for tests that need to
// substitute a fake transport instead of hitting the real Mailgun API.
func (c *MailgunClient) SetHTTPClient(hc *http.Client) { c.httpClient = hc }

// SendMessage posts message as a multipart form to Mailgun's messages
// endpoint, Basic-authenticated as "api" (spec.md §6).
func (c *MailgunClient) SendMessage(ctx context.Context, message Message) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"to":      message.To,
		"subject": message.Subject,
		"from":    c.fromAddress,
	}
	if message.Text != "" {
		fields["text"] = message.Text
	}
	if message.HTML != "" {
		fields["html"] = message.HTML
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("notify: write mailgun field %q: %w", name, err)
		}
	}
	if message.Attachment != nil {
		part, err := writer.CreatePart(attachmentHeader(*message.Attachment))
		if err != nil {
			return fmt.Errorf("notify: create mailgun attachment part: %w", err)
		}
		if _, err := part.Write(message.Attachment.Bytes); err != nil {
			return fmt.Errorf("notify: write mailgun attachment: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("notify: close mailgun form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return fmt.Errorf("notify: build mailgun request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth("api", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send mailgun message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: mailgun returned status %d", resp.StatusCode)
	}
	return nil
}

// SendEPUBFile sends a chapter's EPUB bytes as an attachment, subject used
// as both the text and HTML body (spec.md §4.E, matching the original
// source's send_epub_file).
func (c *MailgunClient) SendEPUBFile(ctx context.Context, epub []byte, email, chapterTitle, subject string) error {
	return c.SendMessage(ctx, Message{
		To:      email,
		Subject: subject,
		Text:    subject,
		HTML:    subject,
		Attachment: &Attachment{
			ContentType: "application/epub+zip",
			FileName:    sanitizeFilename(chapterTitle + ".epub"),
			Bytes:       epub,
		},
	})
}

func attachmentHeader(a Attachment) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachment"; filename=%q`, a.FileName))
	h.Set("Content-Type", a.ContentType)
	return h
}

var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)

// sanitizeFilename strips characters that are unsafe in a filesystem path
// or Content-Disposition header, replacing the original source's
// sanitize_filename crate call.
func sanitizeFilename(name string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(name, "_")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "attachment.epub"
	}
	return cleaned
}
