// Package mail delivers notification jobs through a Brevo-compatible
// transactional email API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/island-notify/internal/config"
	"github.com/couchcryptid/island-notify/internal/domain"
)

// Client implements pipeline.Notifier over the HTTP email API.
type Client struct {
	apiKey        string
	httpClient    *http.Client
	baseURL       string
	senderName    string
	senderEmail   string
	subjectPrefix string
	logger        *slog.Logger
}

// NewClient creates an email client from the mail configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		apiKey:        cfg.MailAPIKey,
		httpClient:    &http.Client{Timeout: cfg.MailTimeout},
		baseURL:       cfg.MailAPIURL,
		senderName:    cfg.MailSenderName,
		senderEmail:   cfg.MailSenderEmail,
		subjectPrefix: cfg.MailSubjectPrefix,
		logger:        logger,
	}
}

// Send delivers one job as a single email: the first recipient in the "to"
// field, everyone else blind-copied. A job without recipients is a logged
// no-op.
func (c *Client) Send(ctx context.Context, job domain.Job) error {
	if len(job.Recipients) == 0 {
		c.logger.Info("no recipients, skipping email", "subject", job.Subject)
		return nil
	}

	payload := emailRequest{
		Sender:      address{Name: c.senderName, Email: c.senderEmail},
		To:          []address{{Email: job.Recipients[0]}},
		Subject:     c.subjectPrefix + job.Subject,
		HTMLContent: job.Body,
	}
	for _, addr := range job.Recipients[1:] {
		payload.BCC = append(payload.BCC, address{Email: addr})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mail: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mail: create request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail: API error: status %d: %s", resp.StatusCode, excerpt)
	}

	c.logger.Info("email sent", "subject", payload.Subject, "recipients", len(job.Recipients))
	return nil
}

// Email API request types.

type address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type emailRequest struct {
	Sender      address   `json:"sender"`
	To          []address `json:"to"`
	BCC         []address `json:"bcc,omitempty"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}
