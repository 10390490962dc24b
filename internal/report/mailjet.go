package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/setevik/hostwatch/internal/config"
)

// ErrNotConfigured reports that mail cannot be dispatched because API
// credentials or addresses are missing. Callers treat it as a skip
// condition, not a delivery failure.
var ErrNotConfigured = errors.New("mail not configured")

// Notifier dispatches built messages. The production implementation is
// Mailjet; tests substitute fakes.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Mailjet sends messages through the Mailjet v3.1 send API.
type Mailjet struct {
	cfg    *config.Config
	client *http.Client
}

// NewMailjet creates a Mailjet notifier from the mail configuration.
func NewMailjet(cfg *config.Config) *Mailjet {
	return &Mailjet{
		cfg: cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Payload types mirror the v3.1 send schema.
type mailjetPayload struct {
	Messages []mailjetMessage `json:"Messages"`
}

type mailjetMessage struct {
	From     mailjetAddress   `json:"From"`
	To       []mailjetAddress `json:"To"`
	Subject  string           `json:"Subject"`
	TextPart string           `json:"TextPart"`
}

type mailjetAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

// Send posts msg to the configured endpoint with basic auth. Returns
// ErrNotConfigured when credentials or addresses are missing so callers
// can record the dispatch as skipped.
func (m *Mailjet) Send(ctx context.Context, msg Message) error {
	mail := m.cfg.Mail
	if mail.APIKey == "" || mail.APISecret == "" || mail.From == "" || mail.To == "" {
		return ErrNotConfigured
	}

	payload := mailjetPayload{
		Messages: []mailjetMessage{{
			From:     mailjetAddress{Email: mail.From, Name: mail.FromName},
			To:       []mailjetAddress{{Email: mail.To}},
			Subject:  msg.Subject,
			TextPart: msg.Body,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mailjet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mail.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating mailjet request: %w", err)
	}
	req.SetBasicAuth(mail.APIKey, mail.APISecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailjet returned status %d", resp.StatusCode)
	}

	slog.Info("email sent", "to", mail.To, "subject", msg.Subject)
	return nil
}
