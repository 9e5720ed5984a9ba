package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoConfig configures transactional email to the admin inbox.
type BrevoConfig struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	AdminEmail  string
	Endpoint    string
}

// Configured reports whether every required setting is present.
func (c BrevoConfig) Configured() bool {
	return c.APIKey != "" && c.SenderEmail != "" && c.AdminEmail != ""
}

// BrevoNotifier emails the admin about new bookings and rental requests.
type BrevoNotifier struct {
	cfg    BrevoConfig
	client *http.Client
}

// NewBrevoNotifier sends events as transactional email.
func NewBrevoNotifier(cfg BrevoConfig) *BrevoNotifier {
	if cfg.Endpoint == "" {
		cfg.Endpoint = brevoEndpoint
	}
	if cfg.SenderName == "" {
		cfg.SenderName = "Scooter Rental"
	}
	return &BrevoNotifier{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmail struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	TextContent string         `json:"textContent"`
}

func (n *BrevoNotifier) Notify(ctx context.Context, event Event) error {
	switch event.Type {
	case EventBookingCreated, EventBookingPaid, EventRentalRequestCreated, EventBookingOverdue:
	default:
		return nil
	}

	body, err := json.Marshal(brevoEmail{
		Sender:      brevoAddress{Email: n.cfg.SenderEmail, Name: n.cfg.SenderName},
		To:          []brevoAddress{{Email: n.cfg.AdminEmail}},
		Subject:     event.Subject,
		TextContent: event.Message,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
