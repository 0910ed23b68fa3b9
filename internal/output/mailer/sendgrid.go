package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const sendgridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Client delivers rendered emails through SendGrid.
type Client struct {
	apiKey   string
	from     string
	endpoint string
	http     *http.Client
	logger   *zerolog.Logger
}

func NewClient(apiKey, from string, logger *zerolog.Logger) *Client {
	return &Client{
		apiKey:   apiKey,
		from:     from,
		endpoint: sendgridEndpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type sendgridAddress struct {
	Email string `json:"email"`
}

type sendgridPayload struct {
	Personalizations []struct {
		To []sendgridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendgridAddress `json:"from"`
	Subject string          `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

// Send delivers one HTML email. SendGrid answers 202 on acceptance; any
// other status is an error.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	payload := sendgridPayload{
		From:    sendgridAddress{Email: c.from},
		Subject: subject,
	}
	payload.Personalizations = append(payload.Personalizations, struct {
		To []sendgridAddress `json:"to"`
	}{To: []sendgridAddress{{Email: to}}})
	payload.Content = append(payload.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/html", Value: html})

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))

		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, detail)
	}

	c.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")

	return nil
}
