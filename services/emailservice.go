package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DigestMailer is the email-delivery collaborator. Both sends are fire and
// forget from the job's point of view; the mail service composes the digest
// content itself.
type DigestMailer interface {
	SendDailyDigest(ctx context.Context, userEmail string) error
	SendWeeklyDigest(ctx context.Context, userEmail string) error
}

// HTTPDigestMailer invokes the mail service's digest endpoints.
type HTTPDigestMailer struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPDigestMailerFromEnv() *HTTPDigestMailer {
	return &HTTPDigestMailer{
		BaseURL: strings.TrimRight(os.Getenv("EMAIL_SERVICE_URL"), "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *HTTPDigestMailer) SendDailyDigest(ctx context.Context, userEmail string) error {
	return m.post(ctx, "/email/daily-digest", userEmail)
}

func (m *HTTPDigestMailer) SendWeeklyDigest(ctx context.Context, userEmail string) error {
	return m.post(ctx, "/email/weekly-digest-enhanced", userEmail)
}

func (m *HTTPDigestMailer) post(ctx context.Context, path, userEmail string) error {
	payload, err := json.Marshal(map[string]string{"userEmail": userEmail})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("email service request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
