package notif

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smsvault/internal/common"
	"smsvault/internal/config"
	"smsvault/internal/logger"
)

const (
	EmailProviderResend = "resend"
	EmailProviderLog    = "log"

	DefaultResendURL = "https://api.resend.com/emails"
)

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// ResendEmailService sends mail through the Resend HTTP API.
type ResendEmailService struct {
	apiKey string
	apiURL string
	from   string
	client *http.Client
	log    logger.Logger
}

func NewResendEmailService(cfg config.EmailConfig, log logger.Logger) *ResendEmailService {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultResendURL
	}
	return &ResendEmailService{
		apiKey: cfg.APIKey,
		apiURL: apiURL,
		from:   cfg.FromEmail,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

func (s *ResendEmailService) SendEmail(ctx context.Context, email common.EmailData) error {
	payload := resendRequest{
		From:    s.from,
		To:      email.To,
		Subject: email.Subject,
	}
	if email.IsHTML {
		payload.HTML = email.Body
	} else {
		payload.Text = email.Body
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		s.log.Warnf("Email accepted but response unreadable: %v", err)
		return nil
	}
	s.log.Infof("Email accepted by Resend: id=%s", out.ID)
	return nil
}

// LogEmailService stands in when email is disabled.
type LogEmailService struct {
	log logger.Logger
}

func NewLogEmailService(log logger.Logger) *LogEmailService {
	return &LogEmailService{log: log}
}

func (s *LogEmailService) SendEmail(ctx context.Context, email common.EmailData) error {
	s.log.Infof("Email (not sent) - To: %s, Subject: %s", strings.Join(email.To, ", "), email.Subject)
	return nil
}

// NewEmailService picks the implementation the config asks for.
func NewEmailService(cfg *config.Config, log logger.Logger) common.EmailService {
	if cfg.Email.Enabled && strings.EqualFold(cfg.Email.Provider, EmailProviderResend) {
		return NewResendEmailService(cfg.Email, log)
	}
	return NewLogEmailService(log)
}
