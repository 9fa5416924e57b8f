package notif

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"smsvault/internal/common"
	"smsvault/internal/config"
	"smsvault/internal/logger"
)

const emailSendTimeout = 15 * time.Second

var smsEmailTemplate = template.Must(template.New("sms").Parse(`<html>
  <body>
    <h2>New SMS from {{.Brand}}</h2>
    <p><strong>Sender:</strong> {{.Sender}}</p>
    <p><strong>Time:</strong> {{.TS}}</p>
    <p><strong>Message:</strong></p>
    <p>{{.Body}}</p>
  </body>
</html>
`))

type EmailNotificationObserver struct {
	emailService common.EmailService
	to           []string
	brand        string
	log          logger.Logger
}

func NewEmailNotificationObserver(emailService common.EmailService, cfg config.EmailConfig, log logger.Logger) *EmailNotificationObserver {
	var to []string
	for _, addr := range strings.Split(cfg.ToEmail, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}

	return &EmailNotificationObserver{
		emailService: emailService,
		to:           to,
		brand:        cfg.Brand,
		log:          log,
	}
}

func (e *EmailNotificationObserver) Name() string {
	return "email_observer"
}

func (e *EmailNotificationObserver) Update(event common.NotificationEvent) error {
	if event.Type != common.SMSReceivedType {
		return nil
	}
	if len(e.to) == 0 {
		return fmt.Errorf("no recipient configured")
	}

	body, err := e.render(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), emailSendTimeout)
	defer cancel()

	email := common.EmailData{
		To:      e.to,
		Subject: fmt.Sprintf("New SMS from %s", e.brand),
		Body:    body,
		IsHTML:  true,
	}
	if err := e.emailService.SendEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.log.Infof("Email notification sent for message %s", event.MessageID)
	return nil
}

// render escapes every field; sender and body are attacker controlled.
func (e *EmailNotificationObserver) render(event common.NotificationEvent) (string, error) {
	var buf bytes.Buffer
	err := smsEmailTemplate.Execute(&buf, struct {
		Brand  string
		Sender string
		TS     string
		Body   string
	}{e.brand, event.Sender, event.TS, event.Body})
	if err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
