package sms

import (
	"context"
	"fmt"
	"strings"

	"smsvault/internal/codec"
	"smsvault/internal/common"
	"smsvault/internal/config"
	"smsvault/internal/format"
	"smsvault/internal/logger"
)

var ErrEmptyBody = &common.ValidationError{Field: "sms", Message: "SMS content cannot be empty"}

type Service struct {
	repo     common.MessageRepository
	notifier common.Notifier
	key      []byte
	log      logger.Logger
}

func NewService(
	cfg *config.Config,
	repo common.MessageRepository,
	notifier common.Notifier,
	log logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		key:      []byte(cfg.Security.EncryptionKey),
		log:      log,
	}
}

// Submit normalizes msg, stores its body encrypted and returns the new id.
// The notifier gets the plaintext only after the insert succeeded; whatever
// happens to the notification, the message stays stored.
func (s *Service) Submit(ctx context.Context, msg common.Message) (string, error) {
	body := msg.SMS
	if format.IsHex(body) {
		body = decodeHexOrKeep(body, s.log)
	}

	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyBody
	}

	if format.LooksHexUTF16(body) {
		body = decodeHexOrKeep(body, s.log)
	}

	sender := msg.Sender
	if format.LooksHexUTF16(sender) {
		sender = decodeHexOrKeep(sender, s.log)
	}

	plaintext := body

	envelope, err := codec.Encrypt(body, s.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt message: %w", err)
	}

	id, err := s.repo.Insert(ctx, sender, envelope, msg.TS)
	if err != nil {
		return "", fmt.Errorf("failed to store message: %w", err)
	}

	s.log.Infof("Message stored: id=%s, sender=%s", id, sender)

	if s.notifier != nil {
		s.notifier.Notify(ctx, common.NotificationEvent{
			Type:      common.SMSReceivedType,
			MessageID: id,
			Sender:    sender,
			TS:        msg.TS,
			Body:      plaintext,
		})
	}

	return id, nil
}

// List returns every stored message, newest first, with readable bodies.
func (s *Service) List(ctx context.Context) ([]*common.Message, error) {
	messages, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	for _, m := range messages {
		m.SMS = NormalizeStored(m.SMS, s.key, s.log)
	}
	return messages, nil
}

func (s *Service) Get(ctx context.Context, id string) (*common.Message, error) {
	msg, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	msg.SMS = NormalizeStored(msg.SMS, s.key, s.log)
	return msg, nil
}
