package common

import (
	"context"
)

type MessageRepository interface {
	Insert(ctx context.Context, sender, body, ts string) (string, error)
	All(ctx context.Context) ([]*Message, error)
	ByID(ctx context.Context, id string) (*Message, error)
}

// Notifier is told about every message after it has been stored. It reports
// nothing back: a failed delivery is the notifier's problem, not the writer's.
type Notifier interface {
	Notify(ctx context.Context, event NotificationEvent)
}

type Observer interface {
	Update(event NotificationEvent) error
	Name() string
}

type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	Notify(event NotificationEvent)
	NotifyAsync(event NotificationEvent)
}

type EmailService interface {
	SendEmail(ctx context.Context, email EmailData) error
}

type EmailData struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	IsHTML  bool     `json:"is_html"`
}
