package common

// Message is a forwarded SMS as it travels over the API. ID is nil until the
// store assigns one and is always text on the wire, whatever the backend uses.
type Message struct {
	ID     *string `json:"id"`
	Sender string  `json:"sender"`
	SMS    string  `json:"sms"`
	TS     string  `json:"ts"`
}

type NotificationType string

const (
	SMSReceivedType NotificationType = "sms_received"
)

// NotificationEvent carries the plaintext of a message that was just stored.
// It must never hold the encrypted body.
type NotificationEvent struct {
	Type      NotificationType
	MessageID string
	Sender    string
	TS        string
	Body      string
}
