// Package notification delivers user-facing messages (welcome mail, reset links, claim codes).
//
// Two senders exist. LogSender writes a structured log line and is meant for development.
// OutboxSender stores the message, encrypted, in the outbox table, joining a transaction
// carried by ctx when there is one. The outbox worker later hands it to WebhookDispatcher.
package notification

import (
	"context"
)

// EventType is the outbox event type carrying notification messages.
const EventType = "notification.requested"

// Message is a templated notification addressed to one recipient.
type Message struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data,omitempty"`
}

// Sender hands a message off for delivery.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
