package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
	apperrors "github.com/allisson/identity/internal/errors"
	outboxDomain "github.com/allisson/identity/internal/outbox/domain"
)

// OutboxEventCreator persists outbox events.
type OutboxEventCreator interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// envelope is the outbox payload. The whole message is encrypted so recipient addresses and
// one-time secrets never sit in the table as plaintext.
type envelope struct {
	Ciphertext string `json:"ciphertext"`
}

// OutboxSender enqueues messages in the outbox table.
type OutboxSender struct {
	repo   OutboxEventCreator
	cipher cryptoService.SecretCipher
	now    func() time.Time
}

// NewOutboxSender creates an OutboxSender.
func NewOutboxSender(repo OutboxEventCreator, cipher cryptoService.SecretCipher) *OutboxSender {
	return &OutboxSender{repo: repo, cipher: cipher, now: time.Now}
}

// Send encrypts msg and stores it as a pending outbox event.
func (s *OutboxSender) Send(ctx context.Context, msg Message) error {
	payload, err := encodePayload(s.cipher, msg)
	if err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate outbox event id")
	}

	now := s.now().UTC()
	event := &outboxDomain.OutboxEvent{
		ID:        id,
		EventType: EventType,
		Payload:   payload,
		Status:    outboxDomain.OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to enqueue notification")
	}
	return nil
}

func encodePayload(cipher cryptoService.SecretCipher, msg Message) (string, error) {
	plaintext, err := json.Marshal(msg)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal notification")
	}

	ciphertext, err := cipher.Encrypt(string(plaintext))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encrypt notification")
	}

	payload, err := json.Marshal(envelope{Ciphertext: ciphertext})
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal notification envelope")
	}
	return string(payload), nil
}

func decodePayload(cipher cryptoService.SecretCipher, payload string) (Message, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return Message{}, apperrors.Wrap(err, "failed to unmarshal notification envelope")
	}

	plaintext, err := cipher.Decrypt(env.Ciphertext)
	if err != nil {
		return Message{}, apperrors.Wrap(err, "failed to decrypt notification")
	}

	var msg Message
	if err := json.Unmarshal([]byte(plaintext), &msg); err != nil {
		return Message{}, apperrors.Wrap(err, "failed to unmarshal notification")
	}
	return msg, nil
}
