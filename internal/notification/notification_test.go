package notification

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
	outboxDomain "github.com/allisson/identity/internal/outbox/domain"
)

type MockOutboxEventCreator struct {
	mock.Mock
}

func (m *MockOutboxEventCreator) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newTestCipher(t *testing.T) cryptoService.SecretCipher {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	cipher, err := cryptoService.NewSecretCipher(key)
	require.NoError(t, err)
	return cipher
}

func testMessage() Message {
	return Message{
		To:       "guest@example.com",
		Template: "claim_code",
		Data:     map[string]string{"code": "4821"},
	}
}

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sender := NewLogSender(newTestCipher(t), logger)

	require.NoError(t, sender.Send(context.Background(), testMessage()))

	out := buf.String()
	assert.Contains(t, out, `"template":"claim_code"`)
	assert.Contains(t, out, `"data_keys":["code"]`)
	assert.Contains(t, out, ".com")
	assert.NotContains(t, out, "guest@example.com")
	assert.NotContains(t, out, "4821")
}

func TestOutboxSender_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_StoresEncryptedPayload", func(t *testing.T) {
		cipher := newTestCipher(t)
		repo := &MockOutboxEventCreator{}
		sender := NewOutboxSender(repo, cipher)

		var stored *outboxDomain.OutboxEvent
		repo.On("Create", ctx, mock.AnythingOfType("*domain.OutboxEvent")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*outboxDomain.OutboxEvent)
			}).
			Return(nil)

		require.NoError(t, sender.Send(ctx, testMessage()))
		require.NotNil(t, stored)

		assert.Equal(t, EventType, stored.EventType)
		assert.Equal(t, outboxDomain.OutboxEventStatusPending, stored.Status)
		assert.Equal(t, uuid.Version(7), stored.ID.Version())
		assert.NotContains(t, stored.Payload, "guest@example.com")
		assert.NotContains(t, stored.Payload, "4821")
		assert.Contains(t, stored.Payload, `"ciphertext":"v1:`)

		decoded, err := decodePayload(cipher, stored.Payload)
		require.NoError(t, err)
		assert.Equal(t, testMessage(), decoded)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &MockOutboxEventCreator{}
		sender := NewOutboxSender(repo, newTestCipher(t))

		repo.On("Create", ctx, mock.Anything).Return(errors.New("database error"))

		err := sender.Send(ctx, testMessage())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to enqueue notification")
	})
}

func TestDecodePayload(t *testing.T) {
	cipher := newTestCipher(t)

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		_, err := decodePayload(cipher, "not json")
		assert.Error(t, err)
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		payload, err := encodePayload(newTestCipher(t), testMessage())
		require.NoError(t, err)

		_, err = decodePayload(cipher, payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decrypt notification")
	})
}

func newEvent(t *testing.T, cipher cryptoService.SecretCipher) *outboxDomain.OutboxEvent {
	t.Helper()
	payload, err := encodePayload(cipher, testMessage())
	require.NoError(t, err)
	return &outboxDomain.OutboxEvent{EventType: EventType, Payload: payload}
}

func TestWebhookDispatcher_Process(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("Success_PostsDecryptedMessage", func(t *testing.T) {
		cipher := newTestCipher(t)

		var received Message
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &received)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		dispatcher := NewWebhookDispatcher(WebhookConfig{URL: server.URL}, cipher, logger)

		require.NoError(t, dispatcher.Process(ctx, newEvent(t, cipher)))
		assert.Equal(t, testMessage(), received)
	})

	t.Run("Error_Non2xx", func(t *testing.T) {
		cipher := newTestCipher(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		dispatcher := NewWebhookDispatcher(WebhookConfig{URL: server.URL}, cipher, logger)

		err := dispatcher.Process(ctx, newEvent(t, cipher))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("Error_UndecryptablePayload", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		dispatcher := NewWebhookDispatcher(WebhookConfig{URL: server.URL}, newTestCipher(t), logger)

		err := dispatcher.Process(ctx, newEvent(t, newTestCipher(t)))
		assert.Error(t, err)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("Error_ContextCanceledWhileThrottled", func(t *testing.T) {
		cipher := newTestCipher(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		dispatcher := NewWebhookDispatcher(
			WebhookConfig{URL: server.URL, RatePerSecond: 0.001},
			cipher,
			logger,
		)
		require.NoError(t, dispatcher.Process(ctx, newEvent(t, cipher)))

		shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		err := dispatcher.Process(shortCtx, newEvent(t, cipher))
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "rate limiter"))
	})
}
