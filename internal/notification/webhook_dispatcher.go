package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
	apperrors "github.com/allisson/identity/internal/errors"
	outboxDomain "github.com/allisson/identity/internal/outbox/domain"
)

// WebhookConfig configures webhook delivery.
type WebhookConfig struct {
	URL           string
	RatePerSecond float64
	Timeout       time.Duration
}

// WebhookDispatcher processes notification outbox events by POSTing the decrypted message as
// JSON to a webhook. Any non-2xx response is a failed attempt and the event is retried by the
// outbox worker.
type WebhookDispatcher struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	cipher  cryptoService.SecretCipher
	logger  *slog.Logger
}

// NewWebhookDispatcher creates a WebhookDispatcher. A non-positive rate disables throttling.
func NewWebhookDispatcher(
	cfg WebhookConfig,
	cipher cryptoService.SecretCipher,
	logger *slog.Logger,
) *WebhookDispatcher {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebhookDispatcher{
		url:     cfg.URL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		cipher:  cipher,
		logger:  logger,
	}
}

// Process delivers a single notification event.
func (d *WebhookDispatcher) Process(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	msg, err := decodePayload(d.cipher, event.Payload)
	if err != nil {
		return err
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return apperrors.Wrap(err, "webhook rate limiter")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal webhook body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, "failed to build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", event.ID.String())

	resp, err := d.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, "webhook request failed")
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	d.logger.DebugContext(ctx, "notification delivered",
		slog.String("event_id", event.ID.String()),
		slog.String("template", msg.Template),
		slog.String("to", d.cipher.MaskDefault(msg.To)),
	)
	return nil
}
