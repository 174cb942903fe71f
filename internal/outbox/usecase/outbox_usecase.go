// Package usecase implements the outbox processor: a polling loop that claims pending events
// inside a transaction, hands each to the processor registered for its type and records the
// outcome.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/identity/internal/database"
	"github.com/allisson/identity/internal/outbox/domain"
)

// Config controls polling. MaxRetries is the number of failed deliveries after which an event
// is marked failed.
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor delivers a single event. A returned error counts as a failed attempt.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase drains the outbox table.
type OutboxUseCase struct {
	config    Config
	txManager database.TxManager
	repo      OutboxEventRepository
	processor EventProcessor
	logger    *slog.Logger
	clock     func() time.Time
}

func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	repo OutboxEventRepository,
	processor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OutboxUseCase{
		config:    config,
		txManager: txManager,
		repo:      repo,
		processor: processor,
		logger:    logger,
		clock:     time.Now,
	}
}

// Start polls every Interval until ctx is done. Batch errors are logged and polling goes on.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.InfoContext(ctx, "outbox worker started",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("outbox worker stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.ErrorContext(ctx, "outbox batch failed", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents handles one batch. The rows stay locked (SKIP LOCKED) until the transaction
// ends, so concurrent workers never deliver the same event twice.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.repo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}
		if len(events) > 0 {
			uc.logger.InfoContext(ctx, "delivering outbox events", slog.Int("count", len(events)))
		}

		for _, event := range events {
			uc.deliver(ctx, event)
			if err := uc.repo.Update(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

// deliver runs the processor and records the outcome on event.
func (uc *OutboxUseCase) deliver(ctx context.Context, event *domain.OutboxEvent) {
	err := uc.processor.Process(ctx, event)
	if err == nil {
		event.MarkProcessed(uc.clock().UTC())
		return
	}

	event.MarkFailedAttempt(err, uc.config.MaxRetries)
	uc.logger.ErrorContext(ctx, "outbox delivery failed",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
		slog.Int("retries", event.Retries),
		slog.String("status", string(event.Status)),
		slog.Any("error", err),
	)
}

// EventRouter dispatches each event to the processor registered for its type.
type EventRouter struct {
	routes map[string]EventProcessor
}

func NewEventRouter() *EventRouter {
	return &EventRouter{routes: map[string]EventProcessor{}}
}

// Handle registers processor for eventType. A later registration for the same type wins.
func (r *EventRouter) Handle(eventType string, processor EventProcessor) *EventRouter {
	r.routes[eventType] = processor
	return r
}

func (r *EventRouter) Process(ctx context.Context, event *domain.OutboxEvent) error {
	if processor, ok := r.routes[event.EventType]; ok {
		return processor.Process(ctx, event)
	}
	return fmt.Errorf("no processor registered for event type %q", event.EventType)
}
