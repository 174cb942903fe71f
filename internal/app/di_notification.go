package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/allisson/identity/internal/config"
	"github.com/allisson/identity/internal/notification"
	outboxRepository "github.com/allisson/identity/internal/outbox/repository"
	outboxUseCase "github.com/allisson/identity/internal/outbox/usecase"
)

const webhookTimeout = 10 * time.Second

type notificationComponents struct {
	notificationSender notification.Sender
	outboxRepository   outboxUseCase.OutboxEventRepository
	outboxUseCase      *outboxUseCase.OutboxUseCase

	notificationSenderInit sync.Once
	outboxRepositoryInit   sync.Once
	outboxUseCaseInit      sync.Once
}

// NotificationSender returns the sender selected by NOTIFICATION_DRIVER.
func (c *Container) NotificationSender() (notification.Sender, error) {
	var err error
	c.notificationSenderInit.Do(func() {
		c.notificationSender, err = c.initNotificationSender()
		if err != nil {
			c.initErrors["notificationSender"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["notificationSender"]; exists {
		return nil, storedErr
	}
	return c.notificationSender, nil
}

// OutboxRepository returns the outbox event repository for the configured driver.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	var err error
	c.outboxRepositoryInit.Do(func() {
		c.outboxRepository, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepository"]; exists {
		return nil, storedErr
	}
	return c.outboxRepository, nil
}

// OutboxUseCase returns the worker that delivers queued notifications to the webhook.
func (c *Container) OutboxUseCase() (*outboxUseCase.OutboxUseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

func (c *Container) initNotificationSender() (notification.Sender, error) {
	cipher, err := c.SecretCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get pii cipher for notification sender: %w", err)
	}

	switch c.config.NotificationDriver {
	case "", config.NotificationLog:
		return notification.NewLogSender(cipher, c.Logger()), nil
	case config.NotificationOutbox:
		repository, err := c.OutboxRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get outbox repository for notification sender: %w", err)
		}
		return notification.NewOutboxSender(repository, cipher), nil
	default:
		return nil, fmt.Errorf("unsupported notification driver: %s", c.config.NotificationDriver)
	}
}

func (c *Container) initOutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOutboxUseCase creates the outbox worker with the webhook dispatcher registered for
// notification events.
func (c *Container) initOutboxUseCase() (*outboxUseCase.OutboxUseCase, error) {
	if c.config.NotificationWebhookURL == "" {
		return nil, fmt.Errorf("notification webhook url is not configured")
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	repository, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	cipher, err := c.SecretCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get pii cipher for outbox use case: %w", err)
	}

	logger := c.Logger()

	dispatcher := notification.NewWebhookDispatcher(notification.WebhookConfig{
		URL:           c.config.NotificationWebhookURL,
		RatePerSecond: c.config.NotificationRatePerSec,
		Timeout:       webhookTimeout,
	}, cipher, logger)

	router := outboxUseCase.NewEventRouter().Handle(notification.EventType, dispatcher)

	return outboxUseCase.NewOutboxUseCase(outboxUseCase.Config{
		Interval:   c.config.OutboxInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
	}, txManager, repository, router, logger), nil
}
