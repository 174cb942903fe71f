package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/allisson/identity/internal/config"
	identityHTTP "github.com/allisson/identity/internal/identity/http"
	identityRepository "github.com/allisson/identity/internal/identity/repository"
	identityService "github.com/allisson/identity/internal/identity/service"
	identityUseCase "github.com/allisson/identity/internal/identity/usecase"
	"github.com/allisson/identity/internal/ticketstore"
)

type identityComponents struct {
	redisClient       *redis.Client
	ticketStore       ticketstore.Store
	accountRepository identityUseCase.AccountRepository
	auditRepository   identityUseCase.AuditEventRepository
	tokenIssuer       identityService.TokenIssuer
	auditLogUseCase   identityUseCase.AuditLogUseCase
	identityUseCase   identityUseCase.IdentityUseCase
	identityHandler   *identityHTTP.IdentityHandler

	ticketStoreInit     sync.Once
	accountRepoInit     sync.Once
	auditRepoInit       sync.Once
	tokenIssuerInit     sync.Once
	auditLogUseCaseInit sync.Once
	identityUseCaseInit sync.Once
	identityHandlerInit sync.Once
}

// TicketStore returns the store for reset tickets, claim tickets and revoked tokens.
func (c *Container) TicketStore() (ticketstore.Store, error) {
	var err error
	c.ticketStoreInit.Do(func() {
		c.ticketStore, err = c.initTicketStore()
		if err != nil {
			c.initErrors["ticketStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ticketStore"]; exists {
		return nil, storedErr
	}
	return c.ticketStore, nil
}

// AccountRepository returns the account repository for the configured driver.
func (c *Container) AccountRepository() (identityUseCase.AccountRepository, error) {
	var err error
	c.accountRepoInit.Do(func() {
		c.accountRepository, err = c.initAccountRepository()
		if err != nil {
			c.initErrors["accountRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accountRepository"]; exists {
		return nil, storedErr
	}
	return c.accountRepository, nil
}

// AuditEventRepository returns the audit event repository for the configured driver.
func (c *Container) AuditEventRepository() (identityUseCase.AuditEventRepository, error) {
	var err error
	c.auditRepoInit.Do(func() {
		c.auditRepository, err = c.initAuditEventRepository()
		if err != nil {
			c.initErrors["auditRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepository"]; exists {
		return nil, storedErr
	}
	return c.auditRepository, nil
}

// TokenIssuer returns the JWT issuer.
func (c *Container) TokenIssuer() (identityService.TokenIssuer, error) {
	var err error
	c.tokenIssuerInit.Do(func() {
		c.tokenIssuer, err = identityService.NewTokenIssuer(identityService.TokenIssuerConfig{
			SigningSecret:   []byte(c.config.AuthTokenSigningSecret),
			Issuer:          c.config.AuthTokenIssuer,
			AccessTokenTTL:  c.config.AuthAccessTokenExpiration,
			RefreshTokenTTL: c.config.AuthRefreshTokenExpiration,
		})
		if err != nil {
			err = fmt.Errorf("failed to create token issuer: %w", err)
			c.initErrors["tokenIssuer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenIssuer"]; exists {
		return nil, storedErr
	}
	return c.tokenIssuer, nil
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (identityUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// IdentityUseCase returns the identity use case.
func (c *Container) IdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	var err error
	c.identityUseCaseInit.Do(func() {
		c.identityUseCase, err = c.initIdentityUseCase()
		if err != nil {
			c.initErrors["identityUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityUseCase"]; exists {
		return nil, storedErr
	}
	return c.identityUseCase, nil
}

// IdentityHandler returns the identity HTTP handler.
func (c *Container) IdentityHandler() (*identityHTTP.IdentityHandler, error) {
	var err error
	c.identityHandlerInit.Do(func() {
		c.identityHandler, err = c.initIdentityHandler()
		if err != nil {
			c.initErrors["identityHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityHandler"]; exists {
		return nil, storedErr
	}
	return c.identityHandler, nil
}

func (c *Container) initTicketStore() (ticketstore.Store, error) {
	switch c.config.TicketStoreDriver {
	case "", config.TicketStoreMemory:
		return ticketstore.NewMemoryStore(), nil
	case config.TicketStoreRedis:
		client, err := ticketstore.NewRedisClient(context.Background(), c.config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.redisClient = client
		return ticketstore.NewRedisStore(client, c.config.RedisKeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported ticket store driver: %s", c.config.TicketStoreDriver)
	}
}

func (c *Container) initAccountRepository() (identityUseCase.AccountRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for account repository: %w", err)
	}

	cipher, err := c.SecretCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get pii cipher for account repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLAccountRepository(db, cipher), nil
	case "mysql":
		return identityRepository.NewMySQLAccountRepository(db, cipher), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditEventRepository() (identityUseCase.AuditEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLAuditEventRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLAuditEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditLogUseCase creates the audit log use case. Without AUDIT_SIGNING_KEY events are
// stored unsigned.
func (c *Container) initAuditLogUseCase() (identityUseCase.AuditLogUseCase, error) {
	auditRepository, err := c.AuditEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event repository for audit log use case: %w", err)
	}

	var signer identityService.AuditSigner
	if c.config.AuditSigningKey != "" {
		signer, err = identityService.NewAuditSigner([]byte(c.config.AuditSigningKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create audit signer: %w", err)
		}
	}

	return identityUseCase.NewAuditLogUseCase(auditRepository, signer), nil
}

func (c *Container) initIdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	accountRepository, err := c.AccountRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get account repository for identity use case: %w", err)
	}

	store, err := c.TicketStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket store for identity use case: %w", err)
	}

	tokenIssuer, err := c.TokenIssuer()
	if err != nil {
		return nil, fmt.Errorf("failed to get token issuer for identity use case: %w", err)
	}

	passwordHasher, err := identityService.NewPasswordHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	cipher, err := c.SecretCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get pii cipher for identity use case: %w", err)
	}

	sender, err := c.NotificationSender()
	if err != nil {
		return nil, fmt.Errorf("failed to get notification sender for identity use case: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for identity use case: %w", err)
	}

	baseUseCase := identityUseCase.NewIdentityUseCase(
		identityUseCase.Config{
			ResetTicketTTL:   c.config.ResetTicketExpiration,
			ClaimTicketTTL:   c.config.ClaimCodeExpiration,
			ClaimMaxAttempts: c.config.ClaimMaxAttempts,
		},
		accountRepository,
		store,
		tokenIssuer,
		passwordHasher,
		identityService.NewCodeGenerator(),
		cipher,
		sender,
		auditLogUseCase,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for identity use case: %w", err)
		}
		return identityUseCase.NewIdentityUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initIdentityHandler() (*identityHTTP.IdentityHandler, error) {
	useCase, err := c.IdentityUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity use case for identity handler: %w", err)
	}

	cipher, err := c.SecretCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get pii cipher for identity handler: %w", err)
	}

	return identityHTTP.NewIdentityHandler(useCase, cipher, c.Logger()), nil
}
