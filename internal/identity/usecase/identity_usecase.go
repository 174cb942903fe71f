package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityService "github.com/allisson/identity/internal/identity/service"
	"github.com/allisson/identity/internal/notification"
	"github.com/allisson/identity/internal/ticketstore"
)

// Config holds the ticket lifetimes and the claim attempt cap. Zero values fall back to the
// domain defaults.
type Config struct {
	ResetTicketTTL   time.Duration
	ClaimTicketTTL   time.Duration
	ClaimMaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.ResetTicketTTL <= 0 {
		c.ResetTicketTTL = identityDomain.DefaultResetTicketTTL
	}
	if c.ClaimTicketTTL <= 0 {
		c.ClaimTicketTTL = identityDomain.DefaultClaimTicketTTL
	}
	if c.ClaimMaxAttempts <= 0 {
		c.ClaimMaxAttempts = identityDomain.DefaultClaimMaxAttempts
	}
	return c
}

// identityUseCase implements IdentityUseCase. It holds no mutable state of its own; every
// piece of shared state lives in the account repository or the ticket store.
type identityUseCase struct {
	config    Config
	accounts  AccountRepository
	tickets   ticketstore.Store
	tokens    identityService.TokenIssuer
	passwords identityService.PasswordHasher
	codes     identityService.CodeGenerator
	cipher    cryptoService.SecretCipher
	notifier  notification.Sender
	auditSink AuditSink
	logger    *slog.Logger
	now       func() time.Time
}

// NewIdentityUseCase creates a new IdentityUseCase with the provided dependencies.
func NewIdentityUseCase(
	config Config,
	accounts AccountRepository,
	tickets ticketstore.Store,
	tokens identityService.TokenIssuer,
	passwords identityService.PasswordHasher,
	codes identityService.CodeGenerator,
	cipher cryptoService.SecretCipher,
	notifier notification.Sender,
	auditSink AuditSink,
	logger *slog.Logger,
) IdentityUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &identityUseCase{
		config:    config.withDefaults(),
		accounts:  accounts,
		tickets:   tickets,
		tokens:    tokens,
		passwords: passwords,
		codes:     codes,
		cipher:    cipher,
		notifier:  notifier,
		auditSink: auditSink,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a credentialed account.
func (u *identityUseCase) Register(
	ctx context.Context,
	input *identityDomain.RegisterInput,
) (*identityDomain.AuthResult, error) {
	input.Email = identityDomain.NormalizeEmail(input.Email)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	existing, err := u.accounts.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		if existing.IsGuest() {
			orders, countErr := u.accounts.CountOrders(ctx, existing.ID)
			if countErr != nil {
				return nil, apperrors.Wrap(countErr, "failed to count orders")
			}
			return nil, &identityDomain.GuestAccountError{OrderCount: orders}
		}
		return nil, identityDomain.ErrAccountAlreadyRegistered
	case !apperrors.Is(err, identityDomain.ErrAccountNotFound):
		return nil, apperrors.Wrap(err, "failed to look up account")
	}

	hash, err := u.passwords.Hash(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate account id")
	}

	now := u.now().UTC()
	account := &identityDomain.Account{
		ID:           id,
		Email:        input.Email,
		PasswordHash: &hash,
		Status:       identityDomain.StatusActive,
		Role:         identityDomain.RoleCustomer,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	u.audit(ctx, &identityDomain.AuditEvent{
		EventType: identityDomain.EventAccountRegistered,
		AccountID: &account.ID,
		Email:     account.Email,
		IP:        input.IP,
		UserAgent: input.UserAgent,
	})
	u.notify(ctx, account.Email, identityDomain.TemplateWelcome, map[string]string{
		"first_name": account.FirstName,
	})

	return u.authenticate(account)
}

// Login authenticates by email and password.
func (u *identityUseCase) Login(
	ctx context.Context,
	input *identityDomain.LoginInput,
) (*identityDomain.AuthResult, error) {
	email := identityDomain.NormalizeEmail(input.Email)

	failure := func(accountID *uuid.UUID, reason string, err error) (*identityDomain.AuthResult, error) {
		u.audit(ctx, &identityDomain.AuditEvent{
			EventType: identityDomain.EventLoginFailure,
			AccountID: accountID,
			Email:     email,
			IP:        input.IP,
			UserAgent: input.UserAgent,
			Metadata:  map[string]any{"reason": reason},
		})
		return nil, err
	}

	account, err := u.accounts.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, identityDomain.ErrAccountNotFound) {
			return failure(nil, "account_not_found", identityDomain.ErrInvalidCredentials)
		}
		return nil, apperrors.Wrap(err, "failed to look up account")
	}

	if !account.IsActive() {
		return failure(&account.ID, "account_inactive", identityDomain.ErrAccountInactive)
	}
	if account.IsGuest() {
		return failure(&account.ID, "guest_account", identityDomain.ErrInvalidCredentials)
	}
	if !u.passwords.Verify(input.Password, *account.PasswordHash) {
		return failure(&account.ID, "invalid_password", identityDomain.ErrInvalidCredentials)
	}

	account.RecordLogin(input.IP, u.now().UTC())
	if err := u.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	u.audit(ctx, &identityDomain.AuditEvent{
		EventType: identityDomain.EventLoginSuccess,
		AccountID: &account.ID,
		Email:     account.Email,
		IP:        input.IP,
		UserAgent: input.UserAgent,
	})

	return u.authenticate(account)
}

// Refresh exchanges a valid refresh token for a new pair.
func (u *identityUseCase) Refresh(ctx context.Context, refreshToken string) (*identityDomain.TokenPair, error) {
	claims, err := u.tokens.Verify(refreshToken, identityDomain.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if err := u.ensureNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}

	account, err := u.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if apperrors.Is(err, identityDomain.ErrAccountNotFound) {
			return nil, identityDomain.ErrInvalidToken
		}
		return nil, err
	}
	if !account.IsActive() {
		return nil, identityDomain.ErrAccountInactive
	}

	return u.tokens.Issue(account.ID, account.Email, account.Role)
}

// Logout denylists the jti of each presented token for the rest of its lifetime.
func (u *identityUseCase) Logout(ctx context.Context, input *identityDomain.LogoutInput) error {
	if input.AccessToken == "" && input.RefreshToken == "" {
		return identityDomain.ErrInvalidToken
	}

	var revoked []*identityDomain.TokenClaims
	for _, presented := range []struct {
		token     string
		tokenType identityDomain.TokenType
	}{
		{input.AccessToken, identityDomain.TokenTypeAccess},
		{input.RefreshToken, identityDomain.TokenTypeRefresh},
	} {
		if presented.token == "" {
			continue
		}
		claims, err := u.tokens.Verify(presented.token, presented.tokenType)
		if err != nil {
			return err
		}
		revoked = append(revoked, claims)
	}

	now := u.now()
	for _, claims := range revoked {
		ttl := claims.ExpiresAt.Sub(now)
		if ttl <= 0 {
			continue
		}
		if err := u.tickets.Put(ctx, identityDomain.DenylistKey(claims.ID), string(claims.Type), ttl); err != nil {
			return apperrors.Wrap(err, "failed to revoke token")
		}
	}

	accountID := revoked[0].AccountID
	u.audit(ctx, &identityDomain.AuditEvent{
		EventType: identityDomain.EventLogout,
		AccountID: &accountID,
		IP:        input.IP,
		Metadata:  map[string]any{"revoked_tokens": len(revoked)},
	})
	return nil
}

// Authenticate verifies an access token and rejects revoked ones.
func (u *identityUseCase) Authenticate(ctx context.Context, accessToken string) (*identityDomain.TokenClaims, error) {
	claims, err := u.tokens.Verify(accessToken, identityDomain.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	if err := u.ensureNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}
	return claims, nil
}

// GetAccount returns the account by id.
func (u *identityUseCase) GetAccount(ctx context.Context, id uuid.UUID) (*identityDomain.Account, error) {
	return u.accounts.GetByID(ctx, id)
}

// ensureNotRevoked fails closed: a ticket store error rejects the token.
func (u *identityUseCase) ensureNotRevoked(ctx context.Context, tokenID string) error {
	_, err := u.tickets.Get(ctx, identityDomain.DenylistKey(tokenID))
	switch {
	case err == nil:
		return identityDomain.ErrInvalidToken
	case apperrors.Is(err, ticketstore.ErrNotFound):
		return nil
	default:
		return apperrors.Wrap(err, "failed to check token revocation")
	}
}

func (u *identityUseCase) authenticate(account *identityDomain.Account) (*identityDomain.AuthResult, error) {
	tokens, err := u.tokens.Issue(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, err
	}
	return &identityDomain.AuthResult{Account: account, Tokens: tokens}, nil
}

// audit records an event. Failures are logged and never interrupt the flow.
func (u *identityUseCase) audit(ctx context.Context, event *identityDomain.AuditEvent) {
	id, err := uuid.NewV7()
	if err != nil {
		u.logger.ErrorContext(ctx, "failed to generate audit event id", slog.Any("error", err))
		return
	}
	event.ID = id
	event.CreatedAt = u.now().UTC()

	if err := u.auditSink.Record(ctx, event); err != nil {
		u.logger.ErrorContext(ctx, "failed to record audit event",
			slog.String("event_type", string(event.EventType)),
			slog.Any("error", err),
		)
	}
}

// notify sends a message. Failures are logged and never interrupt the flow.
func (u *identityUseCase) notify(ctx context.Context, to, template string, data map[string]string) {
	err := u.notifier.Send(ctx, notification.Message{To: to, Template: template, Data: data})
	if err != nil {
		u.logger.ErrorContext(ctx, "failed to send notification",
			slog.String("template", template),
			slog.String("to", u.cipher.MaskDefault(to)),
			slog.Any("error", err),
		)
	}
}
