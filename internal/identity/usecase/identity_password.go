package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/ticketstore"
)

// ChangePassword replaces the password of an authenticated account.
func (u *identityUseCase) ChangePassword(ctx context.Context, input *identityDomain.ChangePasswordInput) error {
	account, err := u.accounts.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}

	if account.IsGuest() || !u.passwords.Verify(input.CurrentPassword, *account.PasswordHash) {
		return identityDomain.ErrInvalidCredentials
	}
	if err := identityDomain.ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	hash, err := u.passwords.Hash(input.NewPassword)
	if err != nil {
		return apperrors.Wrap(err, "failed to hash password")
	}

	account.SetPassword(hash, u.now().UTC())
	if err := u.accounts.Update(ctx, account); err != nil {
		return err
	}

	u.audit(ctx, &identityDomain.AuditEvent{
		EventType: identityDomain.EventPasswordChanged,
		AccountID: &account.ID,
		Email:     account.Email,
		IP:        input.IP,
	})
	u.notify(ctx, account.Email, identityDomain.TemplatePasswordChanged, nil)
	return nil
}

// ForgotPassword issues a reset secret when a credentialed account owns the email. The response
// is identical in every case so it cannot be used to probe for accounts.
func (u *identityUseCase) ForgotPassword(ctx context.Context, email, ip string) (string, error) {
	email = identityDomain.NormalizeEmail(email)

	if err := u.issueResetTicket(ctx, email, ip); err != nil {
		u.logger.ErrorContext(ctx, "failed to issue password reset",
			slog.String("email", u.cipher.MaskDefault(email)),
			slog.Any("error", err),
		)
	}
	return identityDomain.ForgotPasswordMessage, nil
}

func (u *identityUseCase) issueResetTicket(ctx context.Context, email, ip string) error {
	account, err := u.accounts.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, identityDomain.ErrAccountNotFound) {
			u.logger.DebugContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return err
	}
	if account.IsGuest() {
		u.logger.DebugContext(ctx, "password reset requested for guest account",
			slog.String("account_id", account.ID.String()))
		return nil
	}

	token, err := u.cipher.GenerateDefaultToken()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate reset token")
	}
	tokenHash := u.cipher.Hash(token)

	ticket := identityDomain.ResetTicket{
		AccountID: account.ID,
		TokenHash: tokenHash,
		ExpiresAt: u.now().UTC().Add(u.config.ResetTicketTTL),
	}
	value, err := json.Marshal(ticket)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal reset ticket")
	}

	// Drop the previous secret so at most one is live per account.
	accountKey := identityDomain.ResetAccountKey(account.ID)
	previous, err := u.tickets.Get(ctx, accountKey)
	switch {
	case err == nil:
		if err := u.tickets.Delete(ctx, identityDomain.ResetTokenKey(previous.Value)); err != nil {
			return apperrors.Wrap(err, "failed to delete previous reset ticket")
		}
	case !apperrors.Is(err, ticketstore.ErrNotFound):
		return apperrors.Wrap(err, "failed to load previous reset ticket")
	}

	if err := u.tickets.Put(ctx, identityDomain.ResetTokenKey(tokenHash), string(value), u.config.ResetTicketTTL); err != nil {
		return apperrors.Wrap(err, "failed to store reset ticket")
	}
	if err := u.tickets.Put(ctx, accountKey, tokenHash, u.config.ResetTicketTTL); err != nil {
		return apperrors.Wrap(err, "failed to store reset ticket pointer")
	}

	u.audit(ctx, &identityDomain.AuditEvent{
		EventType: identityDomain.EventPasswordResetRequested,
		AccountID: &account.ID,
		Email:     account.Email,
		IP:        ip,
	})
	u.notify(ctx, account.Email, identityDomain.TemplatePasswordReset, map[string]string{
		"token": token,
	})
	return nil
}

// ResetPassword consumes a reset secret and sets the new password.
func (u *identityUseCase) ResetPassword(ctx context.Context, input *identityDomain.ResetPasswordInput) error {
	if input.Token == "" {
		return identityDomain.ErrInvalidOrExpiredToken
	}

	tokenHash := u.cipher.Hash(input.Token)
	tokenKey := identityDomain.ResetTokenKey(tokenHash)

	entry, err := u.tickets.Get(ctx, tokenKey)
	if err != nil {
		if apperrors.Is(err, ticketstore.ErrNotFound) {
			return identityDomain.ErrInvalidOrExpiredToken
		}
		return apperrors.Wrap(err, "failed to load reset ticket")
	}

	var ticket identityDomain.ResetTicket
	if err := json.Unmarshal([]byte(entry.Value), &ticket); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal reset ticket")
	}

	if ticket.Expired(u.now()) {
		u.discardTicket(ctx, tokenKey)
		return identityDomain.ErrInvalidOrExpiredToken
	}

	accountKey := identityDomain.ResetAccountKey(ticket.AccountID)
	pointer, err := u.tickets.Get(ctx, accountKey)
	if err != nil && !apperrors.Is(err, ticketstore.ErrNotFound) {
		return apperrors.Wrap(err, "failed to load reset ticket pointer")
	}
	if err != nil || pointer.Value != tokenHash {
		u.discardTicket(ctx, tokenKey)
		return identityDomain.ErrInvalidOrExpiredToken
	}

	if err := identityDomain.ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	consumed, err := u.tickets.CompareAndDelete(ctx, tokenKey, entry.Value)
	if err != nil {
		return apperrors.Wrap(err, "failed to consume reset ticket")
	}
	if !consumed {
		return identityDomain.ErrInvalidOrExpiredToken
	}

	account, err := u.accounts.GetByID(ctx, ticket.AccountID)
	if err != nil {
		return err
	}

	hash, err := u.passwords.Hash(input.NewPassword)
	if err != nil {
		return apperrors.Wrap(err, "failed to hash password")
	}

	account.SetPassword(hash, u.now().UTC())
	if err := u.accounts.Update(ctx, account); err != nil {
		return err
	}

	if _, err := u.tickets.CompareAndDelete(ctx, accountKey, tokenHash); err != nil {
		u.logger.ErrorContext(ctx, "failed to delete reset ticket pointer", slog.Any("error", err))
	}

	u.audit(ctx, &identityDomain.AuditEvent{
		EventType: identityDomain.EventPasswordResetCompleted,
		AccountID: &account.ID,
		Email:     account.Email,
		IP:        input.IP,
	})
	return nil
}

// discardTicket deletes a ticket found to be unusable. Failures are logged only since the
// store expires the key on its own.
func (u *identityUseCase) discardTicket(ctx context.Context, key string) {
	if err := u.tickets.Delete(ctx, key); err != nil {
		u.logger.ErrorContext(ctx, "failed to delete ticket", slog.Any("error", err))
	}
}
