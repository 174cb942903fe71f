package usecase

import (
	"context"
	"crypto/subtle"
	"encoding/json"

	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/ticketstore"
)

// ClaimAccount starts the guest claim: a verification code is sent to the account email and
// the submitted profile fields wait in the claim ticket until the code is verified.
func (u *identityUseCase) ClaimAccount(ctx context.Context, input *identityDomain.ClaimAccountInput) error {
	input.Email = identityDomain.NormalizeEmail(input.Email)
	if err := input.Validate(); err != nil {
		return err
	}

	account, err := u.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if !account.IsGuest() {
		return identityDomain.ErrAccountAlreadyCredentialed
	}

	orders, err := u.accounts.CountOrders(ctx, account.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to count orders")
	}
	if orders == 0 {
		return identityDomain.ErrNoOrderHistory
	}

	code, err := u.codes.Generate(identityDomain.ClaimCodeLength)
	if err != nil {
		return apperrors.Wrap(err, "failed to generate verification code")
	}

	// The pending phone number is PII and sits in the ticket store until verification.
	phone, err := u.cipher.Encrypt(input.Phone)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt phone")
	}

	ticket := identityDomain.ClaimTicket{
		AccountID: account.ID,
		CodeHash:  u.cipher.Hash(code),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     phone,
		ExpiresAt: u.now().UTC().Add(u.config.ClaimTicketTTL),
	}
	value, err := json.Marshal(ticket)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal claim ticket")
	}

	if err := u.tickets.Put(ctx, identityDomain.ClaimKey(account.ID), string(value), u.config.ClaimTicketTTL); err != nil {
		return apperrors.Wrap(err, "failed to store claim ticket")
	}

	u.audit(ctx, &identityDomain.AuditEvent{
		EventType: identityDomain.EventClaimCodeIssued,
		AccountID: &account.ID,
		Email:     account.Email,
		IP:        input.IP,
	})
	u.notify(ctx, account.Email, identityDomain.TemplateClaimCode, map[string]string{
		"code": code,
	})
	return nil
}

// VerifyClaim completes the guest claim.
//
// Every comparison first reserves an attempt with the store's atomic Increment, so concurrent
// guesses can never exceed ClaimMaxAttempts. The new password is checked before any attempt
// is reserved, so only code comparisons count against the cap.
func (u *identityUseCase) VerifyClaim(
	ctx context.Context,
	input *identityDomain.VerifyClaimInput,
) (*identityDomain.AuthResult, error) {
	account, err := u.accounts.GetByEmail(ctx, identityDomain.NormalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if !account.IsGuest() {
		return nil, identityDomain.ErrAccountAlreadyCredentialed
	}
	if err := identityDomain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	key := identityDomain.ClaimKey(account.ID)
	entry, err := u.tickets.Get(ctx, key)
	if err != nil {
		if apperrors.Is(err, ticketstore.ErrNotFound) {
			return nil, identityDomain.ErrNoCodeFound
		}
		return nil, apperrors.Wrap(err, "failed to load claim ticket")
	}

	var ticket identityDomain.ClaimTicket
	if err := json.Unmarshal([]byte(entry.Value), &ticket); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal claim ticket")
	}

	if ticket.Expired(u.now()) {
		u.discardTicket(ctx, key)
		return nil, identityDomain.ErrCodeExpired
	}

	attempt, err := u.tickets.Increment(ctx, key)
	if err != nil {
		if apperrors.Is(err, ticketstore.ErrNotFound) {
			return nil, identityDomain.ErrNoCodeFound
		}
		return nil, apperrors.Wrap(err, "failed to reserve claim attempt")
	}

	maxAttempts := int64(u.config.ClaimMaxAttempts)
	if attempt > maxAttempts {
		u.discardTicket(ctx, key)
		return nil, identityDomain.ErrTooManyAttempts
	}

	codeHash := u.cipher.Hash(input.Code)
	if subtle.ConstantTimeCompare([]byte(codeHash), []byte(ticket.CodeHash)) != 1 {
		if attempt >= maxAttempts {
			u.discardTicket(ctx, key)
			return nil, identityDomain.ErrTooManyAttempts
		}
		return nil, identityDomain.ErrInvalidCode
	}

	consumed, err := u.tickets.CompareAndDelete(ctx, key, entry.Value)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to consume claim ticket")
	}
	if !consumed {
		return nil, identityDomain.ErrNoCodeFound
	}

	phone, err := u.cipher.Decrypt(ticket.Phone)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt phone")
	}

	hash, err := u.passwords.Hash(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	account.SetPassword(hash, u.now().UTC())
	account.MergeProfile(ticket.FirstName, ticket.LastName, phone)
	if err := u.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	u.audit(ctx, &identityDomain.AuditEvent{
		EventType: identityDomain.EventAccountClaimed,
		AccountID: &account.ID,
		Email:     account.Email,
		IP:        input.IP,
	})

	return u.authenticate(account)
}
