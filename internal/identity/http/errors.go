package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/identity/http/dto"
	"github.com/allisson/identity/internal/httputil"
)

// errorCodes gives every public identity error a stable machine-readable code.
var errorCodes = []struct {
	err  error
	code string
}{
	{identityDomain.ErrInvalidCredentials, "invalid_credentials"},
	{identityDomain.ErrAccountInactive, "account_inactive"},
	{identityDomain.ErrInvalidToken, "invalid_token"},
	{identityDomain.ErrInvalidOrExpiredToken, "invalid_or_expired_token"},
	{identityDomain.ErrNoCodeFound, "no_code_found"},
	{identityDomain.ErrCodeExpired, "code_expired"},
	{identityDomain.ErrInvalidCode, "invalid_code"},
	{identityDomain.ErrTooManyAttempts, "too_many_attempts"},
	{identityDomain.ErrWeakPassword, "weak_password"},
	{identityDomain.ErrAccountNotFound, "account_not_found"},
	{identityDomain.ErrAccountAlreadyRegistered, "account_already_registered"},
	{identityDomain.ErrAccountAlreadyCredentialed, "account_already_credentialed"},
	{identityDomain.ErrNoOrderHistory, "no_order_history"},
}

// writeError renders identity errors. A guest account collision carries the order count so
// the client can offer the claim flow.
func writeError(c *gin.Context, err error, logger *slog.Logger) {
	var guestErr *identityDomain.GuestAccountError
	if apperrors.As(err, &guestErr) {
		logger.Info("registration hit guest account", slog.Int64("order_count", guestErr.OrderCount))
		c.JSON(http.StatusConflict, dto.GuestAccountResponse{
			Error:      "guest_account_exists",
			Message:    httputil.PublicMessage(identityDomain.ErrGuestAccountExists),
			OrderCount: guestErr.OrderCount,
		})
		return
	}

	for _, e := range errorCodes {
		if apperrors.Is(err, e.err) {
			httputil.HandleCodedErrorGin(c, err, e.code, logger)
			return
		}
	}
	httputil.HandleErrorGin(c, err, logger)
}
