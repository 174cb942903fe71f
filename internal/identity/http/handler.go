// Package http provides the HTTP adapter for the identity flows: JSON handlers, bearer
// authentication and per-IP rate limiting of the credential endpoints.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/identity/http/dto"
	identityUseCase "github.com/allisson/identity/internal/identity/usecase"
	"github.com/allisson/identity/internal/httputil"
	customValidation "github.com/allisson/identity/internal/validation"
)

const (
	claimCodeSentMessage   = "If the account can be claimed, a verification code has been sent."
	passwordChangedMessage = "Password changed."
	passwordResetMessage   = "Password reset. Log in with your new password."
	loggedOutMessage       = "Logged out."
)

// IdentityHandler handles HTTP requests for the identity flows.
type IdentityHandler struct {
	identityUseCase identityUseCase.IdentityUseCase
	cipher          cryptoService.SecretCipher
	logger          *slog.Logger
}

// NewIdentityHandler creates a new identity handler with required dependencies.
func NewIdentityHandler(
	identityUseCase identityUseCase.IdentityUseCase,
	cipher cryptoService.SecretCipher,
	logger *slog.Logger,
) *IdentityHandler {
	return &IdentityHandler{
		identityUseCase: identityUseCase,
		cipher:          cipher,
		logger:          logger,
	}
}

// bind parses the JSON body and runs the request's own validation.
func (h *IdentityHandler) bind(c *gin.Context, req interface{ Validate() error }) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}

// RegisterHandler creates a credentialed account.
// POST /v1/auth/register - Returns 201 Created with the account and a token pair.
func (h *IdentityHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.identityUseCase.Register(c.Request.Context(), &identityDomain.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAuthResultToResponse(result, h.cipher.MaskDefault))
}

// LoginHandler authenticates with email and password.
// POST /v1/auth/login - Returns 200 OK with the account and a token pair.
func (h *IdentityHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.identityUseCase.Login(c.Request.Context(), &identityDomain.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthResultToResponse(result, h.cipher.MaskDefault))
}

// RefreshHandler exchanges a refresh token for a new token pair.
// POST /v1/auth/refresh
func (h *IdentityHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest
	if !h.bind(c, &req) {
		return
	}

	pair, err := h.identityUseCase.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// LogoutHandler revokes the presented tokens. The access token comes from the Authorization
// header and the refresh token from the optional JSON body; at least one is required.
// POST /v1/auth/logout
func (h *IdentityHandler) LogoutHandler(c *gin.Context) {
	var req dto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	accessToken, _ := bearerToken(c)
	err := h.identityUseCase.Logout(c.Request.Context(), &identityDomain.LogoutInput{
		AccessToken:  accessToken,
		RefreshToken: req.RefreshToken,
		IP:           c.ClientIP(),
	})
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: loggedOutMessage})
}

// ForgotPasswordHandler requests a password reset. The response is identical whether or
// not the email belongs to an account.
// POST /v1/auth/password/forgot - Returns 202 Accepted.
func (h *IdentityHandler) ForgotPasswordHandler(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	message, err := h.identityUseCase.ForgotPassword(c.Request.Context(), req.Email, c.ClientIP())
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: message})
}

// ResetPasswordHandler sets a new password using a reset token.
// POST /v1/auth/password/reset
func (h *IdentityHandler) ResetPasswordHandler(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.identityUseCase.ResetPassword(c.Request.Context(), &identityDomain.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
		IP:          c.ClientIP(),
	})
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: passwordResetMessage})
}

// ChangePasswordHandler changes the password of the authenticated account.
// POST /v1/auth/password/change - Requires a Bearer access token.
func (h *IdentityHandler) ChangePasswordHandler(c *gin.Context) {
	claims, ok := GetClaims(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.identityUseCase.ChangePassword(c.Request.Context(), &identityDomain.ChangePasswordInput{
		AccountID:       claims.AccountID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		IP:              c.ClientIP(),
	})
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: passwordChangedMessage})
}

// ClaimHandler sends a verification code to the owner of a guest account.
// POST /v1/auth/claim - Returns 202 Accepted.
func (h *IdentityHandler) ClaimHandler(c *gin.Context) {
	var req dto.ClaimRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.identityUseCase.ClaimAccount(c.Request.Context(), &identityDomain.ClaimAccountInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IP:        c.ClientIP(),
	})
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: claimCodeSentMessage})
}

// VerifyClaimHandler completes a guest claim and logs the account in.
// POST /v1/auth/claim/verify
func (h *IdentityHandler) VerifyClaimHandler(c *gin.Context) {
	var req dto.VerifyClaimRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.identityUseCase.VerifyClaim(c.Request.Context(), &identityDomain.VerifyClaimInput{
		Email:    req.Email,
		Code:     req.Code,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthResultToResponse(result, h.cipher.MaskDefault))
}

// MeHandler returns the authenticated account.
// GET /v1/auth/me - Requires a Bearer access token.
func (h *IdentityHandler) MeHandler(c *gin.Context) {
	claims, ok := GetClaims(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	account, err := h.identityUseCase.GetAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccountToResponse(account, h.cipher.MaskDefault))
}
