package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/identity/usecase/mocks"
)

func newAuthenticatedRouter(uc *mocks.MockIdentityUseCase) *gin.Engine {
	router := gin.New()
	router.Use(AuthenticationMiddleware(uc, discardLogger()))
	router.GET("/protected", func(c *gin.Context) {
		claims, ok := GetClaims(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"account_id": claims.AccountID.String()})
	})
	return router
}

func TestAuthenticationMiddleware(t *testing.T) {
	t.Run("Success_ValidToken", func(t *testing.T) {
		uc := &mocks.MockIdentityUseCase{}
		accountID := uuid.Must(uuid.NewV7())
		uc.On("Authenticate", mock.Anything, "good-token").
			Return(&identityDomain.TokenClaims{AccountID: accountID, Type: identityDomain.TokenTypeAccess}, nil).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "BEARER good-token")
		newAuthenticatedRouter(uc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), accountID.String())
		uc.AssertExpectations(t)
	})

	t.Run("Error_MissingHeader", func(t *testing.T) {
		uc := &mocks.MockIdentityUseCase{}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		newAuthenticatedRouter(uc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		uc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("Error_WrongScheme", func(t *testing.T) {
		uc := &mocks.MockIdentityUseCase{}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		newAuthenticatedRouter(uc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_EmptyToken", func(t *testing.T) {
		uc := &mocks.MockIdentityUseCase{}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer    ")
		newAuthenticatedRouter(uc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_RevokedToken", func(t *testing.T) {
		uc := &mocks.MockIdentityUseCase{}
		uc.On("Authenticate", mock.Anything, "revoked").Return(nil, identityDomain.ErrInvalidToken).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer revoked")
		newAuthenticatedRouter(uc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
