package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/models"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, roles []string, expiresIn time.Duration) string {
	t.Helper()

	claims := &models.Claims{
		UserID: uuid.New(),
		Email:  "jo@example.com",
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)

	return token
}

func protectedEcho() (http.Handler, *bool) {
	called := new(bool)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.ClaimsFromContext(r.Context()); !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		*called = true
		w.WriteHeader(http.StatusOK)
	}), called
}

func TestAuthenticate(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testKey)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		next, called := protectedEcho()
		req := httptest.NewRequest("GET", "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, []string{models.RoleCustomer}, time.Hour))
		rec := httptest.NewRecorder()

		// Act
		auth.Authenticate(next).ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
	})

	t.Run("Failure - Missing Header", func(t *testing.T) {
		next, called := protectedEcho()
		req := httptest.NewRequest("GET", "/api/v1/users/profile", nil)
		rec := httptest.NewRecorder()

		auth.Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("Failure - Malformed Header", func(t *testing.T) {
		next, called := protectedEcho()
		req := httptest.NewRequest("GET", "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		auth.Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("Failure - Expired Token", func(t *testing.T) {
		next, called := protectedEcho()
		req := httptest.NewRequest("GET", "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, []string{models.RoleCustomer}, -time.Hour))
		rec := httptest.NewRecorder()

		auth.Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("Failure - Wrong Signing Key", func(t *testing.T) {
		next, called := protectedEcho()

		other := middleware.NewAuthMiddleware([]byte("different-key"))
		req := httptest.NewRequest("GET", "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, []string{models.RoleCustomer}, time.Hour))
		rec := httptest.NewRecorder()

		other.Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})
}

func TestRequireCustomer(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testKey)

	t.Run("Success - Customer Role", func(t *testing.T) {
		next, called := protectedEcho()
		req := httptest.NewRequest("GET", "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, []string{models.RoleCustomer}, time.Hour))
		rec := httptest.NewRecorder()

		auth.RequireCustomer(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
	})

	t.Run("Failure - Authenticated Without Customer Role", func(t *testing.T) {
		next, called := protectedEcho()
		req := httptest.NewRequest("GET", "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, []string{"staff"}, time.Hour))
		rec := httptest.NewRecorder()

		auth.RequireCustomer(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, *called)
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		next, called := protectedEcho()
		req := httptest.NewRequest("GET", "/api/v1/cart", nil)
		rec := httptest.NewRecorder()

		auth.RequireCustomer(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})
}
