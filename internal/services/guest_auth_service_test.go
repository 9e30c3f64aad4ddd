package services_test

import (
	"errors"
	"testing"
	"time"

	"storefront/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newGuestAuth(t *testing.T) *services.GuestAuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("client-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	return services.NewGuestAuthService("client-id", string(hash), testJWTSecret, 30*time.Minute, nil)
}

func TestGuestAuthService_LoginGuest(t *testing.T) {
	auth := newGuestAuth(t)

	resp, err := auth.LoginGuest("client-id", "client-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, 1800, resp.ExpiresIn)

	customerID, err := auth.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.CustomerID, customerID)

	_, err = auth.LoginGuest("client-id", "wrong")
	assert.True(t, errors.Is(err, services.ErrInvalidCredentials))

	_, err = auth.LoginGuest("other-client", "client-secret")
	assert.True(t, errors.Is(err, services.ErrInvalidCredentials))
}

func TestGuestAuthService_ValidateToken(t *testing.T) {
	auth := newGuestAuth(t)

	_, err := auth.ValidateToken("invalid.token.string")
	assert.True(t, errors.Is(err, services.ErrInvalidToken))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id": "c-1",
		"exp":         jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredString, _ := expired.SignedString([]byte(testJWTSecret))
	_, err = auth.ValidateToken(expiredString)
	assert.True(t, errors.Is(err, services.ErrInvalidToken))

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id": "c-1",
		"exp":         jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	forgedString, _ := forged.SignedString([]byte("another_secret"))
	_, err = auth.ValidateToken(forgedString)
	assert.Error(t, err)

	noCustomer := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	noCustomerString, _ := noCustomer.SignedString([]byte(testJWTSecret))
	_, err = auth.ValidateToken(noCustomerString)
	assert.True(t, errors.Is(err, services.ErrInvalidToken))
}
