package services

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/commerce"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the API client does not authenticate.
	ErrInvalidCredentials = errors.New("invalid client credentials")
	// ErrInvalidToken is returned for malformed, forged, or expired guest tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// GuestAuthService issues and validates short-lived guest shopper tokens.
type GuestAuthService struct {
	clientID   string
	secretHash []byte
	jwtSecret  []byte
	tokenTTL   time.Duration
	log        *zap.Logger
}

// NewGuestAuthService creates a new GuestAuthService. secretHash is the
// bcrypt hash of the API client secret.
func NewGuestAuthService(clientID, secretHash, jwtSecret string, tokenTTL time.Duration, log *zap.Logger) *GuestAuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GuestAuthService{
		clientID:   clientID,
		secretHash: []byte(secretHash),
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		log:        log,
	}
}

// LoginGuest authenticates the API client and returns a token for a fresh
// anonymous shopper.
func (s *GuestAuthService) LoginGuest(clientID, clientSecret string) (*commerce.TokenResponse, error) {
	if clientID != s.clientID {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.secretHash, []byte(clientSecret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	customerID := uuid.New().String()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id": customerID,
		"guest":       true,
		"exp":         now.Add(s.tokenTTL).Unix(),
		"iat":         now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &commerce.TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		CustomerID:  customerID,
	}, nil
}

// ValidateToken parses a guest token and returns its customer id.
func (s *GuestAuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.Debug("guest token rejected", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	customerID, _ := claims["customer_id"].(string)
	if customerID == "" {
		return "", fmt.Errorf("%w: missing customer_id", ErrInvalidToken)
	}
	return customerID, nil
}
