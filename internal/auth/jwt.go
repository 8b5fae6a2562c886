package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Victorious-hub/Open-Graph/internal/config"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

type (
	Claims struct {
		jwt.RegisteredClaims
		TokenType string `json:"token_type"`
	}

	TokenPair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}

	Manager struct {
		secretKey  []byte
		accessTTL  time.Duration
		refreshTTL time.Duration
		now        func() time.Time
	}
)

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secretKey:  []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func NewManagerFromConfig(cfg *config.Config) *Manager {
	return NewManager(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
}

func (m *Manager) IssuePair(userID uint64) (*TokenPair, error) {
	access, err := m.issue(userID, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.issue(userID, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (m *Manager) Refresh(refreshToken string) (string, error) {
	userID, err := m.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return m.issue(userID, TokenTypeAccess, m.accessTTL)
}

// Verify checks signature, expiry and token type and returns the user id.
func (m *Manager) Verify(tokenString, tokenType string) (uint64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (m *Manager) issue(userID uint64, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}
