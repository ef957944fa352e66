package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"messmate/internal/session"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager parses (and, for tests and tooling, mints) the identity
// provider's id tokens. The token carries the stable user id and verified
// email the sync core treats as the username natural key.
type TokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// TokenClaims are the custom claims carried by an id token.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Admin  bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// NewTokenManager creates a token manager with the given HMAC secret and
// token lifetime.
func NewTokenManager(secretKey string, tokenDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate mints an id token for the identity. The production identity
// provider does this server-side; it exists here for tests and local tools.
func (m *TokenManager) Generate(id session.Identity) (string, error) {
	claims := &TokenClaims{
		UserID: id.UserID,
		Email:  id.Username,
		Name:   id.DisplayName,
		Admin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Parse validates an id token and returns the identity it asserts.
func (m *TokenManager) Parse(tokenString string) (session.Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&TokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return session.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return session.Identity{}, ErrInvalidToken
	}

	return session.Identity{
		UserID:      claims.UserID,
		Username:    claims.Email,
		DisplayName: claims.Name,
		IsAdmin:     claims.Admin,
	}, nil
}
