// Package auth implements credential hashing and the stateless token scheme:
// HS256-signed JWTs carrying the user ID and a kind claim that separates
// access tokens from refresh tokens.
package auth

import (
	"errors"
	"time"

	"github.com/dkazakov/taskdeck/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes access tokens from refresh tokens. The kind lives
// inside the signed payload, so crossing it over requires the signing secret.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the signed token payload: registered claims (iat/exp) plus the
// user identity and the token kind.
type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"uid"`
	Kind   TokenKind `json:"kind"`
}

// TokenService issues and verifies signed tokens. It holds no state beyond
// the injected secret and the two lifetimes, so concurrent use is safe.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService constructs a TokenService with an explicit secret so tests
// can run with distinct secrets per instance.
func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// TTL returns the configured lifetime for the given kind.
func (s *TokenService) TTL(kind TokenKind) time.Duration {
	if kind == TokenKindRefresh {
		return s.refreshTTL
	}
	return s.accessTTL
}

// Issue serializes claims for userID and signs them with the service secret.
func (s *TokenService) Issue(userID string, kind TokenKind) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL(kind))),
		},
		UserID: userID,
		Kind:   kind,
	})

	return token.SignedString(s.secret)
}

// Verify parses the token, checks the signature and expiry, and requires the
// kind claim to match expected. Expired tokens surface as ErrTokenExpired;
// every other failure, including a kind mismatch, is ErrInvalidToken so the
// caller cannot tell which check rejected it.
func (s *TokenService) Verify(tokenString string, expected TokenKind) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Kind != expected {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
