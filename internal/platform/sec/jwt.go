// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, session token
// signing) from the domain logic. It acts as an Infrastructure service injected
// into the Application layer via the auth package's PasswordHasher and
// TokenIssuer interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/rendezvous/internal/platform/constants"
)

var (
	// ErrSigningKeyTooShort is returned when the signing key is below the security floor.
	ErrSigningKeyTooShort = fmt.Errorf("sec: signing key must be at least %d bytes", constants.MinSigningKeyLength)

	// ErrTokenInvalid is the single outcome of every failed token validation.
	// Parse, signature and expiry failures are deliberately indistinguishable.
	ErrTokenInvalid = errors.New("sec: invalid token")

	// ErrEmptyIdentity is returned when a token is requested for a blank username.
	ErrEmptyIdentity = errors.New("sec: identity has no username")
)

// Identity is the verified principal a session token is issued for.
type Identity struct {
	Username string
}

// AuthClaims represents the payload embedded inside a session token.
//
// The canonical username travels in the registered 'sub' claim.
type AuthClaims struct {
	jwt.RegisteredClaims
}

// Username returns the canonical username carried in the subject claim.
func (claims *AuthClaims) Username() string {
	return claims.Subject
}

// TokenOption configures a [TokenService].
type TokenOption func(*TokenService)

// WithTokenTTL sets the token lifetime. Non-positive values are ignored.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(service *TokenService) {
		if ttl > 0 {
			service.ttl = ttl
		}
	}
}

// WithIssuer sets the 'iss' claim written into and required from tokens.
func WithIssuer(issuer string) TokenOption {
	return func(service *TokenService) {
		service.issuer = issuer
	}
}

// WithClock replaces the time source used for 'iat', 'exp' and validation.
func WithClock(now func() time.Time) TokenOption {
	return func(service *TokenService) {
		if now != nil {
			service.now = now
		}
	}
}

// TokenService issues and verifies HS512-signed session tokens.
//
// It is immutable after construction and safe for concurrent use.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
}

// NewTokenService creates a new TokenService keyed by signingKey.
//
// Construction fails when the key is shorter than [constants.MinSigningKeyLength].
func NewTokenService(signingKey []byte, opts ...TokenOption) (*TokenService, error) {
	if len(signingKey) < constants.MinSigningKeyLength {
		return nil, ErrSigningKeyTooShort
	}

	service := &TokenService{
		signingKey: append([]byte(nil), signingKey...),
		ttl:        constants.SessionTokenTTL,
		issuer:     constants.AuthIssuer,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// TTL returns the configured token lifetime.
func (service *TokenService) TTL() time.Duration {
	return service.ttl
}

// Issue creates a signed session token whose subject is identity.Username.
func (service *TokenService) Issue(identity Identity) (string, error) {
	if identity.Username == "" {
		return "", ErrEmptyIdentity
	}

	currentTime := service.now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(service.signingKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and expiry of a session token string.
//
// Any failure yields [ErrTokenInvalid]; the reason is not reported.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	}
	if service.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(service.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return service.signingKey, nil
	}, parserOptions...)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
