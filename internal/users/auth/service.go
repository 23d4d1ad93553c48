// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/rendezvous/internal/platform/sec"
	"github.com/taibuivan/rendezvous/internal/platform/validate"
	"github.com/taibuivan/rendezvous/pkg/username"
)

// # Contracts & Types

// PasswordHasher derives and checks salted password hashes.
type PasswordHasher interface {
	Hash(password string) (hash, salt []byte, err error)
	Verify(password string, hash, salt []byte) bool
}

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(identity sec.Identity) (string, error)
}

// Metrics receives one observation per register or login attempt.
type Metrics interface {
	ObserveRegister(outcome string)
	ObserveLogin(outcome string)
}

// Outcome labels reported to [Metrics].
const (
	OutcomeSuccess            = "success"
	OutcomeUsernameTaken      = "username_taken"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeThrottled          = "throttled"
	OutcomeError              = "error"
)

// ServiceOption configures optional collaborators of [Service].
type ServiceOption func(*Service)

// WithThrottle enables failed-login lockout.
func WithThrottle(throttle LoginThrottle) ServiceOption {
	return func(service *Service) { service.throttle = throttle }
}

// WithMetrics reports attempt outcomes.
func WithMetrics(metrics Metrics) ServiceOption {
	return func(service *Service) { service.metrics = metrics }
}

// Service implements the register and login use cases.
//
// It holds no mutable state of its own and is safe for concurrent use as long
// as its collaborators are.
type Service struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	logger   *slog.Logger
	throttle LoginThrottle
	metrics  Metrics

	// Verified against when the username is unknown so both login failure
	// branches do the same HMAC work.
	dummyHash []byte
	dummySalt []byte
}

// NewService constructs a [Service] with its required dependencies.
func NewService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger, options ...ServiceOption) *Service {
	service := &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		metrics:   noopMetrics{},
		dummyHash: make([]byte, sec.HashLength),
		dummySalt: make([]byte, sec.SaltLength),
	}

	for _, option := range options {
		option(service)
	}

	return service
}

// # Registration Flow

// RegisterInput holds the credentials of a new account.
type RegisterInput struct {
	Username string
	Password string
}

/*
Register creates an account and returns a session for it.

Description: The username is canonicalized, the password hashed with a fresh
salt, and the account written with one conditional insert. The store's unique
constraint decides races, so no lookup precedes the insert.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Session: Canonical username and signed token
  - error: ErrUsernameTaken, validation errors, or internal failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Session, error) {
	name := username.Canonical(input.Username)
	if err := checkCredentials(name, input.Password); err != nil {
		return nil, err
	}

	hash, salt, err := service.hasher.Hash(input.Password)
	if err != nil {
		service.metrics.ObserveRegister(OutcomeError)
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{Username: name, PasswordHash: hash, PasswordSalt: salt}
	if _, err := service.users.Insert(context, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			service.metrics.ObserveRegister(OutcomeUsernameTaken)
			service.logger.InfoContext(context, "auth_register_rejected",
				slog.String("username", name),
				slog.String("reason", OutcomeUsernameTaken),
			)
			return nil, ErrUsernameTaken
		}
		service.metrics.ObserveRegister(OutcomeError)
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	session, err := service.issueSession(name)
	if err != nil {
		service.metrics.ObserveRegister(OutcomeError)
		return nil, err
	}

	service.metrics.ObserveRegister(OutcomeSuccess)
	service.logger.InfoContext(context, "auth_register_succeeded",
		slog.String("user_id", user.ID),
		slog.String("username", name),
	)

	return session, nil
}

// # Authentication Flow

// LoginInput holds the credentials of a login attempt.
type LoginInput struct {
	Username string
	Password string

	// ClientIP scopes the failure lockout to the caller's address.
	ClientIP string
}

/*
Login verifies credentials and returns a fresh session.

Description: Unknown usernames and wrong passwords produce the same
ErrInvalidCredentials. Only the debug log records which branch was taken.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Canonical username and signed token
  - error: ErrInvalidCredentials, ErrTooManyAttempts, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	name := username.Canonical(input.Username)
	throttleKey := FailureKey(name, input.ClientIP)

	if service.isThrottled(context, throttleKey) {
		service.metrics.ObserveLogin(OutcomeThrottled)
		return nil, ErrTooManyAttempts
	}

	user, err := service.users.FindByUsername(context, name)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			service.metrics.ObserveLogin(OutcomeError)
			return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
		}
		service.hasher.Verify(input.Password, service.dummyHash, service.dummySalt)
		service.rejectLogin(context, name, throttleKey, "unknown_username")
		return nil, ErrInvalidCredentials
	}

	if !service.hasher.Verify(input.Password, user.PasswordHash, user.PasswordSalt) {
		service.rejectLogin(context, name, throttleKey, "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	session, err := service.issueSession(user.Username)
	if err != nil {
		service.metrics.ObserveLogin(OutcomeError)
		return nil, err
	}

	if service.throttle != nil {
		if err := service.throttle.Reset(context, throttleKey); err != nil {
			service.logger.WarnContext(context, "auth_throttle_reset_failed", slog.Any("error", err))
		}
	}

	service.metrics.ObserveLogin(OutcomeSuccess)
	service.logger.InfoContext(context, "auth_login_succeeded",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return session, nil
}

// # Internal Helpers

func (service *Service) issueSession(name string) (*Session, error) {
	token, err := service.tokens.Issue(sec.Identity{Username: name})
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_token_failed: %w", err)
	}
	return &Session{Username: name, Token: token}, nil
}

// isThrottled fails open: a counter outage must not block every login.
func (service *Service) isThrottled(context context.Context, key string) bool {
	if service.throttle == nil {
		return false
	}

	blocked, err := service.throttle.Blocked(context, key)
	if err != nil {
		service.logger.WarnContext(context, "auth_throttle_check_failed", slog.Any("error", err))
		return false
	}
	return blocked
}

func (service *Service) rejectLogin(context context.Context, name, key, reason string) {
	service.metrics.ObserveLogin(OutcomeInvalidCredentials)
	service.logger.DebugContext(context, "auth_login_rejected",
		slog.String("username", name),
		slog.String("reason", reason),
	)

	if service.throttle != nil {
		if err := service.throttle.RecordFailure(context, key); err != nil {
			service.logger.WarnContext(context, "auth_throttle_record_failed", slog.Any("error", err))
		}
	}
}

// checkCredentials rejects empty values before any hashing happens.
func checkCredentials(name, password string) error {
	validator := &validate.Validator{}
	return validator.
		Required(FieldUsername, name).
		Custom(FieldPassword, password == "", "This field is required").
		Err()
}

type noopMetrics struct{}

func (noopMetrics) ObserveRegister(string) {}
func (noopMetrics) ObserveLogin(string)    {}
