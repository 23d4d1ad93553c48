// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account registration and login.

It owns the User entity, the storage contract that enforces username
uniqueness, and the Service that turns verified credentials into signed
session tokens.

# Architecture

  - Entities: [User] and the [Session] returned to clients.
  - Storage: [UserRepository] with Postgres and in-memory implementations.
  - Service: Register and Login orchestration over a hasher and token issuer.
  - Delivery: chi handlers mounted under /api/account.
*/
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/taibuivan/rendezvous/internal/platform/apperr"
)

// # Domain Entities

// User is a registered account. Hash and salt never leave the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	PasswordSalt []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is the body returned by register and login.
type Session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// # Input Policy

const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
	PasswordMinLength = 4
	PasswordMaxLength = 128
)

// # Errors

var (
	// ErrUserNotFound is returned by stores when no account matches.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrDuplicateUsername is returned by Insert when the canonical username exists.
	ErrDuplicateUsername = errors.New("auth: duplicate username")

	// ErrUsernameTaken is the client-facing registration conflict.
	ErrUsernameTaken = apperr.New(http.StatusBadRequest, "USERNAME_TAKEN", "Username is taken")

	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = apperr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")

	// ErrTooManyAttempts is returned while a username is locked out for the calling client.
	ErrTooManyAttempts = apperr.New(http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Too many failed login attempts. Try again later.")
)
