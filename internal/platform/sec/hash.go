// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"fmt"
	"io"
)

// # Credential Hashing

const (
	// SaltLength is the byte length of a freshly generated password salt. It
	// matches the SHA-512 block size, so the salt is used as the HMAC key as is.
	SaltLength = sha512.BlockSize

	// HashLength is the byte length of a stored password hash.
	HashLength = sha512.Size
)

// Hasher derives and verifies salted HMAC-SHA512 password hashes.
//
// Each password is keyed with its own random salt: hash = HMAC-SHA512(salt, password).
// A Hasher holds no mutable state and is safe for concurrent use.
type Hasher struct {
	random io.Reader
}

// NewHasher returns a [Hasher] that draws salts from crypto/rand.
func NewHasher() *Hasher {
	return &Hasher{random: rand.Reader}
}

// Hash generates a fresh salt and returns the keyed hash of password with it.
//
// An empty password is hashed like any other; rejecting it is the caller's policy.
func (hasher *Hasher) Hash(password string) (hash, salt []byte, err error) {
	salt = make([]byte, SaltLength)
	if _, err := io.ReadFull(hasher.random, salt); err != nil {
		return nil, nil, fmt.Errorf("sec: failed to generate salt: %w", err)
	}
	return ComputeHash(password, salt), salt, nil
}

// Verify reports whether password matches the stored hash and salt.
//
// A hash of the wrong length is a mismatch, not an error. Content comparison
// runs in constant time.
func (hasher *Hasher) Verify(password string, hash, salt []byte) bool {
	if len(hash) != HashLength || len(salt) == 0 {
		return false
	}
	return hmac.Equal(ComputeHash(password, salt), hash)
}

// ComputeHash returns HMAC-SHA512 keyed by salt over the UTF-8 bytes of password.
func ComputeHash(password string, salt []byte) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
