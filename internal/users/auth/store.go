// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Every username argument must already be canonical.
type UserRepository interface {

	/*
		FindByUsername returns the account with the given canonical username.

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound when absent, or storage failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		ExistsByUsername reports whether the canonical username is registered.
	*/
	ExistsByUsername(context context.Context, username string) (bool, error)

	/*
		Insert atomically creates the account if the username is free.

		The store assigns ID and CreatedAt and writes them back into user.

		Returns:
		  - string: The assigned ID
		  - error: ErrDuplicateUsername when the username exists, or storage failures
	*/
	Insert(context context.Context, user *User) (string, error)

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound when absent, or storage failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	// List returns accounts ordered by creation time without credential material.
	List(context context.Context, limit, offset int) ([]*User, error)

	// Count returns the total number of accounts.
	Count(context context.Context) (int, error)
}
