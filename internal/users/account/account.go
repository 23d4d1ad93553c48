// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account serves the member directory.

Every endpoint sits behind the bearer-token guard. Responses expose only the
public projection of an account; credential material never leaves the auth
store.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/rendezvous/internal/users/auth"
)

// # Domain Entities

// Member is the public view of a registered account.
type Member struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// fromUser projects an auth.User onto its public fields.
func fromUser(user *auth.User) Member {
	return Member{ID: user.ID, Username: user.Username, CreatedAt: user.CreatedAt}
}

// # Repository Contracts

// Directory is the read-only subset of [auth.UserRepository] this package needs.
type Directory interface {
	FindByID(context context.Context, id string) (*auth.User, error)
	FindByUsername(context context.Context, username string) (*auth.User, error)
	List(context context.Context, limit, offset int) ([]*auth.User, error)
	Count(context context.Context) (int, error)
}
