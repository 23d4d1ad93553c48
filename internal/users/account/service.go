// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/rendezvous/internal/platform/apperr"
	"github.com/taibuivan/rendezvous/internal/users/auth"
	"github.com/taibuivan/rendezvous/pkg/pagination"
)

// ErrMemberNotFound is returned when no account matches.
var ErrMemberNotFound = apperr.NotFound("User")

// # Service Layer

// Service answers directory queries.
type Service struct {
	directory Directory
	logger    *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(directory Directory, logger *slog.Logger) *Service {
	return &Service{directory: directory, logger: logger}
}

/*
List returns one page of members and the paging metadata.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Member: The requested page, possibly empty
  - pagination.Meta: Totals for the Pagination header
  - error: Storage failures
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]Member, pagination.Meta, error) {
	total, err := service.directory.Count(context)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_count_failed: %w", err)
	}

	users, err := service.directory.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_list_failed: %w", err)
	}

	members := make([]Member, 0, len(users))
	for _, user := range users {
		members = append(members, fromUser(user))
	}

	return members, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Get returns one member by ID.
func (service *Service) Get(context context.Context, id string) (*Member, error) {
	user, err := service.directory.FindByID(context, id)
	return service.member(user, err)
}

// GetByUsername returns one member by canonical username.
func (service *Service) GetByUsername(context context.Context, username string) (*Member, error) {
	user, err := service.directory.FindByUsername(context, username)
	return service.member(user, err)
}

func (service *Service) member(user *auth.User, err error) (*Member, error) {
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("account_service_get_failed: %w", err)
	}

	member := fromUser(user)
	return &member, nil
}
