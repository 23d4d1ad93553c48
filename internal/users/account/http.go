// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/rendezvous/internal/platform/constants"
	requestutil "github.com/taibuivan/rendezvous/internal/platform/request"
	"github.com/taibuivan/rendezvous/internal/platform/respond"
	"github.com/taibuivan/rendezvous/internal/platform/validate"
	"github.com/taibuivan/rendezvous/pkg/pagination"
)

// Handler implements the HTTP layer for the member directory.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the directory endpoints.
// The caller mounts it behind the authentication middleware.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listMembers)
	router.Get("/me", handler.getMe)
	router.Get("/{id}", handler.getMember)

	return router
}

/*
GET /api/users

Description: Lists members ordered by registration time. Paging metadata is
returned in the Pagination header.

Response:
  - 200: []Member
  - 401: UNAUTHORIZED
*/
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	members, meta, err := handler.accountService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	pagination.WriteHeader(writer, constants.HeaderPagination, meta)
	respond.OK(writer, members)
}

/*
GET /api/users/me

Description: Returns the member identified by the session token.
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.accountService.GetByUsername(request.Context(), claims.Username())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, member)
}

/*
GET /api/users/{id}

Response:
  - 200: Member
  - 400: VALIDATION_ERROR when id is not a UUID
  - 404: NOT_FOUND
*/
func (handler *Handler) getMember(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.accountService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, member)
}
