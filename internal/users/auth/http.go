// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/rendezvous/internal/platform/middleware"
	requestutil "github.com/taibuivan/rendezvous/internal/platform/request"
	"github.com/taibuivan/rendezvous/internal/platform/respond"
	"github.com/taibuivan/rendezvous/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the public account endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] with the account routes.
//
// # Endpoints
//   - POST /register : Creates an account and returns a session.
//   - POST /login    : Verifies credentials and returns a session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)

	return router
}

// # Request Payloads

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// validate applies the input policy to trimmed usernames and raw passwords.
func (input credentialsRequest) validate() error {
	name := strings.TrimSpace(input.Username)

	validator := &validate.Validator{}
	return validator.
		Required(FieldUsername, name).
		MinLen(FieldUsername, name, UsernameMinLength).
		MaxLen(FieldUsername, name, UsernameMaxLength).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		MaxLen(FieldPassword, input.Password, PasswordMaxLength).
		Err()
}

/*
Register handles the creation of a new account.

POST /api/account/register

Request:
  - Body: credentialsRequest (Username, Password)

Response:
  - 200: Session: Canonical username and token
  - 400: VALIDATION_ERROR or USERNAME_TAKEN
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
Login authenticates an account.

POST /api/account/login

Request:
  - Body: credentialsRequest (Username, Password)

Response:
  - 200: Session: Canonical username and token
  - 400: VALIDATION_ERROR
  - 401: INVALID_CREDENTIALS
  - 429: TOO_MANY_ATTEMPTS
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Length policy applies at registration only.
	validator := &validate.Validator{}
	if err := validator.
		Required(FieldUsername, input.Username).
		Required(FieldPassword, input.Password).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
		ClientIP: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}
