// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/rendezvous/internal/platform/ctxutil"
	"github.com/taibuivan/rendezvous/internal/platform/middleware"
	"github.com/taibuivan/rendezvous/internal/platform/sec"
)

func newProtectedRouter(t *testing.T) (http.Handler, *sec.TokenService) {
	t.Helper()

	tokens, err := sec.NewTokenService([]byte(strings.Repeat("k", 64)))
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Get("/public", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens))
		r.Use(middleware.RequireAuth)
		r.Get("/private", func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(ctxutil.GetAuthUser(request.Context()).Username()))
		})
	})
	return router, tokens
}

/*
TestAuthenticate_ProtectedRoutes covers the bearer token contract on a protected group.
*/
func TestAuthenticate_ProtectedRoutes(t *testing.T) {
	router, tokens := newProtectedRouter(t)

	token, err := tokens.Issue(sec.Identity{Username: "alice"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid_token", "Bearer " + token, http.StatusOK, "alice"},
		{"lowercase_scheme", "bearer " + token, http.StatusOK, "alice"},
		{"missing_header", "", http.StatusUnauthorized, `"code":"UNAUTHORIZED"`},
		{"wrong_scheme", "Basic " + token, http.StatusUnauthorized, `"error":"Unauthorized"`},
		{"scheme_only", "Bearer", http.StatusUnauthorized, `"code":"UNAUTHORIZED"`},
		{"garbage_token", "Bearer not.a.token", http.StatusUnauthorized, `"code":"UNAUTHORIZED"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.wantBody)
		})
	}
}

/*
TestAuthenticate_PublicRoutesUntouched verifies public routes ignore the Authorization header.
*/
func TestAuthenticate_PublicRoutesUntouched(t *testing.T) {
	router, _ := newProtectedRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/public", nil)
	request.Header.Set("Authorization", "Bearer garbage")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}
