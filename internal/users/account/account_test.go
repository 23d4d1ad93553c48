// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/rendezvous/internal/platform/ctxutil"
	"github.com/taibuivan/rendezvous/internal/platform/sec"
	"github.com/taibuivan/rendezvous/internal/users/account"
	"github.com/taibuivan/rendezvous/internal/users/auth"
	"github.com/taibuivan/rendezvous/pkg/pagination"
)

func seedDirectory(t *testing.T, names ...string) (*auth.MemoryUserRepository, []string) {
	t.Helper()

	repository := auth.NewMemoryUserRepository()
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, err := repository.Insert(context.Background(), &auth.User{
			Username:     name,
			PasswordHash: []byte("hash"),
			PasswordSalt: []byte("salt"),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return repository, ids
}

func newRoutes(repository account.Directory) http.Handler {
	service := account.NewService(repository, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return account.NewHandler(service).Routes()
}

func get(handler http.Handler, path string, claims *sec.AuthClaims) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if claims != nil {
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestService_List checks paging metadata and the public projection.
*/
func TestService_List(t *testing.T) {
	repository, _ := seedDirectory(t, "alice", "bob", "carol")
	service := account.NewService(repository, slog.Default())

	members, meta, err := service.List(context.Background(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)

	require.Len(t, members, 1)
	assert.Equal(t, "carol", members[0].Username)
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, meta)
}

/*
TestHandler_ListMembers verifies the bare array body and the Pagination header.
*/
func TestHandler_ListMembers(t *testing.T) {
	repository, _ := seedDirectory(t, "alice", "bob")
	recorder := get(newRoutes(repository), "/", nil)

	require.Equal(t, http.StatusOK, recorder.Code)

	var members []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &members))
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0]["username"])
	assert.NotContains(t, recorder.Body.String(), "hash")
	assert.NotContains(t, recorder.Body.String(), "salt")

	assert.JSONEq(t, `{"page":1,"limit":20,"total":2,"total_pages":1}`, recorder.Header().Get("Pagination"))
}

/*
TestHandler_GetMember covers lookup, malformed IDs and unknown IDs.
*/
func TestHandler_GetMember(t *testing.T) {
	repository, ids := seedDirectory(t, "alice")
	routes := newRoutes(repository)

	recorder := get(routes, "/"+ids[0], nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"username":"alice"`)

	recorder = get(routes, "/42", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = get(routes, "/0190f5a2-7c3e-7b1a-9f00-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"code":"NOT_FOUND"`)
}

/*
TestHandler_GetMe resolves the member from the session claims.
*/
func TestHandler_GetMe(t *testing.T) {
	repository, ids := seedDirectory(t, "alice", "bob")
	routes := newRoutes(repository)

	claims := &sec.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "bob"}}
	recorder := get(routes, "/me", claims)
	require.Equal(t, http.StatusOK, recorder.Code)

	var member account.Member
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &member))
	assert.Equal(t, ids[1], member.ID)

	recorder = get(routes, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
