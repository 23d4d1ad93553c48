// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/rendezvous/internal/api"
	"github.com/taibuivan/rendezvous/internal/platform/config"
	"github.com/taibuivan/rendezvous/internal/platform/metrics"
	"github.com/taibuivan/rendezvous/internal/platform/sec"
	"github.com/taibuivan/rendezvous/internal/users/account"
	"github.com/taibuivan/rendezvous/internal/users/auth"
)

type testServer struct {
	handler http.Handler
	tokens  *sec.TokenService
}

func newTestServer(t *testing.T, deps api.HealthDependencies) *testServer {
	t.Helper()

	cfg, err := config.Parse(env.Options{Environment: map[string]string{
		"TOKEN_KEY":    strings.Repeat("x", 64),
		"STORE_DRIVER": config.StoreDriverMemory,
	}})
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	tokens, err := sec.NewTokenService(cfg.SigningKey(), sec.WithTokenTTL(cfg.TokenTTL), sec.WithIssuer(cfg.TokenIssuer))
	require.NoError(t, err)

	users := auth.NewMemoryUserRepository()
	appMetrics := metrics.New()
	authService := auth.NewService(users, sec.NewHasher(), tokens, logger, auth.WithMetrics(appMetrics))
	accountService := account.NewService(users, logger)

	liveness, readiness := api.NewHealthHandlers(deps, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(ctx, cfg, logger, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   appMetrics.Handler(),
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
	})

	return &testServer{handler: server.Handler(), tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestServer_AccountFlow walks through register, login and a protected call end to end.
*/
func TestServer_AccountFlow(t *testing.T) {
	server := newTestServer(t, api.HealthDependencies{})

	// 1. Register with a mixed-case username
	recorder := server.do(t, http.MethodPost, "/api/account/register", `{"username":"Alice","password":"Secret123!"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var registered auth.Session
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &registered))
	assert.Equal(t, "alice", registered.Username)

	// 2. Login with the canonical form
	recorder = server.do(t, http.MethodPost, "/api/account/login", `{"username":"alice","password":"Secret123!"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var session auth.Session
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &session))

	claims, err := server.tokens.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())

	// 3. Wrong password
	recorder = server.do(t, http.MethodPost, "/api/account/login", `{"username":"alice","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.JSONEq(t, `{"error":"Invalid username or password","code":"INVALID_CREDENTIALS"}`, recorder.Body.String())

	// 4. Duplicate registration
	recorder = server.do(t, http.MethodPost, "/api/account/register", `{"username":"ALICE","password":"Secret123!"}`, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.JSONEq(t, `{"error":"Username is taken","code":"USERNAME_TAKEN"}`, recorder.Body.String())

	// 5. Protected directory
	recorder = server.do(t, http.MethodGet, "/api/users", "", session.Token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"username":"alice"`)
	assert.NotEmpty(t, recorder.Header().Get("Pagination"))

	recorder = server.do(t, http.MethodGet, "/api/users/me", "", session.Token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"username":"alice"`)
}

/*
TestServer_ProtectedRoutesRequireToken covers the generic 401 for missing and invalid tokens.
*/
func TestServer_ProtectedRoutesRequireToken(t *testing.T) {
	server := newTestServer(t, api.HealthDependencies{})

	foreign, err := sec.NewTokenService([]byte(strings.Repeat("y", 64)))
	require.NoError(t, err)
	forged, err := foreign.Issue(sec.Identity{Username: "alice"})
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":  "",
		"garbage":  "abc.def.ghi",
		"wrongKey": forged,
	} {
		t.Run(name, func(t *testing.T) {
			recorder := server.do(t, http.MethodGet, "/api/users", "", token)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.JSONEq(t, `{"error":"Unauthorized","code":"UNAUTHORIZED"}`, recorder.Body.String())
		})
	}

	// Public routes ignore a bad header.
	recorder := server.do(t, http.MethodPost, "/api/account/login", `{"username":"x","password":"y"}`, "garbage")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INVALID_CREDENTIALS")
}

/*
TestServer_Infrastructure covers health, readiness and metrics.
*/
func TestServer_Infrastructure(t *testing.T) {
	healthy := newTestServer(t, api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
	})

	recorder := healthy.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())

	recorder = healthy.do(t, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ready","checks":[{"name":"postgres","ok":true}]}`, recorder.Body.String())

	_ = healthy.do(t, http.MethodPost, "/api/account/register", `{"username":"bob","password":"pw-bob"}`, "")
	recorder = healthy.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `rendezvous_auth_attempts_total{operation="register",outcome="success"} 1`)

	degraded := newTestServer(t, api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return errors.New("dial tcp: refused") },
	})

	recorder = degraded.do(t, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "refused")
}
