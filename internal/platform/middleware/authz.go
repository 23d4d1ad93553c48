// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/rendezvous/internal/platform/apperr"
	"github.com/taibuivan/rendezvous/internal/platform/constants"
	"github.com/taibuivan/rendezvous/internal/platform/ctxutil"
	"github.com/taibuivan/rendezvous/internal/platform/respond"
	"github.com/taibuivan/rendezvous/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(token string) (*sec.AuthClaims, error)
}

// errUnauthorized is the single outcome for every authentication failure.
var errUnauthorized = apperr.Unauthorized("Unauthorized")

// Authenticate extracts and verifies the session token from the Authorization header.
//
// # Flow
//  1. Absent header: request proceeds as anonymous.
//  2. Malformed header or failed verification: 401 with a generic body.
//  3. Valid token: [*sec.AuthClaims] is injected into the request context.
//
// The response never tells the caller which check failed.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, constants.AuthScheme) || strings.TrimSpace(token) == "" {
				respond.Error(writer, request, errUnauthorized)
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "auth_token_rejected")
				respond.Error(writer, request, errUnauthorized)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, errUnauthorized)
			return
		}
		next.ServeHTTP(writer, request)
	})
}
