// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"folio/internal/session"
)

// Authorizer checks a session token. *session.Gate implements it.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (bool, error)
}

// RequireAdmin answers 401 unless the request carries the session cookie of
// the current, fully verified admin login.
func RequireAdmin(auth Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := auth.Authorize(r.Context(), session.TokenFromRequest(r))
			if err != nil {
				slog.Error("admin authorization failed", "error", err)
				writeError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
