// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"folio/internal/session"
)

// stubAuthorizer accepts one token.
type stubAuthorizer struct {
	token string
	err   error
}

func (s stubAuthorizer) Authorize(_ context.Context, token string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return token != "" && token == s.token, nil
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		auth       stubAuthorizer
		cookie     string
		wantStatus int
		wantCalled bool
	}{
		{"valid token", stubAuthorizer{token: "tok"}, "tok", http.StatusOK, true},
		{"wrong token", stubAuthorizer{token: "tok"}, "other", http.StatusUnauthorized, false},
		{"no cookie", stubAuthorizer{token: "tok"}, "", http.StatusUnauthorized, false},
		{"authorizer error", stubAuthorizer{err: errors.New("backend down")}, "tok", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			handler := RequireAdmin(tt.auth)(next)

			req := httptest.NewRequest(http.MethodGet, "/admin/api/document", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if *called != tt.wantCalled {
				t.Errorf("next called: got %v, want %v", *called, tt.wantCalled)
			}
		})
	}
}
