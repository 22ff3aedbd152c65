// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"folio/internal/session"
)

// Auth groups the admin login, logout, password and two-factor handlers.
type Auth struct {
	gate   *session.Gate
	secure bool
}

// NewAuth creates the auth handler group. secure marks the session cookie
// as HTTPS-only.
func NewAuth(gate *session.Gate, secure bool) *Auth {
	return &Auth{gate: gate, secure: secure}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated    bool       `json:"authenticated"`
	TwoFactorPending bool       `json:"twoFactorPending"`
	Username         string     `json:"username,omitempty"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	Remaining        string     `json:"remaining,omitempty"`
	RemainingSeconds int64      `json:"remainingSeconds,omitempty"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
}

// Login checks the credentials and sets the session cookie. With two-factor
// enabled the session stays pending until Verify.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}

	ctx := r.Context()
	ok, err := a.gate.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeInternal(w, "login", err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := a.gate.Token(ctx)
	if err != nil {
		writeInternal(w, "login token", err)
		return
	}
	session.SetCookie(w, token, a.gate.Timeout(), a.secure)

	pending, err := a.gate.Pending(ctx, token)
	if err != nil {
		writeInternal(w, "login state", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated:    !pending,
		TwoFactorPending: pending,
		Username:         req.Username,
		TwoFactorEnabled: pending,
	})
}

// Logout clears the caller's cookie. The server-side session ends only when
// the cookie belongs to it.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if _, err := a.gate.LogoutToken(r.Context(), session.TokenFromRequest(r)); err != nil {
		writeInternal(w, "logout", err)
		return
	}
	session.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
}

// Session reports the state of the caller's session.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := session.TokenFromRequest(r)

	authorized, err := a.gate.Authorize(ctx, token)
	if err != nil {
		writeInternal(w, "session status", err)
		return
	}
	if !authorized {
		pending, err := a.gate.Pending(ctx, token)
		if err != nil {
			writeInternal(w, "session status", err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{TwoFactorPending: pending})
		return
	}

	resp := sessionResponse{Authenticated: true}
	user, err := a.gate.AdminUser(ctx)
	if err != nil {
		writeInternal(w, "session user", err)
		return
	}
	if user != nil {
		resp.Username = user.Username
		resp.LastLogin = user.LastLogin
	}
	remaining, err := a.gate.SessionTimeRemaining(ctx)
	if err != nil {
		writeInternal(w, "session remaining", err)
		return
	}
	resp.Remaining = session.FormatRemaining(remaining)
	resp.RemainingSeconds = int64(remaining / time.Second)
	if resp.TwoFactorEnabled, err = a.gate.TwoFactorEnabled(ctx); err != nil {
		writeInternal(w, "session two-factor", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type codeRequest struct {
	Code string `json:"code"`
}

// VerifyTwoFactor completes a pending login. The caller must hold the
// pending session's cookie.
func (a *Auth) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}

	ctx := r.Context()
	pending, err := a.gate.Pending(ctx, session.TokenFromRequest(r))
	if err != nil {
		writeInternal(w, "two-factor verify", err)
		return
	}
	if !pending {
		writeError(w, http.StatusUnauthorized, "No login is waiting for a code")
		return
	}

	ok, err := a.gate.VerifyTwoFactor(ctx, req.Code)
	if err != nil {
		writeInternal(w, "two-factor verify", err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid code")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, TwoFactorEnabled: true})
}

type twoFactorSetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode string `json:"qrCode"`
}

// SetupTwoFactor issues a new TOTP secret and its QR code as a data: URI.
func (a *Auth) SetupTwoFactor(w http.ResponseWriter, r *http.Request) {
	setup, err := a.gate.SetupTwoFactor(r.Context())
	if errors.Is(err, session.ErrNotAuthenticated) {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err != nil {
		writeInternal(w, "two-factor setup", err)
		return
	}
	writeJSON(w, http.StatusOK, twoFactorSetupResponse{
		Secret: setup.Secret,
		URL:    setup.URL,
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(setup.QRCode),
	})
}

// ConfirmTwoFactor enables two-factor login once a valid code is supplied.
func (a *Auth) ConfirmTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}
	ok, err := a.gate.ConfirmTwoFactor(r.Context(), req.Code)
	if errors.Is(err, session.ErrNotAuthenticated) {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err != nil {
		writeInternal(w, "two-factor confirm", err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid code")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"twoFactorEnabled": true})
}

type passwordRequest struct {
	Current string `json:"currentPassword"`
	New     string `json:"newPassword"`
}

// DisableTwoFactor turns two-factor login off after a password check.
func (a *Auth) DisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}
	ok, err := a.gate.DisableTwoFactor(r.Context(), req.Current)
	if errors.Is(err, session.ErrNotAuthenticated) {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err != nil {
		writeInternal(w, "two-factor disable", err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"twoFactorEnabled": false})
}

// ChangePassword replaces the admin password.
func (a *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}
	if req.New == "" {
		writeError(w, http.StatusBadRequest, "New password is required")
		return
	}
	if len(req.New) > session.MaxPasswordBytes {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("New password must be at most %d bytes", session.MaxPasswordBytes))
		return
	}
	ok, err := a.gate.UpdatePassword(r.Context(), req.Current, req.New)
	if err != nil {
		writeInternal(w, "change password", err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}
