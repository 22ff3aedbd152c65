// Package session gates the admin API behind a single local account. The
// account (AuthRecord) and the current login (State) are JSON values kept in
// a kv.Backend. A login expires a fixed time after it happened; reads never
// extend it.
package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"folio/internal/kv"
)

const (
	// DefaultTimeout is how long a login stays valid.
	DefaultTimeout = 2 * time.Hour

	// DefaultIssuer names the account in authenticator apps.
	DefaultIssuer = "Folio"

	// tokenLength is the byte length of the random session token (32 bytes = 64 hex chars).
	tokenLength = 32

	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
)

// ErrNotAuthenticated is returned by operations that need a live login.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// AuthRecord is the stored admin account.
type AuthRecord struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"passwordHash"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	TOTPSecret   string     `json:"totpSecret,omitempty"`
	TOTPEnabled  bool       `json:"totpEnabled"`
}

// State is the stored login. SessionTimeout is in milliseconds.
type State struct {
	IsAuthenticated  bool      `json:"isAuthenticated"`
	LastLogin        time.Time `json:"lastLogin"`
	SessionTimeout   int64     `json:"sessionTimeout"`
	Token            string    `json:"token"`
	TwoFactorPending bool      `json:"twoFactorPending,omitempty"`
}

// AdminUser is the public view of the admin account.
type AdminUser struct {
	Username  string     `json:"username"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock overrides the time source.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// WithTimeout sets how long a login stays valid.
func WithTimeout(d time.Duration) GateOption {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithIssuer sets the issuer shown in authenticator apps.
func WithIssuer(issuer string) GateOption {
	return func(g *Gate) { g.issuer = issuer }
}

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) GateOption {
	return func(g *Gate) { g.cost = cost }
}

// Gate is the admin session gate. All methods are safe for concurrent use.
type Gate struct {
	backend kv.Backend
	now     func() time.Time
	timeout time.Duration
	issuer  string
	cost    int

	mu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewGate returns a Gate storing its records in backend.
func NewGate(backend kv.Backend, opts ...GateOption) *Gate {
	g := &Gate{
		backend: backend,
		now:     time.Now,
		timeout: DefaultTimeout,
		issuer:  DefaultIssuer,
		cost:    bcrypt.DefaultCost,
		subs:    make(map[int]func()),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Timeout returns the configured login lifetime.
func (g *Gate) Timeout() time.Duration { return g.timeout }

// HasAdminAccount reports whether an account has been created.
func (g *Gate) HasAdminAccount(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok, err := g.loadAuth(ctx)
	return ok, err
}

// Login checks the credentials and starts a new session. When no account
// exists yet, the first login creates it from the given credentials. With
// two-factor enabled the new session stays pending until VerifyTwoFactor.
// Bad credentials, including a password longer than MaxPasswordBytes,
// return (false, nil).
func (g *Gate) Login(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" || len(password) > MaxPasswordBytes {
		return false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok, err := g.loadAuth(ctx)
	if err != nil {
		return false, err
	}

	if !ok {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
		if err != nil {
			return false, fmt.Errorf("login hash: %w", err)
		}
		rec = AuthRecord{Username: username, PasswordHash: string(hash)}
		slog.Warn("admin account created on first login", "username", username)
	} else if !g.credentialsMatch(rec, username, password) {
		slog.Info("admin login failed", "username", username)
		return false, nil
	}

	token, err := generateToken()
	if err != nil {
		return false, fmt.Errorf("login token: %w", err)
	}

	// A pending login is recorded on the account once VerifyTwoFactor
	// accepts its code.
	now := g.now()
	if !rec.TOTPEnabled {
		rec.LastLogin = &now
		if err := g.saveJSON(ctx, kv.KeyAdminAuth, rec); err != nil {
			return false, fmt.Errorf("login save account: %w", err)
		}
	}

	st := State{
		IsAuthenticated:  !rec.TOTPEnabled,
		TwoFactorPending: rec.TOTPEnabled,
		LastLogin:        now,
		SessionTimeout:   g.timeout.Milliseconds(),
		Token:            token,
	}
	if err := g.saveJSON(ctx, kv.KeyAdminSession, st); err != nil {
		return false, fmt.Errorf("login save session: %w", err)
	}

	slog.Info("admin logged in", "username", username, "two_factor_pending", st.TwoFactorPending)
	return true, nil
}

// IsAuthenticated reports whether a live, fully verified login exists. An
// expired login is cleared before false is returned.
func (g *Gate) IsAuthenticated(ctx context.Context) (bool, error) {
	st, ok, err := g.liveState(ctx)
	if err != nil || !ok {
		return false, err
	}
	return st.IsAuthenticated, nil
}

// Authorize reports whether token belongs to the current authenticated login.
func (g *Gate) Authorize(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	st, ok, err := g.liveState(ctx)
	if err != nil || !ok || !st.IsAuthenticated {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(st.Token)) == 1, nil
}

// Token returns the token of the current login, or "" when there is none.
// A login waiting for its second factor has a token too.
func (g *Gate) Token(ctx context.Context) (string, error) {
	st, ok, err := g.liveState(ctx)
	if err != nil || !ok {
		return "", err
	}
	return st.Token, nil
}

// Logout clears the current login and notifies OnLogout subscribers. The
// account itself is kept.
func (g *Gate) Logout(ctx context.Context) error {
	g.mu.Lock()
	err := g.backend.Delete(ctx, kv.KeyAdminSession)
	g.mu.Unlock()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	slog.Info("admin logged out")
	g.notifyLogout()
	return nil
}

// LogoutToken ends the current login only when token belongs to it, pending
// or verified. It reports whether a login was ended.
func (g *Gate) LogoutToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	g.mu.Lock()
	st, ok, err := g.loadState(ctx)
	if err != nil || !ok || subtle.ConstantTimeCompare([]byte(token), []byte(st.Token)) != 1 {
		g.mu.Unlock()
		return false, err
	}
	err = g.backend.Delete(ctx, kv.KeyAdminSession)
	g.mu.Unlock()
	if err != nil {
		return false, fmt.Errorf("logout: %w", err)
	}

	slog.Info("admin logged out")
	g.notifyLogout()
	return true, nil
}

// AdminUser returns the account name and last login time, or nil when no
// account exists.
func (g *Gate) AdminUser(ctx context.Context) (*AdminUser, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok, err := g.loadAuth(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return &AdminUser{Username: rec.Username, LastLogin: rec.LastLogin}, nil
}

// UpdatePassword replaces the password after checking the current one. A
// wrong current password, or a new one that is empty or longer than
// MaxPasswordBytes, returns (false, nil).
func (g *Gate) UpdatePassword(ctx context.Context, current, next string) (bool, error) {
	if next == "" || len(next) > MaxPasswordBytes {
		return false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok, err := g.loadAuth(ctx)
	if err != nil || !ok {
		return false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(current)) != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), g.cost)
	if err != nil {
		return false, fmt.Errorf("update password hash: %w", err)
	}
	rec.PasswordHash = string(hash)
	if err := g.saveJSON(ctx, kv.KeyAdminAuth, rec); err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	slog.Info("admin password changed", "username", rec.Username)
	return true, nil
}

// SessionTimeRemaining returns how long the current login stays valid. It is
// zero when there is no authenticated login.
func (g *Gate) SessionTimeRemaining(ctx context.Context) (time.Duration, error) {
	st, ok, err := g.liveState(ctx)
	if err != nil || !ok || !st.IsAuthenticated {
		return 0, err
	}
	return max(g.expiresAt(st).Sub(g.now()), 0), nil
}

// FormatSessionTimeRemaining renders SessionTimeRemaining for display.
func (g *Gate) FormatSessionTimeRemaining(ctx context.Context) (string, error) {
	d, err := g.SessionTimeRemaining(ctx)
	if err != nil {
		return "", err
	}
	return FormatRemaining(d), nil
}

// FormatRemaining renders d as "1h 5m", "42m" or "Expired".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "Expired"
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// OnLogout registers fn to run after every logout, including a login that
// expired. The returned function removes it.
func (g *Gate) OnLogout(fn func()) (unsubscribe func()) {
	g.subMu.Lock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	g.subMu.Unlock()

	return func() {
		g.subMu.Lock()
		delete(g.subs, id)
		g.subMu.Unlock()
	}
}

func (g *Gate) notifyLogout() {
	g.subMu.Lock()
	fns := make([]func(), 0, len(g.subs))
	for _, fn := range g.subs {
		fns = append(fns, fn)
	}
	g.subMu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("logout subscriber panicked", "error", rec)
				}
			}()
			fn()
		}()
	}
}

// liveState loads the current login. An expired login is deleted, logout
// subscribers are notified and ok is false.
func (g *Gate) liveState(ctx context.Context) (State, bool, error) {
	g.mu.Lock()
	st, ok, err := g.loadState(ctx)
	if err != nil || !ok {
		g.mu.Unlock()
		return State{}, false, err
	}
	if !g.now().After(g.expiresAt(st)) {
		g.mu.Unlock()
		return st, true, nil
	}

	err = g.backend.Delete(ctx, kv.KeyAdminSession)
	g.mu.Unlock()
	if err != nil {
		return State{}, false, fmt.Errorf("expire session: %w", err)
	}

	slog.Info("admin session expired", "last_login", st.LastLogin)
	g.notifyLogout()
	return State{}, false, nil
}

func (g *Gate) expiresAt(st State) time.Time {
	timeout := g.timeout
	if st.SessionTimeout > 0 {
		timeout = time.Duration(st.SessionTimeout) * time.Millisecond
	}
	return st.LastLogin.Add(timeout)
}

func (g *Gate) credentialsMatch(rec AuthRecord, username, password string) bool {
	nameOK := subtle.ConstantTimeCompare([]byte(rec.Username), []byte(username)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) == nil
	return nameOK && passOK
}

func (g *Gate) loadAuth(ctx context.Context) (AuthRecord, bool, error) {
	var rec AuthRecord
	ok, err := g.loadJSON(ctx, kv.KeyAdminAuth, &rec)
	return rec, ok, err
}

func (g *Gate) loadState(ctx context.Context) (State, bool, error) {
	var st State
	ok, err := g.loadJSON(ctx, kv.KeyAdminSession, &st)
	return st, ok, err
}

// loadJSON decodes the value under key into dst. A missing or corrupt value
// reports ok=false.
func (g *Gate) loadJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := g.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Warn("discarding corrupt auth data", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (g *Gate) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return g.backend.Set(ctx, key, string(raw))
}

// generateToken creates a cryptographically random session token.
func generateToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
