package session

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"folio/internal/kv"
)

// qrSize is the edge length of the enrolment QR code in pixels.
const qrSize = 256

var validateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TwoFactorSetup is the enrolment material for an authenticator app.
type TwoFactorSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode []byte `json:"qrCode"`
}

// TwoFactorEnabled reports whether logins require a TOTP code.
func (g *Gate) TwoFactorEnabled(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok, err := g.loadAuth(ctx)
	if err != nil || !ok {
		return false, err
	}
	return rec.TOTPEnabled, nil
}

// SetupTwoFactor generates and stores a new TOTP secret. The secret only
// takes effect after ConfirmTwoFactor accepts a code for it.
func (g *Gate) SetupTwoFactor(ctx context.Context) (*TwoFactorSetup, error) {
	if err := g.requireAuthenticated(ctx); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok, err := g.loadAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthenticated
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.issuer,
		AccountName: rec.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("totp qr code: %w", err)
	}

	rec.TOTPSecret = key.Secret()
	rec.TOTPEnabled = false
	if err := g.saveJSON(ctx, kv.KeyAdminAuth, rec); err != nil {
		return nil, fmt.Errorf("save totp secret: %w", err)
	}

	return &TwoFactorSetup{Secret: key.Secret(), URL: key.URL(), QRCode: png}, nil
}

// ConfirmTwoFactor enables two-factor login when code matches the secret
// from SetupTwoFactor.
func (g *Gate) ConfirmTwoFactor(ctx context.Context, code string) (bool, error) {
	if err := g.requireAuthenticated(ctx); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok, err := g.loadAuth(ctx)
	if err != nil || !ok || rec.TOTPSecret == "" {
		return false, err
	}
	if !g.validCode(code, rec.TOTPSecret) {
		return false, nil
	}

	rec.TOTPEnabled = true
	if err := g.saveJSON(ctx, kv.KeyAdminAuth, rec); err != nil {
		return false, fmt.Errorf("enable totp: %w", err)
	}
	slog.Info("admin two-factor enabled", "username", rec.Username)
	return true, nil
}

// Pending reports whether token belongs to a login waiting for its second
// factor.
func (g *Gate) Pending(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	st, ok, err := g.liveState(ctx)
	if err != nil || !ok || !st.TwoFactorPending {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(st.Token)) == 1, nil
}

// VerifyTwoFactor completes a login that is waiting for its second factor.
func (g *Gate) VerifyTwoFactor(ctx context.Context, code string) (bool, error) {
	st, ok, err := g.liveState(ctx)
	if err != nil || !ok || !st.TwoFactorPending {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok, err := g.loadAuth(ctx)
	if err != nil || !ok || !rec.TOTPEnabled {
		return false, err
	}
	if !g.validCode(code, rec.TOTPSecret) {
		slog.Info("admin two-factor code rejected", "username", rec.Username)
		return false, nil
	}

	now := g.now()
	rec.LastLogin = &now
	if err := g.saveJSON(ctx, kv.KeyAdminAuth, rec); err != nil {
		return false, fmt.Errorf("verify totp save account: %w", err)
	}

	st.IsAuthenticated = true
	st.TwoFactorPending = false
	st.LastLogin = now
	if err := g.saveJSON(ctx, kv.KeyAdminSession, st); err != nil {
		return false, fmt.Errorf("verify totp: %w", err)
	}
	return true, nil
}

// DisableTwoFactor turns two-factor login off after checking the password.
func (g *Gate) DisableTwoFactor(ctx context.Context, password string) (bool, error) {
	if err := g.requireAuthenticated(ctx); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok, err := g.loadAuth(ctx)
	if err != nil || !ok {
		return false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return false, nil
	}

	rec.TOTPSecret = ""
	rec.TOTPEnabled = false
	if err := g.saveJSON(ctx, kv.KeyAdminAuth, rec); err != nil {
		return false, fmt.Errorf("disable totp: %w", err)
	}
	slog.Info("admin two-factor disabled", "username", rec.Username)
	return true, nil
}

func (g *Gate) requireAuthenticated(ctx context.Context) error {
	ok, err := g.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthenticated
	}
	return nil
}

func (g *Gate) validCode(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, g.now(), validateOpts)
	return err == nil && ok
}
