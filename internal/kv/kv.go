// Package kv defines the persistent key-value medium the portfolio store and
// the admin session gate write to. A Backend plays the role browser local
// storage plays for a single-page app: small string values under fixed keys,
// read and written whole.
package kv

import (
	"context"
	"errors"
)

// Keys used by the store and the session gate.
const (
	KeyPortfolioData    = "portfolio_data"
	KeyPortfolioVersion = "portfolio_version"
	KeyAdminAuth        = "admin_auth"
	KeyAdminSession     = "admin_session"
)

// ErrQuotaExceeded is returned by backends with a size limit when a write
// would exceed it.
var ErrQuotaExceeded = errors.New("kv: quota exceeded")

// Backend is a string key-value store. Get reports ok=false for a missing key
// without an error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
