// Package auth implements session tokens and the authentication service:
// minting, parsing, refresh-window assessment, credential verification, and
// the HTTP handlers for the /api/auth surface.
package auth

import (
	"errors"
	"time"

	"github.com/plannerhq/planner/pkg/jwt"
)

// TokenService mints and validates session tokens. All temporal decisions
// use one injected clock shared with the underlying signer.
type TokenService struct {
	signer        *jwt.Service
	accessTTL     time.Duration
	refreshWindow time.Duration
	now           func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock injects the time source for minting and expiry decisions.
func WithClock(now func() time.Time) TokenOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a token service from configuration. Fails at
// startup when the signing key is unset or shorter than 256 bits after
// decoding.
func NewTokenService(cfg Config, opts ...TokenOption) (*TokenService, error) {
	ts := &TokenService{
		accessTTL:     cfg.AccessTTL(),
		refreshWindow: cfg.RefreshWindow(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}

	signer, err := jwt.NewFromString(cfg.Secret, jwt.WithClock(func() time.Time { return ts.now() }))
	if err != nil {
		return nil, err
	}
	ts.signer = signer
	return ts, nil
}

// AccessTTL returns the configured access-token lifetime.
func (ts *TokenService) AccessTTL() time.Duration {
	return ts.accessTTL
}

// Issue mints a token whose subject is the username, issued at the current
// clock and expiring after the access TTL.
func (ts *TokenService) Issue(username string) (string, error) {
	iat := ts.now().UnixMilli()
	return ts.signer.Generate(jwt.StandardClaims{
		Subject:   username,
		IssuedAt:  iat,
		ExpiresAt: iat + ts.accessTTL.Milliseconds(),
	})
}

// ParseSubject verifies the token and returns its subject. Expired tokens
// fail with jwt.ErrExpiredToken; structural and signature failures with the
// corresponding jwt errors.
func (ts *TokenService) ParseSubject(token string) (string, error) {
	var claims jwt.StandardClaims
	if err := ts.signer.Parse(token, &claims); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsValidFor reports whether the token is currently valid for the username.
// Comparison is exact and case-sensitive. Expired tokens yield false, never
// an error.
func (ts *TokenService) IsValidFor(token, username string) bool {
	subject, err := ts.ParseSubject(token)
	return err == nil && subject == username
}

// IsRefreshable reports whether the token can be exchanged for a fresh one:
// either it is still valid for the username, or it expired no longer than
// the refresh window ago and its subject matches. Signature and structural
// failures are never refreshable.
func (ts *TokenService) IsRefreshable(token, username string) bool {
	var claims jwt.StandardClaims
	err := ts.signer.Parse(token, &claims)
	switch {
	case err == nil:
		return claims.Subject == username
	case errors.Is(err, jwt.ErrExpiredToken):
		// Claims are populated before temporal validation, so the expired
		// token's subject and expiry are still inspectable.
		if claims.Subject != username {
			return false
		}
		expiredFor := ts.now().UnixMilli() - claims.ExpiresAt
		return expiredFor <= ts.refreshWindow.Milliseconds()
	default:
		return false
	}
}

// Subject verifies the signature and returns the subject even when the
// token is expired. The refresh flow uses it to identify who is asking
// before assessing refreshability.
func (ts *TokenService) Subject(token string) (string, error) {
	var claims jwt.StandardClaims
	err := ts.signer.Parse(token, &claims)
	if err != nil && !errors.Is(err, jwt.ErrExpiredToken) {
		return "", err
	}
	return claims.Subject, nil
}
