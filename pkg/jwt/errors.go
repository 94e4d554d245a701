package jwt

import "errors"

// Package-level error definitions for token operations.
var (
	ErrInvalidToken            = errors.New("invalid token")
	ErrExpiredToken            = errors.New("token has expired")
	ErrInvalidSignature        = errors.New("invalid token signature")
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
	ErrMissingSigningKey       = errors.New("missing signing key")
	ErrInvalidSigningKey       = errors.New("invalid signing key")
	ErrMissingClaims           = errors.New("missing claims")
)
