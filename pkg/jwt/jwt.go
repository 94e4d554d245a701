// Package jwt provides an RFC 7519 compliant JSON Web Token implementation
// using HMAC-SHA256. It supports standard claims and custom payload
// structures, uses constant-time signature comparison, and validates
// temporal claims against an injectable clock.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MinKeyLength is the minimum signing key length in bytes (256 bits), as
// required for HMAC-SHA256.
const MinKeyLength = 32

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

var encodedHeader = base64.RawURLEncoding.EncodeToString(mustMarshal(header{Alg: "HS256", Typ: "JWT"}))

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Service generates and parses HMAC-SHA256 signed tokens.
type Service struct {
	signingKey []byte
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the time source used for temporal claim validation.
// All expiry comparisons in the process should share one clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service with the given signing key. The key must be at least
// 256 bits.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	if len(signingKey) < MinKeyLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrInvalidSigningKey, MinKeyLength, len(signingKey))
	}

	s := &Service{
		signingKey: signingKey,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString creates a Service from a textual key. If the value is valid
// standard base64 it is decoded first; otherwise the raw UTF-8 bytes are
// used. The raw fallback exists for backwards compatibility with plain-text
// secrets; either way the effective key must be at least 256 bits.
func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	return New(DecodeKey(signingKey), opts...)
}

// DecodeKey resolves a configured key string to its effective bytes:
// base64-decoded when the value is valid standard base64, raw UTF-8 bytes
// otherwise.
func DecodeKey(signingKey string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(signingKey); err == nil {
		return decoded
	}
	if !utf8.ValidString(signingKey) {
		return nil
	}
	return []byte(signingKey)
}

// Generate creates a signed token from the given claims. Claims may be
// StandardClaims or any JSON-serializable struct embedding it.
func (s *Service) Generate(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	signingInput := encodedHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return signingInput + "." + s.sign(signingInput), nil
}

// Parse verifies the token signature and unmarshals the payload into claims.
// Claims are populated before temporal validation, so on ErrExpiredToken the
// caller can still inspect the expired claims; refresh flows rely on this.
func (s *Service) Parse(token string, claims any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	var h header
	if err := json.Unmarshal(headerBytes, &h); err != nil {
		return ErrInvalidToken
	}
	if h.Alg != "HS256" {
		return fmt.Errorf("%w: %s", ErrUnexpectedSigningMethod, h.Alg)
	}

	signingInput := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(s.sign(signingInput)), []byte(parts[2])) {
		return ErrInvalidSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidToken
	}
	if err := json.Unmarshal(payload, claims); err != nil {
		return errors.Join(ErrInvalidToken, err)
	}

	var temporal StandardClaims
	if err := json.Unmarshal(payload, &temporal); err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	return s.validateTemporal(temporal)
}

// validateTemporal checks nbf and exp against the service clock, in
// milliseconds. A token is expired iff now >= exp; a token minted with exp
// strictly in the future is valid at mint time.
func (s *Service) validateTemporal(claims StandardClaims) error {
	nowMillis := s.now().UnixMilli()

	if claims.NotBefore != 0 && nowMillis < claims.NotBefore {
		return ErrInvalidToken
	}
	if claims.ExpiresAt != 0 && nowMillis >= claims.ExpiresAt {
		return ErrExpiredToken
	}
	return nil
}

func (s *Service) sign(input string) string {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
