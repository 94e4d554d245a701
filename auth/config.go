package auth

import "time"

// Config holds token settings with environment variable mapping. Durations
// are configured in milliseconds to keep parity with the refresh-window
// boundary semantics, which are defined at millisecond precision.
type Config struct {
	// Secret is the signing key: base64 when decodable, raw UTF-8 otherwise.
	// The effective key must be at least 256 bits.
	Secret string `env:"JWT_SECRET,required"`
	// ExpirationMS is the access-token TTL (default 30 minutes).
	ExpirationMS int64 `env:"JWT_EXPIRATION_MS" envDefault:"1800000"`
	// RefreshWindowMS is the post-expiration grace during which an expired
	// token may still be exchanged (default 5 minutes).
	RefreshWindowMS int64 `env:"JWT_REFRESH_WINDOW_MS" envDefault:"300000"`
}

// AccessTTL returns the access-token lifetime.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.ExpirationMS) * time.Millisecond
}

// RefreshWindow returns the post-expiration refresh grace.
func (c Config) RefreshWindow() time.Duration {
	return time.Duration(c.RefreshWindowMS) * time.Millisecond
}
