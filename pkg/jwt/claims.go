package jwt

// StandardClaims holds the RFC 7519 registered claims. Temporal claims are
// Unix timestamps in milliseconds, not the RFC's seconds: token validity is
// decided at millisecond precision, which second-granular timestamps cannot
// express. Zero values are treated as absent.
type StandardClaims struct {
	ID        string `json:"jti,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	Audience  string `json:"aud,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}
