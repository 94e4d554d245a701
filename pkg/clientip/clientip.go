// Package clientip extracts real client IP addresses from HTTP requests.
//
// Requests arrive through proxies and load balancers, so the transport
// remote address alone is not enough: rate limiting keyed on it would
// collapse every client behind one proxy into a single bucket. Headers are
// checked in priority order:
//
//  1. X-Forwarded-For (first address in the list)
//  2. X-Real-IP
//  3. RemoteAddr (direct connection)
//
// Header values equal to the literal "unknown" are skipped, matching what
// some proxies emit when they cannot determine the upstream address. When no
// source yields an address, the sentinel Unknown is returned so callers can
// still form a stable (if degraded) rate-limit key.
//
// The first X-Forwarded-For hop is trusted unconditionally; deployments
// behind untrusted proxies should strip the header at the edge.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is returned when no valid client address can be determined.
const Unknown = "unknown"

// GetIP returns the client IP address for the request.
func GetIP(r *http.Request) string {
	if ip := fromHeaderValue(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if ip := fromHeaderValue(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host := remoteHost(r.RemoteAddr); host != "" {
		return host
	}
	return Unknown
}

func fromHeaderValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, Unknown) {
		return ""
	}
	// X-Forwarded-For may contain "client, proxy1, proxy2"; the leftmost
	// entry is the original client.
	first, _, _ := strings.Cut(value, ",")
	first = strings.TrimSpace(first)
	if first == "" || strings.EqualFold(first, Unknown) {
		return ""
	}
	if parsed := net.ParseIP(first); parsed != nil {
		return parsed.String()
	}
	return first
}

func remoteHost(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
