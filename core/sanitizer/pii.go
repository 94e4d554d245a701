package sanitizer

import (
	"net"
	"regexp"
	"strings"
)

// PII masking for log output. These transforms run on every log record (see
// logger.MaskingHandler) so account numbers, phone numbers and street
// addresses never reach a log sink in the clear, regardless of which
// component emitted them.

var (
	accountNumberRegex = regexp.MustCompile(`\b(\d{6,})(\d{4})\b`)
	phoneDashedRegex   = regexp.MustCompile(`\b\d{3}-\d{4}\b`)
	phonePlainRegex    = regexp.MustCompile(`\b\d{7}\b`)

	// "123 Main Street, Springfield, IL" — house number, street tokens ending
	// in a known suffix, then city and two-letter state.
	streetAddressRegex = regexp.MustCompile(
		`\b\d{1,6}\s+(?:[A-Za-z'.-]+\s+){1,4}` +
			`(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Court|Ct|Place|Pl|Way|Terrace|Ter|Circle|Cir)\.?` +
			`\s*,\s*([A-Za-z][A-Za-z .'-]*?)\s*,?\s+([A-Z]{2})\b`)

	// Fallback for addresses whose street token is not in the suffix
	// dictionary: mask the leading tokens and keep city/state readable.
	looseAddressRegex = regexp.MustCompile(
		`\b\d{1,6}\s+(?:[A-Za-z0-9'.#-]+\s+){1,5}([A-Za-z][A-Za-z .'-]*?)\s*,\s*([A-Z]{2})\b`)
)

// MaskPII applies every masking rule to the input. Empty input stays empty.
func MaskPII(s string) string {
	if s == "" {
		return s
	}
	s = MaskStreetAddresses(s)
	s = MaskAccountNumbers(s)
	s = MaskPhoneNumbers(s)
	return s
}

// MaskAccountNumbers replaces runs of 10 or more consecutive digits with
// ***-***-LAST4.
func MaskAccountNumbers(s string) string {
	return accountNumberRegex.ReplaceAllString(s, "***-***-$2")
}

// MaskPhoneNumbers replaces 7-digit phone patterns (NNN-NNNN or NNNNNNN)
// with ***-***-****.
func MaskPhoneNumbers(s string) string {
	s = phoneDashedRegex.ReplaceAllString(s, "***-***-****")
	return phonePlainRegex.ReplaceAllString(s, "***-***-****")
}

// MaskStreetAddresses hides the street portion of postal addresses while
// keeping the city and state readable: "*** Springfield, IL ***".
func MaskStreetAddresses(s string) string {
	s = streetAddressRegex.ReplaceAllString(s, "*** $1, $2 ***")
	return looseAddressRegex.ReplaceAllString(s, "*** $1, $2 ***")
}

// MaskIP hides the last octet of IPv4 addresses (10.20.30.***). IPv6
// addresses carry enough entropy to identify a host outright, so they are
// reduced to the literal "masked". Unparseable input is also "masked".
func MaskIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "masked"
	}
	if v4 := parsed.To4(); v4 != nil {
		parts := strings.Split(v4.String(), ".")
		return strings.Join(parts[:3], ".") + ".***"
	}
	return "masked"
}

// sensitiveParams are query parameter names whose values never reach logs.
var sensitiveParams = map[string]struct{}{
	"token":         {},
	"password":      {},
	"secret":        {},
	"api_key":       {},
	"apikey":        {},
	"access_token":  {},
	"refresh_token": {},
	"authorization": {},
	"auth":          {},
	"key":           {},
}

// RedactQueryParams replaces the values of sensitive query parameters with
// "***" while preserving parameter names and ordering. The input is not
// required to be well-formed; broken pairs pass through stripped of control
// characters.
func RedactQueryParams(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	pairs := strings.Split(rawQuery, "&")
	for i, pair := range pairs {
		name, _, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		if _, sensitive := sensitiveParams[strings.ToLower(name)]; sensitive {
			pairs[i] = name + "=***"
		}
	}
	return RemoveControlChars(strings.Join(pairs, "&"))
}

// LogPlaceholder substitutes for user-controlled values that are empty after
// sanitization.
const LogPlaceholder = "-"

// SanitizeLogValue strips control characters from a user-controlled string
// and falls back to LogPlaceholder when nothing printable remains.
func SanitizeLogValue(s string) string {
	s = strings.TrimSpace(RemoveControlChars(s))
	if s == "" {
		return LogPlaceholder
	}
	return s
}

// userAgentMaxLen bounds User-Agent values in logs.
const userAgentMaxLen = 120

// SanitizeUserAgent strips control characters from a User-Agent value and
// truncates it to a bounded length, appending an ellipsis when truncated.
func SanitizeUserAgent(ua string) string {
	ua = SanitizeLogValue(ua)
	if len([]rune(ua)) > userAgentMaxLen {
		return MaxLength(ua, userAgentMaxLen) + "…"
	}
	return ua
}
