package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plannerhq/planner/core/sanitizer"
)

func TestMaskAccountNumbers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "account ***-***-7890 closed",
		sanitizer.MaskAccountNumbers("account 1234567890 closed"))
	assert.Equal(t, "order 12345 ok",
		sanitizer.MaskAccountNumbers("order 12345 ok"), "short digit runs pass through")

	// Longer runs carry a full account number inside them; only the last
	// four digits may survive.
	assert.Equal(t, "card ***-***-8901 on file",
		sanitizer.MaskAccountNumbers("card 12345678901 on file"))
	assert.Equal(t, "ref ***-***-3456 closed",
		sanitizer.MaskAccountNumbers("ref 1234567890123456 closed"))
}

func TestMaskPhoneNumbers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "call ***-***-****", sanitizer.MaskPhoneNumbers("call 555-1234"))
	assert.Equal(t, "call ***-***-****", sanitizer.MaskPhoneNumbers("call 5551234"))
}

func TestMaskStreetAddresses(t *testing.T) {
	t.Parallel()

	masked := sanitizer.MaskStreetAddresses("ship to 123 Main Street, Springfield, IL please")
	assert.NotContains(t, masked, "123 Main Street")
	assert.Contains(t, masked, "Springfield")
	assert.Contains(t, masked, "IL")
}

func TestMaskIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"203.0.113.42", "203.0.113.***"},
		{"10.0.0.1", "10.0.0.***"},
		{"2001:db8::1", "masked"},
		{"not-an-ip", "masked"},
		{"", "unknown"},
		{"unknown", "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizer.MaskIP(tc.in), tc.in)
	}
}

func TestRedactQueryParams(t *testing.T) {
	t.Parallel()

	got := sanitizer.RedactQueryParams("page=2&token=abc123&sort=asc&PASSWORD=hunter2")
	assert.Equal(t, "page=2&token=***&sort=asc&PASSWORD=***", got)

	assert.Equal(t, "", sanitizer.RedactQueryParams(""))
	assert.Equal(t, "broken", sanitizer.RedactQueryParams("broken"))
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "helloworld", sanitizer.SanitizeLogValue("hello\r\nworld"))
	assert.Equal(t, "ab", sanitizer.SanitizeLogValue("a\x00b"))
	assert.Equal(t, "-", sanitizer.SanitizeLogValue("\r\n\t"), "nothing printable falls back to placeholder")
}

func TestSanitizeLogValueStripsNewlines(t *testing.T) {
	t.Parallel()

	// Log forging attempt: injected line breaks must not survive.
	got := sanitizer.SanitizeLogValue("GET /x HTTP/1.1\n203.0.113.9 - forged entry")
	assert.NotContains(t, got, "\n")
}

func TestSanitizeUserAgent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Mozilla/5.0", sanitizer.SanitizeUserAgent("Mozilla/5.0"))

	long := strings.Repeat("a", 300)
	got := sanitizer.SanitizeUserAgent(long)
	assert.Len(t, []rune(got), 121, "120 runes plus ellipsis")
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestSingleLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", sanitizer.SingleLine("a\nb\r\nc"))
}
