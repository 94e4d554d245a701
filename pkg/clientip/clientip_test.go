package clientip_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plannerhq/planner/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.7", "", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded chain takes first", "203.0.113.7, 70.41.3.18, 150.172.238.178", "", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded with spaces", "  203.0.113.7  ", "", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded unknown skipped", "unknown", "198.51.100.2", "10.0.0.1:1234", "198.51.100.2"},
		{"real ip fallback", "", "198.51.100.2", "10.0.0.1:1234", "198.51.100.2"},
		{"remote addr fallback", "", "", "192.0.2.9:5555", "192.0.2.9"},
		{"ipv6 remote addr", "", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"nothing usable", "unknown", "unknown", "", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}

			assert.Equal(t, tc.want, clientip.GetIP(r))
		})
	}
}
