package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMetadata(t *testing.T, cfg *MetadataConfig, prep func(*http.Request)) (ip, ua string) {
	t.Helper()
	handler := Metadata(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = ClientIP(r.Context())
		ua = UserAgent(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if prep != nil {
		prep(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return ip, ua
}

func TestMetadataUsesRemoteAddrByDefault(t *testing.T) {
	ip, ua := runMetadata(t, nil, func(r *http.Request) {
		r.RemoteAddr = "203.0.113.7:51234"
		r.Header.Set("User-Agent", "Mozilla/5.0")
		// XFF from an untrusted peer must be ignored.
		r.Header.Set("X-Forwarded-For", "10.0.0.1")
	})
	assert.Equal(t, "203.0.113.7", ip)
	assert.Equal(t, "Mozilla/5.0", ua)
}

func TestMetadataTrustsConfiguredProxy(t *testing.T) {
	prefix, err := netip.ParsePrefix("192.168.0.0/16")
	require.NoError(t, err)
	cfg := &MetadataConfig{TrustedProxies: []netip.Prefix{prefix}}

	ip, _ := runMetadata(t, cfg, func(r *http.Request) {
		r.RemoteAddr = "192.168.1.1:443"
		r.Header.Set("X-Forwarded-For", "198.51.100.9, 192.168.1.1")
	})
	assert.Equal(t, "198.51.100.9", ip)
}

func TestMetadataRejectsGarbageForwardedAddr(t *testing.T) {
	prefix, _ := netip.ParsePrefix("192.168.0.0/16")
	cfg := &MetadataConfig{TrustedProxies: []netip.Prefix{prefix}}

	ip, _ := runMetadata(t, cfg, func(r *http.Request) {
		r.RemoteAddr = "192.168.1.1:443"
		r.Header.Set("X-Forwarded-For", "not-an-ip")
	})
	assert.Equal(t, "192.168.1.1", ip)
}

func TestParseTrustedProxiesSkipsInvalid(t *testing.T) {
	prefixes := ParseTrustedProxies([]string{"10.0.0.0/8", "bogus", "192.168.0.0/16"})
	assert.Len(t, prefixes, 2)
}
