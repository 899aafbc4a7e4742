package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// MaxXFFHeaderLength is the maximum allowed length for forwarded-address
// headers to prevent header injection.
const MaxXFFHeaderLength = 500

type clientIPKey struct{}
type userAgentKey struct{}

// ClientIP retrieves the client IP extracted by Metadata, or "" when absent.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent retrieves the client User-Agent extracted by Metadata, or "".
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata injects client metadata into the context. Exposed for tests.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// MetadataConfig holds configuration for the Metadata middleware.
type MetadataConfig struct {
	// TrustedProxies is a list of IP prefixes (CIDR notation) that are trusted
	// to set X-Forwarded-For headers. If empty, XFF is never trusted.
	TrustedProxies []netip.Prefix
}

// ParseTrustedProxies converts CIDR strings into prefixes, skipping invalid entries.
func ParseTrustedProxies(cidrs []string) []netip.Prefix {
	var out []netip.Prefix
	for _, c := range cidrs {
		if p, err := netip.ParsePrefix(c); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// Metadata extracts the client IP address and User-Agent from the request and
// adds them to the context for the audit trail collector and handlers.
func Metadata(cfg *MetadataConfig) func(http.Handler) http.Handler {
	if cfg == nil {
		cfg = &MetadataConfig{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractClientIP(r, cfg.TrustedProxies)
			ctx := WithClientMetadata(r.Context(), ip, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractClientIP resolves the client address with trusted-proxy validation.
// X-Forwarded-For and X-Real-IP are honored only when the direct peer is a
// trusted proxy; otherwise the connection address wins.
func extractClientIP(r *http.Request, trusted []netip.Prefix) string {
	remoteIP := parseRemoteAddr(r.RemoteAddr)
	if remoteIP == "" {
		return ""
	}
	if !isTrustedProxy(remoteIP, trusted) {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && len(xff) <= MaxXFFHeaderLength {
		// Client address is the first entry in the chain.
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if _, err := netip.ParseAddr(first); err == nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && len(xri) <= MaxXFFHeaderLength {
		candidate := strings.TrimSpace(xri)
		if _, err := netip.ParseAddr(candidate); err == nil {
			return candidate
		}
	}
	return remoteIP
}

func parseRemoteAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// RemoteAddr may come without a port in tests.
		if _, perr := netip.ParseAddr(remoteAddr); perr == nil {
			return remoteAddr
		}
		return ""
	}
	return host
}

func isTrustedProxy(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
