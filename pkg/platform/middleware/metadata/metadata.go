// Package metadata resolves the calling client's address for audit records.
package metadata

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// MaxForwardedHeaderLength bounds X-Forwarded-For and X-Real-IP.
const MaxForwardedHeaderLength = 500

type contextKeyClientIP struct{}

// ClientIP returns the address stored by Middleware, or "" outside a request.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(contextKeyClientIP{}).(string)
	return ip
}

// WithClientIP stores ip in ctx.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyClientIP{}, ip)
}

// Middleware records the client address. Forwarding headers are honored only
// when the socket peer falls inside one of trusted; with none configured the
// peer itself is the client.
func Middleware(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trusted)
			next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), ip)))
		})
	}
}

func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := remoteIP(r.RemoteAddr)
	if !peer.IsValid() {
		return "unknown"
	}
	if !isTrusted(peer, trusted) {
		return peer.String()
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if len(xff) > MaxForwardedHeaderLength {
			return peer.String()
		}
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
		return peer.String()
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && len(xri) <= MaxForwardedHeaderLength {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.String()
		}
	}
	return peer.String()
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteIP(remoteAddr string) netip.Addr {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return netip.Addr{}
	}
	return addr
}
