package guest

import (
	"net"
	"net/http"
	"strings"
)

// unknownClient is used when no address information is available at all.
const unknownClient = "unknown"

// ClientIdentifier derives a best-effort client identifier from forwarded
// address headers. This is a heuristic for counting, not an identity: the
// headers are trivially spoofable and this must never be treated as a
// security boundary.
func ClientIdentifier(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop in the chain is the original client.
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return unknownClient
}
