package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spaolacci/murmur3"
)

// UnknownClient is the identifier used when no address metadata can be
// derived. Unidentifiable callers pool into one shared bucket on purpose;
// an empty key would do the same silently.
const UnknownClient = "unknown"

// ClientKey derives a stable per-caller identifier from the request: the
// first IP of X-Forwarded-For, then X-Real-IP, then the remote address,
// falling back to UnknownClient.
//
// X-Forwarded-For is trusted as-is; deploy behind a proxy that sanitizes it.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if ip := remoteIP(r.RemoteAddr); ip != "" {
		return ip
	}
	return UnknownClient
}

// ClientKeyWithAgent combines ClientKey with a hash of the user agent so
// distinct clients behind one address split into separate buckets. The agent
// is hashed so key length stays bounded and raw header content never
// reaches storage keys.
func ClientKeyWithAgent(r *http.Request) string {
	key := ClientKey(r)
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		return key
	}
	return fmt.Sprintf("%s:%016x", key, murmur3.Sum64([]byte(ua)))
}

// remoteIP strips the port from a RemoteAddr, handling bracketed IPv6.
func remoteIP(addr string) string {
	if addr == "" {
		return ""
	}

	if addr[0] == '[' {
		end := strings.IndexByte(addr, ']')
		if end < 0 {
			return addr
		}
		return addr[1:end]
	}

	first := strings.IndexByte(addr, ':')
	if first >= 0 && first == strings.LastIndexByte(addr, ':') {
		return addr[:first]
	}
	// No port, or an unbracketed IPv6 address.
	return addr
}
