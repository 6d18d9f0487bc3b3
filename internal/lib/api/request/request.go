package request

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP prefers the proxy-supplied X-Forwarded-For chain over the
// socket address; the UCP sits behind a reverse proxy in production.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
