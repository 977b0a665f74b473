// Package httprt implements a minimal HTTP/1.1 request/response engine:
// URL parsing for http/https/ws/wss schemes, request formatting and a
// status-line + header reader that extracts Content-Length. Grounded on
// the teacher's pkg/shockwave/client/client.go (parseURL, doHTTP11Optimized)
// and original_source/src/network/http.cc.
package httprt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrzaxaryan/securert/internal/rterr"
)

// URL is the subset of a parsed URL this runtime's HTTP/WebSocket clients
// need: scheme-derived defaults, no query/fragment handling (out of scope).
type URL struct {
	Secure   bool // true for https/wss
	WebSocket bool // true for ws/wss
	Host     string
	Port     uint16
	Path     string
}

// ParseURL parses an http(s):// or ws(s):// URL, defaulting the path to "/"
// and the port to the scheme's standard port when omitted.
func ParseURL(raw string) (*URL, error) {
	scheme, rest, ok := cutScheme(raw)
	if !ok {
		return nil, fmt.Errorf("httprt: missing scheme in %q: %w", raw, rterr.ErrHttpParseUrlFailed)
	}

	u := &URL{}
	switch scheme {
	case "http":
		u.Secure, u.WebSocket = false, false
	case "https":
		u.Secure, u.WebSocket = true, false
	case "ws":
		u.Secure, u.WebSocket = false, true
	case "wss":
		u.Secure, u.WebSocket = true, true
	default:
		return nil, fmt.Errorf("httprt: unsupported scheme %q: %w", scheme, rterr.ErrHttpParseUrlFailed)
	}

	hostPort := rest
	path := "/"
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		hostPort = rest[:idx]
		path = rest[idx:]
	}
	if hostPort == "" {
		return nil, fmt.Errorf("httprt: empty host in %q: %w", raw, rterr.ErrHttpParseUrlFailed)
	}

	host, port := hostPort, defaultPort(u.Secure)
	if idx := strings.LastIndexByte(hostPort, ':'); idx >= 0 {
		host = hostPort[:idx]
		parsed, err := strconv.ParseUint(hostPort[idx+1:], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("httprt: bad port in %q: %w", raw, rterr.ErrHttpParseUrlFailed)
		}
		port = uint16(parsed)
	}

	u.Host = host
	u.Port = port
	u.Path = path
	return u, nil
}

func cutScheme(raw string) (scheme, rest string, ok bool) {
	idx := strings.Index(raw, "://")
	if idx < 0 {
		return "", "", false
	}
	return strings.ToLower(raw[:idx]), raw[idx+3:], true
}

func defaultPort(secure bool) uint16 {
	if secure {
		return 443
	}
	return 80
}
