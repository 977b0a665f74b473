package httprt

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrzaxaryan/securert/internal/rterr"
)

// maxHeaderBytes bounds the status-line+header read so a misbehaving peer
// can't force unbounded buffering.
const maxHeaderBytes = 16 * 1024

// Response holds the parsed status line and header map of an HTTP/1.1
// response, plus the status code and Content-Length (-1 if absent).
type Response struct {
	StatusCode    int
	Headers       map[string]string
	ContentLength int64
}

// ReadResponseHeaders reads one HTTP/1.1 response's status line and headers
// from r, byte at a time (r may be a record-layer Read that never returns
// more than one TLS record's worth of data), stopping at the blank line
// terminator. It does not consume any bytes past the header block.
func ReadResponseHeaders(r io.Reader) (*Response, error) {
	raw, err := readUntilDoubleCRLF(r)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(raw), "\r\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("httprt: empty response: %w", rterr.ErrHttpBadHeader)
	}

	statusCode, err := parseStatusLine(lines[0])
	if err != nil {
		return nil, err
	}

	resp := &Response{StatusCode: statusCode, Headers: make(map[string]string), ContentLength: -1}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, fmt.Errorf("httprt: malformed header line %q: %w", line, rterr.ErrHttpBadHeader)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		resp.Headers[strings.ToLower(key)] = val
	}

	if cl, ok := resp.Headers["content-length"]; ok {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("httprt: malformed Content-Length %q: %w", cl, rterr.ErrHttpBadHeader)
		}
		resp.ContentLength = n
	}

	return resp, nil
}

// ReadResponseHeadersExpecting is ReadResponseHeaders plus a status-code
// check, matching the original's ReadResponseHeaders(tlsClient, 200)
// call convention.
func ReadResponseHeadersExpecting(r io.Reader, wantStatus int) (*Response, error) {
	resp, err := ReadResponseHeaders(r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("httprt: got status %d, want %d: %w", resp.StatusCode, wantStatus, rterr.ErrHttpBadStatus)
	}
	return resp, nil
}

func parseStatusLine(line string) (int, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0, fmt.Errorf("httprt: malformed status line %q: %w", line, rterr.ErrHttpBadHeader)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("httprt: malformed status code %q: %w", parts[1], rterr.ErrHttpBadHeader)
	}
	return code, nil
}

func readUntilDoubleCRLF(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	var one [1]byte
	for buf.Len() < maxHeaderBytes {
		n, err := r.Read(one[:])
		if n > 0 {
			buf.WriteByte(one[0])
			if buf.Len() >= 4 && bytes.HasSuffix(buf.Bytes(), []byte("\r\n\r\n")) {
				return bytes.TrimSuffix(buf.Bytes(), []byte("\r\n\r\n")), nil
			}
		}
		if err != nil {
			return nil, fmt.Errorf("httprt: read response headers: %w", err)
		}
	}
	return nil, fmt.Errorf("httprt: header block exceeds %d bytes: %w", maxHeaderBytes, rterr.ErrHttpBadHeader)
}
