package httprt

import (
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"
)

// BuildRequest formats a minimal HTTP/1.1 request line + headers + body,
// always sending Host, Connection: keep-alive and (if body is non-empty)
// Content-Length, mirroring the teacher's setDefaultHeaders.
func BuildRequest(method, path, host string, headers map[string]string, body []byte) []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "%s %s HTTP/1.1\r\n", method, path)
	fmt.Fprintf(buf, "Host: %s\r\n", host)
	fmt.Fprintf(buf, "Connection: keep-alive\r\n")
	for k, v := range headers {
		fmt.Fprintf(buf, "%s: %s\r\n", k, v)
	}
	if len(body) > 0 {
		fmt.Fprintf(buf, "Content-Length: %d\r\n", len(body))
	}
	buf.WriteString("\r\n")
	buf.Write(body)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

// WriteRequest writes a formatted request to w in one call.
func WriteRequest(w io.Writer, method, path, host string, headers map[string]string, body []byte) error {
	_, err := w.Write(BuildRequest(method, path, host, headers, body))
	return err
}
