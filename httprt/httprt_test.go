package httprt

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseURLDefaults(t *testing.T) {
	u, err := ParseURL("https://example.com/dns-query")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if !u.Secure || u.WebSocket {
		t.Fatalf("expected secure non-websocket URL")
	}
	if u.Host != "example.com" || u.Port != 443 || u.Path != "/dns-query" {
		t.Fatalf("unexpected parse result: %+v", u)
	}
}

func TestParseURLExplicitPortAndPath(t *testing.T) {
	u, err := ParseURL("ws://localhost:8080/socket")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if u.Secure != false || !u.WebSocket {
		t.Fatalf("expected insecure websocket URL")
	}
	if u.Host != "localhost" || u.Port != 8080 || u.Path != "/socket" {
		t.Fatalf("unexpected parse result: %+v", u)
	}
}

func TestParseURLRejectsMissingScheme(t *testing.T) {
	if _, err := ParseURL("example.com/path"); err == nil {
		t.Fatalf("expected error for missing scheme")
	}
}

func TestBuildRequestIncludesContentLength(t *testing.T) {
	body := []byte("hello")
	req := BuildRequest("POST", "/dns-query", "example.com", map[string]string{"Accept": "application/dns-message"}, body)
	s := string(req)
	if !strings.Contains(s, "POST /dns-query HTTP/1.1\r\n") {
		t.Fatalf("missing request line: %q", s)
	}
	if !strings.Contains(s, "Content-Length: 5\r\n") {
		t.Fatalf("missing Content-Length: %q", s)
	}
	if !strings.HasSuffix(s, "\r\n\r\nhello") {
		t.Fatalf("body not appended correctly: %q", s)
	}
}

func TestReadResponseHeadersParsesStatusAndContentLength(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Type: application/dns-message\r\nContent-Length: 42\r\n\r\n"
	resp, err := ReadResponseHeaders(bytes.NewBufferString(raw))
	if err != nil {
		t.Fatalf("ReadResponseHeaders: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.ContentLength != 42 {
		t.Fatalf("expected content length 42, got %d", resp.ContentLength)
	}
	if resp.Headers["content-type"] != "application/dns-message" {
		t.Fatalf("missing content-type header")
	}
}

func TestReadResponseHeadersExpectingRejectsWrongStatus(t *testing.T) {
	raw := "HTTP/1.1 404 Not Found\r\n\r\n"
	_, err := ReadResponseHeadersExpecting(bytes.NewBufferString(raw), 200)
	if err == nil {
		t.Fatalf("expected error for status mismatch")
	}
}
