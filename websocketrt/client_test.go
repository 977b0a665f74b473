package websocketrt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mrzaxaryan/securert/httprt"
	"github.com/mrzaxaryan/securert/internal/rterr"
)

type fakeConn struct{}

func (fakeConn) Read(p []byte) (int, error)  { return 0, nil }
func (fakeConn) Write(p []byte) (int, error) { return len(p), nil }
func (fakeConn) Close() error                { return nil }

func newTestClient(input []byte) (*Client, *bytes.Buffer) {
	var out bytes.Buffer
	c := &Client{
		conn:   fakeConn{},
		reader: newFrameReader(bytes.NewReader(input)),
		writer: newFrameWriter(&out),
	}
	return c, &out
}

func TestValidateHandshakeResponseAccepts(t *testing.T) {
	key := "dGhlIHNhbXBsZSBub25jZQ=="
	resp := &httprt.Response{
		StatusCode: 101,
		Headers: map[string]string{
			"upgrade":              "websocket",
			"connection":           "Upgrade",
			"sec-websocket-accept": ComputeAcceptKey(key),
		},
	}
	if err := validateHandshakeResponse(resp, key); err != nil {
		t.Fatalf("validateHandshakeResponse: %v", err)
	}
}

func TestValidateHandshakeResponseRejectsWrongStatus(t *testing.T) {
	resp := &httprt.Response{StatusCode: 200, Headers: map[string]string{}}
	if err := validateHandshakeResponse(resp, "key"); err == nil {
		t.Fatalf("expected error for non-101 status")
	}
}

func TestValidateHandshakeResponseRejectsBadAccept(t *testing.T) {
	key := "dGhlIHNhbXBsZSBub25jZQ=="
	resp := &httprt.Response{
		StatusCode: 101,
		Headers: map[string]string{
			"upgrade":              "websocket",
			"connection":           "Upgrade",
			"sec-websocket-accept": "wrong-value",
		},
	}
	if err := validateHandshakeResponse(resp, key); err == nil {
		t.Fatalf("expected error for mismatched accept key")
	}
}

func TestRandomWebSocketKeyLength(t *testing.T) {
	key, err := randomWebSocketKey()
	if err != nil {
		t.Fatalf("randomWebSocketKey: %v", err)
	}
	if len(key) == 0 {
		t.Fatalf("expected non-empty key")
	}
}

func TestClientReadMessageReassemblesFragments(t *testing.T) {
	var frames bytes.Buffer
	fw := newFrameWriter(&frames)
	if err := fw.writeFrame(OpcodeText, false, []byte("Hel"), [4]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("writeFrame first fragment: %v", err)
	}
	if err := fw.writeFrame(OpcodeContinuation, true, []byte("lo"), [4]byte{5, 6, 7, 8}); err != nil {
		t.Fatalf("writeFrame final fragment: %v", err)
	}

	c, _ := newTestClient(frames.Bytes())
	opcode, payload, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if opcode != OpcodeText || string(payload) != "Hello" {
		t.Fatalf("got opcode=%d payload=%q, want Text/Hello", opcode, payload)
	}
}

func TestClientReadMessageAnswersPing(t *testing.T) {
	var frames bytes.Buffer
	fw := newFrameWriter(&frames)
	if err := fw.writeFrame(OpcodePing, true, []byte("ping-data"), [4]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("writeFrame ping: %v", err)
	}
	if err := fw.writeFrame(OpcodeText, true, []byte("hi"), [4]byte{5, 6, 7, 8}); err != nil {
		t.Fatalf("writeFrame text: %v", err)
	}

	c, out := newTestClient(frames.Bytes())
	opcode, payload, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if opcode != OpcodeText || string(payload) != "hi" {
		t.Fatalf("got opcode=%d payload=%q, want Text/hi", opcode, payload)
	}

	fr := newFrameReader(bytes.NewReader(out.Bytes()))
	pong, err := fr.readFrame()
	if err != nil {
		t.Fatalf("reading pong response: %v", err)
	}
	if pong.Opcode != OpcodePong || string(pong.Payload) != "ping-data" {
		t.Fatalf("expected Pong echoing ping-data, got %+v", pong)
	}
}

func TestClientReadMessageReportsClose(t *testing.T) {
	var frames bytes.Buffer
	fw := newFrameWriter(&frames)
	if err := fw.writeFrame(OpcodeClose, true, []byte{0x03, 0xe8}, [4]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("writeFrame close: %v", err)
	}

	c, _ := newTestClient(frames.Bytes())
	_, _, err := c.ReadMessage()
	if !errors.Is(err, rterr.ErrWsConnectionClosed) {
		t.Fatalf("expected ErrWsConnectionClosed, got %v", err)
	}
	if !c.closed {
		t.Fatalf("expected client to be marked closed")
	}
}

func TestClientWriteMessageAfterCloseFails(t *testing.T) {
	c, _ := newTestClient(nil)
	c.closed = true
	if err := c.WriteMessage(OpcodeText, []byte("x")); !errors.Is(err, rterr.ErrWsConnectionClosed) {
		t.Fatalf("expected ErrWsConnectionClosed, got %v", err)
	}
}
