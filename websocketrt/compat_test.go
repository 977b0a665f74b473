package websocketrt

import (
	"net"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
)

// These tests cross-check the frame codec against github.com/gorilla/websocket
// acting as the other endpoint over an in-memory net.Pipe, so the wire
// format is validated against an independent implementation rather than
// only against itself.

func TestFrameWriterInteropWithGorillaServer(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	defer clientSide.Close()
	defer serverSide.Close()

	serverConn := gorilla.NewConn(serverSide, true, 4096, 4096)

	done := make(chan struct{})
	var gotType int
	var gotPayload []byte
	var readErr error
	go func() {
		gotType, gotPayload, readErr = serverConn.ReadMessage()
		close(done)
	}()

	fw := newFrameWriter(clientSide)
	if err := fw.writeFrame(OpcodeText, true, []byte("hello from securert"), [4]byte{0xDE, 0xAD, 0xBE, 0xEF}); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for gorilla server to read frame")
	}

	if readErr != nil {
		t.Fatalf("gorilla ReadMessage: %v", readErr)
	}
	if gotType != gorilla.TextMessage {
		t.Fatalf("message type = %d, want TextMessage", gotType)
	}
	if string(gotPayload) != "hello from securert" {
		t.Fatalf("payload = %q, want %q", gotPayload, "hello from securert")
	}
}

func TestFrameReaderInteropWithGorillaServer(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	defer clientSide.Close()
	defer serverSide.Close()

	serverConn := gorilla.NewConn(serverSide, true, 4096, 4096)

	done := make(chan error, 1)
	go func() {
		done <- serverConn.WriteMessage(gorilla.BinaryMessage, []byte("reply payload"))
	}()

	fr := newFrameReader(clientSide)
	frame, err := fr.readFrame()
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}

	if writeErr := <-done; writeErr != nil {
		t.Fatalf("gorilla WriteMessage: %v", writeErr)
	}

	if frame.Opcode != OpcodeBinary {
		t.Fatalf("opcode = %d, want OpcodeBinary", frame.Opcode)
	}
	if string(frame.Payload) != "reply payload" {
		t.Fatalf("payload = %q, want %q", frame.Payload, "reply payload")
	}
}
