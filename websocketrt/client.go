package websocketrt

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/mrzaxaryan/securert/httprt"
	"github.com/mrzaxaryan/securert/internal/rterr"
	"github.com/mrzaxaryan/securert/tlsclient"
	"github.com/mrzaxaryan/securert/transport"
)

// connection is the minimal byte-stream contract this client drives the
// handshake and frames over — satisfied by both transport.TCPTransport
// (ws://) and *tlsclient.Client (wss://).
type connection interface {
	io.Reader
	io.Writer
	Close() error
}

// Client is one open WebSocket connection. Not safe for concurrent use.
type Client struct {
	conn        connection
	reader      *frameReader
	writer      *frameWriter
	subprotocol string
	closed      bool
}

// Dial performs the RFC 6455 opening handshake against a ws:// or wss://
// URL and returns a ready-to-use Client. extraHeaders are layered on top of
// the mandatory Upgrade headers (e.g. Origin, Sec-WebSocket-Protocol).
func Dial(ctx context.Context, rawURL string, extraHeaders map[string]string) (*Client, error) {
	u, err := httprt.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if !u.WebSocket {
		return nil, fmt.Errorf("websocketrt: %q is not a ws(s):// URL: %w", rawURL, rterr.ErrWsCreateFailed)
	}

	conn, err := openConnection(ctx, u)
	if err != nil {
		return nil, err
	}

	key, err := randomWebSocketKey()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("websocketrt: generate Sec-WebSocket-Key: %w", rterr.ErrWsCreateFailed)
	}

	headers := map[string]string{
		"Upgrade":               "websocket",
		"Connection":            "Upgrade",
		"Sec-WebSocket-Key":     key,
		"Sec-WebSocket-Version": "13",
	}
	for k, v := range extraHeaders {
		headers[k] = v
	}

	if err := httprt.WriteRequest(conn, "GET", u.Path, u.Host, headers, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("websocketrt: send handshake: %w", rterr.ErrWsTransportFailed)
	}

	resp, err := httprt.ReadResponseHeaders(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("websocketrt: read handshake response: %w", rterr.ErrWsHandshakeFailed)
	}
	if err := validateHandshakeResponse(resp, key); err != nil {
		conn.Close()
		return nil, err
	}

	return &Client{
		conn:        conn,
		reader:      newFrameReader(conn),
		writer:      newFrameWriter(conn),
		subprotocol: resp.Headers["sec-websocket-protocol"],
	}, nil
}

func openConnection(ctx context.Context, u *httprt.URL) (connection, error) {
	if u.Secure {
		c := tlsclient.Create(transport.NewTCPTransport(), transport.OSEntropy{}, u.Host)
		if err := c.Open(ctx, u.Host, u.Port); err != nil {
			return nil, fmt.Errorf("websocketrt: open TLS connection: %w", rterr.ErrWsTransportFailed)
		}
		return c, nil
	}
	t := transport.NewTCPTransport()
	if err := t.Open(ctx, u.Host, u.Port); err != nil {
		return nil, fmt.Errorf("websocketrt: open connection: %w", rterr.ErrWsTransportFailed)
	}
	return t, nil
}

func validateHandshakeResponse(resp *httprt.Response, key string) error {
	if resp.StatusCode != 101 {
		return fmt.Errorf("websocketrt: handshake status %d, want 101: %w", resp.StatusCode, rterr.ErrWsHandshakeFailed)
	}
	if !strings.EqualFold(resp.Headers["upgrade"], "websocket") {
		return fmt.Errorf("websocketrt: missing Upgrade: websocket header: %w", rterr.ErrWsHandshakeFailed)
	}
	if !strings.Contains(strings.ToLower(resp.Headers["connection"]), "upgrade") {
		return fmt.Errorf("websocketrt: missing Connection: Upgrade header: %w", rterr.ErrWsHandshakeFailed)
	}
	if resp.Headers["sec-websocket-accept"] != ComputeAcceptKey(key) {
		return fmt.Errorf("websocketrt: Sec-WebSocket-Accept mismatch: %w", rterr.ErrWsHandshakeFailed)
	}
	return nil
}

func randomWebSocketKey() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

func randomMaskKey() ([4]byte, error) {
	var key [4]byte
	_, err := rand.Read(key[:])
	return key, err
}

// ReadMessage reads one complete message, reassembling fragmented data
// frames and transparently answering Ping with Pong. A Close frame is
// echoed back and reported as rterr.ErrWsConnectionClosed.
func (c *Client) ReadMessage() (opcode byte, payload []byte, err error) {
	var message []byte
	var msgOpcode byte
	started := false

	for {
		frame, err := c.reader.readFrame()
		if err != nil {
			return 0, nil, fmt.Errorf("websocketrt: read frame: %w", rterr.ErrWsReceiveFailed)
		}

		if frame.IsControl() {
			switch frame.Opcode {
			case OpcodePing:
				if err := c.respondControl(OpcodePong, frame.Payload); err != nil {
					return 0, nil, err
				}
			case OpcodePong:
				// no action required
			case OpcodeClose:
				c.closed = true
				c.respondControl(OpcodeClose, frame.Payload)
				return OpcodeClose, frame.Payload, fmt.Errorf("websocketrt: peer closed connection: %w", rterr.ErrWsConnectionClosed)
			}
			continue
		}

		if !started {
			msgOpcode = frame.Opcode
			started = true
		}
		message = append(message, frame.Payload...)
		if frame.Fin {
			return msgOpcode, message, nil
		}
	}
}

func (c *Client) respondControl(opcode byte, payload []byte) error {
	key, err := randomMaskKey()
	if err != nil {
		return fmt.Errorf("websocketrt: mask key generation: %w", rterr.ErrWsAllocFailed)
	}
	if err := c.writer.writeFrame(opcode, true, payload, key); err != nil {
		return err
	}
	return nil
}

// WriteMessage sends a single, unfragmented Text or Binary message.
func (c *Client) WriteMessage(opcode byte, payload []byte) error {
	if c.closed {
		return fmt.Errorf("websocketrt: write after close: %w", rterr.ErrWsConnectionClosed)
	}
	key, err := randomMaskKey()
	if err != nil {
		return fmt.Errorf("websocketrt: mask key generation: %w", rterr.ErrWsAllocFailed)
	}
	return c.writer.writeFrame(opcode, true, payload, key)
}

// Close sends a Close frame with the given status code and reason, then
// closes the underlying connection.
func (c *Client) Close(code uint16, reason string) error {
	if c.closed {
		return c.conn.Close()
	}
	c.closed = true

	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload, code)
	copy(payload[2:], reason)

	key, err := randomMaskKey()
	if err == nil {
		c.writer.writeFrame(OpcodeClose, true, payload, key)
	}
	return c.conn.Close()
}

// Subprotocol returns the negotiated Sec-WebSocket-Protocol value, or "" if
// none was negotiated.
func (c *Client) Subprotocol() string { return c.subprotocol }
