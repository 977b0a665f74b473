// Package tlsclient drives a TLS 1.3 handshake and record layer over a
// transport.Transport: ClientHello with dual P-256/P-384 key shares,
// ServerHello processing, handshake/application key-schedule transitions via
// tlscipher.Cipher, Finished verification, and the 5-byte record framing
// that follows (content-type masking to application_data once traffic keys
// are installed). Grounded on original_source's TlsClient
// (src/runtime/network/tls/tls_client.cc, read for control flow) and on
// TlsCipher.cc for the exact key-schedule call sequence.
package tlsclient

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/mrzaxaryan/securert/internal/ecdh"
	"github.com/mrzaxaryan/securert/internal/rterr"
	"github.com/mrzaxaryan/securert/tlscipher"
	"github.com/mrzaxaryan/securert/transport"
)

// state tracks this client's position in the handshake state machine
// (spec §4.10's TlsClient state enum).
type state int

const (
	stateUnopened state = iota
	stateWantServerHello
	stateWantEncryptedExtensions
	stateWantCertificateOrFinished
	stateWantFinished
	stateEstablished
	stateClosed
)

// Client is one TLS 1.3 connection. It is not safe for concurrent use from
// multiple goroutines, matching spec §5's no-shared-state model.
type Client struct {
	transport transport.Transport
	entropy   transport.Entropy
	hostname  string

	cipher *tlscipher.Cipher
	p256   *ecdh.ECC
	p384   *ecdh.ECC

	state state

	// pending holds application-data bytes decoded from a record that
	// arrived ahead of an in-progress Read call.
	pending []byte
}

// Create constructs an unopened TLS 1.3 client bound to t. hostname is used
// for the server_name extension. ent supplies key-generation randomness.
func Create(t transport.Transport, ent transport.Entropy, hostname string) *Client {
	return &Client{
		transport: t,
		entropy:   ent,
		hostname:  hostname,
		cipher:    tlscipher.NewCipher(),
		p256:      ecdh.NewP256(),
		p384:      ecdh.NewP384(),
		state:     stateUnopened,
	}
}

// IsValid reports whether the client has been opened and not closed.
func (c *Client) IsValid() bool { return c.state != stateClosed && c.state != stateUnopened }

// IsSecure reports whether the application-data traffic keys are installed
// (the handshake has completed).
func (c *Client) IsSecure() bool { return c.state == stateEstablished }

// Open performs the full handshake: ClientHello, ServerHello processing,
// key-schedule transitions and Finished exchange, leaving the client in the
// established state on success.
func (c *Client) Open(ctx context.Context, host string, port uint16) error {
	if err := c.transport.Open(ctx, host, port); err != nil {
		return err
	}
	if err := c.p256.Initialize(c.entropy); err != nil {
		return err
	}
	if err := c.p384.Initialize(c.entropy); err != nil {
		return err
	}

	var random, sessionID [32]byte
	if !c.entropy.GetArray(random[:]) || !c.entropy.GetArray(sessionID[:]) {
		return fmt.Errorf("tlsclient: random draw failed: %w", rterr.ErrEccInitFailed)
	}

	shares, err := c.buildKeyShares()
	if err != nil {
		return err
	}

	hello := buildClientHello(random, sessionID, c.hostname, shares)
	c.cipher.Transcript.Append(hello)
	if err := c.sendPacket(contentHandshake, hello); err != nil {
		return err
	}
	c.state = stateWantServerHello

	for c.state != stateEstablished {
		if err := c.step(); err != nil {
			c.state = stateClosed
			return err
		}
	}
	return nil
}

func (c *Client) buildKeyShares() ([]keyShareEntry, error) {
	p256Pub := make([]byte, 2*c.p256.EccBytes()+1)
	if _, err := c.p256.ExportPublicKey(p256Pub); err != nil {
		return nil, err
	}
	p384Pub := make([]byte, 2*c.p384.EccBytes()+1)
	if _, err := c.p384.ExportPublicKey(p384Pub); err != nil {
		return nil, err
	}
	return []keyShareEntry{
		{group: groupSecp256r1, pub: p256Pub},
		{group: groupSecp384r1, pub: p384Pub},
	}, nil
}

// step reads and dispatches one handshake record.
func (c *Client) step() error {
	contentType, payload, err := c.processReceive()
	if err != nil {
		return err
	}

	switch contentType {
	case contentChangeCipherSpec:
		return nil // TLS 1.3 compatibility shim, ignored per RFC 8446 Appendix D.4.
	case contentAlert:
		return fmt.Errorf("tlsclient: alert received: %w", rterr.ErrTlsAlertReceived)
	case contentHandshake:
		return c.handleHandshakeRecord(payload)
	default:
		return fmt.Errorf("tlsclient: unexpected content type %d: %w", contentType, rterr.ErrTlsUnexpectedPacket)
	}
}

// handleHandshakeRecord may contain several coalesced handshake messages
// (EncryptedExtensions..Finished commonly arrive in one record).
func (c *Client) handleHandshakeRecord(payload []byte) error {
	for len(payload) >= 4 {
		msgType := payload[0]
		msgLen := int(payload[1])<<16 | int(payload[2])<<8 | int(payload[3])
		if 4+msgLen > len(payload) {
			return fmt.Errorf("tlsclient: truncated handshake message: %w", rterr.ErrTlsUnexpectedPacket)
		}
		full := payload[:4+msgLen]
		body := payload[4 : 4+msgLen]

		if err := c.handleHandshakeMessage(msgType, body, full); err != nil {
			return err
		}
		payload = payload[4+msgLen:]
	}
	return nil
}

func (c *Client) handleHandshakeMessage(msgType byte, body, full []byte) error {
	switch msgType {
	case hsServerHello:
		if c.state != stateWantServerHello {
			return fmt.Errorf("tlsclient: unexpected ServerHello: %w", rterr.ErrTlsUnexpectedPacket)
		}
		return c.onServerHello(body, full)

	case hsEncryptedExtensions, hsCertificate, hsCertificateVerify:
		// Absorbed into the transcript only — no certificate validation
		// per this runtime's non-goals.
		c.cipher.Transcript.Append(full)
		return nil

	case hsFinished:
		if c.state == stateWantServerHello {
			return fmt.Errorf("tlsclient: Finished before ServerHello processed: %w", rterr.ErrTlsUnexpectedPacket)
		}
		return c.onServerFinished(body, full)

	default:
		return fmt.Errorf("tlsclient: unsupported handshake message type %d: %w", msgType, rterr.ErrTlsUnexpectedPacket)
	}
}

func (c *Client) onServerHello(body, full []byte) error {
	sh, err := parseServerHello(body)
	if err != nil {
		return err
	}
	if sh.cipherSuite != cipherChaCha20 {
		return fmt.Errorf("tlsclient: server selected unsupported cipher suite 0x%04x: %w", sh.cipherSuite, rterr.ErrTlsBadCipherSuite)
	}
	if sh.peerPublic == nil {
		return errMissingKeyShare
	}

	var engine *ecdh.ECC
	switch sh.group {
	case groupSecp256r1:
		engine = c.p256
	case groupSecp384r1:
		engine = c.p384
	default:
		return errUnknownGroup
	}

	shared := make([]byte, engine.EccBytes())
	if err := engine.ComputeSharedSecret(sh.peerPublic, shared); err != nil {
		return err
	}

	c.cipher.Transcript.Append(full)
	c.cipher.ComputeHandshakeKeys(shared)
	c.state = stateWantEncryptedExtensions
	return nil
}

func (c *Client) onServerFinished(body, full []byte) error {
	transcriptBeforeFinished := c.cipher.Transcript.Sum()
	expected := c.cipher.ComputeVerify(tlscipher.Server, transcriptBeforeFinished)
	if !constantTimeEqual(expected, body) {
		return fmt.Errorf("tlsclient: server Finished verify-data mismatch: %w", rterr.ErrTlsVerifyFinished)
	}
	c.cipher.Transcript.Append(full)

	clientFinishedHash := c.cipher.Transcript.Sum()
	clientVerify := c.cipher.ComputeVerify(tlscipher.Client, clientFinishedHash)
	clientFinishedMsg := buildHandshakeMessage(hsFinished, clientVerify)
	if err := c.sendPacket(contentHandshake, clientFinishedMsg); err != nil {
		return err
	}
	c.cipher.Transcript.Append(clientFinishedMsg)

	c.cipher.ComputeApplicationKeys(clientFinishedHash)
	c.state = stateEstablished
	return nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// Read returns up to len(buf) bytes of decrypted application data, blocking
// on the transport until at least one record has been decoded.
func (c *Client) Read(buf []byte) (int, error) {
	if c.state != stateEstablished {
		return 0, fmt.Errorf("tlsclient: read before handshake established: %w", rterr.ErrTlsUnexpectedPacket)
	}
	for len(c.pending) == 0 {
		contentType, payload, err := c.processReceive()
		if err != nil {
			return 0, err
		}
		switch contentType {
		case contentApplicationData:
			c.pending = payload
		case contentAlert:
			return 0, fmt.Errorf("tlsclient: alert received: %w", rterr.ErrTlsAlertReceived)
		case contentHandshake:
			// Post-handshake messages (session tickets, key updates) are
			// accepted onto the transcript-free path and otherwise ignored.
		default:
			return 0, fmt.Errorf("tlsclient: unexpected content type %d: %w", contentType, rterr.ErrTlsUnexpectedPacket)
		}
	}
	n := copy(buf, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Write seals buf as application data and sends it.
func (c *Client) Write(buf []byte) (int, error) {
	if c.state != stateEstablished {
		return 0, fmt.Errorf("tlsclient: write before handshake established: %w", rterr.ErrTlsUnexpectedPacket)
	}
	if err := c.sendPacket(contentApplicationData, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	c.state = stateClosed
	return c.transport.Close()
}

// sendPacket frames payload under contentType, sealing it under the
// installed traffic keys once the handshake secret transition has
// happened — after which the wire content type is always masked to
// application_data and the real type is appended as the TLSInnerPlaintext
// trailer, per RFC 8446 §5.2.
func (c *Client) sendPacket(contentType byte, payload []byte) error {
	if !c.cipher.Record.IsInitialized() || contentType == contentChangeCipherSpec {
		header := make([]byte, 5)
		header[0] = contentType
		binary.BigEndian.PutUint16(header[1:3], tlsLegacyVersion)
		binary.BigEndian.PutUint16(header[3:5], uint16(len(payload)))
		if _, err := c.transport.Write(header); err != nil {
			return err
		}
		_, err := c.transport.Write(payload)
		return err
	}

	inner := make([]byte, 0, len(payload)+1)
	inner = append(inner, payload...)
	inner = append(inner, contentType)

	sealedLen := tlscipher.ComputeSize(len(inner), true)
	header := make([]byte, 5)
	header[0] = contentApplicationData
	binary.BigEndian.PutUint16(header[1:3], tlsLegacyVersion)
	binary.BigEndian.PutUint16(header[3:5], uint16(sealedLen))

	sealed := c.cipher.Record.Encode(inner, header)
	if _, err := c.transport.Write(header); err != nil {
		return err
	}
	_, err := c.transport.Write(sealed)
	return err
}

// processReceive reads one 5-byte-framed record from the transport,
// decoding it under the remote traffic keys if installed and unmasking the
// TLSInnerPlaintext's trailing real content type.
func (c *Client) processReceive() (byte, []byte, error) {
	header := make([]byte, 5)
	if err := readFull(c.transport, header); err != nil {
		return 0, nil, err
	}
	contentType := header[0]
	length := int(binary.BigEndian.Uint16(header[3:5]))

	body := make([]byte, length)
	if err := readFull(c.transport, body); err != nil {
		return 0, nil, err
	}

	if !c.cipher.Record.IsInitialized() || contentType == contentChangeCipherSpec {
		return contentType, body, nil
	}

	plaintext, err := c.cipher.Record.Decode(body, header)
	if err != nil {
		return 0, nil, err
	}

	i := len(plaintext) - 1
	for i >= 0 && plaintext[i] == 0 {
		i--
	}
	if i < 0 {
		return 0, nil, fmt.Errorf("tlsclient: inner plaintext carries no content type: %w", rterr.ErrTlsUnexpectedPacket)
	}
	return plaintext[i], plaintext[:i], nil
}

func readFull(t transport.Transport, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := t.Read(buf[total:])
		total += n
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("tlsclient: transport read returned no progress: %w", rterr.ErrSocketRead)
		}
	}
	return nil
}
