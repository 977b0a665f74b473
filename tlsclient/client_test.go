package tlsclient

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestBuildClientHelloWellFormed(t *testing.T) {
	var random, sessionID [32]byte
	shares := []keyShareEntry{
		{group: groupSecp256r1, pub: bytes.Repeat([]byte{0x04}, 65)},
		{group: groupSecp384r1, pub: bytes.Repeat([]byte{0x04}, 97)},
	}
	msg := buildClientHello(random, sessionID, "example.com", shares)

	if msg[0] != hsClientHello {
		t.Fatalf("expected handshake type %d, got %d", hsClientHello, msg[0])
	}
	declaredLen := int(msg[1])<<16 | int(msg[2])<<8 | int(msg[3])
	if declaredLen != len(msg)-4 {
		t.Fatalf("declared body length %d does not match actual %d", declaredLen, len(msg)-4)
	}
}

func TestParseServerHelloExtractsKeyShare(t *testing.T) {
	pub := bytes.Repeat([]byte{0xAB}, 65)

	keyShareExt := make([]byte, 0)
	keyShareExt = appendU16(keyShareExt, groupSecp256r1)
	keyShareExt = appendU16(keyShareExt, uint16(len(pub)))
	keyShareExt = append(keyShareExt, pub...)

	extensions := make([]byte, 0)
	extensions = appendU16(extensions, extKeyShare)
	extensions = appendU16(extensions, uint16(len(keyShareExt)))
	extensions = append(extensions, keyShareExt...)

	body := make([]byte, 0)
	body = appendU16(body, tls13Version)
	body = append(body, bytes.Repeat([]byte{0x11}, 32)...)
	body = append(body, 0) // empty session_id echo
	body = appendU16(body, cipherChaCha20)
	body = append(body, 0) // compression method
	body = appendU16(body, uint16(len(extensions)))
	body = append(body, extensions...)

	sh, err := parseServerHello(body)
	if err != nil {
		t.Fatalf("parseServerHello: %v", err)
	}
	if sh.cipherSuite != cipherChaCha20 {
		t.Fatalf("cipher suite mismatch")
	}
	if sh.group != groupSecp256r1 {
		t.Fatalf("group mismatch: got 0x%04x", sh.group)
	}
	if !bytes.Equal(sh.peerPublic, pub) {
		t.Fatalf("peer public key mismatch")
	}
}

func TestParseServerHelloRejectsTruncatedBody(t *testing.T) {
	if _, err := parseServerHello([]byte{0x03}); err == nil {
		t.Fatalf("expected error for truncated ServerHello")
	}
}

func TestConstantTimeEqual(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	c := []byte{1, 2, 4}
	if !constantTimeEqual(a, b) {
		t.Fatalf("expected equal slices to compare equal")
	}
	if constantTimeEqual(a, c) {
		t.Fatalf("expected differing slices to compare unequal")
	}
	if constantTimeEqual(a, []byte{1, 2}) {
		t.Fatalf("expected differing-length slices to compare unequal")
	}
}

func TestAppendU24BigEndian(t *testing.T) {
	buf := appendU24(nil, 0x0a0b0c)
	if len(buf) != 3 || buf[0] != 0x0a || buf[1] != 0x0b || buf[2] != 0x0c {
		t.Fatalf("unexpected appendU24 output: %v", buf)
	}
}

func TestHeaderLengthRoundTrip(t *testing.T) {
	header := make([]byte, 5)
	header[0] = contentApplicationData
	binary.BigEndian.PutUint16(header[1:3], tlsLegacyVersion)
	binary.BigEndian.PutUint16(header[3:5], 1234)
	if int(binary.BigEndian.Uint16(header[3:5])) != 1234 {
		t.Fatalf("header length round trip failed")
	}
}
