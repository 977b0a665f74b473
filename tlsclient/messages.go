package tlsclient

import "encoding/binary"

// TLS 1.3 content types (spec §4.10 ProcessReceive dispatch table).
const (
	contentChangeCipherSpec byte = 20
	contentAlert            byte = 21
	contentHandshake        byte = 22
	contentApplicationData  byte = 23
)

// Handshake message types this client parses or emits.
const (
	hsClientHello         byte = 1
	hsServerHello         byte = 2
	hsEncryptedExtensions byte = 8
	hsCertificate         byte = 11
	hsCertificateVerify   byte = 15
	hsFinished            byte = 20
)

const (
	tlsLegacyVersion uint16 = 0x0303
	tls13Version     uint16 = 0x0304
	cipherChaCha20   uint16 = 0x1303

	groupSecp256r1 uint16 = 0x0017
	groupSecp384r1 uint16 = 0x0018

	extServerName        uint16 = 0x0000
	extSupportedGroups   uint16 = 0x000a
	extSignatureAlgs     uint16 = 0x000d
	extKeyShare          uint16 = 0x0033
	extSupportedVersions uint16 = 0x002b
)

func putU16(buf []byte, v uint16) { binary.BigEndian.PutUint16(buf, v) }

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	putU16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU24(buf []byte, v int) []byte {
	return append(buf, byte(v>>16), byte(v>>8), byte(v))
}

// buildHandshakeMessage wraps body in the 4-byte handshake header (1-byte
// type, 3-byte big-endian length).
func buildHandshakeMessage(msgType byte, body []byte) []byte {
	out := make([]byte, 0, 4+len(body))
	out = append(out, msgType)
	out = appendU24(out, len(body))
	out = append(out, body...)
	return out
}

type keyShareEntry struct {
	group uint16
	pub   []byte
}

// buildClientHello assembles a TLS 1.3 ClientHello offering
// TLS_CHACHA20_POLY1305_SHA256 and both P-256/P-384 key shares, per spec
// §2's control-flow narrative ("ClientHello w/ two ECDH key_shares").
func buildClientHello(random [32]byte, sessionID [32]byte, hostname string, shares []keyShareEntry) []byte {
	body := make([]byte, 0, 512)
	body = appendU16(body, tlsLegacyVersion)
	body = append(body, random[:]...)

	body = append(body, byte(len(sessionID)))
	body = append(body, sessionID[:]...)

	body = appendU16(body, uint16(2)) // cipher_suites length
	body = appendU16(body, cipherChaCha20)

	body = append(body, 1, 0) // compression_methods: length 1, method "null"

	extensions := make([]byte, 0, 256)

	// server_name
	sni := make([]byte, 0, len(hostname)+5)
	sni = appendU16(sni, uint16(len(hostname)+3))
	sni = append(sni, 0) // name_type: host_name
	sni = appendU16(sni, uint16(len(hostname)))
	sni = append(sni, []byte(hostname)...)
	extensions = appendU16(extensions, extServerName)
	extensions = appendU16(extensions, uint16(len(sni)))
	extensions = append(extensions, sni...)

	// supported_versions
	extensions = appendU16(extensions, extSupportedVersions)
	extensions = appendU16(extensions, 3)
	extensions = append(extensions, 2)
	extensions = appendU16(extensions, tls13Version)

	// supported_groups
	groups := make([]byte, 0, 6)
	groups = appendU16(groups, 4)
	groups = appendU16(groups, groupSecp256r1)
	groups = appendU16(groups, groupSecp384r1)
	extensions = appendU16(extensions, extSupportedGroups)
	extensions = appendU16(extensions, uint16(len(groups)))
	extensions = append(extensions, groups...)

	// signature_algorithms (required by most TLS 1.3 servers to proceed,
	// though this client never validates the resulting signature — spec's
	// certificate-validation non-goal).
	sigAlgs := make([]byte, 0, 10)
	sigAlgs = appendU16(sigAlgs, 6)
	sigAlgs = appendU16(sigAlgs, 0x0403) // ecdsa_secp256r1_sha256
	sigAlgs = appendU16(sigAlgs, 0x0503) // ecdsa_secp384r1_sha384
	sigAlgs = appendU16(sigAlgs, 0x0804) // rsa_pss_rsae_sha256
	extensions = appendU16(extensions, extSignatureAlgs)
	extensions = appendU16(extensions, uint16(len(sigAlgs)))
	extensions = append(extensions, sigAlgs...)

	// key_share
	ks := make([]byte, 0, 128)
	entries := make([]byte, 0, 128)
	for _, s := range shares {
		entries = appendU16(entries, s.group)
		entries = appendU16(entries, uint16(len(s.pub)))
		entries = append(entries, s.pub...)
	}
	ks = appendU16(ks, uint16(len(entries)))
	ks = append(ks, entries...)
	extensions = appendU16(extensions, extKeyShare)
	extensions = appendU16(extensions, uint16(len(ks)))
	extensions = append(extensions, ks...)

	body = appendU16(body, uint16(len(extensions)))
	body = append(body, extensions...)

	return buildHandshakeMessage(hsClientHello, body)
}

type serverHello struct {
	random      [32]byte
	cipherSuite uint16
	group       uint16
	peerPublic  []byte
}

// parseServerHello parses a ServerHello handshake body (without the 4-byte
// handshake header), extracting the fields this client needs: cipher
// suite, server random and the server's key_share entry.
func parseServerHello(body []byte) (*serverHello, error) {
	if len(body) < 2+32+1 {
		return nil, errShortServerHello
	}
	pos := 2 // skip legacy_version
	var sh serverHello
	copy(sh.random[:], body[pos:pos+32])
	pos += 32

	sessionIDLen := int(body[pos])
	pos++
	pos += sessionIDLen
	if pos+2+1 > len(body) {
		return nil, errShortServerHello
	}

	sh.cipherSuite = binary.BigEndian.Uint16(body[pos : pos+2])
	pos += 2
	pos++ // compression_method

	if pos+2 > len(body) {
		return nil, errShortServerHello
	}
	extLen := int(binary.BigEndian.Uint16(body[pos : pos+2]))
	pos += 2
	if pos+extLen > len(body) {
		return nil, errShortServerHello
	}
	extensions := body[pos : pos+extLen]

	for len(extensions) >= 4 {
		extType := binary.BigEndian.Uint16(extensions[0:2])
		extBodyLen := int(binary.BigEndian.Uint16(extensions[2:4]))
		if 4+extBodyLen > len(extensions) {
			return nil, errShortServerHello
		}
		extBody := extensions[4 : 4+extBodyLen]

		if extType == extKeyShare && len(extBody) >= 4 {
			sh.group = binary.BigEndian.Uint16(extBody[0:2])
			pubLen := int(binary.BigEndian.Uint16(extBody[2:4]))
			if 4+pubLen <= len(extBody) {
				sh.peerPublic = append([]byte(nil), extBody[4:4+pubLen]...)
			}
		}
		extensions = extensions[4+extBodyLen:]
	}

	return &sh, nil
}
