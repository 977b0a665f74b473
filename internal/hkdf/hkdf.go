// Package hkdf implements HKDF-SHA256 Extract/Expand (wrapping
// golang.org/x/crypto/hkdf, the same dependency the teacher's
// http3/quic/crypto.go already carries) and the TLS 1.3 ExpandLabel wire
// encoding, grounded on that file's hkdfExpandLabel helper.
package hkdf

import (
	"crypto/hmac"
	"crypto/sha256"

	xhkdf "golang.org/x/crypto/hkdf"

	"github.com/mrzaxaryan/securert/internal/embed"
)

// HashSize is the output width of SHA-256, this module's only configured
// HKDF hash (spec's Cipher component is fixed to TLS_CHACHA20_POLY1305_SHA256).
const HashSize = sha256.Size

// Extract implements HKDF-Extract: HMAC-SHA256(salt, ikm).
func Extract(salt, ikm []byte) []byte {
	mac := hmac.New(sha256.New, salt)
	mac.Write(ikm)
	return mac.Sum(nil)
}

// Expand implements HKDF-Expand via x/crypto/hkdf's streaming reader.
func Expand(prk, info []byte, length int) []byte {
	r := xhkdf.Expand(sha256.New, prk, info)
	out := make([]byte, length)
	if _, err := r.Read(out); err != nil {
		panic("hkdf: expand reader exhausted: " + err.Error())
	}
	return out
}

// tls13Prefix is the mandatory 6-byte ASCII label prefix defined by RFC
// 8446 §7.1, materialized at call time rather than held as a package
// literal.
func tls13Prefix() []byte { return embed.Bytes("tls13 ") }

// ExpandLabel builds the HkdfLabel structure (u16 length, length-prefixed
// "tls13 "+label, length-prefixed context) and runs Expand over it, per
// spec §4.8 and RFC 8446 §7.1.
func ExpandLabel(secret []byte, label string, context []byte, length int) []byte {
	fullLabel := append(tls13Prefix(), []byte(label)...)

	hkdfLabel := make([]byte, 0, 2+1+len(fullLabel)+1+len(context))
	hkdfLabel = append(hkdfLabel, byte(length>>8), byte(length))
	hkdfLabel = append(hkdfLabel, byte(len(fullLabel)))
	hkdfLabel = append(hkdfLabel, fullLabel...)
	hkdfLabel = append(hkdfLabel, byte(len(context)))
	hkdfLabel = append(hkdfLabel, context...)

	return Expand(secret, hkdfLabel, length)
}
