// Package aead composes internal/chacha20 and internal/poly1305 into the
// RFC 8439 ChaCha20-Poly1305 AEAD construction, grounded on
// original_source's ChaCha20Poly1305 class (Poly1305PadAndTrail,
// Poly1305Aead, Poly1305Decode). The exported Seal/Open pair matches the
// shape of the standard library's crypto/cipher.AEAD interface, the
// idiomatic Go surface for an AEAD construction.
package aead

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/mrzaxaryan/securert/internal/chacha20"
	"github.com/mrzaxaryan/securert/internal/poly1305"
	"github.com/mrzaxaryan/securert/internal/rterr"
)

const (
	KeySize   = 32
	NonceSize = chacha20.IVLength
	TagSize   = 16
)

func padAndFeed(mac *poly1305.Poly1305, data []byte) {
	mac.Update(data)
	if rem := len(data) % 16; rem != 0 {
		var zeros [16]byte
		mac.Update(zeros[:16-rem])
	}
}

func macOver(key [32]byte, nonce [NonceSize]byte, aad, ciphertext []byte) [16]byte {
	polyKey := poly1305.GenerateKey(key, nonce)
	mac := poly1305.New(polyKey)

	padAndFeed(mac, aad)
	padAndFeed(mac, ciphertext)

	var trailer [16]byte
	binary.LittleEndian.PutUint64(trailer[0:8], uint64(len(aad)))
	binary.LittleEndian.PutUint64(trailer[8:16], uint64(len(ciphertext)))
	mac.Update(trailer[:])

	var tag [16]byte
	mac.Finish(&tag)
	return tag
}

// Seal encrypts plaintext under key/nonce, authenticating aad, appending
// the 16-byte tag to the returned ciphertext. The keystream for ciphertext
// starts at counter 1 (counter 0 is consumed generating the Poly1305 key).
func Seal(key [32]byte, nonce [NonceSize]byte, plaintext, aad []byte) []byte {
	var state chacha20.State
	state.KeySetup(key[:])
	state.IVSetup96BitNonce(nonce[:], true)
	state.SetCounter(1)

	ciphertext := make([]byte, len(plaintext), len(plaintext)+TagSize)
	state.EncryptBytes(plaintext, ciphertext)

	tag := macOver(key, nonce, aad, ciphertext)
	return append(ciphertext, tag[:]...)
}

// Open verifies and decrypts sealed (ciphertext‖tag), returning an error
// without ever revealing where in the tag the mismatch occurred — spec §7
// requires a generic decode failure, never a side channel about the
// mismatch location.
func Open(key [32]byte, nonce [NonceSize]byte, sealed, aad []byte) ([]byte, error) {
	if len(sealed) < TagSize {
		return nil, fmt.Errorf("aead: sealed input shorter than tag: %w", rterr.ErrChaCha20DecodeFailed)
	}
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	expected := macOver(key, nonce, aad, ciphertext)
	if subtle.ConstantTimeCompare(expected[:], tag) != 1 {
		return nil, rterr.ErrChaCha20DecodeFailed
	}

	var state chacha20.State
	state.KeySetup(key[:])
	state.IVSetup96BitNonce(nonce[:], true)
	state.SetCounter(1)

	plaintext := make([]byte, len(ciphertext))
	state.EncryptBytes(ciphertext, plaintext)
	return plaintext, nil
}
