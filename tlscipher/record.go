// Package tlscipher implements the TLS 1.3 record-layer AEAD plumbing and
// key-schedule driver: RecordCrypto (per-direction AEAD contexts and
// sequence numbers), HandshakeHash (the streaming transcript hash) and
// Cipher (the key-schedule tree itself), grounded on
// original_source/src/ral/network/tls/TlsCipher.cc.
package tlscipher

import (
	"encoding/binary"

	"github.com/mrzaxaryan/securert/internal/aead"
)

// RecordCrypto holds one direction-pair of AEAD contexts and sequence
// counters for a TLS 1.3 connection — spec's "ChaCha20Encoder".
type RecordCrypto struct {
	localKey, remoteKey [aead.KeySize]byte
	localIV, remoteIV   [aead.NonceSize]byte
	localSeq, remoteSeq uint64
	initialized         bool
}

// Init installs a fresh pair of traffic keys/IVs and resets both sequence
// counters to zero.
func (r *RecordCrypto) Init(localKey, remoteKey [aead.KeySize]byte, localIV, remoteIV [aead.NonceSize]byte) {
	r.localKey = localKey
	r.remoteKey = remoteKey
	r.localIV = localIV
	r.remoteIV = remoteIV
	r.localSeq = 0
	r.remoteSeq = 0
	r.initialized = true
}

// IsInitialized reports whether Init has been called.
func (r *RecordCrypto) IsInitialized() bool { return r.initialized }

func deriveNonce(iv [aead.NonceSize]byte, seq uint64) [aead.NonceSize]byte {
	nonce := iv
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	for i := 0; i < 8; i++ {
		nonce[4+i] ^= seqBytes[i]
	}
	return nonce
}

// Encode seals plaintext under the local direction's key/IV at the current
// local sequence number (incrementing it on success), appending the 16-byte
// tag.
func (r *RecordCrypto) Encode(plaintext, aadHeader []byte) []byte {
	nonce := deriveNonce(r.localIV, r.localSeq)
	r.localSeq++
	return aead.Seal(r.localKey, nonce, plaintext, aadHeader)
}

// Decode opens a sealed record under the remote direction's key/IV at the
// current remote sequence number, incrementing it only on success — a
// decode failure leaves the counter unchanged, matching spec §4.7.
func (r *RecordCrypto) Decode(sealed, aadHeader []byte) ([]byte, error) {
	nonce := deriveNonce(r.remoteIV, r.remoteSeq)
	plaintext, err := aead.Open(r.remoteKey, nonce, sealed, aadHeader)
	if err != nil {
		return nil, err
	}
	r.remoteSeq++
	return plaintext, nil
}

// ComputeSize returns the on-wire size of a record body given its
// unencoded size: size+16 for outbound (add the AEAD tag) or size-16 for
// inbound (remove it), per spec §4.7.
func ComputeSize(size int, encoding bool) int {
	if encoding {
		return size + aead.TagSize
	}
	return size - aead.TagSize
}
