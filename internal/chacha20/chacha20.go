// Package chacha20 implements the 20-round ChaCha20 stream cipher block
// function and keystream generator, grounded on original_source's
// ChaCha20Poly1305 class (src/runtime/crypto/chacha20.h: KeySetup,
// IVSetup/IVSetup96BitNonce, IVUpdate, Block, EncryptBytes).
package chacha20

import (
	"encoding/binary"
	"math/bits"

	"github.com/mrzaxaryan/securert/internal/embed"
)

const blockSize = 64

// State is one ChaCha20 stream cipher instance: 4 constant words, 8 key
// words, 1 block counter and 3 nonce words, plus the unused tail of the
// last generated keystream block.
type State struct {
	words      [16]uint32
	keystream  [blockSize]byte
	unusedFrom int // index into keystream of the first unconsumed byte; blockSize means "empty"
}

var constantWords = func() [4]uint32 {
	lit := embed.String("expand 32-byte k")
	var w [4]uint32
	for i := 0; i < 4; i++ {
		w[i] = binary.LittleEndian.Uint32([]byte(lit[i*4 : i*4+4]))
	}
	return w
}()

// KeySetup installs a 32-byte key into state words 4..11 and the constant
// words into 0..3. Counter and nonce are left zero.
func (s *State) KeySetup(key []byte) {
	s.words[0], s.words[1], s.words[2], s.words[3] = constantWords[0], constantWords[1], constantWords[2], constantWords[3]
	for i := 0; i < 8; i++ {
		s.words[4+i] = binary.LittleEndian.Uint32(key[i*4 : i*4+4])
	}
	s.words[12] = 0
	s.unusedFrom = blockSize
}

// IVLength is the 96-bit nonce length this implementation uses throughout
// (TLS 1.3 record nonces).
const IVLength = 12

// IVSetup96BitNonce installs a 96-bit nonce into words 13..15 and,
// optionally, resets the block counter to zero (resetCounter == false
// leaves it as-is). A nil iv leaves the nonce words as-is.
func (s *State) IVSetup96BitNonce(iv []byte, resetCounter bool) {
	if resetCounter {
		s.words[12] = 0
	}
	if iv != nil {
		s.words[13] = binary.LittleEndian.Uint32(iv[0:4])
		s.words[14] = binary.LittleEndian.Uint32(iv[4:8])
		s.words[15] = binary.LittleEndian.Uint32(iv[8:12])
	}
	s.unusedFrom = blockSize
}

// IVUpdate derives the per-record nonce for a given sequence number: nonce
// = iv XOR (8 zero bytes ‖ big-endian 64-bit seqnum), per spec §4.5's TLS
// 1.3 nonce derivation, and installs it with the given starting counter.
func (s *State) IVUpdate(iv [IVLength]byte, seq uint64, counter uint32) {
	var nonce [IVLength]byte
	copy(nonce[:], iv[:])
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	for i := 0; i < 8; i++ {
		nonce[4+i] ^= seqBytes[i]
	}
	s.words[12] = counter
	s.words[13] = binary.LittleEndian.Uint32(nonce[0:4])
	s.words[14] = binary.LittleEndian.Uint32(nonce[4:8])
	s.words[15] = binary.LittleEndian.Uint32(nonce[8:12])
	s.unusedFrom = blockSize
}

// SetCounter overwrites the block counter word directly, used by the AEAD
// construction to start encryption at counter 1 (counter 0 is reserved for
// Poly1305 one-time key derivation).
func (s *State) SetCounter(c uint32) {
	s.words[12] = c
	s.unusedFrom = blockSize
}

func quarterRound(a, b, c, d *uint32) {
	*a += *b
	*d ^= *a
	*d = bits.RotateLeft32(*d, 16)
	*c += *d
	*b ^= *c
	*b = bits.RotateLeft32(*b, 12)
	*a += *b
	*d ^= *a
	*d = bits.RotateLeft32(*d, 8)
	*c += *d
	*b ^= *c
	*b = bits.RotateLeft32(*b, 7)
}

// Block runs the 20-round ChaCha20 block function over the current state
// (without advancing the counter) and serializes the result little-endian
// into out, which must be at least 64 bytes.
func (s *State) Block(out []byte) {
	var w [16]uint32
	copy(w[:], s.words[:])

	for round := 0; round < 10; round++ {
		quarterRound(&w[0], &w[4], &w[8], &w[12])
		quarterRound(&w[1], &w[5], &w[9], &w[13])
		quarterRound(&w[2], &w[6], &w[10], &w[14])
		quarterRound(&w[3], &w[7], &w[11], &w[15])

		quarterRound(&w[0], &w[5], &w[10], &w[15])
		quarterRound(&w[1], &w[6], &w[11], &w[12])
		quarterRound(&w[2], &w[7], &w[8], &w[13])
		quarterRound(&w[3], &w[4], &w[9], &w[14])
	}

	for i := 0; i < 16; i++ {
		w[i] += s.words[i]
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], w[i])
	}
}

// EncryptBytes XORs in with the keystream, advancing (and regenerating)
// the block counter as needed, and retains unused keystream bytes across
// calls the same way the original EncryptBytes does.
func (s *State) EncryptBytes(in, out []byte) {
	for i := 0; i < len(in); i++ {
		if s.unusedFrom >= blockSize {
			s.Block(s.keystream[:])
			s.words[12]++
			s.unusedFrom = 0
		}
		out[i] = in[i] ^ s.keystream[s.unusedFrom]
		s.unusedFrom++
	}
}
