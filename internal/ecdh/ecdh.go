// Package ecdh implements the ECDH key-agreement engine over internal/curve
// points: key generation with bounded retries, uncompressed public-key
// import/export and shared-secret computation, grounded on
// original_source's Ecc class (src/runtime/crypto/ecc.h / ecc.cc).
package ecdh

import (
	"fmt"

	"github.com/mrzaxaryan/securert/internal/bigint"
	"github.com/mrzaxaryan/securert/internal/curve"
	"github.com/mrzaxaryan/securert/internal/rterr"
	"github.com/mrzaxaryan/securert/transport"
)

// maxInitAttempts bounds key-generation retries (spec §4.3: up to 16
// attempts before failing).
const maxInitAttempts = 16

// ECC holds one ECDH keypair for a single curve.
type ECC struct {
	curve    *curve.Curve
	eccBytes int
	private  []uint64
	public   curve.Point
}

// NewP256 constructs an uninitialized P-256 ECDH engine.
func NewP256() *ECC { return &ECC{curve: curve.NewP256(), eccBytes: 32} }

// NewP384 constructs an uninitialized P-384 ECDH engine.
func NewP384() *ECC { return &ECC{curve: curve.NewP384(), eccBytes: 48} }

// EccBytes returns the per-coordinate encoded width (32 for P-256, 48 for
// P-384).
func (e *ECC) EccBytes() int { return e.eccBytes }

// Initialize draws a private scalar from ent, retrying up to
// maxInitAttempts times on a zero scalar or a resulting point at infinity,
// per spec §4.3.
func (e *ECC) Initialize(ent transport.Entropy) error {
	n := e.curve.NumWords
	buf := make([]byte, n*8)
	scalar := make([]uint64, n)

	for attempt := 0; attempt < maxInitAttempts; attempt++ {
		if !ent.GetArray(buf) {
			continue
		}
		bytesToLimbs(scalar, buf)

		if bigint.IsZero(scalar) {
			continue
		}
		if bigint.Cmp(scalar, e.curve.N) >= 0 {
			bigint.Sub(scalar, scalar, e.curve.N)
		}
		if bigint.IsZero(scalar) {
			continue
		}

		// curve.ScalarMult's co-Z ladder never reads the scalar's top
		// bit, treating it as set unconditionally; clamp it here the
		// way X25519 clamps its scalar, and retry in the rare case
		// that pushes the value past the group order.
		scalar[n-1] |= 1 << 63
		if bigint.Cmp(scalar, e.curve.N) >= 0 {
			continue
		}

		pub := e.curve.ScalarMult(curve.Point{X: e.curve.Gx, Y: e.curve.Gy}, scalar)
		if pub.IsInfinity() {
			continue
		}

		e.private = scalar
		e.public = pub
		return nil
	}
	return fmt.Errorf("ecdh: key generation exhausted %d attempts: %w", maxInitAttempts, rterr.ErrEccInitFailed)
}

// ExportPublicKey writes the uncompressed 0x04‖X‖Y encoding of the public
// key into out, which must be at least 2*EccBytes()+1 bytes, and returns
// the number of bytes written.
func (e *ECC) ExportPublicKey(out []byte) (int, error) {
	need := 2*e.eccBytes + 1
	if len(out) < need {
		return 0, fmt.Errorf("ecdh: export buffer too small (%d < %d): %w", len(out), need, rterr.ErrEccExportKeyFailed)
	}
	out[0] = 0x04
	limbsToBytesBE(out[1:1+e.eccBytes], e.public.X)
	limbsToBytesBE(out[1+e.eccBytes:1+2*e.eccBytes], e.public.Y)
	return need, nil
}

// ComputeSharedSecret validates peerKey as an uncompressed 0x04‖X‖Y point of
// exactly 2*EccBytes()+1 bytes, then writes the big-endian X coordinate of
// private*peerPoint into out (which must be at least EccBytes() bytes).
func (e *ECC) ComputeSharedSecret(peerKey []byte, out []byte) error {
	need := 2*e.eccBytes + 1
	if len(peerKey) != need || peerKey[0] != 0x04 {
		return fmt.Errorf("ecdh: malformed peer key (len=%d): %w", len(peerKey), rterr.ErrEccSharedSecretFailed)
	}
	if len(out) < e.eccBytes {
		return fmt.Errorf("ecdh: shared secret buffer too small: %w", rterr.ErrEccSharedSecretFailed)
	}

	n := e.curve.NumWords
	peer := curve.Point{X: make([]uint64, n), Y: make([]uint64, n)}
	bytesToLimbsBE(peer.X, peerKey[1:1+e.eccBytes])
	bytesToLimbsBE(peer.Y, peerKey[1+e.eccBytes:1+2*e.eccBytes])

	if !e.curve.OnCurve(peer) {
		return fmt.Errorf("ecdh: peer key not on curve: %w", rterr.ErrEccSharedSecretFailed)
	}

	shared := e.curve.ScalarMult(peer, e.private)
	if shared.IsInfinity() {
		return fmt.Errorf("ecdh: shared secret is the point at infinity: %w", rterr.ErrEccSharedSecretFailed)
	}

	limbsToBytesBE(out[:e.eccBytes], shared.X)
	return nil
}

// bytesToLimbs parses a little-endian byte buffer into little-endian uint64
// limbs (used for the raw entropy draw, which has no particular byte
// order requirement other than internal consistency).
func bytesToLimbs(dst []uint64, src []byte) {
	for i := range dst {
		var w uint64
		for j := 0; j < 8; j++ {
			w |= uint64(src[i*8+j]) << (8 * j)
		}
		dst[i] = w
	}
}

// bytesToLimbsBE parses a big-endian byte buffer (wire format) into
// little-endian uint64 limbs.
func bytesToLimbsBE(dst []uint64, src []byte) {
	n := len(dst)
	for i := 0; i < n; i++ {
		var w uint64
		base := len(src) - (i+1)*8
		for j := 0; j < 8; j++ {
			w |= uint64(src[base+j]) << (8 * (7 - j))
		}
		dst[i] = w
	}
}

// limbsToBytesBE serializes little-endian uint64 limbs into a big-endian
// byte buffer (wire format).
func limbsToBytesBE(dst []byte, src []uint64) {
	n := len(src)
	for i := 0; i < n; i++ {
		base := len(dst) - (i+1)*8
		w := src[i]
		for j := 0; j < 8; j++ {
			dst[base+7-j] = byte(w >> (8 * j))
		}
	}
}
