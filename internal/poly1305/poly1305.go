// Package poly1305 implements the one-time Poly1305 MAC over GF(2^130-5)
// using the classic 26-bit-limb accumulator technique, grounded on
// original_source's Poly1305 class (src/runtime/crypto/chacha20.h: r/h/pad/
// buffer/leftover/finished fields, ProcessBlocks, Update, Finish,
// GenerateKey).
package poly1305

import (
	"encoding/binary"

	"github.com/mrzaxaryan/securert/internal/chacha20"
)

const mask26 = 0x3ffffff

// Poly1305 is a one-time MAC instance: a key authenticates one message
// only (RFC 8439). Update may be called any number of times; Finish must be
// called exactly once.
type Poly1305 struct {
	r [5]uint32
	h [5]uint32
	s [4]uint32

	buffer   [16]byte
	leftover int
	finished bool
}

// New clamps r from the first 16 bytes of key and stores the pad (s) from
// the second 16 bytes.
func New(key [32]byte) *Poly1305 {
	var p Poly1305

	t0 := binary.LittleEndian.Uint32(key[0:4])
	t1 := binary.LittleEndian.Uint32(key[4:8])
	t2 := binary.LittleEndian.Uint32(key[8:12])
	t3 := binary.LittleEndian.Uint32(key[12:16])

	p.r[0] = t0 & 0x3ffffff
	p.r[1] = ((t0 >> 26) | (t1 << 6)) & 0x3ffff03
	p.r[2] = ((t1 >> 20) | (t2 << 12)) & 0x3ffc0ff
	p.r[3] = ((t2 >> 14) | (t3 << 18)) & 0x3f03fff
	p.r[4] = (t3 >> 8) & 0x00fffff

	p.s[0] = binary.LittleEndian.Uint32(key[16:20])
	p.s[1] = binary.LittleEndian.Uint32(key[20:24])
	p.s[2] = binary.LittleEndian.Uint32(key[24:28])
	p.s[3] = binary.LittleEndian.Uint32(key[28:32])

	return &p
}

// blocks processes as many complete 16-byte blocks of m as are available,
// with hibit set to 1<<24 for ordinary full blocks or 0 for the final
// 0x01-padded partial block.
func (p *Poly1305) blocks(m []byte, hibit uint32) {
	r0, r1, r2, r3, r4 := uint64(p.r[0]), uint64(p.r[1]), uint64(p.r[2]), uint64(p.r[3]), uint64(p.r[4])
	s1, s2, s3, s4 := r1*5, r2*5, r3*5, r4*5
	h0, h1, h2, h3, h4 := uint64(p.h[0]), uint64(p.h[1]), uint64(p.h[2]), uint64(p.h[3]), uint64(p.h[4])

	for len(m) >= 16 {
		t0 := binary.LittleEndian.Uint32(m[0:4])
		t1 := binary.LittleEndian.Uint32(m[4:8])
		t2 := binary.LittleEndian.Uint32(m[8:12])
		t3 := binary.LittleEndian.Uint32(m[12:16])

		h0 += uint64(t0) & mask26
		h1 += uint64((uint64(t0)>>26)|(uint64(t1)<<6)) & mask26
		h2 += uint64((uint64(t1)>>20)|(uint64(t2)<<12)) & mask26
		h3 += uint64((uint64(t2)>>14)|(uint64(t3)<<18)) & mask26
		h4 += uint64(t3>>8) | uint64(hibit)

		d0 := h0*r0 + h1*s4 + h2*s3 + h3*s2 + h4*s1
		d1 := h0*r1 + h1*r0 + h2*s4 + h3*s3 + h4*s2
		d2 := h0*r2 + h1*r1 + h2*r0 + h3*s4 + h4*s3
		d3 := h0*r3 + h1*r2 + h2*r1 + h3*r0 + h4*s4
		d4 := h0*r4 + h1*r3 + h2*r2 + h3*r1 + h4*r0

		var c uint64
		c = d0 >> 26
		h0 = d0 & mask26
		d1 += c
		c = d1 >> 26
		h1 = d1 & mask26
		d2 += c
		c = d2 >> 26
		h2 = d2 & mask26
		d3 += c
		c = d3 >> 26
		h3 = d3 & mask26
		d4 += c
		c = d4 >> 26
		h4 = d4 & mask26
		h0 += c * 5
		c = h0 >> 26
		h0 &= mask26
		h1 += c

		m = m[16:]
	}

	p.h[0], p.h[1], p.h[2], p.h[3], p.h[4] = uint32(h0), uint32(h1), uint32(h2), uint32(h3), uint32(h4)
}

// Update feeds m into the MAC, buffering a trailing partial block across
// calls the way the original ProcessBlocks does.
func (p *Poly1305) Update(m []byte) {
	if p.leftover > 0 {
		want := 16 - p.leftover
		if want > len(m) {
			want = len(m)
		}
		copy(p.buffer[p.leftover:], m[:want])
		m = m[want:]
		p.leftover += want
		if p.leftover < 16 {
			return
		}
		p.blocks(p.buffer[:16], 1<<24)
		p.leftover = 0
	}

	if len(m) >= 16 {
		want := len(m) - (len(m) % 16)
		p.blocks(m[:want], 1<<24)
		m = m[want:]
	}

	if len(m) > 0 {
		copy(p.buffer[:], m)
		p.leftover = len(m)
	}
}

// Finish pads any trailing partial block with 0x01 then zeros, folds the
// accumulator mod 2^130-5, adds the pad s and writes the 16-byte tag into
// out. Finish must be called exactly once.
func (p *Poly1305) Finish(out *[16]byte) {
	if p.leftover > 0 {
		p.buffer[p.leftover] = 1
		for i := p.leftover + 1; i < 16; i++ {
			p.buffer[i] = 0
		}
		p.blocks(p.buffer[:16], 0)
	}

	h0, h1, h2, h3, h4 := p.h[0], p.h[1], p.h[2], p.h[3], p.h[4]

	var c uint32
	c = h1 >> 26
	h1 &= mask26
	h2 += c
	c = h2 >> 26
	h2 &= mask26
	h3 += c
	c = h3 >> 26
	h3 &= mask26
	h4 += c
	c = h4 >> 26
	h4 &= mask26
	h0 += c * 5
	c = h0 >> 26
	h0 &= mask26
	h1 += c

	g0 := h0 + 5
	c = g0 >> 26
	g0 &= mask26
	g1 := h1 + c
	c = g1 >> 26
	g1 &= mask26
	g2 := h2 + c
	c = g2 >> 26
	g2 &= mask26
	g3 := h3 + c
	c = g3 >> 26
	g3 &= mask26
	g4 := h4 + c - (1 << 26)

	mask := (g4 >> 31) - 1
	notMask := ^mask
	h0 = (h0 & notMask) | (g0 & mask)
	h1 = (h1 & notMask) | (g1 & mask)
	h2 = (h2 & notMask) | (g2 & mask)
	h3 = (h3 & notMask) | (g3 & mask)
	h4 = (h4 & notMask) | (g4 & mask)

	w0 := h0 | (h1 << 26)
	w1 := (h1 >> 6) | (h2 << 20)
	w2 := (h2 >> 12) | (h3 << 14)
	w3 := (h3 >> 18) | (h4 << 8)

	f := uint64(w0) + uint64(p.s[0])
	w0 = uint32(f)
	f = uint64(w1) + uint64(p.s[1]) + (f >> 32)
	w1 = uint32(f)
	f = uint64(w2) + uint64(p.s[2]) + (f >> 32)
	w2 = uint32(f)
	f = uint64(w3) + uint64(p.s[3]) + (f >> 32)
	w3 = uint32(f)

	binary.LittleEndian.PutUint32(out[0:4], w0)
	binary.LittleEndian.PutUint32(out[4:8], w1)
	binary.LittleEndian.PutUint32(out[8:12], w2)
	binary.LittleEndian.PutUint32(out[12:16], w3)

	p.finished = true
}

// GenerateKey derives a one-time Poly1305 key by running the ChaCha20
// block function at counter 0 over a key+nonce and truncating the first
// 32 bytes of keystream, per spec §4.4.
func GenerateKey(key [32]byte, nonce [chacha20.IVLength]byte) [32]byte {
	var state chacha20.State
	state.KeySetup(key[:])
	state.IVSetup96BitNonce(nonce[:], true)

	var block [64]byte
	state.Block(block[:])

	var out [32]byte
	copy(out[:], block[:32])
	return out
}
