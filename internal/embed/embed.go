// Package embed materializes protocol literals at runtime instead of letting
// the compiler fold them into read-only data. Curve parameters, ChaCha20's
// constant words, HKDF label prefixes and DNS provider names all route
// through here so that no plaintext copy of them is addressable as a fixed
// data-section offset.
package embed

// Bytes builds a fresh []byte copy of a literal, one byte at a time, on the
// heap. Call sites should treat the Go source literal passed in as a
// description of the value, not as the value itself — the returned slice is
// the only copy that should ever be read from.
func Bytes(lit string) []byte {
	out := make([]byte, len(lit))
	for i := 0; i < len(lit); i++ {
		out[i] = lit[i]
	}
	return out
}

// String is Bytes for callers that need a string result (e.g. hostnames,
// HKDF labels used as map-free comparisons).
func String(lit string) string {
	return string(Bytes(lit))
}

// Words32 materializes a table of big-endian-independent uint32 constants
// (used for ChaCha20's four constant state words and similar small fixed
// tables) without ever binding the caller to a package-level array literal.
func Words32(lits ...uint32) []uint32 {
	out := make([]uint32, len(lits))
	for i, v := range lits {
		out[i] = v
	}
	return out
}

// U64 materializes a table of uint64 constants the same way, used for curve
// field primes, generator coordinates and order values.
func U64(lits ...uint64) []uint64 {
	out := make([]uint64, len(lits))
	for i, v := range lits {
		out[i] = v
	}
	return out
}
