package tlscipher

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/mrzaxaryan/securert/internal/aead"
	"github.com/mrzaxaryan/securert/internal/hkdf"
)

// Cipher drives the TLS 1.3 key-schedule tree: early secret -> handshake
// secret -> master secret, deriving per-direction traffic keys/IVs at each
// transition and installing them into a RecordCrypto. Grounded on
// original_source's TlsCipher::ComputeKey/ComputeVerify.
//
// Unlike the original, which holds its own pair of ECC private keys,
// this Cipher accepts an already-computed ECDH shared secret from its
// caller (tlsclient owns the ECDH engines, since it also needs to export
// the public key bytes into ClientHello's key_share extension) — a
// narrower responsibility split that keeps this package solely about HKDF
// bookkeeping.
type Cipher struct {
	Transcript *HandshakeHash
	Record     RecordCrypto

	pseudoRandomKey     []byte
	clientTrafficSecret []byte
	serverTrafficSecret []byte
}

// NewCipher constructs a Cipher with a fresh transcript accumulator.
func NewCipher() *Cipher {
	return &Cipher{Transcript: NewHandshakeHash()}
}

// ComputeHandshakeKeys runs the first key-schedule transition: early_secret
// -> handshake_secret, deriving and installing the client/server handshake
// traffic keys into Record. Called once, right after ServerHello.
func (c *Cipher) ComputeHandshakeKeys(sharedSecret []byte) {
	zeros := make([]byte, hkdf.HashSize)
	earlySecret := hkdf.Extract(zeros, zeros)

	salt := hkdf.ExpandLabel(earlySecret, "derived", EmptyHash(), hkdf.HashSize)
	handshakeSecret := hkdf.Extract(salt, sharedSecret)
	c.pseudoRandomKey = handshakeSecret

	transcriptHash := c.Transcript.Sum()
	c.installTrafficSecrets("c hs traffic", "s hs traffic", transcriptHash)
}

// ComputeApplicationKeys runs the second key-schedule transition:
// handshake_secret -> master_secret, deriving and installing the
// application traffic keys into Record. Called once, right after the
// server's Finished has been verified. transcriptHash is the transcript as
// of ServerFinished (spec §4.9's "H(..SF)").
func (c *Cipher) ComputeApplicationKeys(transcriptHash []byte) {
	zeros := make([]byte, hkdf.HashSize)
	salt := hkdf.ExpandLabel(c.pseudoRandomKey, "derived", EmptyHash(), hkdf.HashSize)
	masterSecret := hkdf.Extract(salt, zeros)
	c.pseudoRandomKey = masterSecret

	c.installTrafficSecrets("c ap traffic", "s ap traffic", transcriptHash)
}

func (c *Cipher) installTrafficSecrets(clientLabel, serverLabel string, transcriptHash []byte) {
	c.clientTrafficSecret = hkdf.ExpandLabel(c.pseudoRandomKey, clientLabel, transcriptHash, hkdf.HashSize)
	c.serverTrafficSecret = hkdf.ExpandLabel(c.pseudoRandomKey, serverLabel, transcriptHash, hkdf.HashSize)

	var localKey, remoteKey [aead.KeySize]byte
	var localIV, remoteIV [aead.NonceSize]byte
	copy(localKey[:], hkdf.ExpandLabel(c.clientTrafficSecret, "key", nil, aead.KeySize))
	copy(localIV[:], hkdf.ExpandLabel(c.clientTrafficSecret, "iv", nil, aead.NonceSize))
	copy(remoteKey[:], hkdf.ExpandLabel(c.serverTrafficSecret, "key", nil, aead.KeySize))
	copy(remoteIV[:], hkdf.ExpandLabel(c.serverTrafficSecret, "iv", nil, aead.NonceSize))

	c.Record.Init(localKey, remoteKey, localIV, remoteIV)
}

// Direction selects which side's Finished verify-data ComputeVerify
// computes.
type Direction int

const (
	Client Direction = iota
	Server
)

// ComputeVerify derives the Finished verify-data for the given direction
// over the current traffic secret and transcript hash, per RFC 8446
// §4.4.4: finished_key = ExpandLabel(secret, "finished", "", Hash.length);
// verify_data = HMAC(finished_key, transcript_hash).
func (c *Cipher) ComputeVerify(direction Direction, transcriptHash []byte) []byte {
	secret := c.clientTrafficSecret
	if direction == Server {
		secret = c.serverTrafficSecret
	}
	finishedKey := hkdf.ExpandLabel(secret, "finished", nil, hkdf.HashSize)

	mac := hmac.New(sha256.New, finishedKey)
	mac.Write(transcriptHash)
	return mac.Sum(nil)
}
