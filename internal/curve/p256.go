package curve

// NewP256 builds the NIST secp256r1 (P-256) curve parameters.
func NewP256() *Curve {
	return &Curve{
		NumWords: 4,
		P: littleEndianWords(
			0xffffffff00000001, 0x0000000000000000,
			0x00000000ffffffff, 0xffffffffffffffff,
		),
		B: littleEndianWords(
			0x5ac635d8aa3a93e7, 0xb3ebbd55769886bc,
			0x651d06b0cc53b0f6, 0x3bce3c3e27d2604b,
		),
		Gx: littleEndianWords(
			0x6b17d1f2e12c4247, 0xf8bce6e563a440f2,
			0x77037d812deb33a0, 0xf4a13945d898c296,
		),
		Gy: littleEndianWords(
			0x4fe342e2fe1a7f9b, 0x8ee7eb4a7c0f9e16,
			0x2bce33576b315ece, 0xcbb6406837bf51f5,
		),
		N: littleEndianWords(
			0xffffffff00000000, 0xffffffffffffffff,
			0xbce6faada7179e84, 0xf3b9cac2fc632551,
		),
	}
}
