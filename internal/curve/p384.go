package curve

// NewP384 builds the NIST secp384r1 (P-384) curve parameters.
func NewP384() *Curve {
	return &Curve{
		NumWords: 6,
		P: littleEndianWords(
			0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff,
			0xfffffffffffffffe, 0xffffffff00000000, 0x00000000ffffffff,
		),
		B: littleEndianWords(
			0xb3312fa7e23ee7e4, 0x988e056be3f82d19, 0x181d9c6efe814112,
			0x0314088f5013875a, 0xc656398d8a2ed19d, 0x2a85c8edd3ec2aef,
		),
		Gx: littleEndianWords(
			0xaa87ca22be8b0537, 0x8eb1c71ef320ad74, 0x6e1d3b628ba79b98,
			0x59f741e082542a38, 0x5502f25dbf55296c, 0x3a545e3872760ab7,
		),
		Gy: littleEndianWords(
			0x3617de4a96262c6f, 0x5d9e98bf9292dc29, 0xf8f41dbd289a147c,
			0xe9da3113b5f0b8c0, 0x0a60b1ce1d7e819d, 0x7a431d7c90ea0e5f,
		),
		N: littleEndianWords(
			0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff,
			0xc7634d81f4372ddf, 0x581a0db248b0a77a, 0xecec196accc52973,
		),
	}
}
