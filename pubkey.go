package taproot

import (
	"fmt"
	"unsafe"
)

// PublicKey represents a secp256k1 public key. The internal representation
// is the raw affine x||y pair; use ECPubkeyParse/ECPubkeySerialize for the
// wire formats.
type PublicKey struct {
	data [64]byte
}

// Compression flags for public key serialization
const (
	ECCompressed   = 0x02
	ECUncompressed = 0x04
)

// ECPubkeyParse parses a 33-byte compressed or 65-byte uncompressed public
// key. Returns ErrMalformedInput for bad length, bad prefix, out-of-range
// coordinates or a point not on the curve.
func ECPubkeyParse(pubkey *PublicKey, input []byte) error {
	var point GroupElementAffine

	switch len(input) {
	case 33:
		if input[0] != 0x02 && input[0] != 0x03 {
			return fmt.Errorf("compressed pubkey prefix %#02x: %w", input[0], ErrMalformedInput)
		}

		if fieldOverflowB32(input[1:33]) {
			return fmt.Errorf("pubkey x out of range: %w", ErrMalformedInput)
		}
		var x FieldElement
		x.setB32(input[1:33])

		odd := input[0] == 0x03
		if !point.setXOVar(&x, odd) {
			return fmt.Errorf("pubkey x not on curve: %w", ErrMalformedInput)
		}

	case 65:
		if input[0] != 0x04 {
			return fmt.Errorf("uncompressed pubkey prefix %#02x: %w", input[0], ErrMalformedInput)
		}

		if fieldOverflowB32(input[1:33]) || fieldOverflowB32(input[33:65]) {
			return fmt.Errorf("pubkey coordinate out of range: %w", ErrMalformedInput)
		}
		var x, y FieldElement
		x.setB32(input[1:33])
		y.setB32(input[33:65])

		point.setXY(&x, &y)
		if !point.isValid() {
			return fmt.Errorf("pubkey not on curve: %w", ErrMalformedInput)
		}

	default:
		return fmt.Errorf("pubkey length %d: %w", len(input), ErrMalformedInput)
	}

	point.toBytes(pubkey.data[:])

	return nil
}

// ECPubkeySerialize serializes a public key to output. flags selects
// ECCompressed (33 bytes) or ECUncompressed (65 bytes). Returns the number
// of bytes written, 0 when the key is invalid or the buffer too small.
func ECPubkeySerialize(output []byte, pubkey *PublicKey, flags uint) int {
	var point GroupElementAffine
	point.fromBytes(pubkey.data[:])

	if point.isInfinity() {
		return 0
	}

	point.x.normalize()
	point.y.normalize()

	switch flags {
	case ECCompressed:
		if len(output) < 33 {
			return 0
		}

		if point.y.isOdd() {
			output[0] = 0x03
		} else {
			output[0] = 0x02
		}
		point.x.getB32(output[1:33])
		return 33

	case ECUncompressed:
		if len(output) < 65 {
			return 0
		}

		output[0] = 0x04
		point.x.getB32(output[1:33])
		point.y.getB32(output[33:65])
		return 65

	default:
		return 0
	}
}

// ECPubkeyCmp compares two public keys by their compressed serialization
func ECPubkeyCmp(pubkey1, pubkey2 *PublicKey) int {
	var buf1, buf2 [33]byte
	ECPubkeySerialize(buf1[:], pubkey1, ECCompressed)
	ECPubkeySerialize(buf2[:], pubkey2, ECCompressed)

	for i := 0; i < 33; i++ {
		if buf1[i] < buf2[i] {
			return -1
		}
		if buf1[i] > buf2[i] {
			return 1
		}
	}

	return 0
}

// ECPubkeyCreate computes the public key for a secret key.
// Returns ErrInvalidScalar when the secret key is zero or >= n.
func ECPubkeyCreate(pubkey *PublicKey, seckey []byte) error {
	if len(seckey) != 32 {
		return fmt.Errorf("seckey length %d: %w", len(seckey), ErrMalformedInput)
	}

	var scalar Scalar
	if !scalar.setB32Seckey(seckey) {
		return ErrInvalidScalar
	}

	// pubkey = scalar * G
	var point GroupElementJacobian
	EcmultGen(&point, &scalar)

	var affine GroupElementAffine
	affine.setGEJ(&point)
	affine.toBytes(pubkey.data[:])

	scalar.clear()
	point.clear()

	return nil
}

// Clear wipes the key material
func (pubkey *PublicKey) Clear() {
	memclear(unsafe.Pointer(&pubkey.data[0]), 64)
}

// pubkeyLoad loads a public key from internal format
func pubkeyLoad(point *GroupElementAffine, pubkey *PublicKey) {
	point.fromBytes(pubkey.data[:])
}

// pubkeySave saves a public key to internal format
func pubkeySave(pubkey *PublicKey, point *GroupElementAffine) {
	point.toBytes(pubkey.data[:])
}
