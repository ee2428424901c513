package taproot

import (
	"bytes"
	"fmt"
	"unsafe"
)

// XOnlyPubkey represents a BIP-340 x-only public key: the 32-byte X
// coordinate of a point whose Y coordinate is implicitly even.
type XOnlyPubkey struct {
	data [32]byte
}

// KeyPair binds a secret key to its public key for Schnorr signing
type KeyPair struct {
	seckey [32]byte
	pubkey PublicKey
}

// XOnlyPubkeyParse parses a 32-byte x coordinate into an x-only public key.
// Returns ErrMalformedInput when the length is wrong, x is out of field
// range, or no curve point has this x.
func XOnlyPubkeyParse(input32 []byte) (*XOnlyPubkey, error) {
	if len(input32) != 32 {
		return nil, fmt.Errorf("x-only pubkey length %d: %w", len(input32), ErrMalformedInput)
	}

	if fieldOverflowB32(input32) {
		return nil, fmt.Errorf("x-only pubkey x out of range: %w", ErrMalformedInput)
	}

	var x FieldElement
	x.setB32(input32)

	// The implicit Y is the even root; if no root exists the x is not on
	// the curve at all.
	var point GroupElementAffine
	if !point.setXOVar(&x, false) {
		return nil, fmt.Errorf("x-only pubkey x not on curve: %w", ErrMalformedInput)
	}

	var xonly XOnlyPubkey
	copy(xonly.data[:], input32)
	return &xonly, nil
}

// Serialize serializes an x-only public key to 32 bytes
func (xonly *XOnlyPubkey) Serialize() [32]byte {
	return xonly.data
}

// lift reconstructs the full even-Y point for an x-only public key
func (xonly *XOnlyPubkey) lift(point *GroupElementAffine) bool {
	var x FieldElement
	x.setB32(xonly.data[:])
	return point.setXOVar(&x, false)
}

// XOnlyPubkeyFromPubkey converts a PublicKey to an XOnlyPubkey.
// Returns the x-only key and the parity of the original Y (1 odd, 0 even).
func XOnlyPubkeyFromPubkey(pubkey *PublicKey) (*XOnlyPubkey, int, error) {
	if pubkey == nil {
		return nil, 0, fmt.Errorf("nil pubkey: %w", ErrMalformedInput)
	}

	var pt GroupElementAffine
	pubkeyLoad(&pt, pubkey)
	if pt.isInfinity() {
		return nil, 0, fmt.Errorf("x-only conversion: %w", ErrPointAtInfinity)
	}

	pt.y.normalize()

	parity := 0
	if pt.y.isOdd() {
		parity = 1
	}

	var xonly XOnlyPubkey
	pt.x.normalize()
	pt.x.getB32(xonly.data[:])

	return &xonly, parity, nil
}

// XOnlyPubkeyCmp compares two x-only public keys lexicographically on their
// 32-byte serialization
func XOnlyPubkeyCmp(xonly1, xonly2 *XOnlyPubkey) int {
	if xonly1 == nil || xonly2 == nil {
		panic("xonly pubkey cannot be nil")
	}

	return bytes.Compare(xonly1.data[:], xonly2.data[:])
}

// KeyPairCreate creates a keypair from a secret key.
// Returns ErrInvalidScalar for a zero or out-of-range key.
func KeyPairCreate(seckey []byte) (*KeyPair, error) {
	if len(seckey) != 32 {
		return nil, fmt.Errorf("seckey length %d: %w", len(seckey), ErrMalformedInput)
	}

	var pubkey PublicKey
	if err := ECPubkeyCreate(&pubkey, seckey); err != nil {
		return nil, err
	}

	kp := &KeyPair{}
	copy(kp.seckey[:], seckey)
	kp.pubkey = pubkey

	return kp, nil
}

// KeyPairGenerate generates a new random keypair
func KeyPairGenerate() (*KeyPair, error) {
	seckey, pubkey, err := ECKeyPairGenerate()
	if err != nil {
		return nil, err
	}

	kp := &KeyPair{}
	copy(kp.seckey[:], seckey)
	kp.pubkey = *pubkey

	memclear(unsafe.Pointer(&seckey[0]), 32)
	return kp, nil
}

// DeriveInternalKeypair derives the taproot internal keypair for a secret.
// The public key always derives from the scalar; there is no path that
// substitutes an unrelated key.
func DeriveInternalKeypair(secret [32]byte) (*KeyPair, error) {
	kp, err := KeyPairCreate(secret[:])
	if err != nil {
		return nil, fmt.Errorf("internal keypair: %w", err)
	}
	return kp, nil
}

// Seckey returns the secret key bytes
func (kp *KeyPair) Seckey() []byte {
	return kp.seckey[:]
}

// Pubkey returns the public key
func (kp *KeyPair) Pubkey() *PublicKey {
	return &kp.pubkey
}

// XOnlyPubkey returns the x-only public key
func (kp *KeyPair) XOnlyPubkey() (*XOnlyPubkey, error) {
	xonly, _, err := XOnlyPubkeyFromPubkey(&kp.pubkey)
	return xonly, err
}

// SeckeyScalar loads the secret key into a scalar
func (kp *KeyPair) SeckeyScalar() (*Scalar, error) {
	var s Scalar
	if !s.setB32Seckey(kp.seckey[:]) {
		return nil, ErrInvalidScalar
	}
	return &s, nil
}

// Clear clears the keypair to prevent leaking sensitive information
func (kp *KeyPair) Clear() {
	memclear(unsafe.Pointer(&kp.seckey[0]), 32)
	kp.pubkey.Clear()
}
