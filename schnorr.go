package taproot

import (
	"fmt"
	"unsafe"
)

// Signature is a 64-byte BIP-340 Schnorr signature: x(R) || s.
type Signature [64]byte

// ParseSignature copies a 64-byte slice into a Signature.
// Range checks on the halves belong to verification, which reports them as
// false; parse only enforces shape.
func ParseSignature(sig []byte) (*Signature, error) {
	if len(sig) != 64 {
		return nil, fmt.Errorf("signature length %d: %w", len(sig), ErrMalformedInput)
	}

	var s Signature
	copy(s[:], sig)
	return &s, nil
}

// Serialize returns the 64-byte signature
func (sig *Signature) Serialize() [64]byte {
	return *sig
}

// zeroMask is TaggedHash("BIP0340/aux", 0x00 * 32), the mask applied to the
// secret key when no auxiliary randomness is supplied.
var zeroMask = [32]byte{
	84, 241, 105, 207, 201, 226, 229, 114,
	116, 128, 68, 31, 144, 186, 37, 196,
	136, 244, 97, 199, 11, 94, 165, 220,
	170, 247, 175, 105, 39, 10, 165, 20,
}

// NonceFunctionBIP340 derives the BIP-340 signing nonce:
// TaggedHash("BIP0340/nonce", (key XOR TaggedHash("BIP0340/aux", aux)) || pk || msg).
// auxRand32 must be nil (zero mask) or exactly 32 bytes.
func NonceFunctionBIP340(nonce32 []byte, msg []byte, key32 []byte, xonlyPk32 []byte, auxRand32 []byte) error {
	if len(nonce32) != 32 {
		return fmt.Errorf("nonce buffer length %d: %w", len(nonce32), ErrMalformedInput)
	}
	if len(key32) != 32 {
		return fmt.Errorf("key length %d: %w", len(key32), ErrMalformedInput)
	}
	if len(xonlyPk32) != 32 {
		return fmt.Errorf("pubkey length %d: %w", len(xonlyPk32), ErrMalformedInput)
	}
	if auxRand32 != nil && len(auxRand32) != 32 {
		return fmt.Errorf("aux length %d: %w", len(auxRand32), ErrInvalidAuxRand)
	}

	// Mask the key with the hashed aux randomness. A nil aux uses the
	// precomputed mask for 32 zero bytes, so nil and all-zero aux derive
	// the same nonce.
	var maskedKey [32]byte
	if auxRand32 != nil {
		auxHash := TaggedHash(TagBIP340Aux, auxRand32)
		for i := 0; i < 32; i++ {
			maskedKey[i] = key32[i] ^ auxHash[i]
		}
	} else {
		for i := 0; i < 32; i++ {
			maskedKey[i] = key32[i] ^ zeroMask[i]
		}
	}

	nonceHash := TaggedHash(TagBIP340Nonce, maskedKey[:], xonlyPk32, msg)
	copy(nonce32, nonceHash[:])

	memclear(unsafe.Pointer(&maskedKey[0]), 32)

	return nil
}

// SchnorrSign creates a BIP-340 signature over msg32 with the keypair,
// writing 64 bytes to sig64. auxRand32 must be nil or 32 bytes.
func SchnorrSign(sig64 []byte, msg32 []byte, keypair *KeyPair, auxRand32 []byte) error {
	if len(sig64) != 64 {
		return fmt.Errorf("signature buffer length %d: %w", len(sig64), ErrMalformedInput)
	}
	if len(msg32) != 32 {
		return fmt.Errorf("message length %d: %w", len(msg32), ErrMalformedInput)
	}
	if keypair == nil {
		return fmt.Errorf("nil keypair: %w", ErrMalformedInput)
	}
	if auxRand32 != nil && len(auxRand32) != 32 {
		return fmt.Errorf("aux length %d: %w", len(auxRand32), ErrInvalidAuxRand)
	}

	var sk Scalar
	if !sk.setB32Seckey(keypair.seckey[:]) {
		return ErrInvalidScalar
	}

	var pk GroupElementAffine
	pubkeyLoad(&pk, &keypair.pubkey)
	if pk.isInfinity() {
		sk.clear()
		return fmt.Errorf("signing key: %w", ErrPointAtInfinity)
	}

	// BIP-340 signs for the even-Y representative: negate d when P has
	// odd Y.
	pk.y.normalize()
	if pk.y.isOdd() {
		sk.negate(&sk)
		pk.negate(&pk)
	}

	var skBytes [32]byte
	sk.getB32(skBytes[:])

	var pkX [32]byte
	pk.x.normalize()
	pk.x.getB32(pkX[:])

	// Nonce commits to the (possibly negated) secret, the x-only key and
	// the message.
	var nonce32 [32]byte
	if err := NonceFunctionBIP340(nonce32[:], msg32, skBytes[:], pkX[:], auxRand32); err != nil {
		sk.clear()
		memclear(unsafe.Pointer(&skBytes[0]), 32)
		return err
	}

	var k Scalar
	if !k.setB32Seckey(nonce32[:]) {
		sk.clear()
		memclear(unsafe.Pointer(&skBytes[0]), 32)
		memclear(unsafe.Pointer(&nonce32[0]), 32)
		return fmt.Errorf("nonce derivation: %w", ErrInvalidScalar)
	}

	// R = k*G; commit to x(R) and negate k when R has odd Y. Negation
	// leaves x(R) unchanged, so R needs no recomputation.
	var rj GroupElementJacobian
	EcmultGen(&rj, &k)

	var r GroupElementAffine
	r.setGEJ(&rj)
	r.y.normalize()
	if r.y.isOdd() {
		k.negate(&k)
	}

	r.x.normalize()
	var r32 [32]byte
	r.x.getB32(r32[:])
	copy(sig64[:32], r32[:])

	// e = int(TaggedHash("BIP0340/challenge", r || pk || msg)) mod n
	challengeHash := TaggedHash(TagBIP340Challenge, r32[:], pkX[:], msg32)
	var e Scalar
	e.setB32(challengeHash[:])

	// s = k + e*d
	var s Scalar
	s.mul(&e, &sk)
	s.add(&s, &k)

	var s32 [32]byte
	s.getB32(s32[:])
	copy(sig64[32:], s32[:])

	sk.clear()
	k.clear()
	e.clear()
	s.clear()
	memclear(unsafe.Pointer(&nonce32[0]), 32)
	memclear(unsafe.Pointer(&skBytes[0]), 32)
	memclear(unsafe.Pointer(&s32[0]), 32)
	rj.clear()
	r.clear()

	return nil
}

// SchnorrVerify verifies a BIP-340 signature. Returns false for malformed
// or non-canonical signatures as well as for cryptographic mismatch.
func SchnorrVerify(sig64 []byte, msg32 []byte, xonlyPubkey *XOnlyPubkey) bool {
	if len(sig64) != 64 {
		return false
	}
	if len(msg32) != 32 {
		return false
	}
	if xonlyPubkey == nil {
		return false
	}

	// r must be a canonical field element encoding
	if fieldOverflowB32(sig64[:32]) {
		return false
	}
	var rx FieldElement
	rx.setB32(sig64[:32])
	rx.normalize()

	// s must be a canonical scalar encoding
	var s Scalar
	if s.setB32(sig64[32:64]) {
		return false
	}

	// P = lift_x(pk): the even-Y point for the x-only key
	var pk GroupElementAffine
	if !xonlyPubkey.lift(&pk) {
		return false
	}

	// e = int(TaggedHash("BIP0340/challenge", r || pk || msg)) mod n
	challengeHash := TaggedHash(TagBIP340Challenge, sig64[:32], xonlyPubkey.data[:], msg32)
	var e Scalar
	e.setB32(challengeHash[:])

	// R = s*G - e*P
	e.negate(&e)
	var rj GroupElementJacobian
	Ecmult(&rj, &s, &e, &pk)

	if rj.isInfinity() {
		return false
	}

	var r GroupElementAffine
	r.setGEJ(&rj)

	// Valid iff R has even Y and x(R) equals r
	r.y.normalize()
	if r.y.isOdd() {
		return false
	}

	r.x.normalize()
	return r.x.equal(&rx)
}

// Sign produces a BIP-340 signature over a signature hash with the given
// secret scalar, normally the output of TweakedSeckey. auxRand must be nil
// or exactly 32 bytes; all-zero aux is allowed for deterministic vectors.
func Sign(seckey *Scalar, digest *SigHash, auxRand []byte) (*Signature, error) {
	if seckey == nil || digest == nil {
		return nil, fmt.Errorf("nil argument: %w", ErrMalformedInput)
	}
	if auxRand != nil && len(auxRand) != 32 {
		return nil, fmt.Errorf("aux length %d: %w", len(auxRand), ErrInvalidAuxRand)
	}
	if seckey.isZero() {
		return nil, ErrInvalidScalar
	}

	var skBytes [32]byte
	seckey.getB32(skBytes[:])

	kp, err := KeyPairCreate(skBytes[:])
	memclear(unsafe.Pointer(&skBytes[0]), 32)
	if err != nil {
		return nil, err
	}
	defer kp.Clear()

	var sig Signature
	if err := SchnorrSign(sig[:], digest[:], kp, auxRand); err != nil {
		return nil, err
	}

	return &sig, nil
}

// Verify checks a BIP-340 signature over a signature hash against a taproot
// output key. Pure and side-effect free; any mismatch returns false, never
// an error.
func Verify(key *OutputKey, digest *SigHash, sig *Signature) bool {
	if key == nil || digest == nil || sig == nil {
		return false
	}

	return SchnorrVerify(sig[:], digest[:], key.XOnly())
}
