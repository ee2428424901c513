package signer

import (
	"errors"

	"taproot.mleku.dev"
)

// KeyPathSigner implements the I and Gen interfaces over the native taproot
// engine. InitSec derives the internal keypair from the secret, applies the
// taproot tweak with an empty merkle root and keeps the tweaked key for
// signing, so Pub returns the x-only output key and signatures verify
// directly against the key committed to by a P2TR script-pubkey.
type KeyPathSigner struct {
	secret    [32]byte // Internal secret as provided to InitSec
	keypair   *taproot.KeyPair
	outputKey *taproot.OutputKey
	hasSecret bool // Whether we have the secret key (if false, can only verify)
}

// NewKeyPathSigner creates a new KeyPathSigner instance
func NewKeyPathSigner() *KeyPathSigner {
	return &KeyPathSigner{
		hasSecret: false,
	}
}

// Generate creates a fresh new key pair from system entropy and runs it
// through the same tweak path as InitSec
func (s *KeyPathSigner) Generate() error {
	sec, err := taproot.ECSeckeyGenerate()
	if err != nil {
		return err
	}

	err = s.InitSec(sec)
	for i := range sec {
		sec[i] = 0
	}
	return err
}

// InitSec initialises the secret (signing) key from the raw bytes, derives
// the internal public key and the output key tweaked with an empty merkle
// root, and stores the tweaked keypair for signing
func (s *KeyPathSigner) InitSec(sec []byte) error {
	if len(sec) != 32 {
		return errors.New("secret key must be 32 bytes")
	}

	var secret [32]byte
	copy(secret[:], sec)

	kp, err := taproot.DeriveInternalKeypair(secret)
	if err != nil {
		return err
	}
	defer kp.Clear()

	internal, err := kp.XOnlyPubkey()
	if err != nil {
		return err
	}

	outputKey, tweak, err := taproot.Tweak(internal, nil)
	if err != nil {
		return err
	}

	internalScalar, err := kp.SeckeyScalar()
	if err != nil {
		return err
	}
	defer internalScalar.Clear()

	tweaked, err := taproot.TweakedSeckey(internalScalar, tweak)
	if err != nil {
		return err
	}
	defer tweaked.Clear()

	tweakedBytes := tweaked.Serialize()

	// The tweaked point may have an odd Y coordinate; negate so the stored
	// secret matches the even-Y lift of the output key. Signing is
	// unaffected because BIP-340 normalizes parity again, and ECDH against
	// x-only keys stays symmetric.
	if outputKey.Parity() == 1 {
		if !taproot.ECSeckeyNegate(tweakedBytes[:]) {
			return errors.New("failed to negate tweaked secret key")
		}
	}

	tkp, err := taproot.KeyPairCreate(tweakedBytes[:])
	for i := range tweakedBytes {
		tweakedBytes[i] = 0
	}
	if err != nil {
		return err
	}

	s.secret = secret
	s.keypair = tkp
	s.outputKey = outputKey
	s.hasSecret = true

	return nil
}

// InitPub initializes the public (verification) key from raw bytes, this is
// expected to be the 32 byte x-only taproot output key
func (s *KeyPathSigner) InitPub(pub []byte) error {
	if len(pub) != 32 {
		return errors.New("public key must be 32 bytes")
	}

	outputKey, err := taproot.ParseOutputKey(pub)
	if err != nil {
		return err
	}

	s.outputKey = outputKey
	s.keypair = nil
	s.hasSecret = false

	return nil
}

// Sec returns the internal secret key bytes as provided to InitSec
func (s *KeyPathSigner) Sec() []byte {
	if !s.hasSecret {
		return nil
	}
	return s.secret[:]
}

// Pub returns the public key bytes (the x-only taproot output key)
func (s *KeyPathSigner) Pub() []byte {
	if s.outputKey == nil {
		return nil
	}
	serialized := s.outputKey.Serialize()
	return serialized[:]
}

// Sign creates a BIP-340 signature over msg using the tweaked secret key
func (s *KeyPathSigner) Sign(msg []byte) (sig []byte, err error) {
	if !s.hasSecret || s.keypair == nil {
		return nil, errors.New("no secret key available for signing")
	}

	if len(msg) != 32 {
		return nil, errors.New("message must be 32 bytes")
	}

	var sig64 [64]byte
	if err := taproot.SchnorrSign(sig64[:], msg, s.keypair, nil); err != nil {
		return nil, err
	}

	return sig64[:], nil
}

// Verify checks a message hash and signature match the stored output key
func (s *KeyPathSigner) Verify(msg, sig []byte) (valid bool, err error) {
	if s.outputKey == nil {
		return false, errors.New("no public key available for verification")
	}

	if len(msg) != 32 {
		return false, errors.New("message must be 32 bytes")
	}

	if len(sig) != 64 {
		return false, errors.New("signature must be 64 bytes")
	}

	valid = taproot.SchnorrVerify(sig, msg, s.outputKey.XOnly())
	return valid, nil
}

// Zero wipes the secret key material to prevent memory leaks
func (s *KeyPathSigner) Zero() {
	if s.keypair != nil {
		s.keypair.Clear()
		s.keypair = nil
	}
	for i := range s.secret {
		s.secret[i] = 0
	}
	s.hasSecret = false
	// Note: the output key doesn't contain sensitive data, but we can clear it too
	s.outputKey = nil
}

// ECDH returns a shared secret derived using Elliptic Curve Diffie-Hellman on
// the tweaked secret and the provided x-only pubkey
func (s *KeyPathSigner) ECDH(pub []byte) (secret []byte, err error) {
	if !s.hasSecret || s.keypair == nil {
		return nil, errors.New("no secret key available for ECDH")
	}

	if len(pub) != 32 {
		return nil, errors.New("public key must be 32 bytes")
	}

	// Convert x-only pubkey (32 bytes) to compressed public key (33 bytes) with even Y
	var compressedPub [33]byte
	compressedPub[0] = 0x02 // Even Y
	copy(compressedPub[1:], pub)

	// Parse the compressed public key
	var pubkey taproot.PublicKey
	if err := taproot.ECPubkeyParse(&pubkey, compressedPub[:]); err != nil {
		return nil, err
	}

	// Compute ECDH shared secret using standard ECDH (hashes the point)
	var sharedSecret [32]byte
	if err := taproot.ECDH(sharedSecret[:], &pubkey, s.keypair.Seckey(), nil); err != nil {
		return nil, err
	}

	return sharedSecret[:], nil
}

// KeyPathGen implements the Gen interface for taproot internal key
// generation. Negate flips the Y parity of the candidate so callers can grind
// for an even-Y internal key and skip the negation step inside the tweak.
type KeyPathGen struct {
	keypair       *taproot.KeyPair
	xonlyPub      *taproot.XOnlyPubkey
	compressedPub *taproot.PublicKey
}

// NewKeyPathGen creates a new KeyPathGen instance
func NewKeyPathGen() *KeyPathGen {
	return &KeyPathGen{}
}

// Generate gathers entropy and derives pubkey bytes for matching, this
// returns the 33 byte compressed form for checking the oddness of the Y
// coordinate
func (g *KeyPathGen) Generate() (pubBytes []byte, err error) {
	kp, err := taproot.KeyPairGenerate()
	if err != nil {
		return nil, err
	}

	g.keypair = kp

	// Get compressed public key (33 bytes)
	var pubkey taproot.PublicKey = *kp.Pubkey()

	var compressed [33]byte
	n := taproot.ECPubkeySerialize(compressed[:], &pubkey, taproot.ECCompressed)
	if n != 33 {
		return nil, errors.New("failed to serialize compressed public key")
	}

	g.compressedPub = &pubkey

	return compressed[:], nil
}

// Negate flips the public key Y coordinate between odd and even
func (g *KeyPathGen) Negate() {
	if g.keypair == nil {
		return
	}

	// Negate the secret key
	seckey := g.keypair.Seckey()
	if !taproot.ECSeckeyNegate(seckey) {
		return
	}

	// Recreate keypair with negated secret key
	kp, err := taproot.KeyPairCreate(seckey)
	if err != nil {
		return
	}

	g.keypair = kp

	// Update compressed pubkey
	var pubkey taproot.PublicKey = *kp.Pubkey()
	var compressed [33]byte
	taproot.ECPubkeySerialize(compressed[:], &pubkey, taproot.ECCompressed)
	g.compressedPub = &pubkey

	// Update x-only pubkey
	xonly, err := kp.XOnlyPubkey()
	if err == nil {
		g.xonlyPub = xonly
	}
}

// KeyPairBytes returns the raw bytes of the secret and public key, this
// returns the 32 byte X-only pubkey
func (g *KeyPathGen) KeyPairBytes() (secBytes, cmprPubBytes []byte) {
	if g.keypair == nil {
		return nil, nil
	}

	secBytes = g.keypair.Seckey()

	if g.xonlyPub == nil {
		xonly, err := g.keypair.XOnlyPubkey()
		if err != nil {
			return secBytes, nil
		}
		g.xonlyPub = xonly
	}

	serialized := g.xonlyPub.Serialize()
	cmprPubBytes = serialized[:]

	return secBytes, cmprPubBytes
}
