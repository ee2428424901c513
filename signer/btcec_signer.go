package signer

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	sha256 "github.com/minio/sha256-simd"
)

// BtcecSigner implements the I interface using btcec (pure Go implementation),
// applying the same key-path tweak as KeyPathSigner via
// txscript.TweakTaprootPrivKey. The two implementations must agree byte for
// byte on keys, signatures and shared secrets; tests cross-verify them.
type BtcecSigner struct {
	secret    [32]byte // Internal secret as provided to InitSec
	privKey   *btcec.PrivateKey
	pubKey    *btcec.PublicKey
	xonlyPub  []byte // Cached x-only output key
	hasSecret bool
}

// NewBtcecSigner creates a new BtcecSigner instance
func NewBtcecSigner() *BtcecSigner {
	return &BtcecSigner{
		hasSecret: false,
	}
}

// Generate creates a fresh new key pair from system entropy and runs it
// through the same tweak path as InitSec
func (s *BtcecSigner) Generate() error {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		return err
	}

	sec := privKey.Serialize()
	privKey.Zero()

	err = s.InitSec(sec)
	for i := range sec {
		sec[i] = 0
	}
	return err
}

// InitSec initialises the secret (signing) key from the raw bytes, derives
// the taproot output key tweaked with an empty merkle root, and stores the
// tweaked private key for signing
func (s *BtcecSigner) InitSec(sec []byte) error {
	if len(sec) != 32 {
		return errors.New("secret key must be 32 bytes")
	}

	internalPriv, _ := btcec.PrivKeyFromBytes(sec)
	tweakedPriv := txscript.TweakTaprootPrivKey(*internalPriv, nil)
	internalPriv.Zero()

	pubKey := tweakedPriv.PubKey()
	xonlyPub := schnorr.SerializePubKey(pubKey)

	// The tweaked point may have an odd Y coordinate; negate so the stored
	// secret matches the even-Y lift of the output key, keeping ECDH
	// against x-only keys symmetric. The x-only output key is unchanged.
	pubBytes := pubKey.SerializeCompressed()
	if pubBytes[0] == 0x03 { // Odd Y coordinate
		scalar := tweakedPriv.Key
		scalar.Negate()
		tweakedPriv = &btcec.PrivateKey{Key: scalar}
		pubKey = tweakedPriv.PubKey()
		xonlyPub = schnorr.SerializePubKey(pubKey)
	}

	copy(s.secret[:], sec)
	s.privKey = tweakedPriv
	s.pubKey = pubKey
	s.xonlyPub = xonlyPub
	s.hasSecret = true

	return nil
}

// InitPub initializes the public (verification) key from raw bytes, this is
// expected to be the 32 byte x-only taproot output key
func (s *BtcecSigner) InitPub(pub []byte) error {
	if len(pub) != 32 {
		return errors.New("public key must be 32 bytes")
	}

	pubKey, err := schnorr.ParsePubKey(pub)
	if err != nil {
		return err
	}

	s.pubKey = pubKey
	s.xonlyPub = pub
	s.privKey = nil
	s.hasSecret = false

	return nil
}

// Sec returns the internal secret key bytes as provided to InitSec
func (s *BtcecSigner) Sec() []byte {
	if !s.hasSecret {
		return nil
	}
	return s.secret[:]
}

// Pub returns the public key bytes (the x-only taproot output key)
func (s *BtcecSigner) Pub() []byte {
	if s.xonlyPub == nil {
		return nil
	}
	return s.xonlyPub
}

// Sign creates a BIP-340 signature over msg using the tweaked secret key
func (s *BtcecSigner) Sign(msg []byte) (sig []byte, err error) {
	if !s.hasSecret || s.privKey == nil {
		return nil, errors.New("no secret key available for signing")
	}

	if len(msg) != 32 {
		return nil, errors.New("message must be 32 bytes")
	}

	signature, err := schnorr.Sign(s.privKey, msg)
	if err != nil {
		return nil, err
	}

	return signature.Serialize(), nil
}

// Verify checks a message hash and signature match the stored output key
func (s *BtcecSigner) Verify(msg, sig []byte) (valid bool, err error) {
	if s.pubKey == nil {
		return false, errors.New("no public key available for verification")
	}

	if len(msg) != 32 {
		return false, errors.New("message must be 32 bytes")
	}

	if len(sig) != 64 {
		return false, errors.New("signature must be 64 bytes")
	}

	signature, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false, err
	}

	valid = signature.Verify(msg, s.pubKey)
	return valid, nil
}

// Zero wipes the secret key to prevent memory leaks
func (s *BtcecSigner) Zero() {
	if s.privKey != nil {
		s.privKey.Zero()
		s.privKey = nil
	}
	for i := range s.secret {
		s.secret[i] = 0
	}
	s.hasSecret = false
	s.pubKey = nil
	s.xonlyPub = nil
}

// ECDH returns a shared secret derived using Elliptic Curve Diffie-Hellman on
// the tweaked secret and the provided x-only pubkey. The shared point is
// hashed in its compressed form, matching the KeyPathSigner derivation.
func (s *BtcecSigner) ECDH(pub []byte) (secret []byte, err error) {
	if !s.hasSecret || s.privKey == nil {
		return nil, errors.New("no secret key available for ECDH")
	}

	if len(pub) != 32 {
		return nil, errors.New("public key must be 32 bytes")
	}

	// Parse x-only pubkey (lifts to the even-Y point)
	pubKey, err := schnorr.ParsePubKey(pub)
	if err != nil {
		return nil, err
	}

	var point btcec.JacobianPoint
	pubKey.AsJacobian(&point)

	var shared btcec.JacobianPoint
	btcec.ScalarMultNonConst(&s.privKey.Key, &point, &shared)
	shared.ToAffine()

	var compressed [33]byte
	compressed[0] = 0x02
	if shared.Y.IsOdd() {
		compressed[0] = 0x03
	}
	var xBytes [32]byte
	shared.X.PutBytes(&xBytes)
	copy(compressed[1:], xBytes[:])

	hashed := sha256.Sum256(compressed[:])
	return hashed[:], nil
}
