package taproot

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

func TestSchnorrSignVerify(t *testing.T) {
	// Generate keypair
	kp, err := KeyPairGenerate()
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}
	defer kp.Clear()

	// Get x-only pubkey
	xonly, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}

	// Create message
	msg := make([]byte, 32)
	for i := range msg {
		msg[i] = byte(i)
	}

	// Sign
	var sig [64]byte
	if err := SchnorrSign(sig[:], msg, kp, nil); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	// Verify
	if !SchnorrVerify(sig[:], msg, xonly) {
		t.Error("signature verification failed")
	}

	// Test with wrong message
	wrongMsg := make([]byte, 32)
	copy(wrongMsg, msg)
	wrongMsg[0] ^= 1
	if SchnorrVerify(sig[:], wrongMsg, xonly) {
		t.Error("signature verification should fail with wrong message")
	}
}

func TestSchnorrSignWithAuxRand(t *testing.T) {
	// Generate keypair
	kp, err := KeyPairGenerate()
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}
	defer kp.Clear()

	// Get x-only pubkey
	xonly, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}

	// Create message
	msg := make([]byte, 32)
	for i := range msg {
		msg[i] = byte(i)
	}

	// Auxiliary randomness
	auxRand := make([]byte, 32)
	for i := range auxRand {
		auxRand[i] = byte(i + 100)
	}

	// Sign
	var sig [64]byte
	if err := SchnorrSign(sig[:], msg, kp, auxRand); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	// Verify
	if !SchnorrVerify(sig[:], msg, xonly) {
		t.Error("signature verification failed")
	}
}

func TestSchnorrSignErrors(t *testing.T) {
	kp, err := KeyPairGenerate()
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}
	defer kp.Clear()

	msg := make([]byte, 32)
	var sig [64]byte

	// Wrong signature buffer length
	if err := SchnorrSign(sig[:63], msg, kp, nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("short sig buffer: got %v, want ErrMalformedInput", err)
	}

	// Wrong message length
	if err := SchnorrSign(sig[:], msg[:31], kp, nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("short message: got %v, want ErrMalformedInput", err)
	}

	// Nil keypair
	if err := SchnorrSign(sig[:], msg, nil, nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("nil keypair: got %v, want ErrMalformedInput", err)
	}

	// Aux randomness must be nil or exactly 32 bytes
	for _, auxLen := range []int{1, 31, 33} {
		if err := SchnorrSign(sig[:], msg, kp, make([]byte, auxLen)); !errors.Is(err, ErrInvalidAuxRand) {
			t.Errorf("aux length %d: got %v, want ErrInvalidAuxRand", auxLen, err)
		}
	}
}

func TestSchnorrVerifyInvalid(t *testing.T) {
	// Generate keypair
	kp, err := KeyPairGenerate()
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}
	defer kp.Clear()

	// Get x-only pubkey
	xonly, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}

	msg := make([]byte, 32)

	// Test with invalid signature length
	if SchnorrVerify([]byte{1}, msg, xonly) {
		t.Error("should fail with invalid signature length")
	}

	// Test with invalid message length
	var sig [64]byte
	if SchnorrVerify(sig[:], []byte{1}, xonly) {
		t.Error("should fail with invalid message length")
	}

	// Test with nil pubkey
	if SchnorrVerify(sig[:], msg, nil) {
		t.Error("should fail with nil pubkey")
	}
}

// Signatures whose halves are not canonical encodings must be rejected
// outright: r below the field prime, s below the group order.
func TestSchnorrVerifyNonCanonical(t *testing.T) {
	kp, err := KeyPairGenerate()
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}
	defer kp.Clear()

	xonly, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}

	msg := make([]byte, 32)
	for i := range msg {
		msg[i] = byte(i * 3)
	}

	var sig [64]byte
	if err := SchnorrSign(sig[:], msg, kp, nil); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if !SchnorrVerify(sig[:], msg, xonly) {
		t.Fatal("baseline signature should verify")
	}

	fieldPrime, _ := hex.DecodeString("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")
	groupOrder, _ := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

	// r = p: overflows the field
	bad := sig
	copy(bad[:32], fieldPrime)
	if SchnorrVerify(bad[:], msg, xonly) {
		t.Error("r equal to the field prime should be rejected")
	}

	// r = 2^256 - 1
	bad = sig
	for i := 0; i < 32; i++ {
		bad[i] = 0xFF
	}
	if SchnorrVerify(bad[:], msg, xonly) {
		t.Error("r above the field prime should be rejected")
	}

	// s = n: overflows the scalar group
	bad = sig
	copy(bad[32:], groupOrder)
	if SchnorrVerify(bad[:], msg, xonly) {
		t.Error("s equal to the group order should be rejected")
	}

	// s = 2^256 - 1
	bad = sig
	for i := 32; i < 64; i++ {
		bad[i] = 0xFF
	}
	if SchnorrVerify(bad[:], msg, xonly) {
		t.Error("s above the group order should be rejected")
	}

	// Any single flipped bit breaks the signature
	bad = sig
	bad[40] ^= 0x01
	if SchnorrVerify(bad[:], msg, xonly) {
		t.Error("corrupted s should be rejected")
	}
}

func TestNonceFunctionBIP340(t *testing.T) {
	key32 := make([]byte, 32)
	xonlyPk32 := make([]byte, 32)
	msg := []byte("test message")
	auxRand32 := make([]byte, 32)

	// Initialize test data
	for i := range key32 {
		key32[i] = byte(i)
	}
	for i := range xonlyPk32 {
		xonlyPk32[i] = byte(i + 10)
	}
	for i := range auxRand32 {
		auxRand32[i] = byte(i + 20)
	}

	// Test with aux random
	var nonce1 [32]byte
	if err := NonceFunctionBIP340(nonce1[:], msg, key32, xonlyPk32, auxRand32); err != nil {
		t.Fatalf("nonce generation failed: %v", err)
	}

	// Test without aux random
	var nonce2 [32]byte
	if err := NonceFunctionBIP340(nonce2[:], msg, key32, xonlyPk32, nil); err != nil {
		t.Fatalf("nonce generation failed: %v", err)
	}

	// Nonces should be different
	if bytes.Equal(nonce1[:], nonce2[:]) {
		t.Error("nonces should differ with different aux random")
	}

	// Nil aux and explicit all-zero aux must derive the same nonce: the
	// nil path substitutes the precomputed hash of 32 zero bytes.
	var nonce3 [32]byte
	if err := NonceFunctionBIP340(nonce3[:], msg, key32, xonlyPk32, make([]byte, 32)); err != nil {
		t.Fatalf("nonce generation failed: %v", err)
	}
	if !bytes.Equal(nonce2[:], nonce3[:]) {
		t.Error("nil aux and all-zero aux should derive the same nonce")
	}

	// The precomputed mask is TaggedHash("BIP0340/aux", 0x00*32)
	auxHash := TaggedHash(TagBIP340Aux, make([]byte, 32))
	if zeroMask != auxHash {
		t.Errorf("zero mask = %x, want %x", zeroMask, auxHash)
	}

	// Wrong aux length
	if err := NonceFunctionBIP340(nonce1[:], msg, key32, xonlyPk32, make([]byte, 16)); !errors.Is(err, ErrInvalidAuxRand) {
		t.Errorf("16-byte aux: got %v, want ErrInvalidAuxRand", err)
	}

	// Wrong buffer lengths
	if err := NonceFunctionBIP340(nonce1[:31], msg, key32, xonlyPk32, nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("short nonce buffer: got %v, want ErrMalformedInput", err)
	}
	if err := NonceFunctionBIP340(nonce1[:], msg, key32[:31], xonlyPk32, nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("short key: got %v, want ErrMalformedInput", err)
	}
	if err := NonceFunctionBIP340(nonce1[:], msg, key32, xonlyPk32[:31], nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("short pubkey: got %v, want ErrMalformedInput", err)
	}
}

func TestSchnorrMultipleSignatures(t *testing.T) {
	// Test that multiple signatures with same keypair are different when using different aux_rand
	kp, err := KeyPairGenerate()
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}
	defer kp.Clear()

	xonly, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}

	msg := make([]byte, 32)

	// Sign without aux_rand (deterministic - should be same)
	var sig1, sig2 [64]byte
	if err := SchnorrSign(sig1[:], msg, kp, nil); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if err := SchnorrSign(sig2[:], msg, kp, nil); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	// Both should verify
	if !SchnorrVerify(sig1[:], msg, xonly) {
		t.Error("signature 1 verification failed")
	}
	if !SchnorrVerify(sig2[:], msg, xonly) {
		t.Error("signature 2 verification failed")
	}

	// Without aux_rand, signatures should be deterministic (same)
	if !bytes.Equal(sig1[:], sig2[:]) {
		t.Error("without aux_rand, signatures should be deterministic (same)")
	}

	// Sign with different aux_rand (should be different)
	auxRand1 := make([]byte, 32)
	auxRand2 := make([]byte, 32)
	for i := range auxRand1 {
		auxRand1[i] = byte(i)
		auxRand2[i] = byte(i + 1)
	}

	if err := SchnorrSign(sig1[:], msg, kp, auxRand1); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if err := SchnorrSign(sig2[:], msg, kp, auxRand2); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	// Both should verify
	if !SchnorrVerify(sig1[:], msg, xonly) {
		t.Error("signature 1 verification failed")
	}
	if !SchnorrVerify(sig2[:], msg, xonly) {
		t.Error("signature 2 verification failed")
	}

	// With different aux_rand, signatures should differ
	if bytes.Equal(sig1[:], sig2[:]) {
		t.Error("with different aux_rand, signatures should differ")
	}
}

// Official BIP-340 test vectors. The first four carry secret keys, so the
// produced signature bytes are compared exactly; the last is a
// verification-only vector with a low r value.
func TestSchnorrBIP340Vectors(t *testing.T) {
	signVectors := []struct {
		name   string
		seckey string
		pubkey string
		aux    string
		msg    string
		sig    string
	}{
		{
			name:   "vector 0",
			seckey: "0000000000000000000000000000000000000000000000000000000000000003",
			pubkey: "f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9",
			aux:    "0000000000000000000000000000000000000000000000000000000000000000",
			msg:    "0000000000000000000000000000000000000000000000000000000000000000",
			sig:    "e907831f80848d1069a5371b402410364bdf1c5f8307b0084c55f1ce2dca821525f66a4a85ea8b71e482a74f382d2ce5ebeee8fdb2172f477df4900d310536c0",
		},
		{
			name:   "vector 1",
			seckey: "b7e151628aed2a6abf7158809cf4f3c762e7160f38b4da56a784d9045190cfef",
			pubkey: "dff1d77f2a671c5f36183726db2341be58feae1da2deced843240f7b502ba659",
			aux:    "0000000000000000000000000000000000000000000000000000000000000001",
			msg:    "243f6a8885a308d313198a2e03707344a4093822299f31d0082efa98ec4e6c89",
			sig:    "6896bd60eeae296db48a229ff71dfe071bde413e6d43f917dc8dcf8c78de33418906d11ac976abccb20b091292bff4ea897efcb639ea871cfa95f6de339e4b0a",
		},
		{
			name:   "vector 2",
			seckey: "c90fdaa22168c234c4c6628b80dc1cd129024e088a67cc74020bbea63b14e5c9",
			pubkey: "dd308afec5777e13121fa72b9cc1b7cc0139715309b086c960e18fd969774eb8",
			aux:    "c87aa53824b4d7ae2eb035a2b5bbbccc080e76cdc6d1692c4b0b62d798e6d906",
			msg:    "7e2d58d8b3bcdf1abadec7829054f90dda9805aab56c77333024b9d0a508b75c",
			sig:    "5831aaeed7b44bb74e5eab94ba9d4294c49bcf2a60728d8b4c200f50dd313c1bab745879a5ad954a72c45a91c3a51d3c7adea98d82f8481e0e1e03674a6f3fb7",
		},
		{
			name:   "vector 3",
			seckey: "0b432b2677937381aef05bb02a66ecd012773062cf3fa2549e44f58ed2401710",
			pubkey: "25d1dff95105f5253c4022f628a996ad3a0d95fbf21d468a1b33f8c160d8f517",
			aux:    "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
			msg:    "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
			sig:    "7eb0509757e246f19449885651611cb965ecc1a187dd51b64fda1edc9637d5ec97582b9cb13db3933705b32ba982af5af25fd78881ebb32771fc5922efc66ea3",
		},
	}

	for _, tc := range signVectors {
		t.Run(tc.name, func(t *testing.T) {
			seckey, _ := hex.DecodeString(tc.seckey)
			pubkey, _ := hex.DecodeString(tc.pubkey)
			aux, _ := hex.DecodeString(tc.aux)
			msg, _ := hex.DecodeString(tc.msg)
			expected, _ := hex.DecodeString(tc.sig)

			kp, err := KeyPairCreate(seckey)
			if err != nil {
				t.Fatalf("failed to create keypair: %v", err)
			}
			defer kp.Clear()

			xonly, err := kp.XOnlyPubkey()
			if err != nil {
				t.Fatalf("failed to get x-only pubkey: %v", err)
			}
			serialized := xonly.Serialize()
			if !bytes.Equal(serialized[:], pubkey) {
				t.Fatalf("pubkey = %x, want %s", serialized, tc.pubkey)
			}

			var sig [64]byte
			if err := SchnorrSign(sig[:], msg, kp, aux); err != nil {
				t.Fatalf("failed to sign: %v", err)
			}
			if !bytes.Equal(sig[:], expected) {
				t.Errorf("signature = %x, want %s", sig, tc.sig)
			}

			if !SchnorrVerify(sig[:], msg, xonly) {
				t.Error("signature verification failed")
			}
		})
	}

	t.Run("verify-only low r", func(t *testing.T) {
		pubkey, _ := hex.DecodeString("d69c3509bb99e412e68b0fe8544e72837dfa30746d8be2aa65975f29d22dc7b9")
		msg, _ := hex.DecodeString("4df3c3f68fcc83b27e9d42c90431a72499f17875c81a599b566c9889b9696703")
		sig, _ := hex.DecodeString("00000000000000000000003b78ce563f89a0ed9414f5aa28ad0d96d6795f9c6376afb1548af603b3eb45c9f8207dee1060cb71c04e80f593060b07d28308d7f4")

		xonly, err := XOnlyPubkeyParse(pubkey)
		if err != nil {
			t.Fatalf("failed to parse pubkey: %v", err)
		}
		if !SchnorrVerify(sig, msg, xonly) {
			t.Error("signature verification failed")
		}
	})
}

func TestSignatureParse(t *testing.T) {
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = byte(i)
	}

	sig, err := ParseSignature(raw)
	if err != nil {
		t.Fatalf("failed to parse signature: %v", err)
	}
	serialized := sig.Serialize()
	if !bytes.Equal(serialized[:], raw) {
		t.Error("serialized signature should round-trip")
	}

	for _, badLen := range []int{0, 32, 63, 65} {
		if _, err := ParseSignature(make([]byte, badLen)); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("length %d: got %v, want ErrMalformedInput", badLen, err)
		}
	}
}

// Key-path signing over a signature hash with a tweaked secret key: the
// pinned chain starts from internal secret 1, commits to no script tree,
// and signs the first input of the reference transaction with zero aux.
func TestSignAndVerifyDigest(t *testing.T) {
	tweakedHex := "3cf5216d476a5e637bf0da674e50ddf55c403270dd36494dfcca438132fa30e8"
	outputKeyHex := "da4710964f7852695de2da025290e24af6d8c281de5a0b902b7135fd9fd74d21"
	digestHex := "1f03d596b0ffe0ad39b73d41180dae7c60210f296831b3618c0b94024fc10ad6"
	sigHex := "739a83abcbdccf64b9ebc795da9aefc72e4f0650cb6a2336a6e598bce899f307245b717c3d471bcb113032afd1ed1244baf60e2ec100056a5875510885b06211"

	tweakedBytes, _ := hex.DecodeString(tweakedHex)
	tweaked, err := ParseScalar(tweakedBytes)
	if err != nil {
		t.Fatalf("failed to parse tweaked seckey: %v", err)
	}

	digestBytes, _ := hex.DecodeString(digestHex)
	digest, err := ParseSigHash(digestBytes)
	if err != nil {
		t.Fatalf("failed to parse sighash: %v", err)
	}

	aux := make([]byte, 32)
	sig, err := Sign(tweaked, digest, aux)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	expected, _ := hex.DecodeString(sigHex)
	if !bytes.Equal(sig[:], expected) {
		t.Errorf("signature = %x, want %s", sig[:], sigHex)
	}

	outputKeyBytes, _ := hex.DecodeString(outputKeyHex)
	outputKey, err := ParseOutputKey(outputKeyBytes)
	if err != nil {
		t.Fatalf("failed to parse output key: %v", err)
	}

	if !Verify(outputKey, digest, sig) {
		t.Error("signature verification failed")
	}

	// Corrupt one byte of each half
	bad := *sig
	bad[0] ^= 1
	if Verify(outputKey, digest, &bad) {
		t.Error("corrupted r should not verify")
	}
	bad = *sig
	bad[63] ^= 1
	if Verify(outputKey, digest, &bad) {
		t.Error("corrupted s should not verify")
	}

	// Wrong digest
	wrongDigest := *digest
	wrongDigest[0] ^= 1
	if Verify(outputKey, &wrongDigest, sig) {
		t.Error("wrong digest should not verify")
	}

	// Nil arguments
	if Verify(nil, digest, sig) {
		t.Error("nil key should not verify")
	}
	if Verify(outputKey, nil, sig) {
		t.Error("nil digest should not verify")
	}
	if Verify(outputKey, digest, nil) {
		t.Error("nil signature should not verify")
	}
}

func TestSignErrors(t *testing.T) {
	oneBytes := make([]byte, 32)
	oneBytes[31] = 1
	one, err := ParseScalar(oneBytes)
	if err != nil {
		t.Fatalf("failed to parse scalar: %v", err)
	}

	var digest SigHash

	if _, err := Sign(nil, &digest, nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("nil seckey: got %v, want ErrMalformedInput", err)
	}
	if _, err := Sign(one, nil, nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("nil digest: got %v, want ErrMalformedInput", err)
	}
	if _, err := Sign(one, &digest, make([]byte, 16)); !errors.Is(err, ErrInvalidAuxRand) {
		t.Errorf("16-byte aux: got %v, want ErrInvalidAuxRand", err)
	}

	zero := NewScalar(make([]byte, 32))
	if _, err := Sign(zero, &digest, nil); !errors.Is(err, ErrInvalidScalar) {
		t.Errorf("zero seckey: got %v, want ErrInvalidScalar", err)
	}
}

// An odd-Y internal key forces the negation branch of TweakedSeckey; the
// tweaked secret must still sign for the x-only output key.
func TestSchnorrOddInternalKeyPath(t *testing.T) {
	seckey := make([]byte, 32)
	seckey[31] = 6

	kp, err := KeyPairCreate(seckey)
	if err != nil {
		t.Fatalf("failed to create keypair: %v", err)
	}
	defer kp.Clear()

	internal, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}
	serialized := internal.Serialize()
	if got, want := hex.EncodeToString(serialized[:]), "fff97bd5755eeea420453a14355235d382f6472f8568a18b2f057a1460297556"; got != want {
		t.Fatalf("internal key = %s, want %s", got, want)
	}

	outputKey, tweak, err := Tweak(internal, nil)
	if err != nil {
		t.Fatalf("failed to tweak: %v", err)
	}
	outBytes := outputKey.Serialize()
	if got, want := hex.EncodeToString(outBytes[:]), "a8e1f6946495d797bda3c3c6a88cf34375130c57a42a966c9a0508bf3cc2fc1a"; got != want {
		t.Fatalf("output key = %s, want %s", got, want)
	}

	seckeyScalar, err := kp.SeckeyScalar()
	if err != nil {
		t.Fatalf("failed to get seckey scalar: %v", err)
	}
	tweaked, err := TweakedSeckey(seckeyScalar, tweak)
	if err != nil {
		t.Fatalf("failed to tweak seckey: %v", err)
	}
	tweakedBytes := tweaked.Serialize()
	if got, want := hex.EncodeToString(tweakedBytes[:]), "25fee0b2ff9076ea93b70323592f582d29a4139ce98af1843c67265ce1ba583d"; got != want {
		t.Fatalf("tweaked seckey = %s, want %s", got, want)
	}

	msg, _ := hex.DecodeString("8e89331509b2307c38445ea320e0f5a84cb3072b0c1844a40ca6ab31de92cba0")
	digest, err := ParseSigHash(msg)
	if err != nil {
		t.Fatalf("failed to parse digest: %v", err)
	}

	sig, err := Sign(tweaked, digest, make([]byte, 32))
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if got, want := hex.EncodeToString(sig[:]), "eac4c2f94d73a5a3db455be82e3067c4817f9ca0d4a3f5da8bca3bae9813d0a3afddd8d742aae5a60fefb1c3fba0359133d3d8fc8794d5bb5cf0487e40f23733"; got != want {
		t.Errorf("signature = %s, want %s", got, want)
	}

	if !Verify(outputKey, digest, sig) {
		t.Error("signature verification failed")
	}
}

// Cross-check against the btcec schnorr implementation. Signature bytes are
// not compared for btcec-produced signatures: btcec derives nonces with
// RFC6979 rather than the BIP-340 tagged construction, and both are valid.
func TestSchnorrAgainstBtcec(t *testing.T) {
	seckeys := make([][]byte, 3)
	seckeys[0] = make([]byte, 32)
	seckeys[0][31] = 0x01
	seckeys[1] = make([]byte, 32)
	seckeys[1][0] = 0x7f
	seckeys[1][31] = 0x03
	seckeys[2] = bytes.Repeat([]byte{0x55}, 32)

	msg := make([]byte, 32)
	for i := range msg {
		msg[i] = byte(0xA0 + i)
	}

	for i, seckey := range seckeys {
		kp, err := KeyPairCreate(seckey)
		if err != nil {
			t.Fatalf("seckey %d: failed to create keypair: %v", i, err)
		}

		xonly, err := kp.XOnlyPubkey()
		if err != nil {
			t.Fatalf("seckey %d: failed to get x-only pubkey: %v", i, err)
		}
		serialized := xonly.Serialize()

		btcPriv, _ := btcec.PrivKeyFromBytes(seckey)
		btcPub, err := schnorr.ParsePubKey(serialized[:])
		if err != nil {
			t.Fatalf("seckey %d: btcec rejected pubkey: %v", i, err)
		}

		// Our signature must verify under btcec
		var sig [64]byte
		if err := SchnorrSign(sig[:], msg, kp, nil); err != nil {
			t.Fatalf("seckey %d: failed to sign: %v", i, err)
		}
		btcSig, err := schnorr.ParseSignature(sig[:])
		if err != nil {
			t.Fatalf("seckey %d: btcec rejected signature: %v", i, err)
		}
		if !btcSig.Verify(msg, btcPub) {
			t.Errorf("seckey %d: btcec rejected our signature", i)
		}

		// btcec's signature must verify under ours
		theirSig, err := schnorr.Sign(btcPriv, msg)
		if err != nil {
			t.Fatalf("seckey %d: btcec failed to sign: %v", i, err)
		}
		if !SchnorrVerify(theirSig.Serialize(), msg, xonly) {
			t.Errorf("seckey %d: we rejected btcec's signature", i)
		}

		kp.Clear()
	}
}

func BenchmarkSchnorrSign(b *testing.B) {
	kp, err := KeyPairGenerate()
	if err != nil {
		b.Fatalf("failed to generate keypair: %v", err)
	}
	defer kp.Clear()

	msg := make([]byte, 32)
	for i := range msg {
		msg[i] = byte(i)
	}

	var sig [64]byte
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := SchnorrSign(sig[:], msg, kp, nil); err != nil {
			b.Fatalf("failed to sign: %v", err)
		}
	}
}

func BenchmarkSchnorrVerify(b *testing.B) {
	kp, err := KeyPairGenerate()
	if err != nil {
		b.Fatalf("failed to generate keypair: %v", err)
	}
	defer kp.Clear()

	xonly, err := kp.XOnlyPubkey()
	if err != nil {
		b.Fatalf("failed to get x-only pubkey: %v", err)
	}

	msg := make([]byte, 32)
	for i := range msg {
		msg[i] = byte(i)
	}

	var sig [64]byte
	if err := SchnorrSign(sig[:], msg, kp, nil); err != nil {
		b.Fatalf("failed to sign: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !SchnorrVerify(sig[:], msg, xonly) {
			b.Fatal("verification failed")
		}
	}
}
