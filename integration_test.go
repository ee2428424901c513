package taproot

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/txscript"
)

// Test the complete key-path spend workflow: derive the internal key, tweak
// it, compute the transaction digest and sign it. Every intermediate value is
// pinned so a regression in any stage is caught at that stage.
func TestKeyPathSpendWorkflow(t *testing.T) {
	seckey := make([]byte, 32)
	seckey[31] = 1

	kp, err := KeyPairCreate(seckey)
	if err != nil {
		t.Fatalf("failed to create keypair: %v", err)
	}
	defer kp.Clear()

	internal, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}
	internalBytes := internal.Serialize()
	if got, want := hex.EncodeToString(internalBytes[:]), "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"; got != want {
		t.Fatalf("internal key = %s, want %s", got, want)
	}

	// Key-only commitment: no script tree
	outputKey, tweak, err := Tweak(internal, nil)
	if err != nil {
		t.Fatalf("failed to tweak: %v", err)
	}
	outputBytes := outputKey.Serialize()
	if got, want := hex.EncodeToString(outputBytes[:]), "da4710964f7852695de2da025290e24af6d8c281de5a0b902b7135fd9fd74d21"; got != want {
		t.Fatalf("output key = %s, want %s", got, want)
	}
	if outputKey.Parity() != 1 {
		t.Fatalf("output key parity = %d, want 1", outputKey.Parity())
	}
	tweakBytes := tweak.Serialize()
	if got, want := hex.EncodeToString(tweakBytes[:]), "3cf5216d476a5e637bf0da674e50ddf55c403270dd36494dfcca438132fa30e7"; got != want {
		t.Fatalf("tweak = %s, want %s", got, want)
	}

	// Tweaked secret must correspond to the output key
	internalScalar, err := kp.SeckeyScalar()
	if err != nil {
		t.Fatalf("failed to get secret scalar: %v", err)
	}
	tweaked, err := TweakedSeckey(internalScalar, tweak)
	if err != nil {
		t.Fatalf("failed to tweak seckey: %v", err)
	}
	tweakedBytes := tweaked.Serialize()
	if got, want := hex.EncodeToString(tweakedBytes[:]), "3cf5216d476a5e637bf0da674e50ddf55c403270dd36494dfcca438132fa30e8"; got != want {
		t.Fatalf("tweaked seckey = %s, want %s", got, want)
	}

	// Transaction digest for the spend
	skel := pinnedSkeleton()
	digest, err := ComputeSighash(skel, 0, SighashDefault)
	if err != nil {
		t.Fatalf("failed to compute sighash: %v", err)
	}
	if got, want := hex.EncodeToString(digest[:]), "1f03d596b0ffe0ad39b73d41180dae7c60210f296831b3618c0b94024fc10ad6"; got != want {
		t.Fatalf("digest = %s, want %s", got, want)
	}

	// Sign with fixed aux randomness so the signature is reproducible
	aux := make([]byte, 32)
	sig, err := Sign(tweaked, digest, aux)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	sigBytes := sig.Serialize()
	wantSig := "739a83abcbdccf64b9ebc795da9aefc72e4f0650cb6a2336a6e598bce899f307" +
		"245b717c3d471bcb113032afd1ed1244baf60e2ec100056a5875510885b06211"
	if got := hex.EncodeToString(sigBytes[:]); got != wantSig {
		t.Fatalf("signature = %s, want %s", got, wantSig)
	}

	if !Verify(outputKey, digest, sig) {
		t.Error("signature should verify against the output key")
	}

	// SIGHASH_ALL produces a different digest and signature
	digestAll, err := ComputeSighash(skel, 0, SighashAll)
	if err != nil {
		t.Fatalf("failed to compute sighash: %v", err)
	}
	if got, want := hex.EncodeToString(digestAll[:]), "909f9b46082e23123ddb49e0c9696fd5e5e16c346c538562c563476bf2536f45"; got != want {
		t.Fatalf("SIGHASH_ALL digest = %s, want %s", got, want)
	}

	sigAll, err := Sign(tweaked, digestAll, aux)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	sigAllBytes := sigAll.Serialize()
	wantSigAll := "2ec3499afcb8e6324de878a558653183ffc37c8d1ef5af60b95ea16ce72c53e3" +
		"2365d95ed390b5a09156a3b6f6dea2f5512c588012569a2aa8e7449a1114a1ac"
	if got := hex.EncodeToString(sigAllBytes[:]); got != wantSigAll {
		t.Fatalf("SIGHASH_ALL signature = %s, want %s", got, wantSigAll)
	}
	if !Verify(outputKey, digestAll, sigAll) {
		t.Error("SIGHASH_ALL signature should verify")
	}

	// A watch-only holder knows just the 32-byte output key; parsing it back
	// must be enough to verify
	parsed, err := ParseOutputKey(outputBytes[:])
	if err != nil {
		t.Fatalf("failed to parse output key: %v", err)
	}
	if !Verify(parsed, digest, sig) {
		t.Error("signature should verify against the parsed output key")
	}
}

func TestKeyPathSpendRejectsCorruption(t *testing.T) {
	seckey := make([]byte, 32)
	seckey[31] = 1

	kp, err := KeyPairCreate(seckey)
	if err != nil {
		t.Fatalf("failed to create keypair: %v", err)
	}
	internal, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}
	outputKey, tweak, err := Tweak(internal, nil)
	if err != nil {
		t.Fatalf("failed to tweak: %v", err)
	}
	internalScalar, err := kp.SeckeyScalar()
	if err != nil {
		t.Fatalf("failed to get secret scalar: %v", err)
	}
	tweaked, err := TweakedSeckey(internalScalar, tweak)
	if err != nil {
		t.Fatalf("failed to tweak seckey: %v", err)
	}

	digest, err := ComputeSighash(pinnedSkeleton(), 0, SighashDefault)
	if err != nil {
		t.Fatalf("failed to compute sighash: %v", err)
	}
	sig, err := Sign(tweaked, digest, nil)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if !Verify(outputKey, digest, sig) {
		t.Fatal("signature should verify before corruption")
	}

	// Any flipped signature byte invalidates it
	for _, idx := range []int{0, 31, 32, 63} {
		corrupted := *sig
		corrupted[idx] ^= 0x01
		if Verify(outputKey, digest, &corrupted) {
			t.Errorf("signature with byte %d flipped should not verify", idx)
		}
	}

	// A different digest does not verify
	wrongDigest := *digest
	wrongDigest[0] ^= 0x01
	if Verify(outputKey, &wrongDigest, sig) {
		t.Error("signature should not verify a different digest")
	}

	// A different output key does not verify
	otherKeyBytes, _ := hex.DecodeString("418c46636d9e1a683f58e35b42336e776fdcc3b2d4e39e7a0bf1ab0716e3c5fa")
	otherKey, err := ParseOutputKey(otherKeyBytes)
	if err != nil {
		t.Fatalf("failed to parse output key: %v", err)
	}
	if Verify(otherKey, digest, sig) {
		t.Error("signature should not verify under another key")
	}
}

// Committing to a script tree changes the output key, and the tweaked secret
// still signs for it.
func TestScriptCommitmentWorkflow(t *testing.T) {
	seckey := make([]byte, 32)
	seckey[31] = 1

	kp, err := KeyPairCreate(seckey)
	if err != nil {
		t.Fatalf("failed to create keypair: %v", err)
	}
	internal, err := kp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get x-only pubkey: %v", err)
	}

	// Two-leaf tree
	left := TapLeafHash(BaseLeafVersion, []byte{txscript.OP_1})
	right := TapLeafHash(BaseLeafVersion, []byte{txscript.OP_2})
	root := TapBranchHash(left, right)

	outputKey, tweak, err := Tweak(internal, root[:])
	if err != nil {
		t.Fatalf("failed to tweak with root: %v", err)
	}

	keyOnly, _, err := Tweak(internal, nil)
	if err != nil {
		t.Fatalf("failed to tweak: %v", err)
	}
	if outputKey.Serialize() == keyOnly.Serialize() {
		t.Error("script commitment should change the output key")
	}

	internalScalar, err := kp.SeckeyScalar()
	if err != nil {
		t.Fatalf("failed to get secret scalar: %v", err)
	}
	tweaked, err := TweakedSeckey(internalScalar, tweak)
	if err != nil {
		t.Fatalf("failed to tweak seckey: %v", err)
	}

	// The tweaked secret's public key is the output key
	tweakedBytes := tweaked.Serialize()
	tweakedKp, err := KeyPairCreate(tweakedBytes[:])
	if err != nil {
		t.Fatalf("failed to create tweaked keypair: %v", err)
	}
	tweakedPub, err := tweakedKp.XOnlyPubkey()
	if err != nil {
		t.Fatalf("failed to get tweaked pubkey: %v", err)
	}
	if tweakedPub.Serialize() != outputKey.XOnly().Serialize() {
		t.Error("tweaked secret should correspond to the output key")
	}

	var digest SigHash
	if _, err := rand.Read(digest[:]); err != nil {
		t.Fatal(err)
	}
	sig, err := Sign(tweaked, &digest, nil)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if !Verify(outputKey, &digest, sig) {
		t.Error("signature should verify against the script-committed key")
	}
}

// Random keys through the whole pipeline. The x-only identity q*G = ±Q must
// hold for every key and both root shapes.
func TestTweakSignConsistencyRandom(t *testing.T) {
	for i := 0; i < 10; i++ {
		seckey, err := ECSeckeyGenerate()
		if err != nil {
			t.Fatalf("failed to generate seckey: %v", err)
		}

		kp, err := KeyPairCreate(seckey)
		if err != nil {
			t.Fatalf("failed to create keypair: %v", err)
		}
		internal, err := kp.XOnlyPubkey()
		if err != nil {
			t.Fatalf("failed to get x-only pubkey: %v", err)
		}

		// Alternate between key-only and script commitments
		var root []byte
		if i%2 == 1 {
			root = make([]byte, 32)
			if _, err := rand.Read(root); err != nil {
				t.Fatal(err)
			}
		}

		outputKey, tweak, err := Tweak(internal, root)
		if err != nil {
			t.Fatalf("failed to tweak: %v", err)
		}
		internalScalar, err := kp.SeckeyScalar()
		if err != nil {
			t.Fatalf("failed to get secret scalar: %v", err)
		}
		tweaked, err := TweakedSeckey(internalScalar, tweak)
		if err != nil {
			t.Fatalf("failed to tweak seckey: %v", err)
		}

		tweakedBytes := tweaked.Serialize()
		tweakedKp, err := KeyPairCreate(tweakedBytes[:])
		if err != nil {
			t.Fatalf("failed to create tweaked keypair: %v", err)
		}
		tweakedPub, err := tweakedKp.XOnlyPubkey()
		if err != nil {
			t.Fatalf("failed to get tweaked pubkey: %v", err)
		}
		if tweakedPub.Serialize() != outputKey.XOnly().Serialize() {
			t.Fatalf("iteration %d: tweaked secret does not match output key", i)
		}

		var digest SigHash
		if _, err := rand.Read(digest[:]); err != nil {
			t.Fatal(err)
		}
		sig, err := Sign(tweaked, &digest, nil)
		if err != nil {
			t.Fatalf("failed to sign: %v", err)
		}
		if !Verify(outputKey, &digest, sig) {
			t.Errorf("iteration %d: signature should verify", i)
		}

		var wrongDigest SigHash
		copy(wrongDigest[:], digest[:])
		wrongDigest[0] ^= 0x01
		if Verify(outputKey, &wrongDigest, sig) {
			t.Errorf("iteration %d: signature should not verify a different digest", i)
		}
	}
}

func BenchmarkKeyPathSpendWorkflow(b *testing.B) {
	seckey := make([]byte, 32)
	seckey[31] = 1

	kp, err := KeyPairCreate(seckey)
	if err != nil {
		b.Fatal(err)
	}
	internal, err := kp.XOnlyPubkey()
	if err != nil {
		b.Fatal(err)
	}
	internalScalar, err := kp.SeckeyScalar()
	if err != nil {
		b.Fatal(err)
	}
	skel := pinnedSkeleton()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		outputKey, tweak, err := Tweak(internal, nil)
		if err != nil {
			b.Fatal(err)
		}
		tweaked, err := TweakedSeckey(internalScalar, tweak)
		if err != nil {
			b.Fatal(err)
		}
		digest, err := ComputeSighash(skel, 0, SighashDefault)
		if err != nil {
			b.Fatal(err)
		}
		sig, err := Sign(tweaked, digest, nil)
		if err != nil {
			b.Fatal(err)
		}
		if !Verify(outputKey, digest, sig) {
			b.Fatal("verification failed")
		}
	}
}
