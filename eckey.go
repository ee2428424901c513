package taproot

import (
	"crypto/rand"
	"fmt"
)

// ECSeckeyVerify verifies that a 32-byte array is a valid secret key
func ECSeckeyVerify(seckey []byte) bool {
	if len(seckey) != 32 {
		return false
	}

	var scalar Scalar
	valid := scalar.setB32Seckey(seckey)
	scalar.clear()
	return valid
}

// ECSeckeyNegate negates a secret key in place
func ECSeckeyNegate(seckey []byte) bool {
	if len(seckey) != 32 {
		return false
	}

	var scalar Scalar
	if !scalar.setB32Seckey(seckey) {
		return false
	}

	scalar.negate(&scalar)
	scalar.getB32(seckey)
	scalar.clear()
	return true
}

// ECSeckeyGenerate generates a new random secret key from system entropy,
// retrying until the bytes form a valid scalar
func ECSeckeyGenerate() ([]byte, error) {
	seckey := make([]byte, 32)
	for {
		if _, err := rand.Read(seckey); err != nil {
			return nil, fmt.Errorf("reading entropy: %w", err)
		}

		if ECSeckeyVerify(seckey) {
			return seckey, nil
		}
	}
}

// ECKeyPairGenerate generates a new secret key and its public key
func ECKeyPairGenerate() (seckey []byte, pubkey *PublicKey, err error) {
	seckey, err = ECSeckeyGenerate()
	if err != nil {
		return nil, nil, err
	}

	pubkey = &PublicKey{}
	if err := ECPubkeyCreate(pubkey, seckey); err != nil {
		return nil, nil, err
	}

	return seckey, pubkey, nil
}

// ECSeckeyTweakAdd adds a tweak to a secret key in place:
// seckey = (seckey + tweak) mod n
func ECSeckeyTweakAdd(seckey []byte, tweak []byte) error {
	if len(seckey) != 32 {
		return fmt.Errorf("seckey length %d: %w", len(seckey), ErrMalformedInput)
	}
	if len(tweak) != 32 {
		return fmt.Errorf("tweak length %d: %w", len(tweak), ErrMalformedInput)
	}

	var sec, tw Scalar
	if !sec.setB32Seckey(seckey) {
		return ErrInvalidScalar
	}
	if tw.setB32(tweak) {
		return ErrInvalidTweak
	}

	sec.add(&sec, &tw)

	if sec.isZero() {
		sec.clear()
		tw.clear()
		return fmt.Errorf("tweaked seckey is zero: %w", ErrInvalidTweak)
	}

	sec.getB32(seckey)
	sec.clear()
	tw.clear()
	return nil
}

// ECPubkeyTweakAdd adds a tweak point to a public key in place:
// pubkey = pubkey + tweak*G
func ECPubkeyTweakAdd(pubkey *PublicKey, tweak []byte) error {
	if len(tweak) != 32 {
		return fmt.Errorf("tweak length %d: %w", len(tweak), ErrMalformedInput)
	}

	var tw Scalar
	if tw.setB32(tweak) {
		return ErrInvalidTweak
	}

	var pubkeyPoint GroupElementAffine
	pubkeyLoad(&pubkeyPoint, pubkey)
	if pubkeyPoint.isInfinity() {
		return fmt.Errorf("tweaking empty pubkey: %w", ErrPointAtInfinity)
	}

	var tweakG GroupElementJacobian
	EcmultGen(&tweakG, &tw)

	var pubkeyJac GroupElementJacobian
	pubkeyJac.setGE(&pubkeyPoint)

	var result GroupElementJacobian
	result.addVar(&pubkeyJac, &tweakG)

	if result.isInfinity() {
		return fmt.Errorf("tweaked pubkey: %w", ErrPointAtInfinity)
	}

	var resultAff GroupElementAffine
	resultAff.setGEJ(&result)
	pubkeySave(pubkey, &resultAff)

	return nil
}
