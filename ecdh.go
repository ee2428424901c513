package taproot

import (
	"fmt"
	"unsafe"
)

// ECDHHashFunction hashes an ECDH shared point into a secret.
// Returns false when the output could not be produced.
type ECDHHashFunction func(output []byte, x32 []byte, y32 []byte) bool

// ecdhHashFunctionSHA256 is the default hash: SHA256 of the compressed
// shared point.
func ecdhHashFunctionSHA256(output []byte, x32 []byte, y32 []byte) bool {
	if len(output) != 32 || len(x32) != 32 || len(y32) != 32 {
		return false
	}

	version := byte((y32[31] & 0x01) | 0x02)

	sha := NewSHA256()
	sha.Write([]byte{version})
	sha.Write(x32)
	sha.Finalize(output)
	sha.Clear()

	return true
}

// ECDH computes an EC Diffie-Hellman shared secret into output (32 bytes).
// hashfp defaults to SHA256 of the compressed shared point.
func ECDH(output []byte, pubkey *PublicKey, seckey []byte, hashfp ECDHHashFunction) error {
	if len(output) != 32 {
		return fmt.Errorf("output length %d: %w", len(output), ErrMalformedInput)
	}
	if len(seckey) != 32 {
		return fmt.Errorf("seckey length %d: %w", len(seckey), ErrMalformedInput)
	}
	if pubkey == nil {
		return fmt.Errorf("nil pubkey: %w", ErrMalformedInput)
	}

	if hashfp == nil {
		hashfp = ecdhHashFunctionSHA256
	}

	var pt GroupElementAffine
	pubkeyLoad(&pt, pubkey)
	if pt.isInfinity() {
		return fmt.Errorf("ecdh pubkey: %w", ErrPointAtInfinity)
	}

	var s Scalar
	if !s.setB32Seckey(seckey) {
		return ErrInvalidScalar
	}

	// res = s * pt
	var res GroupElementJacobian
	EcmultPoint(&res, &s, &pt)

	var resAff GroupElementAffine
	resAff.setGEJ(&res)
	resAff.x.normalize()
	resAff.y.normalize()

	var x, y [32]byte
	resAff.x.getB32(x[:])
	resAff.y.getB32(y[:])

	success := hashfp(output, x[:], y[:])

	memclear(unsafe.Pointer(&x[0]), 32)
	memclear(unsafe.Pointer(&y[0]), 32)
	s.clear()
	resAff.clear()
	res.clear()

	if !success {
		return fmt.Errorf("ecdh hash function failed")
	}

	return nil
}

// HKDF derives key material of len(output) bytes from ikm (RFC 5869,
// HMAC-SHA256)
func HKDF(output []byte, ikm []byte, salt []byte, info []byte) error {
	if len(output) == 0 {
		return fmt.Errorf("empty output buffer: %w", ErrMalformedInput)
	}

	// Extract: PRK = HMAC-SHA256(salt, IKM), zero salt when absent
	if len(salt) == 0 {
		salt = make([]byte, 32)
	}

	var prk [32]byte
	hmac := NewHMACSHA256(salt)
	hmac.Write(ikm)
	hmac.Finalize(prk[:])
	hmac.Clear()

	// Expand: T(i) = HMAC(PRK, T(i-1) || info || i)
	outlen := len(output)
	outidx := 0

	var t []byte
	blockNum := byte(1)
	for outidx < outlen {
		hmac = NewHMACSHA256(prk[:])
		if len(t) > 0 {
			hmac.Write(t)
		}
		if len(info) > 0 {
			hmac.Write(info)
		}
		hmac.Write([]byte{blockNum})

		var tBlock [32]byte
		hmac.Finalize(tBlock[:])
		hmac.Clear()

		copyLen := len(tBlock)
		if copyLen > outlen-outidx {
			copyLen = outlen - outidx
		}
		copy(output[outidx:outidx+copyLen], tBlock[:copyLen])
		outidx += copyLen

		t = tBlock[:]
		blockNum++
	}

	memclear(unsafe.Pointer(&prk[0]), 32)
	if len(t) > 0 {
		memclear(unsafe.Pointer(&t[0]), uintptr(len(t)))
	}

	return nil
}

// ECDHWithHKDF computes an ECDH shared secret and expands it through HKDF
func ECDHWithHKDF(output []byte, pubkey *PublicKey, seckey []byte, salt []byte, info []byte) error {
	var sharedSecret [32]byte
	if err := ECDH(sharedSecret[:], pubkey, seckey, nil); err != nil {
		return err
	}

	err := HKDF(output, sharedSecret[:], salt, info)

	memclear(unsafe.Pointer(&sharedSecret[0]), 32)

	return err
}

// ECDHXOnly computes an x-only ECDH shared secret: the X coordinate of the
// shared point, unhashed
func ECDHXOnly(output []byte, pubkey *PublicKey, seckey []byte) error {
	if len(output) != 32 {
		return fmt.Errorf("output length %d: %w", len(output), ErrMalformedInput)
	}
	if len(seckey) != 32 {
		return fmt.Errorf("seckey length %d: %w", len(seckey), ErrMalformedInput)
	}
	if pubkey == nil {
		return fmt.Errorf("nil pubkey: %w", ErrMalformedInput)
	}

	var pt GroupElementAffine
	pubkeyLoad(&pt, pubkey)
	if pt.isInfinity() {
		return fmt.Errorf("ecdh pubkey: %w", ErrPointAtInfinity)
	}

	var s Scalar
	if !s.setB32Seckey(seckey) {
		return ErrInvalidScalar
	}

	var res GroupElementJacobian
	EcmultPoint(&res, &s, &pt)

	var resAff GroupElementAffine
	resAff.setGEJ(&res)
	resAff.x.normalize()

	resAff.x.getB32(output)

	s.clear()
	resAff.clear()
	res.clear()

	return nil
}
