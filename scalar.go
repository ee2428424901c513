package taproot

import (
	"crypto/subtle"
	"fmt"
	"math/bits"
	"unsafe"
)

// Scalar represents a scalar modulo the group order of the secp256k1 curve
// This implementation uses 4 uint64 limbs, ported from scalar_4x64.h
type Scalar struct {
	d [4]uint64
}

// Group order constants (secp256k1 curve order n)
const (
	// Limbs of the secp256k1 order
	scalarN0 = 0xBFD25E8CD0364141
	scalarN1 = 0xBAAEDCE6AF48A03B
	scalarN2 = 0xFFFFFFFFFFFFFFFE
	scalarN3 = 0xFFFFFFFFFFFFFFFF

	// Limbs of 2^256 minus the secp256k1 order
	// These are precomputed values to avoid overflow issues
	scalarNC0 = 0x402DA1732FC9BEBF // ~scalarN0 + 1
	scalarNC1 = 0x4551231950B75FC4 // ~scalarN1
	scalarNC2 = 0x0000000000000001 // 1

	// Limbs of half the secp256k1 order
	scalarNH0 = 0xDFE92F46681B20A0
	scalarNH1 = 0x5D576E7357A4501D
	scalarNH2 = 0xFFFFFFFFFFFFFFFF
	scalarNH3 = 0x7FFFFFFFFFFFFFFF
)

// Scalar constants
var (
	// ScalarZero represents the scalar 0
	ScalarZero = Scalar{d: [4]uint64{0, 0, 0, 0}}

	// ScalarOne represents the scalar 1
	ScalarOne = Scalar{d: [4]uint64{1, 0, 0, 0}}
)

// NewScalar creates a new scalar from a 32-byte big-endian array
func NewScalar(b32 []byte) *Scalar {
	if len(b32) != 32 {
		panic("input must be 32 bytes")
	}

	s := &Scalar{}
	s.setB32(b32)
	return s
}

// ParseScalar parses a 32-byte big-endian secret scalar. The value must be in
// [1, n-1] where n is the group order; zero and out-of-range encodings are
// rejected.
func ParseScalar(b []byte) (*Scalar, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("scalar must be 32 bytes, got %d: %w", len(b), ErrMalformedInput)
	}

	s := &Scalar{}
	if !s.setB32Seckey(b) {
		s.clear()
		return nil, fmt.Errorf("scalar not in [1, n-1]: %w", ErrInvalidScalar)
	}

	return s, nil
}

// Serialize returns the scalar as a 32-byte big-endian array.
func (r *Scalar) Serialize() [32]byte {
	var out [32]byte
	r.getB32(out[:])
	return out
}

// Clear wipes the scalar value from memory.
func (r *Scalar) Clear() {
	r.clear()
}

// setB32 sets a scalar from a 32-byte big-endian array, reducing modulo group order
func (r *Scalar) setB32(bin []byte) (overflow bool) {
	// Convert from big-endian bytes to limbs
	r.d[0] = readBE64(bin[24:32])
	r.d[1] = readBE64(bin[16:24])
	r.d[2] = readBE64(bin[8:16])
	r.d[3] = readBE64(bin[0:8])

	// Check for overflow and reduce if necessary
	overflow = r.checkOverflow()
	if overflow {
		r.reduce(1)
	}

	return overflow
}

// setB32Seckey sets a scalar from a 32-byte array and returns true if it's a valid secret key
func (r *Scalar) setB32Seckey(bin []byte) bool {
	overflow := r.setB32(bin)
	return !overflow && !r.isZero()
}

// getB32 converts a scalar to a 32-byte big-endian array
func (r *Scalar) getB32(bin []byte) {
	if len(bin) != 32 {
		panic("output buffer must be 32 bytes")
	}

	writeBE64(bin[0:8], r.d[3])
	writeBE64(bin[8:16], r.d[2])
	writeBE64(bin[16:24], r.d[1])
	writeBE64(bin[24:32], r.d[0])
}

// setInt sets a scalar to an unsigned integer value
func (r *Scalar) setInt(v uint) {
	r.d[0] = uint64(v)
	r.d[1] = 0
	r.d[2] = 0
	r.d[3] = 0
}

// checkOverflow checks if the scalar is >= the group order
func (r *Scalar) checkOverflow() bool {
	// Simple comparison with group order
	if r.d[3] > scalarN3 {
		return true
	}
	if r.d[3] < scalarN3 {
		return false
	}

	if r.d[2] > scalarN2 {
		return true
	}
	if r.d[2] < scalarN2 {
		return false
	}

	if r.d[1] > scalarN1 {
		return true
	}
	if r.d[1] < scalarN1 {
		return false
	}

	return r.d[0] >= scalarN0
}

// reduce reduces the scalar modulo the group order
func (r *Scalar) reduce(overflow int) {
	if overflow < 0 || overflow > 1 {
		panic("overflow must be 0 or 1")
	}

	// Subtract overflow * n from the scalar
	var borrow uint64

	// d[0] -= overflow * scalarN0
	r.d[0], borrow = bits.Sub64(r.d[0], uint64(overflow)*scalarN0, 0)

	// d[1] -= overflow * scalarN1 + borrow
	r.d[1], borrow = bits.Sub64(r.d[1], uint64(overflow)*scalarN1, borrow)

	// d[2] -= overflow * scalarN2 + borrow
	r.d[2], borrow = bits.Sub64(r.d[2], uint64(overflow)*scalarN2, borrow)

	// d[3] -= overflow * scalarN3 + borrow
	r.d[3], _ = bits.Sub64(r.d[3], uint64(overflow)*scalarN3, borrow)
}

// add adds two scalars: r = a + b, returns overflow
func (r *Scalar) add(a, b *Scalar) bool {
	var carry uint64

	r.d[0], carry = bits.Add64(a.d[0], b.d[0], 0)
	r.d[1], carry = bits.Add64(a.d[1], b.d[1], carry)
	r.d[2], carry = bits.Add64(a.d[2], b.d[2], carry)
	r.d[3], carry = bits.Add64(a.d[3], b.d[3], carry)

	overflow := carry != 0 || r.checkOverflow()
	if overflow {
		r.reduce(1)
	}

	return overflow
}

// sub subtracts two scalars: r = a - b
func (r *Scalar) sub(a, b *Scalar) {
	// Compute a - b = a + (-b)
	var negB Scalar
	negB.negate(b)
	*r = *a
	r.add(r, &negB)
}

// mul multiplies two scalars: r = a * b
func (r *Scalar) mul(a, b *Scalar) {
	// Compute full 512-bit product using all 16 cross products
	var c [8]uint64

	// Compute all cross products a[i] * b[j]
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			hi, lo := bits.Mul64(a.d[i], b.d[j])
			k := i + j

			// Add lo to c[k]
			var carry uint64
			c[k], carry = bits.Add64(c[k], lo, 0)

			// Add hi to c[k+1] and propagate carry
			if k+1 < 8 {
				c[k+1], carry = bits.Add64(c[k+1], hi, carry)

				// Propagate any remaining carry
				for l := k + 2; l < 8 && carry != 0; l++ {
					c[l], carry = bits.Add64(c[l], 0, carry)
				}
			}
		}
	}

	// Reduce the 512-bit result modulo the group order
	r.reduceWide(c)
}

// scalarAcc is a 192-bit accumulator (c0 + c1*2^64 + c2*2^128) used by the
// wide reduction, mirroring the c0/c1/c2 triple in scalar_4x64_impl.h
type scalarAcc struct {
	c0, c1, c2 uint64
}

// muladd adds the 128-bit product a*b into the accumulator
func (c *scalarAcc) muladd(a, b uint64) {
	hi, lo := bits.Mul64(a, b)
	var carry uint64
	c.c0, carry = bits.Add64(c.c0, lo, 0)
	c.c1, carry = bits.Add64(c.c1, hi, carry)
	c.c2 += carry
}

// muladdFast adds a*b into the accumulator when the carry cannot reach c2
func (c *scalarAcc) muladdFast(a, b uint64) {
	hi, lo := bits.Mul64(a, b)
	var carry uint64
	c.c0, carry = bits.Add64(c.c0, lo, 0)
	c.c1, _ = bits.Add64(c.c1, hi, carry)
}

// sumadd adds a single uint64 into the accumulator
func (c *scalarAcc) sumadd(a uint64) {
	var carry uint64
	c.c0, carry = bits.Add64(c.c0, a, 0)
	c.c1, carry = bits.Add64(c.c1, 0, carry)
	c.c2 += carry
}

// sumaddFast adds a single uint64 when the carry cannot reach c2
func (c *scalarAcc) sumaddFast(a uint64) {
	var carry uint64
	c.c0, carry = bits.Add64(c.c0, a, 0)
	c.c1, _ = bits.Add64(c.c1, 0, carry)
}

// extract returns the low 64 bits and shifts the accumulator down one limb
func (c *scalarAcc) extract() uint64 {
	n := c.c0
	c.c0 = c.c1
	c.c1 = c.c2
	c.c2 = 0
	return n
}

// extractFast is extract for positions where c2 is known to be zero
func (c *scalarAcc) extractFast() uint64 {
	n := c.c0
	c.c0 = c.c1
	c.c1 = 0
	return n
}

// reduceWide reduces a 512-bit value (l[0] least significant) modulo the
// group order. This follows secp256k1_scalar_reduce_512: fold the high 256
// bits via 2^256 = NC (mod n) twice, then a final conditional subtraction.
func (r *Scalar) reduceWide(l [8]uint64) {
	n0, n1, n2, n3 := l[4], l[5], l[6], l[7]

	// Reduce 512 bits into 385.
	// m[0..6] = l[0..3] + n[0..3] * NC.
	var acc scalarAcc
	acc.c0 = l[0]
	acc.muladdFast(n0, scalarNC0)
	m0 := acc.extractFast()
	acc.sumaddFast(l[1])
	acc.muladd(n1, scalarNC0)
	acc.muladd(n0, scalarNC1)
	m1 := acc.extract()
	acc.sumadd(l[2])
	acc.muladd(n2, scalarNC0)
	acc.muladd(n1, scalarNC1)
	acc.sumadd(n0)
	m2 := acc.extract()
	acc.sumadd(l[3])
	acc.muladd(n3, scalarNC0)
	acc.muladd(n2, scalarNC1)
	acc.sumadd(n1)
	m3 := acc.extract()
	acc.muladd(n3, scalarNC1)
	acc.sumadd(n2)
	m4 := acc.extract()
	acc.sumaddFast(n3)
	m5 := acc.extractFast()
	m6 := acc.c0

	// Reduce 385 bits into 258.
	// p[0..4] = m[0..3] + m[4..6] * NC.
	acc = scalarAcc{c0: m0}
	acc.muladdFast(m4, scalarNC0)
	p0 := acc.extractFast()
	acc.sumaddFast(m1)
	acc.muladd(m5, scalarNC0)
	acc.muladd(m4, scalarNC1)
	p1 := acc.extract()
	acc.sumadd(m2)
	acc.muladd(m6, scalarNC0)
	acc.muladd(m5, scalarNC1)
	acc.sumadd(m4)
	p2 := acc.extract()
	acc.sumaddFast(m3)
	acc.muladdFast(m6, scalarNC1)
	acc.sumaddFast(m5)
	p3 := acc.extractFast()
	p4 := acc.c0 + m6

	// Reduce 258 bits into 256.
	// r[0..3] = p[0..3] + p4 * NC.
	c := mulU64ToU128(scalarNC0, p4)
	c = addU128(c, p0)
	r.d[0] = c.lo()
	c = c.rshift(64)
	c = addMulU128(c, scalarNC1, p4)
	c = addU128(c, p1)
	r.d[1] = c.lo()
	c = c.rshift(64)
	c = addU128(c, p2)
	c = addU128(c, p4)
	r.d[2] = c.lo()
	c = c.rshift(64)
	c = addU128(c, p3)
	r.d[3] = c.lo()
	c = c.rshift(64)

	// Final reduction. The carry here is 0 or 1, and when it is 1 the limbs
	// hold a value far below n, so a single order subtraction (which wraps
	// mod 2^256) finishes the job.
	r.reduce(int(c.lo()) + boolToInt(r.checkOverflow()))
}

// negate negates a scalar: r = -a
func (r *Scalar) negate(a *Scalar) {
	// r = n - a where n is the group order
	var borrow uint64

	r.d[0], borrow = bits.Sub64(scalarN0, a.d[0], 0)
	r.d[1], borrow = bits.Sub64(scalarN1, a.d[1], borrow)
	r.d[2], borrow = bits.Sub64(scalarN2, a.d[2], borrow)
	r.d[3], _ = bits.Sub64(scalarN3, a.d[3], borrow)
}

// inverse computes the modular inverse of a scalar
func (r *Scalar) inverse(a *Scalar) {
	// Use Fermat's little theorem: a^(-1) = a^(n-2) mod n
	// where n is the group order (which is prime)

	// The group order minus 2:
	// n-2 = FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD036413F
	var exp Scalar

	var borrow uint64
	exp.d[0], borrow = bits.Sub64(scalarN0, 2, 0)
	exp.d[1], borrow = bits.Sub64(scalarN1, 0, borrow)
	exp.d[2], borrow = bits.Sub64(scalarN2, 0, borrow)
	exp.d[3], _ = bits.Sub64(scalarN3, 0, borrow)

	r.exp(a, &exp)
}

// exp computes r = a^b mod n using binary exponentiation
func (r *Scalar) exp(a, b *Scalar) {
	*r = ScalarOne
	base := *a

	for i := 0; i < 4; i++ {
		limb := b.d[i]
		for j := 0; j < 64; j++ {
			if limb&1 != 0 {
				r.mul(r, &base)
			}
			base.mul(&base, &base)
			limb >>= 1
		}
	}
}

// half computes r = a/2 mod n
func (r *Scalar) half(a *Scalar) {
	*r = *a

	if r.d[0]&1 == 0 {
		// Even case: simple right shift
		r.d[0] = (r.d[0] >> 1) | ((r.d[1] & 1) << 63)
		r.d[1] = (r.d[1] >> 1) | ((r.d[2] & 1) << 63)
		r.d[2] = (r.d[2] >> 1) | ((r.d[3] & 1) << 63)
		r.d[3] = r.d[3] >> 1
	} else {
		// Odd case: add n then divide by 2
		var carry uint64
		r.d[0], carry = bits.Add64(r.d[0], scalarN0, 0)
		r.d[1], carry = bits.Add64(r.d[1], scalarN1, carry)
		r.d[2], carry = bits.Add64(r.d[2], scalarN2, carry)
		r.d[3], _ = bits.Add64(r.d[3], scalarN3, carry)

		// Now divide by 2
		r.d[0] = (r.d[0] >> 1) | ((r.d[1] & 1) << 63)
		r.d[1] = (r.d[1] >> 1) | ((r.d[2] & 1) << 63)
		r.d[2] = (r.d[2] >> 1) | ((r.d[3] & 1) << 63)
		r.d[3] = r.d[3] >> 1
	}
}

// isZero returns true if the scalar is zero
func (r *Scalar) isZero() bool {
	return r.d[0] == 0 && r.d[1] == 0 && r.d[2] == 0 && r.d[3] == 0
}

// isOne returns true if the scalar is one
func (r *Scalar) isOne() bool {
	return r.d[0] == 1 && r.d[1] == 0 && r.d[2] == 0 && r.d[3] == 0
}

// isEven returns true if the scalar is even
func (r *Scalar) isEven() bool {
	return r.d[0]&1 == 0
}

// isHigh returns true if the scalar is > n/2
func (r *Scalar) isHigh() bool {
	// Compare with n/2
	if r.d[3] != scalarNH3 {
		return r.d[3] > scalarNH3
	}
	if r.d[2] != scalarNH2 {
		return r.d[2] > scalarNH2
	}
	if r.d[1] != scalarNH1 {
		return r.d[1] > scalarNH1
	}
	return r.d[0] > scalarNH0
}

// condNegate conditionally negates a scalar if flag is true
func (r *Scalar) condNegate(flag bool) bool {
	if flag {
		var neg Scalar
		neg.negate(r)
		*r = neg
		return true
	}
	return false
}

// equal returns true if two scalars are equal
func (r *Scalar) equal(a *Scalar) bool {
	return subtle.ConstantTimeCompare(
		(*[32]byte)(unsafe.Pointer(&r.d[0]))[:32],
		(*[32]byte)(unsafe.Pointer(&a.d[0]))[:32],
	) == 1
}

// getBits extracts count bits starting at offset
func (r *Scalar) getBits(offset, count uint) uint32 {
	if count == 0 || count > 32 || offset+count > 256 {
		panic("invalid bit range")
	}

	limbIdx := offset / 64
	bitIdx := offset % 64

	if bitIdx+count <= 64 {
		// Bits are within a single limb
		return uint32((r.d[limbIdx] >> bitIdx) & ((1 << count) - 1))
	} else {
		// Bits span two limbs
		lowBits := 64 - bitIdx
		highBits := count - lowBits

		low := uint32((r.d[limbIdx] >> bitIdx) & ((1 << lowBits) - 1))
		high := uint32(r.d[limbIdx+1] & ((1 << highBits) - 1))

		return low | (high << lowBits)
	}
}

// cmov conditionally moves a scalar. If flag is true, r = a; otherwise r is unchanged.
func (r *Scalar) cmov(a *Scalar, flag int) {
	mask := uint64(-flag)
	r.d[0] ^= mask & (r.d[0] ^ a.d[0])
	r.d[1] ^= mask & (r.d[1] ^ a.d[1])
	r.d[2] ^= mask & (r.d[2] ^ a.d[2])
	r.d[3] ^= mask & (r.d[3] ^ a.d[3])
}

// clear clears a scalar to prevent leaking sensitive information
func (r *Scalar) clear() {
	memclear(unsafe.Pointer(&r.d[0]), unsafe.Sizeof(r.d))
}
