package taproot

import (
	"fmt"
)

// BaseLeafVersion is the tapscript leaf version BIP-341 assigns to ordinary
// script leaves.
const BaseLeafVersion = 0xc0

// OutputKey is a taproot output key: the x coordinate of
// Q = lift_x(P) + t*G together with the parity of Q's Y coordinate. The
// x-only encoding (what a scriptPubKey carries) is parity-free; the parity
// bit is what a script-path control block would commit to.
type OutputKey struct {
	x      [32]byte
	parity int
}

// ParseOutputKey parses a 32-byte x-only output key encoding.
// The stored parity is that of the even-Y lift, which is all the x-only
// encoding can convey; a key built by Tweak carries the parity of the
// actual tweaked point instead.
func ParseOutputKey(input32 []byte) (*OutputKey, error) {
	xonly, err := XOnlyPubkeyParse(input32)
	if err != nil {
		return nil, fmt.Errorf("output key: %w", err)
	}

	key := &OutputKey{parity: 0}
	key.x = xonly.data
	return key, nil
}

// Serialize returns the 32-byte x-only encoding
func (key *OutputKey) Serialize() [32]byte {
	return key.x
}

// Parity returns 1 when the tweaked point has odd Y, 0 when even
func (key *OutputKey) Parity() int {
	return key.parity
}

// XOnly returns the output key as an x-only public key for verification
func (key *OutputKey) XOnly() *XOnlyPubkey {
	xonly := &XOnlyPubkey{}
	xonly.data = key.x
	return xonly
}

// tapTweakScalar computes t = int(TaggedHash("TapTweak", x || root)),
// where root is empty for a key-only commitment.
// Returns ErrInvalidTweak when t is zero or not below the group order.
func tapTweakScalar(internal *XOnlyPubkey, merkleRoot []byte) (*Scalar, error) {
	var tweakHash [32]byte
	switch len(merkleRoot) {
	case 0:
		// Key-only spend: commit to the internal key alone
		tweakHash = TaggedHash(TagTapTweak, internal.data[:])
	case 32:
		tweakHash = TaggedHash(TagTapTweak, internal.data[:], merkleRoot)
	default:
		return nil, fmt.Errorf("merkle root length %d: %w", len(merkleRoot), ErrMalformedInput)
	}

	var t Scalar
	if t.setB32(tweakHash[:]) {
		return nil, fmt.Errorf("tweak overflows group order: %w", ErrInvalidTweak)
	}
	if t.isZero() {
		return nil, fmt.Errorf("zero tweak: %w", ErrInvalidTweak)
	}

	return &t, nil
}

// Tweak commits an internal key to a script tree root (nil or empty for
// key-only spends), producing the output key Q = lift_x(P) + t*G and the
// tweak scalar t.
func Tweak(internal *XOnlyPubkey, merkleRoot []byte) (*OutputKey, *Scalar, error) {
	if internal == nil {
		return nil, nil, fmt.Errorf("nil internal key: %w", ErrMalformedInput)
	}

	t, err := tapTweakScalar(internal, merkleRoot)
	if err != nil {
		return nil, nil, err
	}

	var p GroupElementAffine
	if !internal.lift(&p) {
		return nil, nil, fmt.Errorf("internal key not on curve: %w", ErrMalformedInput)
	}

	// Q = P + t*G
	var tG GroupElementJacobian
	EcmultGen(&tG, t)

	var qj GroupElementJacobian
	qj.addGE(&tG, &p)

	if qj.isInfinity() {
		return nil, nil, fmt.Errorf("tweaked key: %w", ErrPointAtInfinity)
	}

	var q GroupElementAffine
	q.setGEJ(&qj)

	key := &OutputKey{}
	q.y.normalize()
	if q.y.isOdd() {
		key.parity = 1
	}
	q.x.normalize()
	q.x.getB32(key.x[:])

	return key, t, nil
}

// TweakedSeckey derives the secret key for the output key produced by
// Tweak: the internal scalar is negated first when its public point has odd
// Y, then the tweak is added mod n. The result's public point has the same
// x as the output key for both internal parities; its own Y parity is
// whatever Q has, which BIP-340 signing normalizes again.
func TweakedSeckey(internalSeckey *Scalar, tweak *Scalar) (*Scalar, error) {
	if internalSeckey == nil || tweak == nil {
		return nil, fmt.Errorf("nil argument: %w", ErrMalformedInput)
	}
	if internalSeckey.isZero() {
		return nil, ErrInvalidScalar
	}
	if tweak.isZero() {
		return nil, fmt.Errorf("zero tweak: %w", ErrInvalidTweak)
	}

	// Determine the parity of P = d*G
	var pj GroupElementJacobian
	EcmultGen(&pj, internalSeckey)

	var p GroupElementAffine
	p.setGEJ(&pj)
	if p.isInfinity() {
		return nil, ErrPointAtInfinity
	}

	d := *internalSeckey
	p.y.normalize()
	if p.y.isOdd() {
		d.negate(&d)
	}

	var tweaked Scalar
	tweaked.add(&d, tweak)
	d.clear()
	pj.clear()

	if tweaked.isZero() {
		return nil, fmt.Errorf("tweaked seckey is zero: %w", ErrInvalidTweak)
	}

	return &tweaked, nil
}

// TapLeafHash computes the BIP-341 leaf commitment:
// TaggedHash("TapLeaf", version || compact_size(len(script)) || script).
func TapLeafHash(leafVersion byte, script []byte) [32]byte {
	ser := make([]byte, 0, 1+9+len(script))
	ser = append(ser, leafVersion)
	ser = appendCompactSize(ser, uint64(len(script)))
	ser = append(ser, script...)

	return TaggedHash(TagTapLeaf, ser)
}

// TapBranchHash computes the BIP-341 branch commitment over two child
// hashes, ordering them lexicographically first.
func TapBranchHash(left, right [32]byte) [32]byte {
	for i := 0; i < 32; i++ {
		if left[i] == right[i] {
			continue
		}
		if left[i] > right[i] {
			left, right = right, left
		}
		break
	}

	return TaggedHash(TagTapBranch, left[:], right[:])
}
