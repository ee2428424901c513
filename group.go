package taproot

// GroupElementAffine represents a point on the secp256k1 curve in affine coordinates (x, y)
type GroupElementAffine struct {
	x, y     FieldElement
	infinity bool
}

// GroupElementJacobian represents a point on the secp256k1 curve in Jacobian coordinates (x, y, z)
// where the affine coordinates are (x/z^2, y/z^3)
type GroupElementJacobian struct {
	x, y, z  FieldElement
	infinity bool
}

// GroupElementStorage represents a point in storage format (raw affine coordinates)
type GroupElementStorage struct {
	x [32]byte
	y [32]byte
}

// Generator point G for secp256k1
var (
	GeneratorX FieldElement
	GeneratorY FieldElement
	Generator  GroupElementAffine
)

func init() {
	// Generator X coordinate: 0x79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798
	gxBytes := []byte{
		0x79, 0xBE, 0x66, 0x7E, 0xF9, 0xDC, 0xBB, 0xAC, 0x55, 0xA0, 0x62, 0x95, 0xCE, 0x87, 0x0B, 0x07,
		0x02, 0x9B, 0xFC, 0xDB, 0x2D, 0xCE, 0x28, 0xD9, 0x59, 0xF2, 0x81, 0x5B, 0x16, 0xF8, 0x17, 0x98,
	}

	// Generator Y coordinate: 0x483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8
	gyBytes := []byte{
		0x48, 0x3A, 0xDA, 0x77, 0x26, 0xA3, 0xC4, 0x65, 0x5D, 0xA4, 0xFB, 0xFC, 0x0E, 0x11, 0x08, 0xA8,
		0xFD, 0x17, 0xB4, 0x48, 0xA6, 0x85, 0x54, 0x19, 0x9C, 0x47, 0xD0, 0x8F, 0xFB, 0x10, 0xD4, 0xB8,
	}

	GeneratorX.setB32(gxBytes)
	GeneratorY.setB32(gyBytes)

	Generator = GroupElementAffine{
		x:        GeneratorX,
		y:        GeneratorY,
		infinity: false,
	}
}

// NewGroupElementAffine creates a new affine group element set to infinity
func NewGroupElementAffine() *GroupElementAffine {
	return &GroupElementAffine{
		x:        FieldElementZero,
		y:        FieldElementZero,
		infinity: true,
	}
}

// NewGroupElementJacobian creates a new Jacobian group element set to infinity
func NewGroupElementJacobian() *GroupElementJacobian {
	return &GroupElementJacobian{
		x:        FieldElementZero,
		y:        FieldElementZero,
		z:        FieldElementZero,
		infinity: true,
	}
}

// setXY sets a group element to the point with given coordinates
func (r *GroupElementAffine) setXY(x, y *FieldElement) {
	r.x = *x
	r.y = *y
	r.infinity = false
}

// setXOVar sets a group element to the point with given X coordinate and Y oddness.
// Returns false if no point on the curve has this X coordinate.
func (r *GroupElementAffine) setXOVar(x *FieldElement, odd bool) bool {
	// y^2 = x^3 + 7
	var x2, x3, y2 FieldElement
	x2.sqr(x)
	x3.mul(&x2, x)

	var seven FieldElement
	seven.setInt(7)
	y2 = x3
	y2.add(&seven)

	var y FieldElement
	if !y.sqrt(&y2) {
		return false // x is not on the curve
	}

	y.normalize()
	if y.isOdd() != odd {
		y.negate(&y, 1)
		y.normalize()
	}

	r.setXY(x, &y)
	return true
}

// isInfinity returns true if the group element is the point at infinity
func (r *GroupElementAffine) isInfinity() bool {
	return r.infinity
}

// isValid checks that the group element satisfies the curve equation y^2 = x^3 + 7
func (r *GroupElementAffine) isValid() bool {
	if r.infinity {
		return true
	}

	var lhs, rhs, x2, x3 FieldElement

	var xNorm, yNorm FieldElement
	xNorm = r.x
	yNorm = r.y
	xNorm.normalize()
	yNorm.normalize()

	lhs.sqr(&yNorm)

	x2.sqr(&xNorm)
	x3.mul(&x2, &xNorm)
	rhs = x3
	var seven FieldElement
	seven.setInt(7)
	rhs.add(&seven)

	lhs.normalize()
	rhs.normalize()

	return lhs.equal(&rhs)
}

// negate sets r to the negation of a (mirror around X axis)
func (r *GroupElementAffine) negate(a *GroupElementAffine) {
	if a.infinity {
		r.setInfinity()
		return
	}

	r.x = a.x
	r.y.negate(&a.y, a.y.magnitude)
	r.infinity = false
}

// setInfinity sets the group element to the point at infinity
func (r *GroupElementAffine) setInfinity() {
	r.x = FieldElementZero
	r.y = FieldElementZero
	r.infinity = true
}

// equal returns true if two group elements are equal
func (r *GroupElementAffine) equal(a *GroupElementAffine) bool {
	if r.infinity && a.infinity {
		return true
	}
	if r.infinity || a.infinity {
		return false
	}

	var rNorm, aNorm GroupElementAffine
	rNorm = *r
	aNorm = *a
	rNorm.x.normalize()
	rNorm.y.normalize()
	aNorm.x.normalize()
	aNorm.y.normalize()

	return rNorm.x.equal(&aNorm.x) && rNorm.y.equal(&aNorm.y)
}

// Jacobian coordinate operations

// setInfinity sets the Jacobian group element to the point at infinity
func (r *GroupElementJacobian) setInfinity() {
	r.x = FieldElementZero
	r.y = FieldElementOne
	r.z = FieldElementZero
	r.infinity = true
}

// isInfinity returns true if the Jacobian group element is the point at infinity
func (r *GroupElementJacobian) isInfinity() bool {
	return r.infinity
}

// setGE sets a Jacobian element from an affine element
func (r *GroupElementJacobian) setGE(a *GroupElementAffine) {
	if a.infinity {
		r.setInfinity()
		return
	}

	r.x = a.x
	r.y = a.y
	r.z = FieldElementOne
	r.infinity = false
}

// setGEJ sets an affine element from a Jacobian element.
// This follows the C secp256k1_ge_set_gej_var implementation.
func (r *GroupElementAffine) setGEJ(a *GroupElementJacobian) {
	if a.infinity {
		r.setInfinity()
		return
	}

	var zi, zi2, zi3 FieldElement
	zi.inv(&a.z)
	zi2.sqr(&zi)
	zi3.mul(&zi, &zi2)

	r.x.mul(&a.x, &zi2)
	r.y.mul(&a.y, &zi3)
	r.infinity = false
}

// setAllGEJ converts a batch of Jacobian elements to affine with a single
// field inversion, following the C secp256k1_ge_set_all_gej_var implementation.
// Infinity entries map to affine infinity; len(r) must equal len(a).
func setAllGEJ(r []GroupElementAffine, a []GroupElementJacobian) {
	if len(r) != len(a) {
		panic("setAllGEJ: length mismatch")
	}
	if len(a) == 0 {
		return
	}

	// Substitute 1 for the z coordinate of infinity entries so the batch
	// product stays invertible.
	zs := make([]FieldElement, len(a))
	for i := range a {
		if a[i].infinity {
			zs[i].setInt(1)
			continue
		}
		zs[i] = a[i].z
	}

	zi := make([]FieldElement, len(a))
	batchInverse(zi, zs)

	for i := range a {
		if a[i].infinity {
			r[i].setInfinity()
			continue
		}
		var zi2, zi3 FieldElement
		zi2.sqr(&zi[i])
		zi3.mul(&zi2, &zi[i])
		r[i].x.mul(&a[i].x, &zi2)
		r[i].y.mul(&a[i].y, &zi3)
		r[i].infinity = false
	}
}

// negate sets r to the negation of a Jacobian point
func (r *GroupElementJacobian) negate(a *GroupElementJacobian) {
	if a.infinity {
		r.setInfinity()
		return
	}

	r.x = a.x
	r.y.negate(&a.y, a.y.magnitude)
	r.z = a.z
	r.infinity = false
}

// double sets r = 2*a (point doubling in Jacobian coordinates).
// This follows the C secp256k1_gej_double implementation; the magnitude of
// each intermediate is noted in parentheses.
func (r *GroupElementJacobian) double(a *GroupElementJacobian) {
	var l, s, t FieldElement

	r.infinity = a.infinity

	// Z3 = Y1*Z1 (1)
	r.z.mul(&a.z, &a.y)

	// S = Y1^2 (1)
	s.sqr(&a.y)

	// L = X1^2 (1)
	l.sqr(&a.x)

	// L = 3*X1^2 (3)
	l.mulInt(3)

	// L = 3/2*X1^2 (2)
	l.half(&l)

	// T = -S (2)
	t.negate(&s, 1)

	// T = -X1*Y1^2 (1)
	t.mul(&t, &a.x)

	// X3 = L^2 (1)
	r.x.sqr(&l)

	// X3 = L^2 + T (2)
	r.x.add(&t)

	// X3 = L^2 + 2*T (3)
	r.x.add(&t)

	// S = Y1^4 (1)
	s.sqr(&s)

	// T = X3 + T (4)
	t.add(&r.x)

	// Y3 = L*(X3 + T) (1)
	r.y.mul(&t, &l)

	// Y3 = L*(X3 + T) + S^2 (2)
	r.y.add(&s)

	// Y3 = -(L*(X3 + T) + S^2) (3)
	r.y.negate(&r.y, 2)
}

// addVar sets r = a + b (variable-time point addition in Jacobian coordinates).
// This follows the C secp256k1_gej_add_var implementation: 12 mul, 4 sqr.
func (r *GroupElementJacobian) addVar(a, b *GroupElementJacobian) {
	if a.infinity {
		*r = *b
		return
	}
	if b.infinity {
		*r = *a
		return
	}

	var z22, z12, u1, u2, s1, s2, h, i, h2, h3, t FieldElement

	// z22 = b->z^2
	z22.sqr(&b.z)

	// z12 = a->z^2
	z12.sqr(&a.z)

	// u1 = a->x * z22
	u1.mul(&a.x, &z22)

	// u2 = b->x * z12
	u2.mul(&b.x, &z12)

	// s1 = a->y * z22 * b->z
	s1.mul(&a.y, &z22)
	s1.mul(&s1, &b.z)

	// s2 = b->y * z12 * a->z
	s2.mul(&b.y, &z12)
	s2.mul(&s2, &a.z)

	// h = u2 - u1
	h.negate(&u1, 1)
	h.add(&u2)

	// i = s1 - s2
	i.negate(&s2, 1)
	i.add(&s1)

	if h.normalizesToZeroVar() {
		if i.normalizesToZeroVar() {
			// Same point: double
			r.double(a)
			return
		}
		// Opposite points: infinity
		r.setInfinity()
		return
	}

	r.infinity = false

	// t = h * b->z
	t.mul(&h, &b.z)

	// r->z = a->z * t
	r.z.mul(&a.z, &t)

	// h2 = -h^2
	h2.sqr(&h)
	h2.negate(&h2, 1)

	// h3 = -h^3
	h3.mul(&h2, &h)

	// t = u1 * -h^2
	t.mul(&u1, &h2)

	// r->x = i^2 - h^3 - 2*u1*h^2
	r.x.sqr(&i)
	r.x.add(&h3)
	r.x.add(&t)
	r.x.add(&t)

	// t = u1*-h^2 + r->x
	t.add(&r.x)

	// r->y = t * i
	r.y.mul(&t, &i)

	// h3 = -h^3 * s1
	h3.mul(&h3, &s1)

	// r->y = i*(u1*h^2 - r->x) - s1*h^3
	r.y.add(&h3)
}

// addGE sets r = a + b where a is Jacobian and b is affine.
// This follows the C secp256k1_gej_add_ge_var implementation: 8 mul, 3 sqr.
func (r *GroupElementJacobian) addGE(a *GroupElementJacobian, b *GroupElementAffine) {
	if a.infinity {
		r.setGE(b)
		return
	}
	if b.infinity {
		*r = *a
		return
	}

	var z12, u1, u2, s1, s2, h, i, h2, h3, t FieldElement

	// z12 = a->z^2
	z12.sqr(&a.z)

	// u1 = a->x
	u1 = a.x

	// u2 = b->x * z12
	u2.mul(&b.x, &z12)

	// s1 = a->y
	s1 = a.y

	// s2 = b->y * z12 * a->z
	s2.mul(&b.y, &z12)
	s2.mul(&s2, &a.z)

	// h = u2 - u1
	h.negate(&u1, a.x.magnitude)
	h.add(&u2)

	// i = s1 - s2
	i.negate(&s2, 1)
	i.add(&s1)

	if h.normalizesToZeroVar() {
		if i.normalizesToZeroVar() {
			r.double(a)
			return
		}
		r.setInfinity()
		return
	}

	r.infinity = false

	// r->z = a->z * h
	r.z.mul(&a.z, &h)

	// h2 = -h^2
	h2.sqr(&h)
	h2.negate(&h2, 1)

	// h3 = -h^3
	h3.mul(&h2, &h)

	// t = u1 * -h^2
	t.mul(&u1, &h2)

	// r->x = i^2 - h^3 - 2*u1*h^2
	r.x.sqr(&i)
	r.x.add(&h3)
	r.x.add(&t)
	r.x.add(&t)

	// t = u1*-h^2 + r->x
	t.add(&r.x)

	// r->y = t * i
	r.y.mul(&t, &i)

	// h3 = -h^3 * s1
	h3.mul(&h3, &s1)

	// r->y = i*(u1*h^2 - r->x) - s1*h^3
	r.y.add(&h3)
}

// clear clears a group element to prevent leaking sensitive information
func (r *GroupElementAffine) clear() {
	r.x.clear()
	r.y.clear()
	r.infinity = true
}

// clear clears a Jacobian group element
func (r *GroupElementJacobian) clear() {
	r.x.clear()
	r.y.clear()
	r.z.clear()
	r.infinity = true
}

// toStorage converts a group element to storage format.
// Infinity is stored as all zeros.
func (r *GroupElementAffine) toStorage(s *GroupElementStorage) {
	if r.infinity {
		for i := range s.x {
			s.x[i] = 0
			s.y[i] = 0
		}
		return
	}

	if !r.x.normalized {
		r.x.normalize()
	}
	if !r.y.normalized {
		r.y.normalize()
	}

	r.x.getB32(s.x[:])
	r.y.getB32(s.y[:])
}

// fromStorage converts from storage format to group element
func (r *GroupElementAffine) fromStorage(s *GroupElementStorage) {
	allZero := true
	for i := range s.x {
		if s.x[i] != 0 || s.y[i] != 0 {
			allZero = false
			break
		}
	}

	if allZero {
		r.setInfinity()
		return
	}

	r.x.setB32(s.x[:])
	r.y.setB32(s.y[:])
	r.infinity = false
}

// toBytes serializes a group element as raw x||y coordinates (64 bytes).
// Infinity is represented as all zeros.
func (r *GroupElementAffine) toBytes(buf []byte) {
	if len(buf) < 64 {
		panic("buffer too small for group element")
	}

	if r.infinity {
		for i := range buf[:64] {
			buf[i] = 0
		}
		return
	}

	if !r.x.normalized {
		r.x.normalize()
	}
	if !r.y.normalized {
		r.y.normalize()
	}

	r.x.getB32(buf[:32])
	r.y.getB32(buf[32:64])
}

// fromBytes deserializes a group element from raw x||y coordinates (64 bytes)
func (r *GroupElementAffine) fromBytes(buf []byte) {
	if len(buf) < 64 {
		panic("buffer too small for group element")
	}

	allZero := true
	for i := 0; i < 64; i++ {
		if buf[i] != 0 {
			allZero = false
			break
		}
	}

	if allZero {
		r.setInfinity()
		return
	}

	r.x.setB32(buf[:32])
	r.y.setB32(buf[32:64])
	r.infinity = false
}
