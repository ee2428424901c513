package taproot

import (
	"sync"
	"unsafe"
)

const (
	// Number of bytes in a 256-bit scalar
	numBytes = 32
	// Number of possible byte values
	numByteValues = 256
)

// bytePointTable stores precomputed points for each byte position:
// bytePoints[byteNum][byteVal] = byteVal * 2^(8*(31-byteNum)) * G
// where byteNum runs MSB to LSB. Entry 0 of each row stays all-zero,
// which reads back from storage as infinity.
type bytePointTable [numBytes][numByteValues]GroupElementStorage

// EcmultGenContext holds precomputed data for generator multiplication
type EcmultGenContext struct {
	bytePoints  bytePointTable
	initialized bool
}

var (
	// Global context for generator multiplication (initialized once)
	globalGenContext *EcmultGenContext
	genContextOnce   sync.Once
)

// initGenContext fills in the precomputed byte point table. The same
// byte-per-window decomposition btcec uses for its bytePoints table.
func (ctx *EcmultGenContext) initGenContext() {
	var gJac GroupElementJacobian
	gJac.setGE(&Generator)

	// byteBases[i] = 2^(8*(31-i)) * G
	var byteBases [numBytes]GroupElementJacobian
	byteBases[numBytes-1] = gJac
	for i := numBytes - 2; i >= 0; i-- {
		byteBases[i] = byteBases[i+1]
		for j := 0; j < 8; j++ {
			byteBases[i].double(&byteBases[i])
		}
	}

	// For each byte position, store byteVal * base for byteVal in [1, 255].
	// The multiples accumulate in Jacobian form and convert to affine with
	// one batched inversion per row.
	for byteNum := 0; byteNum < numBytes; byteNum++ {
		var baseAff GroupElementAffine
		baseAff.setGEJ(&byteBases[byteNum])

		var multiples [numByteValues - 1]GroupElementJacobian
		multiples[0].setGE(&baseAff)
		for byteVal := 2; byteVal < numByteValues; byteVal++ {
			multiples[byteVal-1].addGE(&multiples[byteVal-2], &baseAff)
		}

		var affine [numByteValues - 1]GroupElementAffine
		setAllGEJ(affine[:], multiples[:])
		for byteVal := 1; byteVal < numByteValues; byteVal++ {
			affine[byteVal-1].toStorage(&ctx.bytePoints[byteNum][byteVal])
		}
	}

	ctx.initialized = true
}

// getGlobalGenContext returns the global precomputed context
func getGlobalGenContext() *EcmultGenContext {
	genContextOnce.Do(func() {
		globalGenContext = &EcmultGenContext{}
		globalGenContext.initGenContext()
	})
	return globalGenContext
}

// NewEcmultGenContext creates a new generator multiplication context
func NewEcmultGenContext() *EcmultGenContext {
	ctx := &EcmultGenContext{}
	ctx.initGenContext()
	return ctx
}

// ecmultGen computes r = n * G where G is the generator point, one table
// lookup and addition per nonzero scalar byte.
func (ctx *EcmultGenContext) ecmultGen(r *GroupElementJacobian, n *Scalar) {
	if !ctx.initialized {
		panic("ecmult gen context not initialized")
	}

	if n.isZero() {
		r.setInfinity()
		return
	}

	if n.isOne() {
		r.setGE(&Generator)
		return
	}

	r.setInfinity()

	var scalarBytes [32]byte
	n.getB32(scalarBytes[:])

	for byteNum := 0; byteNum < numBytes; byteNum++ {
		byteVal := scalarBytes[byteNum]
		if byteVal == 0 {
			continue
		}

		var pt GroupElementAffine
		pt.fromStorage(&ctx.bytePoints[byteNum][byteVal])
		r.addGE(r, &pt)
	}

	// The scalar may be a signing nonce or secret key
	memclear(unsafe.Pointer(&scalarBytes[0]), 32)
}

// EcmultGen computes r = n*G using the global precomputed context
func EcmultGen(r *GroupElementJacobian, n *Scalar) {
	ctx := getGlobalGenContext()
	ctx.ecmultGen(r, n)
}
