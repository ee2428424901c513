package taproot

// Window configuration for general point multiplication
const (
	// Window size for per-point tables (4 bits = 16 entries per window)
	EcmultWindowSize = 4
	EcmultTableSize  = 1 << EcmultWindowSize // 16

	// Number of windows needed for 256-bit scalars
	EcmultWindows = 256 / EcmultWindowSize // 64
)

// ecmultBuildTable fills table with [1*P, 2*P, ..., 15*P] in affine form.
// The multiples are accumulated in Jacobian coordinates and converted with a
// single batched inversion.
func ecmultBuildTable(table *[EcmultTableSize - 1]GroupElementAffine, p *GroupElementAffine) {
	var jac [EcmultTableSize - 1]GroupElementJacobian
	jac[0].setGE(p)
	for i := 1; i < len(jac); i++ {
		jac[i].addGE(&jac[i-1], p)
	}
	setAllGEJ(table[:], jac[:])
}

// EcmultPoint computes r = k*P using fixed 4-bit windows over a per-point
// table. Variable time; only use with public inputs.
func EcmultPoint(r *GroupElementJacobian, k *Scalar, p *GroupElementAffine) {
	if k.isZero() || p.infinity {
		r.setInfinity()
		return
	}

	var table [EcmultTableSize - 1]GroupElementAffine
	ecmultBuildTable(&table, p)

	// Process the scalar in 4-bit windows from most significant to least
	// significant. Each window shifts the accumulator left by the window
	// size, then adds the table entry for the window value.
	r.setInfinity()
	for i := EcmultWindows - 1; i >= 0; i-- {
		if !r.infinity {
			for j := 0; j < EcmultWindowSize; j++ {
				r.double(r)
			}
		}

		bits := k.getBits(uint(i)*EcmultWindowSize, EcmultWindowSize)
		if bits != 0 {
			r.addGE(r, &table[bits-1])
		}
	}
}

// EcmultSimple computes r = k*P with a plain double-and-add ladder. Slower
// than EcmultPoint; kept as an independent reference for cross-checking.
func EcmultSimple(r *GroupElementJacobian, k *Scalar, p *GroupElementAffine) {
	if k.isZero() || p.infinity {
		r.setInfinity()
		return
	}

	r.setInfinity()

	for i := 255; i >= 0; i-- {
		r.double(r)

		if k.getBits(uint(i), 1) != 0 {
			r.addGE(r, p)
		}
	}
}

// Ecmult computes r = a*G + b*P, the combination Schnorr verification needs.
// Variable time; only use with public inputs.
func Ecmult(r *GroupElementJacobian, a *Scalar, b *Scalar, p *GroupElementAffine) {
	var aG, bP GroupElementJacobian

	if !a.isZero() {
		EcmultGen(&aG, a)
	} else {
		aG.setInfinity()
	}

	if !b.isZero() && !p.infinity {
		EcmultPoint(&bP, b, p)
	} else {
		bP.setInfinity()
	}

	r.addVar(&aG, &bP)
}
