package taproot

import "errors"

// Sentinel errors for the engine. Callers match these with errors.Is; call
// sites wrap them with fmt.Errorf("...: %w", ...) for context. Signature
// verification never returns an error for a cryptographic mismatch, only
// false.
var (
	// ErrInvalidScalar reports a secret key or nonce outside [1, n-1].
	ErrInvalidScalar = errors.New("scalar out of range")

	// ErrPointAtInfinity reports a group operation that landed on the
	// identity where a real point is required.
	ErrPointAtInfinity = errors.New("point at infinity")

	// ErrInvalidTweak reports a taproot tweak that is zero or not a valid
	// scalar, or a tweaked key that degenerated.
	ErrInvalidTweak = errors.New("invalid taproot tweak")

	// ErrIndexOutOfRange reports a signature-hash request for an input
	// index the transaction does not have.
	ErrIndexOutOfRange = errors.New("input index out of range")

	// ErrUnsupportedSighashType reports a hash type outside the key-path
	// set (SIGHASH_DEFAULT, SIGHASH_ALL).
	ErrUnsupportedSighashType = errors.New("unsupported sighash type")

	// ErrMalformedInput reports byte input that does not decode: wrong
	// length, bad prefix, x not on the curve, missing prevout data.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidAuxRand reports auxiliary randomness that is neither nil
	// nor exactly 32 bytes.
	ErrInvalidAuxRand = errors.New("auxiliary randomness must be 32 bytes")
)
