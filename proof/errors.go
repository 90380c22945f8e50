package proof

import "errors"

var (
	// ErrMissingElement a proof element or public signal is nil
	ErrMissingElement = errors.New("missing proof element")

	// ErrMalformedElement an element could not be parsed as an integer
	ErrMalformedElement = errors.New("malformed proof element")

	// ErrElementRange an element falls outside the unsigned 256-bit wire range
	ErrElementRange = errors.New("proof element outside unsigned 256-bit range")

	// ErrSignalCount the public signal vector has the wrong length
	ErrSignalCount = errors.New("wrong number of public signals")

	// ErrSignalRange a public signal is not a canonical scalar field element
	ErrSignalRange = errors.New("public signal exceeds the scalar field modulus")

	// ErrCoordinateRange a point coordinate is not a canonical base field element
	ErrCoordinateRange = errors.New("point coordinate exceeds the base field modulus")

	// ErrNotOnCurve a decoded point does not satisfy the curve equation
	ErrNotOnCurve = errors.New("point is not on the curve")

	// ErrNotInSubGroup a decoded point is outside the prime-order subgroup
	ErrNotInSubGroup = errors.New("point is not in the prime-order subgroup")

	// ErrUnexpectedCommitments the backend proof carries Pedersen commitments,
	// which the eight-element wire form cannot represent
	ErrUnexpectedCommitments = errors.New("proof carries commitments absent from the wire form")

	// ErrUnsupportedEnvelope a serialized envelope names a foreign protocol or curve
	ErrUnsupportedEnvelope = errors.New("unsupported proof envelope")

	// ErrUnexpectedProofType the backend proof is not a BN254 Groth16 proof
	ErrUnexpectedProofType = errors.New("backend proof is not a bn254 groth16 proof")
)
