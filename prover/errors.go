package prover

import "errors"

var (
	// ErrMalformedInput a statement field is not numeric or does not fit in 64 bits
	ErrMalformedInput = errors.New("malformed statement input")

	// ErrInsufficientCapital liabilities exceed assets, or capital does not
	// strictly exceed the threshold; no proof exists for such a statement
	ErrInsufficientCapital = errors.New("insufficient capital for the claimed threshold")

	// ErrProverFault internal failure while constructing the proof
	ErrProverFault = errors.New("proof construction failed")
)
