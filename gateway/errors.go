package gateway

import "errors"

var (
	// ErrPaused blocks every mutating call while the gateway is paused
	ErrPaused = errors.New("gateway is paused")

	// ErrProofAlreadyUsed rejects a commitment that was accepted before
	ErrProofAlreadyUsed = errors.New("proof commitment has already been used")

	// ErrInvalidSignature rejects malformed or non-canonical signatures
	ErrInvalidSignature = errors.New("signature is malformed or not recoverable")

	// ErrUnauthorizedSigner rejects signatures from addresses without the signer role
	ErrUnauthorizedSigner = errors.New("recovered signer does not hold the signer role")

	// ErrInvalidProof rejects proofs that fail the pairing check
	ErrInvalidProof = errors.New("proof does not verify")

	// ErrUnauthorizedAdmin rejects role mutations from non-admin callers
	ErrUnauthorizedAdmin = errors.New("caller does not hold the admin role")

	// ErrUnauthorizedPauser rejects pause toggles from non-pauser callers
	ErrUnauthorizedPauser = errors.New("caller does not hold the pauser role")

	// ErrAlreadyPaused rejects pausing a paused gateway
	ErrAlreadyPaused = errors.New("gateway is already paused")

	// ErrNotPaused rejects unpausing an active gateway
	ErrNotPaused = errors.New("gateway is not paused")

	// ErrUnknownRole rejects role masks outside the defined set
	ErrUnknownRole = errors.New("unknown role")

	// ErrOpenSubmissionDisabled rejects unauthenticated submissions unless the
	// gateway was built with WithOpenSubmission(true)
	ErrOpenSubmissionDisabled = errors.New("open submission is disabled")
)
