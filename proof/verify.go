package proof

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"

	"github.com/consensys/gnark-solvency/circuit"
)

// Verify runs the pairing check on a wire-form proof against vk. It returns
// nil only when the proof decodes onto the curve, the signal vector is
// canonical, and the pairing equation holds.
func Verify(p *Proof, vk groth16.VerifyingKey, signals *PublicSignals) error {
	gp, err := p.Groth16()
	if err != nil {
		return err
	}
	w, err := PublicWitness(signals)
	if err != nil {
		return err
	}
	return groth16.Verify(gp, vk, w)
}

// PublicWitness builds the gnark public witness for the signal vector.
// Signals at or above the scalar field modulus are rejected rather than
// silently reduced: a reduced signal would verify against a different
// threshold than the one recorded.
func PublicWitness(signals *PublicSignals) (witness.Witness, error) {
	if err := signals.Validate(); err != nil {
		return nil, err
	}
	if signals.Threshold().Cmp(fr.Modulus()) >= 0 {
		return nil, fmt.Errorf("threshold: %w", ErrSignalRange)
	}
	assignment := &circuit.Circuit{Threshold: signals.Threshold()}
	return frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
}
