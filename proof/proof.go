// Package proof defines the portable wire form of a solvency proof: eight
// unsigned 256-bit integers (a, b, c) naming the three Groth16 curve points
// in EVM calldata order, one public signal carrying the threshold, and the
// 32-byte commitment binding them together for replay detection.
//
// The wire form is what institutions submit and what gateways persist.
// Conversion to the backend proof object, commitment derivation and
// pairing-based verification all live here; the constraint system itself is
// in the circuit package.
package proof

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-solvency/circuit"
)

// NbSignals is the length of the public signal vector, fixed by the
// circuit's public input count. The single signal is the threshold the
// prover claims to clear.
const NbSignals = circuit.NbPublicInputs

// Proof is the wire form of a Groth16 proof over BN254.
//
// A and C are G1 points as (x, y). B is a G2 point in EVM order: for each
// coordinate the imaginary limb precedes the real one, so
// B = [[x.a1, x.a0], [y.a1, y.a0]]. Reordering any element changes the
// commitment and the proof no longer verifies.
type Proof struct {
	A [2]*big.Int
	B [2][2]*big.Int
	C [2]*big.Int
}

// PublicSignals travels alongside a Proof; index 0 is the threshold.
type PublicSignals [NbSignals]*big.Int

// Threshold returns the claimed threshold signal.
func (s *PublicSignals) Threshold() *big.Int { return s[0] }

// elements yields the proof elements in canonical encoding order.
func (p *Proof) elements() []*big.Int {
	return []*big.Int{
		p.A[0], p.A[1],
		p.B[0][0], p.B[0][1], p.B[1][0], p.B[1][1],
		p.C[0], p.C[1],
	}
}

// Validate checks that every element of the proof is present and inside the
// unsigned 256-bit range of the wire contract. A nil proof fails the same
// way a nil element does.
func (p *Proof) Validate() error {
	if p == nil {
		return fmt.Errorf("proof: %w", ErrMissingElement)
	}
	for i, e := range p.elements() {
		if err := validateElement(e); err != nil {
			return fmt.Errorf("proof element %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks that every signal is present and inside the unsigned
// 256-bit range of the wire contract. A nil vector fails like a nil signal.
func (s *PublicSignals) Validate() error {
	if s == nil {
		return fmt.Errorf("public signals: %w", ErrMissingElement)
	}
	for i, e := range s {
		if err := validateElement(e); err != nil {
			return fmt.Errorf("public signal %d: %w", i, err)
		}
	}
	return nil
}

func validateElement(e *big.Int) error {
	if e == nil {
		return ErrMissingElement
	}
	if e.Sign() < 0 || e.BitLen() > 256 {
		return ErrElementRange
	}
	return nil
}

// proofJSON is the serialized proof envelope, shaped after the snarkjs
// output so existing tooling can inspect the files.
type proofJSON struct {
	PiA      [2]string    `json:"pi_a"`
	PiB      [2][2]string `json:"pi_b"`
	PiC      [2]string    `json:"pi_c"`
	Protocol string       `json:"protocol"`
	Curve    string       `json:"curve"`
}

// MarshalJSON implements json.Marshaler. Elements are decimal strings.
func (p *Proof) MarshalJSON() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	env := proofJSON{Protocol: "groth16", Curve: "bn254"}
	for i := 0; i < 2; i++ {
		env.PiA[i] = p.A[i].String()
		env.PiC[i] = p.C[i].String()
		for j := 0; j < 2; j++ {
			env.PiB[i][j] = p.B[i][j].String()
		}
	}
	return json.Marshal(env)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var env proofJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Protocol != "" && env.Protocol != "groth16" {
		return fmt.Errorf("%w: protocol %q", ErrUnsupportedEnvelope, env.Protocol)
	}
	if env.Curve != "" && env.Curve != "bn254" {
		return fmt.Errorf("%w: curve %q", ErrUnsupportedEnvelope, env.Curve)
	}
	var parsed Proof
	for i := 0; i < 2; i++ {
		var err error
		if parsed.A[i], err = parseElement(env.PiA[i]); err != nil {
			return fmt.Errorf("pi_a[%d]: %w", i, err)
		}
		if parsed.C[i], err = parseElement(env.PiC[i]); err != nil {
			return fmt.Errorf("pi_c[%d]: %w", i, err)
		}
		for j := 0; j < 2; j++ {
			if parsed.B[i][j], err = parseElement(env.PiB[i][j]); err != nil {
				return fmt.Errorf("pi_b[%d][%d]: %w", i, j, err)
			}
		}
	}
	*p = parsed
	return nil
}

// MarshalJSON implements json.Marshaler; the signal vector serializes as an
// array of decimal strings, like a snarkjs public input file.
func (s PublicSignals) MarshalJSON() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := make([]string, NbSignals)
	for i, e := range s {
		out[i] = e.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *PublicSignals) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != NbSignals {
		return fmt.Errorf("%w: got %d signals, want %d", ErrSignalCount, len(raw), NbSignals)
	}
	var parsed PublicSignals
	for i, r := range raw {
		var err error
		if parsed[i], err = parseElement(r); err != nil {
			return fmt.Errorf("signal %d: %w", i, err)
		}
	}
	*s = parsed
	return nil
}

func parseElement(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal integer", ErrMalformedElement, s)
	}
	if err := validateElement(v); err != nil {
		return nil, err
	}
	return v, nil
}
