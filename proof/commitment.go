package proof

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Commitment is the 32-byte replay key binding a proof to its public
// signals. Two submissions collide on the commitment exactly when every
// wire element is byte-identical.
type Commitment [32]byte

const encodedLen = (8 + NbSignals) * 32

// Encode packs proof and signals into the canonical preimage of the
// commitment: each element as a 32-byte big-endian word, a then b then c
// then the signal vector. The layout is a consensus constant; changing it
// severs every previously recorded commitment.
func Encode(p *Proof, signals *PublicSignals) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := signals.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, encodedLen)
	var word [32]byte
	for _, e := range p.elements() {
		e.FillBytes(word[:])
		out = append(out, word[:]...)
	}
	for _, e := range signals {
		e.FillBytes(word[:])
		out = append(out, word[:]...)
	}
	return out, nil
}

// Commit derives the replay commitment, keccak256 over Encode.
func Commit(p *Proof, signals *PublicSignals) (Commitment, error) {
	var c Commitment
	enc, err := Encode(p, signals)
	if err != nil {
		return c, err
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(enc)
	copy(c[:], h.Sum(nil))
	return c, nil
}

// Bytes returns the commitment as a slice.
func (c Commitment) Bytes() []byte { return c[:] }

// Hex returns the 0x-prefixed hexadecimal form.
func (c Commitment) Hex() string { return "0x" + hex.EncodeToString(c[:]) }

func (c Commitment) String() string { return c.Hex() }

// MarshalText implements encoding.TextMarshaler; commitments serialize as
// 0x-prefixed hex in JSON envelopes and logs.
func (c Commitment) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Commitment) UnmarshalText(text []byte) error {
	s := string(text)
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedElement, err)
	}
	if len(raw) != len(c) {
		return fmt.Errorf("%w: commitment must be %d bytes, got %d", ErrMalformedElement, len(c), len(raw))
	}
	copy(c[:], raw)
	return nil
}
