package gateway

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/consensys/gnark-solvency/proof"
)

// signedMessagePrefix is the Ethereum personal-message domain separator for a
// 32-byte payload. Signing the prefixed digest instead of the raw commitment
// keeps commitment signatures from being replayed as transaction signatures.
const signedMessagePrefix = "\x19Ethereum Signed Message:\n32"

// SigningDigest returns the digest a signer authorizes to endorse a
// commitment: keccak256(prefix ‖ commitment).
func SigningDigest(c proof.Commitment) []byte {
	return crypto.Keccak256([]byte(signedMessagePrefix), c[:])
}

// SignCommitment endorses a commitment with prv. The result is the 65-byte
// [R ‖ S ‖ V] signature Submit expects.
func SignCommitment(c proof.Commitment, prv *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(SigningDigest(c), prv)
}

// RecoverSigner returns the address that endorsed the commitment. The
// signature must be 65 bytes with a canonical (low-S) S value; the recovery
// id may use either the raw {0,1} or the transaction-style {27,28} form.
func RecoverSigner(c proof.Commitment, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSignature, len(sig), crypto.SignatureLength)
	}
	sig = append([]byte(nil), sig...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	v := sig[crypto.RecoveryIDOffset]
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return common.Address{}, fmt.Errorf("%w: non-canonical signature values", ErrInvalidSignature)
	}

	pub, err := crypto.SigToPub(SigningDigest(c), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
