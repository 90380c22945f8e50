package gateway

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"

	"github.com/consensys/gnark-solvency/ledger"
	"github.com/consensys/gnark-solvency/proof"
)

// Record is the latest accepted verification for a signer. A signer who
// submits again overwrites their record; history survives in the journal.
type Record struct {
	Commitment proof.Commitment `cbor:"commitment" json:"commitment"`
	Threshold  *big.Int         `cbor:"threshold" json:"threshold"`
	Verified   bool             `cbor:"verified" json:"verified"`
	Timestamp  int64            `cbor:"timestamp" json:"timestamp"`
}

var (
	keyPaused  = []byte("meta/paused")
	keyTotal   = []byte("meta/total")
	keySeq     = []byte("meta/seq")
	keyGenesis = []byte("meta/genesis")
)

func usedKey(c proof.Commitment) []byte {
	return append([]byte("used/"), c[:]...)
}

func recordKey(addr common.Address) []byte {
	return append([]byte("record/"), addr[:]...)
}

func isPaused(txn ledger.Txn) (bool, error) {
	_, err := txn.Get(keyPaused)
	if errors.Is(err, ledger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func ensureActive(txn ledger.Txn) error {
	paused, err := isPaused(txn)
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}

func isUsed(txn ledger.Txn, c proof.Commitment) (bool, error) {
	_, err := txn.Get(usedKey(c))
	if errors.Is(err, ledger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func readCounter(txn ledger.Txn, key []byte) (uint64, error) {
	raw, err := txn.Get(key)
	if errors.Is(err, ledger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, errors.New("corrupt counter entry")
	}
	return binary.BigEndian.Uint64(raw), nil
}

func writeCounter(txn ledger.Txn, key []byte, v uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return txn.Set(key, buf)
}

func readRecord(txn ledger.Txn, addr common.Address) (Record, bool, error) {
	raw, err := txn.Get(recordKey(addr))
	if errors.Is(err, ledger.ErrKeyNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	var rec Record
	if err := cbor.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func writeRecord(txn ledger.Txn, addr common.Address, rec Record) error {
	raw, err := cbor.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(recordKey(addr), raw)
}
