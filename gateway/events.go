package gateway

import (
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"

	"github.com/consensys/gnark-solvency/ledger"
	"github.com/consensys/gnark-solvency/proof"
)

// Event records one accepted submission. Events are appended to a persistent
// journal in acceptance order; Seq is the 1-based journal position.
type Event struct {
	Seq        uint64           `cbor:"seq" json:"seq"`
	Signer     common.Address   `cbor:"signer" json:"signer"`
	Submitter  common.Address   `cbor:"submitter" json:"submitter"`
	Commitment proof.Commitment `cbor:"commitment" json:"commitment"`
	Threshold  *big.Int         `cbor:"threshold" json:"threshold"`
	Verified   bool             `cbor:"verified" json:"verified"`
	Timestamp  int64            `cbor:"timestamp" json:"timestamp"`
}

var prefixJournal = []byte("journal/")

func journalKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(append([]byte(nil), prefixJournal...), seq)
}

func appendEvent(txn ledger.Txn, ev *Event) error {
	raw, err := cbor.Marshal(ev)
	if err != nil {
		return err
	}
	return txn.Set(journalKey(ev.Seq), raw)
}

func readJournal(txn ledger.Txn, fromSeq uint64) ([]Event, error) {
	var events []Event
	err := txn.Iterate(prefixJournal, func(key, value []byte) error {
		var ev Event
		if err := cbor.Unmarshal(value, &ev); err != nil {
			return err
		}
		if ev.Seq >= fromSeq {
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// eventHub fans accepted events out to live subscribers. Publishing never
// blocks the submission path: a subscriber whose channel is full misses the
// event and has to catch up through the journal.
type eventHub struct {
	mu   sync.Mutex
	subs []chan<- Event
	log  zerolog.Logger
}

func (h *eventHub) subscribe(ch chan<- Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, ch)
}

func (h *eventHub) unsubscribe(ch chan<- Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, sub := range h.subs {
		if sub == ch {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

func (h *eventHub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		select {
		case sub <- ev:
		default:
			h.log.Warn().Uint64("seq", ev.Seq).Msg("subscriber full, dropping event")
		}
	}
}
