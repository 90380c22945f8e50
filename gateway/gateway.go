// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package gateway is the acceptance state machine for solvency proofs. A
// submission carries a wire proof, its public signals and a signature over
// the proof commitment; the gateway replays nothing and trusts nobody:
// every submission passes the pause guard, the replay check, signature
// recovery, a signer-role lookup and the pairing check, in that order,
// before any state is touched.
//
// All state lives in a ledger.Store and is mutated only through the
// ledger's single-writer loop, so checks and mutations of one submission
// never interleave with another. Accepted submissions update the signer's
// record last-write-wins; the full history survives in an append-only
// event journal.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/consensys/gnark-solvency/ledger"
	"github.com/consensys/gnark-solvency/logger"
	"github.com/consensys/gnark-solvency/proof"
)

// Gateway accepts endorsed solvency proofs against a fixed verifying key.
// All methods are safe for concurrent use.
type Gateway struct {
	led   *ledger.Ledger
	vk    groth16.VerifyingKey
	clock func() time.Time
	open  bool
	log   zerolog.Logger
	hub   eventHub

	mu           sync.Mutex
	authFailures map[common.Address]uint64
}

// Option configures a Gateway at construction time.
type Option func(*Gateway)

// WithOpenSubmission enables SubmitOpen, the unauthenticated submission
// variant. Off by default; demo deployments only.
func WithOpenSubmission(enabled bool) Option {
	return func(g *Gateway) { g.open = enabled }
}

// WithClock overrides the timestamp source for accepted submissions.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.clock = now }
}

// WithLogger overrides the gateway logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// New builds a gateway over led and vk. The first construction over a fresh
// store grants deployer every role; reconstructions over an existing store
// leave the role table as it was. A zero deployer attaches without
// initializing the role table, so read-only tooling cannot claim the
// genesis grant by accident.
func New(led *ledger.Ledger, vk groth16.VerifyingKey, deployer common.Address, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		led:          led,
		vk:           vk,
		clock:        time.Now,
		log:          logger.With("gateway"),
		authFailures: make(map[common.Address]uint64),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.hub.log = g.log

	if deployer == (common.Address{}) {
		return g, nil
	}
	err := led.Apply(context.Background(), "genesis", func(txn ledger.Txn) error {
		if _, err := txn.Get(keyGenesis); err == nil {
			return nil
		} else if !errors.Is(err, ledger.ErrKeyNotFound) {
			return err
		}
		if err := writeRoles(txn, deployer, allRoles); err != nil {
			return err
		}
		return txn.Set(keyGenesis, []byte{1})
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Submit runs the acceptance sequence for an endorsed proof. The checks run
// in a fixed order inside one ledger operation: pause guard, replay check,
// signature recovery, signer-role lookup, pairing check; the replay check
// comes before any signature or pairing work so a burned commitment costs
// nothing to reject. State is mutated only after every check passes, which
// is what makes acceptance at-most-once per commitment under concurrent
// submissions. The pairing check is a pure computation with no path back
// into the gateway.
//
// submitter is the transport-level identity delivering the proof; the
// signer is whoever endorsed the commitment. The two are recorded
// separately in the event.
func (g *Gateway) Submit(ctx context.Context, submitter common.Address, p *proof.Proof, signals *proof.PublicSignals, sig []byte) (*Event, error) {
	return g.runSubmission(ctx, "submit", submitter, p, signals, func(txn ledger.Txn, c proof.Commitment) (common.Address, error) {
		signer, err := RecoverSigner(c, sig)
		if err != nil {
			g.noteAuthFailure(submitter, err)
			return common.Address{}, err
		}
		roles, err := readRoles(txn, signer)
		if err != nil {
			return common.Address{}, err
		}
		if !roles.Has(RoleSigner) {
			g.noteAuthFailure(signer, ErrUnauthorizedSigner)
			return common.Address{}, fmt.Errorf("%w: %s", ErrUnauthorizedSigner, signer)
		}
		return signer, nil
	})
}

// SubmitOpen is the unauthenticated variant of Submit: it skips signature
// recovery and the signer-role lookup, treating caller as both signer and
// submitter. The rest of the pipeline (pause guard, replay check, pairing
// check, state mutation) is shared with Submit. Returns
// ErrOpenSubmissionDisabled unless the gateway was built with
// WithOpenSubmission(true).
func (g *Gateway) SubmitOpen(ctx context.Context, caller common.Address, p *proof.Proof, signals *proof.PublicSignals) (*Event, error) {
	if !g.open {
		return nil, ErrOpenSubmissionDisabled
	}
	return g.runSubmission(ctx, "submit-open", caller, p, signals, func(ledger.Txn, proof.Commitment) (common.Address, error) {
		return caller, nil
	})
}

func (g *Gateway) runSubmission(ctx context.Context, opName string, submitter common.Address, p *proof.Proof, signals *proof.PublicSignals, resolveSigner func(ledger.Txn, proof.Commitment) (common.Address, error)) (*Event, error) {
	var ev Event
	err := g.led.Apply(ctx, opName, func(txn ledger.Txn) error {
		if err := ensureActive(txn); err != nil {
			return err
		}
		commitment, err := proof.Commit(p, signals)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}
		used, err := isUsed(txn, commitment)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: %s", ErrProofAlreadyUsed, commitment)
		}
		signer, err := resolveSigner(txn, commitment)
		if err != nil {
			return err
		}
		if err := proof.Verify(p, g.vk, signals); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}
		ev, err = g.accept(txn, signer, submitter, commitment, signals)
		return err
	})
	if err != nil {
		return nil, err
	}
	g.hub.publish(ev)
	g.log.Info().
		Uint64("seq", ev.Seq).
		Stringer("signer", ev.Signer).
		Stringer("submitter", ev.Submitter).
		Stringer("commitment", ev.Commitment).
		Msg("verification accepted")
	return &ev, nil
}

// accept mutates state for a fully checked submission: burn the commitment,
// overwrite the signer's record, bump the counter, append the event.
func (g *Gateway) accept(txn ledger.Txn, signer, submitter common.Address, commitment proof.Commitment, signals *proof.PublicSignals) (Event, error) {
	now := g.clock().Unix()
	threshold := new(big.Int).Set(signals.Threshold())

	if err := txn.Set(usedKey(commitment), []byte{1}); err != nil {
		return Event{}, err
	}
	rec := Record{Commitment: commitment, Threshold: threshold, Verified: true, Timestamp: now}
	if err := writeRecord(txn, signer, rec); err != nil {
		return Event{}, err
	}

	total, err := readCounter(txn, keyTotal)
	if err != nil {
		return Event{}, err
	}
	if err := writeCounter(txn, keyTotal, total+1); err != nil {
		return Event{}, err
	}

	seq, err := readCounter(txn, keySeq)
	if err != nil {
		return Event{}, err
	}
	seq++
	if err := writeCounter(txn, keySeq, seq); err != nil {
		return Event{}, err
	}

	ev := Event{
		Seq:        seq,
		Signer:     signer,
		Submitter:  submitter,
		Commitment: commitment,
		Threshold:  threshold,
		Verified:   true,
		Timestamp:  now,
	}
	if err := appendEvent(txn, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Pause flips the gateway into the paused state. Pauser-gated; while paused
// every mutating call fails ErrPaused regardless of its own validity.
func (g *Gateway) Pause(ctx context.Context, caller common.Address) error {
	err := g.led.Apply(ctx, "pause", func(txn ledger.Txn) error {
		roles, err := readRoles(txn, caller)
		if err != nil {
			return err
		}
		if !roles.Has(RolePauser) {
			g.noteAuthFailure(caller, ErrUnauthorizedPauser)
			return fmt.Errorf("%w: %s", ErrUnauthorizedPauser, caller)
		}
		paused, err := isPaused(txn)
		if err != nil {
			return err
		}
		if paused {
			return ErrAlreadyPaused
		}
		return txn.Set(keyPaused, []byte{1})
	})
	if err != nil {
		return err
	}
	g.log.Warn().Stringer("pauser", caller).Msg("gateway paused")
	return nil
}

// Unpause returns a paused gateway to the active state. Pauser-gated.
func (g *Gateway) Unpause(ctx context.Context, caller common.Address) error {
	err := g.led.Apply(ctx, "unpause", func(txn ledger.Txn) error {
		roles, err := readRoles(txn, caller)
		if err != nil {
			return err
		}
		if !roles.Has(RolePauser) {
			g.noteAuthFailure(caller, ErrUnauthorizedPauser)
			return fmt.Errorf("%w: %s", ErrUnauthorizedPauser, caller)
		}
		paused, err := isPaused(txn)
		if err != nil {
			return err
		}
		if !paused {
			return ErrNotPaused
		}
		return txn.Delete(keyPaused)
	})
	if err != nil {
		return err
	}
	g.log.Warn().Stringer("pauser", caller).Msg("gateway unpaused")
	return nil
}

// GrantRole adds role bits to addr. Admin-gated; fails while paused.
func (g *Gateway) GrantRole(ctx context.Context, caller, addr common.Address, role Role) error {
	if err := validRole(role); err != nil {
		return err
	}
	err := g.led.Apply(ctx, "grant-role", func(txn ledger.Txn) error {
		if err := ensureActive(txn); err != nil {
			return err
		}
		if err := g.requireAdmin(txn, caller); err != nil {
			return err
		}
		held, err := readRoles(txn, addr)
		if err != nil {
			return err
		}
		return writeRoles(txn, addr, held|role)
	})
	if err != nil {
		return err
	}
	g.log.Info().Stringer("admin", caller).Stringer("address", addr).Stringer("role", role).Msg("role granted")
	return nil
}

// RevokeRole removes role bits from addr. Admin-gated; fails while paused.
// Revoking bits the address does not hold is not an error.
func (g *Gateway) RevokeRole(ctx context.Context, caller, addr common.Address, role Role) error {
	if err := validRole(role); err != nil {
		return err
	}
	err := g.led.Apply(ctx, "revoke-role", func(txn ledger.Txn) error {
		if err := ensureActive(txn); err != nil {
			return err
		}
		if err := g.requireAdmin(txn, caller); err != nil {
			return err
		}
		held, err := readRoles(txn, addr)
		if err != nil {
			return err
		}
		return writeRoles(txn, addr, held&^role)
	})
	if err != nil {
		return err
	}
	g.log.Info().Stringer("admin", caller).Stringer("address", addr).Stringer("role", role).Msg("role revoked")
	return nil
}

func (g *Gateway) requireAdmin(txn ledger.Txn, caller common.Address) error {
	roles, err := readRoles(txn, caller)
	if err != nil {
		return err
	}
	if !roles.Has(RoleAdmin) {
		g.noteAuthFailure(caller, ErrUnauthorizedAdmin)
		return fmt.Errorf("%w: %s", ErrUnauthorizedAdmin, caller)
	}
	return nil
}

// IsVerified reports whether signer holds a verified record.
func (g *Gateway) IsVerified(signer common.Address) (bool, error) {
	rec, ok, err := g.Verification(signer)
	if err != nil {
		return false, err
	}
	return ok && rec.Verified, nil
}

// Verification returns the signer's latest record. ok is false when the
// signer never had a submission accepted.
func (g *Gateway) Verification(signer common.Address) (rec Record, ok bool, err error) {
	err = g.led.View(func(txn ledger.Txn) error {
		rec, ok, err = readRecord(txn, signer)
		return err
	})
	if err != nil {
		return Record{}, false, err
	}
	return rec, ok, nil
}

// TotalVerifications returns the number of accepted submissions.
func (g *Gateway) TotalVerifications() (uint64, error) {
	var total uint64
	err := g.led.View(func(txn ledger.Txn) error {
		var err error
		total, err = readCounter(txn, keyTotal)
		return err
	})
	return total, err
}

// Paused reports whether the gateway is paused.
func (g *Gateway) Paused() (bool, error) {
	var paused bool
	err := g.led.View(func(txn ledger.Txn) error {
		var err error
		paused, err = isPaused(txn)
		return err
	})
	return paused, err
}

// HasRole reports whether addr holds every bit of role.
func (g *Gateway) HasRole(addr common.Address, role Role) (bool, error) {
	roles, err := g.Roles(addr)
	if err != nil {
		return false, err
	}
	return roles.Has(role), nil
}

// Roles returns the role mask held by addr.
func (g *Gateway) Roles(addr common.Address) (Role, error) {
	var roles Role
	err := g.led.View(func(txn ledger.Txn) error {
		var err error
		roles, err = readRoles(txn, addr)
		return err
	})
	return roles, err
}

// Events replays the journal from fromSeq (inclusive; sequences start at 1).
func (g *Gateway) Events(fromSeq uint64) ([]Event, error) {
	var events []Event
	err := g.led.View(func(txn ledger.Txn) error {
		var err error
		events, err = readJournal(txn, fromSeq)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// SubscribeEvents registers ch to receive accepted events as they commit.
// Delivery is best-effort: a full channel misses events and catches up
// through Events.
func (g *Gateway) SubscribeEvents(ch chan<- Event) {
	g.hub.subscribe(ch)
}

// UnsubscribeEvents removes a channel registered with SubscribeEvents.
func (g *Gateway) UnsubscribeEvents(ch chan<- Event) {
	g.hub.unsubscribe(ch)
}

// noteAuthFailure counts authorization failures per address; repeated
// failures for one address are a security signal worth alerting on.
func (g *Gateway) noteAuthFailure(addr common.Address, cause error) {
	g.mu.Lock()
	g.authFailures[addr]++
	n := g.authFailures[addr]
	g.mu.Unlock()
	g.log.Warn().Stringer("address", addr).Uint64("failures", n).Err(cause).Msg("authorization failure")
}
