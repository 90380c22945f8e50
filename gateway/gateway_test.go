package gateway

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/gnark-solvency/circuit"
	"github.com/consensys/gnark-solvency/ledger"
	"github.com/consensys/gnark-solvency/proof"
	"github.com/consensys/gnark-solvency/prover"
)

var (
	artifactsOnce sync.Once
	artifactsErr  error
	testCCS       constraint.ConstraintSystem
	testPK        groth16.ProvingKey
	testVK        groth16.VerifyingKey
)

// testArtifacts compiles the circuit and runs the setup once for the whole
// package.
func testArtifacts(t *testing.T) (constraint.ConstraintSystem, groth16.ProvingKey, groth16.VerifyingKey) {
	t.Helper()
	artifactsOnce.Do(func() {
		testCCS, artifactsErr = frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit.Circuit{})
		if artifactsErr != nil {
			return
		}
		testPK, testVK, artifactsErr = groth16.Setup(testCCS)
	})
	require.NoError(t, artifactsErr)
	return testCCS, testPK, testVK
}

// attest proves a statement with the shared artifacts. Groth16 proving is
// randomized, so calling this twice with the same statement yields distinct
// proofs and therefore distinct commitments.
func attest(t *testing.T, assets, liabilities, threshold uint64) *prover.Attestation {
	t.Helper()
	ccs, pk, _ := testArtifacts(t)
	att, err := prover.New(ccs, pk).Attest(prover.Statement{
		Assets:      assets,
		Liabilities: liabilities,
		Threshold:   threshold,
	})
	require.NoError(t, err)
	return att
}

type testEnv struct {
	g        *Gateway
	led      *ledger.Ledger
	deployer *ecdsa.PrivateKey
	addr     common.Address
}

func newTestGateway(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	_, _, vk := testArtifacts(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	led := ledger.New(ledger.NewMemStore())
	t.Cleanup(func() { _ = led.Close() })
	g, err := New(led, vk, crypto.PubkeyToAddress(key.PublicKey), opts...)
	require.NoError(t, err)
	return &testEnv{g: g, led: led, deployer: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
}

func freshKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

var bigIntComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

func TestSubmitLifecycle(t *testing.T) {
	now := time.Unix(1700000100, 0)
	env := newTestGateway(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	att := attest(t, 1000000, 400000, 500000)
	sig, err := SignCommitment(att.Commitment, env.deployer)
	require.NoError(t, err)

	ev, err := env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, sig)
	require.NoError(t, err)
	require.True(t, ev.Verified)
	require.Equal(t, uint64(1), ev.Seq)
	require.Equal(t, env.addr, ev.Signer)
	require.Equal(t, env.addr, ev.Submitter)
	require.Equal(t, att.Commitment, ev.Commitment)
	require.Equal(t, now.Unix(), ev.Timestamp)

	ok, err := env.g.IsVerified(env.addr)
	require.NoError(t, err)
	require.True(t, ok)

	rec, found, err := env.g.Verification(env.addr)
	require.NoError(t, err)
	require.True(t, found)
	want := Record{
		Commitment: att.Commitment,
		Threshold:  big.NewInt(500000),
		Verified:   true,
		Timestamp:  now.Unix(),
	}
	if diff := cmp.Diff(want, rec, bigIntComparer); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	total, err := env.g.TotalVerifications()
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)

	// an address that never submitted has no record
	_, stranger := freshKey(t)
	ok, err = env.g.IsVerified(stranger)
	require.NoError(t, err)
	require.False(t, ok)
	_, found, err = env.g.Verification(stranger)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSubmitReplay(t *testing.T) {
	env := newTestGateway(t)
	ctx := context.Background()

	att := attest(t, 1000000, 400000, 500000)
	sig, err := SignCommitment(att.Commitment, env.deployer)
	require.NoError(t, err)

	_, err = env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, sig)
	require.NoError(t, err)

	_, err = env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, sig)
	require.ErrorIs(t, err, ErrProofAlreadyUsed)

	// replay is keyed on the commitment, not the signature: a different
	// authorized signer endorsing the same proof is still a replay
	otherKey, otherAddr := freshKey(t)
	require.NoError(t, env.g.GrantRole(ctx, env.addr, otherAddr, RoleSigner))
	otherSig, err := SignCommitment(att.Commitment, otherKey)
	require.NoError(t, err)
	_, err = env.g.Submit(ctx, otherAddr, att.Proof, &att.Signals, otherSig)
	require.ErrorIs(t, err, ErrProofAlreadyUsed)

	total, err := env.g.TotalVerifications()
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
}

func TestSubmitAuthorizationIndependence(t *testing.T) {
	env := newTestGateway(t)
	ctx := context.Background()

	att := attest(t, 1000000, 400000, 500000)

	// byte-identical proof, endorsed by an address without the signer role
	outsiderKey, outsiderAddr := freshKey(t)
	outsiderSig, err := SignCommitment(att.Commitment, outsiderKey)
	require.NoError(t, err)
	_, err = env.g.Submit(ctx, outsiderAddr, att.Proof, &att.Signals, outsiderSig)
	require.ErrorIs(t, err, ErrUnauthorizedSigner)

	total, err := env.g.TotalVerifications()
	require.NoError(t, err)
	require.Equal(t, uint64(0), total)

	// same proof, authorized endorsement: accepted
	sig, err := SignCommitment(att.Commitment, env.deployer)
	require.NoError(t, err)
	ev, err := env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, sig)
	require.NoError(t, err)
	require.Equal(t, env.addr, ev.Signer)
}

func TestSubmitRejectsBadSignatures(t *testing.T) {
	env := newTestGateway(t)
	ctx := context.Background()

	att := attest(t, 1000000, 400000, 500000)

	_, err := env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, []byte("short"))
	require.ErrorIs(t, err, ErrInvalidSignature)

	garbage := make([]byte, crypto.SignatureLength)
	for i := range garbage {
		garbage[i] = 0xFF
	}
	_, err = env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, garbage)
	require.ErrorIs(t, err, ErrInvalidSignature)

	// repeated failures for one submitter are counted
	env.g.mu.Lock()
	failures := env.g.authFailures[env.addr]
	env.g.mu.Unlock()
	require.Equal(t, uint64(2), failures)

	total, err := env.g.TotalVerifications()
	require.NoError(t, err)
	require.Equal(t, uint64(0), total)
}

func TestSubmitRejectsBadProofs(t *testing.T) {
	env := newTestGateway(t)
	ctx := context.Background()

	att := attest(t, 1000000, 400000, 500000)

	// no proof or no signal vector fails cleanly, like any other malformed
	// submission; the ledger worker stays up
	sig, err := SignCommitment(att.Commitment, env.deployer)
	require.NoError(t, err)
	_, err = env.g.Submit(ctx, env.addr, nil, &att.Signals, sig)
	require.ErrorIs(t, err, ErrInvalidProof)
	_, err = env.g.Submit(ctx, env.addr, att.Proof, nil, sig)
	require.ErrorIs(t, err, ErrInvalidProof)

	// a nudged coordinate no longer names a curve point
	tampered := *att.Proof
	tampered.A = [2]*big.Int{
		new(big.Int).Add(att.Proof.A[0], big.NewInt(1)),
		new(big.Int).Set(att.Proof.A[1]),
	}
	c, err := proof.Commit(&tampered, &att.Signals)
	require.NoError(t, err)
	sig, err = SignCommitment(c, env.deployer)
	require.NoError(t, err)
	_, err = env.g.Submit(ctx, env.addr, &tampered, &att.Signals, sig)
	require.ErrorIs(t, err, ErrInvalidProof)

	// a valid proof presented with the wrong public signal fails the
	// pairing check
	wrongSignals := proof.PublicSignals{big.NewInt(400000)}
	c, err = proof.Commit(att.Proof, &wrongSignals)
	require.NoError(t, err)
	sig, err = SignCommitment(c, env.deployer)
	require.NoError(t, err)
	_, err = env.g.Submit(ctx, env.addr, att.Proof, &wrongSignals, sig)
	require.ErrorIs(t, err, ErrInvalidProof)

	// nothing was burned: the honest submission still goes through
	sig, err = SignCommitment(att.Commitment, env.deployer)
	require.NoError(t, err)
	_, err = env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, sig)
	require.NoError(t, err)

	total, err := env.g.TotalVerifications()
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
}

func TestPauseDominance(t *testing.T) {
	env := newTestGateway(t)
	ctx := context.Background()

	_, outsider := freshKey(t)
	require.ErrorIs(t, env.g.Pause(ctx, outsider), ErrUnauthorizedPauser)

	require.NoError(t, env.g.Pause(ctx, env.addr))
	paused, err := env.g.Paused()
	require.NoError(t, err)
	require.True(t, paused)
	require.ErrorIs(t, env.g.Pause(ctx, env.addr), ErrAlreadyPaused)

	// valid and invalid submissions fail the same way while paused
	att := attest(t, 1000000, 400000, 500000)
	sig, err := SignCommitment(att.Commitment, env.deployer)
	require.NoError(t, err)
	_, err = env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, sig)
	require.ErrorIs(t, err, ErrPaused)
	_, err = env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, []byte("junk"))
	require.ErrorIs(t, err, ErrPaused)

	// role mutations are blocked too
	_, candidate := freshKey(t)
	require.ErrorIs(t, env.g.GrantRole(ctx, env.addr, candidate, RoleSigner), ErrPaused)
	require.ErrorIs(t, env.g.RevokeRole(ctx, env.addr, env.addr, RoleSigner), ErrPaused)

	// reads keep working
	total, err := env.g.TotalVerifications()
	require.NoError(t, err)
	require.Equal(t, uint64(0), total)

	require.ErrorIs(t, env.g.Unpause(ctx, outsider), ErrUnauthorizedPauser)
	require.NoError(t, env.g.Unpause(ctx, env.addr))
	require.ErrorIs(t, env.g.Unpause(ctx, env.addr), ErrNotPaused)

	// prior behavior resumes exactly: the very same submission succeeds
	_, err = env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, sig)
	require.NoError(t, err)
}

func TestRoleLifecycle(t *testing.T) {
	env := newTestGateway(t)
	ctx := context.Background()

	signerKey, signerAddr := freshKey(t)
	_, outsider := freshKey(t)

	require.ErrorIs(t, env.g.GrantRole(ctx, outsider, signerAddr, RoleSigner), ErrUnauthorizedAdmin)
	require.ErrorIs(t, env.g.GrantRole(ctx, env.addr, signerAddr, Role(0)), ErrUnknownRole)
	require.ErrorIs(t, env.g.GrantRole(ctx, env.addr, signerAddr, Role(0x40)), ErrUnknownRole)

	require.NoError(t, env.g.GrantRole(ctx, env.addr, signerAddr, RoleSigner))
	has, err := env.g.HasRole(signerAddr, RoleSigner)
	require.NoError(t, err)
	require.True(t, has)
	roles, err := env.g.Roles(signerAddr)
	require.NoError(t, err)
	require.Equal(t, RoleSigner, roles)
	require.Equal(t, "signer", roles.String())

	att := attest(t, 1000000, 400000, 500000)
	sig, err := SignCommitment(att.Commitment, signerKey)
	require.NoError(t, err)
	ev, err := env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, sig)
	require.NoError(t, err)
	require.Equal(t, signerAddr, ev.Signer)
	require.Equal(t, env.addr, ev.Submitter)

	require.NoError(t, env.g.RevokeRole(ctx, env.addr, signerAddr, RoleSigner))
	roles, err = env.g.Roles(signerAddr)
	require.NoError(t, err)
	require.Equal(t, Role(0), roles)

	fresh := attest(t, 1000000, 400000, 500000)
	sig, err = SignCommitment(fresh.Commitment, signerKey)
	require.NoError(t, err)
	_, err = env.g.Submit(ctx, env.addr, fresh.Proof, &fresh.Signals, sig)
	require.ErrorIs(t, err, ErrUnauthorizedSigner)

	// revocation does not erase the accepted record
	ok, err := env.g.IsVerified(signerAddr)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConcurrentSubmissionsAcceptOnce(t *testing.T) {
	env := newTestGateway(t)
	ctx := context.Background()

	att := attest(t, 1000000, 400000, 500000)
	sig, err := SignCommitment(att.Commitment, env.deployer)
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, errs[i] = env.g.Submit(ctx, env.addr, att.Proof, &att.Signals, sig)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			require.ErrorIs(t, err, ErrProofAlreadyUsed)
		}
	}
	require.Equal(t, 1, accepted)

	total, err := env.g.TotalVerifications()
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
}

func TestOpenSubmission(t *testing.T) {
	ctx := context.Background()
	att := attest(t, 1000000, 400000, 500000)
	_, caller := freshKey(t)

	// off by default
	env := newTestGateway(t)
	_, err := env.g.SubmitOpen(ctx, caller, att.Proof, &att.Signals)
	require.ErrorIs(t, err, ErrOpenSubmissionDisabled)

	// enabled: the caller needs no role, and is both signer and submitter
	open := newTestGateway(t, WithOpenSubmission(true))
	ev, err := open.g.SubmitOpen(ctx, caller, att.Proof, &att.Signals)
	require.NoError(t, err)
	require.Equal(t, caller, ev.Signer)
	require.Equal(t, caller, ev.Submitter)
	ok, err := open.g.IsVerified(caller)
	require.NoError(t, err)
	require.True(t, ok)

	// replay protection applies unchanged
	_, err = open.g.SubmitOpen(ctx, caller, att.Proof, &att.Signals)
	require.ErrorIs(t, err, ErrProofAlreadyUsed)

	// a missing proof is rejected outright
	_, err = open.g.SubmitOpen(ctx, caller, nil, &att.Signals)
	require.ErrorIs(t, err, ErrInvalidProof)

	// as does the pause switch
	require.NoError(t, open.g.Pause(ctx, open.addr))
	fresh := attest(t, 1000000, 400000, 500000)
	_, err = open.g.SubmitOpen(ctx, caller, fresh.Proof, &fresh.Signals)
	require.ErrorIs(t, err, ErrPaused)
}

func TestEventsJournalAndSubscription(t *testing.T) {
	env := newTestGateway(t)
	ctx := context.Background()

	ch := make(chan Event, 4)
	env.g.SubscribeEvents(ch)

	att1 := attest(t, 1000000, 400000, 500000)
	sig1, err := SignCommitment(att1.Commitment, env.deployer)
	require.NoError(t, err)
	ev1, err := env.g.Submit(ctx, env.addr, att1.Proof, &att1.Signals, sig1)
	require.NoError(t, err)

	att2 := attest(t, 2000000, 400000, 900000)
	sig2, err := SignCommitment(att2.Commitment, env.deployer)
	require.NoError(t, err)
	ev2, err := env.g.Submit(ctx, env.addr, att2.Proof, &att2.Signals, sig2)
	require.NoError(t, err)

	require.Equal(t, uint64(1), ev1.Seq)
	require.Equal(t, uint64(2), ev2.Seq)

	// the journal replays exactly what was emitted
	events, err := env.g.Events(1)
	require.NoError(t, err)
	if diff := cmp.Diff([]Event{*ev1, *ev2}, events, bigIntComparer); diff != "" {
		t.Fatalf("journal mismatch (-want +got):\n%s", diff)
	}

	tail, err := env.g.Events(2)
	require.NoError(t, err)
	if diff := cmp.Diff([]Event{*ev2}, tail, bigIntComparer); diff != "" {
		t.Fatalf("journal tail mismatch (-want +got):\n%s", diff)
	}

	// live subscribers saw both, in order
	require.Len(t, ch, 2)
	got1, got2 := <-ch, <-ch
	if diff := cmp.Diff(*ev1, got1, bigIntComparer); diff != "" {
		t.Fatalf("first event mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(*ev2, got2, bigIntComparer); diff != "" {
		t.Fatalf("second event mismatch (-want +got):\n%s", diff)
	}

	// after unsubscribe nothing more is delivered
	env.g.UnsubscribeEvents(ch)
	att3 := attest(t, 3000000, 400000, 900000)
	sig3, err := SignCommitment(att3.Commitment, env.deployer)
	require.NoError(t, err)
	_, err = env.g.Submit(ctx, env.addr, att3.Proof, &att3.Signals, sig3)
	require.NoError(t, err)
	require.Len(t, ch, 0)
}

func TestGenesisRunsOnce(t *testing.T) {
	_, _, vk := testArtifacts(t)
	led := ledger.New(ledger.NewMemStore())
	t.Cleanup(func() { _ = led.Close() })

	_, first := freshKey(t)
	_, second := freshKey(t)

	// attaching with a zero deployer must not initialize the role table
	attach, err := New(led, vk, common.Address{})
	require.NoError(t, err)
	roles, err := attach.Roles(common.Address{})
	require.NoError(t, err)
	require.Equal(t, Role(0), roles)

	g, err := New(led, vk, first)
	require.NoError(t, err)
	roles, err = g.Roles(first)
	require.NoError(t, err)
	require.Equal(t, allRoles, roles)

	// reconstructing over the same store must not mint roles for a new deployer
	g2, err := New(led, vk, second)
	require.NoError(t, err)
	roles, err = g2.Roles(second)
	require.NoError(t, err)
	require.Equal(t, Role(0), roles)
	roles, err = g2.Roles(first)
	require.NoError(t, err)
	require.Equal(t, allRoles, roles)
}

func TestParseRole(t *testing.T) {
	for name, want := range map[string]Role{
		"signer": RoleSigner,
		"Pauser": RolePauser,
		" admin": RoleAdmin,
	} {
		got, err := ParseRole(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseRole("owner")
	require.ErrorIs(t, err, ErrUnknownRole)

	require.Equal(t, "none", Role(0).String())
	require.Equal(t, "signer+pauser+admin", allRoles.String())
}
