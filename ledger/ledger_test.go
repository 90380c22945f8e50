package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLedgerSerializesWrites(t *testing.T) {
	led := New(NewMemStore())
	defer led.Close()

	key := []byte("meta/total")
	increment := func(txn Txn) error {
		var total uint64
		switch raw, err := txn.Get(key); {
		case err == nil:
			total = binary.BigEndian.Uint64(raw)
		case errors.Is(err, ErrKeyNotFound):
		default:
			return err
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, total+1)
		return txn.Set(key, buf)
	}

	// read-modify-write from many goroutines; the single worker must not
	// lose any increment
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 25; j++ {
				if err := led.Apply(context.Background(), "increment", increment); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	err := led.View(func(txn Txn) error {
		raw, err := txn.Get(key)
		require.NoError(t, err)
		require.Equal(t, uint64(200), binary.BigEndian.Uint64(raw))
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerAppliesInOrder(t *testing.T) {
	led := New(NewMemStore())
	defer led.Close()

	key := []byte("trace")
	for i := 0; i < 10; i++ {
		i := byte(i)
		err := led.Apply(context.Background(), "append", func(txn Txn) error {
			prev, err := txn.Get(key)
			if err != nil && !errors.Is(err, ErrKeyNotFound) {
				return err
			}
			return txn.Set(key, append(prev, i))
		})
		require.NoError(t, err)
	}

	err := led.View(func(txn Txn) error {
		trace, err := txn.Get(key)
		require.NoError(t, err)
		require.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, trace)
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerRejectedOpLeavesNoTrace(t *testing.T) {
	led := New(NewMemStore())
	defer led.Close()

	require.NoError(t, led.Apply(context.Background(), "seed", func(txn Txn) error {
		return txn.Set([]byte("keep"), []byte{1})
	}))

	err := led.Apply(context.Background(), "failing", func(txn Txn) error {
		if err := txn.Set([]byte("stray"), []byte{1}); err != nil {
			return err
		}
		if err := txn.Delete([]byte("keep")); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	err = led.View(func(txn Txn) error {
		_, err := txn.Get([]byte("keep"))
		require.NoError(t, err)
		_, err = txn.Get([]byte("stray"))
		require.ErrorIs(t, err, ErrKeyNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerAbandonedOpStillRuns(t *testing.T) {
	led := New(NewMemStore())

	// park the worker inside an operation so the next one queues up
	started := make(chan struct{})
	release := make(chan struct{})
	gateErr := make(chan error, 1)
	go func() {
		gateErr <- led.Apply(context.Background(), "gate", func(Txn) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	abandonedErr := make(chan error, 1)
	go func() {
		abandonedErr <- led.Apply(ctx, "abandoned", func(txn Txn) error {
			return txn.Set([]byte("k"), []byte("v"))
		})
	}()
	require.Eventually(t, func() bool { return len(led.queue) == 1 }, time.Second, time.Millisecond)

	// the caller walks away, the accepted operation must still commit
	cancel()
	require.ErrorIs(t, <-abandonedErr, context.Canceled)

	close(release)
	require.NoError(t, <-gateErr)
	require.NoError(t, led.Close())

	err := led.View(func(txn Txn) error {
		v, err := txn.Get([]byte("k"))
		require.NoError(t, err)
		require.Equal(t, []byte("v"), v)
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerClose(t *testing.T) {
	led := New(NewMemStore())

	require.NoError(t, led.Apply(context.Background(), "seed", func(txn Txn) error {
		return txn.Set([]byte("a"), []byte{1})
	}))

	require.NoError(t, led.Close())
	require.NoError(t, led.Close())

	err := led.Apply(context.Background(), "late", func(Txn) error { return nil })
	require.ErrorIs(t, err, ErrClosed)
}
