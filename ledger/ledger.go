// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package ledger sequences all writes to the verification state behind a
// single worker goroutine: operations submitted through Apply run one at a
// time, in acceptance order, against a transactional Store. Reads bypass the
// queue and observe a consistent snapshot.
//
// Two stores are provided. MemStore keeps state in a map and backs tests;
// BadgerStore persists state on disk with synchronous writes.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/consensys/gnark-solvency/logger"
)

const opQueueSize = 16

// Op is a state transition run against a read-write transaction. It either
// commits in full or, when it returns an error, leaves the store untouched.
type Op func(txn Txn) error

type op struct {
	id   uuid.UUID
	name string
	fn   Op
	res  chan error
}

// Ledger owns a Store and applies operations against it strictly one at a
// time. All methods are safe for concurrent use.
type Ledger struct {
	store Store
	queue chan *op

	quit    chan struct{}
	stopped chan struct{}

	closeOnce sync.Once
	closeErr  error

	log zerolog.Logger
}

func New(store Store) *Ledger {
	l := &Ledger{
		store:   store,
		queue:   make(chan *op, opQueueSize),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		log:     logger.With("ledger"),
	}
	go l.run()
	return l
}

// called in a go routine
func (l *Ledger) run() {
	defer close(l.stopped)
	for {
		select {
		case o := <-l.queue:
			l.exec(o)
		case <-l.quit:
			// accepted operations run to completion before the worker stops
			for {
				select {
				case o := <-l.queue:
					l.exec(o)
				default:
					return
				}
			}
		}
	}
}

func (l *Ledger) exec(o *op) {
	start := time.Now()
	err := l.store.Update(o.fn)
	if err != nil {
		l.log.Debug().Str("op", o.id.String()).Str("name", o.name).Err(err).Msg("operation rejected")
	} else {
		l.log.Debug().Str("op", o.id.String()).Str("name", o.name).Dur("took", time.Since(start)).Msg("operation applied")
	}
	o.res <- err // buffered, never blocks the worker
}

// Apply submits fn to the write queue and waits for it to commit or fail.
// Operations run in the order Apply accepts them. If ctx ends before the
// operation is accepted nothing runs and the context error is returned; if
// ctx ends after acceptance the caller stops waiting but the operation still
// runs to completion.
func (l *Ledger) Apply(ctx context.Context, name string, fn Op) error {
	o := &op{id: uuid.New(), name: name, fn: fn, res: make(chan error, 1)}
	select {
	case l.queue <- o:
	case <-l.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-o.res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		// the worker may have executed this op during its final drain
		select {
		case err := <-o.res:
			return err
		default:
			return ErrClosed
		}
	}
}

// View runs fn against a read-only snapshot of the store. Reads do not go
// through the write queue; a View racing an operation sees the state either
// before or after that operation, never in between.
func (l *Ledger) View(fn func(Txn) error) error {
	return l.store.View(fn)
}

// Close stops the worker once every accepted operation has run, then closes
// the underlying store. Later Apply calls return ErrClosed.
func (l *Ledger) Close() error {
	l.closeOnce.Do(func() {
		close(l.quit)
		<-l.stopped
		l.closeErr = l.store.Close()
	})
	return l.closeErr
}
