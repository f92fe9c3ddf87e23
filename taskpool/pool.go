// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package taskpool runs asynchronous requests and carries their results back
// to the host through single-use callbacks.
package taskpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ErrPoolStopped is returned by Submit once Stop has been called.
var ErrPoolStopped = errors.New("task pool stopped")

// Stats is a snapshot of the pool counters.
type Stats struct {
	Submitted uint64
	Completed uint64
	InFlight  uint64
}

// Pool executes submitted tasks concurrently.  It is unbounded and tasks are
// never cancelled: Stop refuses new work and waits for what is running.
type Pool struct {
	mtx     sync.RWMutex
	group   errgroup.Group
	stopped bool

	submitted atomic.Uint64
	completed atomic.Uint64
}

// New returns a running pool.
func New() *Pool {
	return &Pool{}
}

// Submit schedules task.  The context handed to the task is never
// cancelled.
func (p *Pool) Submit(task func(ctx context.Context)) error {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	p.submitted.Add(1)
	p.group.Go(func() error {
		defer p.completed.Add(1)
		task(context.Background())
		return nil
	})
	return nil
}

// Stop refuses further submissions and blocks until every submitted task
// has returned.  Calling Stop more than once is harmless.
func (p *Pool) Stop() {
	p.mtx.Lock()
	if p.stopped {
		p.mtx.Unlock()
		return
	}
	p.stopped = true
	p.mtx.Unlock()

	log.Debugf("Waiting for %d in-flight tasks", p.Stats().InFlight)
	_ = p.group.Wait()
	log.Debugf("Task pool stopped")
}

// Stopped returns whether Stop has been called.
func (p *Pool) Stopped() bool {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.stopped
}

// Stats returns the current counters.
func (p *Pool) Stats() Stats {
	completed := p.completed.Load()
	submitted := p.submitted.Load()
	if submitted < completed {
		submitted = completed
	}
	return Stats{
		Submitted: submitted,
		Completed: completed,
		InFlight:  submitted - completed,
	}
}
