// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dispatch decodes host requests, routes them to their handlers on
// the right execution context and folds the outcome into an owned buffer.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/aptwallet/walletcore/coreerr"
	"github.com/aptwallet/walletcore/corepb"
	"github.com/aptwallet/walletcore/ownedbuf"
	"github.com/aptwallet/walletcore/taskpool"
	fn "github.com/lightningnetwork/lnd/fn/v2"
)

// Config holds the collaborators of a Dispatcher.
type Config struct {
	// Sync serves sync_requests arms on the caller's goroutine.
	Sync corepb.SyncHandler

	// Async serves async_requests arms on the pool.
	Async corepb.AsyncHandler

	// Pool runs async requests.
	Pool *taskpool.Pool

	// Arena owns the buffers handed to the host.  ownedbuf.Default is
	// used when nil.
	Arena *ownedbuf.Arena
}

// Dispatcher routes requests.  It holds no mutable state of its own and is
// safe for concurrent use.
type Dispatcher struct {
	cfg Config
}

// New returns a dispatcher for cfg.
func New(cfg Config) *Dispatcher {
	if cfg.Arena == nil {
		cfg.Arena = ownedbuf.Default
	}
	return &Dispatcher{cfg: cfg}
}

func malformed(format string, args ...interface{}) error {
	return coreerr.Errorf(coreerr.ErrMalformedRequest, "dispatch", format,
		args...)
}

func decode(raw []byte) (*corepb.Request, error) {
	var req corepb.Request
	if err := req.Unmarshal(raw); err != nil {
		return nil, coreerr.E(coreerr.ErrMalformedRequest, "dispatch",
			"undecodable request", err)
	}
	if req.Sync != nil && req.Async != nil {
		return nil, malformed("request sets both a sync and an async arm")
	}
	if req.Sync == nil && req.Async == nil {
		return nil, malformed("request sets no arm")
	}
	return &req, nil
}

// respond encodes a served arm, or carries the handler's failure.
func respond(arm corepb.ResponseArm, err error) fn.Result[[]byte] {
	if err != nil {
		return fn.Err[[]byte](err)
	}
	resp := corepb.Response{Result: arm}
	return fn.NewResult(resp.Marshal())
}

// recoverAs turns a handler panic into an error so a result is still
// delivered to the host.
func recoverAs(kind string, err *error) {
	if r := recover(); r != nil {
		log.Errorf("Handler for %s panicked: %v\n%s", kind, r,
			debug.Stack())
		*err = fmt.Errorf("%s handler panicked: %v", kind, r)
	}
}

func (d *Dispatcher) serveSync(req *corepb.Request) (arm corepb.ResponseArm,
	err error) {

	defer recoverAs(req.Kind(), &err)
	return req.Sync.ServeSync(d.cfg.Sync)
}

func (d *Dispatcher) serveAsync(ctx context.Context,
	req *corepb.Request) (arm corepb.ResponseArm, err error) {

	defer recoverAs(req.Kind(), &err)
	return req.Async.ServeAsync(ctx, d.cfg.Async)
}

// DispatchSync serves a sync request on the calling goroutine.  The returned
// error is non-nil only for a malformed request, which the host boundary
// treats as fatal.  Handler failures come back as an error buffer.
func (d *Dispatcher) DispatchSync(raw []byte) (ownedbuf.Buffer, error) {
	req, err := decode(raw)
	if err != nil {
		return ownedbuf.Buffer{}, err
	}
	if req.Sync == nil {
		return ownedbuf.Buffer{}, malformed("%s is not a sync request",
			req.Kind())
	}

	log.Debugf("Serving sync %s request", req.Kind())

	arm, err := d.serveSync(req)
	if err != nil {
		log.Debugf("Sync %s request failed: %v", req.Kind(), err)
	}
	return d.cfg.Arena.FromResult(respond(arm, err)), nil
}

// DispatchAsync validates an async request on the calling goroutine and
// schedules it on the pool.  The callback is invoked exactly once for every
// request that passes validation, including when the pool has already
// stopped.  The returned error is non-nil only for a malformed request, in
// which case the callback is not invoked.
func (d *Dispatcher) DispatchAsync(raw []byte, cb *taskpool.Callback) error {
	req, err := decode(raw)
	if err != nil {
		return err
	}
	if req.Async == nil {
		return malformed("%s is not an async request", req.Kind())
	}

	log.Debugf("Scheduling async %s request", req.Kind())

	err = d.cfg.Pool.Submit(func(ctx context.Context) {
		arm, err := d.serveAsync(ctx, req)
		if err != nil {
			log.Debugf("Async %s request failed: %v", req.Kind(), err)
		}
		cb.Invoke(d.cfg.Arena.FromResult(respond(arm, err)))
	})
	if err != nil {
		log.Warnf("Unable to schedule %s request: %v", req.Kind(), err)
		cb.Invoke(d.cfg.Arena.FromError(err))
	}
	return nil
}
