// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package core ties the wallet core together: configuration, logging, the
// runtime shared by every core, and the Core handle a host calls into.
package core

import (
	"sync/atomic"
	"time"

	"github.com/aptwallet/walletcore/dispatch"
	"github.com/aptwallet/walletcore/ledger"
	"github.com/aptwallet/walletcore/ownedbuf"
	"github.com/aptwallet/walletcore/taskpool"
	"github.com/aptwallet/walletcore/txn"
)

// Core serves requests for one ledger configuration.  It is safe for
// concurrent use.
type Core struct {
	cfg        *Config
	rt         *Runtime
	arena      *ownedbuf.Arena
	dispatcher *dispatch.Dispatcher

	created    time.Time
	syncCalls  atomic.Uint64
	asyncCalls atomic.Uint64
}

// Snapshot is the core state included in backtrace responses.
type Snapshot struct {
	RESTURL     string
	FaucetURL   string
	CoinType    string
	Uptime      time.Duration
	SyncCalls   uint64
	AsyncCalls  uint64
	LiveBuffers int
	Pool        taskpool.Stats
}

// New creates a core running its async requests on rt.
func New(cfg *Config, rt *Runtime) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := ledger.NewRESTClient(cfg.restConfig())
	if err != nil {
		return nil, err
	}

	c := &Core{
		cfg:     cfg,
		rt:      rt,
		arena:   ownedbuf.Default,
		created: time.Now(),
	}

	pipeline := txn.New(client, cfg.pipelineConfig())
	handlers := dispatch.NewHandlers(pipeline, func() interface{} {
		return c.Snapshot()
	})
	c.dispatcher = dispatch.New(dispatch.Config{
		Sync:  handlers,
		Async: handlers,
		Pool:  rt.Pool(),
		Arena: c.arena,
	})

	log.Infof("Core created for node %s (faucet %q)", cfg.RESTURL,
		cfg.FaucetURL)
	return c, nil
}

// Arena returns the arena owning every buffer the core hands out.
func (c *Core) Arena() *ownedbuf.Arena {
	return c.arena
}

// CallSync serves a sync request.  See dispatch.Dispatcher.DispatchSync.
func (c *Core) CallSync(raw []byte) (ownedbuf.Buffer, error) {
	c.syncCalls.Add(1)
	return c.dispatcher.DispatchSync(raw)
}

// CallAsync schedules an async request.  See
// dispatch.Dispatcher.DispatchAsync.
func (c *Core) CallAsync(raw []byte, cb *taskpool.Callback) error {
	c.asyncCalls.Add(1)
	return c.dispatcher.DispatchAsync(raw, cb)
}

// Snapshot returns the current core state.
func (c *Core) Snapshot() Snapshot {
	return Snapshot{
		RESTURL:     c.cfg.RESTURL,
		FaucetURL:   c.cfg.FaucetURL,
		CoinType:    c.cfg.CoinType,
		Uptime:      time.Since(c.created).Truncate(time.Second),
		SyncCalls:   c.syncCalls.Load(),
		AsyncCalls:  c.asyncCalls.Load(),
		LiveBuffers: c.arena.Live(),
		Pool:        c.rt.Pool().Stats(),
	}
}

// Close releases the core.  Async requests already scheduled still
// complete on the runtime.
func (c *Core) Close() {
	log.Infof("Core for node %s closed after %d sync and %d async calls",
		c.cfg.RESTURL, c.syncCalls.Load(), c.asyncCalls.Load())
}
