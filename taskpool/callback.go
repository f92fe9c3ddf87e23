// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taskpool

import (
	"sync/atomic"

	"github.com/aptwallet/walletcore/ownedbuf"
)

// Callback is the capability to deliver one result to the host.  Whoever
// holds it owns it; Invoke consumes it.
type Callback struct {
	deliver func(ownedbuf.Buffer)
	used    atomic.Bool
}

// NewCallback wraps deliver, which typically closes over the host's opaque
// context and function pointer.
func NewCallback(deliver func(ownedbuf.Buffer)) *Callback {
	return &Callback{deliver: deliver}
}

// Invoke hands buf to the host, transferring its ownership.  Invoking a
// callback twice is a programming error and panics.
func (c *Callback) Invoke(buf ownedbuf.Buffer) {
	if !c.used.CompareAndSwap(false, true) {
		panic("taskpool: callback invoked more than once")
	}
	log.Tracef("Delivering result (error=%v)", buf.IsError())
	c.deliver(buf)
}

// Used returns whether the callback has been invoked.
func (c *Callback) Used() bool {
	return c.used.Load()
}
