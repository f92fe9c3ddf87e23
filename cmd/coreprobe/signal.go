// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// signals defines the signals that are handled to do a clean shutdown.
var signals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// interruptContext returns a context canceled on the first interrupt signal
// and a function registering handlers to run, in LIFO order, after the
// cancel.  Handlers added after the interrupt are dropped.
func interruptContext() (context.Context, func(handler func())) {
	ctx, cancel := context.WithCancel(context.Background())

	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, signals...)

	addHandlerChannel := make(chan func())
	go func() {
		var interruptCallbacks []func()
		for {
			select {
			case sig := <-interruptChannel:
				fmt.Fprintf(os.Stderr, "Received signal (%s).  "+
					"Shutting down...\n", sig)
				cancel()
				for i := range interruptCallbacks {
					idx := len(interruptCallbacks) - 1 - i
					interruptCallbacks[idx]()
				}
				return

			case handler := <-addHandlerChannel:
				interruptCallbacks = append(interruptCallbacks,
					handler)
			}
		}
	}()

	addInterruptHandler := func(handler func()) {
		select {
		case addHandlerChannel <- handler:
		case <-ctx.Done():
		}
	}
	return ctx, addInterruptHandler
}
