// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command walletcore builds the wallet core as a C shared library:
//
//	go build -buildmode=c-shared -o libwalletcore.so ./cmd/walletcore
//
// bindings.h describes the types shared with the host.
package main

/*
#include "bindings.h"
*/
import "C"

import (
	"fmt"
	"os"
	"runtime/cgo"
	"sync"

	"github.com/aptwallet/walletcore/core"
	"github.com/aptwallet/walletcore/coreerr"
	"github.com/aptwallet/walletcore/ownedbuf"
)

var (
	runtimeMtx sync.Mutex
	rt         *core.Runtime
)

// currentRuntime returns the running runtime, starting one with the given
// log level if the host never called core_runtime_start.
func currentRuntime(logLevel string) (*core.Runtime, error) {
	runtimeMtx.Lock()
	defer runtimeMtx.Unlock()

	if rt != nil {
		return rt, nil
	}
	cfg := core.DefaultConfig()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	r, err := core.StartRuntime(cfg)
	if err != nil {
		return nil, err
	}
	rt = r
	return rt, nil
}

func lookup(h C.CoreHandle) *core.Core {
	return cgo.Handle(h).Value().(*core.Core)
}

// fatal aborts on requests the core cannot even route.  These are host
// bugs, not runtime conditions.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "walletcore: %v\n", err)
	panic(err)
}

//export core_runtime_start
func core_runtime_start(logLevel *C.char) C.int {
	if _, err := currentRuntime(C.GoString(logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "walletcore: %v\n", err)
		return -1
	}
	return 0
}

//export core_runtime_stop
func core_runtime_stop() {
	runtimeMtx.Lock()
	defer runtimeMtx.Unlock()

	if rt != nil {
		rt.Stop()
		rt = nil
	}
}

//export create_core
func create_core(logLevel, restURL, faucetURL *C.char) C.CoreHandle {
	cfg := core.DefaultConfig()
	if level := C.GoString(logLevel); level != "" {
		cfg.LogLevel = level
	}
	cfg.RESTURL = C.GoString(restURL)
	cfg.FaucetURL = C.GoString(faucetURL)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "walletcore: %v\n", err)
		return 0
	}

	r, err := currentRuntime(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "walletcore: %v\n", err)
		return 0
	}
	if err := core.SetLogLevels(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "walletcore: %v\n", err)
		return 0
	}

	c, err := core.New(cfg, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "walletcore: %v\n", err)
		return 0
	}
	return C.CoreHandle(cgo.NewHandle(c))
}

//export free_core
func free_core(h C.CoreHandle) {
	if h == 0 {
		return
	}
	handle := cgo.Handle(h)
	handle.Value().(*core.Core).Close()
	handle.Delete()
}

//export core_call_sync
func core_call_sync(h C.CoreHandle, data *C.uint8_t,
	length C.size_t) C.CoreBuffer {

	buf, err := lookup(h).CallSync(goBytes(data, length))
	if err != nil {
		fatal(err)
	}
	return toC(buf)
}

//export core_call_async
func core_call_async(h C.CoreHandle, data *C.uint8_t, length C.size_t,
	cb C.CoreCallback) {

	if cb.fn == nil {
		fatal(coreerr.Errorf(coreerr.ErrMalformedRequest,
			"core_call_async", "no callback given"))
	}
	err := lookup(h).CallAsync(goBytes(data, length), hostCallback(cb))
	if err != nil {
		fatal(err)
	}
}

// core_free_buffer returns a buffer to the core.  It reports -1 when the
// descriptor was not issued by the core or was already freed.
//
//export core_free_buffer
func core_free_buffer(buf C.CoreBuffer) C.int {
	if err := ownedbuf.Default.Release(fromC(buf)); err != nil {
		fmt.Fprintf(os.Stderr, "walletcore: %v\n", err)
		return -1
	}
	return 0
}

func main() {}
