// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

/*
#include <stdlib.h>
#include <string.h>
#include "bindings.h"

#define LOOPBACK_SLOTS 64

typedef struct loopback_call {
	const void *ctx;
	CoreBuffer result;
	int done;
} loopback_call;

loopback_call loopback_calls[LOOPBACK_SLOTS];
static int loopback_next;

static void loopback_record(const void *ctx, CoreBuffer result) {
	int slot = __atomic_fetch_add(&loopback_next, 1, __ATOMIC_ACQ_REL) %
		LOOPBACK_SLOTS;
	loopback_calls[slot].ctx = ctx;
	loopback_calls[slot].result = result;
	__atomic_store_n(&loopback_calls[slot].done, 1, __ATOMIC_RELEASE);
}

static int loopback_done(int slot) {
	return __atomic_load_n(&loopback_calls[slot].done, __ATOMIC_ACQUIRE);
}

static void loopback_reset(void) {
	int i;
	for (i = 0; i < LOOPBACK_SLOTS; i++) {
		__atomic_store_n(&loopback_calls[i].done, 0, __ATOMIC_RELEASE);
	}
	__atomic_store_n(&loopback_next, 0, __ATOMIC_RELEASE);
}

static CoreCallback loopback_callback(const void *ctx) {
	CoreCallback cb = { ctx, loopback_record };
	return cb;
}
*/
import "C"

import (
	"time"
	"unsafe"

	"github.com/aptwallet/walletcore/ownedbuf"
)

// loopback is an in-process host.  It calls the exported surface with
// C-owned requests and records async results in C memory, as a foreign
// host would receive them.  Only one loopback may record at a time.
type loopback struct {
	handle C.CoreHandle
	tokens []unsafe.Pointer
}

// hostBuffer is a buffer as the host holds it.
type hostBuffer struct {
	c C.CoreBuffer
}

func (b hostBuffer) buffer() ownedbuf.Buffer {
	return fromC(b.c)
}

// hostCall is one recorded callback invocation.
type hostCall struct {
	ctx    uintptr
	result hostBuffer
}

func newLoopback(logLevel, restURL, faucetURL string) *loopback {
	cLevel := C.CString(logLevel)
	cREST := C.CString(restURL)
	cFaucet := C.CString(faucetURL)
	defer C.free(unsafe.Pointer(cLevel))
	defer C.free(unsafe.Pointer(cREST))
	defer C.free(unsafe.Pointer(cFaucet))

	C.loopback_reset()
	return &loopback{handle: create_core(cLevel, cREST, cFaucet)}
}

func (l *loopback) valid() bool {
	return l.handle != 0
}

// hostRequest copies req into C memory.  The caller frees it.
func hostRequest(req []byte) (*C.uint8_t, C.size_t) {
	if len(req) == 0 {
		return nil, 0
	}
	return (*C.uint8_t)(C.CBytes(req)), C.size_t(len(req))
}

// copyHostRequest copies req through C memory the way requests enter the
// core, then scribbles over the C copy before returning the Go one.
func copyHostRequest(req []byte) []byte {
	data, length := hostRequest(req)
	defer C.free(unsafe.Pointer(data))

	copied := goBytes(data, length)
	if length > 0 {
		C.memset(unsafe.Pointer(data), 0xee, length)
	}
	return copied
}

func (l *loopback) callSync(req []byte) hostBuffer {
	data, length := hostRequest(req)
	defer C.free(unsafe.Pointer(data))

	return hostBuffer{c: core_call_sync(l.handle, data, length)}
}

// callAsync schedules req with a fresh host context and returns that
// context's address.
func (l *loopback) callAsync(req []byte) uintptr {
	data, length := hostRequest(req)
	defer C.free(unsafe.Pointer(data))

	token := C.malloc(1)
	l.tokens = append(l.tokens, token)
	core_call_async(l.handle, data, length, C.loopback_callback(token))
	return uintptr(token)
}

// callAsyncWithoutFunction schedules req with a callback missing its
// function pointer.
func (l *loopback) callAsyncWithoutFunction(req []byte) {
	data, length := hostRequest(req)
	defer C.free(unsafe.Pointer(data))

	core_call_async(l.handle, data, length, C.CoreCallback{})
}

func (l *loopback) close() {
	free_core(l.handle)
	l.handle = 0
	for _, token := range l.tokens {
		C.free(token)
	}
	l.tokens = nil
}

func freeHostBuffer(b hostBuffer) int {
	return int(core_free_buffer(b.c))
}

// awaitHostCalls waits for the first n recorded callbacks.
func awaitHostCalls(n int, timeout time.Duration) ([]hostCall, bool) {
	deadline := time.Now().Add(timeout)
	for slot := 0; slot < n; slot++ {
		for C.loopback_done(C.int(slot)) == 0 {
			if time.Now().After(deadline) {
				return nil, false
			}
			time.Sleep(time.Millisecond)
		}
	}

	calls := make([]hostCall, n)
	for slot := range calls {
		rec := C.loopback_calls[slot]
		calls[slot] = hostCall{
			ctx:    uintptr(rec.ctx),
			result: hostBuffer{c: rec.result},
		}
	}
	return calls, true
}
