// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

/*
#include "bindings.h"

static void invoke_core_callback(CoreCallback cb, CoreBuffer result) {
	cb.fn(cb.ctx, result);
}
*/
import "C"

import (
	"unsafe"

	"github.com/aptwallet/walletcore/ownedbuf"
	"github.com/aptwallet/walletcore/taskpool"
)

func toC(b ownedbuf.Buffer) C.CoreBuffer {
	return C.CoreBuffer{
		ptr: (*C.uint8_t)(b.Ptr),
		len: C.size_t(b.Len),
		cap: C.size_t(b.Cap),
		err: (*C.char)(b.Err),
	}
}

func fromC(b C.CoreBuffer) ownedbuf.Buffer {
	return ownedbuf.Buffer{
		Ptr: unsafe.Pointer(b.ptr),
		Len: int(b.len),
		Cap: int(b.cap),
		Err: unsafe.Pointer(b.err),
	}
}

// goBytes copies a host request so the host keeps ownership of its memory.
// The length is taken as a full size_t.
func goBytes(data *C.uint8_t, length C.size_t) []byte {
	if data == nil || length == 0 {
		return nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(data)), uint64(length))
	return append([]byte(nil), src...)
}

// hostCallback bridges a host callback to a taskpool callback.
func hostCallback(cb C.CoreCallback) *taskpool.Callback {
	return taskpool.NewCallback(func(b ownedbuf.Buffer) {
		C.invoke_core_callback(cb, toC(b))
	})
}
