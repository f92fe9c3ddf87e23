// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ownedbuf implements the descriptor used to hand byte buffers to a
// foreign caller and take them back for release.
//
// A Buffer is either a data buffer (Ptr, Len and Cap set, Err nil) or an
// error buffer (Err points at a NUL-terminated message, the rest zero).  The
// receiver owns a buffer from the moment it is returned until it is passed
// back to Release exactly once, unchanged.  The backing memory is Go memory
// pinned with runtime.Pinner and tracked by an Arena so that the collector
// neither frees nor moves it while the foreign side holds it.
package ownedbuf

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/aptwallet/walletcore/coreerr"
	fn "github.com/lightningnetwork/lnd/fn/v2"
)

// Errors returned by Release.  Nothing is freed when any of these is
// returned.
var (
	// ErrInvalidDescriptor is returned when both the data and error halves
	// are set, or when a nil data pointer carries a length or capacity.
	ErrInvalidDescriptor = coreerr.E(coreerr.ErrInvalidBuffer, "release",
		"buffer must carry exactly one of data or error", nil)

	// ErrUnknownBuffer is returned for pointers that were never handed
	// out by the arena or have already been released.
	ErrUnknownBuffer = coreerr.E(coreerr.ErrInvalidBuffer, "release",
		"buffer is not live (double release or foreign pointer)", nil)

	// ErrCapacityMismatch is returned when the length or capacity passed
	// back differ from the values handed out.
	ErrCapacityMismatch = coreerr.E(coreerr.ErrInvalidBuffer, "release",
		"buffer length or capacity does not match allocation", nil)
)

// Buffer describes a contiguous byte buffer owned by whoever currently holds
// the descriptor.  The field layout mirrors the C struct exported to hosts.
type Buffer struct {
	Ptr unsafe.Pointer
	Len int
	Cap int
	Err unsafe.Pointer
}

// IsError returns whether the buffer carries an error message rather than
// data.
func (b Buffer) IsError() bool {
	return b.Err != nil
}

// IsZero returns whether the buffer is the empty success descriptor.
func (b Buffer) IsZero() bool {
	return b == Buffer{}
}

type allocation struct {
	data   []byte // full capacity of the handed out slice
	length int
	pinner runtime.Pinner
}

// Arena keeps every buffer handed out to the foreign side reachable and
// pinned until it is released.
type Arena struct {
	mtx  sync.Mutex
	live map[unsafe.Pointer]*allocation
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{live: make(map[unsafe.Pointer]*allocation)}
}

// Default is the process-wide arena backing the foreign call surface.
// Releasing a buffer carries no core handle, so every core shares it.
var Default = NewArena()

func (a *Arena) track(data []byte, length int) unsafe.Pointer {
	full := data[:cap(data)]
	alloc := &allocation{data: full, length: length}
	alloc.pinner.Pin(&full[0])
	ptr := unsafe.Pointer(&full[0])

	a.mtx.Lock()
	a.live[ptr] = alloc
	a.mtx.Unlock()

	return ptr
}

// FromBytes transfers ownership of b to a new data buffer.  The caller must
// not touch b afterwards.  A slice without capacity yields the zero
// descriptor, which needs no release.
func (a *Arena) FromBytes(b []byte) Buffer {
	if cap(b) == 0 {
		return Buffer{}
	}
	ptr := a.track(b, len(b))
	log.Tracef("Handing out %d byte buffer (cap %d) at %p", len(b),
		cap(b), ptr)
	return Buffer{Ptr: ptr, Len: len(b), Cap: cap(b)}
}

// FromError returns an error buffer carrying a NUL-terminated copy of the
// error's message.
func (a *Arena) FromError(err error) Buffer {
	msg := err.Error()
	b := make([]byte, len(msg)+1)
	copy(b, msg)
	ptr := a.track(b, len(b))
	log.Tracef("Handing out error buffer at %p: %s", ptr, msg)
	return Buffer{Err: ptr}
}

// FromResult folds a result into either a data or an error buffer.
func (a *Arena) FromResult(r fn.Result[[]byte]) Buffer {
	b, err := r.Unpack()
	if err != nil {
		return a.FromError(err)
	}
	return a.FromBytes(b)
}

func (a *Arena) lookup(b Buffer) (*allocation, unsafe.Pointer, error) {
	switch {
	case b.Ptr != nil && b.Err != nil:
		return nil, nil, ErrInvalidDescriptor
	case b.Err != nil:
		if b.Len != 0 || b.Cap != 0 {
			return nil, nil, ErrInvalidDescriptor
		}
		alloc, ok := a.live[b.Err]
		if !ok {
			return nil, nil, ErrUnknownBuffer
		}
		return alloc, b.Err, nil
	case b.Ptr != nil:
		alloc, ok := a.live[b.Ptr]
		if !ok {
			return nil, nil, ErrUnknownBuffer
		}
		if b.Len != alloc.length || b.Cap != len(alloc.data) {
			return nil, nil, ErrCapacityMismatch
		}
		return alloc, b.Ptr, nil
	default:
		if b.Len != 0 || b.Cap != 0 {
			return nil, nil, ErrInvalidDescriptor
		}
		return nil, nil, nil
	}
}

// Release returns ownership of a buffer to the arena and frees it.  The
// descriptor must be exactly the one handed out.  The zero descriptor is
// accepted and ignored.
func (a *Arena) Release(b Buffer) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	alloc, key, err := a.lookup(b)
	if err != nil {
		log.Warnf("Refusing to release buffer %+v: %v", b, err)
		return err
	}
	if alloc == nil {
		return nil
	}

	delete(a.live, key)
	alloc.pinner.Unpin()
	log.Tracef("Released buffer at %p", key)
	return nil
}

// Bytes returns the data carried by a live data buffer without transferring
// ownership.  The returned slice is invalid once the buffer is released.
func (a *Arena) Bytes(b Buffer) ([]byte, error) {
	if b.IsZero() {
		return nil, nil
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()

	alloc, _, err := a.lookup(b)
	if err != nil {
		return nil, err
	}
	if b.Err != nil {
		return nil, ErrInvalidDescriptor
	}
	return alloc.data[:alloc.length:alloc.length], nil
}

// ErrorText returns the message carried by a live error buffer, without the
// trailing NUL.
func (a *Arena) ErrorText(b Buffer) (string, error) {
	if b.Err == nil {
		return "", ErrInvalidDescriptor
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()

	alloc, _, err := a.lookup(b)
	if err != nil {
		return "", err
	}
	return string(alloc.data[:alloc.length-1]), nil
}

// Live returns the number of buffers handed out and not yet released.
func (a *Arena) Live() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return len(a.live)
}
