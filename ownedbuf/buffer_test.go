// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ownedbuf

import (
	"errors"
	"testing"
	"unsafe"

	fn "github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// foreignView reads a buffer the way a host would, straight through the
// descriptor.
func foreignView(b Buffer) []byte {
	return unsafe.Slice((*byte)(b.Ptr), b.Len)
}

// TestRoundTrip asserts bytes handed out are readable through the
// descriptor and that capacity survives the trip.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "exact capacity", data: []byte{1, 2, 3, 4}},
		{name: "spare capacity", data: append(make([]byte, 0, 64), 9, 8, 7)},
		{name: "single byte", data: []byte{0xff}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			arena := NewArena()
			want := append([]byte(nil), tc.data...)
			wantCap := cap(tc.data)

			buf := arena.FromBytes(tc.data)
			require.False(t, buf.IsError())
			require.Equal(t, len(want), buf.Len)
			require.Equal(t, wantCap, buf.Cap)
			require.Equal(t, want, foreignView(buf))

			got, err := arena.Bytes(buf)
			require.NoError(t, err)
			require.Equal(t, want, got)
			require.Equal(t, 1, arena.Live())

			require.NoError(t, arena.Release(buf))
			require.Zero(t, arena.Live())
		})
	}
}

// TestEmptyBuffer asserts an empty slice produces the zero descriptor.
func TestEmptyBuffer(t *testing.T) {
	t.Parallel()

	arena := NewArena()
	buf := arena.FromBytes(nil)
	require.True(t, buf.IsZero())
	require.Zero(t, arena.Live())
	require.NoError(t, arena.Release(buf))

	got, err := arena.Bytes(buf)
	require.NoError(t, err)
	require.Empty(t, got)
}

// TestErrorBuffer asserts error buffers carry the message text and no data.
func TestErrorBuffer(t *testing.T) {
	t.Parallel()

	arena := NewArena()
	buf := arena.FromError(errors.New("submission rejected"))
	require.True(t, buf.IsError())
	require.Nil(t, buf.Ptr)
	require.Zero(t, buf.Len)
	require.Zero(t, buf.Cap)

	msg, err := arena.ErrorText(buf)
	require.NoError(t, err)
	require.Equal(t, "submission rejected", msg)

	// The foreign side sees a NUL-terminated string.
	raw := unsafe.Slice((*byte)(buf.Err), len(msg)+1)
	require.Equal(t, byte(0), raw[len(msg)])

	_, err = arena.Bytes(buf)
	require.ErrorIs(t, err, ErrInvalidDescriptor)

	require.NoError(t, arena.Release(buf))
	require.Zero(t, arena.Live())
}

// TestFromResult asserts both halves of a result fold into the right kind
// of buffer.
func TestFromResult(t *testing.T) {
	t.Parallel()

	arena := NewArena()

	ok := arena.FromResult(fn.Ok([]byte("ok")))
	require.False(t, ok.IsError())
	require.Equal(t, []byte("ok"), foreignView(ok))

	bad := arena.FromResult(fn.Err[[]byte](errors.New("boom")))
	require.True(t, bad.IsError())
	msg, err := arena.ErrorText(bad)
	require.NoError(t, err)
	require.Equal(t, "boom", msg)

	require.NoError(t, arena.Release(ok))
	require.NoError(t, arena.Release(bad))
}

// TestReleaseRejectsTamperedDescriptors asserts a descriptor that does not
// match the allocation is refused and nothing is freed.
func TestReleaseRejectsTamperedDescriptors(t *testing.T) {
	t.Parallel()

	arena := NewArena()
	buf := arena.FromBytes(make([]byte, 4, 16))
	errBuf := arena.FromError(errors.New("x"))

	testCases := []struct {
		name    string
		mutate  func(Buffer) Buffer
		wantErr error
	}{
		{
			name: "capacity recomputed from length",
			mutate: func(b Buffer) Buffer {
				b.Cap = b.Len
				return b
			},
			wantErr: ErrCapacityMismatch,
		},
		{
			name: "length changed",
			mutate: func(b Buffer) Buffer {
				b.Len++
				return b
			},
			wantErr: ErrCapacityMismatch,
		},
		{
			name: "both halves set",
			mutate: func(b Buffer) Buffer {
				b.Err = errBuf.Err
				return b
			},
			wantErr: ErrInvalidDescriptor,
		},
		{
			name: "nil pointer with length",
			mutate: func(b Buffer) Buffer {
				return Buffer{Len: b.Len, Cap: b.Cap}
			},
			wantErr: ErrInvalidDescriptor,
		},
		{
			name: "foreign pointer",
			mutate: func(b Buffer) Buffer {
				other := make([]byte, 4, 16)
				b.Ptr = unsafe.Pointer(&other[0])
				return b
			},
			wantErr: ErrUnknownBuffer,
		},
	}

	for _, tc := range testCases {
		err := arena.Release(tc.mutate(buf))
		require.ErrorIs(t, err, tc.wantErr, tc.name)
		require.Equal(t, 2, arena.Live(), tc.name)
	}

	require.NoError(t, arena.Release(buf))
	require.NoError(t, arena.Release(errBuf))
	require.Zero(t, arena.Live())
}

// TestDoubleRelease asserts the second release of the same descriptor is
// detected.
func TestDoubleRelease(t *testing.T) {
	t.Parallel()

	arena := NewArena()
	buf := arena.FromBytes([]byte{1})
	require.NoError(t, arena.Release(buf))
	require.ErrorIs(t, arena.Release(buf), ErrUnknownBuffer)

	errBuf := arena.FromError(errors.New("y"))
	require.NoError(t, arena.Release(errBuf))
	require.ErrorIs(t, arena.Release(errBuf), ErrUnknownBuffer)
}
