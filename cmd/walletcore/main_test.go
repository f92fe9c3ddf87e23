// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build cgo

package main

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/aptwallet/walletcore/corepb"
	"github.com/aptwallet/walletcore/ownedbuf"
	"github.com/stretchr/testify/require"
)

// unreachableNode refuses connections, so ledger calls fail fast.
const unreachableNode = "http://127.0.0.1:1"

func TestMain(m *testing.M) {
	code := m.Run()
	core_runtime_stop()
	os.Exit(code)
}

func newTestLoopback(t *testing.T) *loopback {
	t.Helper()

	l := newLoopback("warn", unreachableNode, "")
	require.True(t, l.valid())
	t.Cleanup(l.close)
	return l
}

func encode(t *testing.T, req *corepb.Request) []byte {
	t.Helper()

	b, err := req.Marshal()
	require.NoError(t, err)
	return b
}

// decodeHost reads a host-held success buffer.
func decodeHost(t *testing.T, b hostBuffer) corepb.ResponseArm {
	t.Helper()

	data, err := ownedbuf.Default.Bytes(b.buffer())
	require.NoError(t, err)
	var resp corepb.Response
	require.NoError(t, resp.Unmarshal(data))
	return resp.Result
}

// TestCreateCoreRejectsBadConfig asserts an unusable config yields the zero
// handle rather than a core.
func TestCreateCoreRejectsBadConfig(t *testing.T) {
	testCases := []struct {
		name      string
		logLevel  string
		restURL   string
		faucetURL string
	}{
		{name: "relative node", logLevel: "info", restURL: "node:8080"},
		{
			name:     "bad level",
			logLevel: "loud",
			restURL:  unreachableNode,
		},
		{
			name:      "bad faucet",
			logLevel:  "info",
			restURL:   unreachableNode,
			faucetURL: "ftp://faucet",
		},
	}

	for _, tc := range testCases {
		l := newLoopback(tc.logLevel, tc.restURL, tc.faucetURL)
		require.False(t, l.valid(), tc.name)
	}
}

// TestRequestCopiedFromHost asserts requests are copied out of host memory
// in full, so the host may reuse it as soon as the call returns.
func TestRequestCopiedFromHost(t *testing.T) {
	testCases := []struct {
		name string
		req  []byte
	}{
		{name: "empty", req: nil},
		{name: "small", req: []byte{0x0a, 0x00}},
		{name: "large", req: bytes.Repeat([]byte{0x5a}, 1<<20+3)},
	}

	for _, tc := range testCases {
		got := copyHostRequest(tc.req)
		require.Len(t, got, len(tc.req), tc.name)
		if len(tc.req) > 0 {
			require.Equal(t, tc.req, got, tc.name)
		}
	}
}

// TestSyncBufferRoundTrip checks a sync response crosses the boundary with
// its fields intact and can be freed exactly once.
func TestSyncBufferRoundTrip(t *testing.T) {
	l := newTestLoopback(t)

	held := l.callSync(encode(t, &corepb.Request{
		Sync: &corepb.CreateAccountRequest{},
	}))
	buf := held.buffer()
	require.False(t, buf.IsError())
	require.NotNil(t, buf.Ptr)
	require.Positive(t, buf.Len)
	require.GreaterOrEqual(t, buf.Cap, buf.Len)

	created, ok := decodeHost(t, held).(*corepb.CreateAccountResponse)
	require.True(t, ok)
	require.Len(t, created.Address, 64)

	require.Equal(t, 0, freeHostBuffer(held))
	require.Equal(t, -1, freeHostBuffer(held))
	require.Equal(t, 0, freeHostBuffer(hostBuffer{}))
}

// TestAsyncCallbackCarriesContext asserts every async result reaches the
// host callback once, paired with the context it was scheduled with.
func TestAsyncCallbackCarriesContext(t *testing.T) {
	l := newTestLoopback(t)

	const inFlight = 4
	pending := make(map[uintptr]bool, inFlight)
	for i := 0; i < inFlight; i++ {
		ctx := l.callAsync(encode(t, &corepb.Request{
			Async: &corepb.GetAsyncBacktraceRequest{},
		}))
		require.NotZero(t, ctx)
		pending[ctx] = true
	}

	calls, ok := awaitHostCalls(inFlight, 10*time.Second)
	require.True(t, ok, "callbacks not delivered")

	for _, call := range calls {
		require.True(t, pending[call.ctx], "unknown ctx %#x", call.ctx)
		delete(pending, call.ctx)

		resp := decodeHost(t, call.result)
		_, ok := resp.(*corepb.GetAsyncBacktraceResponse)
		require.True(t, ok)
		require.Equal(t, 0, freeHostBuffer(call.result))
	}
	require.Empty(t, pending)
}

// TestAsyncErrorReachesHost asserts a failing async request comes back as
// an error buffer through the callback.
func TestAsyncErrorReachesHost(t *testing.T) {
	l := newTestLoopback(t)

	ctx := l.callAsync(encode(t, &corepb.Request{
		Async: &corepb.GetTransactionRequest{Hash: "0x01"},
	}))

	calls, ok := awaitHostCalls(1, 10*time.Second)
	require.True(t, ok, "callback not delivered")
	require.Equal(t, ctx, calls[0].ctx)

	buf := calls[0].result.buffer()
	require.True(t, buf.IsError())
	require.Nil(t, buf.Ptr)
	msg, err := ownedbuf.Default.ErrorText(buf)
	require.NoError(t, err)
	require.Contains(t, msg, "get_transaction")

	require.Equal(t, 0, freeHostBuffer(calls[0].result))
	require.Equal(t, -1, freeHostBuffer(calls[0].result))
}

// TestMalformedRequestIsFatal asserts requests the core cannot route abort
// the call instead of producing a buffer.
func TestMalformedRequestIsFatal(t *testing.T) {
	l := newTestLoopback(t)

	backtrace := encode(t, &corepb.Request{
		Async: &corepb.GetAsyncBacktraceRequest{},
	})
	syncOnly := encode(t, &corepb.Request{
		Sync: &corepb.CreateAccountRequest{},
	})

	require.Panics(t, func() { l.callSync([]byte{0xff, 0xff}) })
	require.Panics(t, func() { l.callSync(backtrace) })
	require.Panics(t, func() { l.callAsync(syncOnly) })
	require.Panics(t, func() { l.callAsyncWithoutFunction(backtrace) })

	_, ok := awaitHostCalls(1, 50*time.Millisecond)
	require.False(t, ok, "callback invoked for a malformed request")
}
