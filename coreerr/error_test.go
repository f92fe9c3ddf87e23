// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coreerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestErrorCodeStringer tests the stringized output for the ErrorCode type.
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrTransport, "ErrTransport"},
		{ErrInvalidResponse, "ErrInvalidResponse"},
		{ErrRemoteRejected, "ErrRemoteRejected"},
		{ErrSequenceNumberUnavailable, "ErrSequenceNumberUnavailable"},
		{ErrClock, "ErrClock"},
		{ErrInvalidKeyEncoding, "ErrInvalidKeyEncoding"},
		{ErrMalformedRequest, "ErrMalformedRequest"},
		{ErrInvalidRequest, "ErrInvalidRequest"},
		{ErrInvalidBuffer, "ErrInvalidBuffer"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	for i, test := range tests {
		require.Equal(t, test.want, test.in.String(), "test #%d", i)
	}
}

// TestError tests the error output and chain inspection of Error.
func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := E(ErrTransport, "get_account", "request failed", cause)

	require.Equal(t, "get_account: request failed: connection refused",
		err.Error())
	require.ErrorIs(t, err, cause)
	require.True(t, Is(err, ErrTransport))
	require.False(t, Is(err, ErrClock))

	wrapped := fmt.Errorf("build: %w", err)
	code, ok := Code(wrapped)
	require.True(t, ok)
	require.Equal(t, ErrTransport, code)

	nested := E(ErrSequenceNumberUnavailable, "build", "bad record", err)
	require.True(t, Is(nested, ErrTransport))
	require.True(t, Is(nested, ErrSequenceNumberUnavailable))

	_, ok = Code(cause)
	require.False(t, ok)

	require.Equal(t, "bad threshold 7", Errorf(ErrInvalidRequest, "",
		"bad threshold %d", 7).Error())
}
