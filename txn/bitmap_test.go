// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBitmapLayout checks bits are numbered most significant first.
func TestBitmapLayout(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		signers []int
		want    Bitmap
	}{
		{name: "none", want: Bitmap{}},
		{name: "first", signers: []int{0}, want: Bitmap{0x80}},
		{name: "eighth", signers: []int{7}, want: Bitmap{0x01}},
		{name: "ninth", signers: []int{8}, want: Bitmap{0x00, 0x80}},
		{
			name:    "first and third",
			signers: []int{0, 2},
			want:    Bitmap{0xa0},
		},
		{
			name:    "last",
			signers: []int{31},
			want:    Bitmap{0, 0, 0, 0x01},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var bm Bitmap
			for _, i := range tc.signers {
				require.NoError(t, bm.Set(i))
			}
			require.Equal(t, tc.want, bm)
			require.Equal(t, len(tc.signers), bm.Count())
			for _, i := range tc.signers {
				require.True(t, bm.IsSet(i))
			}
			if len(tc.signers) > 0 {
				require.Equal(t, tc.signers, bm.Indices())
			}
		})
	}
}

// TestBitmapCountMatchesSetBits asserts the popcount equals the number of
// distinct indices set, for every index.
func TestBitmapCountMatchesSetBits(t *testing.T) {
	t.Parallel()

	var bm Bitmap
	for i := 0; i < 32; i++ {
		require.NoError(t, bm.Set(i))
		require.NoError(t, bm.Set(i))
		require.Equal(t, i+1, bm.Count())
	}
	require.Equal(t, "0xffffffff", bm.String())

	require.Error(t, bm.Set(32))
	require.Error(t, bm.Set(-1))
	require.False(t, bm.IsSet(32))
}
