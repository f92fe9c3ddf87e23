// Copyright (c) 2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zero_test

import (
	"crypto/ed25519"
	"fmt"
	"testing"

	. "github.com/aptwallet/walletcore/internal/zero"
	"github.com/stretchr/testify/require"
)

func makeOneBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 1
	}
	return b
}

func checkZeroBytes(b []byte) error {
	for i, v := range b {
		if v != 0 {
			return fmt.Errorf("b[%d] = %d", i, v)
		}
	}
	return nil
}

func TestBytes(t *testing.T) {
	tests := []int{
		0, 31, 32, 33, 63, 64, 65, 127, 128, 129, 255, 256, 257, 511,
		512, 513,
	}

	for i, n := range tests {
		b := makeOneBytes(n)
		Bytes(b)
		err := checkZeroBytes(b)
		if err != nil {
			t.Errorf("Test %d (n=%d) failed: %v", i, n, err)
			continue
		}
	}
}

func TestArrays(t *testing.T) {
	var a32 [32]byte
	copy(a32[:], makeOneBytes(32))
	Bytea32(&a32)
	require.NoError(t, checkZeroBytes(a32[:]))

	var a64 [64]byte
	copy(a64[:], makeOneBytes(64))
	Bytea64(&a64)
	require.NoError(t, checkZeroBytes(a64[:]))
}

func TestPrivateKey(t *testing.T) {
	k := ed25519.NewKeyFromSeed(makeOneBytes(ed25519.SeedSize))
	PrivateKey(k)
	require.Len(t, k, ed25519.PrivateKeySize)
	require.NoError(t, checkZeroBytes(k))
}
