// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/aptwallet/walletcore/coreerr"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func seed(b byte) []byte {
	return bytes.Repeat([]byte{b}, ed25519.SeedSize)
}

// TestImportDeterminism asserts importing the same bytes twice yields the
// same public key and address, whether a seed or a full pair is given.
func TestImportDeterminism(t *testing.T) {
	t.Parallel()

	a, err := Import(seed(7))
	require.NoError(t, err)
	b, err := Import(seed(7))
	require.NoError(t, err)
	require.Equal(t, a.PublicKey(), b.PublicKey())
	require.Equal(t, a.Address(), b.Address())

	pair := a.KeypairBytes()
	c, err := Import(pair)
	require.NoError(t, err)
	require.Equal(t, a.Address(), c.Address())

	other, err := Import(seed(8))
	require.NoError(t, err)
	require.NotEqual(t, a.Address(), other.Address())
}

// TestImportRejects asserts malformed key bytes are refused with an
// InvalidKeyEncoding error.
func TestImportRejects(t *testing.T) {
	t.Parallel()

	good, err := Import(seed(1))
	require.NoError(t, err)
	mismatched := append(seed(2), good.PublicKey()...)

	testCases := []struct {
		name string
		key  []byte
	}{
		{name: "empty", key: nil},
		{name: "short", key: seed(1)[:31]},
		{name: "between sizes", key: make([]byte, 48)},
		{name: "long", key: make([]byte, 65)},
		{name: "mismatched public half", key: mismatched},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Import(tc.key)
			require.True(t, coreerr.Is(err, coreerr.ErrInvalidKeyEncoding),
				"got %v", err)
		})
	}

	_, err = ImportHex("zz")
	require.True(t, coreerr.Is(err, coreerr.ErrInvalidKeyEncoding))
}

// TestSingleKeyAddress checks the address preimage layout.
func TestSingleKeyAddress(t *testing.T) {
	t.Parallel()

	acct, err := Import(seed(3))
	require.NoError(t, err)

	want := sha3.Sum256(append(acct.PublicKey(), 0x00))
	require.Equal(t, Address(want), acct.Address())
	require.Equal(t, hex.EncodeToString(want[:]), acct.Address().String())
	require.Equal(t, "0x"+acct.Address().String(), acct.Address().Hex())

	parsed, err := ParseAddress(acct.Address().Hex())
	require.NoError(t, err)
	require.Equal(t, acct.Address(), parsed)

	_, err = ParseAddress("0xabcd")
	require.True(t, coreerr.Is(err, coreerr.ErrInvalidRequest))
}

// TestSignVerify asserts signatures verify under the account key and only
// under it.
func TestSignVerify(t *testing.T) {
	t.Parallel()

	acct, err := Generate()
	require.NoError(t, err)
	msg := []byte("signing message")

	sig := acct.Sign(msg)
	require.True(t, Verify(acct.PublicKey(), msg, sig))
	require.False(t, Verify(acct.PublicKey(), []byte("other"), sig))

	sigHex := acct.SignHex(msg)
	require.Equal(t, hex.EncodeToString(sig), sigHex)

	pub, err := ParsePublicKey("0x" + acct.PublicKeyHex())
	require.NoError(t, err)
	require.True(t, pub.Equal(acct.PublicKey()))
}

// TestZero asserts zeroing wipes the key bytes.
func TestZero(t *testing.T) {
	t.Parallel()

	acct, err := Import(seed(9))
	require.NoError(t, err)
	acct.Zero()
	require.Equal(t, make([]byte, ed25519.PrivateKeySize),
		[]byte(acct.priv))
}

func members(t *testing.T, n int) []ed25519.PublicKey {
	t.Helper()

	pubs := make([]ed25519.PublicKey, n)
	for i := range pubs {
		acct, err := Import(seed(byte(i + 1)))
		require.NoError(t, err)
		pubs[i] = acct.PublicKey()
	}
	return pubs
}

// TestSharedWalletAddress checks the shared wallet preimage layout and that
// member order and threshold both feed the address.
func TestSharedWalletAddress(t *testing.T) {
	t.Parallel()

	pubs := members(t, 3)

	w, err := NewSharedWallet(pubs, 2)
	require.NoError(t, err)

	var preimage []byte
	for _, p := range pubs {
		preimage = append(preimage, p...)
	}
	preimage = append(preimage, 2, 0x01)
	require.Equal(t, Address(sha3.Sum256(preimage)), w.Address())

	again, err := NewSharedWallet(pubs, 2)
	require.NoError(t, err)
	require.Equal(t, w.Address(), again.Address())

	reordered, err := NewSharedWallet([]ed25519.PublicKey{
		pubs[1], pubs[0], pubs[2],
	}, 2)
	require.NoError(t, err)
	require.NotEqual(t, w.Address(), reordered.Address())

	allOf, err := NewSharedWallet(pubs, 3)
	require.NoError(t, err)
	require.NotEqual(t, w.Address(), allOf.Address())

	defaulted, err := NewSharedWallet(pubs, 0)
	require.NoError(t, err)
	require.Equal(t, 3, defaulted.Threshold())
	require.Equal(t, allOf.Address(), defaulted.Address())

	require.Equal(t, 1, w.IndexOf(pubs[1]))
	require.Equal(t, -1, w.IndexOf(members(t, 4)[3]))
}

// TestSharedWalletValidation asserts bad memberships are refused.
func TestSharedWalletValidation(t *testing.T) {
	t.Parallel()

	pubs := members(t, 3)

	testCases := []struct {
		name      string
		pubs      []ed25519.PublicKey
		threshold int
		code      coreerr.ErrorCode
	}{
		{
			name: "no members",
			code: coreerr.ErrInvalidRequest,
		},
		{
			name:      "threshold above members",
			pubs:      pubs,
			threshold: 4,
			code:      coreerr.ErrInvalidRequest,
		},
		{
			name:      "negative threshold",
			pubs:      pubs,
			threshold: -1,
			code:      coreerr.ErrInvalidRequest,
		},
		{
			name:      "duplicate member",
			pubs:      []ed25519.PublicKey{pubs[0], pubs[0]},
			threshold: 1,
			code:      coreerr.ErrInvalidRequest,
		},
		{
			name:      "short key",
			pubs:      []ed25519.PublicKey{pubs[0][:31]},
			threshold: 1,
			code:      coreerr.ErrInvalidKeyEncoding,
		},
		{
			name: "too many members",
			pubs: make([]ed25519.PublicKey, MaxSharedKeys+1),
			code: coreerr.ErrInvalidRequest,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewSharedWallet(tc.pubs, tc.threshold)
			require.True(t, coreerr.Is(err, tc.code), "got %v", err)
		})
	}
}
