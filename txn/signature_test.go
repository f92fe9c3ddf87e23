// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txn

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/aptwallet/walletcore/account"
	"github.com/aptwallet/walletcore/coreerr"
	"github.com/stretchr/testify/require"
)

func sharedFixture(t *testing.T, n, k int) ([]*account.Account,
	*account.SharedWallet) {

	t.Helper()

	accts := make([]*account.Account, n)
	pubs := make([]ed25519.PublicKey, n)
	for i := range accts {
		accts[i] = testAccount(t, byte(0x10+i))
		pubs[i] = accts[i].PublicKey()
	}
	w, err := account.NewSharedWallet(pubs, k)
	require.NoError(t, err)
	return accts, w
}

func partial(acct *account.Account) PartialSignature {
	return PartialSignature{
		PublicKey: acct.PublicKey(),
		Signature: acct.Sign(testMessage),
	}
}

// TestThresholdPayloadOrdering asserts bits follow wallet membership and
// signatures are ordered by it, whatever order signers arrive in.
func TestThresholdPayloadOrdering(t *testing.T) {
	t.Parallel()

	accts, w := sharedFixture(t, 3, 2)

	inOrder, err := NewThresholdPayload(w, []PartialSignature{
		partial(accts[0]), partial(accts[2]),
	})
	require.NoError(t, err)

	reversed, err := NewThresholdPayload(w, []PartialSignature{
		partial(accts[2]), partial(accts[0]),
	})
	require.NoError(t, err)
	require.Equal(t, inOrder, reversed)

	require.Equal(t, ThresholdSignatureType, inOrder.Type)
	require.Equal(t, uint8(2), inOrder.Threshold)
	require.Equal(t, "0xa0000000", inOrder.Bitmap)
	require.Equal(t, []string{
		"0x" + accts[0].PublicKeyHex(),
		"0x" + accts[2].PublicKeyHex(),
	}, inOrder.PublicKeys)
	require.NoError(t, inOrder.Validate())

	for i, s := range inOrder.Signatures {
		pub, err := account.ParsePublicKey(inOrder.PublicKeys[i])
		require.NoError(t, err)
		sig, err := hex.DecodeString(trimHex(s))
		require.NoError(t, err)
		require.True(t, account.Verify(pub, testMessage, sig))
	}
}

// TestThresholdPayloadRejects checks the membership and count checks.
func TestThresholdPayloadRejects(t *testing.T) {
	t.Parallel()

	accts, w := sharedFixture(t, 3, 2)
	outsider := testAccount(t, 0x7f)

	testCases := []struct {
		name     string
		partials []PartialSignature
	}{
		{
			name:     "too few",
			partials: []PartialSignature{partial(accts[0])},
		},
		{
			name: "too many",
			partials: []PartialSignature{
				partial(accts[0]), partial(accts[1]),
				partial(accts[2]),
			},
		},
		{
			name: "non member",
			partials: []PartialSignature{
				partial(accts[0]), partial(outsider),
			},
		},
		{
			name: "duplicate signer",
			partials: []PartialSignature{
				partial(accts[1]), partial(accts[1]),
			},
		},
		{
			name: "short signature",
			partials: []PartialSignature{
				partial(accts[0]),
				{PublicKey: accts[1].PublicKey(),
					Signature: []byte{1}},
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewThresholdPayload(w, tc.partials)
			require.True(t, coreerr.Is(err, coreerr.ErrInvalidRequest),
				"got %v", err)
		})
	}
}

// TestLegacyThresholdPayload asserts the all-of-n form marks every signer
// in the given order.
func TestLegacyThresholdPayload(t *testing.T) {
	t.Parallel()

	accts, _ := sharedFixture(t, 3, 0)

	payload, err := LegacyThresholdPayload([]PartialSignature{
		partial(accts[1]), partial(accts[0]), partial(accts[2]),
	})
	require.NoError(t, err)
	require.Equal(t, uint8(3), payload.Threshold)
	require.Equal(t, "0xe0000000", payload.Bitmap)
	require.Equal(t, "0x"+accts[1].PublicKeyHex(), payload.PublicKeys[0])
}

// TestSignaturePayloadValidate checks the structural invariant.
func TestSignaturePayloadValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		payload SignaturePayload
		valid   bool
	}{
		{
			name: "single",
			payload: SignaturePayload{
				Type: SingleSignatureType, PublicKey: "0x1",
				Signature: "0x2",
			},
			valid: true,
		},
		{
			name: "single without key",
			payload: SignaturePayload{
				Type: SingleSignatureType, Signature: "0x2",
			},
		},
		{
			name: "threshold popcount mismatch",
			payload: SignaturePayload{
				Type:       ThresholdSignatureType,
				PublicKeys: []string{"a", "b"},
				Signatures: []string{"c", "d"},
				Threshold:  2,
				Bitmap:     "0x80000000",
			},
		},
		{
			name: "threshold count mismatch",
			payload: SignaturePayload{
				Type:       ThresholdSignatureType,
				PublicKeys: []string{"a"},
				Signatures: []string{"c", "d"},
				Threshold:  2,
				Bitmap:     "0xc0000000",
			},
		},
		{
			name: "threshold short bitmap",
			payload: SignaturePayload{
				Type:       ThresholdSignatureType,
				PublicKeys: []string{"a"},
				Signatures: []string{"c"},
				Threshold:  1,
				Bitmap:     "0x80",
			},
		},
		{
			name: "threshold",
			payload: SignaturePayload{
				Type:       ThresholdSignatureType,
				PublicKeys: []string{"a", "b"},
				Signatures: []string{"c", "d"},
				Threshold:  2,
				Bitmap:     "0x00000300",
			},
			valid: true,
		},
	}

	for _, tc := range testCases {
		err := tc.payload.Validate()
		if tc.valid {
			require.NoError(t, err, tc.name)
			continue
		}
		require.Error(t, err, tc.name)
	}
}
