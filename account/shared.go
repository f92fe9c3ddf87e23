// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"
	"crypto/ed25519"

	"github.com/aptwallet/walletcore/coreerr"
	"golang.org/x/crypto/sha3"
)

// MaxSharedKeys is the largest membership a shared wallet may have.  The
// signer bitmap carried by threshold signatures is four bytes wide.
const MaxSharedKeys = 32

// SharedWallet is a k-of-n wallet.  The member order is significant: it
// feeds the address derivation and fixes each member's bitmap position.
type SharedWallet struct {
	publicKeys []ed25519.PublicKey
	threshold  uint8
}

// NewSharedWallet creates a shared wallet from an ordered list of member
// keys.  A threshold of zero means every member must sign.
func NewSharedWallet(pubs []ed25519.PublicKey, threshold int) (*SharedWallet,
	error) {

	const op = "create_wallet"

	n := len(pubs)
	if n == 0 || n > MaxSharedKeys {
		return nil, coreerr.Errorf(coreerr.ErrInvalidRequest, op,
			"wallet has %d members, want 1 to %d", n, MaxSharedKeys)
	}
	if threshold == 0 {
		threshold = n
	}
	if threshold < 1 || threshold > n {
		return nil, coreerr.Errorf(coreerr.ErrInvalidRequest, op,
			"threshold %d out of range for %d members", threshold, n)
	}

	keys := make([]ed25519.PublicKey, n)
	for i, pub := range pubs {
		if len(pub) != ed25519.PublicKeySize {
			return nil, coreerr.Errorf(coreerr.ErrInvalidKeyEncoding,
				op, "member %d key is %d bytes", i, len(pub))
		}
		for _, prev := range keys[:i] {
			if prev.Equal(pub) {
				return nil, coreerr.Errorf(
					coreerr.ErrInvalidRequest, op,
					"member %d repeats an earlier key", i)
			}
		}
		keys[i] = append(ed25519.PublicKey(nil), pub...)
	}

	return &SharedWallet{publicKeys: keys, threshold: uint8(threshold)}, nil
}

// PublicKeys returns the ordered member keys.
func (w *SharedWallet) PublicKeys() []ed25519.PublicKey {
	return append([]ed25519.PublicKey(nil), w.publicKeys...)
}

// Threshold returns the number of signatures required.
func (w *SharedWallet) Threshold() int {
	return int(w.threshold)
}

// IndexOf returns the membership position of pub, or -1 when pub is not a
// member.
func (w *SharedWallet) IndexOf(pub ed25519.PublicKey) int {
	for i, k := range w.publicKeys {
		if bytes.Equal(k, pub) {
			return i
		}
	}
	return -1
}

// Address returns the wallet address, the SHA3-256 digest of the member keys
// in order, the threshold byte and the multi-key scheme tag.
func (w *SharedWallet) Address() Address {
	h := sha3.New256()
	for _, k := range w.publicKeys {
		h.Write(k)
	}
	h.Write([]byte{w.threshold, multiKeyScheme})

	var a Address
	copy(a[:], h.Sum(nil))
	return a
}
