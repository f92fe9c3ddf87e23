// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account implements single-key accounts and k-of-n shared wallets
// along with the derivation of their ledger addresses.
package account

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/aptwallet/walletcore/coreerr"
	"github.com/aptwallet/walletcore/internal/zero"
)

// Account is a single ed25519 signing key.  An Account is owned by the
// request that created or imported it and should be zeroed once that
// request is served.
type Account struct {
	priv ed25519.PrivateKey
}

// Generate creates an account from a fresh random seed.
func Generate() (*Account, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom creates an account from a seed read from r.
func GenerateFrom(r io.Reader) (*Account, error) {
	var seed [ed25519.SeedSize]byte
	defer zero.Bytea32(&seed)

	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, coreerr.E(coreerr.ErrInvalidKeyEncoding, "generate",
			"unable to read seed", err)
	}
	return &Account{priv: ed25519.NewKeyFromSeed(seed[:])}, nil
}

// Import creates an account from raw key bytes.  Either a 32 byte seed or a
// 64 byte seed and public key pair is accepted.  A pair whose public half
// does not belong to the seed is rejected.
func Import(b []byte) (*Account, error) {
	switch len(b) {
	case ed25519.SeedSize:
		return &Account{priv: ed25519.NewKeyFromSeed(b)}, nil

	case ed25519.PrivateKeySize:
		priv := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
		pub := priv.Public().(ed25519.PublicKey)
		if !pub.Equal(ed25519.PublicKey(b[ed25519.SeedSize:])) {
			zero.PrivateKey(priv)
			return nil, coreerr.Errorf(coreerr.ErrInvalidKeyEncoding,
				"import", "public half does not match seed")
		}
		return &Account{priv: priv}, nil

	default:
		return nil, coreerr.Errorf(coreerr.ErrInvalidKeyEncoding,
			"import", "key is %d bytes, want %d or %d", len(b),
			ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}

// ImportHex is Import for hex encoded key bytes.
func ImportHex(s string) (*Account, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, coreerr.E(coreerr.ErrInvalidKeyEncoding, "import",
			"key is not hex", err)
	}
	defer zero.Bytes(b)
	return Import(b)
}

// PublicKey returns the account's public key.
func (a *Account) PublicKey() ed25519.PublicKey {
	return a.priv.Public().(ed25519.PublicKey)
}

// PublicKeyHex returns the public key as lower case hex.
func (a *Account) PublicKeyHex() string {
	return hex.EncodeToString(a.PublicKey())
}

// Address returns the single-key address of the account.
func (a *Account) Address() Address {
	return SingleKeyAddress(a.PublicKey())
}

// Sign signs msg with the account key.
func (a *Account) Sign(msg []byte) []byte {
	return ed25519.Sign(a.priv, msg)
}

// SignHex signs msg and returns the signature as lower case hex.
func (a *Account) SignHex(msg []byte) string {
	return hex.EncodeToString(a.Sign(msg))
}

// KeypairBytes returns a copy of the 64 byte seed and public key pair.  The
// caller owns the copy and should zero it when done.
func (a *Account) KeypairBytes() []byte {
	return append([]byte(nil), a.priv...)
}

// Zero clears the key material.  The account must not be used afterwards.
func (a *Account) Zero() {
	zero.PrivateKey(a.priv)
}
